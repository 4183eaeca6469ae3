package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/ambry-data/ambryctl/internal/api"
	"github.com/ambry-data/ambryctl/internal/config"
)

var (
	apiPort    string
	apiHost    string
	corsOrigin string
)

var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Start the ambryctl REST API server",
	Long: `Start the read-only REST API server exposing:
- Provisioning run history (list and detail)
- Host status (OS release, tool availability)
- Health check

The API runs on HTTP (no authentication required for now).`,
	RunE: runAPI,
}

func init() {
	apiCmd.Flags().StringVarP(&apiPort, "port", "p", "8989", "Port to run the API server on")
	apiCmd.Flags().StringVarP(&apiHost, "host", "H", "127.0.0.1", "Host to bind the API server to")
	apiCmd.Flags().StringVarP(&corsOrigin, "cors-origin", "c", "*", "CORS origin to allow")
}

func runAPI(cmd *cobra.Command, args []string) error {
	// Listener defaults can come from the config's servers group
	if config.Exists(cfgFile) {
		if cfg, err := config.Load(cfgFile); err == nil {
			if srv, ok := cfg.Servers["ambryctl"]; ok {
				if !cmd.Flags().Changed("host") && srv.Host != "" {
					apiHost = srv.Host
				}
				if !cmd.Flags().Changed("port") && srv.Port > 0 {
					apiPort = strconv.Itoa(srv.Port)
				}
			}
		}
	}

	ctx := context.Background()

	st, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Disconnect(ctx)

	fmt.Printf("🚀 Starting Ambryctl API Server\n")
	fmt.Printf("===============================\n")
	fmt.Printf("Host: %s\n", apiHost)
	fmt.Printf("Port: %s\n", apiPort)
	fmt.Printf("CORS Origin: %s\n", corsOrigin)
	fmt.Printf("URL: http://%s:%s/api/v1\n", apiHost, apiPort)
	fmt.Println()

	server := api.NewServer(st, corsOrigin)
	return server.Start(apiHost, apiPort)
}
