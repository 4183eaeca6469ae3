package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ambry-data/ambryctl/internal/config"
	"github.com/ambry-data/ambryctl/internal/logger"
	"github.com/ambry-data/ambryctl/internal/store"
	"github.com/ambry-data/ambryctl/internal/store/sqlite"
)

var (
	cfgFile   string
	storePath string
	logLevel  string
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "ambryctl",
	Short: "Provisioning tool for the ambry data library",
	Long: `Ambryctl bootstraps a host for the ambry data library: it installs
the OS and Python dependencies ambry needs (including the spatial
database libraries), installs ambry itself, and manages the ambry
run configuration file.

Every provisioning run is recorded in a local history store that can
be inspected with 'ambryctl history' or served over HTTP with
'ambryctl api'.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logger.Init(logger.ParseLogLevel(logLevel), os.Stderr)

		if cfgFile == "" {
			cfgFile = config.GetConfigPath()
		}
		if storePath == "" {
			storePath = store.DefaultPath()
		}

		return nil
	},
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "ambry config file (default is $HOME/.ambry/ambry.yaml)")
	rootCmd.PersistentFlags().StringVar(&storePath, "store", "", "run history database (default is $HOME/.ambry/ambryctl.db)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warning, error)")

	// Disable completion command
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	// Add subcommands
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(installCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(doctorCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(apiCmd)
	rootCmd.AddCommand(convergeCmd)
	rootCmd.AddCommand(migrateCmd)
}

// openStore connects to the run history store
func openStore(ctx context.Context) (store.Store, error) {
	st, err := sqlite.New(&store.Config{Path: storePath})
	if err != nil {
		return nil, fmt.Errorf("failed to create history store: %w", err)
	}

	if err := st.Connect(ctx); err != nil {
		return nil, fmt.Errorf("failed to connect to history store: %w", err)
	}

	return st, nil
}

// loadConfig loads the ambry run configuration, failing when absent
func loadConfig() (*config.Config, error) {
	if !config.Exists(cfgFile) {
		return nil, fmt.Errorf("configuration file not found at %s. Run 'ambryctl init' to create one", cfgFile)
	}

	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	return cfg, nil
}
