package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ambry-data/ambryctl/internal/converge"
	"github.com/ambry-data/ambryctl/internal/host"
	"github.com/ambry-data/ambryctl/internal/logger"
	"github.com/ambry-data/ambryctl/internal/osrelease"
	"github.com/ambry-data/ambryctl/internal/provision"
)

var (
	convergeCron   string
	convergeDev    bool
	convergeDryRun bool
)

var convergeCmd = &cobra.Command{
	Use:   "converge",
	Short: "Re-run provisioning on a schedule",
	Long: `Keep the host converged by re-running the install sequence on a
cron schedule. Runs until interrupted; every run is recorded in the
history store.`,
	RunE: runConverge,
}

func init() {
	convergeCmd.Flags().StringVar(&convergeCron, "cron", "@hourly", "cron expression for convergence runs")
	convergeCmd.Flags().BoolVar(&convergeDev, "dev", false, "editable install from the development branch")
	convergeCmd.Flags().BoolVar(&convergeDryRun, "dry-run", false, "print commands without executing them")
}

func runConverge(cmd *cobra.Command, args []string) error {
	if _, err := validateCronExpression(convergeCron); err != nil {
		return err
	}

	if !convergeDryRun && !host.IsRoot() {
		return fmt.Errorf("converge requires root privileges. Re-run with `sudo`")
	}

	release := ""
	if info, err := osrelease.Detect(); err == nil {
		release = info.Release
	} else if !convergeDryRun {
		return fmt.Errorf("failed to detect OS release: %w", err)
	}

	ctx := context.Background()

	st, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Disconnect(ctx)

	provisioner := provision.New(provision.NewExecRunner())
	converger := converge.New(provisioner, st, convergeCron, provision.Options{
		Dev:     convergeDev,
		DryRun:  convergeDryRun,
		Release: release,
	})

	logger.Info("🚀 Starting convergence loop")

	if err := converger.Start(ctx); err != nil {
		return fmt.Errorf("failed to start converger: %w", err)
	}

	logger.Info("✅ Converger is running (%s). Press Ctrl+C to stop.", convergeCron)

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	<-sigChan

	logger.Info("⏸️  Stopping converger...")
	converger.Stop()

	logger.Info("✅ Converger stopped. Goodbye!")
	return nil
}
