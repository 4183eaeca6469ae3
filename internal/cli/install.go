package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ambry-data/ambryctl/internal/host"
	"github.com/ambry-data/ambryctl/internal/logger"
	"github.com/ambry-data/ambryctl/internal/models"
	"github.com/ambry-data/ambryctl/internal/osrelease"
	"github.com/ambry-data/ambryctl/internal/provision"
)

var (
	installDev      bool
	installDryRun   bool
	installNoRecord bool
	installRelease  string
)

var installCmd = &cobra.Command{
	Use:   "install [is_dev]",
	Short: "Install ambry and its dependencies on this host",
	Long: `Run the full provisioning sequence: update the package index,
generate the locale, install the OS package set (with the spatial
library variant for the detected release), upgrade pip, install the
patched sqlite binding, install ambry, and invoke 'ambry config
install'.

A non-empty is_dev argument (or --dev) installs ambry in editable
mode from the development branch. Only the OS package installation
step is fatal; its exit status becomes the process exit status.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInstall,
}

func init() {
	installCmd.Flags().BoolVar(&installDev, "dev", false, "editable install from the development branch")
	installCmd.Flags().BoolVar(&installDryRun, "dry-run", false, "print commands without executing them")
	installCmd.Flags().BoolVar(&installNoRecord, "no-record", false, "skip recording the run in the history store")
	installCmd.Flags().StringVar(&installRelease, "release", "", "override the detected OS release (e.g. 14.04)")
}

func runInstall(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	// The positional argument mirrors the original bootstrap surface:
	// any non-empty value selects the development install.
	dev := installDev
	if len(args) == 1 && args[0] != "" {
		dev = true
	}

	if !installDryRun && !host.IsRoot() {
		return fmt.Errorf("install requires root privileges. Re-run with `sudo`")
	}

	release := installRelease
	if release == "" {
		info, err := osrelease.Detect()
		if err != nil {
			if !installDryRun {
				return fmt.Errorf("failed to detect OS release: %w", err)
			}
			logger.Warning("OS release detection failed, continuing dry run without it: %v", err)
		} else {
			release = info.Release
		}
	}

	if installDryRun {
		fmt.Println("DRY RUN MODE - No changes will be made")
		fmt.Println()
	}

	provisioner := provision.New(provision.NewExecRunner())

	run, provErr := provisioner.Run(ctx, provision.Options{
		Mode:    "install",
		Dev:     dev,
		DryRun:  installDryRun,
		Release: release,
	})

	if !installNoRecord && !installDryRun && run != nil {
		if err := recordRun(ctx, run); err != nil {
			logger.Warning("Failed to record run: %v", err)
		}
	}

	printRunSummary(run)

	// Propagates the fatal step's exit status through main
	return provErr
}

func recordRun(ctx context.Context, run *models.Run) error {
	st, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Disconnect(ctx)

	return st.SaveRun(ctx, run)
}

func printRunSummary(run *models.Run) {
	if run == nil {
		return
	}

	fmt.Println()
	fmt.Printf("%sProvisioning summary%s\n", HeaderStyle, Reset)
	fmt.Printf("%s====================%s\n", DimStyle, Reset)
	fmt.Printf("%sRun:%s %s\n", LabelStyle, Reset, run.ID)
	if run.OSRelease != "" {
		fmt.Printf("%sRelease:%s %s\n", LabelStyle, Reset, run.OSRelease)
	}

	for _, step := range run.Steps {
		switch step.Status {
		case models.StepStatusSucceeded:
			fmt.Printf("  %s✓%s %s\n", SuccessStyle, Reset, step.Name)
		case models.StepStatusSkipped:
			fmt.Printf("  %s-%s %s (%s)\n", DimStyle, Reset, step.Name, step.Command)
		default:
			fmt.Printf("  %s✗%s %s (exit %d)\n", ErrorStyle, Reset, step.Name, step.ExitCode)
		}
	}

	fmt.Println()
	if run.Status == models.RunStatusSucceeded {
		fmt.Printf("%s✅ Provisioning complete%s\n", SuccessStyle, Reset)
	} else if !run.DryRun {
		fmt.Printf("%s❌ Provisioning failed (exit %d)%s\n", ErrorStyle, run.ExitCode, Reset)
	}
}
