package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/ambry-data/ambryctl/internal/models"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Inspect provisioning run history",
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent provisioning runs",
	RunE:  runHistoryList,
}

var historyShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Show the step details of a run",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryShow,
}

func init() {
	historyListCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "maximum number of runs to list")

	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyShowCmd)
}

func runHistoryList(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	st, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Disconnect(ctx)

	runs, err := st.ListRuns(ctx, historyLimit)
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}

	if len(runs) == 0 {
		fmt.Println("No provisioning runs recorded yet.")
		return nil
	}

	fmt.Printf("%sProvisioning Runs%s (%s)\n", HeaderStyle, Reset, FormatCount(len(runs)))
	fmt.Printf("%s=================%s\n", DimStyle, Reset)

	for _, run := range runs {
		statusStyle := SuccessStyle
		if run.Status != models.RunStatusSucceeded {
			statusStyle = ErrorStyle
		}

		mode := run.Mode
		if run.DevInstall {
			mode += " (dev)"
		}

		fmt.Printf("%s%s%s  %s%-10s%s  %s%-16s%s  %s\n",
			MetaStyle, run.ID, Reset,
			statusStyle, run.Status, Reset,
			LabelStyle, mode, Reset,
			run.StartedAt.Format(time.RFC3339))
	}

	return nil
}

func runHistoryShow(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	st, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Disconnect(ctx)

	run, err := st.GetRun(ctx, args[0])
	if err != nil {
		return fmt.Errorf("failed to get run: %w", err)
	}

	fmt.Printf("%sRun %s%s\n", HeaderStyle, run.ID, Reset)
	fmt.Printf("%sMode:%s %s\n", LabelStyle, Reset, run.Mode)
	fmt.Printf("%sStatus:%s %s (exit %d)\n", LabelStyle, Reset, run.Status, run.ExitCode)
	if run.OSRelease != "" {
		fmt.Printf("%sRelease:%s %s\n", LabelStyle, Reset, run.OSRelease)
	}
	fmt.Printf("%sStarted:%s %s\n", LabelStyle, Reset, run.StartedAt.Format(time.RFC3339))
	if run.FinishedAt != nil {
		fmt.Printf("%sFinished:%s %s\n", LabelStyle, Reset, run.FinishedAt.Format(time.RFC3339))
	}

	fmt.Println()
	for _, step := range run.Steps {
		marker := FormatSuccess("✓")
		switch step.Status {
		case models.StepStatusFailed:
			marker = FormatError("✗")
		case models.StepStatusSkipped:
			marker = DimStyle + "-" + Reset
		}

		fmt.Printf("%s %d. %s%s%s (%dms)\n", marker, step.Seq, ValueStyle, step.Name, Reset, step.LatencyMs)
		fmt.Printf("   %s%s%s\n", MetaStyle, step.Command, Reset)

		if step.Status == models.StepStatusFailed && step.Output != "" {
			fmt.Printf("   %sexit %d:%s %s\n", ErrorStyle, step.ExitCode, Reset, step.Output)
		}
	}

	return nil
}
