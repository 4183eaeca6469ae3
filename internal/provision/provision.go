package provision

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ambry-data/ambryctl/internal/logger"
	"github.com/ambry-data/ambryctl/internal/models"
)

// Output tail kept per step record
const outputTailLimit = 4096

// Options control a provisioning run
type Options struct {
	Mode    string // install, converge
	Dev     bool   // editable install from the development branch
	DryRun  bool   // print commands without executing
	Release string // detected OS release, e.g. "14.04"
}

// FatalStepError reports a fatal step failure carrying the failing
// command's process exit status
type FatalStepError struct {
	Step     string
	ExitCode int
	Err      error
}

func (e *FatalStepError) Error() string {
	return fmt.Sprintf("step %s failed with exit status %d: %v", e.Step, e.ExitCode, e.Err)
}

func (e *FatalStepError) Unwrap() error {
	return e.Err
}

// Provisioner executes the install sequence strictly in order
type Provisioner struct {
	runner Runner
}

// New creates a provisioner using the given runner
func New(runner Runner) *Provisioner {
	return &Provisioner{runner: runner}
}

// Run executes the full sequence and returns the run record. The
// record is returned even on failure so callers can persist it. A
// non-nil error is returned only for fatal step failures, as
// *FatalStepError.
func (p *Provisioner) Run(ctx context.Context, opts Options) (*models.Run, error) {
	if opts.Mode == "" {
		opts.Mode = "install"
	}

	run := &models.Run{
		ID:         uuid.New().String(),
		Mode:       opts.Mode,
		DevInstall: opts.Dev,
		DryRun:     opts.DryRun,
		OSRelease:  opts.Release,
		Status:     models.RunStatusRunning,
		StartedAt:  time.Now(),
	}

	steps := Steps(opts.Release, opts.Dev)

	var fatalErr *FatalStepError

	for i, step := range steps {
		if err := ctx.Err(); err != nil {
			return p.finish(run, models.RunStatusFailed, 1), fmt.Errorf("provisioning cancelled: %w", err)
		}

		record := p.execute(ctx, run.ID, i+1, step, opts.DryRun)
		run.Steps = append(run.Steps, record)

		if record.Status == models.StepStatusFailed && step.Fatal {
			// Abort immediately: later steps must not run, and the
			// failing command's exit status escapes unchanged.
			fatalErr = &FatalStepError{
				Step:     step.Name,
				ExitCode: record.ExitCode,
				Err:      fmt.Errorf("%s", step.Command()),
			}
			break
		}
	}

	if fatalErr != nil {
		return p.finish(run, models.RunStatusFailed, fatalErr.ExitCode), fatalErr
	}

	return p.finish(run, models.RunStatusSucceeded, 0), nil
}

func (p *Provisioner) finish(run *models.Run, status string, exitCode int) *models.Run {
	now := time.Now()
	run.Status = status
	run.ExitCode = exitCode
	run.FinishedAt = &now
	return run
}

// execute runs one step and builds its record
func (p *Provisioner) execute(ctx context.Context, runID string, seq int, step Step, dryRun bool) *models.StepRecord {
	record := &models.StepRecord{
		ID:        uuid.New().String(),
		RunID:     runID,
		Seq:       seq,
		Name:      step.Name,
		Command:   step.Command(),
		Fatal:     step.Fatal,
		CreatedAt: time.Now(),
	}

	if dryRun {
		logger.Info("[dry-run] would run: %s", step.Command())
		record.Status = models.StepStatusSkipped
		return record
	}

	logger.Info("running step %s: %s", step.Name, step.Command())

	start := time.Now()
	output, err := p.runner.Run(ctx, step.Argv[0], step.Argv[1:]...)
	record.LatencyMs = time.Since(start).Milliseconds()
	record.Output = tail(string(output), outputTailLimit)

	if err != nil {
		record.Status = models.StepStatusFailed
		record.ExitCode = ExitStatus(err)
		if step.Fatal {
			logger.Error("step %s failed (exit %d): %v", step.Name, record.ExitCode, err)
		} else {
			logger.Warning("step %s failed (exit %d), continuing: %v", step.Name, record.ExitCode, err)
		}
		return record
	}

	record.Status = models.StepStatusSucceeded
	return record
}

func tail(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[len(s)-limit:]
}
