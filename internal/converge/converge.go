package converge

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/robfig/cron/v3"

	"github.com/ambry-data/ambryctl/internal/logger"
	"github.com/ambry-data/ambryctl/internal/provision"
	"github.com/ambry-data/ambryctl/internal/store"
)

// Converger re-runs the provisioning sequence on a cron schedule to
// keep the host converged
type Converger struct {
	provisioner *provision.Provisioner
	history     store.Store // optional, nil disables recording
	cron        *cron.Cron
	expr        string
	opts        provision.Options
	running     bool
	mu          sync.RWMutex
}

// New creates a new converger
func New(provisioner *provision.Provisioner, history store.Store, expr string, opts provision.Options) *Converger {
	opts.Mode = "converge"
	return &Converger{
		provisioner: provisioner,
		history:     history,
		cron:        cron.New(),
		expr:        expr,
		opts:        opts,
	}
}

// Start registers the schedule and starts the cron loop
func (c *Converger) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.running {
		return fmt.Errorf("converger already running")
	}

	_, err := c.cron.AddFunc(c.expr, func() {
		if err := c.runOnce(context.Background()); err != nil {
			logger.Error("Convergence run failed: %v", err)
		}
	})
	if err != nil {
		return fmt.Errorf("failed to add cron job: %w", err)
	}

	c.cron.Start()
	c.running = true

	logger.Info("Converger started with cron expression: %s", c.expr)
	return nil
}

// Stop stops the cron loop
func (c *Converger) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.running {
		return
	}

	c.cron.Stop()
	c.running = false

	logger.Info("Converger stopped")
}

// Running reports whether the cron loop is active
func (c *Converger) Running() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.running
}

// runOnce executes one convergence run and records it
func (c *Converger) runOnce(ctx context.Context) error {
	logger.Info("Starting convergence run")

	run, err := c.provisioner.Run(ctx, c.opts)

	if c.history != nil && run != nil {
		if saveErr := c.history.SaveRun(ctx, run); saveErr != nil {
			logger.Error("Failed to record convergence run %s: %v", run.ID, saveErr)
		}
	}

	if err != nil {
		var fatal *provision.FatalStepError
		if errors.As(err, &fatal) {
			return fmt.Errorf("fatal step %s (exit %d)", fatal.Step, fatal.ExitCode)
		}
		return err
	}

	logger.Info("Convergence run %s succeeded", run.ID)
	return nil
}
