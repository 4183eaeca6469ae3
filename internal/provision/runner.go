package provision

import (
	"context"
	"errors"
	"os/exec"
)

// Runner executes a single external command and returns its combined
// output. Implementations must return the command's error unwrapped
// so exit statuses stay recoverable.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// ExecRunner runs commands on the host
type ExecRunner struct{}

// NewExecRunner creates a host command runner
func NewExecRunner() *ExecRunner {
	return &ExecRunner{}
}

// Run executes the command and captures combined output
func (r *ExecRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	return cmd.CombinedOutput()
}

// ExitStatus extracts the process exit status from a command error.
// Returns 1 for errors that never produced a process status, such as
// a missing binary.
func ExitStatus(err error) int {
	if err == nil {
		return 0
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}

	return 1
}
