package provision

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecRunnerCapturesOutput(t *testing.T) {
	r := NewExecRunner()

	out, err := r.Run(context.Background(), "sh", "-c", "echo hello")
	require.NoError(t, err)
	assert.Contains(t, string(out), "hello")
}

func TestExitStatusFromRealProcess(t *testing.T) {
	r := NewExecRunner()

	_, err := r.Run(context.Background(), "sh", "-c", "exit 7")
	require.Error(t, err)
	assert.Equal(t, 7, ExitStatus(err))
}

func TestExitStatusFallbacks(t *testing.T) {
	assert.Equal(t, 0, ExitStatus(nil))
	assert.Equal(t, 1, ExitStatus(errors.New("not an exec error")))
}
