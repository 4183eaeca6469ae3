package host

import (
	"os"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusProbesAllTools(t *testing.T) {
	status := Status()
	require.NotNil(t, status)

	assert.Equal(t, runtime.GOOS, status.OS)
	assert.False(t, status.CheckedAt.IsZero())

	require.Len(t, status.Tools, len(RequiredTools))
	for _, tool := range RequiredTools {
		_, ok := status.Tools[tool]
		assert.True(t, ok, "tool %s missing from probe results", tool)
	}
}

func TestIsRootMatchesEuid(t *testing.T) {
	assert.Equal(t, os.Geteuid() == 0, IsRoot())
}
