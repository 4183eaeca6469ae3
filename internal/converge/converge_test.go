package converge

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ambry-data/ambryctl/internal/models"
	"github.com/ambry-data/ambryctl/internal/provision"
)

type fakeRunner struct {
	fail  bool
	calls int
}

func (r *fakeRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	r.calls++
	if r.fail && name == "apt-get" && len(args) > 0 && args[0] == "install" {
		return []byte("unreachable mirror"), errors.New("apt failed")
	}
	return []byte("ok"), nil
}

type recordingStore struct {
	saved []*models.Run
}

func (s *recordingStore) Connect(ctx context.Context) error    { return nil }
func (s *recordingStore) Disconnect(ctx context.Context) error { return nil }
func (s *recordingStore) Ping(ctx context.Context) error       { return nil }

func (s *recordingStore) SaveRun(ctx context.Context, run *models.Run) error {
	s.saved = append(s.saved, run)
	return nil
}

func (s *recordingStore) GetRun(ctx context.Context, id string) (*models.Run, error) {
	return nil, fmt.Errorf("run not found: %s", id)
}

func (s *recordingStore) ListRuns(ctx context.Context, limit int) ([]*models.Run, error) {
	return s.saved, nil
}

func newConverger(expr string, runner *fakeRunner, history *recordingStore) *Converger {
	p := provision.New(runner)
	opts := provision.Options{Release: "14.04"}
	if history == nil {
		return New(p, nil, expr, opts)
	}
	return New(p, history, expr, opts)
}

func TestStartAndStop(t *testing.T) {
	c := newConverger("@hourly", &fakeRunner{}, nil)

	assert.False(t, c.Running())
	require.NoError(t, c.Start(context.Background()))
	assert.True(t, c.Running())

	c.Stop()
	assert.False(t, c.Running())

	// Stop again is a no-op
	c.Stop()
	assert.False(t, c.Running())
}

func TestStartTwiceFails(t *testing.T) {
	c := newConverger("@hourly", &fakeRunner{}, nil)

	require.NoError(t, c.Start(context.Background()))
	defer c.Stop()

	err := c.Start(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already running")
}

func TestStartRejectsInvalidExpression(t *testing.T) {
	c := newConverger("not a cron expr", &fakeRunner{}, nil)

	err := c.Start(context.Background())
	require.Error(t, err)
	assert.False(t, c.Running())
}

func TestRunOnceRecordsRun(t *testing.T) {
	history := &recordingStore{}
	runner := &fakeRunner{}
	c := newConverger("@hourly", runner, history)

	require.NoError(t, c.runOnce(context.Background()))

	require.Len(t, history.saved, 1)
	run := history.saved[0]
	assert.Equal(t, "converge", run.Mode)
	assert.Equal(t, models.RunStatusSucceeded, run.Status)
	assert.Positive(t, runner.calls)
}

func TestRunOnceRecordsFatalFailure(t *testing.T) {
	history := &recordingStore{}
	c := newConverger("@hourly", &fakeRunner{fail: true}, history)

	err := c.runOnce(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fatal step install-os-packages")

	// The failed run is still persisted
	require.Len(t, history.saved, 1)
	assert.Equal(t, models.RunStatusFailed, history.saved[0].Status)
}

func TestRunOnceWithoutHistory(t *testing.T) {
	c := newConverger("@hourly", &fakeRunner{}, nil)
	require.NoError(t, c.runOnce(context.Background()))
}
