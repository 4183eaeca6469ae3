package sqlite

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ambry-data/ambryctl/internal/models"
	"github.com/ambry-data/ambryctl/internal/store"
)

func newTestStore(t *testing.T) *SQLite {
	t.Helper()

	path := filepath.Join(t.TempDir(), "ambryctl.db")
	st, err := New(&store.Config{Path: path})
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, st.Connect(ctx))
	t.Cleanup(func() { _ = st.Disconnect(ctx) })

	return st
}

func sampleRun(startedAt time.Time, status string) *models.Run {
	runID := uuid.New().String()
	finished := startedAt.Add(90 * time.Second)

	run := &models.Run{
		ID:         runID,
		Mode:       "install",
		DevInstall: true,
		OSRelease:  "14.04",
		Status:     status,
		StartedAt:  startedAt,
		FinishedAt: &finished,
	}
	if status == models.RunStatusFailed {
		run.ExitCode = 100
	}

	for i, name := range []string{"update-package-index", "install-os-packages"} {
		run.Steps = append(run.Steps, &models.StepRecord{
			ID:        uuid.New().String(),
			RunID:     runID,
			Seq:       i + 1,
			Name:      name,
			Command:   "apt-get " + name,
			Fatal:     name == "install-os-packages",
			Status:    models.StepStatusSucceeded,
			Output:    "ok",
			LatencyMs: int64(100 * (i + 1)),
			CreatedAt: startedAt,
		})
	}
	return run
}

func TestNewRequiresPath(t *testing.T) {
	_, err := New(nil)
	require.Error(t, err)

	_, err = New(&store.Config{})
	require.Error(t, err)
}

func TestConnectCreatesDatabaseFile(t *testing.T) {
	st := newTestStore(t)
	require.NoError(t, st.Ping(context.Background()))
	assert.NotNil(t, st.DB())
}

func TestSaveAndGetRun(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	run := sampleRun(time.Now().UTC().Truncate(time.Second), models.RunStatusFailed)
	require.NoError(t, st.SaveRun(ctx, run))

	got, err := st.GetRun(ctx, run.ID)
	require.NoError(t, err)

	assert.Equal(t, run.ID, got.ID)
	assert.Equal(t, "install", got.Mode)
	assert.True(t, got.DevInstall)
	assert.Equal(t, "14.04", got.OSRelease)
	assert.Equal(t, models.RunStatusFailed, got.Status)
	assert.Equal(t, 100, got.ExitCode)
	require.NotNil(t, got.FinishedAt)

	require.Len(t, got.Steps, 2)
	assert.Equal(t, "update-package-index", got.Steps[0].Name)
	assert.Equal(t, "install-os-packages", got.Steps[1].Name)
	assert.True(t, got.Steps[1].Fatal)
	assert.Equal(t, "ok", got.Steps[0].Output)
	assert.Equal(t, int64(100), got.Steps[0].LatencyMs)
}

func TestGetRunNotFound(t *testing.T) {
	st := newTestStore(t)

	_, err := st.GetRun(context.Background(), "no-such-run")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "run not found")
}

func TestListRunsNewestFirst(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	base := time.Now().UTC().Truncate(time.Second).Add(-time.Hour)
	var ids []string
	for i := 0; i < 5; i++ {
		run := sampleRun(base.Add(time.Duration(i)*time.Minute), models.RunStatusSucceeded)
		require.NoError(t, st.SaveRun(ctx, run))
		ids = append(ids, run.ID)
	}

	runs, err := st.ListRuns(ctx, 0)
	require.NoError(t, err)
	require.Len(t, runs, 5)

	// Newest run first, and the listing carries no step detail
	assert.Equal(t, ids[4], runs[0].ID)
	assert.Equal(t, ids[0], runs[4].ID)
	assert.Empty(t, runs[0].Steps)

	limited, err := st.ListRuns(ctx, 2)
	require.NoError(t, err)
	require.Len(t, limited, 2)
	assert.Equal(t, ids[4], limited[0].ID)
	assert.Equal(t, ids[3], limited[1].ID)
}

func TestSaveRunIsAtomic(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	run := sampleRun(time.Now().UTC(), models.RunStatusSucceeded)
	// Duplicate step ID forces the second insert to fail
	run.Steps[1].ID = run.Steps[0].ID

	err := st.SaveRun(ctx, run)
	require.Error(t, err)
	assert.Contains(t, err.Error(), fmt.Sprintf("failed to insert step %s", run.Steps[1].Name))

	// Nothing from the failed transaction may be visible
	runs, listErr := st.ListRuns(ctx, 0)
	require.NoError(t, listErr)
	assert.Empty(t, runs)
}
