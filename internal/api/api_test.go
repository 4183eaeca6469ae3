package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ambry-data/ambryctl/internal/models"
)

// fakeStore serves canned runs for handler tests
type fakeStore struct {
	runs      map[string]*models.Run
	listOrder []string
	lastLimit int
}

func newFakeStore(runs ...*models.Run) *fakeStore {
	fs := &fakeStore{runs: make(map[string]*models.Run)}
	for _, r := range runs {
		fs.runs[r.ID] = r
		fs.listOrder = append(fs.listOrder, r.ID)
	}
	return fs
}

func (f *fakeStore) Connect(ctx context.Context) error    { return nil }
func (f *fakeStore) Disconnect(ctx context.Context) error { return nil }
func (f *fakeStore) Ping(ctx context.Context) error       { return nil }

func (f *fakeStore) SaveRun(ctx context.Context, run *models.Run) error {
	f.runs[run.ID] = run
	f.listOrder = append(f.listOrder, run.ID)
	return nil
}

func (f *fakeStore) GetRun(ctx context.Context, id string) (*models.Run, error) {
	run, ok := f.runs[id]
	if !ok {
		return nil, fmt.Errorf("run not found: %s", id)
	}
	return run, nil
}

func (f *fakeStore) ListRuns(ctx context.Context, limit int) ([]*models.Run, error) {
	f.lastLimit = limit
	var out []*models.Run
	for _, id := range f.listOrder {
		out = append(out, f.runs[id])
	}
	return out, nil
}

func testRun(id string) *models.Run {
	started := time.Date(2015, 3, 10, 12, 0, 0, 0, time.UTC)
	finished := started.Add(2 * time.Minute)
	return &models.Run{
		ID:         id,
		Mode:       "install",
		OSRelease:  "14.04",
		Status:     models.RunStatusSucceeded,
		StartedAt:  started,
		FinishedAt: &finished,
		Steps: []*models.StepRecord{
			{
				RunID:   id,
				Seq:     1,
				Name:    "update-package-index",
				Command: "apt-get update",
				Status:  models.StepStatusSucceeded,
			},
		},
	}
}

func doRequest(t *testing.T, srv *Server, method, path string) (*httptest.ResponseRecorder, APIResponse) {
	t.Helper()

	req := httptest.NewRequest(method, path, nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	var body APIResponse
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	}
	return rec, body
}

func TestHealth(t *testing.T) {
	srv := NewServer(newFakeStore(), "")

	rec, body := doRequest(t, srv, http.MethodGet, "/api/v1/health")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, body.Success)
}

func TestListRuns(t *testing.T) {
	store := newFakeStore(testRun("run-1"), testRun("run-2"))
	srv := NewServer(store, "")

	rec, body := doRequest(t, srv, http.MethodGet, "/api/v1/runs")
	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, body.Success)
	assert.Equal(t, 20, store.lastLimit)

	data, err := json.Marshal(body.Data)
	require.NoError(t, err)
	var runs []RunResponse
	require.NoError(t, json.Unmarshal(data, &runs))

	require.Len(t, runs, 2)
	assert.Equal(t, "run-1", runs[0].ID)
	assert.Equal(t, "14.04", runs[0].OSRelease)
}

func TestListRunsLimitClamping(t *testing.T) {
	store := newFakeStore()
	srv := NewServer(store, "")

	_, _ = doRequest(t, srv, http.MethodGet, "/api/v1/runs?limit=5")
	assert.Equal(t, 5, store.lastLimit)

	_, _ = doRequest(t, srv, http.MethodGet, "/api/v1/runs?limit=9999")
	assert.Equal(t, 20, store.lastLimit)

	_, _ = doRequest(t, srv, http.MethodGet, "/api/v1/runs?limit=bogus")
	assert.Equal(t, 20, store.lastLimit)
}

func TestGetRun(t *testing.T) {
	srv := NewServer(newFakeStore(testRun("run-1")), "")

	rec, body := doRequest(t, srv, http.MethodGet, "/api/v1/runs/run-1")
	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, body.Success)

	data, err := json.Marshal(body.Data)
	require.NoError(t, err)
	var run RunResponse
	require.NoError(t, json.Unmarshal(data, &run))

	assert.Equal(t, "run-1", run.ID)
	require.Len(t, run.Steps, 1)
	assert.Equal(t, "update-package-index", run.Steps[0].Name)
}

func TestGetRunNotFound(t *testing.T) {
	srv := NewServer(newFakeStore(), "")

	rec, body := doRequest(t, srv, http.MethodGet, "/api/v1/runs/missing")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.False(t, body.Success)
	assert.Contains(t, body.Error, "Run not found")
}

func TestNilHistoryStore(t *testing.T) {
	srv := NewServer(nil, "")

	rec, body := doRequest(t, srv, http.MethodGet, "/api/v1/runs")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.False(t, body.Success)
}

func TestStatusEndpoint(t *testing.T) {
	srv := NewServer(newFakeStore(), "")

	rec, body := doRequest(t, srv, http.MethodGet, "/api/v1/status")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, body.Success)
}

func TestCORSHeaders(t *testing.T) {
	srv := NewServer(newFakeStore(), "https://ops.example.com")

	rec, _ := doRequest(t, srv, http.MethodGet, "/api/v1/health")
	assert.Equal(t, "https://ops.example.com", rec.Header().Get("Access-Control-Allow-Origin"))

	rec, _ = doRequest(t, srv, http.MethodOptions, "/api/v1/health")
	assert.Equal(t, http.StatusNoContent, rec.Code)
}
