package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ambry-data/ambryctl/internal/models"
)

// Run response structures

type RunResponse struct {
	ID         string        `json:"id"`
	Mode       string        `json:"mode"`
	DevInstall bool          `json:"dev_install"`
	DryRun     bool          `json:"dry_run"`
	OSRelease  string        `json:"os_release,omitempty"`
	Status     string        `json:"status"`
	ExitCode   int           `json:"exit_code"`
	Steps      []StepResponse `json:"steps,omitempty"`
	StartedAt  time.Time     `json:"started_at"`
	FinishedAt *time.Time    `json:"finished_at,omitempty"`
}

type StepResponse struct {
	Seq       int    `json:"seq"`
	Name      string `json:"name"`
	Command   string `json:"command"`
	Fatal     bool   `json:"fatal"`
	Status    string `json:"status"`
	ExitCode  int    `json:"exit_code"`
	Output    string `json:"output,omitempty"`
	LatencyMs int64  `json:"latency_ms"`
}

// Run endpoints

// listRuns handles GET /api/v1/runs
func (s *Server) listRuns(c *gin.Context) {
	if s.history == nil {
		s.errorResponse(c, http.StatusServiceUnavailable, "Run history store is not configured")
		return
	}

	limitStr := c.DefaultQuery("limit", "20")
	limit, _ := strconv.Atoi(limitStr)
	if limit <= 0 || limit > 500 {
		limit = 20
	}

	runs, err := s.history.ListRuns(c.Request.Context(), limit)
	if err != nil {
		s.errorResponse(c, http.StatusInternalServerError, "Failed to list runs: "+err.Error())
		return
	}

	responses := make([]RunResponse, len(runs))
	for i, run := range runs {
		responses[i] = toRunResponse(run)
	}

	s.successResponse(c, responses)
}

// getRun handles GET /api/v1/runs/:id
func (s *Server) getRun(c *gin.Context) {
	if s.history == nil {
		s.errorResponse(c, http.StatusServiceUnavailable, "Run history store is not configured")
		return
	}

	id := c.Param("id")

	run, err := s.history.GetRun(c.Request.Context(), id)
	if err != nil {
		s.errorResponse(c, http.StatusNotFound, "Run not found: "+err.Error())
		return
	}

	s.successResponse(c, toRunResponse(run))
}

func toRunResponse(run *models.Run) RunResponse {
	resp := RunResponse{
		ID:         run.ID,
		Mode:       run.Mode,
		DevInstall: run.DevInstall,
		DryRun:     run.DryRun,
		OSRelease:  run.OSRelease,
		Status:     run.Status,
		ExitCode:   run.ExitCode,
		StartedAt:  run.StartedAt,
		FinishedAt: run.FinishedAt,
	}

	for _, step := range run.Steps {
		resp.Steps = append(resp.Steps, StepResponse{
			Seq:       step.Seq,
			Name:      step.Name,
			Command:   step.Command,
			Fatal:     step.Fatal,
			Status:    step.Status,
			ExitCode:  step.ExitCode,
			Output:    step.Output,
			LatencyMs: step.LatencyMs,
		})
	}

	return resp
}
