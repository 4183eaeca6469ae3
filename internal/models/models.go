package models

import (
	"time"
)

// Run statuses recorded in the history store
const (
	RunStatusRunning   = "running"
	RunStatusSucceeded = "succeeded"
	RunStatusFailed    = "failed"
)

// Step statuses
const (
	StepStatusSucceeded = "succeeded"
	StepStatusFailed    = "failed"
	StepStatusSkipped   = "skipped"
)

// Run represents a single provisioning run
type Run struct {
	ID         string        `json:"id"`
	Mode       string        `json:"mode"` // install, converge
	DevInstall bool          `json:"dev_install"`
	DryRun     bool          `json:"dry_run"`
	OSRelease  string        `json:"os_release,omitempty"` // e.g. "16.04"
	Status     string        `json:"status"`
	ExitCode   int           `json:"exit_code"`
	Steps      []*StepRecord `json:"steps,omitempty"`
	StartedAt  time.Time     `json:"started_at"`
	FinishedAt *time.Time    `json:"finished_at,omitempty"`
}

// StepRecord represents the outcome of one provisioning step
type StepRecord struct {
	ID        string    `json:"id"`
	RunID     string    `json:"run_id"`
	Seq       int       `json:"seq"`
	Name      string    `json:"name"`
	Command   string    `json:"command"` // rendered argv
	Fatal     bool      `json:"fatal"`
	Status    string    `json:"status"`
	ExitCode  int       `json:"exit_code"`
	Output    string    `json:"output,omitempty"` // combined output tail
	LatencyMs int64     `json:"latency_ms"`
	CreatedAt time.Time `json:"created_at"`
}

// HostStatus describes the provisioning prerequisites of the host
type HostStatus struct {
	OS         string          `json:"os"`
	Release    string          `json:"release,omitempty"`
	PrettyName string          `json:"pretty_name,omitempty"`
	Tools      map[string]bool `json:"tools"` // tool name -> found on PATH
	CheckedAt  time.Time       `json:"checked_at"`
}
