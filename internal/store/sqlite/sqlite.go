package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"github.com/ambry-data/ambryctl/internal/models"
	"github.com/ambry-data/ambryctl/internal/store"
)

// SQLite implements the Store interface for SQLite
type SQLite struct {
	db     *sql.DB
	config *store.Config
}

// New creates a new SQLite store instance
func New(config *store.Config) (*SQLite, error) {
	if config == nil || config.Path == "" {
		return nil, fmt.Errorf("store path is required")
	}
	return &SQLite{config: config}, nil
}

// Connect establishes connection to SQLite
func (s *SQLite) Connect(ctx context.Context) error {
	// Expand the path (handle ~ and relative paths)
	dbPath := s.config.Path
	if strings.HasPrefix(dbPath, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("failed to get home directory: %w", err)
		}
		dbPath = filepath.Join(home, dbPath[1:])
	} else if !filepath.IsAbs(dbPath) {
		absPath, err := filepath.Abs(dbPath)
		if err != nil {
			return fmt.Errorf("failed to resolve absolute path: %w", err)
		}
		dbPath = absPath
	}

	// Ensure the directory exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create store directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return fmt.Errorf("failed to open SQLite database at path '%s': %w", dbPath, err)
	}

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to ping SQLite database at path '%s': %w", dbPath, err)
	}

	s.db = db

	if err := s.createTables(ctx); err != nil {
		return fmt.Errorf("failed to create tables: %w", err)
	}

	return nil
}

// Disconnect closes the SQLite connection
func (s *SQLite) Disconnect(ctx context.Context) error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Ping checks the database connection
func (s *SQLite) Ping(ctx context.Context) error {
	if s.db == nil {
		return fmt.Errorf("not connected to store")
	}
	return s.db.PingContext(ctx)
}

// DB exposes the underlying handle for migrations
func (s *SQLite) DB() *sql.DB {
	return s.db
}

// createTables creates necessary tables
func (s *SQLite) createTables(ctx context.Context) error {
	createRunsTable := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		mode TEXT NOT NULL,
		dev_install BOOLEAN NOT NULL DEFAULT 0,
		dry_run BOOLEAN NOT NULL DEFAULT 0,
		os_release TEXT,
		status TEXT NOT NULL,
		exit_code INTEGER NOT NULL DEFAULT 0,
		started_at DATETIME NOT NULL,
		finished_at DATETIME
	);`

	createStepsTable := `
	CREATE TABLE IF NOT EXISTS steps (
		id TEXT PRIMARY KEY,
		run_id TEXT NOT NULL,
		seq INTEGER NOT NULL,
		name TEXT NOT NULL,
		command TEXT NOT NULL,
		fatal BOOLEAN NOT NULL DEFAULT 0,
		status TEXT NOT NULL,
		exit_code INTEGER NOT NULL DEFAULT 0,
		output TEXT,
		latency_ms INTEGER NOT NULL DEFAULT 0,
		created_at DATETIME NOT NULL,
		FOREIGN KEY (run_id) REFERENCES runs(id)
	);`

	createIndexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at);",
		"CREATE INDEX IF NOT EXISTS idx_runs_status ON runs(status);",
		"CREATE INDEX IF NOT EXISTS idx_steps_run_id ON steps(run_id);",
	}

	queries := []string{createRunsTable, createStepsTable}
	queries = append(queries, createIndexes...)

	for _, query := range queries {
		if _, err := s.db.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to execute query: %w", err)
		}
	}

	return nil
}

// Run operations

// SaveRun inserts a completed run with all of its step records
func (s *SQLite) SaveRun(ctx context.Context, run *models.Run) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	insertRun := `
		INSERT INTO runs (id, mode, dev_install, dry_run, os_release, status, exit_code, started_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	if _, err := tx.ExecContext(ctx, insertRun,
		run.ID,
		run.Mode,
		run.DevInstall,
		run.DryRun,
		run.OSRelease,
		run.Status,
		run.ExitCode,
		run.StartedAt,
		run.FinishedAt,
	); err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	insertStep := `
		INSERT INTO steps (id, run_id, seq, name, command, fatal, status, exit_code, output, latency_ms, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	for _, step := range run.Steps {
		if _, err := tx.ExecContext(ctx, insertStep,
			step.ID,
			step.RunID,
			step.Seq,
			step.Name,
			step.Command,
			step.Fatal,
			step.Status,
			step.ExitCode,
			step.Output,
			step.LatencyMs,
			step.CreatedAt,
		); err != nil {
			return fmt.Errorf("failed to insert step %s: %w", step.Name, err)
		}
	}

	return tx.Commit()
}

// GetRun retrieves a run with its steps by ID
func (s *SQLite) GetRun(ctx context.Context, id string) (*models.Run, error) {
	query := `
		SELECT id, mode, dev_install, dry_run, os_release, status, exit_code, started_at, finished_at
		FROM runs WHERE id = ?`

	var run models.Run
	var finishedAt sql.NullTime

	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&run.ID,
		&run.Mode,
		&run.DevInstall,
		&run.DryRun,
		&run.OSRelease,
		&run.Status,
		&run.ExitCode,
		&run.StartedAt,
		&finishedAt,
	)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("run not found: %s", id)
	}
	if err != nil {
		return nil, err
	}

	if finishedAt.Valid {
		run.FinishedAt = &finishedAt.Time
	}

	steps, err := s.listSteps(ctx, id)
	if err != nil {
		return nil, err
	}
	run.Steps = steps

	return &run, nil
}

// ListRuns lists runs, newest first, without step details
func (s *SQLite) ListRuns(ctx context.Context, limit int) ([]*models.Run, error) {
	query := `
		SELECT id, mode, dev_install, dry_run, os_release, status, exit_code, started_at, finished_at
		FROM runs
		ORDER BY started_at DESC`
	args := []interface{}{}

	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []*models.Run
	for rows.Next() {
		var run models.Run
		var finishedAt sql.NullTime

		err := rows.Scan(
			&run.ID,
			&run.Mode,
			&run.DevInstall,
			&run.DryRun,
			&run.OSRelease,
			&run.Status,
			&run.ExitCode,
			&run.StartedAt,
			&finishedAt,
		)
		if err != nil {
			return nil, err
		}

		if finishedAt.Valid {
			run.FinishedAt = &finishedAt.Time
		}

		runs = append(runs, &run)
	}

	return runs, rows.Err()
}

// listSteps loads the step records of a run ordered by sequence
func (s *SQLite) listSteps(ctx context.Context, runID string) ([]*models.StepRecord, error) {
	query := `
		SELECT id, run_id, seq, name, command, fatal, status, exit_code, output, latency_ms, created_at
		FROM steps WHERE run_id = ?
		ORDER BY seq ASC`

	rows, err := s.db.QueryContext(ctx, query, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var steps []*models.StepRecord
	for rows.Next() {
		var step models.StepRecord
		var output sql.NullString

		err := rows.Scan(
			&step.ID,
			&step.RunID,
			&step.Seq,
			&step.Name,
			&step.Command,
			&step.Fatal,
			&step.Status,
			&step.ExitCode,
			&output,
			&step.LatencyMs,
			&step.CreatedAt,
		)
		if err != nil {
			return nil, err
		}

		step.Output = output.String
		steps = append(steps, &step)
	}

	return steps, rows.Err()
}
