package sqlstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/andresuchdata/qms-dashboard/backend-go/internal/pipeline"
)

// ErrRunNotFound is returned by GetRun for unknown ids.
var ErrRunNotFound = errors.New("pipeline run not found")

// RunRepository records pipeline runs and the outcome of every file.
type RunRepository struct {
	db *DB
}

func NewRunRepository(db *DB) *RunRepository {
	return &RunRepository{db: db}
}

func (r *RunRepository) CreateRun(ctx context.Context, run *pipeline.Run) error {
	query := r.db.Rebind(`
		INSERT INTO pipeline_runs (pipeline_name, status, total_files, started_at)
		VALUES (?, ?, ?, ?)
		RETURNING id
	`)
	err := r.db.QueryRowxContext(ctx, query, run.PipelineName, string(run.Status), run.TotalFiles, run.StartedAt.UTC()).Scan(&run.ID)
	if err != nil {
		return fmt.Errorf("failed to create pipeline run: %w", err)
	}
	return nil
}

func (r *RunRepository) UpdateRun(ctx context.Context, run *pipeline.Run) error {
	query := r.db.Rebind(`
		UPDATE pipeline_runs
		SET status = ?, processed_files = ?, failed_files = ?, total_rows = ?, completed_at = ?, error_message = ?
		WHERE id = ?
	`)
	var completedAt interface{}
	if run.CompletedAt != nil {
		completedAt = run.CompletedAt.UTC()
	}
	_, err := r.db.ExecContext(ctx, query,
		string(run.Status), run.ProcessedFiles, run.FailedFiles, run.TotalRows, completedAt, run.ErrorMessage, run.ID)
	if err != nil {
		return fmt.Errorf("failed to update pipeline run %d: %w", run.ID, err)
	}
	return nil
}

func (r *RunRepository) RecordFile(ctx context.Context, runID int64, report pipeline.FileReport) error {
	raw, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to encode report of %s: %w", report.Name, err)
	}
	warnings := 0
	for _, s := range report.Sheets {
		warnings += len(s.Warnings)
	}
	kind := ""
	if len(report.Sheets) > 0 {
		kind = string(report.Sheets[0].Kind)
	}

	query := r.db.Rebind(`
		INSERT INTO pipeline_file_jobs (run_id, file_name, kind, status, rows_read, warnings, error, duration_ms, report)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	_, err = r.db.ExecContext(ctx, query,
		runID, report.Name, kind, string(report.Status), report.Rows(), warnings, report.Error,
		report.Duration.Milliseconds(), string(raw))
	if err != nil {
		return fmt.Errorf("failed to record file %s: %w", report.Name, err)
	}
	return nil
}

const runColumns = `id, pipeline_name, status, total_files, processed_files, failed_files, total_rows,
	started_at, completed_at, error_message`

func (r *RunRepository) GetRun(ctx context.Context, id int64) (*pipeline.Run, error) {
	var run pipeline.Run
	err := r.db.GetContext(ctx, &run, r.db.Rebind(`SELECT `+runColumns+` FROM pipeline_runs WHERE id = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRunNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get pipeline run %d: %w", id, err)
	}
	return &run, nil
}

// ListRuns returns the most recent runs first.
func (r *RunRepository) ListRuns(ctx context.Context, limit int) ([]pipeline.Run, error) {
	if limit <= 0 {
		limit = 20
	}
	var runs []pipeline.Run
	err := r.db.SelectContext(ctx, &runs, r.db.Rebind(`SELECT `+runColumns+` FROM pipeline_runs ORDER BY id DESC LIMIT ?`), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list pipeline runs: %w", err)
	}
	return runs, nil
}

// FileReports returns the stored file reports of a run in insertion order.
func (r *RunRepository) FileReports(ctx context.Context, runID int64) ([]pipeline.FileReport, error) {
	var raw []string
	err := r.db.SelectContext(ctx, &raw, r.db.Rebind(`SELECT report FROM pipeline_file_jobs WHERE run_id = ?`), runID)
	if err != nil {
		return nil, fmt.Errorf("failed to list file jobs of run %d: %w", runID, err)
	}
	out := make([]pipeline.FileReport, 0, len(raw))
	for _, s := range raw {
		var rep pipeline.FileReport
		if err := json.Unmarshal([]byte(s), &rep); err != nil {
			return nil, fmt.Errorf("failed to decode file report: %w", err)
		}
		out = append(out, rep)
	}
	return out, nil
}
