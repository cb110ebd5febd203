package runlog

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hintstechnology/bandarmolony-sub008/internal/contracts"
)

// Repository persists generation run records to PostgreSQL.
//
// Expected table:
//
//	CREATE TABLE generation_runs (
//	    id                BIGSERIAL PRIMARY KEY,
//	    trigger_source    TEXT        NOT NULL,
//	    status            TEXT        NOT NULL,
//	    progress          DOUBLE PRECISION NOT NULL DEFAULT 0,
//	    current_operation TEXT        NOT NULL DEFAULT '',
//	    processed         INT         NOT NULL DEFAULT 0,
//	    created           INT         NOT NULL DEFAULT 0,
//	    skipped           INT         NOT NULL DEFAULT 0,
//	    failed            INT         NOT NULL DEFAULT 0,
//	    failure_reason    TEXT,
//	    started_at        TIMESTAMPTZ NOT NULL DEFAULT NOW(),
//	    finished_at       TIMESTAMPTZ
//	);
type Repository struct {
	db    *pgxpool.Pool
	runID int64
}

// NewRepository creates a run-log repository
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// BeginRun inserts a new run record. Failure here aborts the run.
func (r *Repository) BeginRun(ctx context.Context, source contracts.TriggerSource) error {
	query := `
		INSERT INTO generation_runs (trigger_source, status, started_at)
		VALUES ($1, $2, NOW())
		RETURNING id
	`
	if err := r.db.QueryRow(ctx, query, string(source), string(contracts.RunRunning)).Scan(&r.runID); err != nil {
		return fmt.Errorf("insert generation run: %w", err)
	}
	return nil
}

// UpdateProgress records progress and the current operation
func (r *Repository) UpdateProgress(ctx context.Context, percentage float64, currentOperation string) error {
	query := `
		UPDATE generation_runs
		SET progress = $2, current_operation = $3
		WHERE id = $1
	`
	if _, err := r.db.Exec(ctx, query, r.runID, percentage, currentOperation); err != nil {
		return fmt.Errorf("update run progress: %w", err)
	}
	return nil
}

// MarkCompleted closes the run record with final counters
func (r *Repository) MarkCompleted(ctx context.Context, counters contracts.RunCounters) error {
	query := `
		UPDATE generation_runs
		SET status = $2, progress = 100, processed = $3, created = $4,
		    skipped = $5, failed = $6, finished_at = NOW()
		WHERE id = $1
	`
	_, err := r.db.Exec(ctx, query, r.runID, string(contracts.RunCompleted),
		counters.Processed, counters.Created, counters.Skipped, counters.Failed)
	if err != nil {
		return fmt.Errorf("mark run completed: %w", err)
	}
	return nil
}

// MarkFailed closes the run record with a failure reason
func (r *Repository) MarkFailed(ctx context.Context, reason string) error {
	query := `
		UPDATE generation_runs
		SET status = $2, failure_reason = $3, finished_at = NOW()
		WHERE id = $1
	`
	if _, err := r.db.Exec(ctx, query, r.runID, string(contracts.RunFailed), reason); err != nil {
		return fmt.Errorf("mark run failed: %w", err)
	}
	return nil
}
