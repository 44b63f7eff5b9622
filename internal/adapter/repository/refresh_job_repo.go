package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"insight-orchestrator/internal/domain"
)

type refreshJobRepository struct {
	pool *pgxpool.Pool
}

// NewRefreshJobRepository creates the Postgres-backed refresh job queue.
func NewRefreshJobRepository(pool *pgxpool.Pool) domain.RefreshJobRepository {
	return &refreshJobRepository{pool: pool}
}

// Enqueue inserts a new refresh job unless one is already pending for the
// same account.
func (r *refreshJobRepository) Enqueue(ctx context.Context, accountID string) error {
	query := `
		INSERT INTO insight_refresh_jobs (id, account_id, status, created_at, updated_at)
		SELECT $1, $2, 'new', $3, $3
		WHERE NOT EXISTS (
			SELECT 1 FROM insight_refresh_jobs
			WHERE account_id = $2 AND status IN ('new', 'processing')
		)
	`
	now := time.Now()
	if _, err := r.pool.Exec(ctx, query, uuid.NewString(), accountID, now); err != nil {
		return fmt.Errorf("failed to enqueue refresh job: %w", err)
	}
	return nil
}

// AcquireNextJob atomically claims the oldest new job, marking it
// processing so concurrent workers skip it.
func (r *refreshJobRepository) AcquireNextJob(ctx context.Context) (*domain.RefreshJob, error) {
	query := `
		WITH next_job AS (
			SELECT id
			FROM insight_refresh_jobs
			WHERE status = 'new'
			ORDER BY created_at ASC
			LIMIT 1
			FOR UPDATE SKIP LOCKED
		)
		UPDATE insight_refresh_jobs
		SET status = 'processing', updated_at = $1
		FROM next_job
		WHERE insight_refresh_jobs.id = next_job.id
		RETURNING insight_refresh_jobs.id, insight_refresh_jobs.account_id,
			insight_refresh_jobs.status, insight_refresh_jobs.error_message,
			insight_refresh_jobs.created_at, insight_refresh_jobs.updated_at
	`

	var job domain.RefreshJob
	err := r.pool.QueryRow(ctx, query, time.Now()).Scan(
		&job.ID,
		&job.AccountID,
		&job.Status,
		&job.ErrorMessage,
		&job.CreatedAt,
		&job.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to acquire refresh job: %w", err)
	}
	return &job, nil
}

func (r *refreshJobRepository) UpdateStatus(ctx context.Context, id string, status domain.RefreshJobStatus, errorMessage *string) error {
	query := `
		UPDATE insight_refresh_jobs
		SET status = $1, error_message = $2, updated_at = $3
		WHERE id = $4
	`
	if _, err := r.pool.Exec(ctx, query, status, errorMessage, time.Now(), id); err != nil {
		return fmt.Errorf("failed to update refresh job status: %w", err)
	}
	return nil
}
