package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"blotter/internal/domain/entity"
	"blotter/internal/repository"

	"github.com/google/uuid"
)

// JobRepo implements repository.JobRepository.
type JobRepo struct{ db *sql.DB }

// NewJobRepo constructs a JobRepo over db.
func NewJobRepo(db *sql.DB) repository.JobRepository {
	return &JobRepo{db: db}
}

// Create inserts a new RefreshJob in the pending state with a fresh
// job_id, grounded on the teacher's widespread uuid.New() usage for
// request/job identifiers.
func (r *JobRepo) Create(ctx context.Context, region string) (*entity.RefreshJob, error) {
	jobID := uuid.New().String()
	const query = `
INSERT INTO refresh_jobs (job_id, region, status)
VALUES ($1, $2, $3)
RETURNING id, created_at`
	job := &entity.RefreshJob{JobID: jobID, Region: region, Status: entity.JobPending}
	if err := r.db.QueryRowContext(ctx, query, jobID, region, entity.JobPending).
		Scan(&job.ID, &job.CreatedAt); err != nil {
		return nil, fmt.Errorf("Create: %w", err)
	}
	return job, nil
}

// MarkRunning transitions a job from pending to running.
func (r *JobRepo) MarkRunning(ctx context.Context, jobID string) error {
	const query = `UPDATE refresh_jobs SET status = $1, started_at = $2 WHERE job_id = $3 AND status = $4`
	res, err := r.db.ExecContext(ctx, query, entity.JobRunning, time.Now(), jobID, entity.JobPending)
	if err != nil {
		return fmt.Errorf("MarkRunning: %w", err)
	}
	return checkTransitioned(res, "MarkRunning")
}

// MarkSucceeded transitions a job from running to succeeded, stamping
// its terminal counters.
func (r *JobRepo) MarkSucceeded(ctx context.Context, jobID string, newArticles, totalIncidents int64) error {
	const query = `
UPDATE refresh_jobs
SET status = $1, new_articles = $2, total_incidents = $3, completed_at = $4
WHERE job_id = $5 AND status = $6`
	res, err := r.db.ExecContext(ctx, query, entity.JobSucceeded, newArticles, totalIncidents, time.Now(), jobID, entity.JobRunning)
	if err != nil {
		return fmt.Errorf("MarkSucceeded: %w", err)
	}
	return checkTransitioned(res, "MarkSucceeded")
}

// MarkFailed transitions a job from running to failed, recording errMsg.
func (r *JobRepo) MarkFailed(ctx context.Context, jobID string, errMsg string) error {
	const query = `
UPDATE refresh_jobs
SET status = $1, error_message = $2, completed_at = $3
WHERE job_id = $4 AND status = $5`
	res, err := r.db.ExecContext(ctx, query, entity.JobFailed, errMsg, time.Now(), jobID, entity.JobRunning)
	if err != nil {
		return fmt.Errorf("MarkFailed: %w", err)
	}
	return checkTransitioned(res, "MarkFailed")
}

// Get returns the job identified by jobID, or entity.ErrNotFound.
func (r *JobRepo) Get(ctx context.Context, jobID string) (*entity.RefreshJob, error) {
	const query = `
SELECT id, job_id, region, status, new_articles, total_incidents, error_message, created_at, started_at, completed_at
FROM refresh_jobs WHERE job_id = $1`
	var job entity.RefreshJob
	err := r.db.QueryRowContext(ctx, query, jobID).Scan(
		&job.ID, &job.JobID, &job.Region, &job.Status, &job.NewArticles, &job.TotalIncidents,
		&job.ErrorMessage, &job.CreatedAt, &job.StartedAt, &job.CompletedAt,
	)
	if err == sql.ErrNoRows {
		return nil, entity.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("Get: %w", err)
	}
	return &job, nil
}

func checkTransitioned(res sql.Result, op string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: no matching job in the expected prior state", op)
	}
	return nil
}
