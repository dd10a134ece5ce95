package repository

import (
	"context"

	"blotter/internal/domain/entity"
)

// JobRepository persists RefreshJob state transitions (C7). Every
// mutation is a single store operation so concurrent transitions
// serialize naturally at the storage layer.
type JobRepository interface {
	Create(ctx context.Context, region string) (*entity.RefreshJob, error)
	MarkRunning(ctx context.Context, jobID string) error
	MarkSucceeded(ctx context.Context, jobID string, newArticles, totalIncidents int64) error
	MarkFailed(ctx context.Context, jobID string, errMsg string) error
	Get(ctx context.Context, jobID string) (*entity.RefreshJob, error)
}
