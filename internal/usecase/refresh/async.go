package refresh

import (
	"context"
	"fmt"
	"log/slog"

	"blotter/internal/domain/entity"
	"blotter/internal/observability/metrics"
)

// StartAsync implements the C6 async contract: creates a RefreshJob in
// pending, then runs the refresh in the background, transitioning the
// job through running -> {succeeded | failed}. It returns the job_id
// immediately without waiting for the refresh to complete.
func (s *Service) StartAsync(ctx context.Context, region string) (string, error) {
	job, err := s.Jobs.Create(ctx, region)
	if err != nil {
		return "", fmt.Errorf("create refresh job: %w", err)
	}

	go s.runAsync(job.JobID, region)

	return job.JobID, nil
}

// runAsync executes the refresh detached from the HTTP request that
// triggered it, using a background context so client disconnection
// never cancels an in-flight job.
func (s *Service) runAsync(jobID, region string) {
	ctx := context.Background()
	logger := slog.Default().With(slog.String("job_id", jobID), slog.String("region", region))

	if err := s.Jobs.MarkRunning(ctx, jobID); err != nil {
		logger.Error("failed to mark job running", slog.Any("error", err))
		return
	}
	metrics.RecordJobTransition("running")

	result, err := s.Refresh(ctx, region)
	if err != nil {
		logger.Warn("async refresh failed", slog.Any("error", err))
		if markErr := s.Jobs.MarkFailed(ctx, jobID, err.Error()); markErr != nil {
			logger.Error("failed to mark job failed", slog.Any("error", markErr))
			return
		}
		metrics.RecordJobTransition("failed")
		return
	}

	if err := s.Jobs.MarkSucceeded(ctx, jobID, result.NewArticles, result.TotalIncidents); err != nil {
		logger.Error("failed to mark job succeeded", slog.Any("error", err))
		return
	}
	metrics.RecordJobTransition("succeeded")
}

// GetJob implements the C7 get(job_id) -> RefreshJob | NotFound read,
// exposed here so HTTP handlers need only depend on this service.
func (s *Service) GetJob(ctx context.Context, jobID string) (*entity.RefreshJob, error) {
	job, err := s.Jobs.Get(ctx, jobID)
	if err != nil {
		return nil, err
	}
	return job, nil
}
