package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"blotter/internal/domain/entity"
	"blotter/internal/repository"

	"github.com/google/uuid"
)

// JobStore is an in-memory repository.JobRepository enforcing the same
// pending -> running -> {succeeded | failed} transition guard the
// postgres JobRepo enforces via a guarded UPDATE.
type JobStore struct {
	mu     sync.Mutex
	nextID int64
	byJob  map[string]*entity.RefreshJob
}

// NewJobStore constructs an empty JobStore.
func NewJobStore() repository.JobRepository {
	return &JobStore{byJob: make(map[string]*entity.RefreshJob)}
}

func (s *JobStore) Create(_ context.Context, region string) (*entity.RefreshJob, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	job := &entity.RefreshJob{
		ID:        s.nextID,
		JobID:     uuid.New().String(),
		Region:    region,
		Status:    entity.JobPending,
		CreatedAt: time.Now(),
	}
	s.byJob[job.JobID] = job
	clone := *job
	return &clone, nil
}

func (s *JobStore) transition(jobID string, from, to entity.JobStatus, mutate func(*entity.RefreshJob)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.byJob[jobID]
	if !ok {
		return entity.ErrNotFound
	}
	if job.Status != from {
		return fmt.Errorf("job %s: no matching job in the expected prior state", jobID)
	}
	job.Status = to
	mutate(job)
	return nil
}

func (s *JobStore) MarkRunning(_ context.Context, jobID string) error {
	now := time.Now()
	return s.transition(jobID, entity.JobPending, entity.JobRunning, func(j *entity.RefreshJob) {
		j.StartedAt = &now
	})
}

func (s *JobStore) MarkSucceeded(_ context.Context, jobID string, newArticles, totalIncidents int64) error {
	now := time.Now()
	return s.transition(jobID, entity.JobRunning, entity.JobSucceeded, func(j *entity.RefreshJob) {
		j.NewArticles = newArticles
		j.TotalIncidents = totalIncidents
		j.CompletedAt = &now
	})
}

func (s *JobStore) MarkFailed(_ context.Context, jobID string, errMsg string) error {
	now := time.Now()
	return s.transition(jobID, entity.JobRunning, entity.JobFailed, func(j *entity.RefreshJob) {
		j.ErrorMessage = errMsg
		j.CompletedAt = &now
	})
}

func (s *JobStore) Get(_ context.Context, jobID string) (*entity.RefreshJob, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.byJob[jobID]
	if !ok {
		return nil, entity.ErrNotFound
	}
	clone := *job
	return &clone, nil
}
