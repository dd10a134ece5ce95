package entity

import "time"

// JobStatus is the closed state-machine domain for a RefreshJob:
// pending -> running -> {succeeded | failed}. Terminal states are
// immutable.
type JobStatus string

const (
	JobPending   JobStatus = "pending"
	JobRunning   JobStatus = "running"
	JobSucceeded JobStatus = "succeeded"
	JobFailed    JobStatus = "failed"
)

// validTransitions enumerates the only allowed JobStatus transitions.
var validTransitions = map[JobStatus][]JobStatus{
	JobPending: {JobRunning},
	JobRunning: {JobSucceeded, JobFailed},
}

// CanTransition reports whether moving from `from` to `to` is a legal
// RefreshJob state transition.
func CanTransition(from, to JobStatus) bool {
	for _, allowed := range validTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether a status is a terminal (immutable) state.
func (s JobStatus) IsTerminal() bool {
	return s == JobSucceeded || s == JobFailed
}

// RefreshJob is the persisted record of an asynchronous refresh(region)
// invocation, observable by polling get_job.
type RefreshJob struct {
	ID             int64
	JobID          string
	Region         string
	Status         JobStatus
	NewArticles    int64
	TotalIncidents int64
	ErrorMessage   string
	CreatedAt      time.Time
	StartedAt      *time.Time
	CompletedAt    *time.Time
}
