// Package refresh exposes the C6 refresh orchestrator over HTTP: a
// blocking refresh, an async job trigger, and job-status polling.
package refresh

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"blotter/internal/domain/entity"
	"blotter/internal/handler/http/requestid"
	"blotter/internal/handler/http/respond"
	"blotter/internal/usecase/refresh"
)

// Handlers implements the refresh HTTP surface against a concrete
// *refresh.Service.
type Handlers struct {
	Svc    *refresh.Service
	Logger *slog.Logger
}

type refreshRequest struct {
	Region string `json:"region"`
}

type refreshResponse struct {
	Region         string `json:"region"`
	NewArticles    int64  `json:"new_articles"`
	TotalIncidents int64  `json:"total_incidents"`
}

// Sync handles POST /api/refresh: runs refresh(region) to completion
// and returns the aggregate counts, or 404 on NoActiveSources.
func (h Handlers) Sync(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := h.Logger.With(slog.String("request_id", requestid.FromContext(ctx)))

	var req refreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.SafeError(w, http.StatusUnprocessableEntity, errors.New("malformed request body"))
		return
	}
	if req.Region == "" {
		respond.SafeError(w, http.StatusBadRequest, errors.New("region is required"))
		return
	}

	result, err := h.Svc.Refresh(ctx, req.Region)
	if err != nil {
		if errors.Is(err, refresh.ErrNoActiveSources) {
			respond.SafeError(w, http.StatusNotFound, err)
			return
		}
		logger.Error("refresh failed", slog.String("region", req.Region), slog.Any("error", err))
		respond.SafeError(w, http.StatusInternalServerError, err)
		return
	}

	respond.JSON(w, http.StatusOK, refreshResponse{
		Region:         result.Region,
		NewArticles:    result.NewArticles,
		TotalIncidents: result.TotalIncidents,
	})
}

type refreshAsyncResponse struct {
	JobID   string `json:"job_id"`
	Region  string `json:"region"`
	Status  string `json:"status"`
	Message string `json:"message"`
}

// Async handles POST /api/refresh-async: creates a RefreshJob and
// returns its id immediately; the refresh itself runs in the
// background.
func (h Handlers) Async(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := h.Logger.With(slog.String("request_id", requestid.FromContext(ctx)))

	var req refreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.SafeError(w, http.StatusUnprocessableEntity, errors.New("malformed request body"))
		return
	}
	if req.Region == "" {
		respond.SafeError(w, http.StatusBadRequest, errors.New("region is required"))
		return
	}

	jobID, err := h.Svc.StartAsync(ctx, req.Region)
	if err != nil {
		logger.Error("start async refresh failed", slog.String("region", req.Region), slog.Any("error", err))
		respond.SafeError(w, http.StatusInternalServerError, err)
		return
	}

	respond.JSON(w, http.StatusAccepted, refreshAsyncResponse{
		JobID:   jobID,
		Region:  req.Region,
		Status:  string(entity.JobPending),
		Message: "refresh started",
	})
}

type jobResponse struct {
	JobID          string  `json:"job_id"`
	Region         string  `json:"region"`
	Status         string  `json:"status"`
	NewArticles    int64   `json:"new_articles"`
	TotalIncidents int64   `json:"total_incidents"`
	ErrorMessage   string  `json:"error_message,omitempty"`
	CreatedAt      string  `json:"created_at"`
	StartedAt      *string `json:"started_at,omitempty"`
	CompletedAt    *string `json:"completed_at,omitempty"`
}

// Status handles GET /api/refresh-status/{job_id}: a full RefreshJob
// projection, or 404 if the job is unknown.
func (h Handlers) Status(w http.ResponseWriter, r *http.Request) {
	jobID := r.PathValue("job_id")
	if jobID == "" {
		respond.SafeError(w, http.StatusBadRequest, errors.New("job_id is required"))
		return
	}

	job, err := h.Svc.GetJob(r.Context(), jobID)
	if err != nil {
		if errors.Is(err, entity.ErrNotFound) {
			respond.SafeError(w, http.StatusNotFound, err)
			return
		}
		h.Logger.Error("get job failed", slog.String("job_id", jobID), slog.Any("error", err))
		respond.SafeError(w, http.StatusInternalServerError, err)
		return
	}

	respond.JSON(w, http.StatusOK, toJobResponse(job))
}

func toJobResponse(job *entity.RefreshJob) jobResponse {
	resp := jobResponse{
		JobID:          job.JobID,
		Region:         job.Region,
		Status:         string(job.Status),
		NewArticles:    job.NewArticles,
		TotalIncidents: job.TotalIncidents,
		ErrorMessage:   job.ErrorMessage,
		CreatedAt:      job.CreatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
	}
	if job.StartedAt != nil {
		s := job.StartedAt.UTC().Format("2006-01-02T15:04:05Z07:00")
		resp.StartedAt = &s
	}
	if job.CompletedAt != nil {
		c := job.CompletedAt.UTC().Format("2006-01-02T15:04:05Z07:00")
		resp.CompletedAt = &c
	}
	return resp
}

// Register wires the refresh HTTP surface onto mux.
func Register(mux *http.ServeMux, svc *refresh.Service, logger *slog.Logger) {
	h := Handlers{Svc: svc, Logger: logger}
	mux.HandleFunc("POST /api/refresh", h.Sync)
	mux.HandleFunc("POST /api/refresh-async", h.Async)
	mux.HandleFunc("GET /api/refresh-status/{job_id}", h.Status)
}
