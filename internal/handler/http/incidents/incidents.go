// Package incidents exposes the C8 query surface's incidents() read
// over HTTP: GET /api/incidents?region=&limit=.
package incidents

import (
	"log/slog"
	"net/http"
	"strconv"

	"blotter/internal/handler/http/requestid"
	"blotter/internal/handler/http/respond"
	"blotter/internal/usecase/query"
)

// Handlers implements the incidents HTTP surface.
type Handlers struct {
	Svc    *query.Service
	Logger *slog.Logger
}

type listResponse struct {
	Region    string `json:"region"`
	Incidents []DTO  `json:"incidents"`
}

// List handles GET /api/incidents?region=&limit=.
func (h Handlers) List(w http.ResponseWriter, r *http.Request) {
	region := r.URL.Query().Get("region")

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			respond.SafeError(w, http.StatusBadRequest, errLimitInvalid)
			return
		}
		limit = n
	}

	rows, err := h.Svc.Incidents(r.Context(), region, limit)
	if err != nil {
		h.Logger.Error("list incidents failed",
			slog.String("request_id", requestid.FromContext(r.Context())),
			slog.String("region", region),
			slog.Any("error", err))
		respond.SafeError(w, http.StatusInternalServerError, err)
		return
	}

	dtos := make([]DTO, 0, len(rows))
	for _, row := range rows {
		dtos = append(dtos, toDTO(row))
	}

	respond.JSON(w, http.StatusOK, listResponse{Region: region, Incidents: dtos})
}

// Register wires the incidents HTTP surface onto mux.
func Register(mux *http.ServeMux, svc *query.Service, logger *slog.Logger) {
	h := Handlers{Svc: svc, Logger: logger}
	mux.HandleFunc("GET /api/incidents", h.List)
}
