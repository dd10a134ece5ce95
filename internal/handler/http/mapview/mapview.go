// Package mapview exposes the C8 query surface's map() projection over
// HTTP: GET /api/map?region=.
package mapview

import (
	"log/slog"
	"net/http"

	"blotter/internal/handler/http/requestid"
	"blotter/internal/handler/http/respond"
	"blotter/internal/usecase/query"
)

// Handlers implements the map HTTP surface.
type Handlers struct {
	Svc    *query.Service
	Logger *slog.Logger
}

type markerDTO struct {
	IncidentID int64   `json:"incidentId"`
	Lat        float64 `json:"lat"`
	Lng        float64 `json:"lng"`
	Label      string  `json:"label"`
	Severity   string  `json:"severity"`
	AgencyName string  `json:"agencyName"`
}

type mapResponse struct {
	Region  string      `json:"region"`
	Markers []markerDTO `json:"markers"`
}

// Get handles GET /api/map?region=.
func (h Handlers) Get(w http.ResponseWriter, r *http.Request) {
	region := r.URL.Query().Get("region")

	markers, err := h.Svc.Map(r.Context(), region)
	if err != nil {
		h.Logger.Error("derive map failed",
			slog.String("request_id", requestid.FromContext(r.Context())),
			slog.String("region", region),
			slog.Any("error", err))
		respond.SafeError(w, http.StatusInternalServerError, err)
		return
	}

	dtos := make([]markerDTO, 0, len(markers))
	for _, m := range markers {
		dtos = append(dtos, markerDTO{
			IncidentID: m.IncidentID,
			Lat:        m.Lat,
			Lng:        m.Lng,
			Label:      m.Label,
			Severity:   string(m.Severity),
			AgencyName: m.AgencyName,
		})
	}

	respond.JSON(w, http.StatusOK, mapResponse{Region: region, Markers: dtos})
}

// Register wires the map HTTP surface onto mux.
func Register(mux *http.ServeMux, svc *query.Service, logger *slog.Logger) {
	h := Handlers{Svc: svc, Logger: logger}
	mux.HandleFunc("GET /api/map", h.Get)
}
