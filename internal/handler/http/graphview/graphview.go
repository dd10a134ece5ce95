// Package graphview exposes the C8 query surface's graph() derivation
// over HTTP: GET /api/graph?region=.
package graphview

import (
	"log/slog"
	"net/http"

	"blotter/internal/handler/http/requestid"
	"blotter/internal/handler/http/respond"
	"blotter/internal/usecase/query"
)

// Handlers implements the graph HTTP surface.
type Handlers struct {
	Svc    *query.Service
	Logger *slog.Logger
}

type nodeDTO struct {
	ID      string `json:"id"`
	Kind    string `json:"kind"`
	Label   string `json:"label"`
	Cluster string `json:"cluster,omitempty"`
}

type linkDTO struct {
	Source string `json:"source"`
	Target string `json:"target"`
	Type   string `json:"type"`
}

type graphResponse struct {
	Region string    `json:"region"`
	Nodes  []nodeDTO `json:"nodes"`
	Links  []linkDTO `json:"links"`
}

// Get handles GET /api/graph?region=.
func (h Handlers) Get(w http.ResponseWriter, r *http.Request) {
	region := r.URL.Query().Get("region")

	graph, err := h.Svc.Graph(r.Context(), region)
	if err != nil {
		h.Logger.Error("derive graph failed",
			slog.String("request_id", requestid.FromContext(r.Context())),
			slog.String("region", region),
			slog.Any("error", err))
		respond.SafeError(w, http.StatusInternalServerError, err)
		return
	}

	nodes := make([]nodeDTO, 0, len(graph.Nodes))
	for _, n := range graph.Nodes {
		nodes = append(nodes, nodeDTO{ID: n.ID, Kind: string(n.Kind), Label: n.Label, Cluster: n.Cluster})
	}
	links := make([]linkDTO, 0, len(graph.Edges))
	for _, e := range graph.Edges {
		links = append(links, linkDTO{Source: e.Source, Target: e.Target, Type: string(e.Type)})
	}

	respond.JSON(w, http.StatusOK, graphResponse{Region: region, Nodes: nodes, Links: links})
}

// Register wires the graph HTTP surface onto mux.
func Register(mux *http.ServeMux, svc *query.Service, logger *slog.Logger) {
	h := Handlers{Svc: svc, Logger: logger}
	mux.HandleFunc("GET /api/graph", h.Get)
}
