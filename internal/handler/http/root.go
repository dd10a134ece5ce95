// Package http assembles the pipeline's HTTP surface: the root health
// handler plus the Register call that wires every sub-package's routes
// and middleware onto one mux.
package http

import (
	"log/slog"
	"net/http"
	"time"

	"blotter/internal/handler/http/debug"
	"blotter/internal/handler/http/graphview"
	"blotter/internal/handler/http/incidents"
	"blotter/internal/handler/http/mapview"
	"blotter/internal/handler/http/middleware"
	"blotter/internal/handler/http/refresh"
	"blotter/internal/handler/http/requestid"
	"blotter/internal/handler/http/respond"
	"blotter/internal/infra/enricher"
	"blotter/internal/infra/parser"
	"blotter/internal/pkg/ratelimit"
	"blotter/internal/repository"
	"blotter/internal/usecase/query"
	usecaseRefresh "blotter/internal/usecase/refresh"
)

type rootResponse struct {
	Service string `json:"service"`
	Version string `json:"version"`
	Status  string `json:"status"`
}

// Root handles GET /: a minimal service-identity and liveness check,
// deliberately not the multi-subsystem health report some HTTP
// services expose — this pipeline has no reason to surface database
// pool stats or rate-limiter internals to an unauthenticated caller.
func Root(version string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		respond.JSON(w, http.StatusOK, rootResponse{Service: "blotter", Version: version, Status: "ok"})
	}
}

// Deps collects every dependency Register needs to wire the full HTTP
// surface.
type Deps struct {
	Sources  repository.SourceRepository
	Refresh  *usecaseRefresh.Service
	Query    *query.Service
	Parsers  *parser.Registry
	Enricher enricher.Enricher
	Logger   *slog.Logger
	Env      string
	Version  string
}

// Register builds the full mux: health root, refresh/incidents/graph/map
// surfaces, dev-only debug surface, and the standard middleware chain
// (request ID, logging, panic recovery, rate limiting).
func Register(deps Deps) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /", Root(deps.Version))

	refresh.Register(mux, deps.Refresh, deps.Logger)
	incidents.Register(mux, deps.Query, deps.Logger)
	graphview.Register(mux, deps.Query, deps.Logger)
	mapview.Register(mux, deps.Query, deps.Logger)
	debug.Register(mux, deps.Env, debug.Handlers{
		Sources:  deps.Sources,
		Parsers:  deps.Parsers,
		Enricher: deps.Enricher,
		Logger:   deps.Logger,
	})

	limiter := ratelimit.New(60, time.Minute) // 60 req/min per IP, applies to the whole surface
	chain := middleware.Chain(
		requestid.Middleware,
		middleware.Logging(deps.Logger),
		middleware.Recover(deps.Logger),
		limiter.Middleware,
	)
	return chain(mux)
}
