// Package debug exposes operator-only diagnostic endpoints gated by
// ENV=dev: a source's raw candidate URLs, and a self-test of the LLM
// enrichment path.
package debug

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"blotter/internal/domain/entity"
	"blotter/internal/handler/http/requestid"
	"blotter/internal/handler/http/respond"
	"blotter/internal/infra/enricher"
	"blotter/internal/infra/parser"
	"blotter/internal/repository"
)

// Handlers implements the debug HTTP surface.
type Handlers struct {
	Sources  repository.SourceRepository
	Parsers  *parser.Registry
	Enricher enricher.Enricher
	Logger   *slog.Logger
}

type candidatesResponse struct {
	SourceID int64    `json:"sourceId"`
	URLs     []string `json:"urls"`
}

// Candidates handles GET /api/debug/candidates?source_id=: runs the
// source's parser against its listing page and returns the raw
// candidate URLs discovered, without touching the store.
func (h Handlers) Candidates(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("source_id")
	sourceID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		respond.SafeError(w, http.StatusBadRequest, errSourceIDInvalid)
		return
	}

	source, err := h.Sources.Get(r.Context(), sourceID)
	if err != nil {
		if err == entity.ErrNotFound {
			respond.SafeError(w, http.StatusNotFound, err)
			return
		}
		respond.SafeError(w, http.StatusInternalServerError, err)
		return
	}

	p, err := h.Parsers.Get(source.ParserID)
	if err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}

	articles, err := p.FetchNew(r.Context(), *source, nil)
	if err != nil {
		h.Logger.Warn("debug candidates: fetch failed",
			slog.String("request_id", requestid.FromContext(r.Context())),
			slog.Int64("source_id", sourceID), slog.Any("error", err))
		respond.SafeError(w, http.StatusInternalServerError, err)
		return
	}

	urls := make([]string, 0, len(articles))
	for _, a := range articles {
		urls = append(urls, a.URL)
	}
	respond.JSON(w, http.StatusOK, candidatesResponse{SourceID: sourceID, URLs: urls})
}

type enrichmentCheckResponse struct {
	OK            bool   `json:"ok"`
	ModelName     string `json:"model_name"`
	PromptVersion string `json:"prompt_version"`
	Severity      string `json:"severity"`
	CrimeCategory string `json:"crime_category"`
}

// EnrichmentCheck handles GET /api/debug/enrichment-check: runs one
// synthetic article through the configured enricher and reports the
// outcome, to distinguish a live LLM path from the stub fallback
// without waiting on a real refresh.
func (h Handlers) EnrichmentCheck(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	article := entity.RawArticle{
		ID:       -1,
		TitleRaw: "Debug self-test: single-vehicle collision on Main Street",
		BodyRaw:  "A single-vehicle collision was reported on Main Street near 4th Avenue. No injuries reported. Police are investigating.",
	}
	sourceCtx := enricher.SourceContext{AgencyName: "Debug Self-Test", RegionLabel: "debug"}

	incident, err := h.Enricher.Enrich(ctx, article, sourceCtx)
	if err != nil {
		h.Logger.Warn("debug enrichment check failed",
			slog.String("request_id", requestid.FromContext(r.Context())), slog.Any("error", err))
		respond.JSON(w, http.StatusOK, enrichmentCheckResponse{OK: false})
		return
	}

	respond.JSON(w, http.StatusOK, enrichmentCheckResponse{
		OK:            true,
		ModelName:     incident.LLMModel,
		PromptVersion: incident.PromptVersion,
		Severity:      string(incident.Severity),
		CrimeCategory: incident.CrimeCategory,
	})
}

// Register wires the debug HTTP surface onto mux, but only when env is
// "dev" — these endpoints run arbitrary parser fetches and a live LLM
// call, which is never appropriate to expose in production.
func Register(mux *http.ServeMux, env string, h Handlers) {
	if env != "dev" {
		return
	}
	mux.HandleFunc("GET /api/debug/candidates", h.Candidates)
	mux.HandleFunc("GET /api/debug/enrichment-check", h.EnrichmentCheck)
}
