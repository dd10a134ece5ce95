package refresh

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"blotter/internal/domain/entity"
	"blotter/internal/infra/enricher"
	"blotter/internal/infra/parser"
	"blotter/internal/observability/metrics"
	"blotter/internal/observability/tracing"
	"blotter/internal/repository"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

const (
	// defaultFanOut bounds concurrent per-source subtasks per spec §5.
	defaultFanOut = 4
	// defaultSourceTimeout is the per-source deadline spec §4.6 step 2 names.
	defaultSourceTimeout = 45 * time.Second
)

// Result is the aggregate outcome of a region refresh.
type Result struct {
	Region         string
	NewArticles    int64
	TotalIncidents int64
}

// Service drives C3 (parser) -> C4 (store) -> C5 (enricher) for every
// active source in a region, in parallel up to FanOut, each bounded by
// SourceTimeout.
type Service struct {
	Sources       repository.SourceRepository
	Articles      repository.ArticleRepository
	Jobs          repository.JobRepository
	Parsers       *parser.Registry
	Enricher      enricher.Enricher
	FanOut        int
	SourceTimeout time.Duration
}

// NewService constructs a Service with the spec's default fan-out and
// per-source timeout.
func NewService(
	sources repository.SourceRepository,
	articles repository.ArticleRepository,
	jobs repository.JobRepository,
	parsers *parser.Registry,
	enr enricher.Enricher,
) *Service {
	return &Service{
		Sources:       sources,
		Articles:      articles,
		Jobs:          jobs,
		Parsers:       parsers,
		Enricher:      enr,
		FanOut:        defaultFanOut,
		SourceTimeout: defaultSourceTimeout,
	}
}

// Refresh implements the C6 contract:
// refresh(region) -> {region, new_articles, total_incidents} or
// ErrNoActiveSources.
func (s *Service) Refresh(ctx context.Context, region string) (*Result, error) {
	logger := slog.Default()
	start := time.Now()

	sources, err := s.Sources.ActiveSourcesFor(ctx, region)
	if err != nil {
		return nil, fmt.Errorf("list active sources: %w", err)
	}
	if len(sources) == 0 {
		return nil, ErrNoActiveSources
	}
	metrics.UpdateSourcesTotal(region, len(sources))

	var inserted int64
	sem := make(chan struct{}, s.fanOut())
	eg, egCtx := errgroup.WithContext(ctx)

	for _, src := range sources {
		source := src
		eg.Go(func() error {
			sem <- struct{}{}
			defer func() { <-sem }()

			n := s.processSource(egCtx, source)
			atomic.AddInt64(&inserted, n)
			return nil
		})
	}
	// Individual source failures never fail the overall refresh (spec
	// §4.6 step 4); processSource itself never returns an error here.
	_ = eg.Wait()

	total, err := s.Articles.CountIncidents(ctx, region)
	if err != nil {
		return nil, fmt.Errorf("count incidents: %w", err)
	}

	result := &Result{Region: region, NewArticles: inserted, TotalIncidents: total}
	logger.Info("refresh completed",
		slog.String("region", region),
		slog.Int("sources", len(sources)),
		slog.Int64("new_articles", result.NewArticles),
		slog.Int64("total_incidents", result.TotalIncidents),
		slog.Duration("duration", time.Since(start)),
	)
	return result, nil
}

func (s *Service) fanOut() int {
	if s.FanOut <= 0 {
		return defaultFanOut
	}
	return s.FanOut
}

func (s *Service) sourceTimeout() time.Duration {
	if s.SourceTimeout <= 0 {
		return defaultSourceTimeout
	}
	return s.SourceTimeout
}

// processSource runs the C3->C4->C5 pipeline for a single source under
// a bounded deadline. It never returns an error: every failure mode
// (ParserUnknown, ListingFetchFailed, Timeout, PartialSuccess) is
// logged and treated as non-fatal to the region refresh, matching the
// teacher's processSingleSource posture of continuing past recoverable
// per-source failures. touch_source is always called at the end,
// resolving open question 1 in favor of advancing the watermark even
// after a failed listing fetch.
func (s *Service) processSource(ctx context.Context, source *entity.Source) int64 {
	logger := slog.Default().With(slog.Int64("source_id", source.ID), slog.String("parser_id", source.ParserID))
	start := time.Now()

	ctx, span := tracing.GetTracer().Start(ctx, "refresh.processSource",
		trace.WithAttributes(
			attribute.Int64("source.id", source.ID),
			attribute.String("source.parser_id", source.ParserID),
			attribute.String("source.region", source.RegionLabel),
		))
	defer span.End()

	srcCtx, cancel := context.WithTimeout(ctx, s.sourceTimeout())
	defer cancel()

	var inserted int64
	defer func() {
		metrics.RecordSourceCrawl(source.ID, time.Since(start))
		touchCtx := context.WithoutCancel(ctx)
		if err := s.Sources.TouchCrawledAt(touchCtx, source.ID, time.Now()); err != nil {
			logger.Warn("failed to advance source watermark", slog.Any("error", err))
		}
	}()

	p, err := s.Parsers.Get(source.ParserID)
	if err != nil {
		logger.Warn("unknown parser, skipping source", slog.Any("error", err))
		metrics.RecordSourceCrawlError(source.ID, "parser_lookup")
		return 0
	}

	fetchCtx, fetchSpan := tracing.GetTracer().Start(srcCtx, "refresh.fetchListing")
	articles, err := p.FetchNew(fetchCtx, *source, source.LastCheckedAt)
	fetchSpan.End()
	if err != nil {
		logger.Warn("listing fetch failed", slog.Any("error", err))
		metrics.RecordSourceCrawlError(source.ID, "listing")
		return 0
	}

	sourceCtx := enricher.SourceContext{AgencyName: source.AgencyName, RegionLabel: source.RegionLabel}
	for i := range articles {
		article := &articles[i]
		article.SourceID = source.ID

		id, wasInserted, err := s.Articles.UpsertRaw(srcCtx, article)
		if err != nil {
			logger.Warn("upsert raw article failed", slog.String("url", article.URL), slog.Any("error", err))
			metrics.RecordSourceCrawlError(source.ID, "upsert")
			continue
		}
		if !wasInserted {
			continue
		}
		article.ID = id

		articleCtx, articleSpan := tracing.GetTracer().Start(srcCtx, "refresh.enrichArticle",
			trace.WithAttributes(attribute.Int64("article.id", id)))

		enrichStart := time.Now()
		incident, err := s.Enricher.Enrich(articleCtx, *article, sourceCtx)
		if err != nil {
			logger.Warn("enrichment failed", slog.Int64("article_id", id), slog.Any("error", err))
			metrics.RecordSourceCrawlError(source.ID, "enrich")
			metrics.RecordEnrichment("failed", time.Since(enrichStart))
			articleSpan.End()
			continue
		}
		metrics.RecordEnrichment(enrichmentOutcome(incident.LLMModel), time.Since(enrichStart))
		incident.ID = id

		if err := s.Articles.StoreEnriched(articleCtx, &incident); err != nil {
			logger.Warn("store enriched incident failed", slog.Int64("article_id", id), slog.Any("error", err))
			metrics.RecordSourceCrawlError(source.ID, "store")
			articleSpan.End()
			continue
		}
		articleSpan.End()
		inserted++
	}

	metrics.RecordArticlesFetched(source.ID, inserted)
	return inserted
}

// enrichmentOutcome classifies a successful Enrich call for metrics:
// the stub enricher always stamps llm_model="none", so this is the
// cheapest reliable way to tell a real model call from a fallback
// without the enricher package exposing a separate outcome type.
func enrichmentOutcome(llmModel string) string {
	if llmModel == "none" {
		return "stub_fallback"
	}
	return "ok"
}
