// Package metrics provides centralized Prometheus metrics for the
// refresh pipeline and HTTP layer.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics track HTTP request patterns and performance.
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	ActiveConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_active_connections",
			Help: "Number of active HTTP connections",
		},
	)
)

// Pipeline metrics track the refresh orchestrator's C1-C5 stages.
var (
	// SourcesTotal tracks the number of active sources per region.
	SourcesTotal = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "sources_active_total",
			Help: "Number of active sources by region",
		},
		[]string{"region"},
	)

	// ArticlesFetchedTotal counts RawArticles inserted per source.
	ArticlesFetchedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "articles_fetched_total",
			Help: "Total number of new RawArticles inserted by source",
		},
		[]string{"source_id"},
	)

	// EnrichmentTotal counts enrichment attempts by outcome ("ok",
	// "stub_fallback", "failed").
	EnrichmentTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "enrichment_total",
			Help: "Total number of enrichment attempts by outcome",
		},
		[]string{"outcome"},
	)

	// EnrichmentDuration measures a single Enrich call's latency.
	EnrichmentDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "enrichment_duration_seconds",
			Help:    "Time taken to enrich one article",
			Buckets: prometheus.ExponentialBuckets(0.5, 2, 10),
		},
	)

	// SourceCrawlDuration measures one source-task's wall time within a
	// refresh.
	SourceCrawlDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "source_crawl_duration_seconds",
			Help:    "Time taken to process one source within a refresh",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 10),
		},
		[]string{"source_id"},
	)

	// SourceCrawlErrors counts per-source failures by stage ("listing",
	// "upsert", "enrich", "store").
	SourceCrawlErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "source_crawl_errors_total",
			Help: "Total number of per-source crawl errors by stage",
		},
		[]string{"source_id", "stage"},
	)

	// RefreshJobTransitions counts job-registry state transitions.
	RefreshJobTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "refresh_job_transitions_total",
			Help: "Total number of refresh job state transitions",
		},
		[]string{"to_status"},
	)
)

// Database metrics track database performance.
var (
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "db_query_duration_seconds",
			Help:    "Database query duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 10),
		},
		[]string{"operation"},
	)

	DBConnectionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "db_connections_active",
			Help: "Number of active database connections",
		},
	)

	DBConnectionsIdle = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "db_connections_idle",
			Help: "Number of idle database connections",
		},
	)
)

// RecordHTTPRequest records an HTTP request with its metadata.
func RecordHTTPRequest(method, path, status string, duration time.Duration) {
	HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

// RecordOperationDuration records the duration of a named database
// operation.
func RecordOperationDuration(operation string, duration time.Duration) {
	DBQueryDuration.WithLabelValues(operation).Observe(duration.Seconds())
}
