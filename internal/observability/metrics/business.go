package metrics

import (
	"fmt"
	"time"
)

// RecordArticlesFetched records the number of new RawArticles inserted
// for one source during a refresh.
func RecordArticlesFetched(sourceID int64, count int64) {
	if count <= 0 {
		return
	}
	ArticlesFetchedTotal.WithLabelValues(fmt.Sprintf("%d", sourceID)).Add(float64(count))
}

// RecordEnrichment records the outcome of one Enrich call: "ok",
// "stub_fallback", or "failed".
func RecordEnrichment(outcome string, duration time.Duration) {
	EnrichmentTotal.WithLabelValues(outcome).Inc()
	EnrichmentDuration.Observe(duration.Seconds())
}

// RecordSourceCrawl records one source-task's duration within a
// refresh.
func RecordSourceCrawl(sourceID int64, duration time.Duration) {
	SourceCrawlDuration.WithLabelValues(fmt.Sprintf("%d", sourceID)).Observe(duration.Seconds())
}

// RecordSourceCrawlError records a per-source failure at the given
// pipeline stage ("listing", "upsert", "enrich", "store").
func RecordSourceCrawlError(sourceID int64, stage string) {
	SourceCrawlErrors.WithLabelValues(fmt.Sprintf("%d", sourceID), stage).Inc()
}

// RecordJobTransition records a refresh job moving to toStatus.
func RecordJobTransition(toStatus string) {
	RefreshJobTransitions.WithLabelValues(toStatus).Inc()
}

// UpdateSourcesTotal updates the active-source gauge for a region.
func UpdateSourcesTotal(region string, count int) {
	SourcesTotal.WithLabelValues(region).Set(float64(count))
}

// RecordDBQuery records the duration of a named database operation.
func RecordDBQuery(operation string, duration time.Duration) {
	DBQueryDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// UpdateDBConnectionStats updates database connection pool statistics.
func UpdateDBConnectionStats(active, idle int) {
	DBConnectionsActive.Set(float64(active))
	DBConnectionsIdle.Set(float64(idle))
}
