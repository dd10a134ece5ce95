package enricher

import (
	"context"

	"blotter/internal/domain/entity"
)

// StubEnricher always returns the deterministic fallback incident,
// used when no LLM provider is configured (missing credentials) per
// spec §4.5.
type StubEnricher struct{}

// NewStubEnricher constructs a StubEnricher.
func NewStubEnricher() *StubEnricher {
	return &StubEnricher{}
}

// Enrich implements Enricher.
func (StubEnricher) Enrich(_ context.Context, article entity.RawArticle, _ SourceContext) (entity.EnrichedIncident, error) {
	return stub(article.ID, article.BodyRaw), nil
}
