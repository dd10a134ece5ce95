// Package enricher implements the Enricher contract (C5): turning one
// RawArticle into a structured EnrichedIncident via an LLM classifier,
// with a deterministic stub fallback when no provider is configured or
// the LLM call cannot be trusted.
package enricher

import (
	"context"
	"time"

	"blotter/internal/domain/entity"
)

// SourceContext carries the source-level fields the prompt needs
// beyond the article itself (spec §4.5 step 1): agency display name and
// region label. The publication date is taken from the article.
type SourceContext struct {
	AgencyName  string
	RegionLabel string
}

// Enricher is the C5 contract.
type Enricher interface {
	Enrich(ctx context.Context, article entity.RawArticle, source SourceContext) (entity.EnrichedIncident, error)
}

// promptBodyBudget is the safe character budget body_raw is truncated
// to before being embedded in a prompt (spec §4.5 step 1).
const promptBodyBudget = 8000

// stubSummaryChars is the length of the body prefix used as
// summary_tactical in the stub fallback (spec §4.5).
const stubSummaryChars = 200

// StubPromptVersion and StubModel stamp the fallback path per spec §4.5.
const (
	StubPromptVersion = "stub_v1"
	StubModel         = "none"
)

// stub builds the deterministic fallback EnrichedIncident spec §4.5
// requires when no provider is configured, or on any parse/domain
// validation failure of an LLM response.
func stub(articleID int64, bodyRaw string) entity.EnrichedIncident {
	summary := bodyRaw
	if len(summary) > stubSummaryChars {
		summary = summary[:stubSummaryChars]
	}
	return entity.EnrichedIncident{
		ID:              articleID,
		Severity:        entity.SeverityMedium,
		SummaryTactical: summary,
		Tags:            []string{},
		Entities:        []entity.IncidentEntity{},
		CrimeCategory:   entity.CrimeCategoryUnknown,
		LLMModel:        StubModel,
		PromptVersion:   StubPromptVersion,
		ProcessedAt:     time.Now(),
	}
}

func truncateBody(body string) string {
	if len(body) <= promptBodyBudget {
		return body
	}
	return body[:promptBodyBudget]
}
