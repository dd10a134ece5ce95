package enricher

import (
	"log/slog"
	"os"
)

// NewFromEnv selects the enricher implementation per LLM_PROVIDER:
// "claude" (default) or "openai". The credential for either provider
// is read from the single LLM_API_KEY variable the core recognizes;
// its absence disables enrichment and degrades to StubEnricher,
// matching the teacher's fail-open posture for optional AI
// capabilities (spec §4.5/§6: "absence disables enrichment, enabling
// stub fallback").
func NewFromEnv() Enricher {
	provider := os.Getenv("LLM_PROVIDER")
	apiKey := os.Getenv("LLM_API_KEY")

	switch provider {
	case "openai":
		if apiKey == "" {
			slog.Warn("LLM_PROVIDER=openai but LLM_API_KEY is unset, falling back to stub enricher")
			return NewStubEnricher()
		}
		return NewOpenAIEnricher(apiKey, DefaultOpenAIConfig())
	case "claude", "":
		if apiKey == "" {
			slog.Warn("no LLM_API_KEY configured, falling back to stub enricher")
			return NewStubEnricher()
		}
		return NewClaudeEnricher(apiKey, DefaultClaudeConfig())
	default:
		slog.Warn("unrecognized LLM_PROVIDER, falling back to stub enricher", slog.String("provider", provider))
		return NewStubEnricher()
	}
}
