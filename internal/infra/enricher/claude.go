package enricher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"blotter/internal/domain/entity"
	"blotter/internal/resilience/circuitbreaker"
	"blotter/internal/resilience/retry"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/sony/gobreaker"
)

// ClaudeConfig holds the Claude enricher's model and call-shaping
// knobs, loaded from environment variables.
type ClaudeConfig struct {
	Model     string
	MaxTokens int
	Timeout   time.Duration
}

// DefaultClaudeConfig returns the default Claude enricher configuration.
func DefaultClaudeConfig() ClaudeConfig {
	return ClaudeConfig{
		Model:     string(anthropic.ModelClaudeSonnet4_5_20250929),
		MaxTokens: 1024,
		Timeout:   60 * time.Second,
	}
}

// ClaudeEnricher implements Enricher using Anthropic's Claude API,
// with circuit breaker and retry logic matching every other outbound
// call in this module. It is the primary enricher per spec §4.5.
type ClaudeEnricher struct {
	client         anthropic.Client
	circuitBreaker *circuitbreaker.CircuitBreaker
	retryConfig    retry.Config
	config         ClaudeConfig
}

// NewClaudeEnricher constructs a ClaudeEnricher with the given API key.
func NewClaudeEnricher(apiKey string, config ClaudeConfig) *ClaudeEnricher {
	return &ClaudeEnricher{
		client:         anthropic.NewClient(option.WithAPIKey(apiKey)),
		circuitBreaker: circuitbreaker.New(circuitbreaker.ClaudeAPIConfig()),
		retryConfig:    retry.EnricherConfig(),
		config:         config,
	}
}

// Enrich implements Enricher. On any LLM, parse, or domain-validation
// failure it falls through to the stub path rather than propagating
// the error, per spec §4.5 step 3 — enrichment failures must never
// abort a refresh.
func (c *ClaudeEnricher) Enrich(ctx context.Context, article entity.RawArticle, source SourceContext) (entity.EnrichedIncident, error) {
	ctx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	prompt := buildPrompt(article, source)

	var raw string
	retryErr := retry.WithBackoff(ctx, c.retryConfig, func() error {
		cbResult, err := c.circuitBreaker.Execute(func() (interface{}, error) {
			return c.doEnrich(ctx, prompt)
		})
		if err != nil {
			if errors.Is(err, gobreaker.ErrOpenState) {
				slog.Warn("claude api circuit breaker open, falling back to stub enrichment",
					slog.String("state", c.circuitBreaker.State().String()))
			}
			return err
		}
		raw = cbResult.(string)
		return nil
	})
	if retryErr != nil {
		slog.Warn("claude enrichment failed, falling back to stub",
			slog.Int64("article_id", article.ID),
			slog.String("error", retryErr.Error()))
		return stub(article.ID, article.BodyRaw), nil
	}

	incident, err := parseResponse(raw, article.ID, fmt.Sprintf("claude:%s", c.config.Model))
	if err != nil {
		slog.Warn("claude response failed validation, falling back to stub",
			slog.Int64("article_id", article.ID),
			slog.String("raw_response", raw),
			slog.String("error", err.Error()))
		return stub(article.ID, article.BodyRaw), nil
	}
	return incident, nil
}

func (c *ClaudeEnricher) doEnrich(ctx context.Context, prompt string) (interface{}, error) {
	message, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(c.config.Model),
		MaxTokens: int64(c.config.MaxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("claude api error: %w", err)
	}
	if len(message.Content) == 0 {
		return nil, errors.New("claude api returned empty response")
	}
	textBlock, ok := message.Content[0].AsAny().(anthropic.TextBlock)
	if !ok {
		return nil, errors.New("claude api returned unexpected response type")
	}
	return textBlock.Text, nil
}
