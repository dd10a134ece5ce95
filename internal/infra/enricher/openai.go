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

	openai "github.com/sashabaranov/go-openai"
	"github.com/sony/gobreaker"
)

// OpenAIConfig holds the alternate-provider enricher's model knobs.
type OpenAIConfig struct {
	Model     string
	MaxTokens int
	Timeout   time.Duration
}

// DefaultOpenAIConfig returns the default OpenAI enricher configuration.
func DefaultOpenAIConfig() OpenAIConfig {
	return OpenAIConfig{
		Model:     openai.GPT4oMini,
		MaxTokens: 1024,
		Timeout:   60 * time.Second,
	}
}

// OpenAIEnricher implements Enricher using OpenAI's chat completion
// API, selectable in place of ClaudeEnricher via LLM_PROVIDER=openai.
type OpenAIEnricher struct {
	client         *openai.Client
	circuitBreaker *circuitbreaker.CircuitBreaker
	retryConfig    retry.Config
	config         OpenAIConfig
}

// NewOpenAIEnricher constructs an OpenAIEnricher with the given API key.
func NewOpenAIEnricher(apiKey string, config OpenAIConfig) *OpenAIEnricher {
	return &OpenAIEnricher{
		client:         openai.NewClient(apiKey),
		circuitBreaker: circuitbreaker.New(circuitbreaker.OpenAIAPIConfig()),
		retryConfig:    retry.EnricherConfig(),
		config:         config,
	}
}

// Enrich implements Enricher, with the same fail-through-to-stub
// posture as ClaudeEnricher.
func (o *OpenAIEnricher) Enrich(ctx context.Context, article entity.RawArticle, source SourceContext) (entity.EnrichedIncident, error) {
	ctx, cancel := context.WithTimeout(ctx, o.config.Timeout)
	defer cancel()

	prompt := buildPrompt(article, source)

	var raw string
	retryErr := retry.WithBackoff(ctx, o.retryConfig, func() error {
		cbResult, err := o.circuitBreaker.Execute(func() (interface{}, error) {
			return o.doEnrich(ctx, prompt)
		})
		if err != nil {
			if errors.Is(err, gobreaker.ErrOpenState) {
				slog.Warn("openai api circuit breaker open, falling back to stub enrichment",
					slog.String("state", o.circuitBreaker.State().String()))
			}
			return err
		}
		raw = cbResult.(string)
		return nil
	})
	if retryErr != nil {
		slog.Warn("openai enrichment failed, falling back to stub",
			slog.Int64("article_id", article.ID),
			slog.String("error", retryErr.Error()))
		return stub(article.ID, article.BodyRaw), nil
	}

	incident, err := parseResponse(raw, article.ID, fmt.Sprintf("openai:%s", o.config.Model))
	if err != nil {
		slog.Warn("openai response failed validation, falling back to stub",
			slog.Int64("article_id", article.ID),
			slog.String("raw_response", raw),
			slog.String("error", err.Error()))
		return stub(article.ID, article.BodyRaw), nil
	}
	return incident, nil
}

func (o *OpenAIEnricher) doEnrich(ctx context.Context, prompt string) (interface{}, error) {
	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: o.config.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		MaxTokens:      o.config.MaxTokens,
		ResponseFormat: &openai.ChatCompletionResponseFormat{Type: openai.ChatCompletionResponseFormatTypeJSONObject},
	})
	if err != nil {
		return nil, fmt.Errorf("openai api error: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, errors.New("openai api returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}
