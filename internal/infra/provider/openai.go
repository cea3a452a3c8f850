package provider

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"github.com/sony/gobreaker"

	"newsdigest/internal/domain/entity"
	"newsdigest/internal/resilience/circuitbreaker"
	"newsdigest/internal/resilience/retry"
)

// OpenAIConfig holds configuration parameters for the OpenAI body
// provider.
type OpenAIConfig struct {
	// CharacterLimit is the maximum number of characters allowed in a
	// generated body. Loaded from BODY_CHAR_LIMIT. Valid range:
	// 100-5000 characters. Default: 900.
	CharacterLimit int

	// Topic steers what the body is about. Loaded from BODY_TOPIC.
	Topic string

	// Model is the OpenAI API model identifier.
	Model string

	// MaxTokens is the maximum number of tokens for the API response.
	MaxTokens int

	// Timeout is the maximum duration for a single generation call.
	Timeout time.Duration
}

// GetCharacterLimit implements BodyConfig.
func (c *OpenAIConfig) GetCharacterLimit() int {
	return c.CharacterLimit
}

// Validate implements BodyConfig.
func (c *OpenAIConfig) Validate() error {
	if err := ValidateCharacterLimit(c.CharacterLimit); err != nil {
		return fmt.Errorf("invalid character limit: %w", err)
	}
	if c.Model == "" {
		return fmt.Errorf("model cannot be empty")
	}
	if c.MaxTokens <= 0 {
		return fmt.Errorf("max tokens must be positive, got %d", c.MaxTokens)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %v", c.Timeout)
	}
	return nil
}

// LoadOpenAIConfig loads configuration from environment variables.
// Returns an error if the resulting configuration is invalid.
func LoadOpenAIConfig() (*OpenAIConfig, error) {
	cfg := &OpenAIConfig{
		CharacterLimit: loadBodyCharLimit(),
		Topic:          loadBodyTopic(),
		Model:          openai.GPT3Dot5Turbo,
		MaxTokens:      1024,
		Timeout:        60 * time.Second,
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid openai configuration: %w", err)
	}

	return cfg, nil
}

// OpenAI generates the digest body section using OpenAI's chat API.
// It includes circuit breaker and retry logic.
type OpenAI struct {
	client         *openai.Client
	circuitBreaker *circuitbreaker.CircuitBreaker
	retryConfig    retry.Config
	config         *OpenAIConfig
	metrics        FetchMetricsRecorder
}

// NewOpenAI creates an OpenAI body provider with the given API key.
func NewOpenAI(apiKey string, cfg *OpenAIConfig) *OpenAI {
	slog.Info("initialized openai body provider",
		slog.Int("character_limit", cfg.CharacterLimit),
		slog.String("topic", cfg.Topic),
		slog.String("model", cfg.Model))

	return &OpenAI{
		client:         openai.NewClient(apiKey),
		circuitBreaker: circuitbreaker.New(circuitbreaker.AIProviderConfig("openai-api")),
		retryConfig:    retry.AIProviderConfig(),
		config:         cfg,
		metrics:        NewPrometheusFetchMetrics(),
	}
}

// Section implements Provider.
func (o *OpenAI) Section() string {
	return SectionBody
}

// Fetch generates the body fragment for the given cycle.
func (o *OpenAI) Fetch(ctx context.Context) (entity.Fragment, error) {
	ctx, cancel := context.WithTimeout(ctx, o.config.Timeout)
	defer cancel()

	start := time.Now()

	var body string
	retryErr := retry.WithBackoff(ctx, o.retryConfig, func() error {
		cbResult, err := o.circuitBreaker.Execute(func() (interface{}, error) {
			return o.doGenerate(ctx)
		})
		if err != nil {
			if errors.Is(err, gobreaker.ErrOpenState) {
				slog.Warn("openai api circuit breaker open, request rejected",
					slog.String("service", "openai-api"),
					slog.String("state", o.circuitBreaker.State().String()))
				return fmt.Errorf("openai api unavailable: circuit breaker open")
			}
			return err
		}
		body = cbResult.(string)
		return nil
	})

	if retryErr != nil {
		o.metrics.RecordFetch(SectionBody, false, time.Since(start))
		return entity.Fragment{}, fmt.Errorf("Fetch: openai body generation failed after retries: %w", retryErr)
	}

	o.metrics.RecordFetch(SectionBody, true, time.Since(start))
	return entity.Fragment{Section: SectionBody, Body: body}, nil
}

// buildPrompt constructs the generation prompt using configured
// parameters.
func (o *OpenAI) buildPrompt() string {
	return fmt.Sprintf(
		"Write a short editor's note about %s for today's email digest, in Markdown, within %d characters. Plain prose, no headings.",
		o.config.Topic, o.config.CharacterLimit)
}

// doGenerate performs the actual API call without retry or circuit
// breaker.
func (o *OpenAI) doGenerate(ctx context.Context) (string, error) {
	prompt := o.buildPrompt()

	slog.InfoContext(ctx, "starting body generation",
		slog.Int("character_limit", o.config.CharacterLimit))

	start := time.Now()

	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     o.config.Model,
		MaxTokens: o.config.MaxTokens,
		Messages: []openai.ChatCompletionMessage{{
			Role:    openai.ChatMessageRoleSystem,
			Content: prompt,
		}},
	})

	duration := time.Since(start)

	if err != nil {
		slog.ErrorContext(ctx, "body generation failed",
			slog.Duration("duration", duration),
			slog.String("error", err.Error()))
		return "", fmt.Errorf("openai api error: %w", err)
	}

	if len(resp.Choices) == 0 {
		slog.ErrorContext(ctx, "openai api returned empty response",
			slog.Duration("duration", duration))
		return "", fmt.Errorf("openai api returned empty response")
	}

	body := clampBody(resp.Choices[0].Message.Content, o.config.CharacterLimit)
	if strings.TrimSpace(body) == "" {
		return "", fmt.Errorf("openai api returned blank body")
	}

	slog.InfoContext(ctx, "body generation completed",
		slog.Int("body_length", len([]rune(body))),
		slog.Duration("duration", duration))

	return body, nil
}
