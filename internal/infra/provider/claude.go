package provider

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/google/uuid"
	"github.com/sony/gobreaker"

	"newsdigest/internal/domain/entity"
	"newsdigest/internal/resilience/circuitbreaker"
	"newsdigest/internal/resilience/retry"
)

// ClaudeConfig holds configuration parameters for the Claude body
// provider. Configuration is loaded from environment variables with
// fallback to defaults.
type ClaudeConfig struct {
	// CharacterLimit is the maximum number of characters allowed in a
	// generated body. Loaded from BODY_CHAR_LIMIT. Valid range:
	// 100-5000 characters. Default: 900.
	CharacterLimit int

	// Topic steers what the body is about. Loaded from BODY_TOPIC.
	Topic string

	// Model is the Claude API model identifier.
	Model string

	// MaxTokens is the maximum number of tokens for the API response.
	MaxTokens int

	// Timeout is the maximum duration for a single generation call.
	Timeout time.Duration
}

// GetCharacterLimit implements BodyConfig.
func (c *ClaudeConfig) GetCharacterLimit() int {
	return c.CharacterLimit
}

// Validate implements BodyConfig.
func (c *ClaudeConfig) Validate() error {
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

// LoadClaudeConfig loads configuration from environment variables.
// An out-of-range BODY_CHAR_LIMIT falls back to the default with a
// warning log.
//
// Environment variables:
//   - BODY_CHAR_LIMIT: character limit (default: 900, range: 100-5000)
//   - BODY_TOPIC: subject of the generated body (default: "technology and science")
func LoadClaudeConfig() *ClaudeConfig {
	return &ClaudeConfig{
		CharacterLimit: loadBodyCharLimit(),
		Topic:          loadBodyTopic(),
		Model:          string(anthropic.ModelClaudeSonnet4_5_20250929),
		MaxTokens:      1024,
		Timeout:        60 * time.Second,
	}
}

// Claude generates the digest body section using Anthropic's Claude
// API. It includes circuit breaker and retry logic, and truncates
// over-limit responses rather than failing the cycle.
type Claude struct {
	client         anthropic.Client
	circuitBreaker *circuitbreaker.CircuitBreaker
	retryConfig    retry.Config
	config         *ClaudeConfig
	metrics        FetchMetricsRecorder
}

// NewClaude creates a Claude body provider with the given API key.
func NewClaude(apiKey string) *Claude {
	cfg := LoadClaudeConfig()

	slog.Info("initialized claude body provider",
		slog.Int("character_limit", cfg.CharacterLimit),
		slog.String("topic", cfg.Topic),
		slog.String("model", cfg.Model))

	return &Claude{
		client:         anthropic.NewClient(option.WithAPIKey(apiKey)),
		circuitBreaker: circuitbreaker.New(circuitbreaker.AIProviderConfig("claude-api")),
		retryConfig:    retry.AIProviderConfig(),
		config:         cfg,
		metrics:        NewPrometheusFetchMetrics(),
	}
}

// Section implements Provider.
func (c *Claude) Section() string {
	return SectionBody
}

// Fetch generates the body fragment for the given cycle. It applies
// retry and circuit breaker policies around the API call.
func (c *Claude) Fetch(ctx context.Context) (entity.Fragment, error) {
	ctx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	start := time.Now()

	var body string
	retryErr := retry.WithBackoff(ctx, c.retryConfig, func() error {
		cbResult, err := c.circuitBreaker.Execute(func() (interface{}, error) {
			return c.doGenerate(ctx)
		})
		if err != nil {
			if errors.Is(err, gobreaker.ErrOpenState) {
				slog.Warn("claude api circuit breaker open, request rejected",
					slog.String("service", "claude-api"),
					slog.String("state", c.circuitBreaker.State().String()))
				return fmt.Errorf("claude api unavailable: circuit breaker open")
			}
			return err
		}
		body = cbResult.(string)
		return nil
	})

	if retryErr != nil {
		c.metrics.RecordFetch(SectionBody, false, time.Since(start))
		return entity.Fragment{}, fmt.Errorf("Fetch: claude body generation failed after retries: %w", retryErr)
	}

	c.metrics.RecordFetch(SectionBody, true, time.Since(start))
	return entity.Fragment{Section: SectionBody, Body: body}, nil
}

// buildPrompt constructs the generation prompt using configured
// parameters.
func (c *Claude) buildPrompt() string {
	return fmt.Sprintf(
		"Write a short editor's note about %s for today's email digest, in Markdown, within %d characters. Plain prose, no headings.",
		c.config.Topic, c.config.CharacterLimit)
}

// doGenerate performs the actual API call without retry or circuit
// breaker.
func (c *Claude) doGenerate(ctx context.Context) (string, error) {
	requestID := uuid.New().String()
	prompt := c.buildPrompt()

	slog.InfoContext(ctx, "starting body generation",
		slog.String("request_id", requestID),
		slog.Int("character_limit", c.config.CharacterLimit))

	start := time.Now()

	message, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(c.config.Model),
		MaxTokens: int64(c.config.MaxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(
				anthropic.NewTextBlock(prompt),
			),
		},
	})

	duration := time.Since(start)

	if err != nil {
		slog.ErrorContext(ctx, "body generation failed",
			slog.String("request_id", requestID),
			slog.Duration("duration", duration),
			slog.String("error", err.Error()))
		return "", fmt.Errorf("claude api error: %w", err)
	}

	if len(message.Content) == 0 {
		slog.ErrorContext(ctx, "claude api returned empty response",
			slog.String("request_id", requestID),
			slog.Duration("duration", duration))
		return "", fmt.Errorf("claude api returned empty response")
	}

	textBlock, ok := message.Content[0].AsAny().(anthropic.TextBlock)
	if !ok {
		slog.ErrorContext(ctx, "claude api returned unexpected response type",
			slog.String("request_id", requestID),
			slog.Duration("duration", duration))
		return "", fmt.Errorf("claude api returned unexpected response type")
	}

	body := clampBody(textBlock.Text, c.config.CharacterLimit)
	if strings.TrimSpace(body) == "" {
		return "", fmt.Errorf("claude api returned blank body")
	}

	slog.InfoContext(ctx, "body generation completed",
		slog.String("request_id", requestID),
		slog.Int("body_length", len([]rune(body))),
		slog.Duration("duration", duration))

	return body, nil
}
