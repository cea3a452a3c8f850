package provider

import (
	"fmt"
	"log/slog"
	"time"

	"newsdigest/pkg/config"
)

// Standard digest sections filled by the providers in this package.
const (
	SectionGreeting = "greeting"
	SectionNews     = "news"
	SectionBody     = "body"
)

const (
	// minBodyCharLimit is the minimum allowed character limit for AI bodies.
	minBodyCharLimit = 100

	// maxBodyCharLimit is the maximum allowed character limit for AI bodies.
	maxBodyCharLimit = 5000
)

// BodyConfig is the common configuration interface for the AI body
// providers. Both the Claude and OpenAI implementations satisfy it so
// selection between them stays a pure wiring decision.
type BodyConfig interface {
	// GetCharacterLimit returns the maximum number of characters
	// allowed in a generated body.
	GetCharacterLimit() int

	// Validate validates the configuration and returns an error if invalid.
	Validate() error
}

// ValidateCharacterLimit checks that the body character limit is within
// the valid range (100-5000).
func ValidateCharacterLimit(limit int) error {
	if limit < minBodyCharLimit {
		return fmt.Errorf("character limit %d is below minimum %d", limit, minBodyCharLimit)
	}
	if limit > maxBodyCharLimit {
		return fmt.Errorf("character limit %d exceeds maximum %d", limit, maxBodyCharLimit)
	}
	return nil
}

// loadBodyCharLimit reads BODY_CHAR_LIMIT, falling back to the default
// with a warning when the value is malformed or out of range.
func loadBodyCharLimit() int {
	const defaultCharLimit = 900

	limit := config.GetEnvInt("BODY_CHAR_LIMIT", defaultCharLimit)
	if err := ValidateCharacterLimit(limit); err != nil {
		slog.Warn("BODY_CHAR_LIMIT out of valid range, using default",
			slog.Int("value", limit),
			slog.Int("default", defaultCharLimit),
			slog.String("error", err.Error()))
		return defaultCharLimit
	}
	return limit
}

// loadBodyTopic reads BODY_TOPIC.
func loadBodyTopic() string {
	return config.GetEnvString("BODY_TOPIC", "technology and science")
}

// clampBody truncates an AI-generated body to the character limit. The
// limit is counted in runes so multi-byte text is not split mid-rune.
func clampBody(body string, limit int) string {
	runes := []rune(body)
	if len(runes) <= limit {
		return body
	}
	return string(runes[:limit]) + "..."
}

// NewsConfig holds configuration for the headline providers.
type NewsConfig struct {
	// APIKey authenticates against NewsAPI. Required for the newsapi
	// source.
	APIKey string

	// Category is the NewsAPI top-headlines category.
	Category string

	// Country is the NewsAPI two-letter country code.
	Country string

	// FeedURL is the RSS/Atom feed to read headlines from. Required
	// for the rss source.
	FeedURL string

	// Limit is the number of headlines included in the digest.
	Limit int

	// Timeout bounds a single headline fetch.
	Timeout time.Duration
}

// LoadNewsConfig loads headline provider settings from the environment.
//
// Environment variables:
//   - NEWSAPI_KEY: NewsAPI authentication key
//   - NEWS_CATEGORY: top-headlines category (default: "general")
//   - NEWS_COUNTRY: two-letter country code (default: "us")
//   - NEWS_FEED_URL: RSS feed URL for the rss source
//   - NEWS_HEADLINE_LIMIT: headlines per digest (default: 3)
func LoadNewsConfig() NewsConfig {
	return NewsConfig{
		APIKey:   config.GetEnvString("NEWSAPI_KEY", ""),
		Category: config.GetEnvString("NEWS_CATEGORY", "general"),
		Country:  config.GetEnvString("NEWS_COUNTRY", "us"),
		FeedURL:  config.GetEnvString("NEWS_FEED_URL", ""),
		Limit:    config.GetEnvInt("NEWS_HEADLINE_LIMIT", 3),
		Timeout:  config.GetEnvDuration("NEWS_FETCH_TIMEOUT", 15*time.Second),
	}
}

// Validate checks the NewsConfig fields common to all sources.
func (c NewsConfig) Validate() error {
	if c.Limit <= 0 {
		return fmt.Errorf("headline limit must be positive, got %d", c.Limit)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %v", c.Timeout)
	}
	return nil
}
