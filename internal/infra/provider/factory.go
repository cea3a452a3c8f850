package provider

import (
	"fmt"
	"log/slog"

	"newsdigest/pkg/config"
)

// NewBodyProvider selects the AI body provider from the environment.
//
// AI_PROVIDER values:
//   - "claude" (default): Anthropic Claude, requires ANTHROPIC_API_KEY
//   - "openai": OpenAI chat API, requires OPENAI_API_KEY
//   - "none": no body section
//
// With "none" the returned provider is nil and the caller skips the
// body section.
func NewBodyProvider() (Provider, error) {
	providerType := config.GetEnvString("AI_PROVIDER", "claude")

	switch providerType {
	case "claude":
		apiKey := config.GetEnvString("ANTHROPIC_API_KEY", "")
		if apiKey == "" {
			return nil, fmt.Errorf("NewBodyProvider: ANTHROPIC_API_KEY is required for claude provider")
		}
		return NewClaude(apiKey), nil

	case "openai":
		apiKey := config.GetEnvString("OPENAI_API_KEY", "")
		if apiKey == "" {
			return nil, fmt.Errorf("NewBodyProvider: OPENAI_API_KEY is required for openai provider")
		}
		cfg, err := LoadOpenAIConfig()
		if err != nil {
			return nil, fmt.Errorf("NewBodyProvider: %w", err)
		}
		return NewOpenAI(apiKey, cfg), nil

	case "none":
		slog.Info("body provider disabled")
		return nil, nil

	default:
		return nil, fmt.Errorf("NewBodyProvider: unknown AI_PROVIDER %q", providerType)
	}
}

// NewNewsProvider selects the headline provider from the environment.
//
// NEWS_SOURCE values:
//   - "newsapi" (default): NewsAPI top headlines, requires NEWSAPI_KEY
//   - "rss": RSS/Atom feed, requires NEWS_FEED_URL
//   - "none": no news section
func NewNewsProvider() (Provider, error) {
	cfg := LoadNewsConfig()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("NewNewsProvider: %w", err)
	}

	sourceType := config.GetEnvString("NEWS_SOURCE", "newsapi")

	switch sourceType {
	case "newsapi":
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("NewNewsProvider: NEWSAPI_KEY is required for newsapi source")
		}
		return NewNewsAPI(cfg), nil

	case "rss":
		if cfg.FeedURL == "" {
			return nil, fmt.Errorf("NewNewsProvider: NEWS_FEED_URL is required for rss source")
		}
		return NewRSS(cfg), nil

	case "none":
		slog.Info("news provider disabled")
		return nil, nil

	default:
		return nil, fmt.Errorf("NewNewsProvider: unknown NEWS_SOURCE %q", sourceType)
	}
}

// NewProviders assembles the full provider set for a digest cycle in
// section order: greeting, news, body. Disabled providers are omitted.
func NewProviders() ([]Provider, error) {
	providers := []Provider{NewGreeting()}

	news, err := NewNewsProvider()
	if err != nil {
		return nil, err
	}
	if news != nil {
		providers = append(providers, news)
	}

	body, err := NewBodyProvider()
	if err != nil {
		return nil, err
	}
	if body != nil {
		providers = append(providers, body)
	}

	return providers, nil
}
