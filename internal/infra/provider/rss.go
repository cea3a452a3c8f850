package provider

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
	"github.com/sony/gobreaker"

	"newsdigest/internal/domain/entity"
	"newsdigest/internal/resilience/circuitbreaker"
	"newsdigest/internal/resilience/retry"
)

// RSS fills the news section from an RSS/Atom feed using the gofeed
// library. It is the headline source for deployments without a NewsAPI
// key. It includes circuit breaker and retry logic.
type RSS struct {
	config         NewsConfig
	client         *http.Client
	circuitBreaker *circuitbreaker.CircuitBreaker
	retryConfig    retry.Config
	metrics        FetchMetricsRecorder
}

// NewRSS creates an RSS headline provider.
func NewRSS(cfg NewsConfig) *RSS {
	return &RSS{
		config:         cfg,
		client:         &http.Client{Timeout: cfg.Timeout},
		circuitBreaker: circuitbreaker.New(circuitbreaker.NewsFetchConfig()),
		retryConfig:    retry.NewsFetchConfig(),
		metrics:        NewPrometheusFetchMetrics(),
	}
}

// Section implements Provider.
func (r *RSS) Section() string {
	return SectionNews
}

// Fetch retrieves the newest feed entries and formats them as a
// Markdown list.
func (r *RSS) Fetch(ctx context.Context) (entity.Fragment, error) {
	start := time.Now()

	var body string
	retryErr := retry.WithBackoff(ctx, r.retryConfig, func() error {
		cbResult, err := r.circuitBreaker.Execute(func() (interface{}, error) {
			return r.doFetch(ctx)
		})
		if err != nil {
			if errors.Is(err, gobreaker.ErrOpenState) {
				slog.Warn("news fetch circuit breaker open, request rejected",
					slog.String("service", "news-fetch"),
					slog.String("url", r.config.FeedURL),
					slog.String("state", r.circuitBreaker.State().String()))
			}
			return err
		}
		body = cbResult.(string)
		return nil
	})

	if retryErr != nil {
		r.metrics.RecordFetch(SectionNews, false, time.Since(start))
		return entity.Fragment{}, fmt.Errorf("Fetch: rss headlines failed after retries: %w", retryErr)
	}

	r.metrics.RecordFetch(SectionNews, true, time.Since(start))
	return entity.Fragment{Section: SectionNews, Body: body}, nil
}

// doFetch performs the actual feed fetch without retry or circuit
// breaker.
func (r *RSS) doFetch(ctx context.Context) (string, error) {
	fp := gofeed.NewParser()
	fp.UserAgent = "NewsDigestBot"
	fp.Client = r.client

	feed, err := fp.ParseURLWithContext(r.config.FeedURL, ctx)
	if err != nil {
		return "", err
	}
	if len(feed.Items) == 0 {
		return "", fmt.Errorf("feed %s contained no entries", r.config.FeedURL)
	}

	items := feed.Items
	if len(items) > r.config.Limit {
		items = items[:r.config.Limit]
	}

	var b strings.Builder
	for _, it := range items {
		title := strings.TrimSpace(it.Title)
		if title == "" {
			continue
		}
		if it.Link != "" {
			fmt.Fprintf(&b, "- [%s](%s)\n", title, it.Link)
		} else {
			fmt.Fprintf(&b, "- %s\n", title)
		}
	}

	body := strings.TrimRight(b.String(), "\n")
	if body == "" {
		return "", fmt.Errorf("feed %s contained no usable entries", r.config.FeedURL)
	}
	return body, nil
}
