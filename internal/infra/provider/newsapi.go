package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"newsdigest/internal/domain/entity"
	"newsdigest/internal/resilience/circuitbreaker"
	"newsdigest/internal/resilience/retry"
)

// newsAPIBaseURL is the NewsAPI top-headlines endpoint.
const newsAPIBaseURL = "https://newsapi.org/v2/top-headlines"

// NewsAPI fills the news section with the day's top headlines from
// NewsAPI. It includes circuit breaker and retry logic.
type NewsAPI struct {
	config         NewsConfig
	httpClient     *http.Client
	circuitBreaker *circuitbreaker.CircuitBreaker
	retryConfig    retry.Config
	metrics        FetchMetricsRecorder
	baseURL        string
}

// newsAPIResponse is the top-headlines response envelope.
type newsAPIResponse struct {
	Status       string           `json:"status"`
	TotalResults int              `json:"totalResults"`
	Articles     []newsAPIArticle `json:"articles"`
	Code         string           `json:"code"`
	Message      string           `json:"message"`
}

// newsAPIArticle is one headline entry.
type newsAPIArticle struct {
	Title  string `json:"title"`
	URL    string `json:"url"`
	Source struct {
		Name string `json:"name"`
	} `json:"source"`
}

// NewNewsAPI creates a NewsAPI headline provider.
func NewNewsAPI(cfg NewsConfig) *NewsAPI {
	return &NewsAPI{
		config:         cfg,
		httpClient:     &http.Client{Timeout: cfg.Timeout},
		circuitBreaker: circuitbreaker.New(circuitbreaker.NewsFetchConfig()),
		retryConfig:    retry.NewsFetchConfig(),
		metrics:        NewPrometheusFetchMetrics(),
		baseURL:        newsAPIBaseURL,
	}
}

// Section implements Provider.
func (n *NewsAPI) Section() string {
	return SectionNews
}

// Fetch retrieves the configured number of top headlines and formats
// them as a Markdown list.
func (n *NewsAPI) Fetch(ctx context.Context) (entity.Fragment, error) {
	start := time.Now()

	var headlines []newsAPIArticle
	retryErr := retry.WithBackoff(ctx, n.retryConfig, func() error {
		cbResult, err := n.circuitBreaker.Execute(func() (interface{}, error) {
			return n.doFetch(ctx)
		})
		if err != nil {
			if errors.Is(err, gobreaker.ErrOpenState) {
				slog.Warn("news fetch circuit breaker open, request rejected",
					slog.String("service", "news-fetch"),
					slog.String("state", n.circuitBreaker.State().String()))
			}
			return err
		}
		headlines = cbResult.([]newsAPIArticle)
		return nil
	})

	if retryErr != nil {
		n.metrics.RecordFetch(SectionNews, false, time.Since(start))
		return entity.Fragment{}, fmt.Errorf("Fetch: newsapi headlines failed after retries: %w", retryErr)
	}

	n.metrics.RecordFetch(SectionNews, true, time.Since(start))
	return entity.Fragment{Section: SectionNews, Body: formatHeadlines(headlines)}, nil
}

// doFetch performs the actual API call without retry or circuit
// breaker. Non-2xx statuses are returned as retry.HTTPError so the
// retry layer can distinguish retryable failures.
func (n *NewsAPI) doFetch(ctx context.Context) ([]newsAPIArticle, error) {
	q := url.Values{}
	q.Set("country", n.config.Country)
	q.Set("category", n.config.Category)
	q.Set("pageSize", fmt.Sprintf("%d", n.config.Limit))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, n.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create http request: %w", err)
	}
	req.Header.Set("X-Api-Key", n.config.APIKey)

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute http request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &retry.HTTPError{
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("newsapi error: %s", string(body)),
		}
	}

	var parsed newsAPIResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("decode newsapi response: %w", err)
	}
	if parsed.Status != "ok" {
		return nil, fmt.Errorf("newsapi returned status %q: %s", parsed.Status, parsed.Message)
	}
	if len(parsed.Articles) == 0 {
		return nil, fmt.Errorf("newsapi returned no headlines")
	}

	if len(parsed.Articles) > n.config.Limit {
		parsed.Articles = parsed.Articles[:n.config.Limit]
	}

	return parsed.Articles, nil
}

// formatHeadlines renders headlines as a Markdown list.
func formatHeadlines(articles []newsAPIArticle) string {
	var b strings.Builder
	for _, a := range articles {
		title := strings.TrimSpace(a.Title)
		if title == "" {
			continue
		}
		if a.URL != "" {
			fmt.Fprintf(&b, "- [%s](%s)", title, a.URL)
		} else {
			fmt.Fprintf(&b, "- %s", title)
		}
		if a.Source.Name != "" {
			fmt.Fprintf(&b, " (%s)", a.Source.Name)
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}
