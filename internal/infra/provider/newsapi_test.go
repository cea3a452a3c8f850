package provider

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"newsdigest/internal/resilience/circuitbreaker"
	"newsdigest/internal/resilience/retry"
)

type recordingMetrics struct {
	fetches []bool
}

func (r *recordingMetrics) RecordFetch(_ string, success bool, _ time.Duration) {
	r.fetches = append(r.fetches, success)
}

// newTestNewsAPI points a NewsAPI provider at a test server with fast
// retry settings.
func newTestNewsAPI(serverURL string) *NewsAPI {
	n := NewNewsAPI(NewsConfig{
		APIKey:   "test-key",
		Category: "general",
		Country:  "us",
		Limit:    3,
		Timeout:  2 * time.Second,
	})
	n.baseURL = serverURL
	n.retryConfig = retry.Config{
		MaxAttempts:  2,
		InitialDelay: time.Millisecond,
		MaxDelay:     5 * time.Millisecond,
		Multiplier:   2.0,
	}
	n.circuitBreaker = circuitbreaker.New(circuitbreaker.Config{
		Name: "newsapi-test", MaxRequests: 1, Interval: time.Minute,
		Timeout: time.Minute, FailureThreshold: 100, MinRequests: 100,
	})
	n.metrics = &recordingMetrics{}
	return n
}

const headlinesJSON = `{
	"status": "ok",
	"totalResults": 4,
	"articles": [
		{"title": "First story", "url": "https://example.com/1", "source": {"name": "Example Times"}},
		{"title": "Second story", "url": "https://example.com/2", "source": {"name": "Daily Example"}},
		{"title": "Third story", "url": "https://example.com/3", "source": {"name": "Example Post"}},
		{"title": "Fourth story", "url": "https://example.com/4", "source": {"name": "Example Post"}}
	]
}`

func TestNewsAPI_Fetch_FormatsTopHeadlines(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.Header.Get("X-Api-Key"))
		assert.Equal(t, "3", r.URL.Query().Get("pageSize"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(headlinesJSON))
	}))
	defer server.Close()

	n := newTestNewsAPI(server.URL)

	frag, err := n.Fetch(context.Background())

	require.NoError(t, err)
	assert.Equal(t, SectionNews, frag.Section)
	assert.False(t, frag.Fallback)
	want := "- [First story](https://example.com/1) (Example Times)\n" +
		"- [Second story](https://example.com/2) (Daily Example)\n" +
		"- [Third story](https://example.com/3) (Example Post)"
	assert.Equal(t, want, frag.Body)
}

func TestNewsAPI_Fetch_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(headlinesJSON))
	}))
	defer server.Close()

	n := newTestNewsAPI(server.URL)

	frag, err := n.Fetch(context.Background())

	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load())
	assert.Contains(t, frag.Body, "First story")
}

func TestNewsAPI_Fetch_FailsAfterRetriesExhausted(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	n := newTestNewsAPI(server.URL)

	_, err := n.Fetch(context.Background())

	require.Error(t, err)
	metrics := n.metrics.(*recordingMetrics)
	require.Len(t, metrics.fetches, 1)
	assert.False(t, metrics.fetches[0])
}

func TestNewsAPI_Fetch_ClientErrorNotRetried(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"status":"error","code":"apiKeyInvalid"}`))
	}))
	defer server.Close()

	n := newTestNewsAPI(server.URL)

	_, err := n.Fetch(context.Background())

	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestNewsAPI_Fetch_ErrorStatusInBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"error","message":"parameter missing"}`))
	}))
	defer server.Close()

	n := newTestNewsAPI(server.URL)

	_, err := n.Fetch(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "parameter missing")
}

func TestFormatHeadlines_SkipsBlankTitles(t *testing.T) {
	articles := []newsAPIArticle{
		{Title: "  ", URL: "https://example.com/blank"},
		{Title: "Kept", URL: "https://example.com/kept"},
	}

	got := formatHeadlines(articles)

	assert.Equal(t, "- [Kept](https://example.com/kept)", got)
}
