package provider

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"newsdigest/internal/resilience/retry"
)

const feedXML = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>Example Feed</title>
    <item><title>Alpha release shipped</title><link>https://example.com/alpha</link></item>
    <item><title>Beta roadmap published</title><link>https://example.com/beta</link></item>
    <item><title>Gamma postmortem</title><link>https://example.com/gamma</link></item>
    <item><title>Delta retrospective</title><link>https://example.com/delta</link></item>
  </channel>
</rss>`

func newTestRSS(feedURL string) *RSS {
	r := NewRSS(NewsConfig{
		FeedURL: feedURL,
		Limit:   3,
		Timeout: 2 * time.Second,
	})
	r.retryConfig = retry.Config{
		MaxAttempts:  2,
		InitialDelay: time.Millisecond,
		MaxDelay:     5 * time.Millisecond,
		Multiplier:   2.0,
	}
	r.metrics = &recordingMetrics{}
	return r
}

func TestRSS_Fetch_FormatsEntries(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		_, _ = w.Write([]byte(feedXML))
	}))
	defer server.Close()

	p := newTestRSS(server.URL)

	frag, err := p.Fetch(context.Background())

	require.NoError(t, err)
	assert.Equal(t, SectionNews, frag.Section)
	want := "- [Alpha release shipped](https://example.com/alpha)\n" +
		"- [Beta roadmap published](https://example.com/beta)\n" +
		"- [Gamma postmortem](https://example.com/gamma)"
	assert.Equal(t, want, frag.Body)
}

func TestRSS_Fetch_EmptyFeedFails(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<?xml version="1.0"?><rss version="2.0"><channel><title>Empty</title></channel></rss>`))
	}))
	defer server.Close()

	p := newTestRSS(server.URL)

	_, err := p.Fetch(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "no entries")
}

func TestRSS_Fetch_UnreachableFeedFails(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	p := newTestRSS(server.URL)

	_, err := p.Fetch(context.Background())

	require.Error(t, err)
	metrics := p.metrics.(*recordingMetrics)
	require.Len(t, metrics.fetches, 1)
	assert.False(t, metrics.fetches[0])
}
