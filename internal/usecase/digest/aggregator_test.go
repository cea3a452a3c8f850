package digest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"newsdigest/internal/domain/entity"
)

// stubProvider returns a canned fragment after an optional delay.
type stubProvider struct {
	section string
	body    string
	err     error
	delay   time.Duration
}

func (s *stubProvider) Section() string { return s.section }

func (s *stubProvider) Fetch(ctx context.Context) (entity.Fragment, error) {
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return entity.Fragment{}, ctx.Err()
		}
	}
	if s.err != nil {
		return entity.Fragment{}, s.err
	}
	return entity.Fragment{Section: s.section, Body: s.body}, nil
}

var sectionOrder = []string{"greeting", "news", "body"}

func sections(fragments []entity.Fragment) []string {
	out := make([]string, len(fragments))
	for i, f := range fragments {
		out[i] = f.Section
	}
	return out
}

func TestCollect_FixedOrderRegardlessOfArrival(t *testing.T) {
	// The last section finishes first and the first finishes last.
	providers := []ContentProvider{
		&stubProvider{section: "greeting", body: "Hello", delay: 30 * time.Millisecond},
		&stubProvider{section: "news", body: "- story", delay: 15 * time.Millisecond},
		&stubProvider{section: "body", body: "Note"},
	}
	agg := NewAggregator(sectionOrder)

	fragments := agg.Collect(context.Background(), providers)

	assert.Equal(t, sectionOrder, sections(fragments))
}

func TestCollect_ProviderOrderIrrelevant(t *testing.T) {
	agg := NewAggregator(sectionOrder)
	forward := []ContentProvider{
		&stubProvider{section: "greeting", body: "Hello"},
		&stubProvider{section: "news", body: "- story"},
		&stubProvider{section: "body", body: "Note"},
	}
	reversed := []ContentProvider{forward[2], forward[1], forward[0]}

	a := agg.Collect(context.Background(), forward)
	b := agg.Collect(context.Background(), reversed)

	assert.Equal(t, a, b)
}

func TestCollect_FailureBecomesFallback(t *testing.T) {
	providers := []ContentProvider{
		&stubProvider{section: "greeting", body: "Hello"},
		&stubProvider{section: "news", err: errors.New("feed unreachable")},
	}
	agg := NewAggregator(sectionOrder)

	fragments := agg.Collect(context.Background(), providers)

	require.Len(t, fragments, 2)
	news := fragments[1]
	assert.Equal(t, "news", news.Section)
	assert.True(t, news.Fallback)
	assert.Equal(t, entity.FallbackBody, news.Body)

	greeting := fragments[0]
	assert.False(t, greeting.Fallback)
}

func TestCollect_InvalidFragmentBecomesFallback(t *testing.T) {
	providers := []ContentProvider{
		&stubProvider{section: "body", body: ""}, // empty body fails validation
	}
	agg := NewAggregator(sectionOrder)

	fragments := agg.Collect(context.Background(), providers)

	require.Len(t, fragments, 1)
	assert.True(t, fragments[0].Fallback)
}

func TestCollect_UnknownSectionKeptAfterOrdered(t *testing.T) {
	providers := []ContentProvider{
		&stubProvider{section: "weather", body: "Sunny"},
		&stubProvider{section: "greeting", body: "Hello"},
	}
	agg := NewAggregator(sectionOrder)

	fragments := agg.Collect(context.Background(), providers)

	assert.Equal(t, []string{"greeting", "weather"}, sections(fragments))
}

func TestCollect_NoProviders(t *testing.T) {
	agg := NewAggregator(sectionOrder)

	fragments := agg.Collect(context.Background(), nil)

	assert.Empty(t, fragments)
}
