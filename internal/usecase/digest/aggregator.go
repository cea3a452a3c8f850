// Package digest orchestrates one generation-and-delivery cycle:
// collect fragments, render the document, archive a snapshot and fan
// it out to the recipient list.
package digest

import (
	"context"
	"log/slog"
	"sync"

	"newsdigest/internal/domain/entity"
)

// ContentProvider produces one fragment for a fixed digest section.
// Implementations live in the provider infrastructure package.
type ContentProvider interface {
	Section() string
	Fetch(ctx context.Context) (entity.Fragment, error)
}

// Aggregator collects fragments from every provider and returns them
// in a fixed section order. It cannot fail: a provider error or an
// invalid fragment becomes the fallback fragment for that section, so
// the digest is always completable.
type Aggregator struct {
	order []string
}

// NewAggregator creates an Aggregator emitting fragments in the given
// section order. Sections not listed keep their provider order after
// the listed ones.
func NewAggregator(order []string) *Aggregator {
	return &Aggregator{order: order}
}

// Collect fetches all providers in parallel and returns one fragment
// per provider. Arrival order never influences the result order.
func (a *Aggregator) Collect(ctx context.Context, providers []ContentProvider) []entity.Fragment {
	results := make([]entity.Fragment, len(providers))

	var wg sync.WaitGroup
	for i, p := range providers {
		wg.Add(1)
		go func(idx int, prov ContentProvider) {
			defer wg.Done()
			results[idx] = a.collectOne(ctx, prov)
		}(i, p)
	}
	wg.Wait()

	return a.sortBySection(results)
}

// collectOne fetches a single provider, containing any failure as the
// section's fallback fragment.
func (a *Aggregator) collectOne(ctx context.Context, p ContentProvider) entity.Fragment {
	frag, err := p.Fetch(ctx)
	if err != nil {
		slog.Warn("provider failed, substituting fallback fragment",
			slog.String("section", p.Section()),
			slog.Any("error", err))
		return entity.NewFallbackFragment(p.Section())
	}

	if err := frag.Validate(); err != nil {
		slog.Warn("provider returned invalid fragment, substituting fallback",
			slog.String("section", p.Section()),
			slog.Any("error", err))
		return entity.NewFallbackFragment(p.Section())
	}

	return frag
}

// sortBySection reorders fragments into the configured section order.
// Fragments whose section is not configured follow in their original
// order.
func (a *Aggregator) sortBySection(fragments []entity.Fragment) []entity.Fragment {
	if len(a.order) == 0 {
		return fragments
	}

	rank := make(map[string]int, len(a.order))
	for i, section := range a.order {
		rank[section] = i
	}

	ordered := make([]entity.Fragment, 0, len(fragments))
	for _, section := range a.order {
		for _, f := range fragments {
			if f.Section == section {
				ordered = append(ordered, f)
			}
		}
	}
	for _, f := range fragments {
		if _, known := rank[f.Section]; !known {
			ordered = append(ordered, f)
		}
	}
	return ordered
}
