// Package provider supplies the content fragments that make up a
// digest. It includes AI-backed body providers for Claude (Anthropic)
// and OpenAI, headline providers backed by NewsAPI and RSS feeds, and
// a static greeting provider, all with reliability patterns.
package provider

import (
	"context"

	"newsdigest/internal/domain/entity"
)

// Provider produces one fragment for a fixed section of the digest.
//
// Fetch may fail; callers substitute a fallback fragment for the
// provider's section so one failing provider never aborts a cycle.
type Provider interface {
	// Section returns the digest section this provider fills.
	Section() string

	// Fetch produces the fragment for this cycle. Implementations
	// apply their own retry and circuit breaker policies before
	// returning an error.
	Fetch(ctx context.Context) (entity.Fragment, error)
}
