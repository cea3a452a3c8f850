package mailer

import (
	"context"

	"golang.org/x/time/rate"
)

// RateLimiter implements a token bucket over outgoing SMTP traffic so
// a large recipient list does not trip the relay's sending limits.
type RateLimiter struct {
	limiter *rate.Limiter
}

// NewRateLimiter creates a RateLimiter allowing a sustained
// messagesPerSecond rate with the given burst capacity.
func NewRateLimiter(messagesPerSecond float64, burst int) *RateLimiter {
	return &RateLimiter{
		limiter: rate.NewLimiter(rate.Limit(messagesPerSecond), burst),
	}
}

// Allow blocks until a token is available or the context is canceled.
// Call it before each send.
func (r *RateLimiter) Allow(ctx context.Context) error {
	return r.limiter.Wait(ctx)
}
