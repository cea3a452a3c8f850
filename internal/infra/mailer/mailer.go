// Package mailer delivers rendered digests to recipients over SMTP.
// It includes rate limiting and error classification so the dispatch
// retry loop can tell transient relay failures from permanent ones.
package mailer

import (
	"context"

	"newsdigest/internal/domain/entity"
)

// Deliverer sends one rendered digest to one recipient. A single call
// is one delivery attempt; retrying is the caller's concern.
type Deliverer interface {
	Deliver(ctx context.Context, recipient string, subject string, digest entity.Digest) error
}
