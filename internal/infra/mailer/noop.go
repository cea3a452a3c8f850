package mailer

import (
	"context"
	"log/slog"
	"sync"

	"newsdigest/internal/domain/entity"
)

// NoOp is a deliverer that records messages instead of sending them.
// Useful for development and dry runs.
type NoOp struct {
	mu        sync.Mutex
	delivered []string
}

// NewNoOp creates a NoOp deliverer.
func NewNoOp() *NoOp {
	return &NoOp{}
}

// Deliver logs the would-be delivery and records the recipient.
func (n *NoOp) Deliver(_ context.Context, recipient string, subject string, digest entity.Digest) error {
	n.mu.Lock()
	n.delivered = append(n.delivered, recipient)
	n.mu.Unlock()

	slog.Info("noop delivery",
		slog.String("recipient", recipient),
		slog.String("subject", subject),
		slog.String("date", digest.DateKey()))
	return nil
}

// Delivered returns the recipients recorded so far.
func (n *NoOp) Delivered() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]string, len(n.delivered))
	copy(out, n.delivered)
	return out
}
