// Package subscription manages the recipient list: joining, leaving
// and listing subscribers.
package subscription

import (
	"context"
	"fmt"
	"log/slog"

	"newsdigest/internal/domain/entity"
	"newsdigest/internal/observability/metrics"
	"newsdigest/internal/repository"
)

// Service exposes recipient list operations to the HTTP handlers and
// admin tooling.
type Service struct {
	repo repository.RecipientRepository
}

// NewService creates a subscription service over the given repository.
func NewService(repo repository.RecipientRepository) *Service {
	return &Service{repo: repo}
}

// Subscribe adds an email to the recipient list. Returns false when
// the address was already subscribed; subscribing twice is a no-op.
func (s *Service) Subscribe(ctx context.Context, email string) (bool, error) {
	normalized := entity.NormalizeEmail(email)
	rec := entity.Recipient{Email: normalized}
	if err := rec.Validate(); err != nil {
		return false, fmt.Errorf("Subscribe: %w", err)
	}

	added, err := s.repo.Add(ctx, normalized)
	metrics.RecordStoreOperation("add", err)
	if err != nil {
		return false, fmt.Errorf("Subscribe: %w", err)
	}

	if added {
		slog.Info("recipient subscribed", slog.String("email", normalized))
	} else {
		slog.Debug("subscribe no-op, already present", slog.String("email", normalized))
	}
	return added, nil
}

// Unsubscribe removes an email from the recipient list. Returns false
// when the address was not subscribed; unsubscribing an absent address
// is a no-op.
func (s *Service) Unsubscribe(ctx context.Context, email string) (bool, error) {
	normalized := entity.NormalizeEmail(email)

	removed, err := s.repo.Remove(ctx, normalized)
	metrics.RecordStoreOperation("remove", err)
	if err != nil {
		return false, fmt.Errorf("Unsubscribe: %w", err)
	}

	if removed {
		slog.Info("recipient unsubscribed", slog.String("email", normalized))
	} else {
		slog.Debug("unsubscribe no-op, not present", slog.String("email", normalized))
	}
	return removed, nil
}

// List returns the current recipient list in subscription order.
func (s *Service) List(ctx context.Context) ([]string, error) {
	recipients, err := s.repo.List(ctx)
	metrics.RecordStoreOperation("list", err)
	if err != nil {
		return nil, fmt.Errorf("List: %w", err)
	}
	metrics.RecipientsTotal.Set(float64(len(recipients)))
	return recipients, nil
}
