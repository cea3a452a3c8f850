// Package repository defines persistence interfaces consumed by the use
// case layer. Concrete adapters live under internal/infra/adapter.
package repository

import "context"

// RecipientRepository is the single owner of recipient membership.
// Implementations must serialize mutations internally: two concurrent
// Add calls for different identities must both survive in the persisted
// state, regardless of interleaving. Callers never see the underlying
// storage medium.
type RecipientRepository interface {
	// List returns the current complete snapshot of recipient identities.
	List(ctx context.Context) ([]string, error)

	// Add inserts an identity if absent. Returns true when a new record
	// was created, false when the identity was already present.
	Add(ctx context.Context, email string) (bool, error)

	// Remove deletes an identity if present. Returns true when a record
	// was deleted, false when the identity was absent.
	Remove(ctx context.Context, email string) (bool, error)
}
