// Package file provides a file-backed recipient repository. The
// persisted representation is a JSON snapshot that is always complete
// and valid: writes go to a temporary file that is renamed over the
// snapshot, and every read-modify-write runs under an in-process mutex
// so concurrent subscribe/unsubscribe requests cannot lose updates.
package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"newsdigest/internal/domain/entity"
	"newsdigest/internal/repository"
)

// snapshot is the on-disk representation of the recipient set.
// Insertion order is preserved across rewrites.
type snapshot struct {
	Recipients []string `json:"recipients"`
}

// RecipientRepo persists recipient membership in a single JSON file.
type RecipientRepo struct {
	path string
	mu   sync.Mutex
}

// NewRecipientRepo creates a repository backed by the JSON file at path.
// The file is created on first mutation; a missing file reads as empty.
func NewRecipientRepo(path string) repository.RecipientRepository {
	return &RecipientRepo{path: path}
}

// List implements repository.RecipientRepository.
func (r *RecipientRepo) List(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	snap, err := r.load()
	if err != nil {
		return nil, fmt.Errorf("List: %w", err)
	}

	out := make([]string, len(snap.Recipients))
	copy(out, snap.Recipients)
	return out, nil
}

// Add implements repository.RecipientRepository. Adding an identity that
// is already present is a no-op returning false.
func (r *RecipientRepo) Add(ctx context.Context, email string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	email = entity.NormalizeEmail(email)
	rec := entity.Recipient{Email: email}
	if err := rec.Validate(); err != nil {
		return false, fmt.Errorf("Add: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	snap, err := r.load()
	if err != nil {
		return false, fmt.Errorf("Add: %w", err)
	}

	for _, existing := range snap.Recipients {
		if existing == email {
			return false, nil
		}
	}

	snap.Recipients = append(snap.Recipients, email)
	if err := r.store(snap); err != nil {
		return false, fmt.Errorf("Add: %w", err)
	}

	slog.Debug("recipient added",
		slog.String("email", email),
		slog.Int("total", len(snap.Recipients)))
	return true, nil
}

// Remove implements repository.RecipientRepository. Removing an absent
// identity is a no-op returning false.
func (r *RecipientRepo) Remove(ctx context.Context, email string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	email = entity.NormalizeEmail(email)

	r.mu.Lock()
	defer r.mu.Unlock()

	snap, err := r.load()
	if err != nil {
		return false, fmt.Errorf("Remove: %w", err)
	}

	idx := -1
	for i, existing := range snap.Recipients {
		if existing == email {
			idx = i
			break
		}
	}
	if idx < 0 {
		return false, nil
	}

	snap.Recipients = append(snap.Recipients[:idx], snap.Recipients[idx+1:]...)
	if err := r.store(snap); err != nil {
		return false, fmt.Errorf("Remove: %w", err)
	}

	slog.Debug("recipient removed",
		slog.String("email", email),
		slog.Int("total", len(snap.Recipients)))
	return true, nil
}

// load reads the snapshot from disk. Callers must hold the mutex.
func (r *RecipientRepo) load() (*snapshot, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &snapshot{}, nil
		}
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	return &snap, nil
}

// store writes the snapshot atomically: the new content lands in a
// temporary file first and replaces the snapshot via rename, so a
// reader can never observe a partial write. Callers must hold the mutex.
func (r *RecipientRepo) store(snap *snapshot) error {
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	dir := filepath.Dir(r.path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create snapshot dir: %w", err)
		}
	}

	tmp := r.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	if err := os.Rename(tmp, r.path); err != nil {
		return fmt.Errorf("replace snapshot: %w", err)
	}
	return nil
}
