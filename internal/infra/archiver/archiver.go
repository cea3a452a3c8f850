// Package archiver persists a snapshot of each rendered digest so past
// cycles can be inspected after delivery.
package archiver

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"newsdigest/internal/domain/entity"
	"newsdigest/internal/observability/metrics"
	"newsdigest/pkg/config"
)

// Archiver writes one Markdown and one HTML snapshot per cycle date.
// Re-running a cycle overwrites that date's snapshots, so the archive
// holds exactly one digest per date.
type Archiver struct {
	dir string
}

// New creates an Archiver rooted at dir, creating it if needed.
func New(dir string) (*Archiver, error) {
	if dir == "" {
		return nil, fmt.Errorf("New: archive directory cannot be empty")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("New: create archive directory: %w", err)
	}
	return &Archiver{dir: dir}, nil
}

// NewFromEnv creates an Archiver at ARCHIVE_DIR (default "archive").
func NewFromEnv() (*Archiver, error) {
	return New(config.GetEnvString("ARCHIVE_DIR", "archive"))
}

// Save writes the digest's Markdown source and HTML rendering to
// <date>.md and <date>.html. Each file is written to a temporary file
// and renamed so readers never observe a partial snapshot.
func (a *Archiver) Save(digest entity.Digest) error {
	if err := digest.Validate(); err != nil {
		metrics.RecordArchiveWrite(err)
		return fmt.Errorf("Save: %w", err)
	}

	key := digest.DateKey()
	files := []struct {
		path string
		data string
	}{
		{filepath.Join(a.dir, key+".md"), digest.Source},
		{filepath.Join(a.dir, key+".html"), digest.HTML},
	}

	for _, f := range files {
		if err := writeAtomic(f.path, []byte(f.data)); err != nil {
			metrics.RecordArchiveWrite(err)
			return fmt.Errorf("Save: %w", err)
		}
	}

	metrics.RecordArchiveWrite(nil)
	slog.Info("archived digest snapshot",
		slog.String("date", key),
		slog.String("dir", a.dir))
	return nil
}

// Load reads back the Markdown snapshot for a date key, primarily for
// the archive inspection endpoint.
func (a *Archiver) Load(dateKey string) (string, error) {
	data, err := os.ReadFile(filepath.Join(a.dir, dateKey+".md"))
	if err != nil {
		if os.IsNotExist(err) {
			return "", entity.ErrNotFound
		}
		return "", fmt.Errorf("Load: %w", err)
	}
	return string(data), nil
}

// writeAtomic writes data to path via a temporary file and rename.
func writeAtomic(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("rename %s: %w", tmp, err)
	}
	return nil
}
