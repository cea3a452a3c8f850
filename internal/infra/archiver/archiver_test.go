package archiver

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"newsdigest/internal/domain/entity"
)

func testDigest() entity.Digest {
	return entity.Digest{
		CycleDate: time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC),
		Source:    "# Daily Digest for 2026-03-14\n\nHello.\n",
		HTML:      "<!DOCTYPE html>\n<html><body>Hello.</body></html>\n",
	}
}

func TestSave_WritesBothSnapshots(t *testing.T) {
	dir := t.TempDir()
	a, err := New(dir)
	require.NoError(t, err)

	require.NoError(t, a.Save(testDigest()))

	md, err := os.ReadFile(filepath.Join(dir, "2026-03-14.md"))
	require.NoError(t, err)
	assert.Equal(t, testDigest().Source, string(md))

	html, err := os.ReadFile(filepath.Join(dir, "2026-03-14.html"))
	require.NoError(t, err)
	assert.Equal(t, testDigest().HTML, string(html))
}

func TestSave_RerunOverwrites(t *testing.T) {
	dir := t.TempDir()
	a, err := New(dir)
	require.NoError(t, err)

	first := testDigest()
	require.NoError(t, a.Save(first))

	second := first
	second.Source = "# Daily Digest for 2026-03-14\n\nRevised.\n"
	require.NoError(t, a.Save(second))

	md, err := os.ReadFile(filepath.Join(dir, "2026-03-14.md"))
	require.NoError(t, err)
	assert.Equal(t, second.Source, string(md))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 2, "one .md and one .html per date")
}

func TestSave_LeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	a, err := New(dir)
	require.NoError(t, err)

	require.NoError(t, a.Save(testDigest()))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, e := range entries {
		assert.NotContains(t, e.Name(), ".tmp")
	}
}

func TestSave_InvalidDigestRejected(t *testing.T) {
	a, err := New(t.TempDir())
	require.NoError(t, err)

	err = a.Save(entity.Digest{})

	assert.Error(t, err)
}

func TestNew_CreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "archive")

	_, err := New(dir)

	require.NoError(t, err)
	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestLoad(t *testing.T) {
	a, err := New(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, a.Save(testDigest()))

	src, err := a.Load("2026-03-14")
	require.NoError(t, err)
	assert.Equal(t, testDigest().Source, src)

	_, err = a.Load("1999-01-01")
	assert.True(t, errors.Is(err, entity.ErrNotFound))
}
