package frames

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/readalongapp/digitizer/internal/errors"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestListArchive(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"IMG_0003.jpg", "IMG_0001.jpg", "IMG_0002.jpg", "notes.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644))
	}

	e := NewExtractor(2, "jpg", "", testLogger())
	got, err := e.ListArchive(dir)
	require.NoError(t, err)

	require.Len(t, got, 3, "non-image files are skipped")
	assert.Equal(t, filepath.Join(dir, "IMG_0001.jpg"), got[0].Path)
	assert.Equal(t, filepath.Join(dir, "IMG_0003.jpg"), got[2].Path)

	for i, f := range got {
		assert.Equal(t, i+1, f.Ordinal)
		assert.InDelta(t, float64(i+1)/2.0, f.Timestamp, 1e-9)
	}
}

func TestListArchive_Empty(t *testing.T) {
	e := NewExtractor(1, "jpg", "", testLogger())
	_, err := e.ListArchive(t.TempDir())
	assert.ErrorIs(t, err, errors.ErrExtractFailed)
}

func TestListArchive_MissingDir(t *testing.T) {
	e := NewExtractor(1, "jpg", "", testLogger())
	_, err := e.ListArchive(filepath.Join(t.TempDir(), "nope"))
	assert.ErrorIs(t, err, errors.ErrExtractFailed)
}

func TestAssembleTimestamps(t *testing.T) {
	e := NewExtractor(4, "png", "", testLogger())
	got := e.assemble([]string{"a.png", "b.png"})

	require.Len(t, got, 2)
	assert.Equal(t, 1, got[0].Ordinal)
	assert.InDelta(t, 0.25, got[0].Timestamp, 1e-9)
	assert.InDelta(t, 0.5, got[1].Timestamp, 1e-9)
}

func TestIsImageFile(t *testing.T) {
	assert.True(t, isImageFile("page.JPG"))
	assert.True(t, isImageFile("page.webp"))
	assert.False(t, isImageFile("page.mp4"))
	assert.False(t, isImageFile("page"))
}
