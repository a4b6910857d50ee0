package preview

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/readalongapp/digitizer/internal/errors"
)

func writeTestPNG(t *testing.T, width, height int) string {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 7), G: uint8(y * 11), B: 128, A: 255})
		}
	}

	path := filepath.Join(t.TempDir(), "page.png")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
	return path
}

func TestComputeBlurHash(t *testing.T) {
	path := writeTestPNG(t, 120, 160)

	hash, err := ComputeBlurHash(path)
	require.NoError(t, err)
	assert.NotEmpty(t, hash)
	assert.GreaterOrEqual(t, len(hash), 6)
}

func TestComputeBlurHash_Deterministic(t *testing.T) {
	path := writeTestPNG(t, 80, 60)

	first, err := ComputeBlurHash(path)
	require.NoError(t, err)
	second, err := ComputeBlurHash(path)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestComputeBlurHash_MissingFile(t *testing.T) {
	_, err := ComputeBlurHash(filepath.Join(t.TempDir(), "missing.png"))
	assert.ErrorIs(t, err, errors.ErrDecodeFailed)
}

func TestComputeBlurHash_NotAnImage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "junk.png")
	require.NoError(t, os.WriteFile(path, []byte("not an image"), 0o644))

	_, err := ComputeBlurHash(path)
	assert.ErrorIs(t, err, errors.ErrDecodeFailed)
}

func TestThumbnail_PreservesSmallImages(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 32, 32))
	assert.Equal(t, img.Bounds(), thumbnail(img).Bounds())
}

func TestThumbnail_DownscalesKeepingAspect(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 640, 320))
	got := thumbnail(img).Bounds()
	assert.Equal(t, 64, got.Dx())
	assert.Equal(t, 32, got.Dy())
}
