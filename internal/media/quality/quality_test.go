package quality

import (
	"image"
	"image/png"
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/readalongapp/digitizer/internal/errors"
	"github.com/readalongapp/digitizer/internal/media/frames"
)

// flatBuffer returns a w x h buffer filled with a single luma value.
func flatBuffer(w, h int, v uint8) *GrayBuffer {
	g := &GrayBuffer{Width: w, Height: h, Pix: make([]uint8, w*h)}
	for i := range g.Pix {
		g.Pix[i] = v
	}
	return g
}

// checkerboard returns a w x h buffer alternating 0 and 255 per pixel.
func checkerboard(w, h int) *GrayBuffer {
	g := &GrayBuffer{Width: w, Height: h, Pix: make([]uint8, w*h)}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if (x+y)%2 == 0 {
				g.Pix[y*w+x] = 255
			}
		}
	}
	return g
}

// noiseBuffer returns a w x h buffer of seeded random luma.
func noiseBuffer(w, h int, seed int64) *GrayBuffer {
	rng := rand.New(rand.NewSource(seed))
	g := &GrayBuffer{Width: w, Height: h, Pix: make([]uint8, w*h)}
	for i := range g.Pix {
		g.Pix[i] = uint8(rng.Intn(256))
	}
	return g
}

// boxBlur applies a 3x3 mean filter, leaving the border unchanged.
func boxBlur(g *GrayBuffer) *GrayBuffer {
	out := &GrayBuffer{Width: g.Width, Height: g.Height, Pix: make([]uint8, len(g.Pix))}
	copy(out.Pix, g.Pix)
	for y := 1; y < g.Height-1; y++ {
		for x := 1; x < g.Width-1; x++ {
			var sum int
			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					sum += int(g.At(x+dx, y+dy))
				}
			}
			out.Pix[y*g.Width+x] = uint8(sum / 9)
		}
	}
	return out
}

func TestMeasure_FlatImage(t *testing.T) {
	m := Measure(flatBuffer(32, 32, 128))

	assert.Zero(t, m.Sharpness)
	assert.Zero(t, m.Contrast)
	assert.InDelta(t, 128.0, m.Brightness, 0.001)
	assert.Zero(t, m.Visual)
}

func TestMeasure_CheckerboardSharpness(t *testing.T) {
	m := Measure(checkerboard(64, 64))

	// Every interior pixel sees four opposite neighbours, so the Laplacian
	// response alternates between +1020 and -1020 with zero mean.
	assert.InDelta(t, 1020.0*1020.0, m.Sharpness, 1.0)
	assert.InDelta(t, 127.5, m.Brightness, 0.001)
	assert.InDelta(t, 127.5, m.Contrast, 0.001)
}

func TestMeasure_CompositeScore(t *testing.T) {
	m := Measure(checkerboard(64, 64))

	// normalized sharpness caps at 5; brightness 127.5 and contrast 127.5
	// give a tiny penalty and a near-full bonus.
	want := 5.0 * (1 - (0.5/128.0)*0.3) * (1 + (127.5/128.0)*0.2)
	assert.InDelta(t, want, m.Visual, 0.0001)
}

func TestMeasure_BlurStrictlyDecreasesSharpness(t *testing.T) {
	tests := []struct {
		name string
		img  *GrayBuffer
	}{
		{"checkerboard", checkerboard(48, 48)},
		{"noise", noiseBuffer(48, 48, 1)},
		{"noise alt seed", noiseBuffer(64, 32, 42)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sharp := Measure(tt.img).Sharpness
			blurred := Measure(boxBlur(tt.img)).Sharpness
			doubleBlurred := Measure(boxBlur(boxBlur(tt.img))).Sharpness

			assert.Less(t, blurred, sharp, "one blur pass must reduce sharpness")
			assert.Less(t, doubleBlurred, blurred, "second blur pass must reduce it further")
		})
	}
}

func TestMeasure_TinyImage(t *testing.T) {
	// Images without interior pixels cannot be measured for sharpness.
	m := Measure(flatBuffer(2, 2, 200))
	assert.Zero(t, m.Sharpness)
	assert.InDelta(t, 200.0, m.Brightness, 0.001)
}

func TestScore_FromPNGFile(t *testing.T) {
	src := image.NewGray(image.Rect(0, 0, 32, 32))
	for y := 0; y < 32; y++ {
		for x := 0; x < 32; x++ {
			if (x+y)%2 == 0 {
				src.Pix[y*src.Stride+x] = 255
			}
		}
	}

	path := filepath.Join(t.TempDir(), "frame_0001.png")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, src))
	require.NoError(t, f.Close())

	score, err := Score(frames.Frame{Path: path, Ordinal: 1, Timestamp: 0.5})
	require.NoError(t, err)

	want := Measure(ToGray(src))
	assert.Equal(t, want, score.Metrics)
	assert.Equal(t, 1, score.Frame.Ordinal)
}

func TestScore_DecodeError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "not-an-image.jpg")
	require.NoError(t, os.WriteFile(path, []byte("definitely not a raster"), 0o644))

	_, err := Score(frames.Frame{Path: path})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrDecodeFailed))
}

func TestScore_MissingFile(t *testing.T) {
	_, err := Score(frames.Frame{Path: filepath.Join(t.TempDir(), "missing.png")})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrDecodeFailed))
}

func TestToGray_RGBAGrayPixels(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for i := 0; i < len(src.Pix); i += 4 {
		src.Pix[i] = 100   // R
		src.Pix[i+1] = 100 // G
		src.Pix[i+2] = 100 // B
		src.Pix[i+3] = 255 // A
	}

	g := ToGray(src)
	for _, p := range g.Pix {
		assert.InDelta(t, 100, int(p), 1)
	}
}
