package quality

import (
	"image"
	_ "image/gif"  // Register GIF decoder
	_ "image/jpeg" // Register JPEG decoder
	_ "image/png"  // Register PNG decoder
	"os"

	_ "golang.org/x/image/webp" // Register WebP decoder

	"github.com/readalongapp/digitizer/internal/errors"
)

// GrayBuffer is a decoded image reduced to a single 8-bit luma channel.
type GrayBuffer struct {
	Width  int
	Height int
	Pix    []uint8
}

// At returns the luma value at (x, y). No bounds checking.
func (g *GrayBuffer) At(x, y int) uint8 {
	return g.Pix[y*g.Width+x]
}

// DecodeGray opens and decodes an image file into a luma buffer.
// The only failure mode is an unreadable or undecodable image.
func DecodeGray(path string) (*GrayBuffer, error) {
	file, err := os.Open(path) //#nosec G304 -- Frame paths come from our own extractor
	if err != nil {
		return nil, errors.Wrapf(err, errors.CodeDecodeFailed, "open image %s", path)
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		return nil, errors.Wrapf(err, errors.CodeDecodeFailed, "decode image %s", path)
	}

	return ToGray(img), nil
}

// ToGray converts a decoded image to a luma buffer.
// Fast paths avoid per-pixel interface calls for the common decode types.
func ToGray(img image.Image) *GrayBuffer {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	g := &GrayBuffer{Width: w, Height: h, Pix: make([]uint8, w*h)}

	switch src := img.(type) {
	case *image.Gray:
		for y := 0; y < h; y++ {
			srcRow := src.Pix[(y+bounds.Min.Y-src.Rect.Min.Y)*src.Stride:]
			copy(g.Pix[y*w:(y+1)*w], srcRow[bounds.Min.X-src.Rect.Min.X:])
		}
	case *image.YCbCr:
		// Y plane is already luma.
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				g.Pix[y*w+x] = src.Y[src.YOffset(x+bounds.Min.X, y+bounds.Min.Y)]
			}
		}
	default:
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				r, gr, b, _ := img.At(x+bounds.Min.X, y+bounds.Min.Y).RGBA()
				// BT.601 luma weights on 16-bit channel values.
				lum := (299*r + 587*gr + 114*b) / 1000
				g.Pix[y*w+x] = uint8(lum >> 8)
			}
		}
	}

	return g
}
