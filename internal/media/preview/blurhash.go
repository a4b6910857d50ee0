// Package preview computes compact placeholder previews for selected page
// frames so clients can render a page list before the images load.
package preview

import (
	"image"
	_ "image/gif"  // Register GIF decoder
	_ "image/jpeg" // Register JPEG decoder
	_ "image/png"  // Register PNG decoder
	"os"

	"github.com/bbrks/go-blurhash"
	_ "golang.org/x/image/webp" // Register WebP decoder

	"github.com/readalongapp/digitizer/internal/errors"
)

// thumbnailSize is the target size for BlurHash computation. A small
// thumbnail produces nearly identical hashes at a fraction of the cost.
const thumbnailSize = 64

// ComputeBlurHash generates a BlurHash placeholder string for a page image.
// Uses 4x3 components, which keeps the hash around 20-30 characters while
// still showing the page layout.
func ComputeBlurHash(imagePath string) (string, error) {
	file, err := os.Open(imagePath)
	if err != nil {
		return "", errors.Wrapf(err, errors.CodeDecodeFailed, "open image %s", imagePath)
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		return "", errors.Wrapf(err, errors.CodeDecodeFailed, "decode image %s", imagePath)
	}

	hash, err := blurhash.Encode(4, 3, thumbnail(img))
	if err != nil {
		return "", errors.Wrap(err, errors.CodeInternal, "encode blurhash")
	}
	return hash, nil
}

// thumbnail downscales the image with nearest-neighbor sampling, preserving
// aspect ratio. Small images pass through untouched.
func thumbnail(img image.Image) image.Image {
	bounds := img.Bounds()
	srcWidth := bounds.Dx()
	srcHeight := bounds.Dy()

	if srcWidth <= thumbnailSize && srcHeight <= thumbnailSize {
		return img
	}

	var dstWidth, dstHeight int
	if srcWidth > srcHeight {
		dstWidth = thumbnailSize
		dstHeight = max((srcHeight*thumbnailSize)/srcWidth, 1)
	} else {
		dstHeight = thumbnailSize
		dstWidth = max((srcWidth*thumbnailSize)/srcHeight, 1)
	}

	dst := image.NewRGBA(image.Rect(0, 0, dstWidth, dstHeight))
	xRatio := float64(srcWidth) / float64(dstWidth)
	yRatio := float64(srcHeight) / float64(dstHeight)

	for y := 0; y < dstHeight; y++ {
		for x := 0; x < dstWidth; x++ {
			srcX := int(float64(x) * xRatio)
			srcY := int(float64(y) * yRatio)
			dst.Set(x, y, img.At(bounds.Min.X+srcX, bounds.Min.Y+srcY))
		}
	}
	return dst
}
