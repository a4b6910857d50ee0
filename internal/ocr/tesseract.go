package ocr

import (
	"context"
	"strings"

	"github.com/otiai10/gosseract/v2"

	"github.com/readalongapp/digitizer/internal/errors"
)

// TesseractEngine implements Engine using the gosseract client.
//
// A fresh client is created per call; recognition buffers for a full page
// are large, and releasing them eagerly matters more than amortizing setup.
type TesseractEngine struct {
	clientFactory func() *gosseract.Client
}

// NewTesseractEngine constructs a Tesseract-backed recognition engine.
func NewTesseractEngine() *TesseractEngine {
	return &TesseractEngine{clientFactory: gosseract.NewClient}
}

// Name identifies the engine in logs.
func (e *TesseractEngine) Name() string { return "tesseract" }

// Recognize performs OCR on a single image file.
func (e *TesseractEngine) Recognize(ctx context.Context, imagePath, language string) (Result, error) {
	select {
	case <-ctx.Done():
		return Result{}, ctx.Err()
	default:
	}

	c := e.clientFactory()
	defer c.Close()

	if err := c.SetImage(imagePath); err != nil {
		return Result{}, errors.Wrapf(err, errors.CodeOCRFailed, "set image %s", imagePath)
	}
	if language != "" {
		if err := c.SetLanguage(language); err != nil {
			return Result{}, errors.Wrapf(err, errors.CodeOCRFailed, "set language %s", language)
		}
	}

	text, err := c.Text()
	if err != nil {
		return Result{}, errors.Wrapf(err, errors.CodeOCRFailed, "recognize %s", imagePath)
	}

	return Result{
		Text:       strings.TrimSpace(text),
		Confidence: meanWordConfidence(c),
	}, nil
}

// meanWordConfidence averages per-word confidences from the recognizer.
// Returns 0 when no words were found, which downstream treats the same as
// a degraded result.
func meanWordConfidence(c *gosseract.Client) float64 {
	boxes, err := c.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil || len(boxes) == 0 {
		return 0
	}

	var sum float64
	for _, b := range boxes {
		sum += b.Confidence
	}
	return sum / float64(len(boxes))
}
