// Package ocr defines the text recognition contract used by frame selection
// and provides a Tesseract-backed implementation.
package ocr

import "context"

// Result captures recognition output for a single image.
type Result struct {
	// Text is the linearized recognized text.
	Text string
	// Confidence is the mean word confidence in [0, 100].
	Confidence float64
}

// Engine is the recognition provider contract: one image in, one result out.
// Callers treat failures as degraded (empty, zero-confidence) results rather
// than hard errors; see the selector.
type Engine interface {
	Name() string
	Recognize(ctx context.Context, imagePath, language string) (Result, error)
}
