// Package selector picks the best frame for each page of a captured book.
//
// Frames are bucketed into time windows, ranked by visual quality, and the
// finalists of each window are re-ranked by how much readable text they
// carry. Winners that show the same printed page number collapse to the
// best one.
package selector

import (
	"github.com/readalongapp/digitizer/internal/media/quality"
	"github.com/readalongapp/digitizer/internal/tuning"
)

// Options configures a selection run.
type Options struct {
	// WindowSeconds is the length of each selection time window.
	WindowSeconds float64
	// MinScore drops frames below this visual score before ranking.
	MinScore float64
	// CandidatesPerWindow caps how many finalists per window are recognized.
	// Zero means the calibrated default.
	CandidatesPerWindow int
	// UseOCR enables text-coverage ranking and page deduplication. Without
	// it the top visual finalist of each window wins directly.
	UseOCR bool
	// Workers bounds concurrent OCR calls. Zero means the calibrated
	// default; values above the ceiling are clamped.
	Workers int
	// Language is the recognition language hint.
	Language string
}

// withDefaults fills zero values with calibrated defaults.
func (o Options) withDefaults() Options {
	if o.CandidatesPerWindow <= 0 {
		o.CandidatesPerWindow = tuning.DefaultCandidatesPerWindow
	}
	if o.Workers <= 0 {
		o.Workers = tuning.DefaultOCRWorkers
	}
	if o.Workers > tuning.MaxOCRWorkers {
		o.Workers = tuning.MaxOCRWorkers
	}
	return o
}

// Recognition is the OCR enrichment of a frame score. It is produced
// lazily, only for finalists, so the visual scoring stage stays pure.
type Recognition struct {
	// Text is the recognized page text.
	Text string `json:"text"`
	// TextLength is the recognized text length in runes.
	TextLength int `json:"recognizedTextLength"`
	// Confidence is the mean word confidence in [0, 100].
	Confidence float64 `json:"ocrConfidence"`
	// PageNumber is the printed page number detected near the bottom of the
	// text, or 0 when none was found.
	PageNumber int `json:"detectedPageNumber,omitempty"`
	// Coverage is TextLength * (1 + Confidence/200): the textual coverage
	// score used for finalist ranking and deduplication.
	Coverage float64 `json:"textCoverageScore"`
}

// Selected is a winning frame for one page.
type Selected struct {
	Score quality.FrameScore `json:"score"`
	// Recognition is nil when selection ran without OCR.
	Recognition *Recognition `json:"recognition,omitempty"`
}

// PageNumber returns the detected page number and whether one exists.
func (s Selected) PageNumber() (int, bool) {
	if s.Recognition == nil || s.Recognition.PageNumber == 0 {
		return 0, false
	}
	return s.Recognition.PageNumber, true
}

// coverageScore computes the textual coverage score: recognized length
// weighted up by confidence. A crisp photo of an obscured page carries
// little text and loses to a softer but fully visible one.
func coverageScore(textLength int, confidence float64) float64 {
	return float64(textLength) * (1 + confidence/tuning.ConfidenceDivisor)
}
