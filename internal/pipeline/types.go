// Package pipeline runs a capture through extraction, scoring, selection and
// chapter detection, and writes the digitized book artifacts.
package pipeline

import (
	"time"

	"github.com/readalongapp/digitizer/internal/chapters"
	"github.com/readalongapp/digitizer/internal/selector"
)

// Options configures one digitization run.
type Options struct {
	// OutputPath is the directory under which the book directory is created.
	OutputPath string
	// Select configures best-frame selection.
	Select selector.Options
	// ScoreWorkers bounds concurrent frame scoring. Zero means NumCPU.
	ScoreWorkers int
	// Previews enables BlurHash placeholder computation for winning frames.
	Previews bool
}

// Page is one digitized page: the winning frame plus its preview hash.
type Page struct {
	selector.Selected
	// Preview is the BlurHash placeholder, empty when previews are disabled
	// or computation failed.
	Preview string `json:"blurhash,omitempty"`
}

// Book is the primary output artifact written as book.json.
type Book struct {
	ID          string             `json:"id"`
	SourcePath  string             `json:"sourcePath"`
	SourceKind  string             `json:"sourceKind"`
	CreatedAt   time.Time          `json:"createdAt"`
	HasChapters bool               `json:"hasChapters"`
	Chapters    []chapters.Chapter `json:"chapters"`
}

// Result summarizes a finished run.
type Result struct {
	JobID      string `json:"jobId"`
	SourcePath string `json:"sourcePath"`
	SourceKind string `json:"sourceKind"`
	// BookDir is where the artifacts were written.
	BookDir string `json:"bookDir"`
	// FrameCount is how many frames the capture produced.
	FrameCount int `json:"frameCount"`
	// DroppedFrames is how many frames failed to decode and were skipped.
	DroppedFrames int `json:"droppedFrames"`
	// PageCount is how many winning pages survived selection.
	PageCount int `json:"pageCount"`
	// ChapterCount counts detected chapters; 1 with HasChapters false means
	// the untitled fallback.
	ChapterCount int           `json:"chapterCount"`
	HasChapters  bool          `json:"hasChapters"`
	Elapsed      time.Duration `json:"elapsed"`
}
