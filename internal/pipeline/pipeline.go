package pipeline

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/readalongapp/digitizer/internal/chapters"
	"github.com/readalongapp/digitizer/internal/errors"
	"github.com/readalongapp/digitizer/internal/media/frames"
	"github.com/readalongapp/digitizer/internal/media/preview"
	"github.com/readalongapp/digitizer/internal/media/quality"
	"github.com/readalongapp/digitizer/internal/selector"
	"github.com/readalongapp/digitizer/internal/store"
)

// Pipeline digitizes one capture end to end.
type Pipeline struct {
	extractor *frames.Extractor
	selector  *selector.Selector
	logger    *slog.Logger
}

// New creates a pipeline from its stages.
func New(extractor *frames.Extractor, sel *selector.Selector, logger *slog.Logger) *Pipeline {
	return &Pipeline{
		extractor: extractor,
		selector:  sel,
		logger:    logger,
	}
}

// Run digitizes the capture at sourcePath and writes the book artifacts to
// {OutputPath}/{jobID}. A directory source is treated as a photo archive,
// anything else as a video.
func (p *Pipeline) Run(ctx context.Context, jobID, sourcePath string, opts Options) (*Result, error) {
	started := time.Now()

	info, err := os.Stat(sourcePath)
	if err != nil {
		return nil, errors.Wrapf(err, errors.CodeNotFound, "stat capture %s", sourcePath)
	}

	bookDir := filepath.Join(opts.OutputPath, jobID)
	if err := os.MkdirAll(bookDir, 0o755); err != nil {
		return nil, errors.Wrapf(err, errors.CodeInternal, "create book directory %s", bookDir)
	}

	kind := store.SourceVideo
	var extracted []frames.Frame
	if info.IsDir() {
		kind = store.SourceArchive
		extracted, err = p.extractor.ListArchive(sourcePath)
	} else {
		extracted, err = p.extractor.ExtractVideo(ctx, sourcePath, filepath.Join(bookDir, "frames"))
	}
	if err != nil {
		return nil, err
	}

	scored, dropped := p.scoreFrames(ctx, extracted, opts.ScoreWorkers)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(scored) == 0 {
		return nil, errors.EmptyInput("no frames survived decoding")
	}

	winners, err := p.selector.Select(ctx, scored, opts.Select)
	if err != nil {
		return nil, err
	}

	pages := p.buildPages(winners, opts.Previews)
	text := assembleBookText(winners)
	detected := chapters.Detect(text)

	book := Book{
		ID:          jobID,
		SourcePath:  sourcePath,
		SourceKind:  kind,
		CreatedAt:   started.UTC(),
		HasChapters: detected.HasChapters,
		Chapters:    detected.Chapters,
	}
	if err := p.writeArtifacts(bookDir, book, pages, text); err != nil {
		return nil, err
	}

	result := &Result{
		JobID:         jobID,
		SourcePath:    sourcePath,
		SourceKind:    kind,
		BookDir:       bookDir,
		FrameCount:    len(extracted),
		DroppedFrames: dropped,
		PageCount:     len(pages),
		ChapterCount:  len(detected.Chapters),
		HasChapters:   detected.HasChapters,
		Elapsed:       time.Since(started),
	}

	p.logger.Info("digitization finished",
		"job_id", jobID,
		"source", sourcePath,
		"frames", result.FrameCount,
		"dropped", result.DroppedFrames,
		"pages", result.PageCount,
		"chapters", result.ChapterCount,
		"elapsed", result.Elapsed,
	)
	return result, nil
}

// scoreFrames measures visual quality concurrently. Frames that fail to
// decode are dropped and counted instead of failing the run.
func (p *Pipeline) scoreFrames(ctx context.Context, extracted []frames.Frame, workers int) ([]quality.FrameScore, int) {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > len(extracted) {
		workers = len(extracted)
	}

	type result struct {
		index int
		score quality.FrameScore
		err   error
	}

	jobs := make(chan int, len(extracted))
	results := make(chan result, len(extracted))

	for w := 0; w < workers; w++ {
		go func() {
			for i := range jobs {
				select {
				case <-ctx.Done():
					results <- result{index: i, err: ctx.Err()}
					continue
				default:
				}

				score, err := quality.Score(extracted[i])
				results <- result{index: i, score: score, err: err}
			}
		}()
	}

	for i := range extracted {
		jobs <- i
	}
	close(jobs)

	scored := make([]quality.FrameScore, 0, len(extracted))
	byIndex := make([]*quality.FrameScore, len(extracted))
	dropped := 0

	for range extracted {
		r := <-results
		if r.err != nil {
			if !errors.Is(r.err, context.Canceled) && !errors.Is(r.err, context.DeadlineExceeded) {
				p.logger.Warn("dropping undecodable frame",
					"path", extracted[r.index].Path,
					"error", r.err,
				)
			}
			dropped++
			continue
		}
		byIndex[r.index] = &r.score
	}

	// Preserve capture order regardless of completion order.
	for _, s := range byIndex {
		if s != nil {
			scored = append(scored, *s)
		}
	}
	return scored, dropped
}

// buildPages wraps winners as output pages, attaching previews when enabled.
func (p *Pipeline) buildPages(winners []selector.Selected, previews bool) []Page {
	pages := make([]Page, len(winners))
	for i, w := range winners {
		pages[i] = Page{Selected: w}
		if !previews {
			continue
		}
		hash, err := preview.ComputeBlurHash(w.Score.Frame.Path)
		if err != nil {
			p.logger.Warn("preview computation failed",
				"path", w.Score.Frame.Path,
				"error", err,
			)
			continue
		}
		pages[i].Preview = hash
	}
	return pages
}

// assembleBookText joins the winners' recognized texts into one document.
// Pages with a detected page number are preceded by a page marker so chapter
// detection can convert page boundaries into paragraph breaks.
func assembleBookText(winners []selector.Selected) string {
	var b strings.Builder
	for _, w := range winners {
		if w.Recognition == nil || w.Recognition.Text == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteString("\n\n")
		}
		if page, ok := w.PageNumber(); ok {
			b.WriteString(chapters.PageMarker(page))
			b.WriteString("\n")
		}
		b.WriteString(strings.TrimSpace(w.Recognition.Text))
	}
	return b.String()
}

func (p *Pipeline) writeArtifacts(bookDir string, book Book, pages []Page, text string) error {
	if err := writeJSON(filepath.Join(bookDir, "book.json"), book); err != nil {
		return err
	}
	if err := writeJSON(filepath.Join(bookDir, "pages.json"), pages); err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(bookDir, "text.txt"), []byte(text), 0o644); err != nil {
		return errors.Wrap(err, errors.CodeInternal, "write book text")
	}
	return nil
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errors.Wrapf(err, errors.CodeInternal, "marshal %s", filepath.Base(path))
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrapf(err, errors.CodeInternal, "write %s", filepath.Base(path))
	}
	return nil
}
