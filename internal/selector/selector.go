package selector

import (
	"context"
	"log/slog"
	"sort"
	"unicode/utf8"

	"github.com/readalongapp/digitizer/internal/media/quality"
	"github.com/readalongapp/digitizer/internal/ocr"
)

// Selector picks winning frames from scored captures.
type Selector struct {
	engine ocr.Engine
	logger *slog.Logger
}

// New creates a selector. The engine may be nil when selection always runs
// with OCR disabled.
func New(engine ocr.Engine, logger *slog.Logger) *Selector {
	return &Selector{
		engine: engine,
		logger: logger,
	}
}

// window is a run of frames sharing a selection time bucket. Boundaries are
// data-driven: a window closes once a frame's timestamp reaches
// start + WindowSeconds, and that frame opens the next window. Irregular
// sampling therefore never produces evenly spaced windows.
type window struct {
	start  float64
	scores []quality.FrameScore
}

// Select partitions the scored frames into time windows and picks at most
// one winner per window, then deduplicates winners by detected page number.
//
// An empty input yields an empty result, not an error. On cancellation the
// winners accumulated so far are returned together with the context error;
// in-flight recognitions finish, but no further windows are scheduled.
func (s *Selector) Select(ctx context.Context, scores []quality.FrameScore, opts Options) ([]Selected, error) {
	opts = opts.withDefaults()

	if len(scores) == 0 {
		return []Selected{}, nil
	}

	windows := partitionWindows(scores, opts.WindowSeconds)
	s.logger.Debug("partitioned frames into windows",
		"frames", len(scores),
		"windows", len(windows),
	)

	// Winners accumulate window by window; only this loop appends.
	winners := make([]Selected, 0, len(windows))

	for _, w := range windows {
		select {
		case <-ctx.Done():
			return winners, ctx.Err()
		default:
		}

		finalists := pickFinalists(w.scores, opts)
		if len(finalists) == 0 {
			// No readable finalists: the window yields no winner.
			s.logger.Debug("window has no finalists",
				"window_start", w.start,
				"frames", len(w.scores),
			)
			continue
		}

		if !opts.UseOCR {
			winners = append(winners, Selected{Score: finalists[0]})
			continue
		}

		winner := s.rankByCoverage(ctx, finalists, opts)
		winners = append(winners, winner)
	}

	if !opts.UseOCR {
		return winners, nil
	}

	deduped := dedupeByPage(winners)
	return orderByPage(deduped), nil
}

// pickFinalists filters a window's frames by minimum visual score and
// returns the top candidates ranked by visual score descending.
func pickFinalists(scores []quality.FrameScore, opts Options) []quality.FrameScore {
	finalists := make([]quality.FrameScore, 0, len(scores))
	for _, fs := range scores {
		if fs.Metrics.Visual >= opts.MinScore {
			finalists = append(finalists, fs)
		}
	}

	sort.SliceStable(finalists, func(i, j int) bool {
		return finalists[i].Metrics.Visual > finalists[j].Metrics.Visual
	})

	if len(finalists) > opts.CandidatesPerWindow {
		finalists = finalists[:opts.CandidatesPerWindow]
	}
	return finalists
}

// rankByCoverage recognizes each finalist and returns the one with the
// highest textual coverage. Recognition failures degrade the candidate to
// an empty zero-confidence result instead of aborting the window; ties
// (including the all-failed case) fall back to the visual ranking.
func (s *Selector) rankByCoverage(ctx context.Context, finalists []quality.FrameScore, opts Options) Selected {
	recognized := s.recognizeAll(ctx, finalists, opts)

	best := 0
	for i := 1; i < len(recognized); i++ {
		if recognized[i].Coverage > recognized[best].Coverage {
			best = i
		}
	}

	winner := Selected{
		Score:       finalists[best],
		Recognition: &recognized[best],
	}
	if page, ok := DetectPageNumber(winner.Recognition.Text); ok {
		winner.Recognition.PageNumber = page
	}
	return winner
}

// recognizeAll runs OCR over the finalists through a bounded worker pool.
// Each call materializes a decoded raster plus recognition buffers, so the
// pool stays small to bound peak memory.
func (s *Selector) recognizeAll(ctx context.Context, finalists []quality.FrameScore, opts Options) []Recognition {
	type job struct {
		index int
		path  string
	}
	type result struct {
		index int
		rec   Recognition
	}

	workers := opts.Workers
	if workers > len(finalists) {
		workers = len(finalists)
	}

	jobs := make(chan job, len(finalists))
	results := make(chan result, len(finalists))

	for w := 0; w < workers; w++ {
		go func() {
			for j := range jobs {
				res, err := s.engine.Recognize(ctx, j.path, opts.Language)
				if err != nil {
					// Degrade rather than abort: the candidate simply
					// carries no text.
					s.logger.Warn("recognition failed, degrading candidate",
						"path", j.path,
						"error", err,
					)
					results <- result{index: j.index}
					continue
				}

				length := utf8.RuneCountInString(res.Text)
				results <- result{index: j.index, rec: Recognition{
					Text:       res.Text,
					TextLength: length,
					Confidence: res.Confidence,
					Coverage:   coverageScore(length, res.Confidence),
				}}
			}
		}()
	}

	for i, fs := range finalists {
		jobs <- job{index: i, path: fs.Frame.Path}
	}
	close(jobs)

	recognized := make([]Recognition, len(finalists))
	for range finalists {
		r := <-results
		recognized[r.index] = r.rec
	}
	return recognized
}

// partitionWindows buckets timestamp-ordered scores into running windows.
func partitionWindows(scores []quality.FrameScore, windowSeconds float64) []window {
	ordered := make([]quality.FrameScore, len(scores))
	copy(ordered, scores)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Frame.Timestamp < ordered[j].Frame.Timestamp
	})

	var windows []window
	for _, fs := range ordered {
		if len(windows) == 0 || fs.Frame.Timestamp >= windows[len(windows)-1].start+windowSeconds {
			windows = append(windows, window{start: fs.Frame.Timestamp})
		}
		last := &windows[len(windows)-1]
		last.scores = append(last.scores, fs)
	}
	return windows
}

// dedupeByPage collapses winners sharing a detected page number to the one
// with the higher coverage. Winners without a page number are kept.
func dedupeByPage(winners []Selected) []Selected {
	bestForPage := make(map[int]Selected)
	var pageless []Selected

	for _, w := range winners {
		page, ok := w.PageNumber()
		if !ok {
			pageless = append(pageless, w)
			continue
		}
		if cur, exists := bestForPage[page]; !exists || w.Recognition.Coverage > cur.Recognition.Coverage {
			bestForPage[page] = w
		}
	}

	deduped := make([]Selected, 0, len(bestForPage)+len(pageless))
	for _, w := range bestForPage {
		deduped = append(deduped, w)
	}
	deduped = append(deduped, pageless...)
	return deduped
}

// orderByPage orders winners ascending by detected page number and inserts
// pageless winners at their timestamp position among numbered neighbours.
func orderByPage(winners []Selected) []Selected {
	paged := make([]Selected, 0, len(winners))
	pageless := make([]Selected, 0)

	for _, w := range winners {
		if _, ok := w.PageNumber(); ok {
			paged = append(paged, w)
		} else {
			pageless = append(pageless, w)
		}
	}

	sort.SliceStable(paged, func(i, j int) bool {
		pi, _ := paged[i].PageNumber()
		pj, _ := paged[j].PageNumber()
		return pi < pj
	})
	sort.SliceStable(pageless, func(i, j int) bool {
		return pageless[i].Score.Frame.Timestamp < pageless[j].Score.Frame.Timestamp
	})

	ordered := paged
	for _, p := range pageless {
		idx := len(ordered)
		for i, w := range ordered {
			if _, ok := w.PageNumber(); !ok {
				continue
			}
			if w.Score.Frame.Timestamp > p.Score.Frame.Timestamp {
				idx = i
				break
			}
		}
		ordered = append(ordered, Selected{})
		copy(ordered[idx+1:], ordered[idx:])
		ordered[idx] = p
	}
	return ordered
}
