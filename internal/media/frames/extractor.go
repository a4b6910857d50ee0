package frames

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/readalongapp/digitizer/internal/errors"
)

// Extractor produces ordered frames from a capture. Video captures are
// sampled through ffmpeg at a fixed rate; photo archives are listed directly.
type Extractor struct {
	fps        int
	format     string
	ffmpegPath string
	logger     *slog.Logger
}

// NewExtractor creates a frame extractor. ffmpegPath may be empty, in which
// case the binary is resolved from PATH.
func NewExtractor(fps int, format, ffmpegPath string, logger *slog.Logger) *Extractor {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	return &Extractor{fps: fps, format: format, ffmpegPath: ffmpegPath, logger: logger}
}

// FPS returns the configured sampling rate.
func (e *Extractor) FPS() int { return e.fps }

// ExtractVideo samples the video at the configured rate into outputDir and
// returns the frames in capture order. Each frame's timestamp is derived from
// its ordinal and the sampling rate.
func (e *Extractor) ExtractVideo(ctx context.Context, videoPath, outputDir string) ([]Frame, error) {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, errors.Wrapf(err, errors.CodeExtractFailed, "create frame directory %s", outputDir)
	}

	duration, err := e.probeDuration(ctx, videoPath)
	if err != nil {
		e.logger.Warn("could not probe video duration", "video", videoPath, "error", err)
	}

	pattern := filepath.Join(outputDir, fmt.Sprintf("frame_%%06d.%s", e.format))
	cmd := exec.CommandContext(ctx, e.ffmpegPath,
		"-i", videoPath,
		"-vf", fmt.Sprintf("fps=%d", e.fps),
		"-y",
		pattern,
	)

	output, err := cmd.CombinedOutput()
	if err != nil {
		return nil, errors.Wrapf(err, errors.CodeExtractFailed,
			"ffmpeg failed on %s: %s", videoPath, truncateOutput(output))
	}

	paths, err := filepath.Glob(filepath.Join(outputDir, "frame_*."+e.format))
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeExtractFailed, "glob extracted frames")
	}
	if len(paths) == 0 {
		return nil, errors.ExtractFailedf("no frames extracted from %s", videoPath)
	}
	sort.Strings(paths)

	result := e.assemble(paths)
	e.logger.Info("video frames extracted",
		"video", videoPath,
		"count", len(result),
		"fps", e.fps,
		"duration", duration,
	)
	return result, nil
}

// ListArchive maps a directory of still photos to frames. Files are taken in
// lexical order, so capture apps that number their shots keep their order.
func (e *Extractor) ListArchive(dir string) ([]Frame, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrapf(err, errors.CodeExtractFailed, "read photo archive %s", dir)
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() || !isImageFile(entry.Name()) {
			continue
		}
		paths = append(paths, filepath.Join(dir, entry.Name()))
	}
	if len(paths) == 0 {
		return nil, errors.ExtractFailedf("no images in archive %s", dir)
	}
	sort.Strings(paths)

	result := e.assemble(paths)
	e.logger.Info("photo archive listed", "dir", dir, "count", len(result))
	return result, nil
}

// assemble assigns ordinals and timestamps to extracted paths in order.
func (e *Extractor) assemble(paths []string) []Frame {
	result := make([]Frame, len(paths))
	for i, p := range paths {
		ordinal := i + 1
		result[i] = Frame{
			Path:      p,
			Ordinal:   ordinal,
			Timestamp: float64(ordinal) / float64(e.fps),
		}
	}
	return result
}

func (e *Extractor) probeDuration(ctx context.Context, videoPath string) (float64, error) {
	cmd := exec.CommandContext(ctx, "ffprobe",
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		videoPath,
	)
	output, err := cmd.Output()
	if err != nil {
		return 0, fmt.Errorf("ffprobe: %w", err)
	}
	duration, err := strconv.ParseFloat(strings.TrimSpace(string(output)), 64)
	if err != nil {
		return 0, fmt.Errorf("parse duration: %w", err)
	}
	return duration, nil
}

// truncateOutput keeps ffmpeg stderr readable in wrapped errors.
func truncateOutput(output []byte) string {
	const max = 512
	s := strings.TrimSpace(string(output))
	if len(s) > max {
		return s[len(s)-max:]
	}
	return s
}

func isImageFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".jpg", ".jpeg", ".png", ".webp", ".gif":
		return true
	}
	return false
}
