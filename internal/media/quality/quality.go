// Package quality scores the visual quality of extracted frames.
//
// A frame of a printed page is usable when it is sharp, evenly exposed, and
// has enough contrast for recognition. The composite visual score combines
// those three measurements so downstream selection can rank frames from the
// same page against each other.
package quality

import (
	"math"

	"github.com/readalongapp/digitizer/internal/media/frames"
	"github.com/readalongapp/digitizer/internal/tuning"
)

// Metrics are the visual-quality measurements for one frame.
type Metrics struct {
	// Sharpness is the variance of the discrete Laplacian response.
	// Higher variance signals less blur and less occlusion.
	Sharpness float64 `json:"sharpness"`
	// Brightness is the mean luma.
	Brightness float64 `json:"brightness"`
	// Contrast is the population standard deviation of luma.
	Contrast float64 `json:"contrast"`
	// Visual is the composite score used for ranking.
	Visual float64 `json:"visualScore"`
}

// FrameScore is a frame together with its visual-quality metrics.
// Produced once, never mutated.
type FrameScore struct {
	Frame   frames.Frame `json:"frame"`
	Metrics Metrics      `json:"metrics"`
}

// Score decodes the frame's image and measures its visual quality.
// The only error is a decode failure; measurement itself cannot fail.
func Score(frame frames.Frame) (FrameScore, error) {
	g, err := DecodeGray(frame.Path)
	if err != nil {
		return FrameScore{}, err
	}
	return FrameScore{Frame: frame, Metrics: Measure(g)}, nil
}

// Measure computes visual-quality metrics from a luma buffer.
// Pure function; no side effects.
func Measure(g *GrayBuffer) Metrics {
	m := Metrics{
		Sharpness: laplacianVariance(g),
	}
	m.Brightness, m.Contrast = lumaStats(g)
	m.Visual = compositeScore(m.Sharpness, m.Brightness, m.Contrast)
	return m
}

// compositeScore folds the three measurements into one ranking value.
// The weights are calibrated; see the tuning package.
func compositeScore(sharpness, brightness, contrast float64) float64 {
	normalizedSharpness := math.Min(sharpness/tuning.SharpnessScale, tuning.SharpnessCap)
	brightnessPenalty := math.Abs(brightness-tuning.MidGray) / tuning.MidGray
	contrastBonus := contrast / tuning.MidGray

	return normalizedSharpness *
		(1 - brightnessPenalty*tuning.BrightnessPenaltyWeight) *
		(1 + contrastBonus*tuning.ContrastBonusWeight)
}

// laplacianVariance computes the variance of the 4-neighbour discrete
// Laplacian (4*center - left - right - up - down) over interior pixels.
// The 1-pixel border is excluded. Images smaller than 3x3 have no interior
// and score zero.
func laplacianVariance(g *GrayBuffer) float64 {
	w, h := g.Width, g.Height
	if w < 3 || h < 3 {
		return 0
	}

	var sum, sumSq float64
	n := float64((w - 2) * (h - 2))

	for y := 1; y < h-1; y++ {
		row := y * w
		for x := 1; x < w-1; x++ {
			c := float64(g.Pix[row+x])
			lap := 4*c -
				float64(g.Pix[row+x-1]) -
				float64(g.Pix[row+x+1]) -
				float64(g.Pix[row-w+x]) -
				float64(g.Pix[row+w+x])
			sum += lap
			sumSq += lap * lap
		}
	}

	mean := sum / n
	return sumSq/n - mean*mean
}

// lumaStats returns the mean and population standard deviation of luma.
func lumaStats(g *GrayBuffer) (mean, stddev float64) {
	if len(g.Pix) == 0 {
		return 0, 0
	}

	var sum, sumSq float64
	for _, p := range g.Pix {
		v := float64(p)
		sum += v
		sumSq += v * v
	}

	n := float64(len(g.Pix))
	mean = sum / n
	variance := sumSq/n - mean*mean
	if variance < 0 {
		// Floating-point cancellation on flat images.
		variance = 0
	}
	return mean, math.Sqrt(variance)
}
