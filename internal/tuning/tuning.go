// Package tuning collects the calibrated constants used by the digitization
// pipeline. The values were tuned against real capture sessions of printed
// children's books; changing any of them changes score comparability across
// runs, so they all live here rather than scattered through the stages.
package tuning

// Frame quality scoring.
const (
	// SharpnessScale divides the raw Laplacian variance before capping.
	SharpnessScale = 1000.0
	// SharpnessCap bounds the normalized sharpness term.
	SharpnessCap = 5.0
	// MidGray is the ideal mean luma for a well-exposed page.
	MidGray = 128.0
	// BrightnessPenaltyWeight scales how hard over/under-exposure is punished.
	BrightnessPenaltyWeight = 0.3
	// ContrastBonusWeight scales the reward for high luma spread.
	ContrastBonusWeight = 0.2
)

// Best-frame selection.
const (
	// DefaultCandidatesPerWindow is how many visual-quality finalists per
	// time window are handed to OCR ranking.
	DefaultCandidatesPerWindow = 3
	// ConfidenceDivisor converts OCR confidence (0-100) into the coverage
	// multiplier: length * (1 + confidence/ConfidenceDivisor).
	ConfidenceDivisor = 200.0
	// DefaultOCRWorkers bounds concurrent OCR calls. Each call holds a
	// decoded raster plus recognition buffers, so keep this small.
	DefaultOCRWorkers = 2
	// MaxOCRWorkers is the hard ceiling for the OCR pool.
	MaxOCRWorkers = 4
)

// Printed page number detection.
const (
	// PageScanLines is how many trailing non-empty lines of recognized text
	// are searched for a printed page number.
	PageScanLines = 15
	// PageNumberMin and PageNumberMax bound plausible page numbers; matches
	// outside the range are treated as OCR false positives.
	PageNumberMin = 1
	PageNumberMax = 200
	// ShortLineMax is the length under which a line counts as "short" when
	// looking for a lone page number.
	ShortLineMax = 15
	// LeadingNumberLineMax is the length cap for lines whose page number
	// appears first (OCR sometimes reverses reading order near margins).
	LeadingNumberLineMax = 30
)

// Chapter heading detection.
const (
	// WordRatioThreshold is the minimum fraction of real-word characters a
	// line must have to survive the fallback cleanup pass.
	WordRatioThreshold = 0.6
	// TitleMinWords real words of TitleMinWordLen letters, or a single word
	// of TitleLongWordLen letters, are required for a heading title to be
	// believed.
	TitleMinWords    = 2
	TitleMinWordLen  = 3
	TitleLongWordLen = 8
	// TitleMinStrippedLen is the minimum length of a title once whitespace
	// is removed.
	TitleMinStrippedLen = 8
	// HeadingLookahead is how many following lines a bare "N." may borrow
	// an all-caps run from in the constructed-heading fallback.
	HeadingLookahead = 2
)
