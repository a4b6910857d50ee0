package selector

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/readalongapp/digitizer/internal/tuning"
)

// Printed page numbers sit near the bottom margin, so only the tail of the
// recognized text is scanned. Each matcher handles one layout; they are
// tried most-specific first and the first rule that matches anywhere in the
// tail wins.
var (
	trailingNumberRe   = regexp.MustCompile(`(?:^|[^\d])(\d{1,3})\s*$`)
	standaloneNumberRe = regexp.MustCompile(`^[\s\[\(\-–—~]*(\d{1,3})[\s\]\)\-–—~.]*$`)
	embeddedNumberRe   = regexp.MustCompile(`(?:^|[^\d])(\d{1,3})(?:[^\d]|$)`)
	leadingNumberRe    = regexp.MustCompile(`^\s*(\d{1,3})(?:[^\d]|$)`)
)

// pageMatcher tries to extract a printed page number from one line.
type pageMatcher func(line string) (int, bool)

var pageMatchers = []pageMatcher{
	matchTrailingNumber,
	matchStandaloneNumber,
	matchShortLineNumber,
	matchLeadingNumber,
}

// DetectPageNumber scans the tail of recognized page text for a printed
// page number. It returns the number and true, or 0 and false when nothing
// plausible was found. Values outside the calibrated page range are
// rejected as recognition false positives.
//
// The heuristic deliberately does not cross-check detected numbers for
// monotonic increase across the book; captures of books longer than the
// accepted range, or taken out of order, can mis-detect.
func DetectPageNumber(text string) (int, bool) {
	lines := tailLines(text, tuning.PageScanLines)
	if len(lines) == 0 {
		return 0, false
	}

	for _, match := range pageMatchers {
		// Bottom-most line first: the number is usually the very last thing
		// the recognizer saw.
		for i := len(lines) - 1; i >= 0; i-- {
			if n, ok := match(lines[i]); ok {
				return n, true
			}
		}
	}
	return 0, false
}

// tailLines returns the last n non-empty trimmed lines of text.
func tailLines(text string, n int) []string {
	raw := strings.Split(text, "\n")
	lines := make([]string, 0, n)
	for i := len(raw) - 1; i >= 0 && len(lines) < n; i-- {
		line := strings.TrimSpace(raw[i])
		if line == "" {
			continue
		}
		lines = append(lines, line)
	}
	// Restore document order.
	for i, j := 0, len(lines)-1; i < j; i, j = i+1, j-1 {
		lines[i], lines[j] = lines[j], lines[i]
	}
	return lines
}

// matchTrailingNumber matches a 1-3 digit number at the end of a line.
func matchTrailingNumber(line string) (int, bool) {
	return plausiblePage(trailingNumberRe.FindStringSubmatch(line))
}

// matchStandaloneNumber matches a bracketed or dashed number alone on a
// line, e.g. "- 42 -" or "[17]".
func matchStandaloneNumber(line string) (int, bool) {
	return plausiblePage(standaloneNumberRe.FindStringSubmatch(line))
}

// matchShortLineNumber matches a number anywhere in a short line; page
// footers rarely carry more than a few characters around the number.
func matchShortLineNumber(line string) (int, bool) {
	if len(line) > tuning.ShortLineMax {
		return 0, false
	}
	return plausiblePage(embeddedNumberRe.FindStringSubmatch(line))
}

// matchLeadingNumber matches a number at the start of a short line. OCR
// sometimes reverses reading order near the margin and emits the footer
// number before the footer text.
func matchLeadingNumber(line string) (int, bool) {
	if len(line) > tuning.LeadingNumberLineMax {
		return 0, false
	}
	return plausiblePage(leadingNumberRe.FindStringSubmatch(line))
}

// plausiblePage parses the first capture group and enforces the page range.
func plausiblePage(groups []string) (int, bool) {
	if len(groups) < 2 {
		return 0, false
	}
	n, err := strconv.Atoi(groups[1])
	if err != nil || n < tuning.PageNumberMin || n > tuning.PageNumberMax {
		return 0, false
	}
	return n, true
}
