package chapters

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"

	"github.com/readalongapp/digitizer/internal/tuning"
)

// Page markers are emitted by the pipeline between recognized pages so
// chapter boundaries can be located in the assembled book text. They never
// survive into chapter bodies.
var pageMarkerRe = regexp.MustCompile(`(?m)^\[sida \d+\]$`)

// PageMarker formats the marker inserted between recognized pages.
func PageMarker(page int) string {
	return fmt.Sprintf("[sida %d]", page)
}

var (
	multiBlankRe  = regexp.MustCompile(`\n{3,}`)
	innerSpaceRe  = regexp.MustCompile(`[ \t]+`)
	preservedLine = regexp.MustCompile(`^\d{1,3}[.:]\s+[A-ZÅÄÖ]`)
)

// normalize prepares raw recognized text for heading search: composes
// decomposed diacritics (recognizers often emit them decomposed), strips
// OCR-garbage symbols, collapses repeated whitespace, and trims each line.
func normalize(raw string) string {
	text := norm.NFC.String(raw)
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = stripGarbage(text)

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(innerSpaceRe.ReplaceAllString(line, " "))
	}
	text = strings.Join(lines, "\n")

	return strings.TrimSpace(multiBlankRe.ReplaceAllString(text, "\n\n"))
}

// stripGarbage removes symbol classes that recognizers hallucinate on page
// texture: stray math, box-drawing, control and currency characters.
// Letters, digits, whitespace and ordinary punctuation pass through.
func stripGarbage(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '\n' || r == ' ' || r == '\t' {
			b.WriteRune(r)
			continue
		}
		switch r {
		case '.', ',', ':', ';', '!', '?', '\'', '"', '(', ')', '-', '–', '—',
			'[', ']', '/', '«', '»', '“', '”', '‘', '’':
			b.WriteRune(r)
		}
	}
	return b.String()
}

// dropNoisyLines returns a variant of the text without lines whose
// real-word character ratio falls below the calibrated threshold. Lines
// that look like numbered caps headings or page markers are always kept so
// the cleanup cannot erase the very boundaries being searched for.
func dropNoisyLines(text string) string {
	lines := strings.Split(text, "\n")
	kept := make([]string, 0, len(lines))

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" ||
			preservedLine.MatchString(trimmed) ||
			pageMarkerRe.MatchString(trimmed) ||
			wordRatio(trimmed) >= tuning.WordRatioThreshold {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "\n")
}

// wordRatio is the fraction of characters in a line that belong to real
// words: letters, digits and spaces.
func wordRatio(line string) float64 {
	var wordish, total int
	for _, r := range line {
		total++
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == ' ' {
			wordish++
		}
	}
	if total == 0 {
		return 0
	}
	return float64(wordish) / float64(total)
}

// stripPageMarkers converts embedded page-marker tokens into paragraph
// breaks.
func stripPageMarkers(body string) string {
	body = pageMarkerRe.ReplaceAllString(body, "")
	return strings.TrimSpace(multiBlankRe.ReplaceAllString(body, "\n\n"))
}
