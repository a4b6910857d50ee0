package chapters

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/readalongapp/digitizer/internal/tuning"
)

// Heading patterns, most specific first. The first pattern that matches
// anywhere in the text supplies all candidates; later patterns are only
// consulted when earlier ones found nothing. Books without printed
// "Kapitel"/"Chapter" labels rely on typography alone, so the looser
// patterns accept a number followed by an all-caps run.
var headingPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?mi)^kapitel\s+(\d{1,3})\s*[:.]?\s*(.*)$`),
	regexp.MustCompile(`(?mi)^chapter\s+(\d{1,3})\s*[:.]?\s*(.*)$`),
	regexp.MustCompile(`(?m)^(\d{1,3})[.:]\s+([A-ZÅÄÖ][A-ZÅÄÖ'–—-]*(?: [A-ZÅÄÖ][A-ZÅÄÖ'–—-]*)+)\s*$`),
	regexp.MustCompile(`(?m)^(\d{1,3})[.:]\s+([A-ZÅÄÖ]{2,})\s*$`),
}

var (
	leadingNumberLineRe = regexp.MustCompile(`^(\d{1,3})\.\s*(.*)$`)
	capsRunRe           = regexp.MustCompile(`^[A-ZÅÄÖ][A-ZÅÄÖ' –—-]*$`)
)

// heading is a chapter-boundary candidate located in the normalized text.
type heading struct {
	number int
	title  string
	start  int
}

// Detect locates chapter headings in recognized book text and splits the
// text into ordered chapters. It is a pure function of its input: identical
// text always yields identical output.
//
// When no believable heading survives, the whole (fallback-cleaned) text is
// returned as a single chapter numbered 1 titled "Untitled" with
// HasChapters false.
func Detect(rawText string) Result {
	text := normalize(rawText)
	if text == "" {
		return untitled("")
	}

	if hs := survivors(findHeadings(text)); len(hs) > 0 {
		return cut(text, hs)
	}

	// First fallback: drop lines that are mostly recognition noise and
	// search again.
	cleaned := dropNoisyLines(text)
	if hs := survivors(findHeadings(cleaned)); len(hs) > 0 {
		return cut(cleaned, hs)
	}

	// Second fallback: assemble headings line by line from a bare "N."
	// and a nearby all-caps run. Runs on the uncleaned text because the
	// ratio filter above would drop the bare number lines it needs.
	if hs := survivors(constructedHeadings(text)); len(hs) > 0 {
		return cut(text, hs)
	}

	return untitled(stripPageMarkers(cleaned))
}

// findHeadings runs the pattern cascade and returns candidates from the
// first matching pattern, in document order.
func findHeadings(text string) []heading {
	for _, re := range headingPatterns {
		matches := re.FindAllStringSubmatchIndex(text, -1)
		if len(matches) == 0 {
			continue
		}

		hs := make([]heading, 0, len(matches))
		for _, m := range matches {
			num, err := strconv.Atoi(text[m[2]:m[3]])
			if err != nil {
				continue
			}
			hs = append(hs, heading{
				number: num,
				title:  strings.TrimSpace(text[m[4]:m[5]]),
				start:  m[0],
			})
		}
		return hs
	}
	return nil
}

// constructedHeadings scans line by line for a leading "N." and borrows an
// all-caps run from the same line or the next few lines as the title.
func constructedHeadings(text string) []heading {
	lines := strings.Split(text, "\n")
	var hs []heading

	offset := 0
	offsets := make([]int, len(lines))
	for i, line := range lines {
		offsets[i] = offset
		offset += len(line) + 1
	}

	for i, line := range lines {
		m := leadingNumberLineRe.FindStringSubmatch(strings.TrimSpace(line))
		if m == nil {
			continue
		}
		num, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}

		title := ""
		if rest := strings.TrimSpace(m[2]); rest != "" {
			if capsRunRe.MatchString(rest) {
				title = rest
			}
		} else {
			for j := i + 1; j <= i+tuning.HeadingLookahead && j < len(lines); j++ {
				cand := strings.TrimSpace(lines[j])
				if cand == "" {
					continue
				}
				if capsRunRe.MatchString(cand) {
					title = cand
				}
				break
			}
		}
		if title == "" {
			continue
		}

		hs = append(hs, heading{number: num, title: title, start: offsets[i]})
	}
	return hs
}

// survivors applies the false-positive title filter and enforces strictly
// increasing chapter numbers in document order. Duplicate numbers keep only
// the first occurrence.
func survivors(hs []heading) []heading {
	kept := make([]heading, 0, len(hs))
	lastNumber := 0

	for _, h := range hs {
		if !plausibleTitle(h.title) {
			continue
		}
		if len(kept) > 0 && h.number <= lastNumber {
			continue
		}
		kept = append(kept, h)
		lastNumber = h.number
	}
	return kept
}

// plausibleTitle rejects recognition noise posing as a heading: the title
// needs at least two real words of three letters, or one long word, and a
// minimum length once whitespace is stripped.
func plausibleTitle(title string) bool {
	stripped := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, title)
	if len([]rune(stripped)) < tuning.TitleMinStrippedLen {
		return false
	}

	var words, runLen, longest int
	for _, r := range title + " " {
		if unicode.IsLetter(r) {
			runLen++
			continue
		}
		if runLen >= tuning.TitleMinWordLen {
			words++
		}
		if runLen > longest {
			longest = runLen
		}
		runLen = 0
	}

	return words >= tuning.TitleMinWords || longest >= tuning.TitleLongWordLen
}

// cut slices the text at each heading's offset through the next heading's
// offset (or end of text), strips the heading's own first line from the
// body, and converts page markers into paragraph breaks.
func cut(text string, hs []heading) Result {
	chapters := make([]Chapter, 0, len(hs))

	for i, h := range hs {
		end := len(text)
		if i+1 < len(hs) {
			end = hs[i+1].start
		}

		segment := text[h.start:end]
		body := ""
		if nl := strings.IndexByte(segment, '\n'); nl >= 0 {
			body = segment[nl+1:]
		}

		chapters = append(chapters, Chapter{
			Number: h.number,
			Title:  h.title,
			Body:   stripPageMarkers(body),
			Start:  h.start,
			End:    end,
		})
	}

	return Result{Chapters: chapters, HasChapters: true}
}

// untitled wraps the whole text as a single fallback chapter.
func untitled(body string) Result {
	return Result{
		Chapters: []Chapter{{
			Number: 1,
			Title:  "Untitled",
			Body:   body,
			Start:  0,
			End:    len(body),
		}},
		HasChapters: false,
	}
}
