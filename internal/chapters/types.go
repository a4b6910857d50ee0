// Package chapters splits recognized book text into ordered chapters by
// locating headings despite OCR noise.
package chapters

// Chapter is one detected chapter of a digitized book.
type Chapter struct {
	// Number is the printed chapter number. Numbers are strictly increasing
	// in document order; gaps in numbering are permitted.
	Number int `json:"number"`
	// Title is the heading text with the number prefix removed.
	Title string `json:"title"`
	// Body is the chapter text with the heading line stripped and page
	// markers converted to paragraph breaks.
	Body string `json:"bodyText"`
	// Start and End are byte offsets of the chapter in the normalized text.
	Start int `json:"startOffset"`
	End   int `json:"endOffset"`
}

// Result is the outcome of chapter detection.
type Result struct {
	Chapters []Chapter `json:"chapters"`
	// HasChapters is false when no believable headings were found and the
	// whole text was returned as a single untitled chapter. It signals a
	// best-effort fallback, never an error.
	HasChapters bool `json:"hasChapters"`
}
