// Package frames turns a capture (video or photo archive) into an ordered
// sequence of still frames with timestamps.
package frames

// Frame is a single extracted still. Immutable once extracted.
type Frame struct {
	// Path is the location of the still image on disk.
	Path string `json:"path"`
	// Ordinal is the 1-based extraction index. Ordinals are strictly
	// increasing and one-to-one with extracted files.
	Ordinal int `json:"ordinal"`
	// Timestamp is the capture time in seconds: ordinal / sampling rate.
	Timestamp float64 `json:"timestamp"`
}
