package selector

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectPageNumber(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		want     int
		wantFind bool
	}{
		{
			name:     "number on last line",
			text:     "Det var en gång en pojke.\nHan bodde i skogen.\n42",
			want:     42,
			wantFind: true,
		},
		{
			name:     "number above 200 rejected",
			text:     "Det var en gång en pojke.\n999",
			wantFind: false,
		},
		{
			name:     "zero rejected",
			text:     "slutet på sidan\n0",
			wantFind: false,
		},
		{
			name:     "dashed standalone number",
			text:     "Robin smög genom skogen.\n- 17 -",
			want:     17,
			wantFind: true,
		},
		{
			name:     "bracketed standalone number",
			text:     "Robin smög genom skogen.\n[ 23 ]",
			want:     23,
			wantFind: true,
		},
		{
			name:     "number at end of text line",
			text:     "och så somnade han till slut 18",
			want:     18,
			wantFind: true,
		},
		{
			name:     "short line with surrounding junk",
			text:     "texten fortsätter här\n.. 31 ..",
			want:     31,
			wantFind: true,
		},
		{
			name:     "leading number on short line",
			text:     "en lång rad utan siffror alls\n12 SHERWOOD",
			want:     12,
			wantFind: true,
		},
		{
			name:     "leading number on long line ignored",
			text:     "en lång rad utan siffror\n12 riddare red ut ur slottet i den tidiga gryningen",
			wantFind: false,
		},
		{
			name:     "no digits at all",
			text:     "bara text\nutan några siffror",
			wantFind: false,
		},
		{
			name:     "empty text",
			text:     "",
			wantFind: false,
		},
		{
			name:     "four digit run is not a page number",
			text:     "tryckt år\n1987",
			wantFind: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := DetectPageNumber(tt.text)
			assert.Equal(t, tt.wantFind, ok)
			if tt.wantFind {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestDetectPageNumber_BottomLineWins(t *testing.T) {
	// Both lines end in a plausible number; the bottom-most wins.
	got, ok := DetectPageNumber("han räknade till 7\nmer text\n44")
	assert.True(t, ok)
	assert.Equal(t, 44, got)
}

func TestDetectPageNumber_OnlyScansTail(t *testing.T) {
	// A number far above the scanned tail is invisible.
	var b strings.Builder
	b.WriteString("99\n")
	for i := 0; i < 20; i++ {
		b.WriteString("en rad utan slutsiffra alls\n")
	}
	_, ok := DetectPageNumber(b.String())
	assert.False(t, ok)
}

func TestTailLines(t *testing.T) {
	lines := tailLines("a\n\nb\n   \nc\nd", 3)
	assert.Equal(t, []string{"b", "c", "d"}, lines)
}
