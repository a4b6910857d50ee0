package chapters

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const robinHood = "1. DE FREDLÖSA I SHERWOOD-SKOGEN\n\n" +
	"Det var en gång i det gamla England en skara fredlösa män.\n" +
	"De bodde djupt inne i den gröna skogen.\n\n" +
	"2. ROBIN MÖTER LILLE JOHN\n\n" +
	"Vid ett smalt spång över bäcken möttes två envisa män.\n"

func TestDetect_NumberedCapsHeadings(t *testing.T) {
	res := Detect(robinHood)

	require.True(t, res.HasChapters)
	require.Len(t, res.Chapters, 2)

	assert.Equal(t, 1, res.Chapters[0].Number)
	assert.Contains(t, res.Chapters[0].Title, "FREDLÖSA")
	assert.Contains(t, res.Chapters[0].Body, "fredlösa män")
	assert.NotContains(t, res.Chapters[0].Body, "DE FREDLÖSA I SHERWOOD-SKOGEN")

	assert.Equal(t, 2, res.Chapters[1].Number)
	assert.Contains(t, res.Chapters[1].Title, "ROBIN")
	assert.Contains(t, res.Chapters[1].Body, "spång")
}

func TestDetect_ExplicitKapitelHeadings(t *testing.T) {
	text := "Kapitel 1: Flykten genom skogen\n\n" +
		"Han sprang så fort benen bar honom.\n\n" +
		"Kapitel 2. Mötet vid bäcken\n\n" +
		"Där stod en jätte till karl.\n"

	res := Detect(text)

	require.True(t, res.HasChapters)
	require.Len(t, res.Chapters, 2)
	assert.Equal(t, "Flykten genom skogen", res.Chapters[0].Title)
	assert.Equal(t, "Mötet vid bäcken", res.Chapters[1].Title)
	assert.Contains(t, res.Chapters[0].Body, "benen bar honom")
}

func TestDetect_ExplicitChapterHeadings(t *testing.T) {
	text := "Chapter 1: The Outlaws of Sherwood\n\n" +
		"Long ago in merry England there lived a band of outlaws.\n\n" +
		"Chapter 2: Robin Meets Little John\n\n" +
		"At a narrow bridge two stubborn men met.\n"

	res := Detect(text)

	require.True(t, res.HasChapters)
	require.Len(t, res.Chapters, 2)
	assert.Equal(t, "The Outlaws of Sherwood", res.Chapters[0].Title)
	assert.Equal(t, "Robin Meets Little John", res.Chapters[1].Title)
}

func TestDetect_NoiseFailsTitleFilter(t *testing.T) {
	text := "7. XYZ ABC\nSome random noise here\n3. MOS TS S\nMore noise"

	res := Detect(text)

	assert.False(t, res.HasChapters, "garbage titles must not become chapters")
	require.Len(t, res.Chapters, 1)
	assert.Equal(t, 1, res.Chapters[0].Number)
	assert.Equal(t, "Untitled", res.Chapters[0].Title)
}

func TestDetect_NoMarkersYieldsSingleUntitled(t *testing.T) {
	text := "Det var en gång en liten pojke.\nHan bodde vid skogsbrynet.\n"

	res := Detect(text)

	assert.False(t, res.HasChapters)
	require.Len(t, res.Chapters, 1)
	assert.Equal(t, 1, res.Chapters[0].Number)
	assert.Equal(t, "Untitled", res.Chapters[0].Title)
	assert.Contains(t, res.Chapters[0].Body, "skogsbrynet")
}

func TestDetect_EmptyInput(t *testing.T) {
	res := Detect("")

	assert.False(t, res.HasChapters)
	require.Len(t, res.Chapters, 1)
	assert.Equal(t, "Untitled", res.Chapters[0].Title)
	assert.Empty(t, res.Chapters[0].Body)
}

func TestDetect_PageMarkersBecomeParagraphBreaks(t *testing.T) {
	text := "1. DE FREDLÖSA I SHERWOOD-SKOGEN\n\n" +
		"Första sidan slutar här.\n" +
		PageMarker(4) + "\n" +
		"Andra sidan börjar här.\n"

	res := Detect(text)

	require.True(t, res.HasChapters)
	body := res.Chapters[0].Body
	assert.NotContains(t, body, "[sida")
	assert.Contains(t, body, "Första sidan slutar här.")
	assert.Contains(t, body, "Andra sidan börjar här.")
}

func TestDetect_DuplicateNumbersKeepFirst(t *testing.T) {
	text := "1. DE FREDLÖSA I SHERWOOD-SKOGEN\n\nFörsta kapitlet.\n\n" +
		"1. ROBIN MÖTER LILLE JOHN\n\nSamma nummer igen.\n\n" +
		"2. TURNERINGEN I NOTTINGHAM\n\nAndra kapitlet.\n"

	res := Detect(text)

	require.True(t, res.HasChapters)
	require.Len(t, res.Chapters, 2)
	assert.Contains(t, res.Chapters[0].Title, "FREDLÖSA")
	assert.Contains(t, res.Chapters[1].Title, "NOTTINGHAM")
	// The duplicate heading's text stays inside chapter 1's body.
	assert.Contains(t, res.Chapters[0].Body, "Samma nummer igen")
}

func TestDetect_NumbersStrictlyIncrease(t *testing.T) {
	text := "5. RIDDARNA VID RUNDA BORDET\n\nFemte kapitlet.\n\n" +
		"3. TILLBAKA TILL SLOTTET IGEN\n\nHör inte hit.\n\n" +
		"7. DRAKEN VAKNAR UR DVALAN\n\nSjunde kapitlet.\n"

	res := Detect(text)

	require.True(t, res.HasChapters)
	require.Len(t, res.Chapters, 2)

	last := 0
	for _, ch := range res.Chapters {
		assert.Greater(t, ch.Number, last)
		last = ch.Number
	}
}

func TestDetect_ConstructedHeadingFallback(t *testing.T) {
	// The number and the caps title ended up on separate lines, which none
	// of the direct patterns accept.
	text := "1.\nDE FREDLÖSA I SHERWOOD\n\nDet var en gång en skara fredlösa.\n\n" +
		"2.\nROBIN MÖTER LILLE JOHN\n\nVid spången möttes de.\n"

	res := Detect(text)

	require.True(t, res.HasChapters)
	require.Len(t, res.Chapters, 2)
	assert.Equal(t, "DE FREDLÖSA I SHERWOOD", res.Chapters[0].Title)
	assert.Equal(t, "ROBIN MÖTER LILLE JOHN", res.Chapters[1].Title)
}

func TestDetect_BodiesCoverSourceInOrder(t *testing.T) {
	res := Detect(robinHood)

	require.True(t, res.HasChapters)

	// Offsets partition the normalized text without overlap.
	for i := 1; i < len(res.Chapters); i++ {
		assert.Equal(t, res.Chapters[i-1].End, res.Chapters[i].Start,
			"chapters must be adjacent")
	}

	// Every body sentence appears exactly once across all bodies.
	joined := ""
	for _, ch := range res.Chapters {
		joined += ch.Body + "\n"
	}
	assert.Equal(t, 1, strings.Count(joined, "gröna skogen"))
	assert.Equal(t, 1, strings.Count(joined, "envisa män"))
}

func TestDetect_Deterministic(t *testing.T) {
	first := Detect(robinHood)
	for i := 0; i < 3; i++ {
		assert.Equal(t, first, Detect(robinHood))
	}
}

func TestNormalize(t *testing.T) {
	got := normalize("  Det   var\ten gång ©®™  \n\n\n\nen pojke  ")
	assert.Equal(t, "Det var en gång\n\nen pojke", got)
}

func TestWordRatio(t *testing.T) {
	assert.InDelta(t, 1.0, wordRatio("bara vanliga ord"), 0.001)
	assert.Less(t, wordRatio(".,!?()[]--::;;"), 0.1)
}

func TestDropNoisyLines(t *testing.T) {
	text := "Det var en gång en pojke\n" +
		")(*.;;:--!!??()[]..,,\n" +
		"1. RIDDARNA I SKOGEN\n" +
		PageMarker(9)

	got := dropNoisyLines(text)

	assert.Contains(t, got, "Det var en gång")
	assert.NotContains(t, got, ")(*")
	assert.Contains(t, got, "1. RIDDARNA I SKOGEN", "numbered caps lines are always preserved")
	assert.Contains(t, got, PageMarker(9), "page markers are always preserved")
}

func TestPlausibleTitle(t *testing.T) {
	tests := []struct {
		title string
		want  bool
	}{
		{"DE FREDLÖSA I SHERWOOD-SKOGEN", true},
		{"ROBIN MÖTER LILLE JOHN", true},
		{"TURNERINGEN", true}, // single long word
		{"XYZ ABC", false},    // too short once stripped
		{"MOS TS S", false},   // no real words
		{"", false},
		{"AB CD EF GH", false},
	}

	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			assert.Equal(t, tt.want, plausibleTitle(tt.title))
		})
	}
}
