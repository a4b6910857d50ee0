package main

import (
	"flag"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSourceArg_ParsesFlagsFirst(t *testing.T) {
	fs := flag.NewFlagSet("digitize", flag.ContinueOnError)
	fs.String("inbox-path", "", "")

	got := sourceArg(fs, []string{"--inbox-path", "/tmp/in", "/captures/book.mp4"})
	assert.Equal(t, "/captures/book.mp4", got)
	assert.True(t, fs.Parsed())
}

func TestSourceArg_KeepsEarlierParse(t *testing.T) {
	fs := flag.NewFlagSet("digitize", flag.ContinueOnError)
	require.NoError(t, fs.Parse([]string{"/captures/a.mp4"}))

	assert.Equal(t, "/captures/a.mp4", sourceArg(fs, []string{"/captures/b.mp4"}))
}
