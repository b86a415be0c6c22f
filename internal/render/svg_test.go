package render

import (
	"bytes"
	"encoding/xml"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abelbrown/bookmarks/internal/bookmark"
)

func TestSVGTextWidth(t *testing.T) {
	s := NewSVG(100, 56)
	assert.InDelta(t, 2*16*0.6, s.TextWidth("0h"), 1e-9)
	assert.InDelta(t, 2*16*0.6, s.TextWidth("日"), 1e-9, "wide runes count double")
}

func TestSVGFrameIsWellFormed(t *testing.T) {
	events := []bookmark.Event{
		{ID: 0, Timestamp: 0, Duration: 3_600_000},
		{ID: 1, Timestamp: 1000, Duration: 10},
		{ID: 2, Timestamp: 43_200_000, Duration: 14_400_000},
	}
	s := NewSVG(1200, SVGLayout.Height())
	stats := Frame(s, SVGLayout, stateWith(1200, events, 60_000))
	require.Equal(t, 2, stats.Clusters)

	var buf bytes.Buffer
	n, err := s.WriteTo(&buf)
	require.NoError(t, err)
	assert.Equal(t, int64(buf.Len()), n)

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, `<?xml version="1.0"`))
	assert.Contains(t, out, `class="group"`)
	assert.Contains(t, out, `class="single"`)
	assert.Contains(t, out, ">12h</text>")
	assert.Contains(t, out, ">Bookmark 2</text>")

	dec := xml.NewDecoder(strings.NewReader(out))
	for {
		_, err := dec.Token()
		if err != nil {
			assert.Equal(t, "EOF", err.Error())
			break
		}
	}
}

func TestSVGEscapesText(t *testing.T) {
	s := NewSVG(10, 10)
	s.DrawText(0, 0, `<a & "b">`, StyleClusterLabel)
	assert.Contains(t, s.String(), "&lt;a &amp; &quot;b&quot;&gt;")
}
