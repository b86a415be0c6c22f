package render

import (
	"math"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/abelbrown/bookmarks/internal/bookmark"
	"github.com/abelbrown/bookmarks/internal/cluster"
	"github.com/abelbrown/bookmarks/internal/view"
)

const ellipsis = "…"

// Stats reports what a Frame drew.
type Stats struct {
	Ticks    int
	Clusters int
}

// Frame draws hour ticks and the visible clusters of st.
func Frame(s Surface, l Layout, st view.State) Stats {
	var stats Stats
	if !st.Transform.Ready() || !(st.Width > 0) {
		return stats
	}
	stats.Ticks = drawTicks(s, l, st)
	if st.Snapshot.Empty() {
		return stats
	}
	stats.Clusters = drawClusters(s, l, st)
	return stats
}

// drawTicks draws an hour tick from 0h to the end of the fitted span,
// rounded up to a whole hour. Only hours inside the viewport are visited.
func drawTicks(s Surface, l Layout, st view.State) int {
	hourMs := float64(time.Hour.Milliseconds())
	last := int64(math.Ceil(float64(st.Transform.Fitted().Milliseconds()) / hourMs))
	lo, hi := st.Transform.Visible(st.Width)
	first := max(int64(math.Floor(float64(lo)/hourMs)), 0)
	last = min(last, int64(math.Ceil(float64(hi)/hourMs)))

	n := 0
	labelEnd := math.Inf(-1) // right edge of the previous label
	for h := first; h <= last; h++ {
		x := st.Transform.PixelFor(h * time.Hour.Milliseconds())
		if x < -0.5 || x > st.Width+0.5 {
			continue
		}
		s.DrawLine(x, 0, x, l.TickLen, StyleTick)
		n++

		label := strconv.FormatInt(h, 10) + "h"
		w := s.TextWidth(label)
		lx := x - w/2
		// Skip labels that would collide when zoomed far out.
		if lx <= labelEnd {
			continue
		}
		s.DrawText(lx, l.TickLen, label, StyleTickLabel)
		labelEnd = lx + w
	}
	return n
}

func drawClusters(s Surface, l Layout, st view.State) int {
	lane := l.Lane()
	events := st.Snapshot.Events
	textY := lane.Top + (l.LaneHeight-l.LineHeight)/2
	n := 0
	for _, c := range st.Clusters {
		if c.End >= len(events) {
			break
		}
		x0 := st.Transform.PixelFor(c.StartTime(events))
		x1 := st.Transform.PixelFor(c.EndTime)
		if x1 < 0 || x0 > st.Width {
			continue
		}

		style := StyleGroup
		if c.Single() {
			style = StyleSingle
		}
		s.DrawRoundedRect(x0, lane.Top, x1-x0, l.LaneHeight, style)
		n++

		// Labels are placed inside the visible part of the rect.
		left, right := max(x0, 0)+l.Padding, min(x1, st.Width)-l.Padding
		if text := fit(s, Label(events, c), right-left); text != "" {
			s.DrawText(left, textY, text, StyleClusterLabel)
		}
	}
	return n
}

// Label is the text drawn inside a cluster: the member name for a single
// event, otherwise the member count.
func Label(events []bookmark.Event, c cluster.Cluster) string {
	if c.Single() {
		return events[c.Start].Name()
	}
	return humanize.Comma(int64(c.Len()))
}

// fit truncates text with an ellipsis so it is at most avail wide. It
// returns "" when not even one character fits.
func fit(s Surface, text string, avail float64) string {
	if avail <= 0 {
		return ""
	}
	if s.TextWidth(text) <= avail {
		return text
	}
	r := []rune(text)
	for n := len(r) - 1; n > 0; n-- {
		t := string(r[:n]) + ellipsis
		if s.TextWidth(t) <= avail {
			return t
		}
	}
	return ""
}
