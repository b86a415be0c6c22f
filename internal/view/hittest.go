package view

import (
	"fmt"
	"strings"

	"github.com/abelbrown/bookmarks/internal/bookmark"
	"github.com/abelbrown/bookmarks/internal/cluster"
	"github.com/abelbrown/bookmarks/internal/viewport"
)

// DefaultTooltipRows caps the member names listed in a tooltip.
const DefaultTooltipRows = 15

// Hit is a cluster under the pointer.
type Hit struct {
	Index   int // position in State.Clusters
	Cluster cluster.Cluster
}

// HitTest resolves the pointer at (x, y) to a cluster. y must fall inside
// lane. Clusters are scanned last to first because later clusters are
// painted over earlier ones; the horizontal span is
// [PixelFor(start), PixelFor(end)).
func HitTest(st State, x, y float64, lane viewport.Lane) (Hit, bool) {
	if !lane.Contains(y) || st.Snapshot.Empty() {
		return Hit{}, false
	}
	events := st.Snapshot.Events
	for i := len(st.Clusters) - 1; i >= 0; i-- {
		c := st.Clusters[i]
		lo := st.Transform.PixelFor(c.StartTime(events))
		hi := st.Transform.PixelFor(c.EndTime)
		if lo <= x && x < hi {
			return Hit{Index: i, Cluster: c}, true
		}
	}
	return Hit{}, false
}

// HitTest resolves a pointer position against the current view state.
func (c *Controller) HitTest(x, y float64, lane viewport.Lane) (Hit, bool) {
	return HitTest(c.state, x, y, lane)
}

// Tooltip returns the summary text for the cluster under the pointer.
func (c *Controller) Tooltip(x, y float64, lane viewport.Lane) (string, bool) {
	hit, ok := c.HitTest(x, y, lane)
	if !ok {
		return "", false
	}
	return Summary(c.state.Snapshot, hit.Cluster, c.rows), true
}

// Summary describes a cluster: the member name for a single event,
// otherwise one name per line up to rowLimit followed by
// "+ K other events" when truncated.
func Summary(snap *bookmark.Snapshot, c cluster.Cluster, rowLimit int) string {
	if snap.Empty() || c.Len() <= 0 || c.End >= snap.Len() {
		return ""
	}
	if rowLimit <= 0 {
		rowLimit = DefaultTooltipRows
	}
	members := c.Members(snap.Events)
	if len(members) == 1 {
		return members[0].Name()
	}

	shown := min(len(members), rowLimit)
	var b strings.Builder
	for i, ev := range members[:shown] {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(ev.Name())
	}
	if rest := len(members) - shown; rest > 0 {
		fmt.Fprintf(&b, "\n+ %d other events", rest)
	}
	return b.String()
}
