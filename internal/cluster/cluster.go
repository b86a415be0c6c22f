// Package cluster groups time-adjacent bookmarks into the runs that are drawn
// as a single box on the timeline.
//
// Grouping is anchored: an event joins the open cluster when it starts within
// maxGap of the cluster's first member, not of its nearest neighbour. A dense
// run can therefore span more than maxGap in total, but the boundaries are
// stable under insertion of events behind the anchor.
package cluster

import (
	"math"
	"sort"

	"github.com/abelbrown/bookmarks/internal/bookmark"
)

// Cluster is a contiguous run of events addressed by inclusive indices into
// the snapshot it was computed from.
type Cluster struct {
	Start   int
	End     int
	EndTime int64 // latest end time of any member
}

// Len returns the number of members.
func (c Cluster) Len() int {
	return c.End - c.Start + 1
}

// Single reports whether the cluster has exactly one member.
func (c Cluster) Single() bool {
	return c.Start == c.End
}

// StartTime returns the timestamp of the first member.
func (c Cluster) StartTime(events []bookmark.Event) int64 {
	return events[c.Start].Timestamp
}

// Members returns the member events as a subslice of events.
func (c Cluster) Members(events []bookmark.Event) []bookmark.Event {
	return events[c.Start : c.End+1]
}

// Window bounds grouping to a visible time range. Lo narrows the input by
// binary search; Hi stops the pass once a new cluster would start at or past
// it.
type Window struct {
	Lo int64
	Hi int64
}

// Unbounded returns a window that admits every event.
func Unbounded() Window {
	return Window{Lo: math.MinInt64, Hi: math.MaxInt64}
}

// Group clusters all events. events must be sorted ascending by timestamp.
func Group(events []bookmark.Event, maxGap int64) []Cluster {
	return GroupWindow(events, maxGap, Unbounded())
}

// GroupWindow clusters the events that start at or after w.Lo, stopping at
// the first cluster that would start at or after w.Hi. The cluster that is
// open when the boundary is reached is still emitted, including members past
// w.Hi that fall within its gap.
func GroupWindow(events []bookmark.Event, maxGap int64, w Window) []Cluster {
	first := sort.Search(len(events), func(i int) bool {
		return events[i].Timestamp >= w.Lo
	})
	if first >= len(events) || events[first].Timestamp >= w.Hi {
		return nil
	}

	var out []Cluster
	cur := Cluster{Start: first, End: first, EndTime: events[first].EndTime()}
	anchor := events[first].Timestamp

	for i := first + 1; i < len(events); i++ {
		ev := &events[i]
		if ev.Timestamp-anchor > maxGap {
			out = append(out, cur)
			if ev.Timestamp >= w.Hi {
				return out
			}
			cur = Cluster{Start: i, End: i, EndTime: ev.EndTime()}
			anchor = ev.Timestamp
			continue
		}
		cur.End = i
		if end := ev.EndTime(); end > cur.EndTime {
			cur.EndTime = end
		}
	}
	return append(out, cur)
}
