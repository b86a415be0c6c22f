// Package bookmark holds the canonical, sorted set of timeline bookmarks.
//
// A Store publishes immutable Snapshots. Consumers (clustering jobs, the
// renderer, hit-testing) keep the *Snapshot they were handed; replacing the
// store contents never mutates an existing snapshot, so indices into it stay
// valid across goroutines.
package bookmark

import (
	"cmp"
	"strconv"
)

// Event is a named time interval [Timestamp, Timestamp+Duration).
// All times are milliseconds since the start of the day.
type Event struct {
	ID        int64 // generation index; also the source of Name
	Timestamp int64
	Duration  int64
}

// EndTime returns Timestamp + Duration.
func (e Event) EndTime() int64 {
	return e.Timestamp + e.Duration
}

// Name returns the display name of the bookmark.
func (e Event) Name() string {
	return "Bookmark " + strconv.FormatInt(e.ID, 10)
}

// compare orders by timestamp, then by generation order.
func compare(a, b Event) int {
	if c := cmp.Compare(a.Timestamp, b.Timestamp); c != 0 {
		return c
	}
	return cmp.Compare(a.ID, b.ID)
}
