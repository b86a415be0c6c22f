// Package otel provides structured observability for the timeline.
//
// Events are typed structs serialized as JSONL lines. The Logger writes
// events asynchronously via a buffered channel and background drain goroutine.
// An optional RingBuffer provides live in-memory inspection for the debug overlay.
package otel

import (
	"time"

	"github.com/bytedance/sonic"
)

// Level defines event severity for filtering.
type Level string

const (
	LevelDebug Level = "debug"
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

// AtLeast reports whether l is as severe as floor.
func (l Level) AtLeast(floor Level) bool {
	return l.rank() >= floor.rank()
}

// rank orders levels for threshold checks. Unknown levels rank as info.
func (l Level) rank() int {
	switch l {
	case LevelDebug:
		return -1
	case LevelWarn:
		return 1
	case LevelError:
		return 2
	default:
		return 0
	}
}

// EventKind identifies the category of an observability event.
// Dot-delimited: "<subsystem>.<action>".
type EventKind string

const (
	// Data events
	KindGenerateStart    EventKind = "gen.start"
	KindGenerateComplete EventKind = "gen.complete"
	KindGenerateError    EventKind = "gen.error"
	KindGenerateQueued   EventKind = "gen.queued"

	// Clustering events
	KindClusterStart    EventKind = "cluster.start"
	KindClusterComplete EventKind = "cluster.complete"
	KindClusterStale    EventKind = "cluster.stale"
	KindClusterQueued   EventKind = "cluster.queued"
	KindDebounceSettled EventKind = "debounce.settled"

	// View events
	KindPan    EventKind = "view.pan"
	KindZoom   EventKind = "view.zoom"
	KindResize EventKind = "view.resize"
	KindHover  EventKind = "view.hover"

	// Config events
	KindConfigReload EventKind = "config.reload"
	KindConfigError  EventKind = "config.error"

	// UI events
	KindKeyPress EventKind = "ui.key"

	// System events
	KindStartup  EventKind = "sys.startup"
	KindShutdown EventKind = "sys.shutdown"
	KindError    EventKind = "sys.error"

	// Trace events
	KindMsgReceived EventKind = "trace.msg_received"
)

// Event is the universal observability record. Every field except Kind and
// Time is optional. Serialized as a single JSONL line.
type Event struct {
	Time      time.Time      `json:"t"`
	Level     Level          `json:"level,omitempty"`
	Kind      EventKind      `json:"kind"`
	Comp      string         `json:"comp,omitempty"`       // component: "view", "ui", "main"
	SessionID string         `json:"session_id,omitempty"` // same for entire app run
	Gen       uint64         `json:"gen,omitempty"`        // job generation
	Version   uint64         `json:"version,omitempty"`    // snapshot version
	Dur       time.Duration  `json:"-"`                    // not serialized directly
	DurMs     float64        `json:"dur_ms,omitempty"`     // computed from Dur at marshal time
	Count     int            `json:"count,omitempty"`
	Err       string         `json:"err,omitempty"`
	Msg       string         `json:"msg,omitempty"`   // free text
	Extra     map[string]any `json:"extra,omitempty"` // escape hatch for unusual fields
}

// MarshalJSON implements json.Marshaler, converting Dur to DurMs.
func (e Event) MarshalJSON() ([]byte, error) {
	type Alias Event
	a := struct {
		Alias
	}{Alias: Alias(e)}
	if e.Dur > 0 {
		a.DurMs = float64(e.Dur) / float64(time.Millisecond)
	}
	return sonic.Marshal(a)
}
