package otel

import (
	"os"
	"sync/atomic"
)

// traceEnabled is set once at package init. Atomic for safe concurrent access
// (production reads in UI goroutine, test writes via SetTraceEnabled).
var traceEnabled atomic.Bool

func init() {
	traceEnabled.Store(os.Getenv("BOOKMARKS_TRACE") != "")
}

// TraceEnabled reports whether BOOKMARKS_TRACE is set or --trace was given.
func TraceEnabled() bool {
	return traceEnabled.Load()
}

// SetTraceEnabled overrides the trace flag (command-line switch and tests).
func SetTraceEnabled(v bool) {
	traceEnabled.Store(v)
}
