// Package work provides the primitives behind asynchronous recomputation:
// single-slot job tracking with generation counters, debouncing, and a short
// history of finished jobs for the debug overlay.
//
// Nothing in this package starts goroutines. Jobs run as tea.Cmd closures;
// Slot and Debouncer are driven from the bubbletea Update goroutine and are
// not safe for concurrent use.
//
// Logging: every job transition is logged via internal/logging.
package work

import (
	"fmt"
	"time"

	"github.com/abelbrown/bookmarks/internal/logging"
)

// LogJob logs a job transition for debugging.
func LogJob(job *Job, change string) {
	switch change {
	case "started":
		logging.Debug("Job started",
			"kind", job.Kind,
			"gen", job.Gen,
			"desc", job.Description)
	case "completed":
		logging.Info("Job completed",
			"kind", job.Kind,
			"gen", job.Gen,
			"result", job.Result,
			"duration", job.Duration())
	case "failed":
		logging.Error("Job failed",
			"kind", job.Kind,
			"gen", job.Gen,
			"error", job.Err,
			"duration", job.Duration())
	case "stale":
		logging.Warn("Job result dropped",
			"kind", job.Kind,
			"gen", job.Gen)
	}
}

// Kind categorizes jobs for display.
type Kind string

const (
	KindGenerate Kind = "generate" // bulk event generation + sort
	KindCluster  Kind = "cluster"  // re-clustering for the current view
)

// Icon returns a display icon for the job kind.
func (k Kind) Icon() string {
	switch k {
	case KindGenerate:
		return "◈"
	case KindCluster:
		return "◇"
	default:
		return "○"
	}
}

// Status represents the lifecycle state of a job.
type Status string

const (
	StatusActive   Status = "active"   // dispatched, not yet returned
	StatusComplete Status = "complete" // finished successfully and installed
	StatusFailed   Status = "failed"   // finished with error
	StatusStale    Status = "stale"    // finished, but superseded
)

// Job records one dispatched unit of background work.
type Job struct {
	Kind        Kind
	Gen         uint64
	Status      Status
	Description string // "generate 50,000,000 events"

	StartedAt  time.Time
	FinishedAt time.Time

	Result string // "1,234 clusters"
	Err    error
}

// Duration returns how long the job took (or has been running).
func (j *Job) Duration() time.Duration {
	if j.FinishedAt.IsZero() {
		if j.StartedAt.IsZero() {
			return 0
		}
		return time.Since(j.StartedAt)
	}
	return j.FinishedAt.Sub(j.StartedAt)
}

// StatusIcon returns a display icon for the current status.
func (j *Job) StatusIcon() string {
	switch j.Status {
	case StatusActive:
		return "●"
	case StatusComplete:
		return "✓"
	case StatusFailed:
		return "✗"
	case StatusStale:
		return "~"
	default:
		return "?"
	}
}

// String renders a one-line summary.
func (j *Job) String() string {
	s := fmt.Sprintf("%s %s #%d %s", j.StatusIcon(), j.Kind.Icon(), j.Gen, j.Description)
	if j.Result != "" {
		s += " → " + j.Result
	}
	if j.Err != nil {
		s += " ERR: " + j.Err.Error()
	}
	return s
}
