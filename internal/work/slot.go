package work

import "time"

// State is the recompute cycle state of a Slot.
type State int

const (
	Idle State = iota
	Scheduled
	Running
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Scheduled:
		return "scheduled"
	case Running:
		return "running"
	default:
		return "unknown"
	}
}

// Slot allows at most one job of a kind in flight.
//
// Cycle: Idle -> Scheduled -> Running -> Idle. A Schedule or Begin while
// Running does not cancel anything; it marks a rerun, and Complete moves the
// slot back to Scheduled instead of Idle.
//
// Every Begin takes a new generation number. Complete only reports a result
// as installable when it carries the latest dispatched generation.
type Slot struct {
	kind    Kind
	state   State
	pending bool
	gen     uint64
	job     *Job
	history *History
	now     func() time.Time
}

// NewSlot creates an idle slot. history may be nil.
func NewSlot(kind Kind, history *History) *Slot {
	return &Slot{kind: kind, history: history, now: time.Now}
}

// Kind returns the job kind handled by this slot.
func (s *Slot) Kind() Kind { return s.kind }

// State returns the current cycle state.
func (s *Slot) State() State { return s.state }

// Pending reports whether a rerun is queued behind the running job.
func (s *Slot) Pending() bool { return s.pending }

// Gen returns the latest dispatched generation.
func (s *Slot) Gen() uint64 { return s.gen }

// Running reports whether a job is in flight.
func (s *Slot) Running() bool { return s.state == Running }

// Current returns the in-flight job, or nil.
func (s *Slot) Current() *Job {
	if s.state != Running {
		return nil
	}
	return s.job
}

// Schedule marks that a job should run.
func (s *Slot) Schedule() {
	switch s.state {
	case Idle:
		s.state = Scheduled
	case Running:
		s.pending = true
	}
}

// Begin dispatches a job if none is running and returns its generation.
// If one is running, a rerun is queued and ok is false.
func (s *Slot) Begin(desc string) (gen uint64, ok bool) {
	if s.state == Running {
		s.pending = true
		return 0, false
	}
	s.gen++
	s.state = Running
	s.pending = false
	s.job = &Job{
		Kind:        s.kind,
		Gen:         s.gen,
		Status:      StatusActive,
		Description: desc,
		StartedAt:   s.now(),
	}
	LogJob(s.job, "started")
	return s.gen, true
}

// Complete finishes the job with generation gen. install is true when the
// result belongs to the latest dispatched job and err is nil. rerun is true
// when a trigger arrived while the job was running.
func (s *Slot) Complete(gen uint64, result string, err error) (install, rerun bool) {
	if s.state != Running || gen != s.gen || s.job == nil {
		LogJob(&Job{Kind: s.kind, Gen: gen}, "stale")
		if s.history != nil {
			s.history.Push(Job{Kind: s.kind, Gen: gen, Status: StatusStale, FinishedAt: s.now()})
		}
		return false, false
	}

	job := s.job
	job.FinishedAt = s.now()
	job.Result = result
	job.Err = err
	if err != nil {
		job.Status = StatusFailed
		LogJob(job, "failed")
	} else {
		job.Status = StatusComplete
		LogJob(job, "completed")
	}
	if s.history != nil {
		s.history.Push(*job)
	}
	s.job = nil

	rerun = s.pending
	s.pending = false
	if rerun {
		s.state = Scheduled
	} else {
		s.state = Idle
	}
	return err == nil, rerun
}
