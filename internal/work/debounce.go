package work

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// DefaultDebounce is the quiet period before a view recompute fires.
const DefaultDebounce = 500 * time.Millisecond

// DebounceMsg is delivered when a debounce tick fires.
type DebounceMsg struct {
	Key string
	Seq uint64
}

// Debouncer coalesces bursts of triggers. Each Arm schedules a tick tagged
// with a new sequence number; only the tick carrying the latest sequence
// settles, so earlier ticks in a burst are ignored when they arrive.
type Debouncer struct {
	key   string
	delay time.Duration
	seq   uint64
	armed bool
}

// NewDebouncer creates a debouncer. key distinguishes its messages from
// other debouncers in the same program.
func NewDebouncer(key string, delay time.Duration) *Debouncer {
	if delay <= 0 {
		delay = DefaultDebounce
	}
	return &Debouncer{key: key, delay: delay}
}

// SetDelay changes the quiet period for subsequent Arm calls.
func (d *Debouncer) SetDelay(delay time.Duration) {
	if delay > 0 {
		d.delay = delay
	}
}

// Delay returns the quiet period.
func (d *Debouncer) Delay() time.Duration { return d.delay }

// Armed reports whether a tick is outstanding.
func (d *Debouncer) Armed() bool { return d.armed }

// Seq returns the latest sequence number.
func (d *Debouncer) Seq() uint64 { return d.seq }

// Arm (re)starts the quiet period.
func (d *Debouncer) Arm() tea.Cmd {
	d.seq++
	d.armed = true
	key, seq := d.key, d.seq
	return tea.Tick(d.delay, func(time.Time) tea.Msg {
		return DebounceMsg{Key: key, Seq: seq}
	})
}

// Settled reports whether msg is the tick of the latest Arm. It returns true
// at most once per Arm.
func (d *Debouncer) Settled(msg DebounceMsg) bool {
	if !d.armed || msg.Key != d.key || msg.Seq != d.seq {
		return false
	}
	d.armed = false
	return true
}
