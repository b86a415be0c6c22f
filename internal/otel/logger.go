package otel

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
)

// queueDepth bounds the events waiting for the writer. A regenerate plus a
// few clustering passes emit a handful of events; drag and hover bursts go
// through a Sampler first, so this only fills when the disk stalls.
const queueDepth = 4096

// queued pairs the encoded line with the event itself so the ring keeps
// fields that are not serialized, such as Dur.
type queued struct {
	line []byte
	ev   Event
}

// Logger appends events to a JSONL sink from a single writer goroutine and
// mirrors them into an optional RingBuffer. Emit never blocks the caller:
// when the queue is full the event is counted and discarded.
//
// A nil *Logger is valid and discards everything.
type Logger struct {
	session string
	queue   chan queued
	sink    *bufio.Writer
	ring    atomic.Pointer[RingBuffer]
	min     atomic.Int32 // rank of the lowest level written

	// gate guards queue against send-after-close. Emit holds it for
	// reading; Close takes it for writing before closing the queue.
	gate     sync.RWMutex
	shut     bool
	finished chan struct{}

	overflow atomic.Uint64 // queue full or logger closed
	failed   atomic.Uint64 // encode or write errors
}

// NewLogger starts a Logger writing to w. Close must be called to flush.
func NewLogger(w io.Writer) *Logger {
	l := &Logger{
		session:  uuid.NewString(),
		queue:    make(chan queued, queueDepth),
		sink:     bufio.NewWriter(w),
		finished: make(chan struct{}),
	}
	go l.writeLoop()
	return l
}

// NewNullLogger returns a Logger whose lines go nowhere. The ring buffer,
// if one is attached, still receives every event.
func NewNullLogger() *Logger {
	return NewLogger(io.Discard)
}

// writeLoop owns sink. It flushes whenever the queue drains so a crash
// loses at most the events of the current burst. A failed flush counts
// every line still buffered.
func (l *Logger) writeLoop() {
	defer close(l.finished)
	buffered := 0
	flush := func() {
		if err := l.sink.Flush(); err != nil {
			l.failed.Add(uint64(buffered))
		}
		buffered = 0
	}
	for q := range l.queue {
		if _, err := l.sink.Write(q.line); err != nil {
			l.failed.Add(1)
		} else {
			buffered++
		}
		if rb := l.ring.Load(); rb != nil {
			rb.Push(q.ev)
		}
		if len(l.queue) == 0 {
			flush()
		}
	}
	flush()
}

// SetMinLevel drops events below lvl before they are encoded. Events with
// no level count as info.
func (l *Logger) SetMinLevel(lvl Level) {
	if l == nil {
		return
	}
	l.min.Store(int32(lvl.rank()))
}

// Enabled reports whether an event at lvl would be kept.
func (l *Logger) Enabled(lvl Level) bool {
	return l != nil && int32(lvl.rank()) >= l.min.Load()
}

// Emit stamps e with the session and, if unset, the current time and info
// level, then queues it. Safe to call concurrently with Close.
func (l *Logger) Emit(e Event) {
	if l == nil {
		return
	}
	if e.Level == "" {
		e.Level = LevelInfo
	}
	if !l.Enabled(e.Level) {
		return
	}
	if e.Time.IsZero() {
		e.Time = time.Now()
	}
	e.SessionID = l.session

	line, err := sonic.Marshal(e)
	if err != nil {
		l.failed.Add(1)
		return
	}
	line = append(line, '\n')

	l.gate.RLock()
	defer l.gate.RUnlock()
	if l.shut {
		l.overflow.Add(1)
		return
	}
	select {
	case l.queue <- queued{line: line, ev: e}:
	default:
		l.overflow.Add(1)
	}
}

// Info emits an info event with a message.
func (l *Logger) Info(kind EventKind, comp, msg string) {
	l.Emit(Event{Level: LevelInfo, Kind: kind, Comp: comp, Msg: msg})
}

// Warn emits a warn event with a message.
func (l *Logger) Warn(kind EventKind, comp, msg string) {
	l.Emit(Event{Level: LevelWarn, Kind: kind, Comp: comp, Msg: msg})
}

// Error emits an error event. A nil err leaves the err field empty.
func (l *Logger) Error(kind EventKind, comp string, err error) {
	e := Event{Level: LevelError, Kind: kind, Comp: comp}
	if err != nil {
		e.Err = err.Error()
	}
	l.Emit(e)
}

// SetRingBuffer mirrors subsequently written events into rb. Pass nil to
// detach.
func (l *Logger) SetRingBuffer(rb *RingBuffer) {
	if l == nil {
		return
	}
	l.ring.Store(rb)
}

// SessionID returns the identifier stamped on every event.
func (l *Logger) SessionID() string {
	if l == nil {
		return ""
	}
	return l.session
}

// Dropped returns how many events never reached the sink.
func (l *Logger) Dropped() uint64 {
	if l == nil {
		return 0
	}
	return l.overflow.Load() + l.failed.Load()
}

// Close stops accepting events, waits for the queue to be written and
// flushed, and reports losses on stderr. Later calls are no-ops.
func (l *Logger) Close() {
	if l == nil {
		return
	}
	l.gate.Lock()
	if l.shut {
		l.gate.Unlock()
		return
	}
	l.shut = true
	close(l.queue)
	l.gate.Unlock()

	<-l.finished

	over, fail := l.overflow.Load(), l.failed.Load()
	if over+fail > 0 {
		fmt.Fprintf(os.Stderr, "bookmarks: trace session %s lost %d events (%d overflow, %d write errors)\n",
			l.session, over+fail, over, fail)
	}
}
