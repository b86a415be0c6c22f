package work

import "sync"

// DefaultHistorySize is the number of finished jobs remembered.
const DefaultHistorySize = 64

// History is a fixed-size ring of finished jobs, newest last.
type History struct {
	mu    sync.Mutex
	buf   []Job
	size  int
	head  int // next write position
	count int
}

// NewHistory creates a history with the given capacity.
func NewHistory(size int) *History {
	if size <= 0 {
		size = DefaultHistorySize
	}
	return &History{buf: make([]Job, size), size: size}
}

// Push records a job, overwriting the oldest if full.
func (h *History) Push(j Job) {
	h.mu.Lock()
	h.buf[h.head] = j
	h.head = (h.head + 1) % h.size
	if h.count < h.size {
		h.count++
	}
	h.mu.Unlock()
}

// Last returns the n most recent jobs in chronological order.
func (h *History) Last(n int) []Job {
	if n <= 0 {
		return nil
	}
	h.mu.Lock()
	defer h.mu.Unlock()

	if n > h.count {
		n = h.count
	}
	out := make([]Job, n)
	start := (h.head - n + h.size) % h.size
	for i := 0; i < n; i++ {
		out[i] = h.buf[(start+i)%h.size]
	}
	return out
}

// Len returns the number of recorded jobs.
func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.count
}
