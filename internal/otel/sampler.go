package otel

import (
	"time"

	"golang.org/x/time/rate"
)

// DefaultSampleInterval is the minimum spacing of sampled events.
const DefaultSampleInterval = 100 * time.Millisecond

// Sampler forwards high-frequency events (drag motion, hover) to a Logger
// at a bounded rate. Events over the limit are silently skipped; they are
// not counted as drops.
type Sampler struct {
	log     *Logger
	limiter *rate.Limiter
}

// NewSampler creates a sampler allowing one event per interval with a
// burst of one. A nil logger yields a sampler that discards everything.
func NewSampler(l *Logger, interval time.Duration) *Sampler {
	if interval <= 0 {
		interval = DefaultSampleInterval
	}
	return &Sampler{log: l, limiter: rate.NewLimiter(rate.Every(interval), 1)}
}

// Emit forwards e if the logger keeps its level and the rate allows.
// Reports whether it was forwarded.
func (s *Sampler) Emit(e Event) bool {
	if s == nil || !s.log.Enabled(e.Level) || !s.limiter.Allow() {
		return false
	}
	s.log.Emit(e)
	return true
}
