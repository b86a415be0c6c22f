package bookmark

import (
	"context"
	"math/rand/v2"
	"runtime"
	"slices"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
)

const (
	// DefaultMaxTimestamp bounds generated start times.
	DefaultMaxTimestamp = 24 * time.Hour

	// DefaultMaxDuration bounds generated durations.
	DefaultMaxDuration = 3 * time.Hour

	// chunkSize is the number of events one generator goroutine fills.
	// It is fixed so that output for a given seed does not depend on Workers.
	chunkSize = 1 << 16

	// ctxCheckEvery is how many events are produced between context checks.
	ctxCheckEvery = 1 << 14
)

// Options control random generation.
type Options struct {
	MaxTimestamp time.Duration // timestamps are uniform in [0, MaxTimestamp)
	MaxDuration  time.Duration // durations are uniform in [0, MaxDuration)
	Seed         uint64        // 0 picks a time-based seed
	Workers      int           // 0 means GOMAXPROCS
}

func (o Options) withDefaults() Options {
	if o.MaxTimestamp <= 0 {
		o.MaxTimestamp = DefaultMaxTimestamp
	}
	if o.MaxDuration <= 0 {
		o.MaxDuration = DefaultMaxDuration
	}
	if o.Workers <= 0 {
		o.Workers = runtime.GOMAXPROCS(0)
	}
	return o
}

// Generate produces count random events sorted by timestamp. Generation is
// split into fixed-size chunks filled in parallel; each chunk has its own
// PCG stream derived from the seed and chunk index, so a fixed non-zero seed
// gives identical output regardless of worker count. progress, if non-nil,
// is advanced as events are produced. A negative count is clamped to 0.
func Generate(ctx context.Context, count int, opts Options, progress *atomic.Int64) ([]Event, error) {
	if count <= 0 {
		return nil, ctx.Err()
	}
	opts = opts.withDefaults()
	seed := opts.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}

	maxTS := max(opts.MaxTimestamp.Milliseconds(), 1)
	maxDur := max(opts.MaxDuration.Milliseconds(), 1)
	events := make([]Event, count)

	var g errgroup.Group
	g.SetLimit(opts.Workers)
	for lo, idx := 0, uint64(0); lo < count; lo, idx = lo+chunkSize, idx+1 {
		hi := min(lo+chunkSize, count)
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			rng := rand.New(rand.NewPCG(seed, idx))
			for i := lo; i < hi; i++ {
				events[i] = Event{
					ID:        int64(i),
					Timestamp: rng.Int64N(maxTS),
					Duration:  rng.Int64N(maxDur),
				}
				if (i-lo+1)%ctxCheckEvery == 0 {
					if err := ctx.Err(); err != nil {
						return err
					}
					if progress != nil {
						progress.Add(ctxCheckEvery)
					}
				}
			}
			if progress != nil {
				progress.Add(int64((hi - lo) % ctxCheckEvery))
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	slices.SortFunc(events, compare)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return events, nil
}
