package otel

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// filled returns a ring of capacity size after pushing n events whose Count
// is their push order.
func filled(size, n int) *RingBuffer {
	r := NewRingBuffer(size)
	for i := 0; i < n; i++ {
		r.Push(Event{Kind: KindGenerateStart, Count: i})
	}
	return r
}

func counts(events []Event) []int {
	out := make([]int, len(events))
	for i, e := range events {
		out[i] = e.Count
	}
	return out
}

func TestRingOrdering(t *testing.T) {
	tests := []struct {
		name     string
		size, n  int
		last     int
		wantSnap []int
		wantLast []int
		wantLen  int
	}{
		{"partial", 8, 5, 3, []int{0, 1, 2, 3, 4}, []int{2, 3, 4}, 5},
		{"exactly full", 4, 4, 2, []int{0, 1, 2, 3}, []int{2, 3}, 4},
		{"wrapped once", 4, 6, 2, []int{2, 3, 4, 5}, []int{4, 5}, 4},
		{"wrapped twice", 4, 9, 3, []int{5, 6, 7, 8}, []int{6, 7, 8}, 4},
		{"last beyond len", 8, 2, 100, []int{0, 1}, []int{0, 1}, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := filled(tt.size, tt.n)
			assert.Equal(t, tt.wantSnap, counts(r.Snapshot()))
			assert.Equal(t, tt.wantLast, counts(r.Last(tt.last)))
			assert.Equal(t, tt.wantLen, r.Len())
		})
	}
}

func TestRingEmptyAndNonPositive(t *testing.T) {
	assert.Nil(t, NewRingBuffer(8).Snapshot())

	r := filled(8, 3)
	assert.Nil(t, r.Last(0))
	assert.Nil(t, r.Last(-1))
	assert.Nil(t, r.LastOf("gen.", 0))
}

func TestRingCapacity(t *testing.T) {
	assert.Equal(t, 64, NewRingBuffer(64).Cap())
	assert.Equal(t, DefaultRingSize, NewRingBuffer(0).Cap())
	assert.Equal(t, DefaultRingSize, NewRingBuffer(-5).Cap())
}

func TestRingStatsCountsBufferedKinds(t *testing.T) {
	r := NewRingBuffer(4)
	for _, k := range []EventKind{KindPan, KindPan, KindZoom, KindResize, KindResize, KindDebounceSettled} {
		r.Push(Event{Kind: k})
	}
	// The two pans were evicted.
	assert.Equal(t, map[EventKind]int{
		KindZoom:            1,
		KindResize:          2,
		KindDebounceSettled: 1,
	}, r.Stats())
}

func TestRingClonesExtra(t *testing.T) {
	r := NewRingBuffer(2)
	extra := map[string]any{"width": 800}
	r.Push(Event{Kind: KindResize, Extra: extra})
	extra["width"] = 1200

	assert.Equal(t, 800, r.Snapshot()[0].Extra["width"])
}

func TestLastOfFiltersByPrefix(t *testing.T) {
	r := NewRingBuffer(4)
	r.Push(Event{Kind: KindClusterStart, Gen: 1})
	r.Push(Event{Kind: KindPan})
	r.Push(Event{Kind: KindClusterComplete, Gen: 1})
	r.Push(Event{Kind: KindClusterStart, Gen: 2})
	r.Push(Event{Kind: KindZoom}) // evicts the first cluster.start

	got := r.LastOf("cluster.", 10)
	require.Len(t, got, 2)
	assert.Equal(t, KindClusterComplete, got[0].Kind)
	assert.Equal(t, uint64(2), got[1].Gen)

	one := r.LastOf("cluster.", 1)
	require.Len(t, one, 1)
	assert.Equal(t, uint64(2), one[0].Gen)

	assert.Empty(t, r.LastOf("config.", 5))
}

func TestRingConcurrentAccess(t *testing.T) {
	r := NewRingBuffer(128)
	var wg sync.WaitGroup
	for w := 0; w < 6; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				r.Push(Event{Kind: KindHover, Count: j})
			}
		}()
	}
	for rd := 0; rd < 3; rd++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				r.Snapshot()
				r.LastOf("view.", 8)
				r.Stats()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 128, r.Len())
	assert.Equal(t, 128, r.Stats()[KindHover])
}

func TestRingFedByLogger(t *testing.T) {
	r := NewRingBuffer(16)
	l := NewNullLogger()
	l.SetRingBuffer(r)

	l.Info(KindStartup, "main", "hello")
	l.Info(KindShutdown, "main", "bye")
	l.Close()

	got := r.Last(2)
	require.Len(t, got, 2)
	assert.Equal(t, KindStartup, got[0].Kind)
	assert.Equal(t, KindShutdown, got[1].Kind)
}
