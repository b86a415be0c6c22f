package bookmark

import (
	"context"
	"slices"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func isSorted(events []Event) bool {
	for i := 1; i < len(events); i++ {
		if events[i].Timestamp < events[i-1].Timestamp {
			return false
		}
	}
	return true
}

func TestNewStoreIsEmpty(t *testing.T) {
	s := NewStore(Options{})
	snap := s.Snapshot()
	require.NotNil(t, snap)
	assert.True(t, snap.Empty())
	assert.Equal(t, uint64(0), snap.Version)
}

func TestNilSnapshotLen(t *testing.T) {
	var snap *Snapshot
	assert.Equal(t, 0, snap.Len())
	assert.True(t, snap.Empty())
}

func TestGenerateSortedAndBounded(t *testing.T) {
	opts := Options{MaxTimestamp: 24 * time.Hour, MaxDuration: 3 * time.Hour, Seed: 42}
	events, err := Generate(context.Background(), 200_000, opts, nil)
	require.NoError(t, err)
	require.Len(t, events, 200_000)

	assert.True(t, isSorted(events), "events must be non-decreasing in timestamp")
	seen := make([]bool, len(events))
	for _, e := range events {
		assert.GreaterOrEqual(t, e.Timestamp, int64(0))
		assert.Less(t, e.Timestamp, int64(86_400_000))
		assert.GreaterOrEqual(t, e.Duration, int64(0))
		assert.Less(t, e.Duration, int64(10_800_000))
		require.False(t, seen[e.ID], "duplicate id %d", e.ID)
		seen[e.ID] = true
	}
}

func TestGenerateTiesKeepGenerationOrder(t *testing.T) {
	opts := Options{MaxTimestamp: 10 * time.Millisecond, Seed: 3}
	events, err := Generate(context.Background(), 5_000, opts, nil)
	require.NoError(t, err)

	for i := 1; i < len(events); i++ {
		if events[i].Timestamp == events[i-1].Timestamp {
			assert.Less(t, events[i-1].ID, events[i].ID)
		}
	}
}

func TestGenerateDeterministicAcrossWorkers(t *testing.T) {
	a, err := Generate(context.Background(), 300_000, Options{Seed: 9, Workers: 1}, nil)
	require.NoError(t, err)
	b, err := Generate(context.Background(), 300_000, Options{Seed: 9, Workers: 8}, nil)
	require.NoError(t, err)
	assert.True(t, slices.Equal(a, b))
}

func TestGenerateProgress(t *testing.T) {
	var progress atomic.Int64
	_, err := Generate(context.Background(), 100_001, Options{Seed: 1}, &progress)
	require.NoError(t, err)
	assert.Equal(t, int64(100_001), progress.Load())
}

func TestGenerateNegativeCountClampsToZero(t *testing.T) {
	events, err := Generate(context.Background(), -5, Options{}, nil)
	require.NoError(t, err)
	assert.Empty(t, events)

	s := NewStore(Options{})
	snap, err := s.Regenerate(context.Background(), -1)
	require.NoError(t, err)
	assert.True(t, snap.Empty())
	assert.Equal(t, uint64(1), snap.Version)
}

func TestGenerateCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	events, err := Generate(ctx, 1_000_000, Options{Seed: 1}, nil)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, events)
}

func TestRegenerateSwapsAtomically(t *testing.T) {
	s := NewStore(Options{Seed: 5})
	first, err := s.Regenerate(context.Background(), 1000)
	require.NoError(t, err)
	firstEvents := slices.Clone(first.Events)

	second, err := s.Regenerate(context.Background(), 10)
	require.NoError(t, err)

	assert.Equal(t, uint64(1), first.Version)
	assert.Equal(t, uint64(2), second.Version)
	assert.Same(t, second, s.Snapshot())
	// the old snapshot is untouched
	assert.Equal(t, firstEvents, first.Events)
	assert.Equal(t, 10, s.Snapshot().Len())
}

func TestReplaceSortsUnsortedInput(t *testing.T) {
	s := NewStore(Options{})
	snap := s.Replace([]Event{{ID: 0, Timestamp: 50}, {ID: 1, Timestamp: 10}, {ID: 2, Timestamp: 10}})
	assert.Equal(t, []int64{1, 2, 0}, []int64{snap.Events[0].ID, snap.Events[1].ID, snap.Events[2].ID})
}

func TestInstallTrustsOrdering(t *testing.T) {
	s := NewStore(Options{})
	events := []Event{{ID: 0, Timestamp: 50}, {ID: 1, Timestamp: 10}}
	snap := s.Install(events)

	// Install neither copies nor reorders.
	assert.Same(t, &events[0], &snap.Events[0])
	assert.Equal(t, int64(0), snap.Events[0].ID)
	assert.Equal(t, uint64(1), snap.Version)
	assert.Same(t, snap, s.Snapshot())
}

func TestOptionsConcurrentWithSetOptions(t *testing.T) {
	s := NewStore(Options{Seed: 1})
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 1000; i++ {
			s.SetOptions(Options{Seed: uint64(i)})
		}
	}()
	for i := 0; i < 1000; i++ {
		_ = s.Options()
	}
	<-done
	assert.Equal(t, uint64(999), s.Options().Seed)
}

func TestEventHelpers(t *testing.T) {
	e := Event{ID: 7, Timestamp: 100, Duration: 25}
	assert.Equal(t, int64(125), e.EndTime())
	assert.Equal(t, "Bookmark 7", e.Name())
}
