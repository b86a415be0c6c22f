package bookmark

import (
	"context"
	"slices"
	"sync"
	"sync/atomic"
)

// Snapshot is one immutable generation of the store. Events is sorted
// ascending by Timestamp and must not be modified.
type Snapshot struct {
	Version uint64
	Events  []Event
}

// Len returns the number of events. Safe on a nil snapshot.
func (s *Snapshot) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Events)
}

// Empty reports whether the snapshot has no events.
func (s *Snapshot) Empty() bool {
	return s.Len() == 0
}

// Store owns the current snapshot. Snapshot is safe from any goroutine;
// Replace is expected to be called from the goroutine that owns the view.
type Store struct {
	opts    Options
	current atomic.Pointer[Snapshot]

	mu      sync.Mutex // guards opts and version
	version uint64
}

// NewStore creates an empty store. Zero-valued options take defaults.
func NewStore(opts Options) *Store {
	s := &Store{opts: opts.withDefaults()}
	s.current.Store(&Snapshot{})
	return s
}

// Options returns the generation options of the store.
func (s *Store) Options() Options {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.opts
}

// SetOptions changes the generation options used by later Regenerate calls.
func (s *Store) SetOptions(opts Options) {
	s.mu.Lock()
	s.opts = opts.withDefaults()
	s.mu.Unlock()
}

// Snapshot returns the current snapshot without copying. Never nil.
func (s *Store) Snapshot() *Snapshot {
	return s.current.Load()
}

// Replace installs events as the new canonical sequence and returns the
// resulting snapshot. Unsorted input is sorted in place first, so Replace is
// O(n); callers on the interactive goroutine use Install.
func (s *Store) Replace(events []Event) *Snapshot {
	if !slices.IsSortedFunc(events, compare) {
		slices.SortFunc(events, compare)
	}
	return s.Install(events)
}

// Install swaps in events without inspecting them. They must be sorted by
// Timestamp, as Generate returns them. Constant time.
func (s *Store) Install(events []Event) *Snapshot {
	s.mu.Lock()
	s.version++
	snap := &Snapshot{Version: s.version, Events: events}
	s.current.Store(snap)
	s.mu.Unlock()

	return snap
}

// Regenerate builds count fresh events and swaps them in. The previous
// snapshot stays valid until the new one is fully built. A negative count
// is clamped to 0.
func (s *Store) Regenerate(ctx context.Context, count int) (*Snapshot, error) {
	s.mu.Lock()
	opts := s.opts
	s.mu.Unlock()

	events, err := Generate(ctx, count, opts, nil)
	if err != nil {
		return nil, err
	}
	return s.Install(events), nil
}
