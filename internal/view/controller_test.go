package view

import (
	"context"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abelbrown/bookmarks/internal/bookmark"
	"github.com/abelbrown/bookmarks/internal/cluster"
	"github.com/abelbrown/bookmarks/internal/config"
	"github.com/abelbrown/bookmarks/internal/otel"
	"github.com/abelbrown/bookmarks/internal/work"
)

// exampleEvents clusters as [{0,1,55},{2,2,205}] at a 100ms gap.
func exampleEvents() []bookmark.Event {
	return []bookmark.Event{
		{ID: 0, Timestamp: 0, Duration: 10},
		{ID: 1, Timestamp: 5, Duration: 50},
		{ID: 2, Timestamp: 200, Duration: 5},
	}
}

// testConfig maps gapMs of time to the cluster gap at width 864 (1e-5 px/ms).
func testConfig(gapMs float64) *config.Config {
	cfg := config.DefaultConfig()
	cfg.View.Debounce = time.Millisecond
	cfg.View.ClusterGapPx = gapMs * 1e-5
	cfg.Data.MaxCount = 10_000
	return cfg
}

func newTestController(t *testing.T, cfg *config.Config) (*Controller, *bookmark.Store) {
	t.Helper()
	store := bookmark.NewStore(bookmark.Options{Seed: 42})
	return NewController(context.Background(), store, cfg, nil), store
}

// run executes cmd and everything it leads to, feeding each message back
// into the controller, and returns the messages seen.
func run(c *Controller, cmd tea.Cmd) []tea.Msg {
	var seen []tea.Msg
	queue := []tea.Cmd{cmd}
	for len(queue) > 0 {
		next := queue[0]
		queue = queue[1:]
		if next == nil {
			continue
		}
		switch msg := next().(type) {
		case tea.BatchMsg:
			queue = append(queue, msg...)
		default:
			seen = append(seen, msg)
			queue = append(queue, c.Update(msg))
		}
	}
	return seen
}

func msgsOf[T any](msgs []tea.Msg) []T {
	var out []T
	for _, m := range msgs {
		if v, ok := m.(T); ok {
			out = append(out, v)
		}
	}
	return out
}

func TestResizeInitialisesTransform(t *testing.T) {
	c, _ := newTestController(t, testConfig(100))

	assert.Nil(t, c.Resize(0), "zero width defers")
	assert.False(t, c.State().Transform.Ready())

	cmd := c.Resize(800)
	require.NotNil(t, cmd, "first width clusters immediately")
	assert.InDelta(t, 800.0/86_400_000, c.State().Transform.Scale(), 1e-18)
	assert.Equal(t, 0.0, c.State().Transform.Offset())
	assert.True(t, c.Clustering())

	run(c, cmd)
	st := c.State()
	assert.False(t, st.Dirty)
	assert.Empty(t, st.Clusters, "empty store gives no clusters")
	assert.False(t, c.Busy())
}

func TestClustersInstallForExample(t *testing.T) {
	c, store := newTestController(t, testConfig(100))
	store.Replace(exampleEvents())

	run(c, c.Resize(864))

	st := c.State()
	assert.Equal(t, []cluster.Cluster{
		{Start: 0, End: 1, EndTime: 55},
		{Start: 2, End: 2, EndTime: 205},
	}, st.Clusters)
	assert.Equal(t, store.Snapshot(), st.Snapshot)
	assert.False(t, st.Dirty)
}

func TestRegenerateBeforeWidthMarksDirty(t *testing.T) {
	c, store := newTestController(t, testConfig(100))

	msgs := run(c, c.Regenerate(500))
	gen := msgsOf[EventsGenerated](msgs)
	require.Len(t, gen, 1)
	require.NoError(t, gen[0].Err)
	assert.Equal(t, 500, store.Snapshot().Len())
	assert.Same(t, &gen[0].Events[0], &store.Snapshot().Events[0], "generated events are installed as is")
	assert.Empty(t, msgsOf[ClustersReady](msgs), "no clustering without a width")
	assert.True(t, c.State().Dirty)

	run(c, c.Resize(1200))
	st := c.State()
	assert.False(t, st.Dirty)
	assert.NotEmpty(t, st.Clusters)
	assert.Equal(t, store.Snapshot().Version, st.Snapshot.Version)
}

func TestRegenerateClampsCount(t *testing.T) {
	c, store := newTestController(t, testConfig(100))

	msgs := run(c, c.Regenerate(-3))
	gen := msgsOf[EventsGenerated](msgs)
	require.Len(t, gen, 1)
	assert.Equal(t, 0, gen[0].Count)
	assert.True(t, store.Snapshot().Empty())
	assert.Equal(t, uint64(1), store.Snapshot().Version)

	msgs = run(c, c.Regenerate(1_000_000))
	gen = msgsOf[EventsGenerated](msgs)
	require.Len(t, gen, 1)
	assert.Equal(t, 10_000, gen[0].Count, "clamped to configured max")
	assert.Equal(t, 10_000, store.Snapshot().Len())
}

func TestRegenerateWhileRunningKeepsLatestCount(t *testing.T) {
	c, store := newTestController(t, testConfig(100))

	first := c.Regenerate(5)
	require.NotNil(t, first)
	assert.True(t, c.Generating())
	_, total := c.GenerateProgress()
	assert.Equal(t, int64(5), total)

	assert.Nil(t, c.Regenerate(7))
	assert.Nil(t, c.Regenerate(9))

	msgs := run(c, first)
	gen := msgsOf[EventsGenerated](msgs)
	require.Len(t, gen, 2)
	assert.Equal(t, 5, gen[0].Count)
	assert.Equal(t, 9, gen[1].Count)
	assert.Equal(t, 9, store.Snapshot().Len())
	assert.Equal(t, uint64(2), store.Snapshot().Version)
	assert.False(t, c.Generating())
}

func TestPanDuringClusteringQueuesRerun(t *testing.T) {
	c, store := newTestController(t, testConfig(100))
	store.Replace(exampleEvents())

	first := c.Resize(864)
	require.NotNil(t, first)
	pending := first().(ClustersReady)

	// Pan and let the debounce settle while the first job is in flight.
	run(c, c.Pan(-0.0005))
	assert.True(t, c.State().Dirty)

	rerun := c.Update(pending)
	require.NotNil(t, rerun, "trigger during a running job reruns")
	assert.True(t, c.State().Dirty)
	assert.Equal(t, pending.Clusters, c.State().Clusters)

	// A duplicate of an old result is dropped.
	dup := pending
	dup.Clusters = nil
	assert.Nil(t, c.Update(dup))
	assert.Equal(t, pending.Clusters, c.State().Clusters)

	run(c, rerun)
	assert.False(t, c.State().Dirty)
	hist := c.History().Last(10)
	require.NotEmpty(t, hist)
}

func TestStaleResultIgnored(t *testing.T) {
	c, store := newTestController(t, testConfig(100))
	store.Replace(exampleEvents())
	run(c, c.Resize(864))
	before := c.State().Clusters

	cmd := c.Update(ClustersReady{Gen: 99, Snapshot: store.Snapshot(), Clusters: []cluster.Cluster{{Start: 0, End: 2, EndTime: 205}}})
	assert.Nil(t, cmd)
	assert.Equal(t, before, c.State().Clusters)
}

func TestDebounceCoalescesBurst(t *testing.T) {
	c, store := newTestController(t, testConfig(100))
	store.Replace(exampleEvents())
	run(c, c.Resize(864))

	ticks := []tea.Cmd{c.Pan(1), c.Pan(1), c.Zoom(432, true)}
	var msgs []tea.Msg
	for _, tick := range ticks {
		msgs = append(msgs, run(c, tick)...)
	}
	assert.Len(t, msgsOf[ClustersReady](msgs), 1, "only the last tick recomputes")
	assert.False(t, c.State().Dirty)
}

func TestDragPansByDelta(t *testing.T) {
	c, _ := newTestController(t, testConfig(100))
	run(c, c.Resize(864))

	assert.Nil(t, c.DragTo(50), "drag without press is ignored")

	c.BeginPan(100)
	assert.True(t, c.Panning())
	require.NotNil(t, c.DragTo(130))
	require.NotNil(t, c.DragTo(120))
	assert.Nil(t, c.DragTo(120), "no movement")
	assert.InDelta(t, 20.0, c.State().Transform.Offset(), 1e-9)

	end := c.EndPan()
	require.NotNil(t, end)
	assert.False(t, c.Panning())
	assert.Nil(t, c.EndPan())
	run(c, end)
	assert.False(t, c.State().Dirty)
}

func TestZoomKeepsAnchor(t *testing.T) {
	c, _ := newTestController(t, testConfig(100))
	assert.Nil(t, c.Zoom(10, true), "zoom before the first width is ignored")

	run(c, c.Resize(864))
	before := c.State().Transform.TimeFor(300)
	run(c, c.Zoom(300, true))
	run(c, c.Zoom(300, true))
	after := c.State().Transform
	assert.InDelta(t, before, after.TimeFor(300), 1e-6)
	assert.InDelta(t, 1e-5*1.1*1.1, after.Scale(), 1e-15)

	run(c, c.ResetView())
	assert.InDelta(t, 1e-5, c.State().Transform.Scale(), 1e-18)
}

func TestApplyConfigReclusters(t *testing.T) {
	c, store := newTestController(t, testConfig(100))
	store.Replace(exampleEvents())
	run(c, c.Resize(864))
	require.Len(t, c.State().Clusters, 2)

	run(c, c.ApplyConfig(testConfig(300)))
	assert.Equal(t, []cluster.Cluster{{Start: 0, End: 2, EndTime: 205}}, c.State().Clusters)
	assert.Nil(t, c.ApplyConfig(nil))
}

func TestGenerateErrorSurfaces(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	store := bookmark.NewStore(bookmark.Options{Seed: 1})
	c := NewController(ctx, store, testConfig(100), nil)

	run(c, c.Regenerate(1000))
	require.Error(t, c.Err())
	assert.ErrorIs(t, c.Err(), context.Canceled)
	assert.True(t, store.Snapshot().Empty())
	assert.Equal(t, uint64(0), store.Snapshot().Version, "failed generation leaves the store alone")

	c.ClearErr()
	assert.NoError(t, c.Err())
}

func TestTraceEvents(t *testing.T) {
	ring := otel.NewRingBuffer(64)
	trace := otel.NewNullLogger()
	trace.SetRingBuffer(ring)

	store := bookmark.NewStore(bookmark.Options{Seed: 3})
	c := NewController(context.Background(), store, testConfig(100), trace)
	run(c, c.Regenerate(100))
	run(c, c.Resize(864))
	trace.Close()

	stats := ring.Stats()
	assert.Equal(t, 1, stats[otel.KindGenerateStart])
	assert.Equal(t, 1, stats[otel.KindGenerateComplete])
	assert.Equal(t, 1, stats[otel.KindClusterComplete])
	assert.Equal(t, 1, stats[otel.KindResize])
}

func TestZoomFarOutKeepsEventsClustered(t *testing.T) {
	// An 8px gap at width 864.
	c, store := newTestController(t, testConfig(800_000))
	store.Replace([]bookmark.Event{
		{ID: 0, Timestamp: 1000, Duration: 10},
		{ID: 1, Timestamp: 50_000_000, Duration: 10},
	})
	run(c, c.Resize(800))

	var last tea.Cmd
	for i := 0; i < 300; i++ {
		last = c.Zoom(400, false)
	}
	run(c, last)

	st := c.State()
	assert.False(t, st.Dirty)
	lo, hi := st.Transform.Visible(800)
	assert.Less(t, lo, int64(1000))
	assert.Greater(t, hi, int64(50_000_000))
	assert.Equal(t, []cluster.Cluster{{Start: 0, End: 1, EndTime: 50_000_010}}, st.Clusters,
		"both events stay on screen and merge")
}

func TestGestureSchedulesClusterSlot(t *testing.T) {
	c, store := newTestController(t, testConfig(100))
	store.Replace(exampleEvents())
	run(c, c.Resize(864))
	assert.Equal(t, work.Idle, c.ClusterState())

	tick := c.Pan(5)
	assert.Equal(t, work.Scheduled, c.ClusterState(), "waiting for the debounce")
	assert.True(t, c.State().Dirty)

	run(c, tick)
	assert.Equal(t, work.Idle, c.ClusterState())
	assert.False(t, c.State().Dirty)
}

func TestRerunWaitsForSettlingGesture(t *testing.T) {
	c, store := newTestController(t, testConfig(100))
	store.Replace(exampleEvents())

	first := c.Resize(864)
	require.NotNil(t, first)
	pending := first().(ClustersReady)

	tick := c.Pan(5)
	assert.Equal(t, work.Running, c.ClusterState())

	assert.Nil(t, c.Update(pending), "the debounce will rerun")
	assert.Equal(t, work.Scheduled, c.ClusterState())
	assert.True(t, c.State().Dirty)
	assert.Equal(t, pending.Clusters, c.State().Clusters)

	msgs := run(c, tick)
	assert.Len(t, msgsOf[ClustersReady](msgs), 1)
	assert.Equal(t, work.Idle, c.ClusterState())
	assert.False(t, c.State().Dirty)
}
