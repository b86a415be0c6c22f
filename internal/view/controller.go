// Package view owns the timeline's view state and keeps its clusters in sync
// with the viewport and the event store.
//
// # Architecture
//
//	┌──────────┐  snapshot   ┌────────────┐  State()  ┌──────────┐
//	│  Store   │ ──────────> │ Controller │ ────────> │ UI/Frame │
//	│(bookmark)│ <── Replace │  (view)    │ <──────── │ (input)  │
//	└──────────┘             └────────────┘  pan/zoom └──────────┘
//	                           │       ^
//	                  tea.Cmd  v       │ EventsGenerated / ClustersReady
//	                         ┌────────────┐
//	                         │ background │
//	                         │    jobs    │
//	                         └────────────┘
//
// # Concurrency
//
// Every Controller method runs on the bubbletea Update goroutine; the view
// state has no locks. Generation and clustering run as tea.Cmd closures over
// immutable inputs (a snapshot pointer and scalars) and report back through
// messages. At most one job of each kind is in flight (work.Slot); a trigger
// that arrives while a job runs queues one rerun.
//
// # Recompute triggers
//
//   - pan, zoom, resize: transform updated at once, clustering debounced
//   - data regenerated: clustering dispatched immediately
//   - config reload: tunables applied, clustering dispatched immediately
package view

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"

	"github.com/abelbrown/bookmarks/internal/bookmark"
	"github.com/abelbrown/bookmarks/internal/cluster"
	"github.com/abelbrown/bookmarks/internal/config"
	"github.com/abelbrown/bookmarks/internal/otel"
	"github.com/abelbrown/bookmarks/internal/viewport"
	"github.com/abelbrown/bookmarks/internal/work"
)

const debounceKey = "view"

// State is the view state owned by the Controller.
//
// Clusters always index into Snapshot, the snapshot they were computed
// from, which may be older than the store's current one.
type State struct {
	Transform viewport.Transform
	Width     float64
	Clusters  []cluster.Cluster
	Snapshot  *bookmark.Snapshot
	Dirty     bool // clusters do not reflect the current transform or data
}

// EventsGenerated is sent when a generate job finishes.
type EventsGenerated struct {
	Gen    uint64
	Count  int
	Events []bookmark.Event
	Took   time.Duration
	Err    error
}

// ClustersReady is sent when a cluster job finishes.
type ClustersReady struct {
	Gen      uint64
	Snapshot *bookmark.Snapshot
	Clusters []cluster.Cluster
	Took     time.Duration
}

// Controller reacts to input, data and config changes and dispatches the
// background work that keeps State current.
type Controller struct {
	ctx     context.Context
	store   *bookmark.Store
	trace   *otel.Logger
	sampler *otel.Sampler

	state    State
	gapPx    float64
	panStep  float64
	rows     int
	maxCount int

	genSlot     *work.Slot
	clusterSlot *work.Slot
	debounce    *work.Debouncer
	history     *work.History

	progress  atomic.Int64
	genTarget int // count of the in-flight generation
	nextCount int // count for a queued rerun

	panning bool
	panX    float64

	err error
}

// NewController creates a controller over store. trace may be nil.
func NewController(ctx context.Context, store *bookmark.Store, cfg *config.Config, trace *otel.Logger) *Controller {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	history := work.NewHistory(cfg.UI.HistorySize)
	c := &Controller{
		ctx:         ctx,
		store:       store,
		trace:       trace,
		sampler:     otel.NewSampler(trace, otel.DefaultSampleInterval),
		genSlot:     work.NewSlot(work.KindGenerate, history),
		clusterSlot: work.NewSlot(work.KindCluster, history),
		debounce:    work.NewDebouncer(debounceKey, cfg.View.Debounce),
		history:     history,
	}
	c.state.Transform = viewport.New(cfg.Data.MaxTimestamp, cfg.View.ZoomFactor)
	c.state.Snapshot = store.Snapshot()
	c.applyTunables(cfg)
	return c
}

func (c *Controller) applyTunables(cfg *config.Config) {
	c.gapPx = cfg.View.ClusterGapPx
	c.panStep = cfg.View.PanStepPx
	c.rows = cfg.View.TooltipRows
	c.maxCount = cfg.Data.MaxCount
	c.state.Transform.SetSpan(cfg.Data.MaxTimestamp)
	c.state.Transform.SetZoomFactor(cfg.View.ZoomFactor)
	c.debounce.SetDelay(cfg.View.Debounce)
	c.store.SetOptions(bookmark.Options{
		MaxTimestamp: cfg.Data.MaxTimestamp,
		MaxDuration:  cfg.Data.MaxDuration,
		Seed:         c.store.Options().Seed,
		Workers:      cfg.Data.Workers,
	})
}

// State returns a copy of the view state.
func (c *Controller) State() State { return c.state }

// Rows returns the tooltip row limit.
func (c *Controller) Rows() int { return c.rows }

// PanStep returns the keyboard pan distance in pixels.
func (c *Controller) PanStep() float64 { return c.panStep }

// History returns finished job records.
func (c *Controller) History() *work.History { return c.history }

// Err returns the last job error, if any.
func (c *Controller) Err() error { return c.err }

// ClearErr dismisses the last error.
func (c *Controller) ClearErr() { c.err = nil }

// Busy reports whether any background job is running.
func (c *Controller) Busy() bool {
	return c.genSlot.Running() || c.clusterSlot.Running()
}

// Generating reports whether a generate job is running.
func (c *Controller) Generating() bool { return c.genSlot.Running() }

// Clustering reports whether a cluster job is running.
func (c *Controller) Clustering() bool { return c.clusterSlot.Running() }

// ClusterState returns where the cluster slot is in its cycle.
func (c *Controller) ClusterState() work.State { return c.clusterSlot.State() }

// GenerateProgress returns events produced so far by the running generate
// job and its target count.
func (c *Controller) GenerateProgress() (done, total int64) {
	if !c.genSlot.Running() {
		return 0, 0
	}
	return c.progress.Load(), int64(c.genTarget)
}

// Panning reports whether a drag is in progress.
func (c *Controller) Panning() bool { return c.panning }

// Resize applies a new viewport width. A non-positive width defers
// initialisation. The first usable width clusters at once; later widths go
// through the debounce.
func (c *Controller) Resize(width float64) tea.Cmd {
	if !(width > 0) {
		return nil
	}
	old := c.state.Width
	c.state.Transform.Resize(old, width)
	c.state.Width = width
	c.emit(otel.Event{Kind: otel.KindResize, Msg: fmt.Sprintf("%.0f -> %.0f", old, width)})

	if !(old > 0) {
		return c.recompute()
	}
	return c.touch()
}

// BeginPan starts a drag at x.
func (c *Controller) BeginPan(x float64) {
	c.panning = true
	c.panX = x
}

// DragTo pans by the distance moved since the last drag position.
func (c *Controller) DragTo(x float64) tea.Cmd {
	if !c.panning {
		return nil
	}
	dx := x - c.panX
	c.panX = x
	if dx == 0 {
		return nil
	}
	c.state.Transform.Pan(dx)
	c.sampler.Emit(otel.Event{Kind: otel.KindPan, Comp: "view", Msg: fmt.Sprintf("drag %+.0f", dx)})
	return c.touch()
}

// EndPan ends a drag.
func (c *Controller) EndPan() tea.Cmd {
	if !c.panning {
		return nil
	}
	c.panning = false
	return c.touch()
}

// Pan shifts the view by dx pixels.
func (c *Controller) Pan(dx float64) tea.Cmd {
	c.state.Transform.Pan(dx)
	c.emit(otel.Event{Kind: otel.KindPan, Msg: fmt.Sprintf("%+.0f", dx)})
	return c.touch()
}

// Zoom zooms in or out one step around anchor.
func (c *Controller) Zoom(anchor float64, in bool) tea.Cmd {
	if !c.state.Transform.Ready() {
		return nil
	}
	c.state.Transform.Zoom(anchor, in)
	dir := "out"
	if in {
		dir = "in"
	}
	c.sampler.Emit(otel.Event{Kind: otel.KindZoom, Comp: "view", Msg: fmt.Sprintf("%s @%.0f", dir, anchor)})
	return c.touch()
}

// ResetView refits the full time span into the viewport.
func (c *Controller) ResetView() tea.Cmd {
	if !(c.state.Width > 0) {
		return nil
	}
	c.state.Transform.Reset(c.state.Width)
	c.emit(otel.Event{Kind: otel.KindZoom, Msg: "reset"})
	return c.touch()
}

// touch marks clusters stale, schedules the cluster slot and restarts the
// debounce. The job itself starts when the debounce settles.
func (c *Controller) touch() tea.Cmd {
	c.state.Dirty = true
	c.clusterSlot.Schedule()
	return c.debounce.Arm()
}

// Regenerate starts generating count events, clamped to [0, max count].
// While a generation runs, the latest requested count is remembered and
// generated once the running job finishes.
func (c *Controller) Regenerate(count int) tea.Cmd {
	count = min(max(count, 0), c.maxCount)
	c.nextCount = count

	gen, ok := c.genSlot.Begin(humanize.Comma(int64(count)) + " events")
	if !ok {
		c.emit(otel.Event{Kind: otel.KindGenerateQueued, Count: count})
		return nil
	}
	c.genTarget = count
	c.progress.Store(0)
	c.emit(otel.Event{Kind: otel.KindGenerateStart, Gen: gen, Count: count})

	ctx, opts, progress := c.ctx, c.store.Options(), &c.progress
	return func() tea.Msg {
		start := time.Now()
		events, err := bookmark.Generate(ctx, count, opts, progress)
		return EventsGenerated{Gen: gen, Count: count, Events: events, Took: time.Since(start), Err: err}
	}
}

// ApplyConfig installs live tunables from a reloaded config and reclusters.
// Generation bounds apply to the next Regenerate.
func (c *Controller) ApplyConfig(cfg *config.Config) tea.Cmd {
	if cfg == nil {
		return nil
	}
	c.applyTunables(cfg)
	c.emit(otel.Event{Kind: otel.KindConfigReload, Msg: fmt.Sprintf("gap=%gpx zoom=%g debounce=%s", c.gapPx, cfg.View.ZoomFactor, c.debounce.Delay())})
	return c.recompute()
}

// Update handles the controller's own messages. Other messages are ignored.
func (c *Controller) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case work.DebounceMsg:
		if !c.debounce.Settled(msg) {
			return nil
		}
		c.emit(otel.Event{Kind: otel.KindDebounceSettled, Msg: msg.Key})
		return c.recompute()

	case EventsGenerated:
		return c.handleGenerated(msg)

	case ClustersReady:
		return c.handleClusters(msg)
	}
	return nil
}

func (c *Controller) handleGenerated(msg EventsGenerated) tea.Cmd {
	result := humanize.Comma(int64(len(msg.Events))) + " events"
	install, rerun := c.genSlot.Complete(msg.Gen, result, msg.Err)

	var cmds []tea.Cmd
	switch {
	case install:
		snap := c.store.Install(msg.Events)
		c.emit(otel.Event{Kind: otel.KindGenerateComplete, Gen: msg.Gen, Version: snap.Version, Count: snap.Len(), Dur: msg.Took})
		cmds = append(cmds, c.recompute())
	case msg.Err != nil:
		c.err = fmt.Errorf("generate %d events: %w", msg.Count, msg.Err)
		c.emit(otel.Event{Level: otel.LevelError, Kind: otel.KindGenerateError, Gen: msg.Gen, Err: msg.Err.Error()})
	}
	if rerun {
		cmds = append(cmds, c.Regenerate(c.nextCount))
	}
	return tea.Batch(cmds...)
}

func (c *Controller) handleClusters(msg ClustersReady) tea.Cmd {
	result := fmt.Sprintf("%d clusters", len(msg.Clusters))
	install, rerun := c.clusterSlot.Complete(msg.Gen, result, nil)
	if !install {
		c.emit(otel.Event{Level: otel.LevelWarn, Kind: otel.KindClusterStale, Gen: msg.Gen})
		return nil
	}

	c.state.Clusters = msg.Clusters
	c.state.Snapshot = msg.Snapshot
	c.state.Dirty = rerun || c.debounce.Armed()
	c.emit(otel.Event{Kind: otel.KindClusterComplete, Gen: msg.Gen, Version: msg.Snapshot.Version, Count: len(msg.Clusters), Dur: msg.Took})

	// A gesture still settling reruns through the debounce instead.
	if rerun && !c.debounce.Armed() {
		return c.recompute()
	}
	return nil
}

// recompute dispatches a cluster job for the current transform and store
// snapshot. With no usable width it only marks the state dirty; the first
// Resize picks it up.
func (c *Controller) recompute() tea.Cmd {
	c.state.Dirty = true
	if !c.state.Transform.Ready() || !(c.state.Width > 0) {
		return nil
	}

	snap := c.store.Snapshot()
	gap := c.state.Transform.Span(c.gapPx)
	lo, hi := c.state.Transform.Visible(c.state.Width)

	gen, ok := c.clusterSlot.Begin(fmt.Sprintf("v%d gap=%dms", snap.Version, gap))
	if !ok {
		c.emit(otel.Event{Kind: otel.KindClusterQueued, Version: snap.Version})
		return nil
	}
	c.emit(otel.Event{Kind: otel.KindClusterStart, Gen: gen, Version: snap.Version, Count: snap.Len()})

	return func() tea.Msg {
		start := time.Now()
		clusters := cluster.GroupWindow(snap.Events, gap, cluster.Window{Lo: lo, Hi: hi})
		return ClustersReady{Gen: gen, Snapshot: snap, Clusters: clusters, Took: time.Since(start)}
	}
}

func (c *Controller) emit(e otel.Event) {
	if c.trace == nil {
		return
	}
	if e.Comp == "" {
		e.Comp = "view"
	}
	if e.Level == "" {
		e.Level = otel.LevelInfo
	}
	c.trace.Emit(e)
}
