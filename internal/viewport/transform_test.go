package viewport

import (
	"math"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ready(t *testing.T, width float64) Transform {
	t.Helper()
	tr := New(DefaultSpan, DefaultZoomFactor)
	tr.Resize(0, width)
	require.True(t, tr.Ready())
	return tr
}

func tolerance(v float64) float64 {
	return 1e-6 * math.Max(1, math.Abs(v))
}

func TestResizeFromUninitialised(t *testing.T) {
	tr := New(DefaultSpan, DefaultZoomFactor)
	assert.False(t, tr.Ready())

	tr.Resize(0, 800)

	assert.InDelta(t, 800.0/86_400_000.0, tr.Scale(), 1e-18)
	assert.Equal(t, 0.0, tr.Offset())
	assert.InDelta(t, 800.0, tr.PixelFor(86_400_000), 1e-9)
}

func TestResizeZeroWidthDefersInit(t *testing.T) {
	tr := New(DefaultSpan, DefaultZoomFactor)
	tr.Resize(0, 0)
	assert.False(t, tr.Ready())
	assert.Equal(t, 0.0, tr.TimeFor(123))
	assert.Equal(t, int64(0), tr.Span(100))

	lo, hi := tr.Visible(100)
	assert.Zero(t, lo)
	assert.Zero(t, hi)
}

func TestResizePreservesVisibleWindow(t *testing.T) {
	tr := ready(t, 800)
	tr.Pan(-250)
	tr.ZoomBy(400, 3)
	lo, hi := tr.Visible(800)

	tr.Resize(800, 1200)

	lo2, hi2 := tr.Visible(1200)
	assert.InDelta(t, float64(lo), float64(lo2), 1)
	assert.InDelta(t, float64(hi), float64(hi2), 1)
}

func TestInverseLaw(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	for i := 0; i < 1000; i++ {
		tr := ready(t, 100+rng.Float64()*3000)
		tr.Pan(rng.Float64()*10000 - 5000)
		tr.ZoomBy(rng.Float64()*1000, 0.01+rng.Float64()*50)

		ms := rng.Int64N(86_400_000)
		assert.InDelta(t, float64(ms), tr.TimeFor(tr.PixelFor(ms)), tolerance(float64(ms)))

		px := rng.Float64()*4000 - 2000
		assert.InDelta(t, px, tr.PixelFor(int64(math.Round(tr.TimeFor(px)))), 1)
	}
}

func TestZoomKeepsAnchor(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 7))
	for i := 0; i < 1000; i++ {
		tr := ready(t, 1600)
		tr.Pan(rng.Float64()*4000 - 2000)
		anchor := rng.Float64() * 1600
		factor := 0.1 + rng.Float64()*10

		before := tr.TimeFor(anchor)
		scale := tr.Scale()
		tr.ZoomBy(anchor, factor)

		assert.InDelta(t, before, tr.TimeFor(anchor), tolerance(before))
		assert.InDelta(t, scale*factor, tr.Scale(), tolerance(scale*factor)*1e-6)
	}
}

func TestZoomDirection(t *testing.T) {
	tr := ready(t, 1000)
	scale := tr.Scale()

	tr.Zoom(500, true)
	assert.InDelta(t, scale*DefaultZoomFactor, tr.Scale(), 1e-15)

	tr.Zoom(500, false)
	assert.InDelta(t, scale, tr.Scale(), 1e-15)
}

func TestZoomIgnoresBadFactors(t *testing.T) {
	tr := ready(t, 1000)
	scale, offset := tr.Scale(), tr.Offset()

	for _, f := range []float64{0, -2, math.NaN(), math.Inf(1)} {
		tr.ZoomBy(10, f)
	}
	assert.Equal(t, scale, tr.Scale())
	assert.Equal(t, offset, tr.Offset())

	var zero Transform
	zero.ZoomBy(10, 2)
	assert.False(t, zero.Ready())
}

func TestPanIsUnbounded(t *testing.T) {
	tr := ready(t, 1000)
	tr.Pan(1e9)
	assert.Equal(t, 1e9, tr.Offset())
	tr.Pan(-2e9)
	assert.Equal(t, -1e9, tr.Offset())
}

func TestSpanAdaptsToZoom(t *testing.T) {
	tr := ready(t, 864) // 100px == 10_000_000ms
	assert.Equal(t, int64(10_000_000), tr.Span(100))

	tr.ZoomBy(0, 10)
	assert.Equal(t, int64(1_000_000), tr.Span(100))
}

func TestCustomSpanAndFactor(t *testing.T) {
	tr := New(time.Hour, 2)
	tr.Resize(0, 3600)
	assert.InDelta(t, 0.001, tr.Scale(), 1e-15)
	assert.Equal(t, 2.0, tr.ZoomFactor())

	tr.SetZoomFactor(0.5)
	assert.Equal(t, DefaultZoomFactor, tr.ZoomFactor())
}

func TestLaneContains(t *testing.T) {
	lane := Lane{Top: 36, Bottom: 56}
	assert.False(t, lane.Contains(35.9))
	assert.True(t, lane.Contains(36))
	assert.True(t, lane.Contains(55.9))
	assert.False(t, lane.Contains(56))
	assert.Equal(t, 20.0, lane.Height())
}

func TestZoomOutStopsAtLimit(t *testing.T) {
	tr := ready(t, 800)
	for i := 0; i < 400; i++ {
		tr.Zoom(400, false)
	}
	lo, hi := tr.Visible(800)
	assert.InDelta(t, float64(MaxZoomOut)*86_400_000, float64(hi-lo), 2)
	assert.Less(t, lo, int64(0))
	assert.Greater(t, hi, int64(86_400_000))
	assert.Greater(t, tr.Span(8), int64(0))
	assert.InDelta(t, 86_400_000/2, tr.TimeFor(400), 1, "anchor still fixed")

	// Zooming back in is not blocked.
	tr.Zoom(400, true)
	lo, hi = tr.Visible(800)
	assert.Less(t, float64(hi-lo), float64(MaxZoomOut)*86_400_000-1000)
}

func TestZoomInStopsAtLimit(t *testing.T) {
	tr := ready(t, 1000)
	tr.ZoomBy(0, 1e12)
	assert.InDelta(t, 1000.0/MinVisibleMs, tr.Scale(), 1e-9)
	assert.Equal(t, int64(1), tr.Span(1000))
}

func TestFarPanSaturates(t *testing.T) {
	tr := ready(t, 800)
	tr.Pan(-1e30)
	lo, hi := tr.Visible(800)
	assert.Equal(t, int64(math.MaxInt64), lo)
	assert.Equal(t, int64(math.MaxInt64), hi)

	tr.Pan(2e30)
	lo, hi = tr.Visible(800)
	assert.Equal(t, int64(math.MinInt64), lo)
	assert.Equal(t, int64(math.MinInt64), hi)
	assert.Equal(t, int64(10_800_000), tr.Span(100), "gap does not depend on the pan")
}
