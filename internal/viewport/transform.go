// Package viewport maps between timeline time (milliseconds) and horizontal
// pixels. A Transform is a plain value owned by the interactive goroutine.
package viewport

import (
	"math"
	"time"
)

// DefaultSpan is the time range fitted into the viewport on first layout.
const DefaultSpan = 24 * time.Hour

// DefaultZoomFactor is the scale multiplier applied per zoom step.
const DefaultZoomFactor = 1.1

// Zoom limits, as the time visible across the viewport: at most
// MaxZoomOut fitted spans and at least MinVisibleMs milliseconds.
const (
	MaxZoomOut   = 1000
	MinVisibleMs = 1
)

// Transform is the affine map pixel = t*scale + offset.
// The zero value is uninitialised; it becomes usable after the first Resize
// with a positive width.
type Transform struct {
	scale  float64 // pixels per millisecond
	offset float64 // pixels
	span   time.Duration
	factor float64
	width  float64 // last viewport width, for zoom limits
}

// New returns an uninitialised transform that will fit span on first resize.
// Non-positive arguments fall back to DefaultSpan and DefaultZoomFactor.
func New(span time.Duration, zoomFactor float64) Transform {
	t := Transform{}
	t.SetSpan(span)
	t.SetZoomFactor(zoomFactor)
	return t
}

// SetSpan changes the span used by the next (re)initialisation.
func (t *Transform) SetSpan(span time.Duration) {
	if span <= 0 {
		span = DefaultSpan
	}
	t.span = span
}

// SetZoomFactor changes the per-step zoom multiplier. Values <= 1 are ignored.
func (t *Transform) SetZoomFactor(f float64) {
	if !(f > 1) || math.IsInf(f, 0) {
		f = DefaultZoomFactor
	}
	t.factor = f
}

// ZoomFactor returns the per-step zoom multiplier.
func (t Transform) ZoomFactor() float64 {
	if t.factor == 0 {
		return DefaultZoomFactor
	}
	return t.factor
}

// Fitted returns the time range fitted into the viewport by Resize and Reset.
func (t Transform) Fitted() time.Duration {
	if t.span <= 0 {
		return DefaultSpan
	}
	return t.span
}

func (t Transform) spanMs() float64 {
	return float64(t.Fitted().Milliseconds())
}

// Ready reports whether the transform has seen a real viewport width.
func (t Transform) Ready() bool {
	return t.scale > 0
}

// Scale returns pixels per millisecond.
func (t Transform) Scale() float64 { return t.scale }

// Offset returns the pixel offset of t=0.
func (t Transform) Offset() float64 { return t.offset }

// PixelFor maps a timestamp in milliseconds to a pixel position.
func (t Transform) PixelFor(ms int64) float64 {
	return float64(ms)*t.scale + t.offset
}

// TimeFor maps a pixel position back to milliseconds.
// An uninitialised transform maps everything to 0.
func (t Transform) TimeFor(px float64) float64 {
	if !t.Ready() {
		return 0
	}
	return (px - t.offset) / t.scale
}

// Span converts an on-screen distance into a duration in milliseconds at the
// current scale. This is the clustering gap threshold.
func (t Transform) Span(px float64) int64 {
	if !t.Ready() {
		return 0
	}
	return saturate(math.Round(px / t.scale))
}

// Visible returns the time range mapped into [0, width).
func (t Transform) Visible(width float64) (lo, hi int64) {
	if !t.Ready() {
		return 0, 0
	}
	return saturate(math.Floor(t.TimeFor(0))), saturate(math.Ceil(t.TimeFor(width)))
}

// saturate converts ms to int64, clamping values beyond its range. Far pans
// can push times past it; a plain conversion would wrap to MinInt64.
func saturate(ms float64) int64 {
	switch {
	case math.IsNaN(ms):
		return 0
	case ms >= math.MaxInt64:
		return math.MaxInt64
	case ms <= math.MinInt64:
		return math.MinInt64
	}
	return int64(ms)
}

// Pan shifts the view by dx pixels. Panning is unbounded.
func (t *Transform) Pan(dx float64) {
	t.offset += dx
}

// Zoom scales by the zoom factor (in) or its inverse (out), keeping the time
// under anchor fixed.
func (t *Transform) Zoom(anchor float64, in bool) {
	f := t.ZoomFactor()
	if !in {
		f = 1 / f
	}
	t.ZoomBy(anchor, f)
}

// ZoomBy multiplies the scale by factor around anchor:
//
//	offset' = anchor - factor*(anchor-offset)
//	scale'  = factor*scale
//
// The factor is reduced so the visible time stays within the zoom limits.
func (t *Transform) ZoomBy(anchor, factor float64) {
	if !t.Ready() || !(factor > 0) || math.IsInf(factor, 0) {
		return
	}
	lo, hi := t.scaleLimits()
	factor = min(max(t.scale*factor, lo), hi) / t.scale
	if factor == 1 {
		return
	}
	t.offset = anchor - factor*(anchor-t.offset)
	t.scale *= factor
}

// scaleLimits returns the smallest and largest scale ZoomBy allows.
func (t Transform) scaleLimits() (lo, hi float64) {
	return t.width / (MaxZoomOut * t.spanMs()), t.width / MinVisibleMs
}

// Resize adapts the transform to a new viewport width. Without a previous
// width the span is fitted into newWidth; otherwise scale and offset are
// rescaled proportionally so the visible window is preserved.
func (t *Transform) Resize(oldWidth, newWidth float64) {
	if !(newWidth > 0) {
		return
	}
	t.width = newWidth
	if !(oldWidth > 0) || !t.Ready() {
		t.scale = newWidth / t.spanMs()
		t.offset = 0
		return
	}
	r := newWidth / oldWidth
	t.scale *= r
	t.offset *= r
}

// Reset refits the span into width.
func (t *Transform) Reset(width float64) {
	if !(width > 0) {
		return
	}
	t.width = width
	t.scale = width / t.spanMs()
	t.offset = 0
}
