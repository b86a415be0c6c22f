// Package render draws the timeline onto an abstract Surface.
//
// Coordinates: x is in virtual pixels, the unit the viewport transform maps
// time into; y is in surface units (terminal rows, SVG pixels). A Layout
// describes the vertical arrangement for a given surface.
//
//	y=0        ┬  ┬  ┬        hour ticks (TickLen)
//	           0h 1h 2h       labels (LineHeight)
//	Lane.Top   ╭──╮ ╭─────╮
//	           │3 │ │B 17 │   clusters (LaneHeight)
//	Lane.Bottom╰──╯ ╰─────╯
package render

import "github.com/abelbrown/bookmarks/internal/viewport"

// Style identifies the role of a primitive; surfaces map it to colors.
type Style int

const (
	StyleTick Style = iota
	StyleTickLabel
	StyleSingle // one-member cluster
	StyleGroup  // multi-member cluster
	StyleClusterLabel
)

func (s Style) String() string {
	switch s {
	case StyleTick:
		return "tick"
	case StyleTickLabel:
		return "tick-label"
	case StyleSingle:
		return "single"
	case StyleGroup:
		return "group"
	case StyleClusterLabel:
		return "cluster-label"
	default:
		return "unknown"
	}
}

// Surface is the drawing collaborator. Implementations clip to their own
// bounds; callers may pass coordinates outside them.
type Surface interface {
	DrawLine(x1, y1, x2, y2 float64, style Style)
	DrawRoundedRect(x, y, w, h float64, style Style)
	// DrawText draws text with its top-left corner at (x, y).
	DrawText(x, y float64, text string, style Style)
	// TextWidth returns the width of text in virtual pixels.
	TextWidth(text string) float64
}

// Layout is the vertical arrangement of a frame.
type Layout struct {
	TickLen    float64
	LineHeight float64
	LaneHeight float64
	Padding    float64 // horizontal label inset inside a cluster, in pixels
}

// Lane returns the cluster band.
func (l Layout) Lane() viewport.Lane {
	top := l.TickLen + l.LineHeight
	return viewport.Lane{Top: top, Bottom: top + l.LaneHeight}
}

// Height returns the total frame height.
func (l Layout) Height() float64 {
	return l.Lane().Bottom
}
