package viewport

// Lane is the horizontal band clusters are drawn in, in surface units
// (terminal rows, SVG pixels). Top is inclusive, Bottom exclusive.
type Lane struct {
	Top    float64
	Bottom float64
}

// Contains reports whether y falls inside the lane.
func (l Lane) Contains(y float64) bool {
	return y >= l.Top && y < l.Bottom
}

// Height returns the lane height.
func (l Lane) Height() float64 {
	return l.Bottom - l.Top
}
