package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"
)

// SVGLayout matches a 16px font with 20px ticks and lane.
var SVGLayout = Layout{TickLen: 20, LineHeight: 16, LaneHeight: 20, Padding: 3}

// SVGColors maps styles to fill/stroke colors.
var SVGColors = map[Style]string{
	StyleTick:         "rgb(127,0,127)",
	StyleTickLabel:    "rgb(127,0,127)",
	StyleSingle:       "#7d56f4",
	StyleGroup:        "#f25d94",
	StyleClusterLabel: "#1a1a1a",
}

var xmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&apos;",
)

// SVG is a Surface that accumulates an SVG document.
type SVG struct {
	width, height float64
	fontSize      float64
	fontFamily    string
	body          strings.Builder
}

// NewSVG creates an empty SVG surface of the given size.
func NewSVG(width, height float64) *SVG {
	return &SVG{width: width, height: height, fontSize: SVGLayout.LineHeight, fontFamily: "monospace"}
}

func (s *SVG) DrawLine(x1, y1, x2, y2 float64, style Style) {
	fmt.Fprintf(&s.body, `<line x1="%.2f" y1="%.2f" x2="%.2f" y2="%.2f" stroke="%s" stroke-width="1"/>`+"\n",
		x1, y1, x2, y2, SVGColors[style])
}

func (s *SVG) DrawRoundedRect(x, y, w, h float64, style Style) {
	fmt.Fprintf(&s.body, `<rect class="%s" x="%.2f" y="%.2f" width="%.2f" height="%.2f" rx="1" ry="1" fill="%s" fill-opacity="0.35" stroke="%s"/>`+"\n",
		style, x, y, max(w, 0), h, SVGColors[style], SVGColors[style])
}

// DrawText places the baseline at 80% of the font size below y.
func (s *SVG) DrawText(x, y float64, text string, style Style) {
	fmt.Fprintf(&s.body, `<text class="%s" x="%.2f" y="%.2f" font-family="%s" font-size="%.0f" fill="%s">%s</text>`+"\n",
		style, x, y+s.fontSize*0.8, s.fontFamily, s.fontSize, SVGColors[style], xmlEscaper.Replace(text))
}

// TextWidth estimates rendered width: average character width is about
// 0.6 * font size per terminal column.
func (s *SVG) TextWidth(text string) float64 {
	return float64(runewidth.StringWidth(text)) * s.fontSize * 0.6
}

// String returns the complete document.
func (s *SVG) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, `<?xml version="1.0" encoding="UTF-8"?>
<svg width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f" xmlns="http://www.w3.org/2000/svg">
<rect width="100%%" height="100%%" fill="white"/>
`, s.width, s.height, s.width, s.height)
	b.WriteString(s.body.String())
	b.WriteString("</svg>\n")
	return b.String()
}

// WriteTo writes the document to w.
func (s *SVG) WriteTo(w io.Writer) (int64, error) {
	n, err := io.WriteString(w, s.String())
	return int64(n), err
}
