package ui

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/abelbrown/bookmarks/internal/render"
)

// terminalLayout gives ticks and labels one row each and the lane three
// (border, label, border). Labels keep one cell clear of the borders.
func terminalLayout(cellWidth float64) render.Layout {
	return render.Layout{TickLen: 1, LineHeight: 1, LaneHeight: 3, Padding: cellWidth}
}

type cell struct {
	r     rune // 0 on the second column of a wide rune
	style render.Style
	set   bool
}

// Canvas is a render.Surface over a grid of terminal cells. One column is
// cellWidth virtual pixels wide, so pixel-based tunables such as the
// cluster gap keep their meaning; one row is one y unit.
type Canvas struct {
	cols, rows int
	cellWidth  float64
	cells      []cell
	styles     map[render.Style]lipgloss.Style
}

// NewCanvas creates a blank canvas.
func NewCanvas(cols, rows int, cellWidth float64) *Canvas {
	cols, rows = max(cols, 0), max(rows, 0)
	if !(cellWidth > 0) {
		cellWidth = 1
	}
	return &Canvas{
		cols:      cols,
		rows:      rows,
		cellWidth: cellWidth,
		cells:     make([]cell, cols*rows),
		styles:    CanvasStyles,
	}
}

func (c *Canvas) col(x float64) int {
	return int(math.Floor(x / c.cellWidth))
}

func (c *Canvas) set(col, row int, r rune, style render.Style) {
	if col < 0 || col >= c.cols || row < 0 || row >= c.rows {
		return
	}
	c.cells[row*c.cols+col] = cell{r: r, style: style, set: true}
}

// At returns the rune at a cell, or ' ' if blank.
func (c *Canvas) At(col, row int) rune {
	if col < 0 || col >= c.cols || row < 0 || row >= c.rows {
		return ' '
	}
	if cl := c.cells[row*c.cols+col]; cl.set && cl.r != 0 {
		return cl.r
	}
	return ' '
}

// DrawLine draws a vertical or horizontal line; other slopes are drawn as
// their horizontal extent.
func (c *Canvas) DrawLine(x1, y1, x2, y2 float64, style render.Style) {
	c1, c2 := c.col(min(x1, x2)), c.col(max(x1, x2))
	if c1 == c2 {
		for row := int(math.Floor(min(y1, y2))); row < int(math.Ceil(max(y1, y2))); row++ {
			c.set(c1, row, '│', style)
		}
		return
	}
	row := int(math.Floor(y1))
	for col := max(c1, 0); col <= min(c2, c.cols-1); col++ {
		c.set(col, row, '─', style)
	}
}

// DrawRoundedRect draws a box. A box one column wide becomes a bar; a box
// under three rows tall is filled.
func (c *Canvas) DrawRoundedRect(x, y, w, h float64, style render.Style) {
	c0 := c.col(x)
	c1 := max(int(math.Ceil((x+w)/c.cellWidth))-1, c0)
	r0 := int(math.Floor(y))
	r1 := r0 + max(int(math.Round(h)), 1) - 1
	if c1 < 0 || c0 >= c.cols {
		return
	}

	switch {
	case c0 == c1:
		for row := r0; row <= r1; row++ {
			c.set(c0, row, '┃', style)
		}
	case r1-r0 < 2:
		for row := r0; row <= r1; row++ {
			for col := max(c0, 0); col <= min(c1, c.cols-1); col++ {
				c.set(col, row, '▆', style)
			}
		}
	default:
		for row := r0; row <= r1; row++ {
			for col := max(c0, 0); col <= min(c1, c.cols-1); col++ {
				c.set(col, row, boxRune(col, row, c0, c1, r0, r1), style)
			}
		}
	}
}

func boxRune(col, row, c0, c1, r0, r1 int) rune {
	top, bottom := row == r0, row == r1
	left, right := col == c0, col == c1
	switch {
	case top && left:
		return '╭'
	case top && right:
		return '╮'
	case bottom && left:
		return '╰'
	case bottom && right:
		return '╯'
	case top || bottom:
		return '─'
	case left || right:
		return '│'
	default:
		return ' '
	}
}

// DrawText writes text starting at the cell containing (x, y).
func (c *Canvas) DrawText(x, y float64, text string, style render.Style) {
	col, row := c.col(x), int(math.Floor(y))
	for _, r := range text {
		w := runewidth.RuneWidth(r)
		if w == 0 {
			continue
		}
		if col+w > c.cols {
			return
		}
		c.set(col, row, r, style)
		if w == 2 {
			c.set(col+1, row, 0, style)
		}
		col += w
	}
}

// TextWidth returns the width of text in virtual pixels.
func (c *Canvas) TextWidth(text string) float64 {
	return float64(runewidth.StringWidth(text)) * c.cellWidth
}

// Lines renders each row, styling runs of cells that share a style.
func (c *Canvas) Lines() []string {
	lines := make([]string, c.rows)
	for row := range lines {
		lines[row] = c.renderRow(c.cells[row*c.cols : (row+1)*c.cols])
	}
	return lines
}

// String renders the canvas as newline-separated rows.
func (c *Canvas) String() string {
	return strings.Join(c.Lines(), "\n")
}

func (c *Canvas) renderRow(cells []cell) string {
	var out, run strings.Builder
	var runStyle render.Style
	runSet := false

	flush := func() {
		if run.Len() == 0 {
			return
		}
		if st, ok := c.styles[runStyle]; ok && runSet {
			out.WriteString(st.Render(run.String()))
		} else {
			out.WriteString(run.String())
		}
		run.Reset()
	}

	for i := 0; i < len(cells); i++ {
		cl := cells[i]
		if cl.set != runSet || (cl.set && cl.style != runStyle) {
			flush()
			runSet, runStyle = cl.set, cl.style
		}
		switch {
		case !cl.set:
			run.WriteByte(' ')
		case cl.r == 0:
			// Second half of a wide rune whose first half was overdrawn.
			run.WriteByte(' ')
		case runewidth.RuneWidth(cl.r) == 2:
			if i+1 < len(cells) && cells[i+1].set && cells[i+1].r == 0 {
				run.WriteRune(cl.r)
				i++
			} else {
				run.WriteByte(' ')
			}
		default:
			run.WriteRune(cl.r)
		}
	}
	flush()
	return out.String()
}
