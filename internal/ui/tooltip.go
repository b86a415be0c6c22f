package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// overlayAt paints fg over bg starting at column x, row y. bg lines may
// contain ANSI sequences; cells outside fg are preserved.
func overlayAt(bg []string, fg []string, w, x, y, fgW int) {
	if fgW <= 0 {
		return
	}
	x, y = max(x, 0), max(y, 0)
	for i := 0; i < len(fg) && y+i < len(bg); i++ {
		line := bg[y+i]
		if n := ansi.StringWidth(line); n < x {
			line += strings.Repeat(" ", x-n)
		}
		left := ansi.Cut(line, 0, x)
		right := ansi.Cut(line, x+fgW, w)

		fgLine := fg[i]
		if n := ansi.StringWidth(fgLine); n < fgW {
			fgLine += strings.Repeat(" ", fgW-n)
		} else if n > fgW {
			fgLine = ansi.Cut(fgLine, 0, fgW)
		}
		bg[y+i] = left + fgLine + right
	}
}

// placeTooltip renders text in a box next to the pointer at (px, py),
// flipping left or up when it would leave the screen.
func placeTooltip(screen []string, width, height, px, py int, text string) {
	box := TooltipBox.Render(text)
	lines := strings.Split(box, "\n")
	bw, bh := lipgloss.Width(box), len(lines)

	x := px + 2
	if x+bw > width {
		x = px - bw - 1
	}
	y := py + 1
	if y+bh > height {
		y = py - bh
	}
	overlayAt(screen, lines, width, max(x, 0), max(y, 0), min(bw, width))
}
