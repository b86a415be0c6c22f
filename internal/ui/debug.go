package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/abelbrown/bookmarks/internal/otel"
	"github.com/abelbrown/bookmarks/internal/work"
)

// debugPanelChrome is the number of terminal lines consumed by DebugPanel's
// border (top + bottom = 2) and vertical padding (top + bottom = 2).
// Must be updated if DebugPanel style changes.
const debugPanelChrome = 4

// debugOverlay renders the debug panel showing pipeline stats, finished jobs
// and recent trace events. Pure function with no side effects. Returns empty
// string if ring is nil.
func debugOverlay(ring *otel.RingBuffer, history *work.History, width, height int) string {
	if ring == nil {
		return ""
	}

	stats := ring.Stats()

	// --- Stats section (keyed lookups, not map iteration) ---
	var lines []string
	lines = append(lines, DebugHeaderStyle.Render("Pipeline Stats"))
	lines = append(lines, fmt.Sprintf("  Generate:   %d started, %d complete, %d errors",
		stats[otel.KindGenerateStart], stats[otel.KindGenerateComplete], stats[otel.KindGenerateError]))
	lines = append(lines, fmt.Sprintf("  Cluster:    %d started, %d complete, %d stale, %d queued",
		stats[otel.KindClusterStart], stats[otel.KindClusterComplete], stats[otel.KindClusterStale], stats[otel.KindClusterQueued]))
	lines = append(lines, fmt.Sprintf("  View:       %d pan, %d zoom, %d resize, %d settled",
		stats[otel.KindPan], stats[otel.KindZoom], stats[otel.KindResize], stats[otel.KindDebounceSettled]))
	lines = append(lines, fmt.Sprintf("  Buffer:     %d / %d events", ring.Len(), ring.Cap()))
	lines = append(lines, "")

	// --- Jobs section ---
	if history != nil && history.Len() > 0 {
		lines = append(lines, DebugHeaderStyle.Render("Jobs"))
		for _, j := range history.Last(6) {
			line := "  " + j.String()
			if d := j.Duration(); d > 0 {
				line += "  " + formatAge(d)
			}
			lines = append(lines, line)
		}
		lines = append(lines, "")
	}

	// --- Recent events section ---
	lines = append(lines, DebugHeaderStyle.Render("Recent Events"))
	for _, e := range ring.Last(20) {
		line := fmt.Sprintf("  %6s  %-18s", formatAge(time.Since(e.Time)), string(e.Kind))
		if e.Gen != 0 {
			line += fmt.Sprintf("  #%d", e.Gen)
		}
		if e.Count != 0 {
			line += fmt.Sprintf("  n=%d", e.Count)
		}
		if e.Dur > 0 {
			line += "  " + formatAge(e.Dur)
		}
		if e.Msg != "" {
			line += "  " + truncateRunes(e.Msg, 40)
		}
		if e.Err != "" {
			line += "  ERR:" + truncateRunes(e.Err, 30)
		}
		lines = append(lines, line)
	}

	// Truncate to fit terminal height (subtract chrome added by DebugPanel border/padding)
	maxHeight := max(height-debugPanelChrome, 1)
	if len(lines) > maxHeight {
		lines = lines[:maxHeight]
	}

	panelWidth := min(76, width-4)
	panelWidth = max(panelWidth, 20)

	return DebugPanel.Width(panelWidth).Render(strings.Join(lines, "\n"))
}

// formatAge formats a duration as a compact human string.
// Handles negative durations from clock skew by clamping to "0ms".
func formatAge(d time.Duration) string {
	if d < 0 {
		return "0ms"
	}
	switch {
	case d < time.Second:
		return fmt.Sprintf("%dms", d.Milliseconds())
	case d < time.Minute:
		return fmt.Sprintf("%.1fs", d.Seconds())
	default:
		return fmt.Sprintf("%.0fm", d.Minutes())
	}
}

// truncateRunes shortens s to at most n runes, marking the cut with "…".
func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 1 {
		return string(r[:max(n, 0)])
	}
	return string(r[:n-1]) + "…"
}

// debugStatusBar renders the status bar for the debug overlay.
func debugStatusBar(width int) string {
	keys := StatusBarKey.Render("d") + StatusBarText.Render(":close")
	return StatusBar.Width(width).Render("  [DEBUG]  " + keys)
}
