package main

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/abelbrown/bookmarks/internal/otel"
)

// followPoll is how often follow mode checks the log for new lines.
const followPoll = 100 * time.Millisecond

// eventLine is a decoded trace event plus the line it came from.
type eventLine struct {
	ev  otel.Event
	raw []byte
}

// decodeEvent parses one JSONL line. Blank and malformed lines are skipped.
func decodeEvent(raw []byte) (otel.Event, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return otel.Event{}, false
	}
	var ev otel.Event
	if err := sonic.Unmarshal(raw, &ev); err != nil {
		return otel.Event{}, false
	}
	return ev, true
}

type eventFilter struct {
	kind    string
	level   string
	comp    string
	session string
	gen     uint64
}

func (f eventFilter) match(ev otel.Event) bool {
	switch {
	case f.kind != "" && !strings.HasPrefix(string(ev.Kind), f.kind):
	case f.level != "" && !ev.Level.AtLeast(otel.Level(f.level)):
	case f.comp != "" && ev.Comp != f.comp:
	case f.session != "" && !strings.HasPrefix(ev.SessionID, f.session):
	case f.gen != 0 && ev.Gen != f.gen:
	default:
		return true
	}
	return false
}

func newEventsCmd() *cobra.Command {
	var (
		filter eventFilter
		tail   int
		follow bool
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "events",
		Short: "Print the trace event log",
		Example: `  bookmarks events --tail 20
  bookmarks events --kind cluster -f
  bookmarks events --level warn --json`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := eventLogPath()
			f, err := os.Open(path)
			if errors.Is(err, os.ErrNotExist) {
				return fmt.Errorf("no trace log at %s; run bookmarks once to create it", path)
			}
			if err != nil {
				return err
			}
			defer f.Close()

			out := cmd.OutOrStdout()
			show := func(l eventLine) {
				if asJSON {
					fmt.Fprintf(out, "%s\n", l.raw)
				} else {
					fmt.Fprintln(out, formatEvent(l.ev))
				}
			}
			for _, l := range tailEvents(f, tail, filter.match) {
				show(l)
			}
			if follow {
				return followEvents(cmd.Context(), f, filter.match, show)
			}
			return nil
		},
	}
	fl := cmd.Flags()
	fl.IntVar(&tail, "tail", 50, "how many matching events to print")
	fl.BoolVarP(&follow, "follow", "f", false, "keep printing events as they are appended")
	fl.StringVar(&filter.kind, "kind", "", "only kinds with this prefix, e.g. cluster")
	fl.StringVar(&filter.level, "level", "", "minimum level: debug, info, warn or error")
	fl.StringVar(&filter.comp, "comp", "", "only this component (view, ui, main)")
	fl.StringVar(&filter.session, "session", "", "only sessions with this ID prefix")
	fl.Uint64Var(&filter.gen, "gen", 0, "only this job generation")
	fl.BoolVar(&asJSON, "json", false, "print the raw JSONL lines")
	return cmd
}

// formatEvent renders one event on a line:
//
//	10:00:01.000 INFO  [view] gen.complete       #1 (12.5ms) n=1,000 v1
func formatEvent(ev otel.Event) string {
	lvl := strings.ToUpper(string(ev.Level))
	if lvl == "" {
		lvl = "?"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s %-5s [%-4s] %-18s", ev.Time.Format("15:04:05.000"), lvl, ev.Comp, ev.Kind)
	if ev.Gen != 0 {
		fmt.Fprintf(&b, " #%d", ev.Gen)
	}
	if ev.Msg != "" {
		b.WriteString(" - " + ev.Msg)
	}
	if ev.DurMs > 0 {
		b.WriteString(" (" + formatMs(ev.DurMs) + "ms)")
	}
	if ev.Count > 0 {
		b.WriteString(" n=" + humanize.Comma(int64(ev.Count)))
	}
	if ev.Version > 0 {
		fmt.Fprintf(&b, " v%d", ev.Version)
	}
	if ev.Err != "" {
		b.WriteString(" err=" + ev.Err)
	}
	return b.String()
}

// formatMs keeps about three significant digits for sub-second durations.
func formatMs(ms float64) string {
	prec := 2
	switch {
	case ms >= 100:
		prec = 0
	case ms >= 1:
		prec = 1
	}
	return strconv.FormatFloat(ms, 'f', prec, 64)
}

// tailEvents returns the last n events in r accepted by match, oldest first.
func tailEvents(r io.Reader, n int, match func(otel.Event) bool) []eventLine {
	if n <= 0 {
		return nil
	}
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)

	keep := make([]eventLine, n)
	seen := 0
	for sc.Scan() {
		ev, ok := decodeEvent(sc.Bytes())
		if !ok || !match(ev) {
			continue
		}
		keep[seen%n] = eventLine{ev: ev, raw: bytes.Clone(bytes.TrimSpace(sc.Bytes()))}
		seen++
	}
	if seen <= n {
		return keep[:seen]
	}
	start := seen % n
	return append(keep[start:], keep[:start]...)
}

// followEvents reads lines appended to r until ctx is done. A line without
// its newline yet is held back until the rest arrives.
func followEvents(ctx context.Context, r io.Reader, match func(otel.Event) bool, emit func(eventLine)) error {
	br := bufio.NewReader(r)
	var held []byte
	for {
		chunk, err := br.ReadBytes('\n')
		held = append(held, chunk...)
		switch {
		case errors.Is(err, io.EOF):
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(followPoll):
			}
			continue
		case err != nil:
			return err
		}

		line := bytes.TrimSpace(held)
		held = nil
		if ev, ok := decodeEvent(line); ok && match(ev) {
			emit(eventLine{ev: ev, raw: line})
		}
	}
}
