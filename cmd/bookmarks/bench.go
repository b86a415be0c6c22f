package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/bytedance/sonic"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/abelbrown/bookmarks/internal/bookmark"
	"github.com/abelbrown/bookmarks/internal/cluster"
	"github.com/abelbrown/bookmarks/internal/config"
	"github.com/abelbrown/bookmarks/internal/render"
	"github.com/abelbrown/bookmarks/internal/view"
	"github.com/abelbrown/bookmarks/internal/viewport"
)

// defaultBenchWidth is used when stdout is not a terminal.
const defaultBenchWidth = 1200

type benchOptions struct {
	count   int
	width   float64
	gapPx   float64
	svgPath string
	json    bool
}

// benchResult is one headless generate + cluster run.
type benchResult struct {
	Count      int     `json:"count"`
	Seed       uint64  `json:"seed,omitempty"`
	Version    uint64  `json:"version"`
	Width      float64 `json:"width_px"`
	GapPx      float64 `json:"gap_px"`
	GapMs      int64   `json:"gap_ms"`
	Clusters   int     `json:"clusters"`
	Singles    int     `json:"singles"`
	Largest    int     `json:"largest"`
	GenerateMs float64 `json:"generate_ms"`
	ClusterMs  float64 `json:"cluster_ms"`
}

func newBenchCmd(root *rootOptions) *cobra.Command {
	o := benchOptions{}
	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Generate and cluster without the UI",
		Long: `bench generates events, clusters the full day at the given width and
reports timings. With --svg the frame is also written as an SVG image.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _ := root.loadConfig(cmd)
			if !cmd.Flags().Changed("count") {
				o.count = cfg.Data.DefaultCount
			}
			if !cmd.Flags().Changed("gap-px") {
				o.gapPx = cfg.View.ClusterGapPx
			}
			if !cmd.Flags().Changed("width") {
				o.width = terminalWidth(cfg.UI.CellWidthPx)
			}

			res, st, err := runBench(cmd.Context(), cfg, o)
			if err != nil {
				return err
			}
			if o.svgPath != "" {
				if err := writeSVG(o.svgPath, st); err != nil {
					return err
				}
			}
			return printBench(cmd.OutOrStdout(), res, o.json)
		},
	}
	cmd.Flags().IntVarP(&o.count, "count", "n", 0, "Events to generate (default from config)")
	cmd.Flags().Float64Var(&o.width, "width", 0, "Viewport width in pixels (default terminal width)")
	cmd.Flags().Float64Var(&o.gapPx, "gap-px", 0, "Cluster gap in pixels (default from config)")
	cmd.Flags().StringVar(&o.svgPath, "svg", "", "Write the rendered frame to this SVG file")
	cmd.Flags().BoolVar(&o.json, "json", false, "Print the result as JSON")
	return cmd
}

// terminalWidth returns the terminal width in virtual pixels.
func terminalWidth(cellPx float64) float64 {
	if cols, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && cols > 0 {
		return float64(cols) * cellPx
	}
	return defaultBenchWidth
}

// runBench generates o.count events and clusters the initial view.
func runBench(ctx context.Context, cfg *config.Config, o benchOptions) (benchResult, view.State, error) {
	if !(o.width > 0) {
		return benchResult{}, view.State{}, fmt.Errorf("width must be positive, got %g", o.width)
	}
	count := min(max(o.count, 0), cfg.Data.MaxCount)

	store := bookmark.NewStore(storeOptions(cfg))
	start := time.Now()
	snap, err := store.Regenerate(ctx, count)
	if err != nil {
		return benchResult{}, view.State{}, fmt.Errorf("generate %d events: %w", count, err)
	}
	genTook := time.Since(start)

	t := viewport.New(cfg.Data.MaxTimestamp, cfg.View.ZoomFactor)
	t.Resize(0, o.width)
	gap := t.Span(o.gapPx)
	lo, hi := t.Visible(o.width)

	start = time.Now()
	clusters := cluster.GroupWindow(snap.Events, gap, cluster.Window{Lo: lo, Hi: hi})
	clusterTook := time.Since(start)

	res := benchResult{
		Count:      snap.Len(),
		Seed:       cfg.Data.Seed,
		Version:    snap.Version,
		Width:      o.width,
		GapPx:      o.gapPx,
		GapMs:      gap,
		Clusters:   len(clusters),
		GenerateMs: float64(genTook.Microseconds()) / 1000,
		ClusterMs:  float64(clusterTook.Microseconds()) / 1000,
	}
	for _, c := range clusters {
		if c.Single() {
			res.Singles++
		}
		res.Largest = max(res.Largest, c.Len())
	}

	st := view.State{Transform: t, Width: o.width, Clusters: clusters, Snapshot: snap}
	return res, st, nil
}

// writeSVG renders one frame of st to path.
func writeSVG(path string, st view.State) error {
	svg := render.NewSVG(st.Width, render.SVGLayout.Height())
	render.Frame(svg, render.SVGLayout, st)

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create svg: %w", err)
	}
	if _, err := svg.WriteTo(f); err != nil {
		f.Close()
		return fmt.Errorf("write svg %s: %w", path, err)
	}
	return f.Close()
}

func printBench(w io.Writer, res benchResult, asJSON bool) error {
	if asJSON {
		out, err := sonic.ConfigStd.MarshalIndent(res, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(w, "%s\n", out)
		return err
	}
	fmt.Fprintf(w, "events:    %s (v%d)\n", humanize.Comma(int64(res.Count)), res.Version)
	fmt.Fprintf(w, "generate:  %.1fms\n", res.GenerateMs)
	fmt.Fprintf(w, "gap:       %gpx = %s ms at width %gpx\n", res.GapPx, humanize.Comma(res.GapMs), res.Width)
	fmt.Fprintf(w, "clusters:  %s (%s single, largest %s)\n",
		humanize.Comma(int64(res.Clusters)), humanize.Comma(int64(res.Singles)), humanize.Comma(int64(res.Largest)))
	_, err := fmt.Fprintf(w, "cluster:   %.1fms\n", res.ClusterMs)
	return err
}
