package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/abelbrown/bookmarks/internal/bookmark"
	"github.com/abelbrown/bookmarks/internal/config"
	"github.com/abelbrown/bookmarks/internal/logging"
	"github.com/abelbrown/bookmarks/internal/otel"
	"github.com/abelbrown/bookmarks/internal/ui"
	"github.com/abelbrown/bookmarks/internal/view"
)

type rootOptions struct {
	configPath string
	count      int
	seed       uint64
	debug      bool
	trace      bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:   "bookmarks [flags]",
		Short: "Zoomable timeline of bookmark events",
		Long: `bookmarks draws a 24-hour timeline of randomly generated bookmark events.
Events that are close together at the current zoom are merged into clusters.

Keys:
  g          generate a new set of events
  ←/→ h/l    pan          +/-   zoom
  0          fit the day  d     debug overlay
  q          quit

Mouse: wheel zooms at the pointer, drag pans, hover shows the events under it.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd, opts)
		},
	}

	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "",
		"Config file (default ~/.bookmarks/config.yaml)")
	cmd.PersistentFlags().BoolVar(&opts.debug, "debug", false,
		"Enable debug logging")
	cmd.Flags().IntVarP(&opts.count, "count", "n", 0,
		"Events to generate on start (default from config)")
	cmd.PersistentFlags().Uint64Var(&opts.seed, "seed", 0,
		"Random seed (0 = time-based)")
	cmd.Flags().BoolVar(&opts.trace, "trace", false,
		"Trace every UI message to the event log")

	cmd.AddCommand(newBenchCmd(opts), newEventsCmd(), newConfigCmd(opts))
	return cmd
}

// resolveConfigPath returns --config or the default location.
func (o *rootOptions) resolveConfigPath() string {
	if o.configPath != "" {
		return o.configPath
	}
	return config.ConfigPath()
}

// loadConfig loads the config and applies flag overrides. A malformed file
// is reported and replaced by defaults.
func (o *rootOptions) loadConfig(cmd *cobra.Command) (*config.Config, string) {
	path := o.resolveConfigPath()
	cfg, err := config.Load(path)
	if err != nil {
		logging.Warn("Using default config", "path", path, "error", err)
	}
	if f := cmd.Flags().Lookup("seed"); f != nil && f.Changed {
		cfg.Data.Seed = o.seed
	}
	return cfg, path
}

// eventLogPath returns the path of the JSONL trace log.
func eventLogPath() string {
	return filepath.Join(config.Dir(), "bookmarks.events.jsonl")
}

// openTrace opens the trace log for appending, falling back to a discarding
// logger when the file cannot be opened.
func openTrace() (*otel.Logger, func()) {
	path := eventLogPath()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		logging.Warn("Trace log disabled", "path", path, "error", err)
		return otel.NewNullLogger(), func() {}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		logging.Warn("Trace log disabled", "path", path, "error", err)
		return otel.NewNullLogger(), func() {}
	}
	return otel.NewLogger(f), func() { f.Close() }
}

func storeOptions(cfg *config.Config) bookmark.Options {
	return bookmark.Options{
		MaxTimestamp: cfg.Data.MaxTimestamp,
		MaxDuration:  cfg.Data.MaxDuration,
		Seed:         cfg.Data.Seed,
		Workers:      cfg.Data.Workers,
	}
}

func runTUI(cmd *cobra.Command, opts *rootOptions) error {
	if err := logging.Init("", opts.debug); err != nil {
		return err
	}
	defer logging.Close()
	if opts.trace {
		otel.SetTraceEnabled(true)
	}

	cfg, cfgPath := opts.loadConfig(cmd)
	count := cfg.Data.DefaultCount
	if cmd.Flags().Changed("count") {
		count = opts.count
	}

	// Trace events go to a JSONL file and the debug overlay's ring.
	trace, closeTrace := openTrace()
	defer closeTrace()
	ring := otel.NewRingBuffer(cfg.UI.TraceRingCap)
	trace.SetRingBuffer(ring)
	if opts.debug || otel.TraceEnabled() {
		trace.SetMinLevel(otel.LevelDebug)
	}
	defer trace.Close()

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	store := bookmark.NewStore(storeOptions(cfg))
	ctrl := view.NewController(ctx, store, cfg, trace)

	// Hot reload: the watcher needs the directory to exist.
	var updates <-chan *config.Config
	if err := os.MkdirAll(filepath.Dir(cfgPath), 0755); err == nil {
		if w, err := config.NewWatcher(cfgPath); err == nil {
			defer w.Close()
			updates = w.Updates()
		} else {
			logging.Warn("Config hot reload disabled", "path", cfgPath, "error", err)
			trace.Error(otel.KindConfigError, "main", err)
		}
	}

	app := ui.NewApp(ui.Options{
		Controller:    ctrl,
		Config:        cfg,
		Ring:          ring,
		Trace:         trace,
		ConfigUpdates: updates,
		InitialCount:  count,
	})

	logging.Info("Starting bookmarks", "version", logging.Version, "count", count, "config", cfgPath)
	trace.Info(otel.KindStartup, "main", fmt.Sprintf("count=%d session=%s", count, trace.SessionID()))

	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithMouseAllMotion(), tea.WithContext(ctx))
	_, err := p.Run()
	if err != nil {
		trace.Error(otel.KindError, "main", err)
		logging.Error("Program exited with error", "error", err)
	}
	trace.Info(otel.KindShutdown, "main", "")
	return err
}
