package config

import (
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the persistent application configuration
type Config struct {
	// Synthetic data generation
	Data DataConfig `yaml:"data"`

	// Viewport and clustering tunables
	View ViewConfig `yaml:"view"`

	// Terminal presentation
	UI UIConfig `yaml:"ui"`
}

// DataConfig controls bookmark generation
type DataConfig struct {
	DefaultCount int           `yaml:"default_count"` // prompt default
	MaxCount     int           `yaml:"max_count"`     // prompt upper bound
	MaxTimestamp time.Duration `yaml:"max_timestamp"` // timestamps in [0, max)
	MaxDuration  time.Duration `yaml:"max_duration"`  // durations in [0, max)
	Seed         uint64        `yaml:"seed"`          // 0 = fresh seed per run
	Workers      int           `yaml:"workers"`       // 0 = GOMAXPROCS
}

// ViewConfig holds live viewport tunables. All of these can change on reload.
type ViewConfig struct {
	ClusterGapPx float64       `yaml:"cluster_gap_px"`
	ZoomFactor   float64       `yaml:"zoom_factor"`
	PanStepPx    float64       `yaml:"pan_step_px"` // keyboard pan
	Debounce     time.Duration `yaml:"debounce"`
	TooltipRows  int           `yaml:"tooltip_rows"`
}

// UIConfig holds terminal preferences
type UIConfig struct {
	CellWidthPx  float64 `yaml:"cell_width_px"` // virtual pixels per terminal column
	ShowDebug    bool    `yaml:"show_debug"`
	HistorySize  int     `yaml:"history_size"` // finished jobs kept for the debug overlay
	TraceRingCap int     `yaml:"trace_ring_cap"`
}

// Limits applied by Validate.
const (
	DefaultCount    = 50_000_000
	MaxCount        = 100_000_000
	DefaultGapPx    = 100
	DefaultZoom     = 1.1
	DefaultPanStep  = 80
	DefaultDebounce = 500 * time.Millisecond
	DefaultRows     = 15
	DefaultCellPx   = 8
)

// DefaultConfig returns sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Data: DataConfig{
			DefaultCount: DefaultCount,
			MaxCount:     MaxCount,
			MaxTimestamp: 24 * time.Hour,
			MaxDuration:  3 * time.Hour,
		},
		View: ViewConfig{
			ClusterGapPx: DefaultGapPx,
			ZoomFactor:   DefaultZoom,
			PanStepPx:    DefaultPanStep,
			Debounce:     DefaultDebounce,
			TooltipRows:  DefaultRows,
		},
		UI: UIConfig{
			CellWidthPx:  DefaultCellPx,
			HistorySize:  64,
			TraceRingCap: 1024,
		},
	}
}

// Dir returns the application directory (~/.bookmarks).
func Dir() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".bookmarks")
}

// ConfigPath returns the path to the config file
func ConfigPath() string {
	return filepath.Join(Dir(), "config.yaml")
}

// Load reads config from path (ConfigPath if empty). A missing file yields
// defaults. A malformed file yields defaults and the parse error so the
// caller can surface it. The result is always validated.
func Load(path string) (*Config, error) {
	if path == "" {
		path = ConfigPath()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return DefaultConfig(), nil
		}
		return DefaultConfig(), fmt.Errorf("read config: %w", err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return DefaultConfig(), fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML on top of the defaults, so omitted keys keep their
// default values.
func Parse(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	cfg.Validate()
	return cfg, nil
}

// Save writes config to path (ConfigPath if empty)
func (c *Config) Save(path string) error {
	if path == "" {
		path = ConfigPath()
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}

	return os.WriteFile(path, data, 0644)
}

// Validate replaces out-of-range values with defaults or clamps them.
// It never fails: a bad config degrades to a working one.
func (c *Config) Validate() {
	d := DefaultConfig()

	if c.Data.MaxCount <= 0 || c.Data.MaxCount > MaxCount {
		c.Data.MaxCount = MaxCount
	}
	c.Data.DefaultCount = min(max(c.Data.DefaultCount, 0), c.Data.MaxCount)
	if c.Data.MaxTimestamp <= 0 {
		c.Data.MaxTimestamp = d.Data.MaxTimestamp
	}
	if c.Data.MaxDuration <= 0 {
		c.Data.MaxDuration = d.Data.MaxDuration
	}
	c.Data.Workers = max(c.Data.Workers, 0)

	if !positive(c.View.ClusterGapPx) {
		c.View.ClusterGapPx = d.View.ClusterGapPx
	}
	if !(c.View.ZoomFactor > 1) || math.IsInf(c.View.ZoomFactor, 0) {
		c.View.ZoomFactor = d.View.ZoomFactor
	}
	if !positive(c.View.PanStepPx) {
		c.View.PanStepPx = d.View.PanStepPx
	}
	if c.View.Debounce <= 0 {
		c.View.Debounce = d.View.Debounce
	}
	if c.View.TooltipRows <= 0 {
		c.View.TooltipRows = d.View.TooltipRows
	}

	if !positive(c.UI.CellWidthPx) {
		c.UI.CellWidthPx = d.UI.CellWidthPx
	}
	if c.UI.HistorySize <= 0 {
		c.UI.HistorySize = d.UI.HistorySize
	}
	if c.UI.TraceRingCap <= 0 {
		c.UI.TraceRingCap = d.UI.TraceRingCap
	}
}

func positive(f float64) bool {
	return f > 0 && !math.IsInf(f, 0)
}
