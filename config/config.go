// Package config provides configuration loading and access for the harness.
package config

import (
	_ "embed"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/pthm-cable/framebench/layout"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all harness configuration parameters.
type Config struct {
	Screen    ScreenConfig    `yaml:"screen"`
	Layout    LayoutConfig    `yaml:"layout"`
	Harness   HarnessConfig   `yaml:"harness"`
	Scene     SceneConfig     `yaml:"scene"`
	Headless  HeadlessConfig  `yaml:"headless"`
	Telemetry TelemetryConfig `yaml:"telemetry"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ScreenConfig holds window settings.
type ScreenConfig struct {
	Width     int    `yaml:"width"`
	Height    int    `yaml:"height"`
	TargetFPS int    `yaml:"target_fps"`
	Title     string `yaml:"title"`
}

// LayoutConfig selects how the artboard is fitted into the window.
type LayoutConfig struct {
	Fit       string `yaml:"fit"`       // contain, cover, fill, fitWidth, fitHeight, none, scaleDown
	Alignment string `yaml:"alignment"` // center, topLeft, ..., bottomRight
}

// HarnessConfig holds frame-loop and export parameters.
type HarnessConfig struct {
	StressDraws     int    `yaml:"stress_draws"`     // draw calls per timed sample (1 = normal)
	OutputDir       string `yaml:"output_dir"`       // where export bundles are written
	BundlePrefix    string `yaml:"bundle_prefix"`    // bundle file name prefix
	InitialCapacity int    `yaml:"initial_capacity"` // sample buffer sizing hint
}

// SceneConfig holds parameters for the procedural animation.
type SceneConfig struct {
	Shapes int     `yaml:"shapes"`
	Seed   int64   `yaml:"seed"`
	Width  float32 `yaml:"width"`  // artboard width
	Height float32 `yaml:"height"` // artboard height
}

// HeadlessConfig holds parameters for runs without a window.
type HeadlessConfig struct {
	FrameIntervalMs float64 `yaml:"frame_interval_ms"` // simulated display refresh interval
	ActivityRate    float64 `yaml:"activity_rate"`     // probability a frame sees input activity
	Seed            int64   `yaml:"seed"`
}

// TelemetryConfig holds live perf logging parameters.
type TelemetryConfig struct {
	LogInterval float64 `yaml:"log_interval"` // seconds between perf log lines (0 = off)
	PerfWindow  int     `yaml:"perf_window"`  // ticks in the rolling perf window
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	Fit           layout.Fit
	Alignment     layout.Alignment
	FrameInterval time.Duration
	LogInterval   time.Duration
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.computeDerived(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// computeDerived validates the loaded config and fills Derived.
func (c *Config) computeDerived() error {
	fit, err := layout.ParseFit(c.Layout.Fit)
	if err != nil {
		return fmt.Errorf("layout.fit: %w", err)
	}
	alignment, err := layout.ParseAlignment(c.Layout.Alignment)
	if err != nil {
		return fmt.Errorf("layout.alignment: %w", err)
	}
	c.Derived.Fit = fit
	c.Derived.Alignment = alignment

	if c.Harness.StressDraws < 1 {
		c.Harness.StressDraws = 1
	}
	if c.Scene.Width <= 0 || c.Scene.Height <= 0 {
		return fmt.Errorf("scene: artboard size must be positive, got %gx%g", c.Scene.Width, c.Scene.Height)
	}
	if c.Headless.ActivityRate < 0 || c.Headless.ActivityRate > 1 {
		return fmt.Errorf("headless.activity_rate must be in [0, 1], got %g", c.Headless.ActivityRate)
	}

	c.Derived.FrameInterval = time.Duration(c.Headless.FrameIntervalMs * float64(time.Millisecond))
	c.Derived.LogInterval = time.Duration(c.Telemetry.LogInterval * float64(time.Second))
	return nil
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
