package main

import (
	"flag"
	"image/color"
	"log/slog"
	"os"
	"path/filepath"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/framebench/config"
	"github.com/pthm-cable/framebench/harness"
	"github.com/pthm-cable/framebench/layout"
	"github.com/pthm-cable/framebench/renderer/rlsurface"
	"github.com/pthm-cable/framebench/scene"
	"github.com/pthm-cable/framebench/ui"
)

// Window background outside the artboard.
var background = color.RGBA{R: 10, G: 10, B: 14, A: 255}

// runOptions holds CLI overrides shared by both host loops.
type runOptions struct {
	maxTicks    int
	exportEvery int
	logStats    bool
}

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	headless := flag.Bool("headless", false, "Run without a window, drawing to a software raster")
	outputDir := flag.String("output-dir", "", "Directory for export bundles (empty = use config)")
	stress := flag.Int("stress", 0, "Draw calls timed per sample (0 = use config)")
	maxTicks := flag.Int("max-ticks", 0, "Stop after N ticks (0 = unlimited)")
	exportEvery := flag.Int("export-every", 0, "Trigger an export every N ticks (0 = manual only)")
	logStats := flag.Bool("log-stats", false, "Log rolling perf stats via slog")

	flag.Parse()

	// Initialize config before anything else
	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	// Set up slog (JSON to stdout for structured logging)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if *outputDir != "" {
		cfg.Harness.OutputDir = *outputDir
	}
	if *stress > 0 {
		cfg.Harness.StressDraws = *stress
	}

	if err := writeConfigSnapshot(cfg); err != nil {
		slog.Error("failed to write config snapshot", "error", err)
		os.Exit(1)
	}

	run := runOptions{
		maxTicks:    *maxTicks,
		exportEvery: *exportEvery,
		logStats:    *logStats,
	}

	sc := scene.New(scene.Config{
		Shapes: cfg.Scene.Shapes,
		Seed:   cfg.Scene.Seed,
		Width:  cfg.Scene.Width,
		Height: cfg.Scene.Height,
	})

	if *headless {
		if err := runHeadless(cfg, sc, run); err != nil {
			slog.Error("headless run failed", "error", err)
			os.Exit(1)
		}
		return
	}
	runWindow(cfg, sc, run)
}

// harnessOptions builds harness options from config and CLI overrides.
func harnessOptions(cfg *config.Config, run runOptions) harness.Options {
	opts := harness.Options{
		Fit:             cfg.Derived.Fit,
		Alignment:       cfg.Derived.Alignment,
		StressDraws:     cfg.Harness.StressDraws,
		InitialCapacity: cfg.Harness.InitialCapacity,
		PerfWindow:      cfg.Telemetry.PerfWindow,
		Sink:            harness.DirSink{Dir: cfg.Harness.OutputDir},
		BundlePrefix:    cfg.Harness.BundlePrefix,
	}
	if run.logStats {
		opts.LogInterval = cfg.Derived.LogInterval
	}
	return opts
}

// runWindow drives the harness from the raylib frame loop.
func runWindow(cfg *config.Config, sc *scene.Scene, run runOptions) {
	rl.SetConfigFlags(rl.FlagWindowResizable)
	rl.InitWindow(int32(cfg.Screen.Width), int32(cfg.Screen.Height), cfg.Screen.Title)
	defer rl.CloseWindow()

	rl.SetTargetFPS(int32(cfg.Screen.TargetFPS))

	surface := rlsurface.New(cfg.Screen.Width, cfg.Screen.Height, background)
	viewport := layout.NewViewport(float32(cfg.Screen.Width), float32(cfg.Screen.Height))
	h := harness.New(sc, surface, viewport, harnessOptions(cfg, run))
	defer h.WaitExports()

	hud := ui.NewHUD(10, 10, 320)

	slog.Info("starting window",
		"shapes", sc.Len(),
		"fit", cfg.Derived.Fit.String(),
		"stress_draws", h.StressDraws(),
		"output_dir", cfg.Harness.OutputDir,
	)

	for !rl.WindowShouldClose() {
		if rl.IsWindowResized() {
			h.Resize(int(rl.GetScreenWidth()), int(rl.GetScreenHeight()))
		}

		if delta := rl.GetMouseDelta(); delta.X != 0 || delta.Y != 0 {
			h.MarkActivity()
		}
		if rl.IsMouseButtonPressed(rl.MouseButtonLeft) && !hud.Contains(rl.GetMousePosition()) {
			h.Export()
		}
		if rl.IsKeyPressed(rl.KeyE) {
			h.Export()
		}
		if run.exportEvery > 0 && h.Ticks() > 0 && h.Ticks()%run.exportEvery == 0 {
			h.Export()
		}

		rl.BeginDrawing()
		h.Tick(rl.GetTime() * 1000)

		stress := hud.Draw(ui.HUDData{
			Title:       cfg.Screen.Title,
			FPS:         rl.GetFPS(),
			Ticks:       h.Ticks(),
			StressDraws: h.StressDraws(),
			Exporting:   h.Exporting(),
			Last:        h.LastExport(),
			Window:      h.Report(),
			Perf:        h.Perf(),
		})
		if stress != h.StressDraws() {
			h.SetStressDraws(stress)
		}
		hud.DrawControls(rl.GetScreenHeight(), "[Click] or [E] export | move mouse to tag frames")
		rl.EndDrawing()

		if run.maxTicks > 0 && h.Ticks() >= run.maxTicks {
			slog.Info("max ticks reached", "tick", h.Ticks())
			break
		}
	}
}

// writeConfigSnapshot records the effective config next to the bundles.
func writeConfigSnapshot(cfg *config.Config) error {
	if err := os.MkdirAll(cfg.Harness.OutputDir, 0755); err != nil {
		return err
	}
	return cfg.WriteYAML(filepath.Join(cfg.Harness.OutputDir, "config.yaml"))
}
