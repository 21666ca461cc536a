package main

import (
	"context"
	"log/slog"
	"math/rand"
	"os"
	"os/signal"
	"time"

	"github.com/pthm-cable/framebench/config"
	"github.com/pthm-cable/framebench/harness"
	"github.com/pthm-cable/framebench/layout"
	"github.com/pthm-cable/framebench/renderer"
	"github.com/pthm-cable/framebench/scene"
)

// runHeadless drives the harness from a timer, drawing to a software raster.
// Input activity is synthesised from a seeded RNG. It returns when max ticks
// is reached or the process is interrupted, after pending exports finish.
func runHeadless(cfg *config.Config, sc *scene.Scene, run runOptions) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	w, h := cfg.Screen.Width, cfg.Screen.Height
	surface := renderer.NewRasterSurface(w, h, background)
	opts := harnessOptions(cfg, run)
	opts.Context = context.WithoutCancel(ctx)
	hs := harness.New(sc, surface, layout.NewViewport(float32(w), float32(h)), opts)
	defer hs.WaitExports()

	rng := rand.New(rand.NewSource(cfg.Headless.Seed))

	slog.Info("starting headless run",
		"shapes", sc.Len(),
		"frame_interval", cfg.Derived.FrameInterval,
		"activity_rate", cfg.Headless.ActivityRate,
		"max_ticks", run.maxTicks,
		"export_every", run.exportEvery,
	)

	var tick <-chan time.Time
	if cfg.Derived.FrameInterval > 0 {
		ticker := time.NewTicker(cfg.Derived.FrameInterval)
		defer ticker.Stop()
		tick = ticker.C
	}

	start := time.Now()
	for {
		if tick != nil {
			select {
			case <-ctx.Done():
				slog.Info("interrupted", "tick", hs.Ticks())
				return flush(hs)
			case <-tick:
			}
		} else if ctx.Err() != nil {
			slog.Info("interrupted", "tick", hs.Ticks())
			return flush(hs)
		}

		if rng.Float64() < cfg.Headless.ActivityRate {
			hs.MarkActivity()
		}
		hs.Tick(float64(time.Since(start)) / float64(time.Millisecond))

		if run.exportEvery > 0 && hs.Ticks()%run.exportEvery == 0 {
			hs.Export()
		}
		if run.maxTicks > 0 && hs.Ticks() >= run.maxTicks {
			slog.Info("max ticks reached", "tick", hs.Ticks(), "perf", hs.Perf())
			return flush(hs)
		}
	}
}

// flush exports whatever the current window holds once in-flight exports are done.
func flush(hs *harness.Harness) error {
	hs.WaitExports()
	if hs.Buffer().Len() == 0 {
		return nil
	}
	hs.Export()
	hs.WaitExports()
	if last := hs.LastExport(); last != nil && last.Err != nil {
		return last.Err
	}
	return nil
}
