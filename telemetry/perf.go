package telemetry

import (
	"log/slog"
	"time"
)

// perfEntry holds timing data for a single tick.
type perfEntry struct {
	draw     time.Duration
	interval time.Duration
}

// PerfWindow tracks draw cost and frame pacing over a rolling window of ticks.
// It is a live diagnostic and is independent of the sample buffer: exporting
// never clears it.
type PerfWindow struct {
	windowSize  int
	entries     []perfEntry
	writeIndex  int
	sampleCount int
}

// NewPerfWindow creates a new rolling window.
// windowSize: number of ticks to average over (e.g., 120 for 2 seconds at 60fps).
func NewPerfWindow(windowSize int) *PerfWindow {
	if windowSize < 1 {
		windowSize = 60
	}
	return &PerfWindow{
		windowSize: windowSize,
		entries:    make([]perfEntry, windowSize),
	}
}

// Record adds one tick's draw duration and the interval since the previous tick.
func (p *PerfWindow) Record(draw, interval time.Duration) {
	p.entries[p.writeIndex] = perfEntry{draw: draw, interval: interval}
	p.writeIndex = (p.writeIndex + 1) % p.windowSize
	if p.sampleCount < p.windowSize {
		p.sampleCount++
	}
}

// PerfStats holds aggregated rolling-window statistics.
type PerfStats struct {
	Ticks   int
	AvgDraw time.Duration
	MinDraw time.Duration
	MaxDraw time.Duration

	// Frame pacing
	AvgInterval time.Duration
	FPS         float64

	// Samples waiting in the current reporting window
	Buffered int
}

// Stats computes aggregated statistics over the current window.
func (p *PerfWindow) Stats() PerfStats {
	if p.sampleCount == 0 {
		return PerfStats{}
	}

	var totalDraw, totalInterval time.Duration
	var minDraw, maxDraw time.Duration
	for i := 0; i < p.sampleCount; i++ {
		e := p.entries[i]
		totalDraw += e.draw
		totalInterval += e.interval

		if i == 0 || e.draw < minDraw {
			minDraw = e.draw
		}
		if e.draw > maxDraw {
			maxDraw = e.draw
		}
	}

	n := time.Duration(p.sampleCount)
	avgInterval := totalInterval / n

	var fps float64
	if avgInterval > 0 {
		fps = float64(time.Second) / float64(avgInterval)
	}

	return PerfStats{
		Ticks:       p.sampleCount,
		AvgDraw:     totalDraw / n,
		MinDraw:     minDraw,
		MaxDraw:     maxDraw,
		AvgInterval: avgInterval,
		FPS:         fps,
	}
}

// LogValue implements slog.LogValuer for structured logging.
func (s PerfStats) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.Int("ticks", s.Ticks),
		slog.Float64("avg_draw_ms", DurationMs(s.AvgDraw)),
		slog.Float64("min_draw_ms", DurationMs(s.MinDraw)),
		slog.Float64("max_draw_ms", DurationMs(s.MaxDraw)),
		slog.Int("buffered", s.Buffered),
	}
	if s.FPS > 0 {
		attrs = append(attrs, slog.Float64("fps", s.FPS))
	}
	return slog.GroupValue(attrs...)
}

// DurationMs converts a measured duration to the fractional milliseconds stored in samples.
func DurationMs(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
