package harness

import (
	"log/slog"

	"github.com/pthm-cable/framebench/telemetry"
)

// Perf returns rolling-window draw and pacing stats, including the number of
// samples waiting for the next export.
func (h *Harness) Perf() telemetry.PerfStats {
	stats := h.perf.Stats()
	stats.Buffered = h.buffer.Len()
	return stats
}

// maybeLogPerf emits a perf line once per log interval of frame time.
func (h *Harness) maybeLogPerf(timestampMs float64) {
	if h.logInterval <= 0 {
		return
	}
	if timestampMs-h.lastLog < float64(h.logInterval.Milliseconds()) {
		return
	}
	h.lastLog = timestampMs
	h.logPerf()
}

func (h *Harness) logPerf() {
	slog.Info("perf",
		"tick", h.ticks,
		"stress_draws", h.stressDraws,
		"export_state", h.exporter.State().String(),
		"stats", h.Perf(),
		"window", h.Report(),
	)
}
