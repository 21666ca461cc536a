// Package harness drives the measured frame loop: each tick advances an
// animation, times its draw, and records a sample tagged with the input
// activity seen since the previous tick. Exports snapshot the recorded
// samples into a bundle without pausing the loop.
package harness

import (
	"context"
	"time"

	"github.com/pthm-cable/framebench/layout"
	"github.com/pthm-cable/framebench/renderer"
	"github.com/pthm-cable/framebench/telemetry"
)

// Animation is the advance-and-draw capability the harness measures.
type Animation interface {
	// Advance steps the animation state by elapsedSec seconds.
	Advance(elapsedSec float64)
	// Draw renders one frame to the surface in content coordinates.
	Draw(s renderer.Surface)
	// Bounds returns the content rectangle used for fit and alignment.
	Bounds() layout.Rect
}

// Options configures a Harness.
type Options struct {
	Fit       layout.Fit
	Alignment layout.Alignment

	// StressDraws is the number of draw calls timed as one sample (min 1).
	StressDraws int
	// InitialCapacity sizes the sample buffer.
	InitialCapacity int
	// PerfWindow is the number of ticks in the rolling perf window.
	PerfWindow int

	Sink         Sink
	BundlePrefix string

	// Now is the clock used to time draws. Defaults to time.Now.
	Now func() time.Time
	// Context is passed to export packaging. Defaults to context.Background().
	Context context.Context

	// LogInterval is the spacing of perf log lines (0 = off).
	LogInterval time.Duration
}

// Harness owns the scheduler state, the sample buffer, the activity flag and
// the exporter for one animation. Tick, MarkActivity, Export and Resize must
// be called from the same goroutine.
type Harness struct {
	anim     Animation
	surface  renderer.Surface
	viewport *layout.Viewport

	fit         layout.Fit
	alignment   layout.Alignment
	stressDraws int
	now         func() time.Time
	ctx         context.Context

	buffer *telemetry.Buffer
	moved  bool

	// Scheduler state
	lastTick float64
	started  bool
	ticks    int

	exporter *Exporter
	perf     *telemetry.PerfWindow

	logInterval time.Duration
	lastLog     float64
}

// New creates a harness drawing anim onto surface, fitted into viewport.
func New(anim Animation, surface renderer.Surface, viewport *layout.Viewport, opts Options) *Harness {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Context == nil {
		opts.Context = context.Background()
	}
	if opts.Sink == nil {
		opts.Sink = DirSink{Dir: "."}
	}

	h := &Harness{
		anim:        anim,
		surface:     surface,
		viewport:    viewport,
		fit:         opts.Fit,
		alignment:   opts.Alignment,
		now:         opts.Now,
		ctx:         opts.Context,
		buffer:      telemetry.NewBuffer(opts.InitialCapacity),
		exporter:    NewExporter(opts.Sink, opts.BundlePrefix),
		perf:        telemetry.NewPerfWindow(opts.PerfWindow),
		logInterval: opts.LogInterval,
	}
	h.SetStressDraws(opts.StressDraws)
	return h
}

// Tick runs one measured frame at timestampMs, a monotonic time in
// milliseconds. The first tick advances the animation by zero. Tick always
// reports true: the host's per-frame driver decides when to stop.
func (h *Harness) Tick(timestampMs float64) bool {
	if !h.started {
		h.lastTick = timestampMs
		h.lastLog = timestampMs
		h.started = true
	}
	elapsedMs := timestampMs - h.lastTick
	h.lastTick = timestampMs

	h.anim.Advance(elapsedMs / 1000)

	h.surface.Clear()
	h.surface.Save()
	h.surface.Transform(layout.Align(h.fit, h.alignment, h.viewport.Frame(), h.anim.Bounds()))

	start := h.now()
	for i := 0; i < h.stressDraws; i++ {
		h.anim.Draw(h.surface)
	}
	draw := max(h.now().Sub(start), 0)

	h.buffer.Append(telemetry.Sample{
		DurationMs: telemetry.DurationMs(draw),
		Moved:      h.moved,
	})

	h.surface.Restore()
	h.moved = false
	h.ticks++

	h.perf.Record(draw, time.Duration(elapsedMs*float64(time.Millisecond)))
	h.maybeLogPerf(timestampMs)
	return true
}

// MarkActivity sets the activity flag for the current frame. The next Tick
// consumes and clears it.
func (h *Harness) MarkActivity() {
	h.moved = true
}

// Export snapshots and resets the sample buffer and packages the snapshot in
// the background. It reports false, leaving the buffer untouched, when an
// earlier export is still packaging.
func (h *Harness) Export() bool {
	return h.exporter.Trigger(h.ctx, h.buffer)
}

// Resize matches the viewport and surface to the host window.
// Returns false if the size did not change.
func (h *Harness) Resize(width, height int) bool {
	if !h.viewport.Resize(float32(width), float32(height)) {
		return false
	}
	h.surface.Resize(width, height)
	return true
}

// SetStressDraws sets how many draw calls are timed per sample (min 1).
func (h *Harness) SetStressDraws(n int) {
	h.stressDraws = max(n, 1)
}

// StressDraws returns the number of draw calls timed per sample.
func (h *Harness) StressDraws() int {
	return h.stressDraws
}

// Buffer returns the live sample buffer.
func (h *Harness) Buffer() *telemetry.Buffer {
	return h.buffer
}

// Report computes statistics over the samples recorded since the last export.
func (h *Harness) Report() telemetry.Report {
	return telemetry.ComputeReport(h.buffer.Snapshot())
}

// Ticks returns the number of completed ticks.
func (h *Harness) Ticks() int {
	return h.ticks
}

// Exporting reports whether an export is still packaging.
func (h *Harness) Exporting() bool {
	return h.exporter.State() == StateExporting
}

// ExportState returns the exporter's busy-guard state.
func (h *Harness) ExportState() ExportState {
	return h.exporter.State()
}

// LastExport returns the most recent finished export, or nil.
func (h *Harness) LastExport() *ExportResult {
	return h.exporter.Last()
}

// WaitExports blocks until in-flight exports have finished.
func (h *Harness) WaitExports() {
	h.exporter.Wait()
}
