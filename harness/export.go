package harness

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pthm-cable/framebench/telemetry"
)

// ErrExportInProgress is the reason recorded when a trigger is dropped because
// a previous export is still packaging.
var ErrExportInProgress = errors.New("export already in progress")

// ExportState is the exporter's busy guard.
type ExportState int32

const (
	StateIdle ExportState = iota
	StateExporting
)

func (s ExportState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateExporting:
		return "exporting"
	default:
		return fmt.Sprintf("ExportState(%d)", int32(s))
	}
}

// ExportResult describes a finished export.
type ExportResult struct {
	Seq      int
	Path     string
	Samples  int
	Report   telemetry.Report
	Err      error
	Finished time.Time
}

// LogValue implements slog.LogValuer.
func (r ExportResult) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.Int("seq", r.Seq),
		slog.Int("samples", r.Samples),
	}
	if r.Err != nil {
		attrs = append(attrs, slog.String("error", r.Err.Error()))
	} else {
		attrs = append(attrs, slog.String("path", r.Path))
	}
	return slog.GroupValue(attrs...)
}

// Exporter turns buffer snapshots into persisted bundles.
//
// Trigger runs on the frame-loop goroutine. Packaging runs on its own
// goroutine; the only state it shares with the frame loop is the busy guard
// and the last result, both atomic.
type Exporter struct {
	sink   Sink
	prefix string
	now    func() time.Time

	state atomic.Int32
	last  atomic.Pointer[ExportResult]
	wg    sync.WaitGroup

	// seq is only touched by Trigger.
	seq int
}

// NewExporter creates an idle exporter that saves bundles to sink.
func NewExporter(sink Sink, prefix string) *Exporter {
	if prefix == "" {
		prefix = "framebench"
	}
	return &Exporter{
		sink:   sink,
		prefix: prefix,
		now:    time.Now,
	}
}

// State returns the current busy-guard state.
func (e *Exporter) State() ExportState {
	return ExportState(e.state.Load())
}

// Trigger starts an export of buf if the exporter is idle and reports whether
// it did. A trigger while exporting is dropped without touching buf.
//
// On success the buffer is reset before returning: samples appended while the
// bundle is still packaging belong to the next export.
func (e *Exporter) Trigger(ctx context.Context, buf *telemetry.Buffer) bool {
	if !e.state.CompareAndSwap(int32(StateIdle), int32(StateExporting)) {
		slog.Debug("export trigger dropped", "reason", ErrExportInProgress)
		return false
	}

	samples := buf.Snapshot()
	buf.Reset()
	report := telemetry.ComputeReport(samples)

	e.seq++
	seq := e.seq
	at := e.now()
	slog.Info("export started", "seq", seq, "report", report)

	e.wg.Add(1)
	go e.pack(ctx, seq, at, samples, report)
	return true
}

// pack encodes and saves one bundle, then returns the exporter to idle.
func (e *Exporter) pack(ctx context.Context, seq int, at time.Time, samples []telemetry.Sample, report telemetry.Report) {
	defer e.wg.Done()

	res := &ExportResult{
		Seq:     seq,
		Samples: len(samples),
		Report:  report,
	}
	data, err := telemetry.EncodeBundle(ctx, samples, report, at)
	if err == nil {
		res.Path, err = e.sink.Save(ctx, BundleName(e.prefix, at, seq), data)
	}
	if err != nil {
		res.Err = fmt.Errorf("export %d: %w", seq, err)
		slog.Error("export failed", "result", *res)
	} else {
		slog.Info("export finished", "result", *res)
	}
	res.Finished = e.now()

	e.last.Store(res)
	e.state.Store(int32(StateIdle))
}

// Last returns the most recent finished export, or nil if none has finished.
func (e *Exporter) Last() *ExportResult {
	return e.last.Load()
}

// Wait blocks until every started export has finished packaging.
func (e *Exporter) Wait() {
	e.wg.Wait()
}
