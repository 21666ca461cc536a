package harness

import (
	"bytes"
	"context"
	"errors"
	"image/color"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/pthm-cable/framebench/layout"
	"github.com/pthm-cable/framebench/renderer"
	"github.com/pthm-cable/framebench/telemetry"
)

// fakeClock advances only when a fake animation draws.
type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time { return c.t }

// fakeAnim records advance steps and costs a fixed duration per draw.
type fakeAnim struct {
	clock    *fakeClock
	cost     time.Duration
	advanced []float64
	draws    int
}

func (a *fakeAnim) Advance(sec float64) { a.advanced = append(a.advanced, sec) }

func (a *fakeAnim) Draw(renderer.Surface) {
	a.draws++
	a.clock.t = a.clock.t.Add(a.cost)
}

func (a *fakeAnim) Bounds() layout.Rect { return layout.Rect{MaxX: 100, MaxY: 100} }

// countingSurface tracks transform stack calls.
type countingSurface struct {
	clears, saves, restores, transforms int
	last                                layout.Mat2D
	width, height                       int
}

func (s *countingSurface) Clear()                                      { s.clears++ }
func (s *countingSurface) Save()                                       { s.saves++ }
func (s *countingSurface) Restore()                                    { s.restores++ }
func (s *countingSurface) Transform(m layout.Mat2D)                    { s.transforms++; s.last = m }
func (s *countingSurface) FillCircle(layout.Point, float32, color.RGBA) {}
func (s *countingSurface) FillPolygon([]layout.Point, color.RGBA)      {}
func (s *countingSurface) Resize(w, h int)                             { s.width, s.height = w, h }

// memSink keeps saved bundles in memory. If gate is non-nil, Save blocks
// until it is closed.
type memSink struct {
	gate chan struct{}
	err  error

	mu    sync.Mutex
	saved map[string][]byte
}

func newMemSink() *memSink {
	return &memSink{saved: make(map[string][]byte)}
}

func (s *memSink) Save(ctx context.Context, name string, data []byte) (string, error) {
	if s.gate != nil {
		<-s.gate
	}
	if s.err != nil {
		return "", s.err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saved[name] = data
	return "mem://" + name, nil
}

func (s *memSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.saved)
}

func (s *memSink) bundle(t *testing.T, path string) []telemetry.Sample {
	t.Helper()
	name, ok := strings.CutPrefix(path, "mem://")
	if !ok {
		t.Fatalf("bundle path %q was not written by memSink", path)
	}
	s.mu.Lock()
	data, ok := s.saved[name]
	s.mu.Unlock()
	if !ok {
		t.Fatalf("no bundle saved at %s", path)
	}
	samples, err := telemetry.ReadBundleSamples(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("reading bundle: %v", err)
	}
	return samples
}

func newTestHarness(cost time.Duration, sink Sink) (*Harness, *fakeAnim, *countingSurface) {
	clock := &fakeClock{t: time.Unix(0, 0)}
	anim := &fakeAnim{clock: clock, cost: cost}
	surface := &countingSurface{}
	h := New(anim, surface, layout.NewViewport(200, 200), Options{
		Fit:       layout.FitContain,
		Alignment: layout.Center,
		Sink:      sink,
		Now:       clock.Now,
	})
	return h, anim, surface
}

func TestTickFirstElapsedIsZero(t *testing.T) {
	h, anim, _ := newTestHarness(time.Millisecond, newMemSink())

	h.Tick(5000)
	h.Tick(5016)
	h.Tick(5050)

	want := []float64{0, 0.016, 0.034}
	if len(anim.advanced) != len(want) {
		t.Fatalf("advance calls: got %d, want %d", len(anim.advanced), len(want))
	}
	for i, w := range want {
		if math.Abs(anim.advanced[i]-w) > 1e-9 {
			t.Errorf("advance %d: got %v, want %v", i, anim.advanced[i], w)
		}
	}
}

func TestTickRecordsOneSamplePerFrame(t *testing.T) {
	h, _, surface := newTestHarness(2*time.Millisecond, newMemSink())

	for i := 0; i < 10; i++ {
		if !h.Tick(float64(i) * 16) {
			t.Fatalf("tick %d asked to stop", i)
		}
	}

	samples := h.Buffer().Snapshot()
	if len(samples) != 10 {
		t.Fatalf("samples: got %d, want 10", len(samples))
	}
	for i, s := range samples {
		if s.DurationMs != 2 {
			t.Errorf("sample %d duration: got %v, want 2", i, s.DurationMs)
		}
	}
	if h.Ticks() != 10 {
		t.Errorf("ticks: got %d, want 10", h.Ticks())
	}
	if surface.clears != 10 || surface.saves != 10 || surface.restores != 10 || surface.transforms != 10 {
		t.Errorf("surface calls: got %+v", surface)
	}
}

func TestTickAppliesFitTransform(t *testing.T) {
	h, _, surface := newTestHarness(0, newMemSink())
	h.Resize(400, 200)
	h.Tick(0)

	// 100x100 content contained in 400x200 is scaled by 2 and centred.
	want := layout.Align(layout.FitContain, layout.Center, layout.Rect{MaxX: 400, MaxY: 200}, layout.Rect{MaxX: 100, MaxY: 100})
	if surface.last != want {
		t.Errorf("transform: got %+v, want %+v", surface.last, want)
	}
	if surface.width != 400 || surface.height != 200 {
		t.Errorf("surface size: got %dx%d, want 400x200", surface.width, surface.height)
	}
}

func TestActivityFlagTagsOneFrame(t *testing.T) {
	h, _, _ := newTestHarness(time.Millisecond, newMemSink())

	h.Tick(0)
	h.MarkActivity()
	h.MarkActivity()
	h.Tick(16)
	h.Tick(32)

	got := h.Buffer().Snapshot()
	want := []bool{false, true, false}
	for i, w := range want {
		if got[i].Moved != w {
			t.Errorf("sample %d moved: got %v, want %v", i, got[i].Moved, w)
		}
	}
}

func TestStressDrawsTimedAsOneSample(t *testing.T) {
	h, anim, _ := newTestHarness(3*time.Millisecond, newMemSink())
	h.SetStressDraws(5)

	h.Tick(0)

	if anim.draws != 5 {
		t.Errorf("draws: got %d, want 5", anim.draws)
	}
	samples := h.Buffer().Snapshot()
	if len(samples) != 1 {
		t.Fatalf("samples: got %d, want 1", len(samples))
	}
	if samples[0].DurationMs != 15 {
		t.Errorf("duration: got %v, want 15", samples[0].DurationMs)
	}

	h.SetStressDraws(0)
	if h.StressDraws() != 1 {
		t.Errorf("stress draws clamp: got %d, want 1", h.StressDraws())
	}
}

func TestResizeReportsChange(t *testing.T) {
	h, _, _ := newTestHarness(0, newMemSink())
	if h.Resize(200, 200) {
		t.Error("Resize to same size reported a change")
	}
	if !h.Resize(640, 480) {
		t.Error("Resize to new size reported no change")
	}
}

func TestExportResetsBufferImmediately(t *testing.T) {
	sink := newMemSink()
	sink.gate = make(chan struct{})
	h, _, _ := newTestHarness(time.Millisecond, sink)

	for i := 0; i < 3; i++ {
		h.Tick(float64(i) * 16)
	}
	if !h.Export() {
		t.Fatal("first export was dropped")
	}
	if h.Buffer().Len() != 0 {
		t.Errorf("buffer after trigger: got %d samples, want 0", h.Buffer().Len())
	}
	if !h.Exporting() {
		t.Error("exporter should be busy while the sink blocks")
	}

	// Ticks keep running while packaging is in flight.
	h.Tick(48)
	h.Tick(64)

	close(sink.gate)
	h.WaitExports()

	res := h.LastExport()
	if res == nil || res.Err != nil {
		t.Fatalf("export result: %+v", res)
	}
	if res.Samples != 3 {
		t.Errorf("exported samples: got %d, want 3", res.Samples)
	}
	if got := sink.bundle(t, res.Path); len(got) != 3 {
		t.Errorf("bundle samples: got %d, want 3", len(got))
	}
	if h.Buffer().Len() != 2 {
		t.Errorf("next window: got %d samples, want 2", h.Buffer().Len())
	}
	if h.ExportState() != StateIdle {
		t.Errorf("state: got %s, want idle", h.ExportState())
	}
}

func TestExportWhileBusyIsNoOp(t *testing.T) {
	sink := newMemSink()
	sink.gate = make(chan struct{})
	h, _, _ := newTestHarness(time.Millisecond, sink)

	h.Tick(0)
	h.Tick(16)
	if !h.Export() {
		t.Fatal("first export was dropped")
	}

	h.Tick(32)
	before := h.Buffer().Snapshot()
	if h.Export() {
		t.Error("second export accepted while busy")
	}
	after := h.Buffer().Snapshot()
	if len(after) != len(before) || len(after) != 1 {
		t.Errorf("buffer mutated by dropped export: before %d, after %d", len(before), len(after))
	}

	close(sink.gate)
	h.WaitExports()

	if sink.count() != 1 {
		t.Errorf("artifacts: got %d, want 1", sink.count())
	}
	if res := h.LastExport(); res == nil || res.Seq != 1 {
		t.Errorf("last export: got %+v, want seq 1", res)
	}

	// Once idle, the next trigger exports the next window.
	if !h.Export() {
		t.Fatal("export after completion was dropped")
	}
	h.WaitExports()
	if sink.count() != 2 {
		t.Errorf("artifacts: got %d, want 2", sink.count())
	}
	if res := h.LastExport(); res.Samples != 1 {
		t.Errorf("second export samples: got %d, want 1", res.Samples)
	}
}

func TestExportEmptyBuffer(t *testing.T) {
	sink := newMemSink()
	h, _, _ := newTestHarness(0, sink)

	if !h.Export() {
		t.Fatal("export was dropped")
	}
	h.WaitExports()

	res := h.LastExport()
	if res == nil || res.Err != nil {
		t.Fatalf("export result: %+v", res)
	}
	if !math.IsNaN(res.Report.Difference) || !math.IsNaN(res.Report.Moved.Mean) {
		t.Errorf("empty report should be NaN, got %+v", res.Report)
	}
	if sink.count() != 1 {
		t.Errorf("artifacts: got %d, want 1", sink.count())
	}
}

func TestExportFailureReturnsToIdle(t *testing.T) {
	sink := newMemSink()
	sink.err = errors.New("disk full")
	h, _, _ := newTestHarness(time.Millisecond, sink)

	h.Tick(0)
	h.Export()
	h.WaitExports()

	res := h.LastExport()
	if res == nil || !errors.Is(res.Err, sink.err) {
		t.Fatalf("expected sink error, got %+v", res)
	}
	if h.ExportState() != StateIdle {
		t.Errorf("state: got %s, want idle", h.ExportState())
	}
	if !h.Export() {
		t.Error("export after failure was dropped")
	}
	h.WaitExports()
}

func TestExportBundleRoundTrip(t *testing.T) {
	sink := newMemSink()
	h, anim, _ := newTestHarness(time.Millisecond, sink)

	var want []telemetry.Sample
	for i := 0; i < 6; i++ {
		anim.cost = time.Duration(i+1) * time.Millisecond
		moved := i%2 == 0
		if moved {
			h.MarkActivity()
		}
		h.Tick(float64(i) * 16)
		want = append(want, telemetry.Sample{DurationMs: float64(i + 1), Moved: moved})
	}
	h.Export()
	h.WaitExports()

	got := sink.bundle(t, h.LastExport().Path)
	if len(got) != len(want) {
		t.Fatalf("samples: got %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("sample %d: got %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestPerfIncludesBuffered(t *testing.T) {
	h, _, _ := newTestHarness(time.Millisecond, newMemSink())
	h.Tick(0)
	h.Tick(20)

	stats := h.Perf()
	if stats.Buffered != 2 {
		t.Errorf("buffered: got %d, want 2", stats.Buffered)
	}
	if stats.Ticks != 2 {
		t.Errorf("ticks: got %d, want 2", stats.Ticks)
	}
	if stats.AvgDraw != time.Millisecond {
		t.Errorf("avg draw: got %s, want 1ms", stats.AvgDraw)
	}
}

func TestDirSinkSave(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested")
	sink := DirSink{Dir: dir}

	path, err := sink.Save(context.Background(), "bundle.zip", []byte("data"))
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if path != filepath.Join(dir, "bundle.zip") {
		t.Errorf("path: got %s", path)
	}
	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading saved file: %v", err)
	}
	if string(got) != "data" {
		t.Errorf("contents: got %q, want data", got)
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Errorf("dir entries: got %d, want 1 (temp file left behind?)", len(entries))
	}
}

func TestDirSinkCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := (DirSink{Dir: t.TempDir()}).Save(ctx, "x.zip", nil); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestBundleName(t *testing.T) {
	at := time.Date(2024, 3, 5, 14, 7, 9, 0, time.UTC)
	got := BundleName("bench", at, 7)
	if got != "bench_20240305T140709Z_007.zip" {
		t.Errorf("got %s", got)
	}
}

func TestExportStateString(t *testing.T) {
	if StateIdle.String() != "idle" || StateExporting.String() != "exporting" {
		t.Errorf("got %s, %s", StateIdle, StateExporting)
	}
}

func TestExportProducesArtifact(t *testing.T) {
	sink := newMemSink()
	h, _, _ := newTestHarness(time.Millisecond, sink)

	h.Tick(0)
	h.Export()
	h.WaitExports()

	res := h.LastExport()
	if res == nil {
		t.Fatal("no export result")
	}
	if res.Err != nil {
		t.Fatalf("export failed: %v", res.Err)
	}
	if res.Path == "" {
		t.Fatal("export succeeded without a path")
	}
	if got := sink.bundle(t, res.Path); len(got) != 1 {
		t.Errorf("bundle samples: got %d, want 1", len(got))
	}
}
