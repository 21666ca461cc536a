package telemetry

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/klauspost/compress/zip"
	"golang.org/x/sync/errgroup"
)

// Artifact names inside an export bundle.
const (
	SamplesFile = "draw_times.csv"
	SummaryFile = "stats.txt"
	ReportFile  = "report.json"
)

// sampleRow is the CSV form of a Sample.
type sampleRow struct {
	DrawTimeMs float64 `csv:"DrawTime(ms)"`
	MouseMoved bool    `csv:"MouseMoved"`
}

// WriteSamplesCSV writes one row per sample, in frame order, under the
// header "DrawTime(ms),MouseMoved". Durations use the shortest exact
// representation so the table parses back to identical values.
func WriteSamplesCSV(w io.Writer, samples []Sample) error {
	rows := make([]sampleRow, len(samples))
	for i, s := range samples {
		rows[i] = sampleRow{DrawTimeMs: s.DurationMs, MouseMoved: s.Moved}
	}
	if err := gocsv.Marshal(rows, w); err != nil {
		return fmt.Errorf("writing samples: %w", err)
	}
	return nil
}

// ReadSamplesCSV parses a table produced by WriteSamplesCSV.
func ReadSamplesCSV(r io.Reader) ([]Sample, error) {
	var rows []sampleRow
	if err := gocsv.Unmarshal(r, &rows); err != nil {
		return nil, fmt.Errorf("reading samples: %w", err)
	}
	samples := make([]Sample, len(rows))
	for i, row := range rows {
		samples[i] = Sample{DurationMs: row.DrawTimeMs, Moved: row.MouseMoved}
	}
	return samples, nil
}

// WriteSummary writes the human-readable statistics summary.
// Values are rounded to two decimals; empty groups print NaN.
func WriteSummary(w io.Writer, r Report) error {
	var b bytes.Buffer
	fmt.Fprintf(&b, "Draw time statistics (%d frames)\n\n", r.Total())
	writeGroup(&b, "Mouse moved", r.Moved)
	writeGroup(&b, "Mouse static", r.Static)
	fmt.Fprintf(&b, "Mean difference (moved - static): %.2f ms\n", r.Difference)
	if _, err := w.Write(b.Bytes()); err != nil {
		return fmt.Errorf("writing summary: %w", err)
	}
	return nil
}

func writeGroup(b *bytes.Buffer, label string, g GroupStats) {
	fmt.Fprintf(b, "%s frames: %d\n", label, g.Count)
	fmt.Fprintf(b, "  Mean draw time: %.2f ms\n", g.Mean)
	fmt.Fprintf(b, "  Std deviation:  %.2f ms\n\n", g.StdDev)
}

// ReportDoc is the JSON form of a report. NaN values encode as null.
type ReportDoc struct {
	ExportedAt time.Time `json:"exported_at"`
	Samples    int       `json:"samples"`
	Moved      GroupDoc  `json:"moved"`
	Static     GroupDoc  `json:"static"`
	Difference *float64  `json:"difference_ms"`
}

// GroupDoc is the JSON form of one group's statistics and percentiles.
type GroupDoc struct {
	Count  int      `json:"count"`
	Mean   *float64 `json:"mean_ms"`
	StdDev *float64 `json:"std_ms"`
	P50    *float64 `json:"p50_ms"`
	P95    *float64 `json:"p95_ms"`
	P99    *float64 `json:"p99_ms"`
	Max    *float64 `json:"max_ms"`
}

// NewReportDoc builds the JSON document for a snapshot and its report.
func NewReportDoc(samples []Sample, r Report, exportedAt time.Time) ReportDoc {
	moved, static := Partition(samples)
	return ReportDoc{
		ExportedAt: exportedAt.UTC(),
		Samples:    len(samples),
		Moved:      newGroupDoc(r.Moved, ComputePercentiles(Durations(moved))),
		Static:     newGroupDoc(r.Static, ComputePercentiles(Durations(static))),
		Difference: finite(r.Difference),
	}
}

func newGroupDoc(g GroupStats, p Percentiles) GroupDoc {
	return GroupDoc{
		Count:  g.Count,
		Mean:   finite(g.Mean),
		StdDev: finite(g.StdDev),
		P50:    finite(p.P50),
		P95:    finite(p.P95),
		P99:    finite(p.P99),
		Max:    finite(p.Max),
	}
}

// finite returns nil for NaN/Inf so encoding/json can serialise the value.
func finite(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

// WriteReportJSON writes the machine-readable report.
func WriteReportJSON(w io.Writer, doc ReportDoc) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling report: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	return nil
}

// EncodeBundle packages the sample table, the summary and the JSON report
// into a single zip archive. The artifacts are encoded concurrently.
func EncodeBundle(ctx context.Context, samples []Sample, r Report, exportedAt time.Time) ([]byte, error) {
	var csvBuf, summaryBuf, reportBuf bytes.Buffer

	var g errgroup.Group
	g.Go(func() error { return WriteSamplesCSV(&csvBuf, samples) })
	g.Go(func() error { return WriteSummary(&summaryBuf, r) })
	g.Go(func() error {
		return WriteReportJSON(&reportBuf, NewReportDoc(samples, r, exportedAt))
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var out bytes.Buffer
	zw := zip.NewWriter(&out)
	entries := []struct {
		name string
		data []byte
	}{
		{SamplesFile, csvBuf.Bytes()},
		{SummaryFile, summaryBuf.Bytes()},
		{ReportFile, reportBuf.Bytes()},
	}
	for _, e := range entries {
		fw, err := zw.CreateHeader(&zip.FileHeader{
			Name:     e.name,
			Method:   zip.Deflate,
			Modified: exportedAt,
		})
		if err != nil {
			return nil, fmt.Errorf("adding %s: %w", e.name, err)
		}
		if _, err := fw.Write(e.data); err != nil {
			return nil, fmt.Errorf("writing %s: %w", e.name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("closing bundle: %w", err)
	}
	return out.Bytes(), nil
}

// ReadBundleSamples extracts and parses the sample table from a bundle.
func ReadBundleSamples(r io.ReaderAt, size int64) ([]Sample, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("opening bundle: %w", err)
	}
	for _, f := range zr.File {
		if f.Name != SamplesFile {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("opening %s: %w", SamplesFile, err)
		}
		defer rc.Close()
		return ReadSamplesCSV(rc)
	}
	return nil, fmt.Errorf("bundle has no %s", SamplesFile)
}

// ReadBundleFile returns the raw contents of one artifact in a bundle.
func ReadBundleFile(r io.ReaderAt, size int64, name string) ([]byte, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("opening bundle: %w", err)
	}
	f, err := zr.Open(name)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", name, err)
	}
	defer f.Close()
	return io.ReadAll(f)
}
