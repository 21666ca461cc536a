// Command framereport reads an export bundle, re-parses its sample table and
// prints the recomputed draw-time report.
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/pthm-cable/framebench/telemetry"
)

// colorScheme holds the colours used in text output.
type colorScheme struct {
	Header  *color.Color
	Label   *color.Color
	Value   *color.Color
	Missing *color.Color
	Warn    *color.Color
}

func defaultColorScheme() *colorScheme {
	return &colorScheme{
		Header:  color.New(color.FgCyan, color.Bold),
		Label:   color.New(color.FgYellow),
		Value:   color.New(color.FgWhite),
		Missing: color.New(color.FgHiBlack),
		Warn:    color.New(color.FgRed, color.Bold),
	}
}

func newRootCmd() *cobra.Command {
	var asJSON, noColor bool

	cmd := &cobra.Command{
		Use:   "framereport <bundle.zip>",
		Short: "Recompute and print the draw-time report stored in an export bundle",
		Long: `framereport opens a bundle written by framebench, parses draw_times.csv
back into samples and recomputes the moved/static statistics and percentiles.
The recomputed sample count is checked against the bundle's report.json.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if noColor {
				color.NoColor = true
			}
			b, err := loadBundle(args[0])
			if err != nil {
				return err
			}
			if asJSON {
				return telemetry.WriteReportJSON(cmd.OutOrStdout(), b.doc)
			}
			return printReport(cmd.OutOrStdout(), defaultColorScheme(), args[0], b)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the recomputed report as JSON")
	cmd.Flags().BoolVar(&noColor, "no-color", false, "Disable coloured output")
	return cmd
}

// bundle is a parsed export bundle.
type bundle struct {
	samples []telemetry.Sample
	report  telemetry.Report
	doc     telemetry.ReportDoc
	// stored is the sample count recorded in report.json at export time.
	stored int
}

func loadBundle(path string) (*bundle, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading bundle: %w", err)
	}
	r := bytes.NewReader(data)
	size := int64(len(data))

	samples, err := telemetry.ReadBundleSamples(r, size)
	if err != nil {
		return nil, err
	}

	raw, err := telemetry.ReadBundleFile(r, size, telemetry.ReportFile)
	if err != nil {
		return nil, err
	}
	var stored telemetry.ReportDoc
	if err := json.Unmarshal(raw, &stored); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", telemetry.ReportFile, err)
	}

	report := telemetry.ComputeReport(samples)
	return &bundle{
		samples: samples,
		report:  report,
		doc:     telemetry.NewReportDoc(samples, report, stored.ExportedAt),
		stored:  stored.Samples,
	}, nil
}

func printReport(w io.Writer, cs *colorScheme, path string, b *bundle) error {
	cs.Header.Fprintf(w, "%s\n", path)
	fmt.Fprintf(w, "exported %s, %d samples\n", b.doc.ExportedAt.Format("2006-01-02 15:04:05 MST"), len(b.samples))
	if b.stored != len(b.samples) {
		cs.Warn.Fprintf(w, "warning: report.json records %d samples, table has %d\n", b.stored, len(b.samples))
	}
	fmt.Fprintln(w)

	printGroup(w, cs, "Mouse moved", b.doc.Moved)
	printGroup(w, cs, "Mouse static", b.doc.Static)

	cs.Label.Fprintf(w, "Mean difference (moved - static): ")
	printMs(w, cs, b.doc.Difference)
	fmt.Fprintln(w)
	return nil
}

func printGroup(w io.Writer, cs *colorScheme, label string, g telemetry.GroupDoc) {
	cs.Header.Fprintf(w, "%s frames: %d\n", label, g.Count)
	fields := []struct {
		name  string
		value *float64
	}{
		{"mean", g.Mean},
		{"std", g.StdDev},
		{"p50", g.P50},
		{"p95", g.P95},
		{"p99", g.P99},
		{"max", g.Max},
	}
	for _, f := range fields {
		cs.Label.Fprintf(w, "  %-5s", f.name)
		printMs(w, cs, f.value)
		fmt.Fprintln(w)
	}
	fmt.Fprintln(w)
}

// printMs prints a millisecond value; nil marks an empty group.
func printMs(w io.Writer, cs *colorScheme, v *float64) {
	if v == nil {
		cs.Missing.Fprint(w, math.NaN())
		return
	}
	cs.Value.Fprintf(w, "%.2f ms", *v)
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
