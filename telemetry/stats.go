package telemetry

import (
	"log/slog"
	"math"
	"strconv"

	"gonum.org/v1/gonum/stat"
)

// GroupStats holds the draw-time distribution for one activity group.
// Mean and StdDev are NaN when Count is zero.
type GroupStats struct {
	Count  int
	Mean   float64
	StdDev float64
}

// Report compares frames drawn while the input signal was active against
// frames drawn while it was idle.
type Report struct {
	Moved      GroupStats
	Static     GroupStats
	Difference float64 // Moved.Mean - Static.Mean
}

// Partition splits samples by activity flag, preserving frame order in both groups.
func Partition(samples []Sample) (moved, static []Sample) {
	for _, s := range samples {
		if s.Moved {
			moved = append(moved, s)
		} else {
			static = append(static, s)
		}
	}
	return moved, static
}

// Durations extracts the draw times of samples in order.
func Durations(samples []Sample) []float64 {
	out := make([]float64, len(samples))
	for i, s := range samples {
		out[i] = s.DurationMs
	}
	return out
}

// ComputeGroupStats calculates count, mean and population standard deviation.
// An empty group yields NaN for both mean and deviation (0/0), which is
// surfaced as-is rather than guarded.
func ComputeGroupStats(durations []float64) GroupStats {
	mean := stat.Mean(durations, nil)
	// Second central moment divides by n: population variance.
	variance := stat.Moment(2, durations, nil)
	return GroupStats{
		Count:  len(durations),
		Mean:   mean,
		StdDev: math.Sqrt(variance),
	}
}

// ComputeReport derives a Report from a buffer snapshot.
func ComputeReport(samples []Sample) Report {
	moved, static := Partition(samples)
	ms := ComputeGroupStats(Durations(moved))
	ss := ComputeGroupStats(Durations(static))
	return Report{
		Moved:      ms,
		Static:     ss,
		Difference: ms.Mean - ss.Mean,
	}
}

// Total returns the number of samples the report was computed from.
func (r Report) Total() int {
	return r.Moved.Count + r.Static.Count
}

// LogValue implements slog.LogValuer for structured logging.
func (g GroupStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("count", g.Count),
		slog.Attr{Key: "mean_ms", Value: msValue(g.Mean)},
		slog.Attr{Key: "std_ms", Value: msValue(g.StdDev)},
	)
}

// LogValue implements slog.LogValuer for structured logging.
func (r Report) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Any("moved", r.Moved),
		slog.Any("static", r.Static),
		slog.Attr{Key: "difference_ms", Value: msValue(r.Difference)},
	)
}

// msValue logs non-finite values as strings; the JSON handler rejects NaN floats.
func msValue(v float64) slog.Value {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return slog.StringValue(strconv.FormatFloat(v, 'f', -1, 64))
	}
	return slog.Float64Value(v)
}
