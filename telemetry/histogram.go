package telemetry

import (
	"math"

	"github.com/HdrHistogram/hdrhistogram-go"
)

// Histogram range in microseconds: 1us to 60s, 3 significant figures.
const (
	histMinUS   = 1
	histMaxUS   = 60_000_000
	histSigFigs = 3
	usPerMilli  = 1000.0
)

// Percentiles summarises the tail of a draw-time distribution in milliseconds.
// All fields are NaN when no durations were recorded.
type Percentiles struct {
	P50 float64
	P95 float64
	P99 float64
	Max float64
}

// ComputePercentiles records durations (ms) into an HDR histogram and reads
// back the p50/p95/p99/max values. Durations outside the histogram range are
// clamped so a single pathological frame cannot drop out of the tail.
func ComputePercentiles(durations []float64) Percentiles {
	if len(durations) == 0 {
		nan := math.NaN()
		return Percentiles{P50: nan, P95: nan, P99: nan, Max: nan}
	}

	h := hdrhistogram.New(histMinUS, histMaxUS, histSigFigs)
	for _, d := range durations {
		us := int64(math.Round(d * usPerMilli))
		if us < histMinUS {
			us = histMinUS
		} else if us > histMaxUS {
			us = histMaxUS
		}
		// RecordValue only fails for out-of-range values, clamped above.
		_ = h.RecordValue(us)
	}

	return Percentiles{
		P50: float64(h.ValueAtQuantile(50)) / usPerMilli,
		P95: float64(h.ValueAtQuantile(95)) / usPerMilli,
		P99: float64(h.ValueAtQuantile(99)) / usPerMilli,
		Max: float64(h.Max()) / usPerMilli,
	}
}
