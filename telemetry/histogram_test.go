package telemetry

import (
	"math"
	"testing"
)

func TestComputePercentiles(t *testing.T) {
	durations := make([]float64, 100)
	for i := range durations {
		durations[i] = float64(i + 1) // 1..100 ms
	}

	p := ComputePercentiles(durations)

	// HDR histogram at 3 significant figures is accurate to ~0.1%.
	checks := []struct {
		name      string
		got, want float64
	}{
		{"p50", p.P50, 50},
		{"p95", p.P95, 95},
		{"p99", p.P99, 99},
		{"max", p.Max, 100},
	}
	for _, c := range checks {
		if math.Abs(c.got-c.want) > c.want*0.002 {
			t.Errorf("%s: got %f, want ~%f", c.name, c.got, c.want)
		}
	}
}

func TestComputePercentilesEmpty(t *testing.T) {
	p := ComputePercentiles(nil)
	if !math.IsNaN(p.P50) || !math.IsNaN(p.Max) {
		t.Errorf("empty percentiles: got %+v, want NaN", p)
	}
}

func TestComputePercentilesClampsZero(t *testing.T) {
	p := ComputePercentiles([]float64{0, 0, 0})
	if p.Max <= 0 || p.Max > 0.01 {
		t.Errorf("max of zero durations: got %f, want ~0.001", p.Max)
	}
}
