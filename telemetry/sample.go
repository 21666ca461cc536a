package telemetry

// Sample is the measured draw cost of one frame.
// Moved reports whether the tracked input signal fired during that frame.
type Sample struct {
	DurationMs float64
	Moved      bool
}

// Buffer is the ordered, append-only record of frame samples for the current
// reporting window. It is owned by a single goroutine (the frame loop) and
// is not safe for concurrent use.
type Buffer struct {
	samples []Sample
}

// NewBuffer creates an empty sample buffer.
// capacity is a sizing hint only; the buffer grows without bound until Reset.
func NewBuffer(capacity int) *Buffer {
	if capacity < 0 {
		capacity = 0
	}
	return &Buffer{samples: make([]Sample, 0, capacity)}
}

// Append records one sample at the end of the buffer.
func (b *Buffer) Append(s Sample) {
	b.samples = append(b.samples, s)
}

// Snapshot returns the samples recorded so far, in frame order.
// The returned slice is read-only: its capacity is clipped so appending to it
// reallocates, and Reset never reuses its backing array, so a snapshot stays
// valid after the buffer moves on.
func (b *Buffer) Snapshot() []Sample {
	return b.samples[:len(b.samples):len(b.samples)]
}

// Reset empties the buffer. Previously returned snapshots are unaffected.
func (b *Buffer) Reset() {
	b.samples = make([]Sample, 0, cap(b.samples))
}

// Len returns the number of buffered samples.
func (b *Buffer) Len() int {
	return len(b.samples)
}
