// Package trace keeps a rolling time window of pipeline output per knob
// for the scope display.
package trace

import (
	"sync"
	"time"

	"github.com/itohio/gopots/pkg/knob"
)

// Point is one recorded pipeline tick for a single knob.
type Point struct {
	Timestamp time.Time
	Filtered  float32
	Value     uint8
}

// Recorder accumulates per-knob points and trims them to a time window.
// Buffers are FIFO and ordered oldest first; removal is based on
// timestamp, not point count.
type Recorder struct {
	mu     sync.RWMutex
	window time.Duration
	traces [][]Point
}

// New creates a Recorder with one trace per knob.
func New(numTraces int, window time.Duration) *Recorder {
	traces := make([][]Point, numTraces)
	for i := range traces {
		traces[i] = make([]Point, 0)
	}
	return &Recorder{
		window: window,
		traces: traces,
	}
}

// Add records one tick's statuses. Statuses beyond the recorder's trace
// count are ignored.
func (r *Recorder) Add(now time.Time, status []knob.Status) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cutoff := now.Add(-r.window)

	for i := range r.traces {
		if i >= len(status) {
			break
		}
		r.traces[i] = append(r.traces[i], Point{
			Timestamp: now,
			Filtered:  status[i].Filtered,
			Value:     status[i].Value,
		})

		// Trim points that fell out of the window.
		trimmed := r.traces[i]
		cut := 0
		for cut < len(trimmed) && !trimmed[cut].Timestamp.After(cutoff) {
			cut++
		}
		if cut > 0 {
			r.traces[i] = append(trimmed[:0], trimmed[cut:]...)
		}
	}
}

// Traces returns a copy of all traces, oldest point first.
func (r *Recorder) Traces() [][]Point {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([][]Point, len(r.traces))
	for i, tr := range r.traces {
		out[i] = make([]Point, len(tr))
		copy(out[i], tr)
	}
	return out
}

// Window returns the recorder's time window.
func (r *Recorder) Window() time.Duration {
	return r.window
}

// Downsample decimates a trace to at most maxPoints for display.
// Destination-based: reuses dst if it has sufficient capacity, otherwise
// allocates. Returns the destination slice.
func Downsample(dst []Point, src []Point, maxPoints int) []Point {
	if len(src) <= maxPoints {
		if cap(dst) >= len(src) {
			dst = dst[:len(src)]
			copy(dst, src)
			return dst
		}
		result := make([]Point, len(src))
		copy(result, src)
		return result
	}

	if cap(dst) >= maxPoints {
		dst = dst[:0]
	} else {
		dst = make([]Point, 0, maxPoints)
	}

	step := float64(len(src)) / float64(maxPoints)
	for i := 0; i < maxPoints; i++ {
		idx := int(float64(i) * step)
		if idx < len(src) {
			dst = append(dst, src[idx])
		}
	}

	return dst
}
