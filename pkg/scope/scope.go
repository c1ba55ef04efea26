// Package scope provides a Fyne widget that plots the smoothed pot
// signals as an oscilloscope-style rolling graph.
package scope

import (
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/widget"

	"github.com/itohio/gopots/pkg/config"
	"github.com/itohio/gopots/pkg/knob"
	"github.com/itohio/gopots/pkg/trace"
)

// Widget is a custom Fyne widget displaying one trace per knob on a
// fixed 0..raw_max vertical scale.
type Widget struct {
	widget.BaseWidget

	cfg    *config.Config
	window time.Duration

	// Data (protected by mu)
	mu     sync.RWMutex
	status []knob.Status
	ready  bool

	// Display buffers (reused for downsampling)
	display [][]trace.Point

	// Time range of the plot
	xMin, xMax time.Time

	maxDisplayPoints int
}

// New creates a scope widget for the configured knobs, displaying the
// given time window.
func New(cfg *config.Config, window time.Duration) *Widget {
	n := len(cfg.MIDI.Controllers)
	s := &Widget{
		cfg:              cfg,
		window:           window,
		display:          make([][]trace.Point, n),
		maxDisplayPoints: 500, // Limit points per trace for efficient rendering
	}
	for i := range s.display {
		s.display[i] = make([]trace.Point, 0, s.maxDisplayPoints)
	}
	s.ExtendBaseWidget(s)
	// Trigger initial refresh to display empty scope
	s.Refresh()
	return s
}

// UpdateData updates the widget with new trace data and knob statuses.
// Call from the tick callback via fyne.Do().
func (s *Widget) UpdateData(traces [][]trace.Point, status []knob.Status, midiReady bool) {
	s.mu.Lock()

	for i := range s.display {
		if i >= len(traces) {
			break
		}
		s.display[i] = trace.Downsample(s.display[i], traces[i], s.maxDisplayPoints)
	}
	s.status = status
	s.ready = midiReady

	s.updateTimeRange()

	s.mu.Unlock()

	// Refresh the widget (must be outside lock to avoid potential deadlock)
	s.Refresh()
}

// updateTimeRange pins the X axis to the last window of data.
func (s *Widget) updateTimeRange() {
	var newest time.Time
	for _, tr := range s.display {
		if len(tr) == 0 {
			continue
		}
		if ts := tr[len(tr)-1].Timestamp; ts.After(newest) {
			newest = ts
		}
	}

	if newest.IsZero() {
		now := time.Now()
		s.xMin = now.Add(-s.window)
		s.xMax = now
		return
	}

	s.xMax = newest
	s.xMin = newest.Add(-s.window)
}

// CreateRenderer creates the widget renderer.
func (s *Widget) CreateRenderer() fyne.WidgetRenderer {
	return newRenderer(s)
}
