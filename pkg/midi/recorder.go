package midi

import "sync"

// Event is one recorded control change.
type Event struct {
	Controller uint8
	Value      uint8
}

// Recorder is a Sink that records emitted events in memory. It stands in
// for a real out port in tests and dry runs; its readiness can be toggled
// to exercise the drop path.
type Recorder struct {
	mu      sync.Mutex
	ready   bool
	events  []Event
	dropped int
}

// NewRecorder creates a Recorder. It starts ready.
func NewRecorder() *Recorder {
	return &Recorder{ready: true}
}

// SetReady toggles whether the recorder accepts events.
func (r *Recorder) SetReady(ready bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ready = ready
}

// IsReady returns whether the recorder accepts events.
func (r *Recorder) IsReady() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ready
}

// Emit records the event when ready, otherwise counts it as dropped.
func (r *Recorder) Emit(controller, value uint8) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.ready {
		r.dropped++
		return false
	}

	r.events = append(r.events, Event{Controller: controller, Value: value})
	return true
}

// Events returns a copy of the recorded events.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

// Dropped returns how many events were dropped while not ready.
func (r *Recorder) Dropped() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.dropped
}
