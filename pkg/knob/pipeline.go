package knob

import (
	"context"
	"sync"
	"time"

	"github.com/itohio/gopots/pkg/config"
	"github.com/itohio/gopots/pkg/midi"
	"github.com/itohio/gopots/pkg/pots"
)

// Status is a per-knob snapshot taken after a tick.
type Status struct {
	Controller uint8
	Raw        uint16
	Filtered   float32
	Value      uint8
	Faulted    bool // True when the source failed to produce a reading this tick
}

// Pipeline orchestrates one tick of the read → filter → quantize →
// change-detect → emit chain over all knobs. It owns the knob array
// exclusively; the device and sink are injected collaborators.
//
// Ticks are strictly sequential: Run drives them from a single goroutine
// and Tick does no internal concurrency. The mutex only guards Statuses
// readers (the UI) against the ticking goroutine.
type Pipeline struct {
	dev  pots.Device
	sink midi.Sink

	alpha  float32
	rawMax float32
	outMax float32

	mu     sync.RWMutex
	knobs  []Knob
	status []Status

	cbMu      sync.RWMutex
	callbacks []func(time.Time, []Status)
}

// New creates a pipeline with one knob per configured controller.
func New(cfg *config.Config, dev pots.Device, sink midi.Sink) *Pipeline {
	knobs := make([]Knob, 0, len(cfg.MIDI.Controllers))
	status := make([]Status, 0, len(cfg.MIDI.Controllers))
	for _, cc := range cfg.MIDI.Controllers {
		knobs = append(knobs, NewKnob(cc))
		status = append(status, Status{Controller: cc})
	}

	return &Pipeline{
		dev:    dev,
		sink:   sink,
		alpha:  float32(cfg.Sampling.Alpha),
		rawMax: float32(cfg.Sampling.RawMax),
		outMax: float32(cfg.Sampling.OutputMax),
		knobs:  knobs,
		status: status,
	}
}

// OnTick registers a callback invoked after every tick with the tick time
// and a per-knob status snapshot. The slice is a fresh copy per tick and
// may be retained.
func (p *Pipeline) OnTick(fn func(now time.Time, status []Status)) {
	p.cbMu.Lock()
	defer p.cbMu.Unlock()
	p.callbacks = append(p.callbacks, fn)
}

// Tick processes all knobs once, in index order. A read failure on one
// input skips that input for this tick and leaves the others unaffected.
func (p *Pipeline) Tick(now time.Time) {
	p.mu.Lock()

	for i := range p.knobs {
		k := &p.knobs[i]
		st := &p.status[i]

		raw, err := p.dev.Read(i)
		if err != nil {
			// Transient fault: keep filter state, retry next tick.
			st.Faulted = true
			continue
		}

		k.observe(raw, p.alpha, p.rawMax)
		value := quantize(k.filtered, p.rawMax, p.outMax)

		if !k.primed || value != k.last {
			// last is updated whether or not the sink transmitted, so a
			// long not-ready stretch never replays stale intermediate
			// values once the sink comes back.
			p.sink.Emit(k.cc, value)
			k.last = value
			k.primed = true
		}

		*st = Status{
			Controller: k.cc,
			Raw:        raw,
			Filtered:   k.filtered,
			Value:      value,
		}
	}

	snapshot := make([]Status, len(p.status))
	copy(snapshot, p.status)
	p.mu.Unlock()

	p.cbMu.RLock()
	callbacks := p.callbacks
	p.cbMu.RUnlock()
	for _, fn := range callbacks {
		fn(now, snapshot)
	}
}

// Run drives the pipeline at the given period until the context is
// cancelled. Blocking - run in a goroutine. Ticks never overlap; a tick
// that runs long simply delays the next one.
func (p *Pipeline) Run(ctx context.Context, period time.Duration) {
	ticker := time.NewTicker(period)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			p.Tick(now)
		}
	}
}

// Statuses returns a copy of the latest per-knob snapshot.
func (p *Pipeline) Statuses() []Status {
	p.mu.RLock()
	defer p.mu.RUnlock()

	out := make([]Status, len(p.status))
	copy(out, p.status)
	return out
}
