package knob

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/itohio/gopots/pkg/config"
	"github.com/itohio/gopots/pkg/midi"
	"github.com/stretchr/testify/assert"
)

func TestPipelineRun_StopsOnCancel(t *testing.T) {
	dev := &stubDevice{values: [config.NumInputs]uint16{1000, 2000, 3000}}
	sink := midi.NewRecorder()
	p := New(config.Default(), dev, sink)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	go func() {
		defer close(done)
		p.Run(ctx, time.Millisecond)
	}()

	// Let it tick a few times.
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("pipeline did not stop after context cancel")
	}

	assert.NotEmpty(t, sink.Events())

	// No further ticks happen after Run returns.
	count := len(sink.Events())
	time.Sleep(20 * time.Millisecond)
	assert.Len(t, sink.Events(), count)
}

// A caller that waits for Run to return may release resources the tick
// callbacks still use, so cancellation must never cut a tick short: Run
// returns only between ticks, after the in-flight callbacks complete.
func TestPipelineRun_FinishesInFlightTick(t *testing.T) {
	dev := &stubDevice{values: [config.NumInputs]uint16{1000, 2000, 3000}}
	sink := midi.NewRecorder()
	p := New(config.Default(), dev, sink)

	var (
		started  sync.Once
		entered  = make(chan struct{})
		finished atomic.Bool
	)
	p.OnTick(func(time.Time, []Status) {
		started.Do(func() { close(entered) })
		finished.Store(false)
		time.Sleep(20 * time.Millisecond)
		finished.Store(true)
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		p.Run(ctx, time.Millisecond)
	}()

	// Cancel while a callback is known to be running.
	<-entered
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("pipeline did not stop after context cancel")
	}
	assert.True(t, finished.Load(), "Run returned while a tick callback was still executing")
}
