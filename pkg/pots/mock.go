package pots

import (
	"fmt"
	"sync"
	"time"

	"github.com/chewxy/math32"
	"github.com/itohio/gopots/pkg/config"
)

// Mock simulates a pot reader device for testing and development. Each
// input sweeps slowly between its extremes with a phase offset, plus a
// small deterministic noise term so the smoothing filter has work to do.
type Mock struct {
	cfg *config.MockConfig

	mu        sync.RWMutex
	connected bool
	startTime time.Time

	now func() time.Time
}

// NewMock creates a new mocked device instance.
func NewMock(cfg *config.MockConfig) *Mock {
	if cfg == nil {
		cfg = &config.MockConfig{
			NoiseLevel:  8,
			SweepPeriod: 10 * time.Second,
		}
	}

	return &Mock{
		cfg: cfg,
		now: time.Now,
	}
}

// Connect simulates connecting to the device.
func (m *Mock) Connect() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.connected {
		return fmt.Errorf("already connected")
	}

	m.connected = true
	m.startTime = m.now()

	return nil
}

// Close stops the mocked device.
func (m *Mock) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.connected = false
	return nil
}

// Read returns a simulated raw reading for the given input.
func (m *Mock) Read(input int) (uint16, error) {
	if input < 0 || input >= NumInputs {
		return 0, fmt.Errorf("input index out of range: %d", input)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	if !m.connected {
		return 0, fmt.Errorf("not connected")
	}

	elapsed := float32(m.now().Sub(m.startTime).Seconds())
	period := float32(m.cfg.SweepPeriod.Seconds())
	if period <= 0 {
		period = 10
	}

	// Slow sweep across the full range, phase-shifted per input so the
	// three traces are distinguishable on the scope.
	phase := 2 * math32.Pi * (elapsed/period + float32(input)/NumInputs)
	value := (math32.Sin(phase) + 1) / 2 * RawMax

	// Deterministic pseudo-noise, a few counts of ADC jitter
	noise := (math32.Sin(elapsed*97.0) + math32.Cos(elapsed*131.0)) *
		float32(m.cfg.NoiseLevel) * 0.5
	value += noise

	if value < 0 {
		value = 0
	} else if value > RawMax {
		value = RawMax
	}

	return uint16(value), nil
}

// IsConnected returns whether the device is currently connected.
func (m *Mock) IsConnected() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.connected
}
