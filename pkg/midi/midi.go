// Package midi sends Control Change messages to a system MIDI out port.
//
// The sink contract is deliberately loss-tolerant: Emit never blocks and
// never fails. When no out port is connected the message is dropped and
// the caller proceeds, because an unconnected host is the normal state
// until a synth or DAW shows up.
package midi

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv" // Register MIDI driver
)

// Sink accepts discrete control events and transmits them when a
// downstream port is ready. Emit reports true when the event was sent and
// false when it was dropped.
type Sink interface {
	Emit(controller, value uint8) bool
	IsReady() bool
}

// Ensure Out implements Sink.
var _ Sink = (*Out)(nil)

// Ensure Recorder implements Sink.
var _ Sink = (*Recorder)(nil)

// Out is a Sink backed by a system MIDI out port.
type Out struct {
	portName string
	channel  uint8

	mu        sync.RWMutex
	port      drivers.Out
	send      func(gomidi.Message) error
	connected bool
}

// NewOut creates a sink for the out port whose name contains portName
// (case-insensitive). An empty portName selects the first available port.
// The sink starts unconnected; call Connect or run Watch.
func NewOut(portName string, channel uint8) *Out {
	return &Out{
		portName: portName,
		channel:  channel & 0x0F,
	}
}

// Connect finds and opens the configured out port.
func (o *Out) Connect() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.connected {
		return fmt.Errorf("already connected")
	}

	port, err := o.findPort()
	if err != nil {
		return err
	}

	send, err := gomidi.SendTo(port)
	if err != nil {
		return fmt.Errorf("failed to open MIDI out port %s: %w", port.String(), err)
	}

	o.port = port
	o.send = send
	o.connected = true

	return nil
}

func (o *Out) findPort() (drivers.Out, error) {
	outs := gomidi.GetOutPorts()
	if len(outs) == 0 {
		return nil, fmt.Errorf("no MIDI out ports available")
	}

	if o.portName == "" {
		return outs[0], nil
	}

	want := strings.ToLower(o.portName)
	for _, p := range outs {
		if strings.Contains(strings.ToLower(p.String()), want) {
			return p, nil
		}
	}

	return nil, fmt.Errorf("no MIDI out port matching %q", o.portName)
}

// Close closes the out port.
func (o *Out) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if !o.connected {
		return nil
	}

	o.connected = false
	o.send = nil

	if o.port != nil {
		if err := o.port.Close(); err != nil {
			o.port = nil
			return fmt.Errorf("failed to close MIDI out port: %w", err)
		}
		o.port = nil
	}

	return nil
}

// Emit sends a Control Change message on the configured channel. The wire
// message is the standard 3 bytes: 0xB0|channel, controller, value. When
// the port is not connected the event is silently dropped.
func (o *Out) Emit(controller, value uint8) bool {
	o.mu.RLock()
	send := o.send
	connected := o.connected
	o.mu.RUnlock()

	if !connected || send == nil {
		return false
	}

	if err := send(gomidi.ControlChange(o.channel, controller, value)); err != nil {
		log.Printf("MIDI send failed, dropping connection: %v", err)
		// The port went away; further emits drop until Watch reconnects.
		o.mu.Lock()
		o.connected = false
		o.send = nil
		o.mu.Unlock()
		return false
	}

	return true
}

// IsReady returns whether an out port is currently open.
func (o *Out) IsReady() bool {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.connected
}

// Watch polls for the configured out port and reconnects when it appears.
// Blocking - run in a goroutine.
func (o *Out) Watch(ctx context.Context, pollRate time.Duration) {
	if pollRate <= 0 {
		pollRate = 2 * time.Second
	}

	ticker := time.NewTicker(pollRate)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if o.IsReady() {
				continue
			}
			if err := o.Connect(); err == nil {
				log.Printf("MIDI out port connected: %s", o.PortName())
			}
		}
	}
}

// CloseDriver releases the underlying MIDI driver. Call once on
// application shutdown.
func CloseDriver() {
	gomidi.CloseDriver()
}

// PortName returns the name of the currently open port, or "" when not
// connected.
func (o *Out) PortName() string {
	o.mu.RLock()
	defer o.mu.RUnlock()
	if o.port == nil {
		return ""
	}
	return o.port.String()
}
