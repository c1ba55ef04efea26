package pots

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.bug.st/serial"
)

const (
	// DefaultBaudRate is the standard baud rate for the pot reader MCU.
	DefaultBaudRate = 115200
	// NumInputs is the number of pot readings carried per line.
	NumInputs = 3
	// RawMax is the full-scale 12-bit ADC reading.
	RawMax = 4095
	// DefaultStaleAfter is how old the latest reading may be before Read
	// reports a fault. The MCU streams at 100 Hz, so anything older than
	// this means the link or the sampler has stopped.
	DefaultStaleAfter = 500 * time.Millisecond
)

// Reading holds one parsed line from the MCU: a timestamp and one raw
// value per pot.
type Reading struct {
	Timestamp time.Time
	Raw       [NumInputs]uint16
}

// Port represents a serial port.
type Port struct {
	Name        string
	Description string
}

// Serial reads pot values streamed by the MCU over a serial port.
type Serial struct {
	port     string
	baudRate int

	conn      serial.Port
	mu        sync.RWMutex
	ctx       context.Context
	cancel    context.CancelFunc
	connected bool

	latest     Reading
	receivedAt time.Time
	hasLatest  bool

	now        func() time.Time
	staleAfter time.Duration
}

// New creates a new Serial device for the given port and baud rate.
func New(port string, baudRate int) *Serial {
	if baudRate == 0 {
		baudRate = DefaultBaudRate
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Serial{
		port:       port,
		baudRate:   baudRate,
		ctx:        ctx,
		cancel:     cancel,
		connected:  false,
		now:        time.Now,
		staleAfter: DefaultStaleAfter,
	}
}

// Ports returns a list of available serial ports.
func Ports() ([]Port, error) {
	ports, err := serial.GetPortsList()
	if err != nil {
		return nil, fmt.Errorf("failed to list serial ports: %w", err)
	}

	result := make([]Port, 0, len(ports))
	for _, name := range ports {
		result = append(result, Port{
			Name:        name,
			Description: name,
		})
	}

	return result, nil
}

// Connect opens the serial port and starts reading pot values.
func (d *Serial) Connect() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.connected {
		return fmt.Errorf("already connected")
	}

	// Renew the lifecycle context: Close cancelled the previous one, and
	// the reader of this session must not inherit it.
	d.ctx, d.cancel = context.WithCancel(context.Background())

	mode := &serial.Mode{
		BaudRate: d.baudRate,
	}

	port, err := serial.Open(d.port, mode)
	if err != nil {
		return fmt.Errorf("failed to open serial port %s: %w", d.port, err)
	}

	d.conn = port
	d.connected = true
	d.hasLatest = false

	// Start reading lines in a goroutine
	go d.readLines()

	return nil
}

// Close closes the connection and stops reading.
func (d *Serial) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.connected {
		return nil
	}

	// Cancel context to stop reading goroutine
	d.cancel()

	if d.conn != nil {
		if err := d.conn.Close(); err != nil {
			log.Printf("Error closing serial port: %v", err)
		}
		d.conn = nil
	}

	d.connected = false

	return nil
}

// Read returns the most recent raw reading for the given input. It fails
// when the device is disconnected, no line has arrived yet, or the latest
// line is stale.
func (d *Serial) Read(input int) (uint16, error) {
	if input < 0 || input >= NumInputs {
		return 0, fmt.Errorf("input index out of range: %d", input)
	}

	d.mu.RLock()
	defer d.mu.RUnlock()

	if !d.connected {
		return 0, fmt.Errorf("not connected")
	}
	if !d.hasLatest {
		return 0, fmt.Errorf("no reading received yet")
	}
	// Staleness is judged by host arrival time, not the MCU timestamp,
	// since the two clocks are not synchronized.
	if age := d.now().Sub(d.receivedAt); age > d.staleAfter {
		return 0, fmt.Errorf("latest reading is stale (%v old)", age)
	}

	return d.latest.Raw[input], nil
}

// IsConnected returns whether the device is currently connected.
func (d *Serial) IsConnected() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.connected
}

// readLines reads lines from the serial port and stores the latest reading.
func (d *Serial) readLines() {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Panic in readLines: %v", r)
		}
	}()

	scanner := bufio.NewScanner(d.conn)
	for {
		select {
		case <-d.ctx.Done():
			return
		default:
			if !scanner.Scan() {
				// Scanner stopped (EOF or error)
				if err := scanner.Err(); err != nil && err != io.EOF {
					log.Printf("Error reading from serial port: %v", err)
				}
				return
			}

			line := strings.TrimSpace(scanner.Text())
			if line == "" {
				continue
			}

			reading, err := parseLine(line)
			if err != nil {
				log.Printf("Failed to parse line '%s': %v", line, err)
				continue
			}

			d.mu.Lock()
			d.latest = reading
			d.receivedAt = d.now()
			d.hasLatest = true
			d.mu.Unlock()
		}
	}
}

// parseLine parses a line from the MCU into a Reading.
// Format: unix_micros,raw0,raw1,raw2
// Example: 1234567890123,2048,1024,4095
func parseLine(line string) (Reading, error) {
	parts := strings.Split(line, ",")
	if len(parts) != NumInputs+1 {
		return Reading{}, fmt.Errorf("invalid line format: expected %d comma-separated values, got %d", NumInputs+1, len(parts))
	}

	// Parse timestamp (unix microseconds)
	timestampMicros, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return Reading{}, fmt.Errorf("invalid timestamp: %w", err)
	}

	reading := Reading{
		Timestamp: time.Unix(0, timestampMicros*1000), // Convert microseconds to nanoseconds
	}

	for i := 0; i < NumInputs; i++ {
		raw, err := strconv.ParseUint(parts[i+1], 10, 16)
		if err != nil {
			return Reading{}, fmt.Errorf("invalid reading for input %d: %w", i, err)
		}
		if raw > RawMax {
			return Reading{}, fmt.Errorf("reading for input %d out of range: %d (max %d)", i, raw, RawMax)
		}
		reading.Raw[i] = uint16(raw)
	}

	return reading, nil
}
