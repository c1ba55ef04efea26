package pots

// Device defines the interface for pot reader devices (real or mocked).
// Read returns the most recent raw 12-bit reading for the given input index.
type Device interface {
	Connect() error
	Close() error
	Read(input int) (uint16, error)
	IsConnected() bool
}

// Ensure Serial implements Device.
var _ Device = (*Serial)(nil)

// Ensure Mock implements Device.
var _ Device = (*Mock)(nil)
