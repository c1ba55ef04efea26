package pots

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLine(t *testing.T) {
	tests := []struct {
		name    string
		line    string
		want    [NumInputs]uint16
		wantErr bool
	}{
		{
			name: "valid line",
			line: "1234567890123,2048,1024,4095",
			want: [NumInputs]uint16{2048, 1024, 4095},
		},
		{
			name: "all zeros",
			line: "1234567890123,0,0,0",
			want: [NumInputs]uint16{0, 0, 0},
		},
		{
			name:    "too few fields",
			line:    "1234567890123,2048,1024",
			wantErr: true,
		},
		{
			name:    "too many fields",
			line:    "1234567890123,2048,1024,4095,1",
			wantErr: true,
		},
		{
			name:    "reading out of range",
			line:    "1234567890123,4096,1024,0",
			wantErr: true,
		},
		{
			name:    "non-numeric reading",
			line:    "1234567890123,abc,1024,0",
			wantErr: true,
		},
		{
			name:    "non-numeric timestamp",
			line:    "xyz,2048,1024,0",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseLine(tt.line)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Raw)
		})
	}
}

func TestParseLine_Timestamp(t *testing.T) {
	got, err := parseLine("1700000000000000,1,2,3")
	require.NoError(t, err)
	assert.Equal(t, time.Unix(0, 1700000000000000*1000), got.Timestamp)
}

func TestSerialRead_NotConnected(t *testing.T) {
	d := New("/dev/null", 0)
	_, err := d.Read(0)
	assert.Error(t, err)
}

func TestSerialRead_InputRange(t *testing.T) {
	d := New("/dev/null", 0)
	_, err := d.Read(-1)
	assert.Error(t, err)
	_, err = d.Read(NumInputs)
	assert.Error(t, err)
}

func TestSerialRead_NoReadingYet(t *testing.T) {
	d := New("/dev/null", 0)
	d.mu.Lock()
	d.connected = true
	d.mu.Unlock()

	_, err := d.Read(0)
	assert.ErrorContains(t, err, "no reading received yet")
}

func TestSerialRead_Stale(t *testing.T) {
	now := time.Now()
	d := New("/dev/null", 0)
	d.now = func() time.Time { return now }

	d.mu.Lock()
	d.connected = true
	d.hasLatest = true
	d.latest = Reading{Raw: [NumInputs]uint16{100, 200, 300}}
	d.receivedAt = now
	d.mu.Unlock()

	v, err := d.Read(1)
	require.NoError(t, err)
	assert.Equal(t, uint16(200), v)

	// Advance the clock past the staleness threshold
	d.now = func() time.Time { return now.Add(DefaultStaleAfter + time.Millisecond) }
	_, err = d.Read(1)
	assert.ErrorContains(t, err, "stale")
}

func TestSerialReconnect_RenewsLifecycleContext(t *testing.T) {
	d := New("/dev/null", 0)

	// Simulate a session that was connected and then closed.
	d.mu.Lock()
	d.connected = true
	d.mu.Unlock()
	require.NoError(t, d.Close())
	require.Error(t, d.ctx.Err())

	// Opening /dev/null as a serial port fails, but the lifecycle
	// context must already be renewed so a successful reconnect would
	// not start its reader on a cancelled context.
	_ = d.Connect()
	assert.NoError(t, d.ctx.Err())
}

func TestSerialDefaultBaudRate(t *testing.T) {
	d := New("/dev/ttyACM0", 0)
	assert.Equal(t, DefaultBaudRate, d.baudRate)
}
