package midi

import (
	"testing"

	"github.com/stretchr/testify/assert"
	gomidi "gitlab.com/gomidi/midi/v2"
)

func TestControlChangeWireFormat(t *testing.T) {
	tests := []struct {
		name       string
		channel    uint8
		controller uint8
		value      uint8
		want       []byte
	}{
		{
			name:       "channel 0",
			channel:    0,
			controller: 1,
			value:      64,
			want:       []byte{0xB0, 1, 64},
		},
		{
			name:       "channel 5",
			channel:    5,
			controller: 3,
			value:      127,
			want:       []byte{0xB5, 3, 127},
		},
		{
			name:       "value zero",
			channel:    0,
			controller: 2,
			value:      0,
			want:       []byte{0xB0, 2, 0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := gomidi.ControlChange(tt.channel, tt.controller, tt.value)
			assert.Equal(t, tt.want, []byte(msg))
		})
	}
}

func TestOutEmit_NotConnected(t *testing.T) {
	o := NewOut("", 0)
	assert.False(t, o.IsReady())
	// Must drop, not block or panic
	assert.False(t, o.Emit(1, 64))
	assert.Equal(t, "", o.PortName())
}

func TestOutChannelMasked(t *testing.T) {
	o := NewOut("", 0xFF)
	assert.Equal(t, uint8(0x0F), o.channel)
}

func TestRecorder(t *testing.T) {
	r := NewRecorder()
	assert.True(t, r.IsReady())

	assert.True(t, r.Emit(1, 10))
	assert.True(t, r.Emit(2, 20))

	r.SetReady(false)
	assert.False(t, r.Emit(3, 30))
	assert.False(t, r.IsReady())

	r.SetReady(true)
	assert.True(t, r.Emit(3, 31))

	assert.Equal(t, []Event{{1, 10}, {2, 20}, {3, 31}}, r.Events())
	assert.Equal(t, 1, r.Dropped())
}
