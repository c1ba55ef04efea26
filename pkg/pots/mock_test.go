package pots

import (
	"testing"
	"time"

	"github.com/itohio/gopots/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockConnectLifecycle(t *testing.T) {
	m := NewMock(nil)
	assert.False(t, m.IsConnected())

	require.NoError(t, m.Connect())
	assert.True(t, m.IsConnected())

	// Connecting twice should fail
	assert.Error(t, m.Connect())

	require.NoError(t, m.Close())
	assert.False(t, m.IsConnected())

	// Closing twice is fine
	require.NoError(t, m.Close())
}

func TestMockRead_NotConnected(t *testing.T) {
	m := NewMock(nil)
	_, err := m.Read(0)
	assert.Error(t, err)
}

func TestMockRead_Bounds(t *testing.T) {
	m := NewMock(&config.MockConfig{
		NoiseLevel:  100,
		SweepPeriod: time.Second,
	})
	require.NoError(t, m.Connect())
	defer m.Close()

	base := time.Now()
	for i := 0; i < 1000; i++ {
		m.now = func() time.Time { return base.Add(time.Duration(i) * 3 * time.Millisecond) }
		for input := 0; input < NumInputs; input++ {
			v, err := m.Read(input)
			require.NoError(t, err)
			assert.LessOrEqual(t, v, uint16(RawMax))
		}
	}
}

func TestMockRead_InputRange(t *testing.T) {
	m := NewMock(nil)
	require.NoError(t, m.Connect())
	defer m.Close()

	_, err := m.Read(NumInputs)
	assert.Error(t, err)
	_, err = m.Read(-1)
	assert.Error(t, err)
}

func TestMockRead_InputsDiffer(t *testing.T) {
	m := NewMock(&config.MockConfig{NoiseLevel: 0.001, SweepPeriod: 10 * time.Second})
	require.NoError(t, m.Connect())
	defer m.Close()

	base := time.Now()
	m.now = func() time.Time { return base.Add(time.Second) }

	v0, err := m.Read(0)
	require.NoError(t, err)
	v1, err := m.Read(1)
	require.NoError(t, err)

	// Phase-shifted sweeps should not coincide mid-sweep
	assert.NotEqual(t, v0, v1)
}
