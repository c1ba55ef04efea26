package trace

import (
	"testing"
	"time"

	"github.com/itohio/gopots/pkg/knob"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func statusesAt(filtered float32, value uint8) []knob.Status {
	return []knob.Status{
		{Controller: 1, Filtered: filtered, Value: value},
		{Controller: 2},
		{Controller: 3},
	}
}

func TestRecorderAdd(t *testing.T) {
	r := New(3, 10*time.Second)
	now := time.Now()

	r.Add(now, statusesAt(100, 3))
	r.Add(now.Add(10*time.Millisecond), statusesAt(200, 6))

	traces := r.Traces()
	require.Len(t, traces, 3)
	require.Len(t, traces[0], 2)
	assert.Equal(t, float32(100), traces[0][0].Filtered)
	assert.Equal(t, uint8(6), traces[0][1].Value)
	assert.Len(t, traces[1], 2)
}

func TestRecorderWindowTrim(t *testing.T) {
	r := New(1, time.Second)
	base := time.Now()

	for i := 0; i < 300; i++ {
		r.Add(base.Add(time.Duration(i)*10*time.Millisecond), []knob.Status{{Filtered: float32(i)}})
	}

	traces := r.Traces()
	require.Len(t, traces, 1)

	// 3 seconds of points at 10ms spacing trimmed to a 1s window.
	assert.LessOrEqual(t, len(traces[0]), 101)
	assert.Greater(t, len(traces[0]), 90)

	// Oldest first, all within the window of the newest point.
	newest := traces[0][len(traces[0])-1].Timestamp
	for i, pt := range traces[0] {
		assert.False(t, newest.Sub(pt.Timestamp) > time.Second, "point %d outside window", i)
		if i > 0 {
			assert.False(t, pt.Timestamp.Before(traces[0][i-1].Timestamp))
		}
	}
}

func TestRecorderIgnoresExtraStatuses(t *testing.T) {
	r := New(1, time.Second)
	r.Add(time.Now(), statusesAt(1, 1))

	traces := r.Traces()
	require.Len(t, traces, 1)
	assert.Len(t, traces[0], 1)
}

func TestDownsample(t *testing.T) {
	src := make([]Point, 1000)
	for i := range src {
		src[i].Filtered = float32(i)
	}

	got := Downsample(nil, src, 100)
	assert.Len(t, got, 100)
	assert.Equal(t, float32(0), got[0].Filtered)
	// Decimation keeps ordering
	for i := 1; i < len(got); i++ {
		assert.Greater(t, got[i].Filtered, got[i-1].Filtered)
	}
}

func TestDownsample_FewerThanMax(t *testing.T) {
	src := []Point{{Filtered: 1}, {Filtered: 2}}
	got := Downsample(nil, src, 100)
	assert.Equal(t, src, got)
}

func TestDownsample_ReusesDst(t *testing.T) {
	src := make([]Point, 500)
	dst := make([]Point, 0, 200)

	got := Downsample(dst, src, 200)
	assert.Len(t, got, 200)
	// Returned slice shares the backing array with dst
	assert.Equal(t, cap(dst), cap(got))
}
