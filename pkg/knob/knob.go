// Package knob implements the sampling pipeline that turns raw pot
// readings into MIDI Control Change values: exponential smoothing,
// quantization to the 7-bit MIDI range, and change-only emission.
package knob

import (
	"github.com/chewxy/math32"
)

// Knob holds the per-input filter state. Each knob owns its state
// exclusively; knobs never share mutable data.
type Knob struct {
	cc       uint8   // Control Change number used for outbound events
	filtered float32 // EMA accumulator, always within [0, rawMax]
	last     uint8   // Last value handed to the sink
	primed   bool    // False until the first value has been handed to the sink
}

// NewKnob creates a knob emitting on the given CC number. The first
// computed value is always emitted once, even if it is zero.
func NewKnob(cc uint8) Knob {
	return Knob{cc: cc}
}

// Controller returns the knob's CC number.
func (k *Knob) Controller() uint8 { return k.cc }

// Filtered returns the current smoothed value.
func (k *Knob) Filtered() float32 { return k.filtered }

// Last returns the last emitted value.
func (k *Knob) Last() uint8 { return k.last }

// observe folds a new raw reading into the EMA accumulator:
//
//	filtered = alpha*raw + (1-alpha)*filtered
//
// The raw reading is clamped to rawMax first, so a misbehaving source
// cannot push the accumulator out of range. With both operands in
// [0, rawMax] the update is a convex combination and stays in range.
func (k *Knob) observe(raw uint16, alpha, rawMax float32) {
	r := float32(raw)
	if r > rawMax {
		r = rawMax
	}
	k.filtered = alpha*r + (1-alpha)*k.filtered
}

// quantize maps a smoothed value in [0, rawMax] to an integer in
// [0, outMax]. Truncation rather than rounding keeps the mapping
// monotonic and matches the controller's stepwise feel; the clamp guards
// against float edge effects near full scale.
func quantize(filtered, rawMax, outMax float32) uint8 {
	v := math32.Floor(filtered / rawMax * outMax)
	if v < 0 {
		v = 0
	} else if v > outMax {
		v = outMax
	}
	return uint8(v)
}
