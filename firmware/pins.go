//go:build tinygo

package main

import "machine"

const (
	// Sampling configuration
	NUM_POTS           = 3  // Number of potentiometer inputs
	SAMPLE_INTERVAL_MS = 1  // ADC read interval in milliseconds
	NUM_SAMPLES        = 10 // Number of samples to average per output line

	// ADC configuration
	ADC_REFERENCE_MV = 3300 // Reference voltage in millivolts (3.3V)
	ADC_RESOLUTION   = 12   // ADC resolution in bits (12-bit = 0-4095)

	// Serial configuration
	// Format "unix_micros,raw0,raw1,raw2\n" = ~35 bytes max per line
	// 100 outputs/sec * 35 bytes/line = 3,500 bytes/sec
	// UART 8N1: 10 bits/byte = 35,000 baud minimum.
	// 115200 provides ~3.3x headroom.
	UART_BAUD_RATE = 115200
)

// Pot ADC pins
var potPins = [NUM_POTS]machine.Pin{machine.A0, machine.A1, machine.A2}
