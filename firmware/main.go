//go:build tinygo

//go:generate tinygo flash -target=xiao

package main

import (
	"machine"
	"time"
)

var (
	adcs [NUM_POTS]machine.ADC

	// ADC averaging - running sums and count
	sums  [NUM_POTS]uint32
	count int

	// Timing
	lastADCRead time.Time
)

func main() {
	// Configure ADC pins and set up ADCs with highest resolution
	adcConfig := machine.ADCConfig{
		Reference:  ADC_REFERENCE_MV,
		Resolution: ADC_RESOLUTION,
	}

	for i, pin := range potPins {
		pin.Configure(machine.PinConfig{Mode: machine.PinInput})
		adcs[i] = machine.ADC{Pin: pin}
		adcs[i].Configure(adcConfig)
	}

	machine.UART0.Configure(machine.UARTConfig{
		BaudRate: UART_BAUD_RATE,
	})

	lastADCRead = time.Now()

	// Main loop
	for {
		now := time.Now()

		// Read all pots at the same rate (every 1ms)
		if now.Sub(lastADCRead) >= time.Duration(SAMPLE_INTERVAL_MS)*time.Millisecond {
			readPots()
			lastADCRead = now
		}

		// Once N samples are collected, output and start over
		if count >= NUM_SAMPLES {
			outputAveragedValues()
			for i := range sums {
				sums[i] = 0
			}
			count = 0
		}

		// Small delay to prevent tight loop (but still allow precise timing)
		time.Sleep(100 * time.Microsecond)
	}
}

func readPots() {
	for i := range adcs {
		sums[i] += uint32(adcs[i].Get())
	}
	count++
}

func outputAveragedValues() {
	n := count
	if n > NUM_SAMPLES {
		n = NUM_SAMPLES
	}
	if n == 0 {
		n = 1 // Avoid division by zero
	}

	// Get timestamp in unix microseconds
	timestampMicros := time.Now().UnixNano() / 1000

	// Output format: "unix_micros,raw0,raw1,raw2\n"
	// Example: "1234567890123,2048,1024,4095\n"
	print(timestampMicros)
	for i := range sums {
		print(",")
		print(uint16(sums[i] / uint32(n)))
	}
	print("\n")
}
