package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv"
)

func main() {
	defer midi.CloseDriver()

	if len(os.Args) < 2 {
		usage()
		return
	}

	switch os.Args[1] {
	case "list":
		listPorts()
	case "sweep":
		name := ""
		if len(os.Args) > 2 {
			name = os.Args[2]
		}
		sweep(name)
	case "poll":
		pollDevices()
	default:
		usage()
	}
}

func usage() {
	fmt.Println("MIDI Test Scripts")
	fmt.Println("")
	fmt.Println("Commands:")
	fmt.Println("  list          - List all MIDI ports")
	fmt.Println("  sweep [name]  - Send a CC1 value ramp to a port (first port if no name)")
	fmt.Println("  poll          - Poll for device changes")
}

func listPorts() {
	fmt.Println("=== MIDI Input Ports ===")

	ins := midi.GetInPorts()
	outs := midi.GetOutPorts()

	for i, p := range ins {
		fmt.Printf("  %d: %s\n", i, p.String())
	}
	fmt.Println("\n=== MIDI Output Ports ===")
	for i, p := range outs {
		fmt.Printf("  %d: %s\n", i, p.String())
	}
}

// sweep ramps CC1 from 0 to 127 and back, roughly what a slow full turn
// of the first pot produces.
func sweep(name string) {
	outs := midi.GetOutPorts()
	var outPort drivers.Out
	for _, p := range outs {
		if name == "" || strings.Contains(strings.ToLower(p.String()), strings.ToLower(name)) {
			outPort = p
			break
		}
	}

	if outPort == nil {
		fmt.Println("No matching MIDI out port found")
		return
	}

	fmt.Printf("Using output: %s\n", outPort.String())

	send, err := midi.SendTo(outPort)
	if err != nil {
		fmt.Printf("Error opening port: %v\n", err)
		return
	}

	fmt.Println("Sweeping CC1 0 -> 127 -> 0...")
	for v := 0; v <= 127; v++ {
		send(midi.ControlChange(0, 1, uint8(v)))
		time.Sleep(10 * time.Millisecond)
	}
	for v := 127; v >= 0; v-- {
		send(midi.ControlChange(0, 1, uint8(v)))
		time.Sleep(10 * time.Millisecond)
	}

	fmt.Println("Done!")
}

func pollDevices() {
	fmt.Println("Polling for device changes every 2 seconds. Ctrl+C to exit.")

	lastIn := ""
	lastOut := ""

	for {
		ins := midi.GetInPorts()
		outs := midi.GetOutPorts()

		var inNames, outNames []string
		for _, p := range ins {
			inNames = append(inNames, p.String())
		}
		for _, p := range outs {
			outNames = append(outNames, p.String())
		}

		currentIn := strings.Join(inNames, ",")
		currentOut := strings.Join(outNames, ",")

		if currentIn != lastIn || currentOut != lastOut {
			fmt.Printf("\n[%s] Device change detected!\n", time.Now().Format("15:04:05"))
			fmt.Printf("  Inputs: %v\n", inNames)
			fmt.Printf("  Outputs: %v\n", outNames)

			lastIn = currentIn
			lastOut = currentOut
		}

		time.Sleep(2 * time.Second)
	}
}
