package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"github.com/itohio/gopots/pkg/config"
	"github.com/itohio/gopots/pkg/knob"
	"github.com/itohio/gopots/pkg/midi"
	"github.com/itohio/gopots/pkg/pots"
	"github.com/itohio/gopots/pkg/scope"
	"github.com/itohio/gopots/pkg/trace"
)

// traceWindow is how much signal history the scope keeps on screen.
const traceWindow = 10 * time.Second

func main() {
	var (
		portFlag   = flag.String("p", "", "Serial port override (e.g., COM3 or /dev/ttyACM0)")
		configFlag = flag.String("config", "config.yaml", "Configuration file path")
		mockFlag   = flag.Bool("mock", false, "Use mocked pots instead of a serial device")
	)
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configFlag)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Override serial port if provided via command line
	if *portFlag != "" {
		cfg.Serial.Port = *portFlag
	}

	// Create Fyne application
	application := app.NewWithID("com.itohio.gopots")

	window := application.NewWindow("MIDI Pots")
	window.Resize(fyne.NewSize(1000, 600))
	window.CenterOnScreen()

	// The MIDI sink lives for the whole application. It starts
	// unconnected and the watcher keeps trying; pot events are dropped
	// until an out port shows up, which is the expected state before a
	// synth or DAW is running.
	sink := midi.NewOut(cfg.MIDI.Port, cfg.MIDI.Channel)
	if err := sink.Connect(); err != nil {
		log.Printf("MIDI out not available yet: %v", err)
	} else {
		log.Printf("MIDI out port connected: %s", sink.PortName())
	}

	appCtx, appCancel := context.WithCancel(context.Background())
	go sink.Watch(appCtx, 2*time.Second)

	state := &appState{
		cfg:     cfg,
		sink:    sink,
		window:  window,
		useMock: *mockFlag,
	}

	toolbar := createToolbar(state)
	scopeWidget := scope.New(cfg, traceWindow)
	state.scopeWidget = scopeWidget
	readouts := createKnobReadouts(state)

	window.SetContent(container.NewBorder(
		toolbar,
		readouts,
		nil,
		nil,
		scopeWidget,
	))

	window.SetOnClosed(func() {
		handleDisconnect(state)
		appCancel()
		sink.Close()
		midi.CloseDriver()
	})

	window.ShowAndRun()
}

// appState holds the application state.
type appState struct {
	cfg         *config.Config
	device      pots.Device
	sink        *midi.Out
	pipeline    *knob.Pipeline
	recorder    *trace.Recorder
	scopeWidget *scope.Widget
	window      fyne.Window
	connectBtn  *widget.Button
	valueBars   []*widget.ProgressBar
	valueLabels []*widget.Label
	useMock     bool

	// Cancels the running pipeline and reports when its goroutine has
	// exited (both nil if not connected)
	stopPipeline context.CancelFunc
	pipelineDone chan struct{}

	// Throttling for scope updates
	lastUpdateTime time.Time
	updateMu       sync.Mutex
}

// createToolbar creates the application toolbar with the Connect button.
func createToolbar(state *appState) fyne.CanvasObject {
	connectBtn := widget.NewButtonWithIcon("", theme.LoginIcon(), func() {
		handleConnect(state)
	})
	state.connectBtn = connectBtn

	return container.NewBorder(
		nil, nil,
		container.NewHBox(connectBtn),
		nil,
		nil,
	)
}

// handleConnect handles the connect/disconnect button click.
func handleConnect(state *appState) {
	if state.device != nil && state.device.IsConnected() {
		handleDisconnect(state)
		if state.useMock {
			fmt.Println("Disconnected from mocked pots")
		} else {
			fmt.Println("Disconnected from serial port")
		}
		return
	}

	// Connect
	var device pots.Device
	if state.useMock {
		device = pots.NewMock(&state.cfg.Mock)
		fmt.Println("Using mocked pots")
	} else {
		device = pots.New(state.cfg.Serial.Port, state.cfg.Serial.BaudRate)
	}

	if err := device.Connect(); err != nil {
		if state.useMock {
			dialog.ShowError(fmt.Errorf("failed to connect to mocked pots: %w", err), state.window)
		} else {
			dialog.ShowError(fmt.Errorf("failed to connect to %s: %w", state.cfg.Serial.Port, err), state.window)
		}
		return
	}
	state.device = device
	if !state.useMock {
		fmt.Printf("Connected to serial port: %s\n", state.cfg.Serial.Port)
	}

	// Fresh pipeline and trace history per connection
	state.pipeline = knob.New(state.cfg, device, state.sink)
	state.recorder = trace.New(config.NumInputs, traceWindow)

	// Throttle scope redraws; the pipeline ticks much faster than the
	// display needs to repaint.
	const updateInterval = 33 * time.Millisecond // ~30 FPS

	// The callback runs on the pipeline goroutine. It must only touch
	// this connection's recorder through the local, never through
	// appState: handleDisconnect clears the field on the Fyne thread
	// while a tick may still be in flight.
	rec := state.recorder
	state.pipeline.OnTick(func(now time.Time, status []knob.Status) {
		rec.Add(now, status)

		state.updateMu.Lock()
		tooSoon := now.Sub(state.lastUpdateTime) < updateInterval
		if !tooSoon {
			state.lastUpdateTime = now
		}
		state.updateMu.Unlock()
		if tooSoon {
			return
		}

		traces := rec.Traces()
		ready := state.sink.IsReady()
		fyne.Do(func() {
			state.scopeWidget.UpdateData(traces, status, ready)
			updateKnobReadouts(state, status)
		})
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	state.stopPipeline = cancel
	state.pipelineDone = done
	go func() {
		defer close(done)
		state.pipeline.Run(ctx, state.cfg.Sampling.Period)
	}()
}

// handleDisconnect stops the pipeline and closes the device.
func handleDisconnect(state *appState) {
	if state.stopPipeline != nil {
		state.stopPipeline()
		state.stopPipeline = nil
	}
	// Wait for the last tick to finish before tearing the session down.
	if state.pipelineDone != nil {
		<-state.pipelineDone
		state.pipelineDone = nil
	}
	if state.device != nil {
		state.device.Close()
		state.device = nil
	}
	state.pipeline = nil
	state.recorder = nil
}
