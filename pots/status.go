package main

import (
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"github.com/itohio/gopots/pkg/knob"
)

// createKnobReadouts builds the per-knob readout row: a label and a bar
// showing the current CC value for each input.
func createKnobReadouts(state *appState) fyne.CanvasObject {
	cells := make([]fyne.CanvasObject, 0, len(state.cfg.MIDI.Controllers))

	for _, cc := range state.cfg.MIDI.Controllers {
		label := widget.NewLabel(fmt.Sprintf("CC%d: --", cc))
		bar := widget.NewProgressBar()
		bar.Min = 0
		bar.Max = float64(state.cfg.Sampling.OutputMax)
		bar.TextFormatter = func() string { return "" }

		state.valueLabels = append(state.valueLabels, label)
		state.valueBars = append(state.valueBars, bar)

		cells = append(cells, container.NewVBox(label, bar))
	}

	return container.NewGridWithColumns(len(cells), cells...)
}

// updateKnobReadouts refreshes the readout row from a tick snapshot.
// Must run on the main Fyne thread (call via fyne.Do).
func updateKnobReadouts(state *appState, status []knob.Status) {
	for i, st := range status {
		if i >= len(state.valueBars) {
			break
		}
		if st.Faulted {
			state.valueLabels[i].SetText(fmt.Sprintf("CC%d: --", st.Controller))
			continue
		}
		state.valueLabels[i].SetText(fmt.Sprintf("CC%d: %d", st.Controller, st.Value))
		state.valueBars[i].SetValue(float64(st.Value))
	}
}
