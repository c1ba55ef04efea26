package scope

import (
	"image/color"
	"strconv"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"

	"github.com/itohio/gopots/pkg/knob"
	"github.com/itohio/gopots/pkg/trace"
)

// traceColors assigns a color per knob trace.
var traceColors = []color.RGBA{
	{R: 255, G: 165, B: 0, A: 255},   // Orange
	{R: 100, G: 200, B: 255, A: 255}, // Light blue
	{R: 120, G: 220, B: 120, A: 255}, // Green
}

// renderer renders the scope widget.
type renderer struct {
	scope *Widget

	// Background
	background *canvas.Rectangle

	// Objects list for Fyne
	objects []fyne.CanvasObject

	// Track last size to detect changes
	lastSize fyne.Size
}

func newRenderer(s *Widget) *renderer {
	background := canvas.NewRectangle(color.RGBA{R: 20, G: 20, B: 20, A: 255}) // Dark background
	return &renderer{
		scope:      s,
		background: background,
		objects:    []fyne.CanvasObject{background},
	}
}

// MinSize returns the minimum size of the widget.
func (r *renderer) MinSize() fyne.Size {
	return fyne.NewSize(400, 300)
}

// Layout arranges the widget components.
func (r *renderer) Layout(size fyne.Size) {
	r.background.Resize(size)

	if r.lastSize.Width != size.Width || r.lastSize.Height != size.Height {
		r.lastSize = size
		// Size changed, redraw with new dimensions
		r.scope.BaseWidget.Refresh()
	}
}

// Refresh updates the widget display.
func (r *renderer) Refresh() {
	r.scope.mu.RLock()
	display := r.scope.display
	status := r.scope.status
	ready := r.scope.ready
	xMin := r.scope.xMin
	xMax := r.scope.xMax
	rawMax := float32(r.scope.cfg.Sampling.RawMax)
	r.scope.mu.RUnlock()

	size := r.scope.Size()
	if size.Width == 0 || size.Height == 0 {
		return
	}

	// Rebuild object list (but keep background)
	r.objects = r.objects[:1]

	marginLeft := float32(55.0)
	marginRight := float32(15.0)
	marginTop := float32(15.0)
	marginBottom := float32(35.0)

	plotWidth := size.Width - marginLeft - marginRight
	plotHeight := size.Height - marginTop - marginBottom
	plotX := marginLeft
	plotY := marginTop

	r.drawGrid(plotX, plotY, plotWidth, plotHeight, rawMax, xMin, xMax)

	for i, tr := range display {
		if len(tr) > 1 {
			r.drawTrace(plotX, plotY, plotWidth, plotHeight, tr, rawMax, xMin, xMax, traceColor(i))
		}
	}

	r.drawReadouts(plotX, plotY, status, ready)
}

func traceColor(i int) color.RGBA {
	return traceColors[i%len(traceColors)]
}

// drawGrid draws the oscilloscope-style grid with raw-count and time labels.
func (r *renderer) drawGrid(plotX, plotY, plotWidth, plotHeight, rawMax float32, xMin, xMax time.Time) {
	gridColor := color.RGBA{R: 40, G: 40, B: 40, A: 255}
	labelColor := color.RGBA{R: 150, G: 150, B: 150, A: 255}

	// Horizontal grid lines (raw counts)
	numHLines := 8
	for i := 0; i <= numHLines; i++ {
		y := plotY + float32(i)*plotHeight/float32(numHLines)
		line := canvas.NewLine(gridColor)
		line.Position1 = fyne.NewPos(plotX, y)
		line.Position2 = fyne.NewPos(plotX+plotWidth, y)
		line.StrokeWidth = 1
		r.objects = append(r.objects, line)

		value := rawMax - float32(i)*rawMax/float32(numHLines)
		text := canvas.NewText(strconv.Itoa(int(value)), labelColor)
		text.TextSize = 10
		text.Alignment = fyne.TextAlignTrailing
		text.Move(fyne.NewPos(plotX-5, y-6))
		r.objects = append(r.objects, text)
	}

	// Vertical grid lines (time)
	numVLines := 10
	span := xMax.Sub(xMin)
	for i := 0; i <= numVLines; i++ {
		x := plotX + float32(i)*plotWidth/float32(numVLines)
		line := canvas.NewLine(gridColor)
		line.Position1 = fyne.NewPos(x, plotY)
		line.Position2 = fyne.NewPos(x, plotY+plotHeight)
		line.StrokeWidth = 1
		r.objects = append(r.objects, line)

		offset := time.Duration(float64(span) * float64(i) / float64(numVLines))
		text := canvas.NewText(formatOffset(offset-span), labelColor)
		text.TextSize = 10
		text.Alignment = fyne.TextAlignCenter
		text.Move(fyne.NewPos(x-15, plotY+plotHeight+5))
		r.objects = append(r.objects, text)
	}
}

// drawTrace draws one knob's smoothed signal as a polyline.
func (r *renderer) drawTrace(plotX, plotY, plotWidth, plotHeight float32, tr []trace.Point, rawMax float32, xMin, xMax time.Time, col color.RGBA) {
	span := xMax.Sub(xMin).Seconds()
	if span <= 0 {
		return
	}

	points := make([]fyne.Position, 0, len(tr))
	for _, pt := range tr {
		if pt.Timestamp.Before(xMin) {
			continue
		}
		x := plotX + float32(pt.Timestamp.Sub(xMin).Seconds()/span)*plotWidth
		y := plotY + plotHeight - pt.Filtered/rawMax*plotHeight
		points = append(points, fyne.NewPos(x, y))
	}

	for i := 0; i+1 < len(points); i++ {
		line := canvas.NewLine(col)
		line.Position1 = points[i]
		line.Position2 = points[i+1]
		line.StrokeWidth = 1.5
		r.objects = append(r.objects, line)
	}
}

// drawReadouts draws the per-knob CC value labels and the MIDI link state.
func (r *renderer) drawReadouts(plotX, plotY float32, status []knob.Status, ready bool) {
	x := plotX + 10
	for i, st := range status {
		label := "CC" + strconv.Itoa(int(st.Controller)) + ": " + strconv.Itoa(int(st.Value))
		if st.Faulted {
			label = "CC" + strconv.Itoa(int(st.Controller)) + ": --"
		}
		text := canvas.NewText(label, traceColor(i))
		text.TextSize = 12
		text.Move(fyne.NewPos(x, plotY+5))
		r.objects = append(r.objects, text)
		x += 75
	}

	link := "MIDI: not connected"
	linkColor := color.RGBA{R: 200, G: 80, B: 80, A: 255}
	if ready {
		link = "MIDI: connected"
		linkColor = color.RGBA{R: 120, G: 220, B: 120, A: 255}
	}
	text := canvas.NewText(link, linkColor)
	text.TextSize = 12
	text.Move(fyne.NewPos(x, plotY+5))
	r.objects = append(r.objects, text)
}

// Objects returns all canvas objects for rendering.
func (r *renderer) Objects() []fyne.CanvasObject {
	return r.objects
}

// Destroy cleans up resources.
func (r *renderer) Destroy() {
	// Cleanup handled by Fyne
}

func formatOffset(d time.Duration) string {
	secs := d.Seconds()
	return strconv.FormatFloat(secs, 'f', 1, 64) + "s"
}
