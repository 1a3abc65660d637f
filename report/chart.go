package report

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"os"

	"github.com/wcharczuk/go-chart/v2"

	"github.com/TheKiteRunner24/tage-trace-analyzer/engine"
)

// ============================================================================
// CHART — stacked bar panels rendered to one PNG
// ============================================================================
// Three panels share the same per-PC x axis:
//   1. misprediction count
//   2. misprediction rate (%)
//   3. total branch count
// Each panel is rendered separately with go-chart and the PNGs are stacked
// vertically into a single image.
// ============================================================================

// ErrNoData is returned when there are no records to chart.
var ErrNoData = errors.New("no records to chart")

const (
	chartWidth       = 1200
	panelHeight      = 360
	maxBarLabelChars = 10
)

// RenderChart renders records as a three-panel PNG bar chart.
func RenderChart(records []engine.BranchRecord) ([]byte, error) {
	if len(records) == 0 {
		return nil, ErrNoData
	}

	mispred := make([]chart.Value, len(records))
	rate := make([]chart.Value, len(records))
	total := make([]chart.Value, len(records))
	for i, r := range records {
		label := barLabel(r.DisplayAddr)
		mispred[i] = chart.Value{Label: label, Value: float64(r.Mispredicted)}
		rate[i] = chart.Value{Label: label, Value: r.Rate * 100}
		total[i] = chart.Value{Label: label, Value: float64(r.Total)}
	}

	panels := make([]image.Image, 0, 3)
	for _, p := range []struct {
		title string
		bars  []chart.Value
	}{
		{"Mispredictions per PC", mispred},
		{"Misprediction Rate (%)", rate},
		{"Total Branches per PC", total},
	} {
		img, err := renderPanel(p.title, p.bars)
		if err != nil {
			return nil, fmt.Errorf("rendering %q panel: %w", p.title, err)
		}
		panels = append(panels, img)
	}

	return stackVertically(panels)
}

// SaveChart renders records and writes the PNG to path.
func SaveChart(path string, records []engine.BranchRecord) error {
	data, err := RenderChart(records)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

func renderPanel(title string, bars []chart.Value) (image.Image, error) {
	// An explicit y range keeps single-bar and all-equal panels renderable;
	// go-chart cannot derive a scale from a zero-delta range.
	max := 0.0
	for _, b := range bars {
		if b.Value > max {
			max = b.Value
		}
	}
	if max <= 0 {
		max = 1
	}

	graph := chart.BarChart{
		Title:    title,
		Width:    chartWidth,
		Height:   panelHeight,
		BarWidth: barWidth(len(bars)),
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 20, Right: 20, Bottom: 20},
		},
		YAxis: chart.YAxis{
			Range: &chart.ContinuousRange{Min: 0, Max: max * 1.1},
		},
		Bars: bars,
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, err
	}
	img, err := png.Decode(&buf)
	if err != nil {
		return nil, fmt.Errorf("decoding rendered panel: %w", err)
	}
	return img, nil
}

// barWidth scales bars down as the record count grows so the panel never
// overflows its fixed width.
func barWidth(n int) int {
	if n == 0 {
		return 1
	}
	w := (chartWidth - 100) / n
	if w > 60 {
		w = 60
	}
	if w < 4 {
		w = 4
	}
	return w
}

// barLabel formats an address for the x axis, truncated to keep dense
// charts readable.
func barLabel(displayAddr uint64) string {
	label := hexAddr(displayAddr)
	if len(label) > maxBarLabelChars {
		label = label[:maxBarLabelChars]
	}
	return label
}

// stackVertically composites the panel images top to bottom into one PNG.
func stackVertically(panels []image.Image) ([]byte, error) {
	width, height := 0, 0
	for _, p := range panels {
		b := p.Bounds()
		if b.Dx() > width {
			width = b.Dx()
		}
		height += b.Dy()
	}

	out := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(out, out.Bounds(), image.White, image.Point{}, draw.Src)

	y := 0
	for _, p := range panels {
		b := p.Bounds()
		dst := image.Rect(0, y, b.Dx(), y+b.Dy())
		draw.Draw(out, dst, p, b.Min, draw.Src)
		y += b.Dy()
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, out); err != nil {
		return nil, fmt.Errorf("encoding composite chart: %w", err)
	}
	return buf.Bytes(), nil
}
