package report

import (
	"bytes"
	"errors"
	"image/png"
	"testing"

	"github.com/TheKiteRunner24/tage-trace-analyzer/engine"
)

func TestRenderChart(t *testing.T) {
	records := []engine.BranchRecord{
		{DisplayAddr: 0x8, Total: 200, Mispredicted: 20, Rate: 0.10},
		{DisplayAddr: 0x20, Total: 100, Mispredicted: 30, Rate: 0.30},
		{DisplayAddr: 0x40, Total: 500, Mispredicted: 5, Rate: 0.01},
	}

	data, err := RenderChart(records)
	if err != nil {
		t.Fatalf("RenderChart failed: %v", err)
	}

	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("output is not decodable PNG: %v", err)
	}
	b := img.Bounds()
	if b.Dx() != chartWidth {
		t.Errorf("chart width = %d, want %d", b.Dx(), chartWidth)
	}
	if b.Dy() != 3*panelHeight {
		t.Errorf("chart height = %d, want %d (three panels)", b.Dy(), 3*panelHeight)
	}
}

func TestRenderChartNoData(t *testing.T) {
	if _, err := RenderChart(nil); !errors.Is(err, ErrNoData) {
		t.Fatalf("RenderChart(nil) error = %v, want ErrNoData", err)
	}
}

func TestBarLabelTruncation(t *testing.T) {
	if got := barLabel(0x8); got != "0x8" {
		t.Errorf("barLabel(0x8) = %q, want 0x8", got)
	}
	long := barLabel(0xffffffffffffffff)
	if len(long) != maxBarLabelChars {
		t.Errorf("long label %q has %d chars, want %d", long, len(long), maxBarLabelChars)
	}
}
