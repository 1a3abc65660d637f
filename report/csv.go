// Package report renders aggregated branch records as text tables, CSV
// files, and PNG charts.
//
// All user-facing addresses are printed shifted left by one bit, matching
// the convention of the simulator that produced the trace. The raw values
// held by the records are never modified.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"github.com/TheKiteRunner24/tage-trace-analyzer/engine"
)

// csvHeader is the fixed column layout of exported CSV files.
var csvHeader = []string{"Rank", "PC", "Start PC", "Count", "Mispred Count", "Mispred Rate (%)"}

// WriteCSV writes records to w as CSV, one row per record plus a header.
func WriteCSV(w io.Writer, records []engine.BranchRecord) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("writing csv header: %w", err)
	}
	for i, r := range records {
		row := []string{
			fmt.Sprintf("%d", i+1),
			hexAddr(r.DisplayAddr),
			hexAddr(r.StartAddr << 1),
			fmt.Sprintf("%d", r.Total),
			fmt.Sprintf("%d", r.Mispredicted),
			fmt.Sprintf("%.2f", r.Rate*100),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing csv row %d: %w", i+1, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// SaveCSV writes records to a CSV file at path.
func SaveCSV(path string, records []engine.BranchRecord) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := WriteCSV(f, records); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// hexAddr formats a display address the way the trace tooling prints PCs.
func hexAddr(addr uint64) string {
	return fmt.Sprintf("0x%x", addr)
}
