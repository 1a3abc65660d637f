package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/TheKiteRunner24/tage-trace-analyzer/engine"
)

// ============================================================================
// TEXT TABLE — fixed-width console output
// ============================================================================

// WriteTable prints records as an aligned text table followed by a summary
// block with the grand totals of the listed records.
func WriteTable(w io.Writer, records []engine.BranchRecord) error {
	if len(records) == 0 {
		_, err := fmt.Fprintln(w, "No branches matched. Try lowering the minimum branch count.")
		return err
	}

	rule := strings.Repeat("-", 78)
	fmt.Fprintf(w, "%-5s %-18s %-18s %12s %12s %8s\n",
		"Rank", "PC", "Start PC", "Count", "Mispred", "Rate")
	fmt.Fprintln(w, rule)

	for i, r := range records {
		fmt.Fprintf(w, "%-5d %-18s %-18s %12s %12s %7.2f%%\n",
			i+1,
			hexAddr(r.DisplayAddr),
			hexAddr(r.StartAddr<<1),
			humanize.Comma(r.Total),
			humanize.Comma(r.Mispredicted),
			r.Rate*100)
	}

	sum := engine.Summarize(records)
	fmt.Fprintln(w, rule)
	fmt.Fprintf(w, "PCs shown:            %s\n", humanize.Comma(int64(sum.PCs)))
	fmt.Fprintf(w, "Total branches:       %s\n", humanize.Comma(sum.Total))
	fmt.Fprintf(w, "Total mispredictions: %s\n", humanize.Comma(sum.Mispredicted))
	fmt.Fprintf(w, "Overall rate:         %.2f%%\n", sum.OverallRate*100)
	_, err := fmt.Fprintf(w, "Mean per-PC rate:     %.2f%%\n", sum.MeanRate*100)
	return err
}
