package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"net"
	"os"
	"strconv"
	"strings"

	"github.com/TheKiteRunner24/tage-trace-analyzer/engine"
	"github.com/TheKiteRunner24/tage-trace-analyzer/report"
	"github.com/TheKiteRunner24/tage-trace-analyzer/tracedb"
	"github.com/TheKiteRunner24/tage-trace-analyzer/web"
)

// ============================================================================
// TAGE TRACE ANALYZER CLI — Top mispredicting branch PCs from a trace DB
// ============================================================================

const version = "0.1.0"

func main() {
	// ── Flags ─────────────────────────────────────────────────────────────
	dbPath := flag.String("db", "", "Path to trace SQLite database (required)")
	topN := flag.Int("top", 20, "Number of top PCs to report")
	tickRange := flag.String("tick-range", "", "Inclusive tick window as start:end")
	minBranches := flag.Int64("min-branches", 10, "Minimum branch count for a PC to be reported")
	plot := flag.Bool("plot", false, "Render a PNG chart of the results")
	output := flag.String("output", "mispred_analysis.png", "Chart output path (with -plot)")
	csvPath := flag.String("csv", "", "Write results to a CSV file")
	serveWeb := flag.Bool("web", false, "Serve the web interface instead of printing")
	host := flag.String("host", "127.0.0.1", "Host to bind the web interface to")
	verbose := flag.Bool("verbose", false, "Print progress while scanning")
	showVersion := flag.Bool("version", false, "Print version and exit")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, `tage-trace-analyzer — top mispredicting branch PCs from a TAGE trace

Usage:
  tage-trace-analyzer -db trace.db
  tage-trace-analyzer -db trace.db -top 50 -min-branches 100
  tage-trace-analyzer -db trace.db -tick-range 1000000:2000000 -csv results.csv
  tage-trace-analyzer -db trace.db -plot -output charts.png
  tage-trace-analyzer -db trace.db -web

Flags:
`)
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Examples:
  # Console table of the 20 worst PCs
  tage-trace-analyzer -db trace.db

  # CSV of the 100 worst PCs inside a tick window
  tage-trace-analyzer -db trace.db -top 100 -tick-range 5000:90000 -csv out.csv

  # Browser interface on the first free port from 5000
  tage-trace-analyzer -db trace.db -web
`)
	}

	flag.Parse()

	if *showVersion {
		fmt.Printf("tage-trace-analyzer %s\n", version)
		os.Exit(0)
	}

	if *dbPath == "" {
		fmt.Fprintln(os.Stderr, "Error: -db is required")
		flag.Usage()
		os.Exit(1)
	}

	if !*verbose {
		log.SetOutput(io.Discard)
	}

	// ── Web mode ──────────────────────────────────────────────────────────
	if *serveWeb {
		if _, err := os.Stat(*dbPath); err != nil {
			fatalf("Trace database not found: %v", err)
		}
		port, err := findAvailablePort(*host, 5000)
		if err != nil {
			fatalf("No available port: %v", err)
		}
		addr := net.JoinHostPort(*host, strconv.Itoa(port))
		fmt.Printf("Serving at http://%s\n", addr)
		if err := web.New(*dbPath).Run(addr); err != nil {
			fatalf("Web server failed: %v", err)
		}
		return
	}

	// ── Analysis ──────────────────────────────────────────────────────────
	opts := []engine.Option{
		engine.WithTopN(*topN),
		engine.WithMinBranches(*minBranches),
	}
	if *tickRange != "" {
		if start, end, ok := parseTickRange(*tickRange); ok {
			opts = append(opts, engine.WithTickRange(start, end))
		} else {
			fmt.Fprintf(os.Stderr, "Warning: ignoring malformed tick range %q (want start:end)\n", *tickRange)
		}
	}

	store, err := tracedb.Open(*dbPath)
	if err != nil {
		fatalf("Failed to open trace database: %v", err)
	}
	defer store.Close()

	records, err := engine.Aggregate(store, opts...)
	if err != nil {
		fatalf("Analysis failed: %v", err)
	}

	// ── Output ────────────────────────────────────────────────────────────
	if err := report.WriteTable(os.Stdout, records); err != nil {
		fatalf("Failed to print results: %v", err)
	}

	if *csvPath != "" {
		if err := report.SaveCSV(*csvPath, records); err != nil {
			fatalf("Failed to write CSV: %v", err)
		}
		fmt.Printf("CSV written to %s\n", *csvPath)
	}

	if *plot {
		switch err := report.SaveChart(*output, records); {
		case errors.Is(err, report.ErrNoData):
			fmt.Fprintln(os.Stderr, "No chart written: nothing to plot")
		case err != nil:
			fatalf("Failed to write chart: %v", err)
		default:
			fmt.Printf("Chart written to %s\n", *output)
		}
	}
}

// ============================================================================
// HELPERS
// ============================================================================

// parseTickRange splits a start:end pair. Both halves must be integers with
// start <= end.
func parseTickRange(s string) (start, end int64, ok bool) {
	a, b, found := strings.Cut(s, ":")
	if !found {
		return 0, 0, false
	}
	start, err := strconv.ParseInt(a, 10, 64)
	if err != nil {
		return 0, 0, false
	}
	end, err = strconv.ParseInt(b, 10, 64)
	if err != nil || end < start {
		return 0, 0, false
	}
	return start, end, true
}

// findAvailablePort probes upward from base until a port accepts a listener.
func findAvailablePort(host string, base int) (int, error) {
	for port := base; port < base+100; port++ {
		l, err := net.Listen("tcp", net.JoinHostPort(host, strconv.Itoa(port)))
		if err != nil {
			continue
		}
		l.Close()
		return port, nil
	}
	return 0, fmt.Errorf("no free port in [%d, %d)", base, base+100)
}

func fatalf(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}
