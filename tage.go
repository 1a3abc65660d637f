// Package tage provides an offline analyzer for TAGE branch-prediction
// traces stored in SQLite.
//
// Usage:
//
//	import (
//	    "github.com/TheKiteRunner24/tage-trace-analyzer/engine"
//	    "github.com/TheKiteRunner24/tage-trace-analyzer/tracedb"
//	)
//
//	store, err := tracedb.Open("trace.db")
//	defer store.Close()
//
//	records, err := engine.Aggregate(store,
//	    engine.WithTopN(20),
//	    engine.WithMinBranches(10),
//	)
//
// The engine scans every CondTrace partition the store exposes, merges
// per-PC outcome counts, and returns the worst offenders ranked by
// misprediction count. Rendering (table, CSV, chart, web page) is handled
// by the report and web packages — the engine never formats or serves
// anything itself.
package tage
