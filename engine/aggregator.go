package engine

import (
	"fmt"
	"log"
	"sort"
)

// ============================================================================
// AGGREGATOR — Scan, Merge, Rank
// ============================================================================
// Entry point: Aggregate(src, opts...)
//
// Pipeline:
//   1. Scan every partition the source exposes, in source order
//   2. Merge grouped rows into one map keyed by raw PC
//   3. Drop addresses below the minimum-branch threshold
//   4. Sort by misprediction count (desc), rank, cut to top N
//
// The merge map is request-scoped; nothing survives the call. Progress is
// reported through log.Printf and never affects the returned data.
// ============================================================================

// Aggregate scans all partitions of src and returns the top branch PCs
// ranked by misprediction count.
//
// Options:
//   - WithTopN(n) — number of records to return (default 20)
//   - WithMinBranches(n) — minimum aggregated outcome count (default 10)
//   - WithTickRange(start, end) — inclusive event-timestamp bound
//
// An empty source (no partitions, or only empty ones) yields an empty
// result and a nil error.
func Aggregate(src Source, opts ...Option) ([]BranchRecord, error) {
	cfg := applyOptions(opts)

	partitions, err := src.Partitions()
	if err != nil {
		return nil, fmt.Errorf("listing partitions: %w", err)
	}

	log.Printf("engine: scanning %d partitions", len(partitions))

	// Running totals per raw PC. StartAddr is overwritten on every
	// sighting, so the last partition scanned wins — same policy as the
	// trace producer relies on.
	type stats struct {
		startAddr    uint64
		total        int64
		mispredicted int64
	}
	merged := make(map[uint64]*stats)

	for _, part := range partitions {
		rows, err := src.Scan(part, cfg.Range)
		if err != nil {
			return nil, fmt.Errorf("scanning %s: %w", part, err)
		}
		for _, row := range rows {
			s, ok := merged[row.Addr]
			if !ok {
				s = &stats{}
				merged[row.Addr] = s
			}
			s.startAddr = row.StartAddr
			s.total += row.Total
			s.mispredicted += row.Mispredicted
		}
		log.Printf("engine: %s contributed %d grouped rows", part, len(rows))
	}

	if len(merged) == 0 {
		log.Printf("engine: no data found")
		return nil, nil
	}

	records := make([]BranchRecord, 0, len(merged))
	for addr, s := range merged {
		if s.total < cfg.MinBranches {
			continue
		}
		rate := 0.0
		if s.total > 0 {
			rate = float64(s.mispredicted) / float64(s.total)
		}
		records = append(records, BranchRecord{
			Addr:         addr,
			DisplayAddr:  addr << 1,
			StartAddr:    s.startAddr,
			Total:        s.total,
			Mispredicted: s.mispredicted,
			Rate:         rate,
		})
	}

	// Map iteration order is random; the Addr tiebreak keeps the output
	// deterministic for identical inputs.
	sort.Slice(records, func(i, j int) bool {
		if records[i].Mispredicted != records[j].Mispredicted {
			return records[i].Mispredicted > records[j].Mispredicted
		}
		return records[i].Addr < records[j].Addr
	})

	log.Printf("engine: %d distinct PCs, %d after min-branches filter", len(merged), len(records))
	if sum := Summarize(records); sum.Total > 0 {
		log.Printf("engine: overall misprediction rate %.2f%%", sum.OverallRate*100)
	}

	if len(records) > cfg.TopN {
		records = records[:cfg.TopN]
	}
	return records, nil
}
