package engine

// ============================================================================
// ENGINE TYPES — Branch Misprediction Aggregation
// ============================================================================
// BranchRecord is the render-ready output unit. Addresses are stored raw;
// every user-visible rendering shifts them left by one bit (the trace
// stores PC >> 1, so DisplayAddr is the full instruction address).
// ============================================================================

// BranchRecord is the aggregated outcome history of one branch PC.
type BranchRecord struct {
	Addr         uint64  `json:"addr"`         // raw PC as stored, the grouping key
	DisplayAddr  uint64  `json:"displayAddr"`  // Addr << 1, for presentation
	StartAddr    uint64  `json:"startAddr"`    // most recently observed start PC
	Total        int64   `json:"total"`        // branch outcomes across all partitions
	Mispredicted int64   `json:"mispredicted"` // mispredicted outcomes
	Rate         float64 `json:"rate"`         // Mispredicted/Total, 0 when Total is 0
}

// Row is one pre-grouped row from a source partition.
type Row struct {
	Addr         uint64
	StartAddr    uint64
	Total        int64
	Mispredicted int64
}

// TickRange bounds which trace events a scan considers, inclusive on both
// ends. The source applies it as a predicate on the event timestamp.
type TickRange struct {
	Start int64
	End   int64
}

// Source is a queryable store of trace partitions.
//
// Partitions returns the partitions present in the store, in a
// deterministic scan order. A store with zero partitions is valid.
// Scan returns rows pre-grouped by Addr; when tr is non-nil only events
// inside the range contribute to the grouped counts.
//
// The engine never opens or closes a Source — that lifecycle belongs to
// the caller.
type Source interface {
	Partitions() ([]string, error)
	Scan(partition string, tr *TickRange) ([]Row, error)
}

// ============================================================================
// SUMMARY — grand totals over a held result set
// ============================================================================

// Summary holds totals computed over exactly the records passed to
// Summarize, not the full unfiltered population.
type Summary struct {
	PCs          int     `json:"pcs"`
	Total        int64   `json:"total"`
	Mispredicted int64   `json:"mispredicted"`
	OverallRate  float64 `json:"overallRate"` // sum(mispred)/sum(total)
	MeanRate     float64 `json:"meanRate"`    // mean of per-record rates
}

// Summarize computes grand totals for a result set.
func Summarize(records []BranchRecord) Summary {
	s := Summary{PCs: len(records)}
	if len(records) == 0 {
		return s
	}
	var rateSum float64
	for _, r := range records {
		s.Total += r.Total
		s.Mispredicted += r.Mispredicted
		rateSum += r.Rate
	}
	if s.Total > 0 {
		s.OverallRate = float64(s.Mispredicted) / float64(s.Total)
	}
	s.MeanRate = rateSum / float64(len(records))
	return s
}
