package engine

// ============================================================================
// ENGINE OPTIONS — Functional options for Aggregate()
// ============================================================================

// Option configures an aggregation via the functional options pattern.
type Option func(*config)

type config struct {
	TopN        int        // number of records to return
	MinBranches int64      // drop addresses with fewer total outcomes
	Range       *TickRange // nil = unbounded
}

// WithTopN sets how many top records to return. Values below 1 keep the
// default of 20.
func WithTopN(n int) Option {
	return func(c *config) {
		if n >= 1 {
			c.TopN = n
		}
	}
}

// WithMinBranches sets the minimum aggregated outcome count an address
// needs to appear in the result. Negative values are treated as 0.
func WithMinBranches(n int64) Option {
	return func(c *config) {
		if n < 0 {
			n = 0
		}
		c.MinBranches = n
	}
}

// WithTickRange restricts the scan to events with start <= tick <= end.
func WithTickRange(start, end int64) Option {
	return func(c *config) {
		c.Range = &TickRange{Start: start, End: end}
	}
}

// applyOptions creates a config from functional options.
func applyOptions(opts []Option) *config {
	cfg := &config{
		TopN:        20,
		MinBranches: 10,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}
