package crawler

import (
	"fmt"

	"github.com/masahif/docskills/internal/storage"
)

// Stats are the crawl counters. Every discovered URL that leaves the
// frontier lands in exactly one of SkippedByRule, SkippedByPolicy, Failed or
// Written; Visited counts the fetched ones.
type Stats struct {
	Discovered      int64
	Visited         int64
	SkippedByRule   int64
	SkippedByPolicy int64
	Failed          int64
	Written         int64
}

// Skipped is the total of both skip buckets.
func (s Stats) Skipped() int64 {
	return s.SkippedByRule + s.SkippedByPolicy
}

// Summary is the one-line report printed after a crawl.
func (s Stats) Summary() string {
	return fmt.Sprintf("Crawl complete: %d discovered, %d visited, %d written, %d skipped (%d by rule, %d by policy), %d failed",
		s.Discovered, s.Visited, s.Written, s.Skipped(), s.SkippedByRule, s.SkippedByPolicy, s.Failed)
}

func (s Stats) counters() storage.Counters {
	return storage.Counters{
		Discovered:      s.Discovered,
		Visited:         s.Visited,
		SkippedByRule:   s.SkippedByRule,
		SkippedByPolicy: s.SkippedByPolicy,
		Failed:          s.Failed,
		Written:         s.Written,
	}
}

func statsFromCounters(c storage.Counters) Stats {
	return Stats{
		Discovered:      c.Discovered,
		Visited:         c.Visited,
		SkippedByRule:   c.SkippedByRule,
		SkippedByPolicy: c.SkippedByPolicy,
		Failed:          c.Failed,
		Written:         c.Written,
	}
}
