package fetch

import "sync/atomic"

// Counters are the run-wide tallies. Workers increment them lock-free; the
// progress reporter reads snapshots without synchronizing with in-flight
// attempts. Counts are only guaranteed consistent with each other after the
// worker pool has joined.
type Counters struct {
	Downloaded  atomic.Int64
	Skipped     atomic.Int64 // 404s: expected absence, not an error
	Failed      atomic.Int64
	AuthExpired atomic.Int64 // subset of Failed, reported separately
	Bytes       atomic.Int64
	Retries     atomic.Int64
}

// Completed returns downloaded + failed + skipped.
func (c *Counters) Completed() int64 {
	return c.Downloaded.Load() + c.Failed.Load() + c.Skipped.Load()
}
