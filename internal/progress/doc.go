// Package progress provides live progress reporting for a fetch run.
//
// The reporter runs on a fixed interval, independent of the workers, and
// reads the shared counters without synchronizing with in-flight attempts.
// It overwrites a single status line; in verbose mode the caller suppresses
// it entirely and logs per-attempt lines instead.
//
// # Output Format
//
//	[fetch] 1520/40000 | OK: 1412 | 404: 83 | Fail: 25 | 152/sec (141 dl/sec) | ETA: 4m 13s
//
// After the worker pool joins, [Summary] renders the final block with
// elapsed time, per-classification counts, total bytes, and both throughput
// figures.
package progress
