// Package fetch executes the download run: one classified HTTP attempt per
// try, a bounded retry policy per job, and a fixed pool of workers draining
// a shared queue.
//
// # Outcome taxonomy
//
// Every attempt ends in exactly one classification:
//
//   - Success: 200, body streamed to the store
//   - Miss: 404, the document does not exist upstream; terminal, counted as skipped
//   - RateLimited: 429, retried after a longer, jittered cool-down
//   - AuthExpired: any redirect; the queue gate bounced the stale session
//     cookie, so retrying within the run is futile; terminal, counted as failed
//   - Transient: network errors, timeouts, unexpected statuses, and local
//     write failures; retried with increasing backoff
//
// # Per-job state machine
//
// A job moves Queued -> Attempting -> terminal. Success, Miss, and
// AuthExpired are immediately terminal; RateLimited and Transient retry
// until the attempt budget runs out, at which point the outcome of the final
// attempt is terminal. [Policy.Decide] is a pure function of (outcome,
// attempt) so the whole state machine is testable without a network.
//
// No job failure aborts the run; only terminal outcomes propagate, into
// [Counters].
package fetch
