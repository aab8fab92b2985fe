package fetch

import (
	"context"
	"sync"
	"time"

	"github.com/shaongitbd/Epstein-files-Downloader/internal/plan"
)

// Runner drains the planned jobs through a fixed pool of workers. Each job
// is consumed by exactly one worker and reaches exactly one terminal
// outcome.
type Runner struct {
	Fetcher  *Fetcher
	Policy   Policy
	Workers  int
	Counters *Counters

	// Log receives one line per attempt in verbose mode. Nil disables it.
	Log func(format string, args ...any)

	// Warn receives loud operator-facing signals (stale cookies) regardless
	// of verbosity. Nil disables it.
	Warn func(format string, args ...any)
}

// Run dispatches the jobs and blocks until every worker has drained and
// exited, so the counters are consistent when it returns. Cancelling ctx
// stops new dispatch and skips pending backoff sleeps; in-flight attempts
// finish.
func (r *Runner) Run(ctx context.Context, jobs []plan.Job) {
	workers := r.Workers
	if workers <= 0 {
		workers = 1
	}

	queue := make(chan plan.Job, workers*2)
	var wg sync.WaitGroup

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range queue {
				if ctx.Err() != nil {
					continue // drain without dispatching new attempts
				}
				r.process(ctx, job)
			}
		}()
	}

	go func() {
		defer close(queue)
		for _, job := range jobs {
			select {
			case queue <- job:
			case <-ctx.Done():
				return
			}
		}
	}()

	wg.Wait()
}

// process runs one job's attempt sequence to a terminal outcome.
func (r *Runner) process(ctx context.Context, job plan.Job) {
	var out Outcome
	for attempt := 1; ; attempt++ {
		out = r.Fetcher.Attempt(ctx, job)
		r.logAttempt(job, attempt, out)

		decision := r.Policy.Decide(out, attempt)
		if !decision.Retry {
			break
		}
		r.Counters.Retries.Add(1)
		if !sleep(ctx, decision.Delay) {
			break // cancelled during backoff; terminal with the last outcome
		}
	}
	r.record(job, out)
}

func (r *Runner) record(job plan.Job, out Outcome) {
	switch out.Class {
	case Success:
		r.Counters.Downloaded.Add(1)
		r.Counters.Bytes.Add(out.Bytes)
	case Miss:
		r.Counters.Skipped.Add(1)
	case AuthExpired:
		r.Counters.AuthExpired.Add(1)
		r.Counters.Failed.Add(1)
		if r.Warn != nil {
			r.Warn("[WARN] %s - redirect (%d), cookies may be expired", job.Filename, out.Status)
		}
	default:
		r.Counters.Failed.Add(1)
	}
}

func (r *Runner) logAttempt(job plan.Job, attempt int, out Outcome) {
	if r.Log == nil {
		return
	}
	switch out.Class {
	case Success:
		r.Log("[OK] %s - %d bytes", job.Filename, out.Bytes)
	case Miss:
		r.Log("[404] %s - not found", job.Filename)
	case RateLimited:
		r.Log("[429] %s - rate limited, attempt %d", job.Filename, attempt)
	case AuthExpired:
		r.Log("[AUTH] %s - redirect %d", job.Filename, out.Status)
	default:
		if out.Status != 0 {
			r.Log("[%d] %s - attempt %d", out.Status, job.Filename, attempt)
		} else {
			r.Log("[RETRY] %s - attempt %d: %v", job.Filename, attempt, out.Err)
		}
	}
}

// sleep waits for d unless ctx is cancelled first.
func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
