package fetch

import (
	"math/rand/v2"
	"time"
)

// Policy decides retry versus terminal outcome per attempt. It is a pure
// function of (outcome, attempt) apart from the jitter source.
type Policy struct {
	// Attempts is the total attempt budget per job.
	Attempts int

	// Backoff is the base delay for transient retries; the delay doubles
	// each attempt.
	Backoff time.Duration

	// MaxBackoff caps the transient delay. Zero means no cap.
	MaxBackoff time.Duration

	// RateLimitPause is the base cool-down after a 429. The delay grows by
	// one pause per attempt and carries jitter so workers that were
	// rate-limited together do not retry in lockstep.
	RateLimitPause time.Duration

	// Jitter overrides the jitter source for tests. Nil uses math/rand.
	Jitter func(max time.Duration) time.Duration
}

// Decision is the policy verdict for one attempt.
type Decision struct {
	Retry bool
	Delay time.Duration
}

// Decide returns the verdict after the given 1-based attempt ended in o.
// Success, Miss, and AuthExpired short-circuit regardless of remaining
// budget; RateLimited and Transient retry until the budget is spent.
func (p Policy) Decide(o Outcome, attempt int) Decision {
	switch o.Class {
	case Success, Miss, AuthExpired:
		return Decision{}
	}

	if attempt >= p.Attempts {
		return Decision{}
	}

	if o.Class == RateLimited {
		delay := time.Duration(attempt) * p.RateLimitPause
		return Decision{Retry: true, Delay: delay + p.jitter(p.RateLimitPause/2)}
	}
	return Decision{Retry: true, Delay: p.backoff(attempt)}
}

// backoff returns the delay after the given attempt, doubling each time.
func (p Policy) backoff(attempt int) time.Duration {
	delay := p.Backoff << uint(attempt-1)
	if p.MaxBackoff > 0 && delay > p.MaxBackoff {
		delay = p.MaxBackoff
	}
	return delay
}

func (p Policy) jitter(max time.Duration) time.Duration {
	if max <= 0 {
		return 0
	}
	if p.Jitter != nil {
		return p.Jitter(max)
	}
	return time.Duration(rand.Int64N(int64(max)))
}
