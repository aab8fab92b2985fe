package fetch

import (
	"context"
	"fmt"
	"net/http"

	fetchhttp "github.com/shaongitbd/Epstein-files-Downloader/internal/http"
	"github.com/shaongitbd/Epstein-files-Downloader/internal/plan"
	"github.com/shaongitbd/Epstein-files-Downloader/internal/store"
)

// Class is the classification of a single attempt.
type Class int

const (
	Success Class = iota
	Miss
	RateLimited
	AuthExpired
	Transient
)

func (c Class) String() string {
	switch c {
	case Success:
		return "success"
	case Miss:
		return "miss"
	case RateLimited:
		return "rate-limited"
	case AuthExpired:
		return "auth-expired"
	case Transient:
		return "transient"
	default:
		return fmt.Sprintf("class(%d)", int(c))
	}
}

// Outcome is the result of one attempt.
type Outcome struct {
	Class  Class
	Status int   // HTTP status, 0 for network errors
	Bytes  int64 // body size on Success
	Err    error // underlying error for Transient
}

// Fetcher executes one attempt against the origin and classifies the result.
// Credentials are baked into the client at construction; refreshing them
// means constructing a new client, never mutating this one.
type Fetcher struct {
	client *fetchhttp.Client
	store  *store.Store
}

// NewFetcher returns a Fetcher using the shared client and output store.
func NewFetcher(client *fetchhttp.Client, st *store.Store) *Fetcher {
	return &Fetcher{client: client, store: st}
}

// Attempt performs a single GET for the job and classifies the response.
func (f *Fetcher) Attempt(ctx context.Context, job plan.Job) Outcome {
	resp, err := f.client.Get(ctx, job.URL)
	if err != nil {
		return Outcome{Class: Transient, Err: err}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		n, err := f.store.Write(ctx, job.Filename, resp.Body)
		if err != nil {
			// The partial object is already gone; the job is retryable.
			return Outcome{Class: Transient, Status: resp.StatusCode, Err: err}
		}
		return Outcome{Class: Success, Status: resp.StatusCode, Bytes: n}

	case resp.StatusCode == http.StatusNotFound:
		return Outcome{Class: Miss, Status: resp.StatusCode}

	case resp.StatusCode == http.StatusTooManyRequests:
		return Outcome{Class: RateLimited, Status: resp.StatusCode}

	case resp.StatusCode >= 300 && resp.StatusCode < 400:
		// The queue gate answers with a redirect when the session cookie has
		// gone stale; following it only leads back to the waiting room.
		return Outcome{Class: AuthExpired, Status: resp.StatusCode}

	default:
		return Outcome{
			Class:  Transient,
			Status: resp.StatusCode,
			Err:    fmt.Errorf("unexpected status %d %s", resp.StatusCode, resp.Status),
		}
	}
}
