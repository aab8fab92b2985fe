package progress

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/shaongitbd/Epstein-files-Downloader/internal/fetch"
)

// Options configures the progress reporter.
type Options struct {
	// Total is the number of jobs in this run.
	Total int

	// Counters are the shared run tallies, read lock-free.
	Counters *fetch.Counters

	// Output is where to write progress output.
	// Default: os.Stderr
	Output io.Writer

	// UpdateInterval is how often to redraw the status line.
	// Default: 1s
	UpdateInterval time.Duration
}

// Reporter overwrites a single status line on a fixed interval.
type Reporter struct {
	opts      Options
	startTime time.Time
	stopCh    chan struct{}
	doneCh    chan struct{}

	mu      sync.Mutex
	stopped bool
}

// NewReporter creates a progress reporter.
func NewReporter(opts Options) *Reporter {
	if opts.Output == nil {
		opts.Output = os.Stderr
	}
	if opts.UpdateInterval == 0 {
		opts.UpdateInterval = time.Second
	}

	return &Reporter{
		opts:   opts,
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
	}
}

// Start begins redrawing the status line.
func (r *Reporter) Start() {
	r.startTime = time.Now()
	go r.updateLoop()
}

// Stop halts the reporter and terminates the status line. Safe to call more
// than once.
func (r *Reporter) Stop() {
	r.mu.Lock()
	if r.stopped {
		r.mu.Unlock()
		return
	}
	r.stopped = true
	r.mu.Unlock()

	close(r.stopCh)
	<-r.doneCh
}

func (r *Reporter) updateLoop() {
	defer close(r.doneCh)

	ticker := time.NewTicker(r.opts.UpdateInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.stopCh:
			r.printLine()
			fmt.Fprintln(r.opts.Output)
			return
		case <-ticker.C:
			r.printLine()
		}
	}
}

// printLine renders one snapshot of the counters. The reads are lock-free;
// the figures are only guaranteed mutually consistent after the pool joins.
func (r *Reporter) printLine() {
	c := r.opts.Counters
	downloaded := c.Downloaded.Load()
	failed := c.Failed.Load()
	skipped := c.Skipped.Load()
	completed := downloaded + failed + skipped

	elapsed := time.Since(r.startTime).Seconds()
	if elapsed <= 0 {
		elapsed = 0.001
	}
	totalSpeed := float64(completed) / elapsed
	downloadSpeed := float64(downloaded) / elapsed

	eta := "calculating..."
	if totalSpeed > 0 {
		remaining := float64(int64(r.opts.Total) - completed)
		if remaining < 0 {
			remaining = 0
		}
		eta = FormatDuration(time.Duration(remaining / totalSpeed * float64(time.Second)))
	}

	fmt.Fprintf(r.opts.Output, "\r[fetch] %d/%d | OK: %d | 404: %d | Fail: %d | %.0f/sec (%.0f dl/sec) | ETA: %s    ",
		completed,
		r.opts.Total,
		downloaded,
		skipped,
		failed,
		totalSpeed,
		downloadSpeed,
		eta,
	)
}

// Summary is the final run report, built from joined counters.
type Summary struct {
	Elapsed     time.Duration
	Downloaded  int64
	Skipped     int64
	Failed      int64
	AuthExpired int64
	Retries     int64
	Bytes       int64
}

// NewSummary snapshots the counters. Call only after the worker pool has
// joined.
func NewSummary(c *fetch.Counters, elapsed time.Duration) Summary {
	return Summary{
		Elapsed:     elapsed,
		Downloaded:  c.Downloaded.Load(),
		Skipped:     c.Skipped.Load(),
		Failed:      c.Failed.Load(),
		AuthExpired: c.AuthExpired.Load(),
		Retries:     c.Retries.Load(),
		Bytes:       c.Bytes.Load(),
	}
}

// Print writes the final summary block. Failures are never suppressed, and
// auth-expired counts are called out separately from ordinary failures so
// the operator knows whether to refresh credentials or simply rerun.
func (s Summary) Print(w io.Writer) {
	completed := s.Downloaded + s.Failed + s.Skipped
	seconds := s.Elapsed.Seconds()

	fmt.Fprintln(w, "========================================")
	fmt.Fprintln(w, "DOWNLOAD COMPLETE")
	fmt.Fprintln(w, "========================================")
	fmt.Fprintf(w, "Time: %v\n", s.Elapsed.Round(time.Second))
	fmt.Fprintf(w, "Downloaded: %d\n", s.Downloaded)
	fmt.Fprintf(w, "Not found (404): %d\n", s.Skipped)
	fmt.Fprintf(w, "Failed: %d\n", s.Failed)
	if s.AuthExpired > 0 {
		fmt.Fprintf(w, "Auth expired: %d (refresh cookies and rerun)\n", s.AuthExpired)
	}
	if s.Retries > 0 {
		fmt.Fprintf(w, "Retries: %d\n", s.Retries)
	}
	fmt.Fprintf(w, "Total size: %s\n", FormatBytes(s.Bytes))
	if seconds > 0 {
		fmt.Fprintf(w, "Speed: %.1f files/sec (%.1f dl/sec)\n",
			float64(completed)/seconds,
			float64(s.Downloaded)/seconds)
	}
}

// FormatBytes formats bytes as a human-readable string.
func FormatBytes(b int64) string {
	const (
		KB = 1024
		MB = KB * 1024
		GB = MB * 1024
		TB = GB * 1024
	)

	switch {
	case b >= TB:
		return fmt.Sprintf("%.2f TB", float64(b)/float64(TB))
	case b >= GB:
		return fmt.Sprintf("%.2f GB", float64(b)/float64(GB))
	case b >= MB:
		return fmt.Sprintf("%.2f MB", float64(b)/float64(MB))
	case b >= KB:
		return fmt.Sprintf("%.2f KB", float64(b)/float64(KB))
	default:
		return fmt.Sprintf("%d B", b)
	}
}

// FormatDuration formats a duration as a human-readable string.
func FormatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%.0fs", d.Seconds())
	}
	if d < time.Hour {
		m := int(d.Minutes())
		s := int(d.Seconds()) % 60
		return fmt.Sprintf("%dm %ds", m, s)
	}
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%dh %dm %ds", h, m, s)
}
