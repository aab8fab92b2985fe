package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "gocloud.dev/blob/fileblob"
	_ "gocloud.dev/blob/gcsblob"
	_ "gocloud.dev/blob/s3blob"

	"github.com/shaongitbd/Epstein-files-Downloader/internal/config"
	"github.com/shaongitbd/Epstein-files-Downloader/internal/fetch"
	fetchhttp "github.com/shaongitbd/Epstein-files-Downloader/internal/http"
	"github.com/shaongitbd/Epstein-files-Downloader/internal/plan"
	"github.com/shaongitbd/Epstein-files-Downloader/internal/progress"
	"github.com/shaongitbd/Epstein-files-Downloader/internal/store"
)

// Exit codes
const (
	ExitSuccess            = 0
	ExitGeneralError       = 1
	ExitInvalidArgs        = 2
	ExitMissingCredentials = 3
	ExitStorageError       = 4
	ExitAuthExpired        = 5
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("fetch", flag.ExitOnError)

	configPath := fs.String("config", "", "YAML config file")
	dataset := fs.String("d", "", "Dataset path segment")
	start := fs.Int("s", 0, "Start file number")
	end := fs.Int("e", 0, "End file number")
	output := fs.String("o", "", "Output directory or bucket URL")
	workers := fs.Int("c", 0, "Concurrent downloads")
	verbose := fs.Bool("v", false, "Verbose output (one line per attempt)")
	rate := fs.Float64("rate", 0, "Max requests per second, 0 = unlimited")
	proxy := fs.String("proxy", "", "Outbound proxy URL")
	akBmsc := fs.String("ak", "", "ak_bmsc cookie value")
	ageVerified := fs.String("age", "", "justiceGovAgeVerified cookie value")
	queueIT := fs.String("queue", "", "QueueITAccepted cookie value")
	retryAttempts := fs.Int("retry-attempts", 0, "Attempt budget per file")
	retryBackoff := fs.Duration("retry-backoff", 0, "Base backoff between retries")
	retryMaxBackoff := fs.Duration("retry-max-backoff", 0, "Max backoff between retries")
	rateLimitPause := fs.Duration("rate-limit-pause", 0, "Base cool-down after a 429")

	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, `Usage: fetch [options]

Download a numbered range of DOJ documents into the output directory.
Already-present files with size > 0 are skipped, so interrupted runs
resume by re-invoking the same command.

Credentials come from flags, the DOJ_COOKIE_* environment variables, or a
.env file in the current, parent, or grandparent directory.

Options:`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return ExitInvalidArgs
	}

	if path := config.LoadDotenv(); path != "" {
		fmt.Fprintf(os.Stderr, "[fetch] Loaded .env from %s\n", path)
	}

	cfg := config.Default()
	if *configPath != "" {
		fileCfg, err := config.LoadFromFile(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return ExitInvalidArgs
		}
		cfg = fileCfg
	}
	if err := cfg.LoadFromEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitInvalidArgs
	}

	cfg = cfg.Merge(config.Config{
		Dataset:  *dataset,
		Start:    *start,
		End:      *end,
		Output:   *output,
		Workers:  *workers,
		Rate:     *rate,
		Verbose:  *verbose,
		ProxyURL: *proxy,
		Retry: config.RetryConfig{
			Attempts:       *retryAttempts,
			Backoff:        *retryBackoff,
			MaxBackoff:     *retryMaxBackoff,
			RateLimitPause: *rateLimitPause,
		},
		Credentials: config.Credentials{
			SessionCookie: *akBmsc,
			QueueCookie:   *queueIT,
			AgeVerified:   *ageVerified,
		},
	})

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitInvalidArgs
	}
	if err := cfg.Credentials.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		fmt.Fprintln(os.Stderr, "Set the cookies via flags or add them to .env.")
		return ExitMissingCredentials
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		fmt.Fprintln(os.Stderr, "\n[fetch] Received interrupt, letting in-flight downloads finish...")
		cancel()
	}()

	st, err := store.Open(ctx, cfg.Output)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitStorageError
	}
	defer st.Close()

	naming := plan.DefaultNaming()
	existing := st.Existing(ctx, naming)
	fmt.Fprintf(os.Stderr, "[fetch] Found %d existing files\n", len(existing))

	jobs := plan.Outstanding(cfg.Start, cfg.End, existing, naming, cfg.BaseURL, cfg.Dataset)
	if len(jobs) == 0 {
		fmt.Fprintln(os.Stderr, "[fetch] All files already downloaded")
		return ExitSuccess
	}

	fmt.Fprintln(os.Stderr, "========================================")
	fmt.Fprintln(os.Stderr, "DOJ Epstein Files Downloader")
	fmt.Fprintln(os.Stderr, "========================================")
	fmt.Fprintf(os.Stderr, "Dataset: %s\n", cfg.Dataset)
	fmt.Fprintf(os.Stderr, "Range: %s to %s\n", naming.Filename(cfg.Start), naming.Filename(cfg.End))
	fmt.Fprintf(os.Stderr, "Files to download: %d\n", len(jobs))
	fmt.Fprintf(os.Stderr, "Concurrency: %d\n", cfg.Workers)
	if cfg.Rate > 0 {
		fmt.Fprintf(os.Stderr, "Rate limit: %.0f req/sec\n", cfg.Rate)
	}
	fmt.Fprintf(os.Stderr, "Output: %s\n", cfg.Output)
	fmt.Fprintln(os.Stderr, "========================================")

	client, err := fetchhttp.NewClient(fetchhttp.Options{
		MaxIdleConnsPerHost: cfg.Workers * 2,
		Timeout:             cfg.Timeout,
		RatePerSec:          cfg.Rate,
		ProxyURL:            cfg.ProxyURL,
		Cookie:              cfg.Credentials.CookieHeader(),
		UserAgent:           cfg.Credentials.UserAgent,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitInvalidArgs
	}

	counters := &fetch.Counters{}
	runner := &fetch.Runner{
		Fetcher: fetch.NewFetcher(client, st),
		Policy: fetch.Policy{
			Attempts:       cfg.Retry.Attempts,
			Backoff:        cfg.Retry.Backoff,
			MaxBackoff:     cfg.Retry.MaxBackoff,
			RateLimitPause: cfg.Retry.RateLimitPause,
		},
		Workers:  cfg.Workers,
		Counters: counters,
		Warn: func(format string, args ...any) {
			fmt.Fprintf(os.Stderr, "\n"+format+"\n", args...)
		},
	}
	if cfg.Verbose {
		runner.Log = func(format string, args ...any) {
			fmt.Fprintf(os.Stderr, format+"\n", args...)
		}
	}

	var reporter *progress.Reporter
	if !cfg.Verbose {
		reporter = progress.NewReporter(progress.Options{
			Total:    len(jobs),
			Counters: counters,
		})
		reporter.Start()
	}

	startTime := time.Now()
	runner.Run(ctx, jobs)
	if reporter != nil {
		reporter.Stop()
	}

	progress.NewSummary(counters, time.Since(startTime)).Print(os.Stderr)

	if counters.AuthExpired.Load() > 0 {
		fmt.Fprintln(os.Stderr, "[fetch] Cookies have expired; refresh them and rerun to pick up the failures.")
		return ExitAuthExpired
	}
	if ctx.Err() != nil {
		fmt.Fprintln(os.Stderr, "[fetch] Interrupted; rerun to resume from the output directory.")
		return ExitGeneralError
	}
	return ExitSuccess
}
