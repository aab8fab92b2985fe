//go:build integration

package fetch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	_ "gocloud.dev/blob/fileblob"

	fetchhttp "github.com/shaongitbd/Epstein-files-Downloader/internal/http"
	"github.com/shaongitbd/Epstein-files-Downloader/internal/plan"
	"github.com/shaongitbd/Epstein-files-Downloader/internal/store"
	"github.com/shaongitbd/Epstein-files-Downloader/internal/testutils"
)

func TestIntegrationEndToEnd(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	naming := plan.DefaultNaming()

	// ID 3 is intentionally absent so the run records one 404.
	ids := []int{1, 2, 4, 5, 6, 7, 8, 9, 10}
	docs := testutils.GenerateDocs(t, naming, ids, 4096)
	docsDir := testutils.WriteDocs(t, t.TempDir(), docs)

	t.Log("Starting nginx container...")
	nginx := testutils.StartNginxContainer(t, ctx, docsDir)
	defer nginx.Close(ctx)

	outDir := t.TempDir()
	st, err := store.Open(ctx, outDir)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer st.Close()

	client, err := fetchhttp.NewClient(fetchhttp.Options{Timeout: 30 * time.Second})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	run := func() *Counters {
		counters := &Counters{}
		runner := &Runner{
			Fetcher: NewFetcher(client, st),
			Policy: Policy{
				Attempts:       3,
				Backoff:        100 * time.Millisecond,
				MaxBackoff:     time.Second,
				RateLimitPause: 200 * time.Millisecond,
			},
			Workers:  4,
			Counters: counters,
		}
		existing := st.Existing(ctx, naming)
		jobs := plan.Outstanding(1, 10, existing, naming, nginx.BaseURL+"/", "")
		runner.Run(ctx, jobs)
		return counters
	}

	counters := run()
	if got := counters.Downloaded.Load(); got != 9 {
		t.Errorf("expected 9 downloaded, got %d", got)
	}
	if got := counters.Skipped.Load(); got != 1 {
		t.Errorf("expected 1 skipped (404), got %d", got)
	}
	if got := counters.Completed(); got != 10 {
		t.Errorf("expected 10 completed, got %d", got)
	}

	// Every fetched document landed as a plain nonzero file.
	for _, id := range ids {
		name := naming.Filename(id)
		info, err := os.Stat(filepath.Join(outDir, name))
		if err != nil {
			t.Fatalf("stat %s: %v", name, err)
		}
		if info.Size() != 4096 {
			t.Errorf("%s: expected 4096 bytes, got %d", name, info.Size())
		}
	}

	// A second run only re-attempts the missing ID: resumability comes
	// entirely from the directory contents.
	counters = run()
	if got := counters.Downloaded.Load(); got != 0 {
		t.Errorf("re-run must not re-download, got %d", got)
	}
	if got := counters.Skipped.Load(); got != 1 {
		t.Errorf("re-run should see the 404 again, got %d skipped", got)
	}
}

func TestIntegrationStaleCookie(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()
	naming := plan.DefaultNaming()
	docs := testutils.GenerateDocs(t, naming, []int{1, 2, 3}, 1024)

	server := testutils.StartGatedServer(t, docs, "ak_bmsc=fresh")
	defer server.Close()

	outDir := t.TempDir()
	st, err := store.Open(ctx, outDir)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer st.Close()

	client, err := fetchhttp.NewClient(fetchhttp.Options{
		Timeout: 10 * time.Second,
		Cookie:  "ak_bmsc=stale; justiceGovAgeVerified=true; QueueITAccepted-SDFrts345E-V3_usdojfiles=x",
	})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	counters := &Counters{}
	runner := &Runner{
		Fetcher:  NewFetcher(client, st),
		Policy:   Policy{Attempts: 3, Backoff: 10 * time.Millisecond, RateLimitPause: 10 * time.Millisecond},
		Workers:  2,
		Counters: counters,
	}
	jobs := plan.Outstanding(1, 3, nil, naming, server.URL+"/", "")
	runner.Run(ctx, jobs)

	if got := counters.AuthExpired.Load(); got != 3 {
		t.Errorf("expected every job to report auth-expired, got %d", got)
	}
	if got := counters.Downloaded.Load(); got != 0 {
		t.Errorf("stale cookie must not download anything, got %d", got)
	}

	// And with the fresh cookie the same jobs succeed.
	client, err = fetchhttp.NewClient(fetchhttp.Options{
		Timeout: 10 * time.Second,
		Cookie:  "ak_bmsc=fresh; justiceGovAgeVerified=true; QueueITAccepted-SDFrts345E-V3_usdojfiles=x",
	})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	counters = &Counters{}
	runner.Fetcher = NewFetcher(client, st)
	runner.Counters = counters
	runner.Run(ctx, jobs)

	if got := counters.Downloaded.Load(); got != 3 {
		t.Errorf("expected 3 downloads with fresh cookie, got %d", got)
	}
}
