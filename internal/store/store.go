package store

import (
	"context"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"strings"

	"gocloud.dev/blob"

	"github.com/shaongitbd/Epstein-files-Downloader/internal/plan"
)

// Store wraps a blob bucket holding the downloaded documents.
type Store struct {
	bucket *blob.Bucket
	owned  bool
}

// Open opens the output destination. A plain path is treated as a local
// directory, created if absent. Bucket URLs pass through unchanged.
func Open(ctx context.Context, urlstr string) (*Store, error) {
	bucket, err := blob.OpenBucket(ctx, ResolveURL(urlstr))
	if err != nil {
		return nil, fmt.Errorf("open output bucket: %w", err)
	}
	return &Store{bucket: bucket, owned: true}, nil
}

// New wraps an already-open bucket. The caller retains ownership.
func New(bucket *blob.Bucket) *Store {
	return &Store{bucket: bucket}
}

// ResolveURL converts a plain directory path into a file bucket URL.
// metadata=skip keeps the driver from writing sidecar files next to the
// downloads, so the directory holds nothing but the documents themselves.
func ResolveURL(urlstr string) string {
	if strings.Contains(urlstr, "://") {
		return urlstr
	}
	abs, err := filepath.Abs(urlstr)
	if err != nil {
		abs = urlstr
	}
	return "file://" + filepath.ToSlash(abs) + "?create_dir=1&metadata=skip"
}

// Existing lists the store once and returns the IDs present with size > 0.
// Zero-size objects are partial writes from a crashed run and are treated as
// not downloaded. If the listing fails the run degrades to fresh: an empty
// set, never an error.
func (s *Store) Existing(ctx context.Context, naming plan.Naming) map[int]bool {
	existing := make(map[int]bool)

	iter := s.bucket.List(nil)
	for {
		obj, err := iter.Next(ctx)
		if err == io.EOF {
			break
		}
		if err != nil {
			return make(map[int]bool)
		}
		if obj.IsDir || obj.Size <= 0 {
			continue
		}
		if id, ok := naming.ParseID(path.Base(obj.Key)); ok {
			existing[id] = true
		}
	}

	return existing
}

// Write streams r into the named object and returns the byte count. On any
// copy or commit error the write is aborted so no partial object remains.
func (s *Store) Write(ctx context.Context, key string, r io.Reader) (int64, error) {
	wctx, cancel := context.WithCancel(ctx)
	defer cancel()

	w, err := s.bucket.NewWriter(wctx, key, nil)
	if err != nil {
		return 0, fmt.Errorf("create %s: %w", key, err)
	}

	n, err := io.Copy(w, r)
	if err != nil {
		// Cancelling the writer context aborts the commit.
		cancel()
		w.Close()
		return 0, fmt.Errorf("write %s: %w", key, err)
	}

	if err := w.Close(); err != nil {
		return 0, fmt.Errorf("commit %s: %w", key, err)
	}
	return n, nil
}

// Delete removes the named object if it exists.
func (s *Store) Delete(ctx context.Context, key string) error {
	return s.bucket.Delete(ctx, key)
}

// Close releases the bucket if this store opened it.
func (s *Store) Close() error {
	if s.owned {
		return s.bucket.Close()
	}
	return nil
}
