//go:build integration

// Package testutils provides shared test infrastructure for integration tests.
package testutils

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/shaongitbd/Epstein-files-Downloader/internal/plan"
)

// GenerateDocs builds deterministic document bodies for the given IDs,
// keyed by filename.
func GenerateDocs(t *testing.T, naming plan.Naming, ids []int, size int) map[string][]byte {
	t.Helper()

	docs := make(map[string][]byte, len(ids))
	for _, id := range ids {
		data := make([]byte, size)
		for i := range data {
			data[i] = byte((i + id) % 256)
		}
		docs[naming.Filename(id)] = data
	}
	return docs
}

// WriteDocs writes the documents into dir and returns dir.
func WriteDocs(t *testing.T, dir string, docs map[string][]byte) string {
	t.Helper()

	for name, data := range docs {
		if err := os.WriteFile(filepath.Join(dir, name), data, 0644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	return dir
}

// StartGatedServer starts an HTTP server that serves docs only when the
// request carries requiredCookie in its Cookie header; anything else is
// bounced with a redirect, mimicking the queue gate in front of the origin.
func StartGatedServer(t *testing.T, docs map[string][]byte, requiredCookie string) *httptest.Server {
	t.Helper()

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if requiredCookie != "" && !strings.Contains(r.Header.Get("Cookie"), requiredCookie) {
			http.Redirect(w, r, "/queue", http.StatusFound)
			return
		}
		data, ok := docs[strings.TrimPrefix(r.URL.Path, "/")]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Write(data)
	}))
}

// NginxEnv contains connection information for an nginx test container.
type NginxEnv struct {
	Container testcontainers.Container
	BaseURL   string
}

// Close terminates the container.
func (e *NginxEnv) Close(ctx context.Context) error {
	if e.Container != nil {
		return e.Container.Terminate(ctx)
	}
	return nil
}

// StartNginxContainer starts an nginx container serving the documents in
// docsDir over plain HTTP.
func StartNginxContainer(t *testing.T, ctx context.Context, docsDir string) *NginxEnv {
	t.Helper()

	entries, err := os.ReadDir(docsDir)
	if err != nil {
		t.Fatalf("read docs dir: %v", err)
	}

	var files []testcontainers.ContainerFile
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		files = append(files, testcontainers.ContainerFile{
			HostFilePath:      filepath.Join(docsDir, entry.Name()),
			ContainerFilePath: "/usr/share/nginx/html/" + entry.Name(),
			FileMode:          0644,
		})
	}

	req := testcontainers.ContainerRequest{
		Image:        "nginx:alpine",
		ExposedPorts: []string{"80/tcp"},
		Files:        files,
		WaitingFor:   wait.ForHTTP("/").WithPort("80"),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Fatalf("start nginx container: %v", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("get container host: %v", err)
	}
	port, err := container.MappedPort(ctx, "80")
	if err != nil {
		t.Fatalf("get container port: %v", err)
	}

	return &NginxEnv{
		Container: container,
		BaseURL:   fmt.Sprintf("http://%s:%s", host, port.Port()),
	}
}
