package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := Default()

	if cfg.BaseURL != "https://www.justice.gov/epstein/" {
		t.Errorf("unexpected base URL %q", cfg.BaseURL)
	}
	if cfg.Dataset != "files/DataSet%201/" {
		t.Errorf("unexpected dataset %q", cfg.Dataset)
	}
	if cfg.Workers != 100 {
		t.Errorf("expected default workers 100, got %d", cfg.Workers)
	}
	if cfg.Timeout != 30*time.Second {
		t.Errorf("expected default timeout 30s, got %v", cfg.Timeout)
	}
	if cfg.Retry.Attempts != 3 {
		t.Errorf("expected default retry attempts 3, got %d", cfg.Retry.Attempts)
	}
	if cfg.Retry.Backoff != 500*time.Millisecond {
		t.Errorf("expected default backoff 500ms, got %v", cfg.Retry.Backoff)
	}
	if cfg.Retry.RateLimitPause != 3*time.Second {
		t.Errorf("expected default rate-limit pause 3s, got %v", cfg.Retry.RateLimitPause)
	}
	if cfg.Credentials.AgeVerified != "true" {
		t.Errorf("expected age-verified default 'true', got %q", cfg.Credentials.AgeVerified)
	}
	if cfg.Credentials.UserAgent == "" {
		t.Error("expected a default User-Agent")
	}
}

func TestLoadFromYAML(t *testing.T) {
	yamlContent := `
dataset: files/DataSet%202/
start: 100
end: 2000
workers: 50
rate: 20
timeout: 45s
retry:
  attempts: 5
  backoff: 1s
  max_backoff: 2m
  rate_limit_pause: 30s
credentials:
  session_cookie: abc
  queue_cookie: xyz
`
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("write config file: %v", err)
	}

	cfg, err := LoadFromFile(configPath)
	if err != nil {
		t.Fatalf("LoadFromFile: %v", err)
	}

	if cfg.Dataset != "files/DataSet%202/" {
		t.Errorf("unexpected dataset %q", cfg.Dataset)
	}
	if cfg.Start != 100 || cfg.End != 2000 {
		t.Errorf("unexpected range %d-%d", cfg.Start, cfg.End)
	}
	if cfg.Workers != 50 {
		t.Errorf("expected workers 50, got %d", cfg.Workers)
	}
	if cfg.Rate != 20 {
		t.Errorf("expected rate 20, got %v", cfg.Rate)
	}
	if cfg.Timeout != 45*time.Second {
		t.Errorf("expected timeout 45s, got %v", cfg.Timeout)
	}
	if cfg.Retry.Attempts != 5 {
		t.Errorf("expected attempts 5, got %d", cfg.Retry.Attempts)
	}
	if cfg.Retry.MaxBackoff != 2*time.Minute {
		t.Errorf("expected max backoff 2m, got %v", cfg.Retry.MaxBackoff)
	}
	if cfg.Retry.RateLimitPause != 30*time.Second {
		t.Errorf("expected rate-limit pause 30s, got %v", cfg.Retry.RateLimitPause)
	}
	if cfg.Credentials.SessionCookie != "abc" || cfg.Credentials.QueueCookie != "xyz" {
		t.Errorf("credentials not loaded: %+v", cfg.Credentials)
	}
	// Untouched fields keep their defaults.
	if cfg.BaseURL != Default().BaseURL {
		t.Errorf("base URL default lost: %q", cfg.BaseURL)
	}
}

func TestLoadFromYAMLInvalidDuration(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte("retry:\n  backoff: soon\n"), 0644); err != nil {
		t.Fatalf("write config file: %v", err)
	}

	if _, err := LoadFromFile(configPath); err == nil {
		t.Error("expected error for invalid duration")
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("FETCH_WORKERS", "25")
	t.Setenv("FETCH_RATE", "12.5")
	t.Setenv("FETCH_RETRY_BACKOFF", "2s")
	t.Setenv("DOJ_COOKIE_AK_BMSC", "session-value")
	t.Setenv("DOJ_COOKIE_QUEUE_IT", "queue-value")
	t.Setenv("DOJ_COOKIE_AGE_VERIFIED", "false")

	cfg := Default()
	if err := cfg.LoadFromEnv(); err != nil {
		t.Fatalf("LoadFromEnv: %v", err)
	}

	if cfg.Workers != 25 {
		t.Errorf("expected workers 25, got %d", cfg.Workers)
	}
	if cfg.Rate != 12.5 {
		t.Errorf("expected rate 12.5, got %v", cfg.Rate)
	}
	if cfg.Retry.Backoff != 2*time.Second {
		t.Errorf("expected backoff 2s, got %v", cfg.Retry.Backoff)
	}
	if cfg.Credentials.SessionCookie != "session-value" {
		t.Errorf("session cookie not loaded: %q", cfg.Credentials.SessionCookie)
	}
	if cfg.Credentials.QueueCookie != "queue-value" {
		t.Errorf("queue cookie not loaded: %q", cfg.Credentials.QueueCookie)
	}
	if cfg.Credentials.AgeVerified != "false" {
		t.Errorf("age-verified not loaded: %q", cfg.Credentials.AgeVerified)
	}
}

func TestLoadFromEnvInvalid(t *testing.T) {
	t.Setenv("FETCH_WORKERS", "many")
	cfg := Default()
	if err := cfg.LoadFromEnv(); err == nil {
		t.Error("expected error for non-numeric FETCH_WORKERS")
	}
}

func TestLoadDotenv(t *testing.T) {
	tmpDir := t.TempDir()
	envContent := "DOJ_COOKIE_AK_BMSC=from-file\nDOJ_COOKIE_QUEUE_IT=also-from-file\n"
	if err := os.WriteFile(filepath.Join(tmpDir, ".env"), []byte(envContent), 0644); err != nil {
		t.Fatalf("write .env: %v", err)
	}

	// Process environment must win over the file.
	t.Setenv("DOJ_COOKIE_QUEUE_IT", "from-process")
	t.Setenv("DOJ_COOKIE_AK_BMSC", "")
	os.Unsetenv("DOJ_COOKIE_AK_BMSC")

	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Getwd: %v", err)
	}
	if err := os.Chdir(tmpDir); err != nil {
		t.Fatalf("Chdir: %v", err)
	}
	defer os.Chdir(wd)

	if path := LoadDotenv(); path != ".env" {
		t.Fatalf("expected .env loaded, got %q", path)
	}

	if got := os.Getenv("DOJ_COOKIE_AK_BMSC"); got != "from-file" {
		t.Errorf("expected cookie from file, got %q", got)
	}
	if got := os.Getenv("DOJ_COOKIE_QUEUE_IT"); got != "from-process" {
		t.Errorf("process env must win over .env, got %q", got)
	}
}

func TestLoadDotenvMissing(t *testing.T) {
	tmpDir := t.TempDir()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Getwd: %v", err)
	}
	// A nested empty dir so ../ and ../../ are empty too.
	nested := filepath.Join(tmpDir, "a", "b")
	if err := os.MkdirAll(nested, 0755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	if err := os.Chdir(nested); err != nil {
		t.Fatalf("Chdir: %v", err)
	}
	defer os.Chdir(wd)

	if path := LoadDotenv(); path != "" {
		t.Errorf("expected no .env found, got %q", path)
	}
}

func TestCookieHeader(t *testing.T) {
	creds := Credentials{
		SessionCookie: "s",
		QueueCookie:   "q",
		AgeVerified:   "true",
	}

	want := "ak_bmsc=s; justiceGovAgeVerified=true; QueueITAccepted-SDFrts345E-V3_usdojfiles=q"
	if got := creds.CookieHeader(); got != want {
		t.Errorf("CookieHeader() = %q, want %q", got, want)
	}
}

func TestCredentialsValidate(t *testing.T) {
	err := Credentials{}.Validate()
	if err == nil {
		t.Fatal("expected error for missing credentials")
	}
	if !strings.Contains(err.Error(), "DOJ_COOKIE_AK_BMSC") ||
		!strings.Contains(err.Error(), "DOJ_COOKIE_QUEUE_IT") {
		t.Errorf("error must name the missing env vars: %v", err)
	}

	err = Credentials{SessionCookie: "s"}.Validate()
	if err == nil || strings.Contains(err.Error(), "AK_BMSC") {
		t.Errorf("only the queue cookie should be reported: %v", err)
	}

	if err := (Credentials{SessionCookie: "s", QueueCookie: "q"}).Validate(); err != nil {
		t.Errorf("expected valid credentials, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config must validate: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty base URL", func(c *Config) { c.BaseURL = "" }},
		{"zero start", func(c *Config) { c.Start = 0 }},
		{"end before start", func(c *Config) { c.Start = 10; c.End = 5 }},
		{"zero workers", func(c *Config) { c.Workers = 0 }},
		{"zero timeout", func(c *Config) { c.Timeout = 0 }},
		{"zero attempts", func(c *Config) { c.Retry.Attempts = 0 }},
	}

	for _, tt := range tests {
		cfg := Default()
		tt.mutate(&cfg)
		if err := cfg.Validate(); err == nil {
			t.Errorf("%s: expected validation error", tt.name)
		}
	}
}

func TestMerge(t *testing.T) {
	cfg := Default()
	merged := cfg.Merge(Config{
		Start:   5,
		End:     50,
		Workers: 8,
		Verbose: true,
		Retry:   RetryConfig{Attempts: 7},
		Credentials: Credentials{
			SessionCookie: "override",
		},
	})

	if merged.Start != 5 || merged.End != 50 {
		t.Errorf("range not merged: %d-%d", merged.Start, merged.End)
	}
	if merged.Workers != 8 {
		t.Errorf("workers not merged: %d", merged.Workers)
	}
	if !merged.Verbose {
		t.Error("verbose not merged")
	}
	if merged.Retry.Attempts != 7 {
		t.Errorf("retry attempts not merged: %d", merged.Retry.Attempts)
	}
	if merged.Retry.Backoff != cfg.Retry.Backoff {
		t.Error("zero override must not clear retry backoff")
	}
	if merged.Credentials.SessionCookie != "override" {
		t.Errorf("session cookie not merged: %q", merged.Credentials.SessionCookie)
	}
	if merged.Credentials.UserAgent != cfg.Credentials.UserAgent {
		t.Error("zero override must not clear user agent")
	}
	if merged.BaseURL != cfg.BaseURL {
		t.Error("zero override must not clear base URL")
	}
}
