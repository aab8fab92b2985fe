package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DotenvPaths are searched in order; the first file found is loaded.
var DotenvPaths = []string{".env", "../.env", "../../.env"}

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"

// Credentials are the cookie values and User-Agent attached to every
// request. Immutable once loaded; staleness is detected, never repaired.
type Credentials struct {
	// SessionCookie is the ak_bmsc CDN session cookie.
	SessionCookie string `yaml:"session_cookie"`

	// QueueCookie is the QueueITAccepted queue-admission cookie.
	QueueCookie string `yaml:"queue_cookie"`

	// AgeVerified is the justiceGovAgeVerified age-gate flag.
	AgeVerified string `yaml:"age_verified"`

	// UserAgent is sent with every request.
	UserAgent string `yaml:"user_agent"`
}

// CookieHeader renders the single composite Cookie header carrying all
// three values.
func (c Credentials) CookieHeader() string {
	return fmt.Sprintf("ak_bmsc=%s; justiceGovAgeVerified=%s; QueueITAccepted-SDFrts345E-V3_usdojfiles=%s",
		c.SessionCookie, c.AgeVerified, c.QueueCookie)
}

// Validate names the environment variables for any missing required cookie.
func (c Credentials) Validate() error {
	var missing []string
	if c.SessionCookie == "" {
		missing = append(missing, "DOJ_COOKIE_AK_BMSC")
	}
	if c.QueueCookie == "" {
		missing = append(missing, "DOJ_COOKIE_QUEUE_IT")
	}
	if len(missing) > 0 {
		return fmt.Errorf("config: missing credentials: %s", strings.Join(missing, ", "))
	}
	return nil
}

// RetryConfig defines per-job retry behavior.
type RetryConfig struct {
	// Attempts is the total attempt budget per job.
	Attempts int

	// Backoff is the base delay between transient retries.
	Backoff time.Duration

	// MaxBackoff caps the transient backoff.
	MaxBackoff time.Duration

	// RateLimitPause is the base cool-down after a 429.
	RateLimitPause time.Duration
}

// Config defines configuration for the fetch CLI.
type Config struct {
	BaseURL     string
	Dataset     string
	Start       int
	End         int
	Output      string
	Workers     int
	Rate        float64
	Timeout     time.Duration
	Verbose     bool
	ProxyURL    string
	Retry       RetryConfig
	Credentials Credentials
}

// Default returns a Config with the constants observed in production.
func Default() Config {
	return Config{
		BaseURL: "https://www.justice.gov/epstein/",
		Dataset: "files/DataSet%201/",
		Start:   1,
		End:     2731783,
		Output:  "downloads",
		Workers: 100,
		Timeout: 30 * time.Second,
		Retry: RetryConfig{
			Attempts:       3,
			Backoff:        500 * time.Millisecond,
			MaxBackoff:     60 * time.Second,
			RateLimitPause: 3 * time.Second,
		},
		Credentials: Credentials{
			AgeVerified: "true",
			UserAgent:   defaultUserAgent,
		},
	}
}

// yamlConfig is used for YAML unmarshaling with string durations.
type yamlConfig struct {
	BaseURL     string          `yaml:"base_url"`
	Dataset     string          `yaml:"dataset"`
	Start       int             `yaml:"start"`
	End         int             `yaml:"end"`
	Output      string          `yaml:"output"`
	Workers     int             `yaml:"workers"`
	Rate        float64         `yaml:"rate"`
	Timeout     string          `yaml:"timeout"`
	Verbose     bool            `yaml:"verbose"`
	ProxyURL    string          `yaml:"proxy_url"`
	Retry       yamlRetryConfig `yaml:"retry"`
	Credentials Credentials     `yaml:"credentials"`
}

type yamlRetryConfig struct {
	Attempts       int    `yaml:"attempts"`
	Backoff        string `yaml:"backoff"`
	MaxBackoff     string `yaml:"max_backoff"`
	RateLimitPause string `yaml:"rate_limit_pause"`
}

// LoadFromFile loads configuration from a YAML file over the defaults.
func LoadFromFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config file: %w", err)
	}

	var yc yamlConfig
	if err := yaml.Unmarshal(data, &yc); err != nil {
		return Config{}, fmt.Errorf("parse config file: %w", err)
	}

	cfg := Default()

	if yc.BaseURL != "" {
		cfg.BaseURL = yc.BaseURL
	}
	if yc.Dataset != "" {
		cfg.Dataset = yc.Dataset
	}
	if yc.Start != 0 {
		cfg.Start = yc.Start
	}
	if yc.End != 0 {
		cfg.End = yc.End
	}
	if yc.Output != "" {
		cfg.Output = yc.Output
	}
	if yc.Workers != 0 {
		cfg.Workers = yc.Workers
	}
	if yc.Rate != 0 {
		cfg.Rate = yc.Rate
	}
	if yc.Timeout != "" {
		d, err := time.ParseDuration(yc.Timeout)
		if err != nil {
			return Config{}, fmt.Errorf("parse timeout: %w", err)
		}
		cfg.Timeout = d
	}
	cfg.Verbose = yc.Verbose
	if yc.ProxyURL != "" {
		cfg.ProxyURL = yc.ProxyURL
	}
	if yc.Retry.Attempts != 0 {
		cfg.Retry.Attempts = yc.Retry.Attempts
	}
	if yc.Retry.Backoff != "" {
		d, err := time.ParseDuration(yc.Retry.Backoff)
		if err != nil {
			return Config{}, fmt.Errorf("parse retry.backoff: %w", err)
		}
		cfg.Retry.Backoff = d
	}
	if yc.Retry.MaxBackoff != "" {
		d, err := time.ParseDuration(yc.Retry.MaxBackoff)
		if err != nil {
			return Config{}, fmt.Errorf("parse retry.max_backoff: %w", err)
		}
		cfg.Retry.MaxBackoff = d
	}
	if yc.Retry.RateLimitPause != "" {
		d, err := time.ParseDuration(yc.Retry.RateLimitPause)
		if err != nil {
			return Config{}, fmt.Errorf("parse retry.rate_limit_pause: %w", err)
		}
		cfg.Retry.RateLimitPause = d
	}
	if yc.Credentials.SessionCookie != "" {
		cfg.Credentials.SessionCookie = yc.Credentials.SessionCookie
	}
	if yc.Credentials.QueueCookie != "" {
		cfg.Credentials.QueueCookie = yc.Credentials.QueueCookie
	}
	if yc.Credentials.AgeVerified != "" {
		cfg.Credentials.AgeVerified = yc.Credentials.AgeVerified
	}
	if yc.Credentials.UserAgent != "" {
		cfg.Credentials.UserAgent = yc.Credentials.UserAgent
	}

	return cfg, nil
}

// LoadDotenv loads the first .env file found in the current, parent, or
// grandparent directory. Variables already present in the process
// environment are never overridden. Returns the path loaded, or "".
func LoadDotenv() string {
	for _, path := range DotenvPaths {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			continue
		}
		return path
	}
	return ""
}

// LoadFromEnv applies environment overrides. Tunables use the FETCH_
// prefix; credentials use the DOJ_COOKIE_* names the cookie harvester
// writes to .env.
func (c *Config) LoadFromEnv() error {
	if v := os.Getenv("FETCH_BASE_URL"); v != "" {
		c.BaseURL = v
	}
	if v := os.Getenv("FETCH_DATASET"); v != "" {
		c.Dataset = v
	}
	if v := os.Getenv("FETCH_OUTPUT"); v != "" {
		c.Output = v
	}
	if v := os.Getenv("FETCH_WORKERS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parse FETCH_WORKERS: %w", err)
		}
		c.Workers = n
	}
	if v := os.Getenv("FETCH_RATE"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("parse FETCH_RATE: %w", err)
		}
		c.Rate = f
	}
	if v := os.Getenv("FETCH_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("parse FETCH_TIMEOUT: %w", err)
		}
		c.Timeout = d
	}
	if v := os.Getenv("FETCH_PROXY_URL"); v != "" {
		c.ProxyURL = v
	}
	if v := os.Getenv("FETCH_RETRY_ATTEMPTS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parse FETCH_RETRY_ATTEMPTS: %w", err)
		}
		c.Retry.Attempts = n
	}
	if v := os.Getenv("FETCH_RETRY_BACKOFF"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("parse FETCH_RETRY_BACKOFF: %w", err)
		}
		c.Retry.Backoff = d
	}
	if v := os.Getenv("FETCH_RETRY_MAX_BACKOFF"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("parse FETCH_RETRY_MAX_BACKOFF: %w", err)
		}
		c.Retry.MaxBackoff = d
	}
	if v := os.Getenv("FETCH_RATE_LIMIT_PAUSE"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("parse FETCH_RATE_LIMIT_PAUSE: %w", err)
		}
		c.Retry.RateLimitPause = d
	}
	if v := os.Getenv("FETCH_USER_AGENT"); v != "" {
		c.Credentials.UserAgent = v
	}
	if v := os.Getenv("DOJ_COOKIE_AK_BMSC"); v != "" {
		c.Credentials.SessionCookie = v
	}
	if v := os.Getenv("DOJ_COOKIE_QUEUE_IT"); v != "" {
		c.Credentials.QueueCookie = v
	}
	if v := os.Getenv("DOJ_COOKIE_AGE_VERIFIED"); v != "" {
		c.Credentials.AgeVerified = v
	}

	return nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return errors.New("config: base URL is required")
	}
	if c.Start < 1 {
		return errors.New("config: start must be at least 1")
	}
	if c.End < c.Start {
		return errors.New("config: end must not precede start")
	}
	if c.Workers <= 0 {
		return errors.New("config: workers must be positive")
	}
	if c.Timeout <= 0 {
		return errors.New("config: timeout must be positive")
	}
	if c.Retry.Attempts <= 0 {
		return errors.New("config: retry attempts must be positive")
	}
	return nil
}

// Merge merges override values into c, returning a new Config.
// Zero values in override are ignored.
func (c Config) Merge(override Config) Config {
	if override.BaseURL != "" {
		c.BaseURL = override.BaseURL
	}
	if override.Dataset != "" {
		c.Dataset = override.Dataset
	}
	if override.Start != 0 {
		c.Start = override.Start
	}
	if override.End != 0 {
		c.End = override.End
	}
	if override.Output != "" {
		c.Output = override.Output
	}
	if override.Workers != 0 {
		c.Workers = override.Workers
	}
	if override.Rate != 0 {
		c.Rate = override.Rate
	}
	if override.Timeout != 0 {
		c.Timeout = override.Timeout
	}
	if override.Verbose {
		c.Verbose = override.Verbose
	}
	if override.ProxyURL != "" {
		c.ProxyURL = override.ProxyURL
	}
	if override.Retry.Attempts != 0 {
		c.Retry.Attempts = override.Retry.Attempts
	}
	if override.Retry.Backoff != 0 {
		c.Retry.Backoff = override.Retry.Backoff
	}
	if override.Retry.MaxBackoff != 0 {
		c.Retry.MaxBackoff = override.Retry.MaxBackoff
	}
	if override.Retry.RateLimitPause != 0 {
		c.Retry.RateLimitPause = override.Retry.RateLimitPause
	}
	if override.Credentials.SessionCookie != "" {
		c.Credentials.SessionCookie = override.Credentials.SessionCookie
	}
	if override.Credentials.QueueCookie != "" {
		c.Credentials.QueueCookie = override.Credentials.QueueCookie
	}
	if override.Credentials.AgeVerified != "" {
		c.Credentials.AgeVerified = override.Credentials.AgeVerified
	}
	if override.Credentials.UserAgent != "" {
		c.Credentials.UserAgent = override.Credentials.UserAgent
	}
	return c
}
