package http

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/juju/ratelimit"
)

// Options configures the HTTP client.
type Options struct {
	// MaxIdleConnsPerHost sets the idle connection pool size. Size this to
	// the worker count so connections are reused across jobs.
	// Default: 100
	MaxIdleConnsPerHost int

	// Timeout bounds each request end to end so a stalled connection cannot
	// permanently occupy a worker slot.
	// Default: 30s
	Timeout time.Duration

	// RatePerSec caps outgoing requests per second across all workers.
	// Zero disables rate limiting.
	RatePerSec float64

	// ProxyURL routes requests through an outbound proxy when set.
	ProxyURL string

	// Cookie is the composite Cookie header value sent with every request.
	Cookie string

	// UserAgent is sent with every request.
	UserAgent string
}

// DefaultOptions returns options with sensible defaults.
func DefaultOptions() Options {
	return Options{
		MaxIdleConnsPerHost: 100,
		Timeout:             30 * time.Second,
	}
}

// Client issues single GET attempts over one pooled transport. It is safe
// for concurrent use by all workers.
type Client struct {
	client *http.Client
	bucket *ratelimit.Bucket
	opts   Options
}

// NewClient creates a client with the given options.
func NewClient(opts Options) (*Client, error) {
	if opts.MaxIdleConnsPerHost <= 0 {
		opts.MaxIdleConnsPerHost = 100
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}

	transport := &http.Transport{
		MaxIdleConns:        opts.MaxIdleConnsPerHost * 2,
		MaxIdleConnsPerHost: opts.MaxIdleConnsPerHost,
		MaxConnsPerHost:     opts.MaxIdleConnsPerHost * 2,
		IdleConnTimeout:     90 * time.Second,
		DisableCompression:  true,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
	}

	if opts.ProxyURL != "" {
		proxyURL, err := url.Parse(opts.ProxyURL)
		if err != nil {
			return nil, fmt.Errorf("parse proxy url: %w", err)
		}
		transport.Proxy = http.ProxyURL(proxyURL)
	}

	var bucket *ratelimit.Bucket
	if opts.RatePerSec > 0 {
		bucket = ratelimit.NewBucketWithRate(opts.RatePerSec, int64(opts.RatePerSec)+1)
	}

	return &Client{
		client: &http.Client{
			Transport: transport,
			Timeout:   opts.Timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		bucket: bucket,
		opts:   opts,
	}, nil
}

// Get issues exactly one GET request with the configured credentials.
// The caller owns the response body.
func (c *Client) Get(ctx context.Context, url string) (*http.Response, error) {
	if c.bucket != nil {
		if err := c.wait(ctx); err != nil {
			return nil, err
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	if c.opts.Cookie != "" {
		req.Header.Set("Cookie", c.opts.Cookie)
	}
	if c.opts.UserAgent != "" {
		req.Header.Set("User-Agent", c.opts.UserAgent)
	}
	req.Header.Set("Connection", "keep-alive")

	return c.client.Do(req)
}

// wait blocks until the token bucket releases a slot or ctx is cancelled.
func (c *Client) wait(ctx context.Context) error {
	d := c.bucket.Take(1)
	if d <= 0 {
		return nil
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
