// Package http provides the shared HTTP client for the fetch workers.
//
// This package handles:
//   - Connection pooling sized for high parallelism
//   - A mandatory per-request timeout
//   - The composite Cookie header and static User-Agent on every request
//   - Client-side rate limiting via a token bucket
//   - Optional routing through an outbound proxy
//
// Redirects are never followed: the queue gate in front of the origin
// answers with a redirect when the session cookie has gone stale, so a
// redirect response is a signal the caller classifies, not something to
// chase.
//
// # Usage
//
//	client, err := http.NewClient(http.Options{
//	    MaxIdleConnsPerHost: 200,
//	    Timeout:             30 * time.Second,
//	    Cookie:              creds.CookieHeader(),
//	    UserAgent:           creds.UserAgent,
//	})
//
//	resp, err := client.Get(ctx, url)
//	defer resp.Body.Close()
//
// Get makes exactly one attempt; retry policy belongs to the caller.
package http
