// Package config defines configuration for the fetch CLI.
//
// Configuration can be provided via:
//   - Command-line flags
//   - Environment variables (FETCH_ prefix, DOJ_COOKIE_* for credentials)
//   - A YAML configuration file
//   - A .env file searched in the current, parent, and grandparent
//     directories; pre-existing process environment always wins
//
// Credentials are an immutable value: the downloader only detects staleness
// (via redirect responses) and never refreshes them mid-run. Refreshing
// means loading new values and starting a new run.
package config
