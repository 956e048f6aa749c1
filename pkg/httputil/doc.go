// Package httputil provides the HTTP plumbing used to download the plotly.js
// library.
//
// # Overview
//
//   - [Client]: GET requests with status classification and retries
//   - [Retry]: Automatic retry with exponential backoff
//
// # Retry
//
// [Retry] re-runs an operation only when it fails with a [RetryableError].
// [Client] marks these failures as retryable:
//
//   - Network errors
//   - 5xx server errors
//   - 429 rate limit responses
//
// Other statuses fail immediately. A 404 maps to
// errors.ErrCodeNotFound so callers can tell a bad URL from an outage.
package httputil
