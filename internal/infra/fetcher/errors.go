// Package fetcher implements the Fetcher contract (C1): retrieving an
// HTTP resource with retries, timeouts, and SSRF-safe redirect
// validation, plus a stub headless-browser fallback.
package fetcher

import "errors"

// Sentinel errors for fetch operations, mirrored on entity.ValidateURL's
// SSRF checks and the retry package's retryable-error classification.
var (
	ErrInvalidURL        = errors.New("invalid URL or unsupported scheme")
	ErrPrivateIP         = errors.New("private IP access denied (SSRF prevention)")
	ErrTooManyRedirects  = errors.New("too many redirects")
	ErrBodyTooLarge      = errors.New("response body too large")
	ErrTimeout           = errors.New("request timeout")
	ErrBrowserUnsupported = errors.New("headless browser rendering not available in this build")
)
