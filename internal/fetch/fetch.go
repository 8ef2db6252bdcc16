package fetch

import (
	"context"
	"errors"
)

// ErrRateLimited is returned when a server answers HTTP 429. The retry
// policy treats it differently from other failures (exponential backoff
// instead of a fixed delay).
var ErrRateLimited = errors.New("rate limited by server")

// ErrHTTPStatus is returned when a server answers with status >= 400
// other than 429. Use errors.Is to detect it; the wrapped message carries
// the concrete status code.
var ErrHTTPStatus = errors.New("unexpected HTTP status")

// Result is the outcome of fetching a single page.
type Result struct {
	// URL is the URL that was fetched.
	URL string

	// HTML is the raw page markup. For the browser fetcher this is the
	// serialized DOM after scripts ran, not the bytes on the wire.
	HTML string

	// StatusCode is the HTTP status code, when one was observed.
	// The browser fetcher reports 200 for any page it could render.
	StatusCode int

	// Attempts is the number of fetch attempts made, including the
	// successful one.
	Attempts int
}

// Fetcher retrieves a single page.
//
// Design decision: We fetch one URL per call rather than exposing a
// collector/callback API because:
//  1. The scheduler owns concurrency and batching, not the fetcher
//  2. Static and rendering implementations stay interchangeable
//  3. Per-call contexts give each page its own deadline
type Fetcher interface {
	// Fetch retrieves the page at the given URL.
	Fetch(ctx context.Context, url string) (*Result, error)

	// Close releases resources held by the fetcher. For the HTTP fetcher
	// this is a no-op; the browser fetcher shuts down its browser.
	Close() error
}
