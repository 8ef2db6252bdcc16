package fetch

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"sync/atomic"
	"time"
)

// maxBodySize limits how much of a response body is read. Contact pages
// are small; anything larger is almost certainly not a page worth mining.
const maxBodySize int64 = 10 * 1024 * 1024 // 10MB

// HTTPFetcher retrieves pages with a plain HTTP client.
type HTTPFetcher struct {
	// client is the underlying HTTP client with the configured timeout.
	client *http.Client

	// userAgents is the pool rotated across requests.
	userAgents []string

	// next indexes the user-agent pool. Incremented atomically because
	// the scheduler fetches pages concurrently.
	next atomic.Uint64

	// retry is the shared retry policy.
	retry *RetryPolicy
}

// HTTPOption configures an HTTPFetcher.
type HTTPOption func(*HTTPFetcher)

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) HTTPOption {
	return func(f *HTTPFetcher) {
		f.client.Timeout = d
	}
}

// WithUserAgents sets the user-agent rotation pool. An empty pool keeps
// the defaults.
func WithUserAgents(agents []string) HTTPOption {
	return func(f *HTTPFetcher) {
		if len(agents) > 0 {
			f.userAgents = agents
		}
	}
}

// WithInsecureTLS disables TLS certificate verification. Some small
// company sites serve expired or self-signed certificates; callers opt in
// explicitly.
func WithInsecureTLS() HTTPOption {
	return func(f *HTTPFetcher) {
		transport := http.DefaultTransport.(*http.Transport).Clone()
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec
		f.client.Transport = transport
	}
}

// WithRetryPolicy sets the retry policy. Nil disables retries (single
// attempt).
func WithRetryPolicy(p *RetryPolicy) HTTPOption {
	return func(f *HTTPFetcher) {
		f.retry = p
	}
}

// NewHTTPFetcher creates an HTTPFetcher with a 45 second timeout, the
// default user-agent pool, and a single-attempt retry policy.
func NewHTTPFetcher(opts ...HTTPOption) *HTTPFetcher {
	f := &HTTPFetcher{
		client: &http.Client{Timeout: 45 * time.Second},
		userAgents: []string{
			"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
			"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
			"Mozilla/5.0 (X11; Linux x86_64; rv:121.0) Gecko/20100101 Firefox/121.0",
		},
		retry: NewRetryPolicy(1, 0),
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// Fetch retrieves the page at the given URL, retrying per the policy.
func (f *HTTPFetcher) Fetch(ctx context.Context, pageURL string) (*Result, error) {
	return f.retry.Do(ctx, func(ctx context.Context) (*Result, error) {
		return f.fetchOnce(ctx, pageURL)
	})
}

// fetchOnce performs a single HTTP GET.
func (f *HTTPFetcher) fetchOnce(ctx context.Context, pageURL string) (*Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", f.nextUserAgent())
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, fmt.Errorf("%s: %w", pageURL, ErrRateLimited)
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("%s returned %d: %w", pageURL, resp.StatusCode, ErrHTTPStatus)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("failed to read body: %w", err)
	}

	return &Result{
		URL:        pageURL,
		HTML:       string(body),
		StatusCode: resp.StatusCode,
	}, nil
}

// nextUserAgent returns the next agent in the rotation.
func (f *HTTPFetcher) nextUserAgent() string {
	n := f.next.Add(1)
	return f.userAgents[(n-1)%uint64(len(f.userAgents))]
}

// Close implements Fetcher. The HTTP client holds no resources that need
// explicit release.
func (f *HTTPFetcher) Close() error {
	f.client.CloseIdleConnections()
	return nil
}
