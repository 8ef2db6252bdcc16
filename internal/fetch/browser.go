package fetch

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
)

// blockedResourcePatterns are sub-resource URL patterns the browser never
// loads. Contact extraction only needs the DOM; images, styling, fonts,
// and media just slow the tab down.
var blockedResourcePatterns = []string{
	"*.png", "*.jpg", "*.jpeg", "*.gif", "*.webp", "*.svg", "*.ico",
	"*.css",
	"*.woff", "*.woff2", "*.ttf", "*.otf", "*.eot",
	"*.mp4", "*.webm", "*.mp3", "*.avi",
}

// BrowserFetcher retrieves pages through a headless browser so that
// script-built markup is visible to extraction.
//
// Design decision: We keep one shared browser and open a tab per fetch
// because:
//  1. Browser startup costs seconds; tabs cost milliseconds
//  2. Per-tab contexts give each page its own timeout
//  3. A crashed tab does not take down the whole crawl
type BrowserFetcher struct {
	// browserCtx is the shared browser context tabs derive from.
	browserCtx context.Context

	// cancels tear down the browser and its allocator, in order.
	cancels []context.CancelFunc

	// timeout bounds a single page load.
	timeout time.Duration

	// retry is the shared retry policy.
	retry *RetryPolicy
}

// BrowserOption configures a BrowserFetcher.
type BrowserOption func(*BrowserFetcher)

// WithBrowserTimeout sets the per-page load timeout.
func WithBrowserTimeout(d time.Duration) BrowserOption {
	return func(f *BrowserFetcher) {
		f.timeout = d
	}
}

// WithBrowserRetryPolicy sets the retry policy. Nil disables retries.
func WithBrowserRetryPolicy(p *RetryPolicy) BrowserOption {
	return func(f *BrowserFetcher) {
		f.retry = p
	}
}

// NewBrowserFetcher starts a headless browser and returns a fetcher bound
// to it. Callers must Close the fetcher to release the browser.
func NewBrowserFetcher(ctx context.Context, opts ...BrowserOption) (*BrowserFetcher, error) {
	f := &BrowserFetcher{
		timeout: 45 * time.Second,
		retry:   NewRetryPolicy(1, 0),
	}
	for _, opt := range opts {
		opt(f)
	}

	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.DisableGPU,
		chromedp.NoSandbox,
		chromedp.Headless,
	)

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, allocOpts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)

	// Launch the browser now so a missing Chrome binary surfaces here
	// instead of on the first page.
	if err := chromedp.Run(browserCtx); err != nil {
		browserCancel()
		allocCancel()
		return nil, fmt.Errorf("failed to start browser: %w", err)
	}

	f.browserCtx = browserCtx
	f.cancels = []context.CancelFunc{browserCancel, allocCancel}

	return f, nil
}

// Fetch renders the page in a fresh tab and returns the serialized DOM.
func (f *BrowserFetcher) Fetch(ctx context.Context, pageURL string) (*Result, error) {
	return f.retry.Do(ctx, func(ctx context.Context) (*Result, error) {
		return f.fetchOnce(ctx, pageURL)
	})
}

// fetchOnce loads the page in a new tab and serializes the DOM after the
// body is ready.
func (f *BrowserFetcher) fetchOnce(ctx context.Context, pageURL string) (*Result, error) {
	tabCtx, cancelTab := chromedp.NewContext(f.browserCtx)
	defer cancelTab()

	timeoutCtx, cancelTimeout := context.WithTimeout(tabCtx, f.timeout)
	defer cancelTimeout()

	// Honor the caller's cancellation even though the tab derives from
	// the shared browser context.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			cancelTimeout()
		case <-done:
		}
	}()

	var html string
	err := chromedp.Run(timeoutCtx,
		network.Enable(),
		network.SetBlockedURLS(blockedResourcePatterns),
		chromedp.Navigate(pageURL),
		chromedp.WaitReady("body"),
		chromedp.OuterHTML("html", &html),
	)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("failed to render %s: %w", pageURL, err)
	}

	return &Result{
		URL:        pageURL,
		HTML:       html,
		StatusCode: http.StatusOK,
	}, nil
}

// Close shuts down the shared browser.
func (f *BrowserFetcher) Close() error {
	for _, cancel := range f.cancels {
		cancel()
	}
	return nil
}
