package crawler

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/nao1215/contactscan/internal/fetch"
	"github.com/nao1215/contactscan/internal/model"
)

// Crawler runs the full single-hop crawl: discover the frontier from the
// seed page, fetch the frontier in batches, extract contacts, and fold
// the per-page results into one CrawlResult.
type Crawler struct {
	// fetcher retrieves all pages (seed and frontier alike).
	fetcher fetch.Fetcher

	// ignoreKeywords reject candidate URLs by substring.
	ignoreKeywords []string

	// maxDepth bounds the path depth of admitted URLs.
	maxDepth int

	// maxPagesPerPrefix caps admissions per first path segment.
	maxPagesPerPrefix int

	// concurrency is the batch size for page fetches.
	concurrency int

	// batchDelay is the pause between fetch batches.
	batchDelay time.Duration

	// logger receives crawl diagnostics.
	logger *slog.Logger
}

// Option configures a Crawler.
type Option func(*Crawler)

// WithIgnoreKeywords sets the URL substring reject list.
func WithIgnoreKeywords(keywords []string) Option {
	return func(c *Crawler) {
		c.ignoreKeywords = keywords
	}
}

// WithMaxDepth sets the maximum path depth of admitted URLs.
func WithMaxDepth(depth int) Option {
	return func(c *Crawler) {
		c.maxDepth = depth
	}
}

// WithMaxPagesPerPrefix sets the per-prefix admission quota.
func WithMaxPagesPerPrefix(quota int) Option {
	return func(c *Crawler) {
		c.maxPagesPerPrefix = quota
	}
}

// WithConcurrency sets the page fetch batch size.
func WithConcurrency(n int) Option {
	return func(c *Crawler) {
		c.concurrency = n
	}
}

// WithBatchDelay sets the pause between fetch batches.
func WithBatchDelay(d time.Duration) Option {
	return func(c *Crawler) {
		c.batchDelay = d
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Crawler) {
		c.logger = logger
	}
}

// New creates a Crawler using the given fetcher.
//
// Design decision: We require an external fetcher because:
//  1. Static and rendering transports stay interchangeable
//  2. The retry policy is configured where the fetcher is built
//  3. Tests inject fakes without touching the network
func New(fetcher fetch.Fetcher, opts ...Option) *Crawler {
	c := &Crawler{
		fetcher:           fetcher,
		maxDepth:          2,
		maxPagesPerPrefix: 2,
		concurrency:       3,
		batchDelay:        time.Second,
		logger:            slog.Default(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Crawl runs the crawl for one seed URL.
//
// The seed must be an absolute http(s) URL; anything else returns
// model.ErrInvalidSeedURL before any network access. Past that gate the
// crawl never fails: seed fetch problems yield an empty result, and
// individual page failures degrade to empty per-page outcomes.
func (c *Crawler) Crawl(ctx context.Context, seedURL string) (*model.CrawlResult, error) {
	if err := validateSeedURL(seedURL); err != nil {
		return nil, err
	}

	filter, err := NewLinkFilter(seedURL, c.ignoreKeywords, c.maxDepth, c.maxPagesPerPrefix)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", model.ErrInvalidSeedURL, seedURL)
	}

	c.logger.Info("crawl started", "seed", seedURL)

	frontier := NewDiscoverer(c.fetcher, c.logger).Discover(ctx, seedURL, filter)
	if len(frontier) == 0 {
		c.logger.Warn("empty frontier, nothing to crawl", "seed", seedURL)
		return model.NewCrawlResult(seedURL), nil
	}

	scheduler := NewScheduler(c.fetcher, c.concurrency, c.batchDelay, c.logger)
	pages := scheduler.Run(ctx, frontier)

	result := Aggregate(seedURL, pages)

	c.logger.Info("crawl finished",
		"seed", seedURL,
		"pages", result.PageCount(),
		"emails", len(result.Emails),
		"phones", len(result.Phones))

	return result, nil
}

// validateSeedURL checks that the seed is an absolute http(s) URL.
func validateSeedURL(seedURL string) error {
	u, err := url.Parse(seedURL)
	if err != nil {
		return fmt.Errorf("%w: %s", model.ErrInvalidSeedURL, seedURL)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: %s", model.ErrInvalidSeedURL, seedURL)
	}
	return nil
}
