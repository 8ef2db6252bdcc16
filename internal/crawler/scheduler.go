package crawler

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nao1215/contactscan/internal/fetch"
	"github.com/nao1215/contactscan/internal/model"
)

// Scheduler fetches frontier URLs in bounded batches and runs extraction
// on each page.
//
// Design decision: We batch rather than run one worker pool over the whole
// frontier because:
//  1. The inter-batch delay gives origin servers a breathing pause
//  2. Batch boundaries are natural checkpoints for cancellation
//  3. Frontier sizes are small (tens of URLs), so batching costs nothing
type Scheduler struct {
	// fetcher retrieves pages. Shared with the discoverer.
	fetcher fetch.Fetcher

	// concurrency is the batch size; pages within a batch fetch in
	// parallel.
	concurrency int

	// batchDelay is the pause between batches, skipped after the last.
	batchDelay time.Duration

	// logger receives per-page diagnostics.
	logger *slog.Logger
}

// NewScheduler creates a Scheduler. Concurrency below 1 is clamped to 1;
// a nil logger defaults to slog.Default().
func NewScheduler(fetcher fetch.Fetcher, concurrency int, batchDelay time.Duration, logger *slog.Logger) *Scheduler {
	if concurrency < 1 {
		concurrency = 1
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		fetcher:     fetcher,
		concurrency: concurrency,
		batchDelay:  batchDelay,
		logger:      logger,
	}
}

// Run fetches and extracts every URL in the frontier and returns one
// PageResult per URL, in frontier order. A page that fails to fetch
// resolves to an empty result; it never aborts the batch. Context
// cancellation stops scheduling new batches and returns the results
// completed so far.
func (s *Scheduler) Run(ctx context.Context, urls []string) []*model.PageResult {
	results := make([]*model.PageResult, 0, len(urls))

	for start := 0; start < len(urls); start += s.concurrency {
		if ctx.Err() != nil {
			return results
		}

		end := start + s.concurrency
		if end > len(urls) {
			end = len(urls)
		}
		batch := urls[start:end]

		// Index-addressed slice so workers never share a write target;
		// no mutex needed.
		batchResults := make([]*model.PageResult, len(batch))
		g, gctx := errgroup.WithContext(ctx)
		for i, pageURL := range batch {
			i, pageURL := i, pageURL
			g.Go(func() error {
				batchResults[i] = s.processPage(gctx, pageURL)
				return nil
			})
		}
		// Workers never return errors; per-page failure degrades to an
		// empty result instead.
		_ = g.Wait()

		results = append(results, batchResults...)

		if end < len(urls) && s.batchDelay > 0 {
			select {
			case <-ctx.Done():
				return results
			case <-time.After(s.batchDelay):
			}
		}
	}

	return results
}

// processPage fetches one page and extracts its contacts. Failures yield
// an empty result carrying the fetch outcome.
func (s *Scheduler) processPage(ctx context.Context, pageURL string) *model.PageResult {
	fetched, err := s.fetcher.Fetch(ctx, pageURL)
	if err != nil {
		s.logger.Warn("page fetch failed", "url", pageURL, "error", err.Error())
		return &model.PageResult{
			URL:      pageURL,
			Contacts: model.NewContactRecord(),
			Outcome: model.FetchOutcome{
				URL:       pageURL,
				Succeeded: false,
			},
		}
	}

	contacts, text := Extract(fetched.HTML)
	result := &model.PageResult{
		URL:      pageURL,
		Contacts: contacts,
		Text:     text,
		Outcome: model.FetchOutcome{
			URL:        pageURL,
			HTML:       fetched.HTML,
			StatusCode: fetched.StatusCode,
			Succeeded:  true,
			Attempts:   fetched.Attempts,
		},
	}
	result.TruncateText()

	s.logger.Debug("page processed",
		"url", pageURL,
		"emails", len(contacts.Emails),
		"phones", len(contacts.Phones),
		"attempts", fetched.Attempts)

	return result
}
