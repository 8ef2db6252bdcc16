package model

// FetchOutcome records the result of fetching a single candidate URL.
// It is produced exactly once per URL per crawl run; failed pages are not
// retried across runs.
type FetchOutcome struct {
	// URL is the fetched URL.
	URL string `json:"url"`

	// HTML is the raw markup returned by the fetch client.
	// Empty when the fetch failed.
	HTML string `json:"-"` // Excluded from JSON to keep task records small

	// StatusCode is the HTTP status of the final attempt, when known.
	// Zero for transport-level failures and rendered fetches that never
	// produced a response.
	StatusCode int `json:"status_code,omitempty"`

	// Succeeded reports whether any attempt returned usable content.
	Succeeded bool `json:"succeeded"`

	// Attempts is the number of fetch attempts made, including the
	// successful one if any.
	Attempts int `json:"attempts"`
}

// PageResult pairs a fetched page with its extraction outcome.
// A page that failed to fetch carries an empty ContactRecord and empty
// text rather than an error; per-page failure never aborts a batch.
type PageResult struct {
	// URL is the page URL.
	URL string `json:"url"`

	// Contacts holds the per-page deduplicated contact set.
	// Never nil; empty for failed pages.
	Contacts *ContactRecord `json:"contacts"`

	// Text is the page's normalized text content. Empty for failed pages.
	Text string `json:"-"`

	// Outcome describes the fetch that produced this result.
	Outcome FetchOutcome `json:"outcome"`
}

// MaxPageTextSize is the maximum normalized text size kept per page.
// Larger texts are truncated to bound memory on pathological pages.
const MaxPageTextSize = 512 * 1024 // 512 KB

// TruncateText enforces MaxPageTextSize on the page text.
func (p *PageResult) TruncateText() {
	if len(p.Text) > MaxPageTextSize {
		p.Text = p.Text[:MaxPageTextSize]
	}
}
