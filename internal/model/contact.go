package model

// ContactRecord holds the contact information extracted from a single page.
// Emails and phones are deduplicated per page in discovery order.
//
// Design decision: We keep ordered slices backed by a seen-set rather than
// plain maps because:
//  1. Discovery order is stable and makes reports reproducible
//  2. Callers iterate far more often than they test membership
//  3. JSON output stays deterministic without extra sorting
type ContactRecord struct {
	// Emails contains deduplicated email addresses found on the page.
	// Deduplication is case-sensitive: addresses are recorded verbatim.
	Emails []string `json:"emails"`

	// Phones contains deduplicated phone numbers found on the page.
	// Numbers are recorded in their source formatting; no normalization
	// to E.164 is performed because the source locale is unknown.
	Phones []string `json:"phones"`

	seenEmails map[string]bool
	seenPhones map[string]bool
}

// NewContactRecord creates an empty ContactRecord.
func NewContactRecord() *ContactRecord {
	return &ContactRecord{
		Emails:     make([]string, 0),
		Phones:     make([]string, 0),
		seenEmails: make(map[string]bool),
		seenPhones: make(map[string]bool),
	}
}

// AddEmail records an email address if it has not been seen on this page.
// It reports whether the address was added.
func (c *ContactRecord) AddEmail(email string) bool {
	if email == "" || c.seenEmails[email] {
		return false
	}
	c.seenEmails[email] = true
	c.Emails = append(c.Emails, email)
	return true
}

// AddPhone records a phone number if it has not been seen on this page.
// It reports whether the number was added.
func (c *ContactRecord) AddPhone(phone string) bool {
	if phone == "" || c.seenPhones[phone] {
		return false
	}
	c.seenPhones[phone] = true
	c.Phones = append(c.Phones, phone)
	return true
}

// IsEmpty reports whether the record contains no contact information.
func (c *ContactRecord) IsEmpty() bool {
	return len(c.Emails) == 0 && len(c.Phones) == 0
}

// CrawlResult is the merged outcome of one crawl run.
// Per-page contact sets are folded into global deduplicated sets, and the
// normalized text of every successfully fetched page is kept by URL.
type CrawlResult struct {
	// SeedURL is the URL the crawl started from.
	SeedURL string `json:"seed_url"`

	// Emails is the union of all per-page email sets.
	// An address appearing on N pages is present exactly once.
	Emails []string `json:"emails"`

	// Phones is the union of all per-page phone sets.
	Phones []string `json:"phones"`

	// Pages maps each successfully fetched URL to its normalized
	// (whitespace-collapsed, trimmed) text content. Pages that failed to
	// fetch or produced no text contribute no entry.
	Pages map[string]string `json:"pages"`

	seenEmails map[string]bool
	seenPhones map[string]bool
}

// NewCrawlResult creates an empty CrawlResult for the given seed URL.
func NewCrawlResult(seedURL string) *CrawlResult {
	return &CrawlResult{
		SeedURL:    seedURL,
		Emails:     make([]string, 0),
		Phones:     make([]string, 0),
		Pages:      make(map[string]string),
		seenEmails: make(map[string]bool),
		seenPhones: make(map[string]bool),
	}
}

// Merge folds one page's extraction outcome into the result.
// Set-union semantics: duplicates across pages collapse to one entry.
// An empty text contributes nothing to the page map but does not block
// the contact sets (a page may expose a mailto link and no visible text).
func (r *CrawlResult) Merge(pageURL, text string, contacts *ContactRecord) {
	if contacts != nil {
		for _, email := range contacts.Emails {
			if !r.seenEmails[email] {
				r.seenEmails[email] = true
				r.Emails = append(r.Emails, email)
			}
		}
		for _, phone := range contacts.Phones {
			if !r.seenPhones[phone] {
				r.seenPhones[phone] = true
				r.Phones = append(r.Phones, phone)
			}
		}
	}
	if text != "" {
		r.Pages[pageURL] = text
	}
}

// PageCount returns the number of pages that contributed text.
func (r *CrawlResult) PageCount() int {
	return len(r.Pages)
}
