package crawler

import "github.com/nao1215/contactscan/internal/model"

// Aggregate folds per-page results into one CrawlResult for the seed.
// Emails and phones become insertion-ordered unions across pages; the
// pages map keeps the normalized text of every page that produced any.
func Aggregate(seedURL string, results []*model.PageResult) *model.CrawlResult {
	crawl := model.NewCrawlResult(seedURL)
	for _, page := range results {
		if page == nil {
			continue
		}
		crawl.Merge(page.URL, page.Text, page.Contacts)
	}
	return crawl
}
