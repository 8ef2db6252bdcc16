// Package crawler implements the bounded single-hop site crawl.
//
// A crawl starts from one seed URL: the seed page is fetched and its
// same-site links discovered (discover.go), candidates pass through the
// link filter (filter.go), the surviving frontier is fetched in bounded
// batches (scheduler.go), contact information is extracted from each page
// (extract.go), and per-page results are folded into one CrawlResult
// (aggregate.go). The Crawler facade in crawler.go wires the phases
// together.
package crawler
