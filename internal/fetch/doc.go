// Package fetch retrieves web pages for the crawler.
//
// Two implementations sit behind the Fetcher interface: HTTPFetcher does
// plain GET requests, and BrowserFetcher renders pages in a headless
// browser for sites that build their markup with scripts. Both share the
// same RetryPolicy, which waits a fixed delay between attempts and backs
// off exponentially when a server rate-limits.
package fetch
