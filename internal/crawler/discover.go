package crawler

import (
	"context"
	"log/slog"
	"strings"

	"golang.org/x/net/html"

	"github.com/nao1215/contactscan/internal/fetch"
)

// prioritySections are the elements whose anchors are preferred during
// discovery. Navigation chrome links to the pages worth visiting (about,
// contact, services); anchors buried in article bodies are mostly noise.
var prioritySections = map[string]bool{
	"header":  true,
	"nav":     true,
	"footer":  true,
	"main":    true,
	"section": true,
}

// Discoverer builds the crawl frontier from the seed page.
type Discoverer struct {
	// fetcher retrieves the seed page. It is the same client (and retry
	// policy) used for per-page fetches later in the crawl.
	fetcher fetch.Fetcher

	// logger receives discovery diagnostics.
	logger *slog.Logger
}

// NewDiscoverer creates a Discoverer. A nil logger defaults to
// slog.Default().
func NewDiscoverer(fetcher fetch.Fetcher, logger *slog.Logger) *Discoverer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Discoverer{fetcher: fetcher, logger: logger}
}

// Discover fetches the seed page and returns the ordered frontier of URLs
// to crawl. The frontier holds the admitted same-site links in DOM order,
// deduplicated, with the seed URL appended last unless already present.
//
// Any failure to fetch or parse the seed yields an empty frontier rather
// than an error: a crawl degrades to "nothing found" instead of aborting.
func (d *Discoverer) Discover(ctx context.Context, seedURL string, filter *LinkFilter) []string {
	result, err := d.fetcher.Fetch(ctx, seedURL)
	if err != nil {
		d.logger.Warn("failed to fetch seed page, returning empty frontier",
			"url", seedURL, "error", err.Error())
		return []string{}
	}

	doc, err := html.Parse(strings.NewReader(result.HTML))
	if err != nil {
		d.logger.Warn("failed to parse seed page, returning empty frontier",
			"url", seedURL, "error", err.Error())
		return []string{}
	}

	hrefs := collectAnchorHrefs(doc)

	frontier := make([]string, 0, len(hrefs))
	seen := make(map[string]bool)
	for _, href := range hrefs {
		full, ok := filter.Admit(href)
		if !ok || seen[full] {
			continue
		}
		seen[full] = true
		frontier = append(frontier, full)
	}

	// The seed page itself is always worth extracting from; contact data
	// frequently sits on the home page footer. Compare and append the
	// canonical form so a bare-host seed is not fetched twice next to an
	// admitted "/" link.
	seed := filter.SeedURL()
	if !seen[seed] {
		frontier = append(frontier, seed)
	}

	d.logger.Debug("frontier built", "seed", seedURL, "pages", len(frontier))

	return frontier
}

// collectAnchorHrefs returns the href attributes of the document's anchors
// in DOM order. When at least one anchor sits inside a priority section
// (header, nav, footer, main, section), only those anchors are returned;
// otherwise the whole document is searched.
func collectAnchorHrefs(doc *html.Node) []string {
	var inPriority []string
	walkNodes(doc, false, func(n *html.Node, priority bool) {
		if priority && n.Type == html.ElementNode && n.Data == "a" {
			if href := getAttr(n, "href"); href != "" {
				inPriority = append(inPriority, href)
			}
		}
	})
	if len(inPriority) > 0 {
		return inPriority
	}

	var all []string
	walkNodes(doc, false, func(n *html.Node, _ bool) {
		if n.Type == html.ElementNode && n.Data == "a" {
			if href := getAttr(n, "href"); href != "" {
				all = append(all, href)
			}
		}
	})
	return all
}

// walkNodes traverses the tree depth-first, tracking whether the current
// node sits inside a priority section.
func walkNodes(n *html.Node, priority bool, visit func(*html.Node, bool)) {
	if n.Type == html.ElementNode && prioritySections[n.Data] {
		priority = true
	}
	visit(n, priority)
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walkNodes(c, priority, visit)
	}
}

// getAttr returns the value of the named attribute, or "".
func getAttr(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}
