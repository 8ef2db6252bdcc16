package crawler

import (
	"fmt"
	"net/url"
	"strings"
)

// LinkFilter decides which discovered hrefs become frontier URLs.
// It is stateful: the per-prefix quota counter accumulates across Admit
// calls within one discovery pass.
//
// Design decision: The filter is single-threaded on purpose. Discovery
// walks one parsed document in DOM order, so there is no concurrent
// caller, and keeping the counter lock-free keeps admission order
// deterministic.
type LinkFilter struct {
	// base is the parsed seed URL; relative hrefs resolve against it.
	base *url.URL

	// ignoreKeywords are lowercase substrings that reject a URL.
	ignoreKeywords []string

	// maxDepth is the maximum number of non-empty path segments.
	maxDepth int

	// maxPagesPerPrefix caps admissions per first path segment.
	maxPagesPerPrefix int

	// prefixCount tracks candidates seen per first path segment.
	// Incremented on every candidate that reaches the quota check, not
	// just admitted ones, so heavily repeated sections fill their quota
	// even when the repeats are rejected.
	prefixCount map[string]int
}

// NewLinkFilter creates a filter for links discovered on the given seed.
func NewLinkFilter(seedURL string, ignoreKeywords []string, maxDepth, maxPagesPerPrefix int) (*LinkFilter, error) {
	base, err := url.Parse(seedURL)
	if err != nil {
		return nil, fmt.Errorf("invalid seed URL: %w", err)
	}

	lowered := make([]string, 0, len(ignoreKeywords))
	for _, kw := range ignoreKeywords {
		if kw != "" {
			lowered = append(lowered, strings.ToLower(kw))
		}
	}

	return &LinkFilter{
		base:              base,
		ignoreKeywords:    lowered,
		maxDepth:          maxDepth,
		maxPagesPerPrefix: maxPagesPerPrefix,
		prefixCount:       make(map[string]int),
	}, nil
}

// SeedURL returns the canonical form of the seed, with an empty path
// normalized to "/". Admitted URLs come out of ResolveReference, which
// always yields a non-empty path, so a bare-host seed must take the same
// form to compare equal against them.
func (f *LinkFilter) SeedURL() string {
	u := *f.base
	if u.Path == "" {
		u.Path = "/"
	}
	return u.String()
}

// Admit applies the admission rules to one href and returns the resolved
// absolute URL when the href survives. Rules run in order: resolve against
// the seed base, same hostname, ignore-keyword substring check, path-depth
// bound, per-prefix quota.
func (f *LinkFilter) Admit(href string) (string, bool) {
	ref, err := url.Parse(href)
	if err != nil {
		return "", false
	}
	resolved := f.base.ResolveReference(ref)

	if !strings.EqualFold(resolved.Hostname(), f.base.Hostname()) {
		return "", false
	}

	full := resolved.String()
	lowered := strings.ToLower(full)
	for _, kw := range f.ignoreKeywords {
		if strings.Contains(lowered, kw) {
			return "", false
		}
	}

	if pathDepth(resolved.Path) > f.maxDepth {
		return "", false
	}

	prefix := firstPathSegment(resolved.Path)
	f.prefixCount[prefix]++
	if f.prefixCount[prefix] > f.maxPagesPerPrefix {
		return "", false
	}

	return full, true
}

// pathDepth counts non-empty path segments.
// "/services/web/" has depth 2; "/" and "" have depth 0.
func pathDepth(path string) int {
	depth := 0
	for _, seg := range strings.Split(path, "/") {
		if seg != "" {
			depth++
		}
	}
	return depth
}

// firstPathSegment returns the first path segment, or "" for the root.
func firstPathSegment(path string) string {
	for _, seg := range strings.Split(path, "/") {
		if seg != "" {
			return seg
		}
	}
	return ""
}
