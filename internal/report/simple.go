package report

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/nao1215/contactscan/internal/model"
)

// SimpleWriter outputs human-readable text reports.
//
// Design decision: We use plain text with ASCII formatting rather than
// ANSI colors by default because:
// 1. It works in all terminals without compatibility issues
// 2. It's easier to pipe to files or other tools
// 3. Color can be added as an option later if needed
type SimpleWriter struct {
	baseWriter

	// showPages includes the per-page text summary in the output.
	showPages bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithShowPages includes the crawled page list with text previews.
func WithShowPages(show bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.showPages = show
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// textPreviewLen is the page text preview length in the page list.
const textPreviewLen = 80

// Write outputs the crawl result in human-readable format.
func (w *SimpleWriter) Write(result *model.CrawlResult) (int, error) {
	var sb strings.Builder

	sb.WriteString(strings.Repeat("=", 60) + "\n")
	sb.WriteString("Contact Scan Report\n")
	sb.WriteString(strings.Repeat("=", 60) + "\n")
	fmt.Fprintf(&sb, "Seed URL:      %s\n", result.SeedURL)
	fmt.Fprintf(&sb, "Pages crawled: %d\n", result.PageCount())
	sb.WriteString("\n")

	w.writeSection(&sb, "Emails", result.Emails)
	w.writeSection(&sb, "Phones", result.Phones)

	if w.showPages {
		w.writePages(&sb, result)
	}

	return io.WriteString(w.output, sb.String())
}

// writeSection writes one contact list section.
func (w *SimpleWriter) writeSection(sb *strings.Builder, title string, values []string) {
	fmt.Fprintf(sb, "%s (%d)\n", title, len(values))
	sb.WriteString(strings.Repeat("-", 60) + "\n")
	if len(values) == 0 {
		sb.WriteString("  (none found)\n")
	}
	for _, v := range values {
		fmt.Fprintf(sb, "  %s\n", v)
	}
	sb.WriteString("\n")
}

// writePages writes the crawled page list with short text previews.
// Pages are sorted by URL for stable output; the pages map carries no
// meaningful order.
func (w *SimpleWriter) writePages(sb *strings.Builder, result *model.CrawlResult) {
	urls := make([]string, 0, len(result.Pages))
	for u := range result.Pages {
		urls = append(urls, u)
	}
	sort.Strings(urls)

	fmt.Fprintf(sb, "Pages (%d)\n", len(urls))
	sb.WriteString(strings.Repeat("-", 60) + "\n")
	for _, u := range urls {
		text := result.Pages[u]
		if len(text) > textPreviewLen {
			text = text[:textPreviewLen] + "..."
		}
		fmt.Fprintf(sb, "  %s\n    %s\n", u, text)
	}
	sb.WriteString("\n")
}
