// Package report formats crawl results for output.
//
// Three writers share one interface: SimpleWriter for terminal display,
// MarkdownWriter for documentation and sharing, and JSONWriter for tool
// integration.
package report
