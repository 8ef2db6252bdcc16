package report

import (
	"io"
	"sort"
	"strconv"

	"github.com/nao1215/markdown"

	"github.com/nao1215/contactscan/internal/model"
)

// MarkdownWriter outputs crawl results in Markdown format.
// This format is designed for documentation and sharing.
//
// Design decision: We use the nao1215/markdown library for fluent markdown
// generation which provides:
// 1. Type-safe markdown generation
// 2. Support for tables, lists, and code blocks
// 3. GitHub-flavored markdown alerts
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the crawl result in Markdown format.
func (w *MarkdownWriter) Write(result *model.CrawlResult) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, result)
	w.writeContacts(md, result)
	w.writePages(md, result)

	return len(md.String()), md.Build()
}

// writeHeader writes the report header with crawl information.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, result *model.CrawlResult) {
	md.H1("Contact Scan Report")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Seed URL", "`" + result.SeedURL + "`"},
			{"Pages Crawled", strconv.Itoa(result.PageCount())},
			{"Emails Found", strconv.Itoa(len(result.Emails))},
			{"Phones Found", strconv.Itoa(len(result.Phones))},
		},
	})
	md.PlainText("")
}

// writeContacts writes the email and phone tables.
func (w *MarkdownWriter) writeContacts(md *markdown.Markdown, result *model.CrawlResult) {
	md.H2("Emails")
	md.PlainText("")
	if len(result.Emails) == 0 {
		md.PlainText("No email addresses found.")
	} else {
		rows := make([][]string, 0, len(result.Emails))
		for i, email := range result.Emails {
			rows = append(rows, []string{strconv.Itoa(i + 1), "`" + email + "`"})
		}
		md.Table(markdown.TableSet{
			Header: []string{"#", "Email"},
			Rows:   rows,
		})
	}
	md.PlainText("")

	md.H2("Phones")
	md.PlainText("")
	if len(result.Phones) == 0 {
		md.PlainText("No phone numbers found.")
	} else {
		rows := make([][]string, 0, len(result.Phones))
		for i, phone := range result.Phones {
			rows = append(rows, []string{strconv.Itoa(i + 1), "`" + phone + "`"})
		}
		md.Table(markdown.TableSet{
			Header: []string{"#", "Phone"},
			Rows:   rows,
		})
	}
	md.PlainText("")
}

// writePages writes the crawled page list. Pages are sorted by URL for
// stable output.
func (w *MarkdownWriter) writePages(md *markdown.Markdown, result *model.CrawlResult) {
	md.H2("Crawled Pages")
	md.PlainText("")
	if len(result.Pages) == 0 {
		md.PlainText("No pages produced text content.")
		md.PlainText("")
		return
	}

	urls := make([]string, 0, len(result.Pages))
	for u := range result.Pages {
		urls = append(urls, u)
	}
	sort.Strings(urls)

	items := make([]string, 0, len(urls))
	for _, u := range urls {
		items = append(items, u)
	}
	md.BulletList(items...)
	md.PlainText("")
}
