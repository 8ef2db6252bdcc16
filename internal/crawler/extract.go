package crawler

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/text/unicode/norm"

	"github.com/nao1215/contactscan/internal/model"
)

// emailPattern matches one email address: local part, @, domain with at
// least one dot, and an alphabetic top-level domain of two or more letters.
const emailPattern = `[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`

var (
	// emailExact matches a whole whitespace-delimited token that is an
	// email address. Matching per token rather than scanning the full text
	// keeps boundaries strict: "number:info@x.com" is not a valid address,
	// and substring scans would happily pull one out of it.
	emailExact = regexp.MustCompile(`^` + emailPattern + `$`)

	// concatRepair splits an email that ran into the following word when
	// markup was flattened to text ("sales@acme.comEnterprise"). A trailing
	// capitalized alphanumeric run directly after an address gets a
	// separating space.
	concatRepair = regexp.MustCompile(`(` + emailPattern + `)([A-Z0-9][A-Za-z0-9]*)`)

	// phonePattern is a tolerant grouping match: optional +country code,
	// optional parenthesized area code, digit groups joined by spaces,
	// dots, or hyphens. The final group is optional so that area-code
	// formats like "(415) 555-2671" match. It over-matches on purpose; the
	// digit-count filter below drops short false positives like dates and
	// prices.
	phonePattern = regexp.MustCompile(`(\+\d{1,4}[\s-]?)?(\(?\d{2,4}\)?[\s.-]?)?\d{2,4}[\s.-]?\d{3,4}([\s.-]?\d{3,4})?`)

	// whitespaceRun collapses any whitespace run to a single space.
	whitespaceRun = regexp.MustCompile(`\s+`)
)

// minPhoneDigits is the minimum digit count for a phone candidate.
// Anything shorter is a date, a price, or a fragment.
const minPhoneDigits = 8

// skipSubtrees are elements whose text is never visible page content.
var skipSubtrees = map[string]bool{
	"script":   true,
	"style":    true,
	"noscript": true,
	"template": true,
}

// Extract mines one page's markup for contact information.
// It returns the per-page deduplicated contact set and the page's
// normalized (whitespace-collapsed, trimmed) text. Unparseable markup
// yields an empty record and empty text.
//
// mailto: anchors are collected before the text walk so that addresses
// only present in link targets are not lost, and so they take first
// position in the per-page ordering.
func Extract(markup string) (*model.ContactRecord, string) {
	record := model.NewContactRecord()

	doc, err := html.Parse(strings.NewReader(markup))
	if err != nil {
		return record, ""
	}

	var texts []string
	walkContent(doc, func(n *html.Node) {
		switch {
		case n.Type == html.ElementNode && n.Data == "a":
			if email, ok := mailtoAddress(getAttr(n, "href")); ok {
				record.AddEmail(email)
			}
		case n.Type == html.TextNode:
			text := normalizeText(n.Data)
			if text == "" {
				return
			}
			text = concatRepair.ReplaceAllString(text, "$1 $2")
			extractEmails(text, record)
			extractPhones(text, record)
			texts = append(texts, text)
		}
	})

	pageText := strings.TrimSpace(strings.Join(texts, " "))
	return record, pageText
}

// walkContent traverses the tree depth-first, skipping non-content
// subtrees.
func walkContent(n *html.Node, visit func(*html.Node)) {
	if n.Type == html.ElementNode && skipSubtrees[n.Data] {
		return
	}
	visit(n)
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walkContent(c, visit)
	}
}

// mailtoAddress extracts a validated email address from a mailto: href.
// The scheme prefix and any ?subject=... query are stripped before
// validation.
func mailtoAddress(href string) (string, bool) {
	if len(href) < len("mailto:") || !strings.EqualFold(href[:len("mailto:")], "mailto:") {
		return "", false
	}
	addr := href[len("mailto:"):]
	if i := strings.IndexByte(addr, '?'); i >= 0 {
		addr = addr[:i]
	}
	addr = strings.TrimSpace(addr)
	if !emailExact.MatchString(addr) {
		return "", false
	}
	return addr, true
}

// normalizeText NFC-normalizes one text node and collapses whitespace.
// NFC first: visually identical addresses can arrive in decomposed form
// and would otherwise dedupe as distinct strings.
func normalizeText(text string) string {
	text = norm.NFC.String(text)
	return strings.TrimSpace(whitespaceRun.ReplaceAllString(text, " "))
}

// extractEmails adds every whitespace-delimited token that is exactly an
// email address.
func extractEmails(text string, record *model.ContactRecord) {
	for _, token := range strings.Fields(text) {
		if emailExact.MatchString(token) {
			record.AddEmail(token)
		}
	}
}

// extractPhones adds phone candidates that carry at least minPhoneDigits
// digits. Candidates are recorded with their source formatting intact.
func extractPhones(text string, record *model.ContactRecord) {
	for _, match := range phonePattern.FindAllString(text, -1) {
		candidate := strings.TrimSpace(match)
		if digitCount(candidate) >= minPhoneDigits {
			record.AddPhone(candidate)
		}
	}
}

// digitCount counts ASCII digits in s.
func digitCount(s string) int {
	count := 0
	for _, r := range s {
		if r >= '0' && r <= '9' {
			count++
		}
	}
	return count
}
