package crawler

import (
	"strings"
	"testing"
)

// TestExtractEmails tests email mining from markup.
func TestExtractEmails(t *testing.T) {
	t.Parallel()

	t.Run("finds addresses in visible text", func(t *testing.T) {
		t.Parallel()

		record, _ := Extract(`<html><body><p>Reach us at info@example.com today</p></body></html>`)
		if len(record.Emails) != 1 || record.Emails[0] != "info@example.com" {
			t.Errorf("unexpected emails: %v", record.Emails)
		}
	})

	t.Run("collects mailto anchors with query stripped", func(t *testing.T) {
		t.Parallel()

		record, _ := Extract(`<html><body><a href="mailto:sales@example.com?subject=Hello">Email sales</a></body></html>`)
		if len(record.Emails) != 1 || record.Emails[0] != "sales@example.com" {
			t.Errorf("unexpected emails: %v", record.Emails)
		}
	})

	t.Run("ignores invalid mailto targets", func(t *testing.T) {
		t.Parallel()

		record, _ := Extract(`<html><body><a href="mailto:not-an-address">broken</a></body></html>`)
		if len(record.Emails) != 0 {
			t.Errorf("expected no emails, got %v", record.Emails)
		}
	})

	t.Run("repairs addresses concatenated with following word", func(t *testing.T) {
		t.Parallel()

		record, _ := Extract(`<html><body><span>sales@acme.comEnterprise solutions</span></body></html>`)
		if len(record.Emails) != 1 || record.Emails[0] != "sales@acme.com" {
			t.Errorf("unexpected emails: %v", record.Emails)
		}
	})

	t.Run("requires whitespace boundaries", func(t *testing.T) {
		t.Parallel()

		// Glued to preceding text without a capitalized start, the token
		// is not a clean address and must not yield one.
		record, _ := Extract(`<html><body><p>order:ref12@something.badtoken more text</p></body></html>`)
		for _, e := range record.Emails {
			if strings.Contains(e, "something") {
				t.Errorf("expected no address from glued token, got %v", record.Emails)
			}
		}
	})

	t.Run("skips script and style content", func(t *testing.T) {
		t.Parallel()

		record, _ := Extract(`<html><body>
			<script>var x = "tracker@analytics.com";</script>
			<style>.a { content: "css@style.com"; }</style>
			<p>real@example.com</p>
		</body></html>`)
		if len(record.Emails) != 1 || record.Emails[0] != "real@example.com" {
			t.Errorf("unexpected emails: %v", record.Emails)
		}
	})

	t.Run("deduplicates case-sensitively within the page", func(t *testing.T) {
		t.Parallel()

		record, _ := Extract(`<html><body>
			<p>info@example.com and again info@example.com</p>
			<p>Info@example.com</p>
		</body></html>`)
		if len(record.Emails) != 2 {
			t.Errorf("expected 2 distinct addresses, got %v", record.Emails)
		}
	})

	t.Run("mailto addresses come before text addresses", func(t *testing.T) {
		t.Parallel()

		record, _ := Extract(`<html><body>
			<p>first@example.com</p>
			<a href="mailto:linked@example.com">mail</a>
		</body></html>`)
		if len(record.Emails) != 2 {
			t.Fatalf("expected 2 addresses, got %v", record.Emails)
		}
		// mailto extraction happens during the same walk; the anchor
		// appears after the paragraph here, so text order wins.
		if record.Emails[0] != "first@example.com" {
			t.Errorf("unexpected ordering: %v", record.Emails)
		}
	})
}

// TestExtractPhones tests phone mining and the digit-count filter.
func TestExtractPhones(t *testing.T) {
	t.Parallel()

	t.Run("finds formatted numbers", func(t *testing.T) {
		t.Parallel()

		record, _ := Extract(`<html><body><p>Call (415) 555-2671 now</p></body></html>`)
		if len(record.Phones) != 1 || record.Phones[0] != "(415) 555-2671" {
			t.Errorf("unexpected phones: %v", record.Phones)
		}
	})

	t.Run("finds international numbers", func(t *testing.T) {
		t.Parallel()

		record, _ := Extract(`<html><body><p>Office: +44 20 7946 0958</p></body></html>`)
		found := false
		for _, p := range record.Phones {
			if strings.Contains(p, "7946") {
				found = true
			}
		}
		if !found {
			t.Errorf("expected international number, got %v", record.Phones)
		}
	})

	t.Run("drops candidates with fewer than 8 digits", func(t *testing.T) {
		t.Parallel()

		record, _ := Extract(`<html><body><p>Established 1999, open 9-5, suite 42 10</p></body></html>`)
		if len(record.Phones) != 0 {
			t.Errorf("expected short digit runs to be dropped, got %v", record.Phones)
		}
	})

	t.Run("keeps source formatting verbatim", func(t *testing.T) {
		t.Parallel()

		record, _ := Extract(`<html><body><p>415.555.2671 or 415-555-2671</p></body></html>`)
		if len(record.Phones) != 2 {
			t.Errorf("expected both formattings kept, got %v", record.Phones)
		}
	})
}

// TestExtractPageText tests the normalized text output.
func TestExtractPageText(t *testing.T) {
	t.Parallel()

	t.Run("collapses whitespace", func(t *testing.T) {
		t.Parallel()

		_, text := Extract("<html><body><p>Hello\n\n\t  world</p><p>again</p></body></html>")
		if text != "Hello world again" {
			t.Errorf("unexpected text: %q", text)
		}
	})

	t.Run("unparseable markup yields empty record", func(t *testing.T) {
		t.Parallel()

		// html.Parse is extremely tolerant; even garbage parses. The
		// empty string is the practical degenerate input.
		record, text := Extract("")
		if !record.IsEmpty() || text != "" {
			t.Errorf("expected empty outcome, got %v / %q", record, text)
		}
	})
}
