package log

import (
	"bytes"
	"io"
	"log/slog"
	"strings"
	"testing"
	"unicode/utf8"
)

// TestTruncatingHandler tests attribute value capping.
func TestTruncatingHandler(t *testing.T) {
	t.Parallel()

	t.Run("caps oversized string attributes", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := NewLogger(&buf, true)

		huge := strings.Repeat("x", MaxAttrValueLen*4)
		logger.Debug("fetched page", "html", huge)

		out := buf.String()
		if !strings.Contains(out, TruncationMarker) {
			t.Error("expected truncation marker in output")
		}
		if strings.Contains(out, huge) {
			t.Error("expected oversized value to be cut")
		}
	})

	t.Run("cuts at a rune boundary", func(t *testing.T) {
		t.Parallel()

		h := NewTruncatingHandler(slog.NewTextHandler(io.Discard, nil))

		// Three bytes per rune, so the cap lands mid-rune.
		huge := strings.Repeat("あ", MaxAttrValueLen)
		got := h.truncateAttr(slog.String("text", huge)).Value.String()

		if !strings.HasSuffix(got, TruncationMarker) {
			t.Fatalf("expected truncation marker, got %q", got)
		}
		if !utf8.ValidString(got) {
			t.Error("expected truncated value to remain valid UTF-8")
		}
		if kept := strings.TrimSuffix(got, TruncationMarker); len(kept) > MaxAttrValueLen {
			t.Errorf("expected at most %d kept bytes, got %d", MaxAttrValueLen, len(kept))
		}
	})

	t.Run("leaves short values untouched", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := NewLogger(&buf, true)

		logger.Debug("admitted link", "url", "https://example.com/contact")

		out := buf.String()
		if !strings.Contains(out, "https://example.com/contact") {
			t.Errorf("expected value to pass through, got %q", out)
		}
		if strings.Contains(out, TruncationMarker) {
			t.Error("did not expect truncation marker")
		}
	})

	t.Run("truncates inside groups", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := NewLogger(&buf, true)

		huge := strings.Repeat("y", MaxAttrValueLen+1)
		logger.Debug("page", slog.Group("page", slog.String("text", huge)))

		if !strings.Contains(buf.String(), TruncationMarker) {
			t.Error("expected truncation marker for grouped attribute")
		}
	})

	t.Run("truncates WithAttrs values", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := NewLogger(&buf, true).With("body", strings.Repeat("z", MaxAttrValueLen+1))
		logger.Debug("fetched")

		if !strings.Contains(buf.String(), TruncationMarker) {
			t.Error("expected truncation marker for pre-bound attribute")
		}
	})
}

// TestLoggerLevels tests the verbose flag mapping.
func TestLoggerLevels(t *testing.T) {
	t.Parallel()

	t.Run("default level suppresses debug", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := NewLogger(&buf, false)

		logger.Debug("hidden")
		logger.Warn("shown")

		out := buf.String()
		if strings.Contains(out, "hidden") {
			t.Error("expected debug output to be suppressed")
		}
		if !strings.Contains(out, "shown") {
			t.Error("expected warn output")
		}
	})

	t.Run("verbose enables debug", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := NewLogger(&buf, true)

		logger.Debug("visible")

		if !strings.Contains(buf.String(), "visible") {
			t.Error("expected debug output in verbose mode")
		}
	})
}

// TestNewJSONLogger tests JSON output with truncation.
func TestNewJSONLogger(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := NewJSONLogger(&buf, true)

	logger.Debug("fetched", "html", strings.Repeat("a", MaxAttrValueLen+1))

	out := buf.String()
	if !strings.HasPrefix(strings.TrimSpace(out), "{") {
		t.Errorf("expected JSON output, got %q", out)
	}
	if !strings.Contains(out, TruncationMarker) {
		t.Error("expected truncation marker")
	}
}
