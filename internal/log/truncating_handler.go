package log

import (
	"context"
	"io"
	"log/slog"
	"unicode/utf8"
)

// MaxAttrValueLen is the maximum length of a string attribute value before
// it is truncated. Page text and raw HTML flow through log attributes, and
// a single page can be hundreds of kilobytes.
const MaxAttrValueLen = 256

// TruncationMarker is appended to truncated attribute values.
const TruncationMarker = "...(truncated)"

// TruncatingHandler wraps an slog.Handler and caps oversized string
// attribute values before they reach the underlying handler.
//
// Design decision: We use a handler wrapper rather than truncating at each
// call site because:
//  1. It integrates seamlessly with standard slog APIs
//  2. It works with any underlying handler (text, JSON, etc.)
//  3. Call sites stay free to log raw page content without bookkeeping
type TruncatingHandler struct {
	// handler is the underlying slog handler that receives capped records.
	handler slog.Handler
}

// NewTruncatingHandler creates a new TruncatingHandler wrapping the given
// handler. If handler is nil, slog.Default().Handler() is used.
func NewTruncatingHandler(handler slog.Handler) *TruncatingHandler {
	if handler == nil {
		handler = slog.Default().Handler()
	}
	return &TruncatingHandler{handler: handler}
}

// Enabled reports whether the handler handles records at the given level.
// It delegates to the underlying handler.
func (h *TruncatingHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

// Handle truncates the record's attributes and passes it to the underlying
// handler.
func (h *TruncatingHandler) Handle(ctx context.Context, r slog.Record) error {
	capped := slog.NewRecord(r.Time, r.Level, r.Message, r.PC)

	r.Attrs(func(a slog.Attr) bool {
		capped.AddAttrs(h.truncateAttr(a))
		return true
	})

	return h.handler.Handle(ctx, capped)
}

// WithAttrs returns a new handler with the given attributes added.
// Attributes are truncated before being added.
func (h *TruncatingHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	capped := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		capped[i] = h.truncateAttr(a)
	}
	return &TruncatingHandler{handler: h.handler.WithAttrs(capped)}
}

// WithGroup returns a new handler with the given group name.
func (h *TruncatingHandler) WithGroup(name string) slog.Handler {
	return &TruncatingHandler{handler: h.handler.WithGroup(name)}
}

// truncateAttr caps a single attribute, recursively handling groups.
func (h *TruncatingHandler) truncateAttr(a slog.Attr) slog.Attr {
	if a.Value.Kind() == slog.KindGroup {
		attrs := a.Value.Group()
		capped := make([]slog.Attr, len(attrs))
		for i, groupAttr := range attrs {
			capped[i] = h.truncateAttr(groupAttr)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(capped...)}
	}

	if a.Value.Kind() == slog.KindString {
		strVal := a.Value.String()
		if len(strVal) > MaxAttrValueLen {
			// Back off to a rune boundary; a byte-index cut can split a
			// multi-byte rune and emit invalid UTF-8.
			cut := MaxAttrValueLen
			for cut > 0 && !utf8.RuneStart(strVal[cut]) {
				cut--
			}
			return slog.String(a.Key, strVal[:cut]+TruncationMarker)
		}
	}

	return a
}

// NewLogger creates a new slog.Logger with attribute truncation and text
// output.
//
// Parameters:
//   - w: The io.Writer to write log output to (typically os.Stderr)
//   - verbose: If true, sets log level to Debug; otherwise Warn
//
// Returns a *slog.Logger that can be used with slog.SetDefault() or passed
// to components that accept *slog.Logger.
func NewLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	textHandler := slog.NewTextHandler(w, opts)

	return slog.New(NewTruncatingHandler(textHandler))
}

// NewJSONLogger creates a new slog.Logger with attribute truncation that
// outputs JSON format. Useful for structured log aggregation.
func NewJSONLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	jsonHandler := slog.NewJSONHandler(w, opts)

	return slog.New(NewTruncatingHandler(jsonHandler))
}
