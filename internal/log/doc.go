// Package log provides logging utilities for contactscan.
//
// The package wraps log/slog handlers with attribute truncation so that
// crawled page content (text, raw HTML) can be logged at debug level
// without flooding the output.
package log
