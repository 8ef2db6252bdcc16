// Package database provides SQLite-based persistence for crawl tasks and
// their results.
//
// The store backs the task runner: submitted tasks are saved with their
// lifecycle status, and completed crawls keep their full result as JSON so
// past runs can be inspected without re-crawling.
package database
