// Package model defines the data types shared across contactscan.
//
// The central types are:
//
//   - ContactRecord: per-page deduplicated emails and phone numbers
//   - CrawlResult: the merged outcome of one crawl run
//   - FetchOutcome / PageResult: per-URL fetch and extraction records
//   - Task: a submitted crawl tracked by ID through the task runner
//
// All types are plain data with small helper methods; they carry no
// behavior that touches the network or the filesystem. Everything is
// scoped to a single crawl invocation; nothing in this package persists
// state between runs.
package model
