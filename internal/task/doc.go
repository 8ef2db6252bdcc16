// Package task runs submitted crawls on a bounded worker pool.
//
// A caller submits a seed URL, receives a task ID, and polls the task
// store for the terminal state. Task state outlives the runner: the store
// is pluggable, and the SQLite implementation keeps completed results for
// later inspection.
package task
