package model

import (
	"errors"
	"time"
)

// TaskStatus describes the lifecycle state of a submitted crawl task.
type TaskStatus string

// Task lifecycle states. A task moves pending -> running -> completed or
// failed; there are no other transitions.
const (
	// TaskPending means the task is queued but no worker has picked it up.
	TaskPending TaskStatus = "pending"

	// TaskRunning means a worker is executing the crawl.
	TaskRunning TaskStatus = "running"

	// TaskCompleted means the crawl finished and the result is stored.
	TaskCompleted TaskStatus = "completed"

	// TaskFailed means the crawl could not produce a result.
	// The Error field carries the reason.
	TaskFailed TaskStatus = "failed"
)

// IsTerminal reports whether the status is a final state.
func (s TaskStatus) IsTerminal() bool {
	return s == TaskCompleted || s == TaskFailed
}

// Task represents one submitted crawl run tracked by ID.
//
// Design decision: The crawl core never owns task state; tasks exist only
// in the task runner and its store. This keeps Crawl a plain blocking call
// and makes the store replaceable (in-memory for tests, SQLite for the CLI).
type Task struct {
	// ID is the unique task identifier (UUID).
	ID string `json:"id"`

	// SeedURL is the URL the crawl starts from.
	SeedURL string `json:"seed_url"`

	// Status is the current lifecycle state.
	Status TaskStatus `json:"status"`

	// Result holds the crawl outcome once Status is TaskCompleted.
	Result *CrawlResult `json:"result,omitempty"`

	// Error holds the failure reason once Status is TaskFailed.
	Error string `json:"error,omitempty"`

	// CreatedAt is when the task was submitted.
	CreatedAt time.Time `json:"created_at"`

	// UpdatedAt is when the status last changed.
	UpdatedAt time.Time `json:"updated_at"`
}

// ErrInvalidSeedURL is returned when a crawl is requested for a seed that
// is missing or not an absolute http(s) URL. This is the only error a
// crawl reports to the caller; network-level problems degrade to empty
// per-page results instead.
var ErrInvalidSeedURL = errors.New("seed URL must be an absolute http or https URL")

// ErrTaskNotFound is returned by task stores when no task exists for an ID.
var ErrTaskNotFound = errors.New("task not found")
