package config

import "errors"

// Configuration validation errors.
// These are returned by Config.Validate() and name the specific field
// that is wrong.
//
// Design decision: We use package-level sentinel errors rather than
// creating new error instances in Validate(). Callers can use errors.Is()
// for programmatic handling while still getting human-readable messages.
var (
	// ErrNoSeedURL is returned when no seed URL is specified.
	ErrNoSeedURL = errors.New("no seed URL specified: provide one or more URLs as arguments")

	// ErrInvalidMaxDepth is returned when the path-depth bound is negative.
	// Zero is valid and admits only root-level URLs.
	ErrInvalidMaxDepth = errors.New("invalid max depth: must be non-negative")

	// ErrInvalidPrefixQuota is returned when the per-prefix page quota is
	// not positive. A quota of zero would admit nothing at all.
	ErrInvalidPrefixQuota = errors.New("invalid pages-per-prefix quota: must be positive")

	// ErrInvalidConcurrency is returned when the batch concurrency is not
	// positive. Zero concurrency would mean no fetching.
	ErrInvalidConcurrency = errors.New("invalid concurrency: must be positive")

	// ErrInvalidFetchTimeout is returned when the fetch timeout is not
	// positive. A zero timeout would fail every request immediately.
	ErrInvalidFetchTimeout = errors.New("invalid fetch timeout: must be positive")

	// ErrInvalidRetryAttempts is returned when the attempt budget is not
	// positive. At least one attempt is required to fetch anything.
	ErrInvalidRetryAttempts = errors.New("invalid retry attempts: must be positive")

	// ErrInvalidBatchDelay is returned when the inter-batch delay is
	// negative. Use 0 for no delay between batches.
	ErrInvalidBatchDelay = errors.New("invalid batch delay: must be non-negative")

	// ErrConflictingReportFormats is returned when both --json and
	// --markdown are specified. Only one output format can be used.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")
)
