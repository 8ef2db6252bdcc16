package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
// These values mirror the crawl parameters the tool was tuned with in
// production; they favor polite, shallow crawls over completeness.
const (
	// DefaultMaxDepth limits how many path segments an admitted URL may
	// have. The crawl is single-hop (seed page plus its direct links), so
	// depth here bounds the shape of admitted URLs, not recursion.
	DefaultMaxDepth = 2

	// DefaultMaxPagesPerPrefix caps how many URLs are admitted under each
	// first path segment. Company sites repeat navigation links under
	// /services/*, /products/* etc.; two per section is enough to find
	// contact data without crawling a whole catalog.
	DefaultMaxPagesPerPrefix = 2

	// DefaultConcurrency is the number of pages fetched in parallel within
	// one batch. Three keeps memory modest in rendering mode, where each
	// in-flight page is a browser tab.
	DefaultConcurrency = 3

	// DefaultFetchTimeout is the per-page navigation/request timeout.
	// 45 seconds sits between the 15s floor (slow marketing sites behind
	// CDNs routinely need more) and the 60s ceiling (anything slower is
	// effectively down for our purposes).
	DefaultFetchTimeout = 45 * time.Second

	// DefaultRetryAttempts is the fetch attempt budget per URL.
	DefaultRetryAttempts = 2

	// DefaultRetryDelay is the fixed delay between ordinary retry attempts.
	// Rate-limited responses use exponential backoff with jitter instead.
	DefaultRetryDelay = 1 * time.Second

	// DefaultBatchDelay is the pause between batches of page fetches.
	// This reduces the chance of tripping origin-side rate limiting.
	// The delay is skipped after the final batch.
	DefaultBatchDelay = 1 * time.Second

	// DefaultTaskWorkers is the number of crawl workers the task runner
	// starts when processing submitted tasks.
	DefaultTaskWorkers = 2

	// DefaultTaskPollInterval is how often the CLI polls the task store
	// when waiting for an asynchronously submitted crawl.
	DefaultTaskPollInterval = 2 * time.Second

	// AppName is the application name used for XDG directory paths.
	AppName = "contactscan"
)

// DefaultUserAgents is the pool the HTTP fetcher rotates through.
// Some origin servers reject default Go client identifiers outright, so
// the pool carries common browser strings.
var DefaultUserAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (X11; Linux x86_64; rv:109.0) Gecko/20100101 Firefox/115.0",
}

// DefaultIgnoreKeywords is the stock ignore list applied to candidate URLs.
// A URL containing any of these as a case-insensitive substring is skipped.
//
// Note: this is a blunt substring filter, not a path-segment match. It can
// reject legitimate pages whose path merely contains a keyword (e.g. "java"
// also matches "javascript-free"). That imprecision is a known tradeoff
// kept for configuration simplicity.
var DefaultIgnoreKeywords = []string{
	"privacy", "terms", "cookie", "legal", "#", "disclaimer", "policy",
	"hire", "drupal", "joomla", "wordpress", "cms", "power-bi", "tableau",
	"xamarin", "ecommerce", "flutter", "react-native", "android", "ios",
	"mobile-app", "vuejs", "laravel", "angular", "reactjs", "java", "php",
	"dotnet", "nodejs", "python", "full-stack", "back-end", "front-end",
	"shopify", "nopcommerce", "careers", "newsletter", "partner", "guide",
	"stories", "story", "webinar", "custom", "studies", "study", "blog",
	"sitemap", "free-trial", "pricing", "videos",
}

// Config holds all configuration options for contactscan.
// It is populated from CLI flags and the optional YAML config file, then
// passed through the application by dependency injection; there is no
// global configuration state.
//
// Design decision: We use a single flat struct instead of nested structs
// (e.g. CrawlConfig, FetchConfig) for simplicity. The option count is
// manageable, and nesting would add complexity without much benefit.
type Config struct {
	// SeedURLs is the list of absolute http(s) URLs to crawl.
	SeedURLs []string

	// IgnoreKeywords are case-insensitive substrings; candidate URLs
	// containing any of them are rejected during discovery.
	IgnoreKeywords []string

	// MaxDepth is the maximum number of non-empty path segments an
	// admitted URL may have after stripping a trailing slash.
	MaxDepth int

	// MaxPagesPerPrefix caps admissions per first path segment.
	// Rejected near-duplicates still count toward the quota.
	MaxPagesPerPrefix int

	// Concurrency is the number of concurrent page fetches per batch.
	Concurrency int

	// FetchTimeout is the per-page fetch/navigation timeout.
	FetchTimeout time.Duration

	// RetryAttempts is the fetch attempt budget per URL.
	RetryAttempts int

	// RetryDelay is the fixed delay between ordinary retries.
	RetryDelay time.Duration

	// BatchDelay is the pause applied between fetch batches.
	BatchDelay time.Duration

	// RenderJS selects the browser-based fetcher instead of plain HTTP.
	// Needed for sites that assemble their DOM with JavaScript.
	RenderJS bool

	// InsecureTLS disables TLS certificate verification in the HTTP
	// fetcher. Off by default; intended for internal or staging sites
	// with self-signed certificates.
	InsecureTLS bool

	// UserAgents is the pool rotated through per request. When empty,
	// DefaultUserAgents is used.
	UserAgents []string

	// Verbose enables debug-level log output.
	Verbose bool

	// JSONReport enables JSON output instead of the plain text report.
	// Mutually exclusive with MarkdownReport.
	JSONReport bool

	// MarkdownReport enables Markdown output instead of plain text.
	// Mutually exclusive with JSONReport.
	MarkdownReport bool

	// ReportFile is the output file path for the report.
	// Empty means stdout.
	ReportFile string

	// ConfigFilePath is the path to the YAML configuration file.
	// Empty means search .contactscan in the working and home directories.
	ConfigFilePath string

	// SiteConfigs holds per-site overrides loaded from the config file.
	SiteConfigs *File

	// Async submits the crawl to the task runner and polls the task
	// store instead of blocking on the crawl directly.
	Async bool

	// SaveToDB persists tasks and crawl results to the SQLite store.
	SaveToDB bool

	// DBDir is the directory holding the SQLite database.
	// Defaults to the XDG data directory.
	DBDir string

	// TaskWorkers is the crawl worker count for the task runner.
	TaskWorkers int
}

// NewConfig creates a Config with default values.
// Many defaults are non-zero, so relying on zero values would be wrong;
// the constructor also documents what the defaults are.
func NewConfig() *Config {
	return &Config{
		IgnoreKeywords:    append([]string(nil), DefaultIgnoreKeywords...),
		MaxDepth:          DefaultMaxDepth,
		MaxPagesPerPrefix: DefaultMaxPagesPerPrefix,
		Concurrency:       DefaultConcurrency,
		FetchTimeout:      DefaultFetchTimeout,
		RetryAttempts:     DefaultRetryAttempts,
		RetryDelay:        DefaultRetryDelay,
		BatchDelay:        DefaultBatchDelay,
		UserAgents:        append([]string(nil), DefaultUserAgents...),
		TaskWorkers:       DefaultTaskWorkers,
	}
}

// XDGDataDir returns the XDG data directory for contactscan.
// On Linux: ~/.local/share/contactscan
// On macOS: ~/Library/Application Support/contactscan
// On Windows: %LOCALAPPDATA%\contactscan
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for contactscan.
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks if the configuration is valid.
// It returns the first problem found; fixing one error often makes the
// rest irrelevant, so collecting them all is not worth the complexity.
// Called once after flag parsing, before any network activity.
func (c *Config) Validate() error {
	if len(c.SeedURLs) == 0 {
		return ErrNoSeedURL
	}
	if c.MaxDepth < 0 {
		return ErrInvalidMaxDepth
	}
	if c.MaxPagesPerPrefix <= 0 {
		return ErrInvalidPrefixQuota
	}
	if c.Concurrency <= 0 {
		return ErrInvalidConcurrency
	}
	if c.FetchTimeout <= 0 {
		return ErrInvalidFetchTimeout
	}
	if c.RetryAttempts <= 0 {
		return ErrInvalidRetryAttempts
	}
	if c.BatchDelay < 0 {
		return ErrInvalidBatchDelay
	}
	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}
	return nil
}
