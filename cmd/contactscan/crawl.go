package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/nao1215/contactscan/internal/config"
	"github.com/nao1215/contactscan/internal/crawler"
	"github.com/nao1215/contactscan/internal/database"
	"github.com/nao1215/contactscan/internal/fetch"
	"github.com/nao1215/contactscan/internal/log"
	"github.com/nao1215/contactscan/internal/model"
	"github.com/nao1215/contactscan/internal/report"
	"github.com/nao1215/contactscan/internal/task"
)

// NewCrawlCmd creates the crawl command.
func NewCrawlCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "crawl [seed-url...]",
		Short: "Crawl a website and extract contact information",
		Long: `Crawl fetches a seed page, discovers its same-site links, fetches the
resulting subpages, and extracts email addresses and phone numbers
from the page content and mailto links.

The crawl is a single hop: only the seed page and pages it links to
directly are visited. URL filtering (ignore keywords, path depth,
per-section quota) keeps the page count small.

Examples:
  # Crawl a site and print a text report
  contactscan crawl https://example.com/

  # Render pages in a headless browser (JavaScript-built sites)
  contactscan crawl --render https://spa-site.example.com/

  # JSON output to a file
  contactscan crawl --json -o result.json https://example.com/

  # Crawl several sites through the task worker pool
  contactscan crawl https://a.example.com/ https://b.example.com/

  # Submit asynchronously and poll the task store
  contactscan crawl --async https://example.com/

Configuration file (.contactscan) example:
  defaults:
    maxDepth: 2
  sites:
    example.com:
      ignoreKeywords:
        - press
        - events
      renderJS: true`,
		Args: cobra.ArbitraryArgs,
		RunE: runCrawlCmd,
	}

	// Crawl behavior flags
	cmd.Flags().IntP("depth", "d", config.DefaultMaxDepth,
		"Maximum path depth of admitted URLs")
	cmd.Flags().IntP("max-per-prefix", "p", config.DefaultMaxPagesPerPrefix,
		"Maximum pages admitted per first path segment")
	cmd.Flags().IntP("concurrency", "n", config.DefaultConcurrency,
		"Number of pages fetched in parallel per batch")
	cmd.Flags().DurationP("timeout", "t", config.DefaultFetchTimeout,
		"Per-page fetch timeout")
	cmd.Flags().IntP("retries", "r", config.DefaultRetryAttempts,
		"Fetch attempts per page")
	cmd.Flags().Duration("batch-delay", config.DefaultBatchDelay,
		"Pause between fetch batches")
	cmd.Flags().StringSlice("ignore", nil,
		"Additional ignore keywords (appended to the defaults)")

	// Fetcher flags
	cmd.Flags().Bool("render", false,
		"Render pages in a headless browser instead of plain HTTP")
	cmd.Flags().Bool("insecure", false,
		"Skip TLS certificate verification (HTTP fetcher only)")

	// Configuration file
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .contactscan in current or home directory)")

	// Report flags
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write report to specified file path (creates directories if needed)")

	// Task flags
	cmd.Flags().Bool("async", false,
		"Submit the crawl to the task runner and poll the task store")
	cmd.Flags().Bool("no-db", false,
		"Do not persist tasks and results to the SQLite store")
	cmd.Flags().Int("workers", config.DefaultTaskWorkers,
		"Crawl worker count for the task runner")

	return cmd
}

// runCrawlCmd executes the crawl command.
func runCrawlCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := log.NewLogger(os.Stderr, cfg.Verbose)
	slog.SetDefault(logger)

	// Set up context with signal handling for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal, cancelling...")
		cancel()
	}()

	return runCrawl(ctx, cfg, logger)
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// buildConfig creates a Config from cobra command flags.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()

	var err error

	cfg.MaxDepth, err = cmd.Flags().GetInt("depth")
	if err != nil {
		return nil, err
	}

	cfg.MaxPagesPerPrefix, err = cmd.Flags().GetInt("max-per-prefix")
	if err != nil {
		return nil, err
	}

	cfg.Concurrency, err = cmd.Flags().GetInt("concurrency")
	if err != nil {
		return nil, err
	}

	cfg.FetchTimeout, err = cmd.Flags().GetDuration("timeout")
	if err != nil {
		return nil, err
	}

	cfg.RetryAttempts, err = cmd.Flags().GetInt("retries")
	if err != nil {
		return nil, err
	}

	cfg.BatchDelay, err = cmd.Flags().GetDuration("batch-delay")
	if err != nil {
		return nil, err
	}

	extraIgnore, err := cmd.Flags().GetStringSlice("ignore")
	if err != nil {
		return nil, err
	}
	cfg.IgnoreKeywords = append(cfg.IgnoreKeywords, extraIgnore...)

	cfg.RenderJS, err = cmd.Flags().GetBool("render")
	if err != nil {
		return nil, err
	}

	cfg.InsecureTLS, err = cmd.Flags().GetBool("insecure")
	if err != nil {
		return nil, err
	}

	cfg.ConfigFilePath, err = cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	// Load site-specific configurations from config file.
	// If user explicitly specified a config file path, error if not found.
	// If no path specified, silently use empty config if no file found.
	explicitConfigPath := cfg.ConfigFilePath != ""
	configPath := config.FindConfigFile(cfg.ConfigFilePath)

	if configPath != "" {
		cfg.SiteConfigs, err = config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	} else if explicitConfigPath {
		return nil, fmt.Errorf("configuration file not found: %s", cfg.ConfigFilePath)
	} else {
		cfg.SiteConfigs = &config.File{
			Sites: make(map[string]config.SiteConfig),
		}
	}

	cfg.JSONReport, err = cmd.Flags().GetBool("json")
	if err != nil {
		return nil, err
	}

	cfg.MarkdownReport, err = cmd.Flags().GetBool("markdown")
	if err != nil {
		return nil, err
	}

	cfg.ReportFile, err = cmd.Flags().GetString("output")
	if err != nil {
		return nil, err
	}

	cfg.Async, err = cmd.Flags().GetBool("async")
	if err != nil {
		return nil, err
	}

	noDB, err := cmd.Flags().GetBool("no-db")
	if err != nil {
		return nil, err
	}
	cfg.SaveToDB = !noDB
	cfg.DBDir = config.XDGDataDir()

	cfg.TaskWorkers, err = cmd.Flags().GetInt("workers")
	if err != nil {
		return nil, err
	}

	cfg.Verbose = getVerboseFlag(cmd)

	// Positional arguments are the seed URLs
	cfg.SeedURLs = args

	return cfg, nil
}

// fetcherPool hands out fetchers per crawl, creating each transport at
// most once. The browser fetcher is lazy: starting a headless browser
// costs seconds, so plain HTTP runs must not pay for it.
type fetcherPool struct {
	cfg *config.Config

	mu      sync.Mutex
	http    *fetch.HTTPFetcher
	browser *fetch.BrowserFetcher
}

// For returns the fetcher for the given mode, creating it on first use.
func (p *fetcherPool) For(ctx context.Context, render bool) (fetch.Fetcher, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	retry := fetch.NewRetryPolicy(p.cfg.RetryAttempts, p.cfg.RetryDelay)

	if render {
		if p.browser == nil {
			browser, err := fetch.NewBrowserFetcher(ctx,
				fetch.WithBrowserTimeout(p.cfg.FetchTimeout),
				fetch.WithBrowserRetryPolicy(retry),
			)
			if err != nil {
				return nil, fmt.Errorf("failed to start browser fetcher: %w", err)
			}
			p.browser = browser
		}
		return p.browser, nil
	}

	if p.http == nil {
		opts := []fetch.HTTPOption{
			fetch.WithTimeout(p.cfg.FetchTimeout),
			fetch.WithUserAgents(p.cfg.UserAgents),
			fetch.WithRetryPolicy(retry),
		}
		if p.cfg.InsecureTLS {
			opts = append(opts, fetch.WithInsecureTLS())
		}
		p.http = fetch.NewHTTPFetcher(opts...)
	}
	return p.http, nil
}

// Close releases all created fetchers.
func (p *fetcherPool) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.http != nil {
		_ = p.http.Close()
	}
	if p.browser != nil {
		_ = p.browser.Close()
	}
}

// runCrawl executes the crawl for all configured seeds.
func runCrawl(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	if cfg.Async && !cfg.SaveToDB {
		return errors.New("--async requires the task database (remove --no-db)")
	}

	logger.Info("starting crawl",
		"seeds", cfg.SeedURLs,
		"render", cfg.RenderJS,
		"concurrency", cfg.Concurrency,
		"saveToDB", cfg.SaveToDB,
	)

	var db *database.TaskDB
	if cfg.SaveToDB {
		var err error
		db, err = database.Open(cfg.DBDir, database.DefaultOptions())
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()
		logger.Info("database opened", "dir", cfg.DBDir)
	}

	pool := &fetcherPool{cfg: cfg}
	defer pool.Close()

	// Several seeds (or explicit --async) run through the task runner;
	// a single synchronous seed crawls inline.
	if cfg.Async || len(cfg.SeedURLs) > 1 {
		return runTaskCrawl(ctx, cfg, pool, db, logger)
	}
	return runDirectCrawl(ctx, cfg, pool, db, logger)
}

// crawlSeed runs one crawl with per-site configuration applied.
func crawlSeed(ctx context.Context, cfg *config.Config, pool *fetcherPool, logger *slog.Logger, seedURL string) (*model.CrawlResult, error) {
	site := siteConfigFor(cfg, seedURL)

	ignoreKeywords := cfg.IgnoreKeywords
	if len(site.IgnoreKeywords) > 0 {
		ignoreKeywords = site.IgnoreKeywords
	}
	maxDepth := cfg.MaxDepth
	if site.MaxDepth != 0 {
		maxDepth = site.MaxDepth
	}
	maxPerPrefix := cfg.MaxPagesPerPrefix
	if site.MaxPagesPerPrefix != 0 {
		maxPerPrefix = site.MaxPagesPerPrefix
	}

	fetcher, err := pool.For(ctx, cfg.RenderJS || site.RenderJS)
	if err != nil {
		return nil, err
	}

	c := crawler.New(fetcher,
		crawler.WithIgnoreKeywords(ignoreKeywords),
		crawler.WithMaxDepth(maxDepth),
		crawler.WithMaxPagesPerPrefix(maxPerPrefix),
		crawler.WithConcurrency(cfg.Concurrency),
		crawler.WithBatchDelay(cfg.BatchDelay),
		crawler.WithLogger(logger),
	)
	return c.Crawl(ctx, seedURL)
}

// siteConfigFor resolves the per-site overrides for a seed URL.
func siteConfigFor(cfg *config.Config, seedURL string) config.SiteConfig {
	if cfg.SiteConfigs == nil {
		return config.SiteConfig{}
	}
	u, err := url.Parse(seedURL)
	if err != nil {
		return cfg.SiteConfigs.Defaults
	}
	return cfg.SiteConfigs.GetSiteConfig(u.Hostname())
}

// runDirectCrawl crawls a single seed synchronously.
func runDirectCrawl(ctx context.Context, cfg *config.Config, pool *fetcherPool, db *database.TaskDB, logger *slog.Logger) error {
	seedURL := cfg.SeedURLs[0]

	fmt.Printf("Crawling %s...\n", seedURL)
	startTime := time.Now()

	result, err := crawlSeed(ctx, cfg, pool, logger, seedURL)
	if err != nil {
		return fmt.Errorf("crawl failed for %s: %w", seedURL, err)
	}

	elapsed := time.Since(startTime)
	fmt.Printf("Crawl completed in %s\n\n", elapsed.Round(time.Millisecond))

	if err := outputReport(cfg, result); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	if err := saveCrawlResult(ctx, db, result, logger); err != nil {
		logger.Error("failed to save crawl result", "seed", seedURL, "error", err.Error())
	}

	return nil
}

// runTaskCrawl submits every seed to the task runner and waits for the
// terminal states, printing a report per completed task.
func runTaskCrawl(ctx context.Context, cfg *config.Config, pool *fetcherPool, db *database.TaskDB, logger *slog.Logger) error {
	// Multi-seed runs with --no-db still go through the runner; task state
	// then lives in memory for this process only, which is all the polling
	// loop below needs.
	var store task.Store = task.NewMemoryStore()
	if db != nil {
		store = db
	}

	runner := task.NewRunner(store, func(ctx context.Context, seedURL string) (*model.CrawlResult, error) {
		return crawlSeed(ctx, cfg, pool, logger, seedURL)
	}, cfg.TaskWorkers)

	runner.Start(ctx)
	defer runner.Stop()

	ids := make([]string, 0, len(cfg.SeedURLs))
	for _, seedURL := range cfg.SeedURLs {
		id, err := runner.Submit(ctx, seedURL)
		if err != nil {
			return fmt.Errorf("failed to submit %s: %w", seedURL, err)
		}
		fmt.Printf("Submitted %s (task %s)\n", seedURL, id)
		ids = append(ids, id)
	}
	fmt.Println()

	var firstErr error
	for i, id := range ids {
		t, err := runner.Wait(ctx, id, config.DefaultTaskPollInterval)
		if err != nil {
			return fmt.Errorf("failed to wait for task %s: %w", id, err)
		}

		fmt.Printf("[%d/%d] %s: %s\n", i+1, len(ids), t.SeedURL, t.Status)
		if t.Status == model.TaskFailed {
			fmt.Fprintf(os.Stderr, "Task %s failed: %s\n", id, t.Error)
			if firstErr == nil {
				firstErr = fmt.Errorf("crawl failed for %s: %s", t.SeedURL, t.Error)
			}
			continue
		}

		if err := outputReport(cfg, t.Result); err != nil {
			logger.Error("report failed", "seed", t.SeedURL, "error", err.Error())
		}
		if err := saveCrawlResult(ctx, db, t.Result, logger); err != nil {
			logger.Error("failed to save crawl result", "seed", t.SeedURL, "error", err.Error())
		}
	}

	return firstErr
}

// outputReport writes the crawl result in the requested format.
func outputReport(cfg *config.Config, result *model.CrawlResult) error {
	// Determine output destination
	var output *os.File
	if cfg.ReportFile != "" {
		dir := filepath.Dir(cfg.ReportFile)
		if dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
		}

		// 0600: reports carry harvested contact data
		f, err := os.OpenFile(cfg.ReportFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		output = f
	} else {
		output = os.Stdout
	}

	if cfg.JSONReport {
		encoder := json.NewEncoder(output)
		encoder.SetIndent("", "  ")
		return encoder.Encode(result)
	}

	if cfg.MarkdownReport {
		writer := report.NewMarkdownWriter(output)
		_, err := writer.Write(result)
		return err
	}

	// Human-readable report (default)
	writer := report.NewSimpleWriter(output)
	_, err := writer.Write(result)
	return err
}

// saveCrawlResult saves the result to the database if enabled.
// If db is nil, this function is a no-op.
func saveCrawlResult(ctx context.Context, db *database.TaskDB, result *model.CrawlResult, logger *slog.Logger) error {
	if db == nil || result == nil {
		return nil
	}

	if err := db.SaveCrawlResult(ctx, result); err != nil {
		return fmt.Errorf("failed to save crawl result: %w", err)
	}

	logger.Info("crawl result saved to database", "seed", result.SeedURL)
	return nil
}
