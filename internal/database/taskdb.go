package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/contactscan/internal/model"
)

// dbFileName is the SQLite database file name inside the data directory.
const dbFileName = "contactscan.db"

// TaskDB provides SQLite-based storage for crawl tasks and results.
//
// Design decision: We use a single database file for all seeds rather
// than one per seed. Crawl history queries span seeds, and a single file
// keeps backup/restore trivial.
type TaskDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures TaskDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging for better concurrent
	// performance. Recommended: the task runner writes from workers while
	// the CLI polls.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates a TaskDB in the specified directory.
// If CreateIfNotExists is true, the directory and database file are
// created; otherwise a missing database is an error.
func Open(dbDir string, opts Options) (*TaskDB, error) {
	dbPath := filepath.Join(dbDir, dbFileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s (use CreateIfNotExists option to create)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// modernc.org/sqlite connection string: mode=rw prevents creating new
	// files, mode=rwc allows creation.
	var dsn string
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	} else {
		dsn = dbPath + "?mode=rw"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite supports only one writer; a single pooled connection avoids
	// SQLITE_BUSY churn between the runner's workers.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	tdb := &TaskDB{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := tdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return tdb, nil
}

// Close closes the database connection.
func (tdb *TaskDB) Close() error {
	return tdb.db.Close()
}

// createTables creates the database schema if it doesn't exist.
func (tdb *TaskDB) createTables() error {
	schema := `
	-- Tasks track submitted crawl runs through their lifecycle
	CREATE TABLE IF NOT EXISTS tasks (
		id TEXT PRIMARY KEY,
		seed_url TEXT NOT NULL,
		status TEXT NOT NULL,
		result_json TEXT,
		error TEXT,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_tasks_seed ON tasks(seed_url);
	CREATE INDEX IF NOT EXISTS idx_tasks_status ON tasks(status);

	-- Crawl results keep completed crawls as JSON, one row per run
	CREATE TABLE IF NOT EXISTS crawl_results (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		seed_url TEXT NOT NULL,
		result_json TEXT NOT NULL,
		timestamp DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_results_seed ON crawl_results(seed_url);
	CREATE INDEX IF NOT EXISTS idx_results_timestamp ON crawl_results(timestamp);
	`

	_, err := tdb.db.ExecContext(context.Background(), schema)
	return err
}

// SaveTask inserts a new task record.
func (tdb *TaskDB) SaveTask(ctx context.Context, task *model.Task) error {
	resultJSON, err := marshalResult(task.Result)
	if err != nil {
		return err
	}

	query := `
	INSERT INTO tasks (id, seed_url, status, result_json, error, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err = tdb.db.ExecContext(ctx, query,
		task.ID,
		task.SeedURL,
		string(task.Status),
		resultJSON,
		task.Error,
		task.CreatedAt.UTC().Format(time.RFC3339),
		task.UpdatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to save task: %w", err)
	}

	return nil
}

// UpdateTask updates a task's status, result, and error text.
func (tdb *TaskDB) UpdateTask(ctx context.Context, task *model.Task) error {
	resultJSON, err := marshalResult(task.Result)
	if err != nil {
		return err
	}

	query := `
	UPDATE tasks
	SET status = ?, result_json = ?, error = ?, updated_at = ?
	WHERE id = ?
	`

	result, err := tdb.db.ExecContext(ctx, query,
		string(task.Status),
		resultJSON,
		task.Error,
		time.Now().UTC().Format(time.RFC3339),
		task.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update task: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s", model.ErrTaskNotFound, task.ID)
	}

	return nil
}

// GetTask retrieves a task by ID. A missing task returns
// model.ErrTaskNotFound.
func (tdb *TaskDB) GetTask(ctx context.Context, id string) (*model.Task, error) {
	query := `
	SELECT id, seed_url, status, result_json, error, created_at, updated_at
	FROM tasks
	WHERE id = ?
	`

	var task model.Task
	var status string
	var resultJSON sql.NullString
	var createdAt, updatedAt string

	err := tdb.db.QueryRowContext(ctx, query, id).Scan(
		&task.ID,
		&task.SeedURL,
		&status,
		&resultJSON,
		&task.Error,
		&createdAt,
		&updatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", model.ErrTaskNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get task: %w", err)
	}

	task.Status = model.TaskStatus(status)
	task.CreatedAt = parseTimestamp(createdAt)
	task.UpdatedAt = parseTimestamp(updatedAt)

	if resultJSON.Valid && resultJSON.String != "" {
		var result model.CrawlResult
		if err := json.Unmarshal([]byte(resultJSON.String), &result); err != nil {
			return nil, fmt.Errorf("failed to parse task result: %w", err)
		}
		task.Result = &result
	}

	return &task, nil
}

// SaveCrawlResult appends a completed crawl to the results table.
func (tdb *TaskDB) SaveCrawlResult(ctx context.Context, result *model.CrawlResult) error {
	resultJSON, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to serialize crawl result: %w", err)
	}

	query := `
	INSERT INTO crawl_results (seed_url, result_json)
	VALUES (?, ?)
	`

	if _, err := tdb.db.ExecContext(ctx, query, result.SeedURL, string(resultJSON)); err != nil {
		return fmt.Errorf("failed to save crawl result: %w", err)
	}

	return nil
}

// GetLatestCrawlResult retrieves the most recent crawl result for a seed.
// It returns nil without error when the seed was never crawled.
func (tdb *TaskDB) GetLatestCrawlResult(ctx context.Context, seedURL string) (*model.CrawlResult, error) {
	query := `
	SELECT result_json FROM crawl_results
	WHERE seed_url = ?
	ORDER BY timestamp DESC, id DESC
	LIMIT 1
	`

	var resultJSON string
	err := tdb.db.QueryRowContext(ctx, query, seedURL).Scan(&resultJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get crawl result: %w", err)
	}

	var result model.CrawlResult
	if err := json.Unmarshal([]byte(resultJSON), &result); err != nil {
		return nil, fmt.Errorf("failed to parse crawl result: %w", err)
	}

	return &result, nil
}

// ListCrawledSeeds returns the distinct seed URLs with stored results.
func (tdb *TaskDB) ListCrawledSeeds(ctx context.Context) ([]string, error) {
	query := `
	SELECT DISTINCT seed_url FROM crawl_results
	ORDER BY seed_url
	`

	rows, err := tdb.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list seeds: %w", err)
	}
	defer rows.Close()

	var seeds []string
	for rows.Next() {
		var seed string
		if err := rows.Scan(&seed); err != nil {
			return nil, fmt.Errorf("failed to scan seed: %w", err)
		}
		seeds = append(seeds, seed)
	}

	return seeds, rows.Err()
}

// marshalResult serializes an optional crawl result for storage.
func marshalResult(result *model.CrawlResult) (sql.NullString, error) {
	if result == nil {
		return sql.NullString{}, nil
	}
	data, err := json.Marshal(result)
	if err != nil {
		return sql.NullString{}, fmt.Errorf("failed to serialize task result: %w", err)
	}
	return sql.NullString{String: string(data), Valid: true}, nil
}

// timestampFormats contains the timestamp formats that SQLite may return.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	time.RFC3339,              // Format we write
	time.RFC3339Nano,          // RFC3339 with nanoseconds
	"2006-01-02 15:04:05",     // SQLite default datetime format
	"2006-01-02T15:04:05",     // ISO 8601 without timezone
	"2006-01-02 15:04:05.999", // SQLite with milliseconds
}

// parseTimestamp attempts to parse a timestamp string using multiple
// formats. SQLite may return timestamps in different formats depending on
// configuration. If parsing fails with all formats, returns zero time.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
