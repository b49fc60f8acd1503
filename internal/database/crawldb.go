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

	"github.com/mati7337/itchy-graphs/internal/model"
)

// FileName is the name of the database file inside the database directory.
const FileName = "itchy.db"

// CrawlDB provides SQLite-based storage for cached responses and crawl runs.
//
// A CrawlDB satisfies fetch.Cache, so the HTTP getter can use it directly.
type CrawlDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures CrawlDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates a CrawlDB in the specified directory.
// If CreateIfNotExists is true, the directory and database file are created.
// If CreateIfNotExists is false and the database doesn't exist, an error is returned.
func Open(dbDir string, opts Options) (*CrawlDB, error) {
	dbPath := filepath.Join(dbDir, FileName)

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

	// mode=rw refuses to create a missing file, mode=rwc allows it.
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

	db.SetMaxOpenConns(1) // SQLite only supports one writer
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	cdb := &CrawlDB{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := cdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return cdb, nil
}

// Path returns the path of the database file.
func (cdb *CrawlDB) Path() string {
	return cdb.dbPath
}

// Close closes the database connection.
func (cdb *CrawlDB) Close() error {
	return cdb.db.Close()
}

// createTables creates the database schema if it doesn't exist.
func (cdb *CrawlDB) createTables() error {
	schema := `
	-- Cached response bodies, keyed by a digest of the request URL
	CREATE TABLE IF NOT EXISTS responses (
		key TEXT PRIMARY KEY,
		url TEXT NOT NULL,
		body BLOB NOT NULL,
		fetched_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_responses_url ON responses(url);

	-- One row per crawl run, with the full summary as JSON
	CREATE TABLE IF NOT EXISTS crawl_runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		started_at DATETIME NOT NULL,
		finished_at DATETIME NOT NULL,
		rounds INTEGER NOT NULL,
		works_visited INTEGER NOT NULL,
		authors_visited INTEGER NOT NULL,
		reason TEXT NOT NULL,
		summary_json TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_runs_started ON crawl_runs(started_at);
	`

	_, err := cdb.db.ExecContext(context.Background(), schema)
	return err
}

// Lookup returns the cached body for key. The boolean is false on a miss.
func (cdb *CrawlDB) Lookup(ctx context.Context, key string) ([]byte, bool, error) {
	var body []byte
	err := cdb.db.QueryRowContext(ctx, `SELECT body FROM responses WHERE key = ?`, key).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to look up cached response: %w", err)
	}
	return body, true, nil
}

// Store caches body under key. An existing entry for the same key is kept,
// the cache is append-only.
func (cdb *CrawlDB) Store(ctx context.Context, key, requestURL string, body []byte) error {
	query := `
	INSERT INTO responses (key, url, body)
	VALUES (?, ?, ?)
	ON CONFLICT(key) DO NOTHING
	`
	if _, err := cdb.db.ExecContext(ctx, query, key, requestURL, body); err != nil {
		return fmt.Errorf("failed to store cached response: %w", err)
	}
	return nil
}

// CachedResponse is the metadata of one cache entry.
type CachedResponse struct {
	Key       string
	URL       string
	Size      int
	FetchedAt time.Time
}

// GetCachedResponse returns metadata for the entry with the given key,
// or nil if there is none.
func (cdb *CrawlDB) GetCachedResponse(ctx context.Context, key string) (*CachedResponse, error) {
	query := `
	SELECT key, url, length(body), fetched_at FROM responses
	WHERE key = ?
	`

	var entry CachedResponse
	var fetchedAt string
	err := cdb.db.QueryRowContext(ctx, query, key).Scan(&entry.Key, &entry.URL, &entry.Size, &fetchedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get cached response: %w", err)
	}
	entry.FetchedAt = parseTimestamp(fetchedAt)
	return &entry, nil
}

// CountCachedResponses returns the number of cached responses.
func (cdb *CrawlDB) CountCachedResponses(ctx context.Context) (int, error) {
	var n int
	if err := cdb.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM responses`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count cached responses: %w", err)
	}
	return n, nil
}

// CrawlRun is a stored crawl run.
type CrawlRun struct {
	ID             int64
	StartedAt      time.Time
	FinishedAt     time.Time
	Rounds         int
	WorksVisited   int
	AuthorsVisited int
	Reason         model.StopReason
	Summary        *model.CrawlSummary
}

// SaveCrawlRun stores a crawl summary and returns the new run ID.
func (cdb *CrawlDB) SaveCrawlRun(ctx context.Context, summary *model.CrawlSummary) (int64, error) {
	if summary == nil {
		return 0, errors.New("summary is nil")
	}

	summaryJSON, err := json.Marshal(summary)
	if err != nil {
		return 0, fmt.Errorf("failed to serialize summary: %w", err)
	}

	query := `
	INSERT INTO crawl_runs (started_at, finished_at, rounds, works_visited, authors_visited, reason, summary_json)
	VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	result, err := cdb.db.ExecContext(ctx, query,
		summary.StartedAt.UTC().Format(time.RFC3339Nano),
		summary.FinishedAt.UTC().Format(time.RFC3339Nano),
		len(summary.Rounds),
		summary.WorksVisited,
		summary.AuthorsVisited,
		string(summary.Reason),
		string(summaryJSON),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to save crawl run: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get run id: %w", err)
	}
	return id, nil
}

// ListCrawlRuns returns stored runs, most recent first. A limit of zero or
// less returns every run.
func (cdb *CrawlDB) ListCrawlRuns(ctx context.Context, limit int) ([]CrawlRun, error) {
	query := `
	SELECT id, started_at, finished_at, rounds, works_visited, authors_visited, reason, summary_json
	FROM crawl_runs
	ORDER BY started_at DESC, id DESC
	`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := cdb.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list crawl runs: %w", err)
	}
	defer rows.Close()

	var runs []CrawlRun
	for rows.Next() {
		var run CrawlRun
		var startedAt, finishedAt, reason, summaryJSON string
		if err := rows.Scan(&run.ID, &startedAt, &finishedAt, &run.Rounds,
			&run.WorksVisited, &run.AuthorsVisited, &reason, &summaryJSON); err != nil {
			return nil, fmt.Errorf("failed to scan crawl run: %w", err)
		}
		run.StartedAt = parseTimestamp(startedAt)
		run.FinishedAt = parseTimestamp(finishedAt)
		run.Reason = model.StopReason(reason)

		var summary model.CrawlSummary
		if err := json.Unmarshal([]byte(summaryJSON), &summary); err != nil {
			return nil, fmt.Errorf("failed to parse summary of run %d: %w", run.ID, err)
		}
		run.Summary = &summary

		runs = append(runs, run)
	}

	return runs, rows.Err()
}

// timestampFormats contains the timestamp formats that SQLite may return.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	time.RFC3339Nano,          // written by SaveCrawlRun
	"2006-01-02 15:04:05",     // SQLite default datetime format
	"2006-01-02T15:04:05Z",    // ISO 8601 with Z suffix
	"2006-01-02T15:04:05",     // ISO 8601 without timezone
	time.RFC3339,              // Full RFC3339 format
	"2006-01-02 15:04:05.999", // SQLite with milliseconds
}

// parseTimestamp attempts to parse a timestamp string using multiple formats.
// If parsing fails with all formats, returns zero time.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
