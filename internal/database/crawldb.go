package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/mackstann/crawler-exercise/internal/model"
)

// CrawlDB provides SQLite-based storage for crawl history.
// It manages connection pooling and provides methods for CRUD operations.
//
// Design decision: We use a single database file for all crawls rather
// than one file per site. This simplifies history queries and
// backup/restore operations.
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

	// EnableWAL enables Write-Ahead Logging for better concurrent performance.
	// This is recommended for most use cases.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates a CrawlDB at the specified path.
// If CreateIfNotExists is true, the directory and database file are created.
// If CreateIfNotExists is false and the database doesn't exist, an error is returned.
func Open(dbDir string, opts Options) (*CrawlDB, error) {
	dbPath := filepath.Join(dbDir, "crawl.db")

	// Check if we should create the database or require it to exist
	if !opts.CreateIfNotExists {
		// Check if database file exists
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s (use CreateIfNotExists option to create)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		// Ensure directory exists
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// Build connection string
	// We use modernc.org/sqlite which uses a different connection string format.
	// When CreateIfNotExists is false, we use mode=rw to prevent creating new files.
	// When CreateIfNotExists is true, we use mode=rwc to allow creation.
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

	// Configure connection pool
	// SQLite doesn't benefit from multiple connections for writes,
	// but multiple readers can improve performance
	db.SetMaxOpenConns(1) // SQLite only supports one writer
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	cdb := &CrawlDB{
		db:     db,
		dbPath: dbPath,
	}

	// Enable WAL mode if requested
	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	// Create tables
	if err := cdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return cdb, nil
}

// Close closes the database connection.
func (cdb *CrawlDB) Close() error {
	return cdb.db.Close()
}

// Path returns the path to the SQLite database file.
func (cdb *CrawlDB) Path() string {
	return cdb.dbPath
}

// createTables creates the database schema if it doesn't exist.
func (cdb *CrawlDB) createTables() error {
	schema := `
	-- Crawl runs store one row per crawl with the full report as JSON
	CREATE TABLE IF NOT EXISTS crawls (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		seed TEXT NOT NULL,
		started_at DATETIME NOT NULL,
		finished_at DATETIME NOT NULL,
		pages_fetched INTEGER NOT NULL DEFAULT 0,
		links_discovered INTEGER NOT NULL DEFAULT 0,
		error_count INTEGER NOT NULL DEFAULT 0,
		partial INTEGER NOT NULL DEFAULT 0,
		report_json TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_crawls_seed ON crawls(seed);
	CREATE INDEX IF NOT EXISTS idx_crawls_started ON crawls(started_at);

	-- Pages store individual fetches belonging to a crawl run
	CREATE TABLE IF NOT EXISTS pages (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		crawl_id INTEGER NOT NULL,
		url TEXT NOT NULL,
		parent TEXT,
		depth INTEGER NOT NULL DEFAULT 0,
		status_code INTEGER,
		content_type TEXT,
		title TEXT,
		hash TEXT,
		fetch_error TEXT,
		fetched_at DATETIME,
		UNIQUE(crawl_id, url)
	);

	CREATE INDEX IF NOT EXISTS idx_pages_crawl ON pages(crawl_id);
	CREATE INDEX IF NOT EXISTS idx_pages_url ON pages(url);

	-- Links store the page-to-page edges discovered during a crawl
	CREATE TABLE IF NOT EXISTS links (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		crawl_id INTEGER NOT NULL,
		source TEXT NOT NULL,
		target TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_links_crawl ON links(crawl_id);
	CREATE INDEX IF NOT EXISTS idx_links_target ON links(crawl_id, target);
	`

	_, err := cdb.db.ExecContext(context.Background(), schema)
	return err
}

// SaveCrawl persists a completed crawl.
// The full report is stored as JSON alongside queryable summary columns,
// and each page gets its own row so history queries don't need to parse
// report JSON. The crawl row and its pages are written in one transaction.
func (cdb *CrawlDB) SaveCrawl(ctx context.Context, report *model.CrawlReport) (int64, error) {
	// Serialize the full report to JSON
	reportJSON, err := json.Marshal(report)
	if err != nil {
		return 0, fmt.Errorf("failed to serialize report: %w", err)
	}

	tx, err := cdb.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback() // no-op once committed
	}()

	result, err := tx.ExecContext(ctx, `
	INSERT INTO crawls (seed, started_at, finished_at, pages_fetched, links_discovered, error_count, partial, report_json)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`,
		report.Seed,
		formatTimestamp(report.StartedAt),
		formatTimestamp(report.FinishedAt),
		report.PagesFetched,
		report.LinksDiscovered,
		report.ErrorCount,
		report.Partial,
		string(reportJSON),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert crawl: %w", err)
	}

	crawlID, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get crawl ID: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
	INSERT INTO pages (crawl_id, url, parent, depth, status_code, content_type, title, hash, fetch_error, fetched_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(crawl_id, url) DO NOTHING
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare page insert: %w", err)
	}
	defer stmt.Close()

	linkStmt, err := tx.PrepareContext(ctx, `
	INSERT INTO links (crawl_id, source, target)
	VALUES (?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare link insert: %w", err)
	}
	defer linkStmt.Close()

	for _, page := range report.Pages {
		_, err := stmt.ExecContext(ctx,
			crawlID,
			page.URL,
			page.Parent,
			page.Depth,
			page.StatusCode,
			page.ContentType,
			page.Title,
			page.Hash,
			page.FetchError,
			formatTimestamp(page.FetchedAt),
		)
		if err != nil {
			return 0, fmt.Errorf("failed to insert page %s: %w", page.URL, err)
		}

		for _, target := range page.Links {
			if _, err := linkStmt.ExecContext(ctx, crawlID, page.URL, target); err != nil {
				return 0, fmt.Errorf("failed to insert link %s -> %s: %w", page.URL, target, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit crawl: %w", err)
	}

	return crawlID, nil
}

// CrawlSummary contains summary information about a stored crawl.
// This is used for displaying crawl history without loading the full report.
type CrawlSummary struct {
	// ID is the unique identifier of the crawl in the database.
	ID int64

	// Seed is the URL the crawl started from.
	Seed string

	// StartedAt is when the crawl began.
	StartedAt time.Time

	// FinishedAt is when the crawl completed.
	FinishedAt time.Time

	// PagesFetched is the number of pages fetched.
	PagesFetched int

	// LinksDiscovered is the number of links found.
	LinksDiscovered int

	// ErrorCount is the number of pages that failed to fetch.
	ErrorCount int

	// Partial reports whether the crawl was interrupted.
	Partial bool
}

// RecentCrawls returns summaries of the most recent crawls, newest first.
// A limit of zero or less falls back to a default of 20.
func (cdb *CrawlDB) RecentCrawls(ctx context.Context, limit int) ([]CrawlSummary, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `
	SELECT id, seed, started_at, finished_at, pages_fetched, links_discovered, error_count, partial
	FROM crawls
	ORDER BY started_at DESC, id DESC
	LIMIT ?
	`

	rows, err := cdb.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query crawls: %w", err)
	}
	defer rows.Close()

	return scanCrawlSummaries(rows)
}

// CrawlsBySeed returns summaries of stored crawls for a seed URL, newest first.
// A limit of zero or less falls back to a default of 20.
func (cdb *CrawlDB) CrawlsBySeed(ctx context.Context, seed string, limit int) ([]CrawlSummary, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `
	SELECT id, seed, started_at, finished_at, pages_fetched, links_discovered, error_count, partial
	FROM crawls
	WHERE seed = ?
	ORDER BY started_at DESC, id DESC
	LIMIT ?
	`

	rows, err := cdb.db.QueryContext(ctx, query, seed, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query crawls: %w", err)
	}
	defer rows.Close()

	return scanCrawlSummaries(rows)
}

// scanCrawlSummaries reads crawl summary rows produced by the
// eight-column summary SELECT used by the history queries.
func scanCrawlSummaries(rows *sql.Rows) ([]CrawlSummary, error) {
	var results []CrawlSummary
	for rows.Next() {
		var summary CrawlSummary
		var startedAt, finishedAt string

		err := rows.Scan(
			&summary.ID,
			&summary.Seed,
			&startedAt,
			&finishedAt,
			&summary.PagesFetched,
			&summary.LinksDiscovered,
			&summary.ErrorCount,
			&summary.Partial,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan crawl summary: %w", err)
		}

		summary.StartedAt = parseTimestamp(startedAt)
		summary.FinishedAt = parseTimestamp(finishedAt)
		results = append(results, summary)
	}

	return results, rows.Err()
}

// CrawlByID retrieves a full crawl report by its database ID.
// Returns nil without error when no crawl with that ID exists.
func (cdb *CrawlDB) CrawlByID(ctx context.Context, id int64) (*model.CrawlReport, error) {
	query := `
	SELECT report_json FROM crawls
	WHERE id = ?
	`

	var reportJSON string
	err := cdb.db.QueryRowContext(ctx, query, id).Scan(&reportJSON)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get crawl: %w", err)
	}

	var report model.CrawlReport
	if err := json.Unmarshal([]byte(reportJSON), &report); err != nil {
		return nil, fmt.Errorf("failed to parse report: %w", err)
	}

	return &report, nil
}

// PagesForCrawl returns the stored pages of a crawl in insertion order,
// which matches the order pages were fetched.
func (cdb *CrawlDB) PagesForCrawl(ctx context.Context, crawlID int64) ([]*model.Page, error) {
	query := `
	SELECT url, parent, depth, status_code, content_type, title, hash, fetch_error, fetched_at
	FROM pages
	WHERE crawl_id = ?
	ORDER BY id
	`

	rows, err := cdb.db.QueryContext(ctx, query, crawlID)
	if err != nil {
		return nil, fmt.Errorf("failed to query pages: %w", err)
	}
	defer rows.Close()

	var pages []*model.Page
	for rows.Next() {
		var page model.Page
		var fetchedAt string

		err := rows.Scan(
			&page.URL,
			&page.Parent,
			&page.Depth,
			&page.StatusCode,
			&page.ContentType,
			&page.Title,
			&page.Hash,
			&page.FetchError,
			&fetchedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan page: %w", err)
		}

		page.FetchedAt = parseTimestamp(fetchedAt)
		pages = append(pages, &page)
	}

	return pages, rows.Err()
}

// IncomingLinks returns the URLs of the pages in a crawl that link to target.
// Duplicate links from the same page are collapsed.
func (cdb *CrawlDB) IncomingLinks(ctx context.Context, crawlID int64, target string) ([]string, error) {
	query := `
	SELECT DISTINCT source FROM links
	WHERE crawl_id = ? AND target = ?
	ORDER BY source
	`

	rows, err := cdb.db.QueryContext(ctx, query, crawlID, target)
	if err != nil {
		return nil, fmt.Errorf("failed to query links: %w", err)
	}
	defer rows.Close()

	var sources []string
	for rows.Next() {
		var source string
		if err := rows.Scan(&source); err != nil {
			return nil, fmt.Errorf("failed to scan link source: %w", err)
		}
		sources = append(sources, source)
	}

	return sources, rows.Err()
}

// timestampFormats contains the timestamp formats that SQLite may return.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	"2006-01-02 15:04:05",     // SQLite default datetime format
	"2006-01-02T15:04:05Z",    // ISO 8601 with Z suffix
	"2006-01-02T15:04:05",     // ISO 8601 without timezone
	time.RFC3339,              // Full RFC3339 format
	time.RFC3339Nano,          // RFC3339 with nanoseconds
	"2006-01-02 15:04:05.999", // SQLite with milliseconds
}

// parseTimestamp attempts to parse a timestamp string using multiple formats.
// SQLite may return timestamps in different formats depending on configuration.
// If parsing fails with all formats, returns zero time.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	// Return zero time if no format matches
	// This is a fallback to avoid breaking functionality for edge cases
	return time.Time{}
}

// formatTimestamp formats a timestamp in the SQLite default datetime format.
// Times are stored in UTC so SQL-level comparisons behave consistently.
func formatTimestamp(t time.Time) string {
	return t.UTC().Format("2006-01-02 15:04:05")
}
