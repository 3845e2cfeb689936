package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
// These values are chosen for crawling regular public websites from a
// single machine without overwhelming the target.
const (
	// DefaultConcurrency is the maximum number of in-flight fetches.
	// Eight concurrent connections to a single site is a common politeness
	// ceiling for well-behaved crawlers; going higher rarely speeds up a
	// crawl and risks tripping rate limits on the target.
	DefaultConcurrency = 8

	// DefaultTimeout is the per-request timeout. 30 seconds is generous
	// enough for slow origins while keeping a stuck connection from
	// stalling a worker indefinitely.
	DefaultTimeout = 30 * time.Second

	// DefaultCrawlTimeout is the overall crawl deadline.
	// Zero means no deadline; the crawl runs until the frontier drains.
	DefaultCrawlTimeout = 0 * time.Second

	// DefaultMaxPages is the maximum number of pages to fetch per crawl.
	// Zero means unlimited. The visited set already guarantees termination
	// on finite sites, so a cap is only needed for infinitely-generating
	// sites (calendars, faceted search).
	DefaultMaxPages = 0

	// DefaultMaxDepth is the maximum link distance from the seed.
	// Zero means unlimited, matching the uncapped recursive walk.
	DefaultMaxDepth = 0

	// AppName is the application name used for XDG directory paths.
	AppName = "crawl"

	// DefaultUserAgent identifies the crawler in HTTP requests.
	// Using a descriptive User-Agent is good practice and allows operators
	// to identify crawler traffic in their logs.
	DefaultUserAgent = "crawl/2.0 (+https://github.com/mackstann/crawler-exercise)"

	// DefaultMaxBodySize limits the maximum response body size to read.
	// 5MB is sufficient for most HTML pages while preventing memory
	// exhaustion from unexpectedly large responses.
	DefaultMaxBodySize = 5 * 1024 * 1024 // 5MB
)

// Config holds all configuration options for a crawl.
// This struct is designed to be populated from CLI flags and passed through
// the application via dependency injection rather than global state.
//
// Design decision: We use a single flat struct instead of nested structs
// (e.g., CrawlConfig, ReportConfig) for simplicity. The number of options
// is manageable, and nesting would add complexity without significant benefit.
// If the configuration grows significantly, consider refactoring into sub-structs.
type Config struct {
	// Seed is the URL the crawl starts from, as given on the command line.
	// A missing scheme is treated as http during normalization.
	Seed string

	// Concurrency is the maximum number of pages fetched at the same time.
	// Result processing stays serialized regardless of this value; only
	// the network fetches overlap.
	Concurrency int

	// Timeout is the timeout for each HTTP request.
	// This applies to individual fetches, not the overall crawl duration.
	Timeout time.Duration

	// CrawlTimeout is the deadline for the whole crawl.
	// When the deadline passes, in-flight fetches are drained and the
	// crawl ends as partial. Zero means no deadline.
	CrawlTimeout time.Duration

	// MaxPages is the maximum number of pages to fetch.
	// This prevents runaway crawling on infinitely-generating sites.
	// A value of 0 means unlimited.
	MaxPages int

	// MaxDepth is the maximum link distance from the seed.
	// The seed has depth 0. A value of 0 means unlimited.
	MaxDepth int

	// Debug enables detailed log output using slog.LevelDebug.
	// When false, only warnings and errors are logged.
	Debug bool

	// IgnorePatterns are URL patterns to skip during crawling.
	// Patterns are matched against the URL path using glob syntax.
	IgnorePatterns []string

	// FollowPatterns are URL patterns to follow during crawling.
	// If specified, only URLs matching these patterns are followed.
	FollowPatterns []string

	// UserAgent is the User-Agent header sent with HTTP requests.
	// A descriptive User-Agent helps site operators identify crawler traffic.
	UserAgent string

	// MaxBodySize is the maximum response body size in bytes to read.
	// Responses larger than this are truncated to prevent memory exhaustion.
	// Set to 0 to use the default (5MB).
	MaxBodySize int64

	// ConfigFilePath is the path to the configuration file.
	// If empty, the tool searches for crawl.yaml in the current directory
	// and then in the XDG config directory.
	ConfigFilePath string

	// SiteConfigs holds site-specific configurations loaded from the config file.
	// This is populated by LoadConfigFile and used when building the fetcher.
	SiteConfigs *File

	// JSONReport enables a JSON summary report after the crawl trace.
	// Mutually exclusive with MarkdownReport.
	JSONReport bool

	// MarkdownReport enables a Markdown summary report after the crawl trace.
	// When true, outputs GitHub Flavored Markdown with tables, alerts, and
	// pie charts. Mutually exclusive with JSONReport.
	MarkdownReport bool

	// ReportFile is the output file path for the summary report.
	// When set, the report is written to this file instead of stdout.
	// Directories are created automatically if they don't exist.
	// The crawl trace always goes to stdout regardless of this setting.
	ReportFile string

	// DBDir is the directory path for storing the SQLite database.
	// When empty and SaveToDB is true, the XDG data directory is used.
	DBDir string

	// SaveToDB indicates whether to save crawl results to the database.
	// The database is write-only for crawls; it never seeds a later run.
	SaveToDB bool
}

// NewConfig creates a new Config with default values.
// All fields are set to safe, sensible defaults that work for most use cases.
// Users can override specific values after creation.
//
// Design decision: We use a constructor function instead of relying on
// zero values because many defaults are non-zero (e.g., timeout, concurrency).
// This also serves as documentation of what the defaults are.
func NewConfig() *Config {
	return &Config{
		Concurrency:  DefaultConcurrency,
		Timeout:      DefaultTimeout,
		CrawlTimeout: DefaultCrawlTimeout,
		MaxPages:     DefaultMaxPages,
		MaxDepth:     DefaultMaxDepth,
		UserAgent:    DefaultUserAgent,
		MaxBodySize:  DefaultMaxBodySize,
	}
}

// XDGDataDir returns the XDG data directory for the crawler.
// This follows the XDG Base Directory Specification.
// On Linux: ~/.local/share/crawl
// On macOS: ~/Library/Application Support/crawl
// On Windows: %LOCALAPPDATA%\crawl
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for the crawler.
// This follows the XDG Base Directory Specification.
// On Linux: ~/.config/crawl
// On macOS: ~/Library/Application Support/crawl
// On Windows: %APPDATA%\crawl
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks if the configuration is valid.
// It returns a specific error describing what is invalid.
//
// Design decision: We validate at the config level rather than at each
// point of use to fail fast and provide clear error messages upfront.
// This is called once after CLI parsing, before the crawl begins.
//
// We chose to return the first error found rather than collecting all errors
// because fixing one error often makes others irrelevant.
func (c *Config) Validate() error {
	// We must have a seed URL to start from
	if c.Seed == "" {
		return ErrNoSeed
	}

	// Concurrency must be positive; zero workers would mean no crawling
	if c.Concurrency <= 0 {
		return ErrInvalidConcurrency
	}

	// Timeout must be positive; zero timeout would cause immediate failures
	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}

	// CrawlTimeout must be non-negative; zero means no deadline
	if c.CrawlTimeout < 0 {
		return ErrInvalidCrawlTimeout
	}

	// MaxPages must be non-negative; zero means unlimited
	if c.MaxPages < 0 {
		return ErrInvalidMaxPages
	}

	// MaxDepth must be non-negative; zero means unlimited
	if c.MaxDepth < 0 {
		return ErrInvalidMaxDepth
	}

	// JSONReport and MarkdownReport are mutually exclusive
	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}

	// MaxBodySize must be non-negative; zero means use the default
	if c.MaxBodySize < 0 {
		return ErrInvalidMaxBodySize
	}

	return nil
}
