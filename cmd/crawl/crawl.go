package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/mackstann/crawler-exercise/internal/config"
	"github.com/mackstann/crawler-exercise/internal/crawler"
	"github.com/mackstann/crawler-exercise/internal/database"
	"github.com/mackstann/crawler-exercise/internal/log"
	"github.com/mackstann/crawler-exercise/internal/model"
	"github.com/mackstann/crawler-exercise/internal/report"
	"github.com/spf13/cobra"
)

// addCrawlFlags registers the crawl flags on the root command.
func addCrawlFlags(cmd *cobra.Command) {
	// Crawl behavior flags
	cmd.Flags().IntP("concurrency", "n", config.DefaultConcurrency,
		"Maximum number of pages fetched at the same time")
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"Timeout for each HTTP request")
	cmd.Flags().Duration("crawl-timeout", config.DefaultCrawlTimeout,
		"Deadline for the whole crawl (0 means no deadline)")
	cmd.Flags().IntP("max-pages", "p", config.DefaultMaxPages,
		"Maximum number of pages to fetch (0 means unlimited)")
	cmd.Flags().Int("max-depth", config.DefaultMaxDepth,
		"Maximum link distance from the seed (0 means unlimited)")

	// Fetch flags
	cmd.Flags().String("user-agent", config.DefaultUserAgent,
		"User-Agent header sent with requests")
	cmd.Flags().Int64("max-body-size", config.DefaultMaxBodySize,
		"Maximum response body size in bytes")
	cmd.Flags().StringSlice("ignore", nil,
		"URL path pattern to skip (glob syntax, repeatable)")
	cmd.Flags().StringSlice("follow", nil,
		"URL path pattern to follow exclusively (glob syntax, repeatable)")

	// Configuration file
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: crawl.yaml in current or XDG config directory)")

	// Report flags
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON summary report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown summary report (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write the summary report to specified file path (creates directories if needed)")

	// Database flags
	cmd.Flags().Bool("db", false,
		"Save crawl results to the local SQLite database")
	cmd.Flags().String("db-dir", "",
		"Database directory (default: XDG data directory)")
}

// runCrawlCmd executes the crawl.
func runCrawlCmd(cmd *cobra.Command, args []string) error {
	// Build config from flags
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	// Setup logger. Logs go to stderr so the trace on stdout stays clean.
	logger := log.NewLogger(os.Stderr, cfg.Debug)
	slog.SetDefault(logger)

	// Set up context with signal handling for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle interrupt signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal, cancelling crawl...")
		cancel()
	}()

	return runCrawl(ctx, cfg, logger)
}

// getDebugFlag retrieves the debug flag from the command or its parent.
func getDebugFlag(cmd *cobra.Command) bool {
	debug, err := cmd.Flags().GetBool("debug")
	if err != nil {
		debug, err = cmd.Root().PersistentFlags().GetBool("debug")
		if err != nil {
			return false
		}
	}
	return debug
}

// buildConfig creates a Config from cobra command flags.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()

	// Get flag values
	var err error

	cfg.Concurrency, err = cmd.Flags().GetInt("concurrency")
	if err != nil {
		return nil, err
	}

	cfg.Timeout, err = cmd.Flags().GetDuration("timeout")
	if err != nil {
		return nil, err
	}

	cfg.CrawlTimeout, err = cmd.Flags().GetDuration("crawl-timeout")
	if err != nil {
		return nil, err
	}

	cfg.MaxPages, err = cmd.Flags().GetInt("max-pages")
	if err != nil {
		return nil, err
	}

	cfg.MaxDepth, err = cmd.Flags().GetInt("max-depth")
	if err != nil {
		return nil, err
	}

	cfg.UserAgent, err = cmd.Flags().GetString("user-agent")
	if err != nil {
		return nil, err
	}

	cfg.MaxBodySize, err = cmd.Flags().GetInt64("max-body-size")
	if err != nil {
		return nil, err
	}

	cfg.IgnorePatterns, err = cmd.Flags().GetStringSlice("ignore")
	if err != nil {
		return nil, err
	}

	cfg.FollowPatterns, err = cmd.Flags().GetStringSlice("follow")
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
		// User explicitly specified a config file that doesn't exist
		return nil, fmt.Errorf("configuration file not found: %s", cfg.ConfigFilePath)
	} else {
		// Use empty config if no file found and user didn't explicitly specify one
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

	cfg.SaveToDB, err = cmd.Flags().GetBool("db")
	if err != nil {
		return nil, err
	}

	cfg.DBDir, err = cmd.Flags().GetString("db-dir")
	if err != nil {
		return nil, err
	}
	if cfg.DBDir == "" {
		cfg.DBDir = config.XDGDataDir()
	}

	cfg.Debug = getDebugFlag(cmd)

	// The positional argument is the seed URL
	if len(args) > 0 {
		cfg.Seed = args[0]
	}

	return cfg, nil
}

// runCrawl runs the crawl and writes the trace, reports, and database record.
func runCrawl(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	logger.Info("starting crawl",
		"seed", cfg.Seed,
		"concurrency", cfg.Concurrency,
		"maxPages", cfg.MaxPages,
		"maxDepth", cfg.MaxDepth,
	)

	// Open database connection when saving is enabled
	var db *database.CrawlDB
	if cfg.SaveToDB {
		var err error
		db, err = database.Open(cfg.DBDir, database.DefaultOptions())
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()
		logger.Info("database opened", "path", db.Path())
	}

	// Site-specific configuration is keyed by the seed's hostname
	siteConfig := getSiteConfig(cfg, seedHost(cfg.Seed))

	fetcher := newFetcher(cfg, siteConfig)
	spider := newSpider(cfg, siteConfig, fetcher, logger)

	// Apply the overall crawl deadline when one is set
	crawlCtx := ctx
	if cfg.CrawlTimeout > 0 {
		var cancel context.CancelFunc
		crawlCtx, cancel = context.WithTimeout(ctx, cfg.CrawlTimeout)
		defer cancel()
	}

	crawlReport, crawlErr := spider.Crawl(crawlCtx, cfg.Seed)
	if crawlReport == nil {
		// The seed itself was rejected; the crawl never started.
		return crawlErr
	}

	// Generate and output the summary report
	if err := outputReport(cfg, crawlReport); err != nil {
		logger.Error("failed to output report", "seed", cfg.Seed, "error", err)
	}

	// Save to database if enabled. The crawl context may already be
	// cancelled after an interrupt; the save uses a fresh context so
	// partial results are still kept.
	if err := saveCrawl(context.Background(), db, crawlReport, logger); err != nil {
		logger.Error("failed to save crawl", "seed", cfg.Seed, "error", err)
	}

	// An interrupted crawl surfaces its error so the exit code is
	// non-zero even though partial results were reported.
	return crawlErr
}

// seedHost extracts the hostname from the raw seed URL for config lookup.
func seedHost(seed string) string {
	raw := strings.TrimSpace(seed)
	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return u.Hostname()
}

// getSiteConfig returns the site-specific configuration for a host.
func getSiteConfig(cfg *config.Config, host string) config.SiteConfig {
	if cfg.SiteConfigs == nil {
		return config.SiteConfig{}
	}
	return cfg.SiteConfigs.GetSiteConfig(host)
}

// newFetcher builds the HTTP fetcher from global and site configuration.
func newFetcher(cfg *config.Config, siteConfig config.SiteConfig) *crawler.HTTPFetcher {
	opts := []crawler.FetcherOption{
		crawler.WithFetchTimeout(cfg.Timeout),
		crawler.WithUserAgent(cfg.UserAgent),
		crawler.WithMaxBodySize(cfg.MaxBodySize),
	}

	// Site-specific settings override the global ones
	if siteConfig.UserAgent != "" {
		opts = append(opts, crawler.WithUserAgent(siteConfig.UserAgent))
	}
	if siteConfig.Cookie != "" {
		opts = append(opts, crawler.WithCookie(siteConfig.Cookie))
	}
	if len(siteConfig.Headers) > 0 {
		opts = append(opts, crawler.WithHeaders(siteConfig.Headers))
	}

	return crawler.NewHTTPFetcher(nil, opts...)
}

// newSpider builds the spider with trace output on stdout.
func newSpider(cfg *config.Config, siteConfig config.SiteConfig, fetcher crawler.Fetcher, logger *slog.Logger) *crawler.Spider {
	opts := []crawler.SpiderOption{
		crawler.WithConcurrency(cfg.Concurrency),
		crawler.WithMaxPages(cfg.MaxPages),
		crawler.WithTracer(report.NewTraceWriter(os.Stdout)),
		crawler.WithLogger(logger),
	}

	// Site-specific depth overrides the global one
	maxDepth := cfg.MaxDepth
	if siteConfig.Depth > 0 {
		maxDepth = siteConfig.Depth
	}
	opts = append(opts, crawler.WithMaxDepth(maxDepth))

	// Flag patterns and config file patterns are combined
	if patterns := combinePatterns(cfg.IgnorePatterns, siteConfig.IgnorePatterns); len(patterns) > 0 {
		opts = append(opts, crawler.WithIgnorePatterns(patterns))
	}
	if patterns := combinePatterns(cfg.FollowPatterns, siteConfig.FollowPatterns); len(patterns) > 0 {
		opts = append(opts, crawler.WithFollowPatterns(patterns))
	}

	return crawler.NewSpider(fetcher, opts...)
}

// combinePatterns joins flag patterns with config file patterns.
func combinePatterns(flagPatterns, sitePatterns []string) []string {
	if len(flagPatterns) == 0 && len(sitePatterns) == 0 {
		return nil
	}
	combined := make([]string, 0, len(flagPatterns)+len(sitePatterns))
	combined = append(combined, flagPatterns...)
	combined = append(combined, sitePatterns...)
	return combined
}

// outputReport writes the post-crawl summary in the requested format.
// With no report flags set, the crawl trace is the only output.
func outputReport(cfg *config.Config, crawlReport *model.CrawlReport) error {
	if !cfg.JSONReport && !cfg.MarkdownReport && cfg.ReportFile == "" {
		return nil
	}

	// Determine output destination
	var output *os.File
	if cfg.ReportFile != "" {
		// Create directories if they don't exist
		dir := filepath.Dir(cfg.ReportFile)
		if dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
		}

		// Create or truncate the output file, readable by the owner only
		f, err := os.OpenFile(cfg.ReportFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		output = f
	} else {
		output = os.Stdout
	}

	// JSON output
	if cfg.JSONReport {
		writer := report.NewJSONWriter(output, report.WithPrettyPrint())
		_, err := writer.Write(crawlReport)
		return err
	}

	// Markdown output
	if cfg.MarkdownReport {
		writer := report.NewMarkdownWriter(output)
		_, err := writer.Write(crawlReport)
		return err
	}

	// Human-readable text report (default when only --output is given)
	writer := report.NewSimpleWriter(output)
	_, err := writer.Write(crawlReport)
	return err
}

// saveCrawl saves the crawl report to the database.
// If db is nil, this function is a no-op.
func saveCrawl(ctx context.Context, db *database.CrawlDB, crawlReport *model.CrawlReport, logger *slog.Logger) error {
	if db == nil {
		return nil
	}

	id, err := db.SaveCrawl(ctx, crawlReport)
	if err != nil {
		return fmt.Errorf("failed to save crawl: %w", err)
	}

	logger.Info("crawl saved", "id", id, "path", db.Path())
	return nil
}
