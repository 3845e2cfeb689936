package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/mackstann/crawler-exercise/internal/config"
	"github.com/mackstann/crawler-exercise/internal/database"
	"github.com/mackstann/crawler-exercise/internal/report"
	"github.com/spf13/cobra"
)

// NewHistoryCmd creates the history command.
// It browses crawl results previously saved with the --db flag.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show stored crawl results",
		Long: `History lists crawls saved with the --db flag and shows their reports.

Each saved crawl stores its summary counters, every fetched page, and
the links between them. This command only reads the database; it never
starts a crawl.

Examples:
  # List the most recent crawls
  crawl history

  # List crawls that started from a specific seed URL
  crawl history --seed http://example.com/

  # Show the stored report for crawl 3, including fetched pages
  crawl history --id 3

  # Dump the stored report for crawl 3 as JSON
  crawl history --id 3 --json`,
		Args: cobra.NoArgs,
		RunE: runHistoryCmd,
	}

	// Listing flags
	cmd.Flags().IntP("limit", "l", 20,
		"Maximum number of crawls to list")
	cmd.Flags().StringP("seed", "s", "",
		"Only list crawls that started from this seed URL")

	// Single crawl flags
	cmd.Flags().Int64P("id", "i", 0,
		"Show the stored report for this crawl ID")
	cmd.Flags().BoolP("json", "j", false,
		"Output the stored report in JSON format (with --id)")

	// Database location
	cmd.Flags().String("db-dir", "",
		"Database directory (default: XDG data directory)")

	return cmd
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, _ []string) error {
	limit, err := cmd.Flags().GetInt("limit")
	if err != nil {
		return err
	}
	seed, err := cmd.Flags().GetString("seed")
	if err != nil {
		return err
	}
	id, err := cmd.Flags().GetInt64("id")
	if err != nil {
		return err
	}
	jsonOutput, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}
	dbDir, err := cmd.Flags().GetString("db-dir")
	if err != nil {
		return err
	}
	if dbDir == "" {
		dbDir = config.XDGDataDir()
	}

	// Open database
	db, err := database.Open(dbDir, database.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	ctx := context.Background()

	if id > 0 {
		return showCrawl(ctx, db, id, jsonOutput)
	}

	if seed != "" {
		crawls, err := db.CrawlsBySeed(ctx, seed, limit)
		if err != nil {
			return fmt.Errorf("failed to list crawls: %w", err)
		}
		return listCrawls(crawls)
	}

	crawls, err := db.RecentCrawls(ctx, limit)
	if err != nil {
		return fmt.Errorf("failed to list crawls: %w", err)
	}
	return listCrawls(crawls)
}

// listCrawls prints stored crawl summaries as a table.
func listCrawls(crawls []database.CrawlSummary) error {
	if len(crawls) == 0 {
		fmt.Println("No stored crawls found.")
		fmt.Println("\nUse 'crawl --db <seed-url>' to crawl a site and save the results.")
		return nil
	}

	fmt.Printf("Stored crawls (%d):\n\n", len(crawls))
	fmt.Printf("  %-6s  %-20s  %-7s  %-7s  %-7s  %-9s  %s\n",
		"ID", "Date", "Pages", "Links", "Errors", "Status", "Seed")
	fmt.Println("  " + strings.Repeat("-", 90))

	for _, crawl := range crawls {
		status := "complete"
		if crawl.Partial {
			status = "partial"
		}
		fmt.Printf("  %-6d  %-20s  %-7d  %-7d  %-7d  %-9s  %s\n",
			crawl.ID,
			crawl.StartedAt.Format("2006-01-02 15:04:05"),
			crawl.PagesFetched,
			crawl.LinksDiscovered,
			crawl.ErrorCount,
			status,
			crawl.Seed,
		)
	}

	fmt.Println("\nUse 'crawl history --id <id>' to show the full stored report.")

	return nil
}

// showCrawl prints the stored report for a single crawl.
func showCrawl(ctx context.Context, db *database.CrawlDB, id int64, jsonOutput bool) error {
	crawlReport, err := db.CrawlByID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to get crawl %d: %w", id, err)
	}
	if crawlReport == nil {
		return fmt.Errorf("crawl with ID %d not found", id)
	}

	if jsonOutput {
		writer := report.NewJSONWriter(os.Stdout, report.WithPrettyPrint())
		_, err := writer.Write(crawlReport)
		return err
	}

	fmt.Printf("Crawl %d: %s\n", id, crawlReport.Seed)
	fmt.Println(strings.Repeat("=", 60))
	fmt.Printf("\nDate:     %s\n", crawlReport.StartedAt.Format("2006-01-02 15:04:05"))
	fmt.Printf("Duration: %s\n", crawlReport.Duration().Round(time.Millisecond))

	status := "complete"
	if crawlReport.Partial {
		status = "interrupted (partial results)"
	}
	fmt.Printf("Status:   %s\n", status)

	fmt.Printf("\nPages fetched:    %d\n", crawlReport.PagesFetched)
	fmt.Printf("Links discovered: %d\n", crawlReport.LinksDiscovered)
	fmt.Printf("Fetch errors:     %d\n", crawlReport.ErrorCount)

	// List the stored pages, with referrers for failed fetches
	pages, err := db.PagesForCrawl(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to get pages for crawl %d: %w", id, err)
	}
	if len(pages) == 0 {
		return nil
	}

	fmt.Printf("\nPages (%d):\n\n", len(pages))
	fmt.Printf("  %-6s  %-5s  %s\n", "Status", "Depth", "URL")
	fmt.Println("  " + strings.Repeat("-", 70))

	for _, page := range pages {
		status := "---"
		if page.StatusCode != 0 {
			status = fmt.Sprintf("%d", page.StatusCode)
		}
		fmt.Printf("  %-6s  %-5d  %s\n", status, page.Depth, page.URL)

		// Show which pages linked to a failed fetch, for broken-link hunting
		if page.FetchError != "" {
			sources, err := db.IncomingLinks(ctx, id, page.URL)
			if err != nil {
				return fmt.Errorf("failed to get referrers for %s: %w", page.URL, err)
			}
			for _, source := range sources {
				fmt.Printf("          linked from %s\n", source)
			}
		}
	}

	return nil
}
