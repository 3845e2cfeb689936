package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for crawl.
// The root command runs the crawl itself; subcommands browse stored
// results and manage configuration.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "crawl <seed-url>",
		Short: "Crawl a site and print every visited page and discovered link",
		Long: `crawl fetches the given seed URL, extracts its links, and recursively
visits every link that belongs to the same site.

Each visited page is printed on its own line as it is fetched, and each
link found on a page is printed indented beneath it. Links that point
outside the seed's site are recorded but never visited. A seed without
a scheme defaults to http.

Examples:
  # Crawl a site and print the visitation trace
  crawl http://example.com/

  # Limit the crawl to 100 pages, 3 links deep
  crawl --max-pages 100 --max-depth 3 http://example.com/

  # Skip logout links and binary assets
  crawl --ignore '/logout*' --ignore '*.pdf' http://example.com/

  # Write a Markdown summary next to the trace
  crawl --markdown --output report.md http://example.com/

  # Save the results for later comparison with 'crawl history'
  crawl --db http://example.com/

Site-specific settings (cookies, headers, per-site depth) are read from
a crawl.yaml configuration file. Run 'crawl init' to generate one.`,
		Args:          cobra.ExactArgs(1),
		RunE:          runCrawlCmd,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags
	cmd.PersistentFlags().BoolP("debug", "d", false, "Enable debug logging")

	addCrawlFlags(cmd)

	// Add subcommands
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
