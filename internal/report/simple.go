package report

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/mackstann/crawler-exercise/internal/model"
)

// SimpleWriter outputs human-readable text reports.
// This format is designed for terminal display with clear section
// formatting.
//
// Design decision: We use plain text with ASCII formatting rather than
// ANSI colors by default because:
// 1. It works in all terminals without compatibility issues
// 2. It's easier to pipe to files or other tools
// 3. Color can be added as an option later if needed
type SimpleWriter struct {
	baseWriter

	// showEmpty controls whether sections with no entries are shown.
	showEmpty bool

	// verbose enables the per-page listing and additional detail.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithShowEmpty configures the writer to show empty sections.
func WithShowEmpty(show bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.showEmpty = show
	}
}

// WithVerbose enables verbose output with additional details.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
		showEmpty:  false,
		verbose:    false,
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the crawl report in human-readable format.
func (w *SimpleWriter) Write(report *model.CrawlReport) (int, error) {
	var sb strings.Builder

	// Header
	w.writeHeader(&sb, report)

	// Summary
	w.writeSummary(&sb, report)

	// Fetch errors
	w.writeFailures(&sb, report)

	// Per-page listing (verbose only)
	w.writePages(&sb, report)

	// Footer
	w.writeFooter(&sb)

	// Write to output
	return w.output.Write([]byte(sb.String()))
}

// writeHeader writes the report header with crawl information.
func (w *SimpleWriter) writeHeader(sb *strings.Builder, report *model.CrawlReport) {
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("                             CRAWL REPORT\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")

	sb.WriteString(fmt.Sprintf("Seed URL:    %s\n", report.Seed))
	sb.WriteString(fmt.Sprintf("Crawl Date:  %s\n", report.StartedAt.Format("2006-01-02 15:04:05 MST")))
	sb.WriteString(fmt.Sprintf("Duration:    %s\n", report.Duration().Round(time.Millisecond)))

	if report.Partial {
		sb.WriteString("Status:      INTERRUPTED (partial results)\n")
	} else {
		sb.WriteString("Status:      Complete\n")
	}

	sb.WriteString("\n")
}

// writeSummary writes the crawl summary section.
func (w *SimpleWriter) writeSummary(sb *strings.Builder, report *model.CrawlReport) {
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("CRAWL SUMMARY\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	sb.WriteString(fmt.Sprintf("  Pages fetched:    %d\n", report.PagesFetched))
	sb.WriteString(fmt.Sprintf("  Links discovered: %d\n", report.LinksDiscovered))
	sb.WriteString(fmt.Sprintf("  Fetch errors:     %d\n", report.ErrorCount))

	counts := report.StatusCounts()
	unreachable := countUnreachable(report)
	if len(counts) > 0 || unreachable > 0 {
		sb.WriteString("\n")

		codes := make([]int, 0, len(counts))
		for code := range counts {
			codes = append(codes, code)
		}
		sort.Ints(codes)

		for _, code := range codes {
			sb.WriteString(fmt.Sprintf("  HTTP %d: %d\n", code, counts[code]))
		}
		if unreachable > 0 {
			sb.WriteString(fmt.Sprintf("  No response: %d\n", unreachable))
		}
	}

	sb.WriteString("\n")
}

// writeFailures writes the fetch error section.
func (w *SimpleWriter) writeFailures(sb *strings.Builder, report *model.CrawlReport) {
	failures := report.Failures()
	if len(failures) == 0 && !w.showEmpty {
		return
	}

	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("FETCH ERRORS\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	if len(failures) == 0 {
		sb.WriteString("  No fetch errors\n")
	} else {
		for _, page := range failures {
			sb.WriteString(fmt.Sprintf("  * %s\n", page.URL))
			sb.WriteString(fmt.Sprintf("    Error: %s\n", page.FetchError))
			if w.verbose && page.Parent != "" {
				sb.WriteString(fmt.Sprintf("    Found on: %s\n", page.Parent))
			}
		}
	}
	sb.WriteString("\n")
}

// writePages writes the per-page listing. Verbose output only.
func (w *SimpleWriter) writePages(sb *strings.Builder, report *model.CrawlReport) {
	if !w.verbose {
		return
	}

	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("PAGES\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	if len(report.Pages) == 0 {
		sb.WriteString("  No pages fetched\n")
	}

	for _, page := range report.Pages {
		status := "---"
		if page.StatusCode != 0 {
			status = strconv.Itoa(page.StatusCode)
		}
		sb.WriteString(fmt.Sprintf("  [%s] %s (depth %d)\n", status, page.URL, page.Depth))
		if page.Title != "" {
			sb.WriteString(fmt.Sprintf("        Title: %s\n", page.Title))
		}
		if len(page.Links) > 0 {
			sb.WriteString(fmt.Sprintf("        Links: %d\n", len(page.Links)))
		}
	}
	sb.WriteString("\n")
}

// writeFooter writes the report footer.
func (w *SimpleWriter) writeFooter(sb *strings.Builder) {
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("Report generated by crawl\n")
	sb.WriteString("https://github.com/mackstann/crawler-exercise\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
}
