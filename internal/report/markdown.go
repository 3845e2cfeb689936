package report

import (
	"io"
	"sort"
	"strconv"
	"time"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"

	"github.com/mackstann/crawler-exercise/internal/model"
)

// MarkdownWriter outputs reports in Markdown format.
// This format is designed for documentation and sharing.
//
// Design decision: We use the nao1215/markdown library for fluent markdown
// generation which provides:
// 1. Type-safe markdown generation
// 2. Support for tables, lists, and code blocks
// 3. GitHub-flavored markdown alerts
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the crawl report in Markdown format.
func (w *MarkdownWriter) Write(report *model.CrawlReport) (int, error) {
	md := markdown.NewMarkdown(w.output)

	// Header
	w.writeHeader(md, report)

	// Status distribution
	w.writeStatuses(md, report)

	// Fetch errors
	w.writeFailures(md, report)

	// Pages
	w.writePages(md, report)

	// Footer
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// writeHeader writes the report header with crawl information.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, report *model.CrawlReport) {
	md.H1("Crawl Report")
	md.PlainText("")

	// Basic info table
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Seed URL", "`" + report.Seed + "`"},
			{"Crawl Date", report.StartedAt.Format("2006-01-02 15:04:05 MST")},
			{"Duration", report.Duration().Round(time.Millisecond).String()},
			{"Pages Fetched", strconv.Itoa(report.PagesFetched)},
			{"Links Discovered", strconv.Itoa(report.LinksDiscovered)},
			{"Status", w.getStatusText(report)},
		},
	})
	md.PlainText("")
}

// getStatusText returns the status text based on report state.
func (w *MarkdownWriter) getStatusText(report *model.CrawlReport) string {
	if report.Partial {
		return "⚠️ Interrupted (partial results)"
	}
	return "✅ Complete"
}

// writeStatuses writes the HTTP status distribution section.
func (w *MarkdownWriter) writeStatuses(md *markdown.Markdown, report *model.CrawlReport) {
	md.H2("Status Distribution")
	md.PlainText("")

	counts := report.StatusCounts()
	unreachable := countUnreachable(report)

	if len(counts) == 0 && unreachable == 0 {
		md.PlainText("No pages fetched.")
		md.PlainText("")
		w.writeAlert(md, report)
		return
	}

	codes := make([]int, 0, len(counts))
	for code := range counts {
		codes = append(codes, code)
	}
	sort.Ints(codes)

	rows := make([][]string, 0, len(codes)+1)
	for _, code := range codes {
		rows = append(rows, []string{"HTTP " + strconv.Itoa(code), strconv.Itoa(counts[code])})
	}
	if unreachable > 0 {
		rows = append(rows, []string{"No response", strconv.Itoa(unreachable)})
	}

	md.Table(markdown.TableSet{
		Header: []string{"Status", "Count"},
		Rows:   rows,
	})
	md.PlainText("")

	w.writePieChart(md, codes, counts, unreachable)
	w.writeAlert(md, report)
}

// writePieChart writes a mermaid pie chart for the status distribution.
func (w *MarkdownWriter) writePieChart(md *markdown.Markdown, codes []int, counts map[int]int, unreachable int) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("HTTP Status Distribution"),
		piechart.WithShowData(true),
	)

	for _, code := range codes {
		chart.LabelAndIntValue("HTTP "+strconv.Itoa(code), uint64(counts[code]))
	}
	if unreachable > 0 {
		chart.LabelAndIntValue("No response", uint64(unreachable))
	}

	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// writeAlert writes an appropriate alert based on the crawl outcome.
func (w *MarkdownWriter) writeAlert(md *markdown.Markdown, report *model.CrawlReport) {
	switch {
	case report.Partial:
		md.Cautionf(
			"The crawl was interrupted before completing. %d page(s) were fetched; the site may contain more.",
			report.PagesFetched,
		)
	case report.ErrorCount > 0:
		md.Warningf(
			"%d page(s) could not be fetched. See the fetch errors below.",
			report.ErrorCount,
		)
	default:
		md.Tip("All discovered pages were fetched cleanly.")
	}
	md.PlainText("")
}

// writeFailures writes the fetch error section.
func (w *MarkdownWriter) writeFailures(md *markdown.Markdown, report *model.CrawlReport) {
	md.H2("Fetch Errors")
	md.PlainText("")

	failures := report.Failures()
	if len(failures) == 0 {
		md.PlainText("No fetch errors.")
		md.PlainText("")
		return
	}

	rows := make([][]string, len(failures))
	for i, page := range failures {
		status := "-"
		if page.StatusCode != 0 {
			status = strconv.Itoa(page.StatusCode)
		}
		parent := page.Parent
		if parent == "" {
			parent = "-"
		}

		rows[i] = []string{
			truncateString(page.URL, 60),
			status,
			truncateString(page.FetchError, 50),
			truncateString(parent, 50),
		}
	}

	md.Table(markdown.TableSet{
		Header: []string{"URL", "Status", "Error", "Found On"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writePages writes the fetched page table.
func (w *MarkdownWriter) writePages(md *markdown.Markdown, report *model.CrawlReport) {
	md.H2("Pages")
	md.PlainText("")

	if len(report.Pages) == 0 {
		md.PlainText("No pages fetched.")
		md.PlainText("")
		return
	}

	rows := make([][]string, len(report.Pages))
	for i, page := range report.Pages {
		status := "-"
		if page.StatusCode != 0 {
			status = strconv.Itoa(page.StatusCode)
		}

		rows[i] = []string{
			truncateString(page.URL, 60),
			status,
			strconv.Itoa(page.Depth),
			truncateString(page.Title, 40),
			strconv.Itoa(len(page.Links)),
		}
	}

	md.Table(markdown.TableSet{
		Header: []string{"URL", "Status", "Depth", "Title", "Links"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeFooter writes the report footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by [crawl](https://github.com/mackstann/crawler-exercise)*")
}

// truncateString truncates a string to maxLen characters with ellipsis.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
