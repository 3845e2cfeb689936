// Package report provides report generation and output functionality.
//
// This package contains writers for different output formats:
//   - TraceWriter: Live crawl progress, one line per page and link
//   - SimpleWriter: Human-readable text output for terminal display
//   - JSONWriter: Structured JSON output for tool integration
//   - MarkdownWriter: Markdown output for documentation and sharing
//
// Design decision: We separate report writing from report data structures
// (which are in the model package) to follow the single responsibility
// principle. This allows adding new output formats without modifying
// the core data structures.
//
// Summary writers implement the Writer interface, allowing them to be used
// interchangeably and composed for multi-format output. The TraceWriter is
// different: it receives events while the crawl runs rather than a finished
// report, so it hangs off the crawler's progress hooks instead.
package report
