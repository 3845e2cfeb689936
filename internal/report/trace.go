package report

import (
	"fmt"
	"io"
	"strings"
)

// TraceWriter prints crawl progress as it happens: every page visit on its
// own line, and every discovered link on an indented line beneath the page
// it was found on. Two spaces of indentation per level of depth, so the
// output reads as the link tree the crawl actually walked.
//
// Example output for a seed linking to /a and /b, where /a links to /b:
//
//	http://example.com/
//	  http://example.com/a
//	  http://example.com/b
//	http://example.com/a
//	    http://example.com/b
//	http://example.com/b
//
// The crawler calls trace hooks from a single goroutine and processes one
// page's results at a time, so lines never interleave and a page's links
// always appear together, in the order they appeared on the page.
type TraceWriter struct {
	output io.Writer
}

// NewTraceWriter creates a TraceWriter that prints to the given writer.
func NewTraceWriter(output io.Writer) *TraceWriter {
	return &TraceWriter{output: output}
}

// Visit prints the URL of a page as it is handed to a fetch worker.
func (w *TraceWriter) Visit(pageURL string) {
	_, _ = fmt.Fprintln(w.output, pageURL)
}

// Link prints a discovered link, indented two spaces per level of depth.
func (w *TraceWriter) Link(pageURL string, depth int) {
	_, _ = fmt.Fprintln(w.output, strings.Repeat("  ", depth)+pageURL)
}
