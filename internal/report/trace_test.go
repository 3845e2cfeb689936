package report

import (
	"bytes"
	"strings"
	"testing"
)

// TestTraceWriter tests the live crawl trace output.
func TestTraceWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes visits without indentation", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewTraceWriter(&buf)

		w.Visit("http://example.com/")
		w.Visit("http://example.com/about")

		expected := "http://example.com/\nhttp://example.com/about\n"
		if buf.String() != expected {
			t.Errorf("expected %q, got %q", expected, buf.String())
		}
	})

	t.Run("indents links by depth", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewTraceWriter(&buf)

		w.Link("http://example.com/a", 1)
		w.Link("http://example.com/b", 2)
		w.Link("http://example.com/c", 3)

		lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
		if len(lines) != 3 {
			t.Fatalf("expected 3 lines, got %d", len(lines))
		}
		if lines[0] != "  http://example.com/a" {
			t.Errorf("expected 2 spaces at depth 1, got %q", lines[0])
		}
		if lines[1] != "    http://example.com/b" {
			t.Errorf("expected 4 spaces at depth 2, got %q", lines[1])
		}
		if lines[2] != "      http://example.com/c" {
			t.Errorf("expected 6 spaces at depth 3, got %q", lines[2])
		}
	})

	t.Run("writes a full crawl transcript", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewTraceWriter(&buf)

		// The sequence a crawl of a small three page site produces.
		w.Visit("http://example.com/")
		w.Link("http://example.com/about", 1)
		w.Link("http://example.com/contact", 1)
		w.Visit("http://example.com/about")
		w.Link("http://example.com/team", 2)
		w.Visit("http://example.com/contact")
		w.Visit("http://example.com/team")

		expected := strings.Join([]string{
			"http://example.com/",
			"  http://example.com/about",
			"  http://example.com/contact",
			"http://example.com/about",
			"    http://example.com/team",
			"http://example.com/contact",
			"http://example.com/team",
			"",
		}, "\n")
		if buf.String() != expected {
			t.Errorf("expected transcript:\n%s\ngot:\n%s", expected, buf.String())
		}
	})
}
