package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"os"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/mackstann/crawler-exercise/internal/database"
	"github.com/mackstann/crawler-exercise/internal/model"
)

func TestNewHistoryCmd(t *testing.T) {
	t.Parallel()

	cmd := NewHistoryCmd()

	t.Run("has correct use", func(t *testing.T) {
		t.Parallel()
		if cmd.Use != "history" {
			t.Errorf("unexpected Use: got %q", cmd.Use)
		}
	})

	t.Run("has short description", func(t *testing.T) {
		t.Parallel()
		if cmd.Short == "" {
			t.Error("expected non-empty Short description")
		}
	})

	t.Run("has long description", func(t *testing.T) {
		t.Parallel()
		if cmd.Long == "" {
			t.Error("expected non-empty Long description")
		}
	})

	t.Run("has expected flags with shorthands", func(t *testing.T) {
		t.Parallel()

		flagsWithShort := map[string]string{
			"limit": "l",
			"seed":  "s",
			"id":    "i",
			"json":  "j",
		}
		for flag, shorthand := range flagsWithShort {
			f := cmd.Flags().Lookup(flag)
			if f == nil {
				t.Errorf("expected flag %q to exist", flag)
				continue
			}
			if f.Shorthand != shorthand {
				t.Errorf("flag %q: expected shorthand %q, got %q", flag, shorthand, f.Shorthand)
			}
		}
	})

	t.Run("has db-dir flag without shorthand", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("db-dir")
		if flag == nil {
			t.Fatal("expected db-dir flag")
		}
		if flag.Shorthand != "" {
			t.Errorf("expected no shorthand, got %q", flag.Shorthand)
		}
	})

	t.Run("limit defaults to 20", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("limit")
		if flag == nil {
			t.Fatal("expected limit flag")
		}
		if flag.DefValue != "20" {
			t.Errorf("expected default '20', got %q", flag.DefValue)
		}
	})

	t.Run("accepts no arguments", func(t *testing.T) {
		t.Parallel()
		if cmd.Args == nil {
			t.Error("expected Args to be set")
		}
	})
}

// historyTestReport builds a finished report with one failed page that
// the seed links to.
func historyTestReport(seed string, startedAt time.Time) *model.CrawlReport {
	crawlReport := model.NewCrawlReport(seed)
	crawlReport.StartedAt = startedAt
	crawlReport.AddPage(&model.Page{
		URL:         seed,
		Depth:       0,
		StatusCode:  http.StatusOK,
		ContentType: "text/html",
		Title:       "Home",
		Links:       []string{seed + "broken"},
		FetchedAt:   startedAt,
	})
	crawlReport.AddPage(&model.Page{
		URL:        seed + "broken",
		Parent:     seed,
		Depth:      1,
		StatusCode: http.StatusNotFound,
		FetchError: "unexpected status 404",
		FetchedAt:  startedAt.Add(time.Second),
	})
	crawlReport.Finish()
	crawlReport.FinishedAt = startedAt.Add(2 * time.Second)
	return crawlReport
}

func TestListCrawls(t *testing.T) {
	// Note: Not using t.Parallel() because this test captures os.Stdout

	t.Run("prints hint for empty history", func(t *testing.T) {
		oldStdout := os.Stdout
		r, w, _ := os.Pipe()
		os.Stdout = w

		err := listCrawls(nil)

		w.Close()
		os.Stdout = oldStdout

		if err != nil {
			t.Fatalf("listCrawls() error = %v", err)
		}

		var buf bytes.Buffer
		_, _ = buf.ReadFrom(r)
		r.Close()
		output := buf.String()

		if !strings.Contains(output, "No stored crawls found") {
			t.Errorf("expected empty-history message, got: %s", output)
		}
		if !strings.Contains(output, "crawl --db") {
			t.Errorf("expected hint about --db flag, got: %s", output)
		}
	})

	t.Run("prints crawl table", func(t *testing.T) {
		crawls := []database.CrawlSummary{
			{
				ID:              1,
				Seed:            "http://example.com/",
				StartedAt:       time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC),
				PagesFetched:    12,
				LinksDiscovered: 30,
				ErrorCount:      2,
			},
			{
				ID:           2,
				Seed:         "http://other.example.com/",
				StartedAt:    time.Date(2025, 3, 15, 9, 30, 0, 0, time.UTC),
				PagesFetched: 4,
				Partial:      true,
			},
		}

		oldStdout := os.Stdout
		r, w, _ := os.Pipe()
		os.Stdout = w

		err := listCrawls(crawls)

		w.Close()
		os.Stdout = oldStdout

		if err != nil {
			t.Fatalf("listCrawls() error = %v", err)
		}

		var buf bytes.Buffer
		_, _ = buf.ReadFrom(r)
		r.Close()
		output := buf.String()

		expectedStrings := []string{
			"Stored crawls (2)",
			"http://example.com/",
			"http://other.example.com/",
			"2025-03-14 09:30:00",
			"complete",
			"partial",
			"crawl history --id",
		}
		for _, expected := range expectedStrings {
			if !strings.Contains(output, expected) {
				t.Errorf("output missing expected string: %q\nOutput: %s", expected, output)
			}
		}
	})
}

func TestShowCrawl(t *testing.T) {
	// Note: Not using t.Parallel() because this test captures os.Stdout

	tmpDir := t.TempDir()
	db, err := database.Open(tmpDir, database.DefaultOptions())
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	ctx := context.Background()

	startedAt := time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)
	id, err := db.SaveCrawl(ctx, historyTestReport("http://example.com/", startedAt))
	if err != nil {
		t.Fatalf("failed to save crawl: %v", err)
	}

	t.Run("returns error for unknown ID", func(t *testing.T) {
		err := showCrawl(ctx, db, 99999, false)
		if err == nil {
			t.Error("expected error for unknown crawl ID")
		}
		if !strings.Contains(err.Error(), "not found") {
			t.Errorf("expected 'not found' error, got: %v", err)
		}
	})

	t.Run("prints stored report with pages and referrers", func(t *testing.T) {
		oldStdout := os.Stdout
		r, w, pipeErr := os.Pipe()
		if pipeErr != nil {
			t.Fatalf("failed to create pipe: %v", pipeErr)
		}
		os.Stdout = w

		showErr := showCrawl(ctx, db, id, false)

		w.Close()
		os.Stdout = oldStdout

		if showErr != nil {
			t.Fatalf("showCrawl() error = %v", showErr)
		}

		var buf bytes.Buffer
		_, _ = buf.ReadFrom(r)
		r.Close()
		output := buf.String()

		expectedStrings := []string{
			"http://example.com/",
			"2025-03-14 09:30:00",
			"Status:   complete",
			"Pages fetched:    2",
			"Fetch errors:     1",
			"Pages (2)",
			"http://example.com/broken",
			"linked from http://example.com/",
		}
		for _, expected := range expectedStrings {
			if !strings.Contains(output, expected) {
				t.Errorf("output missing expected string: %q\nOutput: %s", expected, output)
			}
		}
	})

	t.Run("prints stored report as JSON", func(t *testing.T) {
		oldStdout := os.Stdout
		r, w, pipeErr := os.Pipe()
		if pipeErr != nil {
			t.Fatalf("failed to create pipe: %v", pipeErr)
		}
		os.Stdout = w

		showErr := showCrawl(ctx, db, id, true)

		w.Close()
		os.Stdout = oldStdout

		if showErr != nil {
			t.Fatalf("showCrawl() error = %v", showErr)
		}

		var buf bytes.Buffer
		_, _ = buf.ReadFrom(r)
		r.Close()

		var crawlReport model.CrawlReport
		if err := json.Unmarshal(buf.Bytes(), &crawlReport); err != nil {
			t.Fatalf("expected valid JSON output, got error: %v", err)
		}
		if crawlReport.Seed != "http://example.com/" {
			t.Errorf("expected seed 'http://example.com/', got %q", crawlReport.Seed)
		}
		if crawlReport.PagesFetched != 2 {
			t.Errorf("expected 2 pages fetched, got %d", crawlReport.PagesFetched)
		}
	})
}

func TestRunHistoryCmd(t *testing.T) {
	// Note: Not using t.Parallel() because this test captures os.Stdout

	t.Run("lists empty history", func(t *testing.T) {
		tmpDir := t.TempDir()

		cmd := NewHistoryCmd()
		cmd.SetArgs([]string{"--db-dir", tmpDir})

		oldStdout := os.Stdout
		r, w, _ := os.Pipe()
		os.Stdout = w

		err := cmd.Execute()

		w.Close()
		os.Stdout = oldStdout

		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var buf bytes.Buffer
		_, _ = buf.ReadFrom(r)
		r.Close()

		if !strings.Contains(buf.String(), "No stored crawls found") {
			t.Errorf("expected empty-history message, got: %s", buf.String())
		}
	})

	t.Run("filters by seed", func(t *testing.T) {
		tmpDir := t.TempDir()
		db, err := database.Open(tmpDir, database.DefaultOptions())
		if err != nil {
			t.Fatalf("failed to open database: %v", err)
		}

		startedAt := time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)
		if _, err := db.SaveCrawl(context.Background(), historyTestReport("http://one.example.com/", startedAt)); err != nil {
			t.Fatalf("failed to save crawl: %v", err)
		}
		if _, err := db.SaveCrawl(context.Background(), historyTestReport("http://two.example.com/", startedAt.Add(time.Hour))); err != nil {
			t.Fatalf("failed to save crawl: %v", err)
		}
		db.Close()

		cmd := NewHistoryCmd()
		cmd.SetArgs([]string{"--db-dir", tmpDir, "--seed", "http://one.example.com/"})

		oldStdout := os.Stdout
		r, w, _ := os.Pipe()
		os.Stdout = w

		execErr := cmd.Execute()

		w.Close()
		os.Stdout = oldStdout

		if execErr != nil {
			t.Fatalf("unexpected error: %v", execErr)
		}

		var buf bytes.Buffer
		_, _ = buf.ReadFrom(r)
		r.Close()
		output := buf.String()

		if !strings.Contains(output, "http://one.example.com/") {
			t.Errorf("expected filtered seed in output, got: %s", output)
		}
		if strings.Contains(output, "http://two.example.com/") {
			t.Errorf("expected other seed to be filtered out, got: %s", output)
		}
	})

	t.Run("shows crawl by ID", func(t *testing.T) {
		tmpDir := t.TempDir()
		db, err := database.Open(tmpDir, database.DefaultOptions())
		if err != nil {
			t.Fatalf("failed to open database: %v", err)
		}

		startedAt := time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)
		id, err := db.SaveCrawl(context.Background(), historyTestReport("http://example.com/", startedAt))
		if err != nil {
			t.Fatalf("failed to save crawl: %v", err)
		}
		db.Close()

		cmd := NewHistoryCmd()
		cmd.SetArgs([]string{"--db-dir", tmpDir, "--id", strconv.FormatInt(id, 10)})

		oldStdout := os.Stdout
		r, w, _ := os.Pipe()
		os.Stdout = w

		execErr := cmd.Execute()

		w.Close()
		os.Stdout = oldStdout

		if execErr != nil {
			t.Fatalf("unexpected error: %v", execErr)
		}

		var buf bytes.Buffer
		_, _ = buf.ReadFrom(r)
		r.Close()

		if !strings.Contains(buf.String(), "http://example.com/") {
			t.Errorf("expected stored report in output, got: %s", buf.String())
		}
	})
}
