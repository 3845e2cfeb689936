package model

import (
	"time"
)

// CrawlReport is the aggregated result of a single crawl.
// It contains every page visited, counters for the summary output,
// and the final crawl state.
//
// Design decision: We use a single flat struct rather than many small ones
// to simplify serialization and database storage. Counters are maintained
// incrementally by AddPage so report writers never recompute them.
type CrawlReport struct {
	// Seed is the normalized URL the crawl started from.
	Seed string `json:"seed"`

	// StartedAt is the timestamp when the crawl started.
	StartedAt time.Time `json:"started_at"`

	// FinishedAt is the timestamp when the crawl finished.
	// Zero while the crawl is still running.
	FinishedAt time.Time `json:"finished_at"`

	// PagesFetched is the number of pages dispatched for fetching.
	PagesFetched int `json:"pages_fetched"`

	// LinksDiscovered is the total number of in-scope links found,
	// counting duplicates across pages.
	LinksDiscovered int `json:"links_discovered"`

	// ErrorCount is the number of pages whose fetch failed.
	ErrorCount int `json:"error_count"`

	// Partial is true if the crawl was interrupted before the frontier
	// drained (cancellation or crawl timeout).
	Partial bool `json:"partial"`

	// Pages contains all visited pages in dispatch order.
	Pages []*Page `json:"pages,omitempty"`
}

// NewCrawlReport creates a new report for the given seed URL.
func NewCrawlReport(seed string) *CrawlReport {
	return &CrawlReport{
		Seed:      seed,
		StartedAt: time.Now(),
		Pages:     make([]*Page, 0),
	}
}

// AddPage appends a visited page and updates the report counters.
func (r *CrawlReport) AddPage(page *Page) {
	r.Pages = append(r.Pages, page)
	r.PagesFetched++
	r.LinksDiscovered += len(page.Links)
	if page.Failed() {
		r.ErrorCount++
	}
}

// Finish records the crawl end time.
func (r *CrawlReport) Finish() {
	r.FinishedAt = time.Now()
}

// Duration returns the wall-clock time the crawl took.
// Returns zero if the crawl has not finished yet.
func (r *CrawlReport) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// Failures returns the pages whose fetch failed, in dispatch order.
func (r *CrawlReport) Failures() []*Page {
	var failed []*Page
	for _, p := range r.Pages {
		if p.Failed() {
			failed = append(failed, p)
		}
	}
	return failed
}

// StatusCounts returns the number of pages per HTTP status code.
// Pages that never received a response (transport errors) are excluded
// because they carry no status code.
func (r *CrawlReport) StatusCounts() map[int]int {
	counts := make(map[int]int)
	for _, p := range r.Pages {
		if p.StatusCode == 0 {
			continue
		}
		counts[p.StatusCode]++
	}
	return counts
}
