package crawler

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/mackstann/crawler-exercise/internal/model"
)

// Tracer receives crawl progress events as they happen.
//
// The Spider calls tracers only from its coordinator goroutine, so
// implementations do not need to be safe for concurrent use.
type Tracer interface {
	// Visit reports that a page has been handed to a fetch worker.
	Visit(pageURL string)

	// Link reports an in-scope link discovered on a fetched page.
	// The depth is the link's distance from the seed, which is the
	// linking page's depth plus one.
	Link(pageURL string, depth int)
}

// nopTracer discards all events. Used when no tracer is configured.
type nopTracer struct{}

func (nopTracer) Visit(string)     {}
func (nopTracer) Link(string, int) {}

// Spider crawls all pages of a single site.
// It owns the crawl lifecycle: claiming URLs, dispatching fetches to a
// bounded worker pool, and processing results one at a time.
//
// Design decision: We call it "Spider" rather than "Crawler" because:
//  1. "Spider" is the traditional term for web crawlers
//  2. Distinguishes the component from the package name
//  3. Clearer in code: crawler.NewSpider() vs crawler.NewCrawler()
type Spider struct {
	// fetcher retrieves page content. It is shared by all workers and
	// must be safe for concurrent use.
	fetcher Fetcher

	// concurrency is the number of fetch workers.
	concurrency int

	// maxDepth limits the link distance from the seed.
	// 0 means unlimited.
	maxDepth int

	// maxPages limits the total number of pages fetched.
	// 0 means unlimited.
	maxPages int

	// ignorePatterns are URL path patterns to skip during crawling.
	// Patterns use glob syntax (e.g., "/admin/*", "*.pdf").
	ignorePatterns []string

	// followPatterns are URL path patterns to follow during crawling.
	// If set, only URLs matching these patterns are followed.
	// Empty means all URLs are allowed (subject to ignorePatterns).
	followPatterns []string

	// tracer receives progress events for trace output.
	tracer Tracer

	// logger is used for crawl-level logging.
	logger *slog.Logger
}

// SpiderOption configures a Spider.
type SpiderOption func(*Spider)

// WithConcurrency sets the number of fetch workers.
// Default is 8 if not specified.
func WithConcurrency(n int) SpiderOption {
	return func(s *Spider) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

// WithMaxDepth sets the maximum link distance from the seed.
// 0 = unlimited, 1 = the seed plus directly linked pages, etc.
func WithMaxDepth(depth int) SpiderOption {
	return func(s *Spider) {
		s.maxDepth = depth
	}
}

// WithMaxPages sets the maximum number of pages to fetch.
// 0 means unlimited.
func WithMaxPages(maxPages int) SpiderOption {
	return func(s *Spider) {
		s.maxPages = maxPages
	}
}

// WithIgnorePatterns sets URL path patterns to skip during crawling.
// Patterns use glob syntax (e.g., "/admin/*", "*.pdf", "/logout*").
// URLs matching any of these patterns will not be fetched.
func WithIgnorePatterns(patterns []string) SpiderOption {
	return func(s *Spider) {
		s.ignorePatterns = patterns
	}
}

// WithFollowPatterns sets URL path patterns to follow during crawling.
// Patterns use glob syntax (e.g., "/api/*", "/public/*").
// If set, only URLs matching at least one pattern are fetched.
// Empty slice means all URLs are allowed (default behavior).
func WithFollowPatterns(patterns []string) SpiderOption {
	return func(s *Spider) {
		s.followPatterns = patterns
	}
}

// WithTracer sets the tracer that receives progress events.
func WithTracer(tracer Tracer) SpiderOption {
	return func(s *Spider) {
		if tracer != nil {
			s.tracer = tracer
		}
	}
}

// WithLogger sets a custom logger for crawl-level logging.
func WithLogger(logger *slog.Logger) SpiderOption {
	return func(s *Spider) {
		s.logger = logger
	}
}

// NewSpider creates a new Spider using the given fetcher.
//
// Design decision: We require an external fetcher because:
//  1. Transport configuration is handled by the fetcher
//  2. Tests can supply deterministic fetchers without a network
//  3. The scheduler logic stays independent of HTTP details
func NewSpider(fetcher Fetcher, opts ...SpiderOption) *Spider {
	s := &Spider{
		fetcher:     fetcher,
		concurrency: 8,
		tracer:      nopTracer{},
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.logger == nil {
		s.logger = slog.Default()
	}

	return s
}

// result carries a completed fetch back to the coordinator.
type result struct {
	task task
	resp *Response
	err  error
}

// Crawl fetches the seed and recursively follows in-scope links until no
// work remains. It returns a report of everything fetched. On interruption
// the report holds the partial results and the error wraps
// ErrCrawlInterrupted; a nil error means the site was crawled completely.
//
// Design decision: The crawl is over when the frontier is empty and no
// fetch is in flight. Workers never decide when the crawl ends; only the
// coordinator sees both the frontier and the in-flight count, so the
// completion check is a plain conjunction with no races.
func (s *Spider) Crawl(ctx context.Context, rawSeed string) (*model.CrawlReport, error) {
	norm, err := NewNormalizer(rawSeed)
	if err != nil {
		return nil, err
	}

	seed := norm.Seed()
	report := model.NewCrawlReport(seed)

	// Per-crawl state lives here rather than on the Spider so the same
	// Spider can run crawls back to back without a reset step.
	visited := NewVisitedSet()
	visited.TryClaim(seed)

	var pending frontier
	pending.push(task{url: seed, depth: 0})

	// Unbuffered channels: a task is handed directly to an idle worker,
	// and results are processed one at a time as they arrive.
	work := make(chan task)
	results := make(chan result)

	g, workerCtx := errgroup.WithContext(ctx)
	for i := 0; i < s.concurrency; i++ {
		g.Go(func() error {
			for t := range work {
				resp, err := s.fetcher.Fetch(workerCtx, t.url)
				results <- result{task: t, resp: resp, err: err}
			}
			return nil
		})
	}

	s.logger.Debug("crawl started", "seed", seed, "concurrency", s.concurrency)

	inFlight := 0
	dispatched := 0
	interrupted := false

	// handleResult is a closure so it can update coordinator-owned state
	// without locking.
	handleResult := func(res result) {
		page := s.buildPage(norm, res)
		report.AddPage(page)

		if page.Failed() {
			s.logger.Warn("fetch failed", "url", page.URL, "error", page.FetchError)
		} else {
			s.logger.Debug("page fetched",
				"url", page.URL,
				"status", page.StatusCode,
				"depth", page.Depth,
				"links", len(page.Links),
			)
		}

		childDepth := res.task.depth + 1
		for _, link := range page.Links {
			s.tracer.Link(link, childDepth)

			// The trace line above is owed to every in-scope link;
			// everything below decides whether it is also fetched.
			if interrupted {
				continue
			}
			if s.maxPages > 0 && dispatched >= s.maxPages {
				continue
			}
			if s.maxDepth > 0 && childDepth > s.maxDepth {
				continue
			}
			if !s.shouldFollow(link) {
				continue
			}
			if !visited.TryClaim(link) {
				continue
			}
			pending.push(task{url: link, depth: childDepth, parent: page.URL})
		}
	}

	for !pending.empty() || inFlight > 0 {
		if !interrupted && ctx.Err() != nil {
			// Stop admitting work but keep draining in-flight fetches
			// so no worker is left blocked on the results channel.
			interrupted = true
			pending.clear()
		}

		if interrupted {
			if inFlight == 0 {
				break
			}
			res := <-results
			inFlight--
			handleResult(res)
			continue
		}

		// The dispatch case is armed only when the frontier has work.
		var dispatch chan<- task
		var next task
		if !pending.empty() {
			next = pending.next()
			dispatch = work
		}

		select {
		case dispatch <- next:
			pending.pop()
			inFlight++
			dispatched++
			s.tracer.Visit(next.url)
			if s.maxPages > 0 && dispatched >= s.maxPages {
				// Page cap reached; anything still queued is dropped.
				pending.clear()
			}
		case res := <-results:
			inFlight--
			handleResult(res)
		case <-ctx.Done():
			// Handled at the top of the loop.
		}
	}

	close(work)
	if err := g.Wait(); err != nil {
		return report, err
	}

	report.Partial = interrupted
	report.Finish()

	s.logger.Debug("crawl finished",
		"pages", report.PagesFetched,
		"links", report.LinksDiscovered,
		"errors", report.ErrorCount,
		"partial", report.Partial,
		"elapsed", report.Duration(),
	)

	if interrupted {
		return report, fmt.Errorf("%w: %v", ErrCrawlInterrupted, ctx.Err())
	}

	return report, nil
}

// buildPage turns a fetch result into a page record, extracting the title
// and the in-scope links when the content is HTML.
func (s *Spider) buildPage(norm *Normalizer, res result) *model.Page {
	page := &model.Page{
		URL:       res.task.url,
		Parent:    res.task.parent,
		Depth:     res.task.depth,
		FetchedAt: time.Now(),
	}

	if res.err != nil {
		page.FetchError = res.err.Error()
		return page
	}

	page.StatusCode = res.resp.StatusCode
	page.ContentType = res.resp.ContentType
	page.Raw = res.resp.Body
	page.TruncateRaw()
	page.ComputeHash()

	// An HTTP error status ends this branch of the crawl; the body of an
	// error page is not followed.
	if res.resp.StatusCode < 200 || res.resp.StatusCode >= 300 {
		page.FetchError = fmt.Sprintf("unexpected status %d", res.resp.StatusCode)
		page.Raw = nil
		return page
	}

	if page.IsHTML() {
		parser, err := NewParser(page.URL)
		if err == nil {
			parsed, err := parser.Parse(bytes.NewReader(page.Raw))
			if err != nil {
				// A page that cannot be parsed contributes no links.
				s.logger.Debug("parse failed", "url", page.URL, "error", err)
			} else {
				page.Title = parsed.Title
				for _, raw := range parsed.Links {
					if canonical, ok := norm.Normalize(raw); ok {
						page.Links = append(page.Links, canonical)
					}
				}
			}
		}
	}

	// Body bytes are only needed for hashing; drop them so long crawls
	// keep a flat memory profile.
	page.Raw = nil

	return page
}

// shouldFollow checks if a URL should be fetched based on ignore/follow patterns.
//
// Logic:
//  1. If URL matches any ignorePattern, skip it (return false)
//  2. If followPatterns is set and URL matches none, skip it (return false)
//  3. Otherwise, follow it (return true)
func (s *Spider) shouldFollow(targetURL string) bool {
	u, err := url.Parse(targetURL)
	if err != nil {
		return false
	}

	// Get the path for pattern matching
	path := u.Path
	if path == "" {
		path = "/"
	}

	// Check ignore patterns first - if matched, skip
	for _, pattern := range s.ignorePatterns {
		if matchPattern(pattern, path) {
			return false
		}
	}

	// If follow patterns are set, URL must match at least one
	if len(s.followPatterns) > 0 {
		for _, pattern := range s.followPatterns {
			if matchPattern(pattern, path) {
				return true
			}
		}
		// No follow pattern matched
		return false
	}

	// No follow patterns set, allow all (that weren't ignored)
	return true
}

// matchPattern checks if a path matches a glob pattern.
// Patterns can use:
//   - * to match any sequence of non-separator characters
//   - ? to match any single character
//
// Examples:
//   - "/admin/*" matches "/admin/dashboard", "/admin/users"
//   - "*.pdf" matches "/docs/file.pdf"
//   - "/api/v?" matches "/api/v1", "/api/v2"
func matchPattern(pattern, path string) bool {
	// Handle common patterns more efficiently
	// For patterns like "/admin/*", we want to match "/admin/anything"
	if strings.HasSuffix(pattern, "/*") {
		prefix := strings.TrimSuffix(pattern, "/*")
		if strings.HasPrefix(path, prefix+"/") || path == prefix {
			return true
		}
	}

	// Handle extension patterns like "*.pdf"
	if strings.HasPrefix(pattern, "*.") {
		ext := strings.TrimPrefix(pattern, "*")
		if strings.HasSuffix(path, ext) {
			return true
		}
	}

	// Use filepath.Match for standard glob matching
	// Note: filepath.Match doesn't support ** for recursive matching,
	// but it handles * and ? well for single-segment patterns
	matched, err := filepath.Match(pattern, path)
	if err != nil {
		return false
	}
	if matched {
		return true
	}

	// Also try matching just the filename for patterns like "*.pdf"
	if strings.Contains(pattern, "*") && !strings.Contains(pattern, "/") {
		filename := filepath.Base(path)
		matched, err := filepath.Match(pattern, filename)
		if err == nil && matched {
			return true
		}
	}

	return false
}
