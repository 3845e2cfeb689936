// Package crawler provides single-site web crawling functionality.
//
// # Architecture
//
// The crawler package is designed around the Spider type, which coordinates
// the crawling process. A single coordinator goroutine owns the frontier of
// pending URLs and processes fetch results one at a time, while a fixed pool
// of workers performs the network fetches concurrently.
//
// Design decision: We keep result processing on one goroutine rather than
// locking shared state because:
//  1. Link discovery order stays deterministic for trace output
//  2. The frontier and report need no synchronization
//  3. Network I/O is the bottleneck, not result processing
//
// # Components
//
//   - Spider: Coordinates the crawl and enforces its limits
//   - Fetcher: Retrieves page content over HTTP
//   - Parser: HTML parser that extracts links and titles
//   - Normalizer: Canonicalizes URLs and applies the scope rule
//   - VisitedSet: Claims each URL exactly once
//
// # Politeness
//
// The crawler is designed to be polite:
//   - Bounded concurrency (8 connections by default)
//   - Stays within the seed's registrable domain
//   - Identifies itself with a descriptive User-Agent
//   - Depth and page caps are configurable
//
// # Usage
//
//	fetcher := crawler.NewHTTPFetcher(httpClient)
//	spider := crawler.NewSpider(fetcher, crawler.WithConcurrency(8))
//	report, err := spider.Crawl(ctx, "https://example.com/")
package crawler
