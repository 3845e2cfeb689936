// Package model defines the core data structures used throughout the crawler.
//
// This package contains the following main types:
//   - Page: Represents a crawled web page with its outgoing links
//   - CrawlReport: The aggregated result of a single crawl
//
// Design decision: We separate models into their own package to avoid circular
// dependencies. Multiple packages (crawler, report, database) need to use these
// types, so centralizing them prevents import cycles.
//
// The models are designed to be serializable to JSON for report output and
// database storage.
package model
