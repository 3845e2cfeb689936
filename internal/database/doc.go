// Package database provides SQLite-based storage for crawl history.
//
// This package implements the CrawlDB, which stores:
//   - Crawl runs with summary statistics and the full report as JSON
//   - Individual page records for per-page queries
//   - Link edges between pages for referrer queries
//
// Design decision: We use SQLite (via modernc.org/sqlite) instead of other
// databases because:
// 1. No external dependencies - the database is a single file
// 2. CGO-free implementation allows easy cross-compilation
// 3. Sufficient performance for our use case
// 4. WAL mode provides good concurrent read performance
//
// Stored crawls are history only. The crawler never reads the database to
// decide what to fetch; every run starts from its seed alone.
package database
