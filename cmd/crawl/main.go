// Package main provides the entry point for the crawl command.
//
// crawl fetches a seed URL, extracts its links, and recursively visits
// every link that belongs to the same site. Each visited page and each
// discovered link is printed as the crawl progresses.
//
// Usage:
//
//	crawl [flags] <seed-url>
//	crawl history [flags]
//	crawl init [flags]
//	crawl version
package main

// main is the entry point for crawl.
func main() {
	Execute()
}
