package crawler

import "errors"

// Crawl errors.
// These are returned by Spider.Crawl and the Normalizer and allow callers
// to distinguish fatal seed problems from an interrupted crawl via errors.Is().
var (
	// ErrInvalidSeed is returned when the seed URL cannot be parsed or
	// has no host. The crawl never starts in this case.
	ErrInvalidSeed = errors.New("invalid seed URL")

	// ErrUnsupportedScheme is returned when the seed URL uses a scheme
	// other than http or https.
	ErrUnsupportedScheme = errors.New("unsupported URL scheme")

	// ErrCrawlInterrupted is returned when the crawl ends before the
	// frontier drained, due to cancellation or a crawl deadline.
	// The report returned alongside it holds the partial results.
	ErrCrawlInterrupted = errors.New("crawl interrupted")
)
