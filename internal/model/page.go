package model

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Page represents a single crawled web page.
// It records where the page sits in the crawl tree and what the fetch produced.
//
// Design decision: We store both the raw bytes and the extracted links because:
// 1. Raw bytes allow hashing for deduplication and change detection
// 2. Extracted links preserve discovery order for trace output
// 3. Fetch metadata (status, error) is needed for the final report
type Page struct {
	// URL is the normalized URL of the page.
	URL string `json:"url"`

	// Parent is the normalized URL of the page that linked here.
	// Empty for the seed page.
	Parent string `json:"parent,omitempty"`

	// Depth is the distance from the seed in link hops.
	// The seed page has depth 0.
	Depth int `json:"depth"`

	// StatusCode is the HTTP response status code.
	// Zero when the fetch failed before a response arrived.
	StatusCode int `json:"status_code"`

	// ContentType is the MIME type of the response.
	// Extracted from the Content-Type header for convenience.
	ContentType string `json:"content_type,omitempty"`

	// Title is the page title extracted from the <title> tag.
	// Empty for non-HTML content.
	Title string `json:"title,omitempty"`

	// Links contains the in-scope normalized URLs found on the page,
	// in document order. Duplicates within one page are kept.
	Links []string `json:"links,omitempty"`

	// Raw contains the raw response body bytes.
	// Limited to MaxPageSize bytes.
	Raw []byte `json:"-"` // Excluded from JSON to reduce report size

	// Hash is the SHA-256 hash of the raw content.
	// Used for deduplication and change detection.
	Hash string `json:"hash,omitempty"`

	// FetchError is the error message for a failed fetch.
	// Empty when the page was retrieved successfully.
	FetchError string `json:"fetch_error,omitempty"`

	// FetchedAt is the timestamp when the page was fetched.
	FetchedAt time.Time `json:"fetched_at"`
}

// MaxPageSize is the maximum size of raw page content to keep.
// Larger bodies are truncated to this size.
const MaxPageSize = 5 * 1024 * 1024 // 5 MB

// ComputeHash calculates and sets the SHA-256 hash of the page's raw content.
// This should be called after setting the Raw field.
func (p *Page) ComputeHash() {
	if len(p.Raw) == 0 {
		p.Hash = ""
		return
	}

	hash := sha256.Sum256(p.Raw)
	p.Hash = hex.EncodeToString(hash[:])
}

// IsHTML returns true if the page content type indicates HTML.
func (p *Page) IsHTML() bool {
	return p.ContentType == "text/html" ||
		p.ContentType == "application/xhtml+xml" ||
		// Handle content types with charset suffix
		len(p.ContentType) > 9 && p.ContentType[:9] == "text/html"
}

// Failed returns true if the page could not be fetched.
func (p *Page) Failed() bool {
	return p.FetchError != ""
}

// TruncateRaw ensures the raw content doesn't exceed MaxPageSize.
// Call this after setting Raw to enforce the size limit.
func (p *Page) TruncateRaw() {
	if len(p.Raw) > MaxPageSize {
		p.Raw = p.Raw[:MaxPageSize]
	}
}
