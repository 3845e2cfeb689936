package crawler

import (
	"context"
	"io"
	"mime"
	"net/http"
	"time"
)

// Response is the outcome of fetching a URL.
type Response struct {
	// StatusCode is the HTTP response status code.
	StatusCode int

	// ContentType is the response media type without parameters
	// (e.g. "text/html" for "text/html; charset=utf-8").
	ContentType string

	// Body is the response body, truncated to the fetcher's size limit.
	Body []byte
}

// Fetcher retrieves the content of a single URL.
// Implementations must be safe for concurrent use; the Spider calls
// Fetch from multiple workers at once.
//
// Design decision: Fetching is an interface rather than a method on
// Spider because:
//  1. Tests can supply deterministic fetchers without a network
//  2. The scheduler logic stays independent of transport details
//  3. Alternative transports (proxies, caches) plug in without changes
type Fetcher interface {
	Fetch(ctx context.Context, pageURL string) (*Response, error)
}

// HTTPFetcher fetches pages over HTTP(S) using a standard http.Client.
type HTTPFetcher struct {
	// client is the HTTP client used for all requests.
	client *http.Client

	// timeout bounds each individual request. Zero means no per-request
	// deadline beyond what the context carries.
	timeout time.Duration

	// userAgent is the User-Agent header to send.
	userAgent string

	// maxBodySize limits the size of response bodies to read.
	maxBodySize int64

	// headers are extra headers set on every request.
	headers map[string]string

	// cookie is an optional Cookie header value.
	cookie string
}

// FetcherOption configures an HTTPFetcher.
type FetcherOption func(*HTTPFetcher)

// WithFetchTimeout sets the per-request timeout.
func WithFetchTimeout(d time.Duration) FetcherOption {
	return func(f *HTTPFetcher) {
		f.timeout = d
	}
}

// WithUserAgent sets a custom User-Agent header.
func WithUserAgent(ua string) FetcherOption {
	return func(f *HTTPFetcher) {
		f.userAgent = ua
	}
}

// WithMaxBodySize sets the maximum response body size.
func WithMaxBodySize(size int64) FetcherOption {
	return func(f *HTTPFetcher) {
		f.maxBodySize = size
	}
}

// WithHeaders sets extra headers to send with every request.
func WithHeaders(headers map[string]string) FetcherOption {
	return func(f *HTTPFetcher) {
		f.headers = headers
	}
}

// WithCookie sets a Cookie header to send with every request.
// Format: "name=value" or "name1=value1; name2=value2".
func WithCookie(cookie string) FetcherOption {
	return func(f *HTTPFetcher) {
		f.cookie = cookie
	}
}

// NewHTTPFetcher creates a fetcher backed by the given HTTP client.
// A nil client falls back to a default client.
//
// Design decision: We accept an external client because:
//  1. Transport configuration (proxies, TLS) belongs to the caller
//  2. Tests can inject clients pointing at local servers
//  3. Consistent with how the rest of the application builds components
func NewHTTPFetcher(client *http.Client, opts ...FetcherOption) *HTTPFetcher {
	if client == nil {
		client = &http.Client{}
	}

	f := &HTTPFetcher{
		client:      client,
		timeout:     30 * time.Second,
		userAgent:   "crawl/2.0 (+https://github.com/mackstann/crawler-exercise)",
		maxBodySize: 5 * 1024 * 1024, // 5MB
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// Fetch performs a GET request and returns the response.
// HTTP error statuses are returned in the Response, not as an error;
// the error return covers transport failures only.
func (f *HTTPFetcher) Fetch(ctx context.Context, pageURL string) (*Response, error) {
	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, err
	}

	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")
	for k, v := range f.headers {
		req.Header.Set(k, v)
	}
	if f.cookie != "" {
		req.Header.Set("Cookie", f.cookie)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	// Read body with limit
	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBodySize))
	if err != nil {
		return nil, err
	}

	contentType := resp.Header.Get("Content-Type")
	if mediaType, _, err := mime.ParseMediaType(contentType); err == nil {
		contentType = mediaType
	}

	return &Response{
		StatusCode:  resp.StatusCode,
		ContentType: contentType,
		Body:        body,
	}, nil
}
