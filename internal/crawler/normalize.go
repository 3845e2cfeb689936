package crawler

import (
	"fmt"
	"net"
	"net/url"
	"strings"

	"golang.org/x/net/publicsuffix"
)

// Normalizer canonicalizes URLs and decides whether they belong to the
// crawled site. It is constructed from the seed URL and applies the same
// rules to every URL for the lifetime of one crawl.
//
// Design decision: We normalize URLs because:
//  1. The same page can have many URL representations
//  2. Fragment (#anchor) doesn't change content
//  3. Default ports and missing paths are cosmetic differences
//
// Normalization is idempotent: normalizing an already-normalized URL
// returns it unchanged. The visited set depends on this.
type Normalizer struct {
	// seed is the canonical form of the seed URL.
	seed *url.URL

	// scope is the registrable domain of the seed (eTLD+1).
	// Empty when the seed host has no registrable domain (IP literals,
	// single-label hosts); in that case scope falls back to exact
	// host:port equality.
	scope string
}

// NewNormalizer creates a Normalizer from the raw seed URL.
// A seed without a scheme is treated as http. It returns ErrInvalidSeed
// or ErrUnsupportedScheme when no crawl can start from the given seed.
func NewNormalizer(rawSeed string) (*Normalizer, error) {
	rawSeed = strings.TrimSpace(rawSeed)
	if rawSeed == "" {
		return nil, ErrInvalidSeed
	}

	// A bare hostname like "example.com" parses as a path, not a host.
	// Treat missing schemes as http so such seeds work as expected.
	if !strings.Contains(rawSeed, "://") {
		rawSeed = "http://" + rawSeed
	}

	u, err := url.Parse(rawSeed)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSeed, err)
	}

	switch strings.ToLower(u.Scheme) {
	case "http", "https":
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedScheme, u.Scheme)
	}

	if u.Host == "" {
		return nil, fmt.Errorf("%w: missing host", ErrInvalidSeed)
	}

	canonicalize(u)

	return &Normalizer{
		seed:  u,
		scope: registrableDomain(u.Hostname()),
	}, nil
}

// Seed returns the canonical form of the seed URL.
func (n *Normalizer) Seed() string {
	return n.seed.String()
}

// Normalize canonicalizes a resolved URL and reports whether it is part
// of the crawled site. It returns ("", false) for URLs that cannot be
// parsed, use a non-HTTP scheme, or fall outside the seed's scope.
func (n *Normalizer) Normalize(rawURL string) (string, bool) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", false
	}

	scheme := strings.ToLower(u.Scheme)
	if scheme != "http" && scheme != "https" {
		return "", false
	}

	canonicalize(u)

	if !n.inScope(u) {
		return "", false
	}

	return u.String(), true
}

// inScope reports whether a canonical URL belongs to the crawled site.
//
// Design decision: Scope is the seed's registrable domain rather than the
// exact host because:
//  1. www.example.com and example.com are almost always the same site
//  2. Subdomains like blog.example.com belong to the same operator
//  3. Crawling beyond the registrable domain would wander the whole web
func (n *Normalizer) inScope(u *url.URL) bool {
	if n.scope != "" {
		return registrableDomain(u.Hostname()) == n.scope
	}

	// Hosts without a registrable domain (IP literals, localhost) are
	// compared exactly, including the port.
	return strings.EqualFold(u.Host, n.seed.Host)
}

// canonicalize rewrites a URL in place into its canonical form:
// lowercase scheme and host, default ports stripped, fragment removed,
// and an empty path replaced by "/".
func canonicalize(u *url.URL) {
	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)

	// Default ports are implied by the scheme
	switch {
	case u.Scheme == "http" && strings.HasSuffix(u.Host, ":80"):
		u.Host = strings.TrimSuffix(u.Host, ":80")
	case u.Scheme == "https" && strings.HasSuffix(u.Host, ":443"):
		u.Host = strings.TrimSuffix(u.Host, ":443")
	}

	u.Fragment = ""
	u.RawFragment = ""

	// Empty path and "/" are the same resource
	if u.Path == "" {
		u.Path = "/"
	}
}

// registrableDomain returns the eTLD+1 of a hostname, or "" when the host
// has no registrable domain. IP literals and single-label hosts such as
// localhost have none; callers fall back to exact host comparison.
func registrableDomain(host string) string {
	if host == "" || net.ParseIP(host) != nil {
		return ""
	}

	domain, err := publicsuffix.EffectiveTLDPlusOne(host)
	if err != nil {
		return ""
	}
	return domain
}
