package crawler

import (
	"errors"
	"testing"
)

// TestNewNormalizer tests seed URL validation and canonicalization.
func TestNewNormalizer(t *testing.T) {
	t.Parallel()

	t.Run("canonicalizes the seed", func(t *testing.T) {
		t.Parallel()

		norm, err := NewNormalizer("HTTP://Example.COM:80")
		if err != nil {
			t.Fatalf("failed to create normalizer: %v", err)
		}

		if norm.Seed() != "http://example.com/" {
			t.Errorf("expected seed 'http://example.com/', got %q", norm.Seed())
		}
	})

	t.Run("adds http scheme to bare hostnames", func(t *testing.T) {
		t.Parallel()

		norm, err := NewNormalizer("example.com/docs")
		if err != nil {
			t.Fatalf("failed to create normalizer: %v", err)
		}

		if norm.Seed() != "http://example.com/docs" {
			t.Errorf("expected seed 'http://example.com/docs', got %q", norm.Seed())
		}
	})

	t.Run("trims surrounding whitespace", func(t *testing.T) {
		t.Parallel()

		norm, err := NewNormalizer("  https://example.com  ")
		if err != nil {
			t.Fatalf("failed to create normalizer: %v", err)
		}

		if norm.Seed() != "https://example.com/" {
			t.Errorf("expected seed 'https://example.com/', got %q", norm.Seed())
		}
	})

	t.Run("rejects empty seed", func(t *testing.T) {
		t.Parallel()

		_, err := NewNormalizer("")
		if !errors.Is(err, ErrInvalidSeed) {
			t.Errorf("expected ErrInvalidSeed, got %v", err)
		}
	})

	t.Run("rejects whitespace-only seed", func(t *testing.T) {
		t.Parallel()

		_, err := NewNormalizer("   ")
		if !errors.Is(err, ErrInvalidSeed) {
			t.Errorf("expected ErrInvalidSeed, got %v", err)
		}
	})

	t.Run("rejects unsupported schemes", func(t *testing.T) {
		t.Parallel()

		_, err := NewNormalizer("ftp://example.com/files")
		if !errors.Is(err, ErrUnsupportedScheme) {
			t.Errorf("expected ErrUnsupportedScheme, got %v", err)
		}
	})

	t.Run("rejects seed without host", func(t *testing.T) {
		t.Parallel()

		_, err := NewNormalizer("http:///path")
		if !errors.Is(err, ErrInvalidSeed) {
			t.Errorf("expected ErrInvalidSeed, got %v", err)
		}
	})

	t.Run("rejects unparsable seed", func(t *testing.T) {
		t.Parallel()

		_, err := NewNormalizer("http://exa mple.com/")
		if !errors.Is(err, ErrInvalidSeed) {
			t.Errorf("expected ErrInvalidSeed, got %v", err)
		}
	})
}

// TestNormalize tests URL canonicalization and scope filtering.
func TestNormalize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		seed   string
		input  string
		want   string
		wantOK bool
	}{
		{
			name:   "removes fragment",
			seed:   "http://example.com",
			input:  "http://example.com/page#section",
			want:   "http://example.com/page",
			wantOK: true,
		},
		{
			name:   "lowercases scheme and host",
			seed:   "http://example.com",
			input:  "HTTP://EXAMPLE.COM/Page",
			want:   "http://example.com/Page",
			wantOK: true,
		},
		{
			name:   "strips default http port",
			seed:   "http://example.com",
			input:  "http://example.com:80/page",
			want:   "http://example.com/page",
			wantOK: true,
		},
		{
			name:   "strips default https port",
			seed:   "https://example.com",
			input:  "https://example.com:443/secure",
			want:   "https://example.com/secure",
			wantOK: true,
		},
		{
			name:   "keeps non-default port",
			seed:   "http://example.com",
			input:  "http://example.com:8080/page",
			want:   "http://example.com:8080/page",
			wantOK: true,
		},
		{
			name:   "empty path becomes root",
			seed:   "http://example.com",
			input:  "http://example.com",
			want:   "http://example.com/",
			wantOK: true,
		},
		{
			name:   "preserves query",
			seed:   "http://example.com",
			input:  "http://example.com/search?q=test&page=2",
			want:   "http://example.com/search?q=test&page=2",
			wantOK: true,
		},
		{
			name:   "allows www subdomain",
			seed:   "http://example.com",
			input:  "http://www.example.com/about",
			want:   "http://www.example.com/about",
			wantOK: true,
		},
		{
			name:   "allows other subdomains",
			seed:   "http://www.example.com",
			input:  "http://blog.example.com/post",
			want:   "http://blog.example.com/post",
			wantOK: true,
		},
		{
			name:   "allows scheme changes within the site",
			seed:   "http://example.com",
			input:  "https://example.com/secure",
			want:   "https://example.com/secure",
			wantOK: true,
		},
		{
			name:   "rejects other domains",
			seed:   "http://example.com",
			input:  "http://other.com/page",
			wantOK: false,
		},
		{
			name:   "rejects domains sharing only a suffix",
			seed:   "http://example.com",
			input:  "http://notexample.com/page",
			wantOK: false,
		},
		{
			name:   "rejects non-http schemes",
			seed:   "http://example.com",
			input:  "ftp://example.com/files",
			wantOK: false,
		},
		{
			name:   "rejects unparsable URLs",
			seed:   "http://example.com",
			input:  "http://exa mple.com/page",
			wantOK: false,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			norm, err := NewNormalizer(tt.seed)
			if err != nil {
				t.Fatalf("failed to create normalizer: %v", err)
			}

			got, ok := norm.Normalize(tt.input)
			if ok != tt.wantOK {
				t.Fatalf("Normalize(%q) ok = %v, want %v", tt.input, ok, tt.wantOK)
			}
			if ok && got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

// TestNormalizeIdempotent tests that normalizing an already-normalized URL
// returns it unchanged. The visited set relies on this.
func TestNormalizeIdempotent(t *testing.T) {
	t.Parallel()

	norm, err := NewNormalizer("http://example.com")
	if err != nil {
		t.Fatalf("failed to create normalizer: %v", err)
	}

	inputs := []string{
		"HTTP://Example.com:80/Page#top",
		"http://example.com",
		"http://www.example.com/a/b?x=1",
		"https://example.com:443/",
	}

	for _, input := range inputs {
		once, ok := norm.Normalize(input)
		if !ok {
			t.Fatalf("Normalize(%q) unexpectedly out of scope", input)
		}

		twice, ok := norm.Normalize(once)
		if !ok {
			t.Fatalf("Normalize(%q) unexpectedly out of scope", once)
		}

		if once != twice {
			t.Errorf("normalization not idempotent: %q -> %q -> %q", input, once, twice)
		}
	}
}

// TestNormalizeScopeFallback tests scope checks for hosts without a
// registrable domain, where scope falls back to exact host comparison.
func TestNormalizeScopeFallback(t *testing.T) {
	t.Parallel()

	t.Run("IP literal seeds match exact host and port", func(t *testing.T) {
		t.Parallel()

		norm, err := NewNormalizer("http://127.0.0.1:8080")
		if err != nil {
			t.Fatalf("failed to create normalizer: %v", err)
		}

		tests := []struct {
			input  string
			wantOK bool
		}{
			{"http://127.0.0.1:8080/page", true},
			{"http://127.0.0.1:9090/page", false},
			{"http://127.0.0.2:8080/page", false},
		}

		for _, tt := range tests {
			if _, ok := norm.Normalize(tt.input); ok != tt.wantOK {
				t.Errorf("Normalize(%q) ok = %v, want %v", tt.input, ok, tt.wantOK)
			}
		}
	})

	t.Run("single-label seeds match exact host", func(t *testing.T) {
		t.Parallel()

		norm, err := NewNormalizer("http://localhost:3000")
		if err != nil {
			t.Fatalf("failed to create normalizer: %v", err)
		}

		if _, ok := norm.Normalize("http://localhost:3000/app"); !ok {
			t.Error("expected same host and port to be in scope")
		}
		if _, ok := norm.Normalize("http://localhost:4000/app"); ok {
			t.Error("expected different port to be out of scope")
		}
	})
}

// TestRegistrableDomain tests eTLD+1 extraction.
func TestRegistrableDomain(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		host string
		want string
	}{
		{"bare domain", "example.com", "example.com"},
		{"www subdomain", "www.example.com", "example.com"},
		{"deep subdomain", "a.b.example.co.uk", "example.co.uk"},
		{"ipv4 literal", "127.0.0.1", ""},
		{"ipv6 literal", "::1", ""},
		{"single label", "localhost", ""},
		{"empty host", "", ""},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := registrableDomain(tt.host)
			if got != tt.want {
				t.Errorf("registrableDomain(%q) = %q, want %q", tt.host, got, tt.want)
			}
		})
	}
}
