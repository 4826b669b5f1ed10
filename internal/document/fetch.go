package document

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const userAgent = "docstyler/1.0 (+https://github.com/f4ah6o/docstyler-go)"

var httpClient = &http.Client{Timeout: 30 * time.Second}

// IsURL reports whether s looks like an http(s) address rather than a path.
func IsURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// Fetch downloads an HTML page and loads it as a document.
func Fetch(ctx context.Context, targetURL string, opts Options) (*Document, error) {
	parsed, err := url.Parse(targetURL)
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("invalid URL scheme: %s. Only http and https are supported", parsed.Scheme)
	}
	if parsed.Host == "" {
		return nil, fmt.Errorf("invalid URL: domain is missing")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, targetURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", targetURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s returned status %d", targetURL, resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "" && !strings.Contains(ct, "text/html") {
		return nil, fmt.Errorf("%s is not HTML (%s)", targetURL, ct)
	}

	return Load(resp.Body, opts)
}
