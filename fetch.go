package xtid

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	stealth "github.com/anatolykoptev/go-stealth"
)

// Fetcher retrieves the text behind a URL. It is the only network dependency
// in the derivation pipeline; tests substitute a deterministic fake.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

const fetchUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/133.0.0.0 Safari/537.36"

// fetchHeaderOrder keeps the header fingerprint stable across fetches.
var fetchHeaderOrder = []string{
	"user-agent",
	"accept",
	"accept-language",
	"sec-ch-ua",
	"sec-ch-ua-mobile",
	"sec-ch-ua-platform",
}

// HTTPFetcher fetches over plain net/http with browser-like headers.
type HTTPFetcher struct {
	// Client is the underlying HTTP client; http.DefaultClient when nil.
	Client *http.Client
}

// NewHTTPFetcher returns an HTTPFetcher with a 30 second timeout, so a
// wedged CDN fails initialization instead of hanging it.
func NewHTTPFetcher() *HTTPFetcher {
	return &HTTPFetcher{Client: &http.Client{Timeout: 30 * time.Second}}
}

// Fetch performs a GET and returns the response body. Cancelling ctx aborts
// the request.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", fetchUserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("HTTP %d for %s", resp.StatusCode, url)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// StealthFetcher fetches through a go-stealth BrowserClient so the TLS and
// header fingerprint matches a real browser.
type StealthFetcher struct {
	client *stealth.BrowserClient
}

// NewStealthFetcher builds a stealth-backed fetcher. Options are passed
// through to the underlying client, e.g. stealth.WithProxy.
func NewStealthFetcher(opts ...stealth.ClientOption) (*StealthFetcher, error) {
	opts = append(opts, stealth.WithHeaderOrder(fetchHeaderOrder))
	bc, err := stealth.NewClient(opts...)
	if err != nil {
		return nil, fmt.Errorf("stealth client: %w", err)
	}
	return &StealthFetcher{client: bc}, nil
}

// Fetch performs a GET with browser client hints and returns the body.
func (f *StealthFetcher) Fetch(ctx context.Context, url string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	headers := map[string]string{
		"user-agent":      fetchUserAgent,
		"accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8",
		"accept-language": "en-US,en;q=0.9",
	}
	if ch := stealth.ClientHintsHeaders(fetchUserAgent); ch != nil {
		for k, v := range ch {
			headers[k] = v
		}
	}

	body, _, status, err := f.client.DoWithHeaderOrder(http.MethodGet, url, headers, nil, fetchHeaderOrder)
	if err != nil {
		return "", err
	}
	if status != http.StatusOK {
		return "", fmt.Errorf("HTTP %d for %s", status, url)
	}
	return string(body), nil
}
