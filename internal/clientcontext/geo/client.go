// Package geo resolves an IP address to a country code through an external
// lookup service, memoized in a 24h TTL cache. The upstream is untrusted and
// best-effort: every failure degrades to "no country", never to an error the
// redirect path could see.
package geo

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Client performs one external IP-to-country lookup.
type Client interface {
	Country(ctx context.Context, ip string) (string, error)
}

// HTTPClient looks countries up over HTTPS. The service answers
// GET {base}/{ip}/country with a plaintext 2-letter code.
type HTTPClient struct {
	baseURL string
	client  *http.Client
}

// NewHTTPClient builds a lookup client with the given base URL and request
// timeout. The timeout is mandatory: a hung lookup must never hold a
// redirect hostage.
func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

func (c *HTTPClient) Country(ctx context.Context, ip string) (string, error) {
	url := fmt.Sprintf("%s/%s/country", c.baseURL, ip)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("build geo request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("geo lookup: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("geo lookup: unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 16))
	if err != nil {
		return "", fmt.Errorf("read geo response: %w", err)
	}

	code := strings.ToUpper(strings.TrimSpace(string(body)))
	if !validCountryCode(code) {
		return "", fmt.Errorf("geo lookup: invalid country %q", code)
	}
	return code, nil
}

func validCountryCode(code string) bool {
	if len(code) != 2 {
		return false
	}
	for i := 0; i < 2; i++ {
		if code[i] < 'A' || code[i] > 'Z' {
			return false
		}
	}
	return true
}
