// Package source retrieves raw feed or page content and extracts
// update records from it. Each acquisition strategy (RSS, static HTML,
// browser-rendered HTML) implements the Source interface.
package source

import (
	"context"
	"io"
	"net/http"
	"time"

	"azure-watch/updates/internal/feed"
)

// Source produces update records from one acquisition strategy.
// Records come back classified and date-normalized but not yet
// deduplicated or sorted.
type Source interface {
	Name() string
	Fetch(ctx context.Context) ([]feed.Update, error)
}

// Client is a thin HTTP GET client with the custom user agent and the
// bounded timeout the upstream endpoints expect.
type Client struct {
	http      *http.Client
	userAgent string
}

// NewClient returns a Client with the given per-request timeout.
func NewClient(timeout time.Duration, userAgent string) *Client {
	return &Client{
		http:      &http.Client{Timeout: timeout},
		userAgent: userAgent,
	}
}

// Get fetches url and returns the response body. Any transport failure
// or non-2xx status comes back as a *feed.TransportError, which is
// fatal to the current pass.
func (c *Client) Get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &feed.TransportError{URL: url, Err: err}
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &feed.TransportError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &feed.TransportError{URL: url, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &feed.TransportError{URL: url, Err: err}
	}
	return body, nil
}
