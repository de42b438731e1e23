// Package fetch retrieves full article pages and reduces them to
// readable text for evidence extraction.
package fetch

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	readability "github.com/go-shiori/go-readability"
)

const (
	// maxBodyBytes caps how much HTML we pull from an untrusted page.
	maxBodyBytes = 10 * 1024 * 1024

	userAgent = "holiday-signal/1.0"
)

// Client fetches a page over HTTP and strips it down to its readable
// body text. Navigation chrome, scripts, and boilerplate are removed
// so headline-only matches can be confirmed against the full story.
type Client struct {
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient returns a page fetcher with the given request timeout.
func NewClient(timeout time.Duration, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// FetchPage downloads rawURL and returns the readable text of the page.
func (c *Client) FetchPage(ctx context.Context, rawURL string) (string, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("parsing page url: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", fmt.Errorf("building page request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetching page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetching page: unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return "", fmt.Errorf("reading page body: %w", err)
	}
	if int64(len(body)) >= maxBodyBytes {
		return "", fmt.Errorf("page body exceeded %d byte limit", maxBodyBytes)
	}

	article, err := readability.FromReader(bytes.NewReader(body), parsed)
	if err != nil {
		return "", fmt.Errorf("extracting readable text: %w", err)
	}

	c.logger.Debug("fetched page",
		"url", rawURL,
		"chars", len(article.TextContent))

	return article.TextContent, nil
}
