package newsapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/rainyindia/holiday-signal/internal/domain"
)

// holidayQuery pairs weather terms with impact terms so the API only returns
// plausible rain-holiday combinations. Segment scoring still runs on every
// result; this just keeps the quota spend useful.
const holidayQuery = `(rain OR flood OR cyclone OR weather) AND (school OR college OR holiday OR closed)`

const pageSize = 100

// Client queries the NewsAPI "everything" endpoint. It implements
// pipeline.ArticleSource. Requests are locally rate limited; a vendor 429 is
// surfaced as domain.ErrRateLimited so batch callers can stop early.
type Client struct {
	apiKey     string
	httpClient *http.Client
	baseURL    string
	limiter    *rate.Limiter
	logger     *slog.Logger
}

// NewClient creates a NewsAPI client. maxRPS bounds the client-side request
// rate; the free tier tolerates roughly one request per second.
func NewClient(apiKey string, timeout time.Duration, maxRPS float64, logger *slog.Logger) *Client {
	return &Client{
		apiKey: apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: "https://newsapi.org/v2/everything",
		limiter: rate.NewLimiter(rate.Limit(maxRPS), 1),
		logger:  logger,
	}
}

// Name identifies this source in logs and metrics.
func (c *Client) Name() string { return "newsapi" }

// FetchArticles returns today's matching articles.
func (c *Client) FetchArticles(ctx context.Context) ([]domain.Article, error) {
	now := time.Now()
	from := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return c.FetchWindow(ctx, from, time.Time{})
}

// FetchWindow returns matching articles published in [from, to]. A zero "to"
// leaves the window open-ended.
func (c *Client) FetchWindow(ctx context.Context, from, to time.Time) ([]domain.Article, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	params := url.Values{
		"q":        {holidayQuery},
		"language": {"en"},
		"sortBy":   {"relevancy"},
		"pageSize": {strconv.Itoa(pageSize)},
	}
	if !from.IsZero() {
		params.Set("from", from.Format("2006-01-02"))
	}
	if !to.IsZero() {
		params.Set("to", to.Format("2006-01-02"))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("X-Api-Key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("news request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, fmt.Errorf("newsapi quota exhausted: %w", domain.ErrRateLimited)
	}
	if resp.StatusCode != http.StatusOK {
		var apiErr errorResponse
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Code == "rateLimited" {
			return nil, fmt.Errorf("newsapi quota exhausted: %w", domain.ErrRateLimited)
		}
		return nil, fmt.Errorf("newsapi error: status %d: %s", resp.StatusCode, body)
	}

	var newsResp response
	if err := json.Unmarshal(body, &newsResp); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	articles := make([]domain.Article, 0, len(newsResp.Articles))
	for _, a := range newsResp.Articles {
		if a.Title == "" {
			continue
		}
		published, _ := time.Parse(time.RFC3339, a.PublishedAt)
		articles = append(articles, domain.Article{
			Source:      a.Source.Name,
			URL:         a.URL,
			Title:       a.Title,
			Body:        a.Description,
			PublishedAt: published,
		})
	}
	return articles, nil
}

// NewsAPI response types.

type response struct {
	Status   string    `json:"status"`
	Articles []article `json:"articles"`
}

type article struct {
	Source      sourceRef `json:"source"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	URL         string    `json:"url"`
	PublishedAt string    `json:"publishedAt"`
}

type sourceRef struct {
	Name string `json:"name"`
}

type errorResponse struct {
	Status  string `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
}
