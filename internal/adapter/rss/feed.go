package rss

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/rainyindia/holiday-signal/internal/domain"
)

// Feed polls one RSS 2.0 feed. Each feed is its own pipeline.ArticleSource
// so a slow or broken feed fails alone.
type Feed struct {
	name       string
	url        string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewFeed creates a Feed source.
func NewFeed(name, feedURL string, timeout time.Duration, logger *slog.Logger) *Feed {
	return &Feed{
		name: name,
		url:  feedURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// Name identifies this feed in logs, metrics, and update sources.
func (f *Feed) Name() string { return f.name }

// FetchArticles downloads and parses the feed, returning every item.
func (f *Feed) FetchArticles(ctx context.Context) ([]domain.Article, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch feed %s: %w", f.name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("feed %s: status %d", f.name, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read feed %s: %w", f.name, err)
	}
	return f.parse(body)
}

func (f *Feed) parse(data []byte) ([]domain.Article, error) {
	var doc document
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse feed %s: %w", f.name, err)
	}

	articles := make([]domain.Article, 0, len(doc.Channel.Items))
	for _, item := range doc.Channel.Items {
		title := strings.TrimSpace(item.Title)
		if title == "" {
			continue
		}
		articles = append(articles, domain.Article{
			Source:      f.name,
			URL:         strings.TrimSpace(item.Link),
			Title:       title,
			Body:        stripTags(item.Description),
			PublishedAt: parsePubDate(item.PubDate),
		})
	}
	return articles, nil
}

// pubDateLayouts covers the formats Indian news feeds actually emit.
var pubDateLayouts = []string{
	time.RFC1123Z,
	time.RFC1123,
	time.RFC822Z,
	time.RFC822,
	time.RFC3339,
}

// parsePubDate returns the zero time for missing or unparseable dates; the
// extractor treats a zero publish time as "unknown".
func parsePubDate(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	for _, layout := range pubDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

var tagPattern = regexp.MustCompile(`<[^>]*>`)

// stripTags removes markup from feed descriptions, which frequently embed
// image tags and tracking anchors.
func stripTags(s string) string {
	return strings.TrimSpace(tagPattern.ReplaceAllString(s, " "))
}

// RSS 2.0 document types.

type document struct {
	Channel channel `xml:"channel"`
}

type channel struct {
	Title string `xml:"title"`
	Items []item `xml:"item"`
}

type item struct {
	Title       string `xml:"title"`
	Link        string `xml:"link"`
	Description string `xml:"description"`
	PubDate     string `xml:"pubDate"`
}
