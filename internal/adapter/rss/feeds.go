package rss

import (
	"fmt"
	"log/slog"
	"time"
)

// FeedSpec names one default feed.
type FeedSpec struct {
	Name string
	URL  string
}

// DefaultFeeds is the built-in watch list: national breaking-news feeds,
// south-India editions that carry most rain/cyclone closures, and education
// desks that post school-closure notices directly.
var DefaultFeeds = []FeedSpec{
	{Name: "NDTV Top Stories", URL: "https://feeds.feedburner.com/ndtvnews-top-stories"},
	{Name: "NDTV India", URL: "https://feeds.feedburner.com/ndtvnews-india-news"},
	{Name: "Times of India", URL: "https://timesofindia.indiatimes.com/rssfeedstopstories.cms"},
	{Name: "Hindustan Times", URL: "https://www.hindustantimes.com/feeds/rss/india-news/rssfeed.xml"},
	{Name: "Indian Express", URL: "https://indianexpress.com/section/india/feed/"},
	{Name: "The Hindu National", URL: "https://www.thehindu.com/news/national/feeder/default.rss"},
	{Name: "The Hindu States", URL: "https://www.thehindu.com/news/states/feeder/default.rss"},
	{Name: "Times of India Chennai", URL: "https://timesofindia.indiatimes.com/rssfeeds/2977472.cms"},
	{Name: "Times of India Kerala", URL: "https://timesofindia.indiatimes.com/rssfeeds/3012535.cms"},
	{Name: "Times of India Hyderabad", URL: "https://timesofindia.indiatimes.com/rssfeeds/2977645.cms"},
	{Name: "Times of India Bangalore", URL: "https://timesofindia.indiatimes.com/rssfeeds/2977909.cms"},
	{Name: "Times of India Mumbai", URL: "https://timesofindia.indiatimes.com/rssfeeds/2977209.cms"},
	{Name: "Deccan Chronicle", URL: "https://www.deccanchronicle.com/rss/feed.xml"},
	{Name: "NDTV Education", URL: "https://feeds.feedburner.com/ndtvnews-education"},
	{Name: "Indian Express Education", URL: "https://indianexpress.com/section/education/feed/"},
}

// BuildFeeds constructs Feed sources. With no explicit URLs the default
// watch list is used; explicit URLs get positional names.
func BuildFeeds(urls []string, timeout time.Duration, logger *slog.Logger) []*Feed {
	if len(urls) == 0 {
		feeds := make([]*Feed, 0, len(DefaultFeeds))
		for _, spec := range DefaultFeeds {
			feeds = append(feeds, NewFeed(spec.Name, spec.URL, timeout, logger))
		}
		return feeds
	}

	feeds := make([]*Feed, 0, len(urls))
	for i, u := range urls {
		feeds = append(feeds, NewFeed(fmt.Sprintf("rss-feed-%d", i+1), u, timeout, logger))
	}
	return feeds
}
