package domain

import "time"

// Article is the normalized shape of one text item from any source: a news
// API result, an RSS feed item, or a TV ticker snippet. PublishedAt is zero
// when the source did not report a timestamp.
type Article struct {
	Source      string    `json:"source"`
	URL         string    `json:"url"`
	Title       string    `json:"title"`
	Body        string    `json:"body"`
	PublishedAt time.Time `json:"published_at,omitzero"`
}
