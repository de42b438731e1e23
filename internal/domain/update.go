package domain

import (
	"regexp"
	"strings"
	"time"
)

// Category values, most specific first. Classification picks the first
// matching category; General is the fallback.
const (
	CategoryEducational    = "Educational"
	CategoryPublicOfficial = "Public/Official"
	CategoryTransportation = "Transportation"
	CategoryGeneral        = "General"
)

// Holiday type values, most specific first. Update is the fallback.
const (
	HolidayTypeWeather  = "Unexpected (Weather)"
	HolidayTypeCalendar = "Calendar Holiday"
	HolidayTypeClosure  = "Closure"
	HolidayTypeUpdate   = "Update"
)

const maxSummaryRunes = 450

// Source records one contributing news source for an update.
type Source struct {
	Name  string    `json:"name"`
	URL   string    `json:"url"`
	Title string    `json:"title"`
	Date  time.Time `json:"date,omitzero"`
}

// Update is the persisted per-place-per-day holiday-likelihood record.
// UpdateID is "<lowercase place>_<YYYY-MM-DD>", NewsDate a fixed-width
// "YYYY-MM-DD HH:MM:SS" timestamp of the latest contributing evidence.
type Update struct {
	UpdateID    string    `json:"update_id"`
	Title       string    `json:"title"`
	Content     string    `json:"content"`
	Region      string    `json:"region"`
	State       string    `json:"state,omitempty"`
	Reason      string    `json:"reason,omitempty"`
	Category    string    `json:"category"`
	HolidayType string    `json:"holiday_type"`
	Summary     string    `json:"summary"`
	Sources     []Source  `json:"sources"`
	SourceCount int       `json:"source_count"`
	Confidence  int       `json:"confidence"`
	NewsDate    string    `json:"news_date"`
	IsActive    bool      `json:"is_active"`
	ProcessedAt time.Time `json:"processed_at"`
}

var (
	categoryEducationalPattern = regexp.MustCompile(`(?i)(school|college|university|student|class|exam|educational)`)
	categoryPublicPattern      = regexp.MustCompile(`(?i)(bank|market|office|work|govt|government)`)
	categoryTransportPattern   = regexp.MustCompile(`(?i)(transport|bus|train|metro|flight)`)

	typeWeatherPattern  = regexp.MustCompile(`(?i)(rain|flood|cyclone|alert|downpour|heavy|waterlogging|weather|monsoon)`)
	typeCalendarPattern = regexp.MustCompile(`(?i)(festival|diwali|pongal|eid|christmas|jayanti|republic|independence)`)
	typeClosurePattern  = regexp.MustCompile(`(?i)(closed|shut|holiday|suspend|non-working)`)

	// Boilerplate tails stripped from summaries.
	boilerplatePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)Read more.*`),
		regexp.MustCompile(`(?i)Click here.*`),
		regexp.MustCompile(`(?i)Live Updates.*`),
	}
	ellipsisPattern = regexp.MustCompile(`\.\.\.`)
)

// DeriveCategory classifies the affected sector from title+content text.
func DeriveCategory(text string) string {
	switch {
	case categoryEducationalPattern.MatchString(text):
		return CategoryEducational
	case categoryPublicPattern.MatchString(text):
		return CategoryPublicOfficial
	case categoryTransportPattern.MatchString(text):
		return CategoryTransportation
	default:
		return CategoryGeneral
	}
}

// DeriveHolidayType classifies the kind of holiday from title+content text.
func DeriveHolidayType(text string) string {
	switch {
	case typeWeatherPattern.MatchString(text):
		return HolidayTypeWeather
	case typeCalendarPattern.MatchString(text):
		return HolidayTypeCalendar
	case typeClosurePattern.MatchString(text):
		return HolidayTypeClosure
	default:
		return HolidayTypeUpdate
	}
}

// DeriveSummary builds a display summary from content, stripping boilerplate
// tails and capping the length. Falls back to the title when content is empty.
func DeriveSummary(title, content string) string {
	if strings.TrimSpace(content) == "" {
		return truncateRunes(strings.TrimSpace(title), maxSummaryRunes)
	}
	s := content
	for _, p := range boilerplatePatterns {
		s = p.ReplaceAllString(s, "")
	}
	s = ellipsisPattern.ReplaceAllString(s, ".")
	s = strings.TrimSpace(s)
	return truncateRunes(s, maxSummaryRunes)
}
