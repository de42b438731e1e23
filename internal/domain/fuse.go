package domain

import (
	"strings"
	"time"
)

const (
	// NewsConfidence is the flat confidence assigned when qualifying news
	// evidence exists for a place. Evidence overrides rather than adds, so
	// verified news stays the dominant signal.
	NewsConfidence = 95

	heavyRainBonus       = 20
	actionableConfidence = 50
	maxConfidence        = 100
)

// NewsReason is the reason string attached to evidence-backed updates.
const NewsReason = "News confirms School/Holiday impact"

const (
	updateIDDateLayout = "2006-01-02"
	newsDateLayout     = "2006-01-02 15:04:05"
)

// Fuser merges weather readings and news evidence into per-place updates.
// The gazetteer supplies parent states for weather-only places.
type Fuser struct {
	gaz *Gazetteer
}

// NewFuser creates a Fuser.
func NewFuser(gaz *Gazetteer) *Fuser {
	return &Fuser{gaz: gaz}
}

// accumulator is the running per-place record for one Fuse call. It mirrors
// the Update shape minus identity and day-stamp fields.
type accumulator struct {
	place       string
	state       string
	title       string
	content     string
	reason      string
	sources     []Source
	sourceNames map[string]bool
	confidence  int
	weather     *WeatherReading
	latestNews  time.Time
	hasNews     bool
}

// Fuse applies the confidence accumulation rules in fixed order, weather
// bonuses first and then evidence overrides, and returns one Update per
// actionable place. All state is local to the call; fusing the same inputs
// twice yields the same output.
func (f *Fuser) Fuse(readings []WeatherReading, evidence []Evidence) []Update {
	accs := make(map[string]*accumulator)
	var order []string

	touch := func(name, state string) *accumulator {
		key := strings.ToLower(name)
		if acc, ok := accs[key]; ok {
			return acc
		}
		acc := &accumulator{
			place:       name,
			state:       state,
			title:       "Weather Update: " + name,
			sourceNames: make(map[string]bool),
		}
		accs[key] = acc
		order = append(order, key)
		return acc
	}

	for _, r := range readings {
		reading := r
		acc := touch(reading.City, f.stateFor(reading.City))
		acc.weather = &reading
		if reading.RainMM > HeavyRainMM {
			acc.confidence += heavyRainBonus
		}
	}

	for _, ev := range evidence {
		acc := touch(ev.Place.Name, stateOfPlace(ev.Place))

		// One Source entry per source name per run.
		if ev.Source != "" && !acc.sourceNames[ev.Source] {
			acc.sourceNames[ev.Source] = true
			acc.sources = append(acc.sources, Source{
				Name:  ev.Source,
				URL:   ev.URL,
				Title: ev.Headline,
				Date:  ev.PublishedAt,
			})
		}

		acc.confidence = NewsConfidence
		acc.reason = NewsReason

		// Latest-published evidence wins title and content; missing or tied
		// timestamps keep the existing value.
		if !acc.hasNews || (!ev.PublishedAt.IsZero() && ev.PublishedAt.After(acc.latestNews)) {
			acc.title = ev.Headline
			acc.content = ev.Snippet
			if !ev.PublishedAt.IsZero() {
				acc.latestNews = ev.PublishedAt
			}
			acc.hasNews = true
		}
	}

	now := clock.Now()
	today := now.Format(updateIDDateLayout)

	var updates []Update
	for _, key := range order {
		acc := accs[key]

		actionable := acc.confidence > actionableConfidence ||
			(acc.weather != nil && acc.weather.RainMM > ExtremeRainMM)
		if !actionable {
			continue
		}

		confidence := acc.confidence
		if confidence > maxConfidence {
			confidence = maxConfidence
		}
		if confidence < 0 {
			confidence = 0
		}

		newsDate := now
		if !acc.latestNews.IsZero() {
			newsDate = acc.latestNews
		}

		text := acc.title + " " + acc.content
		updates = append(updates, Update{
			UpdateID:    strings.ToLower(acc.place) + "_" + today,
			Title:       acc.title,
			Content:     acc.content,
			Region:      acc.place,
			State:       acc.state,
			Reason:      acc.reason,
			Category:    DeriveCategory(text),
			HolidayType: DeriveHolidayType(text),
			Summary:     DeriveSummary(acc.title, acc.content),
			Sources:     acc.sources,
			SourceCount: len(acc.sources),
			Confidence:  confidence,
			NewsDate:    newsDate.Format(newsDateLayout),
			IsActive:    true,
			ProcessedAt: now,
		})
	}
	return updates
}

func (f *Fuser) stateFor(name string) string {
	if f.gaz == nil {
		return ""
	}
	p, ok := f.gaz.Lookup(name)
	if !ok {
		return ""
	}
	return stateOfPlace(p)
}

func stateOfPlace(p Place) string {
	if p.Kind == KindState {
		return p.Name
	}
	return p.State
}
