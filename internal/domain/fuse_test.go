package domain

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fuseNow = time.Date(2024, 11, 18, 9, 30, 0, 0, time.UTC)

func freezeClock(t *testing.T) {
	t.Helper()
	SetClock(clockwork.NewFakeClockAt(fuseNow))
	t.Cleanup(func() { SetClock(nil) })
}

func strongEvidence(place Place, published time.Time) Evidence {
	return Evidence{
		Source:      "test-news",
		URL:         "https://example.com/" + place.Name,
		Headline:    place.Name + " schools closed amid heavy rain",
		Snippet:     "All schools in " + place.Name + " will remain closed",
		PublishedAt: published,
		Place:       place,
		Scope:       true,
		Action:      true,
		Reason:      true,
		Strength:    StrengthStrong,
	}
}

func TestFuse(t *testing.T) {
	gaz := DefaultGazetteer()
	chennai, _ := gaz.Lookup("Chennai")
	kochi, _ := gaz.Lookup("Kochi")

	t.Run("weather alone below extreme is not actionable", func(t *testing.T) {
		freezeClock(t)
		fuser := NewFuser(gaz)

		updates := fuser.Fuse([]WeatherReading{
			{City: "Chennai", RainMM: 30, Condition: "Rain"},
		}, nil)
		assert.Empty(t, updates)
	})

	t.Run("thresholds are strict", func(t *testing.T) {
		freezeClock(t)
		fuser := NewFuser(gaz)

		// Exactly 20 mm earns no bonus and exactly 50 mm is not extreme.
		updates := fuser.Fuse([]WeatherReading{
			{City: "Chennai", RainMM: 20, Condition: "Rain"},
			{City: "Kochi", RainMM: 50, Condition: "Rain"},
		}, nil)
		assert.Empty(t, updates)

		// Just past both thresholds.
		updates = fuser.Fuse([]WeatherReading{
			{City: "Chennai", RainMM: 50.1, Condition: "Rain"},
		}, nil)
		require.Len(t, updates, 1)
		assert.Equal(t, 20, updates[0].Confidence)
	})

	t.Run("extreme rain actionable without news", func(t *testing.T) {
		freezeClock(t)
		fuser := NewFuser(gaz)

		updates := fuser.Fuse([]WeatherReading{
			{City: "Chennai", RainMM: 60, Condition: "Rain"},
		}, nil)
		require.Len(t, updates, 1)

		u := updates[0]
		assert.Equal(t, "chennai_2024-11-18", u.UpdateID)
		assert.Equal(t, "Weather Update: Chennai", u.Title)
		assert.Equal(t, "Chennai", u.Region)
		assert.Equal(t, "Tamil Nadu", u.State)
		assert.Equal(t, 20, u.Confidence)
		assert.Empty(t, u.Reason)
		assert.Zero(t, u.SourceCount)
		assert.True(t, u.IsActive)
		assert.Equal(t, fuseNow, u.ProcessedAt)
		assert.Equal(t, "2024-11-18 09:30:00", u.NewsDate)
	})

	t.Run("news evidence sets flat confidence", func(t *testing.T) {
		freezeClock(t)
		fuser := NewFuser(gaz)

		published := fuseNow.Add(-2 * time.Hour)
		updates := fuser.Fuse(nil, []Evidence{strongEvidence(chennai, published)})
		require.Len(t, updates, 1)

		u := updates[0]
		assert.Equal(t, NewsConfidence, u.Confidence)
		assert.Equal(t, NewsReason, u.Reason)
		assert.Equal(t, "Chennai schools closed amid heavy rain", u.Title)
		assert.Equal(t, "All schools in Chennai will remain closed", u.Content)
		assert.Equal(t, 1, u.SourceCount)
		assert.Equal(t, "2024-11-18 07:30:00", u.NewsDate)
	})

	t.Run("news overrides weather bonus instead of stacking", func(t *testing.T) {
		freezeClock(t)
		fuser := NewFuser(gaz)

		updates := fuser.Fuse(
			[]WeatherReading{{City: "Chennai", RainMM: 45, Condition: "Rain"}},
			[]Evidence{strongEvidence(chennai, fuseNow)},
		)
		require.Len(t, updates, 1)
		assert.Equal(t, NewsConfidence, updates[0].Confidence)
		assert.LessOrEqual(t, updates[0].Confidence, 100)
	})

	t.Run("sources deduplicated by name", func(t *testing.T) {
		freezeClock(t)
		fuser := NewFuser(gaz)

		ev1 := strongEvidence(chennai, fuseNow.Add(-3*time.Hour))
		ev2 := strongEvidence(chennai, fuseNow.Add(-1*time.Hour))
		ev2.URL = "https://example.com/other"
		ev3 := strongEvidence(chennai, fuseNow.Add(-2*time.Hour))
		ev3.Source = "another-outlet"

		updates := fuser.Fuse(nil, []Evidence{ev1, ev2, ev3})
		require.Len(t, updates, 1)
		assert.Equal(t, 2, updates[0].SourceCount)
		assert.Len(t, updates[0].Sources, 2)
	})

	t.Run("latest published evidence wins title and content", func(t *testing.T) {
		freezeClock(t)
		fuser := NewFuser(gaz)

		older := strongEvidence(chennai, fuseNow.Add(-5*time.Hour))
		older.Headline = "Old headline"
		older.Snippet = "Old snippet"
		newer := strongEvidence(chennai, fuseNow.Add(-1*time.Hour))
		newer.Headline = "New headline"
		newer.Snippet = "New snippet"

		// Order of arrival must not matter.
		for _, evidence := range [][]Evidence{{older, newer}, {newer, older}} {
			updates := fuser.Fuse(nil, evidence)
			require.Len(t, updates, 1)
			assert.Equal(t, "New headline", updates[0].Title)
			assert.Equal(t, "New snippet", updates[0].Content)
			assert.Equal(t, "2024-11-18 08:30:00", updates[0].NewsDate)
		}
	})

	t.Run("evidence without timestamp still sets content", func(t *testing.T) {
		freezeClock(t)
		fuser := NewFuser(gaz)

		ev := strongEvidence(chennai, time.Time{})
		updates := fuser.Fuse(nil, []Evidence{ev})
		require.Len(t, updates, 1)
		assert.Equal(t, ev.Headline, updates[0].Title)
		// No evidence timestamp: news date falls back to processing time.
		assert.Equal(t, "2024-11-18 09:30:00", updates[0].NewsDate)
	})

	t.Run("place keys are case insensitive", func(t *testing.T) {
		freezeClock(t)
		fuser := NewFuser(gaz)

		ev := strongEvidence(chennai, fuseNow)
		updates := fuser.Fuse(
			[]WeatherReading{{City: "CHENNAI", RainMM: 60, Condition: "Rain"}},
			[]Evidence{ev},
		)
		require.Len(t, updates, 1)
	})

	t.Run("one update per place", func(t *testing.T) {
		freezeClock(t)
		fuser := NewFuser(gaz)

		updates := fuser.Fuse(
			[]WeatherReading{
				{City: "Chennai", RainMM: 60, Condition: "Rain"},
				{City: "Kochi", RainMM: 55, Condition: "Rain"},
			},
			[]Evidence{strongEvidence(chennai, fuseNow)},
		)
		require.Len(t, updates, 2)
		assert.Equal(t, "chennai_2024-11-18", updates[0].UpdateID)
		assert.Equal(t, "kochi_2024-11-18", updates[1].UpdateID)
	})

	t.Run("state derived from evidence place", func(t *testing.T) {
		freezeClock(t)
		fuser := NewFuser(gaz)

		updates := fuser.Fuse(nil, []Evidence{strongEvidence(kochi, fuseNow)})
		require.Len(t, updates, 1)
		assert.Equal(t, "Kerala", updates[0].State)
	})

	t.Run("state level evidence uses own name as state", func(t *testing.T) {
		freezeClock(t)
		fuser := NewFuser(gaz)

		tn, ok := gaz.Lookup("Tamil Nadu")
		require.True(t, ok)
		updates := fuser.Fuse(nil, []Evidence{strongEvidence(tn, fuseNow)})
		require.Len(t, updates, 1)
		assert.Equal(t, "Tamil Nadu", updates[0].Region)
		assert.Equal(t, "Tamil Nadu", updates[0].State)
	})

	t.Run("deterministic given same inputs", func(t *testing.T) {
		freezeClock(t)
		fuser := NewFuser(gaz)

		readings := []WeatherReading{{City: "Chennai", RainMM: 60, Condition: "Rain"}}
		evidence := []Evidence{strongEvidence(kochi, fuseNow.Add(-time.Hour))}

		first := fuser.Fuse(readings, evidence)
		second := fuser.Fuse(readings, evidence)
		assert.Equal(t, first, second)
	})

	t.Run("classification from fused text", func(t *testing.T) {
		freezeClock(t)
		fuser := NewFuser(gaz)

		updates := fuser.Fuse(nil, []Evidence{strongEvidence(chennai, fuseNow)})
		require.Len(t, updates, 1)
		assert.Equal(t, CategoryEducational, updates[0].Category)
		assert.Equal(t, HolidayTypeWeather, updates[0].HolidayType)
	})
}
