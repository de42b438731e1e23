package domain

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRules(t *testing.T) *RuleSet {
	t.Helper()
	rs, err := NewRuleSet("test",
		[]string{"school", "schools"},
		[]string{"closed", "holiday"},
		[]string{"collector"},
		[]string{"rain"},
		[]string{"reopen"},
	)
	require.NoError(t, err)
	return rs
}

// fakeFetcher records calls and returns a canned page or error.
type fakeFetcher struct {
	page  string
	err   error
	calls int
}

func (f *fakeFetcher) FetchPage(_ context.Context, _ string) (string, error) {
	f.calls++
	return f.page, f.err
}

func TestExtract(t *testing.T) {
	gaz := DefaultGazetteer()
	rules := testRules(t)
	ctx := context.Background()

	t.Run("strong evidence from headline", func(t *testing.T) {
		ex := NewExtractor(gaz, rules, nil, nil)
		a := Article{
			Source:      "test-news",
			URL:         "https://example.com/a",
			Title:       "Chennai schools closed after heavy rain lashes the city",
			PublishedAt: time.Date(2024, 11, 18, 7, 0, 0, 0, time.UTC),
		}

		evidence := ex.Extract(ctx, a)
		require.Len(t, evidence, 1)
		ev := evidence[0]
		assert.Equal(t, "Chennai", ev.Place.Name)
		assert.Equal(t, StrengthStrong, ev.Strength)
		assert.True(t, ev.Scope)
		assert.True(t, ev.Action)
		assert.True(t, ev.Reason)
		assert.False(t, ev.Authority)
		assert.Equal(t, a.Title, ev.Headline)
		assert.Equal(t, a.PublishedAt, ev.PublishedAt)
	})

	t.Run("authority validates without reason", func(t *testing.T) {
		ex := NewExtractor(gaz, rules, nil, nil)
		a := Article{
			URL:   "https://example.com/b",
			Title: "Collector declares schools closed across Cuddalore on Monday",
		}

		evidence := ex.Extract(ctx, a)
		require.Len(t, evidence, 1)
		assert.True(t, evidence[0].Authority)
		assert.Equal(t, StrengthStrong, evidence[0].Strength)
	})

	t.Run("score below threshold yields nothing", func(t *testing.T) {
		ex := NewExtractor(gaz, rules, nil, nil)
		a := Article{
			URL:   "https://example.com/c",
			Title: "Chennai schools celebrate annual sports day today",
		}
		assert.Empty(t, ex.Extract(ctx, a))
	})

	t.Run("scope and action without validator yields nothing", func(t *testing.T) {
		ex := NewExtractor(gaz, rules, nil, nil)
		a := Article{
			URL:   "https://example.com/d",
			Title: "Chennai schools closed for the winter break period",
		}
		assert.Empty(t, ex.Extract(ctx, a))
	})

	t.Run("contextual follows a strong segment", func(t *testing.T) {
		ex := NewExtractor(gaz, rules, nil, nil)
		a := Article{
			URL:   "https://example.com/e",
			Title: "Chennai schools closed as rain pounds the coast",
			Body:  "The holiday order extends to Cuddalore as well, officials said.",
		}

		evidence := ex.Extract(ctx, a)
		require.Len(t, evidence, 2)
		assert.Equal(t, "Chennai", evidence[0].Place.Name)
		assert.Equal(t, StrengthStrong, evidence[0].Strength)
		assert.Equal(t, "Cuddalore", evidence[1].Place.Name)
		assert.Equal(t, StrengthContextual, evidence[1].Strength)
	})

	t.Run("contextual needs its own place", func(t *testing.T) {
		ex := NewExtractor(gaz, rules, nil, nil)
		a := Article{
			URL:   "https://example.com/f",
			Title: "Chennai schools closed as rain pounds the coast",
			Body:  "The holiday order covers all institutions in the region.",
		}

		evidence := ex.Extract(ctx, a)
		require.Len(t, evidence, 1)
		assert.Equal(t, "Chennai", evidence[0].Place.Name)
	})

	t.Run("placeless segment breaks the chain", func(t *testing.T) {
		ex := NewExtractor(gaz, rules, nil, nil)
		a := Article{
			URL:   "https://example.com/g",
			Title: "Chennai schools closed as rain pounds the coast",
			Body: "The holiday order covers all institutions in the region. " +
				"Nagapattinam collector may follow, sources indicated late at night.",
		}

		// Second body sentence scores on authority alone (score 1) but the
		// placeless sentence before it already reset adjacency.
		evidence := ex.Extract(ctx, a)
		require.Len(t, evidence, 1)
		assert.Equal(t, "Chennai", evidence[0].Place.Name)
	})

	t.Run("ignored segment rejected and breaks the chain", func(t *testing.T) {
		ex := NewExtractor(gaz, rules, nil, nil)
		a := Article{
			URL:   "https://example.com/h",
			Title: "Chennai schools closed as rain pounds the coast",
			Body: "Some schools in Madurai will reopen after rain eased, closed earlier. " +
				"A holiday mood prevailed in Cuddalore through the evening hours.",
		}

		evidence := ex.Extract(ctx, a)
		require.Len(t, evidence, 1)
		assert.Equal(t, "Chennai", evidence[0].Place.Name)
	})

	t.Run("one evidence per place per article", func(t *testing.T) {
		ex := NewExtractor(gaz, rules, nil, nil)
		a := Article{
			URL:   "https://example.com/i",
			Title: "Chennai schools closed after overnight rain flooded roads",
			Body:  "Chennai schools stay closed tomorrow too given continuing rain forecasts.",
		}

		evidence := ex.Extract(ctx, a)
		require.Len(t, evidence, 1)
	})

	t.Run("short segments skipped", func(t *testing.T) {
		ex := NewExtractor(gaz, rules, nil, nil)
		a := Article{
			URL:   "https://example.com/j",
			Title: "Chennai closed. Rain.",
		}
		assert.Empty(t, ex.Extract(ctx, a))
	})

	t.Run("snippet truncated", func(t *testing.T) {
		ex := NewExtractor(gaz, rules, nil, nil)
		long := "Chennai schools closed after rain " + strings.Repeat("waterlogged roads everywhere ", 20)
		a := Article{URL: "https://example.com/k", Title: long}

		evidence := ex.Extract(ctx, a)
		require.Len(t, evidence, 1)
		assert.LessOrEqual(t, len([]rune(evidence[0].Snippet)), 250)
	})
}

func TestExtractDeepFetch(t *testing.T) {
	gaz := DefaultGazetteer()
	rules := testRules(t)
	ctx := context.Background()

	t.Run("fetch recovers place from page text", func(t *testing.T) {
		fetcher := &fakeFetcher{
			page: "Schools across Kochi will stay closed on Tuesday after rain warnings.",
		}
		ex := NewExtractor(gaz, rules, fetcher, nil)
		a := Article{
			URL:   "https://example.com/deep",
			Title: "Schools closed tomorrow amid rain alert, says district administration",
		}

		evidence := ex.Extract(ctx, a)
		require.Len(t, evidence, 1)
		assert.Equal(t, "Kochi", evidence[0].Place.Name)
		assert.Equal(t, 1, fetcher.calls)
	})

	t.Run("no fetch when evidence already found", func(t *testing.T) {
		fetcher := &fakeFetcher{page: "irrelevant"}
		ex := NewExtractor(gaz, rules, fetcher, nil)
		a := Article{
			URL:   "https://example.com/deep2",
			Title: "Chennai schools closed after heavy rain warning issued",
		}

		evidence := ex.Extract(ctx, a)
		require.Len(t, evidence, 1)
		assert.Zero(t, fetcher.calls)
	})

	t.Run("no fetch without action in headline", func(t *testing.T) {
		fetcher := &fakeFetcher{page: "irrelevant"}
		ex := NewExtractor(gaz, rules, fetcher, nil)
		a := Article{
			URL:   "https://example.com/deep3",
			Title: "Monsoon rain likely to intensify over the coming days",
		}

		assert.Empty(t, ex.Extract(ctx, a))
		assert.Zero(t, fetcher.calls)
	})

	t.Run("no fetch when a place is already present", func(t *testing.T) {
		fetcher := &fakeFetcher{page: "irrelevant"}
		ex := NewExtractor(gaz, rules, fetcher, nil)
		a := Article{
			URL:   "https://example.com/deep4",
			Title: "Holiday rumours swirl as rain continues over Chennai region",
		}

		ex.Extract(ctx, a)
		assert.Zero(t, fetcher.calls)
	})

	t.Run("fetch failure degrades silently", func(t *testing.T) {
		fetcher := &fakeFetcher{err: errors.New("timeout")}
		ex := NewExtractor(gaz, rules, fetcher, nil)
		a := Article{
			URL:   "https://example.com/deep5",
			Title: "Schools closed tomorrow amid rain alert, says district administration",
		}

		assert.Empty(t, ex.Extract(ctx, a))
		assert.Equal(t, 1, fetcher.calls)
	})

	t.Run("no fetch without URL", func(t *testing.T) {
		fetcher := &fakeFetcher{page: "irrelevant"}
		ex := NewExtractor(gaz, rules, fetcher, nil)
		a := Article{
			Title: "Schools closed tomorrow amid rain alert, says district administration",
		}

		assert.Empty(t, ex.Extract(ctx, a))
		assert.Zero(t, fetcher.calls)
	})
}

func TestSplitSegments(t *testing.T) {
	t.Run("sentence terminators and newlines", func(t *testing.T) {
		segs := splitSegments("First sentence is here. Second sentence follows!\nThird line stands alone?")
		assert.Equal(t, []string{
			"First sentence is here",
			"Second sentence follows",
			"Third line stands alone",
		}, segs)
	})

	t.Run("short fragments dropped", func(t *testing.T) {
		segs := splitSegments("Too short. This one is long enough to keep around.")
		assert.Equal(t, []string{"This one is long enough to keep around"}, segs)
	})

	t.Run("empty input", func(t *testing.T) {
		assert.Empty(t, splitSegments(""))
	})
}
