// Command genmock generates deterministic fixture data for test suites
// and local development. It runs canned articles and weather samples
// through the actual extraction and fusion stages so fixtures always
// match real pipeline behavior.
//
// Usage:
//
//	go run ./cmd/genmock \
//	  -articles-out data/mock/articles.json \
//	  -updates-out data/mock/updates.json
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/rainyindia/holiday-signal/internal/domain"
)

var baseDate = time.Date(2024, time.November, 18, 0, 0, 0, 0, time.UTC)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	articlesOut := flag.String("articles-out", "", "output path for the raw articles fixture")
	updatesOut := flag.String("updates-out", "", "output path for the fused updates fixture")
	flag.Parse()

	if *articlesOut == "" || *updatesOut == "" {
		flag.Usage()
		return fmt.Errorf("missing required flags: -articles-out, -updates-out")
	}

	// Fix the clock for reproducible update IDs and timestamps.
	domain.SetClock(clockwork.NewFakeClockAt(
		time.Date(2024, time.November, 18, 9, 30, 0, 0, time.UTC),
	))
	defer domain.SetClock(nil)

	articles := mockArticles()
	samples := mockWeather()

	gaz := domain.DefaultGazetteer()
	extractor := domain.NewExtractor(gaz, domain.StrictRules(), nil, nil)
	fuser := domain.NewFuser(gaz)

	var evidence []domain.Evidence
	for _, a := range articles {
		evidence = append(evidence, extractor.Extract(context.Background(), a)...)
	}
	updates := fuser.Fuse(domain.NormalizeWeather(samples), evidence)

	log.Printf("articles: %d, evidence: %d, updates: %d", len(articles), len(evidence), len(updates))

	if err := writeJSON(*articlesOut, articles); err != nil {
		return err
	}
	if err := writeJSON(*updatesOut, updates); err != nil {
		return err
	}
	return nil
}

// mockArticles covers the extraction paths worth exercising: a strong
// headline-level confirmation, a contextual follow-on sentence, an
// ignored routine-reopening story, and one with no location at all.
func mockArticles() []domain.Article {
	return []domain.Article{
		{
			Source:      "mock-news",
			URL:         "https://news.example/chennai-holiday",
			Title:       "Chennai schools declared holiday tomorrow amid heavy rain alert",
			Body:        "The district collector announced the closure on Monday evening. All schools and colleges in Chennai will remain shut due to the red alert issued by the weather department.",
			PublishedAt: baseDate.Add(7 * time.Hour),
		},
		{
			Source:      "mock-news",
			URL:         "https://news.example/kerala-rain",
			Title:       "Heavy rain batters Kerala coast",
			Body:        "Schools in Kochi will stay closed tomorrow, the collector said. Fishermen were warned against venturing into the sea.",
			PublishedAt: baseDate.Add(5 * time.Hour),
		},
		{
			Source:      "mock-news",
			URL:         "https://news.example/schools-reopen",
			Title:       "Schools reopen in Chennai after rain eases",
			Body:        "Classes resumed normally across the city on Tuesday.",
			PublishedAt: baseDate.Add(8 * time.Hour),
		},
		{
			Source:      "mock-news",
			URL:         "https://news.example/no-location",
			Title:       "Monsoon likely to intensify this week",
			Body:        "Forecasters expect widespread showers over the southern peninsula.",
			PublishedAt: baseDate.Add(6 * time.Hour),
		},
	}
}

func mockWeather() []domain.RawWeatherSample {
	return []domain.RawWeatherSample{
		{City: "Chennai", RainMM: 42.5, Condition: "Rain"},
		{City: "Kochi", RainMM: 12.0, Condition: "Rain"},
		{City: "Mumbai", RainMM: 0, Condition: "Clouds"},
	}
}

func writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating output dir: %w", err)
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling %s: %w", path, err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	log.Printf("wrote %s", path)
	return nil
}
