// Command backfill replays past days of news coverage through the
// extraction and fusion stages and upserts the resulting updates.
// Weather history is not available from the current-conditions API, so
// backfilled updates carry news evidence only.
//
// Usage:
//
//	go run ./cmd/backfill -days 5
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rainyindia/holiday-signal/internal/adapter/newsapi"
	"github.com/rainyindia/holiday-signal/internal/adapter/postgres"
	"github.com/rainyindia/holiday-signal/internal/config"
	"github.com/rainyindia/holiday-signal/internal/domain"
	"github.com/rainyindia/holiday-signal/internal/observability"
)

func main() {
	days := flag.Int("days", 5, "number of past days to backfill, most recent first")
	flag.Parse()

	if *days < 1 {
		fmt.Fprintln(os.Stderr, "-days must be at least 1")
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if cfg.NewsAPIKey == "" {
		slog.Error("NEWSAPI_KEY is required for backfill")
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if code := run(ctx, cfg, *days, logger); code != 0 {
		os.Exit(code)
	}
}

func run(ctx context.Context, cfg *config.Config, days int, logger *slog.Logger) int {
	store, err := postgres.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		return 1
	}
	defer store.Close()
	if err := store.EnsureSchema(ctx); err != nil {
		logger.Error("failed to ensure schema", "error", err)
		return 1
	}

	rules, ok := domain.RuleSetNamed(cfg.RuleSet)
	if !ok {
		logger.Error("unknown ruleset", "ruleset", cfg.RuleSet)
		return 1
	}
	gaz := domain.DefaultGazetteer()
	extractor := domain.NewExtractor(gaz, rules, nil, logger)
	fuser := domain.NewFuser(gaz)

	news := newsapi.NewClient(cfg.NewsAPIKey, cfg.NewsAPITimeout, cfg.NewsAPIMaxRPS, logger)

	totalSaved := 0
	today := time.Now().UTC().Truncate(24 * time.Hour)

	// Walk backwards one day at a time so hitting the API quota still
	// leaves the most recent days filled.
	for offset := 1; offset <= days; offset++ {
		from := today.AddDate(0, 0, -offset)
		to := from.AddDate(0, 0, 1)

		articles, err := news.FetchWindow(ctx, from, to)
		if err != nil {
			if errors.Is(err, domain.ErrRateLimited) {
				logger.Warn("news quota exhausted, stopping backfill",
					"completed_days", offset-1, "updates_saved", totalSaved)
				return 0
			}
			logger.Error("fetch window failed", "day", from.Format("2006-01-02"), "error", err)
			return 1
		}

		var evidence []domain.Evidence
		for _, a := range articles {
			evidence = append(evidence, extractor.Extract(ctx, a)...)
		}
		updates := fuser.Fuse(nil, evidence)

		saved := 0
		for _, u := range updates {
			// Re-key to the evidence day so backfilled rows land on the
			// date the news broke, not the day the backfill ran.
			u.UpdateID = rekeyForDay(u, from)
			if err := saveOne(ctx, store, u); err != nil {
				logger.Error("save failed", "update_id", u.UpdateID, "error", err)
				continue
			}
			saved++
		}
		totalSaved += saved
		logger.Info("day backfilled",
			"day", from.Format("2006-01-02"),
			"articles", len(articles),
			"evidence", len(evidence),
			"updates_saved", saved)
	}

	logger.Info("backfill complete", "days", days, "updates_saved", totalSaved)
	return 0
}

// rekeyForDay rewrites the date suffix of an update_id to the given day.
func rekeyForDay(u domain.Update, day time.Time) string {
	place := u.UpdateID
	if i := len(place) - len("_2006-01-02"); i > 0 {
		place = place[:i]
	}
	return place + "_" + day.Format("2006-01-02")
}

func saveOne(ctx context.Context, store *postgres.Store, u domain.Update) error {
	if u.Content == "" {
		u.Content = "Weather condition monitored."
	}
	rowID, found, err := store.FindByID(ctx, u.UpdateID)
	if err != nil {
		return err
	}
	if found {
		return store.Update(ctx, rowID, u)
	}
	return store.Insert(ctx, u)
}
