package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rainyindia/holiday-signal/internal/adapter/fetch"
	httpadapter "github.com/rainyindia/holiday-signal/internal/adapter/http"
	kafkaadapter "github.com/rainyindia/holiday-signal/internal/adapter/kafka"
	"github.com/rainyindia/holiday-signal/internal/adapter/newsapi"
	"github.com/rainyindia/holiday-signal/internal/adapter/openweather"
	"github.com/rainyindia/holiday-signal/internal/adapter/postgres"
	"github.com/rainyindia/holiday-signal/internal/adapter/rss"
	"github.com/rainyindia/holiday-signal/internal/config"
	"github.com/rainyindia/holiday-signal/internal/domain"
	"github.com/rainyindia/holiday-signal/internal/observability"
	"github.com/rainyindia/holiday-signal/internal/pipeline"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	gaz, rules, err := loadDomainData(cfg)
	if err != nil {
		logger.Error("failed to load domain data", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := postgres.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer store.Close()
	if err := store.EnsureSchema(ctx); err != nil {
		logger.Error("failed to ensure schema", "error", err)
		os.Exit(1)
	}

	// Weather is feature-flagged via OPENWEATHER_API_KEY.
	var weather pipeline.WeatherSource
	if cfg.WeatherAPIKey != "" {
		weather = openweather.NewClient(cfg.WeatherAPIKey, cfg.WeatherTimeout, logger)
		logger.Info("openweather enabled", "cities", len(cfg.WatchCities))
	} else {
		logger.Info("openweather disabled")
	}

	var sources []pipeline.ArticleSource
	if cfg.NewsAPIKey != "" {
		sources = append(sources, newsapi.NewClient(cfg.NewsAPIKey, cfg.NewsAPITimeout, cfg.NewsAPIMaxRPS, logger))
		logger.Info("newsapi enabled", "max_rps", cfg.NewsAPIMaxRPS)
	} else {
		logger.Info("newsapi disabled")
	}
	for _, feed := range rss.BuildFeeds(cfg.RSSFeeds, cfg.RSSTimeout, logger) {
		sources = append(sources, feed)
	}

	var fetcher domain.PageFetcher
	if cfg.DeepFetchEnabled {
		fetcher = fetch.NewClient(cfg.DeepFetchTimeout, logger)
		logger.Info("deep fetch enabled", "timeout", cfg.DeepFetchTimeout)
	}

	var publisher pipeline.Publisher
	var kafkaPublisher *kafkaadapter.Publisher
	if cfg.KafkaEnabled {
		kafkaPublisher = kafkaadapter.NewPublisher(cfg.KafkaBrokers, cfg.KafkaSinkTopic, logger)
		publisher = kafkaPublisher
		logger.Info("kafka publishing enabled", "topic", cfg.KafkaSinkTopic)
	}

	runner := pipeline.New(pipeline.Options{
		Weather:   weather,
		Cities:    cfg.WatchCities,
		Sources:   sources,
		Extractor: domain.NewExtractor(gaz, rules, fetcher, logger),
		Fuser:     domain.NewFuser(gaz),
		Store:     store,
		Publisher: publisher,
		Logger:    logger,
		Metrics:   metrics,
		Interval:  cfg.ScrapeInterval,
	})

	srv := httpadapter.NewServer(cfg.HTTPAddr, runner, store, logger)

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	go func() {
		if err := runner.Run(ctx); err != nil {
			logger.Error("pipeline error", "error", err)
		}
	}()

	go runRetention(ctx, store, cfg, logger)

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if kafkaPublisher != nil {
		if err := kafkaPublisher.Close(); err != nil {
			logger.Error("kafka publisher close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}

// loadDomainData resolves the gazetteer and ruleset, preferring files
// named in config over the embedded defaults.
func loadDomainData(cfg *config.Config) (*domain.Gazetteer, *domain.RuleSet, error) {
	gaz := domain.DefaultGazetteer()
	if cfg.GazetteerFile != "" {
		loaded, err := domain.LoadGazetteer(cfg.GazetteerFile)
		if err != nil {
			return nil, nil, err
		}
		gaz = loaded
	}

	if cfg.RulesFile != "" {
		sets, err := domain.LoadRuleSets(cfg.RulesFile)
		if err != nil {
			return nil, nil, err
		}
		rules, ok := sets[cfg.RuleSet]
		if !ok {
			return nil, nil, errors.New("RULESET " + cfg.RuleSet + " not found in " + cfg.RulesFile)
		}
		return gaz, rules, nil
	}

	rules, ok := domain.RuleSetNamed(cfg.RuleSet)
	if !ok {
		return nil, nil, errors.New("unknown RULESET " + cfg.RuleSet)
	}
	return gaz, rules, nil
}

// runRetention deletes stale update rows on a fixed interval until the
// context is cancelled.
func runRetention(ctx context.Context, store *postgres.Store, cfg *config.Config, logger *slog.Logger) {
	ticker := time.NewTicker(cfg.RetentionInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := store.DeleteOlderThan(ctx, cfg.RetentionMaxAge)
			if err != nil {
				logger.Error("retention sweep failed", "error", err)
				continue
			}
			if n > 0 {
				logger.Info("retention sweep removed stale updates", "deleted", n)
			}
		}
	}
}
