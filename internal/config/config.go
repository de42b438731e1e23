package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Pipeline scheduling and rule selection.
	ScrapeInterval time.Duration
	WatchCities    []string
	RuleSet        string
	GazetteerFile  string
	RulesFile      string

	// OpenWeather current-conditions API. Disabled when the key is empty.
	WeatherAPIKey  string
	WeatherTimeout time.Duration

	// NewsAPI article search. Disabled when the key is empty.
	NewsAPIKey     string
	NewsAPITimeout time.Duration
	NewsAPIMaxRPS  float64

	// RSS feed polling.
	RSSFeeds   []string
	RSSTimeout time.Duration

	// Readability deep-fetch enrichment.
	DeepFetchEnabled bool
	DeepFetchTimeout time.Duration

	// Postgres persistence.
	DatabaseURL string

	// Retention cleanup for stale update rows.
	RetentionMaxAge   time.Duration
	RetentionInterval time.Duration

	// Optional Kafka publishing of actionable updates.
	KafkaEnabled   bool
	KafkaBrokers   []string
	KafkaSinkTopic string
}

// defaultWatchCities are checked every cycle regardless of news coverage.
const defaultWatchCities = "Chennai,Mumbai,Bengaluru,Kochi,Hyderabad,Visakhapatnam,Puducherry,Cuddalore,Nagapattinam,Thiruvananthapuram"

// Load reads configuration from environment variables, applying defaults
// where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := envDuration("SHUTDOWN_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, err
	}
	scrapeInterval, err := envDuration("SCRAPE_INTERVAL", 15*time.Minute)
	if err != nil {
		return nil, err
	}
	weatherTimeout, err := envDuration("OPENWEATHER_TIMEOUT", 5*time.Second)
	if err != nil {
		return nil, err
	}
	newsTimeout, err := envDuration("NEWSAPI_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, err
	}
	rssTimeout, err := envDuration("RSS_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, err
	}
	deepFetchTimeout, err := envDuration("DEEP_FETCH_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, err
	}
	retentionMaxAge, err := envDuration("RETENTION_MAX_AGE", 7*24*time.Hour)
	if err != nil {
		return nil, err
	}
	retentionInterval, err := envDuration("RETENTION_INTERVAL", 6*time.Hour)
	if err != nil {
		return nil, err
	}
	newsMaxRPS, err := envFloat("NEWSAPI_MAX_RPS", 1)
	if err != nil {
		return nil, err
	}

	kafkaBrokers := splitCSV(os.Getenv("KAFKA_BROKERS"))
	kafkaEnabled := len(kafkaBrokers) > 0
	if v := os.Getenv("KAFKA_ENABLED"); v != "" {
		kafkaEnabled = v == "true"
	}

	cfg := &Config{
		HTTPAddr:        envOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        envOrDefault("LOG_LEVEL", "info"),
		LogFormat:       envOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		ScrapeInterval: scrapeInterval,
		WatchCities:    splitCSV(envOrDefault("WATCH_CITIES", defaultWatchCities)),
		RuleSet:        envOrDefault("RULESET", "strict"),
		GazetteerFile:  os.Getenv("GAZETTEER_FILE"),
		RulesFile:      os.Getenv("RULES_FILE"),

		WeatherAPIKey:  os.Getenv("OPENWEATHER_API_KEY"),
		WeatherTimeout: weatherTimeout,

		NewsAPIKey:     os.Getenv("NEWSAPI_KEY"),
		NewsAPITimeout: newsTimeout,
		NewsAPIMaxRPS:  newsMaxRPS,

		RSSFeeds:   splitCSV(os.Getenv("RSS_FEEDS")),
		RSSTimeout: rssTimeout,

		DeepFetchEnabled: os.Getenv("DEEP_FETCH_ENABLED") == "true",
		DeepFetchTimeout: deepFetchTimeout,

		DatabaseURL: os.Getenv("DATABASE_URL"),

		RetentionMaxAge:   retentionMaxAge,
		RetentionInterval: retentionInterval,

		KafkaEnabled:   kafkaEnabled,
		KafkaBrokers:   kafkaBrokers,
		KafkaSinkTopic: envOrDefault("KAFKA_SINK_TOPIC", "holiday-updates"),
	}

	if cfg.DatabaseURL == "" {
		return nil, errors.New("DATABASE_URL is required")
	}
	if len(cfg.WatchCities) == 0 {
		return nil, errors.New("WATCH_CITIES must name at least one city")
	}
	if cfg.ScrapeInterval <= 0 {
		return nil, errors.New("SCRAPE_INTERVAL must be positive")
	}
	if cfg.KafkaEnabled && len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_ENABLED is true but KAFKA_BROKERS is not set")
	}
	if cfg.NewsAPIMaxRPS <= 0 {
		return nil, errors.New("NEWSAPI_MAX_RPS must be positive")
	}

	return cfg, nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) (time.Duration, error) {
	s := os.Getenv(key)
	if s == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func envFloat(key string, fallback float64) (float64, error) {
	s := os.Getenv(key)
	if s == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return f, nil
}

func splitCSV(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
