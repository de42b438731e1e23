package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rainyindia/holiday-signal/internal/domain"
	"github.com/rainyindia/holiday-signal/internal/observability"
)

// WeatherSource fetches current conditions for one city.
type WeatherSource interface {
	CurrentWeather(ctx context.Context, city string) (domain.RawWeatherSample, error)
}

// ArticleSource fetches a batch of articles from one origin (news API query,
// RSS feed, ticker backlog).
type ArticleSource interface {
	Name() string
	FetchArticles(ctx context.Context) ([]domain.Article, error)
}

// Store is the persistence collaborator: keyed lookup plus insert and merge.
type Store interface {
	FindByID(ctx context.Context, updateID string) (rowID int64, found bool, err error)
	Insert(ctx context.Context, u domain.Update) error
	Update(ctx context.Context, rowID int64, u domain.Update) error
}

// Publisher pushes actionable updates to downstream consumers.
type Publisher interface {
	PublishBatch(ctx context.Context, updates []domain.Update) error
}

// Options wires a Runner. Weather and Publisher may be nil to disable those
// stages; everything else is required.
type Options struct {
	Weather   WeatherSource
	Cities    []string
	Sources   []ArticleSource
	Extractor *domain.Extractor
	Fuser     *domain.Fuser
	Store     Store
	Publisher Publisher
	Logger    *slog.Logger
	Metrics   *observability.Metrics
	Interval  time.Duration
}

// Runner orchestrates one fetch-extract-fuse-save cycle and the interval
// loop around it. Fetches run concurrently and are awaited jointly; fusion
// and saving are sequential over already-fetched data.
type Runner struct {
	weather   WeatherSource
	cities    []string
	sources   []ArticleSource
	extractor *domain.Extractor
	fuser     *domain.Fuser
	store     Store
	publisher Publisher
	logger    *slog.Logger
	metrics   *observability.Metrics
	interval  time.Duration
	ready     atomic.Bool
}

// New creates a Runner from Options.
func New(opts Options) *Runner {
	return &Runner{
		weather:   opts.Weather,
		cities:    opts.Cities,
		sources:   opts.Sources,
		extractor: opts.Extractor,
		fuser:     opts.Fuser,
		store:     opts.Store,
		publisher: opts.Publisher,
		logger:    opts.Logger,
		metrics:   opts.Metrics,
		interval:  opts.Interval,
	}
}

// CheckReadiness returns nil once the runner has completed at least one
// cycle, or an error describing why the service is not yet ready.
func (r *Runner) CheckReadiness(_ context.Context) error {
	if !r.ready.Load() {
		return errors.New("pipeline has not completed a cycle yet")
	}
	return nil
}

// Run executes cycles on the configured interval until the context is
// cancelled. Failed cycles retry with exponential backoff instead of
// waiting out the full interval.
func (r *Runner) Run(ctx context.Context) error {
	r.logger.Info("pipeline started", "interval", r.interval, "sources", len(r.sources), "cities", len(r.cities))
	r.metrics.PipelineRunning.Set(1)
	defer r.metrics.PipelineRunning.Set(0)

	backoff := initialBackoff
	for {
		saved, err := r.RunOnce(ctx)
		switch {
		case ctx.Err() != nil:
			r.logger.Info("pipeline stopping", "reason", ctx.Err())
			return nil
		case err != nil:
			r.logger.Error("cycle failed", "error", err)
			if !sleepWithContext(ctx, backoff) {
				return nil
			}
			backoff = nextBackoff(backoff)
			continue
		}

		backoff = initialBackoff
		r.logger.Info("cycle complete", "updates_saved", saved)
		if !sleepWithContext(ctx, r.interval) {
			r.logger.Info("pipeline stopping", "reason", ctx.Err())
			return nil
		}
	}
}

// RunOnce performs a single cycle and returns the number of updates saved.
// Individual fetch failures degrade coverage; the cycle errors only when
// every configured source failed.
func (r *Runner) RunOnce(ctx context.Context) (int, error) {
	start := time.Now()

	samples, weatherErrs := r.fetchWeather(ctx, r.cities)
	articles, articleErrs := r.fetchArticles(ctx)

	if ctx.Err() != nil {
		return 0, ctx.Err()
	}
	if weatherErrs+articleErrs > 0 && len(samples) == 0 && len(articles) == 0 {
		return 0, errors.New("all sources failed")
	}

	evidence := make([]domain.Evidence, 0, len(articles))
	for _, a := range articles {
		evidence = append(evidence, r.extractor.Extract(ctx, a)...)
	}
	r.metrics.EvidenceExtracted.Add(float64(len(evidence)))

	// News can surface places outside the watchlist; give those a weather
	// check too so their updates carry readings.
	extra := r.evidenceOnlyCities(samples, evidence)
	extraSamples, _ := r.fetchWeather(ctx, extra)
	samples = append(samples, extraSamples...)

	readings := domain.NormalizeWeather(samples)
	r.metrics.WeatherReadings.Add(float64(len(readings)))

	updates := r.fuser.Fuse(readings, evidence)
	r.metrics.UpdatesFused.Add(float64(len(updates)))

	saved := r.saveAll(ctx, updates)
	r.publish(ctx, updates)

	r.metrics.CyclesTotal.Inc()
	r.metrics.CycleDuration.Observe(time.Since(start).Seconds())
	r.ready.Store(true)
	return saved, nil
}

// fetchWeather fetches all cities concurrently and returns the successful
// samples plus the failure count. A nil weather source fetches nothing.
func (r *Runner) fetchWeather(ctx context.Context, cities []string) ([]domain.RawWeatherSample, int) {
	if r.weather == nil || len(cities) == 0 {
		return nil, 0
	}

	var (
		mu      sync.Mutex
		wg      sync.WaitGroup
		samples []domain.RawWeatherSample
		failed  int
	)
	for _, city := range cities {
		city := city
		wg.Add(1)
		go func() {
			defer wg.Done()
			sample, err := r.weather.CurrentWeather(ctx, city)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failed++
				r.metrics.FetchRequests.WithLabelValues("weather", "error").Inc()
				r.logger.Warn("weather fetch failed", "city", city, "error", err)
				return
			}
			r.metrics.FetchRequests.WithLabelValues("weather", "success").Inc()
			samples = append(samples, sample)
		}()
	}
	wg.Wait()
	return samples, failed
}

// fetchArticles polls all text sources concurrently. Per-source failures are
// logged and counted; a rate-limited source is reported at warning level so
// operators notice quota exhaustion.
func (r *Runner) fetchArticles(ctx context.Context) ([]domain.Article, int) {
	var (
		mu       sync.Mutex
		wg       sync.WaitGroup
		articles []domain.Article
		failed   int
	)
	for _, src := range r.sources {
		src := src
		wg.Add(1)
		go func() {
			defer wg.Done()
			batch, err := src.FetchArticles(ctx)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failed++
				r.metrics.FetchRequests.WithLabelValues(src.Name(), "error").Inc()
				if errors.Is(err, domain.ErrRateLimited) {
					r.logger.Warn("text source rate limited", "source", src.Name())
				} else {
					r.logger.Warn("article fetch failed", "source", src.Name(), "error", err)
				}
				return
			}
			r.metrics.FetchRequests.WithLabelValues(src.Name(), "success").Inc()
			articles = append(articles, batch...)
		}()
	}
	wg.Wait()
	r.metrics.ArticlesFetched.Add(float64(len(articles)))
	return articles, failed
}

// evidenceOnlyCities returns evidence place names that no weather sample
// covers yet, skipping state-level places (no point asking a weather API
// for "Tamil Nadu").
func (r *Runner) evidenceOnlyCities(samples []domain.RawWeatherSample, evidence []domain.Evidence) []string {
	covered := make(map[string]bool, len(samples))
	for _, s := range samples {
		covered[strings.ToLower(s.City)] = true
	}
	for _, c := range r.cities {
		covered[strings.ToLower(c)] = true
	}

	var extra []string
	for _, ev := range evidence {
		if ev.Place.Kind == domain.KindState {
			continue
		}
		key := strings.ToLower(ev.Place.Name)
		if covered[key] {
			continue
		}
		covered[key] = true
		extra = append(extra, ev.Place.Name)
	}
	return extra
}

func (r *Runner) publish(ctx context.Context, updates []domain.Update) {
	if r.publisher == nil || len(updates) == 0 {
		return
	}
	if err := r.publisher.PublishBatch(ctx, updates); err != nil {
		r.logger.Error("publish failed", "count", len(updates), "error", err)
	}
}

const (
	initialBackoff = 200 * time.Millisecond
	maxBackoff     = 30 * time.Second
)

func nextBackoff(current time.Duration) time.Duration {
	next := current * 2
	if next > maxBackoff {
		return maxBackoff
	}
	return next
}

func sleepWithContext(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
