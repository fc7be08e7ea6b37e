package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/couchcryptid/snj-koetutka/internal/domain"
	"github.com/couchcryptid/snj-koetutka/internal/observability"
	"github.com/jonboulle/clockwork"
)

// progressInterval is how many events are processed between progress logs.
const progressInterval = 10

// EventSource returns the full raw event listing.
type EventSource interface {
	FetchEvents(ctx context.Context) ([]domain.RawEvent, error)
}

// CacheStore loads and persists the coordinate cache.
type CacheStore interface {
	LoadCache() (*domain.CoordinateCache, error)
	SaveCache(cache *domain.CoordinateCache) error
}

// Transformer resolves a raw event's location and normalizes it.
type Transformer interface {
	Transform(ctx context.Context, raw domain.RawEvent, cache *domain.CoordinateCache) (domain.NormalizedEvent, domain.Resolution)
}

// ResultLoader writes the ordered results of one year to a destination.
type ResultLoader interface {
	LoadResults(ctx context.Context, year int, events []domain.NormalizedEvent) error
}

// Pipeline runs one fetch-resolve-normalize-persist cycle for a target year.
type Pipeline struct {
	source          EventSource
	store           CacheStore
	transformer     Transformer
	loaders         []ResultLoader
	logger          *slog.Logger
	metrics         *observability.Metrics
	clock           clockwork.Clock
	politenessDelay time.Duration
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithClock sets the time source used for delays and run timing.
func WithClock(c clockwork.Clock) Option {
	return func(p *Pipeline) { p.clock = c }
}

// WithPolitenessDelay sets the pause after an event whose location was
// resolved during this run rather than from the cache.
func WithPolitenessDelay(d time.Duration) Option {
	return func(p *Pipeline) { p.politenessDelay = d }
}

// New creates a Pipeline. Results are handed to each loader in order.
func New(source EventSource, store CacheStore, t Transformer, loaders []ResultLoader, logger *slog.Logger, metrics *observability.Metrics, opts ...Option) *Pipeline {
	p := &Pipeline{
		source:      source,
		store:       store,
		transformer: t,
		loaders:     loaders,
		logger:      logger,
		metrics:     metrics,
		clock:       clockwork.NewRealClock(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run loads the cache, fetches all events, processes those starting in year,
// then saves the cache and hands the results to every loader. Any error is
// fatal for the run; nothing is written when fetching fails.
func (p *Pipeline) Run(ctx context.Context, year int) ([]domain.NormalizedEvent, error) {
	start := p.clock.Now()

	cache, err := p.store.LoadCache()
	if err != nil {
		return nil, fmt.Errorf("load coordinate cache: %w", err)
	}

	raws, err := p.source.FetchEvents(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch events: %w", err)
	}

	results, err := p.Process(ctx, raws, year, cache)
	if err != nil {
		return nil, err
	}

	if err := p.store.SaveCache(cache); err != nil {
		return nil, err
	}
	p.metrics.CacheSize.Set(float64(cache.Len()))

	for _, l := range p.loaders {
		if err := l.LoadResults(ctx, year, results); err != nil {
			return nil, err
		}
	}

	p.metrics.RunDuration.Set(p.clock.Since(start).Seconds())
	p.metrics.LastSuccess.Set(float64(p.clock.Now().Unix()))
	return results, nil
}

// Process filters raws to year, resolves and normalizes each kept event in
// input order, and returns the results sorted by start date. It only fails
// when ctx is cancelled.
func (p *Pipeline) Process(ctx context.Context, raws []domain.RawEvent, year int, cache *domain.CoordinateCache) ([]domain.NormalizedEvent, error) {
	selected := FilterByYear(raws, year)
	p.metrics.EventsSelected.Add(float64(len(selected)))
	p.logger.Info("processing events",
		"year", year,
		"fetched", len(raws),
		"selected", len(selected),
	)

	results := make([]domain.NormalizedEvent, 0, len(selected))
	for i, raw := range selected {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		event, res := p.transformer.Transform(ctx, raw, cache)
		p.metrics.LocationResolutions.WithLabelValues(string(res.Source)).Inc()
		p.metrics.EventsNormalized.Inc()
		results = append(results, event)

		if n := i + 1; n%progressInterval == 0 {
			p.logger.Info("progress", "processed", n, "total", len(selected))
		}

		if res.Fresh() && i < len(selected)-1 {
			if err := domain.SleepWithContext(ctx, p.clock, p.politenessDelay); err != nil {
				return nil, err
			}
		}
	}

	SortByDate(results)
	p.report(results)
	return results, nil
}

// report logs the run summary and records the missing-coordinates gauge.
func (p *Pipeline) report(results []domain.NormalizedEvent) {
	var missing []string
	for i := range results {
		if results[i].Coordinates == nil {
			missing = append(missing, results[i].Location)
		}
	}
	p.metrics.MissingCoordinates.Set(float64(len(missing)))

	p.logger.Info("run summary",
		"total", len(results),
		"missing_coordinates", len(missing),
	)
	if len(missing) > 0 {
		p.logger.Warn("events without coordinates",
			"count", len(missing),
			"locations", missing,
		)
	}
}

// FilterByYear keeps events whose start date parses and falls in year. Input
// order is preserved.
func FilterByYear(raws []domain.RawEvent, year int) []domain.RawEvent {
	kept := make([]domain.RawEvent, 0, len(raws))
	for _, raw := range raws {
		if y, ok := raw.StartYear(); ok && y == year {
			kept = append(kept, raw)
		}
	}
	return kept
}

// SortByDate orders events by date_sort ascending. Events with equal keys keep
// their relative order.
func SortByDate(events []domain.NormalizedEvent) {
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].DateSort < events[j].DateSort
	})
}
