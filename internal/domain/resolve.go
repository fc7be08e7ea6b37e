package domain

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"
)

// ResolutionSource tells where a location's coordinates came from.
type ResolutionSource string

const (
	SourceNone       ResolutionSource = "none"
	SourceCache      ResolutionSource = "cache"
	SourceGeocoder   ResolutionSource = "geocoder"
	SourceFallback   ResolutionSource = "fallback"
	SourceUnresolved ResolutionSource = "unresolved"
)

// Resolution is the outcome of resolving one location.
type Resolution struct {
	Coordinates Coordinates
	Found       bool
	Source      ResolutionSource
}

// CoordinatesOrNil returns a pointer to the coordinates, or nil when absent.
func (r Resolution) CoordinatesOrNil() *Coordinates {
	if !r.Found {
		return nil
	}
	coords := r.Coordinates
	return &coords
}

// Fresh reports whether the coordinates were obtained during this run rather
// than read from the cache.
func (r Resolution) Fresh() bool {
	return r.Found && (r.Source == SourceGeocoder || r.Source == SourceFallback)
}

// Resolver maps location strings to coordinates. It consults the cache first,
// then the geocoder with each query variant, then the known-places table, and
// records every outcome in the cache.
type Resolver struct {
	geocoder      Geocoder
	places        KnownPlaces
	clock         clockwork.Clock
	notFoundDelay time.Duration
	logger        *slog.Logger
}

// NewResolver creates a resolver. A nil geocoder skips straight to the
// known-places table. notFoundDelay is waited between query variants after the
// geocoder reports no match.
func NewResolver(geocoder Geocoder, places KnownPlaces, clock clockwork.Clock, notFoundDelay time.Duration, logger *slog.Logger) *Resolver {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Resolver{
		geocoder:      geocoder,
		places:        places,
		clock:         clock,
		notFoundDelay: notFoundDelay,
		logger:        logger,
	}
}

// Resolve returns the coordinates for location. An empty location resolves to
// nothing and leaves the cache untouched. Geocoder failures are logged and
// treated like "no match"; they never abort resolution.
//
// If ctx is cancelled mid-resolution the result is unresolved and the cache is
// not updated, so an interrupted lookup is retried on the next run.
func (r *Resolver) Resolve(ctx context.Context, location string, cache *CoordinateCache) Resolution {
	if strings.TrimSpace(location) == "" {
		return Resolution{Source: SourceNone}
	}

	switch entry := cache.Lookup(location); entry.State {
	case CacheResolved:
		return Resolution{Coordinates: entry.Coordinates, Found: true, Source: SourceCache}
	case CacheUnresolvable:
		return Resolution{Source: SourceCache}
	}

	if coords, ok := r.geocode(ctx, location); ok {
		cache.Store(location, coords)
		return Resolution{Coordinates: coords, Found: true, Source: SourceGeocoder}
	}
	if ctx.Err() != nil {
		return Resolution{Source: SourceUnresolved}
	}

	if place, ok := r.places.Match(location); ok {
		r.logger.Info("location resolved from known places",
			"location", location,
			"place", place.Name,
		)
		cache.Store(location, place.Coordinates)
		return Resolution{Coordinates: place.Coordinates, Found: true, Source: SourceFallback}
	}

	r.logger.Warn("location unresolvable", "location", location)
	cache.MarkUnresolvable(location)
	return Resolution{Source: SourceUnresolved}
}

// geocode tries each query variant in order and returns the first match.
func (r *Resolver) geocode(ctx context.Context, location string) (Coordinates, bool) {
	if r.geocoder == nil {
		return Coordinates{}, false
	}

	variants := QueryVariants(location)
	for i, query := range variants {
		if ctx.Err() != nil {
			return Coordinates{}, false
		}

		result, err := r.geocoder.Geocode(ctx, query)
		if err != nil {
			r.logger.Warn("geocoding failed",
				"location", location,
				"query", query,
				"error", err,
			)
			continue
		}
		if result.Found {
			r.logger.Debug("location geocoded",
				"location", location,
				"query", query,
				"display_name", result.DisplayName,
			)
			return result.Coordinates, true
		}

		if i < len(variants)-1 {
			if err := SleepWithContext(ctx, r.clock, r.notFoundDelay); err != nil {
				return Coordinates{}, false
			}
		}
	}
	return Coordinates{}, false
}

// SleepWithContext waits for d on clock or until ctx is cancelled, returning
// ctx.Err() in the latter case. Non-positive durations return immediately.
func SleepWithContext(ctx context.Context, clock clockwork.Clock, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-clock.After(d):
		return nil
	}
}
