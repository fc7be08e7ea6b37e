package domain

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- mock geocoder ---

type mockGeocoder struct {
	results map[string]GeocodingResult
	errs    map[string]error
	queries []string
}

func (m *mockGeocoder) Geocode(_ context.Context, query string) (GeocodingResult, error) {
	m.queries = append(m.queries, query)
	if err, ok := m.errs[query]; ok {
		return GeocodingResult{}, err
	}
	return m.results[query], nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestResolver(geo Geocoder) *Resolver {
	return NewResolver(geo, DefaultKnownPlaces, clockwork.NewFakeClock(), 0, discardLogger())
}

var iisalmi = Coordinates{Lat: 63.5586, Lon: 27.1903}

// --- tests ---

func TestResolve_EmptyLocation(t *testing.T) {
	geo := &mockGeocoder{}
	cache := NewCoordinateCache()

	res := newTestResolver(geo).Resolve(context.Background(), "  ", cache)

	assert.False(t, res.Found)
	assert.Equal(t, SourceNone, res.Source)
	assert.Nil(t, res.CoordinatesOrNil())
	assert.Empty(t, geo.queries)
	assert.Equal(t, 0, cache.Len())
}

func TestResolve_CacheHit(t *testing.T) {
	geo := &mockGeocoder{}
	cache := NewCoordinateCache()
	cache.Store("Iisalmi", iisalmi)

	res := newTestResolver(geo).Resolve(context.Background(), "Iisalmi", cache)

	assert.True(t, res.Found)
	assert.Equal(t, iisalmi, res.Coordinates)
	assert.Equal(t, SourceCache, res.Source)
	assert.False(t, res.Fresh())
	assert.Empty(t, geo.queries, "cached locations must not reach the geocoder")
}

func TestResolve_CachedUnresolvable(t *testing.T) {
	geo := &mockGeocoder{}
	cache := NewCoordinateCache()
	cache.MarkUnresolvable("Oulu, metsäautotien pää")

	res := newTestResolver(geo).Resolve(context.Background(), "Oulu, metsäautotien pää", cache)

	assert.False(t, res.Found)
	assert.Equal(t, SourceCache, res.Source)
	assert.Empty(t, geo.queries)
}

func TestResolve_FirstVariantWins(t *testing.T) {
	geo := &mockGeocoder{results: map[string]GeocodingResult{
		"Iisalmi ymp, Finland": {Coordinates: iisalmi, Found: true},
	}}
	cache := NewCoordinateCache()

	res := newTestResolver(geo).Resolve(context.Background(), "Iisalmi ymp", cache)

	assert.Equal(t, SourceGeocoder, res.Source)
	assert.Equal(t, iisalmi, res.Coordinates)
	assert.True(t, res.Fresh())
	assert.Equal(t, []string{"Iisalmi ymp, Finland"}, geo.queries)
	assert.Equal(t, CacheResolved, cache.Lookup("Iisalmi ymp").State)
}

func TestResolve_CleanedVariant(t *testing.T) {
	geo := &mockGeocoder{results: map[string]GeocodingResult{
		"Kuopio, Finland": {Coordinates: Coordinates{Lat: 62.89, Lon: 27.67}, Found: true},
	}}
	cache := NewCoordinateCache()

	res := newTestResolver(geo).Resolve(context.Background(), "Kuopio ymp(seutu)", cache)

	assert.Equal(t, SourceGeocoder, res.Source)
	assert.Equal(t, []string{"Kuopio ymp(seutu), Finland", "Kuopio, Finland"}, geo.queries)
	assert.Equal(t, Coordinates{Lat: 62.89, Lon: 27.67}, cache.Lookup("Kuopio ymp(seutu)").Coordinates)
}

func TestResolve_ErrorFallsThroughToNextVariant(t *testing.T) {
	geo := &mockGeocoder{
		errs: map[string]error{"Iisalmi (Peltosalmi), Finland": errors.New("timeout")},
		results: map[string]GeocodingResult{
			"Iisalmi, Finland": {Coordinates: iisalmi, Found: true},
		},
	}
	cache := NewCoordinateCache()

	res := newTestResolver(geo).Resolve(context.Background(), "Iisalmi (Peltosalmi)", cache)

	assert.True(t, res.Found)
	assert.Equal(t, SourceGeocoder, res.Source)
	assert.Len(t, geo.queries, 2)
}

func TestResolve_KnownPlaceFallback(t *testing.T) {
	geo := &mockGeocoder{errs: map[string]error{
		"OULUN Koirakenttä, Finland": errors.New("service unavailable"),
	}}
	cache := NewCoordinateCache()

	res := newTestResolver(geo).Resolve(context.Background(), "OULUN Koirakenttä", cache)

	assert.True(t, res.Found)
	assert.Equal(t, SourceFallback, res.Source)
	assert.Equal(t, Coordinates{Lat: 65.0121, Lon: 25.4651}, res.Coordinates)
	assert.True(t, res.Fresh())
	assert.Equal(t, CacheResolved, cache.Lookup("OULUN Koirakenttä").State)
}

func TestResolve_NilGeocoderUsesKnownPlaces(t *testing.T) {
	cache := NewCoordinateCache()

	res := newTestResolver(nil).Resolve(context.Background(), "Turku", cache)

	assert.Equal(t, SourceFallback, res.Source)
	assert.Equal(t, 60.4518, res.Coordinates.Lat)
}

func TestResolve_Unresolvable(t *testing.T) {
	geo := &mockGeocoder{}
	cache := NewCoordinateCache()
	resolver := newTestResolver(geo)

	res := resolver.Resolve(context.Background(), "Korpijärvi (tarkentuu)", cache)

	assert.False(t, res.Found)
	assert.Equal(t, SourceUnresolved, res.Source)
	assert.False(t, res.Fresh())
	assert.Equal(t, CacheUnresolvable, cache.Lookup("Korpijärvi (tarkentuu)").State)
	assert.Len(t, geo.queries, 2)

	t.Run("second call is served from cache", func(t *testing.T) {
		res := resolver.Resolve(context.Background(), "Korpijärvi (tarkentuu)", cache)
		assert.False(t, res.Found)
		assert.Equal(t, SourceCache, res.Source)
		assert.Len(t, geo.queries, 2)
	})
}

func TestResolve_Idempotent(t *testing.T) {
	geo := &mockGeocoder{results: map[string]GeocodingResult{
		"Lapinlahti, Finland": {Coordinates: Coordinates{Lat: 63.36, Lon: 27.39}, Found: true},
	}}
	cache := NewCoordinateCache()
	resolver := newTestResolver(geo)

	first := resolver.Resolve(context.Background(), "Lapinlahti", cache)
	calls := len(geo.queries)
	second := resolver.Resolve(context.Background(), "Lapinlahti", cache)

	assert.Equal(t, first.Coordinates, second.Coordinates)
	assert.Equal(t, calls, len(geo.queries))
}

func TestResolve_NotFoundDelayBetweenVariants(t *testing.T) {
	geo := &mockGeocoder{results: map[string]GeocodingResult{
		"Kuopio, Finland": {Coordinates: Coordinates{Lat: 62.89, Lon: 27.67}, Found: true},
	}}
	clock := clockwork.NewFakeClock()
	resolver := NewResolver(geo, DefaultKnownPlaces, clock, 500*time.Millisecond, discardLogger())
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	done := make(chan Resolution, 1)
	go func() {
		done <- resolver.Resolve(ctx, "Kuopio ymp", NewCoordinateCache())
	}()

	require.NoError(t, clock.BlockUntilContext(ctx, 1))
	assert.Len(t, geo.queries, 1, "second variant must wait for the delay")
	clock.Advance(500 * time.Millisecond)

	select {
	case res := <-done:
		assert.Equal(t, SourceGeocoder, res.Source)
	case <-ctx.Done():
		t.Fatal("resolve did not finish after the delay elapsed")
	}
}

func TestResolve_CancelledDoesNotCache(t *testing.T) {
	geo := &mockGeocoder{}
	cache := NewCoordinateCache()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := newTestResolver(geo).Resolve(ctx, "Oulu", cache)

	assert.False(t, res.Found)
	assert.Equal(t, 0, cache.Len())
}

func TestSleepWithContext(t *testing.T) {
	t.Run("non-positive returns immediately", func(t *testing.T) {
		clock := clockwork.NewFakeClock()
		assert.NoError(t, SleepWithContext(context.Background(), clock, 0))
		assert.NoError(t, SleepWithContext(context.Background(), clock, -time.Second))
	})

	t.Run("waits for the clock", func(t *testing.T) {
		clock := clockwork.NewFakeClock()
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		done := make(chan error, 1)
		go func() { done <- SleepWithContext(ctx, clock, 300*time.Millisecond) }()

		require.NoError(t, clock.BlockUntilContext(ctx, 1))
		clock.Advance(300 * time.Millisecond)
		assert.NoError(t, <-done)
	})

	t.Run("cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		err := SleepWithContext(ctx, clockwork.NewFakeClock(), time.Hour)
		assert.ErrorIs(t, err, context.Canceled)
	})
}
