//go:build nominatim

package nominatim

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/couchcryptid/snj-koetutka/internal/config"
	"github.com/couchcryptid/snj-koetutka/internal/observability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// These tests hit the public Nominatim instance. Keep them few; its usage
// policy allows one request per second.
// Run with: go test -tags=nominatim ./internal/adapter/nominatim/ -v -count=1

func smokeClient() *Client {
	return &Client{
		userAgent:  config.DefaultUserAgent,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		baseURL:    config.DefaultGeocoderURL,
		metrics:    observability.NewMetricsForTesting(),
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func TestSmoke_Geocode(t *testing.T) {
	result, err := smokeClient().Geocode(context.Background(), "Kuopio, Finland")
	require.NoError(t, err)

	assert.True(t, result.Found)
	assert.InDelta(t, 62.89, result.Coordinates.Lat, 0.1, "lat should be near Kuopio")
	assert.InDelta(t, 27.68, result.Coordinates.Lon, 0.1, "lon should be near Kuopio")
}

func TestSmoke_Geocode_NoMatch(t *testing.T) {
	time.Sleep(time.Second)

	result, err := smokeClient().Geocode(context.Background(), "XYZNONEXISTENT99, Finland")
	require.NoError(t, err)
	assert.False(t, result.Found)
}
