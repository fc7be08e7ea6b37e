package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "koetutka"

// Metrics holds the Prometheus counters, histograms, and gauges for one ETL run.
type Metrics struct {
	EventsFetched    prometheus.Counter
	EventsSelected   prometheus.Counter
	EventsNormalized prometheus.Counter
	EventsPublished  prometheus.Counter

	MissingCoordinates prometheus.Gauge
	CacheSize          prometheus.Gauge
	RunDuration        prometheus.Gauge
	LastSuccess        prometheus.Gauge

	// Location resolution metrics.
	LocationResolutions *prometheus.CounterVec // labels: source={none,cache,geocoder,fallback,unresolved}
	GeocodeRequests     *prometheus.CounterVec // labels: outcome={found,not_found,error}
	GeocodeAPIDuration  prometheus.Histogram
}

// NewMetrics creates and registers all pipeline metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.EventsFetched,
		m.EventsSelected,
		m.EventsNormalized,
		m.EventsPublished,
		m.MissingCoordinates,
		m.CacheSize,
		m.RunDuration,
		m.LastSuccess,
		m.LocationResolutions,
		m.GeocodeRequests,
		m.GeocodeAPIDuration,
	)
	return m
}

// NewMetricsForTesting creates unregistered Metrics to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		EventsFetched: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_fetched_total",
			Help:      "Events returned by the event API.",
		}),
		EventsSelected: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_selected_total",
			Help:      "Events whose start date falls in the target year.",
		}),
		EventsNormalized: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_normalized_total",
			Help:      "Events converted to the display schema.",
		}),
		EventsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_published_total",
			Help:      "Normalized events written to the Kafka sink topic.",
		}),
		MissingCoordinates: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "missing_coordinates",
			Help:      "Normalized events without coordinates in the last run.",
		}),
		CacheSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "coordinate_cache_entries",
			Help:      "Locations in the coordinate cache after the last run.",
		}),
		RunDuration: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Wall-clock duration of the last run.",
		}),
		LastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time of the last successful run.",
		}),
		LocationResolutions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "location_resolutions_total",
			Help:      "Location resolutions by source.",
		}, []string{"source"}),
		GeocodeRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "geocode_requests_total",
			Help:      "Geocoding API requests by outcome.",
		}, []string{"outcome"}),
		GeocodeAPIDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "geocode_api_duration_seconds",
			Help:      "Nominatim API request duration in seconds.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
	}
}
