package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

const (
	// DefaultEventsURL is the koekalenteri event listing endpoint.
	DefaultEventsURL = "https://21e5yv9tnf.execute-api.eu-north-1.amazonaws.com/prod/event/"

	// DefaultGeocoderURL is the public Nominatim instance.
	DefaultGeocoderURL = "https://nominatim.openstreetmap.org"

	// DefaultUserAgent identifies this client to Nominatim, as its usage policy requires.
	DefaultUserAgent = "snj_kokeet_filter"
)

// Config holds all run settings, populated from environment variables.
type Config struct {
	EventsURL     string
	EventsTimeout time.Duration

	// Geocoding configuration.
	GeocoderURL       string
	GeocoderUserAgent string
	GeocoderTimeout   time.Duration
	NotFoundDelay     time.Duration
	PolitenessDelay   time.Duration

	CacheFile string
	OutputDir string

	LogLevel  string
	LogFormat string

	// Optional sinks. Kafka is enabled when KAFKA_BROKERS is set.
	KafkaBrokers   []string
	KafkaSinkTopic string
	KafkaEnabled   bool
	PushgatewayURL string
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	eventsTimeout, err := parseDuration("EVENTS_TIMEOUT", "30s", false)
	if err != nil {
		return nil, err
	}
	geocoderTimeout, err := parseDuration("GEOCODER_TIMEOUT", "10s", false)
	if err != nil {
		return nil, err
	}
	notFoundDelay, err := parseDuration("GEOCODER_NOT_FOUND_DELAY", "500ms", true)
	if err != nil {
		return nil, err
	}
	politenessDelay, err := parseDuration("GEOCODER_POLITENESS_DELAY", "300ms", true)
	if err != nil {
		return nil, err
	}

	var brokers []string
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		brokers = sharedcfg.ParseBrokers(v)
	}

	cfg := &Config{
		EventsURL:     sharedcfg.EnvOrDefault("EVENTS_URL", DefaultEventsURL),
		EventsTimeout: eventsTimeout,

		GeocoderURL:       sharedcfg.EnvOrDefault("GEOCODER_URL", DefaultGeocoderURL),
		GeocoderUserAgent: sharedcfg.EnvOrDefault("GEOCODER_USER_AGENT", DefaultUserAgent),
		GeocoderTimeout:   geocoderTimeout,
		NotFoundDelay:     notFoundDelay,
		PolitenessDelay:   politenessDelay,

		CacheFile: sharedcfg.EnvOrDefault("CACHE_FILE", "coordinates_cache.json"),
		OutputDir: sharedcfg.EnvOrDefault("OUTPUT_DIR", "."),

		LogLevel:  sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat: sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),

		KafkaBrokers:   brokers,
		KafkaSinkTopic: sharedcfg.EnvOrDefault("KAFKA_SINK_TOPIC", "koetutka-events"),
		KafkaEnabled:   len(brokers) > 0,
		PushgatewayURL: os.Getenv("PUSHGATEWAY_URL"),
	}

	if cfg.EventsURL == "" {
		return nil, errors.New("EVENTS_URL is required")
	}
	if cfg.GeocoderURL == "" {
		return nil, errors.New("GEOCODER_URL is required")
	}
	if cfg.GeocoderUserAgent == "" {
		return nil, errors.New("GEOCODER_USER_AGENT is required")
	}
	if cfg.CacheFile == "" {
		return nil, errors.New("CACHE_FILE is required")
	}
	if cfg.KafkaEnabled && cfg.KafkaSinkTopic == "" {
		return nil, errors.New("KAFKA_SINK_TOPIC is required when KAFKA_BROKERS is set")
	}

	return cfg, nil
}

// parseDuration reads a duration variable. Negative values are always
// rejected; zero only when allowZero is false.
func parseDuration(key, def string, allowZero bool) (time.Duration, error) {
	d, err := time.ParseDuration(sharedcfg.EnvOrDefault(key, def))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	if d < 0 || (d == 0 && !allowZero) {
		return 0, fmt.Errorf("invalid %s: must be positive", key)
	}
	return d, nil
}
