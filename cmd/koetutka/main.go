package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/couchcryptid/snj-koetutka/internal/adapter/filestore"
	kafkaadapter "github.com/couchcryptid/snj-koetutka/internal/adapter/kafka"
	"github.com/couchcryptid/snj-koetutka/internal/adapter/nominatim"
	"github.com/couchcryptid/snj-koetutka/internal/adapter/snjapi"
	"github.com/couchcryptid/snj-koetutka/internal/cli"
	"github.com/couchcryptid/snj-koetutka/internal/config"
	"github.com/couchcryptid/snj-koetutka/internal/domain"
	"github.com/couchcryptid/snj-koetutka/internal/observability"
	"github.com/couchcryptid/snj-koetutka/internal/pipeline"
)

const pushTimeout = 10 * time.Second

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		return cli.ExitError
	}

	runID := uuid.NewString()
	logger := observability.NewLogger(cfg).With("run_id", runID)
	metrics := observability.NewMetrics()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cmd := cli.NewRootCmd(func(ctx context.Context, year int) error {
		return runYear(ctx, cfg, runID, year, logger, metrics)
	})
	if err := cmd.ExecuteContext(ctx); err != nil {
		logger.Error("run failed", "error", err)
		return cli.ExitError
	}
	return cli.ExitSuccess
}

func runYear(ctx context.Context, cfg *config.Config, runID string, year int, logger *slog.Logger, metrics *observability.Metrics) error {
	geocoder := nominatim.NewClient(cfg.GeocoderURL, cfg.GeocoderUserAgent, cfg.GeocoderTimeout, metrics, logger)
	resolver := domain.NewResolver(geocoder, domain.DefaultKnownPlaces, clockwork.NewRealClock(), cfg.NotFoundDelay, logger)

	results := filestore.NewResultWriter(cfg.OutputDir, logger)
	loaders := []pipeline.ResultLoader{results}

	if cfg.KafkaEnabled {
		writer := kafkaadapter.NewWriter(cfg, runID, metrics, logger)
		defer func() {
			if err := writer.Close(); err != nil {
				logger.Error("kafka writer close error", "error", err)
			}
		}()
		loaders = append(loaders, writer)
		logger.Info("kafka sink enabled", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaSinkTopic)
	}

	p := pipeline.New(
		snjapi.NewClient(cfg.EventsURL, cfg.EventsTimeout, metrics, logger),
		filestore.NewCacheFile(cfg.CacheFile, logger),
		pipeline.NewTransformer(resolver),
		loaders,
		logger,
		metrics,
		pipeline.WithPolitenessDelay(cfg.PolitenessDelay),
	)

	logger.Info("run started", "year", year, "events_url", cfg.EventsURL, "cache_file", cfg.CacheFile)

	events, runErr := p.Run(ctx, year)
	if runErr == nil {
		logger.Info("run complete", "events", len(events), "output", results.Path(year))
	}

	// Failed runs are pushed too so a stale last-success timestamp is visible.
	if cfg.PushgatewayURL != "" {
		pushCtx, cancel := context.WithTimeout(context.Background(), pushTimeout)
		defer cancel()
		if err := observability.Push(pushCtx, cfg.PushgatewayURL, prometheus.DefaultGatherer); err != nil {
			logger.Warn("metrics push failed", "error", err)
		}
	}

	return runErr
}
