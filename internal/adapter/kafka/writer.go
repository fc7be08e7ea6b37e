package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/couchcryptid/snj-koetutka/internal/config"
	"github.com/couchcryptid/snj-koetutka/internal/domain"
	"github.com/couchcryptid/snj-koetutka/internal/observability"
	kafkago "github.com/segmentio/kafka-go"
)

// Writer publishes normalized events to a Kafka topic.
// It implements pipeline.ResultLoader.
type Writer struct {
	writer  *kafkago.Writer
	runID   string
	metrics *observability.Metrics
	logger  *slog.Logger
}

// NewWriter creates a Kafka producer for the configured sink topic. runID is
// attached to every message so consumers can group one run's output.
func NewWriter(cfg *config.Config, runID string, metrics *observability.Metrics, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaSinkTopic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, runID: runID, metrics: metrics, logger: logger}
}

// LoadResults serializes and publishes the year's events in a single
// WriteMessages call. Messages are keyed by location so one place's events
// share a partition.
func (w *Writer) LoadResults(ctx context.Context, year int, events []domain.NormalizedEvent) error {
	if len(events) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(events))
	for i := range events {
		msg, err := serializeToMessage(events[i], year, w.runID)
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	if err := w.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("publish %d events to %s: %w", len(msgs), w.writer.Topic, err)
	}
	w.metrics.EventsPublished.Add(float64(len(msgs)))
	w.logger.Info("results published", "topic", w.writer.Topic, "events", len(msgs))
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals a NormalizedEvent into a Kafka message.
func serializeToMessage(event domain.NormalizedEvent, year int, runID string) (kafkago.Message, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize event %q: %w", event.Name, err)
	}
	return kafkago.Message{
		Key:   []byte(event.Location),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "event_type", Value: []byte(event.Type)},
			{Key: "date_sort", Value: []byte(event.DateSort)},
			{Key: "year", Value: []byte(strconv.Itoa(year))},
			{Key: "run_id", Value: []byte(runID)},
		},
	}, nil
}
