// Package snjapi fetches the trial calendar from the koekalenteri event API.
package snjapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/couchcryptid/snj-koetutka/internal/domain"
	"github.com/couchcryptid/snj-koetutka/internal/observability"
)

// ErrUnexpectedStatus is returned when the event API answers with a non-2xx status.
var ErrUnexpectedStatus = errors.New("unexpected status from event API")

// Client implements pipeline.EventSource over HTTP.
type Client struct {
	url        string
	httpClient *http.Client
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates an event API client for the given listing URL.
func NewClient(url string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		url: url,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		metrics: metrics,
		logger:  logger,
	}
}

// FetchEvents downloads the full event listing. Any transport failure,
// non-2xx status or non-array body is an error. Individual records that are
// not JSON objects are skipped with a warning.
func (c *Client) FetchEvents(ctx context.Context) ([]domain.RawEvent, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request event list: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("%w: %d: %s", ErrUnexpectedStatus, resp.StatusCode, body)
	}

	var records []json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&records); err != nil {
		return nil, fmt.Errorf("decode event list: %w", err)
	}

	events := make([]domain.RawEvent, 0, len(records))
	for i, record := range records {
		event, err := domain.ParseRawEvent(record)
		if err != nil {
			c.logger.Warn("skipping malformed event record", "index", i, "error", err)
			continue
		}
		events = append(events, event)
	}

	c.metrics.EventsFetched.Add(float64(len(events)))
	c.logger.Info("events fetched", "count", len(events), "url", c.url)
	return events, nil
}
