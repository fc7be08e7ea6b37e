package observability

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

// PushJob is the Pushgateway job label for the ETL run.
const PushJob = "koetutka_etl"

// Push sends every metric in gatherer to a Prometheus Pushgateway, replacing
// the previous run's values.
func Push(ctx context.Context, gatewayURL string, gatherer prometheus.Gatherer) error {
	if err := push.New(gatewayURL, PushJob).Gatherer(gatherer).PushContext(ctx); err != nil {
		return fmt.Errorf("push metrics to %s: %w", gatewayURL, err)
	}
	return nil
}
