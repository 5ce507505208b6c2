package usecases

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/orris-inc/tracksync/internal/infrastructure/telemetry"
)

const instrumentationName = "github.com/orris-inc/tracksync/webhook"

var (
	eventCounter metric.Int64Counter
	metricsOnce  sync.Once
)

func recordEvent(ctx context.Context, eventType, action, outcome string) {
	metricsOnce.Do(func() {
		eventCounter, _ = telemetry.Meter(instrumentationName).Int64Counter("tracksync.webhook.events",
			metric.WithDescription("Linear webhook deliveries by type, action and outcome"),
			metric.WithUnit("{event}"),
		)
	})
	if eventCounter == nil {
		return
	}
	eventCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("type", eventType),
		attribute.String("action", action),
		attribute.String("outcome", outcome),
	))
}
