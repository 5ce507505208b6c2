package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orris-inc/tracksync/internal/shared/config"
)

func TestInit_DisabledInstallsNoop(t *testing.T) {
	p, err := Init(context.Background(), config.TelemetryConfig{}, "test")
	require.NoError(t, err)

	_, span := Tracer("").Start(context.Background(), "noop")
	assert.False(t, span.SpanContext().IsValid())
	span.End()

	assert.NoError(t, p.Shutdown(context.Background()))
}

func TestInit_EnabledRecordsSpans(t *testing.T) {
	p, err := Init(context.Background(), config.TelemetryConfig{Enabled: true, ServiceName: "tracksync-test"}, "test")
	require.NoError(t, err)
	t.Cleanup(func() {
		_, _ = Init(context.Background(), config.TelemetryConfig{}, "test")
	})

	_, span := Tracer("").Start(context.Background(), "real")
	assert.True(t, span.SpanContext().IsValid())
	span.End()

	counter, err := Meter("").Int64Counter("tracksync.test.counter")
	require.NoError(t, err)
	counter.Add(context.Background(), 1)

	assert.NoError(t, p.Shutdown(context.Background()))
	assert.NoError(t, p.Shutdown(context.Background()))
}

func TestShutdown_NilProviders(t *testing.T) {
	var p *Providers
	assert.NoError(t, p.Shutdown(context.Background()))
}
