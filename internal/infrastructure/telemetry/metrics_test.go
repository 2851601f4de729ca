package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.uber.org/zap"
)

func collectSum(t *testing.T, reader *sdkmetric.ManualReader, name string) metricdata.Sum[int64] {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name == name {
				sum, ok := m.Data.(metricdata.Sum[int64])
				require.True(t, ok)
				return sum
			}
		}
	}
	t.Fatalf("metric %s not found", name)
	return metricdata.Sum[int64]{}
}

func TestOrderMetrics(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	m, err := NewOrderMetrics(provider.Meter("test"))
	require.NoError(t, err)

	ctx := context.Background()
	m.RecordTransition(ctx, "pending", "preparing", "ok")
	m.RecordTransition(ctx, "pending", "preparing", "ok")
	m.RecordOrderCreated(ctx, "cash")
	m.RecordSinkDelivery(ctx, "webhook", false)

	transitions := collectSum(t, reader, "ordercore_transitions_total")
	require.Len(t, transitions.DataPoints, 1)
	assert.Equal(t, int64(2), transitions.DataPoints[0].Value)

	deliveries := collectSum(t, reader, "ordercore_sink_deliveries_total")
	require.Len(t, deliveries.DataPoints, 1)
	result, ok := deliveries.DataPoints[0].Attributes.Value(attribute.Key("result"))
	require.True(t, ok)
	assert.Equal(t, "failed", result.AsString())
}

func TestOrderMetrics_NilIsNoop(t *testing.T) {
	var m *OrderMetrics
	assert.NotPanics(t, func() {
		m.RecordTransition(context.Background(), "a", "b", "ok")
		m.RecordOrderCreated(context.Background(), "card")
		m.RecordSinkDelivery(context.Background(), "alert", true)
	})
}

func TestSetup_Disabled(t *testing.T) {
	p, err := Setup(context.Background(), Config{ServiceName: "test"}, zap.NewNop())
	require.NoError(t, err)
	assert.NotNil(t, p.Meter("x"))
	assert.NoError(t, p.Shutdown(context.Background()))
}
