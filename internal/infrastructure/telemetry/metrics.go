package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metric attribute keys
const (
	AttrFrom    = attribute.Key("from")
	AttrTo      = attribute.Key("to")
	AttrResult  = attribute.Key("result")
	AttrPayment = attribute.Key("payment")
	AttrSink    = attribute.Key("sink")
)

// Counter wraps an Int64Counter
type Counter struct {
	counter metric.Int64Counter
}

// NewCounter creates a new Counter metric
func NewCounter(meter metric.Meter, name, description, unit string) (*Counter, error) {
	c, err := meter.Int64Counter(name, metric.WithDescription(description), metric.WithUnit(unit))
	if err != nil {
		return nil, fmt.Errorf("failed to create counter %s: %w", name, err)
	}
	return &Counter{counter: c}, nil
}

// Inc increments the counter by 1
func (c *Counter) Inc(ctx context.Context, attrs ...attribute.KeyValue) {
	c.counter.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// OrderMetrics records order lifecycle and notification counters. A nil
// *OrderMetrics records nothing.
type OrderMetrics struct {
	transitions    *Counter
	ordersCreated  *Counter
	sinkDeliveries *Counter
}

// NewOrderMetrics registers the order counters on meter
func NewOrderMetrics(meter metric.Meter) (*OrderMetrics, error) {
	transitions, err := NewCounter(meter, "ordercore_transitions_total", "Order status transition attempts", "{transitions}")
	if err != nil {
		return nil, err
	}
	created, err := NewCounter(meter, "ordercore_orders_created_total", "Orders created", "{orders}")
	if err != nil {
		return nil, err
	}
	deliveries, err := NewCounter(meter, "ordercore_sink_deliveries_total", "Notification sink deliveries", "{deliveries}")
	if err != nil {
		return nil, err
	}
	return &OrderMetrics{
		transitions:    transitions,
		ordersCreated:  created,
		sinkDeliveries: deliveries,
	}, nil
}

// RecordTransition counts a transition attempt by outcome
func (m *OrderMetrics) RecordTransition(ctx context.Context, from, to, result string) {
	if m == nil {
		return
	}
	m.transitions.Inc(ctx, AttrFrom.String(from), AttrTo.String(to), AttrResult.String(result))
}

// RecordOrderCreated counts a created order by payment method
func (m *OrderMetrics) RecordOrderCreated(ctx context.Context, payment string) {
	if m == nil {
		return
	}
	m.ordersCreated.Inc(ctx, AttrPayment.String(payment))
}

// RecordSinkDelivery counts one sink delivery by outcome
func (m *OrderMetrics) RecordSinkDelivery(ctx context.Context, sink string, ok bool) {
	if m == nil {
		return
	}
	result := "ok"
	if !ok {
		result = "failed"
	}
	m.sinkDeliveries.Inc(ctx, AttrSink.String(sink), AttrResult.String(result))
}
