package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hostly/ordercore/internal/domain/order"
	"go.uber.org/zap"
)

// Relay carries change events between server instances so terminals attached
// to different instances stay in sync.
type Relay interface {
	// Publish sends a locally committed event to the other instances
	Publish(ctx context.Context, event order.ChangeEvent) error
	// Listen starts delivering events from other instances to fn. It returns
	// once the subscription is established.
	Listen(ctx context.Context, fn func(order.ChangeEvent)) error
	Close() error
}

func encodeRelayed(event order.ChangeEvent) ([]byte, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("encode relayed event: %w", err)
	}
	return data, nil
}

// decodeRelayed parses a relayed event. ok is false for the local instance's
// own events and for undecodable payloads.
func decodeRelayed(data []byte, localInstance string, logger *zap.Logger) (order.ChangeEvent, bool) {
	var event order.ChangeEvent
	if err := json.Unmarshal(data, &event); err != nil {
		logger.Warn("Dropping undecodable relayed event", zap.Error(err))
		return order.ChangeEvent{}, false
	}
	if event.Instance == "" || event.Instance == localInstance {
		return order.ChangeEvent{}, false
	}
	event.Relayed = true
	return event, true
}

// BroadcastSink hands locally committed events to the relay. Events that
// arrived through the relay are never sent back out.
type BroadcastSink struct {
	relay    Relay
	instance string
}

func NewBroadcastSink(relay Relay, instance string) *BroadcastSink {
	return &BroadcastSink{relay: relay, instance: instance}
}

func (s *BroadcastSink) Name() string { return "broadcast" }

func (s *BroadcastSink) Deliver(ctx context.Context, event order.ChangeEvent, _ SubscriberContext) error {
	if event.Relayed || event.Instance != s.instance {
		return nil
	}
	return s.relay.Publish(ctx, event)
}

// ConnectRelay wires bus to relay in both directions: the broadcast sink
// sends local events out and remote events are republished locally.
func ConnectRelay(ctx context.Context, bus *Bus, relay Relay, sub SubscriberContext) (*Subscription, error) {
	if err := relay.Listen(ctx, func(event order.ChangeEvent) {
		bus.Publish(ctx, event)
	}); err != nil {
		return nil, fmt.Errorf("listen on relay: %w", err)
	}
	return bus.Subscribe(NewBroadcastSink(relay, bus.InstanceID()), sub, Filter{})
}
