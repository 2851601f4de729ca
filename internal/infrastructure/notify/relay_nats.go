package notify

import (
	"context"
	"fmt"
	"sync"

	"github.com/hostly/ordercore/internal/domain/order"
	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

// NATSRelay relays change events over a NATS subject. The caller owns the
// connection.
type NATSRelay struct {
	conn     *nats.Conn
	subject  string
	instance string
	logger   *zap.Logger

	mu  sync.Mutex
	sub *nats.Subscription
}

func NewNATSRelay(conn *nats.Conn, subject, instance string, logger *zap.Logger) *NATSRelay {
	return &NATSRelay{conn: conn, subject: subject, instance: instance, logger: logger}
}

func (r *NATSRelay) Publish(_ context.Context, event order.ChangeEvent) error {
	data, err := encodeRelayed(event)
	if err != nil {
		return err
	}
	if err := r.conn.Publish(r.subject, data); err != nil {
		return fmt.Errorf("publish to nats subject %s: %w", r.subject, err)
	}
	return nil
}

func (r *NATSRelay) Listen(_ context.Context, fn func(order.ChangeEvent)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.sub != nil {
		return fmt.Errorf("nats relay already listening")
	}
	sub, err := r.conn.Subscribe(r.subject, func(msg *nats.Msg) {
		if event, ok := decodeRelayed(msg.Data, r.instance, r.logger); ok {
			fn(event)
		}
	})
	if err != nil {
		return fmt.Errorf("subscribe to nats subject %s: %w", r.subject, err)
	}
	if err := r.conn.Flush(); err != nil {
		_ = sub.Unsubscribe()
		return fmt.Errorf("flush nats subscription: %w", err)
	}
	r.sub = sub
	r.logger.Info("Listening for relayed events", zap.String("nats_subject", r.subject))
	return nil
}

// Close stops listening. The connection is left open.
func (r *NATSRelay) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.sub == nil {
		return nil
	}
	err := r.sub.Unsubscribe()
	r.sub = nil
	return err
}
