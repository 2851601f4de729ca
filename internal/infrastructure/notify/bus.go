package notify

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/google/uuid"
	"github.com/hostly/ordercore/internal/domain/access"
	"github.com/hostly/ordercore/internal/domain/order"
	"github.com/hostly/ordercore/internal/domain/shared"
	"github.com/hostly/ordercore/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

const defaultSubscriberBuffer = 256

// Sink is a delivery target for change events. A returned error or a panic is
// contained by the bus and never reaches the publisher.
type Sink interface {
	Name() string
	Deliver(ctx context.Context, event order.ChangeEvent, sub SubscriberContext) error
}

// SinkFunc adapts a function into a Sink
type SinkFunc struct {
	SinkName string
	Fn       func(ctx context.Context, event order.ChangeEvent, sub SubscriberContext) error
}

func (f SinkFunc) Name() string { return f.SinkName }

func (f SinkFunc) Deliver(ctx context.Context, event order.ChangeEvent, sub SubscriberContext) error {
	return f.Fn(ctx, event, sub)
}

// SubscriberContext identifies who a subscription delivers to
type SubscriberContext struct {
	SessionID string
	UserID    string
	Role      access.Role
	TenantID  string
}

// Filter narrows which events reach a subscription. Zero values mean unset.
type Filter struct {
	TenantID string
	Roles    []access.Role
}

// Subscription is a live registration on the bus. Each subscription drains
// its own queue so events reach it in publish order.
type Subscription struct {
	id         uuid.UUID
	sink       Sink
	filter     Filter
	subscriber SubscriberContext
	queue      chan order.ChangeEvent
	done       chan struct{}
}

// ID returns the subscription handle id
func (s *Subscription) ID() uuid.UUID { return s.id }

// Filter returns the effective filter, including any forced tenant
func (s *Subscription) Filter() Filter { return s.filter }

// Done is closed once the subscription is disposed and its queue drained
func (s *Subscription) Done() <-chan struct{} { return s.done }

// Subscriber returns the subscriber context
func (s *Subscription) Subscriber() SubscriberContext { return s.subscriber }

// Matches reports whether event must be delivered to this subscription.
// Creation events reach staff and admin subscribers whatever their tenant filter.
func (s *Subscription) Matches(event order.ChangeEvent) bool {
	if len(s.filter.Roles) > 0 && !slices.Contains(s.filter.Roles, s.subscriber.Role) {
		return false
	}
	if s.filter.TenantID == "" {
		return true
	}
	if event.TenantID != nil && *event.TenantID == s.filter.TenantID {
		return true
	}
	return event.IsCreation() && s.subscriber.Role.IsFrontOfHouse()
}

// Bus fans committed change events out to subscriptions
type Bus struct {
	mu       sync.RWMutex
	subs     map[uuid.UUID]*Subscription
	closed   bool
	wg       sync.WaitGroup
	instance string
	buffer   int
	logger   *zap.Logger
	metrics  *telemetry.OrderMetrics
}

// BusOption configures a Bus
type BusOption func(*Bus)

// WithInstanceID sets the id stamped on locally published events
func WithInstanceID(id string) BusOption {
	return func(b *Bus) { b.instance = id }
}

// WithSubscriberBuffer sets the per-subscription queue size
func WithSubscriberBuffer(n int) BusOption {
	return func(b *Bus) {
		if n > 0 {
			b.buffer = n
		}
	}
}

// WithMetrics records sink delivery outcomes
func WithMetrics(m *telemetry.OrderMetrics) BusOption {
	return func(b *Bus) { b.metrics = m }
}

// NewBus creates an empty bus
func NewBus(logger *zap.Logger, opts ...BusOption) *Bus {
	b := &Bus{
		subs:     make(map[uuid.UUID]*Subscription),
		instance: uuid.NewString(),
		buffer:   defaultSubscriberBuffer,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// InstanceID returns the id this bus stamps on local events
func (b *Bus) InstanceID() string { return b.instance }

// Subscribe registers sink for events matching filter. A partner subscriber is
// always pinned to its own tenant; one without a tenant is refused.
func (b *Bus) Subscribe(sink Sink, sub SubscriberContext, filter Filter) (*Subscription, error) {
	if !sub.Role.IsValid() {
		return nil, shared.NewDomainErrorf(shared.CodeInvalidInput, "unknown subscriber role %q", sub.Role)
	}
	if sub.Role == access.RolePartner {
		if sub.TenantID == "" {
			return nil, shared.ErrTenancyViolation.WithDetail("operation", "subscribe")
		}
		filter.TenantID = sub.TenantID
	}

	s := &Subscription{
		id:         uuid.New(),
		sink:       sink,
		filter:     Filter{TenantID: filter.TenantID, Roles: slices.Clone(filter.Roles)},
		subscriber: sub,
		queue:      make(chan order.ChangeEvent, b.buffer),
		done:       make(chan struct{}),
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil, fmt.Errorf("change bus closed")
	}
	b.subs[s.id] = s
	b.wg.Add(1)
	go b.run(s)

	b.logger.Debug("Subscription registered",
		zap.String("subscription_id", s.id.String()),
		zap.String("sink", sink.Name()),
		zap.String("role", string(sub.Role)),
		zap.String("filter_tenant_id", s.filter.TenantID))
	return s, nil
}

// Unsubscribe disposes of a subscription. Events already queued for it are
// still delivered. Unsubscribing twice is harmless.
func (b *Bus) Unsubscribe(s *Subscription) {
	if s == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.subs[s.id]; !ok {
		return
	}
	delete(b.subs, s.id)
	close(s.queue)
}

// Publish hands event to every matching subscription and returns immediately.
// A full subscriber queue drops the event for that subscriber only.
func (b *Bus) Publish(ctx context.Context, event order.ChangeEvent) {
	if event.Instance == "" {
		event.Instance = b.instance
	}

	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, s := range b.subs {
		if !s.Matches(event) {
			continue
		}
		select {
		case s.queue <- event:
		default:
			b.logger.Warn("Subscriber queue full, dropping event",
				zap.String("error_code", shared.CodeSinkDeliveryFailure),
				zap.String("sink", s.sink.Name()),
				zap.String("order_id", event.OrderID.String()),
				zap.String("event_id", event.ID.String()))
			b.metrics.RecordSinkDelivery(ctx, s.sink.Name(), false)
		}
	}
}

// Len returns the number of live subscriptions
func (b *Bus) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

// Close disposes of every subscription and waits for queued deliveries to
// drain or ctx to end.
func (b *Bus) Close(ctx context.Context) error {
	b.mu.Lock()
	b.closed = true
	for id, s := range b.subs {
		delete(b.subs, id)
		close(s.queue)
	}
	b.mu.Unlock()

	drained := make(chan struct{})
	go func() {
		b.wg.Wait()
		close(drained)
	}()
	select {
	case <-drained:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (b *Bus) run(s *Subscription) {
	defer b.wg.Done()
	defer close(s.done)
	for event := range s.queue {
		b.deliver(s, event)
	}
}

func (b *Bus) deliver(s *Subscription, event order.ChangeEvent) {
	ctx := context.Background()
	ok := false
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("Sink panicked",
				zap.String("error_code", shared.CodeSinkDeliveryFailure),
				zap.String("sink", s.sink.Name()),
				zap.String("order_id", event.OrderID.String()),
				zap.Any("panic", r))
		}
		b.metrics.RecordSinkDelivery(ctx, s.sink.Name(), ok)
	}()

	if err := s.sink.Deliver(ctx, event, s.subscriber); err != nil {
		b.logger.Warn("Sink delivery failed",
			zap.String("error_code", shared.CodeSinkDeliveryFailure),
			zap.String("sink", s.sink.Name()),
			zap.String("order_id", event.OrderID.String()),
			zap.String("event_id", event.ID.String()),
			zap.String("session_id", s.subscriber.SessionID),
			zap.Error(err))
		return
	}
	ok = true
}
