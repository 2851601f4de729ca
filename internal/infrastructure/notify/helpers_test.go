package notify

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/hostly/ordercore/internal/domain/order"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

type capturingSink struct {
	name string
	mu   sync.Mutex
	got  []order.ChangeEvent
	ch   chan order.ChangeEvent
}

func newCapturingSink(name string) *capturingSink {
	return &capturingSink{name: name, ch: make(chan order.ChangeEvent, 64)}
}

func (s *capturingSink) Name() string { return s.name }

func (s *capturingSink) Deliver(_ context.Context, event order.ChangeEvent, _ SubscriberContext) error {
	s.mu.Lock()
	s.got = append(s.got, event)
	s.mu.Unlock()
	s.ch <- event
	return nil
}

func (s *capturingSink) events() []order.ChangeEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]order.ChangeEvent(nil), s.got...)
}

func (s *capturingSink) next(t *testing.T) order.ChangeEvent {
	t.Helper()
	select {
	case e := <-s.ch:
		return e
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
		return order.ChangeEvent{}
	}
}

func (s *capturingSink) none(t *testing.T) {
	t.Helper()
	select {
	case e := <-s.ch:
		t.Fatalf("unexpected event for order %s", e.OrderID)
	case <-time.After(50 * time.Millisecond):
	}
}

func strPtr(s string) *string { return &s }

func statusPtr(s order.Status) *order.Status { return &s }

func creationEvent(tenant *string) order.ChangeEvent {
	return order.ChangeEvent{
		ID:         uuid.New(),
		OrderID:    uuid.New(),
		NewStatus:  order.StatusPending,
		TenantID:   tenant,
		OccurredAt: time.Date(2026, 3, 1, 12, 30, 0, 0, time.UTC),
		Version:    1,
		Snapshot: order.Snapshot{
			LocationID:    "room-101",
			TotalAmount:   decimal.NewFromInt(100),
			PaymentMethod: order.PaymentCard,
			ItemSummary:   "Dish A x 2",
		},
	}
}

func transitionEvent(tenant *string, from, to order.Status) order.ChangeEvent {
	e := creationEvent(tenant)
	e.PreviousStatus = statusPtr(from)
	e.NewStatus = to
	e.Version = 2
	return e
}

func closeBus(t *testing.T, bus *Bus) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, bus.Close(ctx))
}
