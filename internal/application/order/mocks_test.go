package order

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/hostly/ordercore/internal/domain/access"
	"github.com/hostly/ordercore/internal/domain/menu"
	"github.com/hostly/ordercore/internal/domain/order"
	"github.com/hostly/ordercore/internal/infrastructure/notify"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// MockStore is a mock implementation of order.Store
type MockStore struct {
	mock.Mock
}

func (m *MockStore) GetByID(ctx context.Context, id uuid.UUID, scope access.Scope) (*order.Order, error) {
	args := m.Called(ctx, id, scope)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockStore) List(ctx context.Context, scope access.Scope, filter order.ListFilter) ([]*order.Order, int64, error) {
	args := m.Called(ctx, scope, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*order.Order), args.Get(1).(int64), args.Error(2)
}

func (m *MockStore) Create(ctx context.Context, o *order.Order) error {
	return m.Called(ctx, o).Error(0)
}

func (m *MockStore) UpdateStatus(ctx context.Context, id uuid.UUID, newStatus order.Status, expectedVersion int) (*order.Order, error) {
	args := m.Called(ctx, id, newStatus, expectedVersion)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockStore) MarkPrinted(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockStore) SubscribeToChanges(ctx context.Context, table string) (<-chan order.RowChange, error) {
	args := m.Called(ctx, table)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(<-chan order.RowChange), args.Error(1)
}

// MockDishRepository is a mock implementation of menu.DishRepository
type MockDishRepository struct {
	mock.Mock
}

func (m *MockDishRepository) FindByID(ctx context.Context, id uuid.UUID, scope access.Scope) (*menu.Dish, error) {
	args := m.Called(ctx, id, scope)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*menu.Dish), args.Error(1)
}

func (m *MockDishRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*menu.Dish, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[uuid.UUID]*menu.Dish), args.Error(1)
}

func (m *MockDishRepository) List(ctx context.Context, scope access.Scope, filter menu.DishFilter) ([]*menu.Dish, int64, error) {
	args := m.Called(ctx, scope, filter)
	return args.Get(0).([]*menu.Dish), args.Get(1).(int64), args.Error(2)
}

func (m *MockDishRepository) Save(ctx context.Context, d *menu.Dish) error {
	return m.Called(ctx, d).Error(0)
}

func (m *MockDishRepository) Delete(ctx context.Context, id uuid.UUID, scope access.Scope) error {
	return m.Called(ctx, id, scope).Error(0)
}

// eventCapture subscribes to a real bus as an admin and records deliveries
type eventCapture struct {
	mu     sync.Mutex
	events []order.ChangeEvent
	ch     chan order.ChangeEvent
}

func newEventCapture(t *testing.T) (*notify.Bus, *eventCapture) {
	t.Helper()
	bus := notify.NewBus(zap.NewNop())
	c := &eventCapture{ch: make(chan order.ChangeEvent, 64)}
	_, err := bus.Subscribe(notify.SinkFunc{SinkName: "capture", Fn: func(_ context.Context, e order.ChangeEvent, _ notify.SubscriberContext) error {
		c.mu.Lock()
		c.events = append(c.events, e)
		c.mu.Unlock()
		c.ch <- e
		return nil
	}}, notify.SubscriberContext{Role: access.RoleAdmin}, notify.Filter{})
	require.NoError(t, err)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = bus.Close(ctx)
	})
	return bus, c
}

func (c *eventCapture) next(t *testing.T) order.ChangeEvent {
	t.Helper()
	select {
	case e := <-c.ch:
		return e
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for change event")
		return order.ChangeEvent{}
	}
}

// settle waits briefly and returns every event delivered so far
func (c *eventCapture) settle() []order.ChangeEvent {
	time.Sleep(50 * time.Millisecond)
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]order.ChangeEvent(nil), c.events...)
}
