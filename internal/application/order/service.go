package order

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/hostly/ordercore/internal/domain/access"
	"github.com/hostly/ordercore/internal/domain/menu"
	"github.com/hostly/ordercore/internal/domain/order"
	"github.com/hostly/ordercore/internal/domain/shared"
	"github.com/hostly/ordercore/internal/infrastructure/logger"
	"github.com/hostly/ordercore/internal/infrastructure/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

const spanService = "OrderService"

// EventPublisher receives committed change events
type EventPublisher interface {
	Publish(ctx context.Context, event order.ChangeEvent)
}

// Service runs the order lifecycle: guard, permission, state machine, store,
// then exactly one change event per committed change.
type Service struct {
	store   order.Store
	dishes  menu.DishRepository
	matrix  *access.Matrix
	guard   *access.Guard
	events  EventPublisher
	metrics *telemetry.OrderMetrics
	logger  *zap.Logger
	locks   stripedLock
}

// Option configures a Service
type Option func(*Service)

// WithMetrics records transition and creation counters
func WithMetrics(m *telemetry.OrderMetrics) Option {
	return func(s *Service) { s.metrics = m }
}

// NewService creates an order service
func NewService(store order.Store, dishes menu.DishRepository, matrix *access.Matrix, events EventPublisher, log *zap.Logger, opts ...Option) *Service {
	s := &Service{
		store:  store,
		dishes: dishes,
		matrix: matrix,
		guard:  access.NewGuard(),
		events: events,
		logger: log,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create places a guest order. Dish names, prices and owners are resolved
// from the menu; cash orders start as confirmed_unpaid.
func (s *Service) Create(ctx context.Context, in CreateOrderInput) (o *order.Order, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, spanService, "Create",
		attribute.String("order.location_id", in.LocationID),
		attribute.String("order.payment_method", string(in.PaymentMethod)))
	defer func() { telemetry.EndSpan(span, err) }()

	if len(in.Items) == 0 {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Order must contain at least one item")
	}
	ids := make([]uuid.UUID, 0, len(in.Items))
	for _, it := range in.Items {
		ids = append(ids, it.DishID)
	}
	dishes, err := s.dishes.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	items := make([]order.Item, 0, len(in.Items))
	for _, it := range in.Items {
		dish, ok := dishes[it.DishID]
		if !ok {
			return nil, shared.NewDomainError(shared.CodeNotFound, "Dish not found").
				WithDetail("dish_id", it.DishID.String())
		}
		if !dish.Available {
			return nil, shared.NewDomainError(shared.CodeInvalidInput, "Dish is not available").
				WithDetail("dish_id", it.DishID.String())
		}
		item, err := order.NewItem(dish.ID, dish.Name, it.Quantity, dish.Price, dish.TenantID)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	o, err = order.NewOrder(in.LocationID, in.PaymentMethod, in.PaymentProof, items)
	if err != nil {
		return nil, err
	}
	if err := s.store.Create(ctx, o); err != nil {
		return nil, err
	}

	s.metrics.RecordOrderCreated(ctx, string(o.PaymentMethod))
	s.events.Publish(context.WithoutCancel(ctx), order.NewCreatedEvent(o, in.OriginSession))

	logger.L(ctx).Info("Order created",
		zap.String("order_id", o.ID.String()),
		zap.String("status", string(o.Status)),
		zap.String("tenant_id", o.TenantString()),
		zap.String("total", o.TotalAmount.StringFixed(2)))
	return o, nil
}

// Get returns one order visible to p. Orders outside a partner's tenant are
// reported as not found.
func (s *Service) Get(ctx context.Context, p access.Principal, id uuid.UUID) (*order.Order, error) {
	scope, err := s.authorize(ctx, p, access.OperationRead, access.ActionRead)
	if err != nil {
		return nil, err
	}
	return s.store.GetByID(ctx, id, scope)
}

// List returns the orders visible to p, newest first
func (s *Service) List(ctx context.Context, p access.Principal, in ListInput) (*shared.Paginated[*order.Order], error) {
	scope, err := s.authorize(ctx, p, access.OperationRead, access.ActionRead)
	if err != nil {
		return nil, err
	}
	page := in.Page.Normalize()
	orders, total, err := s.store.List(ctx, scope, order.ListFilter{
		Status:     in.Status,
		LocationID: in.LocationID,
		Page:       page,
	})
	if err != nil {
		return nil, err
	}
	result := shared.NewPaginated(orders, total, page)
	return &result, nil
}

// Transition moves an order to in.Target on behalf of p. Every rule is
// checked before the store is written. A lost race is reported as
// CONCURRENT_MODIFICATION and is never retried here.
func (s *Service) Transition(ctx context.Context, p access.Principal, in TransitionInput) (o *order.Order, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, spanService, "Transition",
		attribute.String("order.id", in.OrderID.String()),
		attribute.String("order.target_status", string(in.Target)),
		attribute.String("principal.role", string(p.Role)))
	defer func() { telemetry.EndSpan(span, err) }()

	if _, err := s.authorize(ctx, p, access.OperationWrite, access.ActionUpdate); err != nil {
		s.metrics.RecordTransition(ctx, "", string(in.Target), resultOf(err))
		return nil, err
	}

	current, err := s.store.GetByID(ctx, in.OrderID, access.Unrestricted)
	if err != nil {
		return nil, err
	}
	if err := s.guard.Authorize(p, access.OperationWrite, current.TenantID); err != nil {
		logger.Security(ctx, "Order transition refused by tenancy guard",
			zap.String("order_id", current.ID.String()),
			zap.String("role", string(p.Role)),
			zap.String("user_id", p.UserID),
			zap.String("principal_tenant_id", p.TenantID),
			zap.String("order_tenant_id", current.TenantString()))
		s.metrics.RecordTransition(ctx, string(current.Status), string(in.Target), resultOf(err))
		return nil, err
	}
	if in.ExpectedVersion != nil && *in.ExpectedVersion != current.Version {
		err := shared.ErrConcurrentModification.
			WithDetail("expected_version", *in.ExpectedVersion).
			WithDetail("current_version", current.Version)
		s.metrics.RecordTransition(ctx, string(current.Status), string(in.Target), resultOf(err))
		return nil, err
	}

	changed, err := current.CheckTransition(in.Target)
	if err != nil {
		s.metrics.RecordTransition(ctx, string(current.Status), string(in.Target), resultOf(err))
		return nil, err
	}
	if !changed {
		s.metrics.RecordTransition(ctx, string(current.Status), string(in.Target), "noop")
		return current, nil
	}

	unlock := s.locks.lock(current.ID)
	defer unlock()

	updated, err := s.store.UpdateStatus(ctx, current.ID, in.Target, current.Version)
	if err != nil {
		s.metrics.RecordTransition(ctx, string(current.Status), string(in.Target), resultOf(err))
		if shared.HasCode(err, shared.CodeConcurrentModification) {
			logger.L(ctx).Info("Order transition lost a concurrent update",
				zap.String("order_id", current.ID.String()),
				zap.Int("expected_version", current.Version))
		}
		return nil, err
	}

	// The write is acknowledged; from here on the caller's cancellation no
	// longer applies.
	s.events.Publish(context.WithoutCancel(ctx),
		order.NewTransitionEvent(updated, current.Status, string(p.Role), in.OriginSession))
	s.metrics.RecordTransition(ctx, string(current.Status), string(updated.Status), "ok")

	logger.L(ctx).Info("Order status changed",
		zap.String("order_id", updated.ID.String()),
		zap.String("from", string(current.Status)),
		zap.String("to", string(updated.Status)),
		zap.Int("version", updated.Version),
		zap.String("role", string(p.Role)))
	return updated, nil
}

// MarkPrinted sets the print flag. It is allowed in every status, including
// terminal ones, and publishes no change event.
func (s *Service) MarkPrinted(ctx context.Context, p access.Principal, id uuid.UUID) error {
	if _, err := s.authorize(ctx, p, access.OperationWrite, access.ActionUpdate); err != nil {
		return err
	}
	current, err := s.store.GetByID(ctx, id, access.Unrestricted)
	if err != nil {
		return err
	}
	if err := s.guard.Authorize(p, access.OperationWrite, current.TenantID); err != nil {
		logger.Security(ctx, "Print flag update refused by tenancy guard",
			zap.String("order_id", id.String()),
			zap.String("role", string(p.Role)),
			zap.String("user_id", p.UserID))
		return err
	}
	return s.store.MarkPrinted(ctx, id)
}

// authorize runs the tenancy guard, then the permission matrix for module orders
func (s *Service) authorize(ctx context.Context, p access.Principal, op access.Operation, action access.Action) (access.Scope, error) {
	scope, err := s.guard.Narrow(p, op)
	if err != nil {
		logger.Security(ctx, "Principal lacks tenant context",
			zap.String("role", string(p.Role)),
			zap.String("user_id", p.UserID),
			zap.String("operation", string(op)))
		return access.Scope{}, err
	}
	if err := s.matrix.Require(p, access.ModuleOrders, action); err != nil {
		return access.Scope{}, err
	}
	return scope, nil
}

func resultOf(err error) string {
	var de *shared.DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return "error"
}
