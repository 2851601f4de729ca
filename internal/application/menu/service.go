package menu

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/hostly/ordercore/internal/domain/access"
	"github.com/hostly/ordercore/internal/domain/menu"
	"github.com/hostly/ordercore/internal/domain/shared"
	"github.com/hostly/ordercore/internal/infrastructure/logger"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// DishInput carries the editable fields of a dish
type DishInput struct {
	TenantID    *string
	Name        string
	Description string
	Category    string
	Price       decimal.Decimal
	Available   *bool
}

// ListInput filters a dish listing
type ListInput struct {
	Category      string
	AvailableOnly bool
	Page          shared.Page
}

// Service manages the menu slice of each tenant under module supply_chain
type Service struct {
	repo   menu.DishRepository
	matrix *access.Matrix
	guard  *access.Guard
}

// NewService creates a menu service
func NewService(repo menu.DishRepository, matrix *access.Matrix) *Service {
	return &Service{repo: repo, matrix: matrix, guard: access.NewGuard()}
}

// PublicList returns every available dish for the guest app
func (s *Service) PublicList(ctx context.Context, in ListInput) (*shared.Paginated[*menu.Dish], error) {
	in.AvailableOnly = true
	return s.list(ctx, access.Unrestricted, in)
}

// List returns the dishes visible to p
func (s *Service) List(ctx context.Context, p access.Principal, in ListInput) (*shared.Paginated[*menu.Dish], error) {
	scope, err := s.authorize(ctx, p, access.OperationRead, access.ActionRead)
	if err != nil {
		return nil, err
	}
	return s.list(ctx, scope, in)
}

func (s *Service) list(ctx context.Context, scope access.Scope, in ListInput) (*shared.Paginated[*menu.Dish], error) {
	page := in.Page.Normalize()
	dishes, total, err := s.repo.List(ctx, scope, menu.DishFilter{
		Category:      in.Category,
		AvailableOnly: in.AvailableOnly,
		Page:          page,
	})
	if err != nil {
		return nil, err
	}
	result := shared.NewPaginated(dishes, total, page)
	return &result, nil
}

// Get returns one dish visible to p
func (s *Service) Get(ctx context.Context, p access.Principal, id uuid.UUID) (*menu.Dish, error) {
	scope, err := s.authorize(ctx, p, access.OperationRead, access.ActionRead)
	if err != nil {
		return nil, err
	}
	return s.repo.FindByID(ctx, id, scope)
}

// Create adds a dish. A partner's dish always belongs to the partner's tenant.
func (s *Service) Create(ctx context.Context, p access.Principal, in DishInput) (*menu.Dish, error) {
	scope, err := s.authorize(ctx, p, access.OperationWrite, access.ActionCreate)
	if err != nil {
		return nil, err
	}
	tenant := in.TenantID
	if scope.Restricted {
		if tenant != nil && *tenant != scope.TenantID {
			logger.Security(ctx, "Dish creation for another tenant refused",
				zap.String("user_id", p.UserID),
				zap.String("principal_tenant_id", p.TenantID),
				zap.String("requested_tenant_id", *tenant))
			return nil, shared.NewDomainError(shared.CodeTenancyViolation, "Record belongs to another tenant")
		}
		tenant = scope.TenantPtr()
	}

	d, err := menu.NewDish(tenant, in.Name, in.Description, in.Category, in.Price)
	if err != nil {
		return nil, err
	}
	if in.Available != nil {
		d.SetAvailable(*in.Available)
	}
	if err := s.repo.Save(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

// Update edits a dish inside p's scope. Ownership never changes.
func (s *Service) Update(ctx context.Context, p access.Principal, id uuid.UUID, in DishInput) (*menu.Dish, error) {
	scope, err := s.authorize(ctx, p, access.OperationWrite, access.ActionUpdate)
	if err != nil {
		return nil, err
	}
	d, err := s.repo.FindByID(ctx, id, scope)
	if err != nil {
		return nil, err
	}
	if err := d.Update(in.Name, in.Description, in.Category, in.Price); err != nil {
		return nil, err
	}
	if in.Available != nil {
		d.SetAvailable(*in.Available)
	}
	d.Touch(time.Now().UTC())
	if err := s.repo.Save(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

// Delete removes a dish inside p's scope
func (s *Service) Delete(ctx context.Context, p access.Principal, id uuid.UUID) error {
	scope, err := s.authorize(ctx, p, access.OperationWrite, access.ActionDelete)
	if err != nil {
		return err
	}
	return s.repo.Delete(ctx, id, scope)
}

func (s *Service) authorize(ctx context.Context, p access.Principal, op access.Operation, action access.Action) (access.Scope, error) {
	scope, err := s.guard.Narrow(p, op)
	if err != nil {
		logger.Security(ctx, "Principal lacks tenant context",
			zap.String("role", string(p.Role)),
			zap.String("user_id", p.UserID),
			zap.String("operation", string(op)))
		return access.Scope{}, err
	}
	if err := s.matrix.Require(p, access.ModuleSupplyChain, action); err != nil {
		return access.Scope{}, err
	}
	return scope, nil
}
