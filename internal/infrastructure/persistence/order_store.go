package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hostly/ordercore/internal/domain/access"
	"github.com/hostly/ordercore/internal/domain/order"
	"github.com/hostly/ordercore/internal/domain/shared"
	"github.com/hostly/ordercore/internal/infrastructure/persistence/models"
	"github.com/hostly/ordercore/internal/infrastructure/persistence/tenant"
	"gorm.io/gorm"
)

// OrdersTable is the table name reported on the change feed
const OrdersTable = "orders"

// GormOrderStore implements order.Store using GORM
type GormOrderStore struct {
	db   *gorm.DB
	feed *ChangeFeed
}

// NewGormOrderStore creates a new GormOrderStore
func NewGormOrderStore(db *gorm.DB, feed *ChangeFeed) *GormOrderStore {
	return &GormOrderStore{db: db, feed: feed}
}

func preloadItems(db *gorm.DB) *gorm.DB {
	return db.Order("position ASC")
}

// GetByID finds an order by ID inside scope
func (s *GormOrderStore) GetByID(ctx context.Context, id uuid.UUID, scope access.Scope) (*order.Order, error) {
	var m models.OrderModel
	if err := s.db.WithContext(ctx).
		Preload("Items", preloadItems).
		Scopes(tenant.Apply(scope)).
		Where("id = ?", id).
		First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, fmt.Errorf("load order %s: %w", id, err)
	}
	return m.ToDomain(), nil
}

// List returns orders inside scope, newest first
func (s *GormOrderStore) List(ctx context.Context, scope access.Scope, filter order.ListFilter) ([]*order.Order, int64, error) {
	page := filter.Page.Normalize()
	query := s.db.WithContext(ctx).Model(&models.OrderModel{}).Scopes(tenant.Apply(scope))
	if filter.Status != nil {
		query = query.Where("status = ?", string(*filter.Status))
	}
	if filter.LocationID != "" {
		query = query.Where("location_id = ?", filter.LocationID)
	}
	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count orders: %w", err)
	}

	var rows []models.OrderModel
	if err := query.
		Preload("Items", preloadItems).
		Order("created_at DESC").
		Limit(page.Limit).
		Offset(page.Offset).
		Find(&rows).Error; err != nil {
		return nil, 0, fmt.Errorf("list orders: %w", err)
	}

	orders := make([]*order.Order, len(rows))
	for i := range rows {
		orders[i] = rows[i].ToDomain()
	}
	return orders, total, nil
}

// Create inserts the order and its items in one transaction
func (s *GormOrderStore) Create(ctx context.Context, o *order.Order) error {
	m := models.OrderModelFromDomain(o)
	if err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(m).Error
	}); err != nil {
		return fmt.Errorf("create order: %w", err)
	}
	s.emit(order.ChangeInsert, m.ToDomain())
	return nil
}

// UpdateStatus performs a version-conditioned status write. Exactly one of any
// set of writers holding the same expectedVersion succeeds.
func (s *GormOrderStore) UpdateStatus(ctx context.Context, id uuid.UUID, newStatus order.Status, expectedVersion int) (*order.Order, error) {
	result := s.db.WithContext(ctx).
		Model(&models.OrderModel{}).
		Where("id = ? AND version = ?", id, expectedVersion).
		Updates(map[string]any{
			"status":     string(newStatus),
			"version":    gorm.Expr("version + 1"),
			"updated_at": time.Now().UTC(),
		})
	if result.Error != nil {
		return nil, fmt.Errorf("update order status: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		var count int64
		if err := s.db.WithContext(ctx).Model(&models.OrderModel{}).Where("id = ?", id).Count(&count).Error; err != nil {
			return nil, fmt.Errorf("check order existence: %w", err)
		}
		if count == 0 {
			return nil, shared.ErrNotFound
		}
		return nil, shared.ErrConcurrentModification.WithDetail("expected_version", expectedVersion)
	}

	updated, err := s.GetByID(ctx, id, access.Unrestricted)
	if err != nil {
		return nil, err
	}
	s.emit(order.ChangeUpdate, updated)
	return updated, nil
}

// MarkPrinted sets the print flag. Status and version are left alone.
func (s *GormOrderStore) MarkPrinted(ctx context.Context, id uuid.UUID) error {
	result := s.db.WithContext(ctx).
		Model(&models.OrderModel{}).
		Where("id = ?", id).
		UpdateColumn("printed", true)
	if result.Error != nil {
		return fmt.Errorf("mark order printed: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	if s.feed != nil {
		if updated, err := s.GetByID(ctx, id, access.Unrestricted); err == nil {
			s.emit(order.ChangeUpdate, updated)
		}
	}
	return nil
}

// SubscribeToChanges streams row changes for table until ctx ends
func (s *GormOrderStore) SubscribeToChanges(ctx context.Context, table string) (<-chan order.RowChange, error) {
	if s.feed == nil {
		return nil, errors.New("change feed not configured")
	}
	if table != OrdersTable {
		return nil, shared.NewDomainErrorf(shared.CodeInvalidInput, "no change feed for table %q", table)
	}
	return s.feed.Subscribe(ctx, table), nil
}

func (s *GormOrderStore) emit(t order.ChangeType, row *order.Order) {
	if s.feed == nil {
		return
	}
	s.feed.Emit(order.RowChange{Type: t, Table: OrdersTable, Row: row})
}
