package models

import (
	"github.com/google/uuid"
	"github.com/hostly/ordercore/internal/domain/order"
	"github.com/hostly/ordercore/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// OrderModel is the persistence model for the Order aggregate
type OrderModel struct {
	BaseModel
	Version       int              `gorm:"not null;default:1"`
	LocationID    string           `gorm:"type:varchar(64);not null;index"`
	TotalAmount   decimal.Decimal  `gorm:"type:decimal(18,2);not null"`
	Status        string           `gorm:"type:varchar(32);not null;index"`
	PaymentMethod string           `gorm:"type:varchar(32);not null"`
	PaymentProof  string           `gorm:"type:varchar(255)"`
	TenantID      *string          `gorm:"type:varchar(64);index"`
	Printed       bool             `gorm:"not null;default:false"`
	Items         []OrderItemModel `gorm:"foreignKey:OrderID;references:ID"`
}

// TableName returns the table name for GORM
func (OrderModel) TableName() string {
	return "orders"
}

// OrderItemModel is one order line. Position keeps the kitchen preparation order.
type OrderItemModel struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey"`
	OrderID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	Position  int             `gorm:"not null"`
	DishID    uuid.UUID       `gorm:"type:uuid;not null"`
	Name      string          `gorm:"type:varchar(200);not null"`
	Quantity  int             `gorm:"not null"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	TenantID  *string         `gorm:"type:varchar(64)"`
}

// TableName returns the table name for GORM
func (OrderItemModel) TableName() string {
	return "order_items"
}

// ToDomain converts the model to the domain aggregate. The total is
// recomputed from the items rather than trusted from the row.
func (m *OrderModel) ToDomain() *order.Order {
	items := make([]order.Item, len(m.Items))
	for i, it := range m.Items {
		items[i] = order.Item{
			DishID:    it.DishID,
			Name:      it.Name,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
			TenantID:  copyString(it.TenantID),
		}
	}
	o := &order.Order{
		BaseAggregateRoot: shared.BaseAggregateRoot{
			BaseEntity: m.BaseModel.ToDomain(),
			Version:    m.Version,
		},
		LocationID:    m.LocationID,
		Items:         items,
		Status:        order.Status(m.Status),
		PaymentMethod: order.PaymentMethod(m.PaymentMethod),
		PaymentProof:  m.PaymentProof,
		Printed:       m.Printed,
	}
	o.Recalculate()
	return o
}

// OrderModelFromDomain converts the domain aggregate to a model
func OrderModelFromDomain(o *order.Order) *OrderModel {
	m := &OrderModel{
		Version:       o.Version,
		LocationID:    o.LocationID,
		TotalAmount:   o.TotalAmount,
		Status:        string(o.Status),
		PaymentMethod: string(o.PaymentMethod),
		PaymentProof:  o.PaymentProof,
		TenantID:      copyString(o.TenantID),
		Printed:       o.Printed,
		Items:         make([]OrderItemModel, len(o.Items)),
	}
	m.FromDomainBaseEntity(o.BaseEntity)
	for i, it := range o.Items {
		m.Items[i] = OrderItemModel{
			ID:        uuid.New(),
			OrderID:   o.ID,
			Position:  i,
			DishID:    it.DishID,
			Name:      it.Name,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
			TenantID:  copyString(it.TenantID),
		}
	}
	return m
}
