package models

import (
	"github.com/hostly/ordercore/internal/domain/menu"
	"github.com/shopspring/decimal"
)

// DishModel is the persistence model for menu dishes
type DishModel struct {
	BaseModel
	TenantID    *string         `gorm:"type:varchar(64);index"`
	Name        string          `gorm:"type:varchar(200);not null"`
	Description string          `gorm:"type:text"`
	Category    string          `gorm:"type:varchar(64);index"`
	Price       decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Available   bool            `gorm:"not null"`
}

// TableName returns the table name for GORM
func (DishModel) TableName() string {
	return "dishes"
}

// ToDomain converts the model to a domain Dish
func (m *DishModel) ToDomain() *menu.Dish {
	return &menu.Dish{
		BaseEntity:  m.BaseModel.ToDomain(),
		TenantID:    copyString(m.TenantID),
		Name:        m.Name,
		Description: m.Description,
		Category:    m.Category,
		Price:       m.Price,
		Available:   m.Available,
	}
}

// DishModelFromDomain converts a domain Dish to a model
func DishModelFromDomain(d *menu.Dish) *DishModel {
	m := &DishModel{
		TenantID:    copyString(d.TenantID),
		Name:        d.Name,
		Description: d.Description,
		Category:    d.Category,
		Price:       d.Price,
		Available:   d.Available,
	}
	m.FromDomainBaseEntity(d.BaseEntity)
	return m
}
