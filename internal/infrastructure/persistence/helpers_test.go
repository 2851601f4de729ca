package persistence

import (
	"testing"

	"github.com/google/uuid"
	"github.com/hostly/ordercore/internal/domain/order"
	"github.com/hostly/ordercore/internal/infrastructure/persistence/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	// every pooled connection to :memory: would see its own empty database
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(models.All()...))
	return db
}

func strPtr(s string) *string { return &s }

func newTestOrder(t *testing.T, payment order.PaymentMethod, tenants ...*string) *order.Order {
	t.Helper()
	if len(tenants) == 0 {
		tenants = []*string{nil}
	}
	items := make([]order.Item, 0, len(tenants))
	for i, tenant := range tenants {
		item, err := order.NewItem(uuid.New(), []string{"Dish A", "Dish B", "Dish C"}[i%3], 2, decimal.NewFromInt(50), tenant)
		require.NoError(t, err)
		items = append(items, item)
	}
	o, err := order.NewOrder("room-101", payment, "", items)
	require.NoError(t, err)
	return o
}
