package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/hostly/ordercore/internal/domain/access"
	"github.com/hostly/ordercore/internal/domain/order"
	"github.com/hostly/ordercore/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestGormOrderStore_CreateAndGet(t *testing.T) {
	db := setupTestDB(t)
	store := NewGormOrderStore(db, nil)
	ctx := context.Background()

	o := newTestOrder(t, order.PaymentCard, strPtr("p1"), strPtr("p1"), strPtr("p1"))
	require.NoError(t, store.Create(ctx, o))

	t.Run("round trips items in insertion order", func(t *testing.T) {
		got, err := store.GetByID(ctx, o.ID, access.Unrestricted)
		require.NoError(t, err)
		assert.Equal(t, o.ID, got.ID)
		assert.Equal(t, 1, got.Version)
		assert.Equal(t, order.StatusPending, got.Status)
		require.Len(t, got.Items, 3)
		assert.Equal(t, []string{"Dish A", "Dish B", "Dish C"},
			[]string{got.Items[0].Name, got.Items[1].Name, got.Items[2].Name})
		assert.True(t, got.TotalAmount.Equal(decimal.NewFromInt(300)))
		require.NotNil(t, got.TenantID)
		assert.Equal(t, "p1", *got.TenantID)
	})

	t.Run("total is recomputed from items at read time", func(t *testing.T) {
		require.NoError(t, db.Exec("UPDATE orders SET total_amount = 1 WHERE id = ?", o.ID).Error)
		got, err := store.GetByID(ctx, o.ID, access.Unrestricted)
		require.NoError(t, err)
		assert.True(t, got.TotalAmount.Equal(decimal.NewFromInt(300)))
	})

	t.Run("tenant scope hides other tenants", func(t *testing.T) {
		_, err := store.GetByID(ctx, o.ID, access.Scope{Restricted: true, TenantID: "p2"})
		assert.ErrorIs(t, err, shared.ErrNotFound)

		got, err := store.GetByID(ctx, o.ID, access.Scope{Restricted: true, TenantID: "p1"})
		require.NoError(t, err)
		assert.Equal(t, o.ID, got.ID)
	})

	t.Run("unknown id", func(t *testing.T) {
		_, err := store.GetByID(ctx, uuid.New(), access.Unrestricted)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestGormOrderStore_UpdateStatus(t *testing.T) {
	db := setupTestDB(t)
	store := NewGormOrderStore(db, nil)
	ctx := context.Background()

	o := newTestOrder(t, order.PaymentCard)
	require.NoError(t, store.Create(ctx, o))

	updated, err := store.UpdateStatus(ctx, o.ID, order.StatusPreparing, 1)
	require.NoError(t, err)
	assert.Equal(t, order.StatusPreparing, updated.Status)
	assert.Equal(t, 2, updated.Version)
	assert.False(t, updated.UpdatedAt.Before(o.UpdatedAt))

	t.Run("stale version loses", func(t *testing.T) {
		_, err := store.UpdateStatus(ctx, o.ID, order.StatusCancelled, 1)
		require.Error(t, err)
		assert.True(t, shared.HasCode(err, shared.CodeConcurrentModification))

		got, err := store.GetByID(ctx, o.ID, access.Unrestricted)
		require.NoError(t, err)
		assert.Equal(t, order.StatusPreparing, got.Status)
		assert.Equal(t, 2, got.Version)
	})

	t.Run("missing order", func(t *testing.T) {
		_, err := store.UpdateStatus(ctx, uuid.New(), order.StatusCancelled, 1)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("cancelled context is not committed", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		_, err := store.UpdateStatus(cctx, o.ID, order.StatusReadyForDelivery, 2)
		require.Error(t, err)

		got, err := store.GetByID(ctx, o.ID, access.Unrestricted)
		require.NoError(t, err)
		assert.Equal(t, 2, got.Version)
	})
}

func TestGormOrderStore_List(t *testing.T) {
	db := setupTestDB(t)
	store := NewGormOrderStore(db, nil)
	ctx := context.Background()

	house := newTestOrder(t, order.PaymentCard)
	p1 := newTestOrder(t, order.PaymentCash, strPtr("p1"))
	p2 := newTestOrder(t, order.PaymentCard, strPtr("p2"))
	p1.CreatedAt = p1.CreatedAt.Add(time.Second)
	p2.CreatedAt = p2.CreatedAt.Add(2 * time.Second)
	for _, o := range []*order.Order{house, p1, p2} {
		require.NoError(t, store.Create(ctx, o))
	}

	t.Run("unrestricted sees everything newest first", func(t *testing.T) {
		orders, total, err := store.List(ctx, access.Unrestricted, order.ListFilter{})
		require.NoError(t, err)
		assert.Equal(t, int64(3), total)
		require.Len(t, orders, 3)
		assert.Equal(t, p2.ID, orders[0].ID)
		assert.Len(t, orders[0].Items, 1)
	})

	t.Run("partner scope", func(t *testing.T) {
		orders, total, err := store.List(ctx, access.Scope{Restricted: true, TenantID: "p1"}, order.ListFilter{})
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		assert.Equal(t, p1.ID, orders[0].ID)
	})

	t.Run("status filter and paging", func(t *testing.T) {
		status := order.StatusPending
		orders, total, err := store.List(ctx, access.Unrestricted, order.ListFilter{Status: &status, Page: shared.Page{Limit: 1}})
		require.NoError(t, err)
		assert.Equal(t, int64(2), total)
		assert.Len(t, orders, 1)
	})
}

func TestGormOrderStore_MarkPrinted(t *testing.T) {
	db := setupTestDB(t)
	store := NewGormOrderStore(db, nil)
	ctx := context.Background()

	o := newTestOrder(t, order.PaymentCard)
	require.NoError(t, store.Create(ctx, o))

	require.NoError(t, store.MarkPrinted(ctx, o.ID))
	got, err := store.GetByID(ctx, o.ID, access.Unrestricted)
	require.NoError(t, err)
	assert.True(t, got.Printed)
	assert.Equal(t, 1, got.Version)

	assert.ErrorIs(t, store.MarkPrinted(ctx, uuid.New()), shared.ErrNotFound)
}

func TestGormOrderStore_SubscribeToChanges(t *testing.T) {
	db := setupTestDB(t)
	feed := NewChangeFeed(8, zap.NewNop())
	store := NewGormOrderStore(db, feed)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changes, err := store.SubscribeToChanges(ctx, OrdersTable)
	require.NoError(t, err)

	o := newTestOrder(t, order.PaymentCard)
	require.NoError(t, store.Create(context.Background(), o))
	_, err = store.UpdateStatus(context.Background(), o.ID, order.StatusConfirmed, 1)
	require.NoError(t, err)

	first := <-changes
	assert.Equal(t, order.ChangeInsert, first.Type)
	assert.Equal(t, o.ID, first.Row.ID)
	second := <-changes
	assert.Equal(t, order.ChangeUpdate, second.Type)
	assert.Equal(t, order.StatusConfirmed, second.Row.Status)

	cancel()
	_, open := <-changes
	for open {
		_, open = <-changes
	}

	_, err = store.SubscribeToChanges(context.Background(), "dishes")
	assert.Error(t, err)
}
