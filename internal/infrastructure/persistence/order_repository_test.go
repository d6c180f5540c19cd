package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/marvelstore/backend/internal/domain/shared"
	"github.com/marvelstore/backend/internal/domain/trade"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testAddress = trade.ShippingAddress{
	Street:  "177A Bleecker Street",
	City:    "New York",
	State:   "NY",
	ZipCode: "10012",
	Country: "USA",
}

func placeOrder(t *testing.T, repo *GormOrderRepository, userID uuid.UUID, createdOffset time.Duration, prices ...float64) *trade.Order {
	t.Helper()
	items := make([]trade.OrderItem, 0, len(prices))
	for i, p := range prices {
		item, err := trade.NewOrderItem(uuid.New(), "Item "+string(rune('A'+i)), "", decimal.NewFromFloat(p), 1, "", "")
		require.NoError(t, err)
		items = append(items, item)
	}
	order, err := trade.NewOrder(userID, items, testAddress, "PayPal")
	require.NoError(t, err)
	order.CreatedAt = time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC).Add(createdOffset)
	require.NoError(t, repo.Save(context.Background(), order))
	return order
}

func TestGormOrderRepository_SaveAndFind(t *testing.T) {
	repo := NewGormOrderRepository(newTestDatabase(t).DB)
	ctx := context.Background()
	userID := uuid.New()

	order := placeOrder(t, repo, userID, 0, 12.5, 7.25, 30)

	found, err := repo.FindByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, userID, found.UserID)
	require.Len(t, found.Items, 3)
	assert.Equal(t, "Item A", found.Items[0].Name)
	assert.Equal(t, "Item B", found.Items[1].Name)
	assert.Equal(t, "Item C", found.Items[2].Name)
	assert.True(t, found.ItemsPrice.Equal(decimal.NewFromFloat(49.75)))
	assert.True(t, found.TotalPrice.Equal(order.TotalPrice))
	assert.Equal(t, testAddress, found.ShippingAddress)
	assert.Equal(t, trade.OrderStatusPending, found.Status)
	assert.Nil(t, found.PaymentResult)

	_, err = repo.FindByID(ctx, uuid.New())
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestGormOrderRepository_SaveUpdatesStatusOnly(t *testing.T) {
	repo := NewGormOrderRepository(newTestDatabase(t).DB)
	ctx := context.Background()
	order := placeOrder(t, repo, uuid.New(), 0, 20)

	require.NoError(t, order.MarkPaid(trade.PaymentResult{ID: "PAY-1", Status: "COMPLETED"}))
	require.NoError(t, repo.Save(ctx, order))
	require.NoError(t, order.UpdateStatus(trade.OrderStatusShipped))
	require.NoError(t, repo.Save(ctx, order))

	found, err := repo.FindByID(ctx, order.ID)
	require.NoError(t, err)
	assert.True(t, found.IsPaid)
	require.NotNil(t, found.PaidAt)
	require.NotNil(t, found.PaymentResult)
	assert.Equal(t, "PAY-1", found.PaymentResult.ID)
	assert.Equal(t, trade.OrderStatusShipped, found.Status)
	assert.Len(t, found.Items, 1)
}

func TestGormOrderRepository_FindByUser(t *testing.T) {
	repo := NewGormOrderRepository(newTestDatabase(t).DB)
	ctx := context.Background()
	userID := uuid.New()

	older := placeOrder(t, repo, userID, 0, 10)
	newer := placeOrder(t, repo, userID, time.Hour, 20)
	placeOrder(t, repo, uuid.New(), 0, 30)

	orders, err := repo.FindByUser(ctx, userID)
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, newer.ID, orders[0].ID)
	assert.Equal(t, older.ID, orders[1].ID)
	assert.Len(t, orders[0].Items, 1)
}

func TestGormOrderRepository_FindAll(t *testing.T) {
	repo := NewGormOrderRepository(newTestDatabase(t).DB)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		placeOrder(t, repo, uuid.New(), time.Duration(i)*time.Minute, 10)
	}
	cancelled := placeOrder(t, repo, uuid.New(), time.Hour, 10)
	require.NoError(t, cancelled.UpdateStatus(trade.OrderStatusCancelled))
	require.NoError(t, repo.Save(ctx, cancelled))

	page, total, err := repo.FindAll(ctx, trade.OrderFilter{Page: 2, Limit: 4})
	require.NoError(t, err)
	assert.Equal(t, int64(6), total)
	assert.Len(t, page, 2)

	status := trade.OrderStatusCancelled
	filtered, total, err := repo.FindAll(ctx, trade.OrderFilter{Status: &status, Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, filtered, 1)
	assert.Equal(t, cancelled.ID, filtered[0].ID)
}

func TestGormOrderRepository_Stats(t *testing.T) {
	repo := NewGormOrderRepository(newTestDatabase(t).DB)
	ctx := context.Background()

	paid := placeOrder(t, repo, uuid.New(), 0, 100)
	require.NoError(t, paid.MarkPaid(trade.PaymentResult{ID: "PAY-2"}))
	require.NoError(t, repo.Save(ctx, paid))
	placeOrder(t, repo, uuid.New(), time.Minute, 10)

	stats, err := repo.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.TotalOrders)
	assert.Equal(t, int64(1), stats.PaidOrders)
	assert.True(t, stats.TotalRevenue.Equal(paid.TotalPrice), stats.TotalRevenue.String())
	assert.Equal(t, int64(1), stats.StatusCounts[trade.OrderStatusPending])
	assert.Equal(t, int64(1), stats.StatusCounts[trade.OrderStatusProcessing])
}

func TestGormOrderRepository_StatsEmpty(t *testing.T) {
	repo := NewGormOrderRepository(newTestDatabase(t).DB)

	stats, err := repo.Stats(context.Background())
	require.NoError(t, err)
	assert.Zero(t, stats.TotalOrders)
	assert.True(t, stats.TotalRevenue.IsZero())
	assert.Empty(t, stats.StatusCounts)
}
