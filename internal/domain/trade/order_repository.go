package trade

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderFilter narrows the admin order listing
type OrderFilter struct {
	Status *OrderStatus
	Page   int
	Limit  int
}

// Offset is (page-1)*limit
func (f OrderFilter) Offset() int {
	if f.Page < 1 {
		return 0
	}
	return (f.Page - 1) * f.Limit
}

// OrderStats aggregates order counts and revenue for the dashboard
type OrderStats struct {
	TotalOrders  int64
	PaidOrders   int64
	TotalRevenue decimal.Decimal
	StatusCounts map[OrderStatus]int64
}

// OrderRepository defines the interface for order persistence
type OrderRepository interface {
	// FindByID finds an order by ID, including its items
	FindByID(ctx context.Context, id uuid.UUID) (*Order, error)

	// FindByUser returns the user's orders, newest first
	FindByUser(ctx context.Context, userID uuid.UUID) ([]Order, error)

	// FindAll returns one page of orders and the total match count
	FindAll(ctx context.Context, filter OrderFilter) ([]Order, int64, error)

	// Save creates or updates an order with its items
	Save(ctx context.Context, order *Order) error

	// Stats computes order totals. Revenue counts paid orders only.
	Stats(ctx context.Context) (OrderStats, error)
}
