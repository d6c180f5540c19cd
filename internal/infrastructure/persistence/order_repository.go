package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/marvelstore/backend/internal/domain/shared"
	"github.com/marvelstore/backend/internal/domain/trade"
	"github.com/marvelstore/backend/internal/infrastructure/persistence/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormOrderRepository implements trade.OrderRepository using GORM
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository creates a new GormOrderRepository
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

func preloadItems(db *gorm.DB) *gorm.DB {
	return db.Preload("Items", func(tx *gorm.DB) *gorm.DB {
		return tx.Order("position ASC")
	})
}

// FindByID finds an order by ID, including its items
func (r *GormOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*trade.Order, error) {
	var model models.OrderModel
	if err := preloadItems(r.db.WithContext(ctx)).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByUser returns the user's orders, newest first
func (r *GormOrderRepository) FindByUser(ctx context.Context, userID uuid.UUID) ([]trade.Order, error) {
	var rows []models.OrderModel
	if err := preloadItems(r.db.WithContext(ctx)).
		Where("user_id = ?", userID).
		Order("created_at DESC, id ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return toDomainOrders(rows), nil
}

// FindAll returns one page of orders and the total match count
func (r *GormOrderRepository) FindAll(ctx context.Context, filter trade.OrderFilter) ([]trade.Order, int64, error) {
	scope := func(db *gorm.DB) *gorm.DB {
		if filter.Status != nil {
			db = db.Where("status = ?", string(*filter.Status))
		}
		return db
	}

	var total int64
	if err := r.db.WithContext(ctx).Model(&models.OrderModel{}).Scopes(scope).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.OrderModel
	if err := preloadItems(r.db.WithContext(ctx)).
		Scopes(scope).
		Order("created_at DESC, id ASC").
		Offset(filter.Offset()).
		Limit(filter.Limit).
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return toDomainOrders(rows), total, nil
}

// Save creates or updates an order. Lines are written once; they never
// change after placement.
func (r *GormOrderRepository) Save(ctx context.Context, order *trade.Order) error {
	model := models.OrderModelFromDomain(order)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Save(model).Error; err != nil {
			return err
		}
		if len(model.Items) == 0 {
			return nil
		}
		return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&model.Items).Error
	})
}

// Stats computes order totals. Revenue counts paid orders only.
func (r *GormOrderRepository) Stats(ctx context.Context) (trade.OrderStats, error) {
	stats := trade.OrderStats{
		TotalRevenue: decimal.Zero,
		StatusCounts: make(map[trade.OrderStatus]int64),
	}
	if err := r.db.WithContext(ctx).Model(&models.OrderModel{}).Count(&stats.TotalOrders).Error; err != nil {
		return stats, err
	}
	if err := r.db.WithContext(ctx).Model(&models.OrderModel{}).
		Where("is_paid = ?", true).
		Count(&stats.PaidOrders).Error; err != nil {
		return stats, err
	}

	var revenue struct {
		Revenue decimal.Decimal
	}
	if err := r.db.WithContext(ctx).Model(&models.OrderModel{}).
		Where("is_paid = ?", true).
		Select("COALESCE(SUM(total_price), 0) AS revenue").
		Scan(&revenue).Error; err != nil {
		return stats, err
	}
	stats.TotalRevenue = revenue.Revenue.Round(2)

	var rows []struct {
		Status string
		Count  int64
	}
	if err := r.db.WithContext(ctx).Model(&models.OrderModel{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error; err != nil {
		return stats, err
	}
	for _, row := range rows {
		stats.StatusCounts[trade.OrderStatus(row.Status)] = row.Count
	}

	return stats, nil
}

func toDomainOrders(rows []models.OrderModel) []trade.Order {
	orders := make([]trade.Order, len(rows))
	for i := range rows {
		orders[i] = *rows[i].ToDomain()
	}
	return orders
}
