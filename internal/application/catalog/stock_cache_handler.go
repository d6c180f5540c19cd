package catalog

import (
	"context"

	"github.com/marvelstore/backend/internal/domain/shared"
	"github.com/marvelstore/backend/internal/domain/trade"
	"go.uber.org/zap"
)

// CatalogInvalidator drops cached catalog reads. ProductService implements it.
type CatalogInvalidator interface {
	InvalidateCatalog(ctx context.Context) error
}

// StockCacheHandler drops cached catalog pages when orders move stock.
// Product mutations invalidate the cache directly in ProductService.
type StockCacheHandler struct {
	catalog CatalogInvalidator
	logger  *zap.Logger
}

// NewStockCacheHandler creates a new StockCacheHandler
func NewStockCacheHandler(catalog CatalogInvalidator, logger *zap.Logger) *StockCacheHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StockCacheHandler{catalog: catalog, logger: logger}
}

// EventTypes returns the order events that change product stock
func (h *StockCacheHandler) EventTypes() []string {
	return []string{
		trade.EventTypeOrderPlaced,
		trade.EventTypeOrderCancelled,
	}
}

// Handle invalidates every cached catalog entry
func (h *StockCacheHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	if h.catalog == nil {
		return nil
	}
	if err := h.catalog.InvalidateCatalog(ctx); err != nil {
		h.logger.Warn("Failed to invalidate catalog cache after stock change",
			zap.String("event_type", event.EventType()),
			zap.String("order_id", event.AggregateID().String()),
			zap.Error(err))
		return err
	}
	return nil
}

var (
	_ shared.EventHandler = (*StockCacheHandler)(nil)
	_ CatalogInvalidator  = (*ProductService)(nil)
)
