package catalog

import (
	"context"

	"github.com/google/uuid"
)

// ProductRepository defines the interface for product persistence
type ProductRepository interface {
	// FindByID finds a product by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Product, error)

	// FindByIDs finds multiple products by their IDs. Unknown IDs are skipped.
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]Product, error)

	// Search returns one page of products matching the query and the total match count
	Search(ctx context.Context, query ProductQuery) ([]Product, int64, error)

	// FindFeatured finds active featured products, at most limit of them
	FindFeatured(ctx context.Context, limit int) ([]Product, error)

	// FindByCategory finds all active products in a category
	FindByCategory(ctx context.Context, category Category) ([]Product, error)

	// Save creates or updates a product
	Save(ctx context.Context, product *Product) error

	// Delete deletes a product
	Delete(ctx context.Context, id uuid.UUID) error

	// DecrementStock atomically removes qty units when enough stock is available
	DecrementStock(ctx context.Context, id uuid.UUID, qty int) error

	// IncrementStock atomically adds qty units back
	IncrementStock(ctx context.Context, id uuid.UUID, qty int) error

	// Count counts all products
	Count(ctx context.Context) (int64, error)
}
