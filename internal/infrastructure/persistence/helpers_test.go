package persistence

import (
	"testing"
	"time"

	"github.com/marvelstore/backend/internal/domain/catalog"
	"github.com/marvelstore/backend/internal/infrastructure/config"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/logger"
)

// newTestDatabase opens a migrated in-memory SQLite database
func newTestDatabase(t *testing.T) *Database {
	t.Helper()
	db, err := NewDatabaseWithCustomLogger(&config.DatabaseConfig{
		Driver:     config.DriverSQLite,
		SQLitePath: ":memory:",
	}, logger.Default.LogMode(logger.Silent))
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate())
	t.Cleanup(func() { _ = db.Close() })
	return db
}

type productOpt func(*catalog.NewProductInput)

func withCategory(c catalog.Category) productOpt {
	return func(in *catalog.NewProductInput) { in.Category = c }
}

func withCharacter(c catalog.Character) productOpt {
	return func(in *catalog.NewProductInput) { in.Character = c }
}

func withDescription(d string) productOpt {
	return func(in *catalog.NewProductInput) { in.Description = d }
}

func withFeatured() productOpt {
	return func(in *catalog.NewProductInput) { in.Featured = true }
}

func withStock(n int) productOpt {
	return func(in *catalog.NewProductInput) { in.Stock = n }
}

// seedProduct saves a product. createdOffset spaces CreatedAt so that
// newest-first ordering is deterministic.
func seedProduct(t *testing.T, repo *GormProductRepository, name string, price float64, createdOffset time.Duration, opts ...productOpt) *catalog.Product {
	t.Helper()
	in := catalog.NewProductInput{
		Name:        name,
		Description: "Official Marvel merchandise",
		Price:       decimal.NewFromFloat(price),
		Category:    catalog.CategoryShirts,
		Images:      []catalog.ProductImage{catalog.NewProductImage("https://cdn.example.com/"+name+".png", "products/"+name)},
		Stock:       10,
		Sizes:       []catalog.Size{"M", "L"},
		Colors:      []catalog.Color{{Name: "Red", Hex: "#ff0000"}},
	}
	for _, opt := range opts {
		opt(&in)
	}
	p, err := catalog.NewProduct(in)
	require.NoError(t, err)
	p.CreatedAt = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).Add(createdOffset)
	p.UpdatedAt = p.CreatedAt
	require.NoError(t, repo.Save(t.Context(), p))
	return p
}
