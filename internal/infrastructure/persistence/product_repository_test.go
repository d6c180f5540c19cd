package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/marvelstore/backend/internal/domain/catalog"
	"github.com/marvelstore/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func prices(products []catalog.Product) []float64 {
	out := make([]float64, len(products))
	for i, p := range products {
		out[i] = p.Price.InexactFloat64()
	}
	return out
}

func TestGormProductRepository_SaveAndFind(t *testing.T) {
	repo := NewGormProductRepository(newTestDatabase(t).DB)
	ctx := context.Background()
	original := decimal.NewFromFloat(39.99)

	p := seedProduct(t, repo, "Iron Man Tee", 29.99, 0, withCharacter(catalog.CharacterIronMan))
	p.OriginalPrice = &original
	require.NoError(t, repo.Save(ctx, p))

	found, err := repo.FindByID(ctx, p.ID)

	require.NoError(t, err)
	assert.Equal(t, "Iron Man Tee", found.Name)
	assert.True(t, found.Price.Equal(decimal.NewFromFloat(29.99)))
	require.NotNil(t, found.OriginalPrice)
	assert.True(t, found.OriginalPrice.Equal(original))
	assert.Equal(t, catalog.CharacterIronMan, found.Character)
	require.Len(t, found.Images, 1)
	assert.Equal(t, p.Images[0].ID, found.Images[0].ID)
	assert.Equal(t, "products/Iron Man Tee", found.Images[0].PublicID)
	assert.Equal(t, []catalog.Size{"M", "L"}, found.Sizes)
	assert.Equal(t, "#ff0000", found.Colors[0].Hex)
	assert.True(t, found.IsActive)
	assert.Equal(t, 25, found.DiscountPercent())

	_, err = repo.FindByID(ctx, uuid.New())
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestGormProductRepository_Search_HoodiesPriceLow(t *testing.T) {
	repo := NewGormProductRepository(newTestDatabase(t).DB)
	ctx := context.Background()

	for i, price := range []float64{10, 30, 20, 40, 15} {
		seedProduct(t, repo, "Hoodie", price, time.Duration(i)*time.Hour, withCategory(catalog.CategoryHoodies))
	}
	seedProduct(t, repo, "Cap", 5, 0, withCategory(catalog.CategoryCaps))

	query := catalog.ProductQuery{
		Category: catalog.CategoryHoodies,
		Sort:     catalog.SortPriceLow,
		Page:     1,
		Limit:    2,
	}
	products, total, err := repo.Search(ctx, query)

	require.NoError(t, err)
	assert.Equal(t, []float64{10, 15}, prices(products))
	assert.Equal(t, int64(5), total)
	assert.Equal(t, 3, query.Normalize().Pages(total))

	query.Page = 3
	products, _, err = repo.Search(ctx, query)
	require.NoError(t, err)
	assert.Equal(t, []float64{40}, prices(products))
}

func TestGormProductRepository_Search_Sorting(t *testing.T) {
	repo := NewGormProductRepository(newTestDatabase(t).DB)
	ctx := context.Background()

	seedProduct(t, repo, "Old", 25, 0)
	seedProduct(t, repo, "Middle", 5, time.Hour)
	seedProduct(t, repo, "New", 15, 2*time.Hour)

	high, _, err := repo.Search(ctx, catalog.ProductQuery{Sort: catalog.SortPriceHigh})
	require.NoError(t, err)
	assert.Equal(t, []float64{25, 15, 5}, prices(high))

	newest, _, err := repo.Search(ctx, catalog.ProductQuery{Sort: "bogus"})
	require.NoError(t, err)
	assert.Equal(t, "New", newest[0].Name)
	assert.Equal(t, "Old", newest[2].Name)
}

func TestGormProductRepository_Search_Filters(t *testing.T) {
	repo := NewGormProductRepository(newTestDatabase(t).DB)
	ctx := context.Background()

	seedProduct(t, repo, "Spider-Man Hoodie", 45, 0, withCategory(catalog.CategoryHoodies), withCharacter(catalog.CharacterSpiderMan), withFeatured())
	seedProduct(t, repo, "Thor Cap", 20, time.Hour, withCategory(catalog.CategoryCaps), withCharacter(catalog.CharacterThor),
		withDescription("Forged in the heart of a dying STAR"))
	hidden := seedProduct(t, repo, "Retired Hulk Tee", 15, 2*time.Hour, withCharacter(catalog.CharacterHulk))
	hidden.IsActive = false
	require.NoError(t, repo.Save(ctx, hidden))

	featured := true
	minPrice := decimal.NewFromInt(18)
	maxPrice := decimal.NewFromInt(30)

	tests := []struct {
		name  string
		query catalog.ProductQuery
		want  []string
	}{
		{"inactive excluded", catalog.ProductQuery{}, []string{"Thor Cap", "Spider-Man Hoodie"}},
		{"character", catalog.ProductQuery{Character: catalog.CharacterSpiderMan}, []string{"Spider-Man Hoodie"}},
		{"featured", catalog.ProductQuery{Featured: &featured}, []string{"Spider-Man Hoodie"}},
		{"price range", catalog.ProductQuery{MinPrice: &minPrice, MaxPrice: &maxPrice}, []string{"Thor Cap"}},
		{"search name case-insensitive", catalog.ProductQuery{Search: "spider"}, []string{"Spider-Man Hoodie"}},
		{"search description", catalog.ProductQuery{Search: "dying star"}, []string{"Thor Cap"}},
		{"search wildcard is literal", catalog.ProductQuery{Search: "%"}, []string{}},
		{"include inactive", catalog.ProductQuery{Character: catalog.CharacterHulk, IncludeInactive: true}, []string{"Retired Hulk Tee"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			products, total, err := repo.Search(ctx, tt.query)
			require.NoError(t, err)
			names := make([]string, len(products))
			for i, p := range products {
				names[i] = p.Name
			}
			assert.Equal(t, tt.want, names)
			assert.Equal(t, int64(len(tt.want)), total)
		})
	}
}

func TestGormProductRepository_FeaturedAndCategory(t *testing.T) {
	repo := NewGormProductRepository(newTestDatabase(t).DB)
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		seedProduct(t, repo, "Featured Pen", 3, time.Duration(i)*time.Minute, withCategory(catalog.CategoryPens), withFeatured())
	}
	seedProduct(t, repo, "Plain Bag", 30, 0, withCategory(catalog.CategoryBags))

	featured, err := repo.FindFeatured(ctx, catalog.FeaturedLimit)
	require.NoError(t, err)
	assert.Len(t, featured, 8)

	bags, err := repo.FindByCategory(ctx, catalog.CategoryBags)
	require.NoError(t, err)
	require.Len(t, bags, 1)
	assert.Equal(t, "Plain Bag", bags[0].Name)

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(11), count)
}

func TestGormProductRepository_FindByIDs(t *testing.T) {
	repo := NewGormProductRepository(newTestDatabase(t).DB)
	ctx := context.Background()
	a := seedProduct(t, repo, "A", 1, 0)
	b := seedProduct(t, repo, "B", 2, 0)

	found, err := repo.FindByIDs(ctx, []uuid.UUID{a.ID, b.ID, uuid.New()})
	require.NoError(t, err)
	assert.Len(t, found, 2)

	none, err := repo.FindByIDs(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestGormProductRepository_Stock(t *testing.T) {
	repo := NewGormProductRepository(newTestDatabase(t).DB)
	ctx := context.Background()
	p := seedProduct(t, repo, "Vibranium Shield", 99, 0, withStock(3))

	require.NoError(t, repo.DecrementStock(ctx, p.ID, 2))
	assert.ErrorIs(t, repo.DecrementStock(ctx, p.ID, 2), shared.ErrInsufficientStock)
	assert.ErrorIs(t, repo.DecrementStock(ctx, uuid.New(), 1), shared.ErrNotFound)

	require.NoError(t, repo.IncrementStock(ctx, p.ID, 4))
	assert.ErrorIs(t, repo.IncrementStock(ctx, uuid.New(), 1), shared.ErrNotFound)

	found, err := repo.FindByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, found.Stock)
}

func TestGormProductRepository_Delete(t *testing.T) {
	repo := NewGormProductRepository(newTestDatabase(t).DB)
	ctx := context.Background()
	p := seedProduct(t, repo, "Tesseract Lamp", 49, 0)

	require.NoError(t, repo.Delete(ctx, p.ID))
	_, err := repo.FindByID(ctx, p.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, p.ID), shared.ErrNotFound)
}

func TestProductOrderClause(t *testing.T) {
	assert.Equal(t, "price ASC, id ASC", ProductOrderClause(catalog.SortPriceLow.Order()))
	assert.Equal(t, "price DESC, id ASC", ProductOrderClause(catalog.SortPriceHigh.Order()))
	assert.Equal(t, "rating DESC, id ASC", ProductOrderClause(catalog.SortRating.Order()))
	assert.Equal(t, "created_at DESC, id ASC", ProductOrderClause(catalog.SortOrder{Field: "name; DROP TABLE products"}))
}
