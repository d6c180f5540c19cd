package catalog

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/marvelstore/backend/internal/domain/catalog"
	"github.com/marvelstore/backend/internal/domain/shared"
	"github.com/marvelstore/backend/internal/domain/trade"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// ============================================================================
// Mocks
// ============================================================================

// MockProductRepository is a mock implementation of catalog.ProductRepository
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]catalog.Product, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]catalog.Product), args.Error(1)
}

func (m *MockProductRepository) Search(ctx context.Context, query catalog.ProductQuery) ([]catalog.Product, int64, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]catalog.Product), args.Get(1).(int64), args.Error(2)
}

func (m *MockProductRepository) FindFeatured(ctx context.Context, limit int) ([]catalog.Product, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindByCategory(ctx context.Context, category catalog.Category) ([]catalog.Product, error) {
	args := m.Called(ctx, category)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]catalog.Product), args.Error(1)
}

func (m *MockProductRepository) Save(ctx context.Context, product *catalog.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockProductRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockProductRepository) DecrementStock(ctx context.Context, id uuid.UUID, qty int) error {
	args := m.Called(ctx, id, qty)
	return args.Error(0)
}

func (m *MockProductRepository) IncrementStock(ctx context.Context, id uuid.UUID, qty int) error {
	args := m.Called(ctx, id, qty)
	return args.Error(0)
}

func (m *MockProductRepository) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// MockMediaStorage is a mock implementation of MediaStorage
type MockMediaStorage struct {
	mock.Mock
}

func (m *MockMediaStorage) Upload(ctx context.Context, key, contentType string, body io.Reader, size int64) (string, error) {
	args := m.Called(ctx, key, contentType, body, size)
	return args.String(0), args.Error(1)
}

func (m *MockMediaStorage) Delete(ctx context.Context, publicID string) error {
	args := m.Called(ctx, publicID)
	return args.Error(0)
}

// MockProductCache is a mock implementation of ProductCache
type MockProductCache struct {
	mock.Mock
}

func (m *MockProductCache) Get(ctx context.Context, key string, dest any) (bool, error) {
	args := m.Called(ctx, key, dest)
	return args.Bool(0), args.Error(1)
}

func (m *MockProductCache) Set(ctx context.Context, key string, value any) error {
	args := m.Called(ctx, key, value)
	return args.Error(0)
}

func (m *MockProductCache) InvalidatePrefix(ctx context.Context, prefix string) error {
	args := m.Called(ctx, prefix)
	return args.Error(0)
}

// ============================================================================
// Helpers
// ============================================================================

func newTestProduct(t *testing.T, name string, price float64, images ...catalog.ProductImage) *catalog.Product {
	t.Helper()
	p, err := catalog.NewProduct(catalog.NewProductInput{
		Name:        name,
		Description: "Official merchandise",
		Price:       decimal.NewFromFloat(price),
		Category:    catalog.Category("hoodies"),
		Images:      images,
		Stock:       10,
	})
	require.NoError(t, err)
	p.ClearDomainEvents()
	return p
}

func imageFile(name string) UploadFile {
	data := []byte("fake-image-bytes")
	return UploadFile{
		Filename:    name,
		ContentType: "image/png",
		Size:        int64(len(data)),
		Body:        bytes.NewReader(data),
	}
}

func setupService() (*ProductService, *MockProductRepository, *MockMediaStorage) {
	repo := new(MockProductRepository)
	media := new(MockMediaStorage)
	return NewProductService(repo, media, nil, nil), repo, media
}

// ============================================================================
// Listing
// ============================================================================

func TestProductService_ListProducts(t *testing.T) {
	t.Run("hoodies sorted by price low, first page of two", func(t *testing.T) {
		svc, repo, _ := setupService()
		ctx := context.Background()

		cheapest := []catalog.Product{
			*newTestProduct(t, "Hoodie A", 10),
			*newTestProduct(t, "Hoodie E", 15),
		}
		repo.On("Search", ctx, mock.MatchedBy(func(q catalog.ProductQuery) bool {
			return q.Category == "hoodies" && q.Sort == catalog.SortPriceLow && q.Page == 1 && q.Limit == 2 && !q.IncludeInactive
		})).Return(cheapest, int64(5), nil)

		result, err := svc.ListProducts(ctx, ListProductsRequest{
			Category: "hoodies",
			Sort:     "price-low",
			Page:     1,
			Limit:    2,
		})

		require.NoError(t, err)
		require.Len(t, result.Products, 2)
		assert.Equal(t, 10.0, result.Products[0].Price)
		assert.Equal(t, 15.0, result.Products[1].Price)
		assert.Equal(t, 1, result.Page)
		assert.Equal(t, 3, result.Pages)
		assert.Equal(t, int64(5), result.Total)
		repo.AssertExpectations(t)
	})

	t.Run("defaults and empty result", func(t *testing.T) {
		svc, repo, _ := setupService()
		ctx := context.Background()

		repo.On("Search", ctx, mock.MatchedBy(func(q catalog.ProductQuery) bool {
			return q.Page == 1 && q.Limit == catalog.DefaultPageLimit && q.Sort == catalog.SortNewest
		})).Return([]catalog.Product{}, int64(0), nil)

		result, err := svc.ListProducts(ctx, ListProductsRequest{Sort: "bogus"})

		require.NoError(t, err)
		assert.Empty(t, result.Products)
		assert.Equal(t, 0, result.Pages)
		assert.Equal(t, int64(0), result.Total)
	})

	t.Run("invalid category", func(t *testing.T) {
		svc, repo, _ := setupService()

		_, err := svc.ListProducts(context.Background(), ListProductsRequest{Category: "capes"})

		require.Error(t, err)
		de, ok := shared.AsDomainError(err)
		require.True(t, ok)
		assert.Equal(t, "INVALID_CATEGORY", de.Code)
		repo.AssertNotCalled(t, "Search", mock.Anything, mock.Anything)
	})

	t.Run("cache hit skips repository", func(t *testing.T) {
		repo := new(MockProductRepository)
		cache := new(MockProductCache)
		svc := NewProductService(repo, new(MockMediaStorage), cache, nil)
		ctx := context.Background()

		cache.On("Get", ctx, mock.MatchedBy(func(k string) bool {
			return len(k) > len(listCachePrefix) && k[:len(listCachePrefix)] == listCachePrefix
		}), mock.Anything).Run(func(args mock.Arguments) {
			dest := args.Get(2).(*ListProductsResult)
			dest.Total = 42
			dest.Page = 1
		}).Return(true, nil)

		result, err := svc.ListProducts(ctx, ListProductsRequest{})

		require.NoError(t, err)
		assert.Equal(t, int64(42), result.Total)
		repo.AssertNotCalled(t, "Search", mock.Anything, mock.Anything)
	})

	t.Run("cache miss stores result", func(t *testing.T) {
		repo := new(MockProductRepository)
		cache := new(MockProductCache)
		svc := NewProductService(repo, new(MockMediaStorage), cache, nil)
		ctx := context.Background()

		cache.On("Get", ctx, mock.Anything, mock.Anything).Return(false, nil)
		cache.On("Set", ctx, mock.Anything, mock.Anything).Return(nil)
		repo.On("Search", ctx, mock.Anything).Return([]catalog.Product{*newTestProduct(t, "Hoodie", 30)}, int64(1), nil)

		result, err := svc.ListProducts(ctx, ListProductsRequest{})

		require.NoError(t, err)
		assert.Equal(t, int64(1), result.Total)
		cache.AssertCalled(t, "Set", ctx, mock.Anything, mock.Anything)
	})

	t.Run("invalidation during read skips cache write", func(t *testing.T) {
		repo := new(MockProductRepository)
		cache := new(MockProductCache)
		svc := NewProductService(repo, new(MockMediaStorage), cache, nil)
		ctx := context.Background()

		cache.On("Get", ctx, mock.Anything, mock.Anything).Return(false, nil)
		cache.On("InvalidatePrefix", ctx, ProductCachePrefix).Return(nil)
		repo.On("Search", ctx, mock.Anything).
			Run(func(mock.Arguments) { require.NoError(t, svc.InvalidateCatalog(ctx)) }).
			Return([]catalog.Product{*newTestProduct(t, "Hoodie", 30)}, int64(1), nil)

		result, err := svc.ListProducts(ctx, ListProductsRequest{})

		require.NoError(t, err)
		assert.Equal(t, int64(1), result.Total)
		cache.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("invalidation during write drops the entry", func(t *testing.T) {
		repo := new(MockProductRepository)
		cache := new(MockProductCache)
		svc := NewProductService(repo, new(MockMediaStorage), cache, nil)
		ctx := context.Background()
		isListKey := mock.MatchedBy(func(key string) bool { return strings.HasPrefix(key, listCachePrefix) })

		cache.On("Get", ctx, mock.Anything, mock.Anything).Return(false, nil)
		cache.On("InvalidatePrefix", ctx, mock.Anything).Return(nil)
		cache.On("Set", ctx, mock.Anything, mock.Anything).
			Run(func(mock.Arguments) { require.NoError(t, svc.InvalidateCatalog(ctx)) }).
			Return(nil)
		repo.On("Search", ctx, mock.Anything).Return([]catalog.Product{*newTestProduct(t, "Hoodie", 30)}, int64(1), nil)

		_, err := svc.ListProducts(ctx, ListProductsRequest{})

		require.NoError(t, err)
		cache.AssertCalled(t, "InvalidatePrefix", ctx, ProductCachePrefix)
		cache.AssertCalled(t, "InvalidatePrefix", ctx, isListKey)
	})
}

func TestProductService_GetProduct(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		svc, repo, _ := setupService()
		ctx := context.Background()
		p := newTestProduct(t, "Shield Mug", 12.99)
		repo.On("FindByID", ctx, p.ID).Return(p, nil)

		resp, err := svc.GetProduct(ctx, p.ID)

		require.NoError(t, err)
		assert.Equal(t, p.ID, resp.ID)
		assert.Equal(t, 12.99, resp.Price)
	})

	t.Run("not found", func(t *testing.T) {
		svc, repo, _ := setupService()
		ctx := context.Background()
		id := uuid.New()
		repo.On("FindByID", ctx, id).Return(nil, shared.ErrNotFound)

		_, err := svc.GetProduct(ctx, id)

		require.Error(t, err)
		assert.True(t, errors.Is(err, shared.ErrNotFound))
		assert.Equal(t, "Product not found", err.Error())
	})
}

func TestProductService_GetFeaturedAndCategory(t *testing.T) {
	svc, repo, _ := setupService()
	ctx := context.Background()

	repo.On("FindFeatured", ctx, catalog.FeaturedLimit).Return([]catalog.Product{*newTestProduct(t, "Featured", 20)}, nil)
	featured, err := svc.GetFeatured(ctx)
	require.NoError(t, err)
	assert.Len(t, featured, 1)

	repo.On("FindByCategory", ctx, catalog.Category("hoodies")).Return([]catalog.Product{}, nil)
	byCategory, err := svc.GetByCategory(ctx, "hoodies")
	require.NoError(t, err)
	assert.Empty(t, byCategory)

	_, err = svc.GetByCategory(ctx, "capes")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid category")
}

// ============================================================================
// Mutations
// ============================================================================

func TestProductService_CreateProduct(t *testing.T) {
	validReq := func() CreateProductRequest {
		return CreateProductRequest{
			Name:        "Iron Man Hoodie",
			Description: "Arc reactor print",
			Price:       decimal.NewFromFloat(49.99),
			Category:    "hoodies",
			Character:   "iron-man",
			Stock:       25,
			Sizes:       `["S","M","L"]`,
			Colors:      `[{"name":"Red","hex":"#ff0000"}]`,
		}
	}

	t.Run("uploads images and saves", func(t *testing.T) {
		svc, repo, media := setupService()
		ctx := context.Background()

		media.On("Upload", ctx, mock.AnythingOfType("string"), "image/png", mock.Anything, mock.AnythingOfType("int64")).
			Return("https://cdn.example.com/a.png", nil).Twice()
		repo.On("Save", ctx, mock.AnythingOfType("*catalog.Product")).Return(nil)

		resp, err := svc.CreateProduct(ctx, validReq(), []UploadFile{imageFile("front.png"), imageFile("back.png")})

		require.NoError(t, err)
		assert.Equal(t, "Iron Man Hoodie", resp.Name)
		assert.Len(t, resp.Images, 2)
		assert.NotEmpty(t, resp.Images[0].PublicID)
		assert.Equal(t, []string{"S", "M", "L"}, resp.Sizes)
		assert.Equal(t, "Red", resp.Colors[0].Name)
		assert.True(t, resp.IsActive)
		media.AssertNumberOfCalls(t, "Upload", 2)
		media.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})

	t.Run("malformed sizes rejected before upload", func(t *testing.T) {
		svc, _, media := setupService()
		req := validReq()
		req.Sizes = "S,M"

		_, err := svc.CreateProduct(context.Background(), req, []UploadFile{imageFile("a.png")})

		de, ok := shared.AsDomainError(err)
		require.True(t, ok)
		assert.Equal(t, "INVALID_SIZES", de.Code)
		media.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("malformed colors", func(t *testing.T) {
		svc, _, _ := setupService()
		req := validReq()
		req.Colors = "{"

		_, err := svc.CreateProduct(context.Background(), req, nil)

		de, ok := shared.AsDomainError(err)
		require.True(t, ok)
		assert.Equal(t, "INVALID_COLORS", de.Code)
	})

	t.Run("too many images", func(t *testing.T) {
		svc, _, _ := setupService()
		files := make([]UploadFile, 6)
		for i := range files {
			files[i] = imageFile("x.png")
		}

		_, err := svc.CreateProduct(context.Background(), validReq(), files)

		de, ok := shared.AsDomainError(err)
		require.True(t, ok)
		assert.Equal(t, "TOO_MANY_IMAGES", de.Code)
	})

	t.Run("non-image content type", func(t *testing.T) {
		svc, _, _ := setupService()
		f := imageFile("evil.svg")
		f.ContentType = "image/svg+xml"

		_, err := svc.CreateProduct(context.Background(), validReq(), []UploadFile{f})

		de, ok := shared.AsDomainError(err)
		require.True(t, ok)
		assert.Equal(t, "INVALID_IMAGE_TYPE", de.Code)
	})

	t.Run("invalid product evicts uploaded images", func(t *testing.T) {
		svc, repo, media := setupService()
		ctx := context.Background()
		req := validReq()
		req.Category = "capes"

		media.On("Upload", ctx, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return("https://cdn/x.png", nil)
		media.On("Delete", ctx, mock.AnythingOfType("string")).Return(nil)

		_, err := svc.CreateProduct(ctx, req, []UploadFile{imageFile("a.png")})

		require.Error(t, err)
		media.AssertNumberOfCalls(t, "Delete", 1)
		repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("save failure evicts uploaded images", func(t *testing.T) {
		svc, repo, media := setupService()
		ctx := context.Background()

		media.On("Upload", ctx, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return("https://cdn/x.png", nil)
		media.On("Delete", ctx, mock.AnythingOfType("string")).Return(nil)
		repo.On("Save", ctx, mock.Anything).Return(errors.New("db down"))

		_, err := svc.CreateProduct(ctx, validReq(), []UploadFile{imageFile("a.png"), imageFile("b.png")})

		require.Error(t, err)
		media.AssertNumberOfCalls(t, "Delete", 2)
	})

	t.Run("mutation invalidates cache", func(t *testing.T) {
		repo := new(MockProductRepository)
		cache := new(MockProductCache)
		svc := NewProductService(repo, new(MockMediaStorage), cache, nil)
		ctx := context.Background()

		repo.On("Save", ctx, mock.Anything).Return(nil)
		cache.On("InvalidatePrefix", ctx, ProductCachePrefix).Return(nil)

		_, err := svc.CreateProduct(ctx, validReq(), nil)

		require.NoError(t, err)
		cache.AssertCalled(t, "InvalidatePrefix", ctx, ProductCachePrefix)
	})
}

func TestProductService_UpdateProduct(t *testing.T) {
	t.Run("partial update appends images", func(t *testing.T) {
		svc, repo, media := setupService()
		ctx := context.Background()
		existing := catalog.NewProductImage("https://cdn/old.png", "old")
		p := newTestProduct(t, "Thor Cap", 20, existing)

		repo.On("FindByID", ctx, p.ID).Return(p, nil)
		repo.On("Save", ctx, p).Return(nil)
		media.On("Upload", ctx, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return("https://cdn/new.png", nil)

		empty := ""
		zero := 0
		featured := false
		resp, err := svc.UpdateProduct(ctx, p.ID, UpdateProductRequest{
			Name:     &empty,
			Stock:    &zero,
			Featured: &featured,
		}, []UploadFile{imageFile("new.png")})

		require.NoError(t, err)
		assert.Equal(t, "Thor Cap", resp.Name)
		assert.Equal(t, 0, resp.Stock)
		require.Len(t, resp.Images, 2)
		assert.Equal(t, "old", resp.Images[0].PublicID)
		assert.Equal(t, "https://cdn/new.png", resp.Images[1].URL)
	})

	t.Run("uploads append past the per-upload cap", func(t *testing.T) {
		svc, repo, media := setupService()
		ctx := context.Background()
		images := make([]catalog.ProductImage, 4)
		for i := range images {
			images[i] = catalog.NewProductImage("https://cdn/i.png", uuid.NewString())
		}
		p := newTestProduct(t, "Full Gallery", 20, images...)
		repo.On("FindByID", ctx, p.ID).Return(p, nil)
		repo.On("Save", ctx, p).Return(nil)
		media.On("Upload", ctx, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return("https://cdn/new.png", nil)

		resp, err := svc.UpdateProduct(ctx, p.ID, UpdateProductRequest{}, []UploadFile{imageFile("a.png"), imageFile("b.png")})

		require.NoError(t, err)
		assert.Len(t, resp.Images, 6)
		media.AssertNumberOfCalls(t, "Upload", 2)
	})

	t.Run("too many files in one upload", func(t *testing.T) {
		svc, repo, media := setupService()
		ctx := context.Background()
		p := newTestProduct(t, "Thor Cap", 20)
		repo.On("FindByID", ctx, p.ID).Return(p, nil)

		files := make([]UploadFile, 6)
		for i := range files {
			files[i] = imageFile("x.png")
		}
		_, err := svc.UpdateProduct(ctx, p.ID, UpdateProductRequest{}, files)

		de, ok := shared.AsDomainError(err)
		require.True(t, ok)
		assert.Equal(t, "TOO_MANY_IMAGES", de.Code)
		media.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("lowered cap does not block updates without files", func(t *testing.T) {
		svc, repo, _ := setupService()
		svc.SetConfig(ProductServiceConfig{MaxImages: 1, MaxImageSize: DefaultProductServiceConfig().MaxImageSize})
		ctx := context.Background()
		p := newTestProduct(t, "Thor Cap", 20,
			catalog.NewProductImage("https://cdn/1.png", "img-1"),
			catalog.NewProductImage("https://cdn/2.png", "img-2"),
		)
		repo.On("FindByID", ctx, p.ID).Return(p, nil)
		repo.On("Save", ctx, p).Return(nil)

		name := "Mjolnir Cap"
		resp, err := svc.UpdateProduct(ctx, p.ID, UpdateProductRequest{Name: &name}, nil)

		require.NoError(t, err)
		assert.Equal(t, "Mjolnir Cap", resp.Name)
		assert.Len(t, resp.Images, 2)
	})

	t.Run("negative price evicts new uploads", func(t *testing.T) {
		svc, repo, media := setupService()
		ctx := context.Background()
		p := newTestProduct(t, "Thor Cap", 20)

		repo.On("FindByID", ctx, p.ID).Return(p, nil)
		media.On("Upload", ctx, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return("https://cdn/new.png", nil)
		media.On("Delete", ctx, mock.Anything).Return(nil)

		negative := decimal.NewFromInt(-1)
		_, err := svc.UpdateProduct(ctx, p.ID, UpdateProductRequest{Price: &negative}, []UploadFile{imageFile("n.png")})

		require.Error(t, err)
		media.AssertNumberOfCalls(t, "Delete", 1)
		assert.True(t, p.Price.Equal(decimal.NewFromInt(20)))
	})
}

func TestProductService_DeleteProduct(t *testing.T) {
	t.Run("one eviction per hosted image then delete", func(t *testing.T) {
		svc, repo, media := setupService()
		ctx := context.Background()
		p := newTestProduct(t, "Hulk Fist", 35,
			catalog.NewProductImage("https://cdn/1.png", "img-1"),
			catalog.NewProductImage("https://cdn/2.png", "img-2"),
			catalog.NewProductImage("https://static/legacy.png", ""),
		)

		var calls []string
		repo.On("FindByID", ctx, p.ID).Return(p, nil)
		media.On("Delete", ctx, mock.AnythingOfType("string")).Run(func(args mock.Arguments) {
			calls = append(calls, "evict:"+args.String(1))
		}).Return(nil)
		repo.On("Delete", ctx, p.ID).Run(func(mock.Arguments) {
			calls = append(calls, "delete")
		}).Return(nil)

		err := svc.DeleteProduct(ctx, p.ID)

		require.NoError(t, err)
		assert.Equal(t, []string{"evict:img-1", "evict:img-2", "delete"}, calls)
		media.AssertNumberOfCalls(t, "Delete", 2)
	})

	t.Run("eviction failure keeps product", func(t *testing.T) {
		svc, repo, media := setupService()
		ctx := context.Background()
		p := newTestProduct(t, "Hulk Fist", 35,
			catalog.NewProductImage("https://cdn/1.png", "img-1"),
			catalog.NewProductImage("https://cdn/2.png", "img-2"),
		)

		repo.On("FindByID", ctx, p.ID).Return(p, nil)
		media.On("Delete", ctx, "img-1").Return(nil)
		media.On("Delete", ctx, "img-2").Return(errors.New("media host timeout"))
		repo.On("Save", ctx, p).Return(nil)

		err := svc.DeleteProduct(ctx, p.ID)

		de, ok := shared.AsDomainError(err)
		require.True(t, ok)
		assert.Equal(t, "MEDIA_EVICTION_FAILED", de.Code)
		repo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
		require.Len(t, p.Images, 1)
		assert.Equal(t, "img-2", p.Images[0].PublicID)
	})

	t.Run("not found", func(t *testing.T) {
		svc, repo, media := setupService()
		ctx := context.Background()
		id := uuid.New()
		repo.On("FindByID", ctx, id).Return(nil, shared.ErrNotFound)

		err := svc.DeleteProduct(ctx, id)

		assert.ErrorIs(t, err, shared.ErrNotFound)
		media.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})
}

func TestProductService_DeleteProductImage(t *testing.T) {
	t.Run("evicts then removes", func(t *testing.T) {
		svc, repo, media := setupService()
		ctx := context.Background()
		img := catalog.NewProductImage("https://cdn/1.png", "img-1")
		p := newTestProduct(t, "Cap", 15, img)

		repo.On("FindByID", ctx, p.ID).Return(p, nil)
		media.On("Delete", ctx, "img-1").Return(nil)
		repo.On("Save", ctx, p).Return(nil)

		resp, err := svc.DeleteProductImage(ctx, p.ID, img.ID)

		require.NoError(t, err)
		assert.Empty(t, resp.Images)
	})

	t.Run("unknown image returns the product unchanged", func(t *testing.T) {
		svc, repo, media := setupService()
		ctx := context.Background()
		p := newTestProduct(t, "Cap", 15, catalog.NewProductImage("https://cdn/1.png", "img-1"))
		repo.On("FindByID", ctx, p.ID).Return(p, nil)

		resp, err := svc.DeleteProductImage(ctx, p.ID, uuid.New())

		require.NoError(t, err)
		assert.Len(t, resp.Images, 1)
		media.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
		repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("eviction failure leaves image", func(t *testing.T) {
		svc, repo, media := setupService()
		ctx := context.Background()
		img := catalog.NewProductImage("https://cdn/1.png", "img-1")
		p := newTestProduct(t, "Cap", 15, img)

		repo.On("FindByID", ctx, p.ID).Return(p, nil)
		media.On("Delete", ctx, "img-1").Return(errors.New("boom"))

		_, err := svc.DeleteProductImage(ctx, p.ID, img.ID)

		require.Error(t, err)
		assert.Len(t, p.Images, 1)
		repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})
}

func TestStockCacheHandler(t *testing.T) {
	cache := new(MockProductCache)
	svc := NewProductService(new(MockProductRepository), new(MockMediaStorage), cache, nil)
	h := NewStockCacheHandler(svc, nil)
	ctx := context.Background()

	assert.ElementsMatch(t, []string{trade.EventTypeOrderPlaced, trade.EventTypeOrderCancelled}, h.EventTypes())

	cache.On("InvalidatePrefix", ctx, ProductCachePrefix).Return(nil)
	evt := &trade.OrderPlacedEvent{BaseDomainEvent: shared.NewBaseDomainEvent(trade.EventTypeOrderPlaced, trade.AggregateTypeOrder, uuid.New())}

	require.NoError(t, h.Handle(ctx, evt))
	cache.AssertExpectations(t)

	t.Run("fences reads already in flight", func(t *testing.T) {
		repo := new(MockProductRepository)
		cache := new(MockProductCache)
		svc := NewProductService(repo, new(MockMediaStorage), cache, nil)
		h := NewStockCacheHandler(svc, nil)
		p := newTestProduct(t, "Shield Mug", 12.99)

		cache.On("Get", ctx, mock.Anything, mock.Anything).Return(false, nil)
		cache.On("InvalidatePrefix", ctx, ProductCachePrefix).Return(nil)
		repo.On("FindByID", ctx, p.ID).
			Run(func(mock.Arguments) { require.NoError(t, h.Handle(ctx, evt)) }).
			Return(p, nil)

		_, err := svc.GetProduct(ctx, p.ID)

		require.NoError(t, err)
		cache.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything)
	})
}
