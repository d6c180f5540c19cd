package catalog

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/marvelstore/backend/internal/domain/catalog"
	"github.com/marvelstore/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// Cache key layout for catalog reads
const (
	ProductCachePrefix  = "products:"
	listCachePrefix     = ProductCachePrefix + "list:"
	featuredCacheKey    = ProductCachePrefix + "featured"
	categoryCachePrefix = ProductCachePrefix + "category:"
	itemCachePrefix     = ProductCachePrefix + "item:"
)

// AllowedImageTypes is the whitelist of content types accepted for product images.
// SVG is excluded since it can carry scripts.
var AllowedImageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// ProductServiceConfig holds limits for product image uploads
type ProductServiceConfig struct {
	MaxImages    int
	MaxImageSize int64
}

// DefaultProductServiceConfig returns the default configuration
func DefaultProductServiceConfig() ProductServiceConfig {
	return ProductServiceConfig{
		MaxImages:    5,
		MaxImageSize: 5 << 20,
	}
}

// ProductService handles catalog browsing and admin product management
type ProductService struct {
	productRepo    catalog.ProductRepository
	media          MediaStorage
	cache          ProductCache
	eventPublisher shared.EventPublisher
	config         ProductServiceConfig
	logger         *zap.Logger

	// generation is bumped on every invalidation; reads started under an
	// older generation must not populate the cache.
	generation atomic.Uint64
}

// NewProductService creates a new ProductService. cache may be nil.
func NewProductService(
	productRepo catalog.ProductRepository,
	media MediaStorage,
	cache ProductCache,
	logger *zap.Logger,
) *ProductService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProductService{
		productRepo: productRepo,
		media:       media,
		cache:       cache,
		config:      DefaultProductServiceConfig(),
		logger:      logger,
	}
}

// SetConfig sets the upload limits
func (s *ProductService) SetConfig(config ProductServiceConfig) {
	s.config = config
}

// SetEventPublisher sets the event publisher for product events
func (s *ProductService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// ListProducts returns one page of active products matching the request
func (s *ProductService) ListProducts(ctx context.Context, req ListProductsRequest) (*ListProductsResult, error) {
	query := req.ToQuery()
	if err := query.Validate(); err != nil {
		return nil, err
	}

	cacheKey := listCachePrefix + query.CacheKey()
	var cached ListProductsResult
	if s.cacheGet(ctx, cacheKey, &cached) {
		return &cached, nil
	}
	gen := s.generation.Load()

	products, total, err := s.productRepo.Search(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to search products: %w", err)
	}

	result := &ListProductsResult{
		Products: ToProductResponses(products),
		Page:     query.Page,
		Pages:    query.Pages(total),
		Total:    total,
	}
	s.cacheSet(ctx, gen, cacheKey, result)

	return result, nil
}

// GetProduct returns a single product
func (s *ProductService) GetProduct(ctx context.Context, id uuid.UUID) (*ProductResponse, error) {
	cacheKey := itemCachePrefix + id.String()
	var cached ProductResponse
	if s.cacheGet(ctx, cacheKey, &cached) {
		return &cached, nil
	}
	gen := s.generation.Load()

	product, err := s.findProduct(ctx, id)
	if err != nil {
		return nil, err
	}

	response := ToProductResponse(product)
	s.cacheSet(ctx, gen, cacheKey, response)
	return &response, nil
}

// GetFeatured returns up to FeaturedLimit featured active products
func (s *ProductService) GetFeatured(ctx context.Context) ([]ProductResponse, error) {
	var cached []ProductResponse
	if s.cacheGet(ctx, featuredCacheKey, &cached) {
		return cached, nil
	}
	gen := s.generation.Load()

	products, err := s.productRepo.FindFeatured(ctx, catalog.FeaturedLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to load featured products: %w", err)
	}

	responses := ToProductResponses(products)
	s.cacheSet(ctx, gen, featuredCacheKey, responses)
	return responses, nil
}

// GetByCategory returns every active product of a category
func (s *ProductService) GetByCategory(ctx context.Context, category string) ([]ProductResponse, error) {
	cat := catalog.Category(category)
	if !cat.IsValid() {
		return nil, shared.NewDomainError("INVALID_CATEGORY", "Invalid category: "+category)
	}

	cacheKey := categoryCachePrefix + category
	var cached []ProductResponse
	if s.cacheGet(ctx, cacheKey, &cached) {
		return cached, nil
	}
	gen := s.generation.Load()

	products, err := s.productRepo.FindByCategory(ctx, cat)
	if err != nil {
		return nil, fmt.Errorf("failed to load products by category: %w", err)
	}

	responses := ToProductResponses(products)
	s.cacheSet(ctx, gen, cacheKey, responses)
	return responses, nil
}

// CreateProduct uploads the images and creates the product. Uploaded images
// are evicted again when the product cannot be created.
func (s *ProductService) CreateProduct(ctx context.Context, req CreateProductRequest, files []UploadFile) (*ProductResponse, error) {
	if err := s.validateFiles(files); err != nil {
		return nil, err
	}

	sizes, err := catalog.ParseSizes(req.Sizes)
	if err != nil {
		return nil, err
	}
	colors, err := catalog.ParseColors(req.Colors)
	if err != nil {
		return nil, err
	}

	images, err := s.uploadImages(ctx, files)
	if err != nil {
		return nil, err
	}

	product, err := catalog.NewProduct(catalog.NewProductInput{
		Name:          req.Name,
		Description:   req.Description,
		Price:         req.Price,
		OriginalPrice: req.OriginalPrice,
		Category:      catalog.Category(req.Category),
		Character:     catalog.Character(req.Character),
		Images:        images,
		Stock:         req.Stock,
		Sizes:         sizes,
		Colors:        colors,
		Featured:      req.Featured,
	})
	if err != nil {
		s.evictQuietly(ctx, images)
		return nil, err
	}

	if err := s.productRepo.Save(ctx, product); err != nil {
		s.evictQuietly(ctx, images)
		return nil, fmt.Errorf("failed to save product: %w", err)
	}

	s.logger.Info("Product created",
		zap.String("product_id", product.ID.String()),
		zap.String("name", product.Name),
		zap.Int("images", len(images)))

	s.afterMutation(ctx, product)

	response := ToProductResponse(product)
	return &response, nil
}

// UpdateProduct applies a partial update and appends newly uploaded images
func (s *ProductService) UpdateProduct(ctx context.Context, id uuid.UUID, req UpdateProductRequest, files []UploadFile) (*ProductResponse, error) {
	product, err := s.findProduct(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.validateFiles(files); err != nil {
		return nil, err
	}

	patch, err := buildPatch(req)
	if err != nil {
		return nil, err
	}

	images, err := s.uploadImages(ctx, files)
	if err != nil {
		return nil, err
	}

	if err := product.ApplyUpdate(patch); err != nil {
		s.evictQuietly(ctx, images)
		return nil, err
	}
	product.AddImages(images...)

	if err := s.productRepo.Save(ctx, product); err != nil {
		s.evictQuietly(ctx, images)
		return nil, fmt.Errorf("failed to save product: %w", err)
	}

	s.logger.Info("Product updated",
		zap.String("product_id", product.ID.String()),
		zap.Int("new_images", len(images)))

	s.afterMutation(ctx, product)

	response := ToProductResponse(product)
	return &response, nil
}

// DeleteProductImage evicts one image from the media host and removes it
// from the product
func (s *ProductService) DeleteProductImage(ctx context.Context, id, imageID uuid.UUID) (*ProductResponse, error) {
	product, err := s.findProduct(ctx, id)
	if err != nil {
		return nil, err
	}

	image, ok := product.FindImage(imageID)
	if !ok {
		response := ToProductResponse(product)
		return &response, nil
	}

	if image.PublicID != "" {
		if err := s.media.Delete(ctx, image.PublicID); err != nil {
			s.logger.Error("Failed to evict product image",
				zap.String("product_id", id.String()),
				zap.String("public_id", image.PublicID),
				zap.Error(err))
			return nil, shared.NewDomainError("MEDIA_EVICTION_FAILED", "Failed to delete image from media host")
		}
	}

	product.RemoveImage(imageID)
	if err := s.productRepo.Save(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to save product: %w", err)
	}

	s.afterMutation(ctx, product)

	response := ToProductResponse(product)
	return &response, nil
}

// DeleteProduct evicts every hosted image and then deletes the product.
// When any eviction fails the product is kept with the images that could not
// be evicted, so the delete can be retried.
func (s *ProductService) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	product, err := s.findProduct(ctx, id)
	if err != nil {
		return err
	}

	failed := 0
	for _, image := range product.EvictableImages() {
		if err := s.media.Delete(ctx, image.PublicID); err != nil {
			failed++
			s.logger.Error("Failed to evict product image",
				zap.String("product_id", id.String()),
				zap.String("public_id", image.PublicID),
				zap.Error(err))
			continue
		}
		product.RemoveImage(image.ID)
	}

	if failed > 0 {
		if err := s.productRepo.Save(ctx, product); err != nil {
			s.logger.Error("Failed to save product after partial eviction",
				zap.String("product_id", id.String()),
				zap.Error(err))
		}
		s.afterMutation(ctx, product)
		return shared.NewDomainError("MEDIA_EVICTION_FAILED",
			fmt.Sprintf("Failed to delete %d image(s) from media host; product was not deleted", failed))
	}

	product.MarkDeleted()
	if err := s.productRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}

	s.logger.Info("Product deleted", zap.String("product_id", id.String()))

	s.afterMutation(ctx, product)
	return nil
}

func (s *ProductService) findProduct(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("NOT_FOUND", "Product not found")
		}
		return nil, fmt.Errorf("failed to load product: %w", err)
	}
	return product, nil
}

func buildPatch(req UpdateProductRequest) (catalog.ProductPatch, error) {
	patch := catalog.ProductPatch{
		Name:          req.Name,
		Description:   req.Description,
		Price:         req.Price,
		OriginalPrice: req.OriginalPrice,
		Stock:         req.Stock,
		Rating:        req.Rating,
		NumReviews:    req.NumReviews,
		Featured:      req.Featured,
		IsActive:      req.IsActive,
	}
	if req.Category != nil {
		c := catalog.Category(*req.Category)
		patch.Category = &c
	}
	if req.Character != nil {
		c := catalog.Character(*req.Character)
		patch.Character = &c
	}
	if req.Sizes != nil && strings.TrimSpace(*req.Sizes) != "" {
		sizes, err := catalog.ParseSizes(*req.Sizes)
		if err != nil {
			return catalog.ProductPatch{}, err
		}
		patch.Sizes = sizes
	}
	if req.Colors != nil && strings.TrimSpace(*req.Colors) != "" {
		colors, err := catalog.ParseColors(*req.Colors)
		if err != nil {
			return catalog.ProductPatch{}, err
		}
		patch.Colors = colors
	}
	return patch, nil
}

// validateFiles checks the image count limit and each file's type and size
// validateFiles checks one request's uploads. The cap applies per request;
// updates always append to the existing images.
func (s *ProductService) validateFiles(files []UploadFile) error {
	if len(files) > s.config.MaxImages {
		return shared.NewDomainError("TOO_MANY_IMAGES",
			fmt.Sprintf("Maximum %d images per upload allowed", s.config.MaxImages))
	}
	for _, f := range files {
		if _, ok := AllowedImageTypes[strings.ToLower(f.ContentType)]; !ok {
			return shared.NewDomainError("INVALID_IMAGE_TYPE", "Only JPEG, PNG, GIF and WebP images are allowed")
		}
		if f.Size <= 0 || f.Size > s.config.MaxImageSize {
			return shared.NewDomainError("INVALID_IMAGE_SIZE",
				fmt.Sprintf("Image %q must be between 1 byte and %d bytes", f.Filename, s.config.MaxImageSize))
		}
	}
	return nil
}

func (s *ProductService) uploadImages(ctx context.Context, files []UploadFile) ([]catalog.ProductImage, error) {
	images := make([]catalog.ProductImage, 0, len(files))
	for _, f := range files {
		key := imageKey(f)
		url, err := s.media.Upload(ctx, key, f.ContentType, f.Body, f.Size)
		if err != nil {
			s.logger.Error("Failed to upload product image",
				zap.String("filename", f.Filename),
				zap.Error(err))
			s.evictQuietly(ctx, images)
			return nil, shared.NewDomainError("MEDIA_UPLOAD_FAILED", "Failed to upload image")
		}
		images = append(images, catalog.NewProductImage(url, key))
	}
	return images, nil
}

func (s *ProductService) evictQuietly(ctx context.Context, images []catalog.ProductImage) {
	for _, img := range images {
		if err := s.media.Delete(ctx, img.PublicID); err != nil {
			s.logger.Warn("Failed to evict orphaned image",
				zap.String("public_id", img.PublicID),
				zap.Error(err))
		}
	}
}

func imageKey(f UploadFile) string {
	ext := strings.ToLower(filepath.Ext(f.Filename))
	if ext == "" || len(ext) > 5 {
		ext = AllowedImageTypes[strings.ToLower(f.ContentType)]
	}
	return uuid.New().String() + ext
}

func (s *ProductService) afterMutation(ctx context.Context, product *catalog.Product) {
	s.invalidateCache(ctx)
	if err := shared.PublishAndClear(ctx, s.eventPublisher, product); err != nil {
		s.logger.Warn("Failed to publish product events",
			zap.String("product_id", product.ID.String()),
			zap.Error(err))
	}
}

func (s *ProductService) invalidateCache(ctx context.Context) {
	if err := s.InvalidateCatalog(ctx); err != nil {
		s.logger.Warn("Failed to invalidate catalog cache", zap.Error(err))
	}
}

// InvalidateCatalog drops every cached catalog entry and fences off reads
// that were already in flight.
func (s *ProductService) InvalidateCatalog(ctx context.Context) error {
	s.generation.Add(1)
	if s.cache == nil {
		return nil
	}
	return s.cache.InvalidatePrefix(ctx, ProductCachePrefix)
}

func (s *ProductService) cacheGet(ctx context.Context, key string, dest any) bool {
	if s.cache == nil {
		return false
	}
	hit, err := s.cache.Get(ctx, key, dest)
	if err != nil {
		s.logger.Warn("Catalog cache read failed", zap.String("key", key), zap.Error(err))
		return false
	}
	return hit
}

// cacheSet stores value only if no invalidation happened since gen was read.
// An invalidation racing the write itself is undone by deleting the key.
func (s *ProductService) cacheSet(ctx context.Context, gen uint64, key string, value any) {
	if s.cache == nil || s.generation.Load() != gen {
		return
	}
	if err := s.cache.Set(ctx, key, value); err != nil {
		s.logger.Warn("Catalog cache write failed", zap.String("key", key), zap.Error(err))
		return
	}
	if s.generation.Load() != gen {
		if err := s.cache.InvalidatePrefix(ctx, key); err != nil {
			s.logger.Warn("Failed to drop stale catalog entry", zap.String("key", key), zap.Error(err))
		}
	}
}
