package catalog

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/marvelstore/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// MaxRating is the upper bound of a product rating
const MaxRating = 5.0

// ProductImage is an image attached to a product and hosted on the media host.
// PublicID is the media host identifier used for eviction.
type ProductImage struct {
	ID       uuid.UUID `json:"_id"`
	URL      string    `json:"url"`
	PublicID string    `json:"publicId"`
}

// NewProductImage creates an image reference with a fresh ID
func NewProductImage(url, publicID string) ProductImage {
	return ProductImage{
		ID:       uuid.New(),
		URL:      url,
		PublicID: publicID,
	}
}

// Product represents a sellable item in the store catalog.
// It is the aggregate root for product-related operations
type Product struct {
	shared.BaseAggregateRoot
	Name          string
	Description   string
	Price         decimal.Decimal
	OriginalPrice *decimal.Decimal
	Category      Category
	Character     Character
	Images        []ProductImage
	Stock         int
	Sizes         []Size
	Colors        []Color
	Rating        float64
	NumReviews    int
	Featured      bool
	IsActive      bool
}

// NewProductInput carries the fields required to create a product
type NewProductInput struct {
	Name          string
	Description   string
	Price         decimal.Decimal
	OriginalPrice *decimal.Decimal
	Category      Category
	Character     Character
	Images        []ProductImage
	Stock         int
	Sizes         []Size
	Colors        []Color
	Featured      bool
}

// NewProduct creates a new active product
func NewProduct(input NewProductInput) (*Product, error) {
	character := input.Character
	if character == "" {
		character = DefaultCharacter
	}

	product := &Product{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              strings.TrimSpace(input.Name),
		Description:       input.Description,
		Price:             input.Price,
		OriginalPrice:     input.OriginalPrice,
		Category:          input.Category,
		Character:         character,
		Images:            append([]ProductImage{}, input.Images...),
		Stock:             input.Stock,
		Sizes:             nonNilSizes(input.Sizes),
		Colors:            nonNilColors(input.Colors),
		Featured:          input.Featured,
		IsActive:          true,
	}

	if err := product.validate(); err != nil {
		return nil, err
	}

	product.AddDomainEvent(NewProductCreatedEvent(product))

	return product, nil
}

// ProductPatch is a partial update. Nil fields are left untouched; empty
// strings keep the existing value. Numeric and boolean fields overwrite
// whenever present, including zero and false.
type ProductPatch struct {
	Name          *string
	Description   *string
	Price         *decimal.Decimal
	OriginalPrice *decimal.Decimal
	Category      *Category
	Character     *Character
	Stock         *int
	Sizes         []Size
	Colors        []Color
	Rating        *float64
	NumReviews    *int
	Featured      *bool
	IsActive      *bool
}

// ApplyUpdate applies a partial update and re-validates the product.
// The product is left unchanged when validation fails.
func (p *Product) ApplyUpdate(patch ProductPatch) error {
	next := *p

	if patch.Name != nil && strings.TrimSpace(*patch.Name) != "" {
		next.Name = strings.TrimSpace(*patch.Name)
	}
	if patch.Description != nil && *patch.Description != "" {
		next.Description = *patch.Description
	}
	if patch.Category != nil && *patch.Category != "" {
		next.Category = *patch.Category
	}
	if patch.Character != nil && *patch.Character != "" {
		next.Character = *patch.Character
	}
	if patch.Price != nil {
		next.Price = *patch.Price
	}
	if patch.OriginalPrice != nil {
		op := *patch.OriginalPrice
		next.OriginalPrice = &op
	}
	if patch.Stock != nil {
		next.Stock = *patch.Stock
	}
	if patch.Rating != nil {
		next.Rating = *patch.Rating
	}
	if patch.NumReviews != nil {
		next.NumReviews = *patch.NumReviews
	}
	if patch.Featured != nil {
		next.Featured = *patch.Featured
	}
	if patch.IsActive != nil {
		next.IsActive = *patch.IsActive
	}
	if patch.Sizes != nil {
		next.Sizes = patch.Sizes
	}
	if patch.Colors != nil {
		next.Colors = patch.Colors
	}

	if err := next.validate(); err != nil {
		return err
	}

	*p = next
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
	p.AddDomainEvent(NewProductUpdatedEvent(p))

	return nil
}

// AddImages appends images, keeping the existing ones
func (p *Product) AddImages(images ...ProductImage) {
	if len(images) == 0 {
		return
	}
	p.Images = append(p.Images, images...)
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
}

// FindImage returns the image with the given ID
func (p *Product) FindImage(imageID uuid.UUID) (ProductImage, bool) {
	for _, img := range p.Images {
		if img.ID == imageID {
			return img, true
		}
	}
	return ProductImage{}, false
}

// RemoveImage drops the image with the given ID. It returns false when the
// product has no such image.
func (p *Product) RemoveImage(imageID uuid.UUID) bool {
	for i, img := range p.Images {
		if img.ID == imageID {
			p.Images = append(p.Images[:i:i], p.Images[i+1:]...)
			p.UpdatedAt = time.Now()
			p.IncrementVersion()
			p.AddDomainEvent(NewProductUpdatedEvent(p))
			return true
		}
	}
	return false
}

// EvictableImages returns the images that live on the media host
func (p *Product) EvictableImages() []ProductImage {
	result := make([]ProductImage, 0, len(p.Images))
	for _, img := range p.Images {
		if img.PublicID != "" {
			result = append(result, img)
		}
	}
	return result
}

// MarkDeleted records the deletion event
func (p *Product) MarkDeleted() {
	p.AddDomainEvent(NewProductDeletedEvent(p))
}

// DiscountPercent returns the rounded discount against the original price,
// or zero when there is no discount.
func (p *Product) DiscountPercent() int {
	if p.OriginalPrice == nil || !p.OriginalPrice.GreaterThan(p.Price) || p.OriginalPrice.IsZero() {
		return 0
	}
	pct := p.OriginalPrice.Sub(p.Price).Div(*p.OriginalPrice).Mul(decimal.NewFromInt(100))
	return int(pct.Round(0).IntPart())
}

// IsAvailable reports whether qty units can be sold
func (p *Product) IsAvailable(qty int) bool {
	return p.IsActive && qty > 0 && p.Stock >= qty
}

// DecreaseStock removes qty units from stock
func (p *Product) DecreaseStock(qty int) error {
	if qty <= 0 {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	if p.Stock < qty {
		return shared.ErrInsufficientStock
	}
	p.Stock -= qty
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
	return nil
}

// IncreaseStock returns qty units to stock
func (p *Product) IncreaseStock(qty int) error {
	if qty <= 0 {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	p.Stock += qty
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
	return nil
}

// PrimaryImageURL returns the first image URL or an empty string
func (p *Product) PrimaryImageURL() string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0].URL
}

func (p *Product) validate() error {
	if err := validateProductName(p.Name); err != nil {
		return err
	}
	if strings.TrimSpace(p.Description) == "" {
		return shared.NewDomainError("INVALID_DESCRIPTION", "Product description is required")
	}
	if p.Price.IsNegative() {
		return shared.NewDomainError("INVALID_PRICE", "Price cannot be negative")
	}
	if p.OriginalPrice != nil && p.OriginalPrice.IsNegative() {
		return shared.NewDomainError("INVALID_PRICE", "Original price cannot be negative")
	}
	if !p.Category.IsValid() {
		return shared.NewDomainError("INVALID_CATEGORY", "Invalid category: "+string(p.Category))
	}
	if !p.Character.IsValid() {
		return shared.NewDomainError("INVALID_CHARACTER", "Invalid character: "+string(p.Character))
	}
	if p.Stock < 0 {
		return shared.NewDomainError("INVALID_STOCK", "Stock cannot be negative")
	}
	if p.Rating < 0 || p.Rating > MaxRating {
		return shared.NewDomainError("INVALID_RATING", "Rating must be between 0 and 5")
	}
	if p.NumReviews < 0 {
		return shared.NewDomainError("INVALID_NUM_REVIEWS", "Number of reviews cannot be negative")
	}
	if err := validateSizes(p.Sizes); err != nil {
		return err
	}
	return validateColors(p.Colors)
}

func validateProductName(name string) error {
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Product name is required")
	}
	if len(name) > 200 {
		return shared.NewDomainError("INVALID_NAME", "Product name cannot exceed 200 characters")
	}
	return nil
}

func nonNilSizes(s []Size) []Size {
	if s == nil {
		return []Size{}
	}
	return s
}

func nonNilColors(c []Color) []Color {
	if c == nil {
		return []Color{}
	}
	return c
}
