package catalog

import (
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/marvelstore/backend/internal/domain/catalog"
	"github.com/shopspring/decimal"
)

// CreateProductRequest represents a request to create a new product.
// Sizes and Colors arrive JSON-encoded from the multipart form.
type CreateProductRequest struct {
	Name          string
	Description   string
	Price         decimal.Decimal
	OriginalPrice *decimal.Decimal
	Category      string
	Character     string
	Stock         int
	Sizes         string
	Colors        string
	Featured      bool
}

// UpdateProductRequest represents a partial product update.
// Nil fields keep the stored value.
type UpdateProductRequest struct {
	Name          *string
	Description   *string
	Price         *decimal.Decimal
	OriginalPrice *decimal.Decimal
	Category      *string
	Character     *string
	Stock         *int
	Sizes         *string
	Colors        *string
	Rating        *float64
	NumReviews    *int
	Featured      *bool
	IsActive      *bool
}

// UploadFile is one uploaded image. The caller owns Body and closes it.
type UploadFile struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// ListProductsRequest carries the storefront listing parameters
type ListProductsRequest struct {
	Category  string
	Character string
	Search    string
	MinPrice  *decimal.Decimal
	MaxPrice  *decimal.Decimal
	Featured  *bool
	Sort      string
	Page      int
	Limit     int
}

// ToQuery converts the request into a normalized domain query
func (r ListProductsRequest) ToQuery() catalog.ProductQuery {
	return catalog.ProductQuery{
		Category:  catalog.Category(r.Category),
		Character: catalog.Character(r.Character),
		Search:    r.Search,
		MinPrice:  r.MinPrice,
		MaxPrice:  r.MaxPrice,
		Featured:  r.Featured,
		Sort:      catalog.SortKey(r.Sort),
		Page:      r.Page,
		Limit:     r.Limit,
	}.Normalize()
}

// ImageResponse is a product image in API responses
type ImageResponse struct {
	ID       uuid.UUID `json:"_id"`
	URL      string    `json:"url"`
	PublicID string    `json:"publicId"`
}

// ColorResponse is a color option in API responses
type ColorResponse struct {
	Name string `json:"name"`
	Hex  string `json:"hex"`
}

// ProductResponse represents a product in API responses
type ProductResponse struct {
	ID              uuid.UUID       `json:"_id"`
	Name            string          `json:"name"`
	Description     string          `json:"description"`
	Price           float64         `json:"price"`
	OriginalPrice   *float64        `json:"originalPrice,omitempty"`
	DiscountPercent int             `json:"discountPercent"`
	Category        string          `json:"category"`
	Character       string          `json:"character"`
	Images          []ImageResponse `json:"images"`
	Stock           int             `json:"stock"`
	Sizes           []string        `json:"sizes"`
	Colors          []ColorResponse `json:"colors"`
	Rating          float64         `json:"rating"`
	NumReviews      int             `json:"numReviews"`
	Featured        bool            `json:"featured"`
	IsActive        bool            `json:"isActive"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

// ListProductsResult is one page of the catalog listing
type ListProductsResult struct {
	Products []ProductResponse `json:"products"`
	Page     int               `json:"page"`
	Pages    int               `json:"pages"`
	Total    int64             `json:"total"`
}

// ToProductResponse converts a domain Product to ProductResponse
func ToProductResponse(p *catalog.Product) ProductResponse {
	images := make([]ImageResponse, len(p.Images))
	for i, img := range p.Images {
		images[i] = ImageResponse{ID: img.ID, URL: img.URL, PublicID: img.PublicID}
	}
	sizes := make([]string, len(p.Sizes))
	for i, s := range p.Sizes {
		sizes[i] = string(s)
	}
	colors := make([]ColorResponse, len(p.Colors))
	for i, c := range p.Colors {
		colors[i] = ColorResponse{Name: c.Name, Hex: c.Hex}
	}

	var originalPrice *float64
	if p.OriginalPrice != nil {
		op := p.OriginalPrice.InexactFloat64()
		originalPrice = &op
	}

	return ProductResponse{
		ID:              p.ID,
		Name:            p.Name,
		Description:     p.Description,
		Price:           p.Price.InexactFloat64(),
		OriginalPrice:   originalPrice,
		DiscountPercent: p.DiscountPercent(),
		Category:        string(p.Category),
		Character:       string(p.Character),
		Images:          images,
		Stock:           p.Stock,
		Sizes:           sizes,
		Colors:          colors,
		Rating:          p.Rating,
		NumReviews:      p.NumReviews,
		Featured:        p.Featured,
		IsActive:        p.IsActive,
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
	}
}

// ToProductResponses converts a slice of domain Products
func ToProductResponses(products []catalog.Product) []ProductResponse {
	responses := make([]ProductResponse, len(products))
	for i := range products {
		responses[i] = ToProductResponse(&products[i])
	}
	return responses
}
