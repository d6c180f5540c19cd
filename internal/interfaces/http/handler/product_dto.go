package handler

import (
	"github.com/shopspring/decimal"

	catalogapp "github.com/marvelstore/backend/internal/application/catalog"
	"github.com/marvelstore/backend/internal/domain/shared"
)

// ListProductsQuery is the storefront listing query string. Numeric fields
// that do not parse make the request fail with 400.
type ListProductsQuery struct {
	Category  string   `form:"category"`
	Character string   `form:"character"`
	Search    string   `form:"search" binding:"max=100"`
	MinPrice  *float64 `form:"minPrice" binding:"omitempty,gte=0"`
	MaxPrice  *float64 `form:"maxPrice" binding:"omitempty,gte=0"`
	Featured  *bool    `form:"featured"`
	Sort      string   `form:"sort"`
	Page      int      `form:"page"`
	Limit     int      `form:"limit"`
}

func (q ListProductsQuery) toRequest() catalogapp.ListProductsRequest {
	req := catalogapp.ListProductsRequest{
		Category:  q.Category,
		Character: q.Character,
		Search:    q.Search,
		Featured:  q.Featured,
		Sort:      q.Sort,
		Page:      q.Page,
		Limit:     q.Limit,
	}
	if q.MinPrice != nil {
		req.MinPrice = toDecimalPtr(*q.MinPrice)
	}
	if q.MaxPrice != nil {
		req.MaxPrice = toDecimalPtr(*q.MaxPrice)
	}
	return req
}

// ProductForm is the multipart body of product create. Sizes and colors are
// JSON arrays encoded as strings, as the admin client sends them.
type ProductForm struct {
	Name          string `form:"name"`
	Description   string `form:"description"`
	Price         string `form:"price"`
	OriginalPrice string `form:"originalPrice"`
	Category      string `form:"category"`
	Character     string `form:"character"`
	Stock         int    `form:"stock" binding:"gte=0"`
	Sizes         string `form:"sizes"`
	Colors        string `form:"colors"`
	Featured      bool   `form:"featured"`
}

func (f ProductForm) toRequest() (catalogapp.CreateProductRequest, error) {
	price, err := parsePrice(f.Price, "INVALID_PRICE", "Price must be a number")
	if err != nil {
		return catalogapp.CreateProductRequest{}, err
	}
	req := catalogapp.CreateProductRequest{
		Name:        f.Name,
		Description: f.Description,
		Price:       price,
		Category:    f.Category,
		Character:   f.Character,
		Stock:       f.Stock,
		Sizes:       f.Sizes,
		Colors:      f.Colors,
		Featured:    f.Featured,
	}
	if f.OriginalPrice != "" {
		op, err := parsePrice(f.OriginalPrice, "INVALID_PRICE", "Original price must be a number")
		if err != nil {
			return catalogapp.CreateProductRequest{}, err
		}
		req.OriginalPrice = &op
	}
	return req, nil
}

// ProductPatchForm is the multipart body of product update. Absent fields
// keep their stored value.
type ProductPatchForm struct {
	Name          *string  `form:"name"`
	Description   *string  `form:"description"`
	Price         *string  `form:"price"`
	OriginalPrice *string  `form:"originalPrice"`
	Category      *string  `form:"category"`
	Character     *string  `form:"character"`
	Stock         *int     `form:"stock" binding:"omitempty,gte=0"`
	Sizes         *string  `form:"sizes"`
	Colors        *string  `form:"colors"`
	Rating        *float64 `form:"rating" binding:"omitempty,gte=0,lte=5"`
	NumReviews    *int     `form:"numReviews" binding:"omitempty,gte=0"`
	Featured      *bool    `form:"featured"`
	IsActive      *bool    `form:"isActive"`
}

func (f ProductPatchForm) toRequest() (catalogapp.UpdateProductRequest, error) {
	req := catalogapp.UpdateProductRequest{
		Name:        f.Name,
		Description: f.Description,
		Category:    f.Category,
		Character:   f.Character,
		Stock:       f.Stock,
		Sizes:       f.Sizes,
		Colors:      f.Colors,
		Rating:      f.Rating,
		NumReviews:  f.NumReviews,
		Featured:    f.Featured,
		IsActive:    f.IsActive,
	}
	// an empty price field keeps the stored price
	if f.Price != nil && *f.Price != "" {
		price, err := parsePrice(*f.Price, "INVALID_PRICE", "Price must be a number")
		if err != nil {
			return req, err
		}
		req.Price = &price
	}
	if f.OriginalPrice != nil && *f.OriginalPrice != "" {
		op, err := parsePrice(*f.OriginalPrice, "INVALID_PRICE", "Original price must be a number")
		if err != nil {
			return req, err
		}
		req.OriginalPrice = &op
	}
	return req, nil
}

// parsePrice parses a decimal form value
func parsePrice(value, code, message string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, shared.NewDomainError(code, message)
	}
	return d, nil
}

func toDecimalPtr(f float64) *decimal.Decimal {
	d := decimal.NewFromFloat(f)
	return &d
}
