package catalog

import (
	"fmt"
	"strings"

	"github.com/marvelstore/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Paging defaults for catalog listings
const (
	DefaultPageLimit = 12
	MaxPageLimit     = 100
	FeaturedLimit    = 8
)

// SortKey is a storefront sort keyword
type SortKey string

const (
	SortPriceLow  SortKey = "price-low"
	SortPriceHigh SortKey = "price-high"
	SortRating    SortKey = "rating"
	SortNewest    SortKey = "newest"
)

// SortField names a sortable product attribute
type SortField string

const (
	SortFieldPrice     SortField = "price"
	SortFieldRating    SortField = "rating"
	SortFieldCreatedAt SortField = "createdAt"
)

// SortOrder is a resolved field + direction pair
type SortOrder struct {
	Field SortField
	Desc  bool
}

// ParseSortKey maps a keyword to a SortKey. Unknown or empty keywords sort
// newest first.
func ParseSortKey(s string) SortKey {
	switch SortKey(strings.TrimSpace(s)) {
	case SortPriceLow:
		return SortPriceLow
	case SortPriceHigh:
		return SortPriceHigh
	case SortRating:
		return SortRating
	default:
		return SortNewest
	}
}

// Order returns the sort order for the keyword
func (k SortKey) Order() SortOrder {
	switch k {
	case SortPriceLow:
		return SortOrder{Field: SortFieldPrice, Desc: false}
	case SortPriceHigh:
		return SortOrder{Field: SortFieldPrice, Desc: true}
	case SortRating:
		return SortOrder{Field: SortFieldRating, Desc: true}
	default:
		return SortOrder{Field: SortFieldCreatedAt, Desc: true}
	}
}

// ProductQuery describes a filtered, sorted, paginated catalog listing.
// Active-only scoping is always applied unless IncludeInactive is set.
type ProductQuery struct {
	Category        Category
	Character       Character
	Search          string
	MinPrice        *decimal.Decimal
	MaxPrice        *decimal.Decimal
	Featured        *bool
	Sort            SortKey
	Page            int
	Limit           int
	IncludeInactive bool
}

// Normalize fills defaults and clamps paging values
func (q ProductQuery) Normalize() ProductQuery {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 {
		q.Limit = DefaultPageLimit
	}
	if q.Limit > MaxPageLimit {
		q.Limit = MaxPageLimit
	}
	q.Sort = ParseSortKey(string(q.Sort))
	q.Search = strings.TrimSpace(q.Search)
	return q
}

// Validate checks enum filters and the price range
func (q ProductQuery) Validate() error {
	if q.Category != "" && !q.Category.IsValid() {
		return shared.NewDomainError("INVALID_CATEGORY", "Invalid category: "+string(q.Category))
	}
	if q.Character != "" && !q.Character.IsValid() {
		return shared.NewDomainError("INVALID_CHARACTER", "Invalid character: "+string(q.Character))
	}
	if q.MinPrice != nil && q.MinPrice.IsNegative() {
		return shared.NewDomainError("INVALID_PRICE_RANGE", "minPrice cannot be negative")
	}
	if q.MinPrice != nil && q.MaxPrice != nil && q.MinPrice.GreaterThan(*q.MaxPrice) {
		return shared.NewDomainError("INVALID_PRICE_RANGE", "minPrice cannot exceed maxPrice")
	}
	return nil
}

// Offset is (page-1)*limit
func (q ProductQuery) Offset() int {
	if q.Page < 1 {
		return 0
	}
	return (q.Page - 1) * q.Limit
}

// Pages is ceil(total/limit), zero when total is zero
func (q ProductQuery) Pages(total int64) int {
	return shared.TotalPages(total, q.Limit)
}

// CacheKey returns a canonical string for the query
func (q ProductQuery) CacheKey() string {
	var b strings.Builder
	fmt.Fprintf(&b, "cat=%s|char=%s|q=%s", q.Category, q.Character, strings.ToLower(q.Search))
	if q.MinPrice != nil {
		fmt.Fprintf(&b, "|min=%s", q.MinPrice.String())
	}
	if q.MaxPrice != nil {
		fmt.Fprintf(&b, "|max=%s", q.MaxPrice.String())
	}
	if q.Featured != nil {
		fmt.Fprintf(&b, "|featured=%t", *q.Featured)
	}
	fmt.Fprintf(&b, "|sort=%s|page=%d|limit=%d|all=%t", q.Sort, q.Page, q.Limit, q.IncludeInactive)
	return b.String()
}
