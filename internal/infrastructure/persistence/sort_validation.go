package persistence

import (
	"strings"

	"github.com/marvelstore/backend/internal/domain/catalog"
)

// productSortColumns whitelists the columns a product listing may sort on
var productSortColumns = map[catalog.SortField]string{
	catalog.SortFieldPrice:     "price",
	catalog.SortFieldRating:    "rating",
	catalog.SortFieldCreatedAt: "created_at",
}

// ValidateSortOrder normalizes a direction to ASC or DESC. Anything else is DESC.
func ValidateSortOrder(orderDir string) string {
	if strings.ToUpper(strings.TrimSpace(orderDir)) == "ASC" {
		return "ASC"
	}
	return "DESC"
}

// ProductOrderClause turns a storefront sort into an ORDER BY clause.
// Ties break on id so that pages are stable.
func ProductOrderClause(order catalog.SortOrder) string {
	column, ok := productSortColumns[order.Field]
	if !ok {
		column = "created_at"
		order.Desc = true
	}
	dir := "ASC"
	if order.Desc {
		dir = "DESC"
	}
	return column + " " + ValidateSortOrder(dir) + ", id ASC"
}
