package mongostore

import (
	"regexp"
	"strings"

	"github.com/marvelstore/backend/internal/domain/catalog"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var productSortFields = map[catalog.SortField]string{
	catalog.SortFieldPrice:     "price",
	catalog.SortFieldRating:    "rating",
	catalog.SortFieldCreatedAt: "createdAt",
}

// productFilter builds the find filter for a listing query
func productFilter(query catalog.ProductQuery) bson.M {
	filter := bson.M{}
	if !query.IncludeInactive {
		filter["isActive"] = true
	}
	if query.Category != "" {
		filter["category"] = string(query.Category)
	}
	if query.Character != "" {
		filter["character"] = string(query.Character)
	}
	if query.Featured != nil {
		filter["featured"] = *query.Featured
	}

	price := bson.M{}
	if query.MinPrice != nil {
		price["$gte"] = toDecimal128(*query.MinPrice)
	}
	if query.MaxPrice != nil {
		price["$lte"] = toDecimal128(*query.MaxPrice)
	}
	if len(price) > 0 {
		filter["price"] = price
	}

	if search := strings.TrimSpace(query.Search); search != "" {
		pattern := primitive.Regex{Pattern: regexp.QuoteMeta(search), Options: "i"}
		filter["$or"] = bson.A{
			bson.M{"name": pattern},
			bson.M{"description": pattern},
		}
	}
	return filter
}

// productSort maps a sort order to a sort document. Ties break on _id.
func productSort(order catalog.SortOrder) bson.D {
	field, ok := productSortFields[order.Field]
	if !ok {
		field = "createdAt"
		order.Desc = true
	}
	dir := 1
	if order.Desc {
		dir = -1
	}
	return bson.D{{Key: field, Value: dir}, {Key: "_id", Value: 1}}
}
