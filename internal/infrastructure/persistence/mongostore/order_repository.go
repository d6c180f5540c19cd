package mongostore

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/marvelstore/backend/internal/domain/shared"
	"github.com/marvelstore/backend/internal/domain/trade"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// OrderRepository implements trade.OrderRepository on a MongoDB collection.
// Order lines are embedded in the order document.
type OrderRepository struct {
	coll    *mongo.Collection
	timeout time.Duration
}

var newestFirst = bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: 1}}

// FindByID finds an order by ID
func (r *OrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*trade.Order, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var doc orderDocument
	if err := r.coll.FindOne(ctx, bson.M{"_id": id.String()}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return doc.toDomain(), nil
}

// FindByUser returns the user's orders, newest first
func (r *OrderRepository) FindByUser(ctx context.Context, userID uuid.UUID) ([]trade.Order, error) {
	return r.find(ctx, bson.M{"user": userID.String()}, options.Find().SetSort(newestFirst))
}

// FindAll returns one page of orders and the total match count
func (r *OrderRepository) FindAll(ctx context.Context, filter trade.OrderFilter) ([]trade.Order, int64, error) {
	query := orderFilter(filter)

	countCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	total, err := r.coll.CountDocuments(countCtx, query)
	if err != nil {
		return nil, 0, err
	}

	opts := options.Find().SetSort(newestFirst).SetSkip(int64(filter.Offset()))
	if filter.Limit > 0 {
		opts.SetLimit(int64(filter.Limit))
	}
	orders, err := r.find(ctx, query, opts)
	if err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

// Save creates or updates an order
func (r *OrderRepository) Save(ctx context.Context, order *trade.Order) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	doc := orderToDocument(order)
	_, err := r.coll.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc, options.Replace().SetUpsert(true))
	return err
}

// Stats computes order totals with two aggregation pipelines
func (r *OrderRepository) Stats(ctx context.Context) (trade.OrderStats, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	stats := trade.OrderStats{
		TotalRevenue: decimal.Zero,
		StatusCounts: make(map[trade.OrderStatus]int64),
	}

	var err error
	if stats.TotalOrders, err = r.coll.CountDocuments(ctx, bson.M{}); err != nil {
		return stats, err
	}

	revenueCursor, err := r.coll.Aggregate(ctx, mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"isPaid": true}}},
		{{Key: "$group", Value: bson.M{
			"_id":     nil,
			"count":   bson.M{"$sum": 1},
			"revenue": bson.M{"$sum": "$totalPrice"},
		}}},
	})
	if err != nil {
		return stats, err
	}
	var paid []struct {
		Count   int64                `bson:"count"`
		Revenue primitive.Decimal128 `bson:"revenue"`
	}
	if err := revenueCursor.All(ctx, &paid); err != nil {
		return stats, err
	}
	if len(paid) == 1 {
		stats.PaidOrders = paid[0].Count
		stats.TotalRevenue = fromDecimal128(paid[0].Revenue).Round(2)
	}

	statusCursor, err := r.coll.Aggregate(ctx, mongo.Pipeline{
		{{Key: "$group", Value: bson.M{"_id": "$status", "count": bson.M{"$sum": 1}}}},
	})
	if err != nil {
		return stats, err
	}
	var byStatus []struct {
		Status string `bson:"_id"`
		Count  int64  `bson:"count"`
	}
	if err := statusCursor.All(ctx, &byStatus); err != nil {
		return stats, err
	}
	for _, row := range byStatus {
		stats.StatusCounts[trade.OrderStatus(row.Status)] = row.Count
	}

	return stats, nil
}

func (r *OrderRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]trade.Order, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []orderDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	orders := make([]trade.Order, len(docs))
	for i := range docs {
		orders[i] = *docs[i].toDomain()
	}
	return orders, nil
}

func orderFilter(filter trade.OrderFilter) bson.M {
	query := bson.M{}
	if filter.Status != nil {
		query["status"] = string(*filter.Status)
	}
	return query
}
