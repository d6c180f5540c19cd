package mongostore

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/marvelstore/backend/internal/domain/catalog"
	"github.com/marvelstore/backend/internal/domain/shared"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ProductRepository implements catalog.ProductRepository on a MongoDB collection
type ProductRepository struct {
	coll    *mongo.Collection
	timeout time.Duration
}

// FindByID finds a product by its ID
func (r *ProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var doc productDocument
	if err := r.coll.FindOne(ctx, bson.M{"_id": id.String()}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return doc.toDomain(), nil
}

// FindByIDs finds multiple products by their IDs
func (r *ProductRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]catalog.Product, error) {
	if len(ids) == 0 {
		return []catalog.Product{}, nil
	}
	keys := make(bson.A, len(ids))
	for i, id := range ids {
		keys[i] = id.String()
	}
	return r.find(ctx, bson.M{"_id": bson.M{"$in": keys}}, options.Find())
}

// Search returns one page of products matching the query and the total match count
func (r *ProductRepository) Search(ctx context.Context, query catalog.ProductQuery) ([]catalog.Product, int64, error) {
	query = query.Normalize()
	filter := productFilter(query)

	countCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	total, err := r.coll.CountDocuments(countCtx, filter)
	if err != nil {
		return nil, 0, err
	}

	opts := options.Find().
		SetSort(productSort(query.Sort.Order())).
		SetSkip(int64(query.Offset())).
		SetLimit(int64(query.Limit))
	products, err := r.find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

// FindFeatured finds active featured products, newest first
func (r *ProductRepository) FindFeatured(ctx context.Context, limit int) ([]catalog.Product, error) {
	opts := options.Find().
		SetSort(productSort(catalog.SortNewest.Order())).
		SetLimit(int64(limit))
	return r.find(ctx, bson.M{"featured": true, "isActive": true}, opts)
}

// FindByCategory finds all active products in a category, newest first
func (r *ProductRepository) FindByCategory(ctx context.Context, category catalog.Category) ([]catalog.Product, error) {
	opts := options.Find().SetSort(productSort(catalog.SortNewest.Order()))
	return r.find(ctx, bson.M{"category": string(category), "isActive": true}, opts)
}

// Save creates or updates a product
func (r *ProductRepository) Save(ctx context.Context, product *catalog.Product) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	doc := productToDocument(product)
	_, err := r.coll.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc, options.Replace().SetUpsert(true))
	return err
}

// Delete deletes a product
func (r *ProductRepository) Delete(ctx context.Context, id uuid.UUID) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id.String()})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// DecrementStock removes qty units with a conditional $inc
func (r *ProductRepository) DecrementStock(ctx context.Context, id uuid.UUID, qty int) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": id.String(), "stock": bson.M{"$gte": qty}},
		bson.M{
			"$inc": bson.M{"stock": -qty, "version": 1},
			"$set": bson.M{"updatedAt": time.Now().UTC()},
		},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		n, err := r.coll.CountDocuments(ctx, bson.M{"_id": id.String()})
		if err != nil {
			return err
		}
		if n == 0 {
			return shared.ErrNotFound
		}
		return shared.ErrInsufficientStock
	}
	return nil
}

// IncrementStock adds qty units back
func (r *ProductRepository) IncrementStock(ctx context.Context, id uuid.UUID, qty int) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": id.String()},
		bson.M{
			"$inc": bson.M{"stock": qty, "version": 1},
			"$set": bson.M{"updatedAt": time.Now().UTC()},
		},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Count counts all products
func (r *ProductRepository) Count(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	return r.coll.CountDocuments(ctx, bson.M{})
}

func (r *ProductRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]catalog.Product, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []productDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	products := make([]catalog.Product, len(docs))
	for i := range docs {
		products[i] = *docs[i].toDomain()
	}
	return products, nil
}
