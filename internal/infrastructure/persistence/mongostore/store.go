// Package mongostore implements the catalog, identity and trade repositories
// on MongoDB. Documents keep camelCase field names and string _id values so
// that a store migrated from the storefront's original collections can be
// read without conversion.
package mongostore

import (
	"context"
	"fmt"
	"time"

	"github.com/marvelstore/backend/internal/infrastructure/config"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection names
const (
	ProductsCollection = "products"
	UsersCollection    = "users"
	OrdersCollection   = "orders"
)

const defaultOpTimeout = 5 * time.Second

// Store owns the client and the database handle shared by the repositories
type Store struct {
	client    *mongo.Client
	db        *mongo.Database
	opTimeout time.Duration
}

// Connect dials MongoDB and verifies the connection
func Connect(ctx context.Context, cfg *config.DatabaseConfig) (*Store, error) {
	opts := options.Client().ApplyURI(cfg.MongoURI)
	if cfg.MaxOpenConns > 0 {
		opts.SetMaxPoolSize(uint64(cfg.MaxOpenConns))
	}

	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(connectCtx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}
	if err := client.Ping(connectCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	return NewStore(client, cfg.MongoDatabase), nil
}

// NewStore wraps an existing client
func NewStore(client *mongo.Client, database string) *Store {
	return &Store{
		client:    client,
		db:        client.Database(database),
		opTimeout: defaultOpTimeout,
	}
}

// Collection returns a collection handle
func (s *Store) Collection(name string) *mongo.Collection {
	return s.db.Collection(name)
}

// EnsureIndexes creates the indexes the repositories rely on
func (s *Store) EnsureIndexes(ctx context.Context) error {
	indexes := map[string][]mongo.IndexModel{
		ProductsCollection: {
			{Keys: bson.D{{Key: "category", Value: 1}, {Key: "isActive", Value: 1}}},
			{Keys: bson.D{{Key: "character", Value: 1}}},
			{Keys: bson.D{{Key: "featured", Value: 1}, {Key: "createdAt", Value: -1}}},
			{Keys: bson.D{{Key: "price", Value: 1}}},
		},
		UsersCollection: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		OrdersCollection: {
			{Keys: bson.D{{Key: "user", Value: 1}, {Key: "createdAt", Value: -1}}},
			{Keys: bson.D{{Key: "status", Value: 1}}},
		},
	}

	for name, models := range indexes {
		if _, err := s.db.Collection(name).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("failed to create indexes on %s: %w", name, err)
		}
	}
	return nil
}

// Ping checks the connection
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, nil)
}

// Close disconnects the client
func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// Products returns the product repository
func (s *Store) Products() *ProductRepository {
	return &ProductRepository{coll: s.Collection(ProductsCollection), timeout: s.opTimeout}
}

// Users returns the user repository
func (s *Store) Users() *UserRepository {
	return &UserRepository{coll: s.Collection(UsersCollection), timeout: s.opTimeout}
}

// Orders returns the order repository
func (s *Store) Orders() *OrderRepository {
	return &OrderRepository{coll: s.Collection(OrdersCollection), timeout: s.opTimeout}
}
