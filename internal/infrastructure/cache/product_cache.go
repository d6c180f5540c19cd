package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/marvelstore/backend/internal/infrastructure/config"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Constants for Redis cache configuration
const (
	defaultScanBatchSize = 100
	catalogKeyPrefix     = "catalog:"
)

// RedisProductCache stores catalog read results as JSON in Redis
type RedisProductCache struct {
	client redis.UniversalClient
	ttl    time.Duration
	logger *zap.Logger
}

// NewRedisProductCache creates a catalog cache over an existing Redis client.
// The caller keeps ownership of the client.
func NewRedisProductCache(client redis.UniversalClient, ttl time.Duration, logger *zap.Logger) *RedisProductCache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisProductCache{
		client: client,
		ttl:    ttl,
		logger: logger,
	}
}

func (c *RedisProductCache) cacheKey(key string) string {
	return catalogKeyPrefix + key
}

// Get decodes the cached value into dest. It reports false on a miss.
func (c *RedisProductCache) Get(ctx context.Context, key string, dest any) (bool, error) {
	cacheKey := c.cacheKey(key)

	data, err := c.client.Get(ctx, cacheKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to get catalog entry from cache: %w", err)
	}

	if err := json.Unmarshal(data, dest); err != nil {
		c.logger.Warn("Dropping corrupted catalog cache entry",
			zap.String("key", key),
			zap.Error(err))
		_ = c.client.Del(ctx, cacheKey)
		return false, nil
	}

	return true, nil
}

// Set stores value under key for the configured TTL
func (c *RedisProductCache) Set(ctx context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal catalog entry: %w", err)
	}

	if err := c.client.Set(ctx, c.cacheKey(key), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set catalog entry in cache: %w", err)
	}
	return nil
}

// InvalidatePrefix deletes every entry whose key starts with prefix.
// SCAN is used instead of KEYS so Redis is never blocked.
func (c *RedisProductCache) InvalidatePrefix(ctx context.Context, prefix string) error {
	pattern := c.cacheKey(prefix) + "*"

	var cursor uint64
	var deletedCount int64

	for {
		keys, next, err := c.client.Scan(ctx, cursor, pattern, defaultScanBatchSize).Result()
		if err != nil {
			return fmt.Errorf("failed to scan cache keys: %w", err)
		}

		if len(keys) > 0 {
			deleted, err := c.client.Del(ctx, keys...).Result()
			if err != nil {
				return fmt.Errorf("failed to delete cache keys: %w", err)
			}
			deletedCount += deleted
		}

		cursor = next
		if cursor == 0 {
			break
		}
	}

	c.logger.Debug("Invalidated catalog cache",
		zap.String("prefix", prefix),
		zap.Int64("deleted_count", deletedCount))
	return nil
}

// NoopProductCache never stores anything
type NoopProductCache struct{}

// Get always misses
func (NoopProductCache) Get(context.Context, string, any) (bool, error) { return false, nil }

// Set does nothing
func (NoopProductCache) Set(context.Context, string, any) error { return nil }

// InvalidatePrefix does nothing
func (NoopProductCache) InvalidatePrefix(context.Context, string) error { return nil }

// ProductCache is the catalog cache contract implemented by this package
type ProductCache interface {
	Get(ctx context.Context, key string, dest any) (bool, error)
	Set(ctx context.Context, key string, value any) error
	InvalidatePrefix(ctx context.Context, prefix string) error
}

// NewProductCache selects a cache implementation. Redis is used when a client
// is available; otherwise an in-memory cache. A disabled cache is a no-op.
func NewProductCache(cfg config.CacheConfig, client redis.UniversalClient, logger *zap.Logger) ProductCache {
	if logger == nil {
		logger = zap.NewNop()
	}
	if !cfg.Enabled {
		logger.Info("Catalog cache disabled")
		return NoopProductCache{}
	}
	if client != nil {
		logger.Info("Using Redis catalog cache", zap.Duration("ttl", cfg.TTL))
		return NewRedisProductCache(client, cfg.TTL, logger)
	}
	logger.Warn("Redis unavailable, using in-memory catalog cache. Entries are not shared between instances.")
	return NewInMemoryProductCache(cfg.TTL, WithInMemoryLogger(logger))
}

var (
	_ ProductCache = (*RedisProductCache)(nil)
	_ ProductCache = NoopProductCache{}
	_ ProductCache = (*InMemoryProductCache)(nil)
)
