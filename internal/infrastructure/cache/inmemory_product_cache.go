package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

const defaultCleanupInterval = 30 * time.Second

type cacheEntry struct {
	data      []byte
	expiresAt time.Time
}

func (e cacheEntry) isExpired(now time.Time) bool {
	return now.After(e.expiresAt)
}

// InMemoryProductCache is a TTL map used when Redis is not configured.
// Values are stored as JSON so hits return copies, as with Redis.
type InMemoryProductCache struct {
	mu      sync.RWMutex
	entries map[string]cacheEntry
	ttl     time.Duration
	logger  *zap.Logger
	now     func() time.Time
	stopCh  chan struct{}
	stopped int32

	hits   int64
	misses int64
}

// InMemoryProductCacheOption is a functional option for configuring the cache
type InMemoryProductCacheOption func(*InMemoryProductCache)

// WithInMemoryLogger sets the logger for the cache
func WithInMemoryLogger(logger *zap.Logger) InMemoryProductCacheOption {
	return func(c *InMemoryProductCache) {
		c.logger = logger
	}
}

// NewInMemoryProductCache creates the cache and starts its cleanup loop
func NewInMemoryProductCache(ttl time.Duration, opts ...InMemoryProductCacheOption) *InMemoryProductCache {
	c := &InMemoryProductCache{
		entries: make(map[string]cacheEntry),
		ttl:     ttl,
		logger:  zap.NewNop(),
		now:     time.Now,
		stopCh:  make(chan struct{}),
	}

	for _, opt := range opts {
		opt(c)
	}

	go c.cleanupExpired()

	return c
}

// Get decodes the cached value into dest. It reports false on a miss.
func (c *InMemoryProductCache) Get(_ context.Context, key string, dest any) (bool, error) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok || entry.isExpired(c.now()) {
		atomic.AddInt64(&c.misses, 1)
		return false, nil
	}

	if err := json.Unmarshal(entry.data, dest); err != nil {
		return false, fmt.Errorf("failed to decode catalog entry: %w", err)
	}
	atomic.AddInt64(&c.hits, 1)
	return true, nil
}

// Set stores value under key for the configured TTL
func (c *InMemoryProductCache) Set(_ context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal catalog entry: %w", err)
	}

	c.mu.Lock()
	c.entries[key] = cacheEntry{data: data, expiresAt: c.now().Add(c.ttl)}
	c.mu.Unlock()
	return nil
}

// InvalidatePrefix deletes every entry whose key starts with prefix
func (c *InMemoryProductCache) InvalidatePrefix(_ context.Context, prefix string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	deleted := 0
	for key := range c.entries {
		if strings.HasPrefix(key, prefix) {
			delete(c.entries, key)
			deleted++
		}
	}

	c.logger.Debug("Invalidated in-memory catalog cache",
		zap.String("prefix", prefix),
		zap.Int("deleted_count", deleted))
	return nil
}

// Len returns the number of stored entries, expired ones included
func (c *InMemoryProductCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// GetStats returns cache statistics
func (c *InMemoryProductCache) GetStats() (hits, misses int64) {
	return atomic.LoadInt64(&c.hits), atomic.LoadInt64(&c.misses)
}

// Close stops the cleanup loop
func (c *InMemoryProductCache) Close() error {
	if atomic.CompareAndSwapInt32(&c.stopped, 0, 1) {
		close(c.stopCh)
	}
	return nil
}

func (c *InMemoryProductCache) cleanupExpired() {
	ticker := time.NewTicker(defaultCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stopCh:
			return
		case <-ticker.C:
			c.removeExpired()
		}
	}
}

func (c *InMemoryProductCache) removeExpired() {
	now := c.now()

	c.mu.Lock()
	defer c.mu.Unlock()

	for key, entry := range c.entries {
		if entry.isExpired(now) {
			delete(c.entries, key)
		}
	}
}
