package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/storefront/backend/internal/domain/catalog"
)

const defaultCleanupInterval = 30 * time.Second

// InMemoryProductCache implements catalog.ProductCache with in-process storage.
// It is the L1 tier in front of Redis, so TTLs stay short.
type InMemoryProductCache struct {
	products sync.Map // map[uuid.UUID]*cacheEntry
	config   catalog.CacheConfig
	logger   *zap.Logger
	stopCh   chan struct{}
	stopped  int32

	hits   int64
	misses int64
}

type cacheEntry struct {
	product   *catalog.Product
	expiresAt time.Time
}

func (e *cacheEntry) isExpired() bool {
	return time.Now().After(e.expiresAt)
}

// InMemoryProductCacheOption is a functional option for configuring the cache
type InMemoryProductCacheOption func(*InMemoryProductCache)

// WithInMemoryConfig sets the cache configuration
func WithInMemoryConfig(config catalog.CacheConfig) InMemoryProductCacheOption {
	return func(c *InMemoryProductCache) {
		c.config = config
	}
}

// WithInMemoryLogger sets the logger for the cache
func WithInMemoryLogger(logger *zap.Logger) InMemoryProductCacheOption {
	return func(c *InMemoryProductCache) {
		c.logger = logger
	}
}

// NewInMemoryProductCache creates a new in-memory product cache
func NewInMemoryProductCache(opts ...InMemoryProductCacheOption) *InMemoryProductCache {
	cache := &InMemoryProductCache{
		config: catalog.DefaultCacheConfig(),
		logger: zap.NewNop(),
		stopCh: make(chan struct{}),
	}

	for _, opt := range opts {
		opt(cache)
	}

	go cache.cleanupExpired()

	return cache
}

// Get retrieves a product from cache. A nil product means a miss.
func (c *InMemoryProductCache) Get(_ context.Context, id uuid.UUID) (*catalog.Product, error) {
	if value, ok := c.products.Load(id); ok {
		entry := value.(*cacheEntry)
		if !entry.isExpired() {
			atomic.AddInt64(&c.hits, 1)
			return entry.product, nil
		}
		c.products.Delete(id)
	}

	atomic.AddInt64(&c.misses, 1)
	return nil, nil
}

// Set stores a product in cache
func (c *InMemoryProductCache) Set(_ context.Context, product *catalog.Product, ttl time.Duration) error {
	if product == nil {
		return nil
	}

	if ttl == 0 {
		ttl = c.config.MemoryTTL
	}

	c.products.Store(product.ID, &cacheEntry{
		product:   product,
		expiresAt: time.Now().Add(ttl),
	})
	return nil
}

// Delete removes a product from cache
func (c *InMemoryProductCache) Delete(_ context.Context, id uuid.UUID) error {
	c.products.Delete(id)
	return nil
}

// InvalidateAll removes all cached products
func (c *InMemoryProductCache) InvalidateAll(_ context.Context) error {
	c.products.Range(func(key, _ any) bool {
		c.products.Delete(key)
		return true
	})
	c.logger.Debug("invalidated in-memory product cache")
	return nil
}

// Count returns the number of cached entries, including expired ones
// not yet swept.
func (c *InMemoryProductCache) Count() int {
	count := 0
	c.products.Range(func(_, _ any) bool {
		count++
		return true
	})
	return count
}

// Stats returns hit/miss counters
func (c *InMemoryProductCache) Stats() (hits, misses int64) {
	return atomic.LoadInt64(&c.hits), atomic.LoadInt64(&c.misses)
}

// ResetStats resets the hit/miss counters
func (c *InMemoryProductCache) ResetStats() {
	atomic.StoreInt64(&c.hits, 0)
	atomic.StoreInt64(&c.misses, 0)
}

// Close stops the background cleanup goroutine
func (c *InMemoryProductCache) Close() error {
	if atomic.CompareAndSwapInt32(&c.stopped, 0, 1) {
		close(c.stopCh)
	}
	return nil
}

// cleanupExpired periodically removes expired entries
func (c *InMemoryProductCache) cleanupExpired() {
	ticker := time.NewTicker(defaultCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stopCh:
			return
		case <-ticker.C:
			c.products.Range(func(key, value any) bool {
				if value.(*cacheEntry).isExpired() {
					c.products.Delete(key)
				}
				return true
			})
		}
	}
}

var _ catalog.ProductCache = (*InMemoryProductCache)(nil)
