package cache

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/storefront/backend/internal/domain/catalog"
)

// TieredProductCache layers an in-process cache (L1) over Redis (L2).
// Reads go L1 -> L2 -> miss; writes go to both tiers and broadcast an
// invalidation so other instances drop their L1 copies.
type TieredProductCache struct {
	l1Cache     *InMemoryProductCache
	l2Cache     *RedisProductCache
	invalidator *RedisCacheInvalidator
	config      catalog.CacheConfig
	logger      *zap.Logger

	l1Hits   int64
	l1Misses int64
	l2Hits   int64
	l2Misses int64
}

// TieredProductCacheOption is a functional option for configuring the cache
type TieredProductCacheOption func(*TieredProductCache)

// WithTieredConfig sets the cache configuration
func WithTieredConfig(config catalog.CacheConfig) TieredProductCacheOption {
	return func(c *TieredProductCache) {
		c.config = config
	}
}

// WithTieredLogger sets the logger for the cache
func WithTieredLogger(logger *zap.Logger) TieredProductCacheOption {
	return func(c *TieredProductCache) {
		c.logger = logger
	}
}

// NewTieredProductCache creates a new tiered product cache
func NewTieredProductCache(
	l1Cache *InMemoryProductCache,
	l2Cache *RedisProductCache,
	invalidator *RedisCacheInvalidator,
	opts ...TieredProductCacheOption,
) *TieredProductCache {
	cache := &TieredProductCache{
		l1Cache:     l1Cache,
		l2Cache:     l2Cache,
		invalidator: invalidator,
		config:      catalog.DefaultCacheConfig(),
		logger:      zap.NewNop(),
	}

	for _, opt := range opts {
		opt(cache)
	}

	return cache
}

// StartInvalidationSubscription starts listening for invalidation messages.
// It blocks, so call it in a goroutine after constructing the cache.
func (c *TieredProductCache) StartInvalidationSubscription(ctx context.Context) error {
	if c.invalidator == nil {
		return nil
	}

	return c.invalidator.Subscribe(ctx, func(msg catalog.CacheUpdateMessage) {
		c.handleInvalidationMessage(msg)
	})
}

func (c *TieredProductCache) handleInvalidationMessage(msg catalog.CacheUpdateMessage) {
	ctx := context.Background()

	switch msg.Action {
	case catalog.CacheUpdateActionUpdated, catalog.CacheUpdateActionDeleted:
		productID, err := uuid.Parse(msg.ProductID)
		if err != nil {
			c.logger.Error("failed to parse product ID in invalidation message",
				zap.String("product_id", msg.ProductID),
				zap.Error(err))
			return
		}
		if err := c.l1Cache.Delete(ctx, productID); err != nil {
			c.logger.Error("failed to invalidate L1 cache for product",
				zap.String("product_id", msg.ProductID),
				zap.Error(err))
		}
		c.logger.Debug("invalidated L1 cache for product",
			zap.String("action", string(msg.Action)),
			zap.String("product_id", msg.ProductID))

	case catalog.CacheUpdateActionInvalidateAll:
		if err := c.l1Cache.InvalidateAll(ctx); err != nil {
			c.logger.Error("failed to invalidate all L1 cache", zap.Error(err))
		}
		c.logger.Info("invalidated all L1 cache")
	}
}

// Get retrieves a product, checking L1 then L2
func (c *TieredProductCache) Get(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	product, err := c.l1Cache.Get(ctx, id)
	if err != nil {
		c.logger.Warn("L1 cache error", zap.String("product_id", id.String()), zap.Error(err))
	}
	if product != nil {
		atomic.AddInt64(&c.l1Hits, 1)
		return product, nil
	}
	atomic.AddInt64(&c.l1Misses, 1)

	product, err = c.l2Cache.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if product != nil {
		atomic.AddInt64(&c.l2Hits, 1)
		if err := c.l1Cache.Set(ctx, product, c.config.MemoryTTL); err != nil {
			c.logger.Warn("failed to populate L1 cache", zap.String("product_id", id.String()), zap.Error(err))
		}
		return product, nil
	}
	atomic.AddInt64(&c.l2Misses, 1)

	return nil, nil
}

// Set stores a product in both tiers and notifies other instances
func (c *TieredProductCache) Set(ctx context.Context, product *catalog.Product, ttl time.Duration) error {
	if product == nil {
		return nil
	}

	if err := c.l2Cache.Set(ctx, product, ttl); err != nil {
		return err
	}

	if err := c.l1Cache.Set(ctx, product, c.config.MemoryTTL); err != nil {
		c.logger.Warn("failed to set L1 cache", zap.String("product_id", product.ID.String()), zap.Error(err))
	}

	if c.invalidator != nil {
		if err := c.invalidator.PublishProductUpdate(ctx, product.ID.String()); err != nil {
			c.logger.Warn("failed to publish product update", zap.String("product_id", product.ID.String()), zap.Error(err))
		}
	}

	return nil
}

// Delete removes a product from both tiers and notifies other instances
func (c *TieredProductCache) Delete(ctx context.Context, id uuid.UUID) error {
	if err := c.l2Cache.Delete(ctx, id); err != nil {
		return err
	}

	if err := c.l1Cache.Delete(ctx, id); err != nil {
		c.logger.Warn("failed to delete from L1 cache", zap.String("product_id", id.String()), zap.Error(err))
	}

	if c.invalidator != nil {
		if err := c.invalidator.PublishProductDelete(ctx, id.String()); err != nil {
			c.logger.Warn("failed to publish product delete", zap.String("product_id", id.String()), zap.Error(err))
		}
	}

	return nil
}

// InvalidateAll clears both tiers and notifies other instances
func (c *TieredProductCache) InvalidateAll(ctx context.Context) error {
	if err := c.l2Cache.InvalidateAll(ctx); err != nil {
		return err
	}

	if err := c.l1Cache.InvalidateAll(ctx); err != nil {
		c.logger.Warn("failed to invalidate L1 cache", zap.Error(err))
	}

	if c.invalidator != nil {
		if err := c.invalidator.PublishInvalidateAll(ctx); err != nil {
			c.logger.Warn("failed to publish invalidate all", zap.Error(err))
		}
	}

	return nil
}

// Close releases the invalidator and both cache tiers
func (c *TieredProductCache) Close() error {
	var lastErr error

	if c.invalidator != nil {
		if err := c.invalidator.Close(); err != nil {
			lastErr = err
		}
	}

	if err := c.l2Cache.Close(); err != nil {
		lastErr = err
	}

	if err := c.l1Cache.Close(); err != nil {
		lastErr = err
	}

	return lastErr
}

// Stats returns hit/miss counters across both tiers
func (c *TieredProductCache) Stats() catalog.CacheStats {
	l1Hits := atomic.LoadInt64(&c.l1Hits)
	l1Misses := atomic.LoadInt64(&c.l1Misses)
	l2Hits := atomic.LoadInt64(&c.l2Hits)
	l2Misses := atomic.LoadInt64(&c.l2Misses)

	totalHits := l1Hits + l2Hits
	totalMisses := l2Misses // only count final misses

	var hitRatio float64
	if totalRequests := totalHits + totalMisses; totalRequests > 0 {
		hitRatio = float64(totalHits) / float64(totalRequests)
	}

	return catalog.CacheStats{
		L1Hits:       l1Hits,
		L1Misses:     l1Misses,
		L2Hits:       l2Hits,
		L2Misses:     l2Misses,
		TotalHits:    totalHits,
		TotalMisses:  totalMisses,
		HitRatio:     hitRatio,
		CacheEntries: int64(c.l1Cache.Count()),
	}
}

// ResetStats resets the cache statistics
func (c *TieredProductCache) ResetStats() {
	atomic.StoreInt64(&c.l1Hits, 0)
	atomic.StoreInt64(&c.l1Misses, 0)
	atomic.StoreInt64(&c.l2Hits, 0)
	atomic.StoreInt64(&c.l2Misses, 0)
	c.l1Cache.ResetStats()
}

var _ catalog.ProductCache = (*TieredProductCache)(nil)
