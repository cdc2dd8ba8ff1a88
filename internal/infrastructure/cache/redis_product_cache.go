package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/infrastructure/config"
)

const defaultScanBatchSize = 100

const productKeyPrefix = "storefront:catalog:product:"

// RedisProductCache implements catalog.ProductCache using Redis.
// It serves as the shared L2 tier of the catalog read cache.
type RedisProductCache struct {
	client     *redis.Client
	ownsClient bool
	config     catalog.CacheConfig
	logger     *zap.Logger
}

// RedisProductCacheOption is a functional option for configuring the cache
type RedisProductCacheOption func(*RedisProductCache)

// WithCacheConfig sets the cache configuration
func WithCacheConfig(config catalog.CacheConfig) RedisProductCacheOption {
	return func(c *RedisProductCache) {
		c.config = config
	}
}

// WithCacheLogger sets the logger for the cache
func WithCacheLogger(logger *zap.Logger) RedisProductCacheOption {
	return func(c *RedisProductCache) {
		c.logger = logger
	}
}

// NewRedisProductCache creates a Redis-based product cache with its own client
func NewRedisProductCache(cfg config.RedisConfig, opts ...RedisProductCacheOption) (*RedisProductCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	cache := &RedisProductCache{
		client:     client,
		ownsClient: true,
		config:     catalog.DefaultCacheConfig(),
		logger:     zap.NewNop(),
	}

	for _, opt := range opts {
		opt(cache)
	}

	return cache, nil
}

// NewRedisProductCacheWithClient creates a cache with an existing Redis client.
// The caller retains ownership of the client.
func NewRedisProductCacheWithClient(client *redis.Client, opts ...RedisProductCacheOption) *RedisProductCache {
	cache := &RedisProductCache{
		client:     client,
		ownsClient: false,
		config:     catalog.DefaultCacheConfig(),
		logger:     zap.NewNop(),
	}

	for _, opt := range opts {
		opt(cache)
	}

	return cache
}

func (c *RedisProductCache) productKey(id uuid.UUID) string {
	return productKeyPrefix + id.String()
}

// Get retrieves a product from cache. A nil product means a miss.
func (c *RedisProductCache) Get(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	cacheKey := c.productKey(id)

	data, err := c.client.Get(ctx, cacheKey).Bytes()
	if err == redis.Nil {
		c.logger.Debug("cache miss for product", zap.String("product_id", id.String()))
		return nil, nil
	}
	if err != nil {
		c.logger.Error("failed to get product from cache",
			zap.String("product_id", id.String()),
			zap.Error(err))
		return nil, fmt.Errorf("failed to get product from cache: %w", err)
	}

	var product catalog.Product
	if err := json.Unmarshal(data, &product); err != nil {
		c.logger.Error("failed to unmarshal cached product",
			zap.String("product_id", id.String()),
			zap.Error(err))
		// Corrupted entries are dropped so the next read repopulates
		_ = c.client.Del(ctx, cacheKey)
		return nil, fmt.Errorf("failed to unmarshal product: %w", err)
	}

	c.logger.Debug("cache hit for product", zap.String("product_id", id.String()))
	return &product, nil
}

// Set stores a product in cache
func (c *RedisProductCache) Set(ctx context.Context, product *catalog.Product, ttl time.Duration) error {
	if product == nil {
		return nil
	}

	if ttl == 0 {
		ttl = c.config.ProductTTL
	}

	data, err := json.Marshal(product)
	if err != nil {
		return fmt.Errorf("failed to marshal product: %w", err)
	}

	cacheKey := c.productKey(product.ID)
	if err := c.client.Set(ctx, cacheKey, data, ttl).Err(); err != nil {
		c.logger.Error("failed to set product in cache",
			zap.String("product_id", product.ID.String()),
			zap.Error(err))
		return fmt.Errorf("failed to set product in cache: %w", err)
	}

	c.logger.Debug("cached product",
		zap.String("product_id", product.ID.String()),
		zap.Duration("ttl", ttl))
	return nil
}

// Delete removes a product from cache
func (c *RedisProductCache) Delete(ctx context.Context, id uuid.UUID) error {
	if err := c.client.Del(ctx, c.productKey(id)).Err(); err != nil {
		c.logger.Error("failed to delete product from cache",
			zap.String("product_id", id.String()),
			zap.Error(err))
		return fmt.Errorf("failed to delete product from cache: %w", err)
	}
	return nil
}

// InvalidateAll removes all cached products.
// SCAN is used instead of KEYS to avoid blocking Redis.
func (c *RedisProductCache) InvalidateAll(ctx context.Context) error {
	var cursor uint64
	var deletedCount int64

	for {
		var keys []string
		var err error
		keys, cursor, err = c.client.Scan(ctx, cursor, productKeyPrefix+"*", defaultScanBatchSize).Result()
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

		if cursor == 0 {
			break
		}
	}

	c.logger.Info("invalidated product cache", zap.Int64("deleted_count", deletedCount))
	return nil
}

// Close releases the Redis client if this cache owns it
func (c *RedisProductCache) Close() error {
	if c.ownsClient {
		return c.client.Close()
	}
	return nil
}

var _ catalog.ProductCache = (*RedisProductCache)(nil)
