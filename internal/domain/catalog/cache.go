package catalog

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// CacheConfig holds tuning for the product read cache
type CacheConfig struct {
	ProductTTL    time.Duration // L2 (Redis) TTL
	MemoryTTL     time.Duration // L1 (in-process) TTL, kept short to bound staleness
	PubSubChannel string        // Redis channel for cross-instance invalidation
}

// DefaultCacheConfig returns the default cache configuration
func DefaultCacheConfig() CacheConfig {
	return CacheConfig{
		ProductTTL:    5 * time.Minute,
		MemoryTTL:     30 * time.Second,
		PubSubChannel: "storefront:catalog:cache",
	}
}

// ProductCache caches products for the read path.
// A nil product with nil error means cache miss.
type ProductCache interface {
	Get(ctx context.Context, id uuid.UUID) (*Product, error)
	Set(ctx context.Context, product *Product, ttl time.Duration) error
	Delete(ctx context.Context, id uuid.UUID) error
	InvalidateAll(ctx context.Context) error
	Close() error
}

// CacheUpdateAction identifies the kind of invalidation message
type CacheUpdateAction string

const (
	CacheUpdateActionUpdated       CacheUpdateAction = "updated"
	CacheUpdateActionDeleted       CacheUpdateAction = "deleted"
	CacheUpdateActionInvalidateAll CacheUpdateAction = "invalidate_all"
)

// CacheUpdateMessage is broadcast over Redis pub/sub when a product changes
type CacheUpdateMessage struct {
	Action    CacheUpdateAction `json:"action"`
	ProductID string            `json:"product_id,omitempty"`
	Timestamp int64             `json:"timestamp"`
}

// CacheInvalidator broadcasts and receives cache invalidation messages
type CacheInvalidator interface {
	Publish(ctx context.Context, msg CacheUpdateMessage) error
	Subscribe(ctx context.Context, callback func(msg CacheUpdateMessage)) error
	Close() error
}

// CacheStats reports hit/miss counters for monitoring
type CacheStats struct {
	L1Hits       int64   `json:"l1_hits"`
	L1Misses     int64   `json:"l1_misses"`
	L2Hits       int64   `json:"l2_hits"`
	L2Misses     int64   `json:"l2_misses"`
	TotalHits    int64   `json:"total_hits"`
	TotalMisses  int64   `json:"total_misses"`
	HitRatio     float64 `json:"hit_ratio"`
	CacheEntries int64   `json:"cache_entries"`
}
