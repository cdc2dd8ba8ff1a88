package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/infrastructure/config"
)

const defaultCloseTimeout = 5 * time.Second

// RedisCacheInvalidator implements catalog.CacheInvalidator using Redis Pub/Sub.
// Each instance invalidates its L1 tier when another instance mutates a product.
type RedisCacheInvalidator struct {
	client     *redis.Client
	ownsClient bool
	channel    string
	logger     *zap.Logger
	cancelFn   context.CancelFunc
	doneCh     chan struct{}
	doneOnce   sync.Once
	mu         sync.Mutex
	isRunning  bool
}

// RedisCacheInvalidatorOption is a functional option for configuring the invalidator
type RedisCacheInvalidatorOption func(*RedisCacheInvalidator)

// WithInvalidatorChannel sets the Pub/Sub channel name
func WithInvalidatorChannel(channel string) RedisCacheInvalidatorOption {
	return func(i *RedisCacheInvalidator) {
		i.channel = channel
	}
}

// WithInvalidatorLogger sets the logger for the invalidator
func WithInvalidatorLogger(logger *zap.Logger) RedisCacheInvalidatorOption {
	return func(i *RedisCacheInvalidator) {
		i.logger = logger
	}
}

// NewRedisCacheInvalidator creates a Redis Pub/Sub cache invalidator with its own client
func NewRedisCacheInvalidator(cfg config.RedisConfig, opts ...RedisCacheInvalidatorOption) (*RedisCacheInvalidator, error) {
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

	invalidator := &RedisCacheInvalidator{
		client:     client,
		ownsClient: true,
		channel:    catalog.DefaultCacheConfig().PubSubChannel,
		logger:     zap.NewNop(),
		doneCh:     make(chan struct{}),
	}

	for _, opt := range opts {
		opt(invalidator)
	}

	return invalidator, nil
}

// NewRedisCacheInvalidatorWithClient creates an invalidator with an existing Redis client.
// The caller retains ownership of the client.
func NewRedisCacheInvalidatorWithClient(client *redis.Client, opts ...RedisCacheInvalidatorOption) *RedisCacheInvalidator {
	invalidator := &RedisCacheInvalidator{
		client:     client,
		ownsClient: false,
		channel:    catalog.DefaultCacheConfig().PubSubChannel,
		logger:     zap.NewNop(),
		doneCh:     make(chan struct{}),
	}

	for _, opt := range opts {
		opt(invalidator)
	}

	return invalidator
}

// Publish sends a cache update notification to all subscribers
func (i *RedisCacheInvalidator) Publish(ctx context.Context, msg catalog.CacheUpdateMessage) error {
	if msg.Timestamp == 0 {
		msg.Timestamp = time.Now().UnixNano()
	}

	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	if err := i.client.Publish(ctx, i.channel, data).Err(); err != nil {
		i.logger.Error("failed to publish cache update message",
			zap.String("channel", i.channel),
			zap.Error(err))
		return fmt.Errorf("failed to publish message: %w", err)
	}

	i.logger.Debug("published cache update message",
		zap.String("action", string(msg.Action)),
		zap.String("product_id", msg.ProductID))
	return nil
}

// Subscribe listens for cache update notifications and invokes the callback
// for each message. It blocks until the context is cancelled.
func (i *RedisCacheInvalidator) Subscribe(ctx context.Context, callback func(msg catalog.CacheUpdateMessage)) error {
	i.mu.Lock()
	if i.isRunning {
		i.mu.Unlock()
		return fmt.Errorf("subscription already running")
	}
	i.isRunning = true
	i.mu.Unlock()

	subCtx, cancel := context.WithCancel(ctx)
	i.mu.Lock()
	i.cancelFn = cancel
	i.mu.Unlock()

	pubsub := i.client.Subscribe(subCtx, i.channel)
	defer pubsub.Close()

	if _, err := pubsub.Receive(subCtx); err != nil {
		i.mu.Lock()
		i.isRunning = false
		i.mu.Unlock()
		return fmt.Errorf("failed to subscribe to channel: %w", err)
	}

	i.logger.Info("subscribed to cache invalidation channel",
		zap.String("channel", i.channel))

	ch := pubsub.Channel()

	for {
		select {
		case <-subCtx.Done():
			i.logger.Info("cache invalidation subscription stopped")
			i.mu.Lock()
			i.isRunning = false
			i.mu.Unlock()
			i.markDone()
			return subCtx.Err()
		case msg, ok := <-ch:
			if !ok {
				i.logger.Warn("cache invalidation channel closed")
				i.mu.Lock()
				i.isRunning = false
				i.mu.Unlock()
				i.markDone()
				return nil
			}

			var updateMsg catalog.CacheUpdateMessage
			if err := json.Unmarshal([]byte(msg.Payload), &updateMsg); err != nil {
				i.logger.Error("failed to unmarshal cache update message",
					zap.String("payload", msg.Payload),
					zap.Error(err))
				continue
			}

			// Callback runs in its own goroutine so a slow handler
			// cannot stall the subscription loop
			go func(m catalog.CacheUpdateMessage) {
				defer func() {
					if r := recover(); r != nil {
						i.logger.Error("panic in cache update callback",
							zap.Any("panic", r))
					}
				}()
				callback(m)
			}(updateMsg)
		}
	}
}

func (i *RedisCacheInvalidator) markDone() {
	i.doneOnce.Do(func() {
		close(i.doneCh)
	})
}

// Close stops the subscription and releases the client if owned
func (i *RedisCacheInvalidator) Close() error {
	i.mu.Lock()
	cancelFn := i.cancelFn
	i.mu.Unlock()

	if cancelFn != nil {
		cancelFn()
		select {
		case <-i.doneCh:
		case <-time.After(defaultCloseTimeout):
			i.logger.Warn("timeout waiting for subscription to stop")
		}
	}

	if i.ownsClient {
		return i.client.Close()
	}
	return nil
}

// PublishProductUpdate publishes a product update notification
func (i *RedisCacheInvalidator) PublishProductUpdate(ctx context.Context, productID string) error {
	return i.Publish(ctx, catalog.CacheUpdateMessage{
		Action:    catalog.CacheUpdateActionUpdated,
		ProductID: productID,
	})
}

// PublishProductDelete publishes a product deletion notification
func (i *RedisCacheInvalidator) PublishProductDelete(ctx context.Context, productID string) error {
	return i.Publish(ctx, catalog.CacheUpdateMessage{
		Action:    catalog.CacheUpdateActionDeleted,
		ProductID: productID,
	})
}

// PublishInvalidateAll publishes an invalidate-all notification
func (i *RedisCacheInvalidator) PublishInvalidateAll(ctx context.Context) error {
	return i.Publish(ctx, catalog.CacheUpdateMessage{
		Action: catalog.CacheUpdateActionInvalidateAll,
	})
}

var _ catalog.CacheInvalidator = (*RedisCacheInvalidator)(nil)
