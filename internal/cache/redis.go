package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/algorhythmicdev/reclame-OMS-sub000/internal/config"
)

// Order cache keys
const (
	OrderKeyFmt   = "order:%s"
	OrderIndexKey = "orders:index"
	SummaryKey    = "metrics:summary"
)

// Cache TTLs. Orders are invalidated on every save, so the TTL is only a
// safety net against missed invalidations.
const (
	orderTTL   = 10 * time.Minute
	summaryTTL = 1 * time.Minute
)

var client *redis.Client

// Init initializes the Redis connection. The cache degrades gracefully:
// every helper is a no-op when the client is nil.
func Init(cfg *config.Config) error {
	client = redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Host + ":" + cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       0,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		client = nil
		return err
	}
	return nil
}

// GetClient returns the Redis client (nil when the cache is disabled).
func GetClient() *redis.Client {
	return client
}

// GetCachedOrder returns the cached JSON document for an order id.
func GetCachedOrder(ctx context.Context, id string) ([]byte, bool) {
	if client == nil {
		return nil, false
	}
	data, err := client.Get(ctx, fmt.Sprintf(OrderKeyFmt, id)).Bytes()
	if err != nil {
		return nil, false
	}
	return data, true
}

// CacheOrder stores an order's JSON document.
func CacheOrder(ctx context.Context, id string, data []byte) {
	if client == nil {
		return
	}
	client.Set(ctx, fmt.Sprintf(OrderKeyFmt, id), data, orderTTL)
}

// InvalidateOrder drops the cached document and the list index for an order.
func InvalidateOrder(ctx context.Context, id string) {
	if client == nil {
		return
	}
	client.Del(ctx, fmt.Sprintf(OrderKeyFmt, id), OrderIndexKey, SummaryKey)
}

// GetCached returns cached data for a key.
func GetCached(ctx context.Context, key string) ([]byte, bool) {
	if client == nil {
		return nil, false
	}
	data, err := client.Get(ctx, key).Bytes()
	if err != nil {
		return nil, false
	}
	return data, true
}

// SetCached stores data with a TTL.
func SetCached(ctx context.Context, key string, data []byte, ttl time.Duration) {
	if client == nil {
		return
	}
	client.Set(ctx, key, data, ttl)
}

// CacheSummary stores the factory-floor metrics summary.
func CacheSummary(ctx context.Context, data []byte) {
	SetCached(ctx, SummaryKey, data, summaryTTL)
}

// InvalidatePattern removes all keys matching a glob pattern.
func InvalidatePattern(ctx context.Context, pattern string) {
	if client == nil {
		return
	}
	keys, err := client.Keys(ctx, pattern).Result()
	if err == nil && len(keys) > 0 {
		client.Del(ctx, keys...)
	}
}
