package vectorindex

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisVectorCache stores encoded vectors in Redis, used in place of
// LRUVectorCache when the vector cache_backend setting is "redis" (see
// internal/config). It satisfies the same VectorCache interface so the
// CachedBackend decorator is indifferent to which backs it.
type RedisVectorCache struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
}

// NewRedisVectorCache creates a cache backed by the given Redis client.
func NewRedisVectorCache(client *redis.Client, ttl time.Duration) *RedisVectorCache {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &RedisVectorCache{client: client, ttl: ttl, prefix: "cogmem:vec:"}
}

// Get fetches a cached vector, blocking briefly on Redis. Any error
// (including a connection failure) is treated as a cache miss rather
// than surfaced; the cache is a pure optimization, never load-bearing.
func (c *RedisVectorCache) Get(text string) ([]float32, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	raw, err := c.client.Get(ctx, c.prefix+hashKey(text)).Bytes()
	if err != nil {
		return nil, false
	}
	var vec []float32
	if err := json.Unmarshal(raw, &vec); err != nil {
		return nil, false
	}
	return vec, true
}

// Set stores a vector with the cache's TTL, best-effort.
func (c *RedisVectorCache) Set(text string, vec []float32) {
	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	raw, err := json.Marshal(vec)
	if err != nil {
		return
	}
	_ = c.client.Set(ctx, c.prefix+hashKey(text), raw, c.ttl).Err()
}
