package vectorindex

import (
	"context"

	"github.com/redis/go-redis/v9"

	"cogmem/internal/config"
)

// Build assembles the configured Backend stack: the in-process
// deterministic backend, or Qdrant wrapped in a circuit breaker, with
// an encode cache (in-process LRU or Redis) in front of either.
func Build(ctx context.Context, cfg config.VectorConfig) (Backend, error) {
	var inner Backend
	switch cfg.Backend {
	case "qdrant":
		qb, err := NewQdrantBackend(ctx, QdrantConfig{
			Host:       cfg.QdrantHost,
			Port:       cfg.QdrantPort,
			APIKey:     cfg.QdrantAPIKey,
			UseTLS:     cfg.QdrantUseTLS,
			Collection: cfg.QdrantCollection,
		})
		if err != nil {
			return nil, err
		}
		inner = NewCircuitBackend(qb, nil)
	default:
		inner = NewMemoryBackend()
	}

	var cache VectorCache
	if cfg.CacheBackend == "redis" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		cache = NewRedisVectorCache(client, cfg.CacheTTL)
	} else {
		cache = NewLRUVectorCache(cfg.CacheSize, cfg.CacheTTL)
	}

	return NewCachedBackend(inner, cache), nil
}
