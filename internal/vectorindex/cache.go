package vectorindex

import (
	"container/list"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"
)

// VectorCache caches encoded vectors by text.
type VectorCache interface {
	Get(text string) ([]float32, bool)
	Set(text string, vec []float32)
}

type lruEntry struct {
	key       string
	value     []float32
	element   *list.Element
	createdAt time.Time
}

// LRUVectorCache is an in-process LRU cache with a TTL, used when no
// external cache (Redis) is configured.
type LRUVectorCache struct {
	mu      sync.Mutex
	cache   map[string]*lruEntry
	lru     *list.List
	maxSize int
	ttl     time.Duration

	hits, misses, evictions int64
}

// NewLRUVectorCache creates an LRU cache with the given capacity and TTL.
func NewLRUVectorCache(maxSize int, ttl time.Duration) *LRUVectorCache {
	if maxSize <= 0 {
		maxSize = 1000
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &LRUVectorCache{
		cache:   make(map[string]*lruEntry),
		lru:     list.New(),
		maxSize: maxSize,
		ttl:     ttl,
	}
}

func (c *LRUVectorCache) Get(text string) ([]float32, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := hashKey(text)
	entry, ok := c.cache[key]
	if !ok {
		c.misses++
		return nil, false
	}
	if time.Since(entry.createdAt) > c.ttl {
		c.removeEntry(entry)
		c.misses++
		return nil, false
	}
	c.lru.MoveToFront(entry.element)
	c.hits++

	out := make([]float32, len(entry.value))
	copy(out, entry.value)
	return out, true
}

func (c *LRUVectorCache) Set(text string, vec []float32) {
	if len(vec) == 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	key := hashKey(text)
	if entry, ok := c.cache[key]; ok {
		entry.value = append([]float32(nil), vec...)
		entry.createdAt = time.Now()
		c.lru.MoveToFront(entry.element)
		return
	}

	entry := &lruEntry{key: key, value: append([]float32(nil), vec...), createdAt: time.Now()}
	entry.element = c.lru.PushFront(entry)
	c.cache[key] = entry

	for c.lru.Len() > c.maxSize {
		oldest := c.lru.Back()
		if oldest == nil {
			break
		}
		c.removeEntry(oldest.Value.(*lruEntry))
		c.evictions++
	}
}

func (c *LRUVectorCache) removeEntry(e *lruEntry) {
	delete(c.cache, e.key)
	c.lru.Remove(e.element)
}

// Stats reports the cache's size and hit/miss/eviction counters.
type Stats struct {
	Size, MaxSize           int
	Hits, Misses, Evictions int64
	HitRate                 float64
}

func (c *LRUVectorCache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	total := c.hits + c.misses
	rate := 0.0
	if total > 0 {
		rate = float64(c.hits) / float64(total)
	}
	return Stats{
		Size: c.lru.Len(), MaxSize: c.maxSize,
		Hits: c.hits, Misses: c.misses, Evictions: c.evictions,
		HitRate: rate,
	}
}

func hashKey(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

// CachedBackend decorates a Backend, caching Encode() results so that
// repeated Encode calls for the same text skip re-encoding.
// Rebuild and Search still pass through to the wrapped backend: only
// the raw encode step is cacheable, since the backend is an opaque
// build-once-and-query service.
type CachedBackend struct {
	inner Backend
	cache VectorCache
}

// NewCachedBackend wraps inner with cache.
func NewCachedBackend(inner Backend, cache VectorCache) *CachedBackend {
	return &CachedBackend{inner: inner, cache: cache}
}

// Rebuild passes through: the chunking contract requires a full,
// uncached rebuild every time.
func (c *CachedBackend) Rebuild(ctx context.Context, chunks []Chunk) error {
	return c.inner.Rebuild(ctx, chunks)
}

// Search passes through to the wrapped backend.
func (c *CachedBackend) Search(ctx context.Context, query string, k int) ([]Hit, error) {
	return c.inner.Search(ctx, query, k)
}

// Encode checks the cache before delegating to inner for any miss.
func (c *CachedBackend) Encode(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	var missTexts []string
	var missIdx []int

	for i, t := range texts {
		if v, ok := c.cache.Get(t); ok {
			out[i] = v
			continue
		}
		missTexts = append(missTexts, t)
		missIdx = append(missIdx, i)
	}

	if len(missTexts) == 0 {
		return out, nil
	}

	fetched, err := c.inner.Encode(ctx, missTexts)
	if err != nil {
		return nil, err
	}
	for j, idx := range missIdx {
		out[idx] = fetched[j]
		c.cache.Set(missTexts[j], fetched[j])
	}
	return out, nil
}
