package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"quill/internal/middleware"
	"quill/internal/observability"

	"github.com/redis/go-redis/v9"
)

const (
	pageCachePrefix        = "pagecache"
	pageCacheGenerationKey = "pagecache:generation"
)

// IndexPageKey is the cache key for one page of the global listing.
func IndexPageKey(page string) string {
	return "index:page:" + page
}

// PageCache stores rendered listing pages for a bounded time.
// Invalidate drops every entry at once.
//
// Get reports the generation it read under. Set only stores a value when that
// generation is still current, so a page computed before an Invalidate is
// never cached after it.
type PageCache interface {
	Get(ctx context.Context, key string, dest any) (hit bool, gen int64, err error)
	Set(ctx context.Context, key string, gen int64, value any) error
	Invalidate(ctx context.Context) error
	TTL() time.Duration
}

// NewPageCache picks Redis when a client is available and an in-process cache otherwise.
func NewPageCache(rdb *redis.Client, ttl time.Duration) PageCache {
	if rdb == nil {
		return NewMemoryPageCache(ttl)
	}
	return NewRedisPageCache(rdb, ttl)
}

// Remember returns the cached value for key, or runs fetch to fill dest and stores it.
// Cache failures are logged and degrade to calling fetch.
func Remember(ctx context.Context, pc PageCache, key string, dest any, fetch func() error) error {
	if pc == nil || pc.TTL() <= 0 {
		return fetch()
	}

	hit, gen, readErr := pc.Get(ctx, key, dest)
	switch {
	case readErr != nil:
		observability.PageCacheRequests.WithLabelValues(observability.CacheError).Inc()
		middleware.Logger.WarnContext(ctx, "page cache read failed", slog.String("key", key), slog.String("error", readErr.Error()))
	case hit:
		observability.PageCacheRequests.WithLabelValues(observability.CacheHit).Inc()
		return nil
	default:
		observability.PageCacheRequests.WithLabelValues(observability.CacheMiss).Inc()
	}

	if err := fetch(); err != nil {
		return err
	}
	// Without a trusted generation the result is served but not stored.
	if readErr != nil {
		return nil
	}

	if err := pc.Set(ctx, key, gen, dest); err != nil {
		middleware.Logger.WarnContext(ctx, "page cache write failed", slog.String("key", key), slog.String("error", err.Error()))
	}
	return nil
}

// RedisPageCache namespaces entries by a generation counter. Invalidate bumps
// the counter, so older entries become unreachable immediately and expire by TTL.
type RedisPageCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisPageCache creates a Redis-backed page cache.
func NewRedisPageCache(rdb *redis.Client, ttl time.Duration) *RedisPageCache {
	return &RedisPageCache{client: rdb, ttl: ttl}
}

func (c *RedisPageCache) TTL() time.Duration {
	return c.ttl
}

func (c *RedisPageCache) generation(ctx context.Context) (int64, error) {
	gen, err := c.client.Get(ctx, pageCacheGenerationKey).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		return 0, err
	}
	return gen, nil
}

func namespaced(gen int64, key string) string {
	return fmt.Sprintf("%s:%d:%s", pageCachePrefix, gen, key)
}

func (c *RedisPageCache) Get(ctx context.Context, key string, dest any) (bool, int64, error) {
	gen, err := c.generation(ctx)
	if err != nil {
		return false, 0, err
	}
	data, err := c.client.Get(ctx, namespaced(gen, key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, gen, nil
	}
	if err != nil {
		return false, gen, err
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return false, gen, fmt.Errorf("decode cached page %s: %w", key, err)
	}
	return true, gen, nil
}

// Set writes under gen's namespace. A write racing an Invalidate lands in the
// retired namespace, where no reader looks.
func (c *RedisPageCache) Set(ctx context.Context, key string, gen int64, value any) error {
	current, err := c.generation(ctx)
	if err != nil {
		return err
	}
	if current != gen {
		return nil
	}
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode page %s: %w", key, err)
	}
	return c.client.Set(ctx, namespaced(gen, key), data, c.ttl).Err()
}

func (c *RedisPageCache) Invalidate(ctx context.Context) error {
	if err := c.client.Incr(ctx, pageCacheGenerationKey).Err(); err != nil {
		return err
	}
	observability.PageCacheInvalidations.Inc()
	return nil
}

type memoryEntry struct {
	data    []byte
	expires time.Time
}

// MemoryPageCache is the single-process fallback used without Redis.
type MemoryPageCache struct {
	mu      sync.Mutex
	ttl     time.Duration
	gen     int64
	entries map[string]memoryEntry
	now     func() time.Time
}

// NewMemoryPageCache creates an in-process page cache.
func NewMemoryPageCache(ttl time.Duration) *MemoryPageCache {
	return &MemoryPageCache{
		ttl:     ttl,
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

func (c *MemoryPageCache) TTL() time.Duration {
	return c.ttl
}

func (c *MemoryPageCache) Get(_ context.Context, key string, dest any) (bool, int64, error) {
	c.mu.Lock()
	gen := c.gen
	entry, ok := c.entries[key]
	if ok && !c.now().Before(entry.expires) {
		delete(c.entries, key)
		ok = false
	}
	c.mu.Unlock()

	if !ok {
		return false, gen, nil
	}
	if err := json.Unmarshal(entry.data, dest); err != nil {
		return false, gen, fmt.Errorf("decode cached page %s: %w", key, err)
	}
	return true, gen, nil
}

func (c *MemoryPageCache) Set(_ context.Context, key string, gen int64, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode page %s: %w", key, err)
	}

	c.mu.Lock()
	if gen == c.gen {
		c.entries[key] = memoryEntry{data: data, expires: c.now().Add(c.ttl)}
	}
	c.mu.Unlock()
	return nil
}

func (c *MemoryPageCache) Invalidate(_ context.Context) error {
	c.mu.Lock()
	c.gen++
	c.entries = make(map[string]memoryEntry)
	c.mu.Unlock()
	observability.PageCacheInvalidations.Inc()
	return nil
}
