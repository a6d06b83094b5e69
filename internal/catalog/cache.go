package catalog

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

const redisKey = "catalog:questions"

// RedisCache is a read-through cache over a Source. The full catalog is
// stored as one JSON value with a TTL; cache misses are collapsed with
// singleflight so a cold start does not stampede the database.
type RedisCache struct {
	client *redis.Client
	source Source
	ttl    time.Duration
	sf     singleflight.Group
}

func NewRedisCache(client *redis.Client, source Source, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, source: source, ttl: ttl}
}

func (c *RedisCache) All(ctx context.Context) ([]Question, error) {
	if raw, err := c.client.Get(ctx, redisKey).Bytes(); err == nil {
		var qs []Question
		if err := json.Unmarshal(raw, &qs); err == nil {
			return qs, nil
		}
		// Corrupt cache entry: fall through and refill.
	}

	result, err, _ := c.sf.Do(redisKey, func() (interface{}, error) {
		// Re-check in case another goroutine filled the cache.
		if raw, err := c.client.Get(ctx, redisKey).Bytes(); err == nil {
			var qs []Question
			if err := json.Unmarshal(raw, &qs); err == nil {
				return qs, nil
			}
		}

		qs, err := c.source.All(ctx)
		if err != nil {
			return nil, err
		}
		if buf, err := json.Marshal(qs); err == nil {
			// Best-effort fill: a Redis outage must not fail the read.
			_ = c.client.Set(ctx, redisKey, buf, c.ttl).Err()
		}
		return qs, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]Question), nil
}

// MemoryCache caches the catalog in-process with a TTL. Used when no
// Redis is configured.
type MemoryCache struct {
	source Source
	ttl    time.Duration

	mu        sync.RWMutex
	questions []Question
	expires   time.Time
}

func NewMemoryCache(source Source, ttl time.Duration) *MemoryCache {
	return &MemoryCache{source: source, ttl: ttl}
}

func (c *MemoryCache) All(ctx context.Context) ([]Question, error) {
	c.mu.RLock()
	if c.questions != nil && time.Now().Before(c.expires) {
		qs := c.questions
		c.mu.RUnlock()
		return qs, nil
	}
	c.mu.RUnlock()

	qs, err := c.source.All(ctx)
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	c.questions = qs
	c.expires = time.Now().Add(c.ttl)
	c.mu.Unlock()
	return qs, nil
}
