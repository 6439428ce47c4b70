package search

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	pkgredis "github.com/talenthub/search-platform/pkg/redis"
)

const cacheKeyPrefix = "search:"

// ResultCache caches whole search responses in Redis, keyed by a hash of the
// normalized query. Identical concurrent queries collapse into a single
// computation via singleflight.
type ResultCache struct {
	client *pkgredis.Client
	ttl    time.Duration
	group  singleflight.Group
	logger *slog.Logger
	hits   atomic.Int64
	misses atomic.Int64
}

// NewResultCache creates a cache writing entries with the given TTL.
func NewResultCache(client *pkgredis.Client, ttl time.Duration) *ResultCache {
	return &ResultCache{
		client: client,
		ttl:    ttl,
		logger: slog.Default().With("component", "result-cache"),
	}
}

func (c *ResultCache) get(ctx context.Context, key string) (*Result, bool) {
	data, err := c.client.Get(ctx, key)
	if err != nil {
		if !pkgredis.IsNilError(err) {
			c.logger.Error("cache get failed", "key", key, "error", err)
		}
		c.misses.Add(1)
		return nil, false
	}
	var result Result
	if err := json.Unmarshal([]byte(data), &result); err != nil {
		c.logger.Error("cache unmarshal failed", "key", key, "error", err)
		c.misses.Add(1)
		return nil, false
	}
	c.hits.Add(1)
	return &result, true
}

func (c *ResultCache) set(ctx context.Context, key string, result *Result) {
	data, err := json.Marshal(result)
	if err != nil {
		c.logger.Error("cache marshal failed", "key", key, "error", err)
		return
	}
	if err := c.client.Set(ctx, key, data, c.ttl); err != nil {
		c.logger.Error("cache set failed", "key", key, "error", err)
	}
}

// GetOrCompute returns the cached result for the query, or runs computeFn
// once (even under concurrent identical queries) and caches its output. The
// second return reports whether the result came from the cache.
func (c *ResultCache) GetOrCompute(ctx context.Context, q *Query, computeFn func() (*Result, error)) (*Result, bool, error) {
	key, err := CacheKey(q)
	if err != nil {
		// An unkeyable query is served uncached.
		result, err := computeFn()
		return result, false, err
	}

	if result, ok := c.get(ctx, key); ok {
		return result, true, nil
	}
	val, err, _ := c.group.Do(key, func() (interface{}, error) {
		if result, ok := c.get(ctx, key); ok {
			return result, nil
		}
		result, err := computeFn()
		if err != nil {
			return nil, err
		}
		c.set(ctx, key, result)
		return result, nil
	})
	if err != nil {
		return nil, false, err
	}
	return val.(*Result), false, nil
}

// Invalidate drops every cached search result. The indexer calls this after
// each write so queries never see deleted or stale documents.
func (c *ResultCache) Invalidate(ctx context.Context) error {
	deleted, err := c.client.FlushByPattern(ctx, cacheKeyPrefix+"*")
	if err != nil {
		return fmt.Errorf("invalidating result cache: %w", err)
	}
	c.logger.Debug("cache invalidate", "keys_deleted", deleted)
	return nil
}

// Stats returns cumulative hit and miss counts.
func (c *ResultCache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

// CacheKey derives a stable key from the query. Marshaling the struct keeps
// field order fixed, so equal queries always hash identically.
func CacheKey(q *Query) (string, error) {
	normalized := *q
	normalized.FreeText = normalizeText(q.FreeText)
	raw, err := json.Marshal(&normalized)
	if err != nil {
		return "", fmt.Errorf("marshaling query for cache key: %w", err)
	}
	hash := sha256.Sum256(raw)
	return fmt.Sprintf("%s%x", cacheKeyPrefix, hash[:16]), nil
}

func normalizeText(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}
