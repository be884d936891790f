// Package rendercache is the Redis-backed cache for rendered page payloads.
// Entries are keyed by request path and may additionally belong to tag sets,
// so invalidation works at two granularities: a single path, or every entry
// sharing a tag.
//
// The content service is the only writer of entries; the revalidation gateway
// is the only writer of invalidations.
package rendercache

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/thenewsfeed/content-platform/pkg/config"
	"github.com/thenewsfeed/content-platform/pkg/metrics"
	pkgredis "github.com/thenewsfeed/content-platform/pkg/redis"
)

const (
	renderKeyPrefix = "render:"
	tagKeyPrefix    = "rendertag:"
)

// Cache stores rendered payloads with a fixed TTL.
type Cache struct {
	client  *pkgredis.Client
	ttl     time.Duration
	group   singleflight.Group
	metrics *metrics.Metrics
	logger  *slog.Logger
	hits    atomic.Int64
	misses  atomic.Int64
}

// New creates a Cache using cfg.RenderTTL as the entry lifetime. m may be nil.
func New(client *pkgredis.Client, cfg config.RedisConfig, m *metrics.Metrics) *Cache {
	return &Cache{
		client:  client,
		ttl:     cfg.RenderTTL,
		metrics: m,
		logger:  slog.Default().With("component", "render-cache"),
	}
}

// Get returns the cached payload for path, if present.
func (c *Cache) Get(ctx context.Context, path string) ([]byte, bool) {
	data, err := c.client.Get(ctx, renderKey(path))
	if err != nil {
		if !pkgredis.IsNilError(err) {
			c.logger.Error("cache get failed", "path", path, "error", err)
		}
		c.countMiss()
		return nil, false
	}
	c.countHit()
	return []byte(data), true
}

// Set stores a payload for path and registers it under the given tags.
func (c *Cache) Set(ctx context.Context, path string, tags []string, payload []byte) {
	key := renderKey(path)
	if err := c.client.Set(ctx, key, payload, c.ttl); err != nil {
		c.logger.Error("cache set failed", "path", path, "error", err)
		return
	}
	for _, tag := range tags {
		if err := c.client.SAdd(ctx, tagKey(tag), key); err != nil {
			c.logger.Error("tag registration failed", "path", path, "tag", tag, "error", err)
		}
	}
}

// GetOrCompute returns the cached payload for path, computing and storing it
// on a miss. Concurrent misses for the same path are coalesced so the
// compute function runs once.
func (c *Cache) GetOrCompute(ctx context.Context, path string, tags []string, compute func() ([]byte, error)) ([]byte, bool, error) {
	if payload, ok := c.Get(ctx, path); ok {
		return payload, true, nil
	}
	val, err, _ := c.group.Do(renderKey(path), func() (interface{}, error) {
		if payload, ok := c.Get(ctx, path); ok {
			return payload, nil
		}
		payload, err := compute()
		if err != nil {
			return nil, err
		}
		c.Set(ctx, path, tags, payload)
		return payload, nil
	})
	if err != nil {
		return nil, false, err
	}
	return val.([]byte), false, nil
}

// InvalidatePath removes the cached entries for the given paths.
func (c *Cache) InvalidatePath(ctx context.Context, paths ...string) error {
	keys := make([]string, len(paths))
	for i, path := range paths {
		keys[i] = renderKey(path)
	}
	if err := c.client.Del(ctx, keys...); err != nil {
		return fmt.Errorf("invalidating paths: %w", err)
	}
	c.logger.Info("paths invalidated", "count", len(paths))
	return nil
}

// InvalidateTag removes every cached entry registered under tag, plus the tag
// set itself.
func (c *Cache) InvalidateTag(ctx context.Context, tag string) error {
	setKey := tagKey(tag)
	members, err := c.client.SMembers(ctx, setKey)
	if err != nil {
		return fmt.Errorf("reading tag set %s: %w", tag, err)
	}
	if len(members) > 0 {
		if err := c.client.Del(ctx, members...); err != nil {
			return fmt.Errorf("invalidating tag %s: %w", tag, err)
		}
	}
	if err := c.client.Del(ctx, setKey); err != nil {
		return fmt.Errorf("removing tag set %s: %w", tag, err)
	}
	c.logger.Info("tag invalidated", "tag", tag, "entries", len(members))
	return nil
}

// Purge drops every render entry and tag set. Operator escape hatch; normal
// invalidation goes through InvalidatePath and InvalidateTag.
func (c *Cache) Purge(ctx context.Context) (int64, error) {
	entries, err := c.client.FlushByPattern(ctx, renderKeyPrefix+"*")
	if err != nil {
		return entries, fmt.Errorf("purging render entries: %w", err)
	}
	if _, err := c.client.FlushByPattern(ctx, tagKeyPrefix+"*"); err != nil {
		return entries, fmt.Errorf("purging tag sets: %w", err)
	}
	c.logger.Info("render cache purged", "entries", entries)
	return entries, nil
}

// Stats returns hit and miss counts since startup.
func (c *Cache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

// Ping reports whether the backing Redis connection is usable.
func (c *Cache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx)
}

func (c *Cache) countHit() {
	c.hits.Add(1)
	if c.metrics != nil {
		c.metrics.RenderCacheHits.Inc()
	}
}

func (c *Cache) countMiss() {
	c.misses.Add(1)
	if c.metrics != nil {
		c.metrics.RenderCacheMisses.Inc()
	}
}

func renderKey(path string) string {
	return renderKeyPrefix + path
}

func tagKey(tag string) string {
	return tagKeyPrefix + tag
}
