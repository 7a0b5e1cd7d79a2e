// Package cache provides the redis-backed catalog page cache. Reads and
// writes fail open: on any redis error callers fall through to the database.
package cache

import (
	"context"
	"fmt"
	"time"

	"calcosnqn/internal/domain"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	versionKey = "catalog:version"
	defaultTTL = 5 * time.Minute
)

// CatalogCache caches rendered catalog pages keyed by filter. Invalidation
// bumps a version counter, which changes every page key at once; stale
// entries age out via TTL.
type CatalogCache struct {
	client *redis.Client
	logger *zap.Logger
	ttl    time.Duration
}

func NewCatalogCache(client *redis.Client, logger *zap.Logger) *CatalogCache {
	return &CatalogCache{client: client, logger: logger, ttl: defaultTTL}
}

// GetPage returns the cached JSON for a filter, or nil on miss or redis error.
func (c *CatalogCache) GetPage(ctx context.Context, filter domain.CatalogFilter) []byte {
	key, err := c.pageKey(ctx, filter)
	if err != nil {
		return nil
	}

	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn("Catalog cache read failed", zap.Error(err), zap.String("key", key))
		}
		return nil
	}
	return data
}

// SetPage stores the JSON for a filter. Failures are logged and ignored.
func (c *CatalogCache) SetPage(ctx context.Context, filter domain.CatalogFilter, data []byte) {
	key, err := c.pageKey(ctx, filter)
	if err != nil {
		return
	}

	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		c.logger.Warn("Catalog cache write failed", zap.Error(err), zap.String("key", key))
	}
}

// Invalidate drops every cached catalog page by bumping the version counter.
// Called after each successful admin mutation.
func (c *CatalogCache) Invalidate(ctx context.Context) {
	if err := c.client.Incr(ctx, versionKey).Err(); err != nil {
		c.logger.Warn("Catalog cache invalidation failed", zap.Error(err))
	}
}

func (c *CatalogCache) pageKey(ctx context.Context, f domain.CatalogFilter) (string, error) {
	version, err := c.client.Get(ctx, versionKey).Int64()
	if err != nil && err != redis.Nil {
		return "", err
	}

	page := f.Page
	if page < 1 {
		page = 1
	}
	return fmt.Sprintf("catalog:v%d:s=%s:t=%s:pt=%s:bt=%s:o=%s:p=%d",
		version, f.Search, f.TagSlug, f.ProductType, f.BaseType, f.Sort, page), nil
}
