// Package cache fronts the catalog store with a Redis read-through cache.
// Catalog data is immutable at runtime, so entries only expire by TTL or
// when the catalog is reseeded.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"ecoChallengeAPI/internal/metrics"
	"ecoChallengeAPI/internal/store"
	"ecoChallengeAPI/internal/types/category"
	"ecoChallengeAPI/internal/types/challenge"
)

const keyPrefix = "catalog:"

type CatalogCache struct {
	next   store.CatalogStore
	rdb    *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

func NewCatalogCache(next store.CatalogStore, rdb *redis.Client, ttl time.Duration, logger *zap.Logger) *CatalogCache {
	return &CatalogCache{next: next, rdb: rdb, ttl: ttl, logger: logger}
}

// cached loads key from Redis into dst, or calls load, stores the result
// and copies it into dst. Redis failures fall through to load.
func cached[T any](ctx context.Context, c *CatalogCache, key string, dst *T, load func() (T, error)) error {
	raw, err := c.rdb.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		if jsonErr := json.Unmarshal(raw, dst); jsonErr == nil {
			metrics.CatalogCache.WithLabelValues("hit").Inc()
			return nil
		}
		metrics.CatalogCache.WithLabelValues("error").Inc()
	case errors.Is(err, redis.Nil):
		metrics.CatalogCache.WithLabelValues("miss").Inc()
	default:
		metrics.CatalogCache.WithLabelValues("error").Inc()
		c.logger.Warn("catalog cache read failed", zap.String("key", key), zap.Error(err))
	}

	value, err := load()
	if err != nil {
		return err
	}
	*dst = value

	body, err := json.Marshal(value)
	if err != nil {
		return nil
	}
	if err := c.rdb.Set(ctx, key, body, c.ttl).Err(); err != nil {
		c.logger.Warn("catalog cache write failed", zap.String("key", key), zap.Error(err))
	}
	return nil
}

func (c *CatalogCache) ListCategories(ctx context.Context) ([]category.Category, error) {
	var out []category.Category
	err := cached(ctx, c, keyPrefix+"categories", &out, func() ([]category.Category, error) {
		return c.next.ListCategories(ctx)
	})
	return out, err
}

func (c *CatalogCache) GetCategory(ctx context.Context, id int64) (*category.Category, error) {
	var out *category.Category
	err := cached(ctx, c, fmt.Sprintf("%scategory:%d", keyPrefix, id), &out, func() (*category.Category, error) {
		return c.next.GetCategory(ctx, id)
	})
	return out, err
}

func (c *CatalogCache) ListChallenges(ctx context.Context) ([]challenge.Challenge, error) {
	var out []challenge.Challenge
	err := cached(ctx, c, keyPrefix+"challenges", &out, func() ([]challenge.Challenge, error) {
		return c.next.ListChallenges(ctx)
	})
	return out, err
}

func (c *CatalogCache) ListChallengesByCategory(ctx context.Context, categoryID int64) ([]challenge.Challenge, error) {
	var out []challenge.Challenge
	err := cached(ctx, c, fmt.Sprintf("%scategory:%d:challenges", keyPrefix, categoryID), &out, func() ([]challenge.Challenge, error) {
		return c.next.ListChallengesByCategory(ctx, categoryID)
	})
	return out, err
}

func (c *CatalogCache) GetChallenge(ctx context.Context, id int64) (*challenge.Challenge, error) {
	var out *challenge.Challenge
	err := cached(ctx, c, fmt.Sprintf("%schallenge:%d", keyPrefix, id), &out, func() (*challenge.Challenge, error) {
		return c.next.GetChallenge(ctx, id)
	})
	return out, err
}

// SeedCatalog seeds the backing store and drops every cached entry.
func (c *CatalogCache) SeedCatalog(ctx context.Context, categories []category.Category, challenges []challenge.Challenge) error {
	if err := c.next.SeedCatalog(ctx, categories, challenges); err != nil {
		return err
	}

	iter := c.rdb.Scan(ctx, 0, keyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		if err := c.rdb.Del(ctx, iter.Val()).Err(); err != nil {
			c.logger.Warn("catalog cache invalidation failed", zap.String("key", iter.Val()), zap.Error(err))
		}
	}
	if err := iter.Err(); err != nil {
		c.logger.Warn("catalog cache scan failed", zap.Error(err))
	}
	return nil
}
