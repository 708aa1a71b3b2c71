// Package cache puts a Redis read-through cache in front of the builder directory.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"stand-lead-engine/internal/metrics"
	"stand-lead-engine/internal/models"
	"stand-lead-engine/internal/services/store"
	"stand-lead-engine/internal/utils"
)

// BuildersKey holds the JSON encoded builder directory.
const BuildersKey = "stand-leads:builders:v1"

// ErrReadOnly is returned by UpsertBuilders when the wrapped store cannot write builders.
var ErrReadOnly = errors.New("underlying store does not accept builder writes")

// NewClient connects to Redis from a redis:// URL and pings it.
func NewClient(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = 3 * time.Second
	opts.WriteTimeout = 3 * time.Second

	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return rdb, nil
}

// BuilderCache wraps a store.Store and caches GetBuilders in Redis. Every
// other Store method passes straight through. A Redis outage degrades to
// reading the wrapped store.
type BuilderCache struct {
	store.Store
	rdb    redis.Cmdable
	ttl    time.Duration
	logger *zap.Logger
}

// New creates a BuilderCache.
func New(inner store.Store, rdb redis.Cmdable, ttl time.Duration, logger *zap.Logger) *BuilderCache {
	return &BuilderCache{
		Store:  inner,
		rdb:    rdb,
		ttl:    ttl,
		logger: utils.OrDefault(logger, "builder-cache"),
	}
}

// GetBuilders returns the cached directory, filling the cache on a miss.
func (c *BuilderCache) GetBuilders(ctx context.Context) ([]*models.Builder, error) {
	raw, err := c.rdb.Get(ctx, BuildersKey).Bytes()
	switch {
	case err == nil:
		var builders []*models.Builder
		if jerr := json.Unmarshal(raw, &builders); jerr == nil {
			metrics.BuilderCacheLookups.WithLabelValues("hit").Inc()
			return builders, nil
		}
		c.logger.Warn("Discarding undecodable builder cache entry")
	case errors.Is(err, redis.Nil):
	default:
		metrics.BuilderCacheLookups.WithLabelValues("error").Inc()
		c.logger.Warn("Builder cache unavailable, reading store", zap.Error(err))
		return c.Store.GetBuilders(ctx)
	}

	metrics.BuilderCacheLookups.WithLabelValues("miss").Inc()

	builders, err := c.Store.GetBuilders(ctx)
	if err != nil {
		return nil, err
	}

	data, err := json.Marshal(builders)
	if err != nil {
		return builders, nil
	}
	if err := c.rdb.Set(ctx, BuildersKey, data, c.ttl).Err(); err != nil {
		c.logger.Warn("Failed to fill builder cache", zap.Error(err))
	}
	return builders, nil
}

// Invalidate drops the cached directory.
func (c *BuilderCache) Invalidate(ctx context.Context) error {
	return c.rdb.Del(ctx, BuildersKey).Err()
}

// UpsertBuilders writes through to the wrapped store and invalidates the cache.
func (c *BuilderCache) UpsertBuilders(ctx context.Context, builders []*models.Builder) (*models.BulkUpsertResult, error) {
	w, ok := c.Store.(store.BuilderWriter)
	if !ok {
		return nil, ErrReadOnly
	}

	res, err := w.UpsertBuilders(ctx, builders)
	if err != nil {
		return res, err
	}
	if err := c.Invalidate(ctx); err != nil {
		c.logger.Warn("Failed to invalidate builder cache", zap.Error(err))
	}
	return res, nil
}
