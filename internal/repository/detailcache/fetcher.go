package detailcache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/dinefind/internal/db"
	"github.com/kailas-cloud/dinefind/internal/domain/restaurant"
)

const cacheKeyPrefix = "dinefind:restaurant:"

// Fetcher loads a restaurant detail record.
type Fetcher interface {
	Restaurant(ctx context.Context, id int64) (restaurant.Detail, error)
}

// store is the consumer interface for the detail cache (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// CachedFetcher caches restaurant detail records in a key-value store.
// Cache failures degrade to the inner fetcher; they are never returned.
type CachedFetcher struct {
	inner      Fetcher
	store      store
	ttl        time.Duration
	cacheTotal *prometheus.CounterVec
	logger     *zap.Logger
}

// New creates a caching decorator. ttl <= 0 stores records without expiry.
// cacheTotal is a counter vec with label "result" ("hit"/"miss"), passed explicitly.
func New(
	inner Fetcher,
	s store,
	ttl time.Duration,
	cacheTotal *prometheus.CounterVec,
	logger *zap.Logger,
) *CachedFetcher {
	return &CachedFetcher{
		inner:      inner,
		store:      s,
		ttl:        ttl,
		cacheTotal: cacheTotal,
		logger:     logger,
	}
}

// Restaurant returns the cached record or fetches and caches it.
// Errors from the inner fetcher, not-found included, are not cached.
func (c *CachedFetcher) Restaurant(ctx context.Context, id int64) (restaurant.Detail, error) {
	key := cacheKey(id)

	if d, ok := c.getFromCache(ctx, key); ok {
		c.incCache("hit")
		return d, nil
	}

	c.incCache("miss")

	d, err := c.inner.Restaurant(ctx, id)
	if err != nil {
		return restaurant.Detail{}, fmt.Errorf("fetch restaurant: %w", err)
	}

	c.putToCache(ctx, key, d)
	return d, nil
}

func (c *CachedFetcher) incCache(result string) {
	if c.cacheTotal != nil {
		c.cacheTotal.WithLabelValues(result).Inc()
	}
}

func cacheKey(id int64) string {
	return cacheKeyPrefix + strconv.FormatInt(id, 10)
}

func (c *CachedFetcher) getFromCache(ctx context.Context, key string) (restaurant.Detail, bool) {
	data, err := c.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, db.ErrKeyNotFound) {
			c.logger.Warn("Failed to get cached restaurant", zap.String("key", key), zap.Error(err))
		}
		return restaurant.Detail{}, false
	}
	if len(data) == 0 {
		return restaurant.Detail{}, false
	}

	var d restaurant.Detail
	if err = json.Unmarshal(data, &d); err != nil {
		c.logger.Warn("Failed to parse cached restaurant", zap.String("key", key), zap.Error(err))
		return restaurant.Detail{}, false
	}
	return d, true
}

func (c *CachedFetcher) putToCache(ctx context.Context, key string, d restaurant.Detail) {
	data, err := json.Marshal(d)
	if err != nil {
		c.logger.Warn("Failed to encode restaurant for cache", zap.String("key", key), zap.Error(err))
		return
	}
	if c.ttl > 0 {
		err = c.store.SetWithTTL(ctx, key, data, c.ttl)
	} else {
		err = c.store.Set(ctx, key, data)
	}
	if err != nil {
		c.logger.Warn("Failed to cache restaurant", zap.String("key", key), zap.Error(err))
	}
}
