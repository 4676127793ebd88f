package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/adreach/adsdk/internal/core/domain"
	"github.com/adreach/adsdk/internal/metrics"
	"github.com/redis/go-redis/v9"
)

// Config holds Redis connection configuration.
type Config struct {
	URL      string `yaml:"url"`
	Password string `yaml:"password"`
}

// Cache stores fetched ads keyed by context fingerprint. All operations
// are soft-fail: a broken cache degrades to upstream fetches, it never
// surfaces errors into the ad request path.
type Cache struct {
	rdb *redis.Client
}

// NewCache creates a Redis-backed ad cache and verifies connectivity.
func NewCache(cfg Config) (*Cache, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}
	if cfg.Password != "" {
		opts.Password = cfg.Password
	}

	rdb := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &Cache{rdb: rdb}, nil
}

// Close closes the Redis connection.
func (c *Cache) Close() error {
	return c.rdb.Close()
}

func adKey(fingerprint string) string {
	return fmt.Sprintf("ad_cache:%s", fingerprint)
}

// Get returns the cached ad for a fingerprint, or nil on miss, expiry
// or cache failure.
func (c *Cache) Get(ctx context.Context, fingerprint string) *domain.Ad {
	raw, err := c.rdb.Get(ctx, adKey(fingerprint)).Bytes()
	if err == redis.Nil {
		metrics.CacheOps.WithLabelValues("get", "miss").Inc()
		return nil
	}
	if err != nil {
		metrics.CacheOps.WithLabelValues("get", "error").Inc()
		return nil
	}

	var ad domain.Ad
	if err := json.Unmarshal(raw, &ad); err != nil {
		metrics.CacheOps.WithLabelValues("get", "error").Inc()
		return nil
	}
	if ad.Expired(time.Now()) {
		metrics.CacheOps.WithLabelValues("get", "expired").Inc()
		return nil
	}
	metrics.CacheOps.WithLabelValues("get", "hit").Inc()
	return &ad
}

// Set caches an ad under a fingerprint. The TTL is bounded by the ad's
// own expiry. Fallback ads are never cached.
func (c *Cache) Set(ctx context.Context, fingerprint string, ad *domain.Ad) {
	if ad == nil || ad.IsFallback() {
		return
	}
	ttl := time.Until(ad.ExpiresAt)
	if ttl <= 0 {
		return
	}

	raw, err := json.Marshal(ad)
	if err != nil {
		metrics.CacheOps.WithLabelValues("set", "error").Inc()
		return
	}
	if err := c.rdb.Set(ctx, adKey(fingerprint), raw, ttl).Err(); err != nil {
		metrics.CacheOps.WithLabelValues("set", "error").Inc()
		return
	}
	metrics.CacheOps.WithLabelValues("set", "ok").Inc()
}
