package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/sitelist/internal/domain"
)

// DefaultCacheTTL is the default TTL for cached listings
const DefaultCacheTTL = 5 * time.Minute

// Cache stores public site listings as JSON blobs.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCache creates a listing cache. A non-positive ttl uses DefaultCacheTTL.
func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &Cache{client: client, ttl: ttl}
}

// GetSites returns the cached listing. ok is false on a cache miss.
func (c *Cache) GetSites(ctx context.Context, listing string) (sites []*domain.Website, ok bool, err error) {
	data, err := c.client.Get(ctx, CacheKey(listing)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to get cached listing: %w", err)
	}

	if err := json.Unmarshal(data, &sites); err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal cached listing: %w", err)
	}
	return sites, true, nil
}

// SetSites caches a listing for the cache TTL.
func (c *Cache) SetSites(ctx context.Context, listing string, sites []*domain.Website) error {
	data, err := json.Marshal(sites)
	if err != nil {
		return fmt.Errorf("failed to marshal listing: %w", err)
	}
	if err := c.client.Set(ctx, CacheKey(listing), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache listing: %w", err)
	}
	return nil
}

// Flush removes all cached listings
func (c *Cache) Flush(ctx context.Context) error {
	iter := c.client.Scan(ctx, 0, KeyPrefixCache+"*", 0).Iterator()
	keys := make([]string, 0, 4)
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("failed to scan cache keys: %w", err)
	}
	if len(keys) == 0 {
		return nil
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to flush cache: %w", err)
	}
	return nil
}

// Ping checks the Redis connection.
func (c *Cache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}
