package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dhages/turismo-api/internal/catalog"
)

const catalogKey = "catalog:snapshot"

// Cache wraps a Redis client and stores the full destination graph under a
// single key. Every page render and search reads the same snapshot, so one
// key with a short TTL covers the whole public read surface; admin writes
// call Invalidate so stale state never outlives an edit.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCache constructs a Cache with the given snapshot TTL.
func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{client: client, ttl: ttl}
}

// GetCatalog retrieves the cached destination graph.
// Returns nil, nil on a cache miss (not an error).
func (c *Cache) GetCatalog(ctx context.Context) ([]catalog.Destination, error) {
	val, err := c.client.Get(ctx, catalogKey).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("cache get catalog: %w", err)
	}

	var dests []catalog.Destination
	if err := json.Unmarshal([]byte(val), &dests); err != nil {
		return nil, fmt.Errorf("unmarshaling cached catalog: %w", err)
	}

	return dests, nil
}

// SetCatalog stores the destination graph with the configured TTL.
func (c *Cache) SetCatalog(ctx context.Context, dests []catalog.Destination) error {
	if dests == nil {
		return nil
	}

	b, err := json.Marshal(dests)
	if err != nil {
		return fmt.Errorf("marshaling catalog: %w", err)
	}

	if err := c.client.Set(ctx, catalogKey, b, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache set catalog: %w", err)
	}

	return nil
}

// Invalidate drops the cached snapshot. Called after every admin write.
func (c *Cache) Invalidate(ctx context.Context) error {
	if err := c.client.Del(ctx, catalogKey).Err(); err != nil {
		return fmt.Errorf("cache invalidate catalog: %w", err)
	}
	return nil
}
