// Package cache is a thin redis wrapper for availability views. Every method
// is best-effort: a missing or failing redis never breaks a request.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// New wraps an optional redis client. A nil client or non-positive TTL
// disables caching entirely.
func New(client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{client: client, ttl: ttl}
}

func (c *Cache) enabled() bool {
	return c != nil && c.client != nil && c.ttl > 0
}

func availabilityKey(publicID string) string {
	return fmt.Sprintf("availability:%s", publicID)
}

// GetAvailability reads a cached view into out; reports whether it was found.
func (c *Cache) GetAvailability(ctx context.Context, publicID string, out any) bool {
	if !c.enabled() {
		return false
	}
	val, err := c.client.Get(ctx, availabilityKey(publicID)).Result()
	if err != nil {
		return false
	}
	if err := json.Unmarshal([]byte(val), out); err != nil {
		return false
	}
	return true
}

// SetAvailability caches a view under the store's public id.
func (c *Cache) SetAvailability(ctx context.Context, publicID string, val any) {
	if !c.enabled() {
		return
	}
	data, err := json.Marshal(val)
	if err != nil {
		return
	}
	_ = c.client.Set(ctx, availabilityKey(publicID), data, c.ttl).Err()
}

// InvalidateAvailability drops the cached view after a status transition.
func (c *Cache) InvalidateAvailability(ctx context.Context, publicID string) {
	if !c.enabled() {
		return
	}
	_ = c.client.Del(ctx, availabilityKey(publicID)).Err()
}
