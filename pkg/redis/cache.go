package redis

import (
	"context"
	"fmt"
	"time"
)

// Cache provides small string-artifact caching on top of Client. The API
// layer uses it to avoid re-downloading RRG CSVs from blob storage on every
// request.
type Cache struct {
	client *Client
	prefix string
}

// NewCache creates a new cache helper
func NewCache(client *Client, prefix string) *Cache {
	return &Cache{
		client: client,
		prefix: prefix,
	}
}

// Get retrieves a cached value. A miss is not an error.
func (c *Cache) Get(ctx context.Context, key string) (string, bool, error) {
	if !c.client.Enabled() {
		return "", false, nil
	}

	fullKey := fmt.Sprintf("%s:cache:%s", c.prefix, key)
	data, err := c.client.Redis().Get(ctx, fullKey).Result()
	if err != nil {
		// Key not found is not an error
		return "", false, nil
	}
	return data, true, nil
}

// Set stores a value in cache with TTL
func (c *Cache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if !c.client.Enabled() {
		return nil
	}

	fullKey := fmt.Sprintf("%s:cache:%s", c.prefix, key)
	return c.client.Redis().Set(ctx, fullKey, value, ttl).Err()
}

// Delete removes a cached value
func (c *Cache) Delete(ctx context.Context, key string) error {
	if !c.client.Enabled() {
		return nil
	}

	fullKey := fmt.Sprintf("%s:cache:%s", c.prefix, key)
	return c.client.Redis().Del(ctx, fullKey).Err()
}

// Predefined TTLs
const (
	TTLShort  = 1 * time.Minute  // run status snapshots
	TTLMedium = 10 * time.Minute // per-subject RRG artifacts
	TTLLong   = 1 * time.Hour    // scanner summaries
)

// ArtifactKey builds the cache key for a stored artifact path
func ArtifactKey(path string) string {
	return fmt.Sprintf("artifact:%s", path)
}
