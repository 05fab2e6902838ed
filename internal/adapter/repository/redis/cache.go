package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/iho/fundledger/internal/usecase"
)

// ErrNoExpiry is returned by Set for a non-positive TTL. Cached quotes
// must age out so a stale price never outlives the feed.
var ErrNoExpiry = errors.New("cache entry needs a positive ttl")

// Cache implements usecase.Cache on Redis strings under "<namespace>:cache:".
type Cache struct {
	client *redis.Client
	prefix string
}

// NewCache creates a new Cache whose keys live under namespace.
func NewCache(client *redis.Client, namespace string) *Cache {
	return &Cache{
		client: client,
		prefix: namespace + ":cache:",
	}
}

func (c *Cache) key(k string) string {
	return c.prefix + k
}

// Get returns usecase.ErrCacheMiss for absent or expired keys.
func (c *Cache) Get(ctx context.Context, key string) (string, error) {
	val, err := c.client.Get(ctx, c.key(key)).Result()
	switch {
	case errors.Is(err, redis.Nil):
		return "", usecase.ErrCacheMiss
	case err != nil:
		return "", fmt.Errorf("cache get %s: %w", key, err)
	}

	return val, nil
}

func (c *Cache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if ttl <= 0 {
		return fmt.Errorf("cache set %s: %w", key, ErrNoExpiry)
	}

	if err := c.client.Set(ctx, c.key(key), value, ttl).Err(); err != nil {
		return fmt.Errorf("cache set %s: %w", key, err)
	}

	return nil
}

func (c *Cache) Delete(ctx context.Context, key string) error {
	if err := c.client.Del(ctx, c.key(key)).Err(); err != nil {
		return fmt.Errorf("cache delete %s: %w", key, err)
	}

	return nil
}
