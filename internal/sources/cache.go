package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

const cacheKeyPrefix = "mcps:"

// cachedSearcher decorates a Searcher with a redis TTL cache. Cache failures
// are logged and fall through to the upstream API, never to the caller.
type cachedSearcher struct {
	inner  Searcher
	client *redis.Client
	ttl    time.Duration
	logger *log.Logger
}

// WithCache wraps a searcher with a redis response cache.
func WithCache(inner Searcher, client *redis.Client, ttl time.Duration, logger *log.Logger) Searcher {
	return &cachedSearcher{inner: inner, client: client, ttl: ttl, logger: logger}
}

func (c *cachedSearcher) Name() string { return c.inner.Name() }

func (c *cachedSearcher) Search(ctx context.Context, query string) ([]Item, error) {
	key := cacheKeyPrefix + c.inner.Name() + ":" + query

	if val, err := c.client.Get(ctx, key).Result(); err == nil {
		var items []Item
		if err := json.Unmarshal([]byte(val), &items); err == nil {
			return items, nil
		}
	} else if err != redis.Nil {
		c.logger.Printf("cache read failed for %s: %v", key, err)
	}

	items, err := c.inner.Search(ctx, query)
	if err != nil {
		return nil, err
	}

	data, err := json.Marshal(items)
	if err == nil {
		if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
			c.logger.Printf("cache write failed for %s: %v", key, err)
		}
	}
	return items, nil
}

// Conn opens a redis connection and verifies it with a ping.
func Conn(ctx context.Context, addr, password string, db int, timeout time.Duration) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:        addr,
		DialTimeout: timeout,
		Password:    password,
		DB:          db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis connection failed (%s): %w", addr, err)
	}
	return client, nil
}
