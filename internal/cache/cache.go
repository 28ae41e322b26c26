package cache

import (
	"context"
	"errors"
	"time"

	lru "github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/redis/go-redis/v9"

	"advancedapi/internal/metrics"
)

const (
	localEntries = 1024
	localTTL     = 30 * time.Second
)

// Client wraps redis.Client but fails safe by swallowing connectivity errors.
// A small in-process LRU sits in front of redis so hot keys survive a redis outage
// for a short while, and so the cache still works when no redis address is configured.
type Client struct {
	client *redis.Client
	local  *lru.LRU[string, []byte]
}

// New creates a new cache client. An empty addr runs with the in-process tier only.
func New(addr, password string, db int) *Client {
	c := &Client{local: lru.NewLRU[string, []byte](localEntries, nil, localTTL)}
	if addr != "" {
		c.client = redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: password,
			DB:       db,
		})
	}
	return c
}

// NewWithRedis wraps an existing redis client.
func NewWithRedis(client *redis.Client) *Client {
	return &Client{
		client: client,
		local:  lru.NewLRU[string, []byte](localEntries, nil, localTTL),
	}
}

// Get returns value or nil if missing or redis unavailable.
func (c *Client) Get(ctx context.Context, key string) ([]byte, error) {
	if c == nil {
		return nil, nil
	}
	if v, ok := c.local.Get(key); ok {
		metrics.CacheRequests.WithLabelValues("hit").Inc()
		return v, nil
	}
	if c.client == nil {
		metrics.CacheRequests.WithLabelValues("miss").Inc()
		return nil, nil
	}
	res, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		// fail safe: redis.Nil and connectivity errors both behave like a miss
		metrics.CacheRequests.WithLabelValues("miss").Inc()
		return nil, nil
	}
	metrics.CacheRequests.WithLabelValues("hit").Inc()
	c.local.Add(key, res)
	return res, nil
}

// Set stores value with TTL, ignoring redis errors.
func (c *Client) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if c == nil {
		return nil
	}
	if ttl <= 0 || ttl >= localTTL {
		c.local.Add(key, value)
	}
	if c.client == nil {
		return nil
	}
	if err := c.client.Set(ctx, key, value, ttl).Err(); err != nil {
		// fail safe: ignore redis errors
		return nil
	}
	return nil
}

// Delete removes a key, ignoring redis errors.
func (c *Client) Delete(ctx context.Context, key string) error {
	if c == nil {
		return nil
	}
	c.local.Remove(key)
	if c.client == nil {
		return nil
	}
	if err := c.client.Del(ctx, key).Err(); err != nil {
		return nil
	}
	return nil
}

// Ping reports redis reachability. Unlike the data methods it does not swallow errors.
func (c *Client) Ping(ctx context.Context) error {
	if c == nil || c.client == nil {
		return errors.New("redis not configured")
	}
	return c.client.Ping(ctx).Err()
}

// Close releases the redis connection pool.
func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}
