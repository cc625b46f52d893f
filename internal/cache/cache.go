package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const scanBatch = 100

// Client wraps redis.Client and namespaces every key under a prefix.
// Unlike a read-through cache it reports Redis failures to the caller.
type Client struct {
	client *redis.Client
	prefix string
}

// New creates a new Redis client.
func New(addr, password string, db int, prefix string) *Client {
	opts := &redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	}
	return NewWithClient(redis.NewClient(opts), prefix)
}

// NewWithClient wraps an existing redis client.
func NewWithClient(client *redis.Client, prefix string) *Client {
	return &Client{client: client, prefix: prefix}
}

func (c *Client) key(k string) string {
	return c.prefix + k
}

// Ping checks connectivity.
func (c *Client) Ping(ctx context.Context) error {
	if err := c.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}
	return nil
}

// SetNX stores value under key unless it already exists. A zero ttl never expires.
func (c *Client) SetNX(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := c.client.SetNX(ctx, c.key(key), value, ttl).Err(); err != nil {
		return fmt.Errorf("redis setnx: %w", err)
	}
	return nil
}

// Exists reports whether key is present.
func (c *Client) Exists(ctx context.Context, key string) (bool, error) {
	n, err := c.client.Exists(ctx, c.key(key)).Result()
	if err != nil {
		return false, fmt.Errorf("redis exists: %w", err)
	}
	return n > 0, nil
}

// DeleteAll removes every key under the client prefix.
func (c *Client) DeleteAll(ctx context.Context) error {
	iter := c.client.Scan(ctx, 0, c.prefix+"*", scanBatch).Iterator()
	keys := make([]string, 0, scanBatch)
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
		if len(keys) == scanBatch {
			if err := c.client.Del(ctx, keys...).Err(); err != nil {
				return fmt.Errorf("redis del: %w", err)
			}
			keys = keys[:0]
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("redis scan: %w", err)
	}
	if len(keys) > 0 {
		if err := c.client.Del(ctx, keys...).Err(); err != nil {
			return fmt.Errorf("redis del: %w", err)
		}
	}
	return nil
}

// Count returns the number of keys under the client prefix.
func (c *Client) Count(ctx context.Context) (int, error) {
	iter := c.client.Scan(ctx, 0, c.prefix+"*", scanBatch).Iterator()
	n := 0
	for iter.Next(ctx) {
		n++
	}
	if err := iter.Err(); err != nil {
		return 0, fmt.Errorf("redis scan: %w", err)
	}
	return n, nil
}

// Close releases the underlying connections.
func (c *Client) Close() error {
	return c.client.Close()
}
