package cache

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "guessgames:"

// Redis is a Cache stored in a Redis server. Values never expire; the
// refresh task overwrites them.
type Redis struct{ rdb *redis.Client }

// NewRedis connects to url (redis://host:port/db) and pings it.
func NewRedis(ctx context.Context, url string) (*Redis, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse REDIS_URL: %w", err)
	}
	rdb := redis.NewClient(opt)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &Redis{rdb: rdb}, nil
}

func (c *Redis) Get(ctx context.Context, key string) (string, error) {
	v, err := c.rdb.Get(ctx, keyPrefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	return v, err
}

func (c *Redis) Set(ctx context.Context, key, value string) error {
	return c.rdb.Set(ctx, keyPrefix+key, value, 0).Err()
}

// Close releases the connection pool.
func (c *Redis) Close() error { return c.rdb.Close() }
