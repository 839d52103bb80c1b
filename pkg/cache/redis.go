package cache

import (
	"context"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// RedisCache backs the cache with a Redis instance so multiple builders and
// CI runs share one store. Entries rely on Redis TTL handling; a zero TTL
// stores the key without expiration.
type RedisCache struct {
	rdb *goredis.Client
}

// NewRedisCache connects to Redis at addr and verifies the connection with
// a ping before returning.
func NewRedisCache(ctx context.Context, addr, password string, db int) (Cache, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, err
	}
	return &RedisCache{rdb: rdb}, nil
}

// Get retrieves a value. A missing key is a miss, not an error.
func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, err := c.rdb.Get(ctx, key).Bytes()
	if err == goredis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

// Set stores a value with the given TTL.
func (c *RedisCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	return c.rdb.Set(ctx, key, data, ttl).Err()
}

// Delete removes a value. Missing keys are ignored.
func (c *RedisCache) Delete(ctx context.Context, key string) error {
	return c.rdb.Del(ctx, key).Err()
}

// Clear removes every pipeline entry, returning the number of keys
// deleted. It scans for the stage key patterns rather than flushing the
// whole database, so unrelated keys on a shared Redis survive.
func (c *RedisCache) Clear(ctx context.Context) (int, error) {
	count := 0
	for _, pattern := range []string{"*import:*", "*build:*", "*quality:*"} {
		iter := c.rdb.Scan(ctx, 0, pattern, 100).Iterator()
		for iter.Next(ctx) {
			if err := c.rdb.Del(ctx, iter.Val()).Err(); err != nil {
				return count, err
			}
			count++
		}
		if err := iter.Err(); err != nil {
			return count, err
		}
	}
	return count, nil
}

// Close releases the underlying connection pool.
func (c *RedisCache) Close() error {
	return c.rdb.Close()
}

// Ensure RedisCache implements Cache.
var _ Cache = (*RedisCache)(nil)
