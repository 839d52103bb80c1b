package cache

import (
	"context"
	"encoding/json"
	"time"
)

// GetJSON fetches key from c and decodes it into v. A missing, expired, or
// undecodable entry returns ErrCacheMiss so callers can fall through to a
// recompute with a single errors.Is check.
func GetJSON(ctx context.Context, c Cache, key string, v any) error {
	data, ok, err := c.Get(ctx, key)
	if err != nil || !ok {
		return ErrCacheMiss
	}
	if err := json.Unmarshal(data, v); err != nil {
		return ErrCacheMiss
	}
	return nil
}

// SetJSON encodes v and stores it under key with the given TTL. It returns
// the encoded size in bytes for instrumentation.
func SetJSON(ctx context.Context, c Cache, key string, v any, ttl time.Duration) (int, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return 0, err
	}
	return len(data), c.Set(ctx, key, data, ttl)
}
