package redisad

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"unihaven/internal/adapters/observability"
)

// KeyPrefix namespaces every key so the cache can share a Redis database.
const KeyPrefix = "unihaven:"

// Cache stores JSON-encoded read models. A ttlSec of zero or less means the
// entry never expires.
type Cache struct {
	c *redis.Client
}

func New(addr, pass string, db int) *Cache {
	return &Cache{c: redis.NewClient(&redis.Options{Addr: addr, Password: pass, DB: db})}
}

func (r *Cache) Ping(ctx context.Context) error { return r.c.Ping(ctx).Err() }

func (r *Cache) Close() error { return r.c.Close() }

func (r *Cache) Get(ctx context.Context, key string, dst any) (bool, error) {
	raw, err := r.c.Get(ctx, KeyPrefix+key).Bytes()
	switch {
	case errors.Is(err, redis.Nil):
		observability.ObserveCache("redis", "miss")
		return false, nil
	case err != nil:
		observability.ObserveCache("redis", "error")
		return false, fmt.Errorf("redis get %s: %w", key, err)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		// A payload from an older schema is a miss; drop it.
		observability.ObserveCache("redis", "stale")
		_ = r.c.Del(ctx, KeyPrefix+key).Err()
		return false, nil
	}
	observability.ObserveCache("redis", "hit")
	return true, nil
}

func (r *Cache) Set(ctx context.Context, key string, v any, ttlSec int) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	var ttl time.Duration
	if ttlSec > 0 {
		ttl = time.Duration(ttlSec) * time.Second
	}
	if err := r.c.Set(ctx, KeyPrefix+key, b, ttl).Err(); err != nil {
		observability.ObserveCache("redis", "error")
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	observability.ObserveCache("redis", "set")
	return nil
}

func (r *Cache) Del(ctx context.Context, key string) error {
	if err := r.c.Del(ctx, KeyPrefix+key).Err(); err != nil {
		observability.ObserveCache("redis", "error")
		return fmt.Errorf("redis del %s: %w", key, err)
	}
	observability.ObserveCache("redis", "del")
	return nil
}
