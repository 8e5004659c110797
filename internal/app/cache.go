package app

import (
	"context"
	"fmt"
	"time"

	"unihaven/internal/domain"
)

func accommodationKey(id int64) string { return fmt.Sprintf("accommodation:%d", id) }
func campusKey(id int64) string        { return fmt.Sprintf("campus:%d", id) }

// readThrough wraps an optional cache. Cache failures never fail a request.
type readThrough struct {
	cache domain.Cache
	ttl   time.Duration
}

func (c readThrough) get(ctx context.Context, key string, dst any) bool {
	if c.cache == nil {
		return false
	}
	ok, err := c.cache.Get(ctx, key, dst)
	return ok && err == nil
}

func (c readThrough) set(ctx context.Context, key string, v any) {
	if c.cache == nil {
		return
	}
	_ = c.cache.Set(ctx, key, v, int(c.ttl.Seconds()))
}

func (c readThrough) del(ctx context.Context, keys ...string) {
	if c.cache == nil {
		return
	}
	for _, k := range keys {
		_ = c.cache.Del(ctx, k)
	}
}
