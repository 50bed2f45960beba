package util

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

type Deduper struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewDeduper(rdb *redis.Client, ttl time.Duration) *Deduper {
	return &Deduper{rdb: rdb, ttl: ttl}
}

// AcquireOnce tries to acquire a dedup key for a scope + entity ID.
// Returns true on first acquisition, false for a duplicate. When redis is
// unavailable the caller proceeds; the database constraint is the authority.
func (d *Deduper) AcquireOnce(ctx context.Context, scope string, id int) bool {
	key := fmt.Sprintf("dedup:%s:%d", scope, id)

	ok, err := d.rdb.SetNX(ctx, key, 1, d.ttl).Result()
	if err != nil {
		return true
	}
	return ok
}

// AcquireKey is AcquireOnce for callers with a pre-built composite key.
func (d *Deduper) AcquireKey(ctx context.Context, key string) bool {
	ok, err := d.rdb.SetNX(ctx, "dedup:"+key, 1, d.ttl).Result()
	if err != nil {
		return true
	}
	return ok
}

// ReleaseKey drops a previously acquired key so the work can be retried.
// Best effort: a leftover key expires with the TTL anyway.
func (d *Deduper) ReleaseKey(ctx context.Context, key string) {
	_ = d.rdb.Del(ctx, "dedup:"+key).Err()
}
