package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis caches rendered responses in a shared Redis instance under a
// common key prefix so Clear can drop them with a single SCAN pass.
type Redis struct {
	rc     *redis.Client
	prefix string
}

// NewRedis wraps an existing client. prefix namespaces every key.
func NewRedis(rc *redis.Client, prefix string) *Redis {
	return &Redis{rc: rc, prefix: prefix}
}

// Get returns cached bytes for a key.
func (r *Redis) Get(key string) ([]byte, bool) {
	if r.rc == nil {
		return nil, false
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	b, err := r.rc.Get(ctx, r.prefix+key).Bytes()
	if err != nil {
		return nil, false
	}
	return b, true
}

// Set stores bytes with the given TTL.
func (r *Redis) Set(key string, value []byte, ttl time.Duration) {
	if r.rc == nil || ttl <= 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_ = r.rc.Set(ctx, r.prefix+key, value, ttl).Err()
}

// Clear deletes every key under the prefix using SCAN.
func (r *Redis) Clear() {
	if r.rc == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	var cursor uint64
	for i := 0; i < 10; i++ { // limit rounds to avoid long loops
		keys, cur, err := r.rc.Scan(ctx, cursor, r.prefix+"*", 1000).Result()
		if err != nil {
			break
		}
		cursor = cur
		if len(keys) > 0 {
			pipe := r.rc.Pipeline()
			for _, k := range keys {
				pipe.Del(ctx, k)
			}
			_, _ = pipe.Exec(ctx)
		}
		if cursor == 0 {
			break
		}
	}
}
