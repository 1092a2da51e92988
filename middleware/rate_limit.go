package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/yatube/yatube/config"
	"github.com/yatube/yatube/utils"
)

// clientBucket pairs a token bucket with the moment it may be evicted.
type clientBucket struct {
	bucket   *rate.Limiter
	idleFrom time.Time
}

var (
	clientBuckets   = map[string]*clientBucket{}
	clientBucketsMu sync.Mutex
)

// RateLimitMiddleware throttles each client IP with a token bucket. The
// per-minute rate and the idle eviction window both come from config.
func RateLimitMiddleware() gin.HandlerFunc {
	cfg := config.Get()
	perMinute := max(cfg.RateLimitPerMinute, 1)
	limit := rate.Every(time.Minute / time.Duration(perMinute))
	burst := max(perMinute/2, 1)
	idleTTL := time.Duration(max(cfg.RateLimitIdleTTLMins, 1)) * time.Minute

	return func(ctx *gin.Context) {
		if !bucketFor(ctx.ClientIP(), limit, burst, idleTTL).Allow() {
			utils.Error(ctx, http.StatusTooManyRequests, 42901, "rate limit exceeded")
			ctx.Abort()
			return
		}
		ctx.Next()
	}
}

// bucketFor returns the caller's bucket, creating it on first sight and
// evicting buckets idle past their TTL while the lock is held anyway.
func bucketFor(ip string, limit rate.Limit, burst int, idleTTL time.Duration) *rate.Limiter {
	clientBucketsMu.Lock()
	defer clientBucketsMu.Unlock()

	now := time.Now()
	for key, cb := range clientBuckets {
		if now.After(cb.idleFrom) {
			delete(clientBuckets, key)
		}
	}

	cb, ok := clientBuckets[ip]
	if !ok {
		cb = &clientBucket{bucket: rate.NewLimiter(limit, burst)}
		clientBuckets[ip] = cb
	}
	cb.idleFrom = now.Add(idleTTL)
	return cb.bucket
}
