package utils

import (
	"context"
	"sync"
	"time"
)

const revokedKeyPrefix = "jwt:revoked:"

var (
	revokedTokens   = map[string]time.Time{}
	revokedTokensMu sync.Mutex
)

// BlacklistToken revokes a token until its natural expiration. Redis
// carries the revocation across instances when available; otherwise it
// lives in the process, which still covers the single-binary deployment.
func BlacklistToken(token string, expiresAt time.Time) {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return
	}

	if rc := GetRedis(); rc != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if rc.Set(ctx, revokedKeyPrefix+token, "1", ttl).Err() == nil {
			return
		}
		// Fall through so the revocation is not lost on a Redis hiccup.
	}

	revokedTokensMu.Lock()
	revokedTokens[token] = expiresAt
	sweepRevokedLocked()
	revokedTokensMu.Unlock()
}

// IsTokenBlacklisted reports whether the token was revoked before its
// expiration. Both stores are consulted so a revocation recorded during a
// Redis outage still holds.
func IsTokenBlacklisted(token string) bool {
	if rc := GetRedis(); rc != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if n, err := rc.Exists(ctx, revokedKeyPrefix+token).Result(); err == nil && n > 0 {
			return true
		}
	}

	revokedTokensMu.Lock()
	defer revokedTokensMu.Unlock()
	expiresAt, ok := revokedTokens[token]
	if !ok {
		return false
	}
	if time.Now().After(expiresAt) {
		delete(revokedTokens, token)
		return false
	}
	return true
}

// sweepRevokedLocked drops expired entries so the map cannot grow without
// bound. Caller holds revokedTokensMu.
func sweepRevokedLocked() {
	now := time.Now()
	for token, expiresAt := range revokedTokens {
		if now.After(expiresAt) {
			delete(revokedTokens, token)
		}
	}
}
