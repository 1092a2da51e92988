package utils

import (
	"context"
	"sync"
	"time"
)

const oauthStateKeyPrefix = "oauth:state:"

var (
	oauthStates   = map[string]time.Time{}
	oauthStatesMu sync.Mutex
)

// SaveState records an OAuth state nonce for one later ConsumeState call.
// Redis keeps the nonce visible to every instance; without Redis the
// nonce is process-local, which is correct for a single binary.
func SaveState(state string, ttl time.Duration) {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}

	if rc := GetRedis(); rc != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if rc.Set(ctx, oauthStateKeyPrefix+state, "1", ttl).Err() == nil {
			return
		}
	}

	oauthStatesMu.Lock()
	oauthStates[state] = time.Now().Add(ttl)
	oauthStatesMu.Unlock()
}

// ConsumeState removes the nonce and reports whether it was valid.
// Single-use: a second call for the same state always fails.
func ConsumeState(state string) bool {
	if rc := GetRedis(); rc != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if v, err := rc.GetDel(ctx, oauthStateKeyPrefix+state).Result(); err == nil {
			return v != ""
		}
	}

	oauthStatesMu.Lock()
	expiresAt, ok := oauthStates[state]
	if ok {
		delete(oauthStates, state)
	}
	oauthStatesMu.Unlock()

	return ok && time.Now().Before(expiresAt)
}
