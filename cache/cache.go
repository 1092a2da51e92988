package cache

import "time"

// Cache is the listing response cache. Handlers depend on this interface,
// never on a process-wide client: Redis in production, Memory in tests.
// Reads may return stale hits for the full TTL window; only Clear or
// expiry refreshes an entry.
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration)
	Clear()
}
