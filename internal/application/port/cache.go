package port

import (
	"context"
	"time"
)

// LoadingCache is a bounded cache that populates itself from a loader on miss.
// Implementations must be safe for concurrent use and must never issue two
// concurrent loads for the same key.
type LoadingCache[K comparable, V any] interface {
	// Get returns the cached value for key, loading it on miss. Concurrent
	// callers for the same missing key share one load and its outcome.
	Get(ctx context.Context, key K) (V, error)

	// Peek returns the cached value without changing its recency.
	Peek(key K) (V, bool)

	// Invalidate removes key from the cache. In-flight loads are not affected.
	Invalidate(key K)

	// Refresh drops key and loads it again, joining an in-flight load if any.
	Refresh(ctx context.Context, key K) (V, error)

	// Len returns the number of cached entries.
	Len() int

	// Stats returns a snapshot of the cache counters.
	Stats() CacheStats
}

// CacheStats is a point-in-time snapshot of cache activity.
type CacheStats struct {
	Hits         uint64 `json:"hits"`
	Misses       uint64 `json:"misses"`
	Coalesced    uint64 `json:"coalesced"`
	Loads        uint64 `json:"loads"`
	LoadFailures uint64 `json:"load_failures"`
	Evictions    uint64 `json:"evictions"`
	Entries      int    `json:"entries"`
	Capacity     int    `json:"capacity"`
}

// CacheObserver receives cache events, typically to export them as metrics.
// Load outcomes are reported while the cache lock is held, so methods must not
// block or call back into the cache.
type CacheObserver interface {
	Hit()
	// Miss is reported for every lookup not served from memory, including
	// lookups that joined an in-flight load.
	Miss()
	Coalesced()
	Loaded(d time.Duration, err error)
	Evicted(n int)
	Size(n int)
}
