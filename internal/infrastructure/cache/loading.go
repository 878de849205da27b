package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/bnema/profilecache/internal/application/port"
	"github.com/bnema/profilecache/internal/logging"
)

// Loader produces the value for a key on cache miss.
type Loader[K comparable, V any] func(ctx context.Context, key K) (V, error)

// Option configures a Loading cache.
type Option func(*options)

type options struct {
	observer port.CacheObserver
}

// WithObserver reports cache events to o.
func WithObserver(o port.CacheObserver) Option {
	return func(opts *options) {
		if o != nil {
			opts.observer = o
		}
	}
}

// call is one in-flight load. done is closed once value and err are final.
type call[V any] struct {
	done  chan struct{}
	value V
	err   error
}

// Loading is a fixed-capacity LRU cache that fills itself through a Loader.
// It implements port.LoadingCache[K, V].
//
// Concurrent Get calls for the same missing key share a single loader call.
// Failed loads are never cached. The store and the pending set are only
// mutated under mu, so a completed load updates the store, leaves the pending
// set and releases its waiters in one step.
type Loading[K comparable, V any] struct {
	mu       sync.Mutex
	store    *LRU[K, V]
	pending  map[K]*call[V]
	loader   Loader[K, V]
	observer port.CacheObserver
	stats    port.CacheStats
}

// New creates a loading cache holding at most capacity entries.
func New[K comparable, V any](capacity int, loader Loader[K, V], opts ...Option) (*Loading[K, V], error) {
	if loader == nil {
		return nil, ErrNilLoader
	}
	store, err := NewLRU[K, V](capacity)
	if err != nil {
		return nil, err
	}

	o := options{observer: nopObserver{}}
	for _, opt := range opts {
		opt(&o)
	}

	return &Loading[K, V]{
		store:    store,
		pending:  make(map[K]*call[V]),
		loader:   loader,
		observer: o.observer,
	}, nil
}

// Get returns the value for key. A hit is served from memory and refreshes
// the key's recency. A miss starts a load, or joins the one already running
// for key, and waits for it.
//
// The load itself is detached from ctx cancellation so that one caller giving
// up never fails the other callers sharing it; ctx only bounds the wait.
func (c *Loading[K, V]) Get(ctx context.Context, key K) (V, error) {
	c.mu.Lock()
	if value, ok := c.store.Get(key); ok {
		c.stats.Hits++
		c.mu.Unlock()
		c.observer.Hit()
		return value, nil
	}
	cl, joined := c.acquireLocked(ctx, key)
	c.mu.Unlock()

	c.reportMiss(joined)
	return c.wait(ctx, cl)
}

// Refresh drops key and loads it again. If a load for key is already in
// flight, Refresh joins it instead of starting another one. A failed refresh
// leaves key absent.
func (c *Loading[K, V]) Refresh(ctx context.Context, key K) (V, error) {
	c.mu.Lock()
	c.store.Remove(key)
	cl, joined := c.acquireLocked(ctx, key)
	c.observer.Size(c.store.Len())
	c.mu.Unlock()

	c.reportMiss(joined)
	return c.wait(ctx, cl)
}

// Peek returns the cached value for key without changing its recency.
func (c *Loading[K, V]) Peek(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.store.Peek(key)
}

// Invalidate removes key from the cache. It is a no-op when key is absent
// and never affects a load in flight for key.
func (c *Loading[K, V]) Invalidate(key K) {
	c.mu.Lock()
	c.store.Remove(key)
	c.observer.Size(c.store.Len())
	c.mu.Unlock()
}

// Purge removes every cached entry. In-flight loads still complete and
// populate the cache.
func (c *Loading[K, V]) Purge() {
	c.mu.Lock()
	c.store.Clear()
	c.observer.Size(0)
	c.mu.Unlock()
}

// Len returns the number of cached entries.
func (c *Loading[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.store.Len()
}

// Keys returns the cached keys from most to least recently used.
func (c *Loading[K, V]) Keys() []K {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.store.Keys()
}

// Stats returns a snapshot of the cache counters.
func (c *Loading[K, V]) Stats() port.CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()

	stats := c.stats
	stats.Entries = c.store.Len()
	stats.Capacity = c.store.Capacity()
	return stats
}

// acquireLocked returns the pending call for key, starting a new load when
// none is running. Must be called with c.mu held.
func (c *Loading[K, V]) acquireLocked(ctx context.Context, key K) (*call[V], bool) {
	c.stats.Misses++
	if cl, ok := c.pending[key]; ok {
		c.stats.Coalesced++
		return cl, true
	}

	cl := &call[V]{done: make(chan struct{})}
	c.pending[key] = cl
	go c.load(context.WithoutCancel(ctx), key, cl)
	return cl, false
}

func (c *Loading[K, V]) load(ctx context.Context, key K, cl *call[V]) {
	ctx = logging.WithKey(ctx, key)
	log := logging.FromContext(ctx)
	log.Debug().Msg("loading cache entry")

	start := time.Now()
	value, err := c.invoke(ctx, key)
	elapsed := time.Since(start)

	c.mu.Lock()
	delete(c.pending, key)
	var evicted []K
	if err != nil {
		cl.err = &LoadError{Key: key, Err: err}
		c.stats.LoadFailures++
	} else {
		cl.value = value
		evicted = c.store.Set(key, value)
		c.stats.Evictions += uint64(len(evicted))
	}
	c.stats.Loads++
	size := c.store.Len()
	c.observer.Loaded(elapsed, err)
	if len(evicted) > 0 {
		c.observer.Evicted(len(evicted))
	}
	c.observer.Size(size)
	close(cl.done)
	c.mu.Unlock()

	if err != nil {
		log.Warn().Err(err).Dur("elapsed", elapsed).Msg("cache load failed")
		return
	}
	for _, k := range evicted {
		log.Debug().Str("evicted", fmt.Sprint(k)).Msg("evicted least recently used entry")
	}
	log.Debug().Dur("elapsed", elapsed).Int("entries", size).Msg("cache entry loaded")
}

// invoke runs the loader, turning a panic into an error so the pending slot
// for key is always released.
func (c *Loading[K, V]) invoke(ctx context.Context, key K) (value V, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrLoaderPanic, r)
		}
	}()
	return c.loader(ctx, key)
}

// wait prefers a finished load over a done ctx.
func (c *Loading[K, V]) wait(ctx context.Context, cl *call[V]) (V, error) {
	select {
	case <-cl.done:
		return cl.value, cl.err
	default:
	}
	select {
	case <-cl.done:
		return cl.value, cl.err
	case <-ctx.Done():
		var zero V
		return zero, ctx.Err()
	}
}

func (c *Loading[K, V]) reportMiss(joined bool) {
	c.observer.Miss()
	if joined {
		c.observer.Coalesced()
	}
}

type nopObserver struct{}

func (nopObserver) Hit()                        {}
func (nopObserver) Miss()                       {}
func (nopObserver) Coalesced()                  {}
func (nopObserver) Loaded(time.Duration, error) {}
func (nopObserver) Evicted(int)                 {}
func (nopObserver) Size(int)                    {}
