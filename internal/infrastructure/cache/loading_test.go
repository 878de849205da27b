package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/bnema/profilecache/internal/application/port"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ port.LoadingCache[string, int] = (*Loading[string, int])(nil)

// stubLoader returns "<key>#<n>" where n counts calls for that key.
type stubLoader struct {
	mu    sync.Mutex
	calls map[string]int
	total atomic.Int64
	gate  chan struct{} // when non-nil, loads block until it is closed
	fail  func(key string, n int) error
}

func newStubLoader() *stubLoader {
	return &stubLoader{calls: make(map[string]int)}
}

func (s *stubLoader) Load(_ context.Context, key string) (string, error) {
	s.mu.Lock()
	s.calls[key]++
	n := s.calls[key]
	gate := s.gate
	s.mu.Unlock()
	s.total.Add(1)

	if gate != nil {
		<-gate
	}
	if s.fail != nil {
		if err := s.fail(key, n); err != nil {
			return "", err
		}
	}
	return fmt.Sprintf("%s#%d", key, n), nil
}

func (s *stubLoader) Calls(key string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[key]
}

func newTestLoading(t *testing.T, capacity int, loader Loader[string, string], opts ...Option) *Loading[string, string] {
	t.Helper()
	c, err := New(capacity, loader, opts...)
	require.NoError(t, err)
	return c
}

func TestNew_Validation(t *testing.T) {
	loader := newStubLoader()

	_, err := New(0, loader.Load)
	assert.ErrorIs(t, err, ErrInvalidCapacity)

	_, err = New(-3, loader.Load)
	assert.ErrorIs(t, err, ErrInvalidCapacity)

	_, err = New[string, string](3, nil)
	assert.ErrorIs(t, err, ErrNilLoader)
}

func TestLoading_MissLoadsThenHitServesFromMemory(t *testing.T) {
	ctx := context.Background()
	loader := newStubLoader()
	c := newTestLoading(t, 2, loader.Load)

	v, err := c.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "a#1", v)

	v, err = c.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "a#1", v)
	assert.Equal(t, 1, loader.Calls("a"))

	stats := c.Stats()
	assert.Equal(t, uint64(1), stats.Hits)
	assert.Equal(t, uint64(1), stats.Misses)
	assert.Equal(t, uint64(1), stats.Loads)
	assert.Equal(t, 1, stats.Entries)
	assert.Equal(t, 2, stats.Capacity)
}

func TestLoading_CapacityInvariant(t *testing.T) {
	ctx := context.Background()
	loader := newStubLoader()
	c := newTestLoading(t, 3, loader.Load)

	keys := []string{"a", "b", "c", "d", "a", "e", "b", "f", "g", "a", "c", "h"}
	for _, k := range keys {
		_, err := c.Get(ctx, k)
		require.NoError(t, err)
		assert.LessOrEqual(t, c.Len(), 3)
	}
	assert.Equal(t, 3, c.Len())
}

func TestLoading_EvictsLeastRecentlyLoadedFirst(t *testing.T) {
	ctx := context.Background()
	loader := newStubLoader()
	c := newTestLoading(t, 3, loader.Load)

	for _, k := range []string{"k1", "k2", "k3", "k4"} {
		_, err := c.Get(ctx, k)
		require.NoError(t, err)
	}

	_, ok := c.Peek("k1")
	assert.False(t, ok, "k1 should have been evicted")
	for _, k := range []string{"k2", "k3", "k4"} {
		v, ok := c.Peek(k)
		assert.True(t, ok, k)
		assert.Equal(t, k+"#1", v)
	}
	assert.Equal(t, uint64(1), c.Stats().Evictions)
}

func TestLoading_RecencyRefresh(t *testing.T) {
	ctx := context.Background()
	loader := newStubLoader()
	c := newTestLoading(t, 2, loader.Load)

	_, _ = c.Get(ctx, "A")
	_, _ = c.Get(ctx, "B")
	_, _ = c.Get(ctx, "A") // hit, A becomes most recent
	_, _ = c.Get(ctx, "C")

	_, ok := c.Peek("B")
	assert.False(t, ok, "B should have been evicted")
	_, ok = c.Peek("A")
	assert.True(t, ok, "A should still be cached")
	assert.Equal(t, 1, loader.Calls("A"))
}

func TestLoading_PeekDoesNotRefreshRecency(t *testing.T) {
	ctx := context.Background()
	loader := newStubLoader()
	c := newTestLoading(t, 2, loader.Load)

	_, _ = c.Get(ctx, "A")
	_, _ = c.Get(ctx, "B")
	_, _ = c.Peek("A")
	_, _ = c.Get(ctx, "C")

	_, ok := c.Peek("A")
	assert.False(t, ok, "peek must not protect A from eviction")
}

func TestLoading_Scenario(t *testing.T) {
	ctx := context.Background()
	loader := newStubLoader()
	c := newTestLoading(t, 3, loader.Load)

	for _, k := range []string{"a", "b", "a", "c", "d"} {
		_, err := c.Get(ctx, k)
		require.NoError(t, err)
	}

	assert.ElementsMatch(t, []string{"a", "c", "d"}, c.Keys())
	assert.Equal(t, []string{"d", "c", "a"}, c.Keys())
	_, ok := c.Peek("b")
	assert.False(t, ok)
	assert.Equal(t, int64(4), loader.total.Load())
}

func TestLoading_CapacityOne(t *testing.T) {
	ctx := context.Background()
	loader := newStubLoader()
	c := newTestLoading(t, 1, loader.Load)

	_, _ = c.Get(ctx, "a")
	_, _ = c.Get(ctx, "b")

	assert.Equal(t, []string{"b"}, c.Keys())
	assert.Equal(t, 1, c.Len())
}

func TestLoading_CoalescesConcurrentLoads(t *testing.T) {
	ctx := context.Background()
	loader := newStubLoader()
	loader.gate = make(chan struct{})
	c := newTestLoading(t, 2, loader.Load)

	const callers = 8
	results := make([]string, callers)
	errs := make([]error, callers)
	var wg sync.WaitGroup
	for i := range callers {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = c.Get(ctx, "user")
		}(i)
	}

	require.Eventually(t, func() bool {
		return c.Stats().Misses == callers
	}, time.Second, time.Millisecond)
	close(loader.gate)
	wg.Wait()

	assert.Equal(t, 1, loader.Calls("user"))
	for i := range callers {
		require.NoError(t, errs[i])
		assert.Equal(t, "user#1", results[i])
	}
	assert.Equal(t, uint64(callers-1), c.Stats().Coalesced)
}

func TestLoading_JoinersShareFailure(t *testing.T) {
	ctx := context.Background()
	backendErr := errors.New("backend unavailable")
	loader := newStubLoader()
	loader.gate = make(chan struct{})
	loader.fail = func(string, int) error { return backendErr }
	c := newTestLoading(t, 2, loader.Load)

	const callers = 4
	errs := make([]error, callers)
	var wg sync.WaitGroup
	for i := range callers {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = c.Get(ctx, "k")
		}(i)
	}

	require.Eventually(t, func() bool {
		return c.Stats().Misses == callers
	}, time.Second, time.Millisecond)
	close(loader.gate)
	wg.Wait()

	assert.Equal(t, 1, loader.Calls("k"))
	for i := range callers {
		require.ErrorIs(t, errs[i], backendErr)
		assert.Same(t, errs[0], errs[i], "every joiner must observe the same failure")
	}
}

func TestLoading_FailureIsNotCached(t *testing.T) {
	ctx := context.Background()
	backendErr := errors.New("boom")
	loader := newStubLoader()
	loader.fail = func(_ string, n int) error {
		if n == 1 {
			return backendErr
		}
		return nil
	}
	c := newTestLoading(t, 2, loader.Load)

	_, err := c.Get(ctx, "K")
	require.Error(t, err)

	var loadErr *LoadError
	require.ErrorAs(t, err, &loadErr)
	assert.Equal(t, "K", loadErr.Key)
	assert.ErrorIs(t, err, backendErr)

	_, ok := c.Peek("K")
	assert.False(t, ok, "failed load must not create an entry")
	assert.Equal(t, 0, c.Len())

	v, err := c.Get(ctx, "K")
	require.NoError(t, err)
	assert.Equal(t, "K#2", v)
	assert.Equal(t, 2, loader.Calls("K"))
	assert.Equal(t, uint64(1), c.Stats().LoadFailures)
}

func TestLoading_LoaderPanicReleasesPendingKey(t *testing.T) {
	ctx := context.Background()
	var calls atomic.Int64
	c := newTestLoading(t, 2, func(_ context.Context, key string) (string, error) {
		if calls.Add(1) == 1 {
			panic("kaboom")
		}
		return key, nil
	})

	_, err := c.Get(ctx, "p")
	require.ErrorIs(t, err, ErrLoaderPanic)

	v, err := c.Get(ctx, "p")
	require.NoError(t, err)
	assert.Equal(t, "p", v)
	assert.Equal(t, int64(2), calls.Load())
}

func TestLoading_InvalidateThenReload(t *testing.T) {
	ctx := context.Background()
	loader := newStubLoader()
	c := newTestLoading(t, 2, loader.Load)

	_, err := c.Get(ctx, "K")
	require.NoError(t, err)

	c.Invalidate("K")
	_, ok := c.Peek("K")
	assert.False(t, ok)

	c.Invalidate("missing") // no-op

	v, err := c.Get(ctx, "K")
	require.NoError(t, err)
	assert.Equal(t, "K#2", v)
	assert.Equal(t, 2, loader.Calls("K"))
}

func TestLoading_InvalidateDoesNotAffectPendingLoad(t *testing.T) {
	ctx := context.Background()
	loader := newStubLoader()
	loader.gate = make(chan struct{})
	c := newTestLoading(t, 2, loader.Load)

	done := make(chan string)
	go func() {
		v, _ := c.Get(ctx, "K")
		done <- v
	}()
	require.Eventually(t, func() bool { return loader.Calls("K") == 1 }, time.Second, time.Millisecond)

	c.Invalidate("K")
	close(loader.gate)

	assert.Equal(t, "K#1", <-done)
	v, ok := c.Peek("K")
	assert.True(t, ok)
	assert.Equal(t, "K#1", v)
}

func TestLoading_OtherKeysDoNotWaitForSlowLoad(t *testing.T) {
	ctx := context.Background()
	slowGate := make(chan struct{})
	defer close(slowGate)

	c := newTestLoading(t, 4, func(_ context.Context, key string) (string, error) {
		if key == "slow" {
			<-slowGate
		}
		return key, nil
	})

	go func() { _, _ = c.Get(ctx, "slow") }()

	fast := make(chan string, 1)
	go func() {
		v, _ := c.Get(ctx, "fast")
		fast <- v
	}()

	select {
	case v := <-fast:
		assert.Equal(t, "fast", v)
	case <-time.After(time.Second):
		t.Fatal("load for an unrelated key was blocked")
	}
}

func TestLoading_WaitHonoursCallerContext(t *testing.T) {
	loader := newStubLoader()
	loader.gate = make(chan struct{})
	c := newTestLoading(t, 2, loader.Load)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		_, err := c.Get(ctx, "K")
		errCh <- err
	}()
	require.Eventually(t, func() bool { return loader.Calls("K") == 1 }, time.Second, time.Millisecond)

	cancel()
	assert.ErrorIs(t, <-errCh, context.Canceled)

	// The shared load keeps running and still populates the cache.
	close(loader.gate)
	require.Eventually(t, func() bool {
		_, ok := c.Peek("K")
		return ok
	}, time.Second, time.Millisecond)
	assert.Equal(t, 1, loader.Calls("K"))
}

func TestLoading_FinishedLoadWinsOverCancelledContext(t *testing.T) {
	c := newTestLoading(t, 1, newStubLoader().Load)

	cl := &call[string]{done: make(chan struct{}), value: "K#1"}
	close(cl.done)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	for range 100 {
		value, err := c.wait(ctx, cl)
		require.NoError(t, err)
		assert.Equal(t, "K#1", value)
	}
}

func TestLoading_Refresh(t *testing.T) {
	ctx := context.Background()
	loader := newStubLoader()
	loader.fail = func(_ string, n int) error {
		if n == 3 {
			return errors.New("refresh failed")
		}
		return nil
	}
	c := newTestLoading(t, 2, loader.Load)

	v, err := c.Get(ctx, "K")
	require.NoError(t, err)
	assert.Equal(t, "K#1", v)

	v, err = c.Refresh(ctx, "K")
	require.NoError(t, err)
	assert.Equal(t, "K#2", v)

	cached, ok := c.Peek("K")
	require.True(t, ok)
	assert.Equal(t, "K#2", cached)

	_, err = c.Refresh(ctx, "K")
	require.Error(t, err)
	_, ok = c.Peek("K")
	assert.False(t, ok, "failed refresh leaves the key absent")
}

func TestLoading_RefreshJoinsInFlightLoad(t *testing.T) {
	ctx := context.Background()
	loader := newStubLoader()
	loader.gate = make(chan struct{})
	c := newTestLoading(t, 2, loader.Load)

	go func() { _, _ = c.Get(ctx, "K") }()
	require.Eventually(t, func() bool { return loader.Calls("K") == 1 }, time.Second, time.Millisecond)

	refreshed := make(chan string, 1)
	go func() {
		v, _ := c.Refresh(ctx, "K")
		refreshed <- v
	}()
	require.Eventually(t, func() bool { return c.Stats().Coalesced == 1 }, time.Second, time.Millisecond)
	close(loader.gate)

	assert.Equal(t, "K#1", <-refreshed)
	assert.Equal(t, 1, loader.Calls("K"))
}

func TestLoading_Purge(t *testing.T) {
	ctx := context.Background()
	loader := newStubLoader()
	c := newTestLoading(t, 3, loader.Load)

	_, _ = c.Get(ctx, "a")
	_, _ = c.Get(ctx, "b")
	c.Purge()

	assert.Equal(t, 0, c.Len())
	_, err := c.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, 2, loader.Calls("a"))
}

type recordingObserver struct {
	mu                                    sync.Mutex
	hits, misses, coalesced, loads, fails int
	evicted, size                         int
}

func (o *recordingObserver) Hit()       { o.mu.Lock(); o.hits++; o.mu.Unlock() }
func (o *recordingObserver) Miss()      { o.mu.Lock(); o.misses++; o.mu.Unlock() }
func (o *recordingObserver) Coalesced() { o.mu.Lock(); o.coalesced++; o.mu.Unlock() }
func (o *recordingObserver) Evicted(n int) {
	o.mu.Lock()
	o.evicted += n
	o.mu.Unlock()
}
func (o *recordingObserver) Size(n int) { o.mu.Lock(); o.size = n; o.mu.Unlock() }
func (o *recordingObserver) Loaded(_ time.Duration, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.loads++
	if err != nil {
		o.fails++
	}
}

func TestLoading_ReportsToObserver(t *testing.T) {
	ctx := context.Background()
	loader := newStubLoader()
	loader.fail = func(key string, _ int) error {
		if key == "bad" {
			return errors.New("nope")
		}
		return nil
	}
	obs := &recordingObserver{}
	c := newTestLoading(t, 1, loader.Load, WithObserver(obs))

	_, _ = c.Get(ctx, "a")
	_, _ = c.Get(ctx, "a")
	_, _ = c.Get(ctx, "b")
	_, _ = c.Get(ctx, "bad")

	obs.mu.Lock()
	defer obs.mu.Unlock()
	assert.Equal(t, 1, obs.hits)
	assert.Equal(t, 3, obs.misses)
	assert.Equal(t, 3, obs.loads)
	assert.Equal(t, 1, obs.fails)
	assert.Equal(t, 1, obs.evicted)
	assert.Equal(t, 1, obs.size)
}

// stallingObserver blocks the first Size(0) report until release is closed.
type stallingObserver struct {
	recordingObserver
	armed   atomic.Bool
	entered chan struct{}
	release chan struct{}
}

func (o *stallingObserver) Size(n int) {
	if n == 0 && o.armed.CompareAndSwap(true, false) {
		close(o.entered)
		<-o.release
	}
	o.recordingObserver.Size(n)
}

func TestLoading_SizeReportsFollowStoreOrder(t *testing.T) {
	ctx := context.Background()
	obs := &stallingObserver{entered: make(chan struct{}), release: make(chan struct{})}
	c := newTestLoading(t, 2, newStubLoader().Load, WithObserver(obs))

	_, err := c.Get(ctx, "a")
	require.NoError(t, err)

	obs.armed.Store(true)
	invalidated := make(chan struct{})
	go func() {
		c.Invalidate("a")
		close(invalidated)
	}()
	<-obs.entered

	loaded := make(chan error, 1)
	go func() {
		_, err := c.Get(ctx, "b")
		loaded <- err
	}()
	time.Sleep(20 * time.Millisecond)
	close(obs.release)

	<-invalidated
	require.NoError(t, <-loaded)

	entries := c.Len()
	obs.mu.Lock()
	defer obs.mu.Unlock()
	assert.Equal(t, 1, entries)
	assert.Equal(t, entries, obs.size)
}

func TestLoading_ConcurrentMixedOperations(t *testing.T) {
	ctx := context.Background()

	var (
		mu       sync.Mutex
		inFlight = make(map[string]int)
		overlap  atomic.Bool
	)
	c := newTestLoading(t, 5, func(_ context.Context, key string) (string, error) {
		mu.Lock()
		inFlight[key]++
		if inFlight[key] > 1 {
			overlap.Store(true)
		}
		mu.Unlock()

		time.Sleep(time.Millisecond)

		mu.Lock()
		inFlight[key]--
		mu.Unlock()
		return key, nil
	})

	var wg sync.WaitGroup
	for i := range 200 {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := fmt.Sprintf("k%d", i%12)
			switch i % 5 {
			case 0:
				c.Invalidate(key)
			case 1:
				c.Peek(key)
			default:
				v, err := c.Get(ctx, key)
				assert.NoError(t, err)
				assert.Equal(t, key, v)
			}
			assert.LessOrEqual(t, c.Len(), 5)
		}(i)
	}
	wg.Wait()

	assert.False(t, overlap.Load(), "a key must never be loaded twice concurrently")
	assert.LessOrEqual(t, c.Len(), 5)
}
