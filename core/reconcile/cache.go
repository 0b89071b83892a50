package reconcile

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

type cachedResult struct {
	result any
	built  time.Time
}

// Flight collapses concurrent runs for the same key. With a positive TTL the
// last successful result is also replayed to callers for TTL after it
// completes; expired entries are evicted on every call.
type Flight struct {
	mu      sync.Mutex
	results map[string]cachedResult
	sf      singleflight.Group
	ttl     time.Duration
	now     func() time.Time
}

// NewFlight creates a Flight. A zero ttl only collapses runs that overlap in
// time and keeps nothing once they finish.
func NewFlight(ttl time.Duration) *Flight {
	return &Flight{
		results: make(map[string]cachedResult),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Do runs fn for key unless an identical run is in flight or a fresh result
// is cached. shared is true when the caller received another run's result.
func (f *Flight) Do(ctx context.Context, key string, fn func(context.Context) (any, error)) (result any, shared bool, err error) {
	if v, ok := f.lookup(key); ok {
		return v, true, nil
	}

	v, err, shared := f.sf.Do(key, func() (any, error) {
		out, err := fn(ctx)
		if err != nil {
			return nil, err
		}
		f.store(key, out)
		return out, nil
	})
	if err != nil {
		return nil, shared, err
	}
	return v, shared, nil
}

// Forget drops the cached result for key so the next call runs again.
func (f *Flight) Forget(key string) {
	f.mu.Lock()
	delete(f.results, key)
	f.mu.Unlock()
}

// Len returns the number of cached results, expired ones excluded.
func (f *Flight) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.evictLocked()
	return len(f.results)
}

func (f *Flight) lookup(key string) (any, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.evictLocked()
	c, ok := f.results[key]
	return c.result, ok
}

func (f *Flight) store(key string, v any) {
	if f.ttl <= 0 {
		return
	}
	f.mu.Lock()
	f.results[key] = cachedResult{result: v, built: f.now()}
	f.mu.Unlock()
}

func (f *Flight) evictLocked() {
	now := f.now()
	for k, c := range f.results {
		if now.Sub(c.built) >= f.ttl {
			delete(f.results, k)
		}
	}
}
