package reconcile

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlight_CollapsesConcurrentRuns(t *testing.T) {
	f := NewFlight(0)
	var calls int32
	release := make(chan struct{})

	var wg sync.WaitGroup
	results := make([]any, 5)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			v, _, err := f.Do(context.Background(), "u14/northeast", func(ctx context.Context) (any, error) {
				atomic.AddInt32(&calls, 1)
				<-release
				return "done", nil
			})
			assert.NoError(t, err)
			results[i] = v
		}(i)
	}

	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	for _, v := range results {
		assert.Equal(t, "done", v)
	}
}

func TestFlight_ServesFreshResult(t *testing.T) {
	f := NewFlight(time.Minute)
	calls := 0
	fn := func(ctx context.Context) (any, error) {
		calls++
		return calls, nil
	}

	v, shared, err := f.Do(context.Background(), "k", fn)
	require.NoError(t, err)
	assert.False(t, shared)
	assert.Equal(t, 1, v)

	v, shared, err = f.Do(context.Background(), "k", fn)
	require.NoError(t, err)
	assert.True(t, shared)
	assert.Equal(t, 1, v)

	f.Forget("k")
	v, _, err = f.Do(context.Background(), "k", fn)
	require.NoError(t, err)
	assert.Equal(t, 2, v)
}

func TestFlight_ZeroTTLKeepsNothing(t *testing.T) {
	f := NewFlight(0)
	calls := 0
	for range 3 {
		_, shared, err := f.Do(context.Background(), "u14/northeast", func(ctx context.Context) (any, error) {
			calls++
			return calls, nil
		})
		require.NoError(t, err)
		assert.False(t, shared)
	}
	assert.Equal(t, 3, calls)
	assert.Zero(t, f.Len())
}

func TestFlight_EvictsExpiredResults(t *testing.T) {
	clock := time.Date(2025, 10, 19, 12, 0, 0, 0, time.UTC)
	f := NewFlight(time.Minute)
	f.now = func() time.Time { return clock }

	for _, key := range []string{"u14/2025-10-01", "u14/2025-10-08"} {
		_, _, err := f.Do(context.Background(), key, func(ctx context.Context) (any, error) {
			return key, nil
		})
		require.NoError(t, err)
	}
	assert.Equal(t, 2, f.Len())

	clock = clock.Add(30 * time.Second)
	v, shared, err := f.Do(context.Background(), "u14/2025-10-01", func(ctx context.Context) (any, error) {
		return "rerun", nil
	})
	require.NoError(t, err)
	assert.True(t, shared)
	assert.Equal(t, "u14/2025-10-01", v)

	clock = clock.Add(time.Minute)
	assert.Zero(t, f.Len())
}

func TestFlight_ErrorsAreNotCached(t *testing.T) {
	f := NewFlight(time.Minute)
	calls := 0
	_, _, err := f.Do(context.Background(), "k", func(ctx context.Context) (any, error) {
		calls++
		return nil, errors.New("fail")
	})
	require.Error(t, err)

	v, _, err := f.Do(context.Background(), "k", func(ctx context.Context) (any, error) {
		calls++
		return "ok", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", v)
	assert.Equal(t, 2, calls)
}
