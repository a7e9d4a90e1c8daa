package ratelimit

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func TestSlidingWindow_TryAcquire(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1_700_000_000, 0)}
	w := NewSlidingWindow(30, time.Minute).WithClock(clock.Now)

	for i := 0; i < 30; i++ {
		require.True(t, w.TryAcquire(), "request %d should be allowed", i+1)
		clock.Advance(time.Second)
	}
	assert.False(t, w.TryAcquire(), "31st request inside the window")
	assert.Equal(t, 0, w.Remaining())

	// first stamp leaves the window after 60s
	clock.Advance(30 * time.Second)
	assert.Equal(t, 1, w.Remaining())
	assert.True(t, w.TryAcquire())
	assert.False(t, w.TryAcquire())
}

func TestSlidingWindow_AcquireBlocksUntilSlotFrees(t *testing.T) {
	w := NewSlidingWindow(2, 150*time.Millisecond)
	ctx := context.Background()

	require.NoError(t, w.Acquire(ctx))
	require.NoError(t, w.Acquire(ctx))

	start := time.Now()
	require.NoError(t, w.Acquire(ctx))
	assert.GreaterOrEqual(t, time.Since(start), 100*time.Millisecond)
}

func TestSlidingWindow_AcquireHonoursContext(t *testing.T) {
	w := NewSlidingWindow(1, time.Hour)
	require.True(t, w.TryAcquire())

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := w.Acquire(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestSlidingWindow_Concurrent(t *testing.T) {
	w := NewSlidingWindow(50, time.Hour)
	var wg sync.WaitGroup
	var mu sync.Mutex
	admitted := 0

	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 10; j++ {
				if w.TryAcquire() {
					mu.Lock()
					admitted++
					mu.Unlock()
				}
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, admitted)
}
