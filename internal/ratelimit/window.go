// Package ratelimit throttles calls to upstream game APIs.
package ratelimit

import (
	"context"
	"sync"
	"time"
)

// SlidingWindow admits at most limit calls in any trailing window.
type SlidingWindow struct {
	mu     sync.Mutex
	limit  int
	window time.Duration
	stamps []time.Time
	now    func() time.Time
}

func NewSlidingWindow(limit int, window time.Duration) *SlidingWindow {
	if limit <= 0 {
		limit = 1
	}
	return &SlidingWindow{
		limit:  limit,
		window: window,
		now:    time.Now,
	}
}

// WithClock replaces the time source, for tests.
func (w *SlidingWindow) WithClock(now func() time.Time) *SlidingWindow {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.now = now
	return w
}

// TryAcquire takes a slot if one is free.
func (w *SlidingWindow) TryAcquire() bool {
	_, ok := w.reserve()
	return ok
}

// Acquire blocks until a slot is free or ctx is done.
func (w *SlidingWindow) Acquire(ctx context.Context) error {
	for {
		wait, ok := w.reserve()
		if ok {
			return nil
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// Remaining is the number of calls that would be admitted right now.
func (w *SlidingWindow) Remaining() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.evict(w.now())
	return w.limit - len(w.stamps)
}

func (w *SlidingWindow) reserve() (time.Duration, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()

	now := w.now()
	w.evict(now)
	if len(w.stamps) < w.limit {
		w.stamps = append(w.stamps, now)
		return 0, true
	}

	wait := w.stamps[0].Add(w.window).Sub(now)
	if wait <= 0 {
		wait = time.Millisecond
	}
	return wait, false
}

func (w *SlidingWindow) evict(now time.Time) {
	cutoff := now.Add(-w.window)
	i := 0
	for i < len(w.stamps) && !w.stamps[i].After(cutoff) {
		i++
	}
	if i > 0 {
		w.stamps = append(w.stamps[:0], w.stamps[i:]...)
	}
}
