package gemini

import (
	"context"
	"sync"
	"time"
)

// throttle caps concurrent requests and spaces their start times
type throttle struct {
	sem   chan struct{}
	mu    sync.Mutex
	last  time.Time
	delay time.Duration
}

func newThrottle(maxConcurrent int, delay time.Duration) *throttle {
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}
	return &throttle{
		sem:   make(chan struct{}, maxConcurrent),
		delay: delay,
	}
}

func (t *throttle) acquire(ctx context.Context) (func(), error) {
	select {
	case t.sem <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	// reserve a start slot, then wait for it outside the lock
	t.mu.Lock()
	now := time.Now()
	var wait time.Duration
	if !t.last.IsZero() {
		if d := t.delay - now.Sub(t.last); d > 0 {
			wait = d
		}
	}
	t.last = now.Add(wait)
	t.mu.Unlock()

	if wait > 0 {
		timer := time.NewTimer(wait)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-ctx.Done():
			<-t.sem
			return nil, ctx.Err()
		}
	}

	return func() { <-t.sem }, nil
}
