package assistant

import (
	"context"
	"sync"
	"time"
)

// Clock abstracts time for the in-memory limiter so tests can drive it.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock is the wall-clock implementation used outside tests.
var SystemClock Clock = systemClock{}

// Limiter gates message sends per caller identity.
type Limiter interface {
	Allow(ctx context.Context, identity string) (bool, error)
}

// WindowLimiter is an in-process sliding-window limiter: at most max
// sends per identity within the trailing window. Suitable for a single
// instance; multi-instance deployments should use the counter-backed
// limiter instead.
type WindowLimiter struct {
	max    int
	window time.Duration
	clock  Clock

	mu    sync.Mutex
	sends map[string][]time.Time
}

func NewWindowLimiter(max int, window time.Duration, clock Clock) *WindowLimiter {
	if clock == nil {
		clock = SystemClock
	}
	return &WindowLimiter{
		max:    max,
		window: window,
		clock:  clock,
		sends:  make(map[string][]time.Time),
	}
}

func (l *WindowLimiter) Allow(_ context.Context, identity string) (bool, error) {
	now := l.clock.Now()
	cutoff := now.Add(-l.window)

	l.mu.Lock()
	defer l.mu.Unlock()

	kept := l.sends[identity][:0]
	for _, t := range l.sends[identity] {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	if len(kept) >= l.max {
		l.sends[identity] = kept
		return false, nil
	}
	l.sends[identity] = append(kept, now)
	return true, nil
}

// WindowCounter is the shared-counter backend contract, satisfied by
// the Redis store's fixed-window INCR.
type WindowCounter interface {
	IncrWindow(ctx context.Context, identity string, window time.Duration) (int64, error)
}

// CounterLimiter enforces the limit against a shared counter so every
// instance sees the same budget. The window is fixed rather than
// sliding, which is the usual trade for a single atomic increment.
type CounterLimiter struct {
	counter WindowCounter
	max     int
	window  time.Duration
}

func NewCounterLimiter(counter WindowCounter, max int, window time.Duration) *CounterLimiter {
	return &CounterLimiter{counter: counter, max: max, window: window}
}

func (l *CounterLimiter) Allow(ctx context.Context, identity string) (bool, error) {
	n, err := l.counter.IncrWindow(ctx, identity, l.window)
	if err != nil {
		return false, err
	}
	return n <= int64(l.max), nil
}
