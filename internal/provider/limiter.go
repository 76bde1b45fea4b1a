// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package provider

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"
)

// Limiter bounds one provider's request rate: at most maxConcurrent
// in-flight requests, spaced at least minInterval apart. Each adapter is
// constructed with its own Limiter instance; state is never shared across
// providers or package-level.
type Limiter struct {
	sem         *semaphore.Weighted
	minInterval time.Duration

	mu   sync.Mutex
	next time.Time
}

const defaultMaxConcurrent = 4

// NewLimiter returns a limiter allowing maxConcurrent in-flight requests
// (default 4 when non-positive) spaced minInterval apart.
func NewLimiter(maxConcurrent int, minInterval time.Duration) *Limiter {
	if maxConcurrent <= 0 {
		maxConcurrent = defaultMaxConcurrent
	}
	return &Limiter{
		sem:         semaphore.NewWeighted(int64(maxConcurrent)),
		minInterval: minInterval,
	}
}

// Acquire blocks until a request slot is available and the minimum spacing
// since the previous request has elapsed, or ctx is cancelled. Callers must
// Release after the request completes.
func (l *Limiter) Acquire(ctx context.Context) error {
	if err := l.sem.Acquire(ctx, 1); err != nil {
		return err
	}

	l.mu.Lock()
	now := time.Now()
	wait := l.next.Sub(now)
	if wait < 0 {
		wait = 0
	}
	l.next = now.Add(wait + l.minInterval)
	l.mu.Unlock()

	if wait == 0 {
		return nil
	}

	select {
	case <-ctx.Done():
		l.sem.Release(1)
		return ctx.Err()
	case <-time.After(wait):
		return nil
	}
}

// Release returns the request slot.
func (l *Limiter) Release() {
	l.sem.Release(1)
}
