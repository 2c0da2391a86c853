package sheets

import (
	"context"

	"golang.org/x/sync/semaphore"
)

// limiter caps the number of Sheets calls in flight.
type limiter struct {
	sem *semaphore.Weighted
}

func newLimiter(n int) *limiter {
	if n < 1 {
		n = 1
	}
	return &limiter{sem: semaphore.NewWeighted(int64(n))}
}

// Do waits for a free slot, or for ctx to end, then runs fn.
func (l *limiter) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := l.sem.Acquire(ctx, 1); err != nil {
		return err
	}
	defer l.sem.Release(1)
	return fn(ctx)
}
