// Package throttle paces calls to model providers.
package throttle

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

var sleep = time.Sleep

// WaitFor blocks for d or until ctx is done, whichever comes first.
func WaitFor(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		sleep(d)
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-done:
		return nil
	}
}

// Limiter spaces requests to at most a fixed number per minute.
// A nil Limiter never blocks.
type Limiter struct {
	limiter *rate.Limiter
}

// NewLimiter returns nil when requestsPerMinute is not positive.
func NewLimiter(requestsPerMinute int) *Limiter {
	if requestsPerMinute <= 0 {
		return nil
	}
	return &Limiter{limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(requestsPerMinute)), 1)}
}

// Wait blocks until the next request may be sent.
func (l *Limiter) Wait(ctx context.Context) error {
	if l == nil {
		return ctx.Err()
	}
	return l.limiter.Wait(ctx)
}

// Backoff returns the delay before retry number attempt (starting at 1),
// doubling from base and capped at limit.
func Backoff(attempt int, base, limit time.Duration) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	d := base
	for i := 1; i < attempt && d < limit; i++ {
		d *= 2
	}
	return min(d, limit)
}
