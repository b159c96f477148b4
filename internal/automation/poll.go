package automation

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"
)

// DefaultPollInterval is used when a non-positive interval is supplied.
const DefaultPollInterval = 100 * time.Millisecond

// Poll evaluates pred at most once per interval until it returns true, it
// returns an error, or timeout elapses. The first evaluation is immediate.
// Cancellation of ctx is returned as is; running out of budget yields an
// error wrapping ErrWaitTimeout.
func Poll(ctx context.Context, interval, timeout time.Duration, pred Predicate) error {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	waitCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	limiter := rate.NewLimiter(rate.Every(interval), 1)
	for {
		if err := limiter.Wait(waitCtx); err != nil {
			// Wait fails early when the next token lands past the deadline.
			return pollDone(ctx, timeout)
		}
		ok, err := pred(waitCtx)
		if err != nil {
			if waitCtx.Err() != nil {
				return pollDone(ctx, timeout)
			}
			return err
		}
		if ok {
			return nil
		}
	}
}

func pollDone(ctx context.Context, timeout time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return fmt.Errorf("after %s: %w", timeout, ErrWaitTimeout)
}

// Sleep pauses for d or until ctx is done.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
