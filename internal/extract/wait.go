package extract

import (
	"context"
	"time"

	"github.com/dgallion1/coursemap/internal/clock"
)

// Condition is polled by WaitFor.
type Condition func(ctx context.Context) (bool, error)

// WaitFor polls cond every interval until it holds or timeout elapses on clk.
// It checks once before the first wait and once more at the deadline. It
// reports whether the condition was met; running out of time is not an error.
// A condition error or a cancelled ctx ends the wait early with that error.
func WaitFor(ctx context.Context, clk clock.Clock, interval, timeout time.Duration, cond Condition) (bool, error) {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	deadline := clk.Now().Add(timeout)
	for {
		ok, err := cond(ctx)
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}

		remaining := deadline.Sub(clk.Now())
		if remaining <= 0 {
			return false, nil
		}
		wait := min(interval, remaining)

		select {
		case <-ctx.Done():
			return false, ctx.Err()
		case <-clk.After(wait):
		}
	}
}
