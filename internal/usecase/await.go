package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrAwaitTimeout is returned by Await when the probe never succeeds
// within the wall-clock budget.
var ErrAwaitTimeout = errors.New("await timed out")

// Await invokes probe every interval until it reports success or the
// wall-clock budget elapses. The budget is measured from the first
// probe, so the initial sleep is not counted against it. The first
// successful probe wins; a probe error ends the wait immediately.
func Await[T any](ctx context.Context, interval, timeout time.Duration, probe func(context.Context) (T, bool, error)) (T, error) {
	var zero T
	var deadline time.Time

	for {
		wait := interval
		if !deadline.IsZero() {
			if remaining := time.Until(deadline); remaining < wait {
				wait = remaining
			}
		}
		if wait > 0 {
			timer := time.NewTimer(wait)
			select {
			case <-ctx.Done():
				timer.Stop()
				return zero, ctx.Err()
			case <-timer.C:
			}
		}
		if deadline.IsZero() {
			deadline = time.Now().Add(timeout)
		}

		v, ok, err := probe(ctx)
		if err != nil {
			return zero, err
		}
		if ok {
			return v, nil
		}
		if !time.Now().Before(deadline) {
			return zero, fmt.Errorf("%w after %s", ErrAwaitTimeout, timeout)
		}
	}
}
