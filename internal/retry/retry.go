package retry

import (
	"context"
	"time"

	"github.com/pkg/errors"
)

var ErrTooManyAttempts = errors.New("too many retry attempts")

type Callable func(attempt int) error

type retryableError struct {
	error
	attempt int
}

func (e *retryableError) Unwrap() error {
	return e.error
}

// Retryable marks err as recoverable, any other error returned
// from a Callable stops the retries immediately
func Retryable(err error, attempt int) error {
	if err == nil {
		return nil
	}
	return &retryableError{error: err, attempt: attempt}
}

type Attempts interface {
	Next() (time.Duration, bool)
	Current() int
}

func Start(ctx context.Context, a Attempts, cb Callable) error {
	for {
		err := cb(a.Current())
		if err == nil {
			return nil
		}

		var rErr *retryableError
		if !errors.As(err, &rErr) {
			return errors.Wrapf(err, "attempt %d failed", a.Current())
		}

		next, stop := a.Next()
		if stop {
			return errors.Wrapf(ErrTooManyAttempts, "last error: %s", rErr.error.Error())
		}

		select {
		case <-ctx.Done():
			return errors.Wrapf(ctx.Err(), "gave up after attempt %d", rErr.attempt)
		case <-time.After(next):
		}
	}
}

// Incremental waits step, 2*step, 3*step... between attempts
func Incremental(ctx context.Context, step time.Duration, maxAttempts int, cb Callable) error {
	return Start(ctx, IncrementalAttempts(step, maxAttempts), cb)
}

type incrementalAttempts struct {
	prev time.Duration
	step time.Duration
	max  int
	curr int
}

func (a *incrementalAttempts) Next() (time.Duration, bool) {
	a.curr++
	if a.curr > a.max {
		return 0, true
	}

	next := a.prev + a.step
	a.prev = next

	return next, false
}

func (a *incrementalAttempts) Current() int {
	return a.curr
}

func IncrementalAttempts(step time.Duration, max int) Attempts {
	return &incrementalAttempts{
		step: step,
		max:  max,
		curr: 1,
	}
}
