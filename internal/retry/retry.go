// Package retry wraps flaky operations with a bounded, fixed-delay retry
// loop. The profile page is bot-sensitive and slow to settle, so transient
// navigation and timeout failures are expected and absorbed here.
package retry

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
)

// PermanentError marks an error that must not be retried. Do unwraps it and
// stops the loop immediately.
type PermanentError struct {
	Err error
}

func (e *PermanentError) Error() string { return e.Err.Error() }

func (e *PermanentError) Unwrap() error { return e.Err }

// Permanent wraps err so Do gives up on it without further attempts.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &PermanentError{Err: err}
}

// Controller runs operations up to Attempts times, sleeping Delay between
// failures. The delay is deliberately fixed rather than exponential: the
// dominant failure mode is a slow render, not an overloaded upstream.
type Controller struct {
	Attempts int
	Delay    time.Duration

	log   *zap.SugaredLogger
	sleep func(ctx context.Context, d time.Duration) error
}

// NewController creates a Controller with the given budget.
func NewController(attempts int, delay time.Duration, log *zap.SugaredLogger) *Controller {
	if attempts < 1 {
		attempts = 1
	}
	return &Controller{
		Attempts: attempts,
		Delay:    delay,
		log:      log,
		sleep:    sleepContext,
	}
}

// Do runs op until it succeeds, returns a permanent error, exhausts the
// attempt budget, or ctx is cancelled. After the final attempt the last error
// is propagated without an extra delay. Every failed attempt is logged with
// its attempt number.
func Do[T any](ctx context.Context, c *Controller, op func(ctx context.Context) (T, error)) (T, error) {
	var lastErr error

	for attempt := 1; attempt <= c.Attempts; attempt++ {
		result, err := op(ctx)
		if err == nil {
			return result, nil
		}

		var perm *PermanentError
		if errors.As(err, &perm) {
			var zero T
			return zero, perm.Err
		}

		lastErr = err
		if c.log != nil {
			c.log.Warnw("attempt failed", "attempt", attempt, "max_attempts", c.Attempts, "error", err)
		}

		if attempt == c.Attempts {
			break
		}
		if err := c.sleep(ctx, c.Delay); err != nil {
			var zero T
			return zero, err
		}
	}

	var zero T
	return zero, lastErr
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
