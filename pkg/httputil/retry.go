package httputil

import (
	"context"
	"errors"
	"time"

	"github.com/cenk/backoff"
)

// DefaultAttempts is the number of attempts made by [DefaultPolicy].
const DefaultAttempts = 3

// RetryableError wraps an error to indicate it should trigger a retry.
// Wrap failures that another attempt could fix with this type so that
// [Policy.Do] knows to run the operation again.
type RetryableError struct{ Err error }

func (e *RetryableError) Error() string { return e.Err.Error() }
func (e *RetryableError) Unwrap() error { return e.Err }

// Policy bounds how often an operation is attempted.
type Policy struct {
	// Attempts is the total number of attempts, including the first one.
	// Values below 1 are treated as 1.
	Attempts int

	// Backoff is the delay before the second attempt. It doubles on every
	// further attempt. Zero retries without delay.
	Backoff time.Duration

	// MaxDelay caps the exponential delay. Zero means no cap.
	MaxDelay time.Duration
}

// DefaultPolicy returns the policy used when nothing else is configured:
// [DefaultAttempts] attempts, no delay between them.
func DefaultPolicy() Policy {
	return Policy{Attempts: DefaultAttempts}
}

// Do runs fn until it succeeds, returns a non-retryable error, or the
// attempt budget is spent. fn receives the 1-based attempt number.
// Returns the last error if all attempts fail, or ctx.Err() if ctx is done
// before an attempt starts.
func (p Policy) Do(ctx context.Context, fn func(attempt int) error) error {
	var (
		attempt int
		final   error
	)
	op := func() error {
		if err := ctx.Err(); err != nil {
			final = err
			return nil
		}
		attempt++
		err := fn(attempt)
		if err != nil && !isRetryable(err) {
			final = err
			return nil
		}
		return err
	}

	if err := backoff.Retry(op, p.schedule(ctx)); err != nil {
		return err
	}
	return final
}

// schedule builds the backoff.BackOff for this policy. The returned value
// stops after Attempts-1 retries and when ctx is done.
func (p Policy) schedule(ctx context.Context) backoff.BackOff {
	var b backoff.BackOff = &backoff.ZeroBackOff{}
	if p.Backoff > 0 {
		exp := backoff.NewExponentialBackOff()
		exp.InitialInterval = p.Backoff
		exp.Multiplier = 2
		exp.RandomizationFactor = 0.1
		exp.MaxElapsedTime = 0
		if p.MaxDelay > 0 {
			exp.MaxInterval = p.MaxDelay
		}
		exp.Reset()
		b = exp
	}
	retries := max(p.Attempts, 1) - 1
	if retries == 0 {
		// WithMaxRetries treats 0 as unlimited.
		b = &backoff.StopBackOff{}
	} else {
		b = backoff.WithMaxRetries(b, uint64(retries))
	}
	return backoff.WithContext(b, ctx)
}

func isRetryable(err error) bool {
	return errors.As(err, new(*RetryableError))
}
