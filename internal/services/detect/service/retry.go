package service

import (
	"context"
	"time"

	"sleuth/internal/platform/errors"
)

// retryPolicy retries a transient operation with exponential backoff.
// delay before attempt n+1 is base * 2^n
type retryPolicy struct {
	attempts int
	base     time.Duration
	sleep    func(time.Duration)
}

func defaultRetryPolicy() retryPolicy {
	return retryPolicy{
		attempts: 3,
		base:     2 * time.Second,
		sleep:    time.Sleep,
	}
}

// do runs fn until it succeeds, the attempts run out, or ctx is cancelled
func (p retryPolicy) do(ctx context.Context, fn func() error) error {
	var lastErr error
	for attempt := 0; attempt < p.attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return errors.Wrap(err, errors.ErrorCodeTimeout, "retry aborted")
		}
		if lastErr = fn(); lastErr == nil {
			return nil
		}
		if attempt < p.attempts-1 {
			p.sleep(p.base << attempt)
		}
	}
	return errors.Wrapf(lastErr, errors.ErrorCodeUnavailable, "giving up after %d attempts", p.attempts)
}
