// Package retry extracts retry/backoff behavior into a policy object so
// callers never sleep inline in business logic and tests can drive the
// policy with a fake clock.
package retry

import (
	"context"
	"math/rand"
	"time"
)

// Clock abstracts wall-clock sleeping for tests.
type Clock interface {
	Now() time.Time
	Sleep(d time.Duration)
}

type systemClock struct{}

func (systemClock) Now() time.Time        { return time.Now() }
func (systemClock) Sleep(d time.Duration) { time.Sleep(d) }

// SystemClock returns the real wall clock.
func SystemClock() Clock { return systemClock{} }

// BackoffFunc returns the delay before the given retry, attempt counts from
// 1 (the delay after the first failure).
type BackoffFunc func(attempt int) time.Duration

// ExponentialBackoff doubles base each attempt and adds up to jitter of
// random noise to spread out competing clients.
func ExponentialBackoff(base, jitter time.Duration, rng *rand.Rand) BackoffFunc {
	return func(attempt int) time.Duration {
		delay := base << (attempt - 1)
		if jitter > 0 && rng != nil {
			delay += time.Duration(rng.Int63n(int64(jitter)))
		}
		return delay
	}
}

// Policy retries an operation while its error is retryable. The zero value
// is unusable, construct one with every field set.
type Policy struct {
	// total attempts including the first, not just retries
	MaxAttempts int
	Backoff     BackoffFunc
	// Retryable decides whether an error is worth another attempt, all
	// other errors fail immediately.
	Retryable func(error) bool
	Clock     Clock
}

// Do runs op until it succeeds, exhausts MaxAttempts, hits a non-retryable
// error, or ctx is done. It returns the number of attempts made alongside
// the final error.
func (p Policy) Do(ctx context.Context, op func() error) (int, error) {
	clock := p.Clock
	if clock == nil {
		clock = systemClock{}
	}

	var err error
	for attempt := 1; ; attempt++ {
		err = op()
		if err == nil {
			return attempt, nil
		}
		if p.Retryable != nil && !p.Retryable(err) {
			return attempt, err
		}
		if attempt >= p.MaxAttempts {
			return attempt, err
		}
		if ctx.Err() != nil {
			return attempt, ctx.Err()
		}
		clock.Sleep(p.Backoff(attempt))
	}
}
