package retry

import (
	"context"
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	now    time.Time
	sleeps []time.Duration
}

func (c *fakeClock) Now() time.Time { return c.now }
func (c *fakeClock) Sleep(d time.Duration) {
	c.sleeps = append(c.sleeps, d)
	c.now = c.now.Add(d)
}

var errQuota = errors.New("quota exceeded")
var errFatal = errors.New("permission denied")

func quotaOnly(err error) bool { return errors.Is(err, errQuota) }

func TestDoRetriesUpToBound(t *testing.T) {
	clock := &fakeClock{}
	p := Policy{
		MaxAttempts: 5,
		Backoff:     ExponentialBackoff(time.Second, 0, nil),
		Retryable:   quotaOnly,
		Clock:       clock,
	}

	calls := 0
	attempts, err := p.Do(context.Background(), func() error {
		calls++
		return errQuota
	})
	require.ErrorIs(t, err, errQuota)
	require.Equal(t, 5, attempts)
	require.Equal(t, 5, calls)

	// delays strictly increase: 1s, 2s, 4s, 8s
	require.Len(t, clock.sleeps, 4)
	for i := 1; i < len(clock.sleeps); i++ {
		require.Greater(t, clock.sleeps[i], clock.sleeps[i-1])
	}
}

func TestDoNonRetryableFailsImmediately(t *testing.T) {
	clock := &fakeClock{}
	p := Policy{
		MaxAttempts: 5,
		Backoff:     ExponentialBackoff(time.Second, 0, nil),
		Retryable:   quotaOnly,
		Clock:       clock,
	}

	calls := 0
	attempts, err := p.Do(context.Background(), func() error {
		calls++
		return errFatal
	})
	require.ErrorIs(t, err, errFatal)
	require.Equal(t, 1, attempts)
	require.Equal(t, 1, calls)
	require.Empty(t, clock.sleeps)
}

func TestDoEventualSuccess(t *testing.T) {
	clock := &fakeClock{}
	p := Policy{
		MaxAttempts: 5,
		Backoff:     ExponentialBackoff(time.Second, 0, nil),
		Retryable:   quotaOnly,
		Clock:       clock,
	}

	calls := 0
	attempts, err := p.Do(context.Background(), func() error {
		calls++
		if calls < 3 {
			return errQuota
		}
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, 3, attempts)
}

func TestExponentialBackoffJitter(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	backoff := ExponentialBackoff(time.Second, time.Second, rng)
	for attempt := 1; attempt <= 4; attempt++ {
		base := time.Second << (attempt - 1)
		d := backoff(attempt)
		require.GreaterOrEqual(t, d, base)
		require.Less(t, d, base+time.Second)
	}
}

func TestDoContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	clock := &fakeClock{}
	p := Policy{
		MaxAttempts: 5,
		Backoff:     ExponentialBackoff(time.Second, 0, nil),
		Retryable:   quotaOnly,
		Clock:       clock,
	}
	_, err := p.Do(ctx, func() error { return errQuota })
	require.ErrorIs(t, err, context.Canceled)
}
