package bus

import (
	"context"
	"time"

	"github.com/jpillora/backoff"
)

// RetryPolicy bounds how often an event handler is attempted, and how
// long the bus waits between attempts. It applies to the event path
// only; commands are never retried by the bus.
type RetryPolicy struct {
	// MaxAttempts is the total number of attempts, including the first
	MaxAttempts int

	// Min and Max bound the inter-attempt delay
	Min time.Duration
	Max time.Duration

	// Factor multiplies the delay after each failed attempt
	Factor float64
}

// DefaultRetry is the production policy: 3 attempts with exponential backoff
func DefaultRetry() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 3,
		Min:         500 * time.Millisecond,
		Max:         10 * time.Second,
		Factor:      2,
	}
}

// NoDelayRetry retries immediately, for tests
func NoDelayRetry(attempts int) RetryPolicy {
	return RetryPolicy{MaxAttempts: attempts, Min: 0, Max: 0, Factor: 1}
}

// Do runs fn up to MaxAttempts times, sleeping a non-decreasing
// backoff between attempts. fn is given the 1-based attempt number.
// Returns nil on the first success, the last error on exhaustion, or
// early if ctx is cancelled during a wait.
func (p RetryPolicy) Do(ctx context.Context, fn func(attempt int) error) error {
	b := &backoff.Backoff{Min: p.Min, Max: p.Max, Factor: p.Factor}

	var err error
	for attempt := 1; attempt <= p.MaxAttempts; attempt++ {
		err = fn(attempt)
		if err == nil {
			return nil
		}
		if attempt == p.MaxAttempts {
			break
		}

		select {
		case <-ctx.Done():
			return err
		case <-time.After(b.Duration()):
		}
	}
	return err
}
