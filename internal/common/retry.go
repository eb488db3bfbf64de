package common

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"
)

// ErrMaxRetries indicates that all retry attempts have been exhausted.
var ErrMaxRetries = errors.New("max retries exceeded")

// Backoff spaces the attempts made by WithRetry. Zero fields take the
// values of DefaultBackoff.
type Backoff struct {
	Attempts int
	Initial  time.Duration
	Max      time.Duration
	Factor   float64
}

// DefaultBackoff rides out short SQLite lock contention.
var DefaultBackoff = Backoff{
	Attempts: 5,
	Initial:  50 * time.Millisecond,
	Max:      2 * time.Second,
	Factor:   2,
}

func (b Backoff) normalized() Backoff {
	if b.Attempts <= 0 {
		b.Attempts = DefaultBackoff.Attempts
	}
	if b.Initial <= 0 {
		b.Initial = DefaultBackoff.Initial
	}
	if b.Max <= 0 {
		b.Max = DefaultBackoff.Max
	}
	if b.Factor < 1 {
		b.Factor = DefaultBackoff.Factor
	}
	return b
}

// wait returns the pause after the given failed attempt (1-based).
func (b Backoff) wait(attempt int) time.Duration {
	d := float64(b.Initial) * math.Pow(b.Factor, float64(attempt-1))
	if d > float64(b.Max) {
		return b.Max
	}
	return time.Duration(d)
}

// WithRetry runs op until it succeeds, fails with an error IsRetryable
// rejects, ctx ends, or the attempts run out.
func WithRetry(ctx context.Context, b Backoff, op func() error) error {
	b = b.normalized()

	for attempt := 1; ; attempt++ {
		err := op()
		if err == nil || !IsRetryable(err) {
			return err
		}
		if attempt >= b.Attempts {
			return fmt.Errorf("%w after %d attempts: %w", ErrMaxRetries, attempt, err)
		}

		wait := b.wait(attempt)
		slog.Debug("Transient failure, retrying",
			"attempt", attempt,
			"max_attempts", b.Attempts,
			"wait", wait,
			"error", err)

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}
