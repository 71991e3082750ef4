package retry

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Policy describes a bounded exponential backoff schedule.
type Policy struct {
	MaxAttempts  int
	InitialDelay time.Duration
}

// DefaultPolicy mirrors the generation-API schedule: three attempts, one
// second initial delay, doubling between attempts.
func DefaultPolicy() Policy {
	return Policy{MaxAttempts: 3, InitialDelay: time.Second}
}

// Do runs op until it succeeds or the attempt budget is exhausted. The delay
// doubles after every failed attempt. The final error is returned wrapped;
// context cancellation during a backoff wait aborts immediately.
func Do(ctx context.Context, policy Policy, logger *slog.Logger, op func() error) error {
	attempts := policy.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	delay := policy.InitialDelay
	var lastErr error

	for attempt := 1; attempt <= attempts; attempt++ {
		lastErr = op()
		if lastErr == nil {
			return nil
		}

		if attempt == attempts {
			break
		}

		if logger != nil {
			logger.Warn("call failed, retrying",
				"attempt", attempt,
				"max_attempts", attempts,
				"delay", delay,
				"error", lastErr)
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("retry aborted: %w", ctx.Err())
		case <-time.After(delay):
		}
		delay *= 2
	}

	return fmt.Errorf("all %d attempts failed: %w", attempts, lastErr)
}
