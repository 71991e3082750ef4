package ratelimit

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Pacer enforces a minimum spacing between outbound generation calls,
// derived from a requests-per-minute budget. Burst is fixed at one so two
// calls can never fire back to back.
type Pacer struct {
	limiter *rate.Limiter
}

// NewPacer builds a pacer for the given budget. A non-positive budget
// disables pacing.
func NewPacer(requestsPerMinute int) *Pacer {
	if requestsPerMinute <= 0 {
		return &Pacer{}
	}
	interval := time.Minute / time.Duration(requestsPerMinute)
	return &Pacer{limiter: rate.NewLimiter(rate.Every(interval), 1)}
}

// Wait blocks until the next call may proceed. No-op when enough time has
// already elapsed since the previous call.
func (p *Pacer) Wait(ctx context.Context) error {
	if p == nil || p.limiter == nil {
		return nil
	}
	return p.limiter.Wait(ctx)
}
