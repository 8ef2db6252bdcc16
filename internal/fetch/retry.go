package fetch

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"
)

// RetryPolicy decides how fetch attempts are repeated.
//
// Design decision: We keep retry behavior in one policy object shared by
// both fetcher implementations because:
//  1. The seed fetch and per-page fetches must retry identically
//  2. Rate-limit responses need backoff regardless of transport
//  3. Tests can exercise the schedule without a real fetcher
type RetryPolicy struct {
	// MaxAttempts is the total number of attempts, including the first.
	MaxAttempts int

	// BaseDelay is the pause between attempts for ordinary failures.
	// Rate-limit failures instead back off exponentially from this base.
	BaseDelay time.Duration
}

// NewRetryPolicy creates a policy with the given attempt count and base
// delay. Values below the minimum are clamped (at least one attempt, zero
// delay allowed).
func NewRetryPolicy(maxAttempts int, baseDelay time.Duration) *RetryPolicy {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	if baseDelay < 0 {
		baseDelay = 0
	}
	return &RetryPolicy{MaxAttempts: maxAttempts, BaseDelay: baseDelay}
}

// Do runs fn until it succeeds or attempts are exhausted. On exhaustion it
// returns the last error. The returned Result, if any, has Attempts set.
func (p *RetryPolicy) Do(ctx context.Context, fn func(ctx context.Context) (*Result, error)) (*Result, error) {
	var lastErr error

	for attempt := 1; attempt <= p.MaxAttempts; attempt++ {
		result, err := fn(ctx)
		if err == nil {
			result.Attempts = attempt
			return result, nil
		}
		lastErr = err

		if attempt == p.MaxAttempts {
			break
		}

		delay := p.delayFor(err, attempt)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
	}

	return nil, fmt.Errorf("all %d attempts failed: %w", p.MaxAttempts, lastErr)
}

// delayFor computes the pause before the next attempt. Ordinary failures
// wait the fixed base delay; rate-limit failures back off exponentially
// with up to 50% jitter so retries from concurrent pages spread out.
func (p *RetryPolicy) delayFor(err error, attempt int) time.Duration {
	if !errors.Is(err, ErrRateLimited) {
		return p.BaseDelay
	}

	backoff := p.BaseDelay << (attempt - 1)
	if backoff <= 0 {
		backoff = time.Second << (attempt - 1)
	}
	jitter := time.Duration(rand.Int63n(int64(backoff)/2 + 1))
	return backoff + jitter
}
