package retry

import (
	"context"
	"math"
	"math/rand/v2"
	"time"

	"github.com/adreach/adsdk/internal/core/errs"
	"github.com/adreach/adsdk/internal/metrics"
)

// Policy defines retry behavior.
type Policy struct {
	MaxAttempts       int
	BaseDelay         time.Duration
	MaxDelay          time.Duration
	BackoffMultiplier float64
	Jitter            bool
}

// DefaultPolicy provides sensible defaults.
var DefaultPolicy = Policy{
	MaxAttempts:       3,
	BaseDelay:         1 * time.Second,
	MaxDelay:          30 * time.Second,
	BackoffMultiplier: 2.0,
	Jitter:            true,
}

// normalize clamps a policy to its documented invariants.
func (p Policy) normalize() Policy {
	if p.MaxAttempts < 1 {
		p.MaxAttempts = 1
	}
	if p.BaseDelay <= 0 {
		p.BaseDelay = DefaultPolicy.BaseDelay
	}
	if p.MaxDelay <= 0 {
		p.MaxDelay = DefaultPolicy.MaxDelay
	}
	if p.BackoffMultiplier < 1 {
		p.BackoffMultiplier = 1
	}
	return p
}

// Backoff computes the pre-jitter delay before attempt k (k >= 2):
// min(BaseDelay * BackoffMultiplier^(k-1), MaxDelay).
func Backoff(attempt int, p Policy) time.Duration {
	delay := float64(p.BaseDelay) * math.Pow(p.BackoffMultiplier, float64(attempt-1))
	if delay > float64(p.MaxDelay) {
		delay = float64(p.MaxDelay)
	}
	return time.Duration(delay)
}

// jittered perturbs a delay by a random multiplier in [0,1].
func jittered(d time.Duration) time.Duration {
	return time.Duration(rand.Float64() * float64(d))
}

// Do executes op up to p.MaxAttempts times with exponential backoff
// between attempts. On success at any attempt it returns immediately.
// On exhaustion the last failure is wrapped in a network-category error
// with code retry-exhausted; the engine never retries its own output.
func Do[T any](ctx context.Context, label string, op func(context.Context) (T, error), p Policy) (T, error) {
	p = p.normalize()

	var zero T
	var lastErr error

	for attempt := 1; attempt <= p.MaxAttempts; attempt++ {
		metrics.RetryAttempts.WithLabelValues(label).Inc()

		result, err := op(ctx)
		if err == nil {
			return result, nil
		}
		lastErr = err

		if attempt == p.MaxAttempts {
			break
		}

		delay := Backoff(attempt, p)
		if p.Jitter {
			delay = jittered(delay)
		}

		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		case <-time.After(delay):
		}
	}

	metrics.RetryExhaustions.WithLabelValues(label).Inc()
	ec := errs.NewContext()
	ec.AdditionalData = map[string]any{"attempts": p.MaxAttempts, "operation": label}
	return zero, errs.NewNetwork(
		"operation failed after all retry attempts",
		errs.CodeRetryExhausted,
		ec,
		errs.WithCause(lastErr),
	)
}
