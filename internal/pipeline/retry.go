package pipeline

import (
	"context"
	"math/rand"
	"time"

	"github.com/rotisserie/eris"
)

// RetryConfig bounds the retry loop wrapped around each tool invocation.
type RetryConfig struct {
	// MaxAttempts is the total number of tries, including the first.
	MaxAttempts int
	// InitialBackoff is the delay before the first retry.
	InitialBackoff time.Duration
	// MaxBackoff caps the exponential growth.
	MaxBackoff time.Duration
	// Multiplier grows the backoff after each failed attempt.
	Multiplier float64
	// JitterFraction randomizes each delay by +/- this fraction.
	JitterFraction float64
	// ShouldRetry decides whether an error is worth another attempt.
	// Nil retries every error except context cancellation.
	ShouldRetry func(error) bool
	// OnRetry is called before each backoff sleep.
	OnRetry func(attempt int, err error, delay time.Duration)
}

// DefaultRetryConfig suits flaky network tools: three tries with a short
// exponential backoff.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:    3,
		InitialBackoff: 500 * time.Millisecond,
		MaxBackoff:     10 * time.Second,
		Multiplier:     2.0,
		JitterFraction: 0.25,
	}
}

func (c RetryConfig) withDefaults() RetryConfig {
	d := DefaultRetryConfig()
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = d.MaxAttempts
	}
	if c.InitialBackoff <= 0 {
		c.InitialBackoff = d.InitialBackoff
	}
	if c.MaxBackoff <= 0 {
		c.MaxBackoff = d.MaxBackoff
	}
	if c.Multiplier < 1 {
		c.Multiplier = d.Multiplier
	}
	if c.JitterFraction < 0 || c.JitterFraction >= 1 {
		c.JitterFraction = d.JitterFraction
	}
	return c
}

// DoVal runs fn until it succeeds, the attempts are exhausted, or the
// context ends. The last error is returned wrapped with the attempt count.
func DoVal[T any](ctx context.Context, cfg RetryConfig, fn func(context.Context) (T, error)) (T, error) {
	cfg = cfg.withDefaults()

	var zero T
	var lastErr error
	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return zero, eris.Wrap(err, "retry: context ended")
		}

		val, err := fn(ctx)
		if err == nil {
			return val, nil
		}
		lastErr = err

		if cfg.ShouldRetry != nil && !cfg.ShouldRetry(err) {
			return zero, err
		}
		if attempt == cfg.MaxAttempts {
			break
		}

		delay := computeBackoff(cfg, attempt)
		if cfg.OnRetry != nil {
			cfg.OnRetry(attempt, err, delay)
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return zero, eris.Wrap(ctx.Err(), "retry: context ended")
		case <-timer.C:
		}
	}
	return zero, eris.Wrapf(lastErr, "retry: %d attempts exhausted", cfg.MaxAttempts)
}

func computeBackoff(cfg RetryConfig, attempt int) time.Duration {
	backoff := float64(cfg.InitialBackoff)
	for i := 1; i < attempt; i++ {
		backoff *= cfg.Multiplier
		if backoff >= float64(cfg.MaxBackoff) {
			backoff = float64(cfg.MaxBackoff)
			break
		}
	}
	if cfg.JitterFraction > 0 {
		jitter := backoff * cfg.JitterFraction
		backoff = backoff - jitter + 2*jitter*rand.Float64()
	}
	return time.Duration(backoff)
}
