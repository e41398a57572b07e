package retry

import (
	"context"
	"fmt"
	"time"

	errs "aqiscraper/pkg/errors"
	"aqiscraper/pkg/logger"
)

// Operation is one attempt of something that may need retrying
type Operation func(ctx context.Context) error

// OperationWithResult is an attempt that produces a value
type OperationWithResult[T any] func(ctx context.Context) (T, error)

// Policy decides how many times, how long apart and for which errors an
// operation is retried
type Policy struct {
	// MaxRetries is the number of retries after the first attempt
	MaxRetries int
	// Backoff yields the delay before retry n (1-based)
	Backoff BackoffStrategy
	// RetryIf reports whether an error qualifies for a retry
	RetryIf func(error) bool
	// OnRetry is called before sleeping for each retry
	OnRetry func(retry int, err error, delay time.Duration)
	Logger  logger.Logger
}

// ConnectPolicy retries only connection-establishment failures, waiting
// base, base*multiplier, base*multiplier^2, ... between attempts
func ConnectPolicy(maxRetries int, base time.Duration, multiplier float64, log logger.Logger) *Policy {
	return &Policy{
		MaxRetries: maxRetries,
		Backoff: &ExponentialBackoff{
			BaseDelay:  base,
			MaxDelay:   time.Minute,
			Multiplier: multiplier,
		},
		RetryIf: errs.IsConnectionFailure,
		Logger:  log,
	}
}

// Do runs op until it succeeds, returns a non-retryable error, exhausts the
// policy or ctx is done. The last error is returned unwrapped so callers can
// still classify it.
func Do(ctx context.Context, p *Policy, op Operation) error {
	if p == nil {
		p = &Policy{}
	}

	for retry := 0; ; retry++ {
		err := op(ctx)
		if err == nil {
			if retry > 0 && p.Logger != nil {
				p.Logger.DebugWithFields("operation succeeded after retry", map[string]interface{}{
					"retries": retry,
				})
			}
			return nil
		}

		if p.RetryIf == nil || !p.RetryIf(err) {
			return err
		}

		if retry >= p.MaxRetries {
			if p.Logger != nil {
				p.Logger.WarnWithFields("retries exhausted", map[string]interface{}{
					"retries": retry,
					"error":   err.Error(),
				})
			}
			return err
		}

		var delay time.Duration
		if p.Backoff != nil {
			delay = p.Backoff.NextDelay(retry + 1)
		}
		if p.OnRetry != nil {
			p.OnRetry(retry+1, err, delay)
		}
		if p.Logger != nil {
			p.Logger.WarnWithFields("retrying operation", map[string]interface{}{
				"retry":       retry + 1,
				"max_retries": p.MaxRetries,
				"delay_ms":    delay.Milliseconds(),
				"error":       err.Error(),
			})
		}

		if waitErr := Wait(ctx, delay); waitErr != nil {
			return fmt.Errorf("retry cancelled: %w", waitErr)
		}
	}
}

// DoWithResult is Do for operations that return a value
func DoWithResult[T any](ctx context.Context, p *Policy, op OperationWithResult[T]) (T, error) {
	var result T
	err := Do(ctx, p, func(ctx context.Context) error {
		var opErr error
		result, opErr = op(ctx)
		return opErr
	})
	return result, err
}
