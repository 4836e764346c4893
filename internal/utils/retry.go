package utils

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// TransientErrorClassifier reports whether err is a retryable, transient
// condition (connection-invalidated, connection-refused) as opposed to an
// integrity error or statement timeout, which must never be retried per the
// error-handling design.
type TransientErrorClassifier func(err error) bool

// RetryTransient retries op up to 3 attempts total with exponential backoff
// starting at 100ms, doubling, capped at 1s (0.1 -> 0.2 -> 0.4, cap 1s),
// stopping immediately on a non-transient error.
func RetryTransient(ctx context.Context, isTransient TransientErrorClassifier, op func() error) error {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = 100 * time.Millisecond
	policy.Multiplier = 2
	policy.MaxInterval = 1 * time.Second
	policy.MaxElapsedTime = 0 // bounded by WithMaxRetries below, not elapsed time

	bo := backoff.WithMaxRetries(policy, 2) // 3 total attempts: 1 initial + 2 retries
	bo = backoff.WithContext(bo, ctx)

	return backoff.Retry(func() error {
		err := op()
		if err == nil {
			return nil
		}
		if isTransient != nil && !isTransient(err) {
			return backoff.Permanent(err)
		}
		return err
	}, bo)
}

// Unwrap is a small convenience re-export so callers needn't import errors
// solely to walk a wrapped transient error.
var Unwrap = errors.Unwrap
