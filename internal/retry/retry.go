// Package retry provides the single bounded-retry policy used by every
// point-lookup call site, instead of per-call ad hoc retry loops.
package retry

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Policy describes a bounded retry schedule
type Policy struct {
	MaxAttempts     int
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

// DefaultPolicy returns the policy used when none is configured
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts:     3,
		InitialInterval: 100 * time.Millisecond,
		MaxInterval:     2 * time.Second,
	}
}

// Do runs op under the policy with exponential backoff, stopping early when
// ctx is done or op returns a permanent error.
func Do(ctx context.Context, policy Policy, op func() error) error {
	if policy.MaxAttempts <= 0 {
		policy.MaxAttempts = DefaultPolicy().MaxAttempts
	}
	if policy.InitialInterval <= 0 {
		policy.InitialInterval = DefaultPolicy().InitialInterval
	}
	if policy.MaxInterval <= 0 {
		policy.MaxInterval = DefaultPolicy().MaxInterval
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = policy.InitialInterval
	b.MaxInterval = policy.MaxInterval

	schedule := backoff.WithContext(
		backoff.WithMaxRetries(b, uint64(policy.MaxAttempts-1)),
		ctx,
	)
	return backoff.Retry(op, schedule)
}

// Permanent marks err so Do stops retrying and returns it immediately
func Permanent(err error) error {
	return backoff.Permanent(err)
}
