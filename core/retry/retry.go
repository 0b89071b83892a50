package retry

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/cenkalti/backoff/v5"
)

const (
	// DefaultMaxRetries is the number of retries after the first attempt.
	DefaultMaxRetries = 3
	// DefaultBase is the delay before the first retry.
	DefaultBase = time.Second
	// DefaultMultiplier grows the delay between consecutive retries.
	DefaultMultiplier = 2.0
)

// Policy describes a bounded exponential backoff.
type Policy struct {
	// MaxRetries is the number of retries after the initial attempt.
	MaxRetries int
	// Base is the delay before the first retry.
	Base time.Duration
	// Multiplier is applied to the delay after every retry.
	Multiplier float64
}

// DefaultPolicy returns the 3 retries / 1s / x2 policy.
func DefaultPolicy() Policy {
	return Policy{
		MaxRetries: DefaultMaxRetries,
		Base:       DefaultBase,
		Multiplier: DefaultMultiplier,
	}
}

// Normalize fills zero or negative fields with defaults.
// A negative MaxRetries is treated as zero retries.
func (p Policy) Normalize() Policy {
	if p.MaxRetries < 0 {
		p.MaxRetries = 0
	}
	if p.Base <= 0 {
		p.Base = DefaultBase
	}
	if p.Multiplier < 1 {
		p.Multiplier = DefaultMultiplier
	}
	return p
}

// Attempts returns the total number of tries, the initial one included.
func (p Policy) Attempts() int {
	return p.Normalize().MaxRetries + 1
}

// Delay returns the wait before retry number attempt (zero based).
func (p Policy) Delay(attempt int) time.Duration {
	p = p.Normalize()
	if attempt < 0 {
		attempt = 0
	}
	return time.Duration(float64(p.Base) * math.Pow(p.Multiplier, float64(attempt)))
}

// Delays returns the full wait sequence, one entry per retry.
func (p Policy) Delays() []time.Duration {
	p = p.Normalize()
	delays := make([]time.Duration, 0, p.MaxRetries)
	b := p.NewBackOff()
	for i := 0; i < p.MaxRetries; i++ {
		delays = append(delays, b.NextBackOff())
	}
	return delays
}

// NewBackOff converts the policy into a jitter-free exponential backoff.
func (p Policy) NewBackOff() *backoff.ExponentialBackOff {
	p = p.Normalize()
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = p.Base
	b.Multiplier = p.Multiplier
	b.RandomizationFactor = 0
	// Never cap the interval below the last retry of the policy.
	b.MaxInterval = p.Delay(p.MaxRetries) + p.Base
	b.Reset()
	return b
}

// Do runs op until it succeeds, returns a permanent error, or the policy is
// exhausted. notify is invoked before every wait and may be nil.
func Do[T any](ctx context.Context, p Policy, op backoff.Operation[T], notify backoff.Notify) (T, error) {
	p = p.Normalize()
	opts := []backoff.RetryOption{
		backoff.WithBackOff(p.NewBackOff()),
		backoff.WithMaxTries(uint(p.Attempts())),
		// Attempt count bounds the loop, not wall-clock time.
		backoff.WithMaxElapsedTime(0),
	}
	if notify != nil {
		opts = append(opts, backoff.WithNotify(notify))
	}
	res, err := backoff.Retry(ctx, op, opts...)
	var perm *backoff.PermanentError
	if errors.As(err, &perm) {
		err = perm.Err
	}
	return res, err
}

// Permanent marks err as not retryable.
func Permanent(err error) error {
	return backoff.Permanent(err)
}
