package apiclient

import (
	"time"

	"match-sync/core/retry"
)

// Config holds configuration for the remote API client.
type Config struct {
	// BaseURL is the root URL of the match-tracking API.
	BaseURL string `mapstructure:"base_url" default:"http://localhost:8000"`
	// Token is the bearer token sent with authenticated calls.
	Token string `mapstructure:"token" default:""`
	// TimeoutSeconds bounds a single HTTP call.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"30"`
	// MaxRetries is the number of retries after the first attempt.
	MaxRetries int `mapstructure:"max_retries" default:"3"`
	// BackoffBase is the first retry delay in seconds.
	BackoffBase float64 `mapstructure:"backoff_base" default:"1.0"`
	// BackoffMultiplier grows the delay between retries.
	BackoffMultiplier float64 `mapstructure:"backoff_multiplier" default:"2.0"`
}

// RetryPolicy converts the retry settings into a retry.Policy.
func (c Config) RetryPolicy() retry.Policy {
	return retry.Policy{
		MaxRetries: c.MaxRetries,
		Base:       time.Duration(c.BackoffBase * float64(time.Second)),
		Multiplier: c.BackoffMultiplier,
	}.Normalize()
}

// Timeout returns the per-call timeout, defaulting to 30 seconds.
func (c Config) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}
