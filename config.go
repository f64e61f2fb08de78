// config.go
// ----------
// This file defines the ServiceConfig structure, which allows per-service
// customization of the rate-limit window and the retry policy.
//
// Zero fields are filled with defaults at registration time, so a caller may
// set only what it cares about (or pass nil for all defaults).
package agentbridge

import "time"

// ServiceConfig customizes rate limiting and retries for one registered
// service.
type ServiceConfig struct {
	// MaxCalls is the number of calls allowed per TimeWindow.
	MaxCalls int
	// TimeWindow is the rolling window length for MaxCalls.
	TimeWindow time.Duration

	// MaxRetries is the number of retries after the first attempt. Zero
	// selects the default; use a negative value for no retries at all.
	MaxRetries int
	// BaseDelay is the backoff before the first retry.
	BaseDelay time.Duration
	// BackoffFactor is the multiplicative backoff growth per retry.
	BackoffFactor float64
}

const (
	defaultMaxCalls   = 60
	defaultTimeWindow = time.Minute
)

// withDefaults fills zero fields with the default policy.
func (c ServiceConfig) withDefaults() ServiceConfig {
	if c.MaxCalls == 0 {
		c.MaxCalls = defaultMaxCalls
	}
	if c.TimeWindow == 0 {
		c.TimeWindow = defaultTimeWindow
	}
	def := DefaultRetryConfig()
	if c.MaxRetries == 0 {
		c.MaxRetries = def.MaxRetries
	} else if c.MaxRetries < 0 {
		c.MaxRetries = 0
	}
	if c.BaseDelay == 0 {
		c.BaseDelay = def.BaseDelay
	}
	if c.BackoffFactor == 0 {
		c.BackoffFactor = def.BackoffFactor
	}
	return c
}

// retryConfig extracts the retry portion of the config.
func (c ServiceConfig) retryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:    c.MaxRetries,
		BaseDelay:     c.BaseDelay,
		BackoffFactor: c.BackoffFactor,
	}
}
