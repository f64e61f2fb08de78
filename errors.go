// errors.go
// ---------
// This file defines the closed error taxonomy used across the SDK and a pure
// classification function deciding which failures are worth retrying.
//
// Kinds:
// - ConfigError: invalid construction values, reported before any work is done.
// - TransportError: the request never produced an HTTP response (DNS, dial,
//   TLS, timeout). Always retryable.
// - APIError: the service answered with a non-success status.
// - RateLimitError: a 429 answer, optionally carrying the server's Retry-After.
// - AuthError: a 401/403 answer. Never retryable.
// - RetriesExhaustedError: wraps the last failure after all attempts were used,
//   carrying the attempt count; errors.Unwrap exposes the underlying kind.
package agentbridge

import (
	"errors"
	"fmt"
	"time"
)

// ConfigError reports an invalid value passed at construction time.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("agentbridge: invalid %s: %s", e.Field, e.Reason)
}

// TransportError wraps a network-level failure where no HTTP response was
// received at all.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// APIError reports a non-success HTTP status returned by a service.
type APIError struct {
	Service    string
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s: HTTP %d", e.Service, e.StatusCode)
	}
	return fmt.Sprintf("%s: HTTP %d: %s", e.Service, e.StatusCode, e.Message)
}

// RateLimitError reports a 429 answer from a service. RetryAfter is zero when
// the service did not say how long to back off.
type RateLimitError struct {
	Service    string
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("rate limit exceeded for %s (retry after %s)", e.Service, e.RetryAfter)
	}
	return fmt.Sprintf("rate limit exceeded for %s", e.Service)
}

// AuthError reports a 401 or 403 answer from a service, or a credential
// failure that prevented the request from being authenticated at all. Err, if
// set, is the underlying credential failure.
type AuthError struct {
	Service    string
	StatusCode int
	Err        error
}

func (e *AuthError) Error() string {
	var msg string
	if e.StatusCode == 403 {
		msg = fmt.Sprintf("access to %s forbidden, check API permissions", e.Service)
	} else {
		msg = fmt.Sprintf("authentication failed for %s, check the API key", e.Service)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *AuthError) Unwrap() error { return e.Err }

// RetriesExhaustedError is returned when every permitted attempt failed with a
// retryable error. Err is the failure from the final attempt.
type RetriesExhaustedError struct {
	Attempts int
	Err      error
}

func (e *RetriesExhaustedError) Error() string {
	return fmt.Sprintf("all %d attempts failed: %v", e.Attempts, e.Err)
}

func (e *RetriesExhaustedError) Unwrap() error { return e.Err }

// DefaultRetryable reports whether err is a transient failure worth another
// attempt: transport errors, 429 answers, and 5xx answers. Everything else
// (auth failures, other 4xx, validation errors) is terminal.
func DefaultRetryable(err error) bool {
	var transport *TransportError
	if errors.As(err, &transport) {
		return true
	}
	var rateLimit *RateLimitError
	if errors.As(err, &rateLimit) {
		return true
	}
	var api *APIError
	if errors.As(err, &api) {
		return api.StatusCode == 429 || api.StatusCode >= 500
	}
	return false
}
