// executor.go
// -----------
// The Executor drives one logical request through the reliability core: each
// attempt acquires a rate-limit slot, performs the HTTP exchange via the
// adapter, classifies the answer, and hands transient failures to
// RetryWithBackoff.
package agentbridge

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
)

// Executor composes the per-service rate limiter with retry-with-backoff. It
// keeps no per-request state of its own; each Execute call owns its attempt
// counter.
type Executor struct {
	bridge *AgentBridge
}

func NewExecutor(bridge *AgentBridge) *Executor {
	return &Executor{bridge: bridge}
}

// Execute runs req against adapter under the service's rate limit and retry
// policy. A rate-limit slot is acquired (and counted) per attempt actually
// sent; cancellation while waiting for a slot or during backoff records
// nothing and performs no further attempts.
func (e *Executor) Execute(
	ctx context.Context,
	service string,
	requestID string,
	req *NormalizedRequest,
	adapter ServiceAdapter,
	limiter *RateLimiter,
	cfg ServiceConfig,
) (*NormalizedResponse, error) {
	logger := e.bridge.logger
	attempts := 0

	onRetry := func(attempt int, err error, delay time.Duration) {
		logger.Warn("attempt failed, backing off",
			zap.String("service", service),
			zap.String("request_id", requestID),
			zap.Int("attempt", attempt+1),
			zap.Duration("delay", delay),
			zap.Error(err))
	}

	resp, err := RetryWithBackoff(ctx, cfg.retryConfig(), DefaultRetryable, onRetry,
		func(ctx context.Context) (*NormalizedResponse, error) {
			if err := limiter.Acquire(ctx); err != nil {
				return nil, err
			}
			attempts++
			resp, err := adapter.ExecuteRequest(ctx, req)
			if err != nil {
				// Credential failures the adapter already classified
				// are terminal, not transport.
				var auth *AuthError
				if errors.As(err, &auth) {
					return nil, err
				}
				return nil, &TransportError{Op: service + " request", Err: err}
			}
			if cerr := adapter.ClassifyResponse(resp); cerr != nil {
				return nil, cerr
			}
			return resp, nil
		})
	if err != nil {
		return nil, err
	}

	logger.Debug("request succeeded",
		zap.String("service", service),
		zap.String("request_id", requestID),
		zap.Int("attempts", attempts))
	return resp, nil
}
