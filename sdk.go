// sdk.go
// ------
// The sdk.go file contains the core AgentBridge struct and its methods.
// This is the main entry point of the SDK for users.
//
// Key functionalities include:
// - Initializing the SDK with New()
// - Registering services with RegisterService()
// - Making requests via bridge.Request()
// - Inspecting remaining rate-limit capacity per service
//
// The AgentBridge owns one RateLimiter per registered service and a single
// Executor that composes rate limiting with retries, ensuring consistent
// behavior across all services. Limiters are explicit per-instance state, so
// two bridges never share a quota.
package agentbridge

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type AgentBridge struct {
	mu       sync.Mutex
	adapters map[string]ServiceAdapter
	configs  map[string]ServiceConfig
	limiters map[string]*RateLimiter
	executor *Executor
	logger   *zap.Logger
}

// New creates an empty bridge. Register services before making requests.
func New() *AgentBridge {
	b := &AgentBridge{
		adapters: make(map[string]ServiceAdapter),
		configs:  make(map[string]ServiceConfig),
		limiters: make(map[string]*RateLimiter),
		logger:   zap.NewNop(),
	}
	b.executor = NewExecutor(b)
	return b
}

// SetLogger installs a logger for debug output. The default discards
// everything.
func (b *AgentBridge) SetLogger(logger *zap.Logger) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if logger == nil {
		logger = zap.NewNop()
	}
	b.logger = logger
}

// RegisterService associates a ServiceAdapter with a service name and
// configuration, creating the service's rate limiter. A nil config selects
// defaults. Registering the same name again replaces the previous adapter and
// resets its window.
func (b *AgentBridge) RegisterService(name string, adapter ServiceAdapter, config *ServiceConfig) error {
	var cfg ServiceConfig
	if config != nil {
		cfg = *config
	}
	cfg = cfg.withDefaults()
	if err := cfg.retryConfig().Validate(); err != nil {
		return err
	}
	limiter, err := NewRateLimiter(cfg.MaxCalls, cfg.TimeWindow)
	if err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.adapters[name] = adapter
	b.configs[name] = cfg
	b.limiters[name] = limiter
	b.logger.Debug("registered service",
		zap.String("service", name),
		zap.Int("max_calls", cfg.MaxCalls),
		zap.Duration("time_window", cfg.TimeWindow),
		zap.Int("max_retries", cfg.MaxRetries))
	return nil
}

// Request sends a NormalizedRequest to the named service and returns its
// NormalizedResponse. Each attempt first acquires a slot from the service's
// rate limiter, then the Executor retries transient failures with exponential
// backoff.
func (b *AgentBridge) Request(ctx context.Context, service string, req *NormalizedRequest) (*NormalizedResponse, error) {
	b.mu.Lock()
	adapter, ok := b.adapters[service]
	cfg := b.configs[service]
	limiter := b.limiters[service]
	b.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("service %q not registered", service)
	}

	requestID := uuid.NewString()
	b.logger.Debug("request",
		zap.String("service", service),
		zap.String("request_id", requestID),
		zap.String("method", req.Method),
		zap.String("endpoint", req.Endpoint))
	return b.executor.Execute(ctx, service, requestID, req, adapter, limiter, cfg)
}

// Remaining reports how many calls the named service may still make in the
// current window.
func (b *AgentBridge) Remaining(service string) (int, error) {
	b.mu.Lock()
	limiter, ok := b.limiters[service]
	b.mu.Unlock()
	if !ok {
		return 0, fmt.Errorf("service %q not registered", service)
	}
	return limiter.Remaining(), nil
}

// Limiter returns the rate limiter for a registered service, for callers that
// compose their own request paths.
func (b *AgentBridge) Limiter(service string) (*RateLimiter, error) {
	b.mu.Lock()
	limiter, ok := b.limiters[service]
	b.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("service %q not registered", service)
	}
	return limiter, nil
}
