package agentbridge_test

import (
	"context"
	"errors"
	"testing"
	"time"

	agentbridge "github.com/intelmesh/agent-bridge"
	"github.com/intelmesh/agent-bridge/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastServiceConfig(maxRetries int) *agentbridge.ServiceConfig {
	return &agentbridge.ServiceConfig{
		MaxCalls:      100,
		TimeWindow:    time.Minute,
		MaxRetries:    maxRetries,
		BaseDelay:     2 * time.Millisecond,
		BackoffFactor: 2.0,
	}
}

func TestRequestUnregisteredService(t *testing.T) {
	bridge := agentbridge.New()
	_, err := bridge.Request(context.Background(), "nope", &agentbridge.NormalizedRequest{Method: "GET", Endpoint: "/"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not registered")
}

func TestRegisterServiceRejectsBadConfig(t *testing.T) {
	bridge := agentbridge.New()
	err := bridge.RegisterService("svc", &mock.MockAdapter{}, &agentbridge.ServiceConfig{MaxCalls: -1})
	var cfgErr *agentbridge.ConfigError
	require.ErrorAs(t, err, &cfgErr)
}

func TestRequestSuccess(t *testing.T) {
	bridge := agentbridge.New()
	adapter := &mock.MockAdapter{ServiceName: "svc"}
	require.NoError(t, bridge.RegisterService("svc", adapter, fastServiceConfig(3)))

	resp, err := bridge.Request(context.Background(), "svc", &agentbridge.NormalizedRequest{Method: "GET", Endpoint: "/items"})
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
	assert.Equal(t, 1, adapter.Calls())

	remaining, err := bridge.Remaining("svc")
	require.NoError(t, err)
	assert.Equal(t, 99, remaining, "one slot consumed per request sent")
}

func TestRequestRetriesTransportFailures(t *testing.T) {
	bridge := agentbridge.New()
	adapter := &mock.MockAdapter{ServiceName: "svc", TransportFailures: 2}
	require.NoError(t, bridge.RegisterService("svc", adapter, fastServiceConfig(3)))

	resp, err := bridge.Request(context.Background(), "svc", &agentbridge.NormalizedRequest{Method: "GET", Endpoint: "/items"})
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
	assert.Equal(t, 3, adapter.Calls())

	remaining, err := bridge.Remaining("svc")
	require.NoError(t, err)
	assert.Equal(t, 97, remaining, "every attempt sent counts against the window")
}

func TestRequestExhaustsOn429(t *testing.T) {
	bridge := agentbridge.New()
	adapter := &mock.MockAdapter{ServiceName: "svc", Always429: true}
	require.NoError(t, bridge.RegisterService("svc", adapter, fastServiceConfig(2)))

	_, err := bridge.Request(context.Background(), "svc", &agentbridge.NormalizedRequest{Method: "GET", Endpoint: "/items"})

	var exhausted *agentbridge.RetriesExhaustedError
	require.ErrorAs(t, err, &exhausted)
	assert.Equal(t, 3, exhausted.Attempts)

	var rateLimit *agentbridge.RateLimitError
	require.ErrorAs(t, err, &rateLimit)
	assert.Equal(t, 3, adapter.Calls())
}

func TestRequestDoesNotRetryClientErrors(t *testing.T) {
	bridge := agentbridge.New()
	adapter := &mock.MockAdapter{ServiceName: "svc", StatusCode: 400}
	require.NoError(t, bridge.RegisterService("svc", adapter, fastServiceConfig(5)))

	_, err := bridge.Request(context.Background(), "svc", &agentbridge.NormalizedRequest{Method: "GET", Endpoint: "/items"})

	var api *agentbridge.APIError
	require.ErrorAs(t, err, &api)
	assert.Equal(t, 400, api.StatusCode)
	assert.Equal(t, 1, adapter.Calls(), "client errors are terminal")
}

// credentialFailAdapter fails every call before any HTTP exchange, the way a
// dead token source does.
type credentialFailAdapter struct {
	calls int
}

func (a *credentialFailAdapter) Service() string { return "svc" }

func (a *credentialFailAdapter) ExecuteRequest(ctx context.Context, req *agentbridge.NormalizedRequest) (*agentbridge.NormalizedResponse, error) {
	a.calls++
	return nil, &agentbridge.AuthError{Service: "svc", StatusCode: 401, Err: errors.New("refresh token revoked")}
}

func (a *credentialFailAdapter) ClassifyResponse(resp *agentbridge.NormalizedResponse) error {
	return nil
}

func TestRequestDoesNotRetryCredentialFailures(t *testing.T) {
	bridge := agentbridge.New()
	adapter := &credentialFailAdapter{}
	require.NoError(t, bridge.RegisterService("svc", adapter, fastServiceConfig(5)))

	_, err := bridge.Request(context.Background(), "svc", &agentbridge.NormalizedRequest{Method: "GET", Endpoint: "/items"})

	var auth *agentbridge.AuthError
	require.ErrorAs(t, err, &auth, "credential failures are not disguised as transport errors")
	assert.Contains(t, err.Error(), "refresh token revoked")
	assert.Equal(t, 1, adapter.calls, "credential failures are terminal")
}

func TestRequestWaitsForRateLimitWindow(t *testing.T) {
	bridge := agentbridge.New()
	adapter := &mock.MockAdapter{ServiceName: "svc"}
	require.NoError(t, bridge.RegisterService("svc", adapter, &agentbridge.ServiceConfig{
		MaxCalls:   2,
		TimeWindow: 200 * time.Millisecond,
		MaxRetries: -1,
		BaseDelay:  time.Millisecond,
	}))

	ctx := context.Background()
	req := &agentbridge.NormalizedRequest{Method: "GET", Endpoint: "/items"}

	start := time.Now()
	for i := 0; i < 3; i++ {
		_, err := bridge.Request(ctx, "svc", req)
		require.NoError(t, err)
	}
	assert.GreaterOrEqual(t, time.Since(start), 150*time.Millisecond,
		"third call waits for the window to roll")
	assert.Equal(t, 3, adapter.Calls())
}

func TestRequestCancelledWhileRateLimited(t *testing.T) {
	bridge := agentbridge.New()
	adapter := &mock.MockAdapter{ServiceName: "svc"}
	require.NoError(t, bridge.RegisterService("svc", adapter, &agentbridge.ServiceConfig{
		MaxCalls:   1,
		TimeWindow: time.Hour,
		MaxRetries: -1,
		BaseDelay:  time.Millisecond,
	}))

	ctx := context.Background()
	req := &agentbridge.NormalizedRequest{Method: "GET", Endpoint: "/items"}
	_, err := bridge.Request(ctx, "svc", req)
	require.NoError(t, err)

	shortCtx, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
	defer cancel()
	_, err = bridge.Request(shortCtx, "svc", req)
	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 1, adapter.Calls(), "cancelled wait never reaches the adapter")
}

func TestLimitersAreIndependentPerService(t *testing.T) {
	bridge := agentbridge.New()
	require.NoError(t, bridge.RegisterService("a", &mock.MockAdapter{ServiceName: "a"}, fastServiceConfig(0)))
	require.NoError(t, bridge.RegisterService("b", &mock.MockAdapter{ServiceName: "b"}, fastServiceConfig(0)))

	_, err := bridge.Request(context.Background(), "a", &agentbridge.NormalizedRequest{Method: "GET", Endpoint: "/"})
	require.NoError(t, err)

	remA, err := bridge.Remaining("a")
	require.NoError(t, err)
	remB, err := bridge.Remaining("b")
	require.NoError(t, err)
	assert.Equal(t, 99, remA)
	assert.Equal(t, 100, remB)
}
