package mock

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
	agentbridge "github.com/intelmesh/agent-bridge"
)

// MockAdapter is a scriptable ServiceAdapter for tests and local throttle
// experiments. It can fail the first N attempts at the transport level,
// answer 429 a number of times (or always), or return a fixed status and
// body.
type MockAdapter struct {
	ServiceName string

	// TransportFailures makes the first N calls fail as if the network
	// dropped them.
	TransportFailures int
	// RateLimitUntil makes calls answer 429 until the counter passes N.
	RateLimitUntil int
	// Always429 makes every call answer 429.
	Always429 bool
	// RetryAfter, if set, is sent on 429 answers as a Retry-After header.
	RetryAfter string
	// StatusCode overrides the success status (default 200).
	StatusCode int
	// Body overrides the success body.
	Body []byte

	mu    sync.Mutex
	calls int
}

func (m *MockAdapter) Service() string {
	if m.ServiceName == "" {
		return "mock"
	}
	return m.ServiceName
}

func (m *MockAdapter) ExecuteRequest(ctx context.Context, req *agentbridge.NormalizedRequest) (*agentbridge.NormalizedResponse, error) {
	m.mu.Lock()
	m.calls++
	n := m.calls
	m.mu.Unlock()

	if n <= m.TransportFailures {
		return nil, errors.New("mock: connection reset")
	}

	headers := map[string]string{
		"x-request-id": uuid.NewString(),
	}

	if m.Always429 || n <= m.RateLimitUntil {
		if m.RetryAfter != "" {
			headers["retry-after"] = m.RetryAfter
		}
		return &agentbridge.NormalizedResponse{
			StatusCode: 429,
			Headers:    headers,
			Data:       []byte(`{"error":"rate limited"}`),
		}, nil
	}

	status := m.StatusCode
	if status == 0 {
		status = 200
	}
	body := m.Body
	if body == nil {
		body = []byte(`{"success":true}`)
	}
	return &agentbridge.NormalizedResponse{
		StatusCode: status,
		Headers:    headers,
		Data:       body,
	}, nil
}

func (m *MockAdapter) ClassifyResponse(resp *agentbridge.NormalizedResponse) error {
	switch {
	case resp.StatusCode == 401 || resp.StatusCode == 403:
		return &agentbridge.AuthError{Service: m.Service(), StatusCode: resp.StatusCode}
	case resp.StatusCode == 429:
		return &agentbridge.RateLimitError{Service: m.Service()}
	case resp.StatusCode >= 400:
		return &agentbridge.APIError{Service: m.Service(), StatusCode: resp.StatusCode}
	default:
		return nil
	}
}

// Calls reports how many times ExecuteRequest ran.
func (m *MockAdapter) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}
