package adapters

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	agentbridge "github.com/intelmesh/agent-bridge"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBraveAdapterExecuteRequest(t *testing.T) {
	var gotReq *http.Request
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotReq = r.Clone(context.Background())
		w.Header().Set("X-RateLimit-Remaining", "99")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"web":{"results":[]}}`))
	}))
	defer server.Close()

	adapter := NewBraveAdapter("secret-token")
	adapter.BaseURL = server.URL

	resp, err := adapter.ExecuteRequest(context.Background(), &agentbridge.NormalizedRequest{
		Method:   http.MethodGet,
		Endpoint: "/res/v1/web/search?q=golang",
	})
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "99", resp.Headers["x-ratelimit-remaining"], "headers are lowercased")
	assert.JSONEq(t, `{"web":{"results":[]}}`, string(resp.Data))

	require.NotNil(t, gotReq)
	assert.Equal(t, "/res/v1/web/search", gotReq.URL.Path)
	assert.Equal(t, "golang", gotReq.URL.Query().Get("q"))
	assert.Equal(t, "secret-token", gotReq.Header.Get("X-Subscription-Token"))
	assert.Equal(t, "application/json", gotReq.Header.Get("Accept"))
}

func TestBraveAdapterClassify(t *testing.T) {
	adapter := NewBraveAdapter("k")

	require.NoError(t, adapter.ClassifyResponse(&agentbridge.NormalizedResponse{StatusCode: 200}))

	err := adapter.ClassifyResponse(&agentbridge.NormalizedResponse{StatusCode: 429, Headers: map[string]string{"retry-after": "2"}})
	var rl *agentbridge.RateLimitError
	require.ErrorAs(t, err, &rl)
	assert.Equal(t, "brave", rl.Service)
}

func TestBraveAdapterTransportError(t *testing.T) {
	adapter := NewBraveAdapter("k")
	adapter.BaseURL = "http://127.0.0.1:1" // nothing listens here

	_, err := adapter.ExecuteRequest(context.Background(), &agentbridge.NormalizedRequest{
		Method:   http.MethodGet,
		Endpoint: "/res/v1/web/search?q=x",
	})
	require.Error(t, err)
}
