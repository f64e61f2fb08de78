package adapters

import (
	"bytes"
	"context"
	"io"
	"net/http"

	agentbridge "github.com/intelmesh/agent-bridge"
)

const (
	BraveDefaultMaxCalls   = 100
	BraveDefaultWindowSecs = 60 // 100 searches per minute
)

// BraveAdapter talks to the Brave Search API. Authentication is a
// subscription token header; quota violations come back as 429 with a
// Retry-After header.
type BraveAdapter struct {
	APIKey  string
	BaseURL string // overridable for tests
	Client  *http.Client
}

func NewBraveAdapter(apiKey string) *BraveAdapter {
	return &BraveAdapter{
		APIKey:  apiKey,
		BaseURL: "https://api.search.brave.com",
		Client:  defaultHTTPClient(),
	}
}

func (b *BraveAdapter) Service() string { return "brave" }

func (b *BraveAdapter) ExecuteRequest(ctx context.Context, req *agentbridge.NormalizedRequest) (*agentbridge.NormalizedResponse, error) {
	fullURL := b.BaseURL + req.Endpoint

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, fullURL, bytes.NewReader(req.Body))
	if err != nil {
		return nil, err
	}

	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}
	httpReq.Header.Set("X-Subscription-Token", b.APIKey)
	httpReq.Header.Set("Accept", "application/json")
	if httpReq.Header.Get("User-Agent") == "" {
		httpReq.Header.Set("User-Agent", "agent-bridge-research/1.0")
	}

	resp, err := b.Client.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, _ := io.ReadAll(resp.Body)
	return &agentbridge.NormalizedResponse{
		StatusCode: resp.StatusCode,
		Headers:    normalizeHeaders(resp.Header),
		Data:       data,
	}, nil
}

func (b *BraveAdapter) ClassifyResponse(resp *agentbridge.NormalizedResponse) error {
	return classifyStatus(b.Service(), resp)
}
