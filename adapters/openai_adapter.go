package adapters

import (
	"bytes"
	"context"
	"io"
	"net/http"

	agentbridge "github.com/intelmesh/agent-bridge"
)

const (
	OpenAIDefaultMaxCalls   = 60
	OpenAIDefaultWindowSecs = 60 // 60 requests per 60 seconds
)

// OpenAIAdapter talks to an OpenAI-compatible chat completions endpoint. The
// base URL is configurable so any compatible provider can be used.
type OpenAIAdapter struct {
	APIKey  string
	BaseURL string
	Client  *http.Client
}

func NewOpenAIAdapter(apiKey string) *OpenAIAdapter {
	return &OpenAIAdapter{
		APIKey:  apiKey,
		BaseURL: "https://api.openai.com",
		Client:  defaultHTTPClient(),
	}
}

func (o *OpenAIAdapter) Service() string { return "openai" }

func (o *OpenAIAdapter) ExecuteRequest(ctx context.Context, req *agentbridge.NormalizedRequest) (*agentbridge.NormalizedResponse, error) {
	fullURL := o.BaseURL + req.Endpoint

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, fullURL, bytes.NewReader(req.Body))
	if err != nil {
		return nil, err
	}

	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}
	httpReq.Header.Set("Authorization", "Bearer "+o.APIKey)
	if httpReq.Header.Get("Content-Type") == "" {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	resp, err := o.Client.Do(httpReq)
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

func (o *OpenAIAdapter) ClassifyResponse(resp *agentbridge.NormalizedResponse) error {
	return classifyStatus(o.Service(), resp)
}
