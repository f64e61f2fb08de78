package adapters

import (
	"bytes"
	"context"
	"io"
	"net/http"

	agentbridge "github.com/intelmesh/agent-bridge"
	"golang.org/x/oauth2"
)

const (
	GmailDefaultMaxCalls   = 250
	GmailDefaultWindowSecs = 60 // 250 calls per minute
)

// GmailAdapter talks to the Gmail REST API. Every request carries a bearer
// token obtained from the configured oauth2.TokenSource, so refreshes are
// transparent to the SDK.
type GmailAdapter struct {
	TokenSource oauth2.TokenSource
	BaseURL     string // overridable for tests
	Client      *http.Client
}

func NewGmailAdapter(ts oauth2.TokenSource) *GmailAdapter {
	return &GmailAdapter{
		TokenSource: ts,
		BaseURL:     "https://gmail.googleapis.com",
		Client:      defaultHTTPClient(),
	}
}

func (g *GmailAdapter) Service() string { return "gmail" }

func (g *GmailAdapter) ExecuteRequest(ctx context.Context, req *agentbridge.NormalizedRequest) (*agentbridge.NormalizedResponse, error) {
	tok, err := g.TokenSource.Token()
	if err != nil {
		// A dead token source (revoked refresh token, bad credentials)
		// will not heal between attempts.
		return nil, &agentbridge.AuthError{Service: g.Service(), StatusCode: http.StatusUnauthorized, Err: err}
	}

	fullURL := g.BaseURL + req.Endpoint
	httpReq, err := http.NewRequestWithContext(ctx, req.Method, fullURL, bytes.NewReader(req.Body))
	if err != nil {
		return nil, err
	}

	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}
	tok.SetAuthHeader(httpReq)
	if httpReq.Header.Get("Content-Type") == "" {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	resp, err := g.Client.Do(httpReq)
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

func (g *GmailAdapter) ClassifyResponse(resp *agentbridge.NormalizedResponse) error {
	return classifyStatus(g.Service(), resp)
}
