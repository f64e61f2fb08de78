package agentbridge

import "context"

// ServiceAdapter is implemented once per external service (web search, email
// provider, LLM endpoint). An adapter performs the HTTP exchange and maps the
// answer onto the SDK's error taxonomy; it holds no retry or rate-limit logic.
type ServiceAdapter interface {
	// Service returns the name the adapter is registered under, used in
	// error messages and logs.
	Service() string

	// ExecuteRequest performs one HTTP exchange. It returns an error only
	// when no response was received at all; HTTP-level failures are
	// expressed through the response and ClassifyResponse.
	ExecuteRequest(ctx context.Context, req *NormalizedRequest) (*NormalizedResponse, error)

	// ClassifyResponse maps a response onto the error taxonomy: nil for
	// success, or an AuthError, RateLimitError, or APIError otherwise.
	ClassifyResponse(resp *NormalizedResponse) error
}
