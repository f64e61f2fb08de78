package adapters

import (
	"net/http"
	"strings"
	"time"

	agentbridge "github.com/intelmesh/agent-bridge"
	"github.com/intelmesh/agent-bridge/internal"
)

// normalizeHeaders lowercases header names and keeps the first value of each,
// matching the NormalizedResponse contract.
func normalizeHeaders(h http.Header) map[string]string {
	headers := make(map[string]string)
	for k, vals := range h {
		if len(vals) > 0 {
			headers[strings.ToLower(k)] = vals[0]
		}
	}
	return headers
}

// classifyStatus maps a response status onto the SDK error taxonomy. nil means
// success; 401/403 become AuthError, 429 becomes RateLimitError with any
// Retry-After the service sent, and every other non-2xx status becomes an
// APIError.
func classifyStatus(service string, resp *agentbridge.NormalizedResponse) error {
	switch {
	case resp.StatusCode == http.StatusUnauthorized, resp.StatusCode == http.StatusForbidden:
		return &agentbridge.AuthError{Service: service, StatusCode: resp.StatusCode}
	case resp.StatusCode == http.StatusTooManyRequests:
		return &agentbridge.RateLimitError{
			Service:    service,
			RetryAfter: internal.ParseRetryAfter(resp.Headers["retry-after"]),
		}
	case resp.StatusCode >= 400:
		return &agentbridge.APIError{
			Service:    service,
			StatusCode: resp.StatusCode,
			Message:    snippet(resp.Data),
		}
	default:
		return nil
	}
}

// snippet returns a short prefix of an error body for messages.
func snippet(body []byte) string {
	const max = 200
	s := strings.TrimSpace(string(body))
	if len(s) > max {
		s = s[:max]
	}
	return s
}

func defaultHTTPClient() *http.Client {
	return &http.Client{Timeout: 30 * time.Second}
}
