package agentbridge

// NormalizedRequest is the provider-independent shape of an outbound HTTP
// request. Endpoint is the path (plus query string) below the adapter's base
// URL.
type NormalizedRequest struct {
	Method   string
	Endpoint string
	Headers  map[string]string
	Body     []byte
}

// NormalizedResponse is the provider-independent shape of an HTTP response.
// Header names are lowercased and collapsed to their first value.
type NormalizedResponse struct {
	StatusCode int
	Headers    map[string]string
	Data       []byte
}
