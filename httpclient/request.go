package httpclient

import "net/url"

// Request describes an outbound HTTP request. Requests carry no body; all
// parameters travel in the query string.
type Request struct {
	// Method is the HTTP method (GET, POST, PUT, DELETE).
	Method string
	// Path is the absolute request URL with path segments already escaped.
	Path string
	// Query is merged into any query already present on Path.
	Query url.Values
	// Headers are request-specific headers (merged with client defaults).
	Headers map[string]string
	// Auth overrides the client-level auth for this request.
	Auth *AuthConfig
}

// Response is the result of an HTTP exchange.
type Response struct {
	// StatusCode is the HTTP status code.
	StatusCode int
	// Headers are the response headers, first value per key.
	Headers map[string]string
	// Body is the raw response body.
	Body []byte
	// RequestID is the X-Request-ID the request was sent with.
	RequestID string
}

// IsSuccess returns true if the status code is 2xx.
func (r *Response) IsSuccess() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}
