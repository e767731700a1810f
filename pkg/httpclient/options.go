package httpclient

import (
	"net/url"
	"time"
)

// RequestOption adjusts a single request. Options are applied in order,
// after the client defaults, so per-call values win on collision.
type RequestOption func(*requestOptions)

type requestOptions struct {
	headers      map[string]string
	query        url.Values
	timeout      time.Duration
	basicUser    string
	basicPass    string
	hasBasicAuth bool
}

func newRequestOptions() requestOptions {
	return requestOptions{
		headers: make(map[string]string),
		query:   make(url.Values),
	}
}

// WithHeader sets a header on this request, overriding any client
// default of the same name.
func WithHeader(key, value string) RequestOption {
	return func(o *requestOptions) { o.headers[key] = value }
}

// WithQuery adds a query parameter to this request. Repeated keys
// accumulate.
func WithQuery(key, value string) RequestOption {
	return func(o *requestOptions) { o.query.Add(key, value) }
}

// WithTimeout bounds this request instead of the client timeout.
func WithTimeout(d time.Duration) RequestOption {
	return func(o *requestOptions) { o.timeout = d }
}

// WithBasicAuth sends HTTP basic credentials on this request.
func WithBasicAuth(username, password string) RequestOption {
	return func(o *requestOptions) {
		o.basicUser = username
		o.basicPass = password
		o.hasBasicAuth = true
	}
}
