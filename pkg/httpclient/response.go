package httpclient

import (
	"encoding/json"
	"net/http"
	"sync"
)

// Response is the drained outcome of one request. The body is read in
// full before the Response is returned, so accessors never touch the
// network and the value is safe to pass between goroutines.
type Response struct {
	StatusCode int
	Status     string
	Headers    http.Header

	body []byte

	jsonOnce sync.Once
	jsonVal  any
	jsonErr  error
}

// OK reports whether the status code is in the 2xx range.
func (r *Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// Bytes returns the raw response body.
func (r *Response) Bytes() []byte { return r.body }

// Text returns the response body as a string.
func (r *Response) Text() string { return string(r.body) }

// JSON parses the body once and returns the cached value on every
// subsequent call.
func (r *Response) JSON() (any, error) {
	r.jsonOnce.Do(func() {
		r.jsonErr = json.Unmarshal(r.body, &r.jsonVal)
	})
	return r.jsonVal, r.jsonErr
}

// Decode unmarshals the body into v.
func (r *Response) Decode(v any) error {
	return json.Unmarshal(r.body, v)
}
