package httpclient

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// echo captures what the server saw so assertions can run client-side.
type echo struct {
	Method string            `json:"method"`
	Path   string            `json:"path"`
	Query  map[string]string `json:"query"`
	Header map[string]string `json:"header"`
	Body   string            `json:"body"`
}

func newEchoServer(t *testing.T) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)

		e := echo{
			Method: r.Method,
			Path:   r.URL.Path,
			Query:  map[string]string{},
			Header: map[string]string{},
			Body:   string(body),
		}
		for k := range r.URL.Query() {
			e.Query[k] = r.URL.Query().Get(k)
		}
		for _, k := range []string{"Authorization", "Content-Type", "X-Tenant", "X-Trace"} {
			if v := r.Header.Get(k); v != "" {
				e.Header[k] = v
			}
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(e)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestClient(t *testing.T, srv *httptest.Server, cfg Config) *Client {
	t.Helper()

	cfg.BaseURL = srv.URL
	client, err := New(cfg, nil)
	require.NoError(t, err)
	return client
}

func decodeEcho(t *testing.T, resp *Response) echo {
	t.Helper()

	var e echo
	require.NoError(t, resp.Decode(&e))
	return e
}

func TestNew_Validation(t *testing.T) {
	tests := []struct {
		name    string
		baseURL string
		errMsg  string
	}{
		{name: "empty", baseURL: "", errMsg: "base URL not specified"},
		{name: "no scheme", baseURL: "api.example.com", errMsg: "scheme must be http or https"},
		{name: "wrong scheme", baseURL: "ftp://api.example.com", errMsg: "scheme must be http or https"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := New(Config{BaseURL: tt.baseURL}, nil)
			assert.Nil(t, client)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestVerbsRoute(t *testing.T) {
	srv := newEchoServer(t)
	client := newTestClient(t, srv, Config{})
	ctx := context.Background()

	tests := []struct {
		method string
		call   func() (*Response, error)
	}{
		{http.MethodGet, func() (*Response, error) { return client.Get(ctx, "/users") }},
		{http.MethodDelete, func() (*Response, error) { return client.Delete(ctx, "/users/1") }},
		{http.MethodPost, func() (*Response, error) { return client.Post(ctx, "/users", nil) }},
		{http.MethodPut, func() (*Response, error) { return client.Put(ctx, "/users/1", nil) }},
		{http.MethodPatch, func() (*Response, error) { return client.Patch(ctx, "/users/1", nil) }},
	}

	for _, tt := range tests {
		t.Run(tt.method, func(t *testing.T) {
			resp, err := tt.call()
			require.NoError(t, err)
			assert.True(t, resp.OK())
			assert.Equal(t, tt.method, decodeEcho(t, resp).Method)
		})
	}
}

func TestHeaders_PerCallWins(t *testing.T) {
	srv := newEchoServer(t)
	client := newTestClient(t, srv, Config{
		Headers:     map[string]string{"X-Tenant": "default", "X-Trace": "on"},
		BearerToken: "tok-123",
	})

	resp, err := client.Get(context.Background(), "/users",
		WithHeader("X-Tenant", "acme"))
	require.NoError(t, err)

	e := decodeEcho(t, resp)
	assert.Equal(t, "acme", e.Header["X-Tenant"])
	assert.Equal(t, "on", e.Header["X-Trace"])
	assert.Equal(t, "Bearer tok-123", e.Header["Authorization"])
}

func TestQueryParameters(t *testing.T) {
	srv := newEchoServer(t)
	client := newTestClient(t, srv, Config{})

	resp, err := client.Get(context.Background(), "/users",
		WithQuery("page", "2"), WithQuery("limit", "50"))
	require.NoError(t, err)

	e := decodeEcho(t, resp)
	assert.Equal(t, "/users", e.Path)
	assert.Equal(t, "2", e.Query["page"])
	assert.Equal(t, "50", e.Query["limit"])
}

func TestPost_JSONBody(t *testing.T) {
	srv := newEchoServer(t)
	client := newTestClient(t, srv, Config{})

	resp, err := client.Post(context.Background(), "/users",
		map[string]string{"name": "Ada"})
	require.NoError(t, err)

	e := decodeEcho(t, resp)
	assert.Equal(t, "application/json", e.Header["Content-Type"])
	assert.JSONEq(t, `{"name":"Ada"}`, e.Body)
}

func TestPost_RawBodiesPassThrough(t *testing.T) {
	srv := newEchoServer(t)
	client := newTestClient(t, srv, Config{})
	ctx := context.Background()

	resp, err := client.Post(ctx, "/blob", []byte("raw-bytes"))
	require.NoError(t, err)
	e := decodeEcho(t, resp)
	assert.Equal(t, "raw-bytes", e.Body)
	assert.Empty(t, e.Header["Content-Type"])

	resp, err = client.Post(ctx, "/blob", strings.NewReader("from-reader"))
	require.NoError(t, err)
	assert.Equal(t, "from-reader", decodeEcho(t, resp).Body)
}

func TestBasicAuth(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		if !ok || user != "svc" || pass != "hunter2" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	t.Cleanup(srv.Close)

	client := newTestClient(t, srv, Config{})

	resp, err := client.Get(context.Background(), "/secure",
		WithBasicAuth("svc", "hunter2"))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.True(t, resp.OK())
}

func TestPerCallTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(srv.Close)

	client := newTestClient(t, srv, Config{Timeout: 5 * time.Second})

	_, err := client.Get(context.Background(), "/slow",
		WithTimeout(20*time.Millisecond))
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestNon2xxIsNotAnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusNotFound)
	}))
	t.Cleanup(srv.Close)

	client := newTestClient(t, srv, Config{})

	resp, err := client.Get(context.Background(), "/missing")
	require.NoError(t, err)
	assert.False(t, resp.OK())
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "nope\n", resp.Text())
}

func TestResponse_JSONMemoized(t *testing.T) {
	resp := &Response{StatusCode: 200, body: []byte(`{"name":"Ada"}`)}

	first, err := resp.JSON()
	require.NoError(t, err)

	m, ok := first.(map[string]any)
	require.True(t, ok)
	m["name"] = "mutated"

	// Same parse result comes back; the body is not re-read.
	second, err := resp.JSON()
	require.NoError(t, err)
	assert.Equal(t, "mutated", second.(map[string]any)["name"])
}

func TestResponse_JSONInvalid(t *testing.T) {
	resp := &Response{StatusCode: 200, body: []byte("not json")}

	_, err := resp.JSON()
	require.Error(t, err)

	// The error is memoized too.
	_, err2 := resp.JSON()
	assert.Equal(t, err, err2)
}

func TestBaseURLJoinsPath(t *testing.T) {
	srv := newEchoServer(t)

	client, err := New(Config{BaseURL: srv.URL + "/api/v1"}, nil)
	require.NoError(t, err)

	resp, err := client.Get(context.Background(), "/users")
	require.NoError(t, err)
	assert.Equal(t, "/api/v1/users", decodeEcho(t, resp).Path)
}
