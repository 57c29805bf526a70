// package testing contains shared testing utilities
package testing

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
)

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
	calls    int
	mu       sync.Mutex
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()
	return m.response, m.err
}

// Calls returns how many requests went through the round tripper.
func (m *MockRoundTripper) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// TokenRequest is a request captured by [TokenEndpoint].
type TokenRequest struct {
	Form         url.Values
	BasicUser    string
	BasicPass    string
	ContentType  string
	HasBasicAuth bool
}

// TokenEndpoint is a stand-in for the provider's token endpoint that answers every POST with a fixed
// status and body and records what it received.
type TokenEndpoint struct {
	*httptest.Server

	mu       sync.Mutex
	requests []TokenRequest
}

// NewTokenEndpoint starts a [TokenEndpoint] that is closed when the test finishes.
func NewTokenEndpoint(t *testing.T, status int, body string) *TokenEndpoint {
	t.Helper()

	te := &TokenEndpoint{}
	te.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("token endpoint expected POST, got %s", r.Method)
		}
		if err := r.ParseForm(); err != nil {
			t.Errorf("token endpoint could not parse form: %v", err)
		}
		user, pass, ok := r.BasicAuth()

		te.mu.Lock()
		te.requests = append(te.requests, TokenRequest{
			Form:         r.PostForm,
			BasicUser:    user,
			BasicPass:    pass,
			ContentType:  r.Header.Get("Content-Type"),
			HasBasicAuth: ok,
		})
		te.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		io.WriteString(w, body)
	}))
	t.Cleanup(te.Close)

	return te
}

// Requests returns a copy of the captured requests.
func (te *TokenEndpoint) Requests() []TokenRequest {
	te.mu.Lock()
	defer te.mu.Unlock()
	return append([]TokenRequest(nil), te.requests...)
}

// Last returns the most recent captured request, failing the test when there is none.
func (te *TokenEndpoint) Last(t *testing.T) TokenRequest {
	t.Helper()
	reqs := te.Requests()
	if len(reqs) == 0 {
		t.Fatal("token endpoint received no requests")
	}
	return reqs[len(reqs)-1]
}

// TokenURL returns the token URL to configure clients with.
func (te *TokenEndpoint) TokenURL() string {
	return te.Server.URL + "/api/token"
}
