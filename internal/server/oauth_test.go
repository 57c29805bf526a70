package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/spotauth/internal/models"
	"github.com/desertthunder/spotauth/internal/services"
	"github.com/desertthunder/spotauth/internal/shared"
)

func newTestCallback(auth *stubAuth) (*CallbackHandler, *StateStore) {
	states := NewStateStore(time.Minute)
	return NewCallbackHandler(auth, states, quietLogger(), nil), states
}

func TestCallbackHandler(t *testing.T) {
	okToken := &models.TokenResponse{AccessToken: "AT1", RefreshToken: "RT1", ExpiresIn: 3600, TokenType: "Bearer"}

	t.Run("authenticated", func(t *testing.T) {
		auth := &stubAuth{token: okToken}
		h, states := newTestCallback(auth)
		a, _ := states.Issue("http://localhost:8888/callback")

		res := h.Handle(context.Background(), url.Values{"code": {"C1"}, "state": {a.State}}, "127.0.0.1:1")
		if res.Outcome != Authenticated || res.Status != http.StatusOK {
			t.Fatalf("unexpected result %+v", res)
		}
		if res.Token.AccessToken != "AT1" || res.AttemptID != a.ID {
			t.Errorf("unexpected result %+v", res)
		}
		if auth.lastCode != "C1" || auth.lastRedirect != "http://localhost:8888/callback" {
			t.Errorf("exchange called with %q %q", auth.lastCode, auth.lastRedirect)
		}
	})

	t.Run("state mismatch never exchanges", func(t *testing.T) {
		auth := &stubAuth{token: okToken}
		h, states := newTestCallback(auth)
		states.Issue("r")

		res := h.Handle(context.Background(), url.Values{"code": {"C1"}, "state": {"forged"}}, "10.0.0.1:1")
		if res.Outcome != CsrfRejected || res.Status != http.StatusBadRequest {
			t.Errorf("unexpected result %+v", res)
		}
		if !errors.Is(res.Err, shared.ErrStateMismatch) {
			t.Errorf("expected ErrStateMismatch, got %v", res.Err)
		}
		if auth.calls() != 0 {
			t.Errorf("expected zero exchange calls, got %d", auth.calls())
		}
	})

	t.Run("missing state", func(t *testing.T) {
		auth := &stubAuth{token: okToken}
		h, _ := newTestCallback(auth)

		res := h.Handle(context.Background(), url.Values{"code": {"C1"}}, "")
		if res.Outcome != CsrfRejected || auth.calls() != 0 {
			t.Errorf("unexpected result %+v with %d calls", res, auth.calls())
		}
	})

	t.Run("replayed state", func(t *testing.T) {
		auth := &stubAuth{token: okToken}
		h, states := newTestCallback(auth)
		a, _ := states.Issue("r")
		q := url.Values{"code": {"C1"}, "state": {a.State}}

		if res := h.Handle(context.Background(), q, ""); res.Outcome != Authenticated {
			t.Fatalf("first callback: %+v", res)
		}
		if res := h.Handle(context.Background(), q, ""); res.Outcome != CsrfRejected {
			t.Errorf("replay: expected CsrfRejected, got %v", res.Outcome)
		}
		if auth.calls() != 1 {
			t.Errorf("expected one exchange, got %d", auth.calls())
		}
	})

	t.Run("authorization denied", func(t *testing.T) {
		auth := &stubAuth{token: okToken}
		h, states := newTestCallback(auth)
		a, _ := states.Issue("r")

		res := h.Handle(context.Background(), url.Values{"error": {"access_denied"}, "state": {a.State}}, "")
		if res.Outcome != AuthorizationDenied || res.Status != http.StatusBadRequest {
			t.Errorf("unexpected result %+v", res)
		}
		if !strings.Contains(res.Message, "access_denied") {
			t.Errorf("expected error text in message, got %q", res.Message)
		}
		if !errors.Is(res.Err, shared.ErrAuthDenied) {
			t.Errorf("expected ErrAuthDenied, got %v", res.Err)
		}
		if auth.calls() != 0 {
			t.Error("denied authorization must not exchange")
		}
		if states.Len() != 0 {
			t.Error("denied authorization should consume the pending state")
		}
	})

	t.Run("missing code", func(t *testing.T) {
		auth := &stubAuth{token: okToken}
		h, states := newTestCallback(auth)
		a, _ := states.Issue("r")

		res := h.Handle(context.Background(), url.Values{"state": {a.State}}, "")
		if res.Outcome != ExchangeFailed || res.Status != http.StatusBadRequest {
			t.Errorf("unexpected result %+v", res)
		}
		if !strings.Contains(res.Message, "missing the authorization code") {
			t.Errorf("unexpected message %q", res.Message)
		}
		if auth.calls() != 0 {
			t.Error("missing code must not exchange")
		}
	})

	t.Run("provider error", func(t *testing.T) {
		auth := &stubAuth{err: &services.TokenExchangeError{Status: 400, Code: "invalid_grant", Description: "Invalid authorization code"}}
		h, states := newTestCallback(auth)
		a, _ := states.Issue("r")

		res := h.Handle(context.Background(), url.Values{"code": {"bad"}, "state": {a.State}}, "")
		if res.Outcome != ExchangeFailed || res.Status != http.StatusBadGateway {
			t.Errorf("unexpected result %+v", res)
		}
		if res.Message != "Invalid authorization code" {
			t.Errorf("unexpected message %q", res.Message)
		}
	})

	t.Run("network error", func(t *testing.T) {
		auth := &stubAuth{err: fmt.Errorf("%w: dial tcp", shared.ErrNetwork)}
		h, states := newTestCallback(auth)
		a, _ := states.Issue("r")

		res := h.Handle(context.Background(), url.Values{"code": {"C1"}, "state": {a.State}}, "")
		if res.Outcome != ExchangeFailed || res.Status != http.StatusGatewayTimeout {
			t.Errorf("unexpected result %+v", res)
		}
		if !strings.Contains(res.Message, "No response") {
			t.Errorf("expected network message, got %q", res.Message)
		}
	})
}

func TestCallbackHandlerServeHTTP(t *testing.T) {
	t.Run("renders tokens", func(t *testing.T) {
		var got CallbackResult
		auth := &stubAuth{token: &models.TokenResponse{AccessToken: "AT1", RefreshToken: "RT1", ExpiresIn: 3600}}
		states := NewStateStore(time.Minute)
		h := NewCallbackHandler(auth, states, quietLogger(), func(r CallbackResult) { got = r })
		a, _ := states.Issue("r")

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/callback?code=C1&state="+a.State, nil))

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d", rec.Code)
		}
		body := rec.Body.String()
		for _, want := range []string{"AT1", "RT1", "3600 seconds (60 minutes)", "Authentication Successful!"} {
			if !strings.Contains(body, want) {
				t.Errorf("body missing %q", want)
			}
		}
		if got.Outcome != Authenticated {
			t.Errorf("expected result hook to be called, got %+v", got)
		}
	})

	t.Run("escapes provider error text", func(t *testing.T) {
		h, _ := newTestCallback(&stubAuth{})

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/callback?error=%3Cscript%3Ealert(1)%3C%2Fscript%3E", nil))

		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d", rec.Code)
		}
		body := rec.Body.String()
		if strings.Contains(body, "<script>alert(1)</script>") {
			t.Error("error text was rendered unescaped")
		}
		if !strings.Contains(body, "&lt;script&gt;") {
			t.Error("expected escaped error text")
		}
		if !strings.Contains(body, `href="/login"`) {
			t.Error("expected Try Again link")
		}
	})

	t.Run("logs csrf at error level", func(t *testing.T) {
		var sb strings.Builder
		logger := log.New(&sb)
		h := NewCallbackHandler(&stubAuth{}, NewStateStore(time.Minute), logger, nil)

		req := httptest.NewRequest(http.MethodGet, "/callback?code=C1&state=forged", nil)
		req.RemoteAddr = "203.0.113.9:4444"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		out := sb.String()
		if !strings.Contains(out, "ERRO") || !strings.Contains(out, "possible CSRF attack") {
			t.Errorf("expected error-level CSRF log, got %q", out)
		}
		if !strings.Contains(out, "203.0.113.9") {
			t.Errorf("expected remote address in log, got %q", out)
		}
	})

	t.Run("never logs tokens", func(t *testing.T) {
		var sb strings.Builder
		auth := &stubAuth{token: &models.TokenResponse{AccessToken: "SECRET-AT", RefreshToken: "SECRET-RT", ExpiresIn: 3600}}
		states := NewStateStore(time.Minute)
		logger := log.New(&sb)
		logger.SetLevel(log.DebugLevel)
		h := NewCallbackHandler(auth, states, logger, nil)
		a, _ := states.Issue("r")

		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/callback?code=C1&state="+a.State, nil))
		if strings.Contains(sb.String(), "SECRET") {
			t.Errorf("token written to log: %q", sb.String())
		}
	})
}

func TestOutcomeString(t *testing.T) {
	tests := map[Outcome]string{
		Authenticated:       "authenticated",
		AuthorizationDenied: "authorization_denied",
		CsrfRejected:        "csrf_rejected",
		ExchangeFailed:      "exchange_failed",
		Outcome(9):          "outcome(9)",
	}
	for o, want := range tests {
		if got := o.String(); got != want {
			t.Errorf("String() = %q, want %q", got, want)
		}
	}
}
