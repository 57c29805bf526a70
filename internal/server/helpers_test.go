package server

import (
	"context"
	"io"
	"net/url"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/spotauth/internal/models"
)

// stubAuth is an [AuthClient] with canned results that counts calls.
type stubAuth struct {
	mu sync.Mutex

	token        *models.TokenResponse
	err          error
	authURLErr   error
	exchanges    int
	refreshes    int
	lastCode     string
	lastRedirect string
}

func (s *stubAuth) AuthURL(state, redirectURI string) (string, error) {
	if s.authURLErr != nil {
		return "", s.authURLErr
	}
	q := url.Values{"state": {state}, "redirect_uri": {redirectURI}}
	return "https://accounts.test/authorize?" + q.Encode(), nil
}

func (s *stubAuth) ExchangeCode(_ context.Context, code, redirectURI string) (*models.TokenResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.exchanges++
	s.lastCode = code
	s.lastRedirect = redirectURI
	return s.token, s.err
}

func (s *stubAuth) Refresh(_ context.Context, _ string) (*models.TokenResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refreshes++
	return s.token, s.err
}

func (s *stubAuth) calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.exchanges
}

func quietLogger() *log.Logger {
	return log.New(io.Discard)
}
