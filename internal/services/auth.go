package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/desertthunder/spotauth/internal/models"
	"github.com/desertthunder/spotauth/internal/shared"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"golang.org/x/oauth2"
)

// DefaultTimeout bounds every token endpoint call when no timeout is configured.
const DefaultTimeout = 10 * time.Second

// DefaultScopes returns the permissions requested by /login, in a stable order.
func DefaultScopes() models.ScopeSet {
	return models.NewScopeSet(
		spotifyauth.ScopeUserReadPrivate,
		spotifyauth.ScopeUserReadEmail,
		spotifyauth.ScopePlaylistReadPrivate,
		spotifyauth.ScopePlaylistReadCollaborative,
		spotifyauth.ScopePlaylistModifyPublic,
		spotifyauth.ScopePlaylistModifyPrivate,
		spotifyauth.ScopeUserLibraryRead,
		spotifyauth.ScopeUserLibraryModify,
		spotifyauth.ScopeUserTopRead,
		spotifyauth.ScopeUserReadRecentlyPlayed,
		spotifyauth.ScopeUserReadPlaybackState,
		spotifyauth.ScopeUserModifyPlaybackState,
		spotifyauth.ScopeUserReadCurrentlyPlaying,
		spotifyauth.ScopeUserFollowRead,
		spotifyauth.ScopeUserFollowModify,
	)
}

// BuildAuthURL returns the authorization endpoint URL the user's browser is sent to.
func BuildAuthURL(base, clientID string, scopes models.ScopeSet, redirectURI, state string) (string, error) {
	if clientID == "" {
		return "", fmt.Errorf("%w: client id is empty", shared.ErrInvalidConfig)
	}
	if redirectURI == "" {
		return "", fmt.Errorf("%w: redirect uri is empty", shared.ErrInvalidConfig)
	}

	u, err := url.Parse(base)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("%w: malformed authorization url %q", shared.ErrInvalidConfig, base)
	}

	conf := &oauth2.Config{
		ClientID:    clientID,
		Endpoint:    oauth2.Endpoint{AuthURL: base},
		RedirectURL: redirectURI,
		Scopes:      []string{scopes.String()},
	}
	if len(scopes) == 0 {
		conf.Scopes = nil
	}

	return conf.AuthCodeURL(state), nil
}

// TokenExchangeError is returned when the token endpoint answered with an error status.
type TokenExchangeError struct {
	Status      int
	Code        string
	Description string
	Body        []byte
}

func (e *TokenExchangeError) Error() string {
	return fmt.Sprintf("%v: %s", shared.ErrTokenExchange, e.Message())
}

// Message is the provider's explanation, falling back to the error code or raw status.
func (e *TokenExchangeError) Message() string {
	switch {
	case e.Description != "":
		return e.Description
	case e.Code != "":
		return e.Code
	default:
		return fmt.Sprintf("status %d", e.Status)
	}
}

func (e *TokenExchangeError) Unwrap() error {
	return shared.ErrTokenExchange
}

// AuthOption configures an [AuthService].
type AuthOption func(*AuthService)

// WithEndpoint overrides the authorization and token URLs. Empty values keep the defaults.
func WithEndpoint(authURL, tokenURL string) AuthOption {
	return func(s *AuthService) {
		if authURL != "" {
			s.endpoint.AuthURL = authURL
		}
		if tokenURL != "" {
			s.endpoint.TokenURL = tokenURL
		}
	}
}

// WithHTTPClient sets the client used for token requests.
func WithHTTPClient(c *http.Client) AuthOption {
	return func(s *AuthService) {
		if c != nil {
			s.httpClient = c
		}
	}
}

// WithTimeout sets the per-request deadline for token requests.
func WithTimeout(d time.Duration) AuthOption {
	return func(s *AuthService) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithScopes replaces [DefaultScopes].
func WithScopes(scopes models.ScopeSet) AuthOption {
	return func(s *AuthService) {
		s.scopes = scopes
	}
}

// AuthService talks to the provider's authorization and token endpoints on behalf of one registered application.
type AuthService struct {
	credentials models.Credentials
	scopes      models.ScopeSet
	endpoint    oauth2.Endpoint
	httpClient  *http.Client
	timeout     time.Duration
}

// NewAuthService creates an AuthService for the given application credentials.
func NewAuthService(creds models.Credentials, opts ...AuthOption) (*AuthService, error) {
	if creds.ClientID == "" {
		return nil, fmt.Errorf("%w: client_id is required", shared.ErrMissingCredentials)
	}
	if creds.ClientSecret == "" {
		return nil, fmt.Errorf("%w: client_secret is required", shared.ErrMissingCredentials)
	}

	s := &AuthService{
		credentials: creds,
		scopes:      DefaultScopes(),
		endpoint: oauth2.Endpoint{
			AuthURL:   spotifyauth.AuthURL,
			TokenURL:  spotifyauth.TokenURL,
			AuthStyle: oauth2.AuthStyleInHeader,
		},
		httpClient: &http.Client{},
		timeout:    DefaultTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Scopes returns the permissions requested by [AuthService.AuthURL].
func (s *AuthService) Scopes() models.ScopeSet {
	return s.scopes
}

// AuthURL builds the authorization URL for state. An empty redirectURI uses the configured one.
func (s *AuthService) AuthURL(state, redirectURI string) (string, error) {
	if redirectURI == "" {
		redirectURI = s.credentials.RedirectURI
	}
	return BuildAuthURL(s.endpoint.AuthURL, s.credentials.ClientID, s.scopes, redirectURI, state)
}

func (s *AuthService) config(redirectURI string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     s.credentials.ClientID,
		ClientSecret: s.credentials.ClientSecret,
		Endpoint:     s.endpoint,
		RedirectURL:  redirectURI,
	}
}

// context derives the request context: the injected client and a deadline of s.timeout.
func (s *AuthService) context(ctx context.Context) (context.Context, context.CancelFunc) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, s.httpClient)
	return context.WithTimeout(ctx, s.timeout)
}

// ExchangeCode trades an authorization code for tokens. redirectURI must match the one used to obtain the code.
func (s *AuthService) ExchangeCode(ctx context.Context, code, redirectURI string) (*models.TokenResponse, error) {
	if code == "" {
		return nil, fmt.Errorf("%w: authorization code", shared.ErrMissingArgument)
	}
	if redirectURI == "" {
		redirectURI = s.credentials.RedirectURI
	}

	ctx, cancel := s.context(ctx)
	defer cancel()

	token, err := s.config(redirectURI).Exchange(ctx, code)
	if err != nil {
		return nil, classifyTokenError(err)
	}
	return toTokenResponse(token, ""), nil
}

// Refresh trades a refresh token for a new access token. If the provider does not rotate the refresh token,
// the returned response carries the one passed in.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*models.TokenResponse, error) {
	if refreshToken == "" {
		return nil, fmt.Errorf("%w: refresh token", shared.ErrMissingArgument)
	}

	ctx, cancel := s.context(ctx)
	defer cancel()

	src := s.config(s.credentials.RedirectURI).TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken})
	token, err := src.Token()
	if err != nil {
		return nil, classifyTokenError(err)
	}
	return toTokenResponse(token, refreshToken), nil
}

func classifyTokenError(err error) error {
	var re *oauth2.RetrieveError
	if errors.As(err, &re) {
		te := &TokenExchangeError{
			Code:        re.ErrorCode,
			Description: re.ErrorDescription,
			Body:        re.Body,
		}
		if re.Response != nil {
			te.Status = re.Response.StatusCode
		}
		if te.Code == "" && len(re.Body) > 0 {
			var payload struct {
				Error       string `json:"error"`
				Description string `json:"error_description"`
			}
			if json.Unmarshal(re.Body, &payload) == nil {
				te.Code = payload.Error
				te.Description = payload.Description
			}
		}
		return te
	}

	var netErr net.Error
	var urlErr *url.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.As(err, &netErr) && netErr.Timeout():
		return fmt.Errorf("%w: %w: %v", shared.ErrNetwork, shared.ErrTimeout, err)
	case errors.As(err, &urlErr):
		return fmt.Errorf("%w: %v", shared.ErrNetwork, err)
	}
	return fmt.Errorf("%w: %v", shared.ErrTokenExchange, err)
}

func toTokenResponse(token *oauth2.Token, fallbackRefresh string) *models.TokenResponse {
	resp := &models.TokenResponse{
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		TokenType:    token.TokenType,
		ExpiresIn:    int(token.ExpiresIn),
	}
	if resp.RefreshToken == "" {
		resp.RefreshToken = fallbackRefresh
	}

	if resp.ExpiresIn == 0 {
		switch v := token.Extra("expires_in").(type) {
		case float64:
			resp.ExpiresIn = int(v)
		case int64:
			resp.ExpiresIn = int(v)
		case string:
			resp.ExpiresIn, _ = strconv.Atoi(v)
		}
	}
	if resp.ExpiresIn == 0 && !token.Expiry.IsZero() {
		resp.ExpiresIn = int(time.Until(token.Expiry).Round(time.Second).Seconds())
	}

	if scope, ok := token.Extra("scope").(string); ok {
		resp.Scope = scope
	}
	return resp
}
