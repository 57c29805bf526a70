package models

import (
	"strings"
	"time"
)

// Credentials identify this application to the provider's token endpoint.
type Credentials struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string
}

// TokenResponse is the token endpoint payload for both grant types.
//
// RefreshToken is usually only present on an authorization code exchange.
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	ExpiresIn    int    `json:"expires_in"`
	TokenType    string `json:"token_type"`
	Scope        string `json:"scope,omitempty"`
}

// ExpiresInMinutes returns the lifetime in whole minutes.
func (t TokenResponse) ExpiresInMinutes() int {
	return t.ExpiresIn / 60
}

// ScopeSet is an ordered list of permission strings. Order is preserved so generated URLs are reproducible.
type ScopeSet []string

// NewScopeSet builds a ScopeSet, dropping blanks and duplicates while keeping first-seen order.
func NewScopeSet(scopes ...string) ScopeSet {
	seen := make(map[string]bool, len(scopes))
	set := make(ScopeSet, 0, len(scopes))
	for _, s := range scopes {
		s = strings.TrimSpace(s)
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		set = append(set, s)
	}
	return set
}

// String joins the scopes with single spaces, the form expected by the scope query parameter.
func (s ScopeSet) String() string {
	return strings.Join(s, " ")
}

// AuthorizationAttempt is a single pending authorization started by a visit to /login.
type AuthorizationAttempt struct {
	ID          string
	State       string
	RedirectURI string
	CreatedAt   time.Time
	ExpiresAt   time.Time
}

// Expired reports whether the attempt can no longer be completed at now.
func (a AuthorizationAttempt) Expired(now time.Time) bool {
	return !now.Before(a.ExpiresAt)
}
