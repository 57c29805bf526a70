// Spotify Web API access for the demo endpoints
package services

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/desertthunder/spotauth/internal/shared"
	"github.com/zmb3/spotify/v2"
	"golang.org/x/oauth2"
)

// SpotifyAPIURL is the Web API base. It must end with a slash.
const SpotifyAPIURL = "https://api.spotify.com/v1/"

// APIError is a failed Web API call.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%v: status %d: %s", shared.ErrAPIRequest, e.Status, e.Message)
}

// Unwrap maps 401 to [shared.ErrTokenExpired] so callers can suggest a refresh.
func (e *APIError) Unwrap() error {
	if e.Status == http.StatusUnauthorized {
		return shared.ErrTokenExpired
	}
	return shared.ErrAPIRequest
}

// Unauthorized reports whether the access token was rejected.
func (e *APIError) Unauthorized() bool {
	return e.Status == http.StatusUnauthorized
}

// SpotifyOption configures a [SpotifyService].
type SpotifyOption func(*spotifyOptions)

type spotifyOptions struct {
	baseURL string
	client  *http.Client
	timeout time.Duration
}

// WithAPIBaseURL points the service at another Web API host, e.g. an httptest server.
func WithAPIBaseURL(u string) SpotifyOption {
	return func(o *spotifyOptions) {
		if u == "" {
			return
		}
		if !strings.HasSuffix(u, "/") {
			u += "/"
		}
		o.baseURL = u
	}
}

// WithAPIHTTPClient sets the transport the bearer client is built on.
func WithAPIHTTPClient(c *http.Client) SpotifyOption {
	return func(o *spotifyOptions) { o.client = c }
}

// WithAPITimeout bounds each Web API call.
func WithAPITimeout(d time.Duration) SpotifyOption {
	return func(o *spotifyOptions) {
		if d > 0 {
			o.timeout = d
		}
	}
}

// SpotifyService makes authenticated Web API calls with a caller-supplied access token.
//
// The token is never refreshed here; a 401 surfaces as an [APIError].
type SpotifyService struct {
	client  *spotify.Client
	baseURL string
}

// NewSpotifyService creates a service that sends accessToken as a Bearer credential.
func NewSpotifyService(ctx context.Context, accessToken string, opts ...SpotifyOption) (*SpotifyService, error) {
	if accessToken == "" {
		return nil, fmt.Errorf("%w: access token", shared.ErrMissingArgument)
	}

	o := &spotifyOptions{baseURL: SpotifyAPIURL, timeout: DefaultTimeout}
	for _, opt := range opts {
		opt(o)
	}

	if o.client != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, o.client)
	}
	httpClient := oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: accessToken,
		TokenType:   "Bearer",
	}))
	httpClient.Timeout = o.timeout

	return &SpotifyService{
		client:  spotify.New(httpClient, spotify.WithBaseURL(o.baseURL)),
		baseURL: o.baseURL,
	}, nil
}

// BaseURL returns the Web API base the service sends requests to.
func (s *SpotifyService) BaseURL() string {
	return s.baseURL
}

// Client exposes the underlying Web API client.
func (s *SpotifyService) Client() *spotify.Client {
	return s.client
}

// CurrentUser fetches the profile of the token's owner.
func (s *SpotifyService) CurrentUser(ctx context.Context) (*spotify.PrivateUser, error) {
	user, err := s.client.CurrentUser(ctx)
	if err != nil {
		return nil, apiError(err)
	}
	return user, nil
}

// TopTracks fetches the user's most played tracks.
func (s *SpotifyService) TopTracks(ctx context.Context, limit int) ([]spotify.FullTrack, error) {
	page, err := s.client.CurrentUsersTopTracks(ctx, spotify.Limit(limit))
	if err != nil {
		return nil, apiError(err)
	}
	return page.Tracks, nil
}

// NewReleases fetches recently released albums.
func (s *SpotifyService) NewReleases(ctx context.Context, limit int) ([]spotify.SimpleAlbum, error) {
	page, err := s.client.NewReleases(ctx, spotify.Limit(limit))
	if err != nil {
		return nil, apiError(err)
	}
	return page.Albums, nil
}

// FeaturedPlaylists fetches the editorial playlist selection.
func (s *SpotifyService) FeaturedPlaylists(ctx context.Context, limit int) ([]spotify.SimplePlaylist, error) {
	_, page, err := s.client.FeaturedPlaylists(ctx, spotify.Limit(limit))
	if err != nil {
		return nil, apiError(err)
	}
	return page.Playlists, nil
}

// apiError converts client errors into [APIError] or a wrapped [shared.ErrNetwork].
func apiError(err error) error {
	var se spotify.Error
	if errors.As(err, &se) {
		return &APIError{Status: se.Status, Message: se.Message}
	}
	var sp *spotify.Error
	if errors.As(err, &sp) {
		return &APIError{Status: sp.Status, Message: sp.Message}
	}

	var urlErr *url.Error
	var netErr net.Error
	if errors.As(err, &urlErr) || errors.As(err, &netErr) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", shared.ErrNetwork, err)
	}
	return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
}
