package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/desertthunder/spotauth/internal/formatter"
	"github.com/zmb3/spotify/v2"
)

// DefaultDemoLimit is how many items each list endpoint asks for.
const DefaultDemoLimit = 5

// Endpoint describes one Web API call run by the example command.
type Endpoint struct {
	Name        string
	Description string
	URL         string
	Fetch       func(ctx context.Context, s *SpotifyService) (formatter.Section, error)
}

// DemoEndpoints returns the example endpoints in the order they are run.
func DemoEndpoints(apiURL string, limit int) []Endpoint {
	if apiURL == "" {
		apiURL = SpotifyAPIURL
	}
	if !strings.HasSuffix(apiURL, "/") {
		apiURL += "/"
	}
	if limit <= 0 {
		limit = DefaultDemoLimit
	}

	return []Endpoint{
		{
			Name:        "Your Profile",
			Description: "Get detailed profile information about the current user",
			URL:         apiURL + "me",
			Fetch:       profileSection,
		},
		{
			Name:        "Your Top Tracks",
			Description: fmt.Sprintf("Get your top %d tracks", limit),
			URL:         fmt.Sprintf("%sme/top/tracks?limit=%d", apiURL, limit),
			Fetch: func(ctx context.Context, s *SpotifyService) (formatter.Section, error) {
				tracks, err := s.TopTracks(ctx, limit)
				if err != nil {
					return formatter.Section{}, err
				}
				items := make([]string, 0, len(tracks))
				for _, t := range tracks {
					items = append(items, fmt.Sprintf("%q by %s", t.Name, artistNames(t.Artists)))
				}
				return formatter.Section{Title: "Your Top Tracks", Items: items}, nil
			},
		},
		{
			Name:        "New Releases",
			Description: "Get the newest releases on Spotify",
			URL:         fmt.Sprintf("%sbrowse/new-releases?limit=%d", apiURL, limit),
			Fetch: func(ctx context.Context, s *SpotifyService) (formatter.Section, error) {
				albums, err := s.NewReleases(ctx, limit)
				if err != nil {
					return formatter.Section{}, err
				}
				items := make([]string, 0, len(albums))
				for _, a := range albums {
					items = append(items, fmt.Sprintf("%q by %s", a.Name, artistNames(a.Artists)))
				}
				return formatter.Section{Title: "New Releases", Items: items}, nil
			},
		},
		{
			Name:        "Featured Playlists",
			Description: "Get featured playlists on Spotify",
			URL:         fmt.Sprintf("%sbrowse/featured-playlists?limit=%d", apiURL, limit),
			Fetch: func(ctx context.Context, s *SpotifyService) (formatter.Section, error) {
				playlists, err := s.FeaturedPlaylists(ctx, limit)
				if err != nil {
					return formatter.Section{}, err
				}
				items := make([]string, 0, len(playlists))
				for _, p := range playlists {
					items = append(items, fmt.Sprintf("%q - %s", p.Name, p.Description))
				}
				return formatter.Section{Title: "Featured Playlists", Items: items}, nil
			},
		},
	}
}

func profileSection(ctx context.Context, s *SpotifyService) (formatter.Section, error) {
	user, err := s.CurrentUser(ctx)
	if err != nil {
		return formatter.Section{}, err
	}

	return formatter.Section{
		Title: "Profile Information",
		Fields: []formatter.Field{
			{Label: "Display Name", Value: user.DisplayName},
			{Label: "Email", Value: user.Email},
			{Label: "Country", Value: user.Country},
			{Label: "Subscription", Value: user.Product},
			{Label: "Followers", Value: strconv.FormatUint(uint64(user.Followers.Count), 10)},
		},
	}, nil
}

func artistNames(artists []spotify.SimpleArtist) string {
	names := make([]string, 0, len(artists))
	for _, a := range artists {
		names = append(names, a.Name)
	}
	return strings.Join(names, ", ")
}
