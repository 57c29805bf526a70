package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/spotauth/internal/formatter"
	"github.com/desertthunder/spotauth/internal/services"
	"github.com/desertthunder/spotauth/internal/shared"
	"github.com/desertthunder/spotauth/internal/ui"
	"github.com/urfave/cli/v3"
	"golang.org/x/time/rate"
)

// Example calls each demo endpoint with the given access token, pausing between requests.
//
// A failing endpoint is reported and the remaining ones still run.
func (r *Runner) Example(ctx context.Context, cmd *cli.Command) error {
	accessToken := cmd.StringArg("access_token")
	if accessToken == "" {
		r.writeErr("%s\n", ui.Err("Error: Access token is required!"))
		r.writeErr("Usage: spotauth example YOUR_ACCESS_TOKEN\n")
		r.writeErr("You can get an access token by running the authorization server (spotauth serve)\n")
		return fmt.Errorf("%w: access token", shared.ErrMissingArgument)
	}

	config, err := r.loadConfig(cmd)
	if err != nil {
		return err
	}
	apiURL := config.Credentials.Spotify.APIURL

	svc, err := services.NewSpotifyService(ctx, accessToken,
		services.WithAPIBaseURL(apiURL),
		services.WithAPIHTTPClient(r.httpClient),
		services.WithAPITimeout(config.HTTP.Timeout()),
	)
	if err != nil {
		return err
	}

	limiter := newPacer(cmd.Duration("delay"))

	r.writePlain("%s\n", ui.Title("=== Spotify API Examples ==="))
	r.writePlain("Using access token: %s\n", shared.Truncate(accessToken, 10))

	endpoints := services.DemoEndpoints(apiURL, cmd.Int("limit"))
	failed := 0
	for _, ep := range endpoints {
		if err := limiter.Wait(ctx); err != nil {
			return err
		}
		if err := r.runEndpoint(ctx, svc, ep); err != nil {
			failed++
			r.logger.Debug("endpoint failed", "endpoint", ep.Name, "error", err)
		}
	}

	r.writePlainln("%s", ui.Title("=== All examples completed ==="))
	if failed > 0 {
		r.logger.Warnf("%d of %d requests failed", failed, len(endpoints))
	}
	return nil
}

// newPacer allows one request immediately and then one per delay. A non-positive delay disables pacing.
func newPacer(delay time.Duration) *rate.Limiter {
	if delay <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Every(delay), 1)
}

func (r *Runner) runEndpoint(ctx context.Context, svc *services.SpotifyService, ep services.Endpoint) error {
	r.writePlainln("%s", ui.Step(fmt.Sprintf("Fetching %s...", ep.Name)))
	r.writePlain("%s\n", ep.Description)
	r.writePlain("API URL: %s\n", ep.URL)

	section, err := ep.Fetch(ctx, svc)
	if err != nil {
		r.reportAPIError(err)
		return err
	}

	r.writePlain("%s\n", ui.OK("Success!"))
	return formatter.WriteSection(r.output, section)
}

func (r *Runner) reportAPIError(err error) {
	r.writeErr("%s\n", ui.Err("Error making API request:"))

	var apiErr *services.APIError
	switch {
	case errors.As(err, &apiErr):
		r.writeErr("Status: %d\n", apiErr.Status)
		r.writeErr("Error details: %s\n", apiErr.Message)
		if apiErr.Unauthorized() {
			r.writePlainln("Your access token may have expired. Try refreshing it with:")
			r.writePlain("spotauth refresh-token YOUR_REFRESH_TOKEN\n")
		}
	case errors.Is(err, shared.ErrNetwork):
		r.writeErr("No response received from the server\n")
	default:
		r.writeErr("Error message: %v\n", err)
	}
}
