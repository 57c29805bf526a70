package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/desertthunder/spotauth/internal/formatter"
	"github.com/desertthunder/spotauth/internal/services"
	"github.com/desertthunder/spotauth/internal/shared"
	"github.com/desertthunder/spotauth/internal/ui"
	"github.com/urfave/cli/v3"
)

// RefreshToken trades a refresh token for a new access token and prints it.
func (r *Runner) RefreshToken(ctx context.Context, cmd *cli.Command) error {
	refreshToken := cmd.StringArg("refresh_token")
	if refreshToken == "" {
		r.writeErr("%s\n", ui.Err("Error: Refresh token is required!"))
		r.writeErr("Usage: spotauth refresh-token YOUR_REFRESH_TOKEN\n")
		r.writeErr("You can get a refresh token by running the authorization server (spotauth serve)\n")
		return fmt.Errorf("%w: refresh token", shared.ErrMissingArgument)
	}

	config, err := r.loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := config.Validate(); err != nil {
		return err
	}

	auth, err := r.authService(config)
	if err != nil {
		return err
	}

	if !cmd.Bool("json") {
		r.writePlain("%s\n", ui.Step("Refreshing access token..."))
	}

	token, err := auth.Refresh(ctx, refreshToken)
	if err != nil {
		r.writeErr("%s\n", ui.Err("Error refreshing token:"))

		var te *services.TokenExchangeError
		switch {
		case errors.As(err, &te):
			r.writeErr("Status: %d\n", te.Status)
			r.writeErr("Error details: %s\n", te.Message())
		case errors.Is(err, shared.ErrNetwork):
			r.writeErr("No response received from the server\n")
		}
		return err
	}

	data, err := formatter.TokenJSON(token)
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if cmd.Bool("json") {
		return r.writePlain("%s\n", data)
	}

	r.writePlain("%s\n", ui.OK("✓ Token refreshed successfully!"))
	r.writePlainln("New Access Token:")
	r.writePlain("%s\n", token.AccessToken)
	r.writePlainln("Expires in: %s", formatter.FormatExpiry(token.ExpiresIn))
	if token.RefreshToken != "" && token.RefreshToken != refreshToken {
		r.writePlainln("New Refresh Token:")
		r.writePlain("%s\n", token.RefreshToken)
	}
	r.writePlainln("JSON Output (for scripts):")
	return r.writePlain("%s\n", data)
}
