package main

import (
	"context"
	"fmt"
	"os"

	"github.com/desertthunder/spotauth/internal/shared"
	"github.com/desertthunder/spotauth/internal/ui"
	"github.com/urfave/cli/v3"
)

// ConfigInit writes the default configuration file.
func (r *Runner) ConfigInit(ctx context.Context, cmd *cli.Command) error {
	path := cmd.String("config")

	if cmd.Bool("force") {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to remove %s: %w", path, err)
		}
	}

	if err := shared.CreateConfigFile(path); err != nil {
		return err
	}

	r.logger.Info("config file created", "path", path)
	r.writePlain("%s\n", ui.OK("✓ Wrote "+path))
	r.writePlain("Set client_id and client_secret from https://developer.spotify.com/dashboard\n")
	return nil
}

// ConfigShow prints the effective configuration as JSON with the client secret masked.
func (r *Runner) ConfigShow(ctx context.Context, cmd *cli.Command) error {
	config, err := r.loadConfig(cmd)
	if err != nil {
		return err
	}

	masked := *config
	if masked.Credentials.Spotify.ClientSecret != "" {
		masked.Credentials.Spotify.ClientSecret = "********"
	}
	return r.writeJSON(masked, cmd.Bool("pretty"))
}
