package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/desertthunder/spotauth/internal/shared"
	"github.com/desertthunder/spotauth/internal/ui"
	"github.com/urfave/cli/v3"
)

func main() {
	logger := shared.NewLogger(nil)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	runner := NewRunner(RunnerOpts{Logger: logger})

	app := &cli.Command{
		Name:     "spotauth",
		Usage:    "Obtain and refresh Spotify Web API tokens from the terminal",
		Version:  "0.1.0",
		Commands: runner.register(),
	}

	err := app.Run(ctx, os.Args)
	stop()

	if err != nil {
		if errors.Is(err, shared.ErrMissingCredentials) {
			credentialsHelp(os.Stderr)
		}
		logger.Fatalf("application error: %v", err)
	}
}

func credentialsHelp(w io.Writer) {
	fmt.Fprintln(w, ui.Err("Error: Spotify credentials not found!"))
	fmt.Fprintln(w, "Please set CLIENT_ID and CLIENT_SECRET in the .env file or the [credentials.spotify] section of config.toml.")
	fmt.Fprintln(w, "You can get these from https://developer.spotify.com/dashboard")
}
