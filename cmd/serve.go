package main

import (
	"context"
	"fmt"
	"net"

	"github.com/desertthunder/spotauth/internal/formatter"
	"github.com/desertthunder/spotauth/internal/server"
	"github.com/desertthunder/spotauth/internal/shared"
	"github.com/desertthunder/spotauth/internal/ui"
	"github.com/urfave/cli/v3"
)

// Serve runs the authorization server until the context is cancelled.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	config, err := r.loadConfig(cmd)
	if err != nil {
		return err
	}
	config.SetListenAddr(cmd.String("host"), cmd.Int("port"))

	if err := config.Validate(); err != nil {
		return err
	}

	if _, err := shared.GenerateState(); err != nil {
		return fmt.Errorf("cannot issue authorization state: %w", err)
	}

	auth, err := r.authService(config)
	if err != nil {
		return err
	}

	srv, err := server.New(server.Options{
		Auth:        auth,
		States:      server.NewStateStore(config.Server.StateTTL()),
		Logger:      r.logger,
		RedirectURI: config.Credentials.Spotify.RedirectURI,
		OnCallback:  r.reportCallback,
	})
	if err != nil {
		return err
	}

	r.logger.Debug("starting server", "addr", config.Server.Addr(), "redirect_uri", config.Credentials.Spotify.RedirectURI)

	return srv.Run(ctx, config.Server.Addr(), func(addr string) {
		url := "http://" + displayAddr(config.Server.Host, addr)

		r.writePlain("%s\n", ui.Banner(
			"Spotify Authorization Server",
			"",
			"Server running at "+url,
			"",
			"1. Make sure you've set your Spotify credentials",
			"   in the .env file or config.toml",
			"",
			"2. Register this redirect URI in the dashboard:",
			"   "+config.Credentials.Spotify.RedirectURI,
		))

		if cmd.Bool("no-browser") {
			r.writePlain("Open %s in your browser to continue.\n", url)
			return
		}

		if err := r.openBrowser(url); err != nil {
			r.logger.Warn("failed to open browser", "error", err)
			r.writePlain("Please navigate to %s manually.\n", url)
		}
	})
}

// reportCallback prints the callback outcome to the terminal running the server.
func (r *Runner) reportCallback(res server.CallbackResult) {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch res.Outcome {
	case server.Authenticated:
		r.writePlainln("%s", ui.OK("✓ Authentication successful!"))
		r.writePlain("Access token: %s\n", res.Token.AccessToken)
		if res.Token.RefreshToken != "" {
			r.writePlain("Refresh token: %s\n", res.Token.RefreshToken)
		}
		r.writePlain("Token expires in: %s\n", formatter.FormatExpiry(res.Token.ExpiresIn))
	case server.CsrfRejected:
		r.writeErr("%s\n", ui.Err("State mismatch! Possible CSRF attack"))
	default:
		r.writeErr("%s %s\n", ui.Err("Authorization failed:"), res.Message)
	}
}

// displayAddr is the browser-facing host:port for a listener bound to addr.
func displayAddr(host, addr string) string {
	_, port, err := net.SplitHostPort(addr)
	if err != nil {
		return addr
	}
	switch host {
	case "", "0.0.0.0", "::":
		host = "localhost"
	}
	return net.JoinHostPort(host, port)
}
