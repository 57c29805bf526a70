// submodule cmd contains command definitions
package main

import (
	"time"

	"github.com/urfave/cli/v3"
)

// configFlags are accepted by every command that reads configuration.
func configFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Path to configuration file",
			Value:   "config.toml",
		},
		&cli.StringFlag{
			Name:  "env-file",
			Usage: "Path to a dotenv file with CLIENT_ID and CLIENT_SECRET",
			Value: ".env",
		},
		&cli.StringFlag{
			Name:  "log-level",
			Usage: "Log level (debug, info, warn, error)",
		},
	}
}

// serveCommand runs the local authorization server
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"start"},
		Usage:   "Run the local authorization server and open it in the browser",
		Flags: append(configFlags(),
			&cli.StringFlag{
				Name:  "host",
				Usage: "Interface to listen on (overrides HOST)",
			},
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Port to listen on (overrides PORT)",
			},
			&cli.BoolFlag{
				Name:  "no-browser",
				Usage: "Do not open the browser automatically",
			},
		),
		Action: r.Serve,
	}
}

// refreshTokenCommand exchanges a refresh token for a new access token
func refreshTokenCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "refresh-token",
		Usage: "Get a new access token from a refresh token",
		Arguments: []cli.Argument{
			&cli.StringArg{
				Name:      "refresh_token",
				UsageText: "YOUR_REFRESH_TOKEN",
			},
		},
		Flags: append(configFlags(),
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Print only the JSON block",
			},
		),
		Action: r.RefreshToken,
	}
}

// exampleCommand calls a few read-only Web API endpoints with an access token
func exampleCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "example",
		Usage: "Call example Spotify API endpoints with an access token",
		Arguments: []cli.Argument{
			&cli.StringArg{
				Name:      "access_token",
				UsageText: "YOUR_ACCESS_TOKEN",
			},
		},
		Flags: append(configFlags(),
			&cli.DurationFlag{
				Name:  "delay",
				Usage: "Pause between requests",
				Value: 500 * time.Millisecond,
			},
			&cli.IntFlag{
				Name:  "limit",
				Usage: "Number of items to request from list endpoints",
				Value: 5,
			},
		),
		Action: r.Example,
	}
}

// configCommand handles configuration files
func configCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Configuration commands",
		Commands: []*cli.Command{
			{
				Name:  "init",
				Usage: "Write a config.toml with default values",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "config",
						Aliases: []string{"c"},
						Usage:   "Path to configuration file",
						Value:   "config.toml",
					},
					&cli.BoolFlag{
						Name:  "force",
						Usage: "Overwrite an existing file",
					},
				},
				Action: r.ConfigInit,
			},
			{
				Name:  "show",
				Usage: "Print the effective configuration with secrets masked",
				Flags: append(configFlags(),
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
						Value: true,
					},
				),
				Action: r.ConfigShow,
			},
		},
	}
}
