package main

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/spotauth/internal/models"
	"github.com/desertthunder/spotauth/internal/services"
	"github.com/desertthunder/spotauth/internal/shared"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config      *shared.Config
	httpClient  *http.Client
	logger      *log.Logger
	output      io.Writer
	errOutput   io.Writer
	lookup      shared.LookupFunc
	openBrowser func(url string) error

	mu sync.Mutex
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	// Config skips loading from files and the environment when set.
	Config      *shared.Config
	HTTPClient  *http.Client
	Logger      *log.Logger
	Output      io.Writer
	ErrOutput   io.Writer
	Lookup      shared.LookupFunc
	OpenBrowser func(url string) error
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.ErrOutput == nil {
		opts.ErrOutput = os.Stderr
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}
	if opts.Lookup == nil {
		opts.Lookup = os.LookupEnv
	}
	if opts.OpenBrowser == nil {
		opts.OpenBrowser = shared.OpenBrowser
	}

	return &Runner{
		config:      opts.Config,
		httpClient:  opts.HTTPClient,
		logger:      opts.Logger,
		output:      opts.Output,
		errOutput:   opts.ErrOutput,
		lookup:      opts.Lookup,
		openBrowser: opts.OpenBrowser,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		serveCommand, refreshTokenCommand, exampleCommand, configCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// loadConfig resolves the effective configuration for a command and applies its log level.
//
// Order: embedded defaults, --config file, --env-file, process environment, --log-level.
func (r *Runner) loadConfig(cmd *cli.Command) (*shared.Config, error) {
	config := r.config
	if config == nil {
		if err := shared.LoadEnvFile(cmd.String("env-file")); err != nil {
			return nil, err
		}

		var err error
		if config, err = shared.Load(cmd.String("config"), r.lookup); err != nil {
			return nil, err
		}
	}

	level := config.Log.Level
	if cmd.IsSet("log-level") {
		level = cmd.String("log-level")
	}
	if err := shared.ApplyLogLevel(r.logger, level); err != nil {
		return nil, err
	}

	return config, nil
}

func (r *Runner) authService(config *shared.Config) (*services.AuthService, error) {
	spotify := config.Credentials.Spotify
	return services.NewAuthService(
		models.Credentials{
			ClientID:     spotify.ClientID,
			ClientSecret: spotify.ClientSecret,
			RedirectURI:  spotify.RedirectURI,
		},
		services.WithEndpoint(spotify.AuthURL, spotify.TokenURL),
		services.WithHTTPClient(r.httpClient),
		services.WithTimeout(config.HTTP.Timeout()),
	)
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	output, err := shared.MarshalJSON(data, pretty)
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writeErr(format string, args ...any) {
	fmt.Fprintf(r.errOutput, format, args...)
}
