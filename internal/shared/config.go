package shared

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

//go:embed config.example.toml
var exampleConf []byte

var validate = validator.New(validator.WithRequiredStructEnabled())

// Config represents the application configuration loaded from a TOML file and the environment.
type Config struct {
	Credentials CredentialsConfig `toml:"credentials"`
	Server      ServerConfig      `toml:"server"`
	HTTP        HTTPConfig        `toml:"http"`
	Log         LogConfig         `toml:"log"`
}

// CredentialsConfig contains service-specific credentials.
type CredentialsConfig struct {
	Spotify SpotifyConfig `toml:"spotify"`
}

// SpotifyConfig contains Spotify API credentials and endpoints.
type SpotifyConfig struct {
	ClientID     string `toml:"client_id" validate:"required"`
	ClientSecret string `toml:"client_secret" validate:"required"`
	RedirectURI  string `toml:"redirect_uri" validate:"required,url"`
	AuthURL      string `toml:"auth_url" validate:"required,url"`
	TokenURL     string `toml:"token_url" validate:"required,url"`
	APIURL       string `toml:"api_url" validate:"required,url"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host            string `toml:"host" validate:"required"`
	Port            int    `toml:"port" validate:"min=1,max=65535"`
	StateTTLSeconds int    `toml:"state_ttl_seconds" validate:"min=1"`
}

// HTTPConfig contains outbound HTTP client settings.
type HTTPConfig struct {
	TimeoutSeconds int `toml:"timeout_seconds" validate:"min=1"`
}

// LogConfig contains logger settings.
type LogConfig struct {
	Level string `toml:"level" validate:"omitempty,oneof=debug info warn error fatal"`
}

// LookupFunc reads a single environment variable, see [os.LookupEnv].
type LookupFunc func(key string) (string, bool)

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Keys missing from the file keep their default values.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("%w: failed to parse config: %v", ErrInvalidConfig, err)
	}

	return config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// LoadEnvFile loads KEY=value pairs from a dotenv file into the process environment.
//
// Variables already present in the environment win. A missing file is not an error.
func LoadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("%w: failed to load %s: %v", ErrInvalidConfig, path, err)
	}
	return nil
}

// Load builds the effective configuration: embedded defaults, then the TOML file at path
// (skipped when it does not exist), then environment variables read through lookup.
func Load(path string, lookup LookupFunc) (*Config, error) {
	config := DefaultConfig()
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			loaded, err := LoadConfig(path)
			if err != nil {
				return nil, err
			}
			config = loaded
		}
	}

	if lookup == nil {
		lookup = os.LookupEnv
	}
	if err := config.ApplyEnv(lookup); err != nil {
		return nil, err
	}

	config.Resolve()
	return config, nil
}

// ApplyEnv overrides configuration values with environment variables.
//
// SPOTIFY_CLIENT_ID and SPOTIFY_CLIENT_SECRET are accepted as fallbacks for CLIENT_ID and CLIENT_SECRET.
func (c *Config) ApplyEnv(lookup LookupFunc) error {
	first := func(keys ...string) (string, bool) {
		for _, k := range keys {
			if v, ok := lookup(k); ok && v != "" {
				return v, true
			}
		}
		return "", false
	}

	if v, ok := first("CLIENT_ID", "SPOTIFY_CLIENT_ID"); ok {
		c.Credentials.Spotify.ClientID = v
	}
	if v, ok := first("CLIENT_SECRET", "SPOTIFY_CLIENT_SECRET"); ok {
		c.Credentials.Spotify.ClientSecret = v
	}
	if v, ok := first("REDIRECT_URI", "SPOTIFY_REDIRECT_URI"); ok {
		c.Credentials.Spotify.RedirectURI = v
	}
	if v, ok := first("HOST"); ok {
		c.Server.Host = v
	}
	if v, ok := first("PORT"); ok {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: PORT must be a number, got %q", ErrInvalidConfig, v)
		}
		c.Server.Port = port
	}
	if v, ok := first("LOG_LEVEL"); ok {
		c.Log.Level = v
	}
	return nil
}

// Resolve fills values derived from other settings, such as the default redirect URI.
func (c *Config) Resolve() {
	if c.Credentials.Spotify.RedirectURI == "" {
		c.Credentials.Spotify.RedirectURI = c.defaultRedirectURI()
	}
}

// SetListenAddr overrides the server host and port. A redirect URI derived from the old address follows
// the new one; an explicitly configured one is kept.
func (c *Config) SetListenAddr(host string, port int) {
	derived := c.Credentials.Spotify.RedirectURI == "" || c.Credentials.Spotify.RedirectURI == c.defaultRedirectURI()
	if host != "" {
		c.Server.Host = host
	}
	if port > 0 {
		c.Server.Port = port
	}
	if derived {
		c.Credentials.Spotify.RedirectURI = c.defaultRedirectURI()
	}
}

func (c *Config) defaultRedirectURI() string {
	return fmt.Sprintf("http://%s/callback", c.Server.Addr())
}

// Validate checks the configuration, reporting absent client credentials as [ErrMissingCredentials]
// and everything else as [ErrInvalidConfig].
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	for _, fe := range verrs {
		switch fe.StructField() {
		case "ClientID":
			return fmt.Errorf("%w: CLIENT_ID is not set", ErrMissingCredentials)
		case "ClientSecret":
			return fmt.Errorf("%w: CLIENT_SECRET is not set", ErrMissingCredentials)
		}
	}

	fe := verrs[0]
	return fmt.Errorf("%w: %s failed %q validation (value %v)", ErrInvalidConfig, fe.Namespace(), fe.Tag(), fe.Value())
}

// Addr returns the host:port pair the server listens on.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// StateTTL returns how long a pending authorization state stays valid.
func (s ServerConfig) StateTTL() time.Duration {
	return time.Duration(s.StateTTLSeconds) * time.Second
}

// Timeout returns the per-request timeout for outbound calls.
func (h HTTPConfig) Timeout() time.Duration {
	return time.Duration(h.TimeoutSeconds) * time.Second
}
