package shared

import (
	_ "embed"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

const (
	envSpotifyClientID     = "SMAS_SPOTIFY_CLIENT_ID"
	envSpotifyClientSecret = "SMAS_SPOTIFY_CLIENT_SECRET"
	envSessionSecret       = "SMAS_SESSION_SECRET"
)

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Credentials   CredentialsConfig   `toml:"credentials"`
	Session       SessionConfig       `toml:"session"`
	Database      DatabaseConfig      `toml:"database"`
	Server        ServerConfig        `toml:"server"`
	Redis         RedisConfig         `toml:"redis"`
	RateLimit     RateLimitConfig     `toml:"ratelimit"`
	Contributions ContributionsConfig `toml:"contributions"`
	Log           LogConfig           `toml:"log"`
}

// CredentialsConfig contains service-specific credentials.
type CredentialsConfig struct {
	Spotify SpotifyConfig `toml:"spotify"`
}

// SpotifyConfig contains Spotify API credentials and endpoint overrides.
//
// The URL fields exist so tests and local emulators can point the client at a fake server.
type SpotifyConfig struct {
	ClientID     string `toml:"client_id"`
	ClientSecret string `toml:"client_secret"`
	RedirectURI  string `toml:"redirect_uri"`
	AuthURL      string `toml:"auth_url"`
	TokenURL     string `toml:"token_url"`
	APIURL       string `toml:"api_url"`
}

// SessionConfig controls signed session cookies.
type SessionConfig struct {
	Secret     string `toml:"secret"`
	TTLHours   int    `toml:"ttl_hours"`
	CookieName string `toml:"cookie_name"`
}

// TTL returns the session lifetime.
func (s SessionConfig) TTL() time.Duration {
	return time.Duration(s.TTLHours) * time.Hour
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// ServerConfig contains HTTP server settings.
//
// When Emulator is set the server uses a throwaway in-memory database with migrations applied at start.
type ServerConfig struct {
	Host     string `toml:"host"`
	Port     int    `toml:"port"`
	BaseURL  string `toml:"base_url"`
	Emulator bool   `toml:"emulator"`
}

// Addr returns host:port.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// RedisConfig enables distributed locking across server instances.
type RedisConfig struct {
	Enabled        bool   `toml:"enabled"`
	Addr           string `toml:"addr"`
	Password       string `toml:"password"`
	DB             int    `toml:"db"`
	Prefix         string `toml:"prefix"`
	LockTTLSeconds int    `toml:"lock_ttl_seconds"`
}

// LockTTL returns how long a distributed lock is held before it expires on its own.
func (r RedisConfig) LockTTL() time.Duration {
	return time.Duration(r.LockTTLSeconds) * time.Second
}

// RateLimitConfig contains inbound and outbound request limits.
type RateLimitConfig struct {
	RequestsPerSecond     float64 `toml:"requests_per_second"`
	Burst                 int     `toml:"burst"`
	SpotifyReadsPerSecond float64 `toml:"spotify_reads_per_second"`
}

// ContributionsConfig tunes what a contributor adds.
type ContributionsConfig struct {
	TopTracksLimit int    `toml:"top_tracks_limit"`
	TimeRange      string `toml:"time_range"`
	CoverImagePath string `toml:"cover_image_path"`
}

// LogConfig sets the logger level.
type LogConfig struct {
	Level string `toml:"level"`
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Values missing from the file keep the embedded defaults; secrets may be overridden from the environment.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	config.applyEnv()
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

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks the settings the server cannot start without.
func (c *Config) Validate() error {
	if c.Credentials.Spotify.ClientID == "" || c.Credentials.Spotify.ClientSecret == "" {
		return fmt.Errorf("%w: spotify client_id and client_secret are required", ErrMissingCredentials)
	}
	if c.Session.Secret == "" {
		return fmt.Errorf("%w: session secret is required", ErrInvalidConfig)
	}
	if c.Session.TTLHours <= 0 {
		return fmt.Errorf("%w: session ttl_hours must be positive", ErrInvalidConfig)
	}
	if c.Contributions.TopTracksLimit <= 0 || c.Contributions.TopTracksLimit > 50 {
		return fmt.Errorf("%w: top_tracks_limit must be between 1 and 50", ErrInvalidConfig)
	}
	switch c.Contributions.TimeRange {
	case "short_term", "medium_term", "long_term":
	default:
		return fmt.Errorf("%w: unknown time_range %q", ErrInvalidConfig, c.Contributions.TimeRange)
	}
	if c.Redis.Enabled && c.Redis.Addr == "" {
		return fmt.Errorf("%w: redis addr is required when redis is enabled", ErrInvalidConfig)
	}
	return nil
}

// DatabasePath returns the SQLite DSN the process should open.
func (c *Config) DatabasePath() string {
	if c.Server.Emulator {
		return "file:smas?mode=memory&cache=shared"
	}
	return c.Database.Path
}

func (c *Config) applyEnv() {
	if v := os.Getenv(envSpotifyClientID); v != "" {
		c.Credentials.Spotify.ClientID = v
	}
	if v := os.Getenv(envSpotifyClientSecret); v != "" {
		c.Credentials.Spotify.ClientSecret = v
	}
	if v := os.Getenv(envSessionSecret); v != "" {
		c.Session.Secret = v
	}
}
