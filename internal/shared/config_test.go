package shared

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestConfig(t *testing.T) {
	t.Run("DefaultConfig", func(t *testing.T) {
		config := DefaultConfig()

		if config.Database.Path != "./smas.db" {
			t.Errorf("expected database path ./smas.db, got %s", config.Database.Path)
		}

		if config.Server.Port != 3000 {
			t.Errorf("expected server port 3000, got %d", config.Server.Port)
		}

		if config.Credentials.Spotify.ClientID != "your_spotify_client_id" {
			t.Errorf("expected spotify client_id your_spotify_client_id, got %s", config.Credentials.Spotify.ClientID)
		}

		if config.Contributions.TopTracksLimit != 5 {
			t.Errorf("expected top_tracks_limit 5, got %d", config.Contributions.TopTracksLimit)
		}

		if config.Session.TTL() != 168*time.Hour {
			t.Errorf("expected session ttl of one week, got %v", config.Session.TTL())
		}

		if err := config.Validate(); err != nil {
			t.Errorf("default config should validate, got %v", err)
		}
	})

	t.Run("CreateConfigFile", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		if err := CreateConfigFile(configPath); err != nil {
			t.Fatalf("failed to create config file: %v", err)
		}

		if _, err := os.Stat(configPath); err != nil {
			t.Fatalf("config file should exist: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load created config: %v", err)
		}

		defaultConfig := DefaultConfig()
		if config.Database.Path != defaultConfig.Database.Path {
			t.Errorf("created config database path doesn't match default")
		}

		if err := CreateConfigFile(configPath); err == nil {
			t.Error("creating config file again should fail")
		}
	})

	t.Run("LoadConfig", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		testConfig := `[database]
path = "/custom/path.db"

[server]
host = "0.0.0.0"
port = 8080
emulator = true

[credentials.spotify]
client_id = "test_client_id"
client_secret = "test_secret"
`
		if err := os.WriteFile(configPath, []byte(testConfig), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load config: %v", err)
		}

		if config.Database.Path != "/custom/path.db" {
			t.Errorf("expected database path /custom/path.db, got %s", config.Database.Path)
		}

		if config.Server.Addr() != "0.0.0.0:8080" {
			t.Errorf("expected addr 0.0.0.0:8080, got %s", config.Server.Addr())
		}

		if config.Credentials.Spotify.ClientID != "test_client_id" {
			t.Errorf("expected spotify client_id test_client_id, got %s", config.Credentials.Spotify.ClientID)
		}

		if config.Credentials.Spotify.TokenURL != "https://accounts.spotify.com/api/token" {
			t.Errorf("expected default token url to survive partial config, got %s", config.Credentials.Spotify.TokenURL)
		}

		if config.DatabasePath() == "/custom/path.db" {
			t.Error("emulator mode should use an in-memory database")
		}
	})

	t.Run("LoadConfig environment overrides", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")
		if err := CreateConfigFile(configPath); err != nil {
			t.Fatalf("failed to create config file: %v", err)
		}

		t.Setenv("SMAS_SPOTIFY_CLIENT_SECRET", "from-env")
		t.Setenv("SMAS_SESSION_SECRET", "session-from-env")

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load config: %v", err)
		}

		if config.Credentials.Spotify.ClientSecret != "from-env" {
			t.Errorf("expected client secret from env, got %s", config.Credentials.Spotify.ClientSecret)
		}
		if config.Session.Secret != "session-from-env" {
			t.Errorf("expected session secret from env, got %s", config.Session.Secret)
		}
	})

	t.Run("Validate", func(t *testing.T) {
		tc := []struct {
			name   string
			mutate func(*Config)
			want   error
		}{
			{name: "missing client id", mutate: func(c *Config) { c.Credentials.Spotify.ClientID = "" }, want: ErrMissingCredentials},
			{name: "missing session secret", mutate: func(c *Config) { c.Session.Secret = "" }, want: ErrInvalidConfig},
			{name: "top tracks limit too high", mutate: func(c *Config) { c.Contributions.TopTracksLimit = 51 }, want: ErrInvalidConfig},
			{name: "unknown time range", mutate: func(c *Config) { c.Contributions.TimeRange = "forever" }, want: ErrInvalidConfig},
			{name: "redis enabled without addr", mutate: func(c *Config) { c.Redis.Enabled = true; c.Redis.Addr = "" }, want: ErrInvalidConfig},
		}

		for _, tt := range tc {
			t.Run(tt.name, func(t *testing.T) {
				config := DefaultConfig()
				tt.mutate(config)
				if err := config.Validate(); !errors.Is(err, tt.want) {
					t.Errorf("Validate() = %v, want %v", err, tt.want)
				}
			})
		}
	})
}
