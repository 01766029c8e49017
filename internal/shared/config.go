package shared

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Credentials CredentialsConfig `toml:"credentials"`
	Database    DatabaseConfig    `toml:"database"`
	Player      PlayerConfig      `toml:"player"`
	Gateway     GatewayConfig     `toml:"gateway"`
}

// CredentialsConfig contains service-specific credentials.
type CredentialsConfig struct {
	Spotify SpotifyConfig `toml:"spotify"`
}

// SpotifyConfig contains Spotify API credentials.
type SpotifyConfig struct {
	ClientID     string `toml:"client_id"`
	ClientSecret string `toml:"client_secret"`
	RedirectURI  string `toml:"redirect_uri"`
}

// DatabaseConfig contains settings for the local credential cache database.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// PlayerConfig tunes the playback engine.
type PlayerConfig struct {
	PollIntervalMS int `toml:"poll_interval_ms"` // remote playback poll cadence
	TickIntervalMS int `toml:"tick_interval_ms"` // local progress tick cadence
	VolumeStep     int `toml:"volume_step"`
	SeekStepMS     int `toml:"seek_step_ms"`
	QueueCapacity  int `toml:"queue_capacity"`  // look-ahead buffer size
	QueueLowWater  int `toml:"queue_low_water"` // replenish threshold
}

// GatewayConfig tunes the API gateway's retry and pacing behavior.
type GatewayConfig struct {
	// BaseURL overrides the API root, empty means the public endpoint.
	BaseURL       string  `toml:"base_url"`
	MaxAttempts   int     `toml:"max_attempts"`
	BackoffBaseMS int     `toml:"backoff_base_ms"`
	BackoffCapMS  int     `toml:"backoff_cap_ms"`
	RatePerSecond float64 `toml:"rate_per_second"`
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return &config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// SaveConfig writes the config back to the given path as TOML.
func SaveConfig(path string, config *Config) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(config); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	return nil
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
