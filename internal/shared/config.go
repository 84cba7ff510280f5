package shared

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Server    ServerConfig    `toml:"server"`
	Storage   StorageConfig   `toml:"storage"`
	Discovery DiscoveryConfig `toml:"discovery"`
	Session   SessionConfig   `toml:"session"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// StorageConfig contains collection storage settings.
type StorageConfig struct {
	Home         string `toml:"home"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// DiscoveryConfig contains external catalog search settings.
type DiscoveryConfig struct {
	CatalogBaseURL    string  `toml:"catalog_base_url"`
	VideoBaseURL      string  `toml:"video_base_url"`
	RequestsPerSecond float64 `toml:"requests_per_second"`
}

// SessionConfig contains per-connection protocol engine tuning.
type SessionConfig struct {
	QueueSize    int `toml:"queue_size"`
	MaxChunkSize int `toml:"max_chunk_size"`
	MaxDelayMS   int `toml:"max_delay_ms"`
	DebounceMS   int `toml:"debounce_ms"`
}

// MaxDelay returns the outbound batcher flush deadline as a [time.Duration].
func (s SessionConfig) MaxDelay() time.Duration {
	return time.Duration(s.MaxDelayMS) * time.Millisecond
}

// Debounce returns the state-change quiet period as a [time.Duration].
func (s SessionConfig) Debounce() time.Duration {
	return time.Duration(s.DebounceMS) * time.Millisecond
}

// LoadConfig reads and parses a TOML configuration file from the specified
// path. A missing file wraps [ErrMissingConfig]; a file that does not parse
// wraps [ErrInvalidConfig].
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrMissingConfig, path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
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

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	// Check if file already exists
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s: %w", path, os.ErrExist)
	}

	// Write the embedded example config to the file
	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// HomeDir resolves the storage home directory, expanding "~" and falling back
// to ~/.local/share/stereo when unset.
func (c *Config) HomeDir() string {
	home := c.Storage.Home
	if home == "" {
		userHome, err := os.UserHomeDir()
		if err != nil {
			return filepath.Join(".", "stereo")
		}
		return filepath.Join(userHome, ".local", "share", "stereo")
	}
	return ExpandPath(home)
}

// DefaultCollectionPath returns the path of the default collection database inside the storage home.
func (c *Config) DefaultCollectionPath() string {
	return filepath.Join(c.HomeDir(), "stereo.db")
}
