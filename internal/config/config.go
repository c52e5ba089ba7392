// Package config implements TOML configuration loading, validation, and
// path resolution for vimeo-go: consumer credentials, endpoint overrides,
// and response cache settings.
package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// Application directory name under the user config directory.
const appName = "vimeo-go"

// File names inside the application directory.
const (
	configFileName = "config.toml"
	tokenFileName  = "token.json"
)

// EnvConfigPath overrides the config file location when set.
const EnvConfigPath = "VIMEOGO_CONFIG"

// Config is the top-level structure parsed from a TOML file.
type Config struct {
	Consumer  ConsumerConfig  `toml:"consumer"`
	Endpoints EndpointsConfig `toml:"endpoints"`
	Cache     CacheConfig     `toml:"cache"`
	Logging   LoggingConfig   `toml:"logging"`
	Network   NetworkConfig   `toml:"network"`
}

// ConsumerConfig carries the immutable application credentials.
type ConsumerConfig struct {
	Key    string `toml:"key"`
	Secret string `toml:"secret"`
}

// EndpointsConfig overrides the fixed API URLs. Empty fields keep the
// production defaults; tests and staging setups point these elsewhere.
type EndpointsConfig struct {
	REST         string `toml:"rest"`
	Authorize    string `toml:"authorize"`
	AccessToken  string `toml:"access_token"`
	RequestToken string `toml:"request_token"`
}

// CacheConfig controls the response cache. Backend is "memory", "file",
// or empty to leave caching disabled.
type CacheConfig struct {
	Backend       string `toml:"backend"`
	Dir           string `toml:"dir"`
	ExpireSeconds int    `toml:"expire_seconds"`
}

// LoggingConfig controls log output.
type LoggingConfig struct {
	Level string `toml:"level"`
}

// NetworkConfig controls the transport.
type NetworkConfig struct {
	TimeoutSeconds int `toml:"timeout_seconds"`
}

// Default returns a Config populated with all default values.
func Default() *Config {
	return &Config{
		Cache: CacheConfig{
			Backend:       "",
			ExpireSeconds: 600,
		},
		Logging: LoggingConfig{Level: "info"},
		Network: NetworkConfig{TimeoutSeconds: 30},
	}
}

// Validate checks field values. Credentials are not required here —
// commands that need them check separately, so `vimeo-go cache clear`
// works without a configured consumer.
func Validate(cfg *Config) error {
	switch cfg.Cache.Backend {
	case "", "memory", "file":
	default:
		return fmt.Errorf("cache backend must be \"memory\" or \"file\", got %q", cfg.Cache.Backend)
	}

	if cfg.Cache.ExpireSeconds < 0 {
		return fmt.Errorf("cache expire_seconds must not be negative, got %d", cfg.Cache.ExpireSeconds)
	}

	if cfg.Network.TimeoutSeconds < 0 {
		return fmt.Errorf("network timeout_seconds must not be negative, got %d", cfg.Network.TimeoutSeconds)
	}

	switch cfg.Logging.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log level must be debug, info, warn, or error, got %q", cfg.Logging.Level)
	}

	return nil
}

// appDir returns the platform config directory for vimeo-go.
func appDir() string {
	base, err := os.UserConfigDir()
	if err != nil {
		return ""
	}

	return filepath.Join(base, appName)
}

// DefaultPath returns the config file location: the EnvConfigPath
// environment variable when set, otherwise the platform default.
func DefaultPath() string {
	if p := os.Getenv(EnvConfigPath); p != "" {
		return p
	}

	return filepath.Join(appDir(), configFileName)
}

// TokenPath returns where the access token is persisted.
func TokenPath() string {
	return filepath.Join(appDir(), tokenFileName)
}

// CacheDir returns the cache directory: the configured one, or a default
// under the application directory.
func (c *Config) CacheDir() string {
	if c.Cache.Dir != "" {
		return c.Cache.Dir
	}

	return filepath.Join(appDir(), "cache")
}
