// Package config loads and persists application configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// Config represents the application configuration.
type Config struct {
	Server  ServerConfig  `toml:"server"`
	Gemini  GeminiConfig  `toml:"gemini"`
	Library LibraryConfig `toml:"library"`
	App     AppConfig     `toml:"app"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Port           int      `toml:"port"`
	AllowedOrigins []string `toml:"allowed_origins"`
}

// GeminiConfig contains generative-service settings. The API key is never
// written to disk; it comes from the environment.
type GeminiConfig struct {
	Model     string `toml:"model"`      // empty = service default
	LiveModel string `toml:"live_model"` // empty = service default
	APIKey    string `toml:"-"`
}

// LibraryConfig contains saved-deck persistence settings.
type LibraryConfig struct {
	Path       string `toml:"path"` // empty = default under the config dir
	Passphrase string `toml:"-"`    // at-rest encryption, from env
}

// AppConfig contains general application settings.
type AppConfig struct {
	DebugMode     bool   `toml:"debug_mode"`
	DefaultFormat string `toml:"default_format"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:           8080,
			AllowedOrigins: []string{"*"},
		},
		Gemini: GeminiConfig{},
		App: AppConfig{
			DebugMode:     false,
			DefaultFormat: "Standard",
		},
	}
}

// Dir returns the application config directory, creating it if needed.
func Dir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home directory: %w", err)
	}

	configDir := filepath.Join(homeDir, ".manaforge")
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return "", fmt.Errorf("create config directory: %w", err)
	}

	return configDir, nil
}

// Path returns the path to the configuration file.
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// Load loads the configuration from disk, applies environment overrides,
// and fills defaults. Returns the default config if no file exists.
func Load() (*Config, error) {
	path, err := Path()
	if err != nil {
		return nil, err
	}

	config, err := LoadFile(path)
	if err != nil {
		return nil, err
	}

	config.applyEnv()
	return config, nil
}

// LoadFile loads configuration from an explicit path without environment
// overrides.
func LoadFile(path string) (*Config, error) {
	config := DefaultConfig()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return config, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}

	return config, nil
}

func (c *Config) applyEnv() {
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		c.Gemini.APIKey = key
	}
	if pass := os.Getenv("MANAFORGE_LIBRARY_PASSPHRASE"); pass != "" {
		c.Library.Passphrase = pass
	}
}

// Save saves the configuration to disk.
func (c *Config) Save() error {
	path, err := Path()
	if err != nil {
		return err
	}

	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}

	return nil
}

// Validate validates the configuration values.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	return nil
}

// LibraryPath returns the saved-deck database path, defaulting to a file
// in the config directory.
func (c *Config) LibraryPath() (string, error) {
	if c.Library.Path != "" {
		return c.Library.Path, nil
	}
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "library.db"), nil
}
