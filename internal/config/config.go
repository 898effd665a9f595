// Package config loads the server configuration file.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// DefaultConfigFile is where `repofiles serve` looks for its config.
const DefaultConfigFile = "repofiles.toml"

// Config is the full repofiles.toml file.
type Config struct {
	Listen   string       `toml:"listen"`
	LogLevel string       `toml:"log_level"`
	GitHub   GitHubConfig `toml:"github"`
	Auth     AuthConfig   `toml:"auth"`
}

// GitHubConfig configures the provider client.
type GitHubConfig struct {
	BaseURL        string `toml:"base_url"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// AuthConfig configures the credential store.
type AuthConfig struct {
	CredentialsFile string `toml:"credentials_file"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		Listen:   ":8080",
		LogLevel: "info",
		GitHub: GitHubConfig{
			BaseURL:        "https://api.github.com",
			TimeoutSeconds: 30,
		},
		Auth: AuthConfig{
			CredentialsFile: "credentials.toml",
		},
	}
}

// Load reads and parses a config file from the given path.
// If the file does not exist it returns the defaults (no error).
// Fields omitted from the file keep their default values.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}

	// Re-fill anything the file explicitly blanked.
	if cfg.Listen == "" {
		cfg.Listen = Default().Listen
	}
	if cfg.GitHub.BaseURL == "" {
		cfg.GitHub.BaseURL = Default().GitHub.BaseURL
	}
	if cfg.GitHub.TimeoutSeconds <= 0 {
		cfg.GitHub.TimeoutSeconds = Default().GitHub.TimeoutSeconds
	}
	if cfg.Auth.CredentialsFile == "" {
		cfg.Auth.CredentialsFile = Default().Auth.CredentialsFile
	}
	return cfg, nil
}
