package auth

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

const (
	configDirName  = ".aether"
	configFile     = "config.json"
	tokenEnvVar    = "AETHER_TOKEN"   // Highest precedence token
	endpointEnvVar = "AETHER_API_URL" // Overrides api_endpoint
)

// GetConfigDir returns the path to the configuration directory (~/.aether)
func GetConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, configDirName), nil
}

// ConfigPath returns the path to config.json
func ConfigPath() (string, error) {
	dir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, configFile), nil
}

// EnsureConfigDir creates the configuration directory if it doesn't exist
// Directory is created with 0700 permissions (owner read/write/execute only)
func EnsureConfigDir() error {
	dir, err := GetConfigDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0700)
}

// Load reads the persisted configuration. A missing file yields the defaults.
// Environment overrides are not applied; see Effective.
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return nil, err
	}

	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if cfg.APIEndpoint == "" {
		cfg.APIEndpoint = DefaultAPIEndpoint
	}
	if cfg.DefaultRuntime == "" {
		cfg.DefaultRuntime = DefaultRuntime
	}
	return cfg, nil
}

// Effective loads the configuration and applies environment overrides
// Priority: AETHER_TOKEN env var > ~/.aether/config.json
func Effective() (*Config, error) {
	cfg, err := Load()
	if err != nil {
		return nil, err
	}
	if token := os.Getenv(tokenEnvVar); token != "" {
		cfg.AuthToken = token
	}
	if endpoint := os.Getenv(endpointEnvVar); endpoint != "" {
		cfg.APIEndpoint = endpoint
	}
	return cfg, nil
}

// Save writes the configuration file
// The file is saved with 0600 permissions (owner read/write only)
func Save(cfg *Config) error {
	if err := EnsureConfigDir(); err != nil {
		return err
	}

	path, err := ConfigPath()
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0600)
}

// SetToken persists a token and the account email after login
func SetToken(token, email string) error {
	cfg, err := Load()
	if err != nil {
		return err
	}
	cfg.AuthToken = token
	cfg.Email = email
	return Save(cfg)
}

// ClearToken removes the persisted token
// This is used when logging out
func ClearToken() error {
	cfg, err := Load()
	if err != nil {
		return err
	}
	cfg.AuthToken = ""
	cfg.Email = ""
	return Save(cfg)
}
