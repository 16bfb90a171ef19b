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
	Run         RunConfig         `toml:"run"`
	Database    DatabaseConfig    `toml:"database"`
	Ledger      LedgerConfig      `toml:"ledger"`
}

// CredentialsConfig contains provider API credentials.
//
// Either APIKey (static header auth) or ClientID/ClientSecret (OAuth2
// client credentials) must be set. When both are present the API key wins.
type CredentialsConfig struct {
	BaseURL      string `toml:"base_url"`
	APIKey       string `toml:"api_key"`
	ClientID     string `toml:"client_id"`
	ClientSecret string `toml:"client_secret"`
	TokenURL     string `toml:"token_url"`
}

// RunConfig contains pipeline defaults, overridable per invocation via flags.
type RunConfig struct {
	BatchSize     int     `toml:"batch_size"`
	RetryAttempts int     `toml:"retry_attempts"`
	RetryDelayMS  int     `toml:"retry_delay_ms"`
	RateLimit     float64 `toml:"rate_limit"`
}

// DatabaseConfig contains episode cache database settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// LedgerConfig contains progress ledger settings.
type LedgerConfig struct {
	Path string `toml:"path"`
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

// HasCredentials reports whether the config carries a usable credential set.
func (c *Config) HasCredentials() bool {
	cr := c.Credentials
	return cr.APIKey != "" || (cr.ClientID != "" && cr.ClientSecret != "")
}
