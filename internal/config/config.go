// Package config loads the application configuration from
// .aigov/config.json under the workspace root. Missing files fall back to
// defaults so a fresh workspace works without any setup.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"aigov/internal/errors"
)

// Config is the application configuration. Scoring parameters live in their
// own TOML file referenced by ScoringConfigPath, not here.
type Config struct {
	Version int `json:"version" mapstructure:"version"`

	// DataDir holds the registry database.
	DataDir string `json:"dataDir" mapstructure:"dataDir"`

	// ReportsDir is the root for evidence package output.
	ReportsDir string `json:"reportsDir" mapstructure:"reportsDir"`

	// ScoringConfigPath points at a TOML scoring override. Empty means the
	// built-in scoring configuration.
	ScoringConfigPath string `json:"scoringConfigPath" mapstructure:"scoringConfigPath"`

	// Attribution is the default team_or_user recorded in evidence manifests.
	Attribution string `json:"attribution" mapstructure:"attribution"`

	Logging LoggingConfig `json:"logging" mapstructure:"logging"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Format string `json:"format" mapstructure:"format"`
	Level  string `json:"level" mapstructure:"level"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Version:     1,
		DataDir:     ".aigov/data",
		ReportsDir:  "reports",
		Attribution: "governance-team",
		Logging: LoggingConfig{
			Format: "human",
			Level:  "info",
		},
	}
}

// LoadConfig loads configuration from <root>/.aigov/config.json
func LoadConfig(root string) (*Config, error) {
	v := viper.New()

	v.SetDefault("version", 1)
	v.SetDefault("dataDir", ".aigov/data")
	v.SetDefault("reportsDir", "reports")
	v.SetDefault("attribution", "governance-team")
	v.SetDefault("logging.format", "human")
	v.SetDefault("logging.level", "info")

	v.SetConfigName("config")
	v.SetConfigType("json")
	v.AddConfigPath(filepath.Join(root, ".aigov"))

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return DefaultConfig(), nil
		}
		return nil, errors.Wrap(errors.ConfigIntegrity, "read config", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(errors.ConfigIntegrity, "parse config", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Save writes the configuration to <root>/.aigov/config.json
func (c *Config) Save(root string) error {
	dir := filepath.Join(root, ".aigov")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrap(errors.ConfigIntegrity, "create config directory", err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return errors.Wrap(errors.ConfigIntegrity, "encode config", err)
	}
	return os.WriteFile(filepath.Join(dir, "config.json"), data, 0o644)
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Version != 1 {
		return errors.Newf(errors.ConfigIntegrity, "unsupported config version %d", c.Version)
	}
	if c.DataDir == "" {
		return errors.New(errors.ConfigIntegrity, "dataDir must not be empty")
	}
	if c.ReportsDir == "" {
		return errors.New(errors.ConfigIntegrity, "reportsDir must not be empty")
	}
	switch c.Logging.Format {
	case "", "human", "json":
	default:
		return errors.Newf(errors.ConfigIntegrity, "unknown logging format %q", c.Logging.Format)
	}
	return nil
}
