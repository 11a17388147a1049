package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"
)

const (
	DefaultResultsLimit       = 10
	DefaultCmdPrefix          = "."
	DefaultCommand            = "kgf"
	DefaultInteractionTimeout = 60 * time.Second
	DefaultLogLevel           = "info"
)

// Config represents the application configuration
type Config struct {
	// Admins are the caller ids allowed to create and remove decks and to
	// use private decks.
	Admins             []string `toml:"admins" env:"CARDSMITH_ADMINS" envSeparator:","`
	ResultsLimit       int      `toml:"results_limit" env:"CARDSMITH_RESULTS_LIMIT"`
	CmdPrefix          string   `toml:"cmd_prefix" env:"CARDSMITH_CMD_PREFIX"`
	Command            string   `toml:"command" env:"CARDSMITH_COMMAND"`
	DeckFile           string   `toml:"deck_file" env:"CARDSMITH_DECK_FILE"`
	InteractionTimeout Duration `toml:"interaction_timeout" env:"CARDSMITH_INTERACTION_TIMEOUT"`
	LogLevel           string   `toml:"log_level" env:"CARDSMITH_LOG_LEVEL"`
}

// Duration is a time.Duration written as a string such as "60s".
type Duration struct {
	time.Duration
}

// UnmarshalText parses a duration string.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText formats the duration.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		Admins:             []string{},
		ResultsLimit:       DefaultResultsLimit,
		CmdPrefix:          DefaultCmdPrefix,
		Command:            DefaultCommand,
		DeckFile:           GetDeckFilePath(),
		InteractionTimeout: Duration{DefaultInteractionTimeout},
		LogLevel:           DefaultLogLevel,
	}
}

// IsAdmin reports whether id is on the admin allow-list.
func (c *Config) IsAdmin(id string) bool {
	return slices.Contains(c.Admins, id)
}

// Validate checks the values that have no sensible fallback.
func (c *Config) Validate() error {
	var errs []error
	if c.ResultsLimit <= 0 {
		errs = append(errs, fmt.Errorf("results_limit must be positive, got %d", c.ResultsLimit))
	}
	if c.InteractionTimeout.Duration <= 0 {
		errs = append(errs, fmt.Errorf("interaction_timeout must be positive, got %s", c.InteractionTimeout))
	}
	if c.DeckFile == "" {
		errs = append(errs, errors.New("deck_file must be set"))
	}
	return errors.Join(errs...)
}

// GetXDGDataHome returns XDG_DATA_HOME or default path
func GetXDGDataHome() string {
	if xdgData := os.Getenv("XDG_DATA_HOME"); xdgData != "" {
		return xdgData
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(homeDir, ".local", "share")
}

// GetXDGConfigHome returns XDG_CONFIG_HOME or default path
func GetXDGConfigHome() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return xdgConfig
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(homeDir, ".config")
}

// GetDeckFilePath returns the default location of the deck document
func GetDeckFilePath() string {
	return filepath.Join(GetXDGDataHome(), "cardsmith", "decks.json")
}

// GetConfigFilePath returns the path to the config file
func GetConfigFilePath() string {
	return filepath.Join(GetXDGConfigHome(), "cardsmith", "config.toml")
}

// LoadConfig loads the config file at path, or the default location when path
// is empty. Environment variables override file values.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		path = GetConfigFilePath()
	}

	var config *Config
	if _, err := os.Stat(path); os.IsNotExist(err) {
		// Create default config if it doesn't exist
		config, err = createDefaultConfig(path)
		if err != nil {
			return nil, err
		}
	} else {
		config = Default()
		if _, err := toml.DecodeFile(path, config); err != nil {
			return nil, fmt.Errorf("error decoding config file: %w", err)
		}
	}

	if err := env.Parse(config); err != nil {
		return nil, fmt.Errorf("error reading environment: %w", err)
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return config, nil
}

// createDefaultConfig writes the default config to path
func createDefaultConfig(path string) (*Config, error) {
	// Ensure the config directory exists
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("error creating config directory: %w", err)
	}

	config := Default()

	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("error creating config file: %w", err)
	}
	defer file.Close()

	encoder := toml.NewEncoder(file)
	if err := encoder.Encode(config); err != nil {
		return nil, fmt.Errorf("error encoding config: %w", err)
	}

	return config, nil
}
