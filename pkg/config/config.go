// Package config loads the YAML settings of the timeago CLI.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// ErrInvalidValue wraps every validation failure.
var ErrInvalidValue = errors.New("invalid config value")

// Config represents the application configuration
type Config struct {
	Locale      string        `yaml:"locale,omitempty"`
	DB          string        `yaml:"db,omitempty"`
	Workers     int           `yaml:"workers,omitempty"`
	BatchSize   int           `yaml:"batch_size,omitempty"`
	UserAgent   string        `yaml:"user_agent,omitempty"`
	MaxBodySize int64         `yaml:"max_body_size,omitempty"`
	Timeout     time.Duration `yaml:"timeout,omitempty"`

	// Patterns maps locale codes to extra pattern files, e.g. {fr: ./fr.yaml}.
	// Relative paths are resolved against the config file's directory.
	Patterns map[string]string `yaml:"patterns,omitempty"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		Locale:      "en",
		DB:          "timeago.db",
		Workers:     4,
		BatchSize:   50,
		MaxBodySize: 10 * 1024 * 1024,
		Timeout:     30 * time.Second,
	}
}

// DefaultConfigDir returns the default config directory
func DefaultConfigDir() string {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return ".timeago"
	}
	return filepath.Join(configDir, "timeago")
}

// ConfigPath returns the path to the config file
func ConfigPath() string {
	return filepath.Join(DefaultConfigDir(), "config.yaml")
}

// Load reads the config file at path on top of the defaults. An empty path
// means ConfigPath(), which may be absent.
func Load(path string) (*Config, error) {
	cfg := Default()
	explicit := path != ""
	if !explicit {
		path = ConfigPath()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	dir := filepath.Dir(path)
	for code, p := range cfg.Patterns {
		if p != "" && !filepath.IsAbs(p) {
			cfg.Patterns[code] = filepath.Join(dir, p)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks bounds and reports every problem at once.
func (c *Config) Validate() error {
	var errs []error
	if c.Locale == "" {
		errs = append(errs, fmt.Errorf("%w: locale is required", ErrInvalidValue))
	}
	if c.Workers < 1 || c.Workers > 256 {
		errs = append(errs, fmt.Errorf("%w: workers must be between 1 and 256, got %d", ErrInvalidValue, c.Workers))
	}
	if c.BatchSize < 1 {
		errs = append(errs, fmt.Errorf("%w: batch_size must be positive, got %d", ErrInvalidValue, c.BatchSize))
	}
	if c.MaxBodySize < 1 {
		errs = append(errs, fmt.Errorf("%w: max_body_size must be positive, got %d", ErrInvalidValue, c.MaxBodySize))
	}
	if c.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("%w: timeout must be positive, got %v", ErrInvalidValue, c.Timeout))
	}
	for code, p := range c.Patterns {
		if p == "" {
			errs = append(errs, fmt.Errorf("%w: patterns.%s has no path", ErrInvalidValue, code))
		}
	}
	return errors.Join(errs...)
}
