// Package config provides configuration management for labsync.
//
// Config file locations (priority order):
//  1. $LABSYNC_CONFIG
//  2. ./labsync.yaml
//  3. $XDG_CONFIG_HOME/labsync/config.yaml
//  4. ~/.config/labsync/config.yaml
//  5. /etc/labsync/config.yaml
//
// Environment variables override file values; see ApplyEnv.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"labsync/internal/driver"
	"labsync/internal/logger"
)

// Environment overrides
const (
	EnvInventoryURL   = "LABSYNC_INVENTORY_URL"
	EnvInventoryToken = "LABSYNC_INVENTORY_TOKEN"
	EnvUsername       = "LABSYNC_USERNAME"
	EnvPassword       = "LABSYNC_PASSWORD"
	EnvDriver         = "LABSYNC_DRIVER"
	EnvTopology       = "LABSYNC_TOPOLOGY"
	EnvWorkers        = "LABSYNC_WORKERS"
	EnvLogLevel       = "LOG_LEVEL"
)

// DefaultDriver is used when no driver is configured
const DefaultDriver = "ssh"

// Load finds and loads the config file, or returns defaults if none found.
// Environment overrides are applied in both cases.
func Load() (*Config, string, error) {
	path := FindConfigPath()

	if path == "" {
		cfg := DefaultConfig()
		if err := cfg.ApplyEnv(); err != nil {
			return nil, "", err
		}
		return cfg, "", nil
	}

	return LoadFromPath(path)
}

// LoadFromPath loads config from a specific path
func LoadFromPath(path string) (*Config, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, path, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, path, fmt.Errorf("parse config: %w", err)
	}

	if err := cfg.ApplyEnv(); err != nil {
		return nil, path, err
	}
	cfg.applyDefaults()

	return &cfg, path, nil
}

// Save writes config to the specified path. Secrets are written as-is, so
// the file is created owner-readable only.
func (c *Config) Save(path string) error {
	if err := EnsureConfigDir(path); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	return os.WriteFile(path, data, 0600)
}

// DefaultConfig returns the defaults for a new installation
func DefaultConfig() *Config {
	cfg := &Config{
		Version: 1,
		Collection: CollectionConfig{
			Profile: ProfileBalanced,
			Driver:  DefaultDriver,
		},
		Preflight: PreflightConfig{Enabled: false},
	}
	cfg.applyDefaults()
	return cfg
}

// applyDefaults fills in missing values with defaults
func (c *Config) applyDefaults() {
	if c.Version == 0 {
		c.Version = 1
	}

	if c.Inventory.Timeout == 0 {
		c.Inventory.Timeout = Duration(30 * time.Second)
	}

	col := &c.Collection
	if col.Profile == "" {
		col.Profile = ProfileBalanced
	}
	if col.Driver == "" {
		col.Driver = DefaultDriver
	}

	defaults := col.Profile.Defaults()
	if col.Workers == 0 {
		col.Workers = defaults.Workers
	}
	if col.ConnectTimeout == 0 {
		col.ConnectTimeout = Duration(defaults.ConnectTimeout)
	}
	if col.CommandTimeout == 0 {
		col.CommandTimeout = Duration(defaults.CommandTimeout)
	}
	if col.SNMPRetries == 0 {
		col.SNMPRetries = defaults.SNMPRetries
	}
	if col.SSHPort == 0 {
		col.SSHPort = 22
	}
	if col.SNMPPort == 0 {
		col.SNMPPort = 161
	}

	if c.Preflight.Timeout == 0 {
		c.Preflight.Timeout = Duration(defaults.PreflightTimeout)
	}

	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Output == "" {
		c.Logging.Output = "stderr"
	}
}

// ApplyEnv overrides file values with LABSYNC_* and LOG_LEVEL variables
func (c *Config) ApplyEnv() error {
	if v := os.Getenv(EnvInventoryURL); v != "" {
		c.Inventory.URL = v
	}
	if v := os.Getenv(EnvInventoryToken); v != "" {
		c.Inventory.Token = v
	}
	if v := os.Getenv(EnvUsername); v != "" {
		c.Credentials.Username = v
	}
	if v := os.Getenv(EnvPassword); v != "" {
		c.Credentials.Password = v
	}
	if v := os.Getenv(EnvDriver); v != "" {
		c.Collection.Driver = v
	}
	if v := os.Getenv(EnvTopology); v != "" {
		c.Topology = v
	}
	if v := os.Getenv(EnvWorkers); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvWorkers, err)
		}
		c.Collection.Workers = n
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.Logging.Level = strings.ToLower(v)
	}
	return nil
}

// Validate checks field constraints and that the driver name is known
func (c *Config) Validate() error {
	v := validator.New(validator.WithRequiredStructEnabled())

	if err := v.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s: failed %q", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("invalid config: %w", err)
	}

	if _, err := driver.Lookup(c.Collection.Driver); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	return nil
}

// DriverOptions converts collection settings into transport options
func (c *Config) DriverOptions() driver.Options {
	return driver.Options{
		ConnectTimeout: c.Collection.ConnectTimeout.Duration(),
		CommandTimeout: c.Collection.CommandTimeout.Duration(),
		SSHPort:        c.Collection.SSHPort,
		SNMPPort:       c.Collection.SNMPPort,
		SNMPRetries:    c.Collection.SNMPRetries,
	}
}

// LoggerConfig converts logging settings into a logger.Config
func (c *Config) LoggerConfig() logger.Config {
	return logger.Config{
		Level:      c.Logging.Level,
		Debug:      c.Logging.Debug,
		Output:     c.Logging.Output,
		TimeFormat: c.Logging.TimeFormat,
	}
}

// Summary returns a human-readable config summary without secrets
func (c *Config) Summary() string {
	summary := fmt.Sprintf("Driver: %s, Profile: %s, Workers: %d\n",
		c.Collection.Driver, c.Collection.Profile, c.Collection.Workers)
	summary += fmt.Sprintf("Connect: %s, Command: %s, Preflight: %v\n",
		c.Collection.ConnectTimeout.Duration(), c.Collection.CommandTimeout.Duration(), c.Preflight.Enabled)

	inv := c.Inventory.URL
	if inv == "" {
		inv = "(not set)"
	}
	summary += fmt.Sprintf("Inventory: %s, token set: %v", inv, c.Inventory.Token != "")

	return summary
}
