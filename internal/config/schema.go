package config

import (
	"time"
)

// Config is the root configuration structure
type Config struct {
	Version     int               `yaml:"version"`
	Topology    string            `yaml:"topology,omitempty"` // path to a .clab.yml file
	Inventory   InventoryConfig   `yaml:"inventory"`
	Collection  CollectionConfig  `yaml:"collection"`
	Credentials CredentialsConfig `yaml:"credentials"`
	Preflight   PreflightConfig   `yaml:"preflight"`
	Logging     LoggingConfig     `yaml:"logging"`
	Metrics     MetricsConfig     `yaml:"metrics"`
}

// InventoryConfig holds the inventory service endpoint
type InventoryConfig struct {
	URL                string   `yaml:"url" validate:"omitempty,url"`
	Token              string   `yaml:"token,omitempty"`
	InsecureSkipVerify bool     `yaml:"insecure_skip_verify"`
	Timeout            Duration `yaml:"timeout"`
}

// CollectionConfig controls how facts are gathered from devices
type CollectionConfig struct {
	Profile        Profile  `yaml:"profile" validate:"omitempty,oneof=cautious balanced aggressive"`
	Driver         string   `yaml:"driver" validate:"required"`
	Workers        int      `yaml:"workers" validate:"min=1,max=256"`
	ConnectTimeout Duration `yaml:"connect_timeout"`
	CommandTimeout Duration `yaml:"command_timeout"`
	SSHPort        int      `yaml:"ssh_port" validate:"min=1,max=65535"`
	SNMPPort       int      `yaml:"snmp_port" validate:"min=1,max=65535"`
	SNMPRetries    int      `yaml:"snmp_retries" validate:"min=0,max=10"`
	RunningConfig  bool     `yaml:"running_config"` // also retrieve the running configuration
}

// CredentialsConfig holds the default pair and per-device overrides.
// Prefer mounted secrets or environment variables over plaintext here.
type CredentialsConfig struct {
	Username     string                      `yaml:"username,omitempty"`
	Password     string                      `yaml:"password,omitempty"`
	Devices      map[string]DeviceCredential `yaml:"devices,omitempty" validate:"dive"`
	SecretsPaths []string                    `yaml:"secrets_paths,omitempty"`
}

// DeviceCredential is a per-device override
type DeviceCredential struct {
	Username string `yaml:"username"`
	Password string `yaml:"password" validate:"required"`
}

// PreflightConfig controls the reachability scan run before collection
type PreflightConfig struct {
	Enabled bool     `yaml:"enabled"`
	Timeout Duration `yaml:"timeout"`
}

// LoggingConfig mirrors logger.Config
type LoggingConfig struct {
	Level      string `yaml:"level" validate:"omitempty,oneof=trace debug info warn error"`
	Debug      bool   `yaml:"debug"`
	Output     string `yaml:"output" validate:"omitempty,oneof=stdout stderr console"`
	TimeFormat string `yaml:"time_format,omitempty"`
}

// MetricsConfig controls the Prometheus textfile written after each run
type MetricsConfig struct {
	Textfile string `yaml:"textfile,omitempty"`
}

// Duration wraps time.Duration for YAML unmarshaling
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler
func (d *Duration) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// Duration returns the underlying time.Duration
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}
