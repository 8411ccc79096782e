//go:generate mockgen -destination=mock_driver.go -package=driver labsync/internal/driver Driver

package driver

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	// ErrNotConnected is returned by retrieval calls made before Connect
	ErrNotConnected = errors.New("not connected")
	// ErrUnsupportedPlatform is returned when a driver has no profile for a device type
	ErrUnsupportedPlatform = errors.New("unsupported platform")
	// ErrUnsupportedOperation is returned when the transport cannot provide the data
	ErrUnsupportedOperation = errors.New("operation not supported by transport")
)

// Target identifies a device and the credentials used to reach it
type Target struct {
	Host       string
	Port       int // 0 selects the transport default
	Username   string
	Password   string
	DeviceType string // e.g. cisco_ios, arista_eos, linux
}

func (t Target) String() string {
	return fmt.Sprintf("%s (%s)", t.Host, t.DeviceType)
}

// Facts is the normalized device summary returned by every driver
type Facts struct {
	Hostname   string        `json:"hostname"`
	FQDN       string        `json:"fqdn,omitempty"`
	Vendor     string        `json:"vendor,omitempty"`
	Model      string        `json:"model,omitempty"`
	Serial     string        `json:"serial_number,omitempty"`
	OSVersion  string        `json:"os_version,omitempty"`
	Uptime     time.Duration `json:"uptime,omitempty"`
	Interfaces []string      `json:"interface_list,omitempty"`
}

// IsZero reports whether no fact was collected
func (f Facts) IsZero() bool {
	return f.Hostname == "" && f.FQDN == "" && f.Vendor == "" && f.Model == "" &&
		f.Serial == "" && f.OSVersion == "" && f.Uptime == 0 && len(f.Interfaces) == 0
}

// InterfaceKind is the transport-neutral interface classification
type InterfaceKind string

const (
	KindEthernet InterfaceKind = "ethernet"
	KindLoopback InterfaceKind = "loopback"
	KindLAG      InterfaceKind = "lag"
	KindVirtual  InterfaceKind = "virtual"
	KindTunnel   InterfaceKind = "tunnel"
	KindOther    InterfaceKind = "other"
)

// InterfaceFacts describes one interface as seen on the device
type InterfaceFacts struct {
	Name        string        `json:"name"`
	Kind        InterfaceKind `json:"kind"`
	Description string        `json:"description,omitempty"`
	Enabled     bool          `json:"is_enabled"`
	Up          bool          `json:"is_up"`
	MACAddress  string        `json:"mac_address,omitempty"`
	MTU         int           `json:"mtu,omitempty"`
	SpeedKbps   int           `json:"speed,omitempty"`
	IPAddresses []string      `json:"ip_addresses,omitempty"` // CIDR notation
}

// Driver is the capability every transport implements
type Driver interface {
	// Name returns the canonical driver name
	Name() string

	// Connect opens the transport session. It fails with *ConnectionError
	// and never reports success on a failed session.
	Connect(ctx context.Context, t Target) error

	// Facts returns the device summary or a *CollectionError
	Facts(ctx context.Context) (Facts, error)

	// Interfaces returns per-interface detail or a *CollectionError
	Interfaces(ctx context.Context) ([]InterfaceFacts, error)

	// Config returns the running configuration or a *CollectionError
	Config(ctx context.Context) (string, error)

	// Close releases the session. Safe to call more than once and before Connect.
	Close() error
}

// ConnectionError reports a failed session setup
type ConnectionError struct {
	Driver string
	Host   string
	Err    error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("%s: connect to %s: %v", e.Driver, e.Host, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// CollectionError reports a failed retrieval on an established session
type CollectionError struct {
	Driver string
	Host   string
	Op     string // facts, interfaces, config
	Err    error
}

func (e *CollectionError) Error() string {
	return fmt.Sprintf("%s: %s on %s: %v", e.Driver, e.Op, e.Host, e.Err)
}

func (e *CollectionError) Unwrap() error { return e.Err }

// UnsupportedDriverError is returned for a driver name the registry does not know
type UnsupportedDriverError struct {
	Name      string
	Supported []string
}

func (e *UnsupportedDriverError) Error() string {
	return fmt.Sprintf("unsupported driver %q (supported: %s)", e.Name, strings.Join(e.Supported, ", "))
}

// Options tunes transport behaviour
type Options struct {
	ConnectTimeout time.Duration
	CommandTimeout time.Duration
	SSHPort        int
	SNMPPort       int
	SNMPRetries    int
}

// DefaultOptions returns sensible defaults
func DefaultOptions() Options {
	return Options{
		ConnectTimeout: 10 * time.Second,
		CommandTimeout: 30 * time.Second,
		SSHPort:        22,
		SNMPPort:       161,
		SNMPRetries:    2,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.ConnectTimeout == 0 {
		o.ConnectTimeout = d.ConnectTimeout
	}
	if o.CommandTimeout == 0 {
		o.CommandTimeout = d.CommandTimeout
	}
	if o.SSHPort == 0 {
		o.SSHPort = d.SSHPort
	}
	if o.SNMPPort == 0 {
		o.SNMPPort = d.SNMPPort
	}
	if o.SNMPRetries == 0 {
		o.SNMPRetries = d.SNMPRetries
	}
	return o
}
