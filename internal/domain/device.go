package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrDuplicateDevice is returned when a site already has a device with the same name
	ErrDuplicateDevice = errors.New("duplicate device name in site")
	// ErrDuplicateInterface is returned when a device already has an interface with the same name
	ErrDuplicateInterface = errors.New("duplicate interface name on device")
)

// Device is a network element discovered from the topology and enriched
// with live facts
type Device struct {
	ID         *int        `json:"id,omitempty" yaml:"id,omitempty"`
	Name       string      `json:"name" yaml:"name"`
	DeviceType *DeviceType `json:"device_type,omitempty" yaml:"device_type,omitempty"`
	Role       *DeviceRole `json:"role,omitempty" yaml:"role,omitempty"`
	Status     Status      `json:"status" yaml:"status"`
	Serial     string      `json:"serial,omitempty" yaml:"serial,omitempty"`
	Platform   *Platform   `json:"platform,omitempty" yaml:"platform,omitempty"`
	PrimaryIP  *Ref        `json:"primary_ip,omitempty" yaml:"primary_ip,omitempty"`
	MgmtIP     string      `json:"mgmt_ip,omitempty" yaml:"mgmt_ip,omitempty"`
	Version    string      `json:"version,omitempty" yaml:"version,omitempty"`
	Hostname   string      `json:"hostname,omitempty" yaml:"hostname,omitempty"`
	FQDN       string      `json:"fqdn,omitempty" yaml:"fqdn,omitempty"`

	// Kind is the topology node kind, Driver the transport device-type string derived from it
	Kind   string `json:"kind,omitempty" yaml:"kind,omitempty"`
	Driver string `json:"driver,omitempty" yaml:"driver,omitempty"`

	// Config holds the last collected running configuration
	Config string `json:"-" yaml:"-"`

	Credentials *Credentials `json:"-" yaml:"-"`

	site       *Site
	interfaces []*Interface
}

// NewDevice creates an active device with no site
func NewDevice(name string) *Device {
	return &Device{
		Name:   name,
		Status: StatusActive,
	}
}

func (d *Device) String() string {
	return fmt.Sprintf("%s - %s - %s", d.Name, d.MgmtIP, d.Kind)
}

// Site returns the site the device belongs to, or nil
func (d *Device) Site() *Site {
	return d.site
}

// JoinSite is the only way a device becomes a site member. It sets the back
// reference and appends the device to the site's collection together, and
// leaves any previous site first.
func (d *Device) JoinSite(site *Site) error {
	if site == nil {
		return &TypeMismatchError{Op: "join_site", Want: "site", Got: "<nil>"}
	}
	if d.site == site {
		return nil
	}
	if other := site.Device(d.Name); other != nil {
		return fmt.Errorf("%w: %s in %s", ErrDuplicateDevice, d.Name, site.Name)
	}

	if d.site != nil {
		d.site.detach(d)
	}
	site.devices = append(site.devices, d)
	d.site = site
	return nil
}

// SetCredentials attaches an in-memory credential pair
func (d *Device) SetCredentials(username, password string) {
	d.Credentials = NewCredentials(username, password)
}

// Interfaces returns a copy of the device's interfaces in order
func (d *Device) Interfaces() []*Interface {
	out := make([]*Interface, len(d.interfaces))
	copy(out, d.interfaces)
	return out
}

// Interface returns the interface with the given name, or nil
func (d *Device) Interface(name string) *Interface {
	for _, iface := range d.interfaces {
		if iface.Name == name {
			return iface
		}
	}
	return nil
}

// AddInterface appends an interface, rejecting duplicate names
func (d *Device) AddInterface(iface *Interface) error {
	if iface == nil {
		return &TypeMismatchError{Op: "interface_add", Want: "interface", Got: "<nil>"}
	}
	if d.Interface(iface.Name) != nil {
		return fmt.Errorf("%w: %s on %s", ErrDuplicateInterface, iface.Name, d.Name)
	}
	d.interfaces = append(d.interfaces, iface)
	return nil
}

// ReplaceInterfaces swaps the whole interface collection. The device keeps
// its old interfaces if the new list is invalid.
func (d *Device) ReplaceInterfaces(ifaces []*Interface) error {
	seen := make(map[string]bool, len(ifaces))
	next := make([]*Interface, 0, len(ifaces))
	for _, iface := range ifaces {
		if iface == nil {
			continue
		}
		if seen[iface.Name] {
			return fmt.Errorf("%w: %s on %s", ErrDuplicateInterface, iface.Name, d.Name)
		}
		seen[iface.Name] = true
		next = append(next, iface)
	}
	d.interfaces = next
	return nil
}
