package domain

import "strings"

// InterfaceMode is the switching mode of an interface
type InterfaceMode string

const (
	InterfaceModeAccess InterfaceMode = "access"
	InterfaceModeTagged InterfaceMode = "tagged"
	InterfaceModeRouted InterfaceMode = "routed"
)

// DefaultInterfaceType is used when the transport cannot tell the media type
const DefaultInterfaceType = "other"

// Interface is a port on a device. Interfaces are replaced wholesale on each
// successful fact collection.
type Interface struct {
	ID          *int          `json:"id,omitempty" yaml:"id,omitempty"`
	Name        string        `json:"name" yaml:"name"`
	Type        string        `json:"type" yaml:"type"`
	Enabled     bool          `json:"enabled" yaml:"enabled"`
	Speed       *int          `json:"speed,omitempty" yaml:"speed,omitempty"` // Kbps
	MACAddress  string        `json:"mac_address,omitempty" yaml:"mac_address,omitempty"`
	MTU         *int          `json:"mtu,omitempty" yaml:"mtu,omitempty"`
	Description string        `json:"description,omitempty" yaml:"description,omitempty"`
	Mode        InterfaceMode `json:"mode,omitempty" yaml:"mode,omitempty"`
	VLAN        *int          `json:"vlan,omitempty" yaml:"vlan,omitempty"`
	VRF         string        `json:"vrf,omitempty" yaml:"vrf,omitempty"`
	IPAddresses []string      `json:"ip_addresses,omitempty" yaml:"ip_addresses,omitempty"`
	PrimaryIP   string        `json:"primary_ip,omitempty" yaml:"primary_ip,omitempty"`

	// Observed is set when Enabled was read from the device rather than defaulted
	Observed bool `json:"-" yaml:"-"`
}

// NewInterface creates an enabled interface of unknown type
func NewInterface(name string) *Interface {
	return &Interface{
		Name:    name,
		Type:    DefaultInterfaceType,
		Enabled: true,
	}
}

// HasAddress reports whether ip (with or without prefix length) is assigned
func (i *Interface) HasAddress(ip string) bool {
	for _, addr := range i.IPAddresses {
		host, _, _ := strings.Cut(addr, "/")
		if addr == ip || host == ip {
			return true
		}
	}
	return false
}
