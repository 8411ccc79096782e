package domain

import (
	"fmt"

	"github.com/gosimple/slug"
)

// Site is a location that owns an ordered collection of devices
type Site struct {
	ID          *int   `json:"id,omitempty" yaml:"id,omitempty"`
	Name        string `json:"name" yaml:"name"`
	Slug        string `json:"slug" yaml:"slug"`
	Status      Status `json:"status" yaml:"status"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	Tenant      *Ref   `json:"tenant,omitempty" yaml:"tenant,omitempty"`
	TenantGroup *Ref   `json:"tenant_group,omitempty" yaml:"tenant_group,omitempty"`

	devices []*Device
}

// NewSite creates an active site with a slug derived from its name
func NewSite(name string) *Site {
	return &Site{
		Name:        name,
		Slug:        slug.Make(name),
		Status:      StatusActive,
		Description: "Lab site " + name,
	}
}

func (s *Site) String() string {
	return fmt.Sprintf("%s - %s - %s", s.Name, s.Slug, s.Status)
}

// Devices returns the site's devices in insertion order. The returned slice
// is a copy; use AddDevice/RemoveDevice to change membership.
func (s *Site) Devices() []*Device {
	out := make([]*Device, len(s.devices))
	copy(out, s.devices)
	return out
}

// Len returns the number of devices in the site
func (s *Site) Len() int {
	return len(s.devices)
}

// Device returns the member device with the given name, or nil
func (s *Site) Device(name string) *Device {
	for _, d := range s.devices {
		if d.Name == name {
			return d
		}
	}
	return nil
}

// AddDevice makes d a member of the site. It is equivalent to d.JoinSite(s).
func (s *Site) AddDevice(d *Device) error {
	if d == nil {
		return &TypeMismatchError{Op: "device_add", Want: "device", Got: "<nil>"}
	}
	return d.JoinSite(s)
}

// RemoveDevice removes d from the site and clears its site reference
func (s *Site) RemoveDevice(d *Device) error {
	if d == nil {
		return &TypeMismatchError{Op: "device_remove", Want: "device", Got: "<nil>"}
	}
	if !s.detach(d) {
		return fmt.Errorf("%w: %s not in %s", ErrNotMember, d.Name, s.Name)
	}
	d.site = nil
	return nil
}

// detach drops d from the collection, preserving order of the others
func (s *Site) detach(d *Device) bool {
	for i, member := range s.devices {
		if member == d {
			s.devices = append(s.devices[:i:i], s.devices[i+1:]...)
			return true
		}
	}
	return false
}
