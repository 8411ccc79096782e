// Package credentials supplies the username/password pair used to reach a device
package credentials

import (
	"errors"
	"fmt"

	"labsync/internal/domain"
)

// ErrNoCredentials is returned when no usable pair is known for a device
var ErrNoCredentials = errors.New("no credentials")

// Provider returns the credentials for a device by name
type Provider interface {
	Lookup(device string) (domain.Credentials, error)
}

// Static hands out one pair for every device
type Static struct {
	creds domain.Credentials
}

// NewStatic creates a provider returning the same pair for all devices
func NewStatic(username, password string) *Static {
	return &Static{creds: domain.Credentials{Username: username, Password: password}}
}

// Lookup returns the configured pair
func (s *Static) Lookup(device string) (domain.Credentials, error) {
	if !s.creds.Valid() {
		return domain.Credentials{}, fmt.Errorf("%w for %s", ErrNoCredentials, device)
	}
	return s.creds, nil
}

// Map holds per-device overrides on top of an optional default
type Map struct {
	Default *domain.Credentials
	Devices map[string]domain.Credentials
}

// NewMap creates a provider with a default pair and no overrides
func NewMap(def *domain.Credentials) *Map {
	return &Map{Default: def, Devices: make(map[string]domain.Credentials)}
}

// Set registers an override for device
func (m *Map) Set(device string, c domain.Credentials) {
	if m.Devices == nil {
		m.Devices = make(map[string]domain.Credentials)
	}
	m.Devices[device] = c
}

// Lookup prefers the device override, then the default
func (m *Map) Lookup(device string) (domain.Credentials, error) {
	if c, ok := m.Devices[device]; ok && c.Valid() {
		return c, nil
	}
	if m.Default != nil && m.Default.Valid() {
		return *m.Default, nil
	}
	return domain.Credentials{}, fmt.Errorf("%w for %s", ErrNoCredentials, device)
}
