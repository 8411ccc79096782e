package driver

import (
	"sort"
	"strings"
)

// Factory builds an unconnected driver
type Factory func(opts Options) Driver

var factories = map[string]Factory{
	"snmp": func(opts Options) Driver { return NewSNMP(opts) },
	"ssh":  func(opts Options) Driver { return NewSSH(opts) },
}

// aliases map backend names used by existing lab configurations
var aliases = map[string]string{
	"napalm":  "snmp",
	"netmiko": "ssh",
}

// Canonical resolves a name or alias to the canonical driver name
func Canonical(name string) (string, bool) {
	n := strings.ToLower(strings.TrimSpace(name))
	if alias, ok := aliases[n]; ok {
		n = alias
	}
	_, ok := factories[n]
	return n, ok
}

// Lookup returns the factory registered under name or alias
func Lookup(name string) (Factory, error) {
	n, ok := Canonical(name)
	if !ok {
		return nil, &UnsupportedDriverError{Name: name, Supported: Supported()}
	}
	return factories[n], nil
}

// New builds the named driver
func New(name string, opts Options) (Driver, error) {
	f, err := Lookup(name)
	if err != nil {
		return nil, err
	}
	return f(opts), nil
}

// Names lists canonical driver names
func Names() []string {
	names := make([]string, 0, len(factories))
	for n := range factories {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Supported lists canonical names and aliases
func Supported() []string {
	names := Names()
	for a := range aliases {
		names = append(names, a)
	}
	sort.Strings(names)
	return names
}
