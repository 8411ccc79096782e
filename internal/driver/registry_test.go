package driver

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewResolvesNamesAndAliases(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"snmp", "snmp"},
		{"napalm", "snmp"},
		{"ssh", "ssh"},
		{"netmiko", "ssh"},
		{" NetMiko ", "ssh"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := New(tt.name, Options{})
			require.NoError(t, err)
			assert.Equal(t, tt.want, d.Name())
		})
	}
}

func TestNewUnsupported(t *testing.T) {
	_, err := New("unsupported", Options{})
	require.Error(t, err)

	var unsupported *UnsupportedDriverError
	require.True(t, errors.As(err, &unsupported))
	assert.Equal(t, "unsupported", unsupported.Name)
	assert.Equal(t, []string{"napalm", "netmiko", "snmp", "ssh"}, unsupported.Supported)
	assert.Contains(t, err.Error(), "napalm, netmiko, snmp, ssh")
}

func TestNames(t *testing.T) {
	assert.Equal(t, []string{"snmp", "ssh"}, Names())
}

func TestPlatformFor(t *testing.T) {
	tests := map[string]string{
		"cisco_ios":     "ios",
		"cisco_nxos":    "nxos_ssh",
		"arista_eos":    "eos",
		"juniper":       "junos",
		"juniper_junos": "junos",
		"linux":         "linux",
		"unknown":       "unknown",
	}
	for in, want := range tests {
		assert.Equal(t, want, PlatformFor(in), in)
	}
}

func TestVendorFromObjectID(t *testing.T) {
	assert.Equal(t, "Cisco", vendorFromObjectID(".1.3.6.1.4.1.9.1.1208"))
	assert.Equal(t, "Arista", vendorFromObjectID("1.3.6.1.4.1.30065.1.3011.7048.427.3648"))
	assert.Equal(t, "", vendorFromObjectID(".1.3.6.1.4.1.99999.1"))
	assert.Equal(t, "", vendorFromObjectID(".1.3.6.1.2.1"))
}

func TestFactsIsZero(t *testing.T) {
	assert.True(t, Facts{}.IsZero())
	assert.False(t, Facts{Serial: "X"}.IsZero())
	assert.False(t, Facts{Interfaces: []string{"eth0"}}.IsZero())
}
