package driver

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/ssh"
)

type fakeRunner struct {
	outputs map[string]string
	errs    map[string]error
	ran     []string
	closed  int
}

func (f *fakeRunner) Run(_ context.Context, cmd string) (string, error) {
	f.ran = append(f.ran, cmd)
	if err, ok := f.errs[cmd]; ok {
		return "", err
	}
	out, ok := f.outputs[cmd]
	if !ok {
		return "", errors.New("command not found")
	}
	return out, nil
}

func (f *fakeRunner) Close() error {
	f.closed++
	return nil
}

func newTestSSH(r *fakeRunner, dialed *string) *SSH {
	s := NewSSH(Options{})
	s.dial = func(_ context.Context, addr string, _ *ssh.ClientConfig) (commandRunner, error) {
		if dialed != nil {
			*dialed = addr
		}
		return r, nil
	}
	return s
}

const iosShowVersion = `Cisco IOS Software, IOSv Software (VIOS-ADVENTERPRISEK9-M), Version 15.9(3)M6, RELEASE SOFTWARE (fc1)
Technical Support: http://www.cisco.com/techsupport
Copyright (c) 1986-2022 by Cisco Systems, Inc.

ROM: Bootstrap program is IOSv

R1 uptime is 1 week, 2 days, 3 hours, 4 minutes
System returned to ROM by reload
System image file is "flash0:/vios-adventerprisek9-m"

Cisco IOSv (revision 1.0) with  with 460137K/62464K bytes of memory.
Processor board ID 9ABCDEF1234
4 Gigabit Ethernet interfaces
`

const iosShowInterfaces = `GigabitEthernet0/0 is up, line protocol is up 
  Hardware is iGbE, address is 5254.0012.3456 (bia 5254.0012.3456)
  Description: uplink to spine1
  Internet address is 10.0.0.1/31
  MTU 1500 bytes, BW 1000000 Kbit/sec, DLY 10 usec, 
GigabitEthernet0/1 is administratively down, line protocol is down 
  Hardware is iGbE, address is 5254.0012.3457 (bia 5254.0012.3457)
  MTU 1500 bytes, BW 1000000 Kbit/sec, DLY 10 usec, 
Loopback0 is up, line protocol is up 
  Hardware is Loopback
  Internet address is 1.1.1.1/32
  MTU 1514 bytes, BW 8000000 Kbit/sec, DLY 5000 usec, 
`

func iosRunner() *fakeRunner {
	return &fakeRunner{outputs: map[string]string{
		"show version":        iosShowVersion,
		"show interfaces":     iosShowInterfaces,
		"show running-config": "Building configuration...\n\nCurrent configuration : 1234 bytes\n!\nhostname R1\n!\nend\n",
	}}
}

func TestSSHConnectUnsupportedPlatform(t *testing.T) {
	var dialed string
	s := newTestSSH(iosRunner(), &dialed)

	err := s.Connect(context.Background(), Target{Host: "10.0.0.1", Username: "admin", Password: "admin", DeviceType: "vendor_x"})

	var connErr *ConnectionError
	require.True(t, errors.As(err, &connErr))
	assert.True(t, errors.Is(err, ErrUnsupportedPlatform))
	assert.Empty(t, dialed, "must fail before dialling")
}

func TestSSHConnectRequiresCredentials(t *testing.T) {
	s := newTestSSH(iosRunner(), nil)
	err := s.Connect(context.Background(), Target{Host: "10.0.0.1", Username: "admin", DeviceType: "cisco_ios"})

	var connErr *ConnectionError
	assert.True(t, errors.As(err, &connErr))
}

func TestSSHConnectDialFailure(t *testing.T) {
	s := NewSSH(Options{})
	s.dial = func(context.Context, string, *ssh.ClientConfig) (commandRunner, error) {
		return nil, errors.New("connection refused")
	}

	err := s.Connect(context.Background(), Target{Host: "10.0.0.1", Username: "a", Password: "b", DeviceType: "linux"})
	var connErr *ConnectionError
	require.True(t, errors.As(err, &connErr))
	assert.Contains(t, err.Error(), "connection refused")

	_, err = s.Facts(context.Background())
	assert.True(t, errors.Is(err, ErrNotConnected))
}

func TestSSHConnectPort(t *testing.T) {
	var dialed string
	s := newTestSSH(iosRunner(), &dialed)

	require.NoError(t, s.Connect(context.Background(), Target{Host: "10.0.0.1", Username: "a", Password: "b", DeviceType: "cisco_ios"}))
	assert.Equal(t, "10.0.0.1:22", dialed)

	require.NoError(t, s.Connect(context.Background(), Target{Host: "10.0.0.1", Port: 2222, Username: "a", Password: "b", DeviceType: "cisco_ios"}))
	assert.Equal(t, "10.0.0.1:2222", dialed)
}

func TestSSHIOS(t *testing.T) {
	r := iosRunner()
	s := newTestSSH(r, nil)
	require.NoError(t, s.Connect(context.Background(), Target{Host: "10.0.0.1", Username: "a", Password: "b", DeviceType: "cisco_ios"}))

	facts, err := s.Facts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Facts{
		Hostname:   "R1",
		Vendor:     "Cisco",
		Model:      "IOSv",
		Serial:     "9ABCDEF1234",
		OSVersion:  "15.9(3)M6",
		Uptime:     9*24*time.Hour + 3*time.Hour + 4*time.Minute,
		Interfaces: []string{"GigabitEthernet0/0", "GigabitEthernet0/1", "Loopback0"},
	}, facts)

	ifaces, err := s.Interfaces(context.Background())
	require.NoError(t, err)
	require.Len(t, ifaces, 3)

	assert.Equal(t, InterfaceFacts{
		Name:        "GigabitEthernet0/0",
		Kind:        KindEthernet,
		Description: "uplink to spine1",
		Enabled:     true,
		Up:          true,
		MACAddress:  "52:54:00:12:34:56",
		MTU:         1500,
		SpeedKbps:   1000000,
		IPAddresses: []string{"10.0.0.1/31"},
	}, ifaces[0])
	assert.False(t, ifaces[1].Enabled)
	assert.False(t, ifaces[1].Up)
	assert.Equal(t, KindLoopback, ifaces[2].Kind)
	assert.Empty(t, ifaces[2].MACAddress)

	cfg, err := s.Config(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "!\nhostname R1\n!\nend\n", cfg)

	require.NoError(t, s.Close())
	require.NoError(t, s.Close())
	assert.Equal(t, 1, r.closed)
}

func TestSSHRequiredFactFailure(t *testing.T) {
	r := iosRunner()
	r.errs = map[string]error{"show version": errors.New("session closed")}
	s := newTestSSH(r, nil)
	require.NoError(t, s.Connect(context.Background(), Target{Host: "10.0.0.1", Username: "a", Password: "b", DeviceType: "cisco_ios"}))

	facts, err := s.Facts(context.Background())
	assert.True(t, facts.IsZero())

	var collErr *CollectionError
	require.True(t, errors.As(err, &collErr))
	assert.Equal(t, "facts", collErr.Op)
	assert.Equal(t, "10.0.0.1", collErr.Host)
}

const eosShowVersion = `{"mfgName": "Arista", "modelName": "cEOSLab", "serialNumber": "AB12CD34", "version": "4.28.0F", "uptime": 3600.5, "systemMacAddress": "00:1c:73:00:00:01"}`

const eosShowInterfaces = `{"interfaces": {
  "Ethernet10": {"name": "Ethernet10", "interfaceStatus": "disabled", "lineProtocolStatus": "down", "mtu": 1500, "bandwidth": 0, "physicalAddress": "001c.7300.000a", "interfaceAddress": []},
  "Ethernet2": {"name": "Ethernet2", "description": "to spine2", "interfaceStatus": "connected", "lineProtocolStatus": "up", "mtu": 9214, "bandwidth": 1000000000, "physicalAddress": "001c.7300.0002",
    "interfaceAddress": [{"primaryIp": {"address": "10.0.0.3", "maskLen": 31}, "secondaryIpsOrderedList": [{"address": "10.9.9.9", "maskLen": 32}]}]},
  "Loopback0": {"name": "Loopback0", "interfaceStatus": "connected", "lineProtocolStatus": "up", "mtu": 65535, "bandwidth": 0,
    "interfaceAddress": [{"primaryIp": {"address": "0.0.0.0", "maskLen": 0}}]}
}}`

func TestSSHEOS(t *testing.T) {
	r := &fakeRunner{outputs: map[string]string{
		"show version | json":    eosShowVersion,
		"show hostname | json":   `{"hostname": "leaf1", "fqdn": "leaf1.lab"}`,
		"show interfaces | json": eosShowInterfaces,
	}}
	s := newTestSSH(r, nil)
	require.NoError(t, s.Connect(context.Background(), Target{Host: "172.20.20.3", Username: "admin", Password: "admin", DeviceType: "arista_eos"}))

	facts, err := s.Facts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "leaf1", facts.Hostname)
	assert.Equal(t, "leaf1.lab", facts.FQDN)
	assert.Equal(t, "Arista", facts.Vendor)
	assert.Equal(t, "cEOSLab", facts.Model)
	assert.Equal(t, "AB12CD34", facts.Serial)
	assert.Equal(t, "4.28.0F", facts.OSVersion)
	assert.Equal(t, 3600500*time.Millisecond, facts.Uptime)
	assert.Equal(t, []string{"Ethernet2", "Ethernet10", "Loopback0"}, facts.Interfaces)

	ifaces, err := s.Interfaces(context.Background())
	require.NoError(t, err)
	require.Len(t, ifaces, 3)
	assert.Equal(t, []string{"10.0.0.3/31", "10.9.9.9/32"}, ifaces[0].IPAddresses)
	assert.Equal(t, "00:1c:73:00:00:02", ifaces[0].MACAddress)
	assert.Equal(t, 1000000, ifaces[0].SpeedKbps)
	assert.False(t, ifaces[1].Enabled)
	assert.Empty(t, ifaces[2].IPAddresses)
	assert.Equal(t, KindLoopback, ifaces[2].Kind)
}

func TestSSHEOSOptionalHostnameFailure(t *testing.T) {
	r := &fakeRunner{outputs: map[string]string{
		"show version | json":    eosShowVersion,
		"show interfaces | json": `{"interfaces": {}}`,
	}}
	s := newTestSSH(r, nil)
	require.NoError(t, s.Connect(context.Background(), Target{Host: "172.20.20.3", Username: "admin", Password: "admin", DeviceType: "arista_eos"}))

	facts, err := s.Facts(context.Background())
	require.NoError(t, err)
	assert.Empty(t, facts.Hostname)
	assert.Equal(t, "4.28.0F", facts.OSVersion)
}

const linuxIPAddr = `[
 {"ifindex":1,"ifname":"lo","flags":["LOOPBACK","UP","LOWER_UP"],"mtu":65536,"operstate":"UNKNOWN","link_type":"loopback","address":"00:00:00:00:00:00",
  "addr_info":[{"family":"inet","local":"127.0.0.1","prefixlen":8},{"family":"inet6","local":"::1","prefixlen":128}]},
 {"ifindex":12,"ifname":"eth0","flags":["BROADCAST","MULTICAST","UP","LOWER_UP"],"mtu":1500,"operstate":"UP","link_type":"ether","address":"02:42:ac:14:14:05",
  "addr_info":[{"family":"inet","local":"172.20.20.5","prefixlen":24},{"family":"inet6","local":"fe80::42:acff:fe14:1405","prefixlen":64}]},
 {"ifindex":14,"ifname":"eth1","flags":["BROADCAST","MULTICAST"],"mtu":9500,"operstate":"DOWN","link_type":"ether","address":"aa:c1:ab:00:00:01","addr_info":[]}
]`

func TestSSHLinux(t *testing.T) {
	r := &fakeRunner{
		outputs: map[string]string{
			"hostname -f 2>/dev/null || hostname": "host1\n",
			"uname -a":                            "Linux host1 6.1.0-18-amd64 #1 SMP PREEMPT_DYNAMIC x86_64 GNU/Linux\n",
			"cat /proc/uptime":                    "120.50 400.00\n",
			"ip -j addr show":                     linuxIPAddr,
			"ip addr show; ip route show":         "default via 172.20.20.1 dev eth0\n",
		},
		errs: map[string]error{"cat /etc/os-release 2>/dev/null": errors.New("exit 1")},
	}
	s := newTestSSH(r, nil)
	require.NoError(t, s.Connect(context.Background(), Target{Host: "172.20.20.5", Username: "root", Password: "root", DeviceType: "linux"}))

	facts, err := s.Facts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "host1", facts.Hostname)
	assert.Empty(t, facts.FQDN)
	assert.Equal(t, "Linux 6.1.0-18-amd64", facts.OSVersion)
	assert.Equal(t, 120500*time.Millisecond, facts.Uptime)
	assert.Equal(t, []string{"lo", "eth0", "eth1"}, facts.Interfaces)

	ifaces, err := s.Interfaces(context.Background())
	require.NoError(t, err)
	require.Len(t, ifaces, 3)

	assert.Equal(t, KindLoopback, ifaces[0].Kind)
	assert.True(t, ifaces[0].Up)
	assert.Empty(t, ifaces[0].MACAddress)
	assert.Equal(t, []string{"127.0.0.1/8", "::1/128"}, ifaces[0].IPAddresses)

	assert.Equal(t, "02:42:ac:14:14:05", ifaces[1].MACAddress)
	assert.Equal(t, []string{"172.20.20.5/24"}, ifaces[1].IPAddresses)

	assert.False(t, ifaces[2].Enabled)
	assert.False(t, ifaces[2].Up)
	assert.Equal(t, 9500, ifaces[2].MTU)

	cfg, err := s.Config(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "default via 172.20.20.1 dev eth0\n", cfg)
}

func TestParseOSRelease(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{
			name: "ubuntu",
			input: `NAME="Ubuntu"
VERSION="22.04.3 LTS (Jammy Jellyfish)"
ID=ubuntu
PRETTY_NAME="Ubuntu 22.04.3 LTS"
VERSION_ID="22.04"`,
			want: "Ubuntu 22.04.3 LTS",
		},
		{
			name:  "alpine without pretty name",
			input: "NAME=\"Alpine Linux\"\nVERSION_ID=3.19.1\n",
			want:  "Alpine Linux 3.19.1",
		},
		{name: "empty", input: "", wantErr: true},
		{name: "invalid", input: "not a valid os-release file", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var facts Facts
			err := parseOSRelease(tt.input, &facts)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, facts.OSVersion)
		})
	}
}

func TestParseHostname(t *testing.T) {
	var facts Facts
	require.NoError(t, parseHostname("spine1.lab.example\n", &facts))
	assert.Equal(t, "spine1", facts.Hostname)
	assert.Equal(t, "spine1.lab.example", facts.FQDN)

	assert.Error(t, parseHostname("  \n", &Facts{}))
}

func TestParseIOSUptime(t *testing.T) {
	tests := map[string]time.Duration{
		"4 minutes":                       4 * time.Minute,
		"1 hour, 1 minute":                time.Hour + time.Minute,
		"2 years, 1 week, 1 day, 5 hours": 2*365*24*time.Hour + 8*24*time.Hour + 5*time.Hour,
		"garbage":                         0,
	}
	for in, want := range tests {
		assert.Equal(t, want, parseIOSUptime(in), in)
	}
}

func TestParseIOSVersionUnrecognized(t *testing.T) {
	assert.Error(t, parseIOSVersion("% Invalid input detected at '^' marker.", &Facts{}))
}

func TestKindFromName(t *testing.T) {
	tests := map[string]InterfaceKind{
		"GigabitEthernet0/0": KindEthernet,
		"Loopback0":          KindLoopback,
		"lo":                 KindLoopback,
		"Port-Channel1":      KindLAG,
		"bond0":              KindLAG,
		"Tunnel10":           KindTunnel,
		"Vlan100":            KindVirtual,
		"eth1":               KindEthernet,
	}
	for in, want := range tests {
		assert.Equal(t, want, kindFromName(in), in)
	}
}

func TestSSHDeviceTypes(t *testing.T) {
	assert.Equal(t, []string{"arista_eos", "cisco_ios", "cisco_xe", "container", "host", "linux"}, SSHDeviceTypes())
}

func countRuns(r *fakeRunner, cmd string) int {
	n := 0
	for _, c := range r.ran {
		if c == cmd {
			n++
		}
	}
	return n
}

func TestSSHInterfacesRunOncePerSession(t *testing.T) {
	r := iosRunner()
	s := newTestSSH(r, nil)
	target := Target{Host: "10.0.0.1", Username: "a", Password: "b", DeviceType: "cisco_ios"}
	require.NoError(t, s.Connect(context.Background(), target))

	facts, err := s.Facts(context.Background())
	require.NoError(t, err)
	ifaces, err := s.Interfaces(context.Background())
	require.NoError(t, err)

	assert.Len(t, ifaces, len(facts.Interfaces))
	assert.Equal(t, 1, countRuns(r, "show interfaces"))

	// a new session reads the device again
	require.NoError(t, s.Close())
	require.NoError(t, s.Connect(context.Background(), target))
	_, err = s.Interfaces(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, countRuns(r, "show interfaces"))
}

func TestSSHInterfacesFailureCachedForSession(t *testing.T) {
	r := iosRunner()
	r.errs = map[string]error{"show interfaces": errors.New("timeout")}
	s := newTestSSH(r, nil)
	require.NoError(t, s.Connect(context.Background(), Target{Host: "10.0.0.1", Username: "a", Password: "b", DeviceType: "cisco_ios"}))

	facts, err := s.Facts(context.Background())
	require.NoError(t, err)
	assert.Empty(t, facts.Interfaces)

	_, err = s.Interfaces(context.Background())
	var collErr *CollectionError
	require.True(t, errors.As(err, &collErr))
	assert.Equal(t, 1, countRuns(r, "show interfaces"))
}
