package driver

import (
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
)

// FactCommand defines a command to run over SSH for fact gathering
type FactCommand struct {
	Name     string                                 // e.g. "version"
	Command  string                                 // e.g. "show version"
	Required bool                                   // failure fails the whole Facts call
	Parser   func(output string, facts *Facts) error // merges parsed output into facts
}

type sshProfile struct {
	vendor            string
	facts             []FactCommand
	interfacesCommand string
	parseInterfaces   func(output string) ([]InterfaceFacts, error)
	configCommand     string
}

var iosProfile = &sshProfile{
	vendor: "Cisco",
	facts: []FactCommand{
		{Name: "version", Command: "show version", Required: true, Parser: parseIOSVersion},
	},
	interfacesCommand: "show interfaces",
	parseInterfaces:   parseIOSInterfaces,
	configCommand:     "show running-config",
}

var eosProfile = &sshProfile{
	vendor: "Arista",
	facts: []FactCommand{
		{Name: "version", Command: "show version | json", Required: true, Parser: parseEOSVersion},
		{Name: "hostname", Command: "show hostname | json", Parser: parseEOSHostname},
	},
	interfacesCommand: "show interfaces | json",
	parseInterfaces:   parseEOSInterfaces,
	configCommand:     "show running-config",
}

var linuxProfile = &sshProfile{
	facts: []FactCommand{
		{Name: "hostname", Command: "hostname -f 2>/dev/null || hostname", Required: true, Parser: parseHostname},
		{Name: "os_release", Command: "cat /etc/os-release 2>/dev/null", Parser: parseOSRelease},
		{Name: "uname", Command: "uname -a", Parser: parseUname},
		{Name: "uptime", Command: "cat /proc/uptime", Parser: parseProcUptime},
	},
	interfacesCommand: "ip -j addr show",
	parseInterfaces:   parseIPAddrJSON,
	configCommand:     "ip addr show; ip route show",
}

// sshProfiles is keyed by transport device type
var sshProfiles = map[string]*sshProfile{
	"cisco_ios":  iosProfile,
	"cisco_xe":   iosProfile,
	"arista_eos": eosProfile,
	"linux":      linuxProfile,
	"host":       linuxProfile,
	"container":  linuxProfile,
}

// SSHDeviceTypes lists device types the ssh driver has command profiles for
func SSHDeviceTypes() []string {
	types := make([]string, 0, len(sshProfiles))
	for t := range sshProfiles {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

var (
	iosVersionRe = regexp.MustCompile(`Version ([^ ,]+)`)
	iosUptimeRe  = regexp.MustCompile(`(?m)^(\S+) uptime is (.+?)\s*$`)
	iosSerialRe  = regexp.MustCompile(`Processor board ID (\S+)`)
	iosModelRe   = regexp.MustCompile(`(?m)^[Cc]isco (\S+) \(.+\) .*(?:processor|with)`)

	iosIfHeaderRe = regexp.MustCompile(`^(\S+) is (up|down|administratively down|deleted)(?:, line protocol is (\S+))?`)
	iosHardwareRe = regexp.MustCompile(`Hardware is ([^,]+)(?:, address is ([0-9a-fA-F.]+))?`)
	iosDescrRe    = regexp.MustCompile(`^\s+Description: (.*?)\s*$`)
	iosInetRe     = regexp.MustCompile(`Internet address is (\S+)`)
	iosMTURe      = regexp.MustCompile(`MTU (\d+) bytes, BW (\d+) Kbit`)
)

// parseIOSVersion parses IOS and IOS-XE "show version"
func parseIOSVersion(output string, facts *Facts) error {
	version := iosVersionRe.FindStringSubmatch(output)
	uptime := iosUptimeRe.FindStringSubmatch(output)
	if version == nil && uptime == nil {
		return errors.New("unrecognized show version output")
	}

	if version != nil {
		facts.OSVersion = version[1]
	}
	if uptime != nil {
		facts.Hostname = uptime[1]
		facts.Uptime = parseIOSUptime(uptime[2])
	}
	if m := iosSerialRe.FindStringSubmatch(output); m != nil {
		facts.Serial = m[1]
	}
	if m := iosModelRe.FindStringSubmatch(output); m != nil {
		facts.Model = m[1]
	}

	return nil
}

// parseIOSUptime parses "1 week, 2 days, 3 hours, 4 minutes"
func parseIOSUptime(s string) time.Duration {
	units := map[string]time.Duration{
		"year":   365 * 24 * time.Hour,
		"week":   7 * 24 * time.Hour,
		"day":    24 * time.Hour,
		"hour":   time.Hour,
		"minute": time.Minute,
		"second": time.Second,
	}

	var total time.Duration
	for _, part := range strings.Split(s, ",") {
		fields := strings.Fields(part)
		if len(fields) != 2 {
			continue
		}
		n, err := strconv.Atoi(fields[0])
		if err != nil {
			continue
		}
		if unit, ok := units[strings.TrimSuffix(fields[1], "s")]; ok {
			total += time.Duration(n) * unit
		}
	}
	return total
}

// parseIOSInterfaces parses "show interfaces" blocks
func parseIOSInterfaces(output string) ([]InterfaceFacts, error) {
	var out []InterfaceFacts
	var cur *InterfaceFacts

	flush := func() {
		if cur != nil {
			out = append(out, *cur)
		}
	}

	for _, line := range strings.Split(strings.ReplaceAll(output, "\r\n", "\n"), "\n") {
		if m := iosIfHeaderRe.FindStringSubmatch(line); m != nil {
			flush()
			cur = &InterfaceFacts{
				Name:    m[1],
				Kind:    kindFromName(m[1]),
				Enabled: m[2] != "administratively down" && m[2] != "deleted",
				Up:      m[2] == "up" && m[3] == "up",
			}
			continue
		}
		if cur == nil {
			continue
		}

		if m := iosHardwareRe.FindStringSubmatch(line); m != nil && m[2] != "" {
			cur.MACAddress = normalizeMAC(m[2])
		}
		if m := iosDescrRe.FindStringSubmatch(line); m != nil {
			cur.Description = m[1]
		}
		if m := iosInetRe.FindStringSubmatch(line); m != nil {
			cur.IPAddresses = append(cur.IPAddresses, m[1])
		}
		if m := iosMTURe.FindStringSubmatch(line); m != nil {
			cur.MTU, _ = strconv.Atoi(m[1])
			cur.SpeedKbps, _ = strconv.Atoi(m[2])
		}
	}
	flush()

	if len(out) == 0 && strings.TrimSpace(output) != "" {
		return nil, errors.New("unrecognized show interfaces output")
	}
	return out, nil
}

type eosVersion struct {
	MfgName      string  `json:"mfgName"`
	ModelName    string  `json:"modelName"`
	SerialNumber string  `json:"serialNumber"`
	Version      string  `json:"version"`
	Uptime       float64 `json:"uptime"`
}

// parseEOSVersion parses "show version | json"
func parseEOSVersion(output string, facts *Facts) error {
	var v eosVersion
	if err := json.Unmarshal([]byte(output), &v); err != nil {
		return fmt.Errorf("decode show version: %w", err)
	}
	if v.Version == "" && v.ModelName == "" {
		return errors.New("show version returned no version or model")
	}

	if v.MfgName != "" {
		facts.Vendor = v.MfgName
	}
	facts.Model = v.ModelName
	facts.Serial = v.SerialNumber
	facts.OSVersion = v.Version
	facts.Uptime = time.Duration(v.Uptime * float64(time.Second))

	return nil
}

// parseEOSHostname parses "show hostname | json"
func parseEOSHostname(output string, facts *Facts) error {
	var v struct {
		Hostname string `json:"hostname"`
		FQDN     string `json:"fqdn"`
	}
	if err := json.Unmarshal([]byte(output), &v); err != nil {
		return fmt.Errorf("decode show hostname: %w", err)
	}
	facts.Hostname = v.Hostname
	if v.FQDN != "" && v.FQDN != v.Hostname {
		facts.FQDN = v.FQDN
	}
	return nil
}

type eosAddress struct {
	Address string `json:"address"`
	MaskLen int    `json:"maskLen"`
}

type eosInterface struct {
	Name               string `json:"name"`
	Description        string `json:"description"`
	InterfaceStatus    string `json:"interfaceStatus"`
	LineProtocolStatus string `json:"lineProtocolStatus"`
	MTU                int    `json:"mtu"`
	Bandwidth          int64  `json:"bandwidth"`
	PhysicalAddress    string `json:"physicalAddress"`
	InterfaceAddress   []struct {
		PrimaryIP   eosAddress   `json:"primaryIp"`
		SecondaryIP []eosAddress `json:"secondaryIpsOrderedList"`
	} `json:"interfaceAddress"`
}

// parseEOSInterfaces parses "show interfaces | json"
func parseEOSInterfaces(output string) ([]InterfaceFacts, error) {
	var v struct {
		Interfaces map[string]eosInterface `json:"interfaces"`
	}
	if err := json.Unmarshal([]byte(output), &v); err != nil {
		return nil, fmt.Errorf("decode show interfaces: %w", err)
	}

	names := make([]string, 0, len(v.Interfaces))
	for name := range v.Interfaces {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return naturalLess(names[i], names[j]) })

	out := make([]InterfaceFacts, 0, len(names))
	for _, name := range names {
		iface := v.Interfaces[name]

		var addrs []string
		for _, a := range iface.InterfaceAddress {
			for _, ip := range append([]eosAddress{a.PrimaryIP}, a.SecondaryIP...) {
				if ip.Address == "" || ip.Address == "0.0.0.0" {
					continue
				}
				addrs = append(addrs, fmt.Sprintf("%s/%d", ip.Address, ip.MaskLen))
			}
		}

		out = append(out, InterfaceFacts{
			Name:        name,
			Kind:        kindFromName(name),
			Description: iface.Description,
			Enabled:     iface.InterfaceStatus != "disabled",
			Up:          iface.LineProtocolStatus == "up",
			MACAddress:  normalizeMAC(iface.PhysicalAddress),
			MTU:         iface.MTU,
			SpeedKbps:   int(iface.Bandwidth / 1000),
			IPAddresses: addrs,
		})
	}

	return out, nil
}

// parseHostname extracts hostname from hostname command
func parseHostname(output string, facts *Facts) error {
	hostname := strings.TrimSpace(output)
	if hostname == "" {
		return errors.New("empty hostname")
	}

	short, _, found := strings.Cut(hostname, ".")
	facts.Hostname = short
	if found {
		facts.FQDN = hostname
	}
	return nil
}

// parseOSRelease parses /etc/os-release
// Format: KEY=value or KEY="value"
func parseOSRelease(output string, facts *Facts) error {
	osInfo := make(map[string]string)

	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		osInfo[strings.TrimSpace(key)] = strings.Trim(strings.TrimSpace(value), "\"'")
	}

	if len(osInfo) == 0 {
		return errors.New("no OS information found")
	}

	switch {
	case osInfo["PRETTY_NAME"] != "":
		facts.OSVersion = osInfo["PRETTY_NAME"]
	case osInfo["NAME"] != "":
		facts.OSVersion = strings.TrimSpace(osInfo["NAME"] + " " + osInfo["VERSION_ID"])
	default:
		return errors.New("os-release has no NAME")
	}
	return nil
}

// parseUname fills the OS version from the kernel release when os-release was missing
// Format: Linux hostname 5.15.0-76-generic #83-Ubuntu SMP ... x86_64 GNU/Linux
func parseUname(output string, facts *Facts) error {
	parts := strings.Fields(output)
	if len(parts) < 3 {
		return errors.New("invalid uname output format")
	}
	if facts.OSVersion == "" {
		facts.OSVersion = parts[0] + " " + parts[2]
	}
	return nil
}

// parseProcUptime parses /proc/uptime, "12345.67 54321.00"
func parseProcUptime(output string, facts *Facts) error {
	fields := strings.Fields(output)
	if len(fields) == 0 {
		return errors.New("empty uptime")
	}
	secs, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return fmt.Errorf("parse uptime: %w", err)
	}
	facts.Uptime = time.Duration(secs * float64(time.Second))
	return nil
}

type ipLink struct {
	IfName    string   `json:"ifname"`
	Flags     []string `json:"flags"`
	MTU       int      `json:"mtu"`
	OperState string   `json:"operstate"`
	LinkType  string   `json:"link_type"`
	Address   string   `json:"address"`
	AddrInfo  []struct {
		Family    string `json:"family"`
		Local     string `json:"local"`
		PrefixLen int    `json:"prefixlen"`
	} `json:"addr_info"`
}

// parseIPAddrJSON parses "ip -j addr show"
func parseIPAddrJSON(output string) ([]InterfaceFacts, error) {
	var links []ipLink
	if err := json.Unmarshal([]byte(output), &links); err != nil {
		return nil, fmt.Errorf("decode ip addr: %w", err)
	}

	out := make([]InterfaceFacts, 0, len(links))
	for _, l := range links {
		flags := make(map[string]bool, len(l.Flags))
		for _, f := range l.Flags {
			flags[f] = true
		}

		var addrs []string
		for _, a := range l.AddrInfo {
			if a.Local == "" || strings.HasPrefix(a.Local, "fe80:") {
				continue
			}
			addrs = append(addrs, fmt.Sprintf("%s/%d", a.Local, a.PrefixLen))
		}

		kind := kindFromName(l.IfName)
		if l.LinkType == "loopback" {
			kind = KindLoopback
		}

		mac := ""
		if l.LinkType == "ether" {
			mac = normalizeMAC(l.Address)
		}

		out = append(out, InterfaceFacts{
			Name:        l.IfName,
			Kind:        kind,
			Enabled:     flags["UP"],
			Up:          l.OperState == "UP" || (l.OperState == "UNKNOWN" && flags["LOWER_UP"]),
			MACAddress:  mac,
			MTU:         l.MTU,
			IPAddresses: addrs,
		})
	}

	return out, nil
}

// kindFromName classifies an interface by its conventional name
func kindFromName(name string) InterfaceKind {
	n := strings.ToLower(name)
	switch {
	case n == "lo" || strings.HasPrefix(n, "loopback"):
		return KindLoopback
	case strings.HasPrefix(n, "port-channel"), strings.HasPrefix(n, "bond"):
		return KindLAG
	case strings.HasPrefix(n, "tunnel"), strings.HasPrefix(n, "gre"), strings.HasPrefix(n, "wg"):
		return KindTunnel
	case strings.HasPrefix(n, "vlan"), strings.HasPrefix(n, "null"), strings.HasPrefix(n, "br"),
		strings.HasPrefix(n, "veth"), strings.HasPrefix(n, "docker"), strings.HasPrefix(n, "vxlan"):
		return KindVirtual
	default:
		return KindEthernet
	}
}

// normalizeMAC converts any notation net.ParseMAC accepts to colon form
func normalizeMAC(s string) string {
	mac, err := net.ParseMAC(strings.TrimSpace(s))
	if err != nil {
		return ""
	}
	return mac.String()
}

var digitsRe = regexp.MustCompile(`\d+|\D+`)

// naturalLess orders Ethernet2 before Ethernet10
func naturalLess(a, b string) bool {
	ca, cb := digitsRe.FindAllString(a, -1), digitsRe.FindAllString(b, -1)
	for i := 0; i < len(ca) && i < len(cb); i++ {
		if ca[i] == cb[i] {
			continue
		}
		na, errA := strconv.Atoi(ca[i])
		nb, errB := strconv.Atoi(cb[i])
		if errA == nil && errB == nil {
			return na < nb
		}
		return ca[i] < cb[i]
	}
	return len(ca) < len(cb)
}
