package driver

import (
	"regexp"
	"strconv"
	"strings"
)

// deviceTypePlatforms maps transport device-type strings to facts platforms
var deviceTypePlatforms = map[string]string{
	"cisco_ios":     "ios",
	"cisco_nxos":    "nxos_ssh",
	"arista_eos":    "eos",
	"juniper":       "junos",
	"juniper_junos": "junos",
}

// PlatformFor maps a device type to its facts platform. Unknown types pass through.
func PlatformFor(deviceType string) string {
	if p, ok := deviceTypePlatforms[deviceType]; ok {
		return p
	}
	return deviceType
}

// snmpProfile carries per-platform hints for SNMP facts normalization
type snmpProfile struct {
	vendor  string
	version *regexp.Regexp
}

var genericVersion = regexp.MustCompile(`(?i)version ([^ ,]+)`)

var snmpProfiles = map[string]snmpProfile{
	"ios":      {vendor: "Cisco", version: regexp.MustCompile(`Version ([^ ,]+)`)},
	"nxos_ssh": {vendor: "Cisco", version: regexp.MustCompile(`Version ([^ ,]+)`)},
	"eos":      {vendor: "Arista", version: regexp.MustCompile(`EOS version ([^ ,]+)`)},
	"junos":    {vendor: "Juniper", version: regexp.MustCompile(`JUNOS ([^ ,\]]+)`)},
}

func profileFor(platform string) snmpProfile {
	if p, ok := snmpProfiles[platform]; ok {
		return p
	}
	return snmpProfile{version: genericVersion}
}

// enterpriseVendors maps IANA private enterprise numbers to vendor names
var enterpriseVendors = map[int]string{
	9:     "Cisco",
	2636:  "Juniper",
	8072:  "Net-SNMP",
	30065: "Arista",
	6527:  "Nokia",
	12356: "Fortinet",
	25461: "Palo Alto Networks",
}

const enterprisesPrefix = "1.3.6.1.4.1."

// vendorFromObjectID extracts the vendor from a sysObjectID value
func vendorFromObjectID(oid string) string {
	oid = strings.TrimPrefix(oid, ".")
	rest, ok := strings.CutPrefix(oid, enterprisesPrefix)
	if !ok {
		return ""
	}
	num, _, _ := strings.Cut(rest, ".")
	n, err := strconv.Atoi(num)
	if err != nil {
		return ""
	}
	return enterpriseVendors[n]
}

func (p snmpProfile) osVersion(sysDescr string) string {
	if m := p.version.FindStringSubmatch(sysDescr); len(m) == 2 {
		return m[1]
	}
	return ""
}
