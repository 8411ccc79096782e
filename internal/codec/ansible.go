package codec

import (
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"labsync/internal/domain"
)

// networkOS maps transport device types to Ansible network_os values
var networkOS = map[string]string{
	"cisco_ios":     "cisco.ios.ios",
	"cisco_xe":      "cisco.ios.ios",
	"cisco_nxos":    "cisco.nxos.nxos",
	"arista_eos":    "arista.eos.eos",
	"juniper":       "junipernetworks.junos.junos",
	"juniper_junos": "junipernetworks.junos.junos",
}

// AnsibleCodec exports a site as an Ansible inventory grouped by node kind
type AnsibleCodec struct{}

// NewAnsibleCodec creates a new Ansible codec
func NewAnsibleCodec() *AnsibleCodec {
	return &AnsibleCodec{}
}

// Format returns the codec format identifier
func (c *AnsibleCodec) Format() string {
	return "ansible-inventory"
}

// ansibleInventory represents the Ansible inventory structure
type ansibleInventory struct {
	All ansibleGroup `yaml:"all"`
}

type ansibleGroup struct {
	Children map[string]ansibleGroupDef `yaml:"children,omitempty"`
	Vars     map[string]interface{}     `yaml:"vars,omitempty"`
}

type ansibleGroupDef struct {
	Hosts map[string]ansibleHost `yaml:"hosts,omitempty"`
	Vars  map[string]interface{} `yaml:"vars,omitempty"`
}

type ansibleHost struct {
	AnsibleHost string                 `yaml:"ansible_host,omitempty"`
	Vars        map[string]interface{} `yaml:",inline"`
}

// Export writes the devices of a *domain.Site as an inventory
func (c *AnsibleCodec) Export(v any, w io.Writer) error {
	site, ok := v.(*domain.Site)
	if !ok || site == nil {
		return fmt.Errorf("ansible inventory export needs a site, got %T", v)
	}

	inv := ansibleInventory{
		All: ansibleGroup{
			Children: make(map[string]ansibleGroupDef),
			Vars:     map[string]interface{}{"labsync_site": site.Slug},
		},
	}

	for _, d := range site.Devices() {
		group := groupName(d.Kind)
		g, exists := inv.All.Children[group]
		if !exists {
			g = ansibleGroupDef{Hosts: make(map[string]ansibleHost)}
			if nos, ok := networkOS[d.Driver]; ok {
				g.Vars = map[string]interface{}{
					"ansible_network_os": nos,
					"ansible_connection": "ansible.netcommon.network_cli",
				}
			}
		}
		g.Hosts[d.Name] = c.deviceToHost(d)
		inv.All.Children[group] = g
	}

	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(&inv); err != nil {
		return fmt.Errorf("failed to encode Ansible inventory: %w", err)
	}
	return encoder.Close()
}

// deviceToHost converts a device to an Ansible host entry
func (c *AnsibleCodec) deviceToHost(d *domain.Device) ansibleHost {
	host := ansibleHost{Vars: make(map[string]interface{})}

	if d.MgmtIP != "" {
		addr, _, _ := strings.Cut(d.MgmtIP, "/")
		host.AnsibleHost = addr
	}
	if d.Serial != "" {
		host.Vars["serial"] = d.Serial
	}
	if d.Version != "" {
		host.Vars["os_version"] = d.Version
	}
	if d.Role != nil {
		host.Vars["role"] = d.Role.Slug
	}
	if d.ID != nil {
		host.Vars["inventory_id"] = *d.ID
	}

	return host
}

// groupName turns a node kind into a valid Ansible group name
func groupName(kind string) string {
	if kind == "" {
		return "ungrouped"
	}
	return strings.NewReplacer("-", "_", ".", "_", " ", "_").Replace(strings.ToLower(kind))
}
