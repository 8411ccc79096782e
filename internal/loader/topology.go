// Package loader reads containerlab topology files into site and device entities
package loader

import (
	"errors"
	"fmt"
	"net/netip"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"labsync/internal/domain"
)

// RoleLabel is the node label that assigns a device role
const RoleLabel = "labsync.role"

var (
	// ErrNoName is returned for a topology without a lab name
	ErrNoName = errors.New("topology has no name")
	// ErrNoNodes is returned for a topology without nodes
	ErrNoNodes = errors.New("topology has no nodes")
)

// kindDrivers maps containerlab node kinds to transport device types
var kindDrivers = map[string]string{
	"linux":      "linux",
	"host":       "host",
	"container":  "container",
	"cisco_iol":  "cisco_ios",
	"arista_eos": "arista_eos",
}

// MapKind returns the transport device type for a node kind. Unknown kinds pass through.
func MapKind(kind string) string {
	if d, ok := kindDrivers[kind]; ok {
		return d
	}
	return kind
}

// Kinds lists the node kinds with a known device type mapping
func Kinds() []string {
	kinds := make([]string, 0, len(kindDrivers))
	for k := range kindDrivers {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}

// Node is one device extracted from the topology
type Node struct {
	Name   string            `json:"name" yaml:"name"`
	Kind   string            `json:"kind" yaml:"kind"`
	Driver string            `json:"driver" yaml:"driver"`
	IP     string            `json:"ip,omitempty" yaml:"ip,omitempty"`
	Image  string            `json:"image,omitempty" yaml:"image,omitempty"`
	Labels map[string]string `json:"labels,omitempty" yaml:"labels,omitempty"`
}

// Topology is the device list of a lab in file order
type Topology struct {
	Name  string `json:"name" yaml:"name"`
	Nodes []Node `json:"nodes" yaml:"nodes"`
}

// topologyYAML represents the parts of a .clab.yml file we read
type topologyYAML struct {
	Name     string `yaml:"name"`
	Topology struct {
		Defaults nodeYAML  `yaml:"defaults"`
		Nodes    yaml.Node `yaml:"nodes"`
	} `yaml:"topology"`
}

// nodeYAML represents a node (or the defaults block)
type nodeYAML struct {
	Kind     string            `yaml:"kind"`
	Image    string            `yaml:"image"`
	MgmtIPv4 string            `yaml:"mgmt-ipv4"`
	Labels   map[string]string `yaml:"labels"`
}

// LoadTopology loads a topology from a file
func LoadTopology(path string) (*Topology, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	return ParseTopology(data)
}

// ParseTopology parses a containerlab topology from YAML bytes. Nodes keep
// their file order; kind falls back to topology.defaults.kind.
func ParseTopology(data []byte) (*Topology, error) {
	var y topologyYAML
	if err := yaml.Unmarshal(data, &y); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if strings.TrimSpace(y.Name) == "" {
		return nil, ErrNoName
	}

	nodes := &y.Topology.Nodes
	if nodes.Kind == 0 || len(nodes.Content) == 0 {
		return nil, ErrNoNodes
	}
	if nodes.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("topology.nodes must be a mapping, line %d", nodes.Line)
	}

	defaults := y.Topology.Defaults
	topo := &Topology{Name: y.Name}

	// mapping content alternates key, value
	for i := 0; i+1 < len(nodes.Content); i += 2 {
		key, value := nodes.Content[i], nodes.Content[i+1]

		var n nodeYAML
		if err := value.Decode(&n); err != nil {
			return nil, fmt.Errorf("node %s: %w", key.Value, err)
		}

		node, err := convertNode(key.Value, n, defaults)
		if err != nil {
			return nil, err
		}
		topo.Nodes = append(topo.Nodes, node)
	}

	return topo, nil
}

func convertNode(name string, n, defaults nodeYAML) (Node, error) {
	kind := n.Kind
	if kind == "" {
		kind = defaults.Kind
	}
	if kind == "" {
		return Node{}, fmt.Errorf("node %s has no kind and topology has no default kind", name)
	}

	if n.MgmtIPv4 != "" {
		if _, err := parseAddr(n.MgmtIPv4); err != nil {
			return Node{}, fmt.Errorf("node %s: invalid mgmt-ipv4 %q: %w", name, n.MgmtIPv4, err)
		}
	}

	image := n.Image
	if image == "" {
		image = defaults.Image
	}

	labels := make(map[string]string, len(defaults.Labels)+len(n.Labels))
	for k, v := range defaults.Labels {
		labels[k] = v
	}
	for k, v := range n.Labels {
		labels[k] = v
	}
	if len(labels) == 0 {
		labels = nil
	}

	return Node{
		Name:   name,
		Kind:   kind,
		Driver: MapKind(kind),
		IP:     n.MgmtIPv4,
		Image:  image,
		Labels: labels,
	}, nil
}

// parseAddr accepts an IPv4 address with or without a prefix length
func parseAddr(s string) (netip.Addr, error) {
	var addr netip.Addr
	if strings.Contains(s, "/") {
		p, err := netip.ParsePrefix(s)
		if err != nil {
			return netip.Addr{}, err
		}
		addr = p.Addr()
	} else {
		a, err := netip.ParseAddr(s)
		if err != nil {
			return netip.Addr{}, err
		}
		addr = a
	}
	if !addr.Is4() {
		return netip.Addr{}, errors.New("not an IPv4 address")
	}
	return addr, nil
}

// BuildSite creates a site named after the lab and joins one device per node
func BuildSite(topo *Topology) (*domain.Site, error) {
	site := domain.NewSite(topo.Name)

	for _, n := range topo.Nodes {
		d := domain.NewDevice(n.Name)
		d.Kind = n.Kind
		d.Driver = n.Driver
		d.MgmtIP = n.IP
		if role := n.Labels[RoleLabel]; role != "" {
			d.Role = domain.NewDeviceRole(role)
		}

		if err := d.JoinSite(site); err != nil {
			return nil, err
		}
	}

	return site, nil
}
