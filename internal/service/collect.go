package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"labsync/internal/collector"
	"labsync/internal/domain"
	"labsync/internal/driver"
)

// ErrNoManagementAddress is returned for devices the topology gave no mgmt IP
var ErrNoManagementAddress = errors.New("device has no management address")

// CollectorFactory builds a collector for one device. collector.New satisfies it.
type CollectorFactory func(name string, target driver.Target, opts ...collector.Option) (*collector.Collector, error)

// CollectOptions selects the transport and what to retrieve
type CollectOptions struct {
	Driver        string
	DriverOptions driver.Options
	WithConfig    bool
	NewCollector  CollectorFactory
}

// Collected holds everything one session retrieved
type Collected struct {
	Facts      collector.Result[driver.Facts]
	Interfaces collector.Result[[]driver.InterfaceFacts]
	Config     collector.Result[string]
}

// Err returns the facts failure, the only retrieval the device cannot do without
func (c *Collected) Err() error {
	return c.Facts.Err
}

// CollectDevice opens one session to the device and retrieves facts,
// interfaces and optionally the running config. Connection and driver
// resolution errors are returned; retrieval failures are carried in Collected.
func CollectDevice(ctx context.Context, d *domain.Device, creds domain.Credentials, opts CollectOptions) (*Collected, error) {
	host := managementHost(d.MgmtIP)
	if host == "" {
		return nil, fmt.Errorf("%s: %w", d.Name, ErrNoManagementAddress)
	}

	deviceType := d.Driver
	if deviceType == "" {
		deviceType = d.Kind
	}

	factory := opts.NewCollector
	if factory == nil {
		factory = collector.New
	}

	c, err := factory(opts.Driver, driver.Target{
		Host:       host,
		Username:   creds.Username,
		Password:   creds.Password,
		DeviceType: deviceType,
	}, collector.WithOptions(opts.DriverOptions))
	if err != nil {
		return nil, err
	}

	out := &Collected{}
	err = c.Session(ctx, func(ctx context.Context, c *collector.Collector) error {
		out.Facts = c.Facts(ctx)
		out.Interfaces = c.Interfaces(ctx)
		if opts.WithConfig {
			out.Config = c.Config(ctx)
		}
		return nil
	})
	if err != nil {
		return out, err
	}
	return out, nil
}

// ApplyFacts copies collected facts onto the device. Detailed interfaces
// replace the device's interfaces when present, otherwise the facts
// interface name list does.
func ApplyFacts(d *domain.Device, facts driver.Facts, ifaces []driver.InterfaceFacts) error {
	if facts.Serial != "" {
		d.Serial = facts.Serial
	}
	if facts.OSVersion != "" {
		d.Version = facts.OSVersion
	}
	if facts.Hostname != "" {
		d.Hostname = facts.Hostname
	}
	if facts.FQDN != "" {
		d.FQDN = facts.FQDN
	}

	if d.DeviceType == nil && facts.Model != "" {
		d.DeviceType = domain.NewDeviceType(facts.Model, facts.Vendor)
	}
	if d.Platform == nil && d.Driver != "" {
		d.Platform = domain.NewPlatform(driver.PlatformFor(d.Driver))
	}

	var next []*domain.Interface
	switch {
	case len(ifaces) > 0:
		next = make([]*domain.Interface, 0, len(ifaces))
		for _, f := range ifaces {
			next = append(next, interfaceFromFacts(f))
		}
	case len(facts.Interfaces) > 0:
		next = make([]*domain.Interface, 0, len(facts.Interfaces))
		for _, name := range facts.Interfaces {
			next = append(next, domain.NewInterface(name))
		}
	default:
		return nil
	}

	if err := d.ReplaceInterfaces(next); err != nil {
		return err
	}

	if host := managementHost(d.MgmtIP); host != "" {
		for _, iface := range d.Interfaces() {
			if iface.HasAddress(host) {
				iface.PrimaryIP = d.MgmtIP
				break
			}
		}
	}
	return nil
}

func interfaceFromFacts(f driver.InterfaceFacts) *domain.Interface {
	iface := domain.NewInterface(f.Name)
	iface.Type = netboxInterfaceType(f.Kind, f.SpeedKbps)
	iface.Enabled = f.Enabled
	iface.Observed = true
	iface.Description = f.Description
	iface.MACAddress = f.MACAddress
	if f.MTU > 0 {
		mtu := f.MTU
		iface.MTU = &mtu
	}
	if f.SpeedKbps > 0 {
		speed := f.SpeedKbps
		iface.Speed = &speed
	}
	if len(f.IPAddresses) > 0 {
		iface.IPAddresses = append([]string(nil), f.IPAddresses...)
	}
	return iface
}

// netboxInterfaceType maps a transport-neutral kind and speed to an
// inventory interface type
func netboxInterfaceType(kind driver.InterfaceKind, speedKbps int) string {
	switch kind {
	case driver.KindEthernet:
		switch mbps := speedKbps / 1000; {
		case mbps == 0:
			return domain.DefaultInterfaceType
		case mbps <= 100:
			return "100base-tx"
		case mbps <= 1000:
			return "1000base-t"
		case mbps <= 10000:
			return "10gbase-x-sfpp"
		case mbps <= 25000:
			return "25gbase-x-sfp28"
		case mbps <= 40000:
			return "40gbase-x-qsfpp"
		case mbps <= 100000:
			return "100gbase-x-qsfp28"
		}
		return domain.DefaultInterfaceType
	case driver.KindLoopback, driver.KindVirtual, driver.KindTunnel:
		return "virtual"
	case driver.KindLAG:
		return "lag"
	}
	return domain.DefaultInterfaceType
}

// managementHost strips any prefix length from a management address
func managementHost(mgmt string) string {
	host, _, _ := strings.Cut(strings.TrimSpace(mgmt), "/")
	return host
}
