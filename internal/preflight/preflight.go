// Package preflight checks that device management ports answer before a
// collection session is attempted
package preflight

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/Ullaakut/nmap/v3"
)

// Checker probes one management port on a set of hosts with nmap
type Checker struct {
	port              int
	udp               bool
	timeout           time.Duration
	skipHostDiscovery bool
	scan              func(ctx context.Context, opts ...nmap.Option) (*nmap.Run, error)
}

// Option is a functional option for configuring Checker
type Option func(*Checker)

// WithPort sets the port to probe
func WithPort(port int) Option {
	return func(c *Checker) {
		c.port = port
	}
}

// WithUDP probes the port over UDP (-sU). Requires root.
func WithUDP() Option {
	return func(c *Checker) {
		c.udp = true
	}
}

// WithTimeout bounds the whole scan
func WithTimeout(d time.Duration) Option {
	return func(c *Checker) {
		c.timeout = d
	}
}

// WithSkipHostDiscovery treats all hosts as online (-Pn).
// Container labs commonly drop ICMP.
func WithSkipHostDiscovery(skip bool) Option {
	return func(c *Checker) {
		c.skipHostDiscovery = skip
	}
}

// New creates a checker probing TCP/22 by default
func New(opts ...Option) *Checker {
	c := &Checker{
		port:              22,
		timeout:           time.Minute,
		skipHostDiscovery: true,
		scan:              runNmap,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Available checks if the nmap binary exists
func (c *Checker) Available(ctx context.Context) bool {
	_, err := c.scan(ctx, nmap.WithTargets("localhost"), nmap.WithListScan())
	return err == nil
}

// Reachable reports, per host, whether the management port answered.
// Hosts may carry a prefix length; it is ignored.
func (c *Checker) Reachable(ctx context.Context, hosts []string) (map[string]bool, error) {
	if c.port < 1 || c.port > 65535 {
		return nil, fmt.Errorf("invalid port number: %d", c.port)
	}

	targets := make([]string, 0, len(hosts))
	for _, h := range hosts {
		if ip := hostAddr(h); ip != "" {
			targets = append(targets, ip)
		}
	}
	if len(targets) == 0 {
		return map[string]bool{}, nil
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	opts := []nmap.Option{
		nmap.WithTargets(targets...),
		nmap.WithPorts(strconv.Itoa(c.port)),
	}
	if c.udp {
		opts = append(opts, nmap.WithUDPScan())
	}
	if c.skipHostDiscovery {
		opts = append(opts, nmap.WithSkipHostDiscovery())
	}

	run, err := c.scan(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("scan failed: %w", err)
	}

	return c.processResults(run, targets), nil
}

func (c *Checker) processResults(run *nmap.Run, targets []string) map[string]bool {
	reachable := make(map[string]bool, len(targets))
	for _, t := range targets {
		reachable[t] = false
	}
	if run == nil {
		return reachable
	}

	for _, host := range run.Hosts {
		if host.Status.State != "up" && !c.skipHostDiscovery {
			continue
		}

		for _, addr := range host.Addresses {
			if addr.AddrType != "ipv4" && addr.AddrType != "ipv6" {
				continue
			}
			if _, ok := reachable[addr.Addr]; !ok {
				continue
			}
			reachable[addr.Addr] = c.portOpen(host.Ports)
		}
	}

	return reachable
}

func (c *Checker) portOpen(ports []nmap.Port) bool {
	for _, p := range ports {
		if int(p.ID) != c.port {
			continue
		}
		switch p.State.State {
		case "open":
			return true
		case "open|filtered":
			return c.udp
		}
	}
	return false
}

// hostAddr strips an optional prefix length and validates the address
func hostAddr(h string) string {
	host, _, _ := strings.Cut(strings.TrimSpace(h), "/")
	ip := net.ParseIP(host)
	if ip == nil {
		return ""
	}
	return ip.String()
}

func runNmap(ctx context.Context, opts ...nmap.Option) (*nmap.Run, error) {
	scanner, err := nmap.NewScanner(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create scanner: %w", err)
	}

	result, _, err := scanner.Run()
	if err != nil {
		return nil, err
	}
	return result, nil
}
