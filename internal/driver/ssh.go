package driver

import (
	"context"
	"fmt"
	"strings"
)

// SSH collects facts by running vendor CLI commands over SSH
type SSH struct {
	opts Options
	dial dialFunc

	runner  commandRunner
	target  Target
	profile *sshProfile

	// interface command output, parsed once per session
	ifaces    []InterfaceFacts
	ifacesErr error
	ifacesRan bool
}

// NewSSH creates an unconnected SSH driver
func NewSSH(opts Options) *SSH {
	opts = opts.withDefaults()
	return &SSH{
		opts: opts,
		dial: dialSSH(opts.ConnectTimeout),
	}
}

// Name returns the driver identifier
func (s *SSH) Name() string {
	return "ssh"
}

// Connect selects the command profile for the device type and dials.
// Unknown device types fail before any network I/O.
func (s *SSH) Connect(ctx context.Context, t Target) error {
	if err := s.Close(); err != nil {
		return &ConnectionError{Driver: s.Name(), Host: t.Host, Err: err}
	}

	profile, ok := sshProfiles[strings.ToLower(t.DeviceType)]
	if !ok {
		return &ConnectionError{
			Driver: s.Name(),
			Host:   t.Host,
			Err:    fmt.Errorf("%w: %q", ErrUnsupportedPlatform, t.DeviceType),
		}
	}

	config, err := buildSSHConfig(t, s.opts.ConnectTimeout)
	if err != nil {
		return &ConnectionError{Driver: s.Name(), Host: t.Host, Err: err}
	}

	port := t.Port
	if port == 0 {
		port = s.opts.SSHPort
	}

	runner, err := s.dial(ctx, sshAddr(t.Host, port), config)
	if err != nil {
		return &ConnectionError{Driver: s.Name(), Host: t.Host, Err: err}
	}

	s.runner = runner
	s.target = t
	s.profile = profile

	return nil
}

// Facts runs the profile's fact commands. Failure of a required command
// fails the call; optional commands are best effort.
func (s *SSH) Facts(ctx context.Context) (Facts, error) {
	if s.runner == nil {
		return Facts{}, s.collectionErr("facts", ErrNotConnected)
	}

	var facts Facts
	facts.Vendor = s.profile.vendor

	for _, fc := range s.profile.facts {
		out, err := s.run(ctx, fc.Command)
		if err == nil {
			err = fc.Parser(out, &facts)
		}
		if err != nil && fc.Required {
			return Facts{}, s.collectionErr("facts", fmt.Errorf("%s: %w", fc.Name, err))
		}
	}

	if ifaces, err := s.interfaces(ctx); err == nil {
		for _, iface := range ifaces {
			facts.Interfaces = append(facts.Interfaces, iface.Name)
		}
	}

	return facts, nil
}

// Interfaces runs the profile's interface command
func (s *SSH) Interfaces(ctx context.Context) ([]InterfaceFacts, error) {
	if s.runner == nil {
		return nil, s.collectionErr("interfaces", ErrNotConnected)
	}

	ifaces, err := s.interfaces(ctx)
	if err != nil {
		return nil, s.collectionErr("interfaces", err)
	}
	return ifaces, nil
}

func (s *SSH) interfaces(ctx context.Context) ([]InterfaceFacts, error) {
	if s.ifacesRan {
		return s.ifaces, s.ifacesErr
	}

	var ifaces []InterfaceFacts
	out, err := s.run(ctx, s.profile.interfacesCommand)
	if err == nil {
		ifaces, err = s.profile.parseInterfaces(out)
	}
	if err != nil {
		ifaces = nil
	}
	// a cancelled context is retried on the next call
	if ctx.Err() == nil {
		s.ifaces = ifaces
		s.ifacesRan = true
		s.ifacesErr = err
	}
	return ifaces, err
}

// Config returns the running configuration
func (s *SSH) Config(ctx context.Context) (string, error) {
	if s.runner == nil {
		return "", s.collectionErr("config", ErrNotConnected)
	}

	out, err := s.run(ctx, s.profile.configCommand)
	if err != nil {
		return "", s.collectionErr("config", err)
	}
	return cleanConfig(out), nil
}

// Close terminates the SSH connection
func (s *SSH) Close() error {
	if s.runner == nil {
		return nil
	}
	err := s.runner.Close()
	s.runner = nil
	s.ifaces, s.ifacesErr, s.ifacesRan = nil, nil, false
	return err
}

func (s *SSH) run(ctx context.Context, cmd string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.opts.CommandTimeout)
	defer cancel()
	return s.runner.Run(ctx, cmd)
}

func (s *SSH) collectionErr(op string, err error) error {
	return &CollectionError{Driver: s.Name(), Host: s.target.Host, Op: op, Err: err}
}

// cleanConfig drops the banner lines IOS prints before the configuration
func cleanConfig(out string) string {
	lines := strings.Split(strings.ReplaceAll(out, "\r\n", "\n"), "\n")
	start := 0
	for start < len(lines) {
		l := strings.TrimSpace(lines[start])
		if l == "" || strings.HasPrefix(l, "Building configuration") || strings.HasPrefix(l, "Current configuration") {
			start++
			continue
		}
		break
	}
	cfg := strings.TrimRight(strings.Join(lines[start:], "\n"), "\n ")
	if cfg == "" {
		return ""
	}
	return cfg + "\n"
}
