package main

import (
	"context"

	"labsync/internal/driver"
	"labsync/internal/preflight"
	"labsync/internal/service"
)

// buildPreflight returns nil when preflight is disabled or nmap is missing
func buildPreflight(ctx context.Context) service.Prober {
	if !cfg.Preflight.Enabled {
		return nil
	}

	opts := []preflight.Option{preflight.WithTimeout(cfg.Preflight.Timeout.Duration())}
	if name, _ := driver.Canonical(cfg.Collection.Driver); name == "snmp" {
		opts = append(opts, preflight.WithPort(cfg.Collection.SNMPPort), preflight.WithUDP())
	} else {
		opts = append(opts, preflight.WithPort(cfg.Collection.SSHPort))
	}

	checker := preflight.New(opts...)
	if !checker.Available(ctx) {
		log.Warn().Msg("Preflight enabled but nmap is not available, skipping reachability checks")
		return nil
	}
	return checker
}
