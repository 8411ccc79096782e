// Package driver defines the device communication capability used to collect
// operational facts from network devices, and the transports implementing it.
//
// A Driver owns exactly one transport session. The lifecycle is:
//
//	Connect -> Facts / Interfaces / Config -> Close
//
// Two transports are provided:
//
//   - snmp: multi-vendor facts normalization over MIB-II and ENTITY-MIB.
//     Registered under the alias "napalm" for configurations written for the
//     facts-style backend.
//   - ssh: vendor CLI commands over SSH with structured-output parsing where the
//     platform offers it. Registered under the alias "netmiko".
//
// Drivers never log. Retrieval failures come back as *CollectionError and the
// caller decides whether to skip, retry or report.
package driver
