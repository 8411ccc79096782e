// Package service coordinates fact collection and inventory reconciliation.
//
// # Reconciliation
//
// Reconciler pushes local Site, Device and Interface state into the
// inventory through the Inventory interface and copies service-assigned
// identifiers back. Sites are created when missing and never updated.
// Devices are created or patched with the changed subset of status, serial,
// platform and primary IP; fields the local entity never set are not diffed.
//
// # Runs
//
// Runner walks a site's devices: preflight, credentials, a collector
// session, fact application, then reconciliation. Every device yields a
// DeviceOutcome; one device failing never stops the batch. Observers such as
// EventBus receive outcomes as they complete.
package service
