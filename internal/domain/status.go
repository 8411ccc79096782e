package domain

import "fmt"

// Status is the lifecycle state shared by sites and devices
type Status string

const (
	StatusActive         Status = "active"
	StatusOffline        Status = "offline"
	StatusPlanned        Status = "planned"
	StatusStaged         Status = "staged"
	StatusFailed         Status = "failed"
	StatusInventory      Status = "inventory"
	StatusDecommissioned Status = "decommissioned"
)

var validStatuses = map[Status]bool{
	StatusActive:         true,
	StatusOffline:        true,
	StatusPlanned:        true,
	StatusStaged:         true,
	StatusFailed:         true,
	StatusInventory:      true,
	StatusDecommissioned: true,
}

// Valid reports whether s is one of the known statuses
func (s Status) Valid() bool {
	return validStatuses[s]
}

// ParseStatus converts a string to a Status, rejecting unknown values
func ParseStatus(s string) (Status, error) {
	status := Status(s)
	if !status.Valid() {
		return "", fmt.Errorf("unknown status %q", s)
	}
	return status, nil
}

// Ref is a reference to an object owned by the inventory (tenant, IP address)
type Ref struct {
	ID   int    `json:"id" yaml:"id"`
	Name string `json:"name,omitempty" yaml:"name,omitempty"`
}

// RefID returns the referenced id, or nil for a nil reference
func RefID(r *Ref) *int {
	if r == nil {
		return nil
	}
	id := r.ID
	return &id
}
