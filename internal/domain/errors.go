package domain

import (
	"errors"
	"fmt"
)

// ErrNotMember is returned when removing a device from a site it does not belong to
var ErrNotMember = errors.New("device is not a member of site")

// TypeMismatchError reports a relationship operation that received the wrong entity
type TypeMismatchError struct {
	Op   string // join_site, device_add, device_remove
	Want string
	Got  string
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("%s: expected %s, got %s", e.Op, e.Want, e.Got)
}
