package inventory

import (
	"bytes"
	"encoding/json"
)

// NestedRef is the brief representation NetBox embeds for related objects
type NestedRef struct {
	ID      int    `json:"id"`
	Name    string `json:"name,omitempty"`
	Slug    string `json:"slug,omitempty"`
	Display string `json:"display,omitempty"`
	Address string `json:"address,omitempty"` // ip addresses only
}

// ChoiceValue is a NetBox choice field. Reads return {"value","label"},
// some endpoints and older versions return the bare value.
type ChoiceValue struct {
	Value string `json:"value"`
	Label string `json:"label,omitempty"`
}

func (c *ChoiceValue) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*c = ChoiceValue{}
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*c = ChoiceValue{Value: s}
		return nil
	}

	type plain ChoiceValue
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*c = ChoiceValue(p)
	return nil
}

// listResponse is the paginated envelope of every list endpoint
type listResponse[T any] struct {
	Count    int     `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []T     `json:"results"`
}

// Site is a dcim site record
type Site struct {
	ID          int         `json:"id"`
	Name        string      `json:"name"`
	Slug        string      `json:"slug"`
	Status      ChoiceValue `json:"status"`
	Description string      `json:"description"`
	Tenant      *NestedRef  `json:"tenant"`
	TenantGroup *NestedRef  `json:"tenant_group,omitempty"`
}

// SiteCreate is the payload for POST /api/dcim/sites/
type SiteCreate struct {
	Name        string `json:"name" validate:"required,max=100"`
	Slug        string `json:"slug" validate:"required,max=100"`
	Status      string `json:"status,omitempty" validate:"omitempty,oneof=planned staging active decommissioning retired offline staged failed inventory decommissioned"`
	Description string `json:"description,omitempty" validate:"max=200"`
	Tenant      *int   `json:"tenant,omitempty"`
	TenantGroup *int   `json:"tenant_group,omitempty"`
}

// Device is a dcim device record
type Device struct {
	ID         int         `json:"id"`
	Name       string      `json:"name"`
	DeviceType *NestedRef  `json:"device_type"`
	Role       *NestedRef  `json:"role"`
	Site       *NestedRef  `json:"site"`
	Status     ChoiceValue `json:"status"`
	Serial     string      `json:"serial"`
	Platform   *NestedRef  `json:"platform"`
	PrimaryIP4 *NestedRef  `json:"primary_ip4"`
}

// DeviceKey is the natural key of a device: its name within a site slug
type DeviceKey struct {
	Name string
	Site string
}

// DeviceCreate is the payload for POST /api/dcim/devices/.
// Unset references are omitted rather than sent as null.
type DeviceCreate struct {
	Name       string `json:"name" validate:"required,max=64"`
	DeviceType *int   `json:"device_type,omitempty"`
	Role       *int   `json:"role,omitempty"`
	Site       *int   `json:"site,omitempty"`
	Status     string `json:"status,omitempty"`
	Serial     string `json:"serial,omitempty" validate:"max=50"`
	Platform   *int   `json:"platform,omitempty"`
	PrimaryIP4 *int   `json:"primary_ip4,omitempty"`
}

// Device patch keys
const (
	FieldStatus     = "status"
	FieldSerial     = "serial"
	FieldPlatform   = "platform"
	FieldPrimaryIP4 = "primary_ip4"
)

// DevicePatch holds only the changed device fields
type DevicePatch map[string]any

// Interface is a dcim interface record
type Interface struct {
	ID          int         `json:"id"`
	Device      *NestedRef  `json:"device"`
	Name        string      `json:"name"`
	Type        ChoiceValue `json:"type"`
	Enabled     bool        `json:"enabled"`
	MTU         *int        `json:"mtu"`
	MACAddress  *string     `json:"mac_address"`
	Description string      `json:"description"`
}

// InterfaceCreate is the payload for POST /api/dcim/interfaces/
type InterfaceCreate struct {
	Device      int    `json:"device" validate:"required"`
	Name        string `json:"name" validate:"required,max=64"`
	Type        string `json:"type" validate:"required"`
	Enabled     bool   `json:"enabled"`
	MTU         *int   `json:"mtu,omitempty" validate:"omitempty,min=1,max=65536"`
	MACAddress  string `json:"mac_address,omitempty" validate:"omitempty,mac"`
	Description string `json:"description,omitempty" validate:"max=200"`
}

// Interface patch keys
const (
	FieldEnabled     = "enabled"
	FieldMTU         = "mtu"
	FieldDescription = "description"
)

// InterfacePatch holds only the changed interface fields
type InterfacePatch map[string]any

// DeviceType is a dcim device-type record
type DeviceType struct {
	ID           int        `json:"id"`
	Model        string     `json:"model"`
	Slug         string     `json:"slug"`
	Manufacturer *NestedRef `json:"manufacturer"`
}

// DeviceRole is a dcim device-role record
type DeviceRole struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// Platform is a dcim platform record
type Platform struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}
