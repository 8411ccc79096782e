package domain

import "github.com/gosimple/slug"

// DefaultRoleColor is the color given to roles created without one (grey)
const DefaultRoleColor = "9e9e9e"

// DeviceType classifies hardware by manufacturer and model. It may exist
// locally before the inventory knows about it, in which case ID is nil.
type DeviceType struct {
	ID           *int     `json:"id,omitempty" yaml:"id,omitempty"`
	Model        string   `json:"model" yaml:"model"`
	Manufacturer string   `json:"manufacturer" yaml:"manufacturer"`
	Slug         string   `json:"slug" yaml:"slug"`
	PartNumber   string   `json:"part_number,omitempty" yaml:"part_number,omitempty"`
	UHeight      *float64 `json:"u_height,omitempty" yaml:"u_height,omitempty"`
}

// NewDeviceType creates a device type with a slug derived from the model
func NewDeviceType(model, manufacturer string) *DeviceType {
	return &DeviceType{
		Model:        model,
		Manufacturer: manufacturer,
		Slug:         slug.Make(model),
	}
}

// DeviceRole describes the function of a device (leaf, spine, host)
type DeviceRole struct {
	ID    *int   `json:"id,omitempty" yaml:"id,omitempty"`
	Name  string `json:"name" yaml:"name"`
	Slug  string `json:"slug" yaml:"slug"`
	Color string `json:"color" yaml:"color"`
}

// NewDeviceRole creates a role with a derived slug and the default color
func NewDeviceRole(name string) *DeviceRole {
	return &DeviceRole{
		Name:  name,
		Slug:  slug.Make(name),
		Color: DefaultRoleColor,
	}
}

// Platform identifies the software platform a device runs (ios, eos, linux)
type Platform struct {
	ID          *int   `json:"id,omitempty" yaml:"id,omitempty"`
	Name        string `json:"name" yaml:"name"`
	Slug        string `json:"slug" yaml:"slug"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// NewPlatform creates a platform with a derived slug
func NewPlatform(name string) *Platform {
	return &Platform{
		Name: name,
		Slug: slug.Make(name),
	}
}
