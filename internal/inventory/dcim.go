package inventory

import (
	"context"
	"net/url"
	"strconv"
)

const (
	sitesPath       = "/api/dcim/sites/"
	devicesPath     = "/api/dcim/devices/"
	interfacesPath  = "/api/dcim/interfaces/"
	deviceTypesPath = "/api/dcim/device-types/"
	deviceRolesPath = "/api/dcim/device-roles/"
	platformsPath   = "/api/dcim/platforms/"
)

// FindSite looks up a site by name
func (c *Client) FindSite(ctx context.Context, name string) (*Site, error) {
	return findOne[Site](ctx, c, sitesPath, url.Values{"name": {name}})
}

// CreateSite creates a site
func (c *Client) CreateSite(ctx context.Context, s SiteCreate) (*Site, error) {
	return create[Site](ctx, c, sitesPath, s)
}

// FindDevice looks up a device by its name within a site slug
func (c *Client) FindDevice(ctx context.Context, key DeviceKey) (*Device, error) {
	q := url.Values{"name": {key.Name}}
	if key.Site != "" {
		q.Set("site", key.Site)
	}
	return findOne[Device](ctx, c, devicesPath, q)
}

// CreateDevice creates a device
func (c *Client) CreateDevice(ctx context.Context, d DeviceCreate) (*Device, error) {
	return create[Device](ctx, c, devicesPath, d)
}

// UpdateDevice patches the given fields of device id
func (c *Client) UpdateDevice(ctx context.Context, id int, p DevicePatch) (*Device, error) {
	return patch[Device](ctx, c, devicesPath, id, p)
}

// FindInterface looks up an interface by name on a device
func (c *Client) FindInterface(ctx context.Context, deviceID int, name string) (*Interface, error) {
	return findOne[Interface](ctx, c, interfacesPath, url.Values{
		"device_id": {strconv.Itoa(deviceID)},
		"name":      {name},
	})
}

// CreateInterface creates an interface
func (c *Client) CreateInterface(ctx context.Context, i InterfaceCreate) (*Interface, error) {
	return create[Interface](ctx, c, interfacesPath, i)
}

// UpdateInterface patches the given fields of interface id
func (c *Client) UpdateInterface(ctx context.Context, id int, p InterfacePatch) (*Interface, error) {
	return patch[Interface](ctx, c, interfacesPath, id, p)
}

// FindDeviceType looks up a device type by slug
func (c *Client) FindDeviceType(ctx context.Context, slug string) (*DeviceType, error) {
	return findOne[DeviceType](ctx, c, deviceTypesPath, url.Values{"slug": {slug}})
}

// FindDeviceRole looks up a device role by slug
func (c *Client) FindDeviceRole(ctx context.Context, slug string) (*DeviceRole, error) {
	return findOne[DeviceRole](ctx, c, deviceRolesPath, url.Values{"slug": {slug}})
}

// FindPlatform looks up a platform by slug
func (c *Client) FindPlatform(ctx context.Context, slug string) (*Platform, error) {
	return findOne[Platform](ctx, c, platformsPath, url.Values{"slug": {slug}})
}
