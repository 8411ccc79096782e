//go:generate mockgen -destination=mock_inventory.go -package=service labsync/internal/service Inventory

package service

import (
	"context"

	"labsync/internal/inventory"
)

// Inventory is the subset of the inventory API the reconciler needs.
// *inventory.Client satisfies it.
type Inventory interface {
	FindSite(ctx context.Context, name string) (*inventory.Site, error)
	CreateSite(ctx context.Context, s inventory.SiteCreate) (*inventory.Site, error)

	FindDevice(ctx context.Context, key inventory.DeviceKey) (*inventory.Device, error)
	CreateDevice(ctx context.Context, d inventory.DeviceCreate) (*inventory.Device, error)
	UpdateDevice(ctx context.Context, id int, p inventory.DevicePatch) (*inventory.Device, error)

	FindInterface(ctx context.Context, deviceID int, name string) (*inventory.Interface, error)
	CreateInterface(ctx context.Context, i inventory.InterfaceCreate) (*inventory.Interface, error)
	UpdateInterface(ctx context.Context, id int, p inventory.InterfacePatch) (*inventory.Interface, error)

	FindDeviceType(ctx context.Context, slug string) (*inventory.DeviceType, error)
	FindDeviceRole(ctx context.Context, slug string) (*inventory.DeviceRole, error)
	FindPlatform(ctx context.Context, slug string) (*inventory.Platform, error)
}

var _ Inventory = (*inventory.Client)(nil)
