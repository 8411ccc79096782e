package service

import (
	"context"
	"errors"
	"fmt"

	"labsync/internal/domain"
	"labsync/internal/inventory"
	"labsync/internal/logger"
)

// Action is the outcome of reconciling one entity
type Action string

const (
	ActionCreated   Action = "created"
	ActionUpdated   Action = "updated"
	ActionUnchanged Action = "unchanged"
	ActionFailed    Action = "failed"
	ActionSkipped   Action = "skipped"

	// ActionCollected marks a device whose facts were gathered by a run
	// without a reconciler
	ActionCollected Action = "collected"
)

var (
	// ErrDeviceNotReconciled is returned when an operation needs the device's inventory id
	ErrDeviceNotReconciled = errors.New("device has no inventory id")
	// ErrDeviceHasNoSite is returned for a device outside any site; its natural key is incomplete
	ErrDeviceHasNoSite = errors.New("device is not a member of a site")
)

// Reconciler pushes local entity state into the inventory and pulls back
// service-assigned identifiers
type Reconciler struct {
	inv Inventory
	log logger.Logger
}

// NewReconciler creates a reconciler bound to an inventory client
func NewReconciler(inv Inventory, log logger.Logger) *Reconciler {
	return &Reconciler{
		inv: inv,
		log: log.WithComponent("reconciler"),
	}
}

// ReconcileSite looks the site up by name and creates it when absent.
// An existing site is never updated; its slug, status, tenant and id are
// copied into the entity.
func (r *Reconciler) ReconcileSite(ctx context.Context, site *domain.Site) (*inventory.Site, Action, error) {
	if site == nil {
		return nil, ActionFailed, &domain.TypeMismatchError{Op: "reconcile_site", Want: "site", Got: "nil"}
	}

	remote, err := r.inv.FindSite(ctx, site.Name)
	if err != nil {
		return nil, ActionFailed, asInventoryError("find site "+site.Name, err)
	}

	if remote == nil {
		created, err := r.inv.CreateSite(ctx, inventory.SiteCreate{
			Name:        site.Name,
			Slug:        site.Slug,
			Status:      string(site.Status),
			Description: site.Description,
			Tenant:      domain.RefID(site.Tenant),
			TenantGroup: domain.RefID(site.TenantGroup),
		})
		if err != nil {
			return nil, ActionFailed, asInventoryError("create site "+site.Name, err)
		}

		id := created.ID
		site.ID = &id

		r.log.Info().Str("site", site.Name).Int("id", id).Msg("Created site")
		return created, ActionCreated, nil
	}

	pullSite(site, remote)

	r.log.Debug().Str("site", site.Name).Int("id", remote.ID).Msg("Site exists")
	return remote, ActionUnchanged, nil
}

func pullSite(site *domain.Site, remote *inventory.Site) {
	id := remote.ID
	site.ID = &id

	if remote.Slug != "" {
		site.Slug = remote.Slug
	}
	if remote.Status.Value != "" {
		site.Status = domain.Status(remote.Status.Value)
	}
	site.Tenant = refFromNested(remote.Tenant)
}

// ReconcileDevice looks the device up by (name, site slug). An absent device
// is created from its non-empty fields; an existing one is patched with the
// changed subset of status, serial, platform and primary IP. The remote
// state is copied back afterwards.
func (r *Reconciler) ReconcileDevice(ctx context.Context, d *domain.Device) (*inventory.Device, Action, error) {
	if d == nil {
		return nil, ActionFailed, &domain.TypeMismatchError{Op: "reconcile_device", Want: "device", Got: "nil"}
	}

	site := d.Site()
	if site == nil || site.Slug == "" {
		return nil, ActionFailed, fmt.Errorf("%s: %w", d.Name, ErrDeviceHasNoSite)
	}
	key := inventory.DeviceKey{Name: d.Name, Site: site.Slug}
	siteID := site.ID

	remote, err := r.inv.FindDevice(ctx, key)
	if err != nil {
		return nil, ActionFailed, asInventoryError("find device "+d.Name, err)
	}

	if remote == nil {
		created, err := r.inv.CreateDevice(ctx, inventory.DeviceCreate{
			Name:       d.Name,
			DeviceType: deviceTypeID(d.DeviceType),
			Role:       roleID(d.Role),
			Site:       siteID,
			Status:     string(d.Status),
			Serial:     d.Serial,
			Platform:   platformID(d.Platform),
			PrimaryIP4: domain.RefID(d.PrimaryIP),
		})
		if err != nil {
			return nil, ActionFailed, asInventoryError("create device "+d.Name, err)
		}

		pullDevice(d, created)

		r.log.Info().Str("device", d.Name).Int("id", created.ID).Msg("Created device")
		return created, ActionCreated, nil
	}

	action := ActionUnchanged
	if patch := devicePatch(d, remote); len(patch) > 0 {
		updated, err := r.inv.UpdateDevice(ctx, remote.ID, patch)
		if err != nil {
			return nil, ActionFailed, asInventoryError("update device "+d.Name, err)
		}

		r.log.Info().Str("device", d.Name).Int("id", remote.ID).Interface("changes", patch).Msg("Updated device")
		remote = updated
		action = ActionUpdated
	}

	pullDevice(d, remote)
	return remote, action, nil
}

// devicePatch diffs only fields the local entity has set, so an unset local
// field never clears a remote value
func devicePatch(d *domain.Device, remote *inventory.Device) inventory.DevicePatch {
	patch := inventory.DevicePatch{}

	if d.Status != "" && string(d.Status) != remote.Status.Value {
		patch[inventory.FieldStatus] = string(d.Status)
	}
	if d.Serial != "" && d.Serial != remote.Serial {
		patch[inventory.FieldSerial] = d.Serial
	}
	if id := platformID(d.Platform); id != nil && (remote.Platform == nil || remote.Platform.ID != *id) {
		patch[inventory.FieldPlatform] = *id
	}
	if d.PrimaryIP != nil && (remote.PrimaryIP4 == nil || remote.PrimaryIP4.ID != d.PrimaryIP.ID) {
		patch[inventory.FieldPrimaryIP4] = d.PrimaryIP.ID
	}

	return patch
}

func pullDevice(d *domain.Device, remote *inventory.Device) {
	id := remote.ID
	d.ID = &id

	if remote.Status.Value != "" {
		d.Status = domain.Status(remote.Status.Value)
	}
	d.Serial = remote.Serial

	// references follow the remote record, including its absence
	d.Platform = nil
	if remote.Platform != nil {
		pid := remote.Platform.ID
		d.Platform = &domain.Platform{ID: &pid, Name: remote.Platform.Name, Slug: remote.Platform.Slug}
	}
	d.PrimaryIP = nil
	if remote.PrimaryIP4 != nil {
		d.PrimaryIP = &domain.Ref{ID: remote.PrimaryIP4.ID, Name: remote.PrimaryIP4.Address}
	}
}

// InterfaceCounts tallies interface reconciliation actions
type InterfaceCounts map[Action]int

// ReconcileInterfaces creates missing interfaces and patches changed ones on
// a reconciled device. Per-interface failures do not stop the loop and are
// returned joined.
func (r *Reconciler) ReconcileInterfaces(ctx context.Context, d *domain.Device) (InterfaceCounts, error) {
	if d == nil {
		return nil, &domain.TypeMismatchError{Op: "reconcile_interfaces", Want: "device", Got: "nil"}
	}
	if d.ID == nil {
		return nil, fmt.Errorf("%s: %w", d.Name, ErrDeviceNotReconciled)
	}

	counts := InterfaceCounts{}
	var errs []error

	for _, iface := range d.Interfaces() {
		action, err := r.reconcileInterface(ctx, *d.ID, iface)
		counts[action]++
		if err != nil {
			errs = append(errs, fmt.Errorf("interface %s: %w", iface.Name, err))
		}
	}

	if n := counts[ActionCreated] + counts[ActionUpdated]; n > 0 {
		r.log.Info().
			Str("device", d.Name).
			Int("created", counts[ActionCreated]).
			Int("updated", counts[ActionUpdated]).
			Msg("Reconciled interfaces")
	}

	return counts, errors.Join(errs...)
}

func (r *Reconciler) reconcileInterface(ctx context.Context, deviceID int, iface *domain.Interface) (Action, error) {
	remote, err := r.inv.FindInterface(ctx, deviceID, iface.Name)
	if err != nil {
		return ActionFailed, asInventoryError("find interface "+iface.Name, err)
	}

	if remote == nil {
		ifType := iface.Type
		if ifType == "" {
			ifType = domain.DefaultInterfaceType
		}

		created, err := r.inv.CreateInterface(ctx, inventory.InterfaceCreate{
			Device:      deviceID,
			Name:        iface.Name,
			Type:        ifType,
			Enabled:     iface.Enabled,
			MTU:         iface.MTU,
			MACAddress:  iface.MACAddress,
			Description: iface.Description,
		})
		if err != nil {
			return ActionFailed, asInventoryError("create interface "+iface.Name, err)
		}

		id := created.ID
		iface.ID = &id
		return ActionCreated, nil
	}

	id := remote.ID
	iface.ID = &id

	patch := inventory.InterfacePatch{}
	if iface.Observed && iface.Enabled != remote.Enabled {
		patch[inventory.FieldEnabled] = iface.Enabled
	}
	if iface.MTU != nil && (remote.MTU == nil || *remote.MTU != *iface.MTU) {
		patch[inventory.FieldMTU] = *iface.MTU
	}
	if iface.Description != "" && iface.Description != remote.Description {
		patch[inventory.FieldDescription] = iface.Description
	}

	if len(patch) == 0 {
		return ActionUnchanged, nil
	}

	if _, err := r.inv.UpdateInterface(ctx, remote.ID, patch); err != nil {
		return ActionFailed, asInventoryError("update interface "+iface.Name, err)
	}
	return ActionUpdated, nil
}

// ResolveReferences fills device type, role and platform ids from the
// inventory by slug. References the inventory does not know stay unresolved;
// they are never created.
func (r *Reconciler) ResolveReferences(ctx context.Context, d *domain.Device) error {
	if d == nil {
		return &domain.TypeMismatchError{Op: "resolve_references", Want: "device", Got: "nil"}
	}

	var errs []error

	if dt := d.DeviceType; dt != nil && dt.ID == nil && dt.Slug != "" {
		remote, err := r.inv.FindDeviceType(ctx, dt.Slug)
		switch {
		case err != nil:
			errs = append(errs, asInventoryError("find device type "+dt.Slug, err))
		case remote != nil:
			id := remote.ID
			dt.ID = &id
		default:
			r.log.Debug().Str("device", d.Name).Str("device_type", dt.Slug).Msg("Device type not in inventory")
		}
	}

	if role := d.Role; role != nil && role.ID == nil && role.Slug != "" {
		remote, err := r.inv.FindDeviceRole(ctx, role.Slug)
		switch {
		case err != nil:
			errs = append(errs, asInventoryError("find device role "+role.Slug, err))
		case remote != nil:
			id := remote.ID
			role.ID = &id
		default:
			r.log.Debug().Str("device", d.Name).Str("role", role.Slug).Msg("Device role not in inventory")
		}
	}

	if p := d.Platform; p != nil && p.ID == nil && p.Slug != "" {
		remote, err := r.inv.FindPlatform(ctx, p.Slug)
		switch {
		case err != nil:
			errs = append(errs, asInventoryError("find platform "+p.Slug, err))
		case remote != nil:
			id := remote.ID
			p.ID = &id
		default:
			r.log.Debug().Str("device", d.Name).Str("platform", p.Slug).Msg("Platform not in inventory")
		}
	}

	return errors.Join(errs...)
}

// asInventoryError keeps the client's error categories and wraps anything
// else as UnexpectedError
func asInventoryError(op string, err error) error {
	if inventory.IsInventoryError(err) {
		return err
	}
	return &inventory.UnexpectedError{Op: op, Err: err}
}

func refFromNested(n *inventory.NestedRef) *domain.Ref {
	if n == nil {
		return nil
	}
	name := n.Name
	if name == "" {
		name = n.Display
	}
	return &domain.Ref{ID: n.ID, Name: name}
}

func deviceTypeID(dt *domain.DeviceType) *int {
	if dt == nil {
		return nil
	}
	return dt.ID
}

func roleID(r *domain.DeviceRole) *int {
	if r == nil {
		return nil
	}
	return r.ID
}

func platformID(p *domain.Platform) *int {
	if p == nil {
		return nil
	}
	return p.ID
}
