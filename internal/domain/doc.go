// Package domain defines the entities labsync moves between a lab topology,
// live devices and the inventory service.
//
// # Entities
//
// Site owns an ordered collection of Devices. Membership is changed only
// through Device.JoinSite and Site.RemoveDevice so that the site collection
// and the device's back reference never disagree.
//
// Device owns its Interfaces. Fact collection may replace the whole
// interface list at once.
//
// DeviceType, DeviceRole and Platform are classification descriptors. They
// can exist locally before the inventory has assigned them an id.
//
// # Identity
//
// Entities are identified by natural keys (site name, device name within a
// site, interface name within a device). Inventory-assigned ids are optional
// pointers that stay nil until the first successful reconciliation.
//
// Credentials are held in memory only and never rendered by String or
// serialized.
package domain
