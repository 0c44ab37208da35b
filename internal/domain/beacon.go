package domain

import "context"

// Beacon is a physical radio transmitter identified by MAC address.
type Beacon struct {
	ID           int64  `json:"id"`
	MACAddress   string `json:"macAddress"`
	ActiveStatus bool   `json:"activeStatus"`
}

// AssociationRepository reads the beacon-to-room mapping. A beacon belongs
// to at most one room at a time. Beacon and association CRUD live outside
// this module; only the read side is consumed here.
type AssociationRepository interface {
	// RoomIDsByBeaconMACs returns the distinct rooms the given beacons are
	// installed in. Unknown MACs are ignored; an empty result is not an
	// error at this layer.
	RoomIDsByBeaconMACs(ctx context.Context, macs []string) ([]int64, error)
}
