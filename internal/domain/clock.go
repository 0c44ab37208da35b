package domain

import "time"

// Clock provides "now" for all attendance-window and scheduling comparisons.
// The production implementation is anchored on a single configured civil
// timezone; tests inject a fixed clock.
type Clock interface {
	Now() time.Time
	Location() *time.Location
}
