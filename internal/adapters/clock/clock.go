package clock

import (
	"fmt"
	"time"

	"beaconattendance/internal/domain"
)

type zoneClock struct {
	loc *time.Location
}

// NewZoneClock returns a Clock anchored on the named civil timezone. All
// window and scheduling comparisons use this single zone, never UTC or the
// host zone.
func NewZoneClock(name string) (domain.Clock, error) {
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", name, err)
	}
	return &zoneClock{loc: loc}, nil
}

func (c *zoneClock) Now() time.Time {
	return time.Now().In(c.loc)
}

func (c *zoneClock) Location() *time.Location {
	return c.loc
}
