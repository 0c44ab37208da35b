package domain

import (
	"context"
	"time"
)

// Attendance is one check-in fact: the given student attended the given
// event instance. Unique on (EventID, StudentID); the store never holds more
// than one row per pair.
// swagger:model Attendance
type Attendance struct {
	EventID    int64     `json:"eventId"`
	StudentID  int64     `json:"studentId"`
	RecordedAt time.Time `json:"recordedAt"`
}

// AttendanceRepository defines storage for attendance facts.
type AttendanceRepository interface {
	// Create inserts the fact. A duplicate (event, student) pair returns
	// ErrDuplicateAttendance; an unknown student or event returns
	// ErrReferentialViolation. Concurrent duplicate inserts are resolved by
	// the store's unique constraint, not by a lock.
	Create(ctx context.Context, a *Attendance) error
}

// CheckInService resolves observed beacons to active events and records
// student check-ins.
type CheckInService interface {
	// ResolveActiveEvents maps beacon MAC addresses to the rooms they are
	// installed in, then to every event in those rooms whose attendance
	// window is currently open. Duplicate MACs do not change the result.
	ResolveActiveEvents(ctx context.Context, beaconMACs []string) ([]*ActiveEvent, error)
	// RecordAttendance records one check-in. Both a first-time check-in and
	// a duplicate return a success message; they differ only in wording.
	RecordAttendance(ctx context.Context, eventID, studentID int64) (string, error)
}
