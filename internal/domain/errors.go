package domain

import "errors"

// Sentinel errors shared across services and repositories. Repositories
// translate storage-level failures (missing rows, constraint violations) into
// these; the delivery layer maps them onto HTTP status codes.
var (
	ErrNotFound  = errors.New("not found")
	ErrForbidden = errors.New("forbidden")

	// Scheduling validation.
	ErrInvalidRange        = errors.New("start date_time should be smaller than end date_time")
	ErrNotATeacher         = errors.New("event personal is not a teacher")
	ErrCourseNotFound      = errors.New("course not found")
	ErrPersonalNotInCourse = errors.New("user is not course personal of that course")
	ErrRoomConflict        = errors.New("there is a event already in same time in same room")
	ErrTeacherConflict     = errors.New("teacher already been assigned to an event at the very same time")

	// Attendance window.
	ErrOutsideWindow = errors.New("current time is not in between event start and end time")
	ErrNotOwner      = errors.New("only the event personal can change event status")

	// Check-in.
	ErrEventNotActive   = errors.New("event session is not active yet or event is not found")
	ErrNoRoomForBeacons = errors.New("no room found associated with any given beacon")
	ErrNoActiveEvent    = errors.New("no active event found for given beacons")

	// ErrDuplicateAttendance marks the unique-constraint hit on
	// (event_id, student_id). The check-in service converts it into a
	// success response; it is never surfaced to API clients as an error.
	ErrDuplicateAttendance = errors.New("attendance already taken")

	// ErrReferentialViolation marks a foreign-key failure, e.g. an unknown
	// student ID on check-in.
	ErrReferentialViolation = errors.New("referenced record does not exist")
)
