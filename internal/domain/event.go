package domain

import (
	"context"
	"time"
)

// EventType distinguishes lectures from exercise sessions.
type EventType string

const (
	EventClass    EventType = "class"
	EventExercise EventType = "exercise"
)

// EventInstance is one concrete scheduled occurrence of a course event, bound
// to a room, a teacher (event_personal) and a fixed time interval.
// swagger:model EventInstance
type EventInstance struct {
	ID               int64     `json:"id"`
	CourseID         int64     `json:"courseId"`
	RoomID           int64     `json:"roomId"`
	TeacherID        int64     `json:"eventPersonal"`
	Name             string    `json:"eventName"`
	Type             EventType `json:"eventType"`
	StartTime        time.Time `json:"startDateTime"`
	EndTime          time.Time `json:"endDateTime"`
	AcceptAttendance bool      `json:"acceptAttendance"`
	CreatedBy        int64     `json:"-"`
	UpdatedBy        int64     `json:"-"`
}

// Interval returns the instance's time interval.
func (e *EventInstance) Interval() Interval {
	return Interval{Start: e.StartTime, End: e.EndTime}
}

// WindowState is the attendance-window state of an instance: Closed rejects
// check-ins, Open accepts them. It maps onto the accept_attendance flag.
type WindowState bool

const (
	WindowClosed WindowState = false
	WindowOpen   WindowState = true
)

func (s WindowState) String() string {
	if s {
		return "true"
	}
	return "false"
}

// NextWindowState validates the Toggle transition and returns the state the
// instance would move to. The transition is allowed only to the instance's
// own teacher, and only while now lies within [StartTime, EndTime].
// No timer closes the window; it is re-evaluated lazily at toggle and at
// check-in resolution time.
func (e *EventInstance) NextWindowState(callerID int64, now time.Time) (WindowState, error) {
	if now.Before(e.StartTime) || now.After(e.EndTime) {
		return WindowState(e.AcceptAttendance), ErrOutsideWindow
	}
	if callerID != e.TeacherID {
		return WindowState(e.AcceptAttendance), ErrNotOwner
	}
	return WindowState(!e.AcceptAttendance), nil
}

// EventDetail is an instance joined with its course, room and teacher names.
// CoursePersonnel is carried for permission checks and not serialized.
type EventDetail struct {
	EventInstance
	CourseCode      string  `json:"courseCode"`
	CourseName      string  `json:"courseName"`
	RoomName        string  `json:"roomName"`
	TeacherFirst    string  `json:"firstName"`
	TeacherLast     string  `json:"lastName"`
	CoursePersonnel []int64 `json:"-"`
}

// ActiveEvent is one check-in candidate produced by beacon resolution.
// swagger:model ActiveEvent
type ActiveEvent struct {
	EventID    int64  `json:"eventId"`
	CourseName string `json:"courseName"`
	RoomName   string `json:"roomName"`
}

// ScheduleRequest carries everything needed to create or update event
// instances: the recurrence pattern plus the fields shared by all produced
// instances.
type ScheduleRequest struct {
	Pattern   RecurrencePattern
	CourseID  int64
	RoomID    int64
	TeacherID int64
	Name      string
	Type      EventType
}

// EventRepository defines storage for event instances.
//
// CreateBatch and Update must run their overlap checks and the write as one
// atomic unit against the store (a transaction with row locks on the
// conflicting ranges); two concurrent requests must not both pass a check
// against a stale snapshot. CreateBatch is all-or-nothing: either every
// draft is inserted or none is.
type EventRepository interface {
	CreateBatch(ctx context.Context, drafts []*EventInstance) (int, error)
	GetByID(ctx context.Context, id int64) (*EventInstance, error)
	GetDetail(ctx context.Context, id int64) (*EventDetail, error)
	Update(ctx context.Context, e *EventInstance) error
	// ToggleWindow flips accept_attendance, guarded by the ownership and
	// time-window preconditions re-checked in the same statement. Returns
	// the new state. ErrNotFound when no row passes the guards.
	ToggleWindow(ctx context.Context, eventID, callerID int64, now time.Time) (bool, error)
	ListActiveByRooms(ctx context.Context, roomIDs []int64, now time.Time) ([]*ActiveEvent, error)
	ListByTeacher(ctx context.Context, teacherID int64) ([]*EventDetail, error)
	Delete(ctx context.Context, id int64) error
}

// ScheduleService is the scheduling and attendance-window surface.
type ScheduleService interface {
	// CreateEvent expands the pattern, validates every draft and persists
	// them all-or-nothing. Returns the number of instances created.
	CreateEvent(ctx context.Context, req *ScheduleRequest, creatorID int64) (int, error)
	// UpdateEvent rewrites one stored instance. The pattern must describe a
	// single day (StartDate == EndDate).
	UpdateEvent(ctx context.Context, eventID int64, req *ScheduleRequest, updaterID int64) error
	// ToggleAttendanceWindow fires the Toggle transition. Returns the new
	// state and a human-readable transition message.
	ToggleAttendanceWindow(ctx context.Context, eventID, callerID int64) (bool, string, error)
	GetEventByID(ctx context.Context, eventID, callerID int64) (*EventDetail, error)
	ListMyEvents(ctx context.Context, teacherID int64) ([]*EventDetail, error)
	DeleteEvent(ctx context.Context, eventID, callerID int64) error
}
