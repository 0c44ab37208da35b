package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"beaconattendance/internal/domain"
)

// Check-in response messages. Both first-time and duplicate check-ins are
// success-shaped; only the wording differs.
const (
	msgAttendanceAdded     = "Attendance added successfully"
	msgAttendanceDuplicate = "Attendance already taken."
)

type checkInService struct {
	eventRepo       domain.EventRepository
	attendanceRepo  domain.AttendanceRepository
	associationRepo domain.AssociationRepository
	clock           domain.Clock
	contextTimeout  time.Duration
}

// NewCheckInService creates a CheckInService with the given repositories and
// clock.
func NewCheckInService(
	eventRepo domain.EventRepository,
	attendanceRepo domain.AttendanceRepository,
	associationRepo domain.AssociationRepository,
	clock domain.Clock,
	timeout time.Duration,
) domain.CheckInService {
	return &checkInService{
		eventRepo:       eventRepo,
		attendanceRepo:  attendanceRepo,
		associationRepo: associationRepo,
		clock:           clock,
		contextTimeout:  timeout,
	}
}

func (s *checkInService) ResolveActiveEvents(ctx context.Context, beaconMACs []string) ([]*domain.ActiveEvent, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	// Callers should deduplicate, but duplicates must not change the result.
	seen := make(map[string]struct{}, len(beaconMACs))
	macs := make([]string, 0, len(beaconMACs))
	for _, mac := range beaconMACs {
		if _, ok := seen[mac]; ok {
			continue
		}
		seen[mac] = struct{}{}
		macs = append(macs, mac)
	}

	roomIDs, err := s.associationRepo.RoomIDsByBeaconMACs(ctx, macs)
	if err != nil {
		return nil, fmt.Errorf("resolve beacon rooms: %w", err)
	}
	if len(roomIDs) == 0 {
		return nil, domain.ErrNoRoomForBeacons
	}

	// Every room with an open window matches; all matches are returned, not
	// just the first.
	events, err := s.eventRepo.ListActiveByRooms(ctx, roomIDs, s.clock.Now())
	if err != nil {
		return nil, fmt.Errorf("list active events: %w", err)
	}
	if len(events) == 0 {
		return nil, domain.ErrNoActiveEvent
	}
	return events, nil
}

func (s *checkInService) RecordAttendance(ctx context.Context, eventID, studentID int64) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return "", domain.ErrEventNotActive
		}
		return "", fmt.Errorf("get event: %w", err)
	}
	if !event.AcceptAttendance {
		return "", domain.ErrEventNotActive
	}

	a := &domain.Attendance{
		EventID:    eventID,
		StudentID:  studentID,
		RecordedAt: s.clock.Now(),
	}
	if err := s.attendanceRepo.Create(ctx, a); err != nil {
		// Concurrent duplicates race on the unique constraint; the losing
		// writer still gets a success response.
		if errors.Is(err, domain.ErrDuplicateAttendance) {
			return msgAttendanceDuplicate, nil
		}
		if errors.Is(err, domain.ErrReferentialViolation) {
			return "", domain.ErrReferentialViolation
		}
		return "", fmt.Errorf("create attendance: %w", err)
	}
	return msgAttendanceAdded, nil
}
