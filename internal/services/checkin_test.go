package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"beaconattendance/internal/domain"
)

type mockAttendanceRepository struct {
	created *domain.Attendance
	err     error
}

func (m *mockAttendanceRepository) Create(ctx context.Context, a *domain.Attendance) error {
	if m.err != nil {
		return m.err
	}
	m.created = a
	return nil
}

type mockAssociationRepository struct {
	roomsByMAC map[string][]int64
	gotMACs    []string
	err        error
}

func (m *mockAssociationRepository) RoomIDsByBeaconMACs(ctx context.Context, macs []string) ([]int64, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.gotMACs = macs
	seen := make(map[int64]struct{})
	var rooms []int64
	for _, mac := range macs {
		for _, id := range m.roomsByMAC[mac] {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			rooms = append(rooms, id)
		}
	}
	return rooms, nil
}

func TestCheckInService_ResolveActiveEvents(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 2, 10, 30, 0, 0, helsinki)
	active := []*domain.ActiveEvent{
		{EventID: 7, CourseName: "Algorithms", RoomName: "A101"},
	}

	t.Run("duplicate macs are collapsed before lookup", func(t *testing.T) {
		assoc := &mockAssociationRepository{roomsByMAC: map[string][]int64{
			"AA:BB:CC:DD:EE:01": {2},
			"AA:BB:CC:DD:EE:02": {2},
		}}
		repo := &mockEventRepository{active: active}
		svc := NewCheckInService(repo, &mockAttendanceRepository{}, assoc, &fixedClock{now: now}, time.Second)

		events, err := svc.ResolveActiveEvents(ctx, []string{
			"AA:BB:CC:DD:EE:01", "AA:BB:CC:DD:EE:01", "AA:BB:CC:DD:EE:02",
		})
		if err != nil {
			t.Fatalf("ResolveActiveEvents returned error: %v", err)
		}
		if len(assoc.gotMACs) != 2 {
			t.Errorf("lookup received %d macs, want 2 after dedup", len(assoc.gotMACs))
		}
		if len(events) != 1 || events[0].EventID != 7 {
			t.Errorf("got events %v, want the single open event", events)
		}
	})

	t.Run("no room for any beacon", func(t *testing.T) {
		assoc := &mockAssociationRepository{roomsByMAC: map[string][]int64{}}
		svc := NewCheckInService(&mockEventRepository{}, &mockAttendanceRepository{}, assoc, &fixedClock{now: now}, time.Second)
		_, err := svc.ResolveActiveEvents(ctx, []string{"00:00:00:00:00:00"})
		if !errors.Is(err, domain.ErrNoRoomForBeacons) {
			t.Fatalf("ResolveActiveEvents error = %v, want %v", err, domain.ErrNoRoomForBeacons)
		}
	})

	t.Run("rooms found but every window closed", func(t *testing.T) {
		assoc := &mockAssociationRepository{roomsByMAC: map[string][]int64{
			"AA:BB:CC:DD:EE:01": {2},
		}}
		repo := &mockEventRepository{active: nil}
		svc := NewCheckInService(repo, &mockAttendanceRepository{}, assoc, &fixedClock{now: now}, time.Second)
		_, err := svc.ResolveActiveEvents(ctx, []string{"AA:BB:CC:DD:EE:01"})
		if !errors.Is(err, domain.ErrNoActiveEvent) {
			t.Fatalf("ResolveActiveEvents error = %v, want %v", err, domain.ErrNoActiveEvent)
		}
	})

	t.Run("several open events are all returned", func(t *testing.T) {
		assoc := &mockAssociationRepository{roomsByMAC: map[string][]int64{
			"AA:BB:CC:DD:EE:01": {2, 5},
		}}
		repo := &mockEventRepository{active: []*domain.ActiveEvent{
			{EventID: 7, CourseName: "Algorithms", RoomName: "A101"},
			{EventID: 8, CourseName: "Databases", RoomName: "B202"},
		}}
		svc := NewCheckInService(repo, &mockAttendanceRepository{}, assoc, &fixedClock{now: now}, time.Second)
		events, err := svc.ResolveActiveEvents(ctx, []string{"AA:BB:CC:DD:EE:01"})
		if err != nil {
			t.Fatalf("ResolveActiveEvents returned error: %v", err)
		}
		if len(events) != 2 {
			t.Errorf("got %d events, want 2", len(events))
		}
	})
}

func TestCheckInService_RecordAttendance(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 2, 10, 30, 0, 0, helsinki)
	openEvent := &domain.EventInstance{ID: 7, AcceptAttendance: true}
	closedEvent := &domain.EventInstance{ID: 8, AcceptAttendance: false}

	t.Run("first check-in is recorded", func(t *testing.T) {
		attendance := &mockAttendanceRepository{}
		repo := &mockEventRepository{events: map[int64]*domain.EventInstance{7: openEvent}}
		svc := NewCheckInService(repo, attendance, &mockAssociationRepository{}, &fixedClock{now: now}, time.Second)

		msg, err := svc.RecordAttendance(ctx, 7, 42)
		if err != nil {
			t.Fatalf("RecordAttendance returned error: %v", err)
		}
		if msg != "Attendance added successfully" {
			t.Errorf("message = %q", msg)
		}
		if attendance.created == nil {
			t.Fatal("no attendance row was created")
		}
		if attendance.created.EventID != 7 || attendance.created.StudentID != 42 {
			t.Errorf("created row %+v", attendance.created)
		}
		if !attendance.created.RecordedAt.Equal(now) {
			t.Errorf("RecordedAt = %v, want %v", attendance.created.RecordedAt, now)
		}
	})

	t.Run("repeat check-in succeeds without a new row", func(t *testing.T) {
		attendance := &mockAttendanceRepository{err: domain.ErrDuplicateAttendance}
		repo := &mockEventRepository{events: map[int64]*domain.EventInstance{7: openEvent}}
		svc := NewCheckInService(repo, attendance, &mockAssociationRepository{}, &fixedClock{now: now}, time.Second)

		msg, err := svc.RecordAttendance(ctx, 7, 42)
		if err != nil {
			t.Fatalf("RecordAttendance returned error: %v", err)
		}
		if msg != "Attendance already taken." {
			t.Errorf("message = %q", msg)
		}
	})

	t.Run("closed window rejects", func(t *testing.T) {
		repo := &mockEventRepository{events: map[int64]*domain.EventInstance{8: closedEvent}}
		svc := NewCheckInService(repo, &mockAttendanceRepository{}, &mockAssociationRepository{}, &fixedClock{now: now}, time.Second)
		if _, err := svc.RecordAttendance(ctx, 8, 42); !errors.Is(err, domain.ErrEventNotActive) {
			t.Fatalf("RecordAttendance error = %v, want %v", err, domain.ErrEventNotActive)
		}
	})

	t.Run("missing event rejects", func(t *testing.T) {
		repo := &mockEventRepository{events: map[int64]*domain.EventInstance{}}
		svc := NewCheckInService(repo, &mockAttendanceRepository{}, &mockAssociationRepository{}, &fixedClock{now: now}, time.Second)
		if _, err := svc.RecordAttendance(ctx, 99, 42); !errors.Is(err, domain.ErrEventNotActive) {
			t.Fatalf("RecordAttendance error = %v, want %v", err, domain.ErrEventNotActive)
		}
	})

	t.Run("unknown student surfaces as referential violation", func(t *testing.T) {
		attendance := &mockAttendanceRepository{err: domain.ErrReferentialViolation}
		repo := &mockEventRepository{events: map[int64]*domain.EventInstance{7: openEvent}}
		svc := NewCheckInService(repo, attendance, &mockAssociationRepository{}, &fixedClock{now: now}, time.Second)
		if _, err := svc.RecordAttendance(ctx, 7, 9999); !errors.Is(err, domain.ErrReferentialViolation) {
			t.Fatalf("RecordAttendance error = %v, want %v", err, domain.ErrReferentialViolation)
		}
	})
}
