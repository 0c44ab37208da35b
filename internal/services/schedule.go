package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"beaconattendance/internal/domain"
)

type scheduleService struct {
	eventRepo      domain.EventRepository
	courseRepo     domain.CourseRepository
	userRepo       domain.UserRepository
	clock          domain.Clock
	contextTimeout time.Duration
}

// NewScheduleService creates a ScheduleService with the given repositories
// and clock.
func NewScheduleService(
	eventRepo domain.EventRepository,
	courseRepo domain.CourseRepository,
	userRepo domain.UserRepository,
	clock domain.Clock,
	timeout time.Duration,
) domain.ScheduleService {
	return &scheduleService{
		eventRepo:      eventRepo,
		courseRepo:     courseRepo,
		userRepo:       userRepo,
		clock:          clock,
		contextTimeout: timeout,
	}
}

// requireTeacher resolves the user and checks the teacher role.
func (s *scheduleService) requireTeacher(ctx context.Context, userID int64) error {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotATeacher
		}
		return fmt.Errorf("get user: %w", err)
	}
	if !user.IsTeacher() {
		return domain.ErrNotATeacher
	}
	return nil
}

func (s *scheduleService) CreateEvent(ctx context.Context, req *domain.ScheduleRequest, creatorID int64) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if err := req.Pattern.Validate(); err != nil {
		return 0, err
	}
	if err := s.requireTeacher(ctx, req.TeacherID); err != nil {
		return 0, err
	}
	course, err := s.courseRepo.GetByID(ctx, req.CourseID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return 0, domain.ErrCourseNotFound
		}
		return 0, fmt.Errorf("get course: %w", err)
	}
	if !course.HasPersonnel(req.TeacherID) {
		return 0, domain.ErrPersonalNotInCourse
	}

	var drafts []*domain.EventInstance
	for iv := range req.Pattern.Occurrences() {
		// Expansion yields intervals in calendar order, so a draft can only
		// collide with its predecessor. Persisted instances are checked
		// inside the repository transaction.
		if n := len(drafts); n > 0 && domain.Overlaps(iv, drafts[n-1].Interval()) {
			return 0, domain.ErrRoomConflict
		}
		drafts = append(drafts, &domain.EventInstance{
			CourseID:  req.CourseID,
			RoomID:    req.RoomID,
			TeacherID: req.TeacherID,
			Name:      req.Name,
			Type:      req.Type,
			StartTime: iv.Start,
			EndTime:   iv.End,
			CreatedBy: creatorID,
		})
	}
	if len(drafts) == 0 {
		return 0, domain.ErrInvalidRange
	}

	created, err := s.eventRepo.CreateBatch(ctx, drafts)
	if err != nil {
		if errors.Is(err, domain.ErrRoomConflict) || errors.Is(err, domain.ErrTeacherConflict) {
			return 0, err
		}
		return 0, fmt.Errorf("create events: %w", err)
	}
	return created, nil
}

func (s *scheduleService) UpdateEvent(ctx context.Context, eventID int64, req *domain.ScheduleRequest, updaterID int64) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	// Updates rewrite exactly one stored instance, so the pattern must
	// describe a single day.
	if !req.Pattern.StartDate.Equal(req.Pattern.EndDate) {
		return domain.ErrInvalidRange
	}
	if err := req.Pattern.Validate(); err != nil {
		return err
	}
	if err := s.requireTeacher(ctx, req.TeacherID); err != nil {
		return err
	}
	existing, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("get event: %w", err)
	}

	updated := &domain.EventInstance{
		ID:        existing.ID,
		CourseID:  req.CourseID,
		RoomID:    req.RoomID,
		TeacherID: req.TeacherID,
		Name:      req.Name,
		Type:      req.Type,
		StartTime: req.Pattern.StartTime.On(req.Pattern.StartDate),
		EndTime:   req.Pattern.EndTime.On(req.Pattern.EndDate),
		UpdatedBy: updaterID,
	}
	if err := s.eventRepo.Update(ctx, updated); err != nil {
		if errors.Is(err, domain.ErrNotFound) ||
			errors.Is(err, domain.ErrRoomConflict) ||
			errors.Is(err, domain.ErrTeacherConflict) {
			return err
		}
		return fmt.Errorf("update event: %w", err)
	}
	return nil
}

func (s *scheduleService) ToggleAttendanceWindow(ctx context.Context, eventID, callerID int64) (bool, string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return false, "", domain.ErrNotFound
		}
		return false, "", fmt.Errorf("get event: %w", err)
	}
	now := s.clock.Now()
	if _, err := event.NextWindowState(callerID, now); err != nil {
		return false, "", err
	}

	// The repository re-checks the guards in the UPDATE itself; a miss here
	// means the row changed between our read and the write.
	open, err := s.eventRepo.ToggleWindow(ctx, eventID, callerID, now)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return false, "", domain.ErrOutsideWindow
		}
		return false, "", fmt.Errorf("toggle attendance window: %w", err)
	}
	msg := fmt.Sprintf("Event status has been changed from %v to %v",
		domain.WindowState(!open), domain.WindowState(open))
	return open, msg, nil
}

func (s *scheduleService) GetEventByID(ctx context.Context, eventID, callerID int64) (*domain.EventDetail, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	detail, err := s.eventRepo.GetDetail(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	if !containsID(detail.CoursePersonnel, callerID) {
		return nil, domain.ErrForbidden
	}
	return detail, nil
}

func (s *scheduleService) ListMyEvents(ctx context.Context, teacherID int64) ([]*domain.EventDetail, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	events, err := s.eventRepo.ListByTeacher(ctx, teacherID)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	if events == nil {
		events = []*domain.EventDetail{}
	}
	return events, nil
}

func (s *scheduleService) DeleteEvent(ctx context.Context, eventID, callerID int64) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	detail, err := s.eventRepo.GetDetail(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("get event: %w", err)
	}
	if !containsID(detail.CoursePersonnel, callerID) {
		return domain.ErrForbidden
	}
	if err := s.eventRepo.Delete(ctx, eventID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("delete event: %w", err)
	}
	return nil
}

func containsID(ids []int64, id int64) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
