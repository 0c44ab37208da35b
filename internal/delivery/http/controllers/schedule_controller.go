package controllers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"beaconattendance/internal/delivery/http/helpers"
	"beaconattendance/internal/delivery/http/middleware"
	"beaconattendance/internal/domain"
)

const dateLayout = "2006-01-02"

// ScheduleRequestBody is the request body for POST /events and PUT /events/{eventID}.
// Dates are "YYYY-MM-DD" and times are "HH:MM:SS" in the configured event timezone.
type ScheduleRequestBody struct {
	CourseID       int64  `json:"courseId"`
	RoomID         int64  `json:"roomId"`
	EventName      string `json:"eventName"`
	EventType      string `json:"eventType"`
	EventPersonal  int64  `json:"eventPersonal"`
	StartDate      string `json:"startDate"`
	EndDate        string `json:"endDate"`
	StartTime      string `json:"startTime"`
	EndTime        string `json:"endTime"`
	Recurrent      bool   `json:"recurrent"`
	EveryAfter     int    `json:"everyAfter"`
	EveryAfterType string `json:"everyAfterType"`
}

// Validate implements Validator. Returns error messages for required and format rules.
func (b ScheduleRequestBody) Validate() []string {
	var errs []string
	if b.CourseID == 0 {
		errs = append(errs, "courseId is required")
	}
	if b.RoomID == 0 {
		errs = append(errs, "roomId is required")
	}
	if b.EventName == "" {
		errs = append(errs, "eventName is required")
	}
	if b.EventType != string(domain.EventClass) && b.EventType != string(domain.EventExercise) {
		errs = append(errs, "eventType must be class or exercise")
	}
	if b.EventPersonal == 0 {
		errs = append(errs, "eventPersonal is required")
	}
	if _, err := time.Parse(dateLayout, b.StartDate); err != nil {
		errs = append(errs, "startDate must be YYYY-MM-DD")
	}
	if _, err := time.Parse(dateLayout, b.EndDate); err != nil {
		errs = append(errs, "endDate must be YYYY-MM-DD")
	}
	if _, err := domain.ParseClockTime(b.StartTime); err != nil {
		errs = append(errs, "startTime must be HH:MM:SS")
	}
	if _, err := domain.ParseClockTime(b.EndTime); err != nil {
		errs = append(errs, "endTime must be HH:MM:SS")
	}
	if b.Recurrent {
		if b.EveryAfter < 1 {
			errs = append(errs, "everyAfter must be at least 1")
		}
		if b.EveryAfterType != string(domain.EveryDay) && b.EveryAfterType != string(domain.EveryWeek) {
			errs = append(errs, "everyAfterType must be day or week")
		}
	}
	return errs
}

// toScheduleRequest converts the body into a domain request, placing the civil
// dates in loc. Validate must have passed first.
func (b ScheduleRequestBody) toScheduleRequest(loc *time.Location) *domain.ScheduleRequest {
	startDate, _ := time.ParseInLocation(dateLayout, b.StartDate, loc)
	endDate, _ := time.ParseInLocation(dateLayout, b.EndDate, loc)
	startTime, _ := domain.ParseClockTime(b.StartTime)
	endTime, _ := domain.ParseClockTime(b.EndTime)
	return &domain.ScheduleRequest{
		Pattern: domain.RecurrencePattern{
			StartDate:      startDate,
			EndDate:        endDate,
			StartTime:      startTime,
			EndTime:        endTime,
			Recurrent:      b.Recurrent,
			EveryAfter:     b.EveryAfter,
			EveryAfterUnit: domain.RecurrenceUnit(b.EveryAfterType),
		},
		CourseID:  b.CourseID,
		RoomID:    b.RoomID,
		TeacherID: b.EventPersonal,
		Name:      b.EventName,
		Type:      domain.EventType(b.EventType),
	}
}

// CreateEventResponse is the data payload for POST /events (201).
type CreateEventResponse struct {
	Created int `json:"created"`
}

// CreateEventSuccessResponse is the success response envelope for POST /events (201).
type CreateEventSuccessResponse struct {
	Data  CreateEventResponse `json:"data"`
	Error *helpers.APIError   `json:"error"`
}

type ScheduleController struct {
	Logger  *slog.Logger
	Service domain.ScheduleService
	Clock   domain.Clock
}

func NewScheduleController(logger *slog.Logger, svc domain.ScheduleService, clock domain.Clock) *ScheduleController {
	return &ScheduleController{
		Logger:  logger,
		Service: svc,
		Clock:   clock,
	}
}

// writeScheduleError maps scheduling errors onto response codes. Unknown
// errors are logged and reported as 500.
func (c *ScheduleController) writeScheduleError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidRange),
		errors.Is(err, domain.ErrNotATeacher),
		errors.Is(err, domain.ErrPersonalNotInCourse):
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, err.Error())
	case errors.Is(err, domain.ErrCourseNotFound), errors.Is(err, domain.ErrNotFound):
		helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, err.Error())
	case errors.Is(err, domain.ErrRoomConflict), errors.Is(err, domain.ErrTeacherConflict):
		helpers.WriteJSONError(w, http.StatusConflict, helpers.ErrCodeConflict, err.Error())
	case errors.Is(err, domain.ErrForbidden), errors.Is(err, domain.ErrNotOwner):
		helpers.WriteJSONError(w, http.StatusForbidden, helpers.ErrCodeForbidden, err.Error())
	case errors.Is(err, domain.ErrOutsideWindow):
		helpers.WriteJSONError(w, http.StatusConflict, helpers.ErrCodeConflict, err.Error())
	default:
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
	}
}

// CreateEvent godoc
// @Summary Create event instances from a schedule
// @Description Expands the date range (optionally recurrent by day or week) into concrete event instances and stores them all-or-nothing. Rejects room and teacher double-bookings.
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param schedule body ScheduleRequestBody true "Schedule to expand"
// @Success 201 {object} controllers.CreateEventSuccessResponse "data contains the number of instances created"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found (course)"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (room or teacher already booked)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events [post]
func (c *ScheduleController) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var body ScheduleRequestBody
	if !helpers.DecodeAndValidate(w, r, &body) {
		return
	}
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	created, err := c.Service.CreateEvent(r.Context(), body.toScheduleRequest(c.Clock.Location()), userID)
	if err != nil {
		c.writeScheduleError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, CreateEventResponse{Created: created})
}

// UpdateEventResponse is the data payload for PUT /events/{eventID} (200).
type UpdateEventResponse struct {
	Status string `json:"status"`
}

// UpdateEventSuccessResponse is the success response envelope for PUT /events/{eventID} (200).
type UpdateEventSuccessResponse struct {
	Data  UpdateEventResponse `json:"data"`
	Error *helpers.APIError   `json:"error"`
}

// UpdateEvent godoc
// @Summary Update a single event instance
// @Description Rewrites one stored instance. The schedule must describe a single day (startDate equal to endDate). The new placement is re-validated against room and teacher bookings unless it is unchanged.
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param eventID path int true "Event instance ID"
// @Param schedule body ScheduleRequestBody true "Single-day schedule"
// @Success 200 {object} controllers.UpdateEventSuccessResponse "data contains status"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (room or teacher already booked)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID} [put]
func (c *ScheduleController) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	eventID, err := strconv.ParseInt(r.PathValue("eventID"), 10, 64)
	if err != nil {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid eventID")
		return
	}
	var body ScheduleRequestBody
	if !helpers.DecodeAndValidate(w, r, &body) {
		return
	}
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	if err := c.Service.UpdateEvent(r.Context(), eventID, body.toScheduleRequest(c.Clock.Location()), userID); err != nil {
		c.writeScheduleError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, UpdateEventResponse{Status: "updated"})
}

// ToggleAttendanceResponse is the data payload for PATCH /events/{eventID}/attendance (200).
type ToggleAttendanceResponse struct {
	AcceptAttendance bool   `json:"acceptAttendance"`
	Message          string `json:"message"`
}

// ToggleAttendanceSuccessResponse is the success response envelope for PATCH /events/{eventID}/attendance (200).
type ToggleAttendanceSuccessResponse struct {
	Data  ToggleAttendanceResponse `json:"data"`
	Error *helpers.APIError        `json:"error"`
}

// ToggleAttendance godoc
// @Summary Toggle the attendance window of an event
// @Description Flips accept_attendance for the instance. Allowed only to the instance's own teacher and only while the current time lies inside the instance's interval. The window never closes on a timer; a second toggle closes it.
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param eventID path int true "Event instance ID"
// @Success 200 {object} controllers.ToggleAttendanceSuccessResponse "data contains the new state and a transition message"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden (not the event teacher)"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (outside the event interval)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/attendance [patch]
func (c *ScheduleController) ToggleAttendance(w http.ResponseWriter, r *http.Request) {
	eventID, err := strconv.ParseInt(r.PathValue("eventID"), 10, 64)
	if err != nil {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid eventID")
		return
	}
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	open, message, err := c.Service.ToggleAttendanceWindow(r.Context(), eventID, userID)
	if err != nil {
		c.writeScheduleError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, ToggleAttendanceResponse{AcceptAttendance: open, Message: message})
}

// GetEventByIDSuccessResponse is the success response envelope for GET /events/{eventID} (200).
type GetEventByIDSuccessResponse struct {
	Data  *domain.EventDetail `json:"data"`
	Error *helpers.APIError   `json:"error"`
}

// GetEventByID godoc
// @Summary Get an event instance by ID
// @Description Returns the instance joined with its course, room and teacher. Visible only to the course personnel.
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param eventID path int true "Event instance ID"
// @Success 200 {object} controllers.GetEventByIDSuccessResponse "data contains the event detail"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden (not course personnel)"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID} [get]
func (c *ScheduleController) GetEventByID(w http.ResponseWriter, r *http.Request) {
	eventID, err := strconv.ParseInt(r.PathValue("eventID"), 10, 64)
	if err != nil {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid eventID")
		return
	}
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	detail, err := c.Service.GetEventByID(r.Context(), eventID, userID)
	if err != nil {
		c.writeScheduleError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, detail)
}

// ListMyEventsSuccessResponse is the success response envelope for GET /events/me (200).
type ListMyEventsSuccessResponse struct {
	Data  []*domain.EventDetail `json:"data"`
	Error *helpers.APIError     `json:"error"`
}

// ListMyEvents godoc
// @Summary List event instances assigned to the current user
// @Description Returns instances where the authenticated user is the event teacher, in chronological order.
// @Tags events
// @Produce json
// @Security BearerAuth
// @Success 200 {object} controllers.ListMyEventsSuccessResponse "data is an array of event details"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/me [get]
func (c *ScheduleController) ListMyEvents(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	events, err := c.Service.ListMyEvents(r.Context(), userID)
	if err != nil {
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}
	if events == nil {
		events = []*domain.EventDetail{}
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, events)
}

// DeleteEventResponse is the data payload for DELETE /events/{eventID} (200).
type DeleteEventResponse struct {
	Status string `json:"status"`
}

// DeleteEventSuccessResponse is the success response envelope for DELETE /events/{eventID} (200).
type DeleteEventSuccessResponse struct {
	Data  DeleteEventResponse `json:"data"`
	Error *helpers.APIError   `json:"error"`
}

// DeleteEvent godoc
// @Summary Delete an event instance
// @Description Deletes one instance. Only course personnel can delete.
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param eventID path int true "Event instance ID"
// @Success 200 {object} controllers.DeleteEventSuccessResponse "data contains status"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden (not course personnel)"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID} [delete]
func (c *ScheduleController) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	eventID, err := strconv.ParseInt(r.PathValue("eventID"), 10, 64)
	if err != nil {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid eventID")
		return
	}
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	if err := c.Service.DeleteEvent(r.Context(), eventID, userID); err != nil {
		c.writeScheduleError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, DeleteEventResponse{Status: "deleted"})
}
