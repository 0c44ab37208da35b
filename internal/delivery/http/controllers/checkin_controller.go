package controllers

import (
	"errors"
	"log/slog"
	"net/http"

	"beaconattendance/internal/delivery/http/helpers"
	"beaconattendance/internal/domain"
)

// SearchBeaconsRequest is the request body for POST /checkins/search.
// Beacons is the list of MAC addresses the student's device can currently hear.
type SearchBeaconsRequest struct {
	Beacons []string `json:"beacons"`
}

// Validate implements Validator.
func (s SearchBeaconsRequest) Validate() []string {
	if len(s.Beacons) == 0 {
		return []string{"beacons is required"}
	}
	return nil
}

// SearchBeaconsSuccessResponse is the success response envelope for POST /checkins/search (200).
type SearchBeaconsSuccessResponse struct {
	Data  []*domain.ActiveEvent `json:"data"`
	Error *helpers.APIError     `json:"error"`
}

// TakeAttendanceRequest is the request body for POST /checkins.
type TakeAttendanceRequest struct {
	EventID   int64 `json:"eventId"`
	StudentID int64 `json:"studentId"`
}

// Validate implements Validator.
func (t TakeAttendanceRequest) Validate() []string {
	var errs []string
	if t.EventID == 0 {
		errs = append(errs, "eventId is required")
	}
	if t.StudentID == 0 {
		errs = append(errs, "studentId is required")
	}
	return errs
}

// TakeAttendanceResponse is the data payload for POST /checkins (201).
type TakeAttendanceResponse struct {
	Message string `json:"message"`
}

// TakeAttendanceSuccessResponse is the success response envelope for POST /checkins (201).
type TakeAttendanceSuccessResponse struct {
	Data  TakeAttendanceResponse `json:"data"`
	Error *helpers.APIError      `json:"error"`
}

// CheckInController serves the student-facing check-in flow. Its endpoints
// are reachable without a token; students identify themselves by ID.
type CheckInController struct {
	Logger  *slog.Logger
	Service domain.CheckInService
}

func NewCheckInController(logger *slog.Logger, svc domain.CheckInService) *CheckInController {
	return &CheckInController{
		Logger:  logger,
		Service: svc,
	}
}

// SearchBeacons godoc
// @Summary Resolve heard beacons to joinable events
// @Description Maps the submitted beacon MAC addresses to rooms and returns the events in those rooms whose attendance window is open right now. Duplicate MACs and beacons sharing a room are tolerated; each event appears once.
// @Tags checkins
// @Accept json
// @Produce json
// @Param beacons body SearchBeaconsRequest true "Beacon MAC addresses in range"
// @Success 200 {object} controllers.SearchBeaconsSuccessResponse "data is an array of joinable events"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found (no room for the beacons, or no open event)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /checkins/search [post]
func (c *CheckInController) SearchBeacons(w http.ResponseWriter, r *http.Request) {
	var req SearchBeaconsRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	events, err := c.Service.ResolveActiveEvents(r.Context(), req.Beacons)
	if err != nil {
		if errors.Is(err, domain.ErrNoRoomForBeacons) || errors.Is(err, domain.ErrNoActiveEvent) {
			helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, err.Error())
			return
		}
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, events)
}

// TakeAttendance godoc
// @Summary Record attendance for a student
// @Description Records the student as present for the event if its attendance window is open. Re-submitting for the same event and student succeeds without changing the stored record.
// @Tags checkins
// @Accept json
// @Produce json
// @Param checkin body TakeAttendanceRequest true "Event and student"
// @Success 201 {object} controllers.TakeAttendanceSuccessResponse "data contains the outcome message"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request (unknown event or student)"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found (window closed or event missing)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /checkins [post]
func (c *CheckInController) TakeAttendance(w http.ResponseWriter, r *http.Request) {
	var req TakeAttendanceRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	message, err := c.Service.RecordAttendance(r.Context(), req.EventID, req.StudentID)
	if err != nil {
		if errors.Is(err, domain.ErrEventNotActive) {
			helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, err.Error())
			return
		}
		if errors.Is(err, domain.ErrReferentialViolation) {
			helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, err.Error())
			return
		}
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, TakeAttendanceResponse{Message: message})
}
