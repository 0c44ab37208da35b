package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"beaconattendance/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeCheckInService implements domain.CheckInService for handler tests.
type fakeCheckInService struct {
	resolveErr error
	events     []*domain.ActiveEvent
	lastMACs   []string
	recordErr  error
	recordMsg  string
	lastEvent  int64
	lastStu    int64
}

func (f *fakeCheckInService) ResolveActiveEvents(ctx context.Context, beaconMACs []string) ([]*domain.ActiveEvent, error) {
	f.lastMACs = beaconMACs
	if f.resolveErr != nil {
		return nil, f.resolveErr
	}
	return f.events, nil
}

func (f *fakeCheckInService) RecordAttendance(ctx context.Context, eventID, studentID int64) (string, error) {
	f.lastEvent = eventID
	f.lastStu = studentID
	if f.recordErr != nil {
		return "", f.recordErr
	}
	return f.recordMsg, nil
}

func TestCheckInController_SearchBeacons(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		fakeErr    error
		events     []*domain.ActiveEvent
		wantStatus int
	}{
		{
			name:       "open events found",
			body:       `{"beacons": ["AA:BB:CC:DD:EE:01", "AA:BB:CC:DD:EE:02"]}`,
			events:     []*domain.ActiveEvent{{EventID: 7, CourseName: "Algorithms", RoomName: "A101"}},
			wantStatus: http.StatusOK,
		},
		{
			name:       "empty beacon list",
			body:       `{"beacons": []}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "no room for the beacons",
			body:       `{"beacons": ["00:00:00:00:00:00"]}`,
			fakeErr:    domain.ErrNoRoomForBeacons,
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "no open event",
			body:       `{"beacons": ["AA:BB:CC:DD:EE:01"]}`,
			fakeErr:    domain.ErrNoActiveEvent,
			wantStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeCheckInService{resolveErr: tt.fakeErr, events: tt.events}
			ctl := NewCheckInController(testLogger, fake)

			req := httptest.NewRequest(http.MethodPost, "/checkins/search", bytes.NewBufferString(tt.body))
			rr := httptest.NewRecorder()
			ctl.SearchBeacons(rr, req)

			require.Equal(t, tt.wantStatus, rr.Code)
			if tt.wantStatus == http.StatusOK {
				var resp SearchBeaconsSuccessResponse
				require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
				require.Len(t, resp.Data, 1)
				assert.Equal(t, int64(7), resp.Data[0].EventID)
			}
		})
	}
}

func TestCheckInController_TakeAttendance(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		fakeErr    error
		fakeMsg    string
		wantStatus int
		wantMsg    string
	}{
		{
			name:       "recorded",
			body:       `{"eventId": 7, "studentId": 42}`,
			fakeMsg:    "Attendance added successfully",
			wantStatus: http.StatusCreated,
			wantMsg:    "Attendance added successfully",
		},
		{
			name:       "already recorded",
			body:       `{"eventId": 7, "studentId": 42}`,
			fakeMsg:    "Attendance already taken.",
			wantStatus: http.StatusCreated,
			wantMsg:    "Attendance already taken.",
		},
		{
			name:       "window closed",
			body:       `{"eventId": 8, "studentId": 42}`,
			fakeErr:    domain.ErrEventNotActive,
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "unknown student",
			body:       `{"eventId": 7, "studentId": 9999}`,
			fakeErr:    domain.ErrReferentialViolation,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "missing ids",
			body:       `{}`,
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeCheckInService{recordErr: tt.fakeErr, recordMsg: tt.fakeMsg}
			ctl := NewCheckInController(testLogger, fake)

			req := httptest.NewRequest(http.MethodPost, "/checkins", bytes.NewBufferString(tt.body))
			rr := httptest.NewRecorder()
			ctl.TakeAttendance(rr, req)

			require.Equal(t, tt.wantStatus, rr.Code)
			if tt.wantStatus == http.StatusCreated {
				var resp TakeAttendanceSuccessResponse
				require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
				assert.Equal(t, tt.wantMsg, resp.Data.Message)
			}
		})
	}
}
