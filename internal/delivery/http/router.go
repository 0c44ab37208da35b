package http

import (
	"log/slog"
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"

	"beaconattendance/internal/delivery/http/controllers"
	"beaconattendance/internal/delivery/http/middleware"
	"beaconattendance/internal/domain"
)

// NewRouter initializes the HTTP router with all application routes.
// Scheduling routes require a Bearer token; the check-in routes are open
// because students check in from unauthenticated devices.
func NewRouter(
	scheduleController *controllers.ScheduleController,
	checkInController *controllers.CheckInController,
	authController *controllers.AuthController,
	verifier domain.TokenVerifier,
	logger *slog.Logger,
) *http.ServeMux {
	mux := http.NewServeMux()
	auth := middleware.RequireAuth(verifier, logger)

	// Scheduling
	mux.HandleFunc("POST /events", auth(scheduleController.CreateEvent))
	mux.HandleFunc("GET /events/me", auth(scheduleController.ListMyEvents))
	mux.HandleFunc("GET /events/{eventID}", auth(scheduleController.GetEventByID))
	mux.HandleFunc("PUT /events/{eventID}", auth(scheduleController.UpdateEvent))
	mux.HandleFunc("DELETE /events/{eventID}", auth(scheduleController.DeleteEvent))
	mux.HandleFunc("PATCH /events/{eventID}/attendance", auth(scheduleController.ToggleAttendance))

	// Check-in
	mux.HandleFunc("POST /checkins/search", checkInController.SearchBeacons)
	mux.HandleFunc("POST /checkins", checkInController.TakeAttendance)

	// Auth
	mux.HandleFunc("POST /auth/login", authController.Login)

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	return mux
}
