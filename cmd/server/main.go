package main

import (
	"database/sql"
	"net/http"
	"os"

	_ "github.com/lib/pq"

	"beaconattendance/config"
	_ "beaconattendance/docs"
	"beaconattendance/internal/adapters/auth"
	"beaconattendance/internal/adapters/clock"
	httpdelivery "beaconattendance/internal/delivery/http"
	"beaconattendance/internal/delivery/http/controllers"
	"beaconattendance/internal/delivery/http/middleware"
	"beaconattendance/internal/repository/postgres"
	"beaconattendance/internal/services"
)

// @title Beacon Attendance API
// @version 1.0
// @description Backend for beacon-based classroom attendance: teachers schedule recurring event instances and open attendance windows, students resolve nearby beacons to joinable events and check in.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the token.
func main() {
	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}
	logger := config.NewLogger()

	db, err := sql.Open("postgres", cfg.DBUrl)
	if err != nil {
		logger.Error("failed to open database", "err", err)
		os.Exit(1)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		logger.Error("failed to reach database", "err", err)
		os.Exit(1)
	}

	zone, err := clock.NewZoneClock(cfg.EventTimezone)
	if err != nil {
		logger.Error("failed to load event timezone", "timezone", cfg.EventTimezone, "err", err)
		os.Exit(1)
	}

	tokens := auth.NewJWTTokens(cfg.JWTSecret)
	hasher := auth.NewBcryptHasher()

	eventRepo := postgres.NewEventRepository(db)
	attendanceRepo := postgres.NewAttendanceRepository(db)
	associationRepo := postgres.NewAssociationRepository(db)
	courseRepo := postgres.NewCourseRepository(db)
	userRepo := postgres.NewUserRepository(db)

	scheduleSvc := services.NewScheduleService(eventRepo, courseRepo, userRepo, zone, cfg.DBTimeout)
	checkInSvc := services.NewCheckInService(eventRepo, attendanceRepo, associationRepo, zone, cfg.DBTimeout)
	authSvc := services.NewAuthService(userRepo, hasher, tokens, cfg.TokenExpiry)

	scheduleController := controllers.NewScheduleController(logger, scheduleSvc, zone)
	checkInController := controllers.NewCheckInController(logger, checkInSvc)
	authController := controllers.NewAuthController(logger, authSvc)

	mux := httpdelivery.NewRouter(scheduleController, checkInController, authController, tokens, logger)
	handler := middleware.CORS(cfg.AllowedOrigins, middleware.LoggingMiddleware(logger, mux))

	logger.Info("server starting", "port", cfg.Port, "environment", cfg.Environment)
	if err := http.ListenAndServe(":"+cfg.Port, handler); err != nil {
		logger.Error("server stopped", "err", err)
		os.Exit(1)
	}
}
