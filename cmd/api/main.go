package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/geoattend/attendance-backend-go/internal/config"
	appHTTP "github.com/geoattend/attendance-backend-go/internal/handler/http"
	"github.com/geoattend/attendance-backend-go/internal/pkg/cron"
	"github.com/geoattend/attendance-backend-go/internal/pkg/database"
	"github.com/geoattend/attendance-backend-go/internal/pkg/geocode"
	"github.com/geoattend/attendance-backend-go/internal/pkg/jwt"
	"github.com/geoattend/attendance-backend-go/internal/pkg/sse"
	"github.com/geoattend/attendance-backend-go/internal/pkg/storage"
	"github.com/geoattend/attendance-backend-go/internal/repository/postgresql"
	attendanceService "github.com/geoattend/attendance-backend-go/internal/service/attendance"
	serviceAuth "github.com/geoattend/attendance-backend-go/internal/service/auth"
	"github.com/geoattend/attendance-backend-go/internal/service/file"
	notificationService "github.com/geoattend/attendance-backend-go/internal/service/notification"
	policyService "github.com/geoattend/attendance-backend-go/internal/service/policy"
	reportService "github.com/geoattend/attendance-backend-go/internal/service/report"
	userService "github.com/geoattend/attendance-backend-go/internal/service/user"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		return
	}

	dsn := cfg.DatabaseURL()
	db, err := database.NewPostgreSQLDB(dsn)
	if err != nil {
		fmt.Println("Error connecting to database:", err)
		return
	}

	userRepo := postgresql.NewUserRepository(db)
	attendanceRepo := postgresql.NewAttendanceRepository(db)
	notificationRepo := postgresql.NewNotificationRepository(db)
	policyRepo := postgresql.NewPolicyRepository(db)

	JWTService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration, cfg.JWT.RefreshExpiration)

	var fileStorage storage.FileStorage
	switch cfg.Storage.Type {
	case "local":
		fileStorage, err = storage.NewLocalStorage(
			cfg.Storage.BasePath,
			cfg.Storage.BaseURL,
		)
		if err != nil {
			log.Fatal("Failed to initialize local storage:", err)
		}
	default:
		log.Fatal("Unsupported storage type: ", cfg.Storage.Type)
	}

	fileService := file.NewFileService(fileStorage)

	// Any geocoder failure degrades to the raw coordinate string, so a
	// slow or unreachable upstream can never block a check-in
	var geocoder geocode.Geocoder
	if cfg.Geocoder.Disabled {
		geocoder = geocode.NewStatic()
	} else {
		geocoder = geocode.NewNominatim(cfg.Geocoder.BaseURL, cfg.Geocoder.UserAgent, cfg.Geocoder.Timeout)
	}
	geocoder = geocode.NewFallback(geocoder)

	attendanceTZ, err := time.LoadLocation(cfg.Attendance.Timezone)
	if err != nil {
		log.Fatal("Invalid attendance timezone: ", err)
	}

	hub := sse.NewHub()

	authSvc := serviceAuth.NewAuthService(userRepo, JWTService)
	userSvc := userService.NewUserService(userRepo)
	attendanceSvc := attendanceService.NewAttendanceService(attendanceRepo, geocoder, fileService, attendanceTZ)
	notificationSvc := notificationService.NewNotificationService(notificationRepo, hub)
	policySvc := policyService.NewPolicyService(policyRepo)
	reportSvc := reportService.NewReportService(attendanceRepo, attendanceTZ)

	authHandler := appHTTP.NewAuthHandler(authSvc, JWTService)
	userHandler := appHTTP.NewUserHandler(userSvc)
	attendanceHandler := appHTTP.NewAttendanceHandler(attendanceSvc)
	notificationHandler := appHTTP.NewNotificationHandler(notificationSvc, JWTService)
	policyHandler := appHTTP.NewPolicyHandler(policySvc)
	reportHandler := appHTTP.NewReportHandler(reportSvc)

	scheduler := cron.NewScheduler()
	scheduler.AddJob("notification-prune", time.Hour, func(ctx context.Context) error {
		_, err := notificationSvc.Prune(ctx)
		return err
	})
	scheduler.AddJob("revoked-token-purge", 6*time.Hour, func(ctx context.Context) error {
		refreshTTL, err := time.ParseDuration(cfg.JWT.RefreshExpiration)
		if err != nil {
			refreshTTL = 168 * time.Hour
		}
		JWTService.PurgeRevokedBefore(time.Now().Add(-refreshTTL))
		return nil
	})
	scheduler.Start()
	defer scheduler.Stop()

	router := appHTTP.NewRouter(appHTTP.RouterConfig{
		JWTService:          JWTService,
		UserRepo:            userRepo,
		AuthHandler:         authHandler,
		UserHandler:         userHandler,
		AttendanceHandler:   attendanceHandler,
		NotificationHandler: notificationHandler,
		PolicyHandler:       policyHandler,
		ReportHandler:       reportHandler,
		CORSOrigins:         []string{cfg.App.FrontendURL},
		UploadsDir:          cfg.Storage.BasePath,
	})

	addr := fmt.Sprintf(":%d", cfg.App.Port)
	log.Printf("Server listening on %s", addr)
	if err := http.ListenAndServe(addr, router); err != nil {
		log.Fatal("Server error: ", err)
	}
}
