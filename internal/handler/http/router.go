package http

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/geoattend/attendance-backend-go/internal/domain/user"
	"github.com/geoattend/attendance-backend-go/internal/handler/http/middleware"
	"github.com/geoattend/attendance-backend-go/internal/pkg/jwt"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
)

type RouterConfig struct {
	JWTService          jwt.Service
	UserRepo            user.UserRepository
	AuthHandler         AuthHandler
	UserHandler         UserHandler
	AttendanceHandler   AttendanceHandler
	NotificationHandler NotificationHandler
	PolicyHandler       PolicyHandler
	ReportHandler       ReportHandler
	CORSOrigins         []string
	UploadsDir          string
}

func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()
	logFormat := httplog.SchemaECS.Concise(false)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "attendance-backend"),
		slog.String("version", "v1.0.0"),
	)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Disposition"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelDebug,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/health"))

	// Stored attendance photos
	if cfg.UploadsDir != "" {
		fs := http.StripPrefix("/uploads/", http.FileServer(http.Dir(cfg.UploadsDir)))
		r.Get("/uploads/*", fs.ServeHTTP)
	}

	r.Route("/api/v1", func(r chi.Router) {

		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", cfg.AuthHandler.Register)
			r.Post("/login", cfg.AuthHandler.Login)
			r.Post("/refresh", cfg.AuthHandler.Refresh)
			r.Post("/logout", cfg.AuthHandler.Logout)

			r.Group(func(r chi.Router) {
				r.Use(jwtauth.Verifier(cfg.JWTService.JWTAuth()))
				r.Use(middleware.AuthRequired(cfg.JWTService, cfg.UserRepo))
				r.Get("/me", cfg.AuthHandler.Me)
			})
		})

		// The stream authenticates itself with a short-lived query token
		r.Get("/notifications/stream", cfg.NotificationHandler.Stream)

		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(cfg.JWTService.JWTAuth()))
			r.Use(middleware.AuthRequired(cfg.JWTService, cfg.UserRepo))

			r.Route("/attendance", func(r chi.Router) {
				r.Post("/check-in", cfg.AttendanceHandler.CheckIn)
				r.Post("/check-out", cfg.AttendanceHandler.CheckOut)
				r.Get("/today", cfg.AttendanceHandler.GetToday)
				r.Get("/my", cfg.AttendanceHandler.GetMyAttendance)
				r.Put("/location", cfg.AttendanceHandler.UpdateLocation)
				r.Get("/{id}/locations", cfg.AttendanceHandler.GetLocationHistory)

				// Admin only
				r.Group(func(r chi.Router) {
					r.Use(middleware.AdminOnly)
					r.Get("/date/{date}", cfg.AttendanceHandler.GetByDate)
					r.Get("/user/{userID}", cfg.AttendanceHandler.GetUserAttendance)
					r.Get("/export", cfg.ReportHandler.ExportAttendance)
				})
			})

			r.Route("/users", func(r chi.Router) {
				r.Use(middleware.AdminOnly)
				r.Get("/", cfg.UserHandler.List)
				r.Get("/{id}", cfg.UserHandler.Get)
				r.Put("/{id}", cfg.UserHandler.Update)
				r.Delete("/{id}", cfg.UserHandler.Delete)
			})

			r.Route("/notifications", func(r chi.Router) {
				r.Get("/", cfg.NotificationHandler.List)
				r.Get("/latest", cfg.NotificationHandler.GetLatest)
				r.Get("/unread-count", cfg.NotificationHandler.GetUnreadCount)
				r.Get("/sse-token", cfg.NotificationHandler.GetSSEToken)
				r.Put("/{id}/read", cfg.NotificationHandler.MarkAsRead)

				// Admin only
				r.Group(func(r chi.Router) {
					r.Use(middleware.AdminOnly)
					r.Post("/", cfg.NotificationHandler.Create)
					r.Put("/{id}/deactivate", cfg.NotificationHandler.Deactivate)
					r.Delete("/{id}", cfg.NotificationHandler.Delete)
				})
			})

			r.Route("/policies", func(r chi.Router) {
				r.Get("/", cfg.PolicyHandler.List)
				r.Get("/{id}", cfg.PolicyHandler.Get)

				// Admin only
				r.Group(func(r chi.Router) {
					r.Use(middleware.AdminOnly)
					r.Post("/", cfg.PolicyHandler.Create)
					r.Put("/{id}", cfg.PolicyHandler.Update)
					r.Delete("/{id}", cfg.PolicyHandler.Delete)
				})
			})
		})
	})
	return r
}
