package rest

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/frahmantamala/leave-management/api"
	"github.com/frahmantamala/leave-management/internal/auth"
	"github.com/frahmantamala/leave-management/internal/leave"
	"github.com/frahmantamala/leave-management/internal/transport/middleware"
	"github.com/frahmantamala/leave-management/internal/transport/swagger"
	"github.com/frahmantamala/leave-management/internal/user"
	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"
)

// Dependencies is everything the router mounts. Optional pieces may be nil.
type Dependencies struct {
	DB           *sql.DB
	AuthHandler  *auth.Handler
	UserHandler  *user.Handler
	LeaveHandler *leave.Handler

	AllowedOrigins []string
	// LoginLimiter throttles /auth/login and /auth/register per client IP.
	LoginLimiter *middleware.RateLimiter
	// Validate checks request bodies against the OpenAPI document.
	Validate func(http.Handler) http.Handler

	HTTPMetrics    middleware.HTTPRecorder
	MetricsPath    string
	MetricsHandler http.Handler

	Logger *slog.Logger
}

func RegisterAllRoutes(router chi.Router, deps Dependencies) {
	healthHandler := NewHealthHandler(deps.DB)

	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(middleware.RequestID)
	router.Use(middleware.LoggingMiddleware())
	router.Use(middleware.RecoveryMiddleware(deps.Logger))
	router.Use(middleware.NewCORSMiddleware(deps.AllowedOrigins))
	if deps.HTTPMetrics != nil {
		router.Use(middleware.Metrics(deps.HTTPMetrics))
	}

	validate := deps.Validate
	if validate == nil {
		validate = passthrough
	}

	router.Get("/", indexHandler)
	router.Get("/health", healthHandler.healthCheckHandler)
	router.Get("/ping", healthHandler.pingHandler)

	if deps.MetricsHandler != nil {
		path := deps.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		router.Handle(path, deps.MetricsHandler)
	}

	router.Get("/openapi.yml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/yaml")
		_, _ = w.Write(api.OpenAPISpec)
	})
	router.Handle("/swagger/*", swagger.Handler())

	router.Route("/auth", func(ar chi.Router) {
		if deps.LoginLimiter != nil {
			ar.Use(deps.LoginLimiter.Middleware)
		}
		ar.Use(validate)
		if deps.UserHandler != nil {
			ar.Post("/register", deps.UserHandler.Register)
		}
		if deps.AuthHandler != nil {
			ar.Post("/login", deps.AuthHandler.Login)
		}
	})

	if deps.AuthHandler == nil || deps.LeaveHandler == nil {
		return
	}

	// Authentication and the role guard run before body validation so an
	// anonymous or under-privileged caller never learns about schema errors.
	router.Route("/leaves", func(lr chi.Router) {
		lr.Use(deps.AuthHandler.AuthMiddleware)

		lr.With(deps.AuthHandler.Require(auth.ActionListLeaveRequests)).
			Get("/", deps.LeaveHandler.ListLeaves)
		lr.With(deps.AuthHandler.Require(auth.ActionCreateLeaveRequest), validate).
			Post("/", deps.LeaveHandler.CreateLeave)
		lr.With(deps.AuthHandler.Require(auth.ActionUpdateLeaveRequestStatus), validate).
			Patch("/{id}/status", deps.LeaveHandler.UpdateStatus)
	})
}

func passthrough(next http.Handler) http.Handler {
	return next
}
