package cmd

import (
	"context"
	stdErrors "errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/frahmantamala/leave-management/api"
	"github.com/frahmantamala/leave-management/internal"
	"github.com/frahmantamala/leave-management/internal/auth"
	"github.com/frahmantamala/leave-management/internal/core/events"
	"github.com/frahmantamala/leave-management/internal/leave"
	leavePostgres "github.com/frahmantamala/leave-management/internal/leave/postgres"
	"github.com/frahmantamala/leave-management/internal/metrics"
	"github.com/frahmantamala/leave-management/internal/transport/middleware"
	"github.com/frahmantamala/leave-management/internal/transport/openapi"
	"github.com/frahmantamala/leave-management/internal/transport/rest"
	"github.com/frahmantamala/leave-management/internal/user"
	userPostgres "github.com/frahmantamala/leave-management/internal/user/postgres"
	"github.com/frahmantamala/leave-management/pkg/logger"
	"github.com/go-chi/chi"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle API requests`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

type Dependencies struct {
	Config   *internal.Config
	DB       *database
	Router   *chi.Mux
	EventBus *events.EventBus
	Limiter  *middleware.RateLimiter
	Logger   *slog.Logger
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	deps.Logger.Info("Starting HTTP server", "address", addr)

	server := &http.Server{
		Addr:              addr,
		Handler:           deps.Router,
		ReadHeaderTimeout: deps.Config.Server.ReadHeaderTimeout,
		ReadTimeout:       deps.Config.Server.ReadTimeout,
		WriteTimeout:      deps.Config.Server.WriteTimeout,
		IdleTimeout:       deps.Config.Server.IdleTimeout,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		deps.Logger.Info("Received signal, shutting down...", "signal", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			deps.Logger.Error("Server shutdown error", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && !stdErrors.Is(err, http.ErrServerClosed) {
			deps.Logger.Error("Server failed to start", "error", err)
			deps.close()
			os.Exit(1)
		}
	}

	deps.close()
	deps.Logger.Info("Server stopped")
}

// close drains in-flight event handlers before releasing the pool they use.
func (d *Dependencies) close() {
	if d.Limiter != nil {
		d.Limiter.Stop()
	}
	d.EventBus.Wait()
	if err := d.DB.Close(); err != nil {
		d.Logger.Error("Database close error", "error", err)
	}
}

func initializeDependencies() (*Dependencies, error) {
	config, err := loadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	lg := logger.L()

	database, err := initDB(config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewDBStatsCollector(database.DB(), config.Database.Driver),
	)
	collector := metrics.NewCollector(registry)

	bus := events.NewEventBus(lg)
	leave.NewEventHandler(collector, lg).Register(bus)

	userService := user.NewService(userPostgres.NewUserRepository(database.Gorm), config.Security.BCryptCost, lg)
	tokenGen := auth.NewJWTTokenGenerator(config.Security.JWTSecret, config.Security.AccessTokenDuration)
	authService := auth.NewService(userService, tokenGen, collector, lg)
	leaveService := leave.NewService(leavePostgres.NewLeaveRepository(database.Gorm), bus, lg, leave.Options{
		RejectPastStartDates: config.Leave.RejectPastStartDates,
	})

	// a zero rate disables throttling of the credential endpoints
	var limiter *middleware.RateLimiter
	if config.Security.LoginRatePerMinute > 0 {
		limiter = middleware.NewRateLimiter(middleware.PerMinute(config.Security.LoginRatePerMinute, config.Security.LoginBurst))
	}

	routeDeps := rest.Dependencies{
		DB:             database.DB(),
		AuthHandler:    auth.NewHandler(authService),
		UserHandler:    user.NewHandler(userService),
		LeaveHandler:   leave.NewHandler(leaveService),
		AllowedOrigins: config.Server.Origins(),
		LoginLimiter:   limiter,
		HTTPMetrics:    collector,
		Logger:         lg,
	}

	if config.Server.ValidateRequests {
		doc, err := api.Load(context.Background())
		if err != nil {
			return nil, err
		}
		validator, err := openapi.NewValidator(doc)
		if err != nil {
			return nil, fmt.Errorf("failed to build request validator: %w", err)
		}
		routeDeps.Validate = validator.Middleware
	}

	if config.Observability.Metrics.Enabled {
		routeDeps.MetricsPath = config.Observability.Metrics.Path
		routeDeps.MetricsHandler = metrics.Handler(registry)
	}

	router := chi.NewRouter()
	rest.RegisterAllRoutes(router, routeDeps)

	return &Dependencies{
		Config:   config,
		DB:       database,
		Router:   router,
		EventBus: bus,
		Limiter:  limiter,
		Logger:   lg,
	}, nil
}
