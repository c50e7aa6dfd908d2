// Package server wires the domain services, platform pieces and HTTP
// transport into a runnable application.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"

	"nomina/internal/domain/audit"
	"nomina/internal/domain/employee"
	"nomina/internal/domain/notifications"
	"nomina/internal/domain/orders"
	"nomina/internal/domain/overtime"
	"nomina/internal/domain/payroll"
	"nomina/internal/domain/vacation"
	"nomina/internal/platform/config"
	"nomina/internal/platform/db"
	"nomina/internal/platform/email"
	"nomina/internal/platform/jobs"
	"nomina/internal/platform/metrics"
	adminhandler "nomina/internal/transport/http/handlers/admin"
	authhandler "nomina/internal/transport/http/handlers/auth"
	employeeshandler "nomina/internal/transport/http/handlers/employees"
	notificationshandler "nomina/internal/transport/http/handlers/notifications"
	ordershandler "nomina/internal/transport/http/handlers/orders"
	overtimehandler "nomina/internal/transport/http/handlers/overtime"
	payrollhandler "nomina/internal/transport/http/handlers/payroll"
	statshandler "nomina/internal/transport/http/handlers/stats"
	vacationshandler "nomina/internal/transport/http/handlers/vacations"
	"nomina/internal/transport/http/middleware"
	"nomina/internal/transport/http/shared"
)

type App struct {
	Config  config.Config
	DB      *pgxpool.Pool
	Router  http.Handler
	Jobs    *jobs.Service
	Metrics *metrics.Collector
}

// New connects to the database, runs migrations and seeding when enabled,
// and assembles the full router.
func New(ctx context.Context, cfg config.Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("db connect: %w", err)
	}

	if cfg.RunMigrations {
		if err := db.Migrate(ctx, pool, cfg.MigrationsDir); err != nil {
			pool.Close()
			return nil, fmt.Errorf("migrations: %w", err)
		}
	}
	if cfg.RunSeed {
		if err := db.Seed(ctx, pool, cfg); err != nil {
			pool.Close()
			return nil, fmt.Errorf("seed: %w", err)
		}
	}

	app := &App{Config: cfg, DB: pool}
	if cfg.MetricsEnabled {
		app.Metrics = metrics.New()
	}

	// Stores.
	employeeStore := employee.NewStore(pool)
	overtimeStore := overtime.NewStore(pool)
	vacationStore := vacation.NewStore(pool)
	payrollStore := payroll.NewStore(pool)
	notificationStore := notifications.NewStore(pool)
	orderStore := orders.NewStore(pool)

	// Services.
	var pusher notifications.Pusher
	if cfg.PushEndpoint != "" {
		pusher = notifications.NewHTTPPusher(cfg.PushEndpoint)
	}
	notifySvc := notifications.New(notificationStore, pusher, employeeStore, email.New(cfg), cfg.EmailFrom)
	overtimeSvc := overtime.NewService(overtimeStore)
	vacationSvc := vacation.NewService(vacationStore, employeeStore, vacation.ReplayOptions{CapRefunds: cfg.VacationCapRefunds})
	payrollSvc := payroll.NewService(payrollStore, overtimeStore, employeeStore)
	employeeSvc := employee.NewService(employeeStore, vacationSvc, notificationStore)
	orderSvc := orders.NewService(orderStore)
	auditSvc := audit.New(pool)

	app.Jobs = jobs.New(pool, cfg, vacationSvc, notifySvc)

	periods := shared.NewPeriodResolver(shared.PayrollHistory{Store: payrollStore})

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger(app.Metrics))
	router.Use(chimiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID", "X-RateLimit-Remaining"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	router.Use(middleware.SecureHeaders(cfg.Environment == "production"))
	router.Use(middleware.BodyLimit(cfg.MaxBodyBytes))
	router.Use(middleware.Auth(cfg.JWTSecret))
	router.Use(middleware.RateLimit(cfg.RateLimitPerMinute, time.Minute))
	router.Use(middleware.SensitiveMutationRateLimit(cfg.RateLimitPerMinute, time.Minute))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	router.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := pool.Ping(ctx); err != nil {
			http.Error(w, "db not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	router.Route("/api/v1", func(r chi.Router) {
		authhandler.NewHandler(employeeSvc, employeeStore, cfg.JWTSecret, cfg.TokenTTL).RegisterRoutes(r)
		employeeshandler.NewHandler(employeeSvc, employeeStore, auditSvc).RegisterRoutes(r)
		overtimehandler.NewHandler(overtimeSvc, periods).RegisterRoutes(r)
		vacationshandler.NewHandler(vacationSvc, notifySvc).RegisterRoutes(r)
		payrollhandler.NewHandler(payrollSvc, payrollStore, employeeStore, notifySvc, auditSvc).RegisterRoutes(r)
		statshandler.NewHandler(overtimeSvc, payrollSvc, periods).RegisterRoutes(r)
		notificationshandler.NewHandler(notifySvc, employeeStore).RegisterRoutes(r)
		ordershandler.NewHandler(orderSvc, orderStore).RegisterRoutes(r)
		adminhandler.NewHandler(app.Metrics, app.Jobs, auditSvc).RegisterRoutes(r)
	})

	app.Router = router
	return app, nil
}

// Run starts the background jobs and serves HTTP until the listener fails
// or the context is cancelled.
func (a *App) Run(ctx context.Context) error {
	a.Jobs.Start(ctx)

	srv := &http.Server{
		Addr:              a.Config.Addr,
		Handler:           a.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Warn("server shutdown", "err", err)
		}
	}()

	slog.Info("server listening", "addr", a.Config.Addr, "env", a.Config.Environment)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (a *App) Close() {
	if a.DB != nil {
		a.DB.Close()
	}
}
