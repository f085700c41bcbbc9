package server

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"epms/internal/domain/appraisal"
	"epms/internal/domain/audit"
	"epms/internal/domain/auth"
	"epms/internal/domain/directory"
	"epms/internal/domain/goal"
	"epms/internal/domain/notifications"
	"epms/internal/domain/reports"
	requestmw "epms/internal/middleware"
	"epms/internal/platform/config"
	"epms/internal/platform/db"
	"epms/internal/platform/email"
	"epms/internal/platform/jobs"
	"epms/internal/platform/metrics"
	appraisalshandler "epms/internal/transport/http/handlers/appraisals"
	audithandler "epms/internal/transport/http/handlers/audit"
	authhandler "epms/internal/transport/http/handlers/auth"
	cycleshandler "epms/internal/transport/http/handlers/cycles"
	employeeshandler "epms/internal/transport/http/handlers/employees"
	goalshandler "epms/internal/transport/http/handlers/goals"
	notificationshandler "epms/internal/transport/http/handlers/notifications"
	reportshandler "epms/internal/transport/http/handlers/reports"
	"epms/internal/transport/http/middleware"
)

type App struct {
	Config config.Config
	DB     *pgxpool.Pool
	Router http.Handler

	jobsCancel context.CancelFunc
}

// New connects, migrates, seeds, and wires the router. The caller owns the
// returned App and must Close it.
func New(ctx context.Context, cfg config.Config) (*App, error) {
	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		return nil, err
	}

	if cfg.RunMigrations {
		if err := db.Migrate(ctx, pool, cfg.MigrationsDir); err != nil {
			pool.Close()
			return nil, err
		}
	}
	if cfg.RunSeed {
		if err := db.Seed(ctx, pool, cfg); err != nil {
			pool.Close()
			return nil, err
		}
	}

	authSvc := auth.NewService(auth.NewStore(pool))
	directorySvc := directory.NewService(directory.NewStore(pool))
	appraisalSvc := appraisal.NewService(appraisal.NewStore(pool))
	goalSvc := goal.NewService(goal.NewStore(pool), appraisalSvc)
	notifySvc := notifications.New(notifications.NewStore(pool), email.New(cfg), cfg.EmailEnabled, cfg.EmailFrom)
	auditSvc := audit.New(pool)
	reportsSvc := reports.NewService(reports.NewStore(pool))

	collector := metrics.New()
	idem := middleware.NewIdempotencyStore(pool)

	jobsCtx, jobsCancel := context.WithCancel(context.Background())
	jobsSvc := jobs.New(pool, cfg, appraisalSvc, notifySvc, collector)
	jobsSvc.Start(jobsCtx)

	router := chi.NewRouter()
	router.Use(requestmw.RequestID)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(middleware.SecureHeaders(cfg.Environment == "production"))
	router.Use(middleware.BodyLimit(cfg.MaxBodyBytes))
	router.Use(middleware.Auth(cfg.JWTSecret))
	router.Use(middleware.Metrics(collector))
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

	if cfg.MetricsEnabled {
		router.Method(http.MethodGet, "/metrics", collector.Handler())
	}

	router.Route("/api/v1", func(r chi.Router) {
		authHandler := authhandler.NewHandler(authSvc, cfg.JWTSecret)
		loginLimit := middleware.RateLimit(10, time.Minute, middleware.WithKeyFunc(middleware.AuthEmailOrIPKey("email")))
		r.With(loginLimit).Post("/auth/login", authHandler.HandleLogin)
		r.Post("/auth/logout", authHandler.HandleLogout)
		r.Post("/auth/refresh", authHandler.HandleRefresh)
		r.With(loginLimit).Post("/auth/request-reset", authHandler.HandleRequestReset)
		r.With(loginLimit).Post("/auth/reset", authHandler.HandleResetPassword)

		employeeshandler.NewHandler(directorySvc, auditSvc).RegisterRoutes(r)
		cycleshandler.NewHandler(appraisalSvc, notifySvc, auditSvc, idem).RegisterRoutes(r)
		appraisalshandler.NewHandler(appraisalSvc, notifySvc, auditSvc).RegisterRoutes(r)
		goalshandler.NewHandler(goalSvc, directorySvc, notifySvc, auditSvc).RegisterRoutes(r)
		notificationshandler.NewHandler(notifySvc).RegisterRoutes(r)
		reportshandler.NewHandler(reportsSvc, directorySvc, auditSvc).RegisterRoutes(r)
		audithandler.NewHandler(auditSvc).RegisterRoutes(r)
	})

	return &App{Config: cfg, DB: pool, Router: router, jobsCancel: jobsCancel}, nil
}

func (a *App) Close() {
	if a.jobsCancel != nil {
		a.jobsCancel()
	}
	if a.DB != nil {
		a.DB.Close()
	}
}

func Run() {
	cfg := config.Load()
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL is required")
	}
	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET is required")
	}

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	app, err := New(context.Background(), cfg)
	if err != nil {
		log.Fatalf("startup failed: %v", err)
	}
	defer app.Close()

	log.Printf("appraisal server listening on %s", cfg.Addr)
	if err := http.ListenAndServe(cfg.Addr, app.Router); err != nil {
		log.Fatalf("server failed: %v", err)
	}
}
