package server

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"teaps/internal/domain/appraisal"
	"teaps/internal/domain/audit"
	"teaps/internal/domain/auth"
	"teaps/internal/domain/config"
	"teaps/internal/domain/cpe"
	"teaps/internal/domain/dispute"
	"teaps/internal/domain/kpi"
	"teaps/internal/domain/notifications"
	"teaps/internal/domain/reports"
	platformconfig "teaps/internal/platform/config"
	"teaps/internal/platform/db"
	appraisalhandler "teaps/internal/transport/http/handlers/appraisal"
	audithandler "teaps/internal/transport/http/handlers/audit"
	authhandler "teaps/internal/transport/http/handlers/auth"
	confighandler "teaps/internal/transport/http/handlers/config"
	cpehandler "teaps/internal/transport/http/handlers/cpe"
	disputehandler "teaps/internal/transport/http/handlers/dispute"
	kpihandler "teaps/internal/transport/http/handlers/kpi"
	notificationshandler "teaps/internal/transport/http/handlers/notifications"
	reportshandler "teaps/internal/transport/http/handlers/reports"
	"teaps/internal/transport/http/middleware"
)

func Run() {
	cfg := platformconfig.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		log.Fatalf("db connect failed: %v", err)
	}
	defer pool.Close()

	if cfg.RunMigrations {
		if err := db.Migrate(ctx, pool, cfg.MigrationsDir); err != nil {
			log.Fatalf("migrations failed: %v", err)
		}
	}

	if cfg.RunSeed {
		if err := db.Seed(ctx, pool, cfg); err != nil {
			log.Fatalf("seed failed: %v", err)
		}
	}

	auditSvc := audit.New(pool)
	notifySvc := notifications.New(notifications.NewStore(pool), nil)

	configSvc := config.NewService(config.NewStore(pool))
	appraisalSvc := appraisal.NewService(appraisal.NewStore(pool), configSvc)
	disputeSvc := dispute.NewService(dispute.NewStore(pool), appraisalSvc)
	kpiSvc := kpi.NewService(kpi.NewStore(pool))
	cpeSvc := cpe.NewService(cpe.NewStore(pool), configSvc)
	reportsSvc := reports.NewService(reports.NewStore(pool))
	authStore := auth.NewStore(pool)

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(middleware.BodyLimit(cfg.MaxBodyBytes))
	router.Use(middleware.Auth(cfg.JWTSecret))

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
		authHandler := authhandler.NewHandler(authStore, cfg.JWTSecret, cfg.TokenTTL)
		r.Post("/auth/login", authHandler.HandleLogin)
		r.Post("/auth/logout", authHandler.HandleLogout)
		r.Get("/auth/me", authHandler.HandleMe)

		appraisalhandler.NewHandler(appraisalSvc, notifySvc, auditSvc).RegisterRoutes(r)
		disputehandler.NewHandler(disputeSvc, notifySvc, auditSvc).RegisterRoutes(r)
		kpihandler.NewHandler(kpiSvc, notifySvc, auditSvc).RegisterRoutes(r)
		cpehandler.NewHandler(cpeSvc, notifySvc, auditSvc).RegisterRoutes(r)
		confighandler.NewHandler(configSvc, auditSvc).RegisterRoutes(r)
		reportshandler.NewHandler(reportsSvc).RegisterRoutes(r)
		notificationshandler.NewHandler(notifySvc).RegisterRoutes(r)
		audithandler.NewHandler(auditSvc).RegisterRoutes(r)
	})

	log.Printf("appraisal server listening on %s", cfg.Addr)
	if err := http.ListenAndServe(cfg.Addr, router); err != nil {
		log.Fatalf("server failed: %v", err)
	}
}
