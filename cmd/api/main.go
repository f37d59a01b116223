package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jwalitptl/prescription-api/internal/config"
	healthHandler "github.com/jwalitptl/prescription-api/internal/handler/health"
	prescriptionHandler "github.com/jwalitptl/prescription-api/internal/handler/prescription"
	"github.com/jwalitptl/prescription-api/internal/inference/gemini"
	"github.com/jwalitptl/prescription-api/internal/middleware"
	"github.com/jwalitptl/prescription-api/internal/repository"
	"github.com/jwalitptl/prescription-api/internal/repository/postgres"
	"github.com/jwalitptl/prescription-api/internal/repository/staging"
	"github.com/jwalitptl/prescription-api/internal/router"
	prescriptionService "github.com/jwalitptl/prescription-api/internal/service/prescription"
	"github.com/jwalitptl/prescription-api/internal/worker"
	"github.com/jwalitptl/prescription-api/pkg/logger"
	"github.com/jwalitptl/prescription-api/pkg/metrics"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		bootstrapLogger().Fatal(err, "failed to load configuration")
	}

	log := logger.NewLogger(&logger.Config{
		Level:      logger.InfoLevel,
		TimeFormat: time.RFC3339,
		Pretty:     !cfg.IsProduction(),
	})

	if cfg.Gemini.APIKey == "" {
		log.Warn(nil, "GEMINI_API_KEY is not set, analysis requests will be rejected")
	}

	var m *metrics.Metrics
	if cfg.Monitoring.PrometheusEnabled {
		m = metrics.New("prescription_api")
	}

	store := staging.New(cfg.Upload.StagingDir)
	invoker := gemini.New(cfg.Gemini.APIKey, cfg.Gemini.Model)

	// The audit trail is optional; without a database the pipeline still
	// runs, it just leaves no record of extraction outcomes.
	var auditRepo repository.ExtractionAuditRepository
	checks := map[string]healthHandler.ReadinessCheck{}
	if cfg.Database.DSN != "" {
		db, err := postgres.NewDB(cfg.Database.DSN)
		if err != nil {
			log.Fatal(err, "failed to connect to database")
		}
		defer db.Close()
		auditRepo = postgres.NewExtractionAuditRepository(db)
		checks["database"] = db.Ping
	}

	svc := prescriptionService.NewService(store, invoker, auditRepo, m, log)

	r := router.New(router.Config{
		RateLimitEnabled:  cfg.RateLimit.Enabled,
		RateLimitRPS:      cfg.RateLimit.RPS,
		RateLimitBurst:    cfg.RateLimit.Burst,
		CORS:              corsConfig(cfg),
		MaxBodySize:       2*cfg.Upload.MaxSizeBytes + middleware.MultipartOverhead,
		PrometheusEnabled: cfg.Monitoring.PrometheusEnabled,
		MetricsPath:       cfg.Monitoring.MetricsPath,
	}, log,
		prescriptionHandler.NewHandler(svc, prescriptionHandler.Options{
			MaxUploadBytes: cfg.Upload.MaxSizeBytes,
			Production:     cfg.IsProduction(),
		}),
		healthHandler.NewHandler(checks),
	)

	workerCtx, stopWorkers := context.WithCancel(context.Background())
	defer stopWorkers()

	sweeper := worker.NewStagingSweeper(cfg.Upload.StagingDir, cfg.Sweeper.MaxAge, cfg.Sweeper.Interval, m, log)
	go sweeper.Start(workerCtx)

	if auditRepo != nil {
		retention := worker.NewAuditRetentionWorker(auditRepo, cfg.Audit.RetentionDays, cfg.Audit.CleanupInterval, log)
		go retention.Start(workerCtx)
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r.Engine(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.WithFields(map[string]interface{}{"addr": srv.Addr}).Info("starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal(err, "failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down server...")

	stopWorkers()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal(err, "server forced to shutdown")
	}

	log.Info("server exited properly")
}

func corsConfig(cfg *config.Config) middleware.CORSConfig {
	c := middleware.DefaultCORSConfig()
	if len(cfg.Security.AllowedOrigins) > 0 {
		c.AllowOrigins = cfg.Security.AllowedOrigins
	}
	return c
}

func bootstrapLogger() *logger.Logger {
	return logger.NewLogger(&logger.Config{Level: logger.InfoLevel})
}
