package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/beamhealth/clinic-triage/internal/api/router"
	appconfig "github.com/beamhealth/clinic-triage/internal/config"
	"github.com/beamhealth/clinic-triage/internal/http/handlers"
	"github.com/beamhealth/clinic-triage/internal/insurance"
	"github.com/beamhealth/clinic-triage/internal/observability/metrics"
	"github.com/beamhealth/clinic-triage/internal/oracle"
	"github.com/beamhealth/clinic-triage/internal/patients"
	"github.com/beamhealth/clinic-triage/internal/prep"
	"github.com/beamhealth/clinic-triage/internal/scheduling"
	"github.com/beamhealth/clinic-triage/internal/triage"
	"github.com/beamhealth/clinic-triage/pkg/logging"
)

func main() {
	// Load .env if present; real deployments set variables directly.
	_ = godotenv.Load()

	cfg := appconfig.Load()

	logger := logging.New(cfg.LogLevel)
	logger.Info("starting clinic-triage API server",
		"env", cfg.Env,
		"port", cfg.Port,
		"slot_store", cfg.SlotStore,
	)

	client := oracle.New(oracle.Config{
		Enabled: cfg.OpenAIEnabled,
		APIKey:  cfg.OpenAIAPIKey,
		Model:   cfg.OpenAIModel,
		Timeout: cfg.OpenAITimeout,
	})
	if !client.Available() {
		logger.Warn("judgment oracle not configured; risk scoring degrades to flagged defaults")
	}

	patientRepo := patients.NewFileRepository(cfg.DataDir)
	insuranceRepo := insurance.NewFileRepository(cfg.DataDir)

	var slotStore scheduling.SlotStore
	switch cfg.SlotStore {
	case "postgres":
		pool, err := pgxpool.New(context.Background(), cfg.DatabaseURL)
		if err != nil {
			logger.Error("failed to connect to postgres", "error", err)
			os.Exit(1)
		}
		defer pool.Close()
		slotStore = scheduling.NewPostgresStore(pool)
	default:
		slotStore = scheduling.NewFileStore(cfg.DataDir)
	}

	var riskCache *triage.RiskCache
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		riskCache = triage.NewRiskCache(redisClient, cfg.RiskCacheTTL, logger)
		logger.Info("risk preview cache enabled", "addr", cfg.RedisAddr, "ttl", cfg.RiskCacheTTL)
	}

	triageMetrics := metrics.NewTriageMetrics(nil)

	assessor := triage.NewOracleAssessor(client, logger)
	triageSvc := triage.NewService(assessor, triage.NewNormalizer(), riskCache, triageMetrics, logger)
	intakeEngine := triage.NewIntakeEngine(client, logger)
	prepBuilder := prep.NewBuilder(client, logger)

	schedulingSvc := scheduling.NewService(
		slotStore,
		patientRepo,
		insuranceRepo,
		triageSvc,
		prepBuilder,
		triage.NewWindowPolicy(cfg.RoutineWindowDays),
		triageMetrics,
		logger,
	)

	r := router.New(&router.Config{
		Logger:             logger,
		Patients:           handlers.NewPatientsHandler(patientRepo, logger),
		Triage:             handlers.NewTriageHandler(schedulingSvc, intakeEngine, patientRepo, logger),
		Scheduling:         handlers.NewSchedulingHandler(schedulingSvc, logger),
		MetricsHandler:     promhttp.Handler(),
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}
