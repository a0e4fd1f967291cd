package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"

	"github.com/couchcryptid/flood-alert-service/internal/adapter/aemet"
	"github.com/couchcryptid/flood-alert-service/internal/adapter/httpapi"
	kafkaadapter "github.com/couchcryptid/flood-alert-service/internal/adapter/kafka"
	"github.com/couchcryptid/flood-alert-service/internal/catalog"
	"github.com/couchcryptid/flood-alert-service/internal/config"
	"github.com/couchcryptid/flood-alert-service/internal/observability"
	"github.com/couchcryptid/flood-alert-service/internal/pipeline"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	basins, err := catalog.Load(cfg.CatalogPath, logger)
	if err != nil {
		logger.Error("failed to load basin catalogue", "error", err, "path", cfg.CatalogPath)
		os.Exit(1)
	}
	logger.Info("basin catalogue loaded", "basins", len(basins))

	client := aemet.NewClient(cfg.AEMETAPIKey, cfg.AEMETTimeout, cfg.AEMETBaseURL, logger)

	// Radar is feature-flagged by the API key: unset runs gauge-only.
	var radar pipeline.RadarFetcher
	if cfg.RadarEnabled {
		radar = aemet.NewRadarFetcher(client, cfg.RadarCacheSize)
		logger.Info("radar feed enabled", "cache_size", cfg.RadarCacheSize)
	} else {
		logger.Info("radar feed disabled, gauge-only processing")
	}

	var publisher pipeline.AlertPublisher
	var kafkaWriter *kafkaadapter.Writer
	if cfg.KafkaEnabled {
		kafkaWriter = kafkaadapter.NewWriter(cfg, logger)
		publisher = kafkaWriter
		logger.Info("alert broadcasting enabled", "topic", cfg.KafkaAlertTopic)
	} else {
		logger.Info("alert broadcasting disabled")
	}

	coordinator := pipeline.New(basins, client, radar, publisher, logger, metrics, cfg.WorkerCount)
	srv := httpapi.NewServer(cfg.HTTPAddr, coordinator, basins, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	metrics.PipelineRunning.Set(1)
	defer metrics.PipelineRunning.Set(0)

	// First cycle immediately, then on the configured cadence.
	runCycle := func() {
		if err := coordinator.RunCycle(ctx); err != nil {
			logger.Error("cycle failed", "error", err)
		}
	}
	runCycle()

	scheduler := cron.New()
	if _, err := scheduler.AddFunc("@every "+cfg.CycleInterval.String(), runCycle); err != nil {
		logger.Error("failed to schedule cycles", "error", err)
		os.Exit(1)
	}
	scheduler.Start()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	<-scheduler.Stop().Done()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if kafkaWriter != nil {
		if err := kafkaWriter.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
