// Command constraintd runs the cyclone constraint service: it consumes
// advisory observations from Kafka, computes constraint snapshots and
// insights per advisory cycle, appends them to per-storm timelines, and
// publishes the results to the sink topic.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/cyclone-constraint-service/internal/adapter/climo"
	httpadapter "github.com/couchcryptid/cyclone-constraint-service/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/cyclone-constraint-service/internal/adapter/kafka"
	"github.com/couchcryptid/cyclone-constraint-service/internal/adapter/sqlite"
	"github.com/couchcryptid/cyclone-constraint-service/internal/config"
	"github.com/couchcryptid/cyclone-constraint-service/internal/constraint"
	"github.com/couchcryptid/cyclone-constraint-service/internal/observability"
	"github.com/couchcryptid/cyclone-constraint-service/internal/pipeline"
	"github.com/couchcryptid/cyclone-constraint-service/internal/timeline"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	cal := constraint.DefaultCalibration()
	if cfg.CalibrationFile != "" {
		cal, err = constraint.LoadCalibration(cfg.CalibrationFile)
		if err != nil {
			logger.Error("failed to load calibration", "error", err, "path", cfg.CalibrationFile)
			os.Exit(1)
		}
		logger.Info("calibration loaded", "path", cfg.CalibrationFile)
	}

	// Climatology fallback for advisories missing environmental data.
	var estimator pipeline.EnvironmentEstimator
	if cfg.ClimoEnabled {
		estimator = climo.NewEstimator(cfg.ClimoCacheSize)
		metrics.ClimoEnabled.Set(1)
		logger.Info("climatology fallback enabled", "cache_size", cfg.ClimoCacheSize)
	} else {
		logger.Info("climatology fallback disabled")
	}

	// Snapshot archive (optional).
	var archiver pipeline.SnapshotArchiver
	var archive *sqlite.Archive
	if cfg.ArchivePath != "" {
		archive, err = sqlite.Open(cfg.ArchivePath)
		if err != nil {
			logger.Error("failed to open snapshot archive", "error", err, "path", cfg.ArchivePath)
			os.Exit(1)
		}
		archiver = archive
		logger.Info("snapshot archive enabled", "path", cfg.ArchivePath)
	}

	reader := kafkaadapter.NewReader(cfg, logger)
	writer := kafkaadapter.NewWriter(cfg, logger)
	engine := constraint.NewEngine(cal)
	store := timeline.NewStore()

	p := pipeline.New(reader, writer, archiver, estimator, engine, store, logger, metrics, cfg.BatchSize)

	srv := httpadapter.NewServer(cfg.HTTPAddr, p, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Start constraint pipeline.
	go func() {
		if err := p.Run(ctx); err != nil {
			logger.Error("pipeline error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if err := reader.Close(); err != nil {
		logger.Error("kafka reader close error", "error", err)
	}
	if err := writer.Close(); err != nil {
		logger.Error("kafka writer close error", "error", err)
	}
	if archive != nil {
		if err := archive.Close(); err != nil {
			logger.Error("snapshot archive close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
