// Command riskd serves climate risk assessments over HTTP and, when Kafka is
// enabled, answers assessment requests from the source topic.
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

	httpadapter "github.com/couchcryptid/climashield/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/climashield/internal/adapter/kafka"
	"github.com/couchcryptid/climashield/internal/adapter/openai"
	"github.com/couchcryptid/climashield/internal/adapter/sqlite"
	"github.com/couchcryptid/climashield/internal/config"
	"github.com/couchcryptid/climashield/internal/dataset"
	"github.com/couchcryptid/climashield/internal/observability"
	"github.com/couchcryptid/climashield/internal/pipeline"
)

// readinessChecks is ready when every check is. An empty set is always ready.
type readinessChecks []httpadapter.ReadinessChecker

func (c readinessChecks) CheckReadiness(ctx context.Context) error {
	for _, check := range c {
		if err := check.CheckReadiness(ctx); err != nil {
			return err
		}
	}
	return nil
}

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	// Both tables must load before anything is served.
	tables, err := dataset.LoadTables(cfg.ObservationsPath, cfg.SoilPath)
	if err != nil {
		logger.Error("failed to load data tables", "error", err)
		os.Exit(1)
	}
	logger.Info("data tables loaded",
		"observations", len(tables.Observations()),
		"areas", len(tables.Areas()),
		"slope_basis", cfg.TrendSlopeBasis.String(),
	)

	advisor := openai.NewAdvisor(cfg, metrics, logger)
	assessor := pipeline.NewAreaAssessor(tables, advisor, cfg.TrendSlopeBasis, logger)

	var (
		ready     readinessChecks
		forecasts httpadapter.ForecastReader
	)
	if cfg.ForecastDBPath != "" {
		store, err := sqlite.Open(cfg.ForecastDBPath)
		if err != nil {
			logger.Error("failed to open forecast store", "path", cfg.ForecastDBPath, "error", err)
			os.Exit(1)
		}
		defer store.Close()
		forecasts = store
		ready = append(ready, store)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var (
		reader *kafkaadapter.Reader
		writer *kafkaadapter.Writer
	)
	if cfg.KafkaEnabled {
		reader = kafkaadapter.NewReader(cfg, logger)
		writer = kafkaadapter.NewWriter(cfg, logger)
		p := pipeline.New(reader, assessor, writer, logger, metrics, cfg.BatchSize)
		ready = append(ready, p)

		go func() {
			if err := p.Run(ctx); err != nil {
				logger.Error("pipeline error", "error", err)
			}
		}()
	} else {
		logger.Info("kafka disabled, serving HTTP only")
	}

	srv := httpadapter.NewServer(cfg.HTTPAddr, ready, assessor, forecasts, logger)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if reader != nil {
		if err := reader.Close(); err != nil {
			logger.Error("kafka reader close error", "error", err)
		}
	}
	if writer != nil {
		if err := writer.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
