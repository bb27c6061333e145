package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/couchcryptid/climashield/internal/dataset"
	"github.com/couchcryptid/climashield/internal/domain"
	"github.com/couchcryptid/climashield/internal/observability"
)

// ObservationLoader supplies the historical table for a forecast run.
type ObservationLoader func() ([]domain.ClimateObservation, error)

// ForecastSink receives the finished table of a forecast run.
type ForecastSink interface {
	Name() string
	WriteForecast(ctx context.Context, runID string, rows []domain.ForecastRow) error
}

// ForecastReport summarizes one completed run.
type ForecastReport struct {
	RunID        string
	Rows         []domain.ForecastRow
	FittedAreas  []string
	SkippedAreas []string
	Duration     time.Duration
}

// ForecastJob fits per-area trend lines and writes the extended table to
// every configured sink in order.
type ForecastJob struct {
	load    ObservationLoader
	rng     domain.ForecastRange
	sinks   []ForecastSink
	metrics *observability.Metrics
	logger  *slog.Logger
}

// NewForecastJob creates a forecast job.
func NewForecastJob(load ObservationLoader, rng domain.ForecastRange, sinks []ForecastSink, metrics *observability.Metrics, logger *slog.Logger) *ForecastJob {
	return &ForecastJob{
		load:    load,
		rng:     rng,
		sinks:   sinks,
		metrics: metrics,
		logger:  logger,
	}
}

// Run executes one forecast. The first failing sink aborts the run.
func (j *ForecastJob) Run(ctx context.Context) (ForecastReport, error) {
	start := time.Now()
	if err := j.rng.Validate(); err != nil {
		return ForecastReport{}, err
	}

	obs, err := j.load()
	if err != nil {
		return ForecastReport{}, fmt.Errorf("load observations: %w", err)
	}

	result := domain.Forecast(obs, j.rng)
	report := ForecastReport{
		RunID:        uuid.NewString(),
		Rows:         result.Rows,
		FittedAreas:  result.FittedAreas,
		SkippedAreas: result.SkippedAreas,
	}
	for _, m := range result.Models {
		j.logger.Debug("area model fitted",
			"area", m.Area,
			"observations", m.Observations,
			"aqi_next", m.PredictAQI(j.rng.FirstYear),
			"rainfall_next", m.PredictRainfall(j.rng.FirstYear),
		)
	}
	for _, area := range result.SkippedAreas {
		j.logger.Warn("too few observations to forecast area", "area", area)
	}

	for _, sink := range j.sinks {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		if err := sink.WriteForecast(ctx, report.RunID, report.Rows); err != nil {
			return report, fmt.Errorf("write forecast to %s: %w", sink.Name(), err)
		}
		j.logger.Debug("forecast sink written", "sink", sink.Name(), "run_id", report.RunID)
	}

	projected := result.Projected()
	j.metrics.ForecastRows.WithLabelValues("historical").Add(float64(len(result.Rows) - projected))
	j.metrics.ForecastRows.WithLabelValues("projected").Add(float64(projected))
	j.metrics.ForecastAreas.WithLabelValues("fitted").Add(float64(len(result.FittedAreas)))
	j.metrics.ForecastAreas.WithLabelValues("skipped").Add(float64(len(result.SkippedAreas)))

	report.Duration = time.Since(start)
	j.logger.Info("forecast complete",
		"run_id", report.RunID,
		"rows", len(report.Rows),
		"projected", projected,
		"fitted_areas", len(report.FittedAreas),
		"skipped_areas", len(report.SkippedAreas),
		"years", fmt.Sprintf("%d-%d", j.rng.FirstYear, j.rng.LastYear),
		"duration", report.Duration,
	)
	return report, nil
}

// CSVSink writes the table as CSV to Path.
type CSVSink struct {
	Path string
}

func (s CSVSink) Name() string { return "csv " + s.Path }

func (s CSVSink) WriteForecast(_ context.Context, _ string, rows []domain.ForecastRow) error {
	return dataset.SaveForecastCSV(s.Path, rows)
}

// XLSXSink writes the table as a workbook to Path.
type XLSXSink struct {
	Path string
}

func (s XLSXSink) Name() string { return "xlsx " + s.Path }

func (s XLSXSink) WriteForecast(_ context.Context, _ string, rows []domain.ForecastRow) error {
	return dataset.SaveForecastXLSX(s.Path, rows)
}

// ForecastSaver persists forecast runs.
type ForecastSaver interface {
	SaveForecast(ctx context.Context, runID string, rows []domain.ForecastRow) error
}

// StoreSink saves the run to a forecast store.
type StoreSink struct {
	Store ForecastSaver
}

func (s StoreSink) Name() string { return "forecast store" }

func (s StoreSink) WriteForecast(ctx context.Context, runID string, rows []domain.ForecastRow) error {
	return s.Store.SaveForecast(ctx, runID, rows)
}

// ForecastPublisher sends forecast runs to a message broker.
type ForecastPublisher interface {
	PublishForecast(ctx context.Context, runID string, rows []domain.ForecastRow) error
}

// PublishSink publishes the run through a ForecastPublisher.
type PublishSink struct {
	Publisher ForecastPublisher
}

func (s PublishSink) Name() string { return "kafka" }

func (s PublishSink) WriteForecast(ctx context.Context, runID string, rows []domain.ForecastRow) error {
	return s.Publisher.PublishForecast(ctx, runID, rows)
}
