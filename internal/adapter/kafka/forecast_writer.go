package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/couchcryptid/climashield/internal/config"
	"github.com/couchcryptid/climashield/internal/domain"
)

// ForecastWriter publishes forecast tables, one message per row.
type ForecastWriter struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewForecastWriter creates a producer for the configured forecast topic.
func NewForecastWriter(cfg *config.Config, logger *slog.Logger) *ForecastWriter {
	return &ForecastWriter{writer: newProducer(cfg.KafkaBrokers, cfg.KafkaForecastTopic), logger: logger}
}

// forecastMessage is the wire form of one forecast row.
type forecastMessage struct {
	RunID      string  `json:"run_id"`
	Year       int     `json:"year"`
	Area       string  `json:"area"`
	AQI        float64 `json:"aqi"`
	RainfallMM float64 `json:"rainfall_mm"`
	Projected  bool    `json:"projected"`
}

// PublishForecast writes every row of a forecast run in one batch.
func (w *ForecastWriter) PublishForecast(ctx context.Context, runID string, rows []domain.ForecastRow) error {
	if len(rows) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(rows))
	for i, row := range rows {
		msg, err := serializeForecastRow(runID, row)
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	if err := w.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("publish forecast: %w", err)
	}
	w.logger.Info("forecast published", "run_id", runID, "rows", len(rows), "topic", w.writer.Topic)
	return nil
}

func (w *ForecastWriter) Close() error {
	return w.writer.Close()
}

func serializeForecastRow(runID string, row domain.ForecastRow) (kafkago.Message, error) {
	data, err := json.Marshal(forecastMessage{
		RunID:      runID,
		Year:       row.Year,
		Area:       row.Area,
		AQI:        row.AQI,
		RainfallMM: row.RainfallMM,
		Projected:  row.Projected,
	})
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize forecast row: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(row.Area),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "run_id", Value: []byte(runID)},
			{Key: "projected", Value: []byte(strconv.FormatBool(row.Projected))},
		},
	}, nil
}
