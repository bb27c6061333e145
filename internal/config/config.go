package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"

	"github.com/couchcryptid/climashield/internal/domain"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	ObservationsPath   string
	SoilPath           string
	ForecastOutputPath string
	ForecastXLSXPath   string
	ForecastDBPath     string
	ForecastRange      domain.ForecastRange
	TrendSlopeBasis    domain.SlopeBasis

	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	KafkaEnabled       bool
	KafkaBrokers       []string
	KafkaSourceTopic   string
	KafkaSinkTopic     string
	KafkaForecastTopic string
	KafkaGroupID       string

	BatchSize          int
	BatchFlushInterval time.Duration

	// Advisory text generation.
	AdvisorEnabled   bool
	AdvisorAPIKey    string
	AdvisorModel     string
	AdvisorBaseURL   string
	AdvisorTimeout   time.Duration
	AdvisorCacheSize int
	AdvisorRateLimit float64
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	batchSize, err := sharedcfg.ParseBatchSize()
	if err != nil {
		return nil, err
	}

	flushInterval, err := sharedcfg.ParseBatchFlushInterval()
	if err != nil {
		return nil, err
	}

	advisorTimeout, err := time.ParseDuration(sharedcfg.EnvOrDefault("ADVISOR_TIMEOUT", "10s"))
	if err != nil || advisorTimeout <= 0 {
		return nil, errors.New("invalid ADVISOR_TIMEOUT")
	}

	advisorRate, err := strconv.ParseFloat(sharedcfg.EnvOrDefault("ADVISOR_RATE_LIMIT", "1"), 64)
	if err != nil || advisorRate <= 0 {
		return nil, errors.New("invalid ADVISOR_RATE_LIMIT")
	}

	basis, err := domain.ParseSlopeBasis(sharedcfg.EnvOrDefault("TREND_SLOPE_BASIS", "index"))
	if err != nil {
		return nil, fmt.Errorf("invalid TREND_SLOPE_BASIS: %w", err)
	}

	forecastRange, err := parseForecastRange()
	if err != nil {
		return nil, err
	}

	advisorKey := os.Getenv("OPENAI_API_KEY")
	advisorEnabled := advisorKey != ""
	if v := os.Getenv("ADVISOR_ENABLED"); v != "" {
		advisorEnabled = v == "true"
	}

	cfg := &Config{
		ObservationsPath:   sharedcfg.EnvOrDefault("OBSERVATIONS_PATH", "input-data/AQI-Rainfall.csv"),
		SoilPath:           sharedcfg.EnvOrDefault("SOIL_PATH", "input-data/Soil_type-Elevation.csv"),
		ForecastOutputPath: sharedcfg.EnvOrDefault("FORECAST_OUTPUT_PATH", "output-data/aqi_rainfall_predictions_2025_2030.csv"),
		ForecastXLSXPath:   os.Getenv("FORECAST_XLSX_PATH"),
		ForecastDBPath:     os.Getenv("FORECAST_DB_PATH"),
		ForecastRange:      forecastRange,
		TrendSlopeBasis:    basis,

		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		KafkaEnabled:       sharedcfg.EnvOrDefault("KAFKA_ENABLED", "true") == "true",
		KafkaBrokers:       sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaSourceTopic:   sharedcfg.EnvOrDefault("KAFKA_SOURCE_TOPIC", "assessment-requests"),
		KafkaSinkTopic:     sharedcfg.EnvOrDefault("KAFKA_SINK_TOPIC", "risk-assessments"),
		KafkaForecastTopic: sharedcfg.EnvOrDefault("KAFKA_FORECAST_TOPIC", "climate-forecasts"),
		KafkaGroupID:       sharedcfg.EnvOrDefault("KAFKA_GROUP_ID", "climashield"),
		BatchSize:          batchSize,
		BatchFlushInterval: flushInterval,

		AdvisorEnabled:   advisorEnabled,
		AdvisorAPIKey:    advisorKey,
		AdvisorModel:     sharedcfg.EnvOrDefault("ADVISOR_MODEL", "gpt-3.5-turbo"),
		AdvisorBaseURL:   sharedcfg.EnvOrDefault("ADVISOR_BASE_URL", "https://api.openai.com/v1"),
		AdvisorTimeout:   advisorTimeout,
		AdvisorCacheSize: parseAdvisorCacheSize(),
		AdvisorRateLimit: advisorRate,
	}

	if cfg.ObservationsPath == "" {
		return nil, errors.New("OBSERVATIONS_PATH is required")
	}
	if cfg.SoilPath == "" {
		return nil, errors.New("SOIL_PATH is required")
	}
	if cfg.KafkaEnabled {
		if len(cfg.KafkaBrokers) == 0 {
			return nil, errors.New("KAFKA_BROKERS is required")
		}
		if cfg.KafkaSourceTopic == "" {
			return nil, errors.New("KAFKA_SOURCE_TOPIC is required")
		}
		if cfg.KafkaSinkTopic == "" {
			return nil, errors.New("KAFKA_SINK_TOPIC is required")
		}
	}
	if cfg.AdvisorEnabled && cfg.AdvisorAPIKey == "" {
		return nil, errors.New("ADVISOR_ENABLED is true but OPENAI_API_KEY is not set")
	}

	return cfg, nil
}

func parseForecastRange() (domain.ForecastRange, error) {
	first, err := strconv.Atoi(sharedcfg.EnvOrDefault("FORECAST_FIRST_YEAR", strconv.Itoa(domain.DefaultForecastRange.FirstYear)))
	if err != nil {
		return domain.ForecastRange{}, errors.New("invalid FORECAST_FIRST_YEAR")
	}
	last, err := strconv.Atoi(sharedcfg.EnvOrDefault("FORECAST_LAST_YEAR", strconv.Itoa(domain.DefaultForecastRange.LastYear)))
	if err != nil {
		return domain.ForecastRange{}, errors.New("invalid FORECAST_LAST_YEAR")
	}
	r := domain.ForecastRange{FirstYear: first, LastYear: last}
	if err := r.Validate(); err != nil {
		return domain.ForecastRange{}, fmt.Errorf("invalid FORECAST_FIRST_YEAR/FORECAST_LAST_YEAR: %w", err)
	}
	return r, nil
}

func parseAdvisorCacheSize() int {
	if s := os.Getenv("ADVISOR_CACHE_SIZE"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			return n
		}
	}
	return 1000
}
