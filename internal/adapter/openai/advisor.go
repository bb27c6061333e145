package openai

import (
	"log/slog"

	"github.com/couchcryptid/climashield/internal/config"
	"github.com/couchcryptid/climashield/internal/domain"
	"github.com/couchcryptid/climashield/internal/observability"
)

// NewAdvisor builds the cached advisory client described by cfg. It returns
// nil when advisory text is disabled.
func NewAdvisor(cfg *config.Config, metrics *observability.Metrics, logger *slog.Logger) domain.Advisor {
	if !cfg.AdvisorEnabled {
		metrics.AdvisoryEnabled.Set(0)
		logger.Info("advisory text disabled")
		return nil
	}

	client := NewClient(Options{
		APIKey:    cfg.AdvisorAPIKey,
		Model:     cfg.AdvisorModel,
		BaseURL:   cfg.AdvisorBaseURL,
		Timeout:   cfg.AdvisorTimeout,
		RateLimit: cfg.AdvisorRateLimit,
	}, metrics, logger)

	metrics.AdvisoryEnabled.Set(1)
	logger.Info("advisory text enabled",
		"model", cfg.AdvisorModel,
		"cache_size", cfg.AdvisorCacheSize,
		"timeout", cfg.AdvisorTimeout,
		"rate_limit", cfg.AdvisorRateLimit,
	)
	return NewCachedAdvisor(client, cfg.AdvisorCacheSize, metrics)
}
