package domain

import (
	"context"
	"log/slog"
	"strings"
)

// AdvisoryUnavailablePrefix starts the placeholder text used when the
// advisory collaborator fails.
const AdvisoryUnavailablePrefix = "AI analysis unavailable: "

// AdvisoryInput is everything the advisory collaborator sees about an area.
type AdvisoryInput struct {
	Area  string
	Risk  RiskBundle
	Trend TrendSummary
	Soil  SoilProfile
}

// Advisor produces short free-text commentary for an assessed area.
type Advisor interface {
	Advise(ctx context.Context, in AdvisoryInput) (string, error)
}

// WithAdvisory attaches advisory text to an assessment. A nil advisor leaves
// the assessment untouched. Failures become a placeholder; scores are never
// modified.
func WithAdvisory(ctx context.Context, a Assessment, advisor Advisor, logger *slog.Logger) Assessment {
	if advisor == nil {
		return a
	}

	text, err := advisor.Advise(ctx, AdvisoryInput{
		Area:  a.Area,
		Risk:  a.Risk,
		Trend: a.Trend,
		Soil:  a.Soil,
	})
	if err != nil {
		logger.Warn("advisory generation failed",
			"assessment_id", a.ID,
			"area", a.Area,
			"error", err,
		)
		a.Advisory = AdvisoryUnavailablePrefix + err.Error()
		return a
	}
	a.Advisory = strings.TrimSpace(text)
	return a
}
