package domain

import (
	"time"

	"github.com/google/uuid"
)

// assessmentNamespace scopes the name-based UUIDs given to assessments.
var assessmentNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://climashield.dev/assessments"))

// Assessment is the complete, report-ready analysis of one area. Scores are
// rounded to one decimal; it is derived on every request and never stored as
// authoritative state.
type Assessment struct {
	ID          string       `json:"id"`
	Area        string       `json:"area"`
	Trend       TrendSummary `json:"historical_analysis"`
	Soil        SoilProfile  `json:"soil_analysis"`
	Risk        RiskBundle   `json:"risk_scores"`
	RiskLevel   RiskLevel    `json:"risk_level"`
	Advisory    string       `json:"advisory,omitempty"`
	GeneratedAt time.Time    `json:"generated_at"`
}

// Assess runs both analyzers for area and synthesizes the risk bundle.
func Assess(tables *Tables, area string, basis SlopeBasis) Assessment {
	trend := AnalyzeTrends(tables, area, basis)
	soil := AnalyzeSoil(tables, area)
	risk := SynthesizeRisk(trend, soil).Rounded()
	now := clock.Now().UTC()

	return Assessment{
		ID:          assessmentID(area, now),
		Area:        area,
		Trend:       trend.Rounded(),
		Soil:        soil.Rounded(),
		Risk:        risk,
		RiskLevel:   ClassifyRisk(risk.ClimateRiskScore),
		GeneratedAt: now,
	}
}

// assessmentID is deterministic in area and generation time so replays of the
// same request at the same instant produce the same ID.
func assessmentID(area string, at time.Time) string {
	return uuid.NewSHA1(assessmentNamespace, []byte(area+"|"+at.Format(time.RFC3339Nano))).String()
}
