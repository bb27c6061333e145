package domain

// RiskBundle holds the three sub-scores (higher is better) and the inverted
// composite climate risk score (higher is worse).
type RiskBundle struct {
	AirQuality            float64 `json:"air_quality"`
	ConstructionStability float64 `json:"construction_stability"`
	WaterManagement       float64 `json:"water_management"`
	ClimateRiskScore      float64 `json:"climate_risk_score"`
}

// Rounded returns a copy with every score rounded to one decimal.
func (b RiskBundle) Rounded() RiskBundle {
	return RiskBundle{
		AirQuality:            round1(b.AirQuality),
		ConstructionStability: round1(b.ConstructionStability),
		WaterManagement:       round1(b.WaterManagement),
		ClimateRiskScore:      round1(b.ClimateRiskScore),
	}
}

// SynthesizeRisk combines a trend summary and soil profile for the same area.
// Inputs are used at full precision.
func SynthesizeRisk(trend TrendSummary, soil SoilProfile) RiskBundle {
	airQuality := trend.AQIScore
	stability := clampScore(11 - soil.WaterloggingRisk)
	water := clampScore((trend.RainfallScore + soil.WaterAbsorptionScore) / 2)

	overall := (airQuality + stability + water) / 3
	return RiskBundle{
		AirQuality:            airQuality,
		ConstructionStability: stability,
		WaterManagement:       water,
		ClimateRiskScore:      clampScore(11 - overall),
	}
}

// RiskLevel buckets a climate risk score for reporting.
type RiskLevel string

const (
	RiskLow      RiskLevel = "low"
	RiskModerate RiskLevel = "moderate"
	RiskHigh     RiskLevel = "high"
)

// ClassifyRisk maps a climate risk score to a level: <=3 low, <=6 moderate,
// otherwise high.
func ClassifyRisk(score float64) RiskLevel {
	switch {
	case score <= 3:
		return RiskLow
	case score <= 6:
		return RiskModerate
	default:
		return RiskHigh
	}
}
