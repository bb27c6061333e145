package domain

import (
	"math"
	"sort"
	"strings"
)

// UnknownSoilType labels areas without a soil fact.
const UnknownSoilType = "Unknown"

// DefaultAbsorptionScore is assigned to soil types missing from the table.
const DefaultAbsorptionScore = 5

const (
	referenceElevationM         = 1000.0
	clayeySoilFactor            = 0.8
	otherSoilFactor             = 0.3
	waterloggingElevationWeight = 3.0
)

// AbsorptionTable maps a soil type to its drainage rating (1-9, higher drains
// better). It is read-only once constructed.
type AbsorptionTable struct {
	scores   map[string]int
	fallback int
}

// NewAbsorptionTable copies scores into a table that answers fallback for
// unlisted soil types.
func NewAbsorptionTable(scores map[string]int, fallback int) AbsorptionTable {
	m := make(map[string]int, len(scores))
	for k, v := range scores {
		m[k] = v
	}
	return AbsorptionTable{scores: m, fallback: fallback}
}

var defaultAbsorption = NewAbsorptionTable(map[string]int{
	"Clayey Soil":       2,
	"Red Loamy Soil":    7,
	"Laterite Soil":     5,
	"Sandy Soil":        9,
	"Black Cotton Soil": 1,
	"Alluvial Soil":     6,
}, DefaultAbsorptionScore)

// DefaultAbsorptionTable returns the six-entry soil drainage table.
func DefaultAbsorptionTable() AbsorptionTable {
	return defaultAbsorption
}

// Score returns the absorption score for soilType, or the fallback.
func (t AbsorptionTable) Score(soilType string) int {
	if v, ok := t.scores[soilType]; ok {
		return v
	}
	return t.fallback
}

// SoilTypes returns the listed soil types in sorted order.
func (t AbsorptionTable) SoilTypes() []string {
	out := make([]string, 0, len(t.scores))
	for k := range t.scores {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// SoilCategory is a family of soil labels identified by a shared marker word,
// e.g. "Clayey" matches "Clayey Soil" and "Red Clayey Loam".
type SoilCategory string

// Clayey soils retain water and raise the lake-bed estimate.
const Clayey SoilCategory = "Clayey"

// Includes reports whether soilType belongs to the category.
func (c SoilCategory) Includes(soilType string) bool {
	return strings.Contains(soilType, string(c))
}

// SoilProfile is the soil and elevation analysis of one area.
type SoilProfile struct {
	SoilType             string  `json:"soil_type"`
	ElevationM           float64 `json:"elevation_m"`
	LakeBedProbability   float64 `json:"lake_bed_probability"`
	WaterAbsorptionScore float64 `json:"water_absorption_score"`
	WaterloggingRisk     float64 `json:"waterlogging_risk"`
}

// Rounded returns a copy with derived scores rounded to one decimal.
func (p SoilProfile) Rounded() SoilProfile {
	p.LakeBedProbability = round1(p.LakeBedProbability)
	p.WaterloggingRisk = round1(p.WaterloggingRisk)
	return p
}

// AnalyzeSoil profiles the first soil fact recorded for area using the
// default absorption table.
func AnalyzeSoil(tables *Tables, area string) SoilProfile {
	fact, ok := tables.SoilFor(area)
	if !ok {
		return SoilProfile{
			SoilType:             UnknownSoilType,
			LakeBedProbability:   neutralScore,
			WaterAbsorptionScore: DefaultAbsorptionScore,
			WaterloggingRisk:     neutralScore,
		}
	}
	return ProfileSoil(fact, DefaultAbsorptionTable())
}

// ProfileSoil derives lake-bed probability, absorption and waterlogging risk.
func ProfileSoil(fact SoilFact, absorption AbsorptionTable) SoilProfile {
	elevation := elevationFactor(fact.ElevationM)

	soilFactor := otherSoilFactor
	if Clayey.Includes(fact.SoilType) {
		soilFactor = clayeySoilFactor
	}

	score := float64(absorption.Score(fact.SoilType))
	return SoilProfile{
		SoilType:             fact.SoilType,
		ElevationM:           fact.ElevationM,
		LakeBedProbability:   clampScore((elevation + soilFactor) * 10),
		WaterAbsorptionScore: score,
		WaterloggingRisk:     clampScore(11 - score + elevation*waterloggingElevationWeight),
	}
}

// elevationFactor is 0 at or above 1000 m and grows as elevation falls. It is
// not capped for negative elevations.
func elevationFactor(elevationM float64) float64 {
	return math.Max(0, (referenceElevationM-elevationM)/referenceElevationM)
}
