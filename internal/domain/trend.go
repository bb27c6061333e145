package domain

import (
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/stat"
)

// AQITrend is the direction of an area's air quality over its history.
type AQITrend string

const (
	AQIImproving AQITrend = "improving"
	AQIStable    AQITrend = "stable"
	AQIWorsening AQITrend = "worsening"
	AQINoData    AQITrend = "no-data"
)

// RainfallTrend is the direction of an area's annual rainfall over its history.
type RainfallTrend string

const (
	RainfallIncreasing RainfallTrend = "increasing"
	RainfallStable     RainfallTrend = "stable"
	RainfallDecreasing RainfallTrend = "decreasing"
	RainfallNoData     RainfallTrend = "no-data"
)

const (
	aqiSlopeThreshold      = 2.0
	rainfallSlopeThreshold = 10.0

	// aqiScoreScale is the average AQI at which the score drops by nine points.
	aqiScoreScale = 50.0

	// OptimalRainfallMM is the annual rainfall that earns a perfect rainfall score.
	OptimalRainfallMM = 1200.0
)

// TrendSummary is the historical analysis of one area.
type TrendSummary struct {
	AQITrend      AQITrend      `json:"aqi_trend"`
	RainfallTrend RainfallTrend `json:"rainfall_trend"`
	AQIScore      float64       `json:"aqi_score"`
	RainfallScore float64       `json:"rainfall_score"`
	AvgAQI        float64       `json:"avg_aqi"`
	AvgRainfallMM float64       `json:"avg_rainfall_mm"`
	ObservedYears []int         `json:"observed_years"`
}

// Rounded returns a copy with scores and averages rounded to one decimal.
func (s TrendSummary) Rounded() TrendSummary {
	s.AQIScore = round1(s.AQIScore)
	s.RainfallScore = round1(s.RainfallScore)
	s.AvgAQI = round1(s.AvgAQI)
	s.AvgRainfallMM = round1(s.AvgRainfallMM)
	return s
}

// SlopeBasis selects the x axis the trend classifier fits against.
type SlopeBasis int

const (
	// SlopeByIndex fits against position in the filtered observation
	// sequence (0, 1, 2, ...). This is the compatible default.
	SlopeByIndex SlopeBasis = iota
	// SlopeByYear fits against the observation year, matching the forecaster.
	SlopeByYear
)

func (b SlopeBasis) String() string {
	if b == SlopeByYear {
		return "year"
	}
	return "index"
}

// ParseSlopeBasis accepts "index" or "year" (case-insensitive).
func ParseSlopeBasis(s string) (SlopeBasis, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "index":
		return SlopeByIndex, nil
	case "year":
		return SlopeByYear, nil
	default:
		return SlopeByIndex, fmt.Errorf("unknown slope basis %q", s)
	}
}

// AnalyzeTrends summarizes the observation history of area.
func AnalyzeTrends(tables *Tables, area string, basis SlopeBasis) TrendSummary {
	return SummarizeTrends(tables.ObservationsFor(area), basis)
}

// SummarizeTrends classifies trends and scores a single area's observations,
// which must already be filtered to that area and kept in load order.
func SummarizeTrends(observations []ClimateObservation, basis SlopeBasis) TrendSummary {
	if len(observations) == 0 {
		return TrendSummary{
			AQITrend:      AQINoData,
			RainfallTrend: RainfallNoData,
			AQIScore:      neutralScore,
			RainfallScore: neutralScore,
			ObservedYears: []int{},
		}
	}

	n := len(observations)
	x := make([]float64, n)
	aqi := make([]float64, n)
	rainfall := make([]float64, n)
	years := make([]int, n)
	for i, o := range observations {
		x[i] = float64(i)
		if basis == SlopeByYear {
			x[i] = float64(o.Year)
		}
		aqi[i] = o.AQI
		rainfall[i] = o.RainfallMM
		years[i] = o.Year
	}

	summary := TrendSummary{
		AQITrend:      AQIStable,
		RainfallTrend: RainfallStable,
		AvgAQI:        stat.Mean(aqi, nil),
		AvgRainfallMM: stat.Mean(rainfall, nil),
		ObservedYears: years,
	}
	if n > 1 {
		summary.AQITrend = classifyAQISlope(fitLine(x, aqi).slope)
		summary.RainfallTrend = classifyRainfallSlope(fitLine(x, rainfall).slope)
	}
	summary.AQIScore = aqiScore(summary.AvgAQI)
	summary.RainfallScore = rainfallScore(summary.AvgRainfallMM)
	return summary
}

func classifyAQISlope(slope float64) AQITrend {
	switch {
	case slope > aqiSlopeThreshold:
		return AQIWorsening
	case slope < -aqiSlopeThreshold:
		return AQIImproving
	default:
		return AQIStable
	}
}

func classifyRainfallSlope(slope float64) RainfallTrend {
	switch {
	case slope > rainfallSlopeThreshold:
		return RainfallIncreasing
	case slope < -rainfallSlopeThreshold:
		return RainfallDecreasing
	default:
		return RainfallStable
	}
}

// aqiScore maps a mean AQI to [1, 10]; lower AQI scores higher.
func aqiScore(avgAQI float64) float64 {
	return clampScore(10 - (avgAQI/aqiScoreScale)*9)
}

// rainfallScore maps a mean annual rainfall to [1, 10]; the closer to
// OptimalRainfallMM the higher the score.
func rainfallScore(avgRainfallMM float64) float64 {
	deviation := math.Abs(avgRainfallMM-OptimalRainfallMM) / OptimalRainfallMM
	return clampScore(10 - deviation*9)
}
