// Package domain scores the climate risk of named areas and projects their
// air quality and rainfall forward.
//
// # Input Tables
//
// Two tables are loaded once at startup and wrapped in a read-only [Tables]
// snapshot:
//
//	Observations:  Area, Year, AQI, Rainfall (mm)   one row per area per year
//	Soil facts:    Area, Soil Type, Elevation (m)   first row per area wins
//
// Years need not be contiguous or sorted. Observation order is significant:
// the trend classifier fits against position in the filtered sequence.
//
// # Scores
//
// Every bounded score is clamped to [1, 10]. Sub-scores read "higher is
// better"; the composite climate risk score is inverted so that "higher is
// worse":
//
//	aqi_score              = 10 - avg_aqi/50*9
//	rainfall_score         = 10 - |avg_rainfall - 1200|/1200*9
//	elevation_factor       = max(0, (1000 - elevation)/1000)
//	lake_bed_probability   = (elevation_factor + soil_factor)*10     soil_factor 0.8 clayey, else 0.3
//	waterlogging_risk      = 11 - absorption + elevation_factor*3
//	construction_stability = 11 - waterlogging_risk
//	water_management       = (rainfall_score + absorption)/2
//	climate_risk_score     = 11 - mean(air_quality, construction_stability, water_management)
//
// Areas with no data never fail; they receive neutral scores of 5.
//
// # Trend Thresholds
//
//	AQI slope:      > 2 worsening  | < -2 improving   | else stable
//	Rainfall slope: > 10 increasing | < -10 decreasing | else stable
//
// # Forecasting
//
// [Forecast] fits year->AQI and year->rainfall per area with ordinary least
// squares and evaluates each line for every year of a [ForecastRange]
// (2025-2030 by default). Areas with fewer than two observations are left out
// of the projection but their history is still emitted.
package domain
