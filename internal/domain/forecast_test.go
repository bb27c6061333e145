package domain

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func forecastFixture() []ClimateObservation {
	return []ClimateObservation{
		{Area: "Alpha", Year: 2020, AQI: 100, RainfallMM: 1000},
		{Area: "Bravo", Year: 2020, AQI: 80, RainfallMM: 900},
		{Area: "Charlie", Year: 2019, AQI: 50, RainfallMM: 800},
		{Area: "Alpha", Year: 2022, AQI: 120, RainfallMM: 1100},
		{Area: "Charlie", Year: 2021, AQI: 54, RainfallMM: 820},
	}
}

func TestForecast_RowsAndOrdering(t *testing.T) {
	result := Forecast(forecastFixture(), ForecastRange{FirstYear: 2025, LastYear: 2027})

	want := []ForecastRow{
		{Year: 2020, Area: "Alpha", AQI: 100, RainfallMM: 1000},
		{Year: 2020, Area: "Bravo", AQI: 80, RainfallMM: 900},
		{Year: 2019, Area: "Charlie", AQI: 50, RainfallMM: 800},
		{Year: 2022, Area: "Alpha", AQI: 120, RainfallMM: 1100},
		{Year: 2021, Area: "Charlie", AQI: 54, RainfallMM: 820},
		{Year: 2025, Area: "Alpha", AQI: 150, RainfallMM: 1250, Projected: true},
		{Year: 2026, Area: "Alpha", AQI: 160, RainfallMM: 1300, Projected: true},
		{Year: 2027, Area: "Alpha", AQI: 170, RainfallMM: 1350, Projected: true},
		{Year: 2025, Area: "Charlie", AQI: 62, RainfallMM: 860, Projected: true},
		{Year: 2026, Area: "Charlie", AQI: 64, RainfallMM: 870, Projected: true},
		{Year: 2027, Area: "Charlie", AQI: 66, RainfallMM: 880, Projected: true},
	}
	if diff := cmp.Diff(want, result.Rows); diff != "" {
		t.Errorf("forecast rows mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, []string{"Alpha", "Charlie"}, result.FittedAreas)
	assert.Equal(t, []string{"Bravo"}, result.SkippedAreas)
	assert.Equal(t, 6, result.Projected())

	require.Len(t, result.Models, 2)
	assert.Equal(t, "Alpha", result.Models[0].Area)
	assert.Equal(t, 2, result.Models[0].Observations)
	assert.Equal(t, "Charlie", result.Models[1].Area)
	assert.Equal(t, 2, result.Models[1].Observations)
}

func TestForecast_DefaultRangeCoversSixYears(t *testing.T) {
	result := Forecast(forecastFixture(), DefaultForecastRange)

	var years []int
	for _, row := range result.Rows {
		if row.Projected && row.Area == "Alpha" {
			years = append(years, row.Year)
		}
	}
	assert.Equal(t, []int{2025, 2026, 2027, 2028, 2029, 2030}, years)
	assert.Len(t, result.Rows, 5+2*6)
}

func TestForecast_SingleObservationAreaNeverProjected(t *testing.T) {
	result := Forecast(forecastFixture(), DefaultForecastRange)

	for _, row := range result.Rows {
		if row.Area == "Bravo" {
			assert.False(t, row.Projected, "Bravo has one observation")
			assert.Equal(t, 2020, row.Year)
		}
	}
}

func TestFitAreaModel_TwoPointsReproduceHistory(t *testing.T) {
	obs := []ClimateObservation{
		{Area: "Delta", Year: 2017, AQI: 73.4, RainfallMM: 1312.7},
		{Area: "Delta", Year: 2023, AQI: 41.9, RainfallMM: 987.2},
	}

	model, ok := FitAreaModel("Delta", obs)
	require.True(t, ok)

	for _, o := range obs {
		assert.InDelta(t, o.AQI, model.PredictAQI(o.Year), 1e-6)
		assert.InDelta(t, o.RainfallMM, model.PredictRainfall(o.Year), 1e-6)
		assert.Equal(t, o.AQI, round1(model.PredictAQI(o.Year)))
	}
}

func TestFitAreaModel_DegenerateYearsPredictMean(t *testing.T) {
	model, ok := FitAreaModel("Echo", []ClimateObservation{
		{Area: "Echo", Year: 2020, AQI: 100, RainfallMM: 1000},
		{Area: "Echo", Year: 2020, AQI: 200, RainfallMM: 1200},
	})
	require.True(t, ok)

	assert.InDelta(t, 150.0, model.PredictAQI(2030), 1e-9)
	assert.InDelta(t, 1100.0, model.PredictRainfall(2025), 1e-9)
}

func TestFitAreaModel_TooFewPoints(t *testing.T) {
	_, ok := FitAreaModel("Foxtrot", []ClimateObservation{{Area: "Foxtrot", Year: 2020}})
	assert.False(t, ok)

	_, ok = FitAreaModel("Foxtrot", nil)
	assert.False(t, ok)
}

func TestForecast_Empty(t *testing.T) {
	result := Forecast(nil, DefaultForecastRange)
	assert.Empty(t, result.Rows)
	assert.Empty(t, result.FittedAreas)
}

func TestForecastRange(t *testing.T) {
	require.NoError(t, DefaultForecastRange.Validate())
	assert.Equal(t, []int{2030}, ForecastRange{FirstYear: 2030, LastYear: 2030}.Years())

	inverted := ForecastRange{FirstYear: 2031, LastYear: 2030}
	require.Error(t, inverted.Validate())
	assert.Empty(t, inverted.Years())
}
