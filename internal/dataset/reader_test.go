package dataset

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/climashield/internal/domain"
)

const observationsCSV = "\ufeffArea,Year,AQI,Rainfall (mm)\n" +
	"Koramangala,2020,100,1200 mm\n" +
	"Koramangala,2021,150,1100 mm\n"

func TestReadObservations(t *testing.T) {
	obs, err := ReadObservations(strings.NewReader(
		"Area,Year,AQI,Rainfall (mm)\n" +
			"Koramangala,2020,100,1200 mm\n" +
			" Hebbal ,2021, 62.5 ,980.5mm\n" +
			"Anekal,2019,40,850\n",
	))
	require.NoError(t, err)

	assert.Equal(t, []domain.ClimateObservation{
		{Area: "Koramangala", Year: 2020, AQI: 100, RainfallMM: 1200},
		{Area: "Hebbal", Year: 2021, AQI: 62.5, RainfallMM: 980.5},
		{Area: "Anekal", Year: 2019, AQI: 40, RainfallMM: 850},
	}, obs)
}

func TestReadObservations_CleanedColumnAndBOM(t *testing.T) {
	obs, err := ReadObservations(strings.NewReader("\ufeffArea,Year,AQI,Rainfall\nHebbal,2020,55,1010\n"))
	require.NoError(t, err)
	require.Len(t, obs, 1)
	assert.Equal(t, "Hebbal", obs[0].Area)
	assert.Equal(t, 1010.0, obs[0].RainfallMM)
}

func TestReadObservations_Errors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr string
	}{
		{"empty file", "", "no header"},
		{"missing rainfall column", "Area,Year,AQI\nX,2020,1\n", "Rainfall (mm) or Rainfall"},
		{"missing AQI column", "Area,Year,Rainfall (mm)\nX,2020,1 mm\n", "missing required column: AQI"},
		{"bad year", "Area,Year,AQI,Rainfall (mm)\nX,twenty,1,1 mm\n", "row 2: invalid Year"},
		{"bad rainfall", "Area,Year,AQI,Rainfall (mm)\nX,2020,1,lots mm\n", "row 2: Rainfall (mm)"},
		{"blank area", "Area,Year,AQI,Rainfall (mm)\n,2020,1,1 mm\n", "row 2: Area is required"},
		{"non-finite AQI", "Area,Year,AQI,Rainfall (mm)\nX,2020,NaN,1 mm\n", "non-finite"},
		{"empty AQI", "Area,Year,AQI,Rainfall (mm)\nX,2020,,1 mm\n", "value is empty"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadObservations(strings.NewReader(tt.input))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestReadSoilFacts(t *testing.T) {
	facts, err := ReadSoilFacts(strings.NewReader(
		"Area,Soil Type,Elevation (m)\n" +
			"Koramangala,Red Loamy Soil,920 meters\n" +
			"Hebbal,Black Cotton Soil,200\n",
	))
	require.NoError(t, err)

	assert.Equal(t, []domain.SoilFact{
		{Area: "Koramangala", SoilType: "Red Loamy Soil", ElevationM: 920},
		{Area: "Hebbal", SoilType: "Black Cotton Soil", ElevationM: 200},
	}, facts)
}

func TestReadSoilFacts_BadElevation(t *testing.T) {
	_, err := ReadSoilFacts(strings.NewReader("Area,Soil Type,Elevation (m)\nX,Sandy Soil,high meters\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "row 2: Elevation (m)")
}

func TestLoadTables(t *testing.T) {
	dir := t.TempDir()
	obsPath := filepath.Join(dir, "aqi.csv")
	soilPath := filepath.Join(dir, "soil.csv")
	require.NoError(t, os.WriteFile(obsPath, []byte("Area,Year,AQI,Rainfall (mm)\nHebbal,2020,60,900 mm\nHebbal,2021,64,950 mm\n"), 0o600))
	require.NoError(t, os.WriteFile(soilPath, []byte("Area,Soil Type,Elevation (m)\nHebbal,Black Cotton Soil,200 meters\n"), 0o600))

	tables, err := LoadTables(obsPath, soilPath)
	require.NoError(t, err)

	assert.Len(t, tables.ObservationsFor("Hebbal"), 2)
	fact, ok := tables.SoilFor("Hebbal")
	require.True(t, ok)
	assert.Equal(t, 200.0, fact.ElevationM)
}

func TestLoadTables_MissingFileFailsImmediately(t *testing.T) {
	dir := t.TempDir()
	_, err := LoadTables(filepath.Join(dir, "absent.csv"), filepath.Join(dir, "soil.csv"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "absent.csv")
}

func TestLoadTables_MalformedSoilFile(t *testing.T) {
	dir := t.TempDir()
	obsPath := filepath.Join(dir, "aqi.csv")
	soilPath := filepath.Join(dir, "soil.csv")
	require.NoError(t, os.WriteFile(obsPath, []byte(observationsCSV), 0o600))
	require.NoError(t, os.WriteFile(soilPath, []byte("Area,Elevation (m)\nX,1 meters\n"), 0o600))

	_, err := LoadTables(obsPath, soilPath)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Soil Type")
}
