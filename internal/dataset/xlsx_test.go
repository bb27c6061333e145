package dataset

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestWriteForecastXLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteForecastXLSX(&buf, testForecastRows()))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{ForecastSheet}, f.GetSheetList())

	rows, err := f.GetRows(ForecastSheet)
	require.NoError(t, err)
	require.Len(t, rows, 5)
	assert.Equal(t, ForecastHeader, rows[0])
	assert.Equal(t, []string{"2020", "Koramangala", "100", "1200"}, rows[1])
	assert.Equal(t, []string{"2025", "Hebbal", "62.5", "903.25"}, rows[4])
}

func TestSaveForecastXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "exports", "forecast.xlsx")
	require.NoError(t, SaveForecastXLSX(path, testForecastRows()))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	v, err := f.GetCellValue(ForecastSheet, "B3")
	require.NoError(t, err)
	assert.Equal(t, "Koramangala", v)
}
