package dataset

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"github.com/couchcryptid/climashield/internal/domain"
)

// ForecastSheet is the worksheet name used for XLSX exports.
const ForecastSheet = "Forecast"

// WriteForecastXLSX writes rows as a single-sheet workbook.
func WriteForecastXLSX(w io.Writer, rows []domain.ForecastRow) error {
	f, err := buildWorkbook(rows)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

// SaveForecastXLSX writes rows to a workbook at path.
func SaveForecastXLSX(path string, rows []domain.ForecastRow) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	f, err := buildWorkbook(rows)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}

func buildWorkbook(rows []domain.ForecastRow) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", ForecastSheet); err != nil {
		f.Close()
		return nil, fmt.Errorf("name sheet: %w", err)
	}

	header := make([]any, len(ForecastHeader))
	for i, h := range ForecastHeader {
		header[i] = h
	}
	if err := f.SetSheetRow(ForecastSheet, "A1", &header); err != nil {
		f.Close()
		return nil, fmt.Errorf("write header: %w", err)
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			f.Close()
			return nil, err
		}
		values := []any{row.Year, row.Area, row.AQI, row.RainfallMM}
		if err := f.SetSheetRow(ForecastSheet, cell, &values); err != nil {
			f.Close()
			return nil, fmt.Errorf("write row %d: %w", i+2, err)
		}
	}
	return f, nil
}
