package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/couchcryptid/climashield/internal/domain"
)

// ForecastHeader is the column layout of the forecast table.
var ForecastHeader = []string{"Year", "Area", "AQI", "Rainfall_mm"}

// WriteForecastCSV writes rows with a header line.
func WriteForecastCSV(w io.Writer, rows []domain.ForecastRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(ForecastHeader); err != nil {
		return err
	}
	for _, row := range rows {
		rec := []string{
			strconv.Itoa(row.Year),
			row.Area,
			formatFloat(row.AQI),
			formatFloat(row.RainfallMM),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// SaveForecastCSV writes rows to path, creating parent directories.
func SaveForecastCSV(path string, rows []domain.ForecastRow) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := WriteForecastCSV(f, rows); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

// ReadForecastCSV re-reads a forecast table. The file does not record which
// rows were projected, so Projected is always false.
func ReadForecastCSV(r io.Reader) ([]domain.ForecastRow, error) {
	t, err := readTable(r)
	if err != nil {
		return nil, err
	}
	if err := t.require(ForecastHeader...); err != nil {
		return nil, err
	}

	out := make([]domain.ForecastRow, 0, len(t.rows))
	for i, rec := range t.rows {
		line := i + 2
		year, err := strconv.Atoi(t.get(rec, "Year"))
		if err != nil {
			return nil, fmt.Errorf("row %d: invalid Year %q", line, t.get(rec, "Year"))
		}
		aqi, err := parseNumber(t.get(rec, "AQI"), "")
		if err != nil {
			return nil, fmt.Errorf("row %d: AQI: %w", line, err)
		}
		rain, err := parseNumber(t.get(rec, "Rainfall_mm"), "")
		if err != nil {
			return nil, fmt.Errorf("row %d: Rainfall_mm: %w", line, err)
		}
		out = append(out, domain.ForecastRow{Year: year, Area: t.get(rec, "Area"), AQI: aqi, RainfallMM: rain})
	}
	return out, nil
}

// formatFloat renders the shortest exact representation, always with a
// decimal point ("150.0", "62.5").
func formatFloat(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
