package dataset

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/couchcryptid/climashield/internal/domain"
)

const (
	colArea         = "Area"
	colYear         = "Year"
	colAQI          = "AQI"
	colRainfallText = "Rainfall (mm)"
	colRainfall     = "Rainfall"
	colSoilType     = "Soil Type"
	colElevText     = "Elevation (m)"
	colElevation    = "Elevation"
)

// LoadTables reads both input files into a snapshot.
func LoadTables(observationsPath, soilPath string) (*domain.Tables, error) {
	obs, err := loadFile(observationsPath, ReadObservations)
	if err != nil {
		return nil, err
	}
	soil, err := loadFile(soilPath, ReadSoilFacts)
	if err != nil {
		return nil, err
	}
	return domain.NewTables(obs, soil), nil
}

// LoadObservations reads the observation file at path.
func LoadObservations(path string) ([]domain.ClimateObservation, error) {
	return loadFile(path, ReadObservations)
}

func loadFile[T any](path string, read func(io.Reader) ([]T, error)) ([]T, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	out, err := read(bufio.NewReader(f))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return out, nil
}

// ReadObservations parses an observation table.
func ReadObservations(r io.Reader) ([]domain.ClimateObservation, error) {
	t, err := readTable(r)
	if err != nil {
		return nil, err
	}
	rainCol, err := t.pick(colRainfallText, colRainfall)
	if err != nil {
		return nil, err
	}
	if err := t.require(colArea, colYear, colAQI); err != nil {
		return nil, err
	}

	out := make([]domain.ClimateObservation, 0, len(t.rows))
	for i, rec := range t.rows {
		line := i + 2
		area := t.get(rec, colArea)
		if area == "" {
			return nil, fmt.Errorf("row %d: %s is required", line, colArea)
		}
		year, err := strconv.Atoi(t.get(rec, colYear))
		if err != nil {
			return nil, fmt.Errorf("row %d: invalid %s %q", line, colYear, t.get(rec, colYear))
		}
		aqi, err := parseNumber(t.get(rec, colAQI), "")
		if err != nil {
			return nil, fmt.Errorf("row %d: %s: %w", line, colAQI, err)
		}
		rain, err := parseNumber(t.get(rec, rainCol), "mm")
		if err != nil {
			return nil, fmt.Errorf("row %d: %s: %w", line, rainCol, err)
		}
		out = append(out, domain.ClimateObservation{Area: area, Year: year, AQI: aqi, RainfallMM: rain})
	}
	return out, nil
}

// ReadSoilFacts parses a soil/elevation table.
func ReadSoilFacts(r io.Reader) ([]domain.SoilFact, error) {
	t, err := readTable(r)
	if err != nil {
		return nil, err
	}
	elevCol, err := t.pick(colElevText, colElevation)
	if err != nil {
		return nil, err
	}
	if err := t.require(colArea, colSoilType); err != nil {
		return nil, err
	}

	out := make([]domain.SoilFact, 0, len(t.rows))
	for i, rec := range t.rows {
		line := i + 2
		area := t.get(rec, colArea)
		if area == "" {
			return nil, fmt.Errorf("row %d: %s is required", line, colArea)
		}
		elev, err := parseNumber(t.get(rec, elevCol), "meters")
		if err != nil {
			return nil, fmt.Errorf("row %d: %s: %w", line, elevCol, err)
		}
		out = append(out, domain.SoilFact{Area: area, SoilType: t.get(rec, colSoilType), ElevationM: elev})
	}
	return out, nil
}

// parseNumber parses a finite float, tolerating a trailing unit word such as
// "mm" or "meters".
func parseNumber(s, unit string) (float64, error) {
	s = strings.TrimSpace(s)
	if unit != "" {
		s = strings.TrimSpace(strings.TrimSuffix(s, unit))
	}
	if s == "" {
		return 0, errors.New("value is empty")
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number %q", s)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("non-finite number %q", s)
	}
	return v, nil
}

type table struct {
	col  map[string]int
	rows [][]string
}

func readTable(r io.Reader) (*table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	records, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, errors.New("csv has no header")
	}

	header := records[0]
	header[0] = strings.TrimPrefix(header[0], "\ufeff")

	t := &table{col: make(map[string]int, len(header)), rows: records[1:]}
	for i, h := range header {
		t.col[strings.TrimSpace(h)] = i
	}
	return t, nil
}

func (t *table) require(names ...string) error {
	for _, n := range names {
		if _, ok := t.col[n]; !ok {
			return fmt.Errorf("missing required column: %s", n)
		}
	}
	return nil
}

// pick returns the first of the candidate columns present in the header.
func (t *table) pick(candidates ...string) (string, error) {
	for _, c := range candidates {
		if _, ok := t.col[c]; ok {
			return c, nil
		}
	}
	return "", fmt.Errorf("missing required column: %s", strings.Join(candidates, " or "))
}

func (t *table) get(rec []string, name string) string {
	i, ok := t.col[name]
	if !ok || i >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[i])
}
