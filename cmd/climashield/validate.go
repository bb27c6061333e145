package main

import (
	"fmt"
	"io"
	"math"
	"os"
	"slices"

	"github.com/spf13/cobra"

	"github.com/couchcryptid/climashield/internal/dataset"
	"github.com/couchcryptid/climashield/internal/domain"
)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func validateCmd() *cobra.Command {
	var forecastPath string

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check a forecast table against the observations it was built from",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, _, err := setup()
			if err != nil {
				return err
			}
			if forecastPath == "" {
				forecastPath = cfg.ForecastOutputPath
			}

			obs, err := dataset.LoadObservations(cfg.ObservationsPath)
			if err != nil {
				return err
			}
			f, err := os.Open(forecastPath)
			if err != nil {
				return err
			}
			defer f.Close()
			rows, err := dataset.ReadForecastCSV(f)
			if err != nil {
				return fmt.Errorf("read %s: %w", forecastPath, err)
			}

			phases := validateForecast(obs, rows, cfg.ForecastRange)
			if !report(cmd.OutOrStdout(), phases, len(obs), len(rows)) {
				return fmt.Errorf("forecast %s failed validation", forecastPath)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&forecastPath, "forecast", "", "forecast CSV to check (default FORECAST_OUTPUT_PATH)")
	return cmd
}

// validateForecast runs every check against a forecast table. The CSV does
// not mark projected rows, so everything after the historical prefix is
// treated as projected.
func validateForecast(obs []domain.ClimateObservation, rows []domain.ForecastRow, rng domain.ForecastRange) []*phase {
	return []*phase{
		validateHistory(obs, rows),
		validateProjections(obs, rows, rng),
		validateFinite(rows),
	}
}

func validateHistory(obs []domain.ClimateObservation, rows []domain.ForecastRow) *phase {
	p := &phase{name: "Historical rows preserved in order"}
	if len(rows) < len(obs) {
		p.errorf("table has %d rows, fewer than %d observations", len(rows), len(obs))
		return p
	}
	for i, o := range obs {
		r := rows[i]
		if r.Year != o.Year || r.Area != o.Area || r.AQI != o.AQI || r.RainfallMM != o.RainfallMM {
			p.errorf("row %d: got %d/%s/%g/%g, want %d/%s/%g/%g",
				i+1, r.Year, r.Area, r.AQI, r.RainfallMM, o.Year, o.Area, o.AQI, o.RainfallMM)
		}
	}
	return p
}

func validateProjections(obs []domain.ClimateObservation, rows []domain.ForecastRow, rng domain.ForecastRange) *phase {
	p := &phase{name: "Projected years per area"}
	if len(rows) < len(obs) {
		return p
	}

	var order []string
	counts := make(map[string]int)
	for _, o := range obs {
		if counts[o.Area] == 0 {
			order = append(order, o.Area)
		}
		counts[o.Area]++
	}

	var fitted []string
	for _, area := range order {
		if counts[area] >= 2 {
			fitted = append(fitted, area)
		}
	}

	want := rng.Years()
	projected := rows[len(obs):]
	if len(projected) != len(fitted)*len(want) {
		p.errorf("expected %d projected rows (%d areas x %d years), got %d",
			len(fitted)*len(want), len(fitted), len(want), len(projected))
	}

	got := make(map[string][]int)
	var gotOrder []string
	for _, r := range projected {
		if _, seen := got[r.Area]; !seen {
			gotOrder = append(gotOrder, r.Area)
		}
		got[r.Area] = append(got[r.Area], r.Year)
		if n := counts[r.Area]; n < 2 {
			p.errorf("area %s has %d observation(s) but projected year %d", r.Area, n, r.Year)
		}
	}
	for _, area := range fitted {
		if !slices.Equal(got[area], want) {
			p.errorf("area %s: projected years %v, want %v", area, got[area], want)
		}
	}
	if !slices.Equal(gotOrder, fitted) && len(gotOrder) == len(fitted) {
		p.errorf("projected areas in order %v, want first-seen order %v", gotOrder, fitted)
	}
	return p
}

func validateFinite(rows []domain.ForecastRow) *phase {
	p := &phase{name: "All values finite"}
	for i, r := range rows {
		for _, v := range []float64{r.AQI, r.RainfallMM} {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				p.errorf("row %d (%s %d): non-finite value %v", i+1, r.Area, r.Year, v)
			}
		}
	}
	return p
}

// report prints a pass/fail summary and the detailed errors. It returns true
// when every phase passed.
func report(w io.Writer, phases []*phase, observations, rows int) bool {
	fmt.Fprintln(w, "=== Forecast Table Validation ===")
	fmt.Fprintln(w)

	allPassed := true
	for _, p := range phases {
		status := "PASS"
		if !p.passed() {
			status = fmt.Sprintf("FAIL (%d errors)", len(p.errors))
			allPassed = false
		}
		fmt.Fprintf(w, "  %-42s %s\n", p.name, status)
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Records: %d observations, %d forecast rows\n", observations, rows)

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Fprintf(w, "\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Fprintf(w, "  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Fprintln(w, "\nAll validations passed.")
	} else {
		fmt.Fprintln(w, "\nValidation FAILED.")
	}
	return allPassed
}
