package domain

import "fmt"

// minForecastObservations is the fewest observations an area needs before a
// line can be fitted through its history.
const minForecastObservations = 2

// ForecastRow is one row of the forecast table. Projected is false for rows
// copied from history.
type ForecastRow struct {
	Year       int     `json:"year"`
	Area       string  `json:"area"`
	AQI        float64 `json:"aqi"`
	RainfallMM float64 `json:"rainfall_mm"`
	Projected  bool    `json:"projected"`
}

// ForecastRange is the inclusive span of years to project.
type ForecastRange struct {
	FirstYear int
	LastYear  int
}

// DefaultForecastRange projects 2025 through 2030.
var DefaultForecastRange = ForecastRange{FirstYear: 2025, LastYear: 2030}

// Validate rejects inverted ranges.
func (r ForecastRange) Validate() error {
	if r.FirstYear > r.LastYear {
		return fmt.Errorf("forecast range %d-%d is inverted", r.FirstYear, r.LastYear)
	}
	return nil
}

// Years lists every year in the range in ascending order.
func (r ForecastRange) Years() []int {
	if r.FirstYear > r.LastYear {
		return nil
	}
	years := make([]int, 0, r.LastYear-r.FirstYear+1)
	for y := r.FirstYear; y <= r.LastYear; y++ {
		years = append(years, y)
	}
	return years
}

// AreaModel holds the two independent year->value lines fitted for an area.
type AreaModel struct {
	Area         string
	Observations int
	aqi          line
	rainfall     line
}

// PredictAQI evaluates the AQI line at year without rounding.
func (m AreaModel) PredictAQI(year int) float64 {
	return m.aqi.at(float64(year))
}

// PredictRainfall evaluates the rainfall line at year without rounding.
func (m AreaModel) PredictRainfall(year int) float64 {
	return m.rainfall.at(float64(year))
}

// FitAreaModel fits year->AQI and year->rainfall for a single area's
// observations. It returns false when there are too few points.
func FitAreaModel(area string, observations []ClimateObservation) (AreaModel, bool) {
	if len(observations) < minForecastObservations {
		return AreaModel{}, false
	}
	years := make([]float64, len(observations))
	aqi := make([]float64, len(observations))
	rainfall := make([]float64, len(observations))
	for i, o := range observations {
		years[i] = float64(o.Year)
		aqi[i] = o.AQI
		rainfall[i] = o.RainfallMM
	}
	return AreaModel{
		Area:         area,
		Observations: len(observations),
		aqi:          fitLine(years, aqi),
		rainfall:     fitLine(years, rainfall),
	}, true
}

// ForecastResult is the extended table plus which areas were projected.
// Models holds one fitted model per entry of FittedAreas, in the same order.
type ForecastResult struct {
	Rows         []ForecastRow
	FittedAreas  []string
	SkippedAreas []string
	Models       []AreaModel
}

// Projected counts the projected rows.
func (r ForecastResult) Projected() int {
	n := 0
	for _, row := range r.Rows {
		if row.Projected {
			n++
		}
	}
	return n
}

// Forecast emits every historical observation unchanged, followed by one
// projected row per fitted area for each year in rng. Projected areas appear
// in the order they were first encountered; projected values are rounded to
// one decimal.
func Forecast(observations []ClimateObservation, rng ForecastRange) ForecastResult {
	years := rng.Years()

	var order []string
	byArea := make(map[string][]ClimateObservation)
	rows := make([]ForecastRow, 0, len(observations))
	for _, o := range observations {
		rows = append(rows, ForecastRow{Year: o.Year, Area: o.Area, AQI: o.AQI, RainfallMM: o.RainfallMM})
		if _, ok := byArea[o.Area]; !ok {
			order = append(order, o.Area)
		}
		byArea[o.Area] = append(byArea[o.Area], o)
	}

	result := ForecastResult{}
	for _, area := range order {
		model, ok := FitAreaModel(area, byArea[area])
		if !ok {
			result.SkippedAreas = append(result.SkippedAreas, area)
			continue
		}
		result.FittedAreas = append(result.FittedAreas, area)
		result.Models = append(result.Models, model)
		for _, y := range years {
			rows = append(rows, ForecastRow{
				Year:       y,
				Area:       area,
				AQI:        round1(model.PredictAQI(y)),
				RainfallMM: round1(model.PredictRainfall(y)),
				Projected:  true,
			})
		}
	}
	result.Rows = rows
	return result
}
