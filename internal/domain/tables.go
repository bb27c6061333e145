package domain

import "sort"

// ClimateObservation is one year of air-quality and rainfall history for an area.
type ClimateObservation struct {
	Area       string  `json:"area"`
	Year       int     `json:"year"`
	AQI        float64 `json:"aqi"`
	RainfallMM float64 `json:"rainfall_mm"`
}

// SoilFact is the static soil classification and elevation of an area.
type SoilFact struct {
	Area       string  `json:"area"`
	SoilType   string  `json:"soil_type"`
	ElevationM float64 `json:"elevation_m"`
}

// Tables is an immutable snapshot of the input tables. It is built once at
// startup and shared by every analyzer call.
type Tables struct {
	observations []ClimateObservation
	soil         []SoilFact
}

// NewTables copies the given records into a new snapshot.
func NewTables(observations []ClimateObservation, soil []SoilFact) *Tables {
	t := &Tables{
		observations: make([]ClimateObservation, len(observations)),
		soil:         make([]SoilFact, len(soil)),
	}
	copy(t.observations, observations)
	copy(t.soil, soil)
	return t
}

// Observations returns a copy of every observation in load order.
func (t *Tables) Observations() []ClimateObservation {
	out := make([]ClimateObservation, len(t.observations))
	copy(out, t.observations)
	return out
}

// ObservationsFor returns the observations recorded for area, in load order.
func (t *Tables) ObservationsFor(area string) []ClimateObservation {
	var out []ClimateObservation
	for _, o := range t.observations {
		if o.Area == area {
			out = append(out, o)
		}
	}
	return out
}

// SoilFor returns the first soil fact recorded for area.
func (t *Tables) SoilFor(area string) (SoilFact, bool) {
	for _, s := range t.soil {
		if s.Area == area {
			return s, true
		}
	}
	return SoilFact{}, false
}

// Areas returns the sorted set of areas that have at least one observation.
func (t *Tables) Areas() []string {
	seen := make(map[string]struct{}, len(t.observations))
	areas := make([]string, 0)
	for _, o := range t.observations {
		if _, ok := seen[o.Area]; ok {
			continue
		}
		seen[o.Area] = struct{}{}
		areas = append(areas, o.Area)
	}
	sort.Strings(areas)
	return areas
}
