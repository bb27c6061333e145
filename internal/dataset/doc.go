// Package dataset reads the input tables from CSV and writes the forecast
// table as CSV or XLSX.
//
// Observation files carry rainfall as text with a unit suffix ("1200 mm") in
// a "Rainfall (mm)" column; soil files carry elevation as "920 meters" in an
// "Elevation (m)" column. Pre-cleaned numeric "Rainfall" and "Elevation"
// columns are accepted as well. Any malformed row fails the whole load.
package dataset
