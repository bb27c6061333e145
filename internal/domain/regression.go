package domain

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// line is y = intercept + slope*x.
type line struct {
	intercept float64
	slope     float64
}

func (l line) at(x float64) float64 {
	return l.intercept + l.slope*x
}

// fitLine returns the ordinary least squares fit of y against x. When every x
// is identical the fit degenerates to a flat line through the mean of y.
func fitLine(x, y []float64) line {
	if len(x) == 0 {
		return line{}
	}
	if floats.Max(x) == floats.Min(x) {
		return line{intercept: stat.Mean(y, nil)}
	}
	alpha, beta := stat.LinearRegression(x, y, nil, false)
	return line{intercept: alpha, slope: beta}
}

const (
	minScore     = 1.0
	maxScore     = 10.0
	neutralScore = 5.0
)

func clampScore(v float64) float64 {
	return math.Max(minScore, math.Min(maxScore, v))
}

// round1 rounds to one decimal place for reporting.
func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
