package viz

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/anhnguyendepocen/bayes-course/errors"
)

// defaultKDEPoints is the grid resolution used when the caller does not ask
// for a specific one.
const defaultKDEPoints = 200

// KDE estimates a density from a sample with a Gaussian kernel and
// Silverman's rule-of-thumb bandwidth, evaluated on an evenly spaced grid
// that extends three bandwidths past the data range. A sample whose spread
// is zero has no usable bandwidth and is rejected.
func KDE(xs []float64, points int) (grid, density []float64, err error) {
	if len(xs) < 2 {
		return nil, nil, errors.Wrap(errors.ErrEmptyData, "density needs at least two values")
	}
	if points < 2 {
		points = defaultKDEPoints
	}
	sorted := append([]float64(nil), xs...)
	sort.Float64s(sorted)

	spread := stat.StdDev(sorted, nil)
	iqr := stat.Quantile(0.75, stat.Empirical, sorted, nil) - stat.Quantile(0.25, stat.Empirical, sorted, nil)
	if r := iqr / 1.34; r > 0 && r < spread {
		spread = r
	}
	if spread <= 0 || math.IsNaN(spread) || math.IsInf(spread, 0) {
		return nil, nil, errors.Newf("cannot form a density from %d values with zero spread", len(xs))
	}
	h := 0.9 * spread * math.Pow(float64(len(xs)), -0.2)

	grid = make([]float64, points)
	floats.Span(grid, sorted[0]-3*h, sorted[len(sorted)-1]+3*h)
	density = make([]float64, points)
	norm := 1 / (float64(len(xs)) * h * math.Sqrt(2*math.Pi))
	for i, g := range grid {
		sum := 0.0
		for _, x := range xs {
			u := (g - x) / h
			sum += math.Exp(-0.5 * u * u)
		}
		density[i] = sum * norm
	}
	return grid, density, nil
}
