package posterior

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/anhnguyendepocen/bayes-course/errors"
	"github.com/anhnguyendepocen/bayes-course/mcmc"
)

// Prob estimates the posterior probability that a parameter satisfies pred,
// as the fraction of pooled draws that do.
func Prob(fit *mcmc.Fit, name string, pred func(float64) bool) (float64, error) {
	xs, err := fit.Column(name)
	if err != nil {
		return 0, err
	}
	count := 0
	for _, x := range xs {
		if pred(x) {
			count++
		}
	}
	return float64(count) / float64(len(xs)), nil
}

// ProbPositive estimates the posterior probability that a parameter exceeds
// zero.
func ProbPositive(fit *mcmc.Fit, name string) (float64, error) {
	return Prob(fit, name, func(x float64) bool { return x > 0 })
}

// Apply evaluates a derived scalar quantity on every pooled draw. The theta
// slice passed to f follows fit.ParamNames and must not be retained.
func Apply(fit *mcmc.Fit, f func(theta []float64) float64) []float64 {
	pooled := fit.Pooled()
	s, _ := pooled.Dims()
	out := make([]float64, s)
	for i := 0; i < s; i++ {
		out[i] = f(pooled.RawRowView(i))
	}
	return out
}

// Predict evaluates a vector-valued function of the parameters on every
// pooled draw: one row per draw, one column per prediction point. Every
// call of f must return exactly n values.
func Predict(fit *mcmc.Fit, n int, f func(theta []float64) []float64) (*mat.Dense, error) {
	if n < 1 {
		return nil, errors.Newf("prediction width must be positive, got %d", n)
	}
	pooled := fit.Pooled()
	s, _ := pooled.Dims()
	out := mat.NewDense(s, n, nil)
	for i := 0; i < s; i++ {
		row := f(pooled.RawRowView(i))
		if len(row) != n {
			return nil, errors.Newf("prediction returned %d values, want %d", len(row), n)
		}
		out.SetRow(i, row)
	}
	return out, nil
}

// Thin returns the indices of every k-th pooled draw, for subsampling
// spaghetti plots and replicate simulations. k below 1 keeps every draw.
func Thin(fit *mcmc.Fit, k int) []int {
	if k < 1 {
		k = 1
	}
	idx := make([]int, 0, fit.NumDraws()/k+1)
	for i := 0; i < fit.NumDraws(); i += k {
		idx = append(idx, i)
	}
	return idx
}

// QuantileCurves computes per-column quantiles of a draws-by-points matrix,
// returning one curve per requested probability.
func QuantileCurves(m *mat.Dense, probs []float64) [][]float64 {
	r, c := m.Dims()
	out := make([][]float64, len(probs))
	for i := range out {
		out[i] = make([]float64, c)
	}
	col := make([]float64, r)
	for j := 0; j < c; j++ {
		mat.Col(col, j, m)
		sort.Float64s(col)
		for i, p := range probs {
			out[i][j] = stat.Quantile(p, stat.Empirical, col, nil)
		}
	}
	return out
}

// Interval is the equal-tailed credible interval holding the given
// probability mass.
func Interval(xs []float64, mass float64) (lo, hi float64) {
	if len(xs) == 0 {
		return math.NaN(), math.NaN()
	}
	sorted := append([]float64(nil), xs...)
	sort.Float64s(sorted)
	tail := (1 - mass) / 2
	lo = stat.Quantile(tail, stat.Empirical, sorted, nil)
	hi = stat.Quantile(1-tail, stat.Empirical, sorted, nil)
	return lo, hi
}
