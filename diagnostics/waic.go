package diagnostics

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/anhnguyendepocen/bayes-course/errors"
	"github.com/anhnguyendepocen/bayes-course/mcmc"
)

// WaicResult holds widely-applicable information criterion estimates for
// one model. On well-behaved fits Elpd tracks the LOO estimate closely.
type WaicResult struct {
	Model string
	// Elpd is the expected log pointwise predictive density.
	Elpd float64
	// P is the effective number of parameters (pointwise variance form).
	P float64
	// Waic is -2*Elpd, on the deviance scale.
	Waic float64
	// SE is the standard error of Elpd over observations.
	SE float64
}

// Waic computes the widely-applicable information criterion for a fitted
// model from its pointwise log-likelihood.
func Waic(fit *mcmc.Fit, m mcmc.PointwiseModel) (*WaicResult, error) {
	ll, err := pointwiseMatrix(fit, m)
	if err != nil {
		return nil, err
	}
	return WaicFromMatrix(fit.Model, ll)
}

// WaicFromMatrix computes WAIC from a log-likelihood matrix with one row
// per draw and one column per observation.
func WaicFromMatrix(model string, ll *mat.Dense) (*WaicResult, error) {
	s, n := ll.Dims()
	if s == 0 || n == 0 {
		return nil, errors.Wrap(errors.ErrEmptyData, "log-likelihood matrix is empty")
	}

	res := &WaicResult{Model: model}
	pointwise := make([]float64, n)
	col := make([]float64, s)
	for i := 0; i < n; i++ {
		mat.Col(col, i, ll)
		for _, v := range col {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, errors.Wrapf(errors.ErrNotFinite,
					"log-likelihood for observation %d", i)
			}
		}
		lpd := floats.LogSumExp(col) - math.Log(float64(s))
		pWaic := stat.Variance(col, nil)
		pointwise[i] = lpd - pWaic
		res.P += pWaic
	}

	res.Elpd = floats.Sum(pointwise)
	res.Waic = -2 * res.Elpd
	res.SE = math.Sqrt(float64(n) * stat.Variance(pointwise, nil))
	return res, nil
}

// Comparison is the paired difference in predictive performance between two
// models fitted to the same observations.
type Comparison struct {
	ModelA, ModelB string
	// ElpdDiff is Elpd(A) - Elpd(B); positive favors A.
	ElpdDiff float64
	// SE is the standard error of the paired pointwise differences.
	SE float64
}

// Favored names the model with the higher estimated elpd.
func (c Comparison) Favored() string {
	if c.ElpdDiff < 0 {
		return c.ModelB
	}
	return c.ModelA
}

// CompareLoo pairs the pointwise LOO contributions of two models. Both must
// have been evaluated on the same observations, in the same order.
func CompareLoo(a, b *LooResult) (Comparison, error) {
	if len(a.PointwiseElpd) != len(b.PointwiseElpd) {
		return Comparison{}, errors.Newf("models were scored on %d vs %d observations",
			len(a.PointwiseElpd), len(b.PointwiseElpd))
	}
	n := len(a.PointwiseElpd)
	diff := make([]float64, n)
	for i := range diff {
		diff[i] = a.PointwiseElpd[i] - b.PointwiseElpd[i]
	}
	return Comparison{
		ModelA:   a.Model,
		ModelB:   b.Model,
		ElpdDiff: floats.Sum(diff),
		SE:       math.Sqrt(float64(n) * stat.Variance(diff, nil)),
	}, nil
}
