package diagnostics

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/anhnguyendepocen/bayes-course/errors"
	"github.com/anhnguyendepocen/bayes-course/logger"
	"github.com/anhnguyendepocen/bayes-course/mcmc"
)

// LooResult holds Pareto-smoothed importance-sampling leave-one-out
// cross-validation estimates for one model.
type LooResult struct {
	// Model names the fitted model the estimates belong to.
	Model string
	// Elpd is the expected log pointwise predictive density.
	Elpd float64
	// P is the effective number of parameters.
	P float64
	// Looic is -2*Elpd, on the deviance scale.
	Looic float64
	// SE is the standard error of Elpd over observations.
	SE float64
	// PointwiseElpd holds one elpd contribution per observation.
	PointwiseElpd []float64
	// K holds the Pareto shape estimate per observation; +Inf marks tails
	// too short or too flat to fit.
	K []float64
	// HighK counts observations with K above ParetoKWarn.
	HighK int
}

// Loo estimates leave-one-out predictive performance of a fitted model by
// PSIS: the pointwise log-likelihood is evaluated on every pooled draw,
// importance weights are Pareto-smoothed per observation, and unreliable
// observations are flagged through their shape estimate k.
func Loo(fit *mcmc.Fit, m mcmc.PointwiseModel) (*LooResult, error) {
	ll, err := pointwiseMatrix(fit, m)
	if err != nil {
		return nil, err
	}
	return LooFromMatrix(fit.Model, ll)
}

// LooFromMatrix runs PSIS-LOO on a precomputed log-likelihood matrix with
// one row per draw and one column per observation.
func LooFromMatrix(model string, ll *mat.Dense) (*LooResult, error) {
	s, n := ll.Dims()
	if s == 0 || n == 0 {
		return nil, errors.Wrap(errors.ErrEmptyData, "log-likelihood matrix is empty")
	}

	res := &LooResult{
		Model:         model,
		PointwiseElpd: make([]float64, n),
		K:             make([]float64, n),
	}
	col := make([]float64, s)
	lw := make([]float64, s)
	sum := make([]float64, s)
	for i := 0; i < n; i++ {
		mat.Col(col, i, ll)
		for _, v := range col {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, errors.Wrapf(errors.ErrNotFinite,
					"log-likelihood for observation %d", i)
			}
		}

		// Raw importance ratios are the inverse likelihoods.
		for j, v := range col {
			lw[j] = -v
		}
		shiftByMax(lw)
		res.K[i] = smoothTail(lw)
		// Truncate at the raw maximum, which the shift placed at zero.
		for j := range lw {
			if lw[j] > 0 {
				lw[j] = 0
			}
		}

		norm := floats.LogSumExp(lw)
		for j := range sum {
			sum[j] = col[j] + lw[j]
		}
		elpd := floats.LogSumExp(sum) - norm
		lpd := floats.LogSumExp(col) - math.Log(float64(s))

		res.PointwiseElpd[i] = elpd
		res.P += lpd - elpd
		if res.K[i] > ParetoKWarn {
			res.HighK++
		}
	}

	res.Elpd = floats.Sum(res.PointwiseElpd)
	res.Looic = -2 * res.Elpd
	res.SE = math.Sqrt(float64(n) * stat.Variance(res.PointwiseElpd, nil))

	if res.HighK > 0 {
		logger.Warnw("unreliable loo estimates",
			logger.FieldModel, model,
			logger.FieldCount, res.HighK,
			logger.FieldParetoK, floats.Max(res.K),
		)
	}
	return res, nil
}

func pointwiseMatrix(fit *mcmc.Fit, m mcmc.PointwiseModel) (*mat.Dense, error) {
	pooled := fit.Pooled()
	s, _ := pooled.Dims()
	first := m.PointwiseLogLik(pooled.RawRowView(0))
	n := len(first)
	if n == 0 {
		return nil, errors.Wrap(errors.ErrEmptyData, "model reports no observations")
	}
	ll := mat.NewDense(s, n, nil)
	ll.SetRow(0, first)
	for i := 1; i < s; i++ {
		row := m.PointwiseLogLik(pooled.RawRowView(i))
		if len(row) != n {
			return nil, errors.Newf("pointwise log-likelihood length changed from %d to %d", n, len(row))
		}
		ll.SetRow(i, row)
	}
	return ll, nil
}

func shiftByMax(lw []float64) {
	m := floats.Max(lw)
	for i := range lw {
		lw[i] -= m
	}
}

// smoothTail replaces the largest log-weights in lw by expected order
// statistics of a generalized Pareto distribution fitted to their
// exceedances, in place, and returns the shape estimate. Tails too short or
// without variation are left alone and reported as +Inf.
func smoothTail(lw []float64) float64 {
	s := len(lw)
	tailLen := int(math.Ceil(math.Min(0.2*float64(s), 3*math.Sqrt(float64(s)))))
	if tailLen < 5 {
		return math.Inf(1)
	}

	order := make([]int, s)
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool { return lw[order[a]] < lw[order[b]] })

	tail := make([]float64, tailLen)
	for j := 0; j < tailLen; j++ {
		tail[j] = lw[order[s-tailLen+j]]
	}
	if tail[tailLen-1]-tail[0] < 1e-14 {
		return math.Inf(1)
	}

	cutoff := lw[order[s-tailLen-1]]
	expCutoff := math.Exp(cutoff)
	exceedances := make([]float64, tailLen)
	for j, v := range tail {
		exceedances[j] = math.Exp(v) - expCutoff
	}
	k, sigma := gpdFit(exceedances)
	if math.IsNaN(k) || math.IsInf(k, 0) || sigma <= 0 {
		return math.Inf(1)
	}

	for j := 0; j < tailLen; j++ {
		p := (float64(j) + 0.5) / float64(tailLen)
		lw[order[s-tailLen+j]] = math.Log(qgpd(p, k, sigma) + expCutoff)
	}
	return k
}

// gpdFit estimates the shape k and scale sigma of a generalized Pareto
// distribution from positive exceedances x, by the Zhang-Stephens profile
// posterior with a weakly informative prior pulling k toward 0.5. x must be
// ascending.
func gpdFit(x []float64) (k, sigma float64) {
	n := len(x)
	xstar := x[int(math.Floor(float64(n)/4+0.5))-1]
	xmax := x[n-1]
	if xstar <= 0 || xmax <= 0 {
		return math.Inf(1), math.NaN()
	}

	m := 30 + int(math.Sqrt(float64(n)))
	theta := make([]float64, m)
	profile := make([]float64, m)
	for j := 0; j < m; j++ {
		jj := float64(j) + 1
		theta[j] = 1/xmax + (1-math.Sqrt(float64(m)/(jj-0.5)))/(3*xstar)
		kj := meanLog1p(-theta[j], x)
		profile[j] = float64(n) * (math.Log(-theta[j]/kj) - kj - 1)
	}

	norm := floats.LogSumExp(profile)
	thetaHat := 0.0
	for j := 0; j < m; j++ {
		thetaHat += theta[j] * math.Exp(profile[j]-norm)
	}

	k = meanLog1p(-thetaHat, x)
	sigma = -k / thetaHat
	k = (k*float64(n) + 0.5*10) / (float64(n) + 10)
	return k, sigma
}

// qgpd is the generalized Pareto quantile function with location zero.
func qgpd(p, k, sigma float64) float64 {
	return sigma * math.Expm1(-k*math.Log1p(-p)) / k
}

func meanLog1p(c float64, x []float64) float64 {
	s := 0.0
	for _, v := range x {
		s += math.Log1p(c * v)
	}
	return s / float64(len(x))
}
