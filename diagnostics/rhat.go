package diagnostics

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// SplitRhat computes the split-chain potential scale reduction factor for
// one parameter. Each chain is halved, so within-chain trends show up the
// same way as disagreement between chains. Values near 1 indicate mixing;
// see RhatWarn and RhatSevere for the conventional thresholds.
//
// Chains shorter than 4 draws return NaN. Constant equal chains return 1;
// constant chains at different values return +Inf.
func SplitRhat(chains [][]float64) float64 {
	halves := splitChains(chains)
	if len(halves) < 2 {
		return math.NaN()
	}
	n := len(halves[0])

	means := make([]float64, len(halves))
	vars := make([]float64, len(halves))
	for i, h := range halves {
		means[i], vars[i] = stat.MeanVariance(h, nil)
	}
	w := stat.Mean(vars, nil)
	b := float64(n) * stat.Variance(means, nil)

	if w == 0 {
		if b == 0 {
			return 1
		}
		return math.Inf(1)
	}
	varPlus := float64(n-1)/float64(n)*w + b/float64(n)
	return math.Sqrt(varPlus / w)
}

// splitChains halves every chain, dropping the middle draw of odd-length
// chains.
func splitChains(chains [][]float64) [][]float64 {
	var halves [][]float64
	for _, c := range chains {
		half := len(c) / 2
		if half < 2 {
			continue
		}
		halves = append(halves, c[:half], c[len(c)-half:])
	}
	return halves
}

// ESS estimates the effective sample size of one parameter across chains:
// total draws deflated by the combined-chain autocorrelation time, with lag
// contributions kept by Geyer's initial monotone positive sequence.
//
// Chains must share a common length of at least 8 draws; otherwise NaN.
func ESS(chains [][]float64) float64 {
	m := len(chains)
	if m == 0 {
		return math.NaN()
	}
	n := len(chains[0])
	for _, c := range chains {
		if len(c) != n {
			return math.NaN()
		}
	}
	if n < 8 {
		return math.NaN()
	}

	acov := make([][]float64, m)
	means := make([]float64, m)
	vars := make([]float64, m)
	for i, c := range chains {
		acov[i] = autocovariance(c)
		means[i] = stat.Mean(c, nil)
		vars[i] = acov[i][0] * float64(n) / float64(n-1)
	}
	meanVar := stat.Mean(vars, nil)
	varPlus := meanVar * float64(n-1) / float64(n)
	if m > 1 {
		varPlus += stat.Variance(means, nil)
	}
	if varPlus == 0 {
		return math.NaN()
	}

	// Combined-chain autocorrelations, accumulated in even/odd pairs until
	// a pair sum turns negative.
	rho := make([]float64, n)
	rho[0] = 1
	rhoEven := 1.0
	rhoOdd := 1 - (meanVar-lagMean(acov, 1))/varPlus
	rho[1] = rhoOdd
	s := 1
	for s < n-4 && rhoEven+rhoOdd > 0 {
		rhoEven = 1 - (meanVar-lagMean(acov, s+1))/varPlus
		rhoOdd = 1 - (meanVar-lagMean(acov, s+2))/varPlus
		if rhoEven+rhoOdd >= 0 {
			rho[s+1] = rhoEven
			rho[s+2] = rhoOdd
		}
		s += 2
	}
	maxS := s
	if rhoEven > 0 {
		rho[maxS+1] = rhoEven
	}

	// Enforce monotone non-increasing pair sums.
	for s := 1; s+3 <= maxS; s += 2 {
		if rho[s+1]+rho[s+2] > rho[s-1]+rho[s] {
			rho[s+1] = (rho[s-1] + rho[s]) / 2
			rho[s+2] = rho[s+1]
		}
	}

	total := float64(m) * float64(n)
	tau := -1.0 + rho[maxS+1]
	for i := 0; i < maxS; i++ {
		tau += 2 * rho[i]
	}
	ess := total / tau
	if limit := total * math.Log10(total); ess > limit {
		ess = limit
	}
	return ess
}

// autocovariance returns the biased sample autocovariances of x at every
// lag.
func autocovariance(x []float64) []float64 {
	n := len(x)
	mean := stat.Mean(x, nil)
	out := make([]float64, n)
	for lag := 0; lag < n; lag++ {
		s := 0.0
		for i := 0; i+lag < n; i++ {
			s += (x[i] - mean) * (x[i+lag] - mean)
		}
		out[lag] = s / float64(n)
	}
	return out
}

func lagMean(acov [][]float64, lag int) float64 {
	s := 0.0
	for _, a := range acov {
		s += a[lag]
	}
	return s / float64(len(acov))
}
