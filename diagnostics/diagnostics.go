// Package diagnostics judges the quality of posterior draws: split R-hat
// and effective sample size for convergence, PSIS-LOO and WAIC for model
// comparison, and acceptance-rate summaries for sampler health.
//
// Every check here reports findings; none of them aborts a run. Bad
// diagnostics mean the draws need scrutiny, not that the program failed.
package diagnostics

import (
	"gonum.org/v1/gonum/stat"

	"github.com/anhnguyendepocen/bayes-course/logger"
	"github.com/anhnguyendepocen/bayes-course/mcmc"
)

// Thresholds for statistical quality findings.
const (
	// RhatWarn is the split R-hat above which mixing is questionable.
	RhatWarn = 1.01
	// RhatSevere is the split R-hat above which the draws should not be
	// trusted at all.
	RhatSevere = 1.05
	// ESSPerChainWarn is the per-chain effective sample size below which
	// summaries get noisy.
	ESSPerChainWarn = 100
	// ParetoKWarn is the Pareto shape above which a PSIS-LOO pointwise
	// estimate is unreliable.
	ParetoKWarn = 0.7
)

// Acceptance summarizes per-chain acceptance rates of a fit.
type Acceptance struct {
	PerChain []float64
	Mean     float64
}

// AcceptanceSummary reports the acceptance rates of a fit and logs a warning
// when the mean sits far from the configured target.
func AcceptanceSummary(fit *mcmc.Fit) Acceptance {
	perChain := make([]float64, len(fit.Acceptance))
	copy(perChain, fit.Acceptance)
	mean := stat.Mean(perChain, nil)
	target := fit.Config.TargetAccept
	if mean < target/3 || mean > 0.9 {
		logger.Warnw("acceptance rate far from target",
			logger.FieldModel, fit.Model,
			logger.FieldAcceptance, mean,
		)
	}
	return Acceptance{PerChain: perChain, Mean: mean}
}
