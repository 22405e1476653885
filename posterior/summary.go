// Package posterior turns draw collections into the numbers the notebooks
// report: parameter summaries with convergence diagnostics, event
// probabilities, derived quantities, and credible intervals.
package posterior

import (
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/anhnguyendepocen/bayes-course/diagnostics"
	"github.com/anhnguyendepocen/bayes-course/logger"
	"github.com/anhnguyendepocen/bayes-course/mcmc"
)

// ParamSummary describes the pooled posterior of one parameter.
type ParamSummary struct {
	Name   string
	Mean   float64
	SD     float64
	Lo95   float64 // 2.5% quantile
	Q25    float64
	Median float64
	Q75    float64
	Hi95   float64 // 97.5% quantile
	Rhat   float64
	ESS    float64
}

// Summarize computes per-parameter summaries over the pooled draws, with
// split R-hat and effective sample size from the per-chain draws.
// Convergence findings are logged as warnings, never returned as errors.
func Summarize(fit *mcmc.Fit) []ParamSummary {
	out := make([]ParamSummary, 0, fit.NumParams())
	for _, name := range fit.ParamNames {
		pooled, err := fit.Column(name)
		if err != nil {
			continue // unreachable: names come from the fit itself
		}
		chains := make([][]float64, fit.NumChains())
		for c := range chains {
			chains[c], _ = fit.ChainColumn(c, name)
		}

		sorted := append([]float64(nil), pooled...)
		sort.Float64s(sorted)
		mean, sd := stat.MeanStdDev(pooled, nil)

		s := ParamSummary{
			Name:   name,
			Mean:   mean,
			SD:     sd,
			Lo95:   stat.Quantile(0.025, stat.Empirical, sorted, nil),
			Q25:    stat.Quantile(0.25, stat.Empirical, sorted, nil),
			Median: stat.Quantile(0.5, stat.Empirical, sorted, nil),
			Q75:    stat.Quantile(0.75, stat.Empirical, sorted, nil),
			Hi95:   stat.Quantile(0.975, stat.Empirical, sorted, nil),
			Rhat:   diagnostics.SplitRhat(chains),
			ESS:    diagnostics.ESS(chains),
		}
		warnConvergence(fit, s)
		out = append(out, s)
	}
	return out
}

func warnConvergence(fit *mcmc.Fit, s ParamSummary) {
	switch {
	case s.Rhat > diagnostics.RhatSevere:
		logger.Warnw("severe convergence failure, do not trust these draws",
			logger.FieldModel, fit.Model,
			logger.FieldParam, s.Name,
			logger.FieldRhat, s.Rhat,
		)
	case s.Rhat > diagnostics.RhatWarn:
		logger.Warnw("possible convergence issue",
			logger.FieldModel, fit.Model,
			logger.FieldParam, s.Name,
			logger.FieldRhat, s.Rhat,
		)
	}
	if s.ESS < float64(diagnostics.ESSPerChainWarn*fit.NumChains()) {
		logger.Warnw("low effective sample size",
			logger.FieldModel, fit.Model,
			logger.FieldParam, s.Name,
			logger.FieldESS, s.ESS,
		)
	}
}
