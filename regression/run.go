package regression

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/anhnguyendepocen/bayes-course/config"
	"github.com/anhnguyendepocen/bayes-course/dataset"
	"github.com/anhnguyendepocen/bayes-course/diagnostics"
	"github.com/anhnguyendepocen/bayes-course/errors"
	"github.com/anhnguyendepocen/bayes-course/logger"
	"github.com/anhnguyendepocen/bayes-course/mcmc"
	"github.com/anhnguyendepocen/bayes-course/posterior"
	"github.com/anhnguyendepocen/bayes-course/report"
)

// Model names as they appear in fits, figures and the report.
const (
	ModelQuadratic   = "quadratic"
	ModelInteraction = "interaction"
)

const (
	// nPPCReplicates is how many replicate datasets back the test statistics.
	nPPCReplicates = 200
	// nOverlayReplicates is how many replicate densities the overlay shows.
	nOverlayReplicates = 30
	// phGridN is the resolution of the fitted-response grid.
	phGridN = 60
)

// ModelFit bundles one fitted model variant.
type ModelFit struct {
	Name       string
	Formula    string
	Fit        *mcmc.Fit
	Summary    []posterior.ParamSummary
	Acceptance diagnostics.Acceptance
	Loo        *diagnostics.LooResult
}

// PPC holds posterior-predictive test statistics for the quadratic model:
// the tail probabilities of the replicate mean and SD against the observed
// ones. Values near 0 or 1 flag a model that cannot reproduce the data.
type PPC struct {
	ObservedMean float64
	ObservedSD   float64
	PMean        float64
	PSD          float64
}

// RatioSummary is the posterior of the expected-biomass ratio between the
// high and low nutrient settings at the reference pH.
type RatioSummary struct {
	Median float64
	Lo     float64
	Hi     float64
	// The natural-scale settings the ratio was evaluated at.
	NutrientHigh float64
	NutrientLow  float64
	PH           float64
}

// Result is the full outcome of the regression pipeline.
type Result struct {
	RunID    uuid.UUID
	N        int
	DataPath string
	DataSHA  string
	PHScale  dataset.Scaling
	NutScale dataset.Scaling

	Quadratic   ModelFit
	Interaction ModelFit

	// ProbB2Neg is P(b2 < 0) under the quadratic model: the probability the
	// pH response curves downward. ProbB4Pos is P(b4 > 0) under the
	// interaction model.
	ProbB2Neg float64
	ProbB4Pos float64

	Ratio      RatioSummary
	Comparison diagnostics.Comparison
	PPC        PPC

	Figures []string
	OutDir  string
	Elapsed time.Duration
}

type runner struct {
	emitter mcmc.ProgressEmitter
}

// Option adjusts how Run executes.
type Option func(*runner)

// WithEmitter routes sampler progress to e.
func WithEmitter(e mcmc.ProgressEmitter) Option {
	return func(r *runner) { r.emitter = e }
}

// Run executes the regression pipeline: load and standardize the mesocosm
// table, fit the quadratic and interaction models, check both against the
// data, derive the coefficient probabilities and the nutrient response
// ratio, and write the figures.
func Run(ctx context.Context, cfg *config.Config, opts ...Option) (*Result, error) {
	start := time.Now()
	r := &runner{emitter: mcmc.NopEmitter{}}
	for _, opt := range opts {
		opt(r)
	}

	tanks, err := LoadTanks(cfg.Regression)
	if err != nil {
		return nil, err
	}
	sha, err := report.SHA256File(tanks.Source)
	if err != nil {
		return nil, err
	}

	termsA := NewTerms().Intercept().Linear(ColPHScaled).Quadratic(ColPHScaled).Linear(ColNutrientScaled)
	termsB := NewTerms().Intercept().Linear(ColPHScaled).Quadratic(ColPHScaled).Linear(ColNutrientScaled).
		Interaction(ColPHScaled, ColNutrientScaled)

	modelA, err := NewLinearModel(ModelQuadratic, termsA, tanks.Frame, ColBiomass)
	if err != nil {
		return nil, err
	}
	modelB, err := NewLinearModel(ModelInteraction, termsB, tanks.Frame, ColBiomass)
	if err != nil {
		return nil, err
	}

	mcfg := mcmc.DefaultConfig()
	mcfg.Chains = cfg.Sampler.Chains
	mcfg.Iter = cfg.Sampler.Iterations
	mcfg.Warmup = cfg.Sampler.Warmup
	mcfg.Seed = cfg.Sampler.Seed
	mcfg.TargetAccept = cfg.Sampler.TargetAccept

	res := &Result{
		RunID:    uuid.New(),
		N:        tanks.Frame.Len(),
		DataPath: tanks.Source,
		DataSHA:  sha,
		PHScale:  tanks.PHScale,
		NutScale: tanks.NutScale,
		OutDir:   cfg.Output.Dir,
	}

	if res.Quadratic, err = fitModel(ctx, modelA, mcfg, r.emitter); err != nil {
		return nil, err
	}
	if res.Interaction, err = fitModel(ctx, modelB, mcfg, r.emitter); err != nil {
		return nil, err
	}

	if res.ProbB2Neg, err = posterior.Prob(res.Quadratic.Fit, "b2", func(v float64) bool { return v < 0 }); err != nil {
		return nil, err
	}
	if res.ProbB4Pos, err = posterior.ProbPositive(res.Interaction.Fit, "b4"); err != nil {
		return nil, err
	}

	if res.Ratio, err = nutrientRatio(cfg.Regression, tanks, modelB, res.Interaction.Fit); err != nil {
		return nil, err
	}
	if res.Comparison, err = diagnostics.CompareLoo(res.Quadratic.Loo, res.Interaction.Loo); err != nil {
		return nil, err
	}

	ppc, yrep := simulateReplicates(modelA, res.Quadratic.Fit, cfg.Sampler.Seed)
	res.PPC = ppc

	if res.Figures, err = writeFigures(cfg, res, tanks, modelA, modelB, yrep); err != nil {
		return nil, err
	}

	res.Elapsed = time.Since(start)
	logger.Infow("regression pipeline finished",
		logger.FieldRunID, res.RunID.String(),
		logger.FieldRows, res.N,
		"favored", res.Comparison.Favored(),
		logger.FieldDurationMS, res.Elapsed.Milliseconds())
	return res, nil
}

func fitModel(ctx context.Context, m *Model, mcfg mcmc.Config, emitter mcmc.ProgressEmitter) (ModelFit, error) {
	logger.Infow("fitting regression model",
		logger.FieldModel, m.Name(),
		logger.FieldRows, m.NumObs(),
		logger.FieldColumns, m.NumCoef())

	fit, err := mcmc.Sample(ctx, m, mcfg, mcmc.WithEmitter(emitter))
	if err != nil {
		return ModelFit{}, errors.Wrapf(err, "model %s", m.Name())
	}
	loo, err := diagnostics.Loo(fit, m)
	if err != nil {
		return ModelFit{}, errors.Wrapf(err, "model %s", m.Name())
	}
	return ModelFit{
		Name:       m.Name(),
		Formula:    m.Terms().Formula(ColBiomass),
		Fit:        fit,
		Summary:    posterior.Summarize(fit),
		Acceptance: diagnostics.AcceptanceSummary(fit),
		Loo:        loo,
	}, nil
}

// nutrientRatio derives, draw by draw, the ratio of expected biomass between
// the high and low nutrient settings with pH pinned at its reference value.
func nutrientRatio(rcfg config.RegressionConfig, tanks *Tanks, m *Model, fit *mcmc.Fit) (RatioSummary, error) {
	phRef := rcfg.PHReference
	if phRef == 0 {
		phRef = medianOf(tanks.PH)
	}
	zp := tanks.PHScale.Apply(phRef)
	zHigh := tanks.NutScale.Apply(rcfg.NutrientHigh)
	zLow := tanks.NutScale.Apply(rcfg.NutrientLow)

	gframe, err := dataset.New(
		dataset.FloatCol(ColPHScaled, []float64{zp, zp}),
		dataset.FloatCol(ColNutrientScaled, []float64{zHigh, zLow}),
	)
	if err != nil {
		return RatioSummary{}, err
	}
	x, err := m.Terms().Matrix(gframe)
	if err != nil {
		return RatioSummary{}, err
	}

	draws := posterior.Apply(fit, func(theta []float64) float64 {
		mu := m.PredictRows(x, theta)
		return mu[0] / mu[1]
	})
	lo, hi := posterior.Interval(draws, 0.95)
	return RatioSummary{
		Median:       medianOf(draws),
		Lo:           lo,
		Hi:           hi,
		NutrientHigh: rcfg.NutrientHigh,
		NutrientLow:  rcfg.NutrientLow,
		PH:           phRef,
	}, nil
}

// simulateReplicates draws replicate datasets from the quadratic model and
// scores the observed mean and SD against them.
func simulateReplicates(m *Model, fit *mcmc.Fit, seed uint64) (PPC, *mat.Dense) {
	y := m.Response()
	obsMean, obsSD := stat.MeanStdDev(y, nil)

	idx := posterior.Thin(fit, fit.NumDraws()/nPPCReplicates)
	pooled := fit.Pooled()
	rng := rand.New(rand.NewSource(seed))

	yrep := mat.NewDense(len(idx), len(y), nil)
	geMean, geSD := 0, 0
	for r, i := range idx {
		rep := m.Simulate(pooled.RawRowView(i), rng)
		yrep.SetRow(r, rep)
		mean, sd := stat.MeanStdDev(rep, nil)
		if mean >= obsMean {
			geMean++
		}
		if sd >= obsSD {
			geSD++
		}
	}
	return PPC{
		ObservedMean: obsMean,
		ObservedSD:   obsSD,
		PMean:        float64(geMean) / float64(len(idx)),
		PSD:          float64(geSD) / float64(len(idx)),
	}, yrep
}

func medianOf(xs []float64) float64 {
	sorted := append([]float64(nil), xs...)
	sort.Float64s(sorted)
	return stat.Quantile(0.5, stat.Empirical, sorted, nil)
}
