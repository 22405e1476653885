package growth

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/floats"

	"github.com/anhnguyendepocen/bayes-course/config"
	"github.com/anhnguyendepocen/bayes-course/dataset"
	"github.com/anhnguyendepocen/bayes-course/diagnostics"
	"github.com/anhnguyendepocen/bayes-course/errors"
	"github.com/anhnguyendepocen/bayes-course/logger"
	"github.com/anhnguyendepocen/bayes-course/mcmc"
	"github.com/anhnguyendepocen/bayes-course/posterior"
	"github.com/anhnguyendepocen/bayes-course/report"
)

// FamilyFit bundles everything the pipeline learned about one
// observation-error family.
type FamilyFit struct {
	Family     string
	Fit        *mcmc.Fit
	Summary    []posterior.ParamSummary
	Acceptance diagnostics.Acceptance
	Loo        *diagnostics.LooResult
}

// Result is the full outcome of the growth pipeline, ready to feed the
// report.
type Result struct {
	RunID   uuid.UUID
	Species string
	Area    string
	// N is the number of modeled specimens, Dropped the duplicates removed.
	N       int
	Dropped int
	// DataPath and DataSHA identify the exact input file.
	DataPath string
	DataSHA  string
	// AgeGrid spans the observed ages for curve figures.
	AgeGrid  []float64
	Families []FamilyFit
	// Best is the family with the highest estimated elpd; Comparisons
	// holds the paired LOO difference of every other family against it.
	Best        string
	Comparisons []diagnostics.Comparison
	// Figures lists written figure paths relative to OutDir.
	Figures []string
	OutDir  string
	Elapsed time.Duration
}

type runner struct {
	emitter    mcmc.ProgressEmitter
	sqlitePath string
}

// Option adjusts how Run executes.
type Option func(*runner)

// WithEmitter routes sampler progress to e.
func WithEmitter(e mcmc.ProgressEmitter) Option {
	return func(r *runner) { r.emitter = e }
}

// WithSQLite reads specimens from a survey SQLite database instead of the
// configured CSV.
func WithSQLite(path string) Option {
	return func(r *runner) { r.sqlitePath = path }
}

// Run executes the growth pipeline: load and clean the specimen table, fit
// the growth curve under each configured error family, summarize and
// diagnose every fit, rank the families by LOOIC and write the figures.
func Run(ctx context.Context, cfg *config.Config, opts ...Option) (*Result, error) {
	start := time.Now()
	r := &runner{emitter: mcmc.NopEmitter{}}
	for _, opt := range opts {
		opt(r)
	}

	sp, err := LoadSpecimens(cfg.Growth, r.sqlitePath)
	if err != nil {
		return nil, err
	}
	sha, err := report.SHA256File(sp.Source)
	if err != nil {
		return nil, err
	}

	gridFrame, err := dataset.SeqGrid(ColAge, floats.Min(sp.Age), floats.Max(sp.Age), cfg.Growth.AgeGridN)
	if err != nil {
		return nil, err
	}
	ageGrid, err := gridFrame.Floats(ColAge)
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
		Species:  cfg.Growth.Species,
		Area:     cfg.Growth.Area,
		N:        sp.Frame.Len(),
		Dropped:  sp.Dropped,
		DataPath: sp.Source,
		DataSHA:  sha,
		AgeGrid:  ageGrid,
		OutDir:   cfg.Output.Dir,
	}

	for _, family := range cfg.Growth.Families {
		model, err := NewModel(family, sp.Age, sp.Length)
		if err != nil {
			return nil, err
		}
		logger.Infow("fitting growth curve",
			logger.FieldModel, model.Name(),
			logger.FieldFamily, family,
			logger.FieldRows, model.NumObs())

		fit, err := mcmc.Sample(ctx, model, mcfg, mcmc.WithEmitter(r.emitter))
		if err != nil {
			return nil, errors.Wrapf(err, "family %s", family)
		}
		loo, err := diagnostics.Loo(fit, model)
		if err != nil {
			return nil, errors.Wrapf(err, "family %s", family)
		}
		res.Families = append(res.Families, FamilyFit{
			Family:     family,
			Fit:        fit,
			Summary:    posterior.Summarize(fit),
			Acceptance: diagnostics.AcceptanceSummary(fit),
			Loo:        loo,
		})
	}

	if err := res.rank(); err != nil {
		return nil, err
	}
	if res.Figures, err = writeFigures(cfg, res, sp); err != nil {
		return nil, err
	}

	res.Elapsed = time.Since(start)
	logger.Infow("growth pipeline finished",
		logger.FieldRunID, res.RunID.String(),
		logger.FieldRows, res.N,
		"families", len(res.Families),
		"best", res.Best,
		logger.FieldDurationMS, res.Elapsed.Milliseconds())
	return res, nil
}

// rank orders nothing; it records which family predicts best and the paired
// LOO difference of the others against it.
func (res *Result) rank() error {
	if len(res.Families) == 0 {
		return errors.Wrap(errors.ErrBadModel, "no error families configured")
	}
	best := 0
	for i, ff := range res.Families {
		if ff.Loo.Elpd > res.Families[best].Loo.Elpd {
			best = i
		}
	}
	res.Best = res.Families[best].Family

	for i, ff := range res.Families {
		if i == best {
			continue
		}
		cmp, err := diagnostics.CompareLoo(res.Families[best].Loo, ff.Loo)
		if err != nil {
			return err
		}
		res.Comparisons = append(res.Comparisons, cmp)
	}
	return nil
}

// Family returns the fit bundle for one family name, or nil.
func (res *Result) Family(name string) *FamilyFit {
	for i := range res.Families {
		if res.Families[i].Family == name {
			return &res.Families[i]
		}
	}
	return nil
}
