package mcmc

import (
	"context"
	"fmt"
	"math"
	"time"

	"golang.org/x/exp/rand"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/samplemv"

	"github.com/anhnguyendepocen/bayes-course/errors"
	"github.com/anhnguyendepocen/bayes-course/logger"
)

// Adaptation schedule. Warmup is cut into equal windows; each window runs
// the kernel with a frozen proposal, then rescales it toward TargetAccept.
// From the second half of warmup the proposal covariance is re-estimated
// from the draws collected so far, shrunk toward its diagonal while the
// sample is small.
const (
	numAdaptWindows = 10
	adaptGain       = 1.0
	covMinDraws     = 25
	covShrinkWeight = 5.0
	minProposalVar  = 1e-8
	maxInitAttempts = 50

	// rwmScale/sqrt(d) is the classic random-walk proposal scaling for a
	// d-dimensional target.
	rwmScale = 2.38
)

// Option adjusts how Sample runs.
type Option func(*sampler)

// WithEmitter routes progress events to e instead of discarding them.
func WithEmitter(e ProgressEmitter) Option {
	return func(s *sampler) { s.emitter = e }
}

// WithMAPInit toggles the mode search that seeds the chains. On by default;
// disabled, chains start from a coarse prior-based guess.
func WithMAPInit(enabled bool) Option {
	return func(s *sampler) { s.mapInit = enabled }
}

type sampler struct {
	emitter ProgressEmitter
	mapInit bool
}

// Sample fits m by adaptive random-walk Metropolis and returns the
// post-warmup draws. Chains run in parallel; chain c takes all of its
// randomness from a source seeded cfg.Seed+c, so a run is reproducible for
// a fixed configuration regardless of goroutine scheduling. Cancelling ctx
// aborts the run between adaptation windows.
func Sample(ctx context.Context, m Model, cfg Config, opts ...Option) (*Fit, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid sampler configuration")
	}
	params := m.Params()
	names, err := paramNames(params)
	if err != nil {
		return nil, err
	}

	s := sampler{emitter: NopEmitter{}, mapInit: true}
	for _, opt := range opts {
		opt(&s)
	}
	if t, ok := s.emitter.(TotalTracker); ok {
		t.SetTotal(cfg.Chains * (cfg.Warmup + cfg.Iter))
	}

	start := time.Now()
	logger.Debugw("sampler starting",
		logger.FieldModel, m.Name(),
		logger.FieldChains, cfg.Chains,
		logger.FieldDraws, cfg.Iter,
		logger.FieldWarmup, cfg.Warmup,
	)

	s.emitter.EmitStage("init", fmt.Sprintf("%s: locating starting values", m.Name()))
	zInit := priorGuess(params)
	if s.mapInit {
		zInit = mapEstimate(m, params, zInit)
	}

	s.emitter.EmitStage("sample", fmt.Sprintf("%s: %d chains x (%d warmup + %d draws)",
		m.Name(), cfg.Chains, cfg.Warmup, cfg.Iter))

	g, gctx := errgroup.WithContext(ctx)
	draws := make([]*mat.Dense, cfg.Chains)
	acceptance := make([]float64, cfg.Chains)
	for c := 0; c < cfg.Chains; c++ {
		g.Go(func() error {
			res, err := runChain(gctx, m, params, cfg, zInit, c, s.emitter)
			if err != nil {
				return errors.Wrapf(err, "chain %d", c)
			}
			draws[c] = res.draws
			acceptance[c] = res.acceptance
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	elapsed := time.Since(start)
	fit, err := NewFit(m.Name(), names, draws, acceptance, elapsed, cfg)
	if err != nil {
		return nil, err
	}

	meanAcc := stat.Mean(acceptance, nil)
	if meanAcc < cfg.TargetAccept/3 || meanAcc > 0.9 {
		msg := fmt.Sprintf("mean acceptance %.2f far from target %.2f; treat draws with suspicion",
			meanAcc, cfg.TargetAccept)
		s.emitter.EmitWarning(msg)
		logger.Warnw("acceptance far from target",
			logger.FieldModel, m.Name(),
			logger.FieldAcceptance, meanAcc,
		)
	}

	s.emitter.EmitComplete(map[string]interface{}{
		"model":      m.Name(),
		"draws":      fit.NumDraws(),
		"acceptance": fmt.Sprintf("%.2f", meanAcc),
		"elapsed":    elapsed.Round(time.Millisecond).String(),
	})
	logger.Infow("sampling finished",
		logger.FieldModel, m.Name(),
		logger.FieldRunID, fit.RunID.String(),
		logger.FieldAcceptance, meanAcc,
		logger.FieldDurationMS, elapsed.Milliseconds(),
	)
	return fit, nil
}

func paramNames(params []Param) ([]string, error) {
	if len(params) == 0 {
		return nil, errors.Wrap(errors.ErrBadModel, "model declares no parameters")
	}
	names := make([]string, len(params))
	seen := make(map[string]bool, len(params))
	for i, p := range params {
		if p.Name == "" {
			return nil, errors.Wrapf(errors.ErrBadModel, "parameter %d has no name", i)
		}
		if seen[p.Name] {
			return nil, errors.Wrapf(errors.ErrBadModel, "duplicate parameter %q", p.Name)
		}
		if p.Prior == nil {
			return nil, errors.Wrapf(errors.ErrBadModel, "parameter %q has no prior", p.Name)
		}
		seen[p.Name] = true
		names[i] = p.Name
	}
	return names, nil
}

// posterior adapts a Model to the unconstrained log-density the kernel
// expects: prior plus likelihood plus transform Jacobians. Each chain owns
// its own instance so the scratch buffer keeps LogProb allocation-free.
type posterior struct {
	m      Model
	params []Param
	theta  []float64
}

func newPosterior(m Model, params []Param) *posterior {
	return &posterior{m: m, params: params, theta: make([]float64, len(params))}
}

// LogProb evaluates the unconstrained log-posterior at z. Non-finite
// intermediate values collapse to -Inf so the kernel rejects the point.
func (p *posterior) LogProb(z []float64) float64 {
	lp := 0.0
	for i, prm := range p.params {
		x := prm.Support.Constrain(z[i])
		p.theta[i] = x
		lp += prm.Prior.LogProb(x) + prm.Support.LogJacobian(z[i])
	}
	if math.IsNaN(lp) || math.IsInf(lp, -1) {
		return math.Inf(-1)
	}
	lp += p.m.LogLik(p.theta)
	if math.IsNaN(lp) || math.IsInf(lp, 1) {
		return math.Inf(-1)
	}
	return lp
}

// priorGuess picks a starting point coordinate by coordinate: the candidate
// with the highest prior density (Jacobian included) on a coarse
// unconstrained grid.
func priorGuess(params []Param) []float64 {
	candidates := []float64{-2, -1, -0.5, 0, 0.5, 1, 2}
	z := make([]float64, len(params))
	for i, p := range params {
		best, bestLP := 0.0, math.Inf(-1)
		for _, c := range candidates {
			lp := p.Prior.LogProb(p.Support.Constrain(c)) + p.Support.LogJacobian(c)
			if lp > bestLP {
				best, bestLP = c, lp
			}
		}
		z[i] = best
	}
	return z
}

// mapEstimate refines the starting point by Nelder-Mead on the negative
// unconstrained log-posterior. Failures fall back to the prior-based guess;
// the sampler only needs a reasonable region, not a converged mode.
func mapEstimate(m Model, params []Param, z0 []float64) []float64 {
	post := newPosterior(m, params)
	if lp := post.LogProb(z0); math.IsInf(lp, -1) {
		return z0
	}
	problem := optimize.Problem{
		Func: func(z []float64) float64 { return -post.LogProb(z) },
	}
	result, err := optimize.Minimize(problem, z0, nil, &optimize.NelderMead{})
	if err != nil || result == nil || !isFiniteAll(result.X) || math.IsNaN(result.F) || math.IsInf(result.F, 0) {
		return z0
	}
	return result.X
}

type chainResult struct {
	draws      *mat.Dense // Iter x d, natural space
	acceptance float64
}

func runChain(ctx context.Context, m Model, params []Param, cfg Config, zInit []float64, chain int, emitter ProgressEmitter) (*chainResult, error) {
	d := len(params)
	src := rand.NewSource(cfg.Seed + uint64(chain))
	rng := rand.New(src)
	post := newPosterior(m, params)

	// Disperse this chain's start around the shared initial point, re-drawing
	// until the log-posterior there is finite.
	z := make([]float64, d)
	found := false
	for attempt := 0; attempt < maxInitAttempts; attempt++ {
		for i := range z {
			z[i] = zInit[i] + cfg.Jitter*rng.NormFloat64()
		}
		if lp := post.LogProb(z); !math.IsInf(lp, -1) {
			found = true
			break
		}
	}
	if !found {
		return nil, errors.Wrapf(errors.ErrNotFinite,
			"no finite log-posterior after %d jittered starts", maxInitAttempts)
	}

	scale := rwmScale / math.Sqrt(float64(d))
	cov := identitySym(d)

	// Warmup.
	warmupWindow := cfg.Warmup / numAdaptWindows
	if warmupWindow < 1 {
		warmupWindow = 1
	}
	var adaptRows []float64
	done := 0
	for done < cfg.Warmup {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		n := warmupWindow
		if cfg.Warmup-done < n {
			n = cfg.Warmup - done
		}
		prop, ok := buildProposal(d, scale, cov, src)
		if !ok {
			cov = identitySym(d)
			prop, _ = buildProposal(d, scale, cov, src)
		}
		batch := mat.NewDense(n, d, nil)
		samplemv.MetropolisHastingser{
			Initial:  z,
			Target:   post,
			Proposal: prop,
			Src:      src,
		}.Sample(batch)
		acc := float64(countAccepted(batch, z)) / float64(n)
		z = append(z[:0], batch.RawRowView(n-1)...)
		scale *= math.Exp(adaptGain * (acc - cfg.TargetAccept))
		done += n

		if done > cfg.Warmup/2 {
			adaptRows = append(adaptRows, batch.RawMatrix().Data[:n*d]...)
			if len(adaptRows)/d >= covMinDraws {
				cov = estimateCov(d, adaptRows)
				// The estimate already carries the target's size; restart
				// the scalar from the classic value and let the remaining
				// windows fine-tune it.
				scale = rwmScale / math.Sqrt(float64(d))
			}
		}
		emitter.EmitChainProgress(chain, "warmup", done, cfg.Warmup)
	}

	// Sampling, frozen proposal. Slabbed so cancellation and progress stay
	// responsive.
	prop, ok := buildProposal(d, scale, cov, src)
	if !ok {
		cov = identitySym(d)
		prop, _ = buildProposal(d, scale, cov, src)
	}
	sampleSlab := cfg.Iter / numAdaptWindows
	if sampleSlab < 1 {
		sampleSlab = 1
	}
	drawsU := mat.NewDense(cfg.Iter, d, nil)
	accepted := 0
	done = 0
	for done < cfg.Iter {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		n := sampleSlab
		if cfg.Iter-done < n {
			n = cfg.Iter - done
		}
		slab := drawsU.Slice(done, done+n, 0, d).(*mat.Dense)
		samplemv.MetropolisHastingser{
			Initial:  z,
			Target:   post,
			Proposal: prop,
			Src:      src,
		}.Sample(slab)
		accepted += countAccepted(slab, z)
		z = append(z[:0], slab.RawRowView(n-1)...)
		done += n
		emitter.EmitChainProgress(chain, "sample", done, cfg.Iter)
	}

	// Back to natural space.
	theta := mat.NewDense(cfg.Iter, d, nil)
	for i := 0; i < cfg.Iter; i++ {
		constrainInto(params, drawsU.RawRowView(i), theta.RawRowView(i))
	}
	return &chainResult{
		draws:      theta,
		acceptance: float64(accepted) / float64(cfg.Iter),
	}, nil
}

// countAccepted counts rows that differ from their predecessor; with a
// continuous proposal a rejected step repeats the previous point exactly.
func countAccepted(batch *mat.Dense, initial []float64) int {
	rows, _ := batch.Dims()
	count := 0
	prev := initial
	for i := 0; i < rows; i++ {
		row := batch.RawRowView(i)
		if !floats.Equal(row, prev) {
			count++
		}
		prev = row
	}
	return count
}

// buildProposal assembles the multivariate-normal proposal with covariance
// scale^2 * cov. ok is false when the matrix is not positive definite.
func buildProposal(d int, scale float64, cov *mat.SymDense, src rand.Source) (*samplemv.ProposalNormal, bool) {
	sigma := mat.NewSymDense(d, nil)
	for i := 0; i < d; i++ {
		for j := i; j < d; j++ {
			sigma.SetSym(i, j, scale*scale*cov.At(i, j))
		}
	}
	return samplemv.NewProposalNormal(sigma, src)
}

// estimateCov builds a covariance estimate from flattened draw rows,
// shrinking off-diagonals while the sample is small and flooring the
// diagonal so the proposal stays positive definite.
func estimateCov(d int, rows []float64) *mat.SymDense {
	n := len(rows) / d
	x := mat.NewDense(n, d, rows[:n*d])
	cov := mat.NewSymDense(d, nil)
	stat.CovarianceMatrix(cov, x, nil)
	w := float64(n) / (float64(n) + covShrinkWeight)
	for i := 0; i < d; i++ {
		for j := i; j < d; j++ {
			v := cov.At(i, j)
			if i == j {
				if v < minProposalVar {
					v = minProposalVar
				}
			} else {
				v *= w
			}
			cov.SetSym(i, j, v)
		}
	}
	return cov
}

func identitySym(d int) *mat.SymDense {
	s := mat.NewSymDense(d, nil)
	for i := 0; i < d; i++ {
		s.SetSym(i, i, 1)
	}
	return s
}

func isFiniteAll(xs []float64) bool {
	for _, x := range xs {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return false
		}
	}
	return true
}
