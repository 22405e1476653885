package mcmc

import (
	"time"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/mat"

	"github.com/anhnguyendepocen/bayes-course/errors"
)

// Fit is the outcome of a sampling run: post-warmup draws in natural space,
// one matrix per chain, one row per draw, one column per parameter.
//
// A Fit is immutable once built; accessors hand out copies. Draws live in
// memory only and are never written to disk.
type Fit struct {
	// RunID identifies this run in logs and report manifests.
	RunID uuid.UUID
	// Model is the name of the fitted model.
	Model string
	// ParamNames gives the column order of the draw matrices.
	ParamNames []string
	// Acceptance holds the post-warmup acceptance rate per chain.
	Acceptance []float64
	// Elapsed is the wall time of the whole run.
	Elapsed time.Duration
	// Config is the configuration the run used.
	Config Config

	chains []*mat.Dense
}

// NewFit assembles a Fit from per-chain draw matrices. Chains must share
// dimensions, with one column per parameter name. The matrices are owned by
// the Fit afterwards and must not be mutated by the caller.
func NewFit(model string, paramNames []string, chains []*mat.Dense, acceptance []float64, elapsed time.Duration, cfg Config) (*Fit, error) {
	if len(chains) == 0 {
		return nil, errors.New("fit requires at least one chain")
	}
	if len(acceptance) != len(chains) {
		return nil, errors.Newf("got %d acceptance rates for %d chains", len(acceptance), len(chains))
	}
	r0, c0 := chains[0].Dims()
	if r0 == 0 {
		return nil, errors.New("chains hold no draws")
	}
	if c0 != len(paramNames) {
		return nil, errors.Newf("chains have %d columns for %d parameter names", c0, len(paramNames))
	}
	for i, ch := range chains[1:] {
		r, c := ch.Dims()
		if r != r0 || c != c0 {
			return nil, errors.Newf("chain %d is %dx%d, want %dx%d", i+1, r, c, r0, c0)
		}
	}
	return &Fit{
		RunID:      uuid.New(),
		Model:      model,
		ParamNames: paramNames,
		Acceptance: acceptance,
		Elapsed:    elapsed,
		Config:     cfg,
		chains:     chains,
	}, nil
}

// NumChains returns the number of chains.
func (f *Fit) NumChains() int { return len(f.chains) }

// NumParams returns the number of parameters.
func (f *Fit) NumParams() int { return len(f.ParamNames) }

// DrawsPerChain returns the post-warmup draw count of a single chain.
func (f *Fit) DrawsPerChain() int {
	r, _ := f.chains[0].Dims()
	return r
}

// NumDraws returns the pooled draw count across all chains.
func (f *Fit) NumDraws() int { return f.DrawsPerChain() * len(f.chains) }

// ParamIndex returns the column holding the named parameter, or -1.
func (f *Fit) ParamIndex(name string) int {
	for i, n := range f.ParamNames {
		if n == name {
			return i
		}
	}
	return -1
}

// Chain returns a copy of chain c's draw matrix. It panics if c is out of
// range.
func (f *Fit) Chain(c int) *mat.Dense {
	var out mat.Dense
	out.CloneFrom(f.chains[c])
	return &out
}

// Pooled returns the chains stacked into a single matrix, chain-major: all
// of chain 0's draws, then chain 1's, and so on.
func (f *Fit) Pooled() *mat.Dense {
	r, c := f.chains[0].Dims()
	out := mat.NewDense(r*len(f.chains), c, nil)
	for i, ch := range f.chains {
		out.Slice(i*r, (i+1)*r, 0, c).(*mat.Dense).Copy(ch)
	}
	return out
}

// Column returns the pooled draws of one parameter, chain-major.
func (f *Fit) Column(name string) ([]float64, error) {
	j := f.ParamIndex(name)
	if j < 0 {
		return nil, errors.Newf("unknown parameter %q", name)
	}
	out := make([]float64, 0, f.NumDraws())
	for _, ch := range f.chains {
		out = append(out, mat.Col(nil, j, ch)...)
	}
	return out, nil
}

// ChainColumn returns one chain's draws of one parameter. It panics if c is
// out of range.
func (f *Fit) ChainColumn(c int, name string) ([]float64, error) {
	j := f.ParamIndex(name)
	if j < 0 {
		return nil, errors.Newf("unknown parameter %q", name)
	}
	return mat.Col(nil, j, f.chains[c]), nil
}
