package mcmc

import (
	"github.com/anhnguyendepocen/bayes-course/errors"
)

// Defaults used by DefaultConfig.
const (
	DefaultChains       = 4
	DefaultIter         = 1000
	DefaultWarmup       = 1000
	DefaultTargetAccept = 0.234
	DefaultJitter       = 0.5
)

// Config controls a sampling run.
type Config struct {
	// Chains is the number of independent chains, run in parallel.
	Chains int
	// Iter is the number of post-warmup draws kept per chain.
	Iter int
	// Warmup is the number of adaptation iterations discarded per chain.
	Warmup int
	// Seed hands chain c a random source seeded Seed+c.
	Seed uint64
	// TargetAccept is the acceptance rate adaptation steers toward.
	TargetAccept float64
	// Jitter scales the per-chain spread of initial values in
	// unconstrained space.
	Jitter float64
}

// DefaultConfig returns the standard four-chain configuration.
func DefaultConfig() Config {
	return Config{
		Chains:       DefaultChains,
		Iter:         DefaultIter,
		Warmup:       DefaultWarmup,
		Seed:         1,
		TargetAccept: DefaultTargetAccept,
		Jitter:       DefaultJitter,
	}
}

// Validate rejects configurations the sampler cannot run.
func (c Config) Validate() error {
	if c.Chains < 1 {
		return errors.Newf("chains must be at least 1, got %d", c.Chains)
	}
	if c.Iter < 1 {
		return errors.Newf("iterations must be at least 1, got %d", c.Iter)
	}
	if c.Warmup < 0 {
		return errors.Newf("warmup must not be negative, got %d", c.Warmup)
	}
	if c.TargetAccept <= 0 || c.TargetAccept >= 1 {
		return errors.Newf("target acceptance must be inside (0, 1), got %g", c.TargetAccept)
	}
	if c.Jitter < 0 {
		return errors.Newf("jitter must not be negative, got %g", c.Jitter)
	}
	return nil
}
