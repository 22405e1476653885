// Package mcmc fits Bayesian models by adaptive random-walk Metropolis
// sampling built on gonum's samplemv kernel.
//
// A Model declares named parameters, each with a constrained Support and a
// Prior over natural space, plus a log-likelihood. Sample walks the
// unconstrained image of the parameter space with a multivariate-normal
// proposal, adapting the proposal scale and covariance during warmup, and
// returns a Fit holding post-warmup draws per chain, transformed back to
// natural space.
package mcmc

import (
	"golang.org/x/exp/rand"
)

// Prior is the log prior density of a single parameter in natural space.
// gonum's distuv distributions satisfy it directly.
type Prior interface {
	LogProb(x float64) float64
}

// PriorFunc adapts a plain function to Prior.
type PriorFunc func(x float64) float64

// LogProb implements Prior.
func (f PriorFunc) LogProb(x float64) float64 { return f(x) }

// Param is one model parameter: its name, the constrained domain the model
// sees, and the prior over that domain.
type Param struct {
	Name    string
	Support Support
	Prior   Prior
}

// Model is a Bayesian model the sampler can fit.
//
// LogLik receives parameter values in natural space, ordered as Params
// returns them. It may return -Inf for impossible values; the kernel treats
// such proposals as rejected. It must never panic on finite input and must
// be safe for concurrent calls, since every chain evaluates it.
type Model interface {
	Name() string
	Params() []Param
	LogLik(theta []float64) float64
}

// PointwiseModel is implemented by models that can split their likelihood
// into one term per observation, which the information criteria need.
type PointwiseModel interface {
	Model

	// PointwiseLogLik returns one log-likelihood term per observation,
	// in data order.
	PointwiseLogLik(theta []float64) []float64
}

// GenerativeModel is implemented by models that can simulate a replicated
// response vector from a parameter draw, used for posterior-predictive
// checks.
type GenerativeModel interface {
	Model

	// Simulate draws one replicated response per observation.
	Simulate(theta []float64, rng *rand.Rand) []float64
}
