package mcmc

import (
	"fmt"
	"math"
)

// Support is the constrained domain of a parameter. The kernel walks
// unconstrained space; Support defines the bijection between the two and the
// log-Jacobian the target density picks up under the change of variables.
type Support struct {
	kind  supportKind
	lower float64
}

type supportKind int

const (
	supportReal supportKind = iota
	supportPositive
	supportLowerBound
)

// Real is the unconstrained support, the identity transform.
func Real() Support { return Support{kind: supportReal} }

// Positive constrains a parameter to (0, inf) via exp.
func Positive() Support { return Support{kind: supportPositive} }

// LowerBound constrains a parameter to (l, inf) via a shifted exp.
func LowerBound(l float64) Support { return Support{kind: supportLowerBound, lower: l} }

// Constrain maps an unconstrained value z into natural space.
func (s Support) Constrain(z float64) float64 {
	switch s.kind {
	case supportPositive:
		return math.Exp(z)
	case supportLowerBound:
		return s.lower + math.Exp(z)
	default:
		return z
	}
}

// Unconstrain inverts Constrain on the interior of the support. Values on or
// outside the boundary map to -Inf or NaN, which the sampler rejects.
func (s Support) Unconstrain(x float64) float64 {
	switch s.kind {
	case supportPositive:
		return math.Log(x)
	case supportLowerBound:
		return math.Log(x - s.lower)
	default:
		return x
	}
}

// LogJacobian is log|dConstrain/dz| at z, added to the unconstrained target
// so priors stated in natural space stay correct.
func (s Support) LogJacobian(z float64) float64 {
	switch s.kind {
	case supportPositive, supportLowerBound:
		return z
	default:
		return 0
	}
}

// String names the support for labels and error messages.
func (s Support) String() string {
	switch s.kind {
	case supportPositive:
		return "positive"
	case supportLowerBound:
		return fmt.Sprintf("lower-bound(%g)", s.lower)
	default:
		return "real"
	}
}

// constrainInto fills theta with the natural-space image of z.
func constrainInto(params []Param, z, theta []float64) {
	for i, p := range params {
		theta[i] = p.Support.Constrain(z[i])
	}
}
