package regression

import (
	"fmt"
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/anhnguyendepocen/bayes-course/dataset"
	"github.com/anhnguyendepocen/bayes-course/errors"
	"github.com/anhnguyendepocen/bayes-course/mcmc"
)

// Model is a Gaussian linear regression on a fixed design matrix.
// Coefficients are named b0..b(p-1) in design-column order, followed by the
// residual scale sigma.
type Model struct {
	name   string
	design *mat.Dense
	y      []float64
	params []mcmc.Param
	terms  *Terms
}

// NewLinearModel evaluates the formula over the frame and pairs it with the
// response column. Coefficient priors are weakly informative normals; the
// residual scale gets a Gamma prior on the positive line.
func NewLinearModel(name string, t *Terms, frame *dataset.Frame, response string) (*Model, error) {
	y, err := frame.Floats(response)
	if err != nil {
		return nil, err
	}
	for i, v := range y {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, errors.Wrapf(errors.ErrNotFinite, "response %q row %d", response, i)
		}
	}
	design, err := t.Matrix(frame)
	if err != nil {
		return nil, err
	}

	p := t.Len()
	params := make([]mcmc.Param, 0, p+1)
	for j := 0; j < p; j++ {
		prior := distuv.Normal{Mu: 0, Sigma: 10}
		if t.terms[j].kind == termIntercept {
			// The intercept absorbs the response level, so it gets more room.
			prior = distuv.Normal{Mu: 0, Sigma: 20}
		}
		params = append(params, mcmc.Param{
			Name:    fmt.Sprintf("b%d", j),
			Support: mcmc.Real(),
			Prior:   prior,
		})
	}
	params = append(params, mcmc.Param{
		Name: "sigma", Support: mcmc.Positive(), Prior: distuv.Gamma{Alpha: 2, Beta: 0.5},
	})

	return &Model{
		name:   name,
		design: design,
		y:      y,
		params: params,
		terms:  t,
	}, nil
}

// Name implements mcmc.Model.
func (m *Model) Name() string { return m.name }

// Terms returns the formula the design matrix was built from.
func (m *Model) Terms() *Terms { return m.terms }

// NumObs returns the number of observations.
func (m *Model) NumObs() int { return len(m.y) }

// NumCoef returns the number of regression coefficients (excluding sigma).
func (m *Model) NumCoef() int { return m.terms.Len() }

// Params implements mcmc.Model.
func (m *Model) Params() []mcmc.Param { return m.params }

// LogLik implements mcmc.Model.
func (m *Model) LogLik(theta []float64) float64 {
	p := m.terms.Len()
	sigma := theta[p]
	sum := 0.0
	for i := range m.y {
		mu := floats.Dot(m.design.RawRowView(i), theta[:p])
		sum += distuv.Normal{Mu: mu, Sigma: sigma}.LogProb(m.y[i])
	}
	return sum
}

// PointwiseLogLik implements mcmc.PointwiseModel.
func (m *Model) PointwiseLogLik(theta []float64) []float64 {
	p := m.terms.Len()
	sigma := theta[p]
	out := make([]float64, len(m.y))
	for i := range m.y {
		mu := floats.Dot(m.design.RawRowView(i), theta[:p])
		out[i] = distuv.Normal{Mu: mu, Sigma: sigma}.LogProb(m.y[i])
	}
	return out
}

// Simulate implements mcmc.GenerativeModel: one replicate response per tank.
func (m *Model) Simulate(theta []float64, rng *rand.Rand) []float64 {
	p := m.terms.Len()
	sigma := theta[p]
	out := make([]float64, len(m.y))
	for i := range out {
		mu := floats.Dot(m.design.RawRowView(i), theta[:p])
		out[i] = mu + sigma*rng.NormFloat64()
	}
	return out
}

// Fitted returns the linear predictor for one draw over the model's own
// design matrix.
func (m *Model) Fitted(theta []float64) []float64 {
	p := m.terms.Len()
	out := make([]float64, len(m.y))
	for i := range out {
		out[i] = floats.Dot(m.design.RawRowView(i), theta[:p])
	}
	return out
}

// PredictRows returns the linear predictor for one draw over an external
// design matrix built with the same formula.
func (m *Model) PredictRows(x *mat.Dense, theta []float64) []float64 {
	p := m.terms.Len()
	r, _ := x.Dims()
	out := make([]float64, r)
	for i := 0; i < r; i++ {
		out[i] = floats.Dot(x.RawRowView(i), theta[:p])
	}
	return out
}

// Response returns the observed response values.
func (m *Model) Response() []float64 {
	return append([]float64(nil), m.y...)
}
