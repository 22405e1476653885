// Package regression fits Bayesian linear models to the mesocosm experiment:
// a quadratic pH response with a nutrient effect, and a second variant adding
// the pH-by-nutrient interaction. The two are compared by posterior
// probabilities of their coefficients and by LOOIC.
package regression

import (
	"strings"

	"gonum.org/v1/gonum/mat"

	"github.com/anhnguyendepocen/bayes-course/dataset"
	"github.com/anhnguyendepocen/bayes-course/errors"
)

type termKind int

const (
	termIntercept termKind = iota
	termLinear
	termQuadratic
	termInteraction
)

type term struct {
	kind termKind
	a, b string
}

// Terms builds design matrices from frame columns: the model formula,
// assembled term by term.
type Terms struct {
	terms []term
}

// NewTerms starts an empty formula.
func NewTerms() *Terms { return &Terms{} }

// Intercept appends a constant column.
func (t *Terms) Intercept() *Terms {
	t.terms = append(t.terms, term{kind: termIntercept})
	return t
}

// Linear appends col as-is.
func (t *Terms) Linear(col string) *Terms {
	t.terms = append(t.terms, term{kind: termLinear, a: col})
	return t
}

// Quadratic appends col squared.
func (t *Terms) Quadratic(col string) *Terms {
	t.terms = append(t.terms, term{kind: termQuadratic, a: col})
	return t
}

// Interaction appends the elementwise product of two columns.
func (t *Terms) Interaction(a, b string) *Terms {
	t.terms = append(t.terms, term{kind: termInteraction, a: a, b: b})
	return t
}

// Len returns the number of design columns.
func (t *Terms) Len() int { return len(t.terms) }

// Names returns one label per design column.
func (t *Terms) Names() []string {
	names := make([]string, len(t.terms))
	for i, tm := range t.terms {
		switch tm.kind {
		case termIntercept:
			names[i] = "1"
		case termLinear:
			names[i] = tm.a
		case termQuadratic:
			names[i] = tm.a + "^2"
		case termInteraction:
			names[i] = tm.a + ":" + tm.b
		}
	}
	return names
}

// Formula renders the model formula for reports.
func (t *Terms) Formula(response string) string {
	return response + " ~ " + strings.Join(t.Names(), " + ")
}

// Matrix evaluates the terms over a frame, one row per observation and one
// column per term.
func (t *Terms) Matrix(f *dataset.Frame) (*mat.Dense, error) {
	if len(t.terms) == 0 {
		return nil, errors.Wrap(errors.ErrBadModel, "formula has no terms")
	}
	n := f.Len()
	if n == 0 {
		return nil, errors.Wrap(errors.ErrEmptyData, "cannot build a design matrix")
	}

	x := mat.NewDense(n, len(t.terms), nil)
	for j, tm := range t.terms {
		switch tm.kind {
		case termIntercept:
			for i := 0; i < n; i++ {
				x.Set(i, j, 1)
			}
		case termLinear:
			xs, err := f.Floats(tm.a)
			if err != nil {
				return nil, err
			}
			x.SetCol(j, xs)
		case termQuadratic:
			xs, err := f.Floats(tm.a)
			if err != nil {
				return nil, err
			}
			for i, v := range xs {
				x.Set(i, j, v*v)
			}
		case termInteraction:
			xa, err := f.Floats(tm.a)
			if err != nil {
				return nil, err
			}
			xb, err := f.Floats(tm.b)
			if err != nil {
				return nil, err
			}
			for i := range xa {
				x.Set(i, j, xa[i]*xb[i])
			}
		}
	}
	return x, nil
}
