package dataset

import (
	"gonum.org/v1/gonum/stat"

	"github.com/anhnguyendepocen/bayes-course/errors"
)

// Scaling records the centering and scaling applied to one column, so that
// prediction grids can be placed on the same standardized scale and
// coefficients mapped back to natural units.
type Scaling struct {
	Mean float64
	SD   float64
}

// Apply standardizes a natural-scale value
func (s Scaling) Apply(x float64) float64 {
	return (x - s.Mean) / s.SD
}

// Invert maps a standardized value back to the natural scale
func (s Scaling) Invert(z float64) float64 {
	return z*s.SD + s.Mean
}

// Scale appends a "<col>_scaled" column centered to mean 0 and scaled to
// standard deviation 1, returning the Scaling used. Rescaling makes
// regression coefficients comparable and priors interpretable.
func (f *Frame) Scale(col string) (*Frame, Scaling, error) {
	xs, err := f.Floats(col)
	if err != nil {
		return nil, Scaling{}, err
	}
	if len(xs) < 2 {
		return nil, Scaling{}, errors.Wrapf(errors.ErrEmptyData, "cannot scale column %q with %d rows", col, len(xs))
	}

	mean, sd := stat.MeanStdDev(xs, nil)
	if sd == 0 {
		return nil, Scaling{}, errors.Newf("cannot scale column %q: zero variance", col)
	}

	sc := Scaling{Mean: mean, SD: sd}
	out := f.Mutate(col+"_scaled", func(r Row) float64 {
		return sc.Apply(r.Float(col))
	})
	return out, sc, nil
}
