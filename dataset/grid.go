package dataset

import (
	"gonum.org/v1/gonum/floats"

	"github.com/anhnguyendepocen/bayes-course/errors"
)

// SeqGrid constructs a single-column prediction grid of n evenly spaced
// values spanning [from, to]. Grids exist only to request predictions; they
// are validated at construction and never persisted.
func SeqGrid(col string, from, to float64, n int) (*Frame, error) {
	if n < 2 {
		return nil, errors.Newf("grid for %q needs at least 2 points, got %d", col, n)
	}
	if to <= from {
		return nil, errors.Newf("grid for %q: to (%g) must exceed from (%g)", col, to, from)
	}
	values := make([]float64, n)
	floats.Span(values, from, to)
	return New(FloatCol(col, values))
}

// CrossGrid crosses an existing grid with discrete levels of another
// covariate. The result repeats the grid once per level, in level order, so
// a 50-point pH grid crossed with two nutrient levels yields 100 rows.
func CrossGrid(seq *Frame, levelCol string, levels []float64) (*Frame, error) {
	if len(levels) == 0 {
		return nil, errors.Newf("CrossGrid needs at least one level for %q", levelCol)
	}
	if seq.Has(levelCol) {
		return nil, errors.Newf("grid already has a column named %q", levelCol)
	}

	n := seq.Len()
	total := n * len(levels)

	cols := make([]*Series, 0, len(seq.cols)+1)
	for _, c := range seq.cols {
		if c.Kind != KindFloat {
			return nil, errors.NewColumnTypeError(c.Name, "float", c.Kind.String())
		}
		vals := make([]float64, 0, total)
		for range levels {
			vals = append(vals, c.floats...)
		}
		cols = append(cols, FloatCol(c.Name, vals))
	}

	levelVals := make([]float64, 0, total)
	for _, lv := range levels {
		for i := 0; i < n; i++ {
			levelVals = append(levelVals, lv)
		}
	}
	cols = append(cols, FloatCol(levelCol, levelVals))

	return New(cols...)
}
