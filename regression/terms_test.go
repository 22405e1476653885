package regression

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/anhnguyendepocen/bayes-course/dataset"
	"github.com/anhnguyendepocen/bayes-course/errors"
)

func termsFrame(t *testing.T) *dataset.Frame {
	t.Helper()
	f, err := dataset.New(
		dataset.FloatCol("x", []float64{1, 2, 3}),
		dataset.FloatCol("z", []float64{10, 20, 30}),
	)
	require.NoError(t, err)
	return f
}

func TestTerms_Matrix(t *testing.T) {
	tm := NewTerms().Intercept().Linear("x").Quadratic("x").Interaction("x", "z")

	x, err := tm.Matrix(termsFrame(t))
	require.NoError(t, err)

	want := mat.NewDense(3, 4, []float64{
		1, 1, 1, 10,
		1, 2, 4, 40,
		1, 3, 9, 90,
	})
	assert.True(t, mat.EqualApprox(want, x, 1e-12), mat.Formatted(x))
}

func TestTerms_NamesAndFormula(t *testing.T) {
	tm := NewTerms().Intercept().Linear("x").Quadratic("x").Interaction("x", "z")

	assert.Equal(t, []string{"1", "x", "x^2", "x:z"}, tm.Names())
	assert.Equal(t, "y ~ 1 + x + x^2 + x:z", tm.Formula("y"))
	assert.Equal(t, 4, tm.Len())
}

func TestTerms_Empty(t *testing.T) {
	_, err := NewTerms().Matrix(termsFrame(t))
	assert.ErrorIs(t, err, errors.ErrBadModel)
}

func TestTerms_NoRows(t *testing.T) {
	f, err := dataset.New(dataset.FloatCol("x", nil))
	require.NoError(t, err)

	_, err = NewTerms().Intercept().Linear("x").Matrix(f)
	assert.ErrorIs(t, err, errors.ErrEmptyData)
}

func TestTerms_MissingColumn(t *testing.T) {
	_, err := NewTerms().Linear("absent").Matrix(termsFrame(t))
	assert.ErrorIs(t, err, errors.ErrColumnNotFound)
}
