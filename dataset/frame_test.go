package dataset

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anhnguyendepocen/bayes-course/errors"
)

func specimenFrame(t *testing.T) *Frame {
	t.Helper()
	f, err := New(
		StringCol("specimen_id", []string{"S1", "S2", "S3", "S2", "S4"}),
		StringCol("species", []string{"Pacific cod", "Pacific cod", "Walleye pollock", "Pacific cod", "Pacific cod"}),
		StringCol("area", []string{"HS", "HS", "HS", "HS", "QCS"}),
		FloatCol("age", []float64{2, 5, 3, 5, 8}),
		FloatCol("length_cm", []float64{28.1, 55.3, 34.0, 55.3, 71.2}),
	)
	require.NoError(t, err)
	return f
}

func TestNew(t *testing.T) {
	f := specimenFrame(t)
	assert.Equal(t, 5, f.Len())
	assert.Equal(t, []string{"specimen_id", "species", "area", "age", "length_cm"}, f.Columns())
	assert.True(t, f.Has("age"))
	assert.False(t, f.Has("weight_kg"))
}

func TestNew_Invalid(t *testing.T) {
	_, err := New(
		FloatCol("age", []float64{1, 2}),
		FloatCol("age", []float64{3, 4}),
	)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate column")

	_, err = New(
		FloatCol("age", []float64{1, 2}),
		FloatCol("length_cm", []float64{3}),
	)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rows")
}

func TestAccessors(t *testing.T) {
	f := specimenFrame(t)

	ages, err := f.Floats("age")
	require.NoError(t, err)
	assert.Equal(t, []float64{2, 5, 3, 5, 8}, ages)

	species, err := f.Strings("species")
	require.NoError(t, err)
	assert.Equal(t, "Walleye pollock", species[2])

	// Returned slices are copies; mutating them must not corrupt the frame
	ages[0] = -99
	again, err := f.Floats("age")
	require.NoError(t, err)
	assert.Equal(t, float64(2), again[0])
}

func TestAccessors_Errors(t *testing.T) {
	f := specimenFrame(t)

	_, err := f.Floats("weight_kg")
	assert.True(t, errors.IsColumnNotFoundError(err))

	_, err = f.Floats("species")
	assert.True(t, errors.Is(err, errors.ErrColumnType))

	_, err = f.Strings("age")
	assert.True(t, errors.Is(err, errors.ErrColumnType))
}

func TestRowView(t *testing.T) {
	f := specimenFrame(t)

	var got []string
	f.Filter(func(r Row) bool {
		got = append(got, r.String("specimen_id"))
		return false
	})
	assert.Equal(t, []string{"S1", "S2", "S3", "S2", "S4"}, got)

	// Missing or mistyped columns yield sentinel values, not panics
	r := Row{f: f, i: 0}
	assert.True(t, math.IsNaN(r.Float("missing")))
	assert.True(t, math.IsNaN(r.Float("species")))
	assert.Equal(t, "", r.String("age"))
}

func TestFilter(t *testing.T) {
	f := specimenFrame(t)

	old := f.Filter(func(r Row) bool { return r.Float("age") >= 5 })
	assert.Equal(t, 3, old.Len())

	// Source frame is untouched
	assert.Equal(t, 5, f.Len())
}

func TestFilterEq(t *testing.T) {
	f := specimenFrame(t)

	cod, err := f.FilterEq("species", "Pacific cod")
	require.NoError(t, err)
	assert.Equal(t, 4, cod.Len())

	fives, err := f.FilterEq("age", 5.0)
	require.NoError(t, err)
	assert.Equal(t, 2, fives.Len())

	// int values are accepted for float columns
	fives2, err := f.FilterEq("age", 5)
	require.NoError(t, err)
	assert.Equal(t, 2, fives2.Len())

	_, err = f.FilterEq("species", 5.0)
	assert.True(t, errors.Is(err, errors.ErrColumnType))

	_, err = f.FilterEq("nope", "x")
	assert.True(t, errors.IsColumnNotFoundError(err))
}

func TestDistinctBy(t *testing.T) {
	f := specimenFrame(t)

	deduped, dropped, err := f.DistinctBy("specimen_id")
	require.NoError(t, err)
	assert.Equal(t, 4, deduped.Len())
	assert.Equal(t, 1, dropped)

	// First occurrence wins
	ids, err := deduped.Strings("specimen_id")
	require.NoError(t, err)
	assert.Equal(t, []string{"S1", "S2", "S3", "S4"}, ids)

	lengths, err := deduped.Floats("length_cm")
	require.NoError(t, err)
	assert.Equal(t, 55.3, lengths[1])
}

func TestAssertUnique(t *testing.T) {
	f := specimenFrame(t)

	err := f.AssertUnique("specimen_id")
	require.Error(t, err)
	assert.True(t, errors.IsDuplicateUnitsError(err))
	assert.Contains(t, err.Error(), "1 repeated")

	deduped, _, err := f.DistinctBy("specimen_id")
	require.NoError(t, err)
	assert.NoError(t, deduped.AssertUnique("specimen_id"))
}

func TestAssertNonEmpty(t *testing.T) {
	f := specimenFrame(t)
	assert.NoError(t, f.AssertNonEmpty())

	empty := f.Filter(func(Row) bool { return false })
	err := empty.AssertNonEmpty()
	assert.True(t, errors.Is(err, errors.ErrEmptyData))

	// Operations on a zero-row frame still succeed
	_, dropped, err := empty.DistinctBy("specimen_id")
	require.NoError(t, err)
	assert.Equal(t, 0, dropped)
}

func TestMutate(t *testing.T) {
	f := specimenFrame(t)

	withLog := f.Mutate("log_length", func(r Row) float64 {
		return math.Log(r.Float("length_cm"))
	})
	vals, err := withLog.Floats("log_length")
	require.NoError(t, err)
	assert.InDelta(t, math.Log(28.1), vals[0], 1e-12)

	// Original frame does not gain the column
	assert.False(t, f.Has("log_length"))

	// Mutating an existing name replaces it
	doubled := withLog.Mutate("log_length", func(r Row) float64 {
		return 2 * r.Float("log_length")
	})
	vals2, err := doubled.Floats("log_length")
	require.NoError(t, err)
	assert.InDelta(t, 2*math.Log(28.1), vals2[0], 1e-12)
	assert.Equal(t, len(withLog.Columns()), len(doubled.Columns()))
}

func TestHead(t *testing.T) {
	f := specimenFrame(t)

	head := f.Head(2)
	assert.Equal(t, 2, head.Len())

	all := f.Head(100)
	assert.Equal(t, 5, all.Len())
}
