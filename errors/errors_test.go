package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	err := New("test error")
	require.NotNil(t, err)
	assert.Equal(t, "test error", err.Error())
}

func TestNewf(t *testing.T) {
	err := Newf("error: %s %d", "test", 42)
	require.NotNil(t, err)
	assert.Equal(t, "error: test 42", err.Error())
}

func TestWrap(t *testing.T) {
	original := New("original")
	wrapped := Wrap(original, "wrapped")

	assert.Contains(t, wrapped.Error(), "wrapped")
	assert.Contains(t, wrapped.Error(), "original")
	assert.True(t, Is(wrapped, original))
}

func TestWrapf(t *testing.T) {
	original := New("original")
	wrapped := Wrapf(original, "wrapped: %d", 42)

	assert.Contains(t, wrapped.Error(), "wrapped: 42")
	assert.Contains(t, wrapped.Error(), "original")
}

func TestIs(t *testing.T) {
	err1 := New("error 1")
	err2 := New("error 2")
	wrapped := Wrap(err1, "wrapped")

	assert.True(t, Is(wrapped, err1))
	assert.False(t, Is(wrapped, err2))
	assert.False(t, Is(nil, err1))
}

type customError struct {
	msg string
}

func (e *customError) Error() string {
	return e.msg
}

func TestAs(t *testing.T) {
	original := &customError{msg: "custom"}
	wrapped := Wrap(original, "wrapped")

	var target *customError
	require.True(t, As(wrapped, &target))
	assert.Equal(t, "custom", target.msg)
}

func TestWithHint(t *testing.T) {
	err := New("error")
	withHint := WithHint(err, "try this fix")

	hints := GetAllHints(withHint)
	require.Len(t, hints, 1)
	assert.Equal(t, "try this fix", hints[0])
}

func TestSentinels(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		sentinel error
	}{
		{"column not found", NewColumnNotFoundError("age"), ErrColumnNotFound},
		{"column type", NewColumnTypeError("species", "float", "string"), ErrColumnType},
		{"empty data", Wrap(ErrEmptyData, "after filtering"), ErrEmptyData},
		{"duplicate units", Wrapf(ErrDuplicateUnits, "column %q", "specimen_id"), ErrDuplicateUnits},
		{"bad model", Wrap(ErrBadModel, "no parameters"), ErrBadModel},
		{"not finite", Wrap(ErrNotFinite, "at initial point"), ErrNotFinite},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, Is(tt.err, tt.sentinel))
		})
	}
}

func TestSentinelsAreDistinct(t *testing.T) {
	assert.False(t, Is(ErrColumnNotFound, ErrColumnType))
	assert.False(t, Is(ErrEmptyData, ErrDuplicateUnits))
	assert.False(t, Is(ErrBadModel, ErrNotFinite))
}

func TestIsColumnNotFoundError(t *testing.T) {
	err := NewColumnNotFoundError("length_cm")

	assert.True(t, IsColumnNotFoundError(err))
	assert.True(t, IsColumnNotFoundError(Wrap(err, "loading growth data")))
	assert.False(t, IsColumnNotFoundError(New("unrelated")))
	assert.False(t, IsColumnNotFoundError(nil))
}

func TestIsDuplicateUnitsError(t *testing.T) {
	err := Wrapf(ErrDuplicateUnits, "column %q: 3 repeated values", "tank")

	assert.True(t, IsDuplicateUnitsError(err))
	assert.False(t, IsDuplicateUnitsError(ErrEmptyData))
	assert.False(t, IsDuplicateUnitsError(nil))
}

func TestIsNotFiniteError(t *testing.T) {
	err := Wrap(ErrNotFinite, "log posterior at chain 2 initial point")

	assert.True(t, IsNotFiniteError(err))
	assert.False(t, IsNotFiniteError(New("finite but wrong")))
	assert.False(t, IsNotFiniteError(nil))
}

func TestNewColumnNotFoundError(t *testing.T) {
	err := NewColumnNotFoundError("ph")

	assert.Contains(t, err.Error(), `column "ph"`)
	assert.True(t, Is(err, ErrColumnNotFound))
}

func TestNewColumnTypeError(t *testing.T) {
	err := NewColumnTypeError("area", "float", "string")

	assert.Contains(t, err.Error(), `column "area" is string, want float`)
	assert.True(t, Is(err, ErrColumnType))
}

func TestStackTrace(t *testing.T) {
	err := New("with stack")

	// Format with stack trace
	detailed := fmt.Sprintf("%+v", err)
	assert.Contains(t, detailed, "errors_test.go")
}

func TestNilHandling(t *testing.T) {
	assert.Nil(t, Wrap(nil, "context"))
	assert.Nil(t, Wrapf(nil, "context %d", 1))
	assert.Nil(t, WithStack(nil))
	assert.Nil(t, WithHint(nil, "hint"))
	assert.Nil(t, WithDetail(nil, "detail"))
}

func TestErrorChaining(t *testing.T) {
	err := Wrap(ErrDuplicateUnits, "layer 1")
	err = WithHint(err, "deduplicate with DistinctBy before fitting")
	err = Wrap(err, "layer 2")

	// Should preserve all context
	assert.True(t, Is(err, ErrDuplicateUnits))
	assert.Contains(t, err.Error(), "layer 2")
	assert.Contains(t, err.Error(), "layer 1")

	// Hints should be accessible
	hints := GetAllHints(err)
	assert.Contains(t, hints, "deduplicate with DistinctBy before fitting")
}

func ExampleNew() {
	err := New("something went wrong")
	fmt.Println(err)
	// Output: something went wrong
}

func ExampleWrap() {
	baseErr := New("no such table: specimens")
	err := Wrap(baseErr, "failed to query survey database")
	fmt.Println(err)
	// Output: failed to query survey database: no such table: specimens
}
