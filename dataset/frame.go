// Package dataset provides the column-oriented observation tables consumed by
// the growth and regression pipelines: CSV and SQLite loading, filtering,
// deduplication, rescaling, and prediction-grid construction.
//
// Frames are immutable once built; every transforming operation returns a new
// Frame and leaves the receiver untouched.
package dataset

import (
	"math"
	"strconv"

	"github.com/anhnguyendepocen/bayes-course/errors"
)

// Kind is the storage type of a column
type Kind int

const (
	// KindFloat columns hold float64 measurements
	KindFloat Kind = iota
	// KindString columns hold labels (species, area, sex)
	KindString
)

func (k Kind) String() string {
	switch k {
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	default:
		return "unknown"
	}
}

// Series is a single named column
type Series struct {
	Name string
	Kind Kind

	floats  []float64
	strings []string
}

// FloatCol constructs a float column
func FloatCol(name string, values []float64) *Series {
	return &Series{Name: name, Kind: KindFloat, floats: values}
}

// StringCol constructs a string column
func StringCol(name string, values []string) *Series {
	return &Series{Name: name, Kind: KindString, strings: values}
}

// Len returns the number of cells in the series
func (s *Series) Len() int {
	if s.Kind == KindFloat {
		return len(s.floats)
	}
	return len(s.strings)
}

// cell renders one cell as a string (used for distinct keys)
func (s *Series) cell(i int) string {
	if s.Kind == KindFloat {
		return strconv.FormatFloat(s.floats[i], 'g', -1, 64)
	}
	return s.strings[i]
}

// Frame is a column-oriented table with a consistent row count.
// Column order is preserved; lookup is by name.
type Frame struct {
	cols  []*Series
	index map[string]int
	nrows int
}

// New builds a Frame from columns. All columns must have equal length and
// distinct names.
func New(cols ...*Series) (*Frame, error) {
	f := &Frame{index: make(map[string]int, len(cols))}
	for i, c := range cols {
		if _, dup := f.index[c.Name]; dup {
			return nil, errors.Newf("duplicate column %q", c.Name)
		}
		if i == 0 {
			f.nrows = c.Len()
		} else if c.Len() != f.nrows {
			return nil, errors.Newf("column %q has %d rows, want %d", c.Name, c.Len(), f.nrows)
		}
		f.index[c.Name] = i
		f.cols = append(f.cols, c)
	}
	return f, nil
}

// Len returns the number of rows
func (f *Frame) Len() int {
	return f.nrows
}

// Columns returns the column names in order
func (f *Frame) Columns() []string {
	names := make([]string, len(f.cols))
	for i, c := range f.cols {
		names[i] = c.Name
	}
	return names
}

// Has reports whether a column exists
func (f *Frame) Has(col string) bool {
	_, ok := f.index[col]
	return ok
}

// series returns the named column or an ErrColumnNotFound
func (f *Frame) series(col string) (*Series, error) {
	i, ok := f.index[col]
	if !ok {
		return nil, errors.NewColumnNotFoundError(col)
	}
	return f.cols[i], nil
}

// Floats returns a copy of a float column's values
func (f *Frame) Floats(col string) ([]float64, error) {
	s, err := f.series(col)
	if err != nil {
		return nil, err
	}
	if s.Kind != KindFloat {
		return nil, errors.NewColumnTypeError(col, "float", s.Kind.String())
	}
	out := make([]float64, len(s.floats))
	copy(out, s.floats)
	return out, nil
}

// Strings returns a copy of a string column's values
func (f *Frame) Strings(col string) ([]string, error) {
	s, err := f.series(col)
	if err != nil {
		return nil, err
	}
	if s.Kind != KindString {
		return nil, errors.NewColumnTypeError(col, "string", s.Kind.String())
	}
	out := make([]string, len(s.strings))
	copy(out, s.strings)
	return out, nil
}

// Row is a lightweight view of one frame row, used by predicates and
// derived-column functions
type Row struct {
	f *Frame
	i int
}

// Index returns the row's position in the frame
func (r Row) Index() int {
	return r.i
}

// Float returns the value of a float column at this row.
// Missing columns and string columns yield NaN, so that predicates built on
// unknown columns fail visibly rather than silently matching.
func (r Row) Float(col string) float64 {
	i, ok := r.f.index[col]
	if !ok {
		return math.NaN()
	}
	s := r.f.cols[i]
	if s.Kind != KindFloat {
		return math.NaN()
	}
	return s.floats[r.i]
}

// String returns the value of a string column at this row, or "" when the
// column is missing or numeric
func (r Row) String(col string) string {
	i, ok := r.f.index[col]
	if !ok {
		return ""
	}
	s := r.f.cols[i]
	if s.Kind != KindString {
		return ""
	}
	return s.strings[r.i]
}

// Filter returns a new frame containing the rows for which pred is true
func (f *Frame) Filter(pred func(Row) bool) *Frame {
	keep := make([]int, 0, f.nrows)
	for i := 0; i < f.nrows; i++ {
		if pred(Row{f: f, i: i}) {
			keep = append(keep, i)
		}
	}
	return f.take(keep)
}

// FilterEq keeps rows whose column equals value. The value type must match
// the column kind (string for label columns, float64 for measurements).
func (f *Frame) FilterEq(col string, value interface{}) (*Frame, error) {
	s, err := f.series(col)
	if err != nil {
		return nil, err
	}
	switch want := value.(type) {
	case string:
		if s.Kind != KindString {
			return nil, errors.NewColumnTypeError(col, "string", s.Kind.String())
		}
		return f.Filter(func(r Row) bool { return r.String(col) == want }), nil
	case float64:
		if s.Kind != KindFloat {
			return nil, errors.NewColumnTypeError(col, "float", s.Kind.String())
		}
		return f.Filter(func(r Row) bool { return r.Float(col) == want }), nil
	case int:
		if s.Kind != KindFloat {
			return nil, errors.NewColumnTypeError(col, "float", s.Kind.String())
		}
		return f.Filter(func(r Row) bool { return r.Float(col) == float64(want) }), nil
	default:
		return nil, errors.Newf("FilterEq: unsupported value type %T for column %q", value, col)
	}
}

// DistinctBy keeps the first occurrence of each value in col and reports how
// many rows were dropped. Use before fitting so duplicate specimen records do
// not double-count.
func (f *Frame) DistinctBy(col string) (*Frame, int, error) {
	s, err := f.series(col)
	if err != nil {
		return nil, 0, err
	}
	seen := make(map[string]bool, f.nrows)
	keep := make([]int, 0, f.nrows)
	for i := 0; i < f.nrows; i++ {
		key := s.cell(i)
		if seen[key] {
			continue
		}
		seen[key] = true
		keep = append(keep, i)
	}
	return f.take(keep), f.nrows - len(keep), nil
}

// AssertUnique returns ErrDuplicateUnits when col contains repeated values.
// Model fitting requires one row per unit.
func (f *Frame) AssertUnique(col string) error {
	s, err := f.series(col)
	if err != nil {
		return err
	}
	seen := make(map[string]bool, f.nrows)
	dups := 0
	for i := 0; i < f.nrows; i++ {
		key := s.cell(i)
		if seen[key] {
			dups++
		}
		seen[key] = true
	}
	if dups > 0 {
		return errors.Wrapf(errors.ErrDuplicateUnits, "column %q: %d repeated values", col, dups)
	}
	return nil
}

// AssertNonEmpty returns ErrEmptyData when the frame has no rows
func (f *Frame) AssertNonEmpty() error {
	if f.nrows == 0 {
		return errors.WithStack(errors.ErrEmptyData)
	}
	return nil
}

// Mutate returns a new frame with a derived float column appended.
// An existing column of the same name is replaced in place.
func (f *Frame) Mutate(name string, fn func(Row) float64) *Frame {
	values := make([]float64, f.nrows)
	for i := 0; i < f.nrows; i++ {
		values[i] = fn(Row{f: f, i: i})
	}

	out := f.shallowCopy()
	if i, ok := out.index[name]; ok {
		out.cols[i] = FloatCol(name, values)
		return out
	}
	out.index[name] = len(out.cols)
	out.cols = append(out.cols, FloatCol(name, values))
	return out
}

// Head returns the first n rows (all rows when n exceeds the length)
func (f *Frame) Head(n int) *Frame {
	if n > f.nrows {
		n = f.nrows
	}
	keep := make([]int, n)
	for i := range keep {
		keep[i] = i
	}
	return f.take(keep)
}

// take builds a new frame from a row-index selection
func (f *Frame) take(rows []int) *Frame {
	out := &Frame{index: make(map[string]int, len(f.cols)), nrows: len(rows)}
	for _, c := range f.cols {
		switch c.Kind {
		case KindFloat:
			vals := make([]float64, len(rows))
			for j, i := range rows {
				vals[j] = c.floats[i]
			}
			out.index[c.Name] = len(out.cols)
			out.cols = append(out.cols, FloatCol(c.Name, vals))
		case KindString:
			vals := make([]string, len(rows))
			for j, i := range rows {
				vals[j] = c.strings[i]
			}
			out.index[c.Name] = len(out.cols)
			out.cols = append(out.cols, StringCol(c.Name, vals))
		}
	}
	return out
}

// shallowCopy shares column storage; callers must replace, never mutate, columns
func (f *Frame) shallowCopy() *Frame {
	out := &Frame{
		cols:  make([]*Series, len(f.cols)),
		index: make(map[string]int, len(f.index)),
		nrows: f.nrows,
	}
	copy(out.cols, f.cols)
	for k, v := range f.index {
		out.index[k] = v
	}
	return out
}
