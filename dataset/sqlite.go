package dataset

import (
	"database/sql"
	"os"

	_ "github.com/mattn/go-sqlite3"

	"github.com/anhnguyendepocen/bayes-course/errors"
	"github.com/anhnguyendepocen/bayes-course/logger"
)

// ReadSQLite runs query against a SQLite survey database and returns the
// result set as a Frame. The database is opened read-only; this toolkit never
// writes to survey data.
//
// SQLite TEXT values become string columns, numeric affinities (INTEGER,
// REAL) become float columns. NULL cells are rejected: a fit cannot use a
// specimen with a missing measurement, and dropping it silently would hide a
// data-quality problem.
func ReadSQLite(path, query string) (*Frame, error) {
	// sql.Open would happily create a missing file before mode=ro applies
	if _, err := os.Stat(path); err != nil {
		return nil, errors.Wrapf(err, "survey database %s", path)
	}

	db, err := sql.Open("sqlite3", "file:"+path+"?mode=ro")
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open survey database %s", path)
	}
	defer db.Close()

	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		return nil, errors.Wrap(err, "failed to set busy timeout")
	}

	logger.Debugw("Querying survey database", logger.FieldPath, path)
	return QueryFrame(db, query)
}

// QueryFrame executes query on an open database handle and materializes the
// rows as a Frame. Exposed separately so tests can drive it with a mock.
func QueryFrame(db *sql.DB, query string) (*Frame, error) {
	rows, err := db.Query(query)
	if err != nil {
		return nil, errors.Wrap(err, "query failed")
	}
	defer rows.Close()

	names, err := rows.Columns()
	if err != nil {
		return nil, errors.Wrap(err, "failed to read result columns")
	}
	if len(names) == 0 {
		return nil, errors.New("query returned no columns")
	}

	// Scan everything as interface{} and sort out kinds afterwards;
	// SQLite's per-value typing means a column's kind is only known
	// once its cells are seen.
	cells := make([][]interface{}, len(names))
	rowCount := 0
	for rows.Next() {
		values := make([]interface{}, len(names))
		ptrs := make([]interface{}, len(names))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, errors.Wrapf(err, "failed to scan row %d", rowCount+1)
		}
		for i, v := range values {
			cells[i] = append(cells[i], v)
		}
		rowCount++
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "row iteration failed")
	}

	frame := &Frame{index: make(map[string]int, len(names)), nrows: rowCount}
	for i, name := range names {
		if _, dup := frame.index[name]; dup {
			return nil, errors.Newf("duplicate column %q in result set", name)
		}
		series, err := seriesFromSQL(name, cells[i])
		if err != nil {
			return nil, err
		}
		frame.index[name] = len(frame.cols)
		frame.cols = append(frame.cols, series)
	}

	logger.Debugw("Survey query complete",
		logger.FieldRows, rowCount,
		logger.FieldColumns, len(names))
	return frame, nil
}

// seriesFromSQL converts one column of scanned SQLite values into a Series
func seriesFromSQL(name string, values []interface{}) (*Series, error) {
	kind := KindFloat
	for row, v := range values {
		switch v.(type) {
		case nil:
			return nil, errors.Newf("NULL in column %q at row %d", name, row+1)
		case int64, float64:
			// numeric affinity, keep float
		case string, []byte:
			kind = KindString
		case bool:
			// sqlite stores booleans as integers; the driver should not
			// produce bool, but treat it as numeric if it does
		default:
			return nil, errors.Newf("column %q at row %d: unsupported SQL type %T", name, row+1, v)
		}
	}

	if kind == KindString {
		out := make([]string, len(values))
		for row, v := range values {
			switch t := v.(type) {
			case string:
				out[row] = t
			case []byte:
				out[row] = string(t)
			default:
				return nil, errors.Newf("column %q mixes text and numeric values (row %d is %T)", name, row+1, v)
			}
		}
		return StringCol(name, out), nil
	}

	out := make([]float64, len(values))
	for row, v := range values {
		switch t := v.(type) {
		case int64:
			out[row] = float64(t)
		case float64:
			out[row] = t
		case bool:
			if t {
				out[row] = 1
			}
		}
	}
	return FloatCol(name, out), nil
}
