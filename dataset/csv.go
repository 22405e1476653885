package dataset

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/anhnguyendepocen/bayes-course/errors"
)

// ReadCSV parses a comma-separated table with a required header row.
//
// Column kinds are auto-detected: a column is a float column iff every
// non-empty cell parses as a number; otherwise it is a string column.
// Empty cells are tolerated in string columns but rejected in float columns,
// since a silent zero would corrupt a fit.
func ReadCSV(r io.Reader) (*Frame, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse CSV")
	}
	if len(records) == 0 {
		return nil, errors.Wrap(errors.ErrEmptyData, "CSV has no header row")
	}

	header := records[0]
	for i, name := range header {
		header[i] = strings.TrimSpace(name)
		if header[i] == "" {
			return nil, errors.Newf("empty column name at position %d in header", i+1)
		}
	}
	body := records[1:]

	frame := &Frame{index: make(map[string]int, len(header)), nrows: len(body)}
	for col, name := range header {
		if _, dup := frame.index[name]; dup {
			return nil, errors.Newf("duplicate column %q in header", name)
		}

		series, err := buildSeries(name, col, body)
		if err != nil {
			return nil, err
		}
		frame.index[name] = len(frame.cols)
		frame.cols = append(frame.cols, series)
	}

	return frame, nil
}

// ReadCSVFile reads a CSV table from a local path
func ReadCSVFile(path string) (*Frame, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open %s", path)
	}
	defer file.Close()

	frame, err := ReadCSV(file)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", path)
	}
	return frame, nil
}

// buildSeries detects one column's kind from the body rows and materializes it
func buildSeries(name string, col int, body [][]string) (*Series, error) {
	isFloat := true
	sawValue := false
	for _, rec := range body {
		cell := strings.TrimSpace(rec[col])
		if cell == "" {
			continue
		}
		sawValue = true
		if _, err := strconv.ParseFloat(cell, 64); err != nil {
			isFloat = false
			break
		}
	}
	// A column with no values at all stays a string column of empties
	if !sawValue {
		isFloat = false
	}

	if !isFloat {
		values := make([]string, len(body))
		for i, rec := range body {
			values[i] = strings.TrimSpace(rec[col])
		}
		return StringCol(name, values), nil
	}

	values := make([]float64, len(body))
	for i, rec := range body {
		cell := strings.TrimSpace(rec[col])
		if cell == "" {
			// +2: one for the header row, one for 1-based line numbers
			return nil, errors.Newf("empty cell in numeric column %q at line %d", name, i+2)
		}
		v, err := strconv.ParseFloat(cell, 64)
		if err != nil {
			return nil, errors.Wrapf(err, "column %q at line %d", name, i+2)
		}
		values[i] = v
	}
	return FloatCol(name, values), nil
}
