package dataset

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anhnguyendepocen/bayes-course/errors"
)

func TestReadCSV(t *testing.T) {
	input := `specimen_id,species,age,length_cm
S1,Pacific cod,2,28.1
S2,Pacific cod,5,55.3
S3,Walleye pollock,3,34.0
`
	f, err := ReadCSV(strings.NewReader(input))
	require.NoError(t, err)

	assert.Equal(t, 3, f.Len())
	assert.Equal(t, []string{"specimen_id", "species", "age", "length_cm"}, f.Columns())

	// Numeric columns auto-detected
	ages, err := f.Floats("age")
	require.NoError(t, err)
	assert.Equal(t, []float64{2, 5, 3}, ages)

	// Label columns stay strings even when short
	ids, err := f.Strings("specimen_id")
	require.NoError(t, err)
	assert.Equal(t, "S3", ids[2])
}

func TestReadCSV_MixedColumnStaysString(t *testing.T) {
	input := `tank,code
T1,7
T2,A7
`
	f, err := ReadCSV(strings.NewReader(input))
	require.NoError(t, err)

	// One non-numeric cell makes the whole column a string column
	codes, err := f.Strings("code")
	require.NoError(t, err)
	assert.Equal(t, []string{"7", "A7"}, codes)
}

func TestReadCSV_EmptyCells(t *testing.T) {
	// Empty cells are fine in string columns
	ok := `id,sex,age
S1,M,2
S2,,5
`
	f, err := ReadCSV(strings.NewReader(ok))
	require.NoError(t, err)
	sexes, err := f.Strings("sex")
	require.NoError(t, err)
	assert.Equal(t, "", sexes[1])

	// Empty cells in numeric columns are rejected with the line number
	bad := `id,age
S1,2
S2,
S3,4
`
	_, err = ReadCSV(strings.NewReader(bad))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `column "age"`)
	assert.Contains(t, err.Error(), "line 3")
}

func TestReadCSV_HeaderErrors(t *testing.T) {
	_, err := ReadCSV(strings.NewReader(""))
	assert.True(t, errors.Is(err, errors.ErrEmptyData))

	_, err = ReadCSV(strings.NewReader("age,age\n1,2\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate column")

	_, err = ReadCSV(strings.NewReader("age,\n1,2\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty column name")
}

func TestReadCSV_RaggedRows(t *testing.T) {
	input := `id,age
S1,2
S2
`
	_, err := ReadCSV(strings.NewReader(input))
	require.Error(t, err)
}

func TestReadCSV_HeaderOnly(t *testing.T) {
	f, err := ReadCSV(strings.NewReader("id,age\n"))
	require.NoError(t, err)
	assert.Equal(t, 0, f.Len())
	assert.True(t, errors.Is(f.AssertNonEmpty(), errors.ErrEmptyData))
}

func TestReadCSVFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "obs.csv")
	content := "tank,ph,biomass_g\nT1,7.2,14.5\nT2,8.1,18.2\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	f, err := ReadCSVFile(path)
	require.NoError(t, err)
	assert.Equal(t, 2, f.Len())

	phs, err := f.Floats("ph")
	require.NoError(t, err)
	assert.Equal(t, []float64{7.2, 8.1}, phs)
}

func TestReadCSVFile_Missing(t *testing.T) {
	_, err := ReadCSVFile(filepath.Join(t.TempDir(), "absent.csv"))
	require.Error(t, err)
}
