package growth

import (
	"github.com/anhnguyendepocen/bayes-course/config"
	"github.com/anhnguyendepocen/bayes-course/dataset"
	"github.com/anhnguyendepocen/bayes-course/errors"
	"github.com/anhnguyendepocen/bayes-course/logger"
)

// Column names expected in the specimen table.
const (
	ColSpecimen = "specimen_id"
	ColSpecies  = "species"
	ColArea     = "area"
	ColAge      = "age"
	ColLength   = "length_cm"
)

// Specimens is the cleaned modeling table: one row per specimen of the
// configured species and area.
type Specimens struct {
	Frame  *dataset.Frame
	Age    []float64
	Length []float64
	// Dropped counts duplicate specimen rows removed by the dedupe pass.
	Dropped int
	// Source is the file the table was read from.
	Source string
}

// LoadSpecimens reads the specimen table from the configured CSV, or from a
// survey SQLite database when sqlitePath is set, filters it to the
// configured species and area, and enforces one row per specimen. Survey
// extracts routinely carry the same specimen twice; fitting on such a table
// would double-count fish, so duplicates are dropped and the uniqueness
// invariant is asserted before anything is modeled.
func LoadSpecimens(cfg config.GrowthConfig, sqlitePath string) (*Specimens, error) {
	var (
		frame  *dataset.Frame
		source string
		err    error
	)
	if sqlitePath != "" {
		source = sqlitePath
		frame, err = dataset.ReadSQLite(sqlitePath, cfg.SQLiteQuery)
	} else {
		source = cfg.DataPath
		frame, err = dataset.ReadCSVFile(cfg.DataPath)
	}
	if err != nil {
		return nil, err
	}
	total := frame.Len()

	if cfg.Species != "" {
		if frame, err = frame.FilterEq(ColSpecies, cfg.Species); err != nil {
			return nil, err
		}
	}
	if cfg.Area != "" {
		if frame, err = frame.FilterEq(ColArea, cfg.Area); err != nil {
			return nil, err
		}
	}

	deduped, dropped, err := frame.DistinctBy(ColSpecimen)
	if err != nil {
		return nil, err
	}
	if err := deduped.AssertUnique(ColSpecimen); err != nil {
		return nil, err
	}
	if err := deduped.AssertNonEmpty(); err != nil {
		return nil, errors.Wrapf(err, "no %q specimens in area %q", cfg.Species, cfg.Area)
	}

	age, err := deduped.Floats(ColAge)
	if err != nil {
		return nil, err
	}
	length, err := deduped.Floats(ColLength)
	if err != nil {
		return nil, err
	}

	logger.Infow("specimens loaded",
		logger.FieldFile, source,
		logger.FieldRows, deduped.Len(),
		logger.FieldDropped, dropped,
		"species", cfg.Species,
		"area", cfg.Area,
		"total", total)

	return &Specimens{
		Frame:   deduped,
		Age:     age,
		Length:  length,
		Dropped: dropped,
		Source:  source,
	}, nil
}
