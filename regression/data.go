package regression

import (
	"github.com/anhnguyendepocen/bayes-course/config"
	"github.com/anhnguyendepocen/bayes-course/dataset"
	"github.com/anhnguyendepocen/bayes-course/logger"
)

// Column names expected in the mesocosm table.
const (
	ColTank     = "tank"
	ColPH       = "ph"
	ColNutrient = "nutrient_umol"
	ColBiomass  = "biomass_g"

	// Standardized columns appended by the loader.
	ColPHScaled       = ColPH + "_scaled"
	ColNutrientScaled = ColNutrient + "_scaled"
)

// Tanks is the modeling table: one row per experimental unit, with pH and
// nutrient standardized and the scalings retained for prediction grids.
type Tanks struct {
	Frame    *dataset.Frame
	PH       []float64
	Nutrient []float64
	Biomass  []float64
	PHScale  dataset.Scaling
	NutScale dataset.Scaling
	Source   string
}

// LoadTanks reads the mesocosm table and standardizes the covariates. Tanks
// are the experimental unit here: a repeated tank identifier means the file
// is wrong, not that the loader should guess, so duplicates abort the run.
func LoadTanks(cfg config.RegressionConfig) (*Tanks, error) {
	frame, err := dataset.ReadCSVFile(cfg.DataPath)
	if err != nil {
		return nil, err
	}
	if err := frame.AssertUnique(ColTank); err != nil {
		return nil, err
	}
	if err := frame.AssertNonEmpty(); err != nil {
		return nil, err
	}

	frame, phScale, err := frame.Scale(ColPH)
	if err != nil {
		return nil, err
	}
	frame, nutScale, err := frame.Scale(ColNutrient)
	if err != nil {
		return nil, err
	}

	ph, err := frame.Floats(ColPH)
	if err != nil {
		return nil, err
	}
	nutrient, err := frame.Floats(ColNutrient)
	if err != nil {
		return nil, err
	}
	biomass, err := frame.Floats(ColBiomass)
	if err != nil {
		return nil, err
	}

	logger.Infow("tanks loaded",
		logger.FieldFile, cfg.DataPath,
		logger.FieldRows, frame.Len())

	return &Tanks{
		Frame:    frame,
		PH:       ph,
		Nutrient: nutrient,
		Biomass:  biomass,
		PHScale:  phScale,
		NutScale: nutScale,
		Source:   cfg.DataPath,
	}, nil
}
