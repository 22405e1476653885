package config

import "github.com/anhnguyendepocen/bayes-course/errors"

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	// Sampler: every fit needs at least one chain and one draw
	if c.Sampler.Chains <= 0 {
		return errors.Newf("sampler.chains must be > 0, got %d", c.Sampler.Chains)
	}
	if c.Sampler.Iterations <= 0 {
		return errors.Newf("sampler.iterations must be > 0, got %d", c.Sampler.Iterations)
	}

	// Warmup: 0 = no adaptation (valid for debugging), negative = invalid
	if c.Sampler.Warmup < 0 {
		return errors.Newf("sampler.warmup must be >= 0, got %d", c.Sampler.Warmup)
	}

	// Target acceptance is a probability strictly inside (0, 1)
	if c.Sampler.TargetAccept <= 0 || c.Sampler.TargetAccept >= 1 {
		return errors.Newf("sampler.target_accept must be in (0, 1), got %g", c.Sampler.TargetAccept)
	}

	// Data paths: both pipelines need an input file
	if c.Growth.DataPath == "" {
		return errors.New("growth.data_path cannot be empty")
	}
	if c.Regression.DataPath == "" {
		return errors.New("regression.data_path cannot be empty")
	}

	// Error families must be known
	if len(c.Growth.Families) == 0 {
		return errors.New("growth.families cannot be empty")
	}
	for _, f := range c.Growth.Families {
		switch f {
		case FamilyNormal, FamilyLognormal, FamilyStudentT:
		default:
			return errors.Newf("growth.families: unknown family %q (want %s, %s or %s)",
				f, FamilyNormal, FamilyLognormal, FamilyStudentT)
		}
	}

	if c.Growth.AgeGridN <= 1 {
		return errors.Newf("growth.age_grid_points must be > 1, got %d", c.Growth.AgeGridN)
	}

	// The response-ratio settings must be distinct covariate values
	if c.Regression.NutrientHigh <= c.Regression.NutrientLow {
		return errors.Newf("regression.nutrient_high (%g) must exceed regression.nutrient_low (%g)",
			c.Regression.NutrientHigh, c.Regression.NutrientLow)
	}

	// Figures need positive physical dimensions
	if c.Output.FigureWidth <= 0 {
		return errors.Newf("output.figure_width must be > 0, got %g", c.Output.FigureWidth)
	}
	if c.Output.FigureHeight <= 0 {
		return errors.Newf("output.figure_height must be > 0, got %g", c.Output.FigureHeight)
	}
	if c.Output.Dir == "" {
		return errors.New("output.dir cannot be empty")
	}

	return nil
}
