package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// SetDefaults configures default values for all configuration options
func SetDefaults(v *viper.Viper) {
	// Sampler defaults: 4 chains of 1000 post-warmup draws after 1000 warmup.
	// 0.234 is the classic random-walk Metropolis acceptance target.
	v.SetDefault("sampler.chains", 4)
	v.SetDefault("sampler.iterations", 1000)
	v.SetDefault("sampler.warmup", 1000)
	v.SetDefault("sampler.seed", 1)
	v.SetDefault("sampler.target_accept", 0.234)

	// Growth pipeline defaults
	v.SetDefault("growth.data_path", "data/pcod-growth.csv")
	v.SetDefault("growth.sqlite_query",
		"SELECT specimen_id, species, area, sex, age, length_cm FROM specimens")
	v.SetDefault("growth.species", "Pacific cod")
	v.SetDefault("growth.area", "HS")
	v.SetDefault("growth.families", []string{FamilyNormal, FamilyLognormal, FamilyStudentT})
	v.SetDefault("growth.age_grid_points", 80)

	// Regression pipeline defaults
	v.SetDefault("regression.data_path", "data/mesocosm.csv")
	v.SetDefault("regression.nutrient_high", 15.0)
	v.SetDefault("regression.nutrient_low", 2.0)
	v.SetDefault("regression.ph_reference", 0.0) // 0 = observed median

	// Output defaults
	v.SetDefault("output.dir", "out")
	v.SetDefault("output.figure_width", 6.0)
	v.SetDefault("output.figure_height", 4.5)
	v.SetDefault("output.overwrite", false)

	// Log defaults
	v.SetDefault("log.json", false)
}

// BindEnvOverrides explicitly binds configuration that is commonly overridden
// per machine to environment variables
func BindEnvOverrides(v *viper.Viper) {
	v.BindEnv("growth.data_path", "BAYES_GROWTH_DATA_PATH")
	v.BindEnv("regression.data_path", "BAYES_REGRESSION_DATA_PATH")
	v.BindEnv("output.dir", "BAYES_OUTPUT_DIR")
	v.BindEnv("sampler.seed", "BAYES_SAMPLER_SEED")
}

// String returns a string representation of the config
func (c *Config) String() string {
	return fmt.Sprintf("Config{Sampler: {Chains: %d, Iterations: %d, Warmup: %d}, Output: %s}",
		c.Sampler.Chains, c.Sampler.Iterations, c.Sampler.Warmup, c.Output.Dir)
}
