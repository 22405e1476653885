// Package config loads and validates run configuration for the bayes toolkit.
//
// Configuration is read from bayes.toml (found by upward search from the
// working directory), merged with user and system files, and overridable via
// BAYES_* environment variables.
package config

// Config represents the full bayes run configuration
type Config struct {
	Sampler    SamplerConfig    `mapstructure:"sampler"`
	Growth     GrowthConfig     `mapstructure:"growth"`
	Regression RegressionConfig `mapstructure:"regression"`
	Output     OutputConfig     `mapstructure:"output"`
	Log        LogConfig        `mapstructure:"log"`
}

// SamplerConfig configures the MCMC run shared by both pipelines
type SamplerConfig struct {
	Chains       int     `mapstructure:"chains"`        // independent chains (default: 4)
	Iterations   int     `mapstructure:"iterations"`    // post-warmup draws per chain (default: 1000)
	Warmup       int     `mapstructure:"warmup"`        // adaptation draws, discarded (default: 1000)
	Seed         uint64  `mapstructure:"seed"`          // RNG seed; chain c uses seed+c
	TargetAccept float64 `mapstructure:"target_accept"` // proposal adaptation target in (0,1)
}

// GrowthConfig configures the growth-curve pipeline
type GrowthConfig struct {
	DataPath    string   `mapstructure:"data_path"`    // specimen CSV
	SQLiteQuery string   `mapstructure:"sqlite_query"` // query used with --sqlite survey databases
	Species     string   `mapstructure:"species"`      // species filter (exact match)
	Area        string   `mapstructure:"area"`         // survey area filter (exact match)
	Families    []string `mapstructure:"families"`     // observation-error families to fit
	AgeGridN    int      `mapstructure:"age_grid_points"`
}

// RegressionConfig configures the mesocosm regression pipeline
type RegressionConfig struct {
	DataPath     string  `mapstructure:"data_path"`     // experimental-unit CSV
	NutrientHigh float64 `mapstructure:"nutrient_high"` // µmol, "high" setting for the response ratio
	NutrientLow  float64 `mapstructure:"nutrient_low"`  // µmol, "low" setting for the response ratio
	PHReference  float64 `mapstructure:"ph_reference"`  // pH for the ratio; 0 = observed median
}

// OutputConfig configures where figures and the report are written
type OutputConfig struct {
	Dir          string  `mapstructure:"dir"`           // report directory (default: out)
	FigureWidth  float64 `mapstructure:"figure_width"`  // inches
	FigureHeight float64 `mapstructure:"figure_height"` // inches
	Overwrite    bool    `mapstructure:"overwrite"`     // allow writing into a non-empty dir
}

// LogConfig configures logging output
type LogConfig struct {
	JSON bool `mapstructure:"json"` // structured JSON logs instead of console output
}

// Observation-error family names accepted in growth.families
const (
	FamilyNormal    = "normal"
	FamilyLognormal = "lognormal"
	FamilyStudentT  = "student-t"
)

// File system constants
const (
	DefaultDirPermissions  = 0755 // Standard directory permissions (rwxr-xr-x)
	DefaultFilePermissions = 0644 // Standard file permissions (rw-r--r--)
)
