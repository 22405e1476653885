package config

import (
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/anhnguyendepocen/bayes-course/errors"
	"github.com/anhnguyendepocen/bayes-course/logger"
)

// createBackup creates rotating backups (.back1, .back2, .back3) before modifying config
func createBackup(configPath string) error {
	// Check if file exists before backing up
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil // No file to backup
	}

	// Rotate backups: .back3 -> delete, .back2 -> .back3, .back1 -> .back2, current -> .back1
	back3 := configPath + ".back3"
	back2 := configPath + ".back2"
	back1 := configPath + ".back1"

	// Delete oldest backup if exists
	if err := os.Remove(back3); err != nil && !os.IsNotExist(err) {
		// Log deletion failures (but don't fail config save)
		logger.Warnw("Failed to delete old backup", logger.FieldPath, back3, logger.FieldError, err)
	}

	// Rotate .back2 to .back3
	if _, err := os.Stat(back2); err == nil {
		if err := os.Rename(back2, back3); err != nil {
			return errors.Wrap(err, "failed to rotate .back2 to .back3")
		}
	}

	// Rotate .back1 to .back2
	if _, err := os.Stat(back1); err == nil {
		if err := os.Rename(back1, back2); err != nil {
			return errors.Wrap(err, "failed to rotate .back1 to .back2")
		}
	}

	// Copy current to .back1
	content, err := os.ReadFile(configPath)
	if err != nil {
		return errors.Wrap(err, "failed to read config for backup")
	}

	if err := os.WriteFile(back1, content, DefaultFilePermissions); err != nil {
		return errors.Wrap(err, "failed to create .back1")
	}

	return nil
}

// defaultSettings returns the default configuration as TOML-ready sections
func defaultSettings() map[string]interface{} {
	return map[string]interface{}{
		"sampler": map[string]interface{}{
			"chains":        4,
			"iterations":    1000,
			"warmup":        1000,
			"seed":          1,
			"target_accept": 0.234,
		},
		"growth": map[string]interface{}{
			"data_path":       "data/pcod-growth.csv",
			"species":         "Pacific cod",
			"area":            "HS",
			"families":        []string{FamilyNormal, FamilyLognormal, FamilyStudentT},
			"age_grid_points": 80,
		},
		"regression": map[string]interface{}{
			"data_path":     "data/mesocosm.csv",
			"nutrient_high": 15.0,
			"nutrient_low":  2.0,
		},
		"output": map[string]interface{}{
			"dir":           "out",
			"figure_width":  6.0,
			"figure_height": 4.5,
		},
		"log": map[string]interface{}{
			"json": false,
		},
	}
}

// WriteDefault writes the default configuration to configPath.
// An existing file is preserved unless force is set; when overwriting,
// rotating backups (.back1, .back2, .back3) are created first.
func WriteDefault(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return errors.Newf("config file %s already exists (use --force to overwrite)", configPath)
	}

	if err := createBackup(configPath); err != nil {
		return errors.Wrap(err, "failed to create backup")
	}

	data, err := toml.Marshal(defaultSettings())
	if err != nil {
		return errors.Wrap(err, "failed to marshal default config")
	}

	if err := os.WriteFile(configPath, data, DefaultFilePermissions); err != nil {
		return errors.Wrap(err, "failed to write config")
	}

	return nil
}
