package dataset

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/anhnguyendepocen/bayes-course/errors"
)

// Catalog describes the datasets shipped with the course material.
// It backs the `bayes datasets` command.
type Catalog struct {
	Datasets []CatalogEntry `yaml:"datasets"`
}

// CatalogEntry documents one dataset file
type CatalogEntry struct {
	Name        string          `yaml:"name"`
	File        string          `yaml:"file"`
	Description string          `yaml:"description"`
	Source      string          `yaml:"source"`
	Columns     []CatalogColumn `yaml:"columns"`
}

// CatalogColumn documents one column of a dataset
type CatalogColumn struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
}

// LoadCatalog reads a dataset catalog from a YAML file
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read catalog %s", path)
	}

	var catalog Catalog
	if err := yaml.Unmarshal(data, &catalog); err != nil {
		return nil, errors.Wrapf(err, "failed to parse catalog %s", path)
	}

	if len(catalog.Datasets) == 0 {
		return nil, errors.Newf("catalog %s lists no datasets", path)
	}
	for i, e := range catalog.Datasets {
		if e.Name == "" {
			return nil, errors.Newf("catalog entry %d has no name", i+1)
		}
		if e.File == "" {
			return nil, errors.Newf("catalog entry %q has no file", e.Name)
		}
	}

	return &catalog, nil
}
