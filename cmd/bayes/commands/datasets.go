package commands

import (
	"fmt"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/anhnguyendepocen/bayes-course/dataset"
)

// DatasetsCmd lists the datasets shipped with the course material.
var DatasetsCmd = &cobra.Command{
	Use:   "datasets",
	Short: "Describe the datasets shipped with the course material",
	Long: `List the bundled datasets with their provenance and column meanings.

The catalog is a YAML file next to the data; point --catalog elsewhere to
describe your own collection.

Examples:
  bayes datasets                            # Describe the bundled files
  bayes datasets --catalog my/datasets.yaml # Describe another collection`,
	RunE: runDatasets,
}

var datasetsCatalog string

func init() {
	DatasetsCmd.Flags().StringVar(&datasetsCatalog, "catalog", "data/datasets.yaml", "Dataset catalog file")
}

func runDatasets(cmd *cobra.Command, args []string) error {
	cat, err := dataset.LoadCatalog(datasetsCatalog)
	if err != nil {
		return err
	}

	pterm.Info.Printf("%d datasets in %s\n\n", len(cat.Datasets), datasetsCatalog)
	for _, e := range cat.Datasets {
		fmt.Printf("%s (%s)\n", e.Name, e.File)
		fmt.Printf("  %s\n", e.Description)
		if e.Source != "" {
			fmt.Printf("  Source: %s\n", e.Source)
		}
		for _, c := range e.Columns {
			fmt.Printf("    %-16s %s\n", c.Name, c.Description)
		}
		fmt.Println()
	}
	return nil
}
