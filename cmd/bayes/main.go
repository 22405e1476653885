package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/anhnguyendepocen/bayes-course/cmd/bayes/commands"
	"github.com/anhnguyendepocen/bayes-course/logger"
)

var rootCmd = &cobra.Command{
	Use:   "bayes",
	Short: "Bayesian regression workflows for fisheries teaching data",
	Long: `bayes - Bayesian regression workflows over fisheries teaching data.

Each pipeline loads a dataset, fits its models by adaptive random-walk
Metropolis, checks convergence, and writes a markdown report with figures
and a run manifest.

Available commands:
  growth     - Fit von Bertalanffy growth curves to survey specimens
  regression - Fit the mesocosm biomass models
  datasets   - Describe the datasets shipped with the course material
  init       - Write a default bayes.toml
  version    - Show build information

Examples:
  bayes init                      # Write bayes.toml with the defaults
  bayes growth                    # Fit all configured error families
  bayes growth --family lognormal # Fit a single family
  bayes regression --watch        # Re-fit whenever data or config change
  bayes datasets                  # List the bundled CSV files`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		verbosity, _ := cmd.Flags().GetCount("verbose")
		jsonLogs, _ := cmd.Flags().GetBool("json-logs")
		if err := logger.InitializeWithVerbosity(jsonLogs, verbosity); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().CountP("verbose", "v", "Increase output verbosity (repeat for more detail: -v, -vv)")
	rootCmd.PersistentFlags().String("config", "", "Explicit config file (default: search upward for bayes.toml)")
	rootCmd.PersistentFlags().Bool("json-logs", false, "Structured JSON logs and progress events")

	rootCmd.AddCommand(commands.GrowthCmd)
	rootCmd.AddCommand(commands.RegressionCmd)
	rootCmd.AddCommand(commands.DatasetsCmd)
	rootCmd.AddCommand(commands.InitCmd)
	rootCmd.AddCommand(commands.VersionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
