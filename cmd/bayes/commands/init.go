package commands

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/anhnguyendepocen/bayes-course/config"
)

// InitCmd writes a default configuration file.
var InitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default bayes.toml",
	Long: `Write a bayes.toml with the default sampler, pipeline and output settings.

An existing file is preserved unless --force is given; forced writes rotate
the previous file through .back1/.back2/.back3 first.

Examples:
  bayes init                       # Write ./bayes.toml
  bayes init --config run.toml     # Write somewhere else
  bayes init --force               # Replace an existing file (with backup)`,
	RunE: runInit,
}

var initForce bool

func init() {
	InitCmd.Flags().BoolVar(&initForce, "force", false, "Overwrite an existing config file (rotating a backup)")
}

func runInit(cmd *cobra.Command, args []string) error {
	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		path = config.ConfigFileName
	}

	if err := config.WriteDefault(path, initForce); err != nil {
		return err
	}
	pterm.Success.Printf("wrote %s\n", path)
	return nil
}
