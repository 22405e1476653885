package commands

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/anhnguyendepocen/bayes-course/config"
	"github.com/anhnguyendepocen/bayes-course/errors"
	"github.com/anhnguyendepocen/bayes-course/mcmc"
	"github.com/anhnguyendepocen/bayes-course/report"
)

// loadConfig resolves the run configuration: an explicit --config file wins,
// otherwise the usual search order (env, project file, defaults) applies.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	if path != "" {
		return config.LoadFromFile(path)
	}
	return config.Load()
}

// emitterFor picks the progress surface: a pterm bar on terminals, JSON
// lines when --json-logs asks for machine-readable output.
func emitterFor(cmd *cobra.Command) mcmc.ProgressEmitter {
	if jsonLogs, _ := cmd.Flags().GetBool("json-logs"); jsonLogs {
		return mcmc.NewJSONEmitter()
	}
	return mcmc.NewCLIEmitter()
}

// checkOutputDir refuses to clobber a previous report unless the
// configuration allows it.
func checkOutputDir(cfg *config.Config) error {
	if cfg.Output.Overwrite {
		return nil
	}
	if _, err := os.Stat(filepath.Join(cfg.Output.Dir, report.ReportFileName)); err == nil {
		return errors.Newf("output directory %s already holds a report (set output.overwrite = true or pass --out)",
			cfg.Output.Dir)
	}
	return nil
}

// watchPaths lists the files whose changes re-trigger a watched pipeline:
// the data file plus whichever config file is in effect.
func watchPaths(cmd *cobra.Command, dataPath string) []string {
	paths := []string{dataPath}
	if cfgPath, _ := cmd.Flags().GetString("config"); cfgPath != "" {
		paths = append(paths, cfgPath)
	} else if found := config.FindProjectConfig(); found != "" {
		paths = append(paths, found)
	}
	return paths
}

// watchLoop runs the pipeline once, then re-runs it whenever a watched path
// changes, until interrupted.
func watchLoop(paths []string, run func(context.Context) error) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		return err
	}

	pterm.Info.Printf("watching for changes (Ctrl+C to stop): %v\n", paths)
	err := report.Watch(ctx, paths, report.DefaultDebounce, func() {
		pterm.Info.Println("change detected, re-running pipeline")
		// Reload so config edits take effect on the next run.
		config.Reset()
		if err := run(ctx); err != nil {
			pterm.Error.Printf("pipeline failed: %v\n", err)
		}
	})
	if errors.Is(err, context.Canceled) {
		pterm.Success.Println("watch stopped")
		return nil
	}
	return err
}
